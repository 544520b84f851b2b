package installer

import (
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	goruntime "runtime"
	"time"

	"github.com/stackdhq/stackd/internal/logging"
	"github.com/stackdhq/stackd/internal/platform/docker"
	"github.com/stackdhq/stackd/internal/util/retry"
)

// ComposeFallbackVersion is the pinned known-good compose release installed
// when both the distro package and the dynamic latest-version lookup fail.
const ComposeFallbackVersion = "v2.27.0"

const composePluginDir = "/usr/local/lib/docker/cli-plugins"

// Installer ensures the container runtime is installed, enabled, accessible
// to the operating user, and able to execute workloads.
type Installer struct {
	Runner   docker.Runner
	Docker   *docker.Client
	Log      logging.Logger
	Platform Platform

	// User is the host account granted runtime access.
	User string

	// LookPath is swapped by tests; defaults to exec.LookPath.
	LookPath func(string) (string, error)
}

// Ensure performs the full runtime installation sequence. When the runtime
// is already present and responsive, package installation is skipped
// entirely and only access configuration and validation run.
func (i *Installer) Ensure(ctx context.Context) error {
	if i.LookPath == nil {
		i.LookPath = exec.LookPath
	}

	if i.present(ctx) {
		i.Log.Info("container runtime already installed and responsive, skipping package installation")
	} else {
		if err := i.installRuntime(ctx); err != nil {
			return err
		}
	}

	if err := i.configureAccess(ctx); err != nil {
		return err
	}
	if err := i.enableService(ctx); err != nil {
		return err
	}
	if err := i.ensureCompose(ctx); err != nil {
		return err
	}
	return i.validate(ctx)
}

func (i *Installer) present(ctx context.Context) bool {
	if _, err := i.LookPath("docker"); err != nil {
		return false
	}
	return i.Docker.Info(ctx) == nil
}

func (i *Installer) installRuntime(ctx context.Context) error {
	var install func() error
	switch i.Platform {
	case PlatformDebian:
		install = func() error {
			if _, _, err := i.Runner.Run(ctx, "apt-get", "update", "-q"); err != nil {
				return err
			}
			_, _, err := i.Runner.Run(ctx, "apt-get", "install", "-y", "-q", "docker.io")
			return err
		}
	case PlatformRHEL:
		install = func() error {
			_, _, err := i.Runner.Run(ctx, i.rhelPackageManager(), "install", "-y", "docker")
			return err
		}
	default:
		return fmt.Errorf("unsupported platform %q", i.Platform)
	}

	i.Log.Info("installing container runtime via %s package mechanism", i.Platform)
	// Package mirrors flake on freshly booted hosts; the budget stays small.
	err := retry.Do(ctx, install,
		retry.WithMaxAttempts(3),
		retry.WithDelay(10*time.Second),
		retry.WithMultiplier(1.0))
	if err != nil {
		return fmt.Errorf("runtime package installation failed: %w", err)
	}
	return nil
}

func (i *Installer) rhelPackageManager() string {
	if _, err := i.LookPath("dnf"); err == nil {
		return "dnf"
	}
	return "yum"
}

// configureAccess creates the runtime's administrative group if absent and
// adds the operating user to it.
func (i *Installer) configureAccess(ctx context.Context) error {
	if _, _, err := i.Runner.Run(ctx, "getent", "group", "docker"); err != nil {
		if _, _, err := i.Runner.Run(ctx, "groupadd", "docker"); err != nil {
			return fmt.Errorf("failed to create docker group: %w", err)
		}
		i.Log.Info("created docker group")
	}

	if _, _, err := i.Runner.Run(ctx, "usermod", "-aG", "docker", i.User); err != nil {
		return fmt.Errorf("failed to add user %s to docker group: %w", i.User, err)
	}
	i.Log.Info("added user %s to docker group", i.User)
	return nil
}

func (i *Installer) enableService(ctx context.Context) error {
	if _, _, err := i.Runner.Run(ctx, "systemctl", "enable", "--now", "docker"); err != nil {
		return fmt.Errorf("failed to enable runtime service: %w", err)
	}
	return nil
}

// ensureCompose installs the compose plugin when missing: first via the
// distro package, then by direct download, resolving the latest release and
// falling back to the pinned known-good version when the lookup fails.
func (i *Installer) ensureCompose(ctx context.Context) error {
	if version, err := i.Docker.ComposeVersion(ctx); err == nil {
		i.Log.Info("compose plugin already available (version %s)", version)
		return nil
	}

	if err := i.installComposePackage(ctx); err == nil {
		if _, verr := i.Docker.ComposeVersion(ctx); verr == nil {
			i.Log.Info("compose plugin installed via package mechanism")
			return nil
		}
	}

	version := i.resolveComposeVersion(ctx)
	if err := i.downloadComposePlugin(ctx, version); err != nil {
		return fmt.Errorf("compose plugin installation failed: %w", err)
	}

	if _, err := i.Docker.ComposeVersion(ctx); err != nil {
		return fmt.Errorf("compose plugin installed but not functional: %w", err)
	}
	i.Log.Info("compose plugin %s installed via direct download", version)
	return nil
}

func (i *Installer) installComposePackage(ctx context.Context) error {
	switch i.Platform {
	case PlatformDebian:
		_, _, err := i.Runner.Run(ctx, "apt-get", "install", "-y", "-q", "docker-compose-v2")
		return err
	case PlatformRHEL:
		_, _, err := i.Runner.Run(ctx, i.rhelPackageManager(), "install", "-y", "docker-compose-plugin")
		return err
	default:
		return fmt.Errorf("unsupported platform %q", i.Platform)
	}
}

func (i *Installer) resolveComposeVersion(ctx context.Context) string {
	out, _, err := i.Runner.Run(ctx, "curl", "-fsSL",
		"https://api.github.com/repos/docker/compose/releases/latest")
	if err != nil {
		i.Log.Warning("latest compose version lookup failed, using pinned %s: %v", ComposeFallbackVersion, err)
		return ComposeFallbackVersion
	}

	var release struct {
		TagName string `json:"tag_name"`
	}
	if err := json.Unmarshal([]byte(out), &release); err != nil || release.TagName == "" {
		i.Log.Warning("latest compose version response unparseable, using pinned %s", ComposeFallbackVersion)
		return ComposeFallbackVersion
	}
	return release.TagName
}

func (i *Installer) downloadComposePlugin(ctx context.Context, version string) error {
	if _, _, err := i.Runner.Run(ctx, "mkdir", "-p", composePluginDir); err != nil {
		return fmt.Errorf("failed to create plugin directory: %w", err)
	}

	target := composePluginDir + "/docker-compose"
	url := fmt.Sprintf("https://github.com/docker/compose/releases/download/%s/docker-compose-linux-%s",
		version, composeArch())

	if _, _, err := i.Runner.Run(ctx, "curl", "-fsSL", "-o", target, url); err != nil {
		return fmt.Errorf("failed to download compose plugin: %w", err)
	}
	if _, _, err := i.Runner.Run(ctx, "chmod", "+x", target); err != nil {
		return fmt.Errorf("failed to mark compose plugin executable: %w", err)
	}
	return nil
}

func composeArch() string {
	switch goruntime.GOARCH {
	case "arm64":
		return "aarch64"
	default:
		return "x86_64"
	}
}

// validate proves the runtime executes workloads end to end, then checks the
// operating user can invoke it. The user check is informational only: group
// membership granted this run takes effect on next login.
func (i *Installer) validate(ctx context.Context) error {
	if err := i.Docker.RunHelloWorld(ctx); err != nil {
		return fmt.Errorf("runtime validation failed: %w", err)
	}
	i.Log.Info("runtime executed a test container successfully")

	if err := i.Docker.UserCanRun(ctx, i.User); err != nil {
		i.Log.Info("user %s cannot invoke the runtime in this session (resolves on next login): %v", i.User, err)
	}
	return nil
}
