// Package handlers implements the business logic for CLI commands.
//
// Handlers are framework-agnostic and can be tested independently of the
// CLI framework. Collaborators with host side effects are held in
// package-level factory variables so tests can swap them out.
package handlers

import (
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/stackdhq/stackd/internal/config"
	"github.com/stackdhq/stackd/internal/deploy"
	"github.com/stackdhq/stackd/internal/installer"
	"github.com/stackdhq/stackd/internal/logging"
	"github.com/stackdhq/stackd/internal/platform/docker"
	"github.com/stackdhq/stackd/internal/platform/s3"
	"github.com/stackdhq/stackd/internal/provision"
	"github.com/stackdhq/stackd/internal/secret"
)

// Publisher uploads the closing report to object storage.
type Publisher interface {
	Publish(ctx context.Context, now time.Time, report []byte) error
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// resolveConfig reads and validates the environment configuration.
	resolveConfig = config.FromEnvironment

	// openLog opens the run log file.
	openLog = func(path string) (logging.Logger, func() error, error) {
		l, err := logging.Open(path)
		if err != nil {
			return nil, nil, err
		}
		return l, l.Close, nil
	}

	// detectPlatform identifies the host OS family.
	detectPlatform = installer.DetectPlatform

	// lookPath locates binaries on the host PATH.
	lookPath = exec.LookPath

	// commandRunner executes host commands.
	commandRunner docker.Runner = docker.ExecRunner{}

	// newPublisher builds the optional S3 status publisher.
	newPublisher = func(region, accessKey, secretKey, bucket string) (Publisher, error) {
		return s3.NewPublisher(region, accessKey, secretKey, bucket)
	}

	// appendBootLog echoes the closing block to the host boot log.
	appendBootLog = logging.AppendBootLog

	// nowFunc supplies timestamps.
	nowFunc = time.Now
)

// Run performs a full provisioning pass.
//
// The sequence is deliberately rigid:
//  1. Resolve and validate configuration; any error here aborts before the
//     first step runs.
//  2. Open the run log and drop the start marker.
//  3. Execute the step list; non-critical failures degrade the outcome.
//  4. Append the closing report to the run log, echo it to the boot log,
//     drop the completion marker, and optionally publish to S3.
//
// The returned error is non-nil only for a FAILED outcome (or a
// configuration error), so the process exit code matches the run status.
func Run(ctx context.Context) error {
	settings, err := resolveConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logPath := settings.LogFile
	if logPath == "" {
		logPath = filepath.Join(config.DefaultLogDir,
			fmt.Sprintf("provision-%s.log", nowFunc().UTC().Format("20060102-150405")))
	}
	log, closeLog, err := openLog(logPath)
	if err != nil {
		return fmt.Errorf("failed to open run log: %w", err)
	}
	defer closeLog() //nolint:errcheck

	if err := provision.WriteStartMarker(settings.MarkerDir, nowFunc()); err != nil {
		log.Warning("failed to write start marker: %v", err)
	}

	log.Info("stackd provisioning run starting (install dir %s)", settings.InstallDir)

	dockerClient := docker.NewClient(commandRunner, settings.ComposeFile(), settings.EnvFile(), settings.ContainerPrefix)
	services := deploy.StackServices(settings.ContainerPrefix, settings.InfluxDBPort, settings.GrafanaPort)

	rc := &provision.Context{
		Settings:       settings,
		State:          &provision.State{},
		Log:            log,
		DetectPlatform: detectPlatform,
		NewInstaller: func(platform installer.Platform) provision.RuntimeEnsurer {
			return &installer.Installer{
				Runner:   commandRunner,
				Docker:   dockerClient,
				Log:      log,
				Platform: platform,
				User:     settings.OperatingUser,
				LookPath: lookPath,
			}
		},
		Validator: &deploy.Validator{
			Docker:   dockerClient,
			Services: services,
			Policy:   deploy.DefaultPolicy(),
			Clock:    deploy.RealClock{},
			Log:      log,
		},
		GenerateSecret: secret.Generate,
	}

	steps := provision.Steps()
	result := provision.NewRunner(steps, log).Run(ctx, rc)

	report := closingReport(ctx, dockerClient, settings, services, result, len(steps))
	emitReport(ctx, settings, log, report)

	if err := provision.WriteDoneMarker(settings.MarkerDir, nowFunc(), result.Status); err != nil {
		log.Warning("failed to write completion marker: %v", err)
	}

	if result.Status == provision.StatusFailed {
		return fmt.Errorf("provisioning failed: %d of %d steps completed",
			len(result.Ledger.Completed), len(steps))
	}
	return nil
}

func closingReport(ctx context.Context, dockerClient *docker.Client, settings *config.Settings, services []deploy.Service, result *provision.Result, total int) *provision.Report {
	containers := make([]string, 0, len(services))
	for _, svc := range services {
		containers = append(containers, svc.Container)
	}

	return &provision.Report{
		Status: result.Status,
		Ledger: result.Ledger,
		Total:  total,
		System: provision.GatherSystemState(ctx, lookPath, dockerClient, settings.InstallDir, containers),
	}
}

// emitReport writes the closing block everywhere it is consumed: the run
// log, the boot log, and (when configured) the status bucket. Echo
// failures are warnings; the report in the run log is the source of truth.
func emitReport(ctx context.Context, settings *config.Settings, log logging.Logger, report *provision.Report) {
	lines := report.Lines()
	emit := log.Info
	if report.Status == provision.StatusFailed {
		emit = log.Error
	}
	for _, line := range lines {
		emit("%s", line)
	}

	if settings.BootLog != "" {
		if err := appendBootLog(settings.BootLog, lines); err != nil {
			log.Warning("failed to echo status to boot log %s: %v", settings.BootLog, err)
		}
	}

	if settings.StatusBucket == "" {
		return
	}
	publisher, err := newPublisher(settings.StatusRegion, settings.StatusAccessKey, settings.StatusSecretKey, settings.StatusBucket)
	if err != nil {
		log.Warning("failed to build status publisher: %v", err)
		return
	}
	var body []byte
	for _, line := range lines {
		body = append(body, line...)
		body = append(body, '\n')
	}
	if err := publisher.Publish(ctx, nowFunc(), body); err != nil {
		log.Warning("failed to publish status to bucket %s: %v", settings.StatusBucket, err)
		return
	}
	log.Info("status report published to bucket %s", settings.StatusBucket)
}
