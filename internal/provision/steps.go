package provision

import (
	"context"
	"fmt"

	"github.com/stackdhq/stackd/internal/assets"
	"github.com/stackdhq/stackd/internal/logging"
	"github.com/stackdhq/stackd/internal/materialize"
	"github.com/stackdhq/stackd/internal/secret"
)

// Container-internal UIDs the data directories are chowned to. The images
// pin these, so a host account is neither needed nor looked up.
const (
	influxDataUID  = "1000"
	grafanaDataUID = "472"
)

// Steps returns the full ordered step list for a provisioning run.
func Steps() []Step {
	return []Step{
		{Name: "detect-platform", Foundational: true, Run: stepDetectPlatform},
		{Name: "install-container-runtime", Foundational: true, Run: stepInstallRuntime},
		{Name: "create-install-root", Foundational: true, Run: stepCreateInstallRoot},
		{Name: "generate-credentials", Foundational: true, Run: stepGenerateCredentials},
		{Name: "write-settings-file", Run: stepWriteSettingsFile},
		{Name: "write-compose-definition", Run: stepWriteComposeDefinition},
		{Name: "write-database-config", Run: stepWriteDatabaseConfig},
		{Name: "write-collector-config", Run: stepWriteCollectorConfig},
		{Name: "write-dashboard-config", Run: stepWriteDashboardConfig},
		{Name: "configure-dashboard-plugins", Run: stepConfigureDashboardPlugins},
		{Name: "write-convenience-scripts", Run: stepWriteConvenienceScripts},
		{Name: "start-and-validate-services", Run: stepStartAndValidate},
	}
}

func stepDetectPlatform(_ context.Context, rc *Context, log logging.Logger) error {
	platform, err := rc.DetectPlatform()
	if err != nil {
		return err
	}
	rc.State.Platform = platform
	log.Info("detected %s platform", platform)
	return nil
}

func stepInstallRuntime(ctx context.Context, rc *Context, _ logging.Logger) error {
	return rc.NewInstaller(rc.State.Platform).Ensure(ctx)
}

func stepCreateInstallRoot(_ context.Context, rc *Context, log logging.Logger) error {
	s := rc.Settings
	dirs := []struct {
		path  string
		owner string
	}{
		{path: s.InstallDir},
		{path: s.ServicePath("influxdb")},
		{path: s.ServicePath("influxdb", "data"), owner: influxDataUID},
		{path: s.ServicePath("telegraf")},
		{path: s.ServicePath("grafana")},
		{path: s.ServicePath("grafana", "data"), owner: grafanaDataUID},
		{path: s.ServicePath("grafana", "provisioning")},
		{path: s.ServicePath("grafana", "provisioning", "datasources")},
		{path: s.ServicePath("grafana", "provisioning", "dashboards")},
		{path: s.ServicePath("grafana", "dashboards")},
		{path: s.ServicePath("scripts")},
	}
	for _, d := range dirs {
		if err := materialize.EnsureDir(d.path, 0o755, d.owner); err != nil {
			return err
		}
	}
	log.Info("install root ready at %s", s.InstallDir)
	return nil
}

func stepGenerateCredentials(_ context.Context, rc *Context, log logging.Logger) error {
	influxPassword, influxGenerated, err := resolveCredential(rc, rc.Settings.InfluxDBPassword)
	if err != nil {
		return fmt.Errorf("failed to generate database credential: %w", err)
	}
	grafanaPassword, grafanaGenerated, err := resolveCredential(rc, rc.Settings.GrafanaPassword)
	if err != nil {
		return fmt.Errorf("failed to generate dashboard credential: %w", err)
	}

	rc.State.InfluxDBPassword = influxPassword
	rc.State.InfluxDBGenerated = influxGenerated
	rc.State.GrafanaPassword = grafanaPassword
	rc.State.GrafanaGenerated = grafanaGenerated

	log.Info("database credential %s (%d characters)", credentialOrigin(influxGenerated), len(influxPassword))
	log.Info("dashboard credential %s (%d characters)", credentialOrigin(grafanaGenerated), len(grafanaPassword))
	return nil
}

// resolveCredential keeps an operator-supplied password (already length
// checked at resolution time) and generates a fresh one otherwise.
func resolveCredential(rc *Context, supplied string) (value string, generated bool, err error) {
	if supplied != "" {
		return supplied, false, nil
	}
	value, err = rc.GenerateSecret(secret.MinLength)
	return value, true, err
}

func credentialOrigin(generated bool) string {
	if generated {
		return "generated"
	}
	return "supplied via environment"
}

func stepWriteSettingsFile(_ context.Context, rc *Context, log logging.Logger) error {
	content, err := assets.Render("stack.env.tmpl", map[string]any{
		"InfluxDBUser":     rc.Settings.InfluxDBUser,
		"InfluxDBPassword": rc.State.InfluxDBPassword,
		"InfluxDBDatabase": rc.Settings.InfluxDBDatabase,
		"GrafanaUser":      rc.Settings.GrafanaUser,
		"GrafanaPassword":  rc.State.GrafanaPassword,
	})
	if err != nil {
		return err
	}

	path := rc.Settings.EnvFile()
	err = materialize.WriteFile(path, content, 0o600, "",
		"INFLUXDB_ADMIN_USER", "INFLUXDB_ADMIN_PASSWORD",
		"GRAFANA_ADMIN_USER", "GRAFANA_ADMIN_PASSWORD")
	if err != nil {
		return err
	}
	log.Info("settings file written to %s with restricted permissions (0600)", path)
	return nil
}

func stepWriteComposeDefinition(_ context.Context, rc *Context, log logging.Logger) error {
	content, err := assets.Render("compose.yaml.tmpl", map[string]any{
		"Prefix":       rc.Settings.ContainerPrefix,
		"InfluxDBPort": rc.Settings.InfluxDBPort,
		"GrafanaPort":  rc.Settings.GrafanaPort,
	})
	if err != nil {
		return err
	}

	path := rc.Settings.ComposeFile()
	// Credentials appear only as ${...} references resolved by compose
	// from the settings file, never as literals.
	err = materialize.WriteYAML(path, content, 0o644, "",
		"${INFLUXDB_ADMIN_USER}", "${INFLUXDB_ADMIN_PASSWORD}", "${INFLUXDB_DB}",
		"${GRAFANA_ADMIN_USER}", "${GRAFANA_ADMIN_PASSWORD}")
	if err != nil {
		return err
	}
	log.Info("compose definition written to %s", path)
	return nil
}

func stepWriteDatabaseConfig(_ context.Context, rc *Context, log logging.Logger) error {
	content, err := assets.Render("influxdb.env.tmpl", map[string]any{
		"InfluxDBDatabase": rc.Settings.InfluxDBDatabase,
	})
	if err != nil {
		return err
	}

	path := rc.Settings.ServicePath("influxdb", "influxdb.env")
	if err := materialize.WriteFile(path, content, 0o644, "", "INFLUXDB_HTTP_AUTH_ENABLED=true"); err != nil {
		return err
	}
	log.Info("database configuration written to %s", path)
	return nil
}

func stepWriteCollectorConfig(_ context.Context, rc *Context, log logging.Logger) error {
	content, err := assets.Render("telegraf.conf.tmpl", map[string]any{
		"Interval": rc.Settings.CollectInterval.String(),
	})
	if err != nil {
		return err
	}

	path := rc.Settings.ServicePath("telegraf", "telegraf.conf")
	err = materialize.WriteFile(path, content, 0o644, "",
		"[[outputs.influxdb]]", "[[inputs.cpu]]", rc.Settings.CollectInterval.String())
	if err != nil {
		return err
	}
	log.Info("collector configuration written to %s (interval %s)", path, rc.Settings.CollectInterval)
	return nil
}

func stepWriteDashboardConfig(_ context.Context, rc *Context, log logging.Logger) error {
	datasource, err := assets.Render("grafana-datasource.yaml.tmpl", map[string]any{
		"InfluxDBDatabase": rc.Settings.InfluxDBDatabase,
	})
	if err != nil {
		return err
	}
	datasourcePath := rc.Settings.ServicePath("grafana", "provisioning", "datasources", "influxdb.yaml")
	// Credentials are referenced through $__env so they stay out of the
	// provisioning tree.
	err = materialize.WriteYAML(datasourcePath, datasource, 0o644, "",
		"$__env{INFLUXDB_ADMIN_USER}", "$__env{INFLUXDB_ADMIN_PASSWORD}")
	if err != nil {
		return err
	}

	provider, err := assets.Render("grafana-dashboards.yaml.tmpl", nil)
	if err != nil {
		return err
	}
	providerPath := rc.Settings.ServicePath("grafana", "provisioning", "dashboards", "provider.yaml")
	if err := materialize.WriteYAML(providerPath, provider, 0o644, "", "/var/lib/grafana/dashboards"); err != nil {
		return err
	}

	dashboard, err := assets.Render("system-dashboard.json", nil)
	if err != nil {
		return err
	}
	dashboardPath := rc.Settings.ServicePath("grafana", "dashboards", "system.json")
	if err := materialize.WriteFile(dashboardPath, dashboard, 0o644, "", "\"uid\""); err != nil {
		return err
	}

	log.Info("dashboard provisioning written under %s", rc.Settings.ServicePath("grafana"))
	return nil
}

func stepConfigureDashboardPlugins(_ context.Context, rc *Context, log logging.Logger) error {
	content, err := assets.Render("grafana.env.tmpl", map[string]any{
		"Plugins": rc.Settings.GrafanaPlugins,
	})
	if err != nil {
		return err
	}

	path := rc.Settings.ServicePath("grafana", "grafana.env")
	if err := materialize.WriteFile(path, content, 0o644, "", "GF_INSTALL_PLUGINS="); err != nil {
		return err
	}
	log.Info("dashboard plugins configured: %s", rc.Settings.GrafanaPlugins)
	return nil
}

func stepWriteConvenienceScripts(_ context.Context, rc *Context, log logging.Logger) error {
	content, err := assets.Render("stackctl.sh.tmpl", map[string]any{
		"InstallDir": rc.Settings.InstallDir,
		"Prefix":     rc.Settings.ContainerPrefix,
	})
	if err != nil {
		return err
	}

	path := rc.Settings.ServicePath("scripts", "stackctl.sh")
	err = materialize.WriteFile(path, content, 0o755, rc.Settings.OperatingUser, "docker compose")
	if err != nil {
		return err
	}
	log.Info("convenience script written to %s", path)
	return nil
}

func stepStartAndValidate(ctx context.Context, rc *Context, _ logging.Logger) error {
	return rc.Validator.Run(ctx)
}
