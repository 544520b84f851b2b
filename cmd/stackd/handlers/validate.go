package handlers

import (
	"fmt"
	"io"
)

// Validate resolves the environment configuration and prints the effective
// values. Credentials are masked: only their presence and length are shown.
func Validate(out io.Writer) error {
	settings, err := resolveConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	fmt.Fprintln(out, "Configuration is valid.")
	fmt.Fprintf(out, "  Install directory:   %s\n", settings.InstallDir)
	fmt.Fprintf(out, "  Marker directory:    %s\n", settings.MarkerDir)
	fmt.Fprintf(out, "  Boot log:            %s\n", settings.BootLog)
	fmt.Fprintf(out, "  Container prefix:    %s\n", settings.ContainerPrefix)
	fmt.Fprintf(out, "  Operating user:      %s\n", settings.OperatingUser)
	fmt.Fprintf(out, "  Collect interval:    %s\n", settings.CollectInterval)
	fmt.Fprintf(out, "  Database port:       %d\n", settings.InfluxDBPort)
	fmt.Fprintf(out, "  Database user:       %s\n", settings.InfluxDBUser)
	fmt.Fprintf(out, "  Database password:   %s\n", maskCredential(settings.InfluxDBPassword))
	fmt.Fprintf(out, "  Database name:       %s\n", settings.InfluxDBDatabase)
	fmt.Fprintf(out, "  Dashboard port:      %d\n", settings.GrafanaPort)
	fmt.Fprintf(out, "  Dashboard user:      %s\n", settings.GrafanaUser)
	fmt.Fprintf(out, "  Dashboard password:  %s\n", maskCredential(settings.GrafanaPassword))
	fmt.Fprintf(out, "  Dashboard plugins:   %s\n", settings.GrafanaPlugins)
	if settings.StatusBucket != "" {
		fmt.Fprintf(out, "  Status bucket:       %s (%s)\n", settings.StatusBucket, settings.StatusRegion)
	}
	return nil
}

func maskCredential(value string) string {
	if value == "" {
		return "(generated at run time)"
	}
	return fmt.Sprintf("(supplied, %d characters)", len(value))
}
