package config

import (
	"path/filepath"
	"time"
)

// Settings is the fully resolved configuration set for one provisioning run.
// It is built once by Resolve and never mutated afterwards.
type Settings struct {
	// InstallDir is the root directory for all generated artifacts.
	InstallDir string `mapstructure:"STACK_INSTALL_DIR"`

	// LogFile is the provisioning log path. Empty means "derive a
	// timestamped path under the default log directory" (done by the
	// caller, since Settings carries no clock).
	LogFile string `mapstructure:"STACK_LOG_FILE"`

	// BootLog is the host boot-log sink the closing status block is
	// echoed to.
	BootLog string `mapstructure:"STACK_BOOT_LOG"`

	// MarkerDir holds the start/completion marker files.
	MarkerDir string `mapstructure:"STACK_MARKER_DIR"`

	// ContainerPrefix prefixes every managed container name.
	ContainerPrefix string `mapstructure:"STACK_CONTAINER_PREFIX"`

	// OperatingUser is the host user granted container-runtime access.
	OperatingUser string `mapstructure:"STACK_OPERATING_USER"`

	// CollectInterval is the metrics collection interval.
	CollectInterval time.Duration `mapstructure:"STACK_COLLECT_INTERVAL"`

	InfluxDBPort     int    `mapstructure:"INFLUXDB_PORT"`
	InfluxDBUser     string `mapstructure:"INFLUXDB_ADMIN_USER"`
	InfluxDBPassword string `mapstructure:"INFLUXDB_ADMIN_PASSWORD"`
	InfluxDBDatabase string `mapstructure:"INFLUXDB_DB"`

	GrafanaPort     int    `mapstructure:"GRAFANA_PORT"`
	GrafanaUser     string `mapstructure:"GRAFANA_ADMIN_USER"`
	GrafanaPassword string `mapstructure:"GRAFANA_ADMIN_PASSWORD"`
	GrafanaPlugins  string `mapstructure:"GRAFANA_PLUGINS"`

	// StatusBucket, when set, enables uploading the closing status block
	// to S3 so callers can poll the outcome without instance access.
	StatusBucket    string `mapstructure:"STACK_STATUS_BUCKET"`
	StatusRegion    string `mapstructure:"STACK_STATUS_REGION"`
	StatusAccessKey string `mapstructure:"STACK_STATUS_ACCESS_KEY"`
	StatusSecretKey string `mapstructure:"STACK_STATUS_SECRET_KEY"`
}

// Defaults returns the built-in secure defaults. Passwords default to empty,
// which the credentials step replaces with freshly generated secrets.
func Defaults() Settings {
	return Settings{
		InstallDir:       "/opt/monitoring",
		BootLog:          "/dev/console",
		MarkerDir:        "/run/stackd",
		ContainerPrefix:  "monitoring",
		OperatingUser:    "ubuntu",
		CollectInterval:  10 * time.Second,
		InfluxDBPort:     8086,
		InfluxDBUser:     "admin",
		InfluxDBDatabase: "metrics",
		GrafanaPort:      3000,
		GrafanaUser:      "admin",
		GrafanaPlugins:   "grafana-clock-panel,grafana-piechart-panel",
		StatusRegion:     "us-east-1",
	}
}

// ComposeFile is the path of the generated compose definition.
func (s *Settings) ComposeFile() string {
	return filepath.Join(s.InstallDir, "compose.yaml")
}

// EnvFile is the path of the generated settings file. It is the only
// artifact that carries credentials in plaintext and is written with 0600
// permissions.
func (s *Settings) EnvFile() string {
	return filepath.Join(s.InstallDir, "stack.env")
}

// ServicePath joins path elements under the install root.
func (s *Settings) ServicePath(elem ...string) string {
	return filepath.Join(append([]string{s.InstallDir}, elem...)...)
}

// DefaultLogDir is where timestamped provisioning logs are written when
// STACK_LOG_FILE is not supplied.
const DefaultLogDir = "/var/log/stackd"

// RecognizedKeys lists every environment key the resolver honors. Anything
// else in the environment is ignored.
var RecognizedKeys = []string{
	"STACK_INSTALL_DIR",
	"STACK_LOG_FILE",
	"STACK_BOOT_LOG",
	"STACK_MARKER_DIR",
	"STACK_CONTAINER_PREFIX",
	"STACK_OPERATING_USER",
	"STACK_COLLECT_INTERVAL",
	"INFLUXDB_PORT",
	"INFLUXDB_ADMIN_USER",
	"INFLUXDB_ADMIN_PASSWORD",
	"INFLUXDB_DB",
	"GRAFANA_PORT",
	"GRAFANA_ADMIN_USER",
	"GRAFANA_ADMIN_PASSWORD",
	"GRAFANA_PLUGINS",
	"STACK_STATUS_BUCKET",
	"STACK_STATUS_REGION",
	"STACK_STATUS_ACCESS_KEY",
	"STACK_STATUS_SECRET_KEY",
}
