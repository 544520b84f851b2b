package config

import (
	"fmt"
	"os"

	"github.com/mitchellh/mapstructure"

	"github.com/stackdhq/stackd/internal/secret"
)

// Lookup reports the value of an environment key and whether it was set,
// matching the os.LookupEnv signature so tests can inject a fixed map.
type Lookup func(key string) (string, bool)

// FromEnvironment resolves settings from the real process environment.
func FromEnvironment() (*Settings, error) {
	return Resolve(os.LookupEnv)
}

// Resolve layers recognized, non-empty overrides from lookup over Defaults
// and validates the result. Validation failures are fatal configuration
// errors reported before any provisioning step runs.
func Resolve(lookup Lookup) (*Settings, error) {
	overrides := make(map[string]string)
	for _, key := range RecognizedKeys {
		if value, ok := lookup(key); ok && value != "" {
			overrides[key] = value
		}
	}

	settings := Defaults()
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &settings,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeDurationHookFunc(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build settings decoder: %w", err)
	}
	if err := decoder.Decode(overrides); err != nil {
		return nil, fmt.Errorf("invalid configuration override: %w", err)
	}

	if err := settings.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &settings, nil
}

// Validate checks the resolved settings for errors that would poison every
// later step.
func (s *Settings) Validate() error {
	if err := validatePort("INFLUXDB_PORT", s.InfluxDBPort); err != nil {
		return err
	}
	if err := validatePort("GRAFANA_PORT", s.GrafanaPort); err != nil {
		return err
	}
	if s.InfluxDBPort == s.GrafanaPort {
		return fmt.Errorf("INFLUXDB_PORT and GRAFANA_PORT must differ, both are %d", s.InfluxDBPort)
	}

	if err := validatePassword("INFLUXDB_ADMIN_PASSWORD", s.InfluxDBPassword); err != nil {
		return err
	}
	if err := validatePassword("GRAFANA_ADMIN_PASSWORD", s.GrafanaPassword); err != nil {
		return err
	}

	if s.InstallDir == "" {
		return fmt.Errorf("STACK_INSTALL_DIR must not be empty")
	}
	if s.ContainerPrefix == "" {
		return fmt.Errorf("STACK_CONTAINER_PREFIX must not be empty")
	}
	if s.CollectInterval <= 0 {
		return fmt.Errorf("STACK_COLLECT_INTERVAL must be a positive duration, got %v", s.CollectInterval)
	}
	return nil
}

func validatePort(key string, port int) error {
	if port < 1 || port > 65535 {
		return fmt.Errorf("%s must be in [1, 65535], got %d", key, port)
	}
	return nil
}

// validatePassword checks supplied overrides only. An empty password means
// "generate one", which always satisfies the policy.
func validatePassword(key, password string) error {
	if password != "" && len(password) < secret.MinLength {
		return fmt.Errorf("%s must be at least %d characters, got %d", key, secret.MinLength, len(password))
	}
	return nil
}
