package handlers

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stackdhq/stackd/internal/config"
)

func swapResolve(t *testing.T, settings *config.Settings, err error) {
	t.Helper()
	orig := resolveConfig
	t.Cleanup(func() { resolveConfig = orig })
	resolveConfig = func() (*config.Settings, error) { return settings, err }
}

func TestValidate_PrintsEffectiveConfiguration(t *testing.T) {
	settings := config.Defaults()
	settings.GrafanaPassword = "operator-ui-secret"
	swapResolve(t, &settings, nil)

	var out bytes.Buffer
	require.NoError(t, Validate(&out))

	text := out.String()
	assert.Contains(t, text, "Configuration is valid.")
	assert.Contains(t, text, "/opt/monitoring")
	assert.Contains(t, text, "Database port:       8086")
	assert.Contains(t, text, "Dashboard port:      3000")
}

func TestValidate_MasksCredentials(t *testing.T) {
	settings := config.Defaults()
	settings.InfluxDBPassword = "super-db-secret"
	settings.GrafanaPassword = "super-ui-secret"
	swapResolve(t, &settings, nil)

	var out bytes.Buffer
	require.NoError(t, Validate(&out))

	text := out.String()
	assert.NotContains(t, text, "super-db-secret")
	assert.NotContains(t, text, "super-ui-secret")
	assert.Contains(t, text, "(supplied, 15 characters)")
}

func TestValidate_UnsuppliedCredentialsMarkedGenerated(t *testing.T) {
	settings := config.Defaults()
	swapResolve(t, &settings, nil)

	var out bytes.Buffer
	require.NoError(t, Validate(&out))
	assert.Contains(t, out.String(), "(generated at run time)")
}

func TestValidate_SurfacesConfigurationErrors(t *testing.T) {
	swapResolve(t, nil, errors.New("INFLUXDB_PORT must be between 1 and 65535, got 99999"))

	var out bytes.Buffer
	err := Validate(&out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
	assert.Contains(t, err.Error(), "INFLUXDB_PORT")
}
