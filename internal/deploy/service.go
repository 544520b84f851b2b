package deploy

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// HealthState tracks one managed service through validation.
type HealthState string

const (
	StateUnknown   HealthState = "unknown"
	StateStarting  HealthState = "starting"
	StateHealthy   HealthState = "healthy"
	StateUnhealthy HealthState = "unhealthy"
)

// Service is one managed container plus its semantic readiness probe.
type Service struct {
	// Name is the short service name ("influxdb").
	Name string

	// Container is the full container name ("monitoring-influxdb").
	Container string

	// Probe checks application-level readiness after the process is
	// confirmed running. Nil means process liveness is the whole check.
	Probe Probe
}

// Probe is a semantic readiness check for one service.
type Probe interface {
	// Describe names the probe for log output.
	Describe() string

	// Check returns nil when the application responds correctly.
	Check(ctx context.Context) error
}

// HTTPProbe checks an HTTP endpoint for an expected status code.
type HTTPProbe struct {
	Name       string
	URL        string
	WantStatus int
	Client     *http.Client
}

// Describe implements Probe.
func (p *HTTPProbe) Describe() string {
	return fmt.Sprintf("%s (%s)", p.Name, p.URL)
}

// Check implements Probe.
func (p *HTTPProbe) Check(ctx context.Context) error {
	client := p.Client
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.URL, nil)
	if err != nil {
		return fmt.Errorf("failed to build probe request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("probe request failed: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck

	if resp.StatusCode != p.WantStatus {
		return fmt.Errorf("unexpected status %d (want %d)", resp.StatusCode, p.WantStatus)
	}
	return nil
}

// StackServices returns the managed service set for the monitoring stack:
// the storage-layer ping endpoint, the collector's process liveness (no
// probe beyond the running process), and the dashboard readiness endpoint.
func StackServices(prefix string, influxDBPort, grafanaPort int) []Service {
	return []Service{
		{
			Name:      "influxdb",
			Container: prefix + "-influxdb",
			Probe: &HTTPProbe{
				Name:       "storage ping",
				URL:        fmt.Sprintf("http://localhost:%d/ping", influxDBPort),
				WantStatus: http.StatusNoContent,
			},
		},
		{
			Name:      "telegraf",
			Container: prefix + "-telegraf",
		},
		{
			Name:      "grafana",
			Container: prefix + "-grafana",
			Probe: &HTTPProbe{
				Name:       "dashboard readiness",
				URL:        fmt.Sprintf("http://localhost:%d/api/health", grafanaPort),
				WantStatus: http.StatusOK,
			},
		},
	}
}
