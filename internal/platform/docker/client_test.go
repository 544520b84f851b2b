package docker

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeRunner records invocations and replays scripted results.
type fakeRunner struct {
	calls   []string
	results map[string]fakeResult
}

type fakeResult struct {
	stdout string
	stderr string
	err    error
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{results: make(map[string]fakeResult)}
}

func (f *fakeRunner) on(command string, res fakeResult) {
	f.results[command] = res
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, string, error) {
	call := strings.Join(append([]string{name}, args...), " ")
	f.calls = append(f.calls, call)
	if res, ok := f.results[call]; ok {
		return res.stdout, res.stderr, res.err
	}
	return "", "", nil
}

func newTestClient(runner Runner) *Client {
	return NewClient(runner, "/opt/monitoring/compose.yaml", "/opt/monitoring/stack.env", "monitoring")
}

func TestComposeUp_ArgumentContract(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()

	require.NoError(t, newTestClient(runner).ComposeUp(context.Background()))

	require.Len(t, runner.calls, 1)
	assert.Equal(t,
		"docker compose --env-file /opt/monitoring/stack.env -f /opt/monitoring/compose.yaml -p monitoring up -d",
		runner.calls[0])
}

func TestComposeDown_ArgumentContract(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()

	require.NoError(t, newTestClient(runner).ComposeDown(context.Background()))

	require.Len(t, runner.calls, 1)
	assert.True(t, strings.HasSuffix(runner.calls[0], " down"))
}

func TestContainerState_Running(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()
	runner.on("docker inspect --format {{.State.Status}} monitoring-influxdb",
		fakeResult{stdout: "running\n"})

	state, err := newTestClient(runner).ContainerState(context.Background(), "monitoring-influxdb")
	require.NoError(t, err)
	assert.Equal(t, "running", state)
}

func TestContainerState_Missing(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()
	runner.on("docker inspect --format {{.State.Status}} monitoring-grafana",
		fakeResult{stderr: "Error: No such object: monitoring-grafana", err: errors.New("exit status 1")})

	state, err := newTestClient(runner).ContainerState(context.Background(), "monitoring-grafana")
	require.NoError(t, err)
	assert.Equal(t, "missing", state)
}

func TestContainerState_OtherError(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()
	runner.on("docker inspect --format {{.State.Status}} monitoring-telegraf",
		fakeResult{err: errors.New("cannot connect to the Docker daemon")})

	_, err := newTestClient(runner).ContainerState(context.Background(), "monitoring-telegraf")
	require.Error(t, err)
}

func TestInfo_WrapsFailure(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()
	runner.on("docker info", fakeResult{err: errors.New("connection refused")})

	err := newTestClient(runner).Info(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not responding")
}

func TestComposeVersion(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()
	runner.on("docker compose version --short", fakeResult{stdout: "2.27.0\n"})

	version, err := newTestClient(runner).ComposeVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "2.27.0", version)
}

func TestContainerLogs_FallsBackToStderrStream(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()
	runner.on("docker logs --tail 50 monitoring-influxdb",
		fakeResult{stderr: "ts=... lvl=info msg=\"InfluxDB starting\""})

	logs, err := newTestClient(runner).ContainerLogs(context.Background(), "monitoring-influxdb", 50)
	require.NoError(t, err)
	assert.Contains(t, logs, "InfluxDB starting")
}

func TestUserCanRun(t *testing.T) {
	t.Parallel()
	runner := newFakeRunner()

	require.NoError(t, newTestClient(runner).UserCanRun(context.Background(), "ubuntu"))
	require.Len(t, runner.calls, 1)
	assert.Equal(t, "sudo -n -u ubuntu docker info", runner.calls[0])
}
