package docker

import (
	"context"
	"fmt"
	"strings"
)

// Client drives the container runtime and its compose tool for one service
// group.
type Client struct {
	runner      Runner
	composeFile string
	envFile     string
	project     string
}

// NewClient creates a client for the compose project described by
// composeFile, with variable substitution read from envFile.
func NewClient(runner Runner, composeFile, envFile, project string) *Client {
	return &Client{
		runner:      runner,
		composeFile: composeFile,
		envFile:     envFile,
		project:     project,
	}
}

// Info verifies the runtime daemon is present and responsive.
func (c *Client) Info(ctx context.Context) error {
	if _, _, err := c.runner.Run(ctx, "docker", "info"); err != nil {
		return fmt.Errorf("container runtime not responding: %w", err)
	}
	return nil
}

// RunHelloWorld proves the runtime can execute a workload end to end.
func (c *Client) RunHelloWorld(ctx context.Context) error {
	if _, _, err := c.runner.Run(ctx, "docker", "run", "--rm", "hello-world"); err != nil {
		return fmt.Errorf("runtime failed to execute a test container: %w", err)
	}
	return nil
}

// ComposeVersion verifies the compose plugin is installed.
func (c *Client) ComposeVersion(ctx context.Context) (string, error) {
	out, _, err := c.runner.Run(ctx, "docker", "compose", "version", "--short")
	if err != nil {
		return "", fmt.Errorf("compose plugin not available: %w", err)
	}
	return strings.TrimSpace(out), nil
}

// UserCanRun verifies that user can invoke runtime commands without
// elevation. Group membership may not apply to sessions that predate it, so
// callers treat a failure here as informational.
func (c *Client) UserCanRun(ctx context.Context, user string) error {
	if _, _, err := c.runner.Run(ctx, "sudo", "-n", "-u", user, "docker", "info"); err != nil {
		return fmt.Errorf("user %s cannot invoke the runtime yet: %w", user, err)
	}
	return nil
}

// ComposeUp starts the service group detached.
func (c *Client) ComposeUp(ctx context.Context) error {
	if _, _, err := c.runner.Run(ctx, "docker", c.composeArgs("up", "-d")...); err != nil {
		return fmt.Errorf("failed to start service group: %w", err)
	}
	return nil
}

// ComposeDown stops and removes the service group.
func (c *Client) ComposeDown(ctx context.Context) error {
	if _, _, err := c.runner.Run(ctx, "docker", c.composeArgs("down")...); err != nil {
		return fmt.Errorf("failed to stop service group: %w", err)
	}
	return nil
}

// ContainerState returns the runtime state string for a container (for
// example "running", "restarting", "exited"), or "missing" when the
// container does not exist.
func (c *Client) ContainerState(ctx context.Context, container string) (string, error) {
	out, stderr, err := c.runner.Run(ctx, "docker", "inspect", "--format", "{{.State.Status}}", container)
	if err != nil {
		if strings.Contains(stderr, "No such object") || strings.Contains(err.Error(), "No such object") {
			return "missing", nil
		}
		return "", fmt.Errorf("failed to inspect container %s: %w", container, err)
	}
	return strings.TrimSpace(out), nil
}

// ContainerLogs returns the last tail lines of a container's log output.
func (c *Client) ContainerLogs(ctx context.Context, container string, tail int) (string, error) {
	out, stderr, err := c.runner.Run(ctx, "docker", "logs", "--tail", fmt.Sprintf("%d", tail), container)
	if err != nil {
		return "", fmt.Errorf("failed to collect logs for %s: %w", container, err)
	}
	// The runtime writes container stderr streams to our stderr.
	if out == "" {
		return stderr, nil
	}
	return out, nil
}

func (c *Client) composeArgs(action ...string) []string {
	args := []string{"compose", "--env-file", c.envFile, "-f", c.composeFile, "-p", c.project}
	return append(args, action...)
}
