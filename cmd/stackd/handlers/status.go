package handlers

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/stackdhq/stackd/internal/config"
	"github.com/stackdhq/stackd/internal/logging"
	"github.com/stackdhq/stackd/internal/provision"
)

// Status reports the outcome of the last local provisioning run from the
// marker files and the most recent run log.
func Status(out io.Writer) error {
	settings, err := resolveConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	started, done := provision.Markers(settings.MarkerDir)
	switch {
	case !started:
		fmt.Fprintln(out, "No provisioning run has started on this host.")
		return nil
	case !done:
		fmt.Fprintln(out, "A provisioning run started but has not finished.")
		fmt.Fprintln(out, "It may still be in progress, or it crashed before completing.")
	default:
		if marker, err := os.ReadFile(filepath.Join(settings.MarkerDir, provision.DoneMarker)); err == nil {
			fmt.Fprintf(out, "Last run: %s", marker)
		}
	}

	block, err := latestReportBlock(settings)
	if err != nil {
		fmt.Fprintf(out, "No run log found: %v\n", err)
		return nil
	}
	fmt.Fprintln(out, block)
	return nil
}

// RemoteStatus fetches the latest published status report from the
// configured bucket.
func RemoteStatus(ctx context.Context, out io.Writer) error {
	settings, err := resolveConfig()
	if err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if settings.StatusBucket == "" {
		return fmt.Errorf("no status bucket configured (set STACK_STATUS_BUCKET)")
	}

	publisher, err := newPublisher(settings.StatusRegion, settings.StatusAccessKey, settings.StatusSecretKey, settings.StatusBucket)
	if err != nil {
		return err
	}
	fetcher, ok := publisher.(interface {
		FetchLatest(ctx context.Context) ([]byte, error)
	})
	if !ok {
		return fmt.Errorf("status publisher does not support fetching")
	}

	report, err := fetcher.FetchLatest(ctx)
	if err != nil {
		return err
	}
	_, err = out.Write(report)
	return err
}

// latestReportBlock extracts the closing status block from the most recent
// run log, located through the stable current.log alias.
func latestReportBlock(settings *config.Settings) (string, error) {
	logDir := config.DefaultLogDir
	if settings.LogFile != "" {
		logDir = filepath.Dir(settings.LogFile)
	}

	data, err := os.ReadFile(filepath.Join(logDir, logging.CurrentAlias))
	if err != nil {
		return "", err
	}

	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	start := -1
	for i, line := range lines {
		if strings.Contains(line, "PROVISIONING RUN COMPLETE") {
			start = i
		}
	}
	if start < 0 {
		return "", fmt.Errorf("log contains no closing status block")
	}
	// Include the rule line preceding the header.
	if start > 0 {
		start--
	}
	return strings.Join(lines[start:], "\n"), nil
}
