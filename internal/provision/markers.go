package provision

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// StartMarker exists while (and after) a run executes.
	StartMarker = "provision.started"
	// DoneMarker exists only once a run finished, whatever the outcome.
	DoneMarker = "provision.done"
)

// WriteStartMarker drops the start marker before the first step runs, so a
// crashed run leaves "started but never finished" visible on the host.
func WriteStartMarker(dir string, now time.Time) error {
	content := fmt.Sprintf("started %s\n", now.UTC().Format(time.RFC3339))
	return writeMarker(dir, StartMarker, content)
}

// WriteDoneMarker records the final status after the closing report.
func WriteDoneMarker(dir string, now time.Time, status RunStatus) error {
	content := fmt.Sprintf("finished %s status=%s\n", now.UTC().Format(time.RFC3339), status)
	return writeMarker(dir, DoneMarker, content)
}

// Markers reports which marker files exist in dir.
func Markers(dir string) (started, done bool) {
	if _, err := os.Stat(filepath.Join(dir, StartMarker)); err == nil {
		started = true
	}
	if _, err := os.Stat(filepath.Join(dir, DoneMarker)); err == nil {
		done = true
	}
	return started, done
}

func writeMarker(dir, name, content string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create marker directory %s: %w", dir, err)
	}
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("failed to write marker %s: %w", path, err)
	}
	return nil
}
