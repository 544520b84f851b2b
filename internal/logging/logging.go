// Package logging provides the process-wide provisioning log sink.
//
// Every component writes through the Logger interface. Lines are appended to
// a single log file with a timestamp and severity tag, optionally mirrored to
// stderr when it is a terminal, and the closing status block can be echoed to
// the host boot log so a caller with no shell access can retrieve the outcome.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
)

// Severity classifies a log line.
type Severity string

const (
	SeverityInfo    Severity = "INFO"
	SeverityWarning Severity = "WARNING"
	SeverityError   Severity = "ERROR"
	SeveritySuccess Severity = "SUCCESS"
)

// Logger is the sink every provisioning component writes through.
type Logger interface {
	Info(format string, args ...any)
	Warning(format string, args ...any)
	Error(format string, args ...any)
	Success(format string, args ...any)

	// Step returns a logger whose lines carry a "STEP n/total" tag.
	Step(n, total int) Logger
}

// CurrentAlias is the symlink name maintained beside the active log file so
// external tooling can find the latest log without knowing its timestamp.
const CurrentAlias = "current.log"

const timeLayout = "2006-01-02 15:04:05"

// FileLog is a Logger backed by an append-only file.
//
// Each line is written with a single Write call on an O_APPEND descriptor,
// so interleaved writers (the orchestrator and spawned subprocesses wired to
// the same file) cannot tear each other's lines. No additional locking is
// used.
type FileLog struct {
	f    *os.File
	echo io.Writer
	tag  string
}

// Open creates or appends to the log file at path and refreshes the
// "current.log" alias beside it. The parent directory is created if missing.
func Open(path string) (*FileLog, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory %s: %w", dir, err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}

	// Best effort: the alias is a convenience for external tooling, a
	// failure to update it must not block provisioning.
	alias := filepath.Join(dir, CurrentAlias)
	_ = os.Remove(alias)
	_ = os.Symlink(filepath.Base(path), alias)

	l := &FileLog{f: f}
	if isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd()) {
		l.echo = os.Stderr
	}
	return l, nil
}

// Path returns the path of the underlying log file.
func (l *FileLog) Path() string {
	return l.f.Name()
}

// Close closes the underlying file.
func (l *FileLog) Close() error {
	return l.f.Close()
}

// Info implements Logger.
func (l *FileLog) Info(format string, args ...any) { l.write(SeverityInfo, format, args...) }

// Warning implements Logger.
func (l *FileLog) Warning(format string, args ...any) { l.write(SeverityWarning, format, args...) }

// Error implements Logger.
func (l *FileLog) Error(format string, args ...any) { l.write(SeverityError, format, args...) }

// Success implements Logger.
func (l *FileLog) Success(format string, args ...any) { l.write(SeveritySuccess, format, args...) }

// Step implements Logger.
func (l *FileLog) Step(n, total int) Logger {
	return &FileLog{
		f:    l.f,
		echo: l.echo,
		tag:  fmt.Sprintf("[STEP %d/%d] ", n, total),
	}
}

func (l *FileLog) write(sev Severity, format string, args ...any) {
	line := fmt.Sprintf("%s [%s] %s%s\n",
		time.Now().Format(timeLayout), sev, l.tag, fmt.Sprintf(format, args...))
	_, _ = l.f.WriteString(line)
	if l.echo != nil {
		_, _ = io.WriteString(l.echo, line)
	}
}

// AppendBootLog appends lines to the host's boot log sink at path (for
// example /dev/console), so a caller that can only read the instance console
// output still sees the closing status block.
func AppendBootLog(path string, lines []string) error {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open boot log sink %s: %w", path, err)
	}
	defer f.Close() //nolint:errcheck

	for _, line := range lines {
		if _, err := fmt.Fprintln(f, line); err != nil {
			return fmt.Errorf("failed to write to boot log sink: %w", err)
		}
	}
	return nil
}
