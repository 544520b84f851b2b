package logging

import "fmt"

// Entry is one recorded log line.
type Entry struct {
	Severity Severity
	Tag      string
	Message  string
}

// Recorder is a Logger that captures entries in memory. It is used by tests
// across packages to assert on what a component logged.
type Recorder struct {
	Entries *[]Entry
	tag     string
}

// NewRecorder returns an empty in-memory logger.
func NewRecorder() *Recorder {
	entries := make([]Entry, 0)
	return &Recorder{Entries: &entries}
}

// Info implements Logger.
func (r *Recorder) Info(format string, args ...any) { r.record(SeverityInfo, format, args...) }

// Warning implements Logger.
func (r *Recorder) Warning(format string, args ...any) { r.record(SeverityWarning, format, args...) }

// Error implements Logger.
func (r *Recorder) Error(format string, args ...any) { r.record(SeverityError, format, args...) }

// Success implements Logger.
func (r *Recorder) Success(format string, args ...any) { r.record(SeveritySuccess, format, args...) }

// Step implements Logger.
func (r *Recorder) Step(n, total int) Logger {
	return &Recorder{Entries: r.Entries, tag: fmt.Sprintf("STEP %d/%d", n, total)}
}

// Messages returns all recorded messages in order.
func (r *Recorder) Messages() []string {
	msgs := make([]string, 0, len(*r.Entries))
	for _, e := range *r.Entries {
		msgs = append(msgs, e.Message)
	}
	return msgs
}

// BySeverity returns the messages recorded with the given severity.
func (r *Recorder) BySeverity(sev Severity) []string {
	var msgs []string
	for _, e := range *r.Entries {
		if e.Severity == sev {
			msgs = append(msgs, e.Message)
		}
	}
	return msgs
}

func (r *Recorder) record(sev Severity, format string, args ...any) {
	*r.Entries = append(*r.Entries, Entry{
		Severity: sev,
		Tag:      r.tag,
		Message:  fmt.Sprintf(format, args...),
	})
}
