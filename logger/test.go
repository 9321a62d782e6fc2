package logger

import (
	"fmt"
	"strings"
	"sync"
)

// TestLogEntry is one recorded log call.
type TestLogEntry struct {
	Severity string
	Message  string
}

// TestLogger records every log call so tests can assert on what was
// logged. All levels are enabled.
type TestLogger struct {
	mu       *sync.Mutex
	metadata map[string]interface{}
	prefixes []string
	entries  *[]TestLogEntry
}

var _ Logger = (*TestLogger)(nil)

// NewTestLogger returns a recording logger for tests.
func NewTestLogger() *TestLogger {
	entries := make([]TestLogEntry, 0)
	return &TestLogger{mu: &sync.Mutex{}, entries: &entries}
}

// Entries returns a snapshot of everything logged so far.
func (t *TestLogger) Entries() []TestLogEntry {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]TestLogEntry(nil), *t.entries...)
}

func (t *TestLogger) record(severity, msg string, args ...interface{}) {
	line := fmt.Sprintf(msg, args...)
	if len(t.prefixes) > 0 {
		line = strings.Join(t.prefixes, " ") + " " + line
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	*t.entries = append(*t.entries, TestLogEntry{
		Severity: severity,
		Message:  line,
	})
}

func (t *TestLogger) With(metadata map[string]interface{}) Logger {
	dup := &TestLogger{
		mu:       t.mu,
		metadata: make(map[string]interface{}, len(t.metadata)+len(metadata)),
		prefixes: append([]string(nil), t.prefixes...),
		entries:  t.entries,
	}
	for k, v := range t.metadata {
		dup.metadata[k] = v
	}
	for k, v := range metadata {
		dup.metadata[k] = v
	}
	return dup
}

func (t *TestLogger) WithPrefix(prefix string) Logger {
	dup := &TestLogger{
		mu:       t.mu,
		metadata: t.metadata,
		prefixes: append(append([]string(nil), t.prefixes...), prefix),
		entries:  t.entries,
	}
	return dup
}

func (t *TestLogger) IsLevelEnabled(LogLevel) bool { return true }

func (t *TestLogger) Trace(msg string, args ...interface{}) { t.record("TRACE", msg, args...) }
func (t *TestLogger) Debug(msg string, args ...interface{}) { t.record("DEBUG", msg, args...) }
func (t *TestLogger) Info(msg string, args ...interface{})  { t.record("INFO", msg, args...) }
func (t *TestLogger) Warn(msg string, args ...interface{})  { t.record("WARN", msg, args...) }
func (t *TestLogger) Error(msg string, args ...interface{}) { t.record("ERROR", msg, args...) }
