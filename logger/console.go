package logger

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
)

const isWindows = runtime.GOOS == "windows"

var noColor = os.Getenv("TERM") == "dumb" ||
	(!isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()))

const (
	reset  = "\033[0m"
	red    = "\033[31m"
	green  = "\033[32m"
	yellow = "\033[33m"
	cyan   = "\033[36m"
	gray   = "\033[1;90m"
)

func color(val string) string {
	if isWindows || noColor {
		return ""
	}
	return val
}

type consoleLogger struct {
	level    LogLevel
	prefixes []string
	metadata map[string]interface{}
	sink     io.Writer
	mu       *sync.Mutex
}

var _ Logger = (*consoleLogger)(nil)

// NewConsoleLogger returns a Logger that writes human-readable lines to
// stderr, with color when attached to a terminal.
func NewConsoleLogger(level LogLevel) Logger {
	return &consoleLogger{
		level: level,
		sink:  os.Stderr,
		mu:    &sync.Mutex{},
	}
}

// NewConsoleLoggerWithSink is like NewConsoleLogger but writes to sink.
func NewConsoleLoggerWithSink(sink io.Writer, level LogLevel) Logger {
	return &consoleLogger{
		level: level,
		sink:  sink,
		mu:    &sync.Mutex{},
	}
}

func (c *consoleLogger) clone() *consoleLogger {
	dup := &consoleLogger{
		level:    c.level,
		prefixes: append([]string(nil), c.prefixes...),
		metadata: make(map[string]interface{}, len(c.metadata)),
		sink:     c.sink,
		mu:       c.mu,
	}
	for k, v := range c.metadata {
		dup.metadata[k] = v
	}
	return dup
}

func (c *consoleLogger) With(metadata map[string]interface{}) Logger {
	dup := c.clone()
	for k, v := range metadata {
		dup.metadata[k] = v
	}
	return dup
}

func (c *consoleLogger) WithPrefix(prefix string) Logger {
	dup := c.clone()
	dup.prefixes = append(dup.prefixes, prefix)
	return dup
}

func (c *consoleLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= c.level
}

func (c *consoleLogger) log(level LogLevel, severity, severityColor, msg string, args ...interface{}) {
	if !c.IsLevelEnabled(level) {
		return
	}
	line := fmt.Sprintf(msg, args...)
	if len(c.prefixes) > 0 {
		line = strings.Join(c.prefixes, " ") + " " + line
	}
	if len(c.metadata) > 0 {
		keys := make([]string, 0, len(c.metadata))
		for k := range c.metadata {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		pairs := make([]string, 0, len(keys))
		for _, k := range keys {
			pairs = append(pairs, fmt.Sprintf("%s=%v", k, c.metadata[k]))
		}
		line += " " + color(gray) + strings.Join(pairs, " ") + color(reset)
	}
	ts := time.Now().Format(time.RFC3339)
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.sink, "%s %s[%-5s]%s %s\n", ts, color(severityColor), severity, color(reset), line)
}

func (c *consoleLogger) Trace(msg string, args ...interface{}) {
	c.log(LevelTrace, "TRACE", gray, msg, args...)
}

func (c *consoleLogger) Debug(msg string, args ...interface{}) {
	c.log(LevelDebug, "DEBUG", cyan, msg, args...)
}

func (c *consoleLogger) Info(msg string, args ...interface{}) {
	c.log(LevelInfo, "INFO", green, msg, args...)
}

func (c *consoleLogger) Warn(msg string, args ...interface{}) {
	c.log(LevelWarn, "WARN", yellow, msg, args...)
}

func (c *consoleLogger) Error(msg string, args ...interface{}) {
	c.log(LevelError, "ERROR", red, msg, args...)
}
