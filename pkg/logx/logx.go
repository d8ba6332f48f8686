package logx

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"
	"time"
)

// Level represents a logging level
type Level int

const (
	LevelTrace Level = iota
	LevelDebug
	LevelInfo
	LevelWarn
	LevelError
	LevelFatal
)

// String returns the level name
func (l Level) String() string {
	switch l {
	case LevelTrace:
		return "TRACE"
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	case LevelFatal:
		return "FATAL"
	default:
		return "UNKNOWN"
	}
}

// Enabled reports whether a message at the given level should be logged
func (l Level) Enabled(msgLevel Level) bool {
	return msgLevel >= l
}

// ParseLevel parses a level name (case-insensitive), defaulting to info
func ParseLevel(s string) Level {
	switch strings.ToLower(s) {
	case "trace":
		return LevelTrace
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "fatal":
		return LevelFatal
	default:
		return LevelInfo
	}
}

// Fields is a map of structured log fields
type Fields map[string]interface{}

// Format selects the output format
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
)

// Config holds logger configuration
type Config struct {
	Level  Level
	Format Format
	Output io.Writer
}

// DefaultConfig returns a console logger at info level
func DefaultConfig() *Config {
	return &Config{
		Level:  LevelInfo,
		Format: FormatConsole,
		Output: os.Stdout,
	}
}

// LoadFromEnv builds a config from LOG_LEVEL and LOG_FORMAT
func LoadFromEnv() *Config {
	cfg := DefaultConfig()
	cfg.Level = ParseLevel(os.Getenv("LOG_LEVEL"))
	if strings.EqualFold(os.Getenv("LOG_FORMAT"), "json") {
		cfg.Format = FormatJSON
	}
	return cfg
}

// Logger is the main logger instance
type Logger struct {
	config   *Config
	mu       sync.Mutex
	writer   io.Writer
	exitFunc func(int)
}

// NewLogger creates a new logger with the given config
func NewLogger(config *Config) *Logger {
	if config == nil {
		config = DefaultConfig()
	}
	writer := config.Output
	if writer == nil {
		writer = os.Stdout
	}
	return &Logger{
		config:   config,
		writer:   writer,
		exitFunc: os.Exit,
	}
}

// SetLevel sets the log level
func (l *Logger) SetLevel(level Level) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.config.Level = level
}

// SetOutput sets the output writer
func (l *Logger) SetOutput(w io.Writer) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.writer = w
}

// log is the internal logging method
func (l *Logger) log(level Level, msg string, fields Fields, err error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if !l.config.Level.Enabled(level) {
		return
	}

	now := time.Now()

	if l.config.Format == FormatJSON {
		entry := map[string]interface{}{
			"time":    now.Format(time.RFC3339Nano),
			"level":   level.String(),
			"message": msg,
		}
		for k, v := range fields {
			entry[k] = v
		}
		if err != nil {
			entry["error"] = err.Error()
		}
		if b, jerr := json.Marshal(entry); jerr == nil {
			fmt.Fprintln(l.writer, string(b))
		}
		return
	}

	var b strings.Builder
	b.WriteString(now.Format("2006-01-02 15:04:05.000"))
	b.WriteString(" [")
	b.WriteString(level.String())
	b.WriteString("] ")
	b.WriteString(msg)

	if err != nil {
		b.WriteString(" error=")
		b.WriteString(err.Error())
	}
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields))
		for k := range fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			fmt.Fprintf(&b, " %s=%v", k, fields[k])
		}
	}
	fmt.Fprintln(l.writer, b.String())
}

func (l *Logger) exit(code int) {
	l.exitFunc(code)
}
