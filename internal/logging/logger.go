/*
 * Copyright (c) 2026 Firefly Software Solutions Inc.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

/*
Package logging provides structured logging for the LarkMQ metadata service.
It supports leveled, component-scoped loggers with key/value fields and
either JSON or human-readable text output.
*/
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"time"
)

// Level represents the severity of a log message.
type Level int

const (
	// DEBUG level for detailed debugging information.
	DEBUG Level = iota
	// INFO level for general operational information.
	INFO
	// WARN level for warning conditions.
	WARN
	// ERROR level for error conditions.
	ERROR
)

// String returns the string representation of the log level.
func (l Level) String() string {
	switch l {
	case DEBUG:
		return "DEBUG"
	case INFO:
		return "INFO"
	case WARN:
		return "WARN"
	case ERROR:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel parses a string into a Level. Unknown strings map to INFO.
func ParseLevel(s string) Level {
	switch s {
	case "DEBUG", "debug":
		return DEBUG
	case "INFO", "info":
		return INFO
	case "WARN", "warn", "WARNING", "warning":
		return WARN
	case "ERROR", "error":
		return ERROR
	default:
		return INFO
	}
}

// Entry is a single log record with all of its metadata.
type Entry struct {
	Timestamp time.Time              `json:"timestamp"`
	Level     string                 `json:"level"`
	Component string                 `json:"component"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// Logger is a component-scoped structured logger.
type Logger struct {
	component string
	mu        sync.Mutex
}

// Config holds logger configuration options.
type Config struct {
	Level    Level
	Output   io.Writer
	JSONMode bool
}

// DefaultConfig returns the default logger configuration.
func DefaultConfig() Config {
	return Config{
		Level:    INFO,
		Output:   os.Stdout,
		JSONMode: false,
	}
}

var (
	globalConfig = DefaultConfig()
	globalMu     sync.RWMutex
)

// SetGlobalLevel sets the minimum level for all loggers.
func SetGlobalLevel(level Level) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Level = level
}

// SetGlobalOutput redirects all loggers to the given writer.
func SetGlobalOutput(w io.Writer) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.Output = w
}

// SetJSONMode enables or disables JSON output mode.
func SetJSONMode(enabled bool) {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig.JSONMode = enabled
}

// NewLogger creates a new Logger for the specified component.
func NewLogger(component string) *Logger {
	return &Logger{component: component}
}

// log builds an entry from msg and alternating key/value args and writes it.
func (l *Logger) log(level Level, msg string, args ...interface{}) {
	globalMu.RLock()
	minLevel := globalConfig.Level
	output := globalConfig.Output
	jsonMode := globalConfig.JSONMode
	globalMu.RUnlock()

	if level < minLevel {
		return
	}

	entry := Entry{
		Timestamp: time.Now().UTC(),
		Level:     level.String(),
		Component: l.component,
		Message:   msg,
	}

	if len(args) > 0 {
		entry.Fields = make(map[string]interface{}, len(args)/2)
		for i := 0; i+1 < len(args); i += 2 {
			key, ok := args[i].(string)
			if !ok {
				key = fmt.Sprintf("arg%d", i)
			}
			entry.Fields[key] = args[i+1]
		}
		if len(args)%2 != 0 {
			entry.Fields["extra"] = args[len(args)-1]
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if jsonMode {
		writeJSON(output, entry)
	} else {
		writeText(output, entry)
	}
}

func writeJSON(w io.Writer, entry Entry) {
	data, err := json.Marshal(entry)
	if err != nil {
		fmt.Fprintf(w, "ERROR: failed to marshal log entry: %v\n", err)
		return
	}
	fmt.Fprintln(w, string(data))
}

// writeText renders the entry as:
// 2006-01-02T15:04:05.000Z [LEVEL] [component] message key=value ...
// Fields are written in sorted key order so output is deterministic.
func writeText(w io.Writer, entry Entry) {
	timestamp := entry.Timestamp.Format("2006-01-02T15:04:05.000Z")

	var levelColor string
	switch entry.Level {
	case "DEBUG":
		levelColor = "\033[36m"
	case "INFO":
		levelColor = "\033[32m"
	case "WARN":
		levelColor = "\033[33m"
	case "ERROR":
		levelColor = "\033[31m"
	default:
		levelColor = "\033[0m"
	}
	const resetColor = "\033[0m"

	line := fmt.Sprintf("%s %s[%-5s]%s [%s] %s",
		timestamp, levelColor, entry.Level, resetColor, entry.Component, entry.Message)

	if len(entry.Fields) > 0 {
		keys := make([]string, 0, len(entry.Fields))
		for k := range entry.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			line += fmt.Sprintf(" %s=%v", k, entry.Fields[k])
		}
	}

	fmt.Fprintln(w, line)
}

// Debug logs a message at DEBUG level.
func (l *Logger) Debug(msg string, args ...interface{}) {
	l.log(DEBUG, msg, args...)
}

// Info logs a message at INFO level.
func (l *Logger) Info(msg string, args ...interface{}) {
	l.log(INFO, msg, args...)
}

// Warn logs a message at WARN level.
func (l *Logger) Warn(msg string, args ...interface{}) {
	l.log(WARN, msg, args...)
}

// Error logs a message at ERROR level.
func (l *Logger) Error(msg string, args ...interface{}) {
	l.log(ERROR, msg, args...)
}
