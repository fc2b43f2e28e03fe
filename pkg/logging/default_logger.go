// Copyright 2025 The Sigstore Authors.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package logging

import (
	"fmt"
	"io"
	"maps"
	"os"
	"sync"
	"time"
)

var _ Logger = (*DefaultLogger)(nil)

// LoggerOptions configures a DefaultLogger or a zap-backed logger.
type LoggerOptions struct {
	Level LogLevel
	// Format is ignored when Formatter is set.
	Format    LogFormat
	Formatter Formatter
	// Output defaults to os.Stderr so that envelopes and payloads written
	// to stdout stay machine-readable.
	Output io.Writer
	// TimeFormat and ShowLevel shape the derived formatter. Empty
	// TimeFormat omits text timestamps.
	TimeFormat string
	ShowLevel  bool
}

// DefaultLoggerOptions returns info-level text logging to stderr.
func DefaultLoggerOptions() LoggerOptions {
	return LoggerOptions{
		Level:  LevelInfo,
		Format: FormatText,
		Output: os.Stderr,
	}
}

func (o LoggerOptions) output() io.Writer {
	if o.Output == nil {
		return os.Stderr
	}
	return o.Output
}

func (o LoggerOptions) formatter() Formatter {
	if o.Formatter != nil {
		return o.Formatter
	}
	if o.Format == FormatJSON {
		return &JSONFormatter{TimeFormat: o.TimeFormat}
	}
	return &TextFormatter{TimeFormat: o.TimeFormat, ShowLevel: o.ShowLevel}
}

// sink is shared by a logger and every logger derived from it.
type sink struct {
	mu        sync.Mutex
	level     LogLevel
	formatter Formatter
	out       io.Writer
}

// DefaultLogger writes formatted entries to an io.Writer. Loggers derived
// with WithField or WithFields write through the same sink, so SetLevel
// applies to all of them and concurrent writes never interleave.
type DefaultLogger struct {
	sink   *sink
	fields map[string]interface{}
}

// NewLogger returns a text logger on stderr at LevelDebug when verbose is
// set and LevelInfo otherwise.
func NewLogger(verbose bool) *DefaultLogger {
	opts := DefaultLoggerOptions()
	if verbose {
		opts.Level = LevelDebug
	}
	return NewLoggerWithOptions(opts)
}

// NewLoggerWithOptions creates a DefaultLogger from opts.
func NewLoggerWithOptions(opts LoggerOptions) *DefaultLogger {
	return &DefaultLogger{sink: &sink{
		level:     opts.Level,
		formatter: opts.formatter(),
		out:       opts.output(),
	}}
}

// WithFields returns a logger that adds fields to every entry. The
// receiver is not modified.
func (l *DefaultLogger) WithFields(fields map[string]interface{}) Logger {
	merged := make(map[string]interface{}, len(l.fields)+len(fields))
	maps.Copy(merged, l.fields)
	maps.Copy(merged, fields)
	return &DefaultLogger{sink: l.sink, fields: merged}
}

func (l *DefaultLogger) WithField(key string, value interface{}) Logger {
	return l.WithFields(map[string]interface{}{key: value})
}

// SetLevel sets the minimum level for l and every logger sharing its sink.
func (l *DefaultLogger) SetLevel(level LogLevel) {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	l.sink.level = level
}

func (l *DefaultLogger) GetLevel() LogLevel {
	l.sink.mu.Lock()
	defer l.sink.mu.Unlock()
	return l.sink.level
}

// Silent reports whether debug output is suppressed.
func (l *DefaultLogger) Silent() bool {
	return l.GetLevel() > LevelDebug
}

// IsLevelEnabled reports whether an entry at level would be written.
func (l *DefaultLogger) IsLevelEnabled(level LogLevel) bool {
	return level >= l.GetLevel()
}

func (l *DefaultLogger) write(level LogLevel, msg string) {
	s := l.sink
	s.mu.Lock()
	defer s.mu.Unlock()
	if level < s.level {
		return
	}
	data, err := s.formatter.Format(LogEntry{
		Timestamp: time.Now(),
		Level:     level,
		Message:   msg,
		Fields:    l.fields,
	})
	if err != nil {
		fmt.Fprintf(s.out, "logging error: %v\n", err)
		return
	}
	_, _ = s.out.Write(data)
}

func (l *DefaultLogger) logf(level LogLevel, format string, args []interface{}) {
	if !l.IsLevelEnabled(level) {
		return
	}
	l.write(level, fmt.Sprintf(format, args...))
}

func (l *DefaultLogger) Debug(format string, args ...interface{}) { l.logf(LevelDebug, format, args) }
func (l *DefaultLogger) Info(format string, args ...interface{})  { l.logf(LevelInfo, format, args) }
func (l *DefaultLogger) Warn(format string, args ...interface{})  { l.logf(LevelWarn, format, args) }
func (l *DefaultLogger) Error(format string, args ...interface{}) { l.logf(LevelError, format, args) }

func (l *DefaultLogger) Debugln(msg string) { l.write(LevelDebug, msg) }
func (l *DefaultLogger) Infoln(msg string)  { l.write(LevelInfo, msg) }
func (l *DefaultLogger) Warnln(msg string)  { l.write(LevelWarn, msg) }
func (l *DefaultLogger) Errorln(msg string) { l.write(LevelError, msg) }
