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

// Package logging is the leveled logger used across the signer, verifier
// and CLI. Library code takes a Logger and never writes to stdout directly;
// a nil Logger falls back to Default.
package logging

import (
	"fmt"
	"strings"
)

// LogLevel is the severity of a log message.
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
	// LevelSilent disables all output.
	LevelSilent
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	case LevelSilent:
		return "silent"
	default:
		return "unknown"
	}
}

// ParseLogLevel parses a level name. Unknown names map to LevelInfo.
func ParseLogLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	case "silent", "none", "off":
		return LevelSilent
	default:
		return LevelInfo
	}
}

// LogFormat selects between human-readable and JSON output.
type LogFormat int

const (
	FormatText LogFormat = iota
	FormatJSON
)

func (f LogFormat) String() string {
	switch f {
	case FormatText:
		return "text"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// ParseLogFormat parses a format name. Unknown names map to FormatText.
func ParseLogFormat(s string) LogFormat {
	if strings.ToLower(strings.TrimSpace(s)) == "json" {
		return FormatJSON
	}
	return FormatText
}

// Backend names the implementation behind a Logger.
type Backend string

const (
	// BackendDefault is the built-in DefaultLogger.
	BackendDefault Backend = "default"
	// BackendZap routes through go.uber.org/zap.
	BackendZap Backend = "zap"
)

// ParseBackend parses a backend name. The empty string selects
// BackendDefault.
func ParseBackend(s string) (Backend, error) {
	switch Backend(strings.ToLower(strings.TrimSpace(s))) {
	case "", BackendDefault:
		return BackendDefault, nil
	case BackendZap:
		return BackendZap, nil
	default:
		return "", fmt.Errorf("unknown log backend %q (supported: default, zap)", s)
	}
}

// Logger is a leveled logger with printf-style and line variants and
// structured fields.
type Logger interface {
	Debug(format string, args ...interface{})
	Debugln(msg string)
	Info(format string, args ...interface{})
	Infoln(msg string)
	Warn(format string, args ...interface{})
	Warnln(msg string)
	Error(format string, args ...interface{})
	Errorln(msg string)

	// GetLevel returns the minimum level that produces output.
	GetLevel() LogLevel
	// Silent reports whether debug output is suppressed.
	Silent() bool

	WithField(key string, value interface{}) Logger
	WithFields(fields map[string]interface{}) Logger
}

// New returns a Logger for the given backend.
func New(backend Backend, opts LoggerOptions) (Logger, error) {
	switch backend {
	case "", BackendDefault:
		return NewLoggerWithOptions(opts), nil
	case BackendZap:
		return NewZapLogger(opts), nil
	default:
		return nil, fmt.Errorf("unknown log backend %q", backend)
	}
}

// Default returns an info-level text logger on stderr.
func Default() Logger {
	return NewLogger(false)
}

// EnsureLogger returns l, or Default when l is nil.
func EnsureLogger(l Logger) Logger {
	if l == nil {
		return Default()
	}
	return l
}
