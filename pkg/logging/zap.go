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
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var _ Logger = (*ZapLogger)(nil)

// ZapLogger adapts a zap.SugaredLogger to Logger.
type ZapLogger struct {
	sugar *zap.SugaredLogger
	level LogLevel
}

// NewZapLogger builds a zap logger writing JSON or console-encoded entries
// to opts.Output. opts.Formatter is ignored.
func NewZapLogger(opts LoggerOptions) *ZapLogger {
	if opts.Level >= LevelSilent {
		return WrapZap(zap.NewNop(), LevelSilent)
	}

	out := opts.output()

	encCfg := zap.NewProductionEncoderConfig()
	encCfg.TimeKey = "timestamp"
	encCfg.MessageKey = "message"
	encCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	var enc zapcore.Encoder
	if opts.Format == FormatJSON {
		enc = zapcore.NewJSONEncoder(encCfg)
	} else {
		if opts.TimeFormat == "" {
			encCfg.TimeKey = ""
		} else {
			encCfg.EncodeTime = zapcore.TimeEncoderOfLayout(opts.TimeFormat)
		}
		if !opts.ShowLevel {
			encCfg.LevelKey = ""
		}
		encCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(out), zap.NewAtomicLevelAt(zapLevel(opts.Level)))
	return WrapZap(zap.New(core), opts.Level)
}

// WrapZap adapts an existing zap logger. Messages below level are dropped
// before they reach zap.
func WrapZap(l *zap.Logger, level LogLevel) *ZapLogger {
	return &ZapLogger{sugar: l.Sugar(), level: level}
}

func zapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func (z *ZapLogger) enabled(level LogLevel) bool {
	return level >= z.level && z.level != LevelSilent
}

func (z *ZapLogger) Debug(format string, args ...interface{}) {
	if z.enabled(LevelDebug) {
		z.sugar.Debugf(format, args...)
	}
}

func (z *ZapLogger) Debugln(msg string) {
	if z.enabled(LevelDebug) {
		z.sugar.Debug(msg)
	}
}

func (z *ZapLogger) Info(format string, args ...interface{}) {
	if z.enabled(LevelInfo) {
		z.sugar.Infof(format, args...)
	}
}

func (z *ZapLogger) Infoln(msg string) {
	if z.enabled(LevelInfo) {
		z.sugar.Info(msg)
	}
}

func (z *ZapLogger) Warn(format string, args ...interface{}) {
	if z.enabled(LevelWarn) {
		z.sugar.Warnf(format, args...)
	}
}

func (z *ZapLogger) Warnln(msg string) {
	if z.enabled(LevelWarn) {
		z.sugar.Warn(msg)
	}
}

func (z *ZapLogger) Error(format string, args ...interface{}) {
	if z.enabled(LevelError) {
		z.sugar.Errorf(format, args...)
	}
}

func (z *ZapLogger) Errorln(msg string) {
	if z.enabled(LevelError) {
		z.sugar.Error(msg)
	}
}

func (z *ZapLogger) GetLevel() LogLevel {
	return z.level
}

func (z *ZapLogger) Silent() bool {
	return z.level > LevelDebug
}

func (z *ZapLogger) WithField(key string, value interface{}) Logger {
	return &ZapLogger{sugar: z.sugar.With(key, value), level: z.level}
}

func (z *ZapLogger) WithFields(fields map[string]interface{}) Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	kv := make([]interface{}, 0, 2*len(keys))
	for _, k := range keys {
		kv = append(kv, k, fields[k])
	}
	return &ZapLogger{sugar: z.sugar.With(kv...), level: z.level}
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.sugar.Sync()
}
