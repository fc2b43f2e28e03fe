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
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// LogEntry is a single record handed to a Formatter.
type LogEntry struct {
	Timestamp time.Time
	Level     LogLevel
	Message   string
	Fields    map[string]interface{}
}

// Formatter renders a LogEntry, including the trailing newline.
type Formatter interface {
	Format(entry LogEntry) ([]byte, error)
}

// TextFormatter renders "time [LEVEL] message {k=v, ...}" with fields in
// key order. Empty TimeFormat omits the timestamp.
type TextFormatter struct {
	TimeFormat string
	ShowLevel  bool
}

func (f *TextFormatter) Format(entry LogEntry) ([]byte, error) {
	var b strings.Builder
	sep := func() {
		if b.Len() > 0 {
			b.WriteByte(' ')
		}
	}
	if f.TimeFormat != "" {
		b.WriteString(entry.Timestamp.Format(f.TimeFormat))
	}
	if f.ShowLevel {
		sep()
		fmt.Fprintf(&b, "[%s]", strings.ToUpper(entry.Level.String()))
	}
	sep()
	b.WriteString(entry.Message)
	if len(entry.Fields) > 0 {
		b.WriteString(" {")
		for i, k := range sortedKeys(entry.Fields) {
			if i > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "%s=%v", k, entry.Fields[k])
		}
		b.WriteByte('}')
	}
	b.WriteByte('\n')
	return []byte(b.String()), nil
}

func sortedKeys(fields map[string]interface{}) []string {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type jsonEntry struct {
	Timestamp string                 `json:"timestamp,omitempty"`
	Level     string                 `json:"level"`
	Message   string                 `json:"message"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
}

// JSONFormatter writes one JSON object per entry. TimeFormat defaults to
// time.RFC3339.
type JSONFormatter struct {
	TimeFormat string
}

// Format never fails. A field value that cannot be marshaled is replaced
// by its fmt representation.
func (f *JSONFormatter) Format(entry LogEntry) ([]byte, error) {
	layout := f.TimeFormat
	if layout == "" {
		layout = time.RFC3339
	}
	je := jsonEntry{
		Timestamp: entry.Timestamp.Format(layout),
		Level:     entry.Level.String(),
		Message:   entry.Message,
	}
	if len(entry.Fields) > 0 {
		je.Fields = entry.Fields
	}

	data, err := json.Marshal(je)
	if err != nil {
		printable := make(map[string]interface{}, len(entry.Fields))
		for k, v := range entry.Fields {
			printable[k] = fmt.Sprint(v)
		}
		je.Fields = printable
		if data, err = json.Marshal(je); err != nil {
			return nil, err
		}
	}
	return append(data, '\n'), nil
}
