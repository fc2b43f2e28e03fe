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

package payload

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Shape classifies a JWS payload the way an ACME server reads it.
type Shape int

const (
	// ShapeEmpty is a zero-length POST-as-GET body.
	ShapeEmpty Shape = iota
	// ShapeEmptyObject is the literal {} sent to acknowledge a challenge.
	ShapeEmptyObject
	// ShapeObject is any other JSON object.
	ShapeObject
)

func (s Shape) String() string {
	switch s {
	case ShapeEmpty:
		return "post-as-get"
	case ShapeEmptyObject:
		return "empty-object"
	case ShapeObject:
		return "object"
	default:
		return fmt.Sprintf("Shape(%d)", int(s))
	}
}

// Encode serializes v without HTML escaping. When indent is set the output
// uses two-space indentation. The trailing newline added by json.Encoder is
// removed.
func Encode(v any, indent bool) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if indent {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// RemoveMember drops the top-level member name from a serialized JSON value
// and re-encodes it compactly with sorted keys. Member values are kept
// verbatim. Values that are not objects are only compacted.
func RemoveMember(data []byte, name string) ([]byte, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil || members == nil {
		var compact bytes.Buffer
		if cerr := json.Compact(&compact, data); cerr != nil {
			return nil, fmt.Errorf("failed to parse JSON: %w", cerr)
		}
		return compact.Bytes(), nil
	}
	delete(members, name)
	return Encode(members, false)
}

// Classify reports the shape of a payload and fails if a non-empty payload
// is not a JSON object.
func Classify(data []byte) (Shape, error) {
	if len(data) == 0 {
		return ShapeEmpty, nil
	}
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return 0, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if members == nil {
		return 0, fmt.Errorf("payload is not a JSON object: null")
	}
	if len(members) == 0 {
		return ShapeEmptyObject, nil
	}
	return ShapeObject, nil
}

// HasMember reports whether the payload object carries a top-level member.
func HasMember(data []byte, name string) bool {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return false
	}
	_, ok := members[name]
	return ok
}
