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
	"encoding/json"
	"testing"
)

func TestEncode(t *testing.T) {
	v := map[string]any{"b": 1, "a": "<x>"}

	got, err := Encode(v, false)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	if string(got) != `{"a":"<x>","b":1}` {
		t.Errorf("Encode() = %s", got)
	}

	got, err = Encode(v, true)
	if err != nil {
		t.Fatalf("Encode() error = %v", err)
	}
	want := "{\n  \"a\": \"<x>\",\n  \"b\": 1\n}"
	if string(got) != want {
		t.Errorf("Encode(indent) = %q, want %q", got, want)
	}
}

func TestRemoveMember(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"present", `{"resource":"x","a":1}`, `{"a":1}`},
		{"absent", `{"b": 2, "a": 1}`, `{"a":1,"b":2}`},
		{"large number kept verbatim", `{"n":12345678901234567890,"resource":"r"}`, `{"n":12345678901234567890}`},
		{"array", `[1, 2]`, `[1,2]`},
		{"null", `null`, `null`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := RemoveMember([]byte(tt.in), "resource")
			if err != nil {
				t.Fatalf("RemoveMember() error = %v", err)
			}
			if string(got) != tt.want {
				t.Errorf("RemoveMember() = %s, want %s", got, tt.want)
			}
		})
	}

	if _, err := RemoveMember([]byte(`{`), "resource"); err == nil {
		t.Error("RemoveMember() expected error for malformed JSON")
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in      string
		want    Shape
		wantErr bool
	}{
		{"", ShapeEmpty, false},
		{"{}", ShapeEmptyObject, false},
		{`{"a":1}`, ShapeObject, false},
		{`[1]`, 0, true},
		{`null`, 0, true},
	}
	for _, tt := range tests {
		got, err := Classify([]byte(tt.in))
		if (err != nil) != tt.wantErr {
			t.Errorf("Classify(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if !tt.wantErr && got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestHasMember(t *testing.T) {
	data, _ := json.Marshal(map[string]string{"resource": "reg"})
	if !HasMember(data, "resource") {
		t.Error("HasMember() = false, want true")
	}
	if HasMember([]byte(`{}`), "resource") || HasMember(nil, "resource") {
		t.Error("HasMember() = true, want false")
	}
}
