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

// Package payload turns ACME request objects into the exact bytes placed in
// a JWS payload.
package payload

import (
	"fmt"
	"reflect"

	rawpayload "github.com/0xop89/certbot/internal/payload"
	"github.com/0xop89/certbot/pkg/acme"
)

// Version selects the ACME protocol revision a payload is built for.
type Version int

const (
	// ACMEv1 is the pre-RFC draft protocol.
	ACMEv1 Version = 1
	// ACMEv2 is RFC 8555.
	ACMEv2 Version = 2
)

// ParseVersion converts a command-line protocol version.
func ParseVersion(v int) (Version, error) {
	switch Version(v) {
	case ACMEv1, ACMEv2:
		return Version(v), nil
	default:
		return 0, fmt.Errorf("unsupported ACME version %d (supported: 1, 2)", v)
	}
}

// ResourceMember is the legacy member dropped from ACME v2 payloads.
const ResourceMember = "resource"

var emptyObject = []byte("{}")

// SerializationError is returned when a payload object cannot be encoded as
// JSON.
type SerializationError struct {
	Type string
	Err  error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("failed to serialize %s payload: %v", e.Type, e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Normalize returns the JWS payload for obj:
//   - nothing (nil, or a nil pointer, map, slice or interface) yields an
//     empty payload, as POST-as-GET requires;
//   - for ACME v2 a challenge response, as a value or a pointer, yields {};
//   - for ACME v2 any other object is serialized compactly without its
//     top-level resource member, with members in sorted key order.
//
// Only nil counts as nothing. A non-nil empty map serializes as {} and a
// non-nil empty slice as [], so a POST-as-GET body must be built from nil.
//
// ACME v1 payloads are serialized as-is with two-space indentation.
func Normalize(obj any, version Version) ([]byte, error) {
	if isEmpty(obj) {
		return []byte{}, nil
	}
	if version == ACMEv2 && acme.IsChallengeResponse(obj) {
		return append([]byte(nil), emptyObject...), nil
	}

	data, err := rawpayload.Encode(obj, version != ACMEv2)
	if err != nil {
		return nil, &SerializationError{Type: fmt.Sprintf("%T", obj), Err: err}
	}
	if version != ACMEv2 {
		return data, nil
	}

	data, err = rawpayload.RemoveMember(data, ResourceMember)
	if err != nil {
		return nil, &SerializationError{Type: fmt.Sprintf("%T", obj), Err: err}
	}
	return data, nil
}

func isEmpty(obj any) bool {
	if obj == nil {
		return true
	}
	v := reflect.ValueOf(obj)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface:
		return v.IsNil()
	}
	return false
}
