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

package jws

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrKeyBindingConflict is returned when a protected header carries both
	// a jwk and a kid member.
	ErrKeyBindingConflict = errors.New("jwk and kid header fields are mutually exclusive")
	// ErrKeyBindingMissing is returned when a protected header carries
	// neither a jwk nor a kid member.
	ErrKeyBindingMissing = errors.New("protected header has neither jwk nor kid")
)

// DecodeError reports a protected header member that could not be decoded.
type DecodeError struct {
	// Field is the header member name, e.g. "nonce".
	Field string
	// Err is the underlying decoding error (base64, JSON, ...).
	Err error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// SigningError wraps a failure of the underlying JOSE signer. Fields lists
// the protected header members that were requested for the signature.
type SigningError struct {
	Fields []string
	Err    error
}

func (e *SigningError) Error() string {
	return fmt.Sprintf("failed to sign envelope (protected: %s): %v",
		strings.Join(e.Fields, ","), e.Err)
}

func (e *SigningError) Unwrap() error {
	return e.Err
}
