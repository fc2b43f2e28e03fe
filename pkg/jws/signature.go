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
	"github.com/go-jose/go-jose/v4"
)

// Signature pairs a decoded protected header with the raw signature bytes
// and, for parsed envelopes, the optional unprotected header.
type Signature struct {
	protected   Header
	unprotected *Header
	raw         []byte
}

// Protected returns a copy of the protected header.
func (s Signature) Protected() Header {
	return s.protected.Clone()
}

// Unprotected returns a copy of the unprotected header, if the envelope
// carried one.
func (s Signature) Unprotected() (Header, bool) {
	if s.unprotected == nil {
		return Header{}, false
	}
	return s.unprotected.Clone(), true
}

// Bytes returns a copy of the raw signature.
func (s Signature) Bytes() []byte {
	return append([]byte(nil), s.raw...)
}

// KeyBinding identifies how an envelope names its signing key: by
// reference to a registered account (KeyRef) or by embedding the public key
// (EmbeddedKey). Exactly one of the two is ever present.
type KeyBinding interface {
	// Member returns the protected header member carrying the binding.
	Member() string
	isKeyBinding()
}

// KeyRef binds an envelope to a previously registered account key.
type KeyRef struct {
	KeyID string
}

// Member implements KeyBinding.
func (KeyRef) Member() string { return HeaderKeyID }
func (KeyRef) isKeyBinding()  {}

// EmbeddedKey binds an envelope to the public key it carries.
type EmbeddedKey struct {
	JWK *jose.JSONWebKey
}

// Member implements KeyBinding.
func (EmbeddedKey) Member() string { return HeaderJWK }
func (EmbeddedKey) isKeyBinding()  {}

// keyBindingFor derives the binding from a protected header.
func keyBindingFor(h Header) (KeyBinding, error) {
	switch {
	case h.KeyID != "" && h.JSONWebKey != nil:
		return nil, ErrKeyBindingConflict
	case h.KeyID != "":
		return KeyRef{KeyID: h.KeyID}, nil
	case h.JSONWebKey != nil:
		return EmbeddedKey{JWK: h.JSONWebKey}, nil
	default:
		return nil, ErrKeyBindingMissing
	}
}
