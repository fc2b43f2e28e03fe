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

// Package jws builds and parses the JSON Web Signature envelopes carried by
// ACME (RFC 8555) requests.
//
// The generic JOSE machinery (signature algorithms, JWK handling, base64url
// framing) is provided by go-jose. This package layers the ACME specific
// protected header on top of it: the nonce, url and kid members, the mutual
// exclusion of kid and an embedded jwk, and the rule that all of them are
// integrity protected.
package jws

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
)

// SupportedAlgorithms lists the signature algorithms accepted when parsing
// envelopes without an explicit allow list.
var SupportedAlgorithms = []jose.SignatureAlgorithm{
	jose.RS256, jose.RS384, jose.RS512,
	jose.PS256, jose.PS384, jose.PS512,
	jose.ES256, jose.ES384, jose.ES512,
	jose.EdDSA,
}

// Envelope is a signed ACME request body. It is immutable once built.
type Envelope struct {
	raw       *jose.JSONWebSignature
	protected string
	payload   []byte
	signature Signature
	binding   KeyBinding
}

func newEnvelope(raw *jose.JSONWebSignature, protected string, payload []byte, sig Signature) (*Envelope, error) {
	binding, err := keyBindingFor(sig.protected)
	if err != nil {
		return nil, err
	}
	return &Envelope{
		raw:       raw,
		protected: protected,
		payload:   append([]byte(nil), payload...),
		signature: sig,
		binding:   binding,
	}, nil
}

// ParseEnvelope parses a compact or JSON (flattened or general with a single
// signature) serialization. algs restricts the accepted signature
// algorithms; nil means SupportedAlgorithms.
//
// The signature is not verified; call Verify for that.
func ParseEnvelope(data []byte, algs []jose.SignatureAlgorithm) (*Envelope, error) {
	if len(algs) == 0 {
		algs = SupportedAlgorithms
	}
	data = bytes.TrimSpace(data)

	raw, err := jose.ParseSigned(string(data), algs)
	if err != nil {
		return nil, fmt.Errorf("failed to parse envelope: %w", err)
	}
	if len(raw.Signatures) == 0 {
		return nil, fmt.Errorf("no signatures found in envelope")
	}
	if len(raw.Signatures) > 1 {
		return nil, fmt.Errorf("multiple signatures not supported")
	}

	protected, unprotected, err := splitProtected(data)
	if err != nil {
		return nil, err
	}

	header, err := decodeProtected(protected)
	if err != nil {
		return nil, err
	}

	sig := Signature{
		protected: header,
		raw:       raw.Signatures[0].Signature,
	}
	if len(unprotected) > 0 {
		var h Header
		if err := json.Unmarshal(unprotected, &h); err != nil {
			return nil, err
		}
		sig.unprotected = &h
	}

	return newEnvelope(raw, protected, raw.UnsafePayloadWithoutVerification(), sig)
}

// Header returns a copy of the decoded protected header.
func (e *Envelope) Header() Header {
	return e.signature.Protected()
}

// Signature returns the single signature of the envelope.
func (e *Envelope) Signature() Signature {
	return e.signature
}

// KeyBinding reports whether the envelope references an account (KeyRef)
// or embeds its public key (EmbeddedKey).
func (e *Envelope) KeyBinding() KeyBinding {
	return e.binding
}

// Payload returns a copy of the signed payload bytes.
func (e *Envelope) Payload() []byte {
	return append([]byte(nil), e.payload...)
}

// ProtectedSegment returns the base64url encoded protected header exactly as
// it was signed.
func (e *Envelope) ProtectedSegment() string {
	return e.protected
}

// CompactSerialize returns the "protected.payload.signature" form.
func (e *Envelope) CompactSerialize() (string, error) {
	return e.raw.CompactSerialize()
}

// FullSerialize returns the flattened JSON serialization ACME servers expect
// as a request body.
func (e *Envelope) FullSerialize() string {
	return e.raw.FullSerialize()
}

// Verify checks the signature with the given public key and returns the
// payload.
func (e *Envelope) Verify(key any) ([]byte, error) {
	return e.raw.Verify(key)
}

// JSONWebSignature exposes the underlying go-jose object. Callers must not
// modify it.
func (e *Envelope) JSONWebSignature() *jose.JSONWebSignature {
	return e.raw
}

// rawSerialization covers both JSON serializations.
type rawSerialization struct {
	Protected  string          `json:"protected"`
	Header     json.RawMessage `json:"header"`
	Signature  string          `json:"signature"`
	Signatures []struct {
		Protected string          `json:"protected"`
		Header    json.RawMessage `json:"header"`
	} `json:"signatures"`
}

// splitProtected extracts the protected segment and the unprotected header
// from a serialized envelope.
func splitProtected(data []byte) (string, json.RawMessage, error) {
	if !bytes.HasPrefix(data, []byte("{")) {
		parts := strings.Split(string(data), ".")
		if len(parts) != 3 {
			return "", nil, fmt.Errorf("compact envelope must have 3 parts, got %d", len(parts))
		}
		return parts[0], nil, nil
	}

	var rs rawSerialization
	if err := json.Unmarshal(data, &rs); err != nil {
		return "", nil, fmt.Errorf("failed to parse envelope JSON: %w", err)
	}
	if len(rs.Signatures) == 1 {
		return rs.Signatures[0].Protected, rs.Signatures[0].Header, nil
	}
	return rs.Protected, rs.Header, nil
}

func decodeProtected(segment string) (Header, error) {
	if segment == "" {
		return Header{}, fmt.Errorf("envelope has no protected header")
	}
	data, err := base64.RawURLEncoding.DecodeString(segment)
	if err != nil {
		return Header{}, &DecodeError{Field: "protected", Err: err}
	}
	var h Header
	if err := json.Unmarshal(data, &h); err != nil {
		return Header{}, err
	}
	return h, nil
}
