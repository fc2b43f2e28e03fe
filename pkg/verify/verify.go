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

// Package verify checks signed ACME envelopes the way an ACME server
// would before acting on them.
package verify

import (
	"context"
	"fmt"

	"github.com/go-jose/go-jose/v4"

	icrypto "github.com/0xop89/certbot/internal/crypto"
	"github.com/0xop89/certbot/pkg/jws"
)

// Result represents the outcome of a verification operation.
type Result struct {
	Verified bool   // Verified indicates whether the verification succeeded.
	Message  string // Message contains a human-readable description of the result.
	// Payload is the verified request body.
	Payload []byte
	// Warnings lists findings that do not fail verification.
	Warnings []string
}

// EnvelopeVerifier performs complete envelope verification: reading the
// envelope, checking its signature and its ACME header rules.
type EnvelopeVerifier interface {
	Verify(ctx context.Context) (Result, error)
}

// CheckProtocolHeader applies the header rules an ACME server enforces on
// every POST: a nonce, a url equal to expectedURL (when non-empty) and
// exactly one of jwk and kid.
func CheckProtocolHeader(h jws.Header, expectedURL string) error {
	if len(h.Nonce) == 0 {
		return NewVerificationErrorWithPath(ErrTypeHeaderInvalid, jws.HeaderNonce,
			"JWS has no anti-replay nonce", nil)
	}
	if h.URL == "" {
		return NewVerificationErrorWithPath(ErrTypeHeaderInvalid, jws.HeaderURL,
			"JWS header parameter 'url' required", nil)
	}
	if expectedURL != "" && h.URL != expectedURL {
		return NewVerificationErrorWithPath(ErrTypeHeaderInvalid, jws.HeaderURL,
			fmt.Sprintf("JWS header parameter 'url' incorrect. Expected %q got %q", expectedURL, h.URL), nil)
	}
	switch {
	case h.KeyID != "" && h.JSONWebKey != nil:
		return NewVerificationError(ErrTypeHeaderInvalid,
			"jwk and kid header fields are mutually exclusive", jws.ErrKeyBindingConflict)
	case h.KeyID == "" && h.JSONWebKey == nil:
		return NewVerificationError(ErrTypeHeaderInvalid,
			"JWS header has neither jwk nor kid", jws.ErrKeyBindingMissing)
	}
	for _, name := range h.Fields() {
		if !isProtectedField(name) {
			return NewVerificationErrorWithPath(ErrTypeHeaderInvalid, name,
				"unexpected protected header member", nil)
		}
	}
	return nil
}

func isProtectedField(name string) bool {
	for _, f := range jws.ProtectedFields {
		if f == name {
			return true
		}
	}
	return false
}

// CheckAlgorithm checks that alg is the algorithm family the key signs
// with, and that the key's own alg, if set, agrees.
func CheckAlgorithm(key *jose.JSONWebKey, alg jose.SignatureAlgorithm) error {
	if key == nil {
		return NewVerificationError(ErrTypeConfiguration, "no key to check algorithm against", nil)
	}
	if err := icrypto.CheckAlgorithm(key.Key, alg); err != nil {
		return NewVerificationErrorWithPath(ErrTypeHeaderInvalid, jws.HeaderAlgorithm,
			fmt.Sprintf("signature algorithm %s does not match key", alg), err)
	}
	if key.Algorithm != "" && key.Algorithm != string(alg) {
		return NewVerificationErrorWithPath(ErrTypeHeaderInvalid, jws.HeaderAlgorithm,
			fmt.Sprintf("algorithm %s on JWK is unacceptable", key.Algorithm), nil)
	}
	return nil
}
