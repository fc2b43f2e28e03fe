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

package verify

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/go-jose/go-jose/v4"

	"github.com/0xop89/certbot/pkg/jws"
)

func TestCheckProtocolHeader(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	jwk := &jose.JSONWebKey{Key: ecKey.Public()}
	base := func() jws.Header {
		return jws.Header{
			BaseHeader: jws.BaseHeader{Algorithm: jose.ES256},
			Nonce:      []byte("n"),
			URL:        "https://acme.test/new-order",
			KeyID:      "https://acme.test/acct/1",
		}
	}

	tests := []struct {
		name     string
		mutate   func(*jws.Header)
		expected string
		wantErr  bool
		wantPath string
	}{
		{name: "kid", mutate: func(*jws.Header) {}},
		{name: "jwk", mutate: func(h *jws.Header) { h.KeyID = ""; h.JSONWebKey = jwk }},
		{name: "matching url", mutate: func(*jws.Header) {}, expected: "https://acme.test/new-order"},
		{name: "missing nonce", mutate: func(h *jws.Header) { h.Nonce = nil }, wantErr: true, wantPath: jws.HeaderNonce},
		{name: "missing url", mutate: func(h *jws.Header) { h.URL = "" }, wantErr: true, wantPath: jws.HeaderURL},
		{name: "wrong url", mutate: func(*jws.Header) {}, expected: "https://acme.test/finalize", wantErr: true, wantPath: jws.HeaderURL},
		{name: "both bindings", mutate: func(h *jws.Header) { h.JSONWebKey = jwk }, wantErr: true},
		{name: "no binding", mutate: func(h *jws.Header) { h.KeyID = "" }, wantErr: true},
		{
			name: "extra member",
			mutate: func(h *jws.Header) {
				h.Extra = map[string]json.RawMessage{"typ": json.RawMessage(`"JWT"`)}
			},
			wantErr:  true,
			wantPath: "typ",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := base()
			tt.mutate(&h)
			err := CheckProtocolHeader(h, tt.expected)
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckProtocolHeader() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr {
				return
			}
			var verr *VerificationError
			if !errors.As(err, &verr) || verr.Type != ErrTypeHeaderInvalid {
				t.Fatalf("error = %v, want InvalidHeader", err)
			}
			if tt.wantPath != "" && verr.Path != tt.wantPath {
				t.Errorf("Path = %q, want %q", verr.Path, tt.wantPath)
			}
		})
	}
}

func TestCheckProtocolHeaderBindingErrors(t *testing.T) {
	h := jws.Header{Nonce: []byte("n"), URL: "https://acme.test/x"}
	if err := CheckProtocolHeader(h, ""); !errors.Is(err, jws.ErrKeyBindingMissing) {
		t.Errorf("error = %v, want ErrKeyBindingMissing", err)
	}
}

func TestCheckAlgorithm(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	tests := []struct {
		name    string
		key     *jose.JSONWebKey
		alg     jose.SignatureAlgorithm
		wantErr bool
	}{
		{"match", &jose.JSONWebKey{Key: ecKey.Public()}, jose.ES384, false},
		{"wrong curve", &jose.JSONWebKey{Key: ecKey.Public()}, jose.ES256, true},
		{"rsa alg", &jose.JSONWebKey{Key: ecKey.Public()}, jose.RS256, true},
		{"jwk alg disagrees", &jose.JSONWebKey{Key: ecKey.Public(), Algorithm: "ES512"}, jose.ES384, true},
		{"nil key", nil, jose.ES384, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := CheckAlgorithm(tt.key, tt.alg); (err != nil) != tt.wantErr {
				t.Errorf("CheckAlgorithm() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestVerificationError(t *testing.T) {
	cause := errors.New("boom")
	tests := []struct {
		err  *VerificationError
		want string
	}{
		{NewVerificationError(ErrTypeIO, "read failed", nil), "IOError: read failed"},
		{NewVerificationError(ErrTypeIO, "read failed", cause), "IOError: read failed: boom"},
		{NewVerificationErrorWithPath(ErrTypeFileNotFound, "env.json", "missing", nil), "FileNotFound: missing (path: env.json)"},
		{NewVerificationErrorWithPath(ErrTypeKeyMismatch, "jwk", "differs", cause), "KeyMismatch: differs (path: jwk): boom"},
	}
	for _, tt := range tests {
		if got := tt.err.Error(); got != tt.want {
			t.Errorf("Error() = %q, want %q", got, tt.want)
		}
	}

	wrapped := fmt.Errorf("outer: %w", NewVerificationError(ErrTypeSignatureInvalid, "bad", cause))
	if !IsType(wrapped, ErrTypeSignatureInvalid) {
		t.Error("IsType() = false for wrapped error")
	}
	if IsType(wrapped, ErrTypeIO) {
		t.Error("IsType() = true for other type")
	}
	if !errors.Is(wrapped, cause) {
		t.Error("errors.Is() does not reach the cause")
	}
	if IsType(nil, ErrTypeUnknown) {
		t.Error("IsType(nil) = true")
	}
	if ErrorType(99).String() != "UnknownError" {
		t.Errorf("String() = %s", ErrorType(99))
	}
}
