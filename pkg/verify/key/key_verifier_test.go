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

package key

import (
	"context"
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/verify"
)

const testURL = "https://acme.test/acme/new-order"

func writeFile(t *testing.T, dir, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func writePublicKey(t *testing.T, dir string, pub crypto.PublicKey) string {
	t.Helper()
	pemBytes, err := cryptoutils.MarshalPublicKeyToPEM(pub)
	if err != nil {
		t.Fatalf("failed to marshal public key: %v", err)
	}
	return writeFile(t, dir, "key.pub", pemBytes)
}

func writeEnvelope(t *testing.T, dir string, env *jws.Envelope) string {
	t.Helper()
	return writeFile(t, dir, "envelope.json", []byte(env.FullSerialize()))
}

func sign(t *testing.T, payload []byte, key any, alg jose.SignatureAlgorithm, kid string) *jws.Envelope {
	t.Helper()
	env, err := jws.Sign(payload, key, alg, []byte("nonce"), testURL, kid)
	if err != nil {
		t.Fatalf("jws.Sign() error = %v", err)
	}
	return env
}

func TestKeyVerifierEmbeddedKey(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	_, edKey, _ := ed25519.GenerateKey(rand.Reader)

	tests := []struct {
		name string
		key  crypto.Signer
		alg  jose.SignatureAlgorithm
	}{
		{"ES256", ecKey, jose.ES256},
		{"RS256", rsaKey, jose.RS256},
		{"EdDSA", edKey, jose.EdDSA},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			payload := []byte(`{"identifiers":[{"type":"dns","value":"example.org"}]}`)
			envPath := writeEnvelope(t, dir, sign(t, payload, tt.key, tt.alg, ""))

			for _, withKey := range []bool{false, true} {
				opts := KeyVerifierOptions{
					SignaturePath: envPath,
					ExpectedURL:   testURL,
					CrossCheck:    true,
				}
				if withKey {
					opts.PublicKeyPath = writePublicKey(t, dir, tt.key.Public())
				}
				kv, err := NewKeyVerifier(opts)
				if err != nil {
					t.Fatalf("NewKeyVerifier() error = %v", err)
				}
				result, err := kv.Verify(context.Background())
				if err != nil {
					t.Fatalf("Verify(withKey=%v) error = %v", withKey, err)
				}
				if !result.Verified || string(result.Payload) != string(payload) {
					t.Errorf("Verify(withKey=%v) = %+v", withKey, result)
				}
				if len(result.Warnings) != 0 {
					t.Errorf("unexpected warnings: %v", result.Warnings)
				}
			}
		})
	}
}

func TestKeyVerifierKeyID(t *testing.T) {
	dir := t.TempDir()
	ecKey, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	envPath := writeEnvelope(t, dir, sign(t, nil, ecKey, jose.ES384, "https://acme.test/acct/7"))

	kv, err := NewKeyVerifier(KeyVerifierOptions{SignaturePath: envPath})
	if err != nil {
		t.Fatalf("NewKeyVerifier() error = %v", err)
	}
	if _, err := kv.Verify(context.Background()); !verify.IsType(err, verify.ErrTypeConfiguration) {
		t.Errorf("Verify() without key error = %v, want ConfigurationError", err)
	}

	kv, err = NewKeyVerifier(KeyVerifierOptions{
		SignaturePath: envPath,
		PublicKeyPath: writePublicKey(t, dir, ecKey.Public()),
	})
	if err != nil {
		t.Fatalf("NewKeyVerifier() error = %v", err)
	}
	result, err := kv.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(result.Payload) != 0 {
		t.Errorf("payload = %q, want empty", result.Payload)
	}
}

func TestKeyVerifierFailures(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	otherKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	payload := []byte(`{"csr":"MIIB"}`)

	tampered := func(t *testing.T) []byte {
		var m map[string]any
		if err := json.Unmarshal([]byte(sign(t, payload, ecKey, jose.ES256, "").FullSerialize()), &m); err != nil {
			t.Fatal(err)
		}
		m["payload"] = base64.RawURLEncoding.EncodeToString([]byte(`{"csr":"MIIC"}`))
		data, _ := json.Marshal(m)
		return data
	}
	noNonce := func(t *testing.T) []byte {
		env, err := jws.Sign(payload, ecKey, jose.ES256, nil, testURL, "")
		if err != nil {
			t.Fatal(err)
		}
		return []byte(env.FullSerialize())
	}

	tests := []struct {
		name        string
		envelope    func(t *testing.T) []byte
		publicKey   crypto.PublicKey
		expectedURL string
		want        verify.ErrorType
	}{
		{
			name:     "garbage",
			envelope: func(*testing.T) []byte { return []byte("not a jws") },
			want:     verify.ErrTypeInvalidFormat,
		},
		{
			name:     "tampered payload",
			envelope: tampered,
			want:     verify.ErrTypeSignatureInvalid,
		},
		{
			name:     "missing nonce",
			envelope: noNonce,
			want:     verify.ErrTypeHeaderInvalid,
		},
		{
			name: "wrong url",
			envelope: func(t *testing.T) []byte {
				return []byte(sign(t, payload, ecKey, jose.ES256, "").FullSerialize())
			},
			expectedURL: "https://acme.test/acme/finalize/1",
			want:        verify.ErrTypeHeaderInvalid,
		},
		{
			name: "embedded key mismatch",
			envelope: func(t *testing.T) []byte {
				return []byte(sign(t, payload, ecKey, jose.ES256, "").FullSerialize())
			},
			publicKey: otherKey.Public(),
			want:      verify.ErrTypeKeyMismatch,
		},
		{
			name: "kid with wrong key",
			envelope: func(t *testing.T) []byte {
				return []byte(sign(t, payload, ecKey, jose.ES256, "https://acme.test/acct/1").FullSerialize())
			},
			publicKey: otherKey.Public(),
			want:      verify.ErrTypeSignatureInvalid,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			opts := KeyVerifierOptions{
				SignaturePath: writeFile(t, dir, "envelope.json", tt.envelope(t)),
				ExpectedURL:   tt.expectedURL,
			}
			if tt.publicKey != nil {
				opts.PublicKeyPath = writePublicKey(t, dir, tt.publicKey)
			}
			kv, err := NewKeyVerifier(opts)
			if err != nil {
				t.Fatalf("NewKeyVerifier() error = %v", err)
			}
			result, err := kv.Verify(context.Background())
			if err == nil || result.Verified {
				t.Fatalf("Verify() = %+v, want failure", result)
			}
			if !verify.IsType(err, tt.want) {
				t.Errorf("Verify() error = %v, want type %s", err, tt.want)
			}
		})
	}
}

func TestKeyVerifierResourceWarning(t *testing.T) {
	dir := t.TempDir()
	ecKey, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	payload := []byte(`{"resource":"new-reg","contact":["mailto:admin@example.org"]}`)
	envPath := writeEnvelope(t, dir, sign(t, payload, ecKey, jose.ES256, ""))

	kv, err := NewKeyVerifier(KeyVerifierOptions{SignaturePath: envPath})
	if err != nil {
		t.Fatalf("NewKeyVerifier() error = %v", err)
	}
	result, err := kv.Verify(context.Background())
	if err != nil {
		t.Fatalf("Verify() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Errorf("Warnings = %v, want one resource warning", result.Warnings)
	}
}

func TestNewKeyVerifierValidation(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, "envelope.json", []byte("{}"))

	tests := []struct {
		name string
		opts KeyVerifierOptions
	}{
		{"missing envelope", KeyVerifierOptions{SignaturePath: filepath.Join(dir, "missing.json")}},
		{"missing public key", KeyVerifierOptions{SignaturePath: envPath, PublicKeyPath: filepath.Join(dir, "missing.pub")}},
		{"relative expected url", KeyVerifierOptions{SignaturePath: envPath, ExpectedURL: "/acme/new-order"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewKeyVerifier(tt.opts); err == nil {
				t.Error("NewKeyVerifier() expected error")
			}
		})
	}
}

func TestNewVerifierBadKey(t *testing.T) {
	path := writeFile(t, t.TempDir(), "key.pub", []byte("not a key"))
	_, err := NewVerifier(KeyVerifierConfig{PublicKeyPath: path})
	if !verify.IsType(err, verify.ErrTypeConfiguration) {
		t.Errorf("NewVerifier() error = %v, want ConfigurationError", err)
	}
}
