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

package signing

import (
	"context"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-jose/go-jose/v4"
	"github.com/sigstore/sigstore/pkg/cryptoutils"

	"github.com/0xop89/certbot/pkg/acme"
	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/payload"
)

func writePEM(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadPrivateKeyFromPEM(t *testing.T) {
	ecKey, _ := ecdsa.GenerateKey(elliptic.P384(), rand.Reader)
	rsaKey, _ := rsa.GenerateKey(rand.Reader, 2048)
	_, edKey, _ := ed25519.GenerateKey(rand.Reader)

	for name, key := range map[string]any{"ecdsa": ecKey, "rsa": rsaKey, "ed25519": edKey} {
		t.Run(name, func(t *testing.T) {
			pemBytes, err := cryptoutils.MarshalPrivateKeyToPEM(key)
			if err != nil {
				t.Fatalf("MarshalPrivateKeyToPEM() error = %v", err)
			}
			signer, err := LoadPrivateKeyFromPEM(writePEM(t, "key.pem", pemBytes), "")
			if err != nil {
				t.Fatalf("LoadPrivateKeyFromPEM() error = %v", err)
			}
			if signer.Public() == nil {
				t.Error("loaded signer has no public key")
			}
		})
	}

	if _, err := LoadPrivateKeyFromPEM(writePEM(t, "bad.pem", []byte("not a key")), ""); err == nil {
		t.Error("LoadPrivateKeyFromPEM() expected error for garbage")
	}
	if _, err := LoadPrivateKeyFromPEM(filepath.Join(t.TempDir(), "missing.pem"), ""); err == nil {
		t.Error("LoadPrivateKeyFromPEM() expected error for missing file")
	}
}

func TestLoadPublicKeyFromPEM(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	pemStr, err := GetPublicKeyPEM(key.Public())
	if err != nil {
		t.Fatalf("GetPublicKeyPEM() error = %v", err)
	}
	if !strings.HasPrefix(pemStr, "-----BEGIN PUBLIC KEY-----") {
		t.Errorf("GetPublicKeyPEM() = %q", pemStr)
	}

	pub, err := LoadPublicKeyFromPEM(writePEM(t, "pub.pem", []byte(pemStr)))
	if err != nil {
		t.Fatalf("LoadPublicKeyFromPEM() error = %v", err)
	}
	if !key.PublicKey.Equal(pub) {
		t.Error("loaded public key differs")
	}
}

func TestCheckPublicKey(t *testing.T) {
	p224, _ := ecdsa.GenerateKey(elliptic.P224(), rand.Reader)
	if _, err := CheckPublicKey(p224.Public()); err == nil {
		t.Error("CheckPublicKey(P-224) expected error")
	}
	if _, err := CheckPublicKey([]byte("x")); err == nil {
		t.Error("CheckPublicKey([]byte) expected error")
	}
}

func TestThumbprintAndKeyHint(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

	thumb, err := Thumbprint(key.Public())
	if err != nil {
		t.Fatalf("Thumbprint() error = %v", err)
	}
	keyAuthz, err := acme.KeyAuthorization("tok", &jose.JSONWebKey{Key: key.Public()})
	if err != nil {
		t.Fatalf("KeyAuthorization() error = %v", err)
	}
	if keyAuthz != "tok."+thumb {
		t.Errorf("KeyAuthorization() = %q, want tok.%s", keyAuthz, thumb)
	}

	hint, err := ComputeKeyHint(key.Public())
	if err != nil {
		t.Fatalf("ComputeKeyHint() error = %v", err)
	}
	if len(hint) != 64 {
		t.Errorf("len(hint) = %d, want 64", len(hint))
	}
}

func TestRequestValidate(t *testing.T) {
	valid := Request{Nonce: []byte("n"), URL: "https://acme.test/new-order"}
	if err := valid.Validate(); err != nil {
		t.Fatalf("Validate() error = %v", err)
	}

	tests := []struct {
		name string
		req  Request
	}{
		{"missing nonce", Request{URL: "https://acme.test/x"}},
		{"missing url", Request{Nonce: []byte("n")}},
		{"relative url", Request{Nonce: []byte("n"), URL: "/x"}},
		{"bad version", Request{Nonce: []byte("n"), URL: "https://acme.test/x", Version: 3}},
	}
	for _, tt := range tests {
		if err := tt.req.Validate(); err == nil {
			t.Errorf("%s: Validate() expected error", tt.name)
		}
	}
}

func TestSignRequest(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	order := &acme.NewOrder{
		Resource:    acme.ResourceNewOrder,
		Identifiers: []acme.Identifier{{Type: "dns", Value: "example.org"}},
	}
	req := Request{
		Message: order,
		Nonce:   []byte("nonce-1"),
		URL:     "https://acme.test/new-order",
		KeyID:   "https://acme.test/acct/7",
	}

	env, err := SignRequest(context.Background(), key, jose.ES256, req, nil)
	if err != nil {
		t.Fatalf("SignRequest() error = %v", err)
	}
	if got := string(env.Payload()); got != `{"identifiers":[{"type":"dns","value":"example.org"}]}` {
		t.Errorf("payload = %s", got)
	}
	if ref, ok := env.KeyBinding().(jws.KeyRef); !ok || ref.KeyID != req.KeyID {
		t.Errorf("KeyBinding() = %#v", env.KeyBinding())
	}
	if _, err := env.Verify(key.Public()); err != nil {
		t.Errorf("Verify() error = %v", err)
	}

	req.Version = payload.ACMEv1
	env, err = SignRequest(context.Background(), key, jose.ES256, req, nil)
	if err != nil {
		t.Fatalf("SignRequest(v1) error = %v", err)
	}
	if !strings.Contains(string(env.Payload()), `"resource": "new-order"`) {
		t.Errorf("v1 payload = %s", env.Payload())
	}
}

func TestSignRequestErrors(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := Request{Nonce: []byte("n"), URL: "https://acme.test/x"}
	if _, err := SignRequest(ctx, key, jose.ES256, req, nil); !errors.Is(err, context.Canceled) {
		t.Errorf("SignRequest(cancelled) error = %v", err)
	}

	if _, err := SignRequest(context.Background(), key, jose.ES256, Request{URL: "https://acme.test/x"}, nil); err == nil {
		t.Error("SignRequest() expected error for missing nonce")
	}

	req.Message = map[string]any{"c": make(chan int)}
	_, err := SignRequest(context.Background(), key, jose.ES256, req, nil)
	var serr *payload.SerializationError
	if !errors.As(err, &serr) {
		t.Errorf("SignRequest() error = %v, want *payload.SerializationError", err)
	}

	req.Message = nil
	_, err = SignRequest(context.Background(), key, jose.RS256, req, nil)
	var sigErr *jws.SigningError
	if !errors.As(err, &sigErr) {
		t.Errorf("SignRequest() error = %v, want *jws.SigningError", err)
	}
}

func TestEncodeAndWriteEnvelope(t *testing.T) {
	key, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	env, err := SignRequest(context.Background(), key, jose.ES256,
		Request{Nonce: []byte("n"), URL: "https://acme.test/acct/1"}, nil)
	if err != nil {
		t.Fatalf("SignRequest() error = %v", err)
	}

	compact, err := EncodeEnvelope(env, FormatCompact)
	if err != nil {
		t.Fatalf("EncodeEnvelope(compact) error = %v", err)
	}
	if strings.Count(string(compact), ".") != 2 {
		t.Errorf("compact = %q", compact)
	}

	path := filepath.Join(t.TempDir(), "envelope.json")
	if err := WriteEnvelope(env, path, FormatJSON); err != nil {
		t.Fatalf("WriteEnvelope() error = %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	var flat map[string]string
	if err := json.Unmarshal(data, &flat); err != nil {
		t.Fatalf("written envelope is not JSON: %v", err)
	}
	if _, ok := flat["protected"]; !ok {
		t.Errorf("envelope = %s", data)
	}
	if flat["payload"] != "" {
		t.Errorf("POST-as-GET payload = %q, want empty", flat["payload"])
	}

	parsed, err := jws.ParseEnvelope(data, nil)
	if err != nil {
		t.Fatalf("ParseEnvelope() error = %v", err)
	}
	if _, ok := parsed.KeyBinding().(jws.EmbeddedKey); !ok {
		t.Errorf("KeyBinding() = %#v, want EmbeddedKey", parsed.KeyBinding())
	}

	if _, err := EncodeEnvelope(env, "yaml"); err == nil {
		t.Error("EncodeEnvelope(yaml) expected error")
	}
}

func TestParseEnvelopeFormat(t *testing.T) {
	for in, want := range map[string]EnvelopeFormat{"": FormatJSON, "JSON": FormatJSON, "compact": FormatCompact} {
		got, err := ParseEnvelopeFormat(in)
		if err != nil || got != want {
			t.Errorf("ParseEnvelopeFormat(%q) = %v, %v", in, got, err)
		}
	}
	if _, err := ParseEnvelopeFormat("cbor"); err == nil {
		t.Error("ParseEnvelopeFormat(cbor) expected error")
	}
}

func TestLoadMessage(t *testing.T) {
	dir := t.TempDir()
	orderPath := filepath.Join(dir, "order.json")
	if err := os.WriteFile(orderPath, []byte(`{"identifiers":[{"type":"dns","value":"a.test"}]}`), 0o600); err != nil {
		t.Fatal(err)
	}

	msg, err := LoadMessage(MessageOptions{PayloadPath: orderPath, Kind: acme.KindNewOrder})
	if err != nil {
		t.Fatalf("LoadMessage() error = %v", err)
	}
	if _, ok := msg.(*acme.NewOrder); !ok {
		t.Errorf("LoadMessage() = %T, want *acme.NewOrder", msg)
	}

	msg, err = LoadMessage(MessageOptions{PayloadPath: orderPath})
	if err != nil {
		t.Fatalf("LoadMessage(raw) error = %v", err)
	}
	if _, ok := msg.(map[string]any); !ok {
		t.Errorf("LoadMessage(raw) = %T, want map", msg)
	}

	msg, err = LoadMessage(MessageOptions{})
	if err != nil || msg != nil {
		t.Errorf("LoadMessage(empty) = %v, %v; want nil, nil", msg, err)
	}

	arrPath := filepath.Join(dir, "arr.json")
	if err := os.WriteFile(arrPath, []byte(`[1,2]`), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadMessage(MessageOptions{PayloadPath: arrPath}); err == nil {
		t.Error("LoadMessage(array) expected error")
	}
	if _, err := LoadMessage(MessageOptions{PayloadPath: filepath.Join(dir, "missing.json")}); err == nil {
		t.Error("LoadMessage(missing) expected error")
	}
}
