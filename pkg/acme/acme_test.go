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

package acme

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"errors"
	"strings"
	"testing"

	"github.com/go-jose/go-jose/v4"
)

func TestNewChallengeResponse(t *testing.T) {
	for _, typ := range []string{ChallengeHTTP01, ChallengeDNS01, ChallengeTLSALPN01} {
		t.Run(typ, func(t *testing.T) {
			resp, err := NewChallengeResponse(typ)
			if err != nil {
				t.Fatalf("NewChallengeResponse() error = %v", err)
			}
			if resp.ChallengeType() != typ {
				t.Errorf("ChallengeType() = %q, want %q", resp.ChallengeType(), typ)
			}
			if !IsChallengeResponse(resp) {
				t.Error("IsChallengeResponse() = false, want true")
			}
		})
	}

	if _, err := NewChallengeResponse("bogus-01"); !errors.Is(err, ErrUnknownChallenge) {
		t.Errorf("NewChallengeResponse(bogus) error = %v, want ErrUnknownChallenge", err)
	}
}

type customResponse struct{}

func (customResponse) ChallengeType() string { return "custom-01" }

func TestRegisterChallengeResponse(t *testing.T) {
	RegisterChallengeResponse("custom-01", func() ChallengeResponse { return customResponse{} })
	t.Cleanup(func() {
		registryMu.Lock()
		delete(registry, "custom-01")
		registryMu.Unlock()
	})

	resp, err := NewChallengeResponse("custom-01")
	if err != nil {
		t.Fatalf("NewChallengeResponse() error = %v", err)
	}
	if _, ok := resp.(customResponse); !ok {
		t.Errorf("NewChallengeResponse() = %T, want customResponse", resp)
	}

	types := ChallengeTypes()
	want := []string{"custom-01", ChallengeDNS01, ChallengeHTTP01, ChallengeTLSALPN01}
	if strings.Join(types, ",") != strings.Join(want, ",") {
		t.Errorf("ChallengeTypes() = %v, want %v", types, want)
	}
}

func TestIsChallengeResponse(t *testing.T) {
	var typedNil *HTTP01Response
	tests := []struct {
		name string
		obj  any
		want bool
	}{
		{"nil", nil, false},
		{"typed nil", typedNil, false},
		{"http-01", NewHTTP01Response("a.b"), true},
		{"http-01 value", *NewHTTP01Response("a.b"), true},
		{"dns-01 value", *NewDNS01Response("a.b"), true},
		{"tls-alpn-01 value", *NewTLSALPN01Response("a.b"), true},
		{"typed nil dns-01", (*DNS01Response)(nil), false},
		{"value type", customResponse{}, true},
		{"order", &NewOrder{}, false},
		{"map", map[string]any{"type": "http-01"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsChallengeResponse(tt.obj); got != tt.want {
				t.Errorf("IsChallengeResponse() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestKeyAuthorization(t *testing.T) {
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("failed to generate key: %v", err)
	}
	jwk := &jose.JSONWebKey{Key: priv.Public()}

	got, err := KeyAuthorization("tok", jwk)
	if err != nil {
		t.Fatalf("KeyAuthorization() error = %v", err)
	}
	token, thumb, ok := strings.Cut(got, ".")
	if !ok || token != "tok" {
		t.Fatalf("KeyAuthorization() = %q, want tok.<thumbprint>", got)
	}
	// base64url of a SHA-256 digest without padding
	if len(thumb) != 43 || strings.ContainsAny(thumb, "+/=") {
		t.Errorf("thumbprint %q is not unpadded base64url SHA-256", thumb)
	}

	if _, err := KeyAuthorization("tok", nil); err == nil {
		t.Error("KeyAuthorization(nil) expected error")
	}
}

func TestNewMessage(t *testing.T) {
	tests := []struct {
		kind     string
		resource string
	}{
		{KindNewAccount, ResourceNewAccount},
		{KindUpdateAccount, ResourceAccount},
		{KindNewOrder, ResourceNewOrder},
		{KindFinalize, ResourceFinalize},
		{KindRevokeCert, ResourceRevokeCert},
	}
	for _, tt := range tests {
		t.Run(tt.kind, func(t *testing.T) {
			msg, err := NewMessage(tt.kind)
			if err != nil {
				t.Fatalf("NewMessage() error = %v", err)
			}
			var got string
			switch m := msg.(type) {
			case *NewAccount:
				got = m.Resource
			case *UpdateAccount:
				got = m.Resource
			case *NewOrder:
				got = m.Resource
			case *Finalize:
				got = m.Resource
			case *RevokeCertificate:
				got = m.Resource
			default:
				t.Fatalf("unexpected message type %T", msg)
			}
			if got != tt.resource {
				t.Errorf("resource = %q, want %q", got, tt.resource)
			}
		})
	}

	msg, err := NewMessage(KindPostAsGet)
	if err != nil || msg != nil {
		t.Errorf("NewMessage(post-as-get) = %v, %v; want nil, nil", msg, err)
	}
	msg, err = NewMessage(ChallengeHTTP01)
	if err != nil || !IsChallengeResponse(msg) {
		t.Errorf("NewMessage(http-01) = %T, %v; want challenge response", msg, err)
	}
	if _, err := NewMessage("nope"); !errors.Is(err, ErrUnknownKind) {
		t.Errorf("NewMessage(nope) error = %v, want ErrUnknownKind", err)
	}
}

func TestDecodeMessage(t *testing.T) {
	msg, err := DecodeMessage(KindNewOrder, []byte(`{"identifiers":[{"type":"dns","value":"example.org"}]}`))
	if err != nil {
		t.Fatalf("DecodeMessage() error = %v", err)
	}
	order, ok := msg.(*NewOrder)
	if !ok {
		t.Fatalf("DecodeMessage() = %T, want *NewOrder", msg)
	}
	if order.Resource != ResourceNewOrder {
		t.Errorf("Resource = %q, want default %q", order.Resource, ResourceNewOrder)
	}
	if len(order.Identifiers) != 1 || order.Identifiers[0].Value != "example.org" {
		t.Errorf("Identifiers = %+v", order.Identifiers)
	}

	if _, err := DecodeMessage(KindNewOrder, []byte(`{`)); err == nil {
		t.Error("DecodeMessage() expected error for malformed JSON")
	}

	msg, err = DecodeMessage(KindPostAsGet, []byte(`{"ignored":true}`))
	if err != nil || msg != nil {
		t.Errorf("DecodeMessage(post-as-get) = %v, %v; want nil, nil", msg, err)
	}
}

func TestKinds(t *testing.T) {
	kinds := Kinds()
	seen := map[string]bool{}
	for _, k := range kinds {
		seen[k] = true
	}
	for _, want := range []string{KindPostAsGet, KindNewOrder, ChallengeDNS01} {
		if !seen[want] {
			t.Errorf("Kinds() missing %q", want)
		}
	}
}
