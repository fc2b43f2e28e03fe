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

// Package acme defines the ACME request bodies signed by this module and the
// registry of challenge response types.
package acme

import (
	"crypto"
	"encoding/base64"
	"errors"
	"fmt"
	"reflect"
	"sort"
	"sync"

	"github.com/go-jose/go-jose/v4"
)

// Challenge types defined by RFC 8555 and RFC 8737.
const (
	ChallengeHTTP01    = "http-01"
	ChallengeDNS01     = "dns-01"
	ChallengeTLSALPN01 = "tls-alpn-01"
)

// ResourceChallenge is the legacy ACME v1 resource name for challenge
// responses.
const ResourceChallenge = "challenge"

// ChallengeResponse is implemented by the bodies a client POSTs to a
// challenge URL to tell the server it may start validation.
type ChallengeResponse interface {
	ChallengeType() string
}

// KeyAuthorizationResponse is the shape shared by the standard challenge
// responses. ACME v1 servers read the key authorization from the body; ACME
// v2 servers ignore the body entirely.
type KeyAuthorizationResponse struct {
	Resource         string `json:"resource,omitempty"`
	Type             string `json:"type"`
	KeyAuthorization string `json:"keyAuthorization,omitempty"`
}

// ChallengeType implements ChallengeResponse for both the response values
// and pointers to them.
func (r KeyAuthorizationResponse) ChallengeType() string {
	return r.Type
}

// HTTP01Response acknowledges an http-01 challenge.
type HTTP01Response struct {
	KeyAuthorizationResponse
}

// DNS01Response acknowledges a dns-01 challenge.
type DNS01Response struct {
	KeyAuthorizationResponse
}

// TLSALPN01Response acknowledges a tls-alpn-01 challenge.
type TLSALPN01Response struct {
	KeyAuthorizationResponse
}

// NewHTTP01Response returns an http-01 response carrying keyAuthz.
func NewHTTP01Response(keyAuthz string) *HTTP01Response {
	return &HTTP01Response{newKeyAuthorizationResponse(ChallengeHTTP01, keyAuthz)}
}

// NewDNS01Response returns a dns-01 response carrying keyAuthz.
func NewDNS01Response(keyAuthz string) *DNS01Response {
	return &DNS01Response{newKeyAuthorizationResponse(ChallengeDNS01, keyAuthz)}
}

// NewTLSALPN01Response returns a tls-alpn-01 response carrying keyAuthz.
func NewTLSALPN01Response(keyAuthz string) *TLSALPN01Response {
	return &TLSALPN01Response{newKeyAuthorizationResponse(ChallengeTLSALPN01, keyAuthz)}
}

func newKeyAuthorizationResponse(typ, keyAuthz string) KeyAuthorizationResponse {
	return KeyAuthorizationResponse{
		Resource:         ResourceChallenge,
		Type:             typ,
		KeyAuthorization: keyAuthz,
	}
}

// ErrUnknownChallenge is returned for challenge types without a registered
// response.
var ErrUnknownChallenge = errors.New("unknown challenge type")

var (
	registryMu sync.RWMutex
	registry   = map[string]func() ChallengeResponse{}
)

func init() {
	RegisterChallengeResponse(ChallengeHTTP01, func() ChallengeResponse { return NewHTTP01Response("") })
	RegisterChallengeResponse(ChallengeDNS01, func() ChallengeResponse { return NewDNS01Response("") })
	RegisterChallengeResponse(ChallengeTLSALPN01, func() ChallengeResponse { return NewTLSALPN01Response("") })
}

// RegisterChallengeResponse makes a response type available under typ,
// replacing any previous registration.
func RegisterChallengeResponse(typ string, factory func() ChallengeResponse) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[typ] = factory
}

// NewChallengeResponse returns an empty response for the challenge type.
func NewChallengeResponse(typ string) (ChallengeResponse, error) {
	registryMu.RLock()
	factory, ok := registry[typ]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownChallenge, typ)
	}
	return factory(), nil
}

// ChallengeTypes returns the registered challenge types in sorted order.
func ChallengeTypes() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	types := make([]string, 0, len(registry))
	for typ := range registry {
		types = append(types, typ)
	}
	sort.Strings(types)
	return types
}

// IsChallengeResponse reports whether obj is a challenge response. A typed
// nil pointer is not.
func IsChallengeResponse(obj any) bool {
	if _, ok := obj.(ChallengeResponse); !ok {
		return false
	}
	v := reflect.ValueOf(obj)
	return !(v.Kind() == reflect.Pointer && v.IsNil())
}

// KeyAuthorization computes token || '.' || base64url(JWK thumbprint) as
// defined in RFC 8555 section 8.1.
func KeyAuthorization(token string, jwk *jose.JSONWebKey) (string, error) {
	if jwk == nil {
		return "", errors.New("cannot compute key authorization without JWK")
	}
	thumbprint, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("failed to compute JWK thumbprint: %w", err)
	}
	return token + "." + base64.RawURLEncoding.EncodeToString(thumbprint), nil
}
