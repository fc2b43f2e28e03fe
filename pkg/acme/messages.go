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
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-jose/go-jose/v4"
)

// Legacy ACME v1 resource names.
const (
	ResourceNewAccount  = "new-reg"
	ResourceAccount     = "reg"
	ResourceNewOrder    = "new-order"
	ResourceFinalize    = "finalize"
	ResourceRevokeCert  = "revoke-cert"
	ResourceKeyRollover = "key-change"
)

// Message kinds understood by NewMessage.
const (
	KindPostAsGet     = "post-as-get"
	KindNewAccount    = "new-account"
	KindUpdateAccount = "update-account"
	KindNewOrder      = "new-order"
	KindFinalize      = "finalize"
	KindRevokeCert    = "revoke-cert"
)

// NewAccount is the body of a newAccount request.
type NewAccount struct {
	Resource               string          `json:"resource,omitempty"`
	Contact                []string        `json:"contact,omitempty"`
	TermsOfServiceAgreed   bool            `json:"termsOfServiceAgreed,omitempty"`
	OnlyReturnExisting     bool            `json:"onlyReturnExisting,omitempty"`
	ExternalAccountBinding json.RawMessage `json:"externalAccountBinding,omitempty"`
}

// UpdateAccount is the body POSTed to an account URL.
type UpdateAccount struct {
	Resource string   `json:"resource,omitempty"`
	Contact  []string `json:"contact,omitempty"`
	Status   string   `json:"status,omitempty"`
}

// Identifier names a subject of an order.
type Identifier struct {
	Type  string `json:"type"`
	Value string `json:"value"`
}

// NewOrder is the body of a newOrder request.
type NewOrder struct {
	Resource    string       `json:"resource,omitempty"`
	Identifiers []Identifier `json:"identifiers"`
	NotBefore   string       `json:"notBefore,omitempty"`
	NotAfter    string       `json:"notAfter,omitempty"`
}

// Finalize carries the base64url DER CSR for an order.
type Finalize struct {
	Resource string `json:"resource,omitempty"`
	CSR      string `json:"csr"`
}

// RevokeCertificate carries the base64url DER certificate to revoke.
type RevokeCertificate struct {
	Resource    string `json:"resource,omitempty"`
	Certificate string `json:"certificate"`
	Reason      *int   `json:"reason,omitempty"`
}

// KeyChange is the inner payload of a key rollover request.
type KeyChange struct {
	Account string           `json:"account"`
	OldKey  *jose.JSONWebKey `json:"oldKey"`
}

// ErrUnknownKind is returned by NewMessage for unsupported kinds.
var ErrUnknownKind = errors.New("unknown message kind")

var messageFactories = map[string]func() any{
	KindNewAccount:    func() any { return &NewAccount{Resource: ResourceNewAccount} },
	KindUpdateAccount: func() any { return &UpdateAccount{Resource: ResourceAccount} },
	KindNewOrder:      func() any { return &NewOrder{Resource: ResourceNewOrder} },
	KindFinalize:      func() any { return &Finalize{Resource: ResourceFinalize} },
	KindRevokeCert:    func() any { return &RevokeCertificate{Resource: ResourceRevokeCert} },
}

// NewMessage returns an empty body for kind. Challenge types resolve through
// the challenge registry and post-as-get yields nil.
func NewMessage(kind string) (any, error) {
	if kind == KindPostAsGet {
		return nil, nil
	}
	if factory, ok := messageFactories[kind]; ok {
		return factory(), nil
	}
	if resp, err := NewChallengeResponse(kind); err == nil {
		return resp, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
}

// DecodeMessage builds the body for kind from JSON data. Empty data yields
// the empty body for kind.
func DecodeMessage(kind string, data []byte) (any, error) {
	msg, err := NewMessage(kind)
	if err != nil {
		return nil, err
	}
	if msg == nil || len(data) == 0 {
		return msg, nil
	}
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, fmt.Errorf("failed to decode %s message: %w", kind, err)
	}
	return msg, nil
}

// Kinds returns every kind accepted by NewMessage in sorted order.
func Kinds() []string {
	kinds := []string{KindPostAsGet}
	for kind := range messageFactories {
		kinds = append(kinds, kind)
	}
	kinds = append(kinds, ChallengeTypes()...)
	sort.Strings(kinds)
	return kinds
}
