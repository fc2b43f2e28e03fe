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
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/go-jose/go-jose/v4"
)

// Protected header member names.
const (
	HeaderAlgorithm = "alg"
	HeaderJWK       = "jwk"
	HeaderNonce     = "nonce"
	HeaderKeyID     = "kid"
	HeaderURL       = "url"
)

// FieldSet gives named access to the members of a header. Only members that
// would be serialized are reported.
type FieldSet interface {
	// Get returns the decoded value of the named member.
	Get(name string) (any, bool)
	// Fields returns the sorted names of all present members.
	Fields() []string
}

var (
	_ FieldSet = BaseHeader{}
	_ FieldSet = Header{}
)

// fieldCodec binds a header member name to accessors on a concrete header.
type fieldCodec struct {
	name string
	// get returns the Go value and whether the member is present.
	get func() (any, bool)
	// encode maps the Go value onto its JSON representation. nil means the
	// value is serialized as is.
	encode func(any) any
	// decode parses the JSON representation into the header.
	decode func(json.RawMessage) error
}

// BaseHeader holds the generic JOSE header members. Members without a
// dedicated field are kept verbatim in Extra.
type BaseHeader struct {
	Algorithm  jose.SignatureAlgorithm
	JSONWebKey *jose.JSONWebKey
	Extra      map[string]json.RawMessage
}

func (b *BaseHeader) codecs() []fieldCodec {
	return []fieldCodec{
		{
			name: HeaderAlgorithm,
			get:  func() (any, bool) { return b.Algorithm, b.Algorithm != "" },
			encode: func(v any) any {
				return string(v.(jose.SignatureAlgorithm))
			},
			decode: func(raw json.RawMessage) error {
				var alg string
				if err := json.Unmarshal(raw, &alg); err != nil {
					return err
				}
				b.Algorithm = jose.SignatureAlgorithm(alg)
				return nil
			},
		},
		{
			name: HeaderJWK,
			get:  func() (any, bool) { return b.JSONWebKey, b.JSONWebKey != nil },
			encode: func(v any) any {
				jwk := v.(*jose.JSONWebKey)
				if jwk.IsPublic() {
					return jwk
				}
				pub := jwk.Public()
				return &pub
			},
			decode: func(raw json.RawMessage) error {
				jwk := &jose.JSONWebKey{}
				if err := jwk.UnmarshalJSON(raw); err != nil {
					return err
				}
				b.JSONWebKey = jwk
				return nil
			},
		},
	}
}

// Get implements FieldSet.
func (b BaseHeader) Get(name string) (any, bool) {
	return getField(b.codecs(), b.Extra, name)
}

// Fields implements FieldSet.
func (b BaseHeader) Fields() []string {
	return fieldNames(b.codecs(), b.Extra)
}

// MarshalJSON serializes the present members only.
func (b BaseHeader) MarshalJSON() ([]byte, error) {
	return marshalFields(b.codecs(), b.Extra)
}

// UnmarshalJSON decodes a JOSE header object.
func (b *BaseHeader) UnmarshalJSON(data []byte) error {
	var decoded BaseHeader
	extra, err := unmarshalFields(data, decoded.codecs())
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*b = decoded
	return nil
}

// Header is the ACME protected header: the generic JOSE members plus the
// nonce, kid and url members defined by RFC 8555.
type Header struct {
	BaseHeader

	// Nonce is the raw anti-replay nonce. It travels base64url encoded
	// without padding.
	Nonce []byte
	// KeyID is the account URL used instead of an embedded jwk.
	KeyID string
	// URL is the request target.
	URL string
}

func (h *Header) codecs() []fieldCodec {
	return append(h.BaseHeader.codecs(),
		fieldCodec{
			name: HeaderNonce,
			get:  func() (any, bool) { return h.Nonce, len(h.Nonce) > 0 },
			encode: func(v any) any {
				return EncodeNonce(v.([]byte))
			},
			decode: func(raw json.RawMessage) error {
				var s string
				if err := json.Unmarshal(raw, &s); err != nil {
					return err
				}
				nonce, err := DecodeNonce(s)
				if err != nil {
					return err
				}
				h.Nonce = nonce
				return nil
			},
		},
		stringCodec(HeaderKeyID, &h.KeyID),
		stringCodec(HeaderURL, &h.URL),
	)
}

// Get implements FieldSet.
func (h Header) Get(name string) (any, bool) {
	return getField(h.codecs(), h.Extra, name)
}

// Fields implements FieldSet.
func (h Header) Fields() []string {
	return fieldNames(h.codecs(), h.Extra)
}

// MarshalJSON serializes the present members only; empty values are omitted
// rather than written as null or "".
func (h Header) MarshalJSON() ([]byte, error) {
	return marshalFields(h.codecs(), h.Extra)
}

// UnmarshalJSON decodes an ACME protected header. A malformed nonce is
// reported as a *DecodeError.
func (h *Header) UnmarshalJSON(data []byte) error {
	var decoded Header
	extra, err := unmarshalFields(data, decoded.codecs())
	if err != nil {
		return err
	}
	decoded.Extra = extra
	*h = decoded
	return nil
}

// Clone returns a copy that shares no mutable state with h. The JSONWebKey
// pointer is shared; keys are treated as read-only.
func (h Header) Clone() Header {
	out := h
	if h.Nonce != nil {
		out.Nonce = append([]byte(nil), h.Nonce...)
	}
	if h.Extra != nil {
		out.Extra = make(map[string]json.RawMessage, len(h.Extra))
		for k, v := range h.Extra {
			out.Extra[k] = append(json.RawMessage(nil), v...)
		}
	}
	return out
}

// EncodeNonce encodes raw nonce bytes as base64url without padding.
func EncodeNonce(nonce []byte) string {
	return base64.RawURLEncoding.EncodeToString(nonce)
}

// DecodeNonce decodes a base64url (unpadded) nonce. Malformed input yields a
// *DecodeError wrapping the base64 error.
func DecodeNonce(s string) ([]byte, error) {
	nonce, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, &DecodeError{Field: HeaderNonce, Err: err}
	}
	return nonce, nil
}

func stringCodec(name string, dst *string) fieldCodec {
	return fieldCodec{
		name: name,
		get:  func() (any, bool) { return *dst, *dst != "" },
		decode: func(raw json.RawMessage) error {
			return json.Unmarshal(raw, dst)
		},
	}
}

func getField(codecs []fieldCodec, extra map[string]json.RawMessage, name string) (any, bool) {
	for _, c := range codecs {
		if c.name == name {
			return c.get()
		}
	}
	v, ok := extra[name]
	return v, ok
}

func fieldNames(codecs []fieldCodec, extra map[string]json.RawMessage) []string {
	names := make([]string, 0, len(codecs)+len(extra))
	seen := make(map[string]bool, len(codecs))
	for _, c := range codecs {
		seen[c.name] = true
		if _, ok := c.get(); ok {
			names = append(names, c.name)
		}
	}
	for k := range extra {
		if !seen[k] {
			names = append(names, k)
		}
	}
	sort.Strings(names)
	return names
}

func marshalFields(codecs []fieldCodec, extra map[string]json.RawMessage) ([]byte, error) {
	members := make(map[string]any, len(codecs)+len(extra))
	for k, v := range extra {
		members[k] = v
	}
	for _, c := range codecs {
		v, ok := c.get()
		if !ok {
			delete(members, c.name)
			continue
		}
		if c.encode != nil {
			v = c.encode(v)
		}
		members[c.name] = v
	}
	return json.Marshal(members)
}

// unmarshalFields decodes every known member through its codec and returns
// the members no codec claimed.
func unmarshalFields(data []byte, codecs []fieldCodec) (map[string]json.RawMessage, error) {
	var members map[string]json.RawMessage
	if err := json.Unmarshal(data, &members); err != nil {
		return nil, fmt.Errorf("header is not a JSON object: %w", err)
	}
	if members == nil {
		return nil, fmt.Errorf("header is not a JSON object")
	}

	for _, c := range codecs {
		raw, ok := members[c.name]
		if !ok {
			continue
		}
		delete(members, c.name)
		if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
			continue
		}
		if err := c.decode(raw); err != nil {
			var decodeErr *DecodeError
			if errors.As(err, &decodeErr) {
				return nil, err
			}
			return nil, &DecodeError{Field: c.name, Err: err}
		}
	}

	if len(members) == 0 {
		return nil, nil
	}
	return members, nil
}
