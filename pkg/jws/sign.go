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
	"fmt"
	"strings"

	"github.com/go-jose/go-jose/v4"
)

// ProtectedFields is the set of header members an ACME envelope carries in
// its protected header. None of them is ever placed in an unprotected header.
var ProtectedFields = []string{HeaderNonce, HeaderURL, HeaderKeyID, HeaderJWK, HeaderAlgorithm}

// Sign builds an ACME envelope over payload.
//
// The public key is embedded as jwk if and only if kid is empty; otherwise
// the kid member references the account key and no jwk is present. nonce
// and url are added to the protected header when non-empty. key is anything
// go-jose accepts as a signing key (private keys, *jose.JSONWebKey or a
// jose.OpaqueSigner). Algorithm and key compatibility is left to go-jose;
// its errors are returned as *SigningError.
func Sign(payload []byte, key any, alg jose.SignatureAlgorithm, nonce []byte, url, kid string) (*Envelope, error) {
	opts := &jose.SignerOptions{EmbedJWK: kid == ""}
	if len(nonce) > 0 {
		opts.NonceSource = staticNonce(EncodeNonce(nonce))
	}
	if url != "" {
		opts.WithHeader(HeaderURL, url)
	}
	if kid != "" {
		opts.WithHeader(HeaderKeyID, kid)
	}

	signer, err := jose.NewSigner(jose.SigningKey{Algorithm: alg, Key: key}, opts)
	if err != nil {
		return nil, signingError(err)
	}

	raw, err := signer.Sign(payload)
	if err != nil {
		return nil, signingError(err)
	}

	compact, err := raw.CompactSerialize()
	if err != nil {
		return nil, signingError(err)
	}
	protected, _, _ := strings.Cut(compact, ".")

	header, err := decodeProtected(protected)
	if err != nil {
		return nil, signingError(err)
	}
	if err := checkProtectedFields(header); err != nil {
		return nil, signingError(err)
	}

	env, err := newEnvelope(raw, protected, payload, Signature{
		protected: header,
		raw:       raw.Signatures[0].Signature,
	})
	if err != nil {
		return nil, signingError(err)
	}
	return env, nil
}

func signingError(err error) error {
	return &SigningError{Fields: ProtectedFields, Err: err}
}

func checkProtectedFields(h Header) error {
	allowed := make(map[string]bool, len(ProtectedFields))
	for _, f := range ProtectedFields {
		allowed[f] = true
	}
	for _, f := range h.Fields() {
		if !allowed[f] {
			return fmt.Errorf("unexpected protected header member %q", f)
		}
	}
	return nil
}

// staticNonce hands the same nonce to every signature go-jose produces. Each
// Sign call creates its own.
type staticNonce string

func (n staticNonce) Nonce() (string, error) {
	return string(n), nil
}
