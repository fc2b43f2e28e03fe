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
	"errors"

	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/payload"
	"github.com/0xop89/certbot/pkg/utils"
)

// Request is one ACME POST to be signed.
type Request struct {
	// Message is the request body object. Nil means POST-as-GET.
	Message any
	// Version selects the payload rules. Zero means ACME v2.
	Version payload.Version
	// Nonce is the decoded Replay-Nonce value.
	Nonce []byte
	// URL is the request target.
	URL string
	// KeyID is the account URL. Empty embeds the public key instead.
	KeyID string
}

// Validate checks the request carries the members every ACME server
// requires.
func (r Request) Validate() error {
	if len(r.Nonce) == 0 {
		return errors.New("nonce is required")
	}
	if err := utils.ValidateURL("url", r.URL); err != nil {
		return err
	}
	if r.Version != 0 {
		if _, err := payload.ParseVersion(int(r.Version)); err != nil {
			return err
		}
	}
	return nil
}

func (r Request) version() payload.Version {
	if r.Version == 0 {
		return payload.ACMEv2
	}
	return r.Version
}

// Signer produces a signed envelope for a request. Each implementation
// manages its key material differently.
type Signer interface {
	Sign(ctx context.Context, req Request) (*jws.Envelope, error)
}

// Result is the outcome of a complete signing run.
type Result struct {
	Signed  bool
	Message string
	// Thumbprint identifies the signing key.
	Thumbprint string
}

// EnvelopeSigner runs a complete signing flow, from reading the request
// body to writing the envelope.
type EnvelopeSigner interface {
	Sign(ctx context.Context) (Result, error)
}
