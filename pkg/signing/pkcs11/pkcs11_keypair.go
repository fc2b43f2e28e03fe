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

package pkcs11

import (
	"context"
	"crypto"
	"fmt"

	"github.com/go-jose/go-jose/v4"

	icrypto "github.com/0xop89/certbot/internal/crypto"
	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/logging"
	"github.com/0xop89/certbot/pkg/signing"
)

var _ signing.Signer = (*Signer)(nil)

// Signer signs with a key held in a PKCS#11 token. Close releases the
// session.
type Signer struct {
	pctx   *Context
	key    *icrypto.OpaqueSigner
	public crypto.PublicKey
	logger logging.Logger
}

// NewSigner opens the token named by uriString and selects its key. alg
// may be empty to use the key's default algorithm.
func NewSigner(uriString string, modulePaths []string, pin string, alg jose.SignatureAlgorithm, logger logging.Logger) (*Signer, error) {
	uri, err := ParseURI(uriString)
	if err != nil {
		return nil, err
	}
	pctx, err := LoadContext(uri, modulePaths, pin)
	if err != nil {
		return nil, err
	}
	key, err := pctx.FindSigner(uri)
	if err != nil {
		pctx.Close()
		return nil, err
	}
	s, err := newSigner(key, alg, logger)
	if err != nil {
		pctx.Close()
		return nil, err
	}
	s.pctx = pctx
	return s, nil
}

func newSigner(key crypto.Signer, alg jose.SignatureAlgorithm, logger logging.Logger) (*Signer, error) {
	public, err := signing.CheckPublicKey(key.Public())
	if err != nil {
		return nil, err
	}
	opaque, err := icrypto.NewOpaqueSigner(key, alg)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	return &Signer{
		key:    opaque,
		public: public,
		logger: logging.EnsureLogger(logger),
	}, nil
}

func (s *Signer) Algorithm() jose.SignatureAlgorithm {
	return s.key.Algorithm()
}

func (s *Signer) Public() crypto.PublicKey {
	return s.public
}

// Sign implements signing.Signer.
func (s *Signer) Sign(ctx context.Context, req signing.Request) (*jws.Envelope, error) {
	return signing.SignRequest(ctx, s.key, s.key.Algorithm(), req, s.logger.WithField("key", "pkcs11"))
}

func (s *Signer) Close() error {
	if s.pctx == nil {
		return nil
	}
	return s.pctx.Close()
}
