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
	"fmt"

	"github.com/go-jose/go-jose/v4"

	icrypto "github.com/0xop89/certbot/internal/crypto"
	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/logging"
	"github.com/0xop89/certbot/pkg/signing"
)

var _ signing.Signer = (*LocalKeySigner)(nil)

// KeySignerConfig holds configuration for a PEM private key signer.
//
//nolint:revive
type KeySignerConfig struct {
	PrivateKeyPath string
	Password       string
	// Algorithm overrides the default algorithm for the key type.
	Algorithm jose.SignatureAlgorithm
}

// LocalKeySigner signs ACME requests with a private key held in memory.
type LocalKeySigner struct {
	key     *icrypto.OpaqueSigner
	public  crypto.PublicKey
	keyHint string
	logger  logging.Logger
}

// NewLocalKeySigner loads the PEM key named by cfg.
func NewLocalKeySigner(cfg KeySignerConfig, logger logging.Logger) (*LocalKeySigner, error) {
	privateKey, err := signing.LoadPrivateKeyFromPEM(cfg.PrivateKeyPath, cfg.Password)
	if err != nil {
		return nil, err
	}
	return NewLocalKeySignerFromKey(privateKey, cfg.Algorithm, logger)
}

// NewLocalKeySignerFromKey wraps an already loaded key. An empty alg picks
// the default algorithm for the key type.
func NewLocalKeySignerFromKey(key crypto.Signer, alg jose.SignatureAlgorithm, logger logging.Logger) (*LocalKeySigner, error) {
	public, err := signing.CheckPublicKey(key.Public())
	if err != nil {
		return nil, err
	}
	opaque, err := icrypto.NewOpaqueSigner(key, alg)
	if err != nil {
		return nil, fmt.Errorf("failed to create signer: %w", err)
	}
	keyHint, err := signing.ComputeKeyHint(public)
	if err != nil {
		return nil, err
	}
	return &LocalKeySigner{
		key:     opaque,
		public:  public,
		keyHint: keyHint,
		logger:  logging.EnsureLogger(logger),
	}, nil
}

// Algorithm returns the JWS algorithm used for every signature.
func (s *LocalKeySigner) Algorithm() jose.SignatureAlgorithm {
	return s.key.Algorithm()
}

// Public returns the signer's public key.
func (s *LocalKeySigner) Public() crypto.PublicKey {
	return s.public
}

// Sign implements signing.Signer.
func (s *LocalKeySigner) Sign(ctx context.Context, req signing.Request) (*jws.Envelope, error) {
	logger := s.logger.WithField("key", s.keyHint[:16])
	return signing.SignRequest(ctx, s.key, s.key.Algorithm(), req, logger)
}
