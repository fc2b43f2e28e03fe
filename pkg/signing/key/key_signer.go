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
	"fmt"

	"github.com/go-jose/go-jose/v4"

	"github.com/0xop89/certbot/pkg/logging"
	"github.com/0xop89/certbot/pkg/signing"
	"github.com/0xop89/certbot/pkg/utils"
)

//nolint:revive
type KeySignerOptions struct {
	signing.RequestOptions
	signing.OutputOptions
	PrivateKeyPath string
	Password       string
	Algorithm      string
	Logger         logging.Logger
}

// KeySigner runs the file-to-file flow with a PEM private key.
//
//nolint:revive
type KeySigner struct {
	opts KeySignerOptions
}

var _ signing.EnvelopeSigner = (*KeySigner)(nil)

func NewKeySigner(opts KeySignerOptions) (*KeySigner, error) {
	if err := utils.ValidateFileExists("private key", opts.PrivateKeyPath); err != nil {
		return nil, err
	}
	if err := opts.RequestOptions.Validate(); err != nil {
		return nil, err
	}
	if err := opts.OutputOptions.Validate(); err != nil {
		return nil, err
	}
	opts.Logger = logging.EnsureLogger(opts.Logger)
	return &KeySigner{opts: opts}, nil
}

// Sign reads the request body, signs it with the private key and writes
// the envelope.
func (ks *KeySigner) Sign(ctx context.Context) (signing.Result, error) {
	logger := ks.opts.Logger
	logger.Debugln("ACME JWS Signing (private key)")
	logger.Debug("  --private-key:  %s", ks.opts.PrivateKeyPath)
	logger.Debug("  --url:          %s", ks.opts.URL)
	logger.Debug("  --kid:          %s", ks.opts.KeyID)
	logger.Debug("  --kind:         %s", ks.opts.Kind)
	logger.Debug("  --acme-version: %d", ks.opts.Version)
	logger.Debug("  --password:     %s", utils.MaskToken(ks.opts.Password))

	signer, err := NewLocalKeySigner(KeySignerConfig{
		PrivateKeyPath: ks.opts.PrivateKeyPath,
		Password:       ks.opts.Password,
		Algorithm:      jose.SignatureAlgorithm(ks.opts.Algorithm),
	}, logger)
	if err != nil {
		return signing.Result{
			Message: fmt.Sprintf("Failed to create signer: %v", err),
		}, fmt.Errorf("failed to create signer: %w", err)
	}
	logger.Debug("  Algorithm: %s", signer.Algorithm())

	return signing.Run(ctx, signer, ks.opts.RequestOptions, ks.opts.OutputOptions, logger)
}
