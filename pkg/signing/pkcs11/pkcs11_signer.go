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
	"fmt"
	"os"

	"github.com/go-jose/go-jose/v4"

	"github.com/0xop89/certbot/pkg/logging"
	"github.com/0xop89/certbot/pkg/signing"
	"github.com/0xop89/certbot/pkg/utils"
)

// Pkcs11SignerOptions configures the PKCS#11 file-to-file flow.
//
//nolint:revive
type Pkcs11SignerOptions struct {
	signing.RequestOptions
	signing.OutputOptions
	URI         string   // URI identifies the token and key. [required]
	ModulePaths []string // ModulePaths are extra directories to search for the module.
	PIN         string   // PIN is used when the URI carries none.
	Algorithm   string
	Logger      logging.Logger
}

// Pkcs11Signer runs the file-to-file flow with a token key.
//
//nolint:revive
type Pkcs11Signer struct {
	opts   Pkcs11SignerOptions
	logger logging.Logger
}

var _ signing.EnvelopeSigner = (*Pkcs11Signer)(nil)

func NewPkcs11Signer(opts Pkcs11SignerOptions) (*Pkcs11Signer, error) {
	if opts.URI == "" {
		return nil, fmt.Errorf("PKCS#11 URI is required")
	}
	if _, err := ParseURI(opts.URI); err != nil {
		return nil, err
	}
	if err := opts.RequestOptions.Validate(); err != nil {
		return nil, err
	}
	if err := opts.OutputOptions.Validate(); err != nil {
		return nil, err
	}
	if opts.PIN == "" {
		opts.PIN = os.Getenv(utils.EnvPKCS11PIN)
	}
	return &Pkcs11Signer{
		opts:   opts,
		logger: logging.EnsureLogger(opts.Logger),
	}, nil
}

// Sign opens the token, signs the request and writes the envelope.
func (ps *Pkcs11Signer) Sign(ctx context.Context) (signing.Result, error) {
	ps.logger.Debug("PKCS#11 signing: uri=%s, url=%s", ps.opts.URI, ps.opts.URL)
	ps.logger.Debug("  --pin: %s", utils.MaskToken(ps.opts.PIN))

	signer, err := NewSigner(ps.opts.URI, ps.opts.ModulePaths, ps.opts.PIN,
		jose.SignatureAlgorithm(ps.opts.Algorithm), ps.logger)
	if err != nil {
		return signing.Result{
			Message: fmt.Sprintf("Failed to create PKCS#11 signer: %v", err),
		}, fmt.Errorf("failed to create PKCS#11 signer: %w", err)
	}
	defer signer.Close()
	ps.logger.Debug("  Algorithm: %s", signer.Algorithm())

	return signing.Run(ctx, signer, ps.opts.RequestOptions, ps.opts.OutputOptions, ps.logger)
}
