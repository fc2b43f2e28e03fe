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
	"crypto"
	"fmt"

	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/logging"
	"github.com/0xop89/certbot/pkg/payload"
	"github.com/0xop89/certbot/pkg/utils"
)

// RequestOptions describes a request as given on the command line.
type RequestOptions struct {
	PayloadPath string
	Kind        string
	// Version is the ACME protocol version, 1 or 2.
	Version int
	// Nonce is the base64url Replay-Nonce value as sent by the server.
	Nonce string
	URL   string
	KeyID string
}

// Validate checks paths and URLs before any key material is touched.
func (o RequestOptions) Validate() error {
	if err := utils.ValidateOptionalFile("payload", o.PayloadPath); err != nil {
		return err
	}
	if o.Nonce == "" {
		return fmt.Errorf("nonce is required")
	}
	if err := utils.ValidateURL("url", o.URL); err != nil {
		return err
	}
	if err := utils.ValidateOptionalURL("kid", o.KeyID); err != nil {
		return err
	}
	if _, err := payload.ParseVersion(o.Version); err != nil {
		return err
	}
	return nil
}

// Build loads the message and decodes the nonce.
func (o RequestOptions) Build() (Request, error) {
	version, err := payload.ParseVersion(o.Version)
	if err != nil {
		return Request{}, err
	}
	nonce, err := jws.DecodeNonce(o.Nonce)
	if err != nil {
		return Request{}, err
	}
	msg, err := LoadMessage(MessageOptions{PayloadPath: o.PayloadPath, Kind: o.Kind})
	if err != nil {
		return Request{}, err
	}
	return Request{
		Message: msg,
		Version: version,
		Nonce:   nonce,
		URL:     o.URL,
		KeyID:   o.KeyID,
	}, nil
}

// OutputOptions says where the envelope goes.
type OutputOptions struct {
	// SignaturePath is the envelope file. Empty writes to stdout.
	SignaturePath string
	Format        string
}

// Validate checks the output directory and format.
func (o OutputOptions) Validate() error {
	if err := utils.ValidateOutputPath("signature", o.SignaturePath); err != nil {
		return err
	}
	_, err := ParseEnvelopeFormat(o.Format)
	return err
}

type publicKeyHolder interface {
	Public() crypto.PublicKey
}

// Run builds the request, signs it with signer and writes the envelope.
func Run(ctx context.Context, signer Signer, reqOpts RequestOptions, out OutputOptions, logger logging.Logger) (Result, error) {
	logger = logging.EnsureLogger(logger)

	logger.Debugln("\nStep 1: Building request...")
	req, err := reqOpts.Build()
	if err != nil {
		return Result{Message: fmt.Sprintf("Failed to build request: %v", err)},
			fmt.Errorf("failed to build request: %w", err)
	}
	logger.Debug("  Message: %T", req.Message)

	logger.Debugln("\nStep 2: Signing request...")
	env, err := signer.Sign(ctx, req)
	if err != nil {
		return Result{Message: fmt.Sprintf("Failed to sign request: %v", err)},
			fmt.Errorf("failed to sign request: %w", err)
	}

	logger.Debugln("\nStep 3: Writing envelope...")
	format, err := ParseEnvelopeFormat(out.Format)
	if err != nil {
		return Result{Message: err.Error()}, err
	}
	if err := WriteEnvelope(env, out.SignaturePath, format); err != nil {
		return Result{Message: fmt.Sprintf("Failed to write envelope: %v", err)}, err
	}
	if out.SignaturePath != "" {
		logger.Debug("  Envelope written to: %s", out.SignaturePath)
	}

	result := Result{Signed: true, Message: "Signing succeeded"}
	if pk, ok := signer.(publicKeyHolder); ok {
		if thumb, err := Thumbprint(pk.Public()); err == nil {
			result.Thumbprint = thumb
		}
	}
	return result, nil
}
