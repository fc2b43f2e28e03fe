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

// Package key verifies ACME envelopes with a PEM public key or with the
// key embedded in the envelope.
package key

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	rawpayload "github.com/0xop89/certbot/internal/payload"
	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/logging"
	"github.com/0xop89/certbot/pkg/payload"
	"github.com/0xop89/certbot/pkg/tracing"
	"github.com/0xop89/certbot/pkg/utils"
	"github.com/0xop89/certbot/pkg/verify"
)

var _ verify.EnvelopeVerifier = (*KeyVerifier)(nil)

// KeyVerifierOptions contains options for high-level envelope verification.
type KeyVerifierOptions struct {
	SignaturePath string
	// PublicKeyPath is optional; see KeyVerifierConfig.
	PublicKeyPath string
	// ExpectedURL, when set, must equal the url header member.
	ExpectedURL string
	CrossCheck  bool
	Logger      logging.Logger
}

// KeyVerifier provides high-level verification with validation.
type KeyVerifier struct {
	opts   KeyVerifierOptions
	logger logging.Logger
}

// NewKeyVerifier creates a new high-level key verifier with validation.
func NewKeyVerifier(opts KeyVerifierOptions) (*KeyVerifier, error) {
	if err := utils.ValidateFileExists("signature", opts.SignaturePath); err != nil {
		return nil, err
	}
	if err := utils.ValidateOptionalFile("public key", opts.PublicKeyPath); err != nil {
		return nil, err
	}
	if err := utils.ValidateOptionalURL("expected url", opts.ExpectedURL); err != nil {
		return nil, err
	}
	return &KeyVerifier{opts: opts, logger: logging.EnsureLogger(opts.Logger)}, nil
}

// Verify performs the complete verification flow:
// 1. Reading and parsing the envelope
// 2. Checking the ACME header rules
// 3. Verifying the signature
// 4. Inspecting the payload shape
func (kv *KeyVerifier) Verify(ctx context.Context) (verify.Result, error) {
	kv.logger.Debugln("ACME JWS verification")
	kv.logger.Debug("  --signature:    %s", kv.opts.SignaturePath)
	kv.logger.Debug("  --public-key:   %s", kv.opts.PublicKeyPath)
	kv.logger.Debug("  --expected-url: %s", kv.opts.ExpectedURL)
	kv.logger.Debug("  --cross-check:  %v", kv.opts.CrossCheck)

	var result verify.Result
	attrs := map[string]interface{}{
		"envelope.path": kv.opts.SignaturePath,
		"cross_check":   kv.opts.CrossCheck,
	}
	err := tracing.Run(ctx, "acme.verify", attrs, func(context.Context) error {
		var err error
		result, err = kv.verify()
		return err
	})
	if err != nil {
		return verify.Result{Verified: false, Message: err.Error()}, err
	}
	return result, nil
}

func (kv *KeyVerifier) verify() (verify.Result, error) {
	kv.logger.Debugln("\nStep 1: Reading envelope...")
	data, err := os.ReadFile(kv.opts.SignaturePath)
	if err != nil {
		errType := verify.ErrTypeIO
		if errors.Is(err, fs.ErrNotExist) {
			errType = verify.ErrTypeFileNotFound
		}
		return verify.Result{}, verify.NewVerificationErrorWithPath(errType,
			kv.opts.SignaturePath, "failed to read envelope", err)
	}
	env, err := jws.ParseEnvelope(data, nil)
	if err != nil {
		return verify.Result{}, verify.NewVerificationErrorWithPath(verify.ErrTypeInvalidFormat,
			kv.opts.SignaturePath, "failed to parse envelope", err)
	}

	kv.logger.Debugln("\nStep 2: Checking protected header...")
	header := env.Header()
	if err := verify.CheckProtocolHeader(header, kv.opts.ExpectedURL); err != nil {
		return verify.Result{}, err
	}
	kv.logger.Debug("  alg=%s url=%s binding=%s", header.Algorithm, header.URL, env.KeyBinding().Member())

	kv.logger.Debugln("\nStep 3: Verifying signature...")
	verifier, err := NewVerifier(KeyVerifierConfig{
		PublicKeyPath: kv.opts.PublicKeyPath,
		CrossCheck:    kv.opts.CrossCheck,
	})
	if err != nil {
		return verify.Result{}, fmt.Errorf("failed to create key verifier: %w", err)
	}
	body, err := verifier.Verify(env)
	if err != nil {
		return verify.Result{}, err
	}

	kv.logger.Debugln("\nStep 4: Inspecting payload...")
	result := verify.Result{
		Verified: true,
		Message:  "Verification succeeded",
		Payload:  body,
	}
	shape, err := rawpayload.Classify(body)
	if err != nil {
		result.Warnings = append(result.Warnings, err.Error())
	} else {
		kv.logger.Debug("  Payload shape: %s", shape)
	}
	if rawpayload.HasMember(body, payload.ResourceMember) {
		result.Warnings = append(result.Warnings,
			"payload carries the legacy resource member; ACME v2 servers do not expect it")
	}
	for _, w := range result.Warnings {
		kv.logger.Warn("%s", w)
	}
	return result, nil
}
