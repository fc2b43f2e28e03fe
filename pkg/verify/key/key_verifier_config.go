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
	"crypto"
	"fmt"

	"github.com/go-jose/go-jose/v4"

	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/signing"
	"github.com/0xop89/certbot/pkg/verify"
)

// KeyVerifierConfig holds configuration for creating an envelope verifier.
//
//nolint:revive
type KeyVerifierConfig struct {
	// PublicKeyPath is the PEM public key the envelope must verify with.
	// Empty means the envelope's embedded jwk is trusted.
	PublicKeyPath string
	// CrossCheck verifies the signature a second time with an independent
	// JOSE implementation.
	CrossCheck bool
}

// Verifier checks an envelope's signature and key binding.
type Verifier struct {
	config    KeyVerifierConfig
	publicKey crypto.PublicKey
	keyHint   string
}

// NewVerifier creates a verifier, loading the public key when one is
// configured.
func NewVerifier(config KeyVerifierConfig) (*Verifier, error) {
	v := &Verifier{config: config}
	if config.PublicKeyPath == "" {
		return v, nil
	}

	publicKey, err := signing.LoadPublicKeyFromPEM(config.PublicKeyPath)
	if err != nil {
		return nil, verify.NewVerificationErrorWithPath(verify.ErrTypeConfiguration,
			config.PublicKeyPath, "failed to load public key", err)
	}
	publicKey, err = signing.CheckPublicKey(publicKey)
	if err != nil {
		return nil, verify.NewVerificationErrorWithPath(verify.ErrTypeConfiguration,
			config.PublicKeyPath, "unsupported public key", err)
	}
	keyHint, err := signing.ComputeKeyHint(publicKey)
	if err != nil {
		return nil, err
	}
	v.publicKey = publicKey
	v.keyHint = keyHint
	return v, nil
}

// KeyHint identifies the configured public key. Empty when the embedded
// jwk is used.
func (v *Verifier) KeyHint() string {
	return v.keyHint
}

// Verify checks the signature of env and returns its payload.
//
// With a configured public key, an embedded jwk must be that same key. A
// kid envelope names an account key only the server knows, so it can only
// be verified with a configured public key.
func (v *Verifier) Verify(env *jws.Envelope) ([]byte, error) {
	key, err := v.resolveKey(env.KeyBinding())
	if err != nil {
		return nil, err
	}

	alg := env.Header().Algorithm
	if err := verify.CheckAlgorithm(&jose.JSONWebKey{Key: key}, alg); err != nil {
		return nil, err
	}

	payload, err := env.Verify(key)
	if err != nil {
		return nil, verify.NewVerificationError(verify.ErrTypeSignatureInvalid,
			"signature verification failed", err)
	}

	if v.config.CrossCheck {
		if err := crossCheck(env, key); err != nil {
			return nil, verify.NewVerificationError(verify.ErrTypeSignatureInvalid,
				"independent verification failed", err)
		}
	}
	return payload, nil
}

func (v *Verifier) resolveKey(binding jws.KeyBinding) (crypto.PublicKey, error) {
	embedded, isEmbedded := binding.(jws.EmbeddedKey)

	if v.publicKey == nil {
		if !isEmbedded {
			return nil, verify.NewVerificationError(verify.ErrTypeConfiguration,
				"envelope references an account key by kid; a public key is required", nil)
		}
		if !embedded.JWK.Valid() || !embedded.JWK.IsPublic() {
			return nil, verify.NewVerificationErrorWithPath(verify.ErrTypeHeaderInvalid,
				jws.HeaderJWK, "embedded key is not a valid public key", nil)
		}
		return signing.CheckPublicKey(embedded.JWK.Key)
	}

	if isEmbedded {
		want, err := signing.Thumbprint(v.publicKey)
		if err != nil {
			return nil, err
		}
		got, err := signing.Thumbprint(embedded.JWK.Key)
		if err != nil {
			return nil, verify.NewVerificationErrorWithPath(verify.ErrTypeHeaderInvalid,
				jws.HeaderJWK, "failed to compute embedded key thumbprint", err)
		}
		if got != want {
			return nil, verify.NewVerificationError(verify.ErrTypeKeyMismatch,
				fmt.Sprintf("embedded key %s does not match public key %s", got, want), nil)
		}
	}
	return v.publicKey, nil
}
