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

// Package signing holds the key helpers and request types shared by the
// file-key and PKCS#11 signers.
package signing

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"os"

	"github.com/go-jose/go-jose/v4"
	"github.com/sigstore/sigstore/pkg/cryptoutils"
)

// LoadPrivateKeyFromPEM loads a PKCS#8, SEC 1 or PKCS#1 private key,
// decrypting it with password when one is given.
func LoadPrivateKeyFromPEM(keyPath string, password string) (crypto.Signer, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read key file: %w", err)
	}

	var passFunc cryptoutils.PassFunc
	if password != "" {
		passFunc = func(_ bool) ([]byte, error) {
			return []byte(password), nil
		}
	}

	privKey, err := cryptoutils.UnmarshalPEMToPrivateKey(pemBytes, passFunc)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	signer, ok := privKey.(crypto.Signer)
	if !ok {
		return nil, fmt.Errorf("private key does not implement crypto.Signer")
	}
	if _, err := CheckPublicKey(signer.Public()); err != nil {
		return nil, err
	}
	return signer, nil
}

// LoadPublicKeyFromPEM loads a PKIX or PKCS#1 public key.
func LoadPublicKeyFromPEM(keyPath string) (crypto.PublicKey, error) {
	pemBytes, err := os.ReadFile(keyPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read public key file: %w", err)
	}
	pub, err := cryptoutils.UnmarshalPEMToPublicKey(pemBytes)
	if err != nil {
		return nil, fmt.Errorf("failed to parse public key: %w", err)
	}
	return CheckPublicKey(pub)
}

// CheckPublicKey rejects key types and curves JWS cannot express.
func CheckPublicKey(pub crypto.PublicKey) (crypto.PublicKey, error) {
	switch k := pub.(type) {
	case *ecdsa.PublicKey:
		switch name := k.Curve.Params().Name; name {
		case "P-256", "P-384", "P-521":
			return k, nil
		default:
			return nil, fmt.Errorf("unsupported elliptic curve: %s (supported: P-256, P-384, P-521)", name)
		}
	case *rsa.PublicKey:
		return k, nil
	case ed25519.PublicKey:
		return k, nil
	default:
		return nil, fmt.Errorf("unsupported public key type: %T", pub)
	}
}

// GetPublicKeyPEM returns the PKIX PEM encoding of pubKey.
func GetPublicKeyPEM(pubKey crypto.PublicKey) (string, error) {
	pubKeyPEM, err := cryptoutils.MarshalPublicKeyToPEM(pubKey)
	if err != nil {
		return "", err
	}
	return string(pubKeyPEM), nil
}

// ComputeKeyHint returns the hex SHA-256 of the PEM-encoded public key. It
// identifies keys in log output.
func ComputeKeyHint(pubKey crypto.PublicKey) (string, error) {
	pubKeyPEM, err := cryptoutils.MarshalPublicKeyToPEM(pubKey)
	if err != nil {
		return "", fmt.Errorf("failed to marshal public key to PEM: %w", err)
	}
	sum := sha256.Sum256(pubKeyPEM)
	return hex.EncodeToString(sum[:]), nil
}

// Thumbprint returns the base64url RFC 7638 SHA-256 thumbprint of pubKey,
// the value ACME uses in key authorizations.
func Thumbprint(pubKey crypto.PublicKey) (string, error) {
	jwk := jose.JSONWebKey{Key: pubKey}
	sum, err := jwk.Thumbprint(crypto.SHA256)
	if err != nil {
		return "", fmt.Errorf("failed to compute JWK thumbprint: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(sum), nil
}
