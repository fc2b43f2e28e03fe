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

package crypto

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"errors"
	"fmt"
	"math/big"

	"github.com/go-jose/go-jose/v4"
	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// AlgorithmForKey returns the default JWS algorithm for a public key.
// RSA keys use RS256, ECDSA keys use the ES algorithm matching their curve
// and Ed25519 keys use EdDSA.
func AlgorithmForKey(pub crypto.PublicKey) (jose.SignatureAlgorithm, error) {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		return jose.RS256, nil
	case *ecdsa.PublicKey:
		return ecdsaAlgorithm(key.Curve)
	case ed25519.PublicKey:
		return jose.EdDSA, nil
	default:
		return "", fmt.Errorf("unsupported public key type: %T", pub)
	}
}

func ecdsaAlgorithm(curve elliptic.Curve) (jose.SignatureAlgorithm, error) {
	switch curve {
	case elliptic.P256():
		return jose.ES256, nil
	case elliptic.P384():
		return jose.ES384, nil
	case elliptic.P521():
		return jose.ES512, nil
	default:
		return "", fmt.Errorf("unsupported ECDSA curve: %s", curve.Params().Name)
	}
}

// HashForAlgorithm returns the digest used by alg. EdDSA signs the message
// itself and reports crypto.Hash(0).
func HashForAlgorithm(alg jose.SignatureAlgorithm) (crypto.Hash, error) {
	switch alg {
	case jose.RS256, jose.PS256, jose.ES256:
		return crypto.SHA256, nil
	case jose.RS384, jose.PS384, jose.ES384:
		return crypto.SHA384, nil
	case jose.RS512, jose.PS512, jose.ES512:
		return crypto.SHA512, nil
	case jose.EdDSA:
		return crypto.Hash(0), nil
	default:
		return 0, fmt.Errorf("unsupported signature algorithm: %s", alg)
	}
}

// OpaqueSigner adapts a crypto.Signer, such as a key held in a hardware
// token, to jose.OpaqueSigner.
type OpaqueSigner struct {
	signer crypto.Signer
	alg    jose.SignatureAlgorithm
	hash   crypto.Hash
}

var _ jose.OpaqueSigner = (*OpaqueSigner)(nil)

// NewOpaqueSigner wraps signer for alg. An empty alg selects the default
// algorithm for the signer's key. The algorithm must be usable with the key
// type.
func NewOpaqueSigner(signer crypto.Signer, alg jose.SignatureAlgorithm) (*OpaqueSigner, error) {
	if signer == nil {
		return nil, errors.New("signer must not be nil")
	}
	pub := signer.Public()
	if alg == "" {
		var err error
		if alg, err = AlgorithmForKey(pub); err != nil {
			return nil, err
		}
	}
	if err := CheckAlgorithm(pub, alg); err != nil {
		return nil, err
	}
	hash, err := HashForAlgorithm(alg)
	if err != nil {
		return nil, err
	}
	return &OpaqueSigner{signer: signer, alg: alg, hash: hash}, nil
}

// CheckAlgorithm reports whether alg can be used with a key of pub's type
// and size.
func CheckAlgorithm(pub crypto.PublicKey, alg jose.SignatureAlgorithm) error {
	switch key := pub.(type) {
	case *rsa.PublicKey:
		switch alg {
		case jose.RS256, jose.RS384, jose.RS512, jose.PS256, jose.PS384, jose.PS512:
			return nil
		}
	case *ecdsa.PublicKey:
		want, err := ecdsaAlgorithm(key.Curve)
		if err != nil {
			return err
		}
		if alg == want {
			return nil
		}
	case ed25519.PublicKey:
		if alg == jose.EdDSA {
			return nil
		}
	default:
		return fmt.Errorf("unsupported public key type: %T", pub)
	}
	return fmt.Errorf("algorithm %s cannot be used with %T", alg, pub)
}

// Public returns the public JWK of the wrapped key.
func (s *OpaqueSigner) Public() *jose.JSONWebKey {
	return &jose.JSONWebKey{Key: s.signer.Public()}
}

// Algs returns the single algorithm this signer was created for.
func (s *OpaqueSigner) Algs() []jose.SignatureAlgorithm {
	return []jose.SignatureAlgorithm{s.alg}
}

// Algorithm returns the algorithm this signer was created for.
func (s *OpaqueSigner) Algorithm() jose.SignatureAlgorithm {
	return s.alg
}

// SignPayload signs the JWS signing input. ECDSA signatures are returned in
// the fixed-width r||s form JWS requires.
func (s *OpaqueSigner) SignPayload(payload []byte, alg jose.SignatureAlgorithm) ([]byte, error) {
	if alg != s.alg {
		return nil, fmt.Errorf("signer is bound to %s, not %s", s.alg, alg)
	}

	digest := payload
	if s.hash != 0 {
		h := s.hash.New()
		h.Write(payload)
		digest = h.Sum(nil)
	}

	var opts crypto.SignerOpts = s.hash
	switch alg {
	case jose.PS256, jose.PS384, jose.PS512:
		opts = &rsa.PSSOptions{SaltLength: rsa.PSSSaltLengthEqualsHash, Hash: s.hash}
	}

	sig, err := s.signer.Sign(rand.Reader, digest, opts)
	if err != nil {
		return nil, fmt.Errorf("%s signing failed: %w", alg, err)
	}

	if pub, ok := s.signer.Public().(*ecdsa.PublicKey); ok {
		return ecdsaRawSignature(sig, pub.Curve)
	}
	return sig, nil
}

// ecdsaRawSignature converts an ASN.1 ECDSA-Sig-Value into r||s, each
// left-padded to the curve size.
func ecdsaRawSignature(der []byte, curve elliptic.Curve) ([]byte, error) {
	var (
		r, s  = new(big.Int), new(big.Int)
		inner cryptobyte.String
	)
	input := cryptobyte.String(der)
	if !input.ReadASN1(&inner, asn1.SEQUENCE) ||
		!input.Empty() ||
		!inner.ReadASN1Integer(r) ||
		!inner.ReadASN1Integer(s) ||
		!inner.Empty() {
		return nil, errors.New("malformed ECDSA signature")
	}

	size := (curve.Params().BitSize + 7) / 8
	if r.Sign() <= 0 || s.Sign() <= 0 || r.BitLen() > size*8 || s.BitLen() > size*8 {
		return nil, errors.New("ECDSA signature values out of range")
	}
	out := make([]byte, 2*size)
	r.FillBytes(out[:size])
	s.FillBytes(out[size:])
	return out, nil
}
