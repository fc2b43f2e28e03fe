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

// Package config loads signing profiles and merges them with command-line
// options.
//
// A profile is a YAML file holding the settings that stay the same across
// requests for one ACME account. Environment variables (${VAR} or $VAR)
// are expanded before parsing so secrets can be injected at runtime.
//
//	acmeVersion: 2
//	kid: https://acme.example.org/acme/acct/1234
//	format: json
//	key:
//	  privateKey: /etc/acme/account.pem
//	pkcs11:
//	  uri: pkcs11:token=acme;object=account?module-name=softhsm2
//	  pin: ${ACME_JWS_PKCS11_PIN}
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/payload"
	"github.com/0xop89/certbot/pkg/signing"
	"github.com/0xop89/certbot/pkg/utils"
)

// Profile is the root of a signing profile file.
type Profile struct {
	ACMEVersion int           `yaml:"acmeVersion"`
	KeyID       string        `yaml:"kid"`
	Algorithm   string        `yaml:"algorithm"`
	Format      string        `yaml:"format"`
	Key         KeyProfile    `yaml:"key"`
	PKCS11      PKCS11Profile `yaml:"pkcs11"`
}

// KeyProfile configures signing with a PEM private key.
type KeyProfile struct {
	PrivateKeyPath string `yaml:"privateKey"`
	Password       string `yaml:"password"`
}

// PKCS11Profile configures signing with a token key.
type PKCS11Profile struct {
	URI         string   `yaml:"uri"`
	ModulePaths []string `yaml:"modulePaths"`
	PIN         string   `yaml:"pin"`
}

// LoadProfile reads a profile from a YAML file.
func LoadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	return ParseProfile(data)
}

// ParseProfile parses a profile, rejecting unknown members.
func ParseProfile(data []byte) (*Profile, error) {
	expanded := os.ExpandEnv(string(data))

	var p Profile
	dec := yaml.NewDecoder(bytes.NewReader([]byte(expanded)))
	dec.KnownFields(true)
	if err := dec.Decode(&p); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("parsing profile: %w", err)
	}

	p.applyDefaults()
	if err := p.validate(); err != nil {
		return nil, fmt.Errorf("validating profile: %w", err)
	}
	return &p, nil
}

func (p *Profile) applyDefaults() {
	if p.ACMEVersion == 0 {
		p.ACMEVersion = int(payload.ACMEv2)
	}
	if p.Format == "" {
		p.Format = string(signing.FormatJSON)
	}
}

func (p *Profile) validate() error {
	if _, err := payload.ParseVersion(p.ACMEVersion); err != nil {
		return err
	}
	if _, err := signing.ParseEnvelopeFormat(p.Format); err != nil {
		return err
	}
	if err := utils.ValidateOptionalURL("kid", p.KeyID); err != nil {
		return err
	}
	if p.Algorithm != "" && !isSupportedAlgorithm(p.Algorithm) {
		return fmt.Errorf("unsupported algorithm %q", p.Algorithm)
	}
	return nil
}

func isSupportedAlgorithm(alg string) bool {
	for _, a := range jws.SupportedAlgorithms {
		if string(a) == alg {
			return true
		}
	}
	return false
}
