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

package config

import (
	"github.com/0xop89/certbot/pkg/signing"
)

// SignerConfig merges a profile with command-line values. Setters ignore
// zero values, so a flag left at its default keeps the profile's value.
type SignerConfig struct {
	version        int
	keyID          string
	algorithm      string
	format         string
	privateKeyPath string
	password       string
	pkcs11URI      string
	modulePaths    []string
	pin            string
}

// NewSignerConfig creates a signer configuration with defaults: ACME v2
// and flattened JSON output.
func NewSignerConfig() *SignerConfig {
	return &SignerConfig{
		version: 2,
		format:  string(signing.FormatJSON),
	}
}

// FromProfile copies every value set in p.
func (c *SignerConfig) FromProfile(p *Profile) *SignerConfig {
	if p == nil {
		return c
	}
	return c.SetVersion(p.ACMEVersion).
		SetKeyID(p.KeyID).
		SetAlgorithm(p.Algorithm).
		SetFormat(p.Format).
		SetPrivateKey(p.Key.PrivateKeyPath, p.Key.Password).
		SetPKCS11(p.PKCS11.URI, p.PKCS11.ModulePaths, p.PKCS11.PIN)
}

func (c *SignerConfig) SetVersion(v int) *SignerConfig {
	if v != 0 {
		c.version = v
	}
	return c
}

func (c *SignerConfig) SetKeyID(kid string) *SignerConfig {
	if kid != "" {
		c.keyID = kid
	}
	return c
}

func (c *SignerConfig) SetAlgorithm(alg string) *SignerConfig {
	if alg != "" {
		c.algorithm = alg
	}
	return c
}

func (c *SignerConfig) SetFormat(format string) *SignerConfig {
	if format != "" {
		c.format = format
	}
	return c
}

// SetPrivateKey sets the PEM key and its password independently.
func (c *SignerConfig) SetPrivateKey(path, password string) *SignerConfig {
	if path != "" {
		c.privateKeyPath = path
	}
	if password != "" {
		c.password = password
	}
	return c
}

// SetPKCS11 sets the token URI, extra module directories and PIN.
// Module directories accumulate.
func (c *SignerConfig) SetPKCS11(uri string, modulePaths []string, pin string) *SignerConfig {
	if uri != "" {
		c.pkcs11URI = uri
	}
	c.modulePaths = append(c.modulePaths, modulePaths...)
	if pin != "" {
		c.pin = pin
	}
	return c
}

func (c *SignerConfig) Algorithm() string      { return c.algorithm }
func (c *SignerConfig) PrivateKeyPath() string { return c.privateKeyPath }
func (c *SignerConfig) Password() string       { return c.password }
func (c *SignerConfig) PKCS11URI() string      { return c.pkcs11URI }
func (c *SignerConfig) ModulePaths() []string  { return c.modulePaths }
func (c *SignerConfig) PIN() string            { return c.pin }

// RequestOptions fills the version and kid of req.
func (c *SignerConfig) RequestOptions(req signing.RequestOptions) signing.RequestOptions {
	req.Version = c.version
	req.KeyID = c.keyID
	return req
}

// OutputOptions fills the envelope format of out.
func (c *SignerConfig) OutputOptions(out signing.OutputOptions) signing.OutputOptions {
	out.Format = c.format
	return out
}
