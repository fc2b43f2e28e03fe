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

package options

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/0xop89/certbot/pkg/signing/key"
	"github.com/0xop89/certbot/pkg/signing/pkcs11"
)

type KeySignOptions struct {
	RequestFlags
	SignatureOutputFlags
	PrivateKeyPath string // --private-key
	Password       string // --password
	Algorithm      string // --algorithm
}

func (o *KeySignOptions) AddFlags(cmd *cobra.Command) {
	AddAllFlags(cmd, &o.RequestFlags, &o.SignatureOutputFlags)
	cmd.Flags().StringVar(&o.PrivateKeyPath, "private-key", "",
		"Path to the account private key, as a PEM-encoded file. [required unless set by --profile]")
	cmd.Flags().StringVar(&o.Password, "password", "", "Password for the key encryption, if any.")
	cmd.Flags().StringVar(&o.Algorithm, "algorithm", "",
		"JWS algorithm; defaults to RS256, ES256/384/512 or EdDSA according to the key.")
}

// ToStandardOptions converts CLI options to library options for key-based signing.
func (o *KeySignOptions) ToStandardOptions(payloadPath string) (key.KeySignerOptions, error) {
	cfg, err := o.signerConfig(&o.SignatureOutputFlags)
	if err != nil {
		return key.KeySignerOptions{}, err
	}
	cfg.SetPrivateKey(o.PrivateKeyPath, o.Password).SetAlgorithm(o.Algorithm)
	if cfg.PrivateKeyPath() == "" {
		return key.KeySignerOptions{}, fmt.Errorf("--private-key is required")
	}
	return key.KeySignerOptions{
		RequestOptions: o.requestOptions(cfg, payloadPath),
		OutputOptions:  o.outputOptions(cfg),
		PrivateKeyPath: cfg.PrivateKeyPath(),
		Password:       cfg.Password(),
		Algorithm:      cfg.Algorithm(),
	}, nil
}

type Pkcs11SignOptions struct {
	RequestFlags
	SignatureOutputFlags
	URI         string   // --pkcs11-uri
	ModulePaths []string // --module-path
	PIN         string   // --pin
	Algorithm   string   // --algorithm
}

func (o *Pkcs11SignOptions) AddFlags(cmd *cobra.Command) {
	AddAllFlags(cmd, &o.RequestFlags, &o.SignatureOutputFlags)
	cmd.Flags().StringVar(&o.URI, "pkcs11-uri", "",
		"RFC 7512 URI of the signing key, e.g. pkcs11:token=acme;object=account. [required unless set by --profile]")
	cmd.Flags().StringSliceVar(&o.ModulePaths, "module-path", nil, "Directories to search for the PKCS#11 module.")
	cmd.Flags().StringVar(&o.PIN, "pin", "", "Token PIN; also read from ACME_JWS_PKCS11_PIN.")
	cmd.Flags().StringVar(&o.Algorithm, "algorithm", "", "JWS algorithm; defaults according to the key.")
}

// ToStandardOptions converts CLI options to library options for PKCS#11 signing.
func (o *Pkcs11SignOptions) ToStandardOptions(payloadPath string) (pkcs11.Pkcs11SignerOptions, error) {
	cfg, err := o.signerConfig(&o.SignatureOutputFlags)
	if err != nil {
		return pkcs11.Pkcs11SignerOptions{}, err
	}
	cfg.SetPKCS11(o.URI, o.ModulePaths, o.PIN).SetAlgorithm(o.Algorithm)
	if cfg.PKCS11URI() == "" {
		return pkcs11.Pkcs11SignerOptions{}, fmt.Errorf("--pkcs11-uri is required")
	}
	return pkcs11.Pkcs11SignerOptions{
		RequestOptions: o.requestOptions(cfg, payloadPath),
		OutputOptions:  o.outputOptions(cfg),
		URI:            cfg.PKCS11URI(),
		ModulePaths:    cfg.ModulePaths(),
		PIN:            cfg.PIN(),
		Algorithm:      cfg.Algorithm(),
	}, nil
}
