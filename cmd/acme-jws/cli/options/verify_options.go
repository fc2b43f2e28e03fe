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
	"github.com/spf13/cobra"

	keyverify "github.com/0xop89/certbot/pkg/verify/key"
)

type KeyVerifyOptions struct {
	SignatureInputFlags
	PublicKeyPath string // --public-key
	ExpectedURL   string // --expected-url
	CrossCheck    bool   // --cross-check
	PrintPayload  bool   // --print-payload
}

func (o *KeyVerifyOptions) AddFlags(cmd *cobra.Command) {
	o.SignatureInputFlags.AddFlags(cmd)
	cmd.Flags().StringVar(&o.PublicKeyPath, "public-key", "",
		"Path to the account public key. Without it the embedded jwk is used.")
	cmd.Flags().StringVar(&o.ExpectedURL, "expected-url", "", "URL the envelope must be addressed to.")
	cmd.Flags().BoolVar(&o.CrossCheck, "cross-check", false, "Verify the signature a second time with an independent JOSE library.")
	cmd.Flags().BoolVar(&o.PrintPayload, "print-payload", false, "Write the verified payload to stdout.")
}

// ToStandardOptions converts CLI options to library options for key-based verification.
func (o *KeyVerifyOptions) ToStandardOptions() keyverify.KeyVerifierOptions {
	return keyverify.KeyVerifierOptions{
		SignaturePath: o.SignaturePath,
		PublicKeyPath: o.PublicKeyPath,
		ExpectedURL:   o.ExpectedURL,
		CrossCheck:    o.CrossCheck,
	}
}
