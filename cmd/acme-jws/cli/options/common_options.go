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

	"github.com/0xop89/certbot/pkg/acme"
	"github.com/0xop89/certbot/pkg/config"
	"github.com/0xop89/certbot/pkg/signing"
	"github.com/0xop89/certbot/pkg/utils"
)

// FlagAdder is implemented by any flag group that can register itself to a cobra command.
type FlagAdder interface {
	AddFlags(cmd *cobra.Command)
}

// AddAllFlags registers multiple flag groups at once.
func AddAllFlags(cmd *cobra.Command, flagGroups ...FlagAdder) {
	for _, fg := range flagGroups {
		fg.AddFlags(cmd)
	}
}

// MessageFlags select how the request body file is decoded.
type MessageFlags struct {
	// Kind names the ACME message type of the payload file.
	Kind string
	// Version is the ACME protocol version. Zero defers to the profile.
	Version int
}

func (o *MessageFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.Kind, "kind", "",
		"ACME message type of the payload file (e.g. new-account, new-order, http-01).")
	cmd.Flags().IntVar(&o.Version, "acme-version", 0, "ACME protocol version, 1 or 2. [default: 2]")
	_ = cmd.RegisterFlagCompletionFunc("kind", func(*cobra.Command, []string, string) ([]string, cobra.ShellCompDirective) {
		return acme.Kinds(), cobra.ShellCompDirectiveNoFileComp
	})
}

// RequestFlags contains the protocol metadata of the request being signed.
type RequestFlags struct {
	MessageFlags
	Nonce   string // --nonce
	URL     string // --url
	KeyID   string // --kid
	Profile string // --profile
}

func (o *RequestFlags) AddFlags(cmd *cobra.Command) {
	o.MessageFlags.AddFlags(cmd)
	cmd.Flags().StringVar(&o.Nonce, "nonce", "",
		"Replay-Nonce value from the server, base64url encoded. [required]")
	_ = cmd.MarkFlagRequired("nonce")
	cmd.Flags().StringVar(&o.URL, "url", "", "URL the request is posted to. [required]")
	_ = cmd.MarkFlagRequired("url")
	cmd.Flags().StringVar(&o.KeyID, "kid", "",
		"Account URL. When set the envelope references the account instead of embedding the public key.")
	cmd.Flags().StringVar(&o.Profile, "profile", "", "Signing profile (YAML) supplying defaults.")
	_ = cmd.MarkFlagFilename("profile", "yaml", "yml")
}

// signerConfig loads the profile, if any, and applies flags on top.
func (o *RequestFlags) signerConfig(out *SignatureOutputFlags) (*config.SignerConfig, error) {
	cfg := config.NewSignerConfig()
	if o.Profile != "" {
		profile, err := config.LoadProfile(o.Profile)
		if err != nil {
			return nil, err
		}
		cfg.FromProfile(profile)
	}
	return cfg.SetVersion(o.Version).
		SetKeyID(o.KeyID).
		SetFormat(out.Format), nil
}

func (o *RequestFlags) requestOptions(cfg *config.SignerConfig, payloadPath string) signing.RequestOptions {
	return cfg.RequestOptions(signing.RequestOptions{
		PayloadPath: payloadPath,
		Kind:        o.Kind,
		Nonce:       o.Nonce,
		URL:         o.URL,
	})
}

// SignatureOutputFlags contains the envelope output flags for signing commands.
type SignatureOutputFlags struct {
	// SignaturePath is where the envelope is written; "-" means stdout.
	SignaturePath string
	// Format is json (flattened) or compact.
	Format string
}

func (o *SignatureOutputFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.SignaturePath, "signature", utils.DefaultEnvelopePath,
		"Location of the envelope to generate; - writes to stdout.")
	cmd.Flags().StringVar(&o.Format, "format", "", "Envelope serialization: json or compact. [default: json]")
}

func (o *SignatureOutputFlags) outputOptions(cfg *config.SignerConfig) signing.OutputOptions {
	path := o.SignaturePath
	if path == "-" {
		path = ""
	}
	return cfg.OutputOptions(signing.OutputOptions{SignaturePath: path})
}

// SignatureInputFlags contains the envelope path flag for verification commands.
type SignatureInputFlags struct {
	SignaturePath string
}

func (o *SignatureInputFlags) AddFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.SignaturePath, "signature", "", "Location of the envelope to verify. [required]")
	_ = cmd.MarkFlagRequired("signature")
}
