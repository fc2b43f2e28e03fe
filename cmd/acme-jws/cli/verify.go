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

package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/0xop89/certbot/cmd/acme-jws/cli/options"
	"github.com/0xop89/certbot/pkg/logging"
	keyverify "github.com/0xop89/certbot/pkg/verify/key"
)

func runKeyVerify(cmd *cobra.Command, o *options.KeyVerifyOptions) error {
	logger, err := ro.NewLogger()
	if err != nil {
		return err
	}
	opts := o.ToStandardOptions()
	opts.Logger = logger

	verifier, err := keyverify.NewKeyVerifier(opts)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
	defer cancel()

	status, err := verifier.Verify(ctx)
	if ro.GetLogLevel() < logging.LevelSilent {
		cmd.PrintErrln(status.Message)
	}
	if err != nil {
		return err
	}
	if o.PrintPayload {
		_, err = cmd.OutOrStdout().Write(append(status.Payload, '\n'))
	}
	return err
}

// NewKeyVerifier creates the key subcommand for envelope verification.
func NewKeyVerifier() *cobra.Command {
	o := &options.KeyVerifyOptions{}

	cmd := &cobra.Command{
		Use:   "key [OPTIONS]",
		Short: "Verify using a public key or the embedded jwk.",
		Long: `Verify an envelope read from --signature.

    The protected header must carry a nonce, a url (equal to --expected-url
    when given) and exactly one of jwk and kid. The signature is checked with
    --public-key, or with the embedded jwk when no key is given; envelopes
    using kid always need --public-key.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeyVerify(cmd, o)
		},
	}

	o.AddFlags(cmd)
	return cmd
}

// Verify creates the verify command. Without a subcommand it verifies with
// a public key.
func Verify() *cobra.Command {
	o := &options.KeyVerifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify [OPTIONS]",
		Short: "Verify ACME request envelopes.",
		Long: `Verify ACME request envelopes the way an ACME server checks them.

Use each subcommand's --help option for details on each mode.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runKeyVerify(cmd, o)
		},
	}

	o.AddFlags(cmd)
	cmd.AddCommand(NewKeyVerifier())
	return cmd
}
