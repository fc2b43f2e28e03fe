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
	"github.com/0xop89/certbot/pkg/signing"
	"github.com/0xop89/certbot/pkg/signing/key"
	"github.com/0xop89/certbot/pkg/signing/pkcs11"
)

const signRequestHelp = `
    The request body is read from PAYLOAD_FILE, decoded as the ACME message
    named by --kind, normalized for --acme-version and signed. Without
    PAYLOAD_FILE the body is empty (POST-as-GET). Challenge responses
    (--kind http-01, dns-01, tls-alpn-01) are sent as {} under ACME v2.

    The protected header carries the --nonce, the --url and either the
    account URL given by --kid or, without --kid, the embedded public key.`

// runSign executes an envelope signer and reports its result.
func runSign(cmd *cobra.Command, build func(logging.Logger) (signing.EnvelopeSigner, error)) error {
	logger, err := ro.NewLogger()
	if err != nil {
		return err
	}
	signer, err := build(logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), ro.Timeout)
	defer cancel()

	status, err := signer.Sign(ctx)
	if err != nil {
		return err
	}
	if status.Thumbprint != "" {
		logger.Info("JWK thumbprint: %s", status.Thumbprint)
	}
	if ro.GetLogLevel() > logging.LevelDebug && ro.GetLogLevel() < logging.LevelSilent {
		cmd.PrintErrln(status.Message)
	}
	return nil
}

// NewKeySigner creates the key subcommand for request signing.
func NewKeySigner() *cobra.Command {
	o := &options.KeySignOptions{}

	cmd := &cobra.Command{
		Use:   "key [OPTIONS] [PAYLOAD_FILE]",
		Short: "Sign using a PEM private key.",
		Long: `Sign an ACME request with a private key read from --private-key.
` + signRequestHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, func(logger logging.Logger) (signing.EnvelopeSigner, error) {
				opts, err := o.ToStandardOptions(payloadArg(args))
				if err != nil {
					return nil, err
				}
				opts.Logger = logger
				return key.NewKeySigner(opts)
			})
		},
	}

	o.AddFlags(cmd)
	return cmd
}

// NewPkcs11Signer creates the pkcs11 subcommand for request signing.
func NewPkcs11Signer() *cobra.Command {
	o := &options.Pkcs11SignOptions{}

	cmd := &cobra.Command{
		Use:   "pkcs11 [OPTIONS] [PAYLOAD_FILE]",
		Short: "Sign using a key held in a PKCS#11 token.",
		Long: `Sign an ACME request with a key that stays inside a PKCS#11 token,
selected by --pkcs11-uri.
` + signRequestHelp,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSign(cmd, func(logger logging.Logger) (signing.EnvelopeSigner, error) {
				opts, err := o.ToStandardOptions(payloadArg(args))
				if err != nil {
					return nil, err
				}
				opts.Logger = logger
				return pkcs11.NewPkcs11Signer(opts)
			})
		},
	}

	o.AddFlags(cmd)
	return cmd
}

func payloadArg(args []string) string {
	if len(args) == 0 {
		return ""
	}
	return args[0]
}

// Sign creates the sign command with its key source subcommands.
func Sign() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign KEY_SOURCE",
		Short: "Sign ACME requests.",
		Long: `Sign ACME requests.

    Produces a JWS envelope ready to be POSTed to an ACME server. Choose where
    the account key lives with a subcommand: key (PEM file) or pkcs11 (token).`,
	}

	cmd.AddCommand(NewKeySigner())
	cmd.AddCommand(NewPkcs11Signer())
	return cmd
}
