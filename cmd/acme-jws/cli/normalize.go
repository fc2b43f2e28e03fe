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
	"github.com/spf13/cobra"

	"github.com/0xop89/certbot/cmd/acme-jws/cli/options"
	"github.com/0xop89/certbot/pkg/payload"
	"github.com/0xop89/certbot/pkg/signing"
)

// Normalize creates the normalize command, which prints the exact bytes
// that would be signed for a request body.
func Normalize() *cobra.Command {
	o := &options.NormalizeOptions{}

	cmd := &cobra.Command{
		Use:   "normalize [OPTIONS] [PAYLOAD_FILE]",
		Short: "Print the payload bytes that would be signed.",
		Long: `Print the payload bytes that would be signed for PAYLOAD_FILE.

    Without PAYLOAD_FILE the payload is empty (POST-as-GET). Under ACME v2
    challenge responses become {} and the legacy resource member is removed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			version, err := o.GetVersion()
			if err != nil {
				return err
			}
			msg, err := signing.LoadMessage(signing.MessageOptions{
				PayloadPath: payloadArg(args),
				Kind:        o.Kind,
			})
			if err != nil {
				return err
			}
			data, err := payload.Normalize(msg, version)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(append(data, '\n'))
			return err
		},
	}

	o.AddFlags(cmd)
	return cmd
}
