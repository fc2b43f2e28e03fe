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

	"github.com/0xop89/certbot/pkg/payload"
)

// NormalizeOptions configures the normalize command.
type NormalizeOptions struct {
	MessageFlags
}

func (o *NormalizeOptions) AddFlags(cmd *cobra.Command) {
	o.MessageFlags.AddFlags(cmd)
}

// GetVersion returns the ACME version, defaulting to v2.
func (o *NormalizeOptions) GetVersion() (payload.Version, error) {
	if o.Version == 0 {
		return payload.ACMEv2, nil
	}
	return payload.ParseVersion(o.Version)
}
