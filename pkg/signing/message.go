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

package signing

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/0xop89/certbot/pkg/acme"
)

// MessageOptions names the request body to sign.
type MessageOptions struct {
	// PayloadPath is a JSON file holding the body. Empty means no body.
	PayloadPath string
	// Kind is an acme.NewMessage kind. Empty treats the body as a plain
	// JSON object.
	Kind string
}

// LoadMessage reads the request body described by opts.
func LoadMessage(opts MessageOptions) (any, error) {
	var data []byte
	if opts.PayloadPath != "" {
		var err error
		data, err = os.ReadFile(opts.PayloadPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read payload: %w", err)
		}
		data = bytes.TrimSpace(data)
	}

	if opts.Kind != "" {
		return acme.DecodeMessage(opts.Kind, data)
	}
	if len(data) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var obj map[string]any
	if err := dec.Decode(&obj); err != nil {
		return nil, fmt.Errorf("payload is not a JSON object: %w", err)
	}
	if obj == nil {
		return nil, errors.New("payload is not a JSON object")
	}
	return obj, nil
}
