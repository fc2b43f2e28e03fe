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
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-jose/go-jose/v4"

	"github.com/0xop89/certbot/pkg/jws"
	"github.com/0xop89/certbot/pkg/logging"
	"github.com/0xop89/certbot/pkg/payload"
	"github.com/0xop89/certbot/pkg/tracing"
)

// EnvelopeFormat selects how an envelope is written.
type EnvelopeFormat string

const (
	// FormatJSON is the flattened JSON serialization ACME servers accept.
	FormatJSON EnvelopeFormat = "json"
	// FormatCompact is the dot-separated compact serialization.
	FormatCompact EnvelopeFormat = "compact"
)

// ParseEnvelopeFormat parses a format name; empty selects FormatJSON.
func ParseEnvelopeFormat(s string) (EnvelopeFormat, error) {
	switch EnvelopeFormat(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatCompact:
		return FormatCompact, nil
	default:
		return "", fmt.Errorf("unknown envelope format %q (supported: json, compact)", s)
	}
}

// SignRequest normalizes req.Message for the request's ACME version and
// signs it with key, which may be anything go-jose accepts.
func SignRequest(ctx context.Context, key any, alg jose.SignatureAlgorithm, req Request, logger logging.Logger) (*jws.Envelope, error) {
	logger = logging.EnsureLogger(logger)
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := req.Validate(); err != nil {
		return nil, fmt.Errorf("invalid request: %w", err)
	}

	binding := jws.HeaderJWK
	if req.KeyID != "" {
		binding = jws.HeaderKeyID
	}
	attrs := map[string]interface{}{
		"jws.alg":      string(alg),
		"jws.binding":  binding,
		"acme.url":     req.URL,
		"acme.version": int(req.version()),
	}

	var env *jws.Envelope
	err := tracing.Run(ctx, "acme.sign", attrs, func(context.Context) error {
		body, err := payload.Normalize(req.Message, req.version())
		if err != nil {
			return err
		}
		logger.Debug("  Payload: %d bytes (ACME v%d)", len(body), req.version())

		env, err = jws.Sign(body, key, alg, req.Nonce, req.URL, req.KeyID)
		return err
	})
	if err != nil {
		return nil, err
	}
	logger.Debug("  Signed with %s, key bound by %s", alg, binding)
	return env, nil
}

// EncodeEnvelope serializes env in the given format.
func EncodeEnvelope(env *jws.Envelope, format EnvelopeFormat) ([]byte, error) {
	switch format {
	case FormatCompact:
		s, err := env.CompactSerialize()
		if err != nil {
			return nil, err
		}
		return []byte(s + "\n"), nil
	case "", FormatJSON:
		return []byte(env.FullSerialize() + "\n"), nil
	default:
		return nil, fmt.Errorf("unknown envelope format %q", format)
	}
}

// WriteEnvelope writes env to path, or to stdout when path is empty.
func WriteEnvelope(env *jws.Envelope, path string, format EnvelopeFormat) error {
	data, err := EncodeEnvelope(env, format)
	if err != nil {
		return fmt.Errorf("failed to encode envelope: %w", err)
	}
	if path == "" {
		_, err = os.Stdout.Write(data)
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write envelope: %w", err)
	}
	return nil
}
