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

package key

import (
	"bytes"
	"crypto"
	"fmt"

	"github.com/lestrrat-go/jwx/v3/jwa"
	"github.com/lestrrat-go/jwx/v3/jwk"
	jwxjws "github.com/lestrrat-go/jwx/v3/jws"

	"github.com/0xop89/certbot/pkg/jws"
)

// crossCheck verifies env with jwx, which shares no code with go-jose.
func crossCheck(env *jws.Envelope, pub crypto.PublicKey) error {
	compact, err := env.CompactSerialize()
	if err != nil {
		return err
	}

	alg, ok := jwa.LookupSignatureAlgorithm(string(env.Header().Algorithm))
	if !ok {
		return fmt.Errorf("algorithm %s is not known to jwx", env.Header().Algorithm)
	}
	key, err := jwk.Import(pub)
	if err != nil {
		return fmt.Errorf("failed to import public key: %w", err)
	}

	payload, err := jwxjws.Verify([]byte(compact), jwxjws.WithKey(alg, key))
	if err != nil {
		return err
	}
	if !bytes.Equal(payload, env.Payload()) {
		return fmt.Errorf("payload mismatch between verifiers")
	}
	return nil
}
