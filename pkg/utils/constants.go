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

package utils

// ContentTypeJOSE is the media type of ACME request bodies.
const ContentTypeJOSE = "application/jose+json"

// EnvPrefix prefixes environment variables read by the CLI.
const EnvPrefix = "ACME_JWS_"

// EnvPKCS11PIN supplies the token PIN when --pin is not given.
const EnvPKCS11PIN = EnvPrefix + "PKCS11_PIN"

// DefaultEnvelopePath is where the signed envelope is written when no
// path is given.
const DefaultEnvelopePath = "envelope.json"

// MaskToken hides all but the first and last four characters of a secret.
func MaskToken(token string) string {
	if token == "" {
		return ""
	}
	r := []rune(token)
	if len(r) <= 8 {
		return "***"
	}
	return string(r[:4]) + "..." + string(r[len(r)-4:])
}
