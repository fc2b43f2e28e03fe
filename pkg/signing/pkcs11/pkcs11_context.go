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

// Package pkcs11 signs ACME requests with keys that never leave a PKCS#11
// token.
package pkcs11

import (
	"crypto"
	"fmt"

	"github.com/ThalesGroup/crypto11"
)

// Context is an open session on a PKCS#11 token.
type Context struct {
	ctx *crypto11.Context
}

// LoadContext loads the module named by uri (searching modulePaths) and
// logs in to the token. The PIN comes from the URI, falling back to pin.
func LoadContext(uri *URI, modulePaths []string, pin string) (*Context, error) {
	modulePath, err := uri.FindModule(modulePaths)
	if err != nil {
		return nil, fmt.Errorf("failed to find PKCS#11 module: %w", err)
	}

	pin, err = uri.PIN(pin)
	if err != nil {
		return nil, err
	}

	config := &crypto11.Config{
		Path: modulePath,
		Pin:  pin,
	}
	switch {
	case uri.Token != "":
		config.TokenLabel = uri.Token
	case uri.SlotID != nil:
		slot := int(*uri.SlotID)
		config.SlotNumber = &slot
	default:
		return nil, fmt.Errorf("pkcs11 URI must name a token or slot-id")
	}

	ctx, err := crypto11.Configure(config)
	if err != nil {
		return nil, fmt.Errorf("failed to configure PKCS#11 context: %w", err)
	}
	return &Context{ctx: ctx}, nil
}

// FindSigner returns the private key selected by the URI's id or object
// attribute. Without either, the token must hold exactly one key pair.
func (pc *Context) FindSigner(uri *URI) (crypto.Signer, error) {
	if uri.ID != nil || uri.Object != "" {
		var label []byte
		if uri.Object != "" {
			label = []byte(uri.Object)
		}
		signer, err := pc.ctx.FindKeyPair(uri.ID, label)
		if err != nil {
			return nil, fmt.Errorf("failed to find key pair: %w", err)
		}
		if signer == nil {
			return nil, fmt.Errorf("no key pair matching id=%x object=%q", uri.ID, uri.Object)
		}
		return signer, nil
	}

	signers, err := pc.ctx.FindAllKeyPairs()
	if err != nil {
		return nil, fmt.Errorf("failed to find key pairs: %w", err)
	}
	switch len(signers) {
	case 0:
		return nil, fmt.Errorf("no key pairs found in PKCS#11 token")
	case 1:
		return signers[0], nil
	default:
		return nil, fmt.Errorf("token holds %d key pairs; select one with id or object", len(signers))
	}
}

// Close logs out and unloads the module.
func (pc *Context) Close() error {
	if pc.ctx != nil {
		return pc.ctx.Close()
	}
	return nil
}
