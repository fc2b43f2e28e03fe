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

package pkcs11

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// URI is the subset of an RFC 7512 PKCS#11 URI needed to find a signing
// key: token and key selectors in the path, module and PIN in the query.
type URI struct {
	Token      string
	Object     string
	ID         []byte
	SlotID     *uint
	ModulePath string
	ModuleName string
	PINValue   string
	PINSource  string
}

const uriScheme = "pkcs11:"

// ParseURI parses a pkcs11: URI. At least one of token, id and object must
// be present.
func ParseURI(raw string) (*URI, error) {
	rest, ok := strings.CutPrefix(raw, uriScheme)
	if !ok {
		return nil, fmt.Errorf("malformed pkcs11 URI: missing %q prefix: %s", uriScheme, raw)
	}
	path, query, _ := strings.Cut(rest, "?")

	u := &URI{}
	err := eachAttribute(path, ";", func(name, value string) error {
		switch name {
		case "token":
			u.Token = value
		case "object":
			u.Object = value
		case "id":
			u.ID = []byte(value)
		case "slot-id":
			n, err := strconv.ParseUint(value, 10, 32)
			if err != nil {
				return fmt.Errorf("slot-id must be a 32-bit number: %s", value)
			}
			slot := uint(n)
			u.SlotID = &slot
		case "type":
			if value != "private" {
				return fmt.Errorf("type %q cannot be used for signing", value)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = eachAttribute(query, "&", func(name, value string) error {
		switch name {
		case "module-path":
			if !filepath.IsAbs(value) {
				return fmt.Errorf("module-path %s must be absolute", value)
			}
			u.ModulePath = value
		case "module-name":
			u.ModuleName = value
		case "pin-value":
			u.PINValue = value
		case "pin-source":
			u.PINSource = value
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if u.PINValue != "" && u.PINSource != "" {
		return nil, fmt.Errorf("pkcs11 URI must not contain both pin-source and pin-value")
	}
	if u.Token == "" && u.ID == nil && u.Object == "" {
		return nil, fmt.Errorf("pkcs11 URI must specify at least one of: token, id, object")
	}
	return u, nil
}

func eachAttribute(s, sep string, fn func(name, value string) error) error {
	if s == "" {
		return nil
	}
	for _, part := range strings.Split(s, sep) {
		name, value, ok := strings.Cut(part, "=")
		if !ok || name == "" {
			return fmt.Errorf("malformed pkcs11 URI attribute %q", part)
		}
		decoded, err := url.PathUnescape(value)
		if err != nil {
			return fmt.Errorf("failed to decode pkcs11 URI attribute %s: %w", name, err)
		}
		if err := fn(name, decoded); err != nil {
			return err
		}
	}
	return nil
}

// PIN resolves the token PIN from pin-value, then pin-source, then the
// fallback. An empty PIN is not an error; some tokens need none.
func (u *URI) PIN(fallback string) (string, error) {
	if u.PINValue != "" {
		return u.PINValue, nil
	}
	if u.PINSource == "" {
		return fallback, nil
	}

	src, err := url.Parse(u.PINSource)
	if err != nil {
		return "", fmt.Errorf("failed to parse pin-source: %w", err)
	}
	if src.Scheme != "" && src.Scheme != "file" {
		return "", fmt.Errorf("pin-source scheme %s is not supported", src.Scheme)
	}
	if !filepath.IsAbs(src.Path) {
		return "", fmt.Errorf("pin-source path %s is not absolute", src.Path)
	}
	data, err := os.ReadFile(src.Path)
	if err != nil {
		return "", fmt.Errorf("failed to read PIN: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// defaultModuleDirs are searched for module-name matches and, failing that,
// for SoftHSM.
var defaultModuleDirs = []string{
	"/usr/lib64/pkcs11",
	"/usr/lib/pkcs11",
	"/usr/lib/x86_64-linux-gnu/softhsm",
	"/usr/lib/softhsm",
	"/usr/local/lib/softhsm",
	"/opt/homebrew/lib/softhsm",
}

// FindModule resolves the module library: the URI's module-path, then a
// module-name match in dirs (or the default directories), then the first
// shared library in dirs, then SoftHSM in the default directories.
func (u *URI) FindModule(dirs []string) (string, error) {
	if u.ModulePath != "" {
		info, err := os.Stat(u.ModulePath)
		if err != nil {
			return "", fmt.Errorf("module-path: %w", err)
		}
		if info.Mode().IsRegular() {
			return u.ModulePath, nil
		}
		if !info.IsDir() {
			return "", fmt.Errorf("module-path %s is not a file or directory", u.ModulePath)
		}
		dirs = []string{u.ModulePath}
	}

	searchDirs := dirs
	if len(searchDirs) == 0 {
		searchDirs = defaultModuleDirs
	}

	if u.ModuleName != "" {
		want := strings.ToLower(u.ModuleName)
		for _, dir := range searchDirs {
			entries, err := os.ReadDir(dir)
			if err != nil {
				continue
			}
			for _, entry := range entries {
				if !entry.IsDir() && strings.Contains(strings.ToLower(entry.Name()), want) {
					return filepath.Join(dir, entry.Name()), nil
				}
			}
		}
		return "", fmt.Errorf("no module %q found in %v", u.ModuleName, searchDirs)
	}

	for _, dir := range dirs {
		matches, _ := filepath.Glob(filepath.Join(dir, "*.so"))
		if len(matches) > 0 {
			return matches[0], nil
		}
	}
	for _, dir := range defaultModuleDirs {
		path := filepath.Join(dir, "libsofthsm2.so")
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("PKCS#11 module not found in any standard location")
}
