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

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
)

// PathType is the kind of filesystem entry a path must name.
type PathType int

const (
	PathTypeFile PathType = iota
	PathTypeFolder
	PathTypeAny
)

// PathValidator checks that a required path exists and has the expected
// type.
type PathValidator struct {
	fieldName string
	path      string
	pathType  PathType
}

func NewPathValidator(fieldName, path string, pathType PathType) *PathValidator {
	return &PathValidator{
		fieldName: fieldName,
		path:      path,
		pathType:  pathType,
	}
}

// Validate reports an error naming the field when the path is empty,
// missing, or of the wrong type.
func (v *PathValidator) Validate() error {
	if v.path == "" {
		return fmt.Errorf("%s is required", v.fieldName)
	}

	info, err := os.Stat(v.path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%s %q does not exist", v.fieldName, v.path)
		}
		return fmt.Errorf("checking %s %q: %w", v.fieldName, v.path, err)
	}

	switch v.pathType {
	case PathTypeFile:
		if info.IsDir() {
			return fmt.Errorf("%s %q is a directory, expected file", v.fieldName, v.path)
		}
	case PathTypeFolder:
		if !info.IsDir() {
			return fmt.Errorf("%s %q is a file, expected directory", v.fieldName, v.path)
		}
	}
	return nil
}

func ValidateFileExists(fieldName, path string) error {
	return NewPathValidator(fieldName, path, PathTypeFile).Validate()
}

// ValidateOptionalFile accepts an empty path.
func ValidateOptionalFile(fieldName, path string) error {
	if path == "" {
		return nil
	}
	return ValidateFileExists(fieldName, path)
}

// ValidateOutputPath checks that the directory an output file will be
// written to exists. An empty path means stdout and is accepted.
func ValidateOutputPath(fieldName, path string) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if err := NewPathValidator(fieldName+" directory", dir, PathTypeFolder).Validate(); err != nil {
		return err
	}
	return nil
}

// ValidateURL checks that raw is an absolute http or https URL, as ACME
// requires for the url header.
func ValidateURL(fieldName, raw string) error {
	if raw == "" {
		return fmt.Errorf("%s is required", fieldName)
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%s %q is not a valid URL: %w", fieldName, raw, err)
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return fmt.Errorf("%s %q must use http or https", fieldName, raw)
	}
	if u.Host == "" {
		return fmt.Errorf("%s %q has no host", fieldName, raw)
	}
	return nil
}

// ValidateOptionalURL accepts an empty URL.
func ValidateOptionalURL(fieldName, raw string) error {
	if raw == "" {
		return nil
	}
	return ValidateURL(fieldName, raw)
}
