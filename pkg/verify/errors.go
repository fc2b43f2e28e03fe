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

package verify

import (
	"errors"
	"fmt"
)

// ErrorType represents the category of verification error.
type ErrorType int

const (
	// ErrTypeUnknown indicates an unclassified error.
	ErrTypeUnknown ErrorType = iota

	// ErrTypeSignatureInvalid indicates the cryptographic signature is invalid.
	ErrTypeSignatureInvalid

	// ErrTypeHeaderInvalid indicates the protected header breaks an ACME
	// rule (missing nonce or url, wrong url, bad key binding).
	ErrTypeHeaderInvalid

	// ErrTypeKeyMismatch indicates the supplied key does not match the
	// key named by the envelope.
	ErrTypeKeyMismatch

	// ErrTypeFileNotFound indicates a required file is missing.
	ErrTypeFileNotFound

	// ErrTypeInvalidFormat indicates the envelope could not be parsed.
	ErrTypeInvalidFormat

	// ErrTypeConfiguration indicates a configuration error.
	ErrTypeConfiguration

	// ErrTypeIO indicates an I/O error (file read/write).
	ErrTypeIO
)

func (e ErrorType) String() string {
	switch e {
	case ErrTypeSignatureInvalid:
		return "InvalidSignature"
	case ErrTypeHeaderInvalid:
		return "InvalidHeader"
	case ErrTypeKeyMismatch:
		return "KeyMismatch"
	case ErrTypeFileNotFound:
		return "FileNotFound"
	case ErrTypeInvalidFormat:
		return "InvalidFormat"
	case ErrTypeConfiguration:
		return "ConfigurationError"
	case ErrTypeIO:
		return "IOError"
	default:
		return "UnknownError"
	}
}

// VerificationError is a structured error type for verification failures.
//
// Example usage:
//
//	var verifyErr *VerificationError
//	if errors.As(err, &verifyErr) {
//	    log.Printf("verification failed: type=%s, path=%s", verifyErr.Type, verifyErr.Path)
//	}
type VerificationError struct {
	// Type categorizes the error for programmatic handling.
	Type ErrorType

	// Path is the file path or header member related to the error (optional).
	Path string

	Message string

	// Cause is the underlying error, if any.
	Cause error
}

func (e *VerificationError) Error() string {
	if e.Path != "" && e.Cause != nil {
		return fmt.Sprintf("%s: %s (path: %s): %v", e.Type, e.Message, e.Path, e.Cause)
	}
	if e.Path != "" {
		return fmt.Sprintf("%s: %s (path: %s)", e.Type, e.Message, e.Path)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Type, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

func (e *VerificationError) Unwrap() error {
	return e.Cause
}

// NewVerificationError creates a new verification error.
func NewVerificationError(errType ErrorType, message string, cause error) *VerificationError {
	return &VerificationError{
		Type:    errType,
		Message: message,
		Cause:   cause,
	}
}

// NewVerificationErrorWithPath creates a new verification error with a path.
func NewVerificationErrorWithPath(errType ErrorType, path, message string, cause error) *VerificationError {
	return &VerificationError{
		Type:    errType,
		Path:    path,
		Message: message,
		Cause:   cause,
	}
}

// IsType reports whether err wraps a VerificationError of the given type.
func IsType(err error, errType ErrorType) bool {
	var verifyErr *VerificationError
	if errors.As(err, &verifyErr) {
		return verifyErr.Type == errType
	}
	return false
}
