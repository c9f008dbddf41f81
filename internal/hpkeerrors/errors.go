// Package hpkeerrors provides shared error types for the HPKE packages.
package hpkeerrors

import (
	"errors"
	"fmt"
)

// Sentinel errors for errors.Is() checks
var (
	// ErrInvalidSuite is returned when a KEM, KDF or AEAD identifier is not supported.
	ErrInvalidSuite = errors.New("invalid cipher suite")

	// ErrInvalidKey is returned for malformed, off-curve or identity public keys,
	// out-of-range private keys and keys of the wrong length.
	ErrInvalidKey = errors.New("invalid key")

	// ErrInvalidMode is returned when the mode and the PSK or sender key inputs disagree.
	ErrInvalidMode = errors.New("invalid mode")

	// ErrInvalidLength is returned when a requested output is too long or an
	// input is too short to be valid.
	ErrInvalidLength = errors.New("invalid length")

	// ErrAuthenticationFailed is returned when an AEAD tag does not verify.
	ErrAuthenticationFailed = errors.New("authentication failed")

	// ErrSequenceExhausted is returned when a context has used every nonce.
	ErrSequenceExhausted = errors.New("sequence number exhausted")

	// ErrDeriveKeyPair is returned when deterministic key derivation gives up.
	ErrDeriveKeyPair = errors.New("key pair derivation failed")

	// ErrExportOnly is returned by Seal and Open on an export-only context.
	ErrExportOnly = errors.New("context is export-only")

	// ErrContextClosed is returned when a closed context is used.
	ErrContextClosed = errors.New("context has been closed")

	// ErrWrongRole is returned by Seal on a receiver context and by Open on
	// a sender context.
	ErrWrongRole = errors.New("operation not permitted for this context role")
)

// Error is implemented by all typed HPKE errors.
type Error interface {
	error
	HPKEError() // marker method
}

// SuiteError reports an unsupported algorithm identifier.
type SuiteError struct {
	Component string // "kem", "kdf" or "aead"
	ID        uint16
}

func (e *SuiteError) Error() string {
	return fmt.Sprintf("unsupported %s id 0x%04x", e.Component, e.ID)
}

// Is implements errors.Is for sentinel error matching.
func (e *SuiteError) Is(target error) bool {
	return target == ErrInvalidSuite
}

// HPKEError implements the Error interface.
func (e *SuiteError) HPKEError() {}

// KeyError reports a rejected public or private key.
type KeyError struct {
	Kind   string // "public", "private", "encapsulated"
	Reason string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("invalid %s key: %s", e.Kind, e.Reason)
}

// Is implements errors.Is for sentinel error matching.
func (e *KeyError) Is(target error) bool {
	return target == ErrInvalidKey
}

// HPKEError implements the Error interface.
func (e *KeyError) HPKEError() {}

// ModeError reports inconsistent mode inputs.
type ModeError struct {
	Mode   string
	Reason string
}

func (e *ModeError) Error() string {
	if e.Mode == "" {
		return fmt.Sprintf("invalid mode: %s", e.Reason)
	}
	return fmt.Sprintf("invalid %s mode input: %s", e.Mode, e.Reason)
}

// Is implements errors.Is for sentinel error matching.
func (e *ModeError) Is(target error) bool {
	return target == ErrInvalidMode
}

// HPKEError implements the Error interface.
func (e *ModeError) HPKEError() {}

// LengthError reports a length outside the permitted range.
type LengthError struct {
	Field string
	Got   int
	Max   int // zero when only a minimum applies
	Min   int
}

func (e *LengthError) Error() string {
	if e.Max > 0 && e.Got > e.Max {
		return fmt.Sprintf("%s length %d exceeds maximum %d", e.Field, e.Got, e.Max)
	}
	if e.Got < e.Min {
		return fmt.Sprintf("%s length %d below minimum %d", e.Field, e.Got, e.Min)
	}
	return fmt.Sprintf("invalid %s length %d", e.Field, e.Got)
}

// Is implements errors.Is for sentinel error matching.
func (e *LengthError) Is(target error) bool {
	return target == ErrInvalidLength
}

// HPKEError implements the Error interface.
func (e *LengthError) HPKEError() {}

// InvalidPublicKey is shorthand for a public KeyError.
func InvalidPublicKey(reason string) error {
	return &KeyError{Kind: "public", Reason: reason}
}

// InvalidPrivateKey is shorthand for a private KeyError.
func InvalidPrivateKey(reason string) error {
	return &KeyError{Kind: "private", Reason: reason}
}
