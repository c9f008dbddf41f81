package hpke

import (
	"errors"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
)

// Re-export sentinel errors from hpkeerrors for errors.Is() checks.
var (
	// ErrInvalidSuite is returned when a KEM, KDF or AEAD identifier is not supported.
	ErrInvalidSuite = hpkeerrors.ErrInvalidSuite

	// ErrInvalidKey is returned for malformed, off-curve, identity or
	// wrong-length keys.
	ErrInvalidKey = hpkeerrors.ErrInvalidKey

	// ErrInvalidMode is returned when the PSK or sender key inputs do not
	// match the requested mode.
	ErrInvalidMode = hpkeerrors.ErrInvalidMode

	// ErrInvalidLength is returned when a requested output is too long or a
	// ciphertext is shorter than the AEAD tag.
	ErrInvalidLength = hpkeerrors.ErrInvalidLength

	// ErrAuthenticationFailed is returned when a ciphertext does not
	// authenticate. No plaintext is ever returned with it.
	ErrAuthenticationFailed = hpkeerrors.ErrAuthenticationFailed

	// ErrSequenceExhausted is returned when a context has used every nonce.
	ErrSequenceExhausted = hpkeerrors.ErrSequenceExhausted

	// ErrDeriveKeyPair is returned when key derivation finds no valid scalar.
	ErrDeriveKeyPair = hpkeerrors.ErrDeriveKeyPair

	// ErrExportOnly is returned by Seal and Open under the export-only AEAD.
	ErrExportOnly = hpkeerrors.ErrExportOnly

	// ErrContextClosed is returned when a closed Context is used.
	ErrContextClosed = hpkeerrors.ErrContextClosed

	// ErrWrongRole is returned by Seal on a receiving Context and by Open on
	// a sending Context.
	ErrWrongRole = hpkeerrors.ErrWrongRole

	// ErrInvalidImportData is returned when an exported key pair is malformed.
	ErrInvalidImportData = errors.New("invalid import data")
)

// HPKEError is implemented by all typed errors of this package.
type HPKEError = hpkeerrors.Error

// Typed errors. Each matches its sentinel with errors.Is.
type (
	SuiteError  = hpkeerrors.SuiteError
	KeyError    = hpkeerrors.KeyError
	ModeError   = hpkeerrors.ModeError
	LengthError = hpkeerrors.LengthError
)
