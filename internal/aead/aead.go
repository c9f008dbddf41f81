// Package aead provides the authenticated ciphers HPKE can be configured with.
package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
	"sort"

	"golang.org/x/crypto/chacha20poly1305"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
)

// ID is an AEAD identifier as registered in RFC 9180 §7.3.
type ID uint16

// Registered AEAD identifiers.
const (
	AES128GCM        ID = 0x0001
	AES256GCM        ID = 0x0002
	ChaCha20Poly1305 ID = 0x0003
	ExportOnly       ID = 0xFFFF
)

const (
	gcmNonceSize = 12
	gcmTagSize   = 16
)

type params struct {
	name      string
	keySize   int
	nonceSize int
	tagSize   int
	newCipher func(key []byte) (cipher.AEAD, error)
}

var registry = map[ID]params{
	AES128GCM:        {name: "AES-128-GCM", keySize: 16, nonceSize: gcmNonceSize, tagSize: gcmTagSize, newCipher: newAESGCM},
	AES256GCM:        {name: "AES-256-GCM", keySize: 32, nonceSize: gcmNonceSize, tagSize: gcmTagSize, newCipher: newAESGCM},
	ChaCha20Poly1305: {name: "ChaCha20Poly1305", keySize: chacha20poly1305.KeySize, nonceSize: chacha20poly1305.NonceSize, tagSize: chacha20poly1305.Overhead, newCipher: chacha20poly1305.New},
	ExportOnly:       {name: "Export-only"},
}

// IDs returns the registered AEAD identifiers in ascending order.
func IDs() []ID {
	ids := make([]ID, 0, len(registry))
	for id := range registry {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Supported reports whether id is registered.
func Supported(id ID) bool {
	_, ok := registry[id]
	return ok
}

// AEAD describes one registered cipher.
type AEAD struct {
	id ID
	params
}

// New returns the AEAD registered under id.
func New(id ID) (*AEAD, error) {
	p, ok := registry[id]
	if !ok {
		return nil, &hpkeerrors.SuiteError{Component: "aead", ID: uint16(id)}
	}
	return &AEAD{id: id, params: p}, nil
}

// ID returns the AEAD identifier.
func (a *AEAD) ID() ID { return a.id }

// String returns the registered algorithm name.
func (a *AEAD) String() string { return a.name }

// KeySize returns Nk.
func (a *AEAD) KeySize() int { return a.keySize }

// NonceSize returns Nn.
func (a *AEAD) NonceSize() int { return a.nonceSize }

// TagSize returns Nt.
func (a *AEAD) TagSize() int { return a.tagSize }

// IsExportOnly reports whether the identifier only supports secret export.
func (a *AEAD) IsExportOnly() bool { return a.newCipher == nil }

// NewCipher keys the cipher.
func (a *AEAD) NewCipher(key []byte) (cipher.AEAD, error) {
	if a.IsExportOnly() {
		return nil, hpkeerrors.ErrExportOnly
	}
	if len(key) != a.keySize {
		return nil, &hpkeerrors.LengthError{Field: a.name + " key", Got: len(key), Min: a.keySize, Max: a.keySize}
	}
	c, err := a.newCipher(key)
	if err != nil {
		return nil, fmt.Errorf("create %s cipher: %w", a.name, err)
	}
	return c, nil
}

// newAESGCM keys AES in GCM mode; the key length selects AES-128 or AES-256.
func newAESGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// Seal encrypts and authenticates plaintext under nonce.
func Seal(c cipher.AEAD, nonce, aad, plaintext []byte) []byte {
	return c.Seal(nil, nonce, plaintext, aad)
}

// Open verifies and decrypts ciphertext. Every tag failure is reported as
// ErrAuthenticationFailed with no further detail.
func Open(c cipher.AEAD, nonce, aad, ciphertext []byte) ([]byte, error) {
	if len(ciphertext) < c.Overhead() {
		return nil, &hpkeerrors.LengthError{Field: "ciphertext", Got: len(ciphertext), Min: c.Overhead()}
	}

	plaintext, err := c.Open(nil, nonce, ciphertext, aad)
	if err != nil {
		return nil, hpkeerrors.ErrAuthenticationFailed
	}
	return plaintext, nil
}
