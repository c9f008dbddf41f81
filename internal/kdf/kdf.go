// Package kdf implements the HKDF extract-and-expand schedule and the
// HPKE-labeled variants used to domain-separate every derivation.
package kdf

import (
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"
	"io"
	"sort"

	"golang.org/x/crypto/hkdf"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
)

// ID is a KDF identifier as registered in RFC 9180 §7.2.
type ID uint16

// Registered KDF identifiers.
const (
	HKDFSHA256 ID = 0x0001
	HKDFSHA384 ID = 0x0002
	HKDFSHA512 ID = 0x0003
)

// maxExpandBlocks bounds HKDF-Expand output to 255 hash blocks.
const maxExpandBlocks = 255

type params struct {
	name string
	hash func() hash.Hash
	size int
}

var registry = map[ID]params{
	HKDFSHA256: {name: "HKDF-SHA256", hash: sha256.New, size: sha256.Size},
	HKDFSHA384: {name: "HKDF-SHA384", hash: sha512.New384, size: sha512.Size384},
	HKDFSHA512: {name: "HKDF-SHA512", hash: sha512.New, size: sha512.Size},
}

// IDs returns the registered KDF identifiers in ascending order.
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

// KDF is an HKDF instance bound to one hash function.
type KDF struct {
	id ID
	params
}

// New returns the KDF registered under id.
func New(id ID) (*KDF, error) {
	p, ok := registry[id]
	if !ok {
		return nil, &hpkeerrors.SuiteError{Component: "kdf", ID: uint16(id)}
	}
	return &KDF{id: id, params: p}, nil
}

// ID returns the KDF identifier.
func (k *KDF) ID() ID { return k.id }

// Size returns Nh, the output size of the underlying hash.
func (k *KDF) Size() int { return k.size }

// String returns the registered algorithm name.
func (k *KDF) String() string { return k.name }

// MaxExpandLength is the largest output Expand will produce.
func (k *KDF) MaxExpandLength() int { return maxExpandBlocks * k.size }

// Extract derives a pseudorandom key from salt and input key material.
// An empty salt is treated as Nh zero bytes.
func (k *KDF) Extract(salt, ikm []byte) []byte {
	return hkdf.Extract(k.hash, ikm, salt)
}

// Expand stretches prk into length bytes bound to info.
func (k *KDF) Expand(prk, info []byte, length int) ([]byte, error) {
	if length < 0 || length > k.MaxExpandLength() {
		return nil, &hpkeerrors.LengthError{Field: "expand output", Got: length, Max: k.MaxExpandLength()}
	}

	reader := hkdf.Expand(k.hash, prk, info)
	out := make([]byte, length)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, fmt.Errorf("expand: %w", err)
	}
	return out, nil
}
