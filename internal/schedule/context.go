package schedule

import (
	"crypto/cipher"
	"encoding/binary"
	"sync"

	"github.com/vaultsandbox/hpke-go/internal/aead"
	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
	"github.com/vaultsandbox/hpke-go/internal/kdf"
)

// role restricts which of Seal and Open a Context accepts.
type role uint8

const (
	roleAny role = iota
	roleSender
	roleReceiver
)

// Context is an encryption context produced by the key schedule. A sender
// context seals and a receiver context opens; the other operation fails
// with ErrWrongRole. Both can export secrets. Methods are safe for
// concurrent use. Close wipes the key material.
type Context struct {
	mu sync.Mutex

	mode    Mode
	role    role
	kdf     *kdf.KDF
	aead    *aead.AEAD
	suiteID []byte
	cipher  cipher.AEAD

	key            []byte
	baseNonce      []byte
	exporterSecret []byte

	seq    uint64
	maxSeq uint64
	closed bool
}

// Mode returns the mode the context was derived under.
func (c *Context) Mode() Mode { return c.mode }

// Overhead returns the number of bytes Seal adds to a plaintext.
func (c *Context) Overhead() int { return c.aead.TagSize() }

// Sequence returns the sequence number the next Seal or Open will use.
func (c *Context) Sequence() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.seq
}

// Seal encrypts plaintext bound to aad and advances the sequence number.
func (c *Context) Seal(aad, plaintext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUsable(roleSender); err != nil {
		return nil, err
	}

	nonce := c.computeNonce()
	ciphertext := aead.Seal(c.cipher, nonce, aad, plaintext)
	c.seq++
	return ciphertext, nil
}

// Open decrypts ciphertext bound to aad. The sequence number advances only
// when authentication succeeds.
func (c *Context) Open(aad, ciphertext []byte) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.checkUsable(roleReceiver); err != nil {
		return nil, err
	}

	nonce := c.computeNonce()
	plaintext, err := aead.Open(c.cipher, nonce, aad, ciphertext)
	if err != nil {
		return nil, err
	}
	c.seq++
	return plaintext, nil
}

// Export derives a secret of length bytes bound to exporterContext. It does
// not touch the sequence number.
func (c *Context) Export(exporterContext []byte, length int) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil, hpkeerrors.ErrContextClosed
	}
	return c.kdf.LabeledExpand(c.suiteID, c.exporterSecret, "sec", exporterContext, length)
}

// Close wipes the key, base nonce and exporter secret. Later calls fail
// with ErrContextClosed. Close is idempotent.
func (c *Context) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	clear(c.key)
	clear(c.baseNonce)
	clear(c.exporterSecret)
	c.key, c.baseNonce, c.exporterSecret = nil, nil, nil
	c.cipher = nil
	c.closed = true
	return nil
}

func (c *Context) checkUsable(op role) error {
	if c.closed {
		return hpkeerrors.ErrContextClosed
	}
	if c.role != roleAny && c.role != op {
		return hpkeerrors.ErrWrongRole
	}
	if c.aead.IsExportOnly() {
		return hpkeerrors.ErrExportOnly
	}
	if c.seq >= c.maxSeq {
		return hpkeerrors.ErrSequenceExhausted
	}
	return nil
}

// computeNonce returns base_nonce XOR I2OSP(seq, Nn).
func (c *Context) computeNonce() []byte {
	nonce := make([]byte, len(c.baseNonce))
	var seq [8]byte
	binary.BigEndian.PutUint64(seq[:], c.seq)

	offset := len(nonce) - len(seq)
	for i := range nonce {
		nonce[i] = c.baseNonce[i]
		if j := i - offset; j >= 0 {
			nonce[i] ^= seq[j]
		}
	}
	return nonce
}
