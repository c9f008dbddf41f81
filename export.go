package hpke

import (
	"crypto/subtle"
	"fmt"

	"github.com/vaultsandbox/hpke-go/internal/codec"
	"github.com/vaultsandbox/hpke-go/internal/kem"
)

// ExportVersion is the current export format version.
const ExportVersion = 1

// ExportedKeyPair carries a key pair including its private key.
// WARNING: contains private key material - handle securely.
type ExportedKeyPair struct {
	// Version is the export format version. MUST be 1.
	Version int `json:"version"`
	// KEM is the KEM codepoint.
	KEM KEMID `json:"kem"`
	// PrivateKey is the serialized private key (base64url).
	PrivateKey string `json:"privateKey"`
	// PublicKey is the serialized public key (base64url). Optional; when
	// present it must match the key derived from PrivateKey.
	PublicKey string `json:"publicKey,omitempty"`
}

// Validate checks the version, KEM and key encodings and sizes.
func (e *ExportedKeyPair) Validate() error {
	if e.Version != ExportVersion {
		return fmt.Errorf("%w: unsupported version %d, expected %d", ErrInvalidImportData, e.Version, ExportVersion)
	}

	k, err := kem.New(kem.ID(e.KEM))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidImportData, err)
	}

	if e.PrivateKey == "" {
		return fmt.Errorf("%w: privateKey is required", ErrInvalidImportData)
	}
	sk, err := codec.FromBase64URL(e.PrivateKey)
	if err != nil {
		return fmt.Errorf("%w: invalid privateKey encoding", ErrInvalidImportData)
	}
	defer clear(sk)
	if len(sk) != k.PrivateKeySize() {
		return fmt.Errorf("%w: privateKey size %d, expected %d", ErrInvalidImportData, len(sk), k.PrivateKeySize())
	}

	if e.PublicKey != "" {
		pk, err := codec.FromBase64URL(e.PublicKey)
		if err != nil {
			return fmt.Errorf("%w: invalid publicKey encoding", ErrInvalidImportData)
		}
		if len(pk) != k.PublicKeySize() {
			return fmt.Errorf("%w: publicKey size %d, expected %d", ErrInvalidImportData, len(pk), k.PublicKeySize())
		}
	}
	return nil
}

// Export returns the key pair including its private key.
func (kp *KeyPair) Export() *ExportedKeyPair {
	return &ExportedKeyPair{
		Version:    ExportVersion,
		KEM:        kp.kemID,
		PrivateKey: codec.ToBase64URL(kp.privateKey),
		PublicKey:  codec.ToBase64URL(kp.publicKey),
	}
}

// ImportKeyPair rebuilds a key pair from exported data. The public key is
// always derived from the private key.
func ImportKeyPair(data *ExportedKeyPair) (*KeyPair, error) {
	if err := data.Validate(); err != nil {
		return nil, err
	}

	// Validate already checked the encoding and size.
	sk, _ := codec.FromBase64URL(data.PrivateKey)
	defer clear(sk)

	kp, err := KeyPairFromPrivateKey(data.KEM, sk)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to reconstruct key pair: %v", ErrInvalidImportData, err)
	}

	if data.PublicKey != "" {
		pk, _ := codec.FromBase64URL(data.PublicKey)
		if subtle.ConstantTimeCompare(pk, kp.publicKey) != 1 {
			kp.Zeroize()
			return nil, fmt.Errorf("%w: publicKey does not match privateKey", ErrInvalidImportData)
		}
	}
	return kp, nil
}
