package hpke

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/vaultsandbox/hpke-go/internal/codec"
	"github.com/vaultsandbox/hpke-go/internal/kem"
)

// KeyPair is a KEM key pair. The private key is never part of its default
// JSON or string form; use Export for an explicit copy.
type KeyPair struct {
	kemID      KEMID
	publicKey  []byte
	privateKey []byte
}

// GenerateKeyPair returns a fresh key pair for kemID.
func GenerateKeyPair(kemID KEMID) (*KeyPair, error) {
	k, err := kem.New(kem.ID(kemID))
	if err != nil {
		return nil, err
	}
	return generateKeyPair(k, nil)
}

// GenerateKeyPairFrom is GenerateKeyPair with an explicit random source.
func GenerateKeyPairFrom(kemID KEMID, rand io.Reader) (*KeyPair, error) {
	k, err := kem.New(kem.ID(kemID))
	if err != nil {
		return nil, err
	}
	return generateKeyPair(k, rand)
}

// DeriveKeyPair deterministically derives a key pair from ikm
// (RFC 9180 §7.1.3). ikm should carry at least Nsk bytes of entropy.
func DeriveKeyPair(kemID KEMID, ikm []byte) (*KeyPair, error) {
	k, err := kem.New(kem.ID(kemID))
	if err != nil {
		return nil, err
	}
	return deriveKeyPair(k, ikm)
}

// KeyPairFromPrivateKey rebuilds a key pair from a serialized private key,
// deriving the public key.
func KeyPairFromPrivateKey(kemID KEMID, sk []byte) (*KeyPair, error) {
	k, err := kem.New(kem.ID(kemID))
	if err != nil {
		return nil, err
	}
	pk, err := k.PublicKey(sk)
	if err != nil {
		return nil, err
	}
	return &KeyPair{
		kemID:      kemID,
		publicKey:  pk,
		privateKey: append([]byte(nil), sk...),
	}, nil
}

func generateKeyPair(k *kem.KEM, rand io.Reader) (*KeyPair, error) {
	sk, pk, err := k.GenerateKeyPair(rand)
	if err != nil {
		return nil, err
	}
	return &KeyPair{kemID: KEMID(k.ID()), publicKey: pk, privateKey: sk}, nil
}

func deriveKeyPair(k *kem.KEM, ikm []byte) (*KeyPair, error) {
	sk, pk, err := k.DeriveKeyPair(ikm)
	if err != nil {
		return nil, err
	}
	return &KeyPair{kemID: KEMID(k.ID()), publicKey: pk, privateKey: sk}, nil
}

// KEM returns the KEM the key pair belongs to.
func (kp *KeyPair) KEM() KEMID { return kp.kemID }

// PublicKey returns a copy of the serialized public key.
func (kp *KeyPair) PublicKey() []byte {
	return append([]byte(nil), kp.publicKey...)
}

// PrivateKey returns a copy of the serialized private key, or nil after
// Zeroize.
func (kp *KeyPair) PrivateKey() []byte {
	if kp.privateKey == nil {
		return nil
	}
	return append([]byte(nil), kp.privateKey...)
}

// Zeroize overwrites the private key. The public key remains usable.
func (kp *KeyPair) Zeroize() {
	clear(kp.privateKey)
	kp.privateKey = nil
}

func (kp *KeyPair) String() string {
	return fmt.Sprintf("KeyPair{kem: %s, publicKey: %s, privateKey: [REDACTED]}", kp.kemID, codec.ToBase64URL(kp.publicKey))
}

// GoString redacts the private key from %#v output.
func (kp *KeyPair) GoString() string {
	return kp.String()
}

type keyPairJSON struct {
	KEM       KEMID       `json:"kem"`
	PublicKey codec.Bytes `json:"publicKey"`
}

// MarshalJSON encodes the KEM and public key only.
func (kp *KeyPair) MarshalJSON() ([]byte, error) {
	return json.Marshal(keyPairJSON{KEM: kp.kemID, PublicKey: kp.publicKey})
}
