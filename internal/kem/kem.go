// Package kem implements the Diffie-Hellman based key encapsulation
// mechanisms of RFC 9180 §4.1 over P-256, P-384, P-521, X25519 and X448.
package kem

import (
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"sort"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
	"github.com/vaultsandbox/hpke-go/internal/kdf"
)

// ID is a KEM identifier as registered in RFC 9180 §7.1.
type ID uint16

// Registered KEM identifiers.
const (
	P256HKDFSHA256   ID = 0x0010
	P384HKDFSHA384   ID = 0x0011
	P521HKDFSHA512   ID = 0x0012
	X25519HKDFSHA256 ID = 0x0020
	X448HKDFSHA512   ID = 0x0021
)

// maxDeriveAttempts is the number of candidates DeriveKeyPair tries on the
// NIST curves before giving up.
const maxDeriveAttempts = 256

type params struct {
	curve      Curve
	kdf        kdf.ID
	secretSize int
	// rejectionSampling selects the candidate loop of DeriveKeyPair used for
	// prime-order curves; Montgomery curves accept any byte string.
	rejectionSampling bool
	bitmask           byte
}

var registry = map[ID]params{
	P256HKDFSHA256:   {curve: curveP256, kdf: kdf.HKDFSHA256, secretSize: 32, rejectionSampling: true, bitmask: 0xff},
	P384HKDFSHA384:   {curve: curveP384, kdf: kdf.HKDFSHA384, secretSize: 48, rejectionSampling: true, bitmask: 0xff},
	P521HKDFSHA512:   {curve: curveP521, kdf: kdf.HKDFSHA512, secretSize: 64, rejectionSampling: true, bitmask: 0x01},
	X25519HKDFSHA256: {curve: curveX25519, kdf: kdf.HKDFSHA256, secretSize: 32},
	X448HKDFSHA512:   {curve: curveX448, kdf: kdf.HKDFSHA512, secretSize: 64},
}

// IDs returns the registered KEM identifiers in ascending order.
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

// KEM is a DHKEM instance: a curve paired with the KDF that turns DH
// outputs into a shared secret.
type KEM struct {
	id      ID
	curve   Curve
	kdf     *kdf.KDF
	suiteID []byte
	params
}

// New returns the KEM registered under id.
func New(id ID) (*KEM, error) {
	p, ok := registry[id]
	if !ok {
		return nil, &hpkeerrors.SuiteError{Component: "kem", ID: uint16(id)}
	}
	k, err := kdf.New(p.kdf)
	if err != nil {
		return nil, err
	}
	return &KEM{
		id:      id,
		curve:   p.curve,
		kdf:     k,
		suiteID: kdf.KEMSuiteID(uint16(id)),
		params:  p,
	}, nil
}

// ID returns the KEM identifier.
func (k *KEM) ID() ID { return k.id }

// String returns the RFC 9180 name, e.g. "DHKEM(X25519, HKDF-SHA256)".
func (k *KEM) String() string {
	return fmt.Sprintf("DHKEM(%s, %s)", k.curve.Name(), k.kdf)
}

// SharedSecretSize returns Nsecret.
func (k *KEM) SharedSecretSize() int { return k.secretSize }

// EncapsulatedKeySize returns Nenc.
func (k *KEM) EncapsulatedKeySize() int { return k.curve.PointSize() }

// PublicKeySize returns Npk.
func (k *KEM) PublicKeySize() int { return k.curve.PointSize() }

// PrivateKeySize returns Nsk.
func (k *KEM) PrivateKeySize() int { return k.curve.ScalarSize() }

// GenerateKeyPair returns a fresh (private, public) key pair. A nil rand
// uses the package random source.
func (k *KEM) GenerateKeyPair(rand io.Reader) (sk, pk []byte, err error) {
	sk, err = k.curve.GenerateScalar(reader(rand))
	if err != nil {
		return nil, nil, fmt.Errorf("generate %s key: %w", k.curve.Name(), err)
	}
	pk, err = k.curve.ScalarBaseMult(sk)
	if err != nil {
		clear(sk)
		return nil, nil, err
	}
	return sk, pk, nil
}

// DeriveKeyPair deterministically derives a key pair from ikm (RFC 9180 §7.1.3).
func (k *KEM) DeriveKeyPair(ikm []byte) (sk, pk []byte, err error) {
	dkpPRK := k.kdf.LabeledExtract(k.suiteID, nil, "dkp_prk", ikm)
	defer clear(dkpPRK)

	if !k.rejectionSampling {
		sk, err = k.kdf.LabeledExpand(k.suiteID, dkpPRK, "sk", nil, k.curve.ScalarSize())
		if err != nil {
			return nil, nil, err
		}
	} else {
		sk, err = k.deriveCandidate(dkpPRK)
		if err != nil {
			return nil, nil, err
		}
	}

	pk, err = k.curve.ScalarBaseMult(sk)
	if err != nil {
		clear(sk)
		return nil, nil, err
	}
	return sk, pk, nil
}

func (k *KEM) deriveCandidate(dkpPRK []byte) ([]byte, error) {
	for counter := 0; counter < maxDeriveAttempts; counter++ {
		candidate, err := k.kdf.LabeledExpand(k.suiteID, dkpPRK, "candidate", []byte{byte(counter)}, k.curve.ScalarSize())
		if err != nil {
			return nil, err
		}
		candidate[0] &= k.bitmask
		if k.curve.CheckScalar(candidate) == nil {
			return candidate, nil
		}
		clear(candidate)
	}
	return nil, hpkeerrors.ErrDeriveKeyPair
}

// PublicKey returns the serialized public key for sk.
func (k *KEM) PublicKey(sk []byte) ([]byte, error) {
	return k.curve.ScalarBaseMult(sk)
}

// CheckPublicKey validates a serialized public key.
func (k *KEM) CheckPublicKey(pk []byte) error {
	return k.curve.CheckPoint(pk)
}

// CheckPrivateKey validates a serialized private key.
func (k *KEM) CheckPrivateKey(sk []byte) error {
	return k.curve.CheckScalar(sk)
}

// Encapsulate generates an ephemeral key pair, returning the shared secret
// and the encapsulated key (the serialized ephemeral public key).
func (k *KEM) Encapsulate(rand io.Reader, pkR []byte) (sharedSecret, enc []byte, err error) {
	if err := k.curve.CheckPoint(pkR); err != nil {
		return nil, nil, err
	}

	skE, pkE, err := k.GenerateKeyPair(rand)
	if err != nil {
		return nil, nil, err
	}
	defer clear(skE)

	dh, err := k.curve.ScalarMult(skE, pkR)
	if err != nil {
		return nil, nil, err
	}
	defer clear(dh)

	sharedSecret, err = k.extractAndExpand(dh, kemContext(pkE, pkR))
	if err != nil {
		return nil, nil, err
	}
	return sharedSecret, pkE, nil
}

// Decapsulate recovers the shared secret from enc using the recipient's private key.
func (k *KEM) Decapsulate(enc, skR []byte) ([]byte, error) {
	if err := k.checkEncapsulatedKey(enc); err != nil {
		return nil, err
	}

	dh, err := k.curve.ScalarMult(skR, enc)
	if err != nil {
		return nil, err
	}
	defer clear(dh)

	pkR, err := k.curve.ScalarBaseMult(skR)
	if err != nil {
		return nil, err
	}

	return k.extractAndExpand(dh, kemContext(enc, pkR))
}

// AuthEncapsulate is Encapsulate with the sender's static key mixed into
// the shared secret, so the recipient can authenticate the sender.
func (k *KEM) AuthEncapsulate(rand io.Reader, pkR, skS []byte) (sharedSecret, enc []byte, err error) {
	if err := k.curve.CheckPoint(pkR); err != nil {
		return nil, nil, err
	}
	pkS, err := k.curve.ScalarBaseMult(skS)
	if err != nil {
		return nil, nil, err
	}

	skE, pkE, err := k.GenerateKeyPair(rand)
	if err != nil {
		return nil, nil, err
	}
	defer clear(skE)

	dh, err := k.authDH(skE, pkR, skS, pkR)
	if err != nil {
		return nil, nil, err
	}
	defer clear(dh)

	sharedSecret, err = k.extractAndExpand(dh, kemContext(pkE, pkR, pkS))
	if err != nil {
		return nil, nil, err
	}
	return sharedSecret, pkE, nil
}

// AuthDecapsulate recovers a shared secret produced by AuthEncapsulate,
// binding it to the sender's public key.
func (k *KEM) AuthDecapsulate(enc, skR, pkS []byte) ([]byte, error) {
	if err := k.checkEncapsulatedKey(enc); err != nil {
		return nil, err
	}
	if err := k.curve.CheckPoint(pkS); err != nil {
		return nil, err
	}

	dh, err := k.authDH(skR, enc, skR, pkS)
	if err != nil {
		return nil, err
	}
	defer clear(dh)

	pkR, err := k.curve.ScalarBaseMult(skR)
	if err != nil {
		return nil, err
	}

	return k.extractAndExpand(dh, kemContext(enc, pkR, pkS))
}

// authDH returns DH(sk1, pk1) || DH(sk2, pk2). Both products are always
// computed so a failure in either costs the same.
func (k *KEM) authDH(sk1, pk1, sk2, pk2 []byte) ([]byte, error) {
	dh1, err1 := k.curve.ScalarMult(sk1, pk1)
	dh2, err2 := k.curve.ScalarMult(sk2, pk2)
	if err1 != nil || err2 != nil {
		clear(dh1)
		clear(dh2)
		if err1 != nil {
			return nil, err1
		}
		return nil, err2
	}

	dh := make([]byte, 0, len(dh1)+len(dh2))
	dh = append(dh, dh1...)
	dh = append(dh, dh2...)
	clear(dh1)
	clear(dh2)
	return dh, nil
}

// checkEncapsulatedKey validates enc as a public point of this KEM.
func (k *KEM) checkEncapsulatedKey(enc []byte) error {
	if err := k.curve.CheckPoint(enc); err != nil {
		var keyErr *hpkeerrors.KeyError
		if errors.As(err, &keyErr) {
			return &hpkeerrors.KeyError{Kind: "encapsulated", Reason: keyErr.Reason}
		}
		return err
	}
	return nil
}

// extractAndExpand turns a DH output into the KEM shared secret.
func (k *KEM) extractAndExpand(dh, kemContext []byte) ([]byte, error) {
	eaePRK := k.kdf.LabeledExtract(k.suiteID, nil, "eae_prk", dh)
	defer clear(eaePRK)
	return k.kdf.LabeledExpand(k.suiteID, eaePRK, "shared_secret", kemContext, k.secretSize)
}

func kemContext(parts ...[]byte) []byte {
	n := 0
	for _, p := range parts {
		n += len(p)
	}
	out := make([]byte, 0, n)
	for _, p := range parts {
		out = append(out, p...)
	}
	return out
}

// randReader is the random source used for ephemeral and generated keys.
// It defaults to nil (which uses crypto/rand) but can be overridden for testing.
var randReader io.Reader

func reader(r io.Reader) io.Reader {
	if r != nil {
		return r
	}
	if randReader != nil {
		return randReader
	}
	return rand.Reader
}
