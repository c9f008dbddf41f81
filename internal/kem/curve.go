package kem

import (
	"crypto/ecdh"
	"crypto/subtle"
	"io"

	"github.com/cloudflare/circl/dh/x448"
	"golang.org/x/crypto/curve25519"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
)

// Curve is the group capability a DH-based KEM is built on. Scalars and
// points cross this boundary only in their serialized form, so the KEM never
// sees projective coordinates or field representations.
type Curve interface {
	// Name is the curve name as used in the KEM name.
	Name() string
	// ScalarSize is Nsk, the serialized private key length.
	ScalarSize() int
	// PointSize is Npk, the serialized public key length.
	PointSize() int
	// GenerateScalar draws a valid private scalar from rand.
	GenerateScalar(rand io.Reader) ([]byte, error)
	// CheckScalar rejects scalars that are out of range or the wrong length.
	CheckScalar(sk []byte) error
	// CheckPoint decodes pk and rejects off-curve, identity or malformed encodings.
	CheckPoint(pk []byte) error
	// ScalarBaseMult returns the encoded public point for sk.
	ScalarBaseMult(sk []byte) ([]byte, error)
	// ScalarMult returns the encoded DH output of sk and pk. An identity
	// result is reported as an invalid public key.
	ScalarMult(sk, pk []byte) ([]byte, error)
}

// maxScalarAttempts bounds rejection sampling in GenerateScalar.
const maxScalarAttempts = 256

// nistCurve adapts crypto/ecdh NIST curves. Public keys use the SEC1
// uncompressed encoding and private keys a fixed-width big-endian scalar.
type nistCurve struct {
	name       string
	curve      ecdh.Curve
	scalarSize int
	pointSize  int
	topMask    byte
}

var (
	curveP256 = &nistCurve{name: "P-256", curve: ecdh.P256(), scalarSize: 32, pointSize: 65, topMask: 0xff}
	curveP384 = &nistCurve{name: "P-384", curve: ecdh.P384(), scalarSize: 48, pointSize: 97, topMask: 0xff}
	curveP521 = &nistCurve{name: "P-521", curve: ecdh.P521(), scalarSize: 66, pointSize: 133, topMask: 0x01}
)

func (c *nistCurve) Name() string    { return c.name }
func (c *nistCurve) ScalarSize() int { return c.scalarSize }
func (c *nistCurve) PointSize() int  { return c.pointSize }

func (c *nistCurve) GenerateScalar(rand io.Reader) ([]byte, error) {
	sk := make([]byte, c.scalarSize)
	for i := 0; i < maxScalarAttempts; i++ {
		if _, err := io.ReadFull(rand, sk); err != nil {
			return nil, err
		}
		sk[0] &= c.topMask
		if c.CheckScalar(sk) == nil {
			return sk, nil
		}
	}
	clear(sk)
	return nil, hpkeerrors.ErrDeriveKeyPair
}

func (c *nistCurve) CheckScalar(sk []byte) error {
	if len(sk) != c.scalarSize {
		return hpkeerrors.InvalidPrivateKey("wrong length for " + c.name)
	}
	if _, err := c.curve.NewPrivateKey(sk); err != nil {
		return hpkeerrors.InvalidPrivateKey("scalar out of range for " + c.name)
	}
	return nil
}

func (c *nistCurve) CheckPoint(pk []byte) error {
	_, err := c.decodePoint(pk)
	return err
}

func (c *nistCurve) decodePoint(pk []byte) (*ecdh.PublicKey, error) {
	if len(pk) != c.pointSize {
		return nil, hpkeerrors.InvalidPublicKey("wrong length for " + c.name)
	}
	pub, err := c.curve.NewPublicKey(pk)
	if err != nil {
		return nil, hpkeerrors.InvalidPublicKey("not a valid " + c.name + " point")
	}
	return pub, nil
}

func (c *nistCurve) ScalarBaseMult(sk []byte) ([]byte, error) {
	if len(sk) != c.scalarSize {
		return nil, hpkeerrors.InvalidPrivateKey("wrong length for " + c.name)
	}
	priv, err := c.curve.NewPrivateKey(sk)
	if err != nil {
		return nil, hpkeerrors.InvalidPrivateKey("scalar out of range for " + c.name)
	}
	return priv.PublicKey().Bytes(), nil
}

func (c *nistCurve) ScalarMult(sk, pk []byte) ([]byte, error) {
	pub, err := c.decodePoint(pk)
	if err != nil {
		return nil, err
	}
	if len(sk) != c.scalarSize {
		return nil, hpkeerrors.InvalidPrivateKey("wrong length for " + c.name)
	}
	priv, err := c.curve.NewPrivateKey(sk)
	if err != nil {
		return nil, hpkeerrors.InvalidPrivateKey("scalar out of range for " + c.name)
	}
	shared, err := priv.ECDH(pub)
	if err != nil {
		return nil, hpkeerrors.InvalidPublicKey("DH result is the identity")
	}
	return shared, nil
}

// x25519Curve is Curve25519 in Montgomery form (RFC 7748). Every 32-byte
// string is a valid scalar; clamping happens inside the ladder.
type x25519Curve struct{}

var curveX25519 = x25519Curve{}

func (x25519Curve) Name() string    { return "X25519" }
func (x25519Curve) ScalarSize() int { return curve25519.ScalarSize }
func (x25519Curve) PointSize() int  { return curve25519.PointSize }

func (c x25519Curve) GenerateScalar(rand io.Reader) ([]byte, error) {
	sk := make([]byte, curve25519.ScalarSize)
	if _, err := io.ReadFull(rand, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (x25519Curve) CheckScalar(sk []byte) error {
	if len(sk) != curve25519.ScalarSize {
		return hpkeerrors.InvalidPrivateKey("wrong length for X25519")
	}
	return nil
}

func (x25519Curve) CheckPoint(pk []byte) error {
	if len(pk) != curve25519.PointSize {
		return hpkeerrors.InvalidPublicKey("wrong length for X25519")
	}
	var zero [curve25519.PointSize]byte
	if subtle.ConstantTimeCompare(pk, zero[:]) == 1 {
		return hpkeerrors.InvalidPublicKey("identity point")
	}
	return nil
}

func (c x25519Curve) ScalarBaseMult(sk []byte) ([]byte, error) {
	if err := c.CheckScalar(sk); err != nil {
		return nil, err
	}
	pk, err := curve25519.X25519(sk, curve25519.Basepoint)
	if err != nil {
		return nil, hpkeerrors.InvalidPrivateKey(err.Error())
	}
	return pk, nil
}

func (c x25519Curve) ScalarMult(sk, pk []byte) ([]byte, error) {
	if err := c.CheckPoint(pk); err != nil {
		return nil, err
	}
	if err := c.CheckScalar(sk); err != nil {
		return nil, err
	}
	// X25519 rejects low-order points by refusing an all-zero output.
	shared, err := curve25519.X25519(sk, pk)
	if err != nil {
		return nil, hpkeerrors.InvalidPublicKey("low-order point")
	}
	return shared, nil
}

// x448Curve is Curve448 in Montgomery form (RFC 7748), backed by circl.
type x448Curve struct{}

var curveX448 = x448Curve{}

func (x448Curve) Name() string    { return "X448" }
func (x448Curve) ScalarSize() int { return x448.Size }
func (x448Curve) PointSize() int  { return x448.Size }

func (x448Curve) GenerateScalar(rand io.Reader) ([]byte, error) {
	sk := make([]byte, x448.Size)
	if _, err := io.ReadFull(rand, sk); err != nil {
		return nil, err
	}
	return sk, nil
}

func (x448Curve) CheckScalar(sk []byte) error {
	if len(sk) != x448.Size {
		return hpkeerrors.InvalidPrivateKey("wrong length for X448")
	}
	return nil
}

func (x448Curve) CheckPoint(pk []byte) error {
	if len(pk) != x448.Size {
		return hpkeerrors.InvalidPublicKey("wrong length for X448")
	}
	var zero [x448.Size]byte
	if subtle.ConstantTimeCompare(pk, zero[:]) == 1 {
		return hpkeerrors.InvalidPublicKey("identity point")
	}
	return nil
}

func (c x448Curve) ScalarBaseMult(sk []byte) ([]byte, error) {
	if err := c.CheckScalar(sk); err != nil {
		return nil, err
	}
	var secret, public x448.Key
	copy(secret[:], sk)
	x448.KeyGen(&public, &secret)
	clear(secret[:])
	return public[:], nil
}

func (c x448Curve) ScalarMult(sk, pk []byte) ([]byte, error) {
	if err := c.CheckPoint(pk); err != nil {
		return nil, err
	}
	if err := c.CheckScalar(sk); err != nil {
		return nil, err
	}
	var secret, public, shared x448.Key
	copy(secret[:], sk)
	copy(public[:], pk)
	ok := x448.Shared(&shared, &secret, &public)
	clear(secret[:])
	if !ok {
		return nil, hpkeerrors.InvalidPublicKey("low-order point")
	}
	return shared[:], nil
}
