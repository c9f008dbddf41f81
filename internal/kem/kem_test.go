package kem

import (
	"bytes"
	"encoding/hex"
	"errors"
	"testing"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
)

func mustHex(t *testing.T, s string) []byte {
	t.Helper()
	b, err := hex.DecodeString(s)
	if err != nil {
		t.Fatalf("hex.DecodeString(%q) error = %v", s, err)
	}
	return b
}

// RFC 9180 Appendix A.1 (DHKEM(X25519, HKDF-SHA256), base mode).
const (
	vectorSkEm         = "52c4a758a802cd8b936eceea314432798d5baf2d7e9235dc084ab1b9cfa2f736"
	vectorSkRm         = "4612c550263fc8ad58375df3f557aac531d26850903e55a9f23f21d8534e8ac8"
	vectorPkRm         = "3948cfe0ad1ddb695d780e59077195da6c56506b027329794ab02bca80815c4d"
	vectorEnc          = "37fda3567bdbd628e88668c3c8d7e97d1d1253b6d4ea6d44c150f741f1bf4431"
	vectorSharedSecret = "fe0e18c9f024ce43799ae393c7e8fe8fce9d218875e8227b0187c04e7d2ea1fc"
)

func TestX25519_RFC9180Vector(t *testing.T) {
	k, err := New(X25519HKDFSHA256)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}

	skRm := mustHex(t, vectorSkRm)
	pkRm := mustHex(t, vectorPkRm)

	pk, err := k.PublicKey(skRm)
	if err != nil {
		t.Fatalf("PublicKey() error = %v", err)
	}
	if !bytes.Equal(pk, pkRm) {
		t.Errorf("PublicKey() = %x, want %x", pk, pkRm)
	}

	ss, enc, err := k.Encapsulate(bytes.NewReader(mustHex(t, vectorSkEm)), pkRm)
	if err != nil {
		t.Fatalf("Encapsulate() error = %v", err)
	}
	if want := mustHex(t, vectorEnc); !bytes.Equal(enc, want) {
		t.Errorf("enc = %x, want %x", enc, want)
	}
	if want := mustHex(t, vectorSharedSecret); !bytes.Equal(ss, want) {
		t.Errorf("shared secret = %x, want %x", ss, want)
	}

	got, err := k.Decapsulate(enc, skRm)
	if err != nil {
		t.Fatalf("Decapsulate() error = %v", err)
	}
	if !bytes.Equal(got, ss) {
		t.Errorf("Decapsulate() = %x, want %x", got, ss)
	}
}

func TestSetRandReaderForTesting(t *testing.T) {
	k, _ := New(X25519HKDFSHA256)

	restore := SetRandReaderForTesting(bytes.NewReader(mustHex(t, vectorSkEm)))
	defer restore()

	_, enc, err := k.Encapsulate(nil, mustHex(t, vectorPkRm))
	if err != nil {
		t.Fatalf("Encapsulate() error = %v", err)
	}
	if want := mustHex(t, vectorEnc); !bytes.Equal(enc, want) {
		t.Errorf("enc = %x, want %x", enc, want)
	}
}

func TestKEM_Sizes(t *testing.T) {
	tests := []struct {
		id                     ID
		name                   string
		nSecret, nEnc, nPk, nSk int
	}{
		{P256HKDFSHA256, "DHKEM(P-256, HKDF-SHA256)", 32, 65, 65, 32},
		{P384HKDFSHA384, "DHKEM(P-384, HKDF-SHA384)", 48, 97, 97, 48},
		{P521HKDFSHA512, "DHKEM(P-521, HKDF-SHA512)", 64, 133, 133, 66},
		{X25519HKDFSHA256, "DHKEM(X25519, HKDF-SHA256)", 32, 32, 32, 32},
		{X448HKDFSHA512, "DHKEM(X448, HKDF-SHA512)", 64, 56, 56, 56},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, err := New(tt.id)
			if err != nil {
				t.Fatalf("New() error = %v", err)
			}
			if k.String() != tt.name {
				t.Errorf("String() = %q, want %q", k.String(), tt.name)
			}
			if k.SharedSecretSize() != tt.nSecret {
				t.Errorf("SharedSecretSize() = %d, want %d", k.SharedSecretSize(), tt.nSecret)
			}
			if k.EncapsulatedKeySize() != tt.nEnc {
				t.Errorf("EncapsulatedKeySize() = %d, want %d", k.EncapsulatedKeySize(), tt.nEnc)
			}
			if k.PublicKeySize() != tt.nPk {
				t.Errorf("PublicKeySize() = %d, want %d", k.PublicKeySize(), tt.nPk)
			}
			if k.PrivateKeySize() != tt.nSk {
				t.Errorf("PrivateKeySize() = %d, want %d", k.PrivateKeySize(), tt.nSk)
			}
		})
	}
}

func TestEncapsulate_RoundTrip(t *testing.T) {
	for _, id := range IDs() {
		k, _ := New(id)
		t.Run(k.String(), func(t *testing.T) {
			skR, pkR, err := k.GenerateKeyPair(nil)
			if err != nil {
				t.Fatalf("GenerateKeyPair() error = %v", err)
			}
			if len(skR) != k.PrivateKeySize() || len(pkR) != k.PublicKeySize() {
				t.Fatalf("key sizes = (%d, %d)", len(skR), len(pkR))
			}

			ss, enc, err := k.Encapsulate(nil, pkR)
			if err != nil {
				t.Fatalf("Encapsulate() error = %v", err)
			}
			if len(ss) != k.SharedSecretSize() {
				t.Errorf("shared secret length = %d, want %d", len(ss), k.SharedSecretSize())
			}
			if len(enc) != k.EncapsulatedKeySize() {
				t.Errorf("enc length = %d, want %d", len(enc), k.EncapsulatedKeySize())
			}

			got, err := k.Decapsulate(enc, skR)
			if err != nil {
				t.Fatalf("Decapsulate() error = %v", err)
			}
			if !bytes.Equal(got, ss) {
				t.Error("Decapsulate() shared secret mismatch")
			}

			ss2, enc2, err := k.Encapsulate(nil, pkR)
			if err != nil {
				t.Fatalf("second Encapsulate() error = %v", err)
			}
			if bytes.Equal(enc, enc2) || bytes.Equal(ss, ss2) {
				t.Error("two encapsulations produced the same output")
			}
		})
	}
}

func TestAuthEncapsulate_RoundTrip(t *testing.T) {
	for _, id := range IDs() {
		k, _ := New(id)
		t.Run(k.String(), func(t *testing.T) {
			skR, pkR, _ := k.GenerateKeyPair(nil)
			skS, pkS, _ := k.GenerateKeyPair(nil)

			ss, enc, err := k.AuthEncapsulate(nil, pkR, skS)
			if err != nil {
				t.Fatalf("AuthEncapsulate() error = %v", err)
			}

			got, err := k.AuthDecapsulate(enc, skR, pkS)
			if err != nil {
				t.Fatalf("AuthDecapsulate() error = %v", err)
			}
			if !bytes.Equal(got, ss) {
				t.Error("AuthDecapsulate() shared secret mismatch")
			}

			_, pkOther, _ := k.GenerateKeyPair(nil)
			wrong, err := k.AuthDecapsulate(enc, skR, pkOther)
			if err != nil {
				t.Fatalf("AuthDecapsulate(wrong sender) error = %v", err)
			}
			if bytes.Equal(wrong, ss) {
				t.Error("wrong sender key produced the same shared secret")
			}

			unauth, err := k.Decapsulate(enc, skR)
			if err != nil {
				t.Fatalf("Decapsulate() error = %v", err)
			}
			if bytes.Equal(unauth, ss) {
				t.Error("base decapsulation matched the authenticated secret")
			}
		})
	}
}

func TestDecapsulate_InvalidEncapsulatedKey(t *testing.T) {
	x, _ := New(X25519HKDFSHA256)
	p, _ := New(P256HKDFSHA256)
	x448k, _ := New(X448HKDFSHA512)

	lowOrder := make([]byte, 32)
	lowOrder[0] = 0x01

	offCurve := bytes.Repeat([]byte{0x01}, 65)
	offCurve[0] = 0x04

	tests := []struct {
		name string
		k    *KEM
		enc  []byte
	}{
		{"x25519 empty", x, nil},
		{"x25519 short", x, make([]byte, 31)},
		{"x25519 zero point", x, make([]byte, 32)},
		{"x25519 low order", x, lowOrder},
		{"x448 zero point", x448k, make([]byte, 56)},
		{"p256 short", p, make([]byte, 64)},
		{"p256 identity encoding", p, []byte{0x00}},
		{"p256 off curve", p, offCurve},
		{"p256 compressed", p, append([]byte{0x02}, make([]byte, 32)...)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			skR, _, _ := tt.k.GenerateKeyPair(nil)
			ss, err := tt.k.Decapsulate(tt.enc, skR)
			if !errors.Is(err, hpkeerrors.ErrInvalidKey) {
				t.Errorf("Decapsulate() error = %v, want ErrInvalidKey", err)
			}
			if ss != nil {
				t.Error("Decapsulate() returned a shared secret on failure")
			}
		})
	}
}

func TestEncapsulate_InvalidRecipientKey(t *testing.T) {
	for _, id := range IDs() {
		k, _ := New(id)
		_, _, err := k.Encapsulate(nil, make([]byte, k.PublicKeySize()))
		if !errors.Is(err, hpkeerrors.ErrInvalidKey) {
			t.Errorf("%s: Encapsulate(zero key) error = %v, want ErrInvalidKey", k, err)
		}
	}
}

func TestCheckPrivateKey_NIST(t *testing.T) {
	tests := []struct {
		name string
		id   ID
		sk   []byte
	}{
		{"p256 zero", P256HKDFSHA256, make([]byte, 32)},
		{"p256 above order", P256HKDFSHA256, bytes.Repeat([]byte{0xff}, 32)},
		{"p256 short", P256HKDFSHA256, make([]byte, 31)},
		{"p384 zero", P384HKDFSHA384, make([]byte, 48)},
		{"p521 above order", P521HKDFSHA512, bytes.Repeat([]byte{0xff}, 66)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, _ := New(tt.id)
			if err := k.CheckPrivateKey(tt.sk); !errors.Is(err, hpkeerrors.ErrInvalidKey) {
				t.Errorf("CheckPrivateKey() error = %v, want ErrInvalidKey", err)
			}
			if _, err := k.PublicKey(tt.sk); !errors.Is(err, hpkeerrors.ErrInvalidKey) {
				t.Errorf("PublicKey() error = %v, want ErrInvalidKey", err)
			}
		})
	}
}

func TestGenerateKeyPair_RejectionGivesUp(t *testing.T) {
	k, _ := New(P256HKDFSHA256)
	zeros := bytes.NewReader(make([]byte, maxScalarAttempts*k.PrivateKeySize()))

	_, _, err := k.GenerateKeyPair(zeros)
	if !errors.Is(err, hpkeerrors.ErrDeriveKeyPair) {
		t.Errorf("GenerateKeyPair() error = %v, want ErrDeriveKeyPair", err)
	}
}

func TestDeriveKeyPair(t *testing.T) {
	for _, id := range IDs() {
		k, _ := New(id)
		t.Run(k.String(), func(t *testing.T) {
			ikm := bytes.Repeat([]byte{0x42}, 32)

			sk1, pk1, err := k.DeriveKeyPair(ikm)
			if err != nil {
				t.Fatalf("DeriveKeyPair() error = %v", err)
			}
			sk2, pk2, _ := k.DeriveKeyPair(ikm)
			if !bytes.Equal(sk1, sk2) || !bytes.Equal(pk1, pk2) {
				t.Error("DeriveKeyPair() is not deterministic")
			}

			pk, err := k.PublicKey(sk1)
			if err != nil {
				t.Fatalf("PublicKey() error = %v", err)
			}
			if !bytes.Equal(pk, pk1) {
				t.Error("derived public key does not match private key")
			}

			sk3, _, _ := k.DeriveKeyPair(bytes.Repeat([]byte{0x43}, 32))
			if bytes.Equal(sk1, sk3) {
				t.Error("different ikm produced the same key")
			}

			if id == P521HKDFSHA512 && sk1[0] > 0x01 {
				t.Errorf("P-521 derived key top byte = %#x, want <= 0x01", sk1[0])
			}
		})
	}
}

func TestNew_Unsupported(t *testing.T) {
	for _, id := range []ID{0, 0x13, 0x22, 0xffff} {
		if _, err := New(id); !errors.Is(err, hpkeerrors.ErrInvalidSuite) {
			t.Errorf("New(%#x) error = %v, want ErrInvalidSuite", id, err)
		}
		if Supported(id) {
			t.Errorf("Supported(%#x) = true", id)
		}
	}
}
