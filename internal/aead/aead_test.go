package aead

import (
	"bytes"
	"crypto/rand"
	"errors"
	"testing"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
)

func TestSealOpen_RoundTrip(t *testing.T) {
	tests := []struct {
		name      string
		plaintext []byte
	}{
		{"empty", []byte{}},
		{"simple", []byte("hello world")},
		{"binary", []byte{0x00, 0xff, 0x7f, 0x80}},
		{"large", make([]byte, 10000)},
	}

	for _, id := range []ID{AES128GCM, AES256GCM, ChaCha20Poly1305} {
		a, err := New(id)
		if err != nil {
			t.Fatalf("New(%d) error = %v", id, err)
		}

		for _, tt := range tests {
			t.Run(a.String()+"/"+tt.name, func(t *testing.T) {
				key := make([]byte, a.KeySize())
				if _, err := rand.Read(key); err != nil {
					t.Fatal(err)
				}
				nonce := make([]byte, a.NonceSize())
				if _, err := rand.Read(nonce); err != nil {
					t.Fatal(err)
				}

				c, err := a.NewCipher(key)
				if err != nil {
					t.Fatalf("NewCipher() error = %v", err)
				}

				ciphertext := Seal(c, nonce, []byte("aad"), tt.plaintext)
				if len(ciphertext) != len(tt.plaintext)+a.TagSize() {
					t.Errorf("ciphertext length = %d, want %d", len(ciphertext), len(tt.plaintext)+a.TagSize())
				}

				decrypted, err := Open(c, nonce, []byte("aad"), ciphertext)
				if err != nil {
					t.Fatalf("Open() error = %v", err)
				}
				if !bytes.Equal(decrypted, tt.plaintext) {
					t.Errorf("decrypted = %x, want %x", decrypted, tt.plaintext)
				}
			})
		}
	}
}

func TestOpen_Tampered(t *testing.T) {
	a, _ := New(AES128GCM)
	key := make([]byte, a.KeySize())
	nonce := make([]byte, a.NonceSize())
	c, _ := a.NewCipher(key)

	ciphertext := Seal(c, nonce, []byte("aad"), []byte("secret message"))

	tests := []struct {
		name       string
		aad        []byte
		ciphertext func() []byte
	}{
		{"flipped body", []byte("aad"), func() []byte {
			ct := bytes.Clone(ciphertext)
			ct[0] ^= 0x01
			return ct
		}},
		{"flipped tag", []byte("aad"), func() []byte {
			ct := bytes.Clone(ciphertext)
			ct[len(ct)-1] ^= 0x80
			return ct
		}},
		{"wrong aad", []byte("AAD"), func() []byte { return bytes.Clone(ciphertext) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pt, err := Open(c, nonce, tt.aad, tt.ciphertext())
			if !errors.Is(err, hpkeerrors.ErrAuthenticationFailed) {
				t.Errorf("Open() error = %v, want ErrAuthenticationFailed", err)
			}
			if pt != nil {
				t.Errorf("Open() returned %d plaintext bytes on failure", len(pt))
			}
		})
	}
}

func TestOpen_ShorterThanTag(t *testing.T) {
	a, _ := New(ChaCha20Poly1305)
	c, _ := a.NewCipher(make([]byte, a.KeySize()))

	_, err := Open(c, make([]byte, a.NonceSize()), nil, make([]byte, a.TagSize()-1))
	if !errors.Is(err, hpkeerrors.ErrInvalidLength) {
		t.Errorf("Open() error = %v, want ErrInvalidLength", err)
	}
}

func TestNewCipher_InvalidKeySize(t *testing.T) {
	tests := []struct {
		id      ID
		keySize int
	}{
		{AES128GCM, 0},
		{AES128GCM, 32},
		{AES256GCM, 16},
		{ChaCha20Poly1305, 31},
	}

	for _, tt := range tests {
		a, _ := New(tt.id)
		_, err := a.NewCipher(make([]byte, tt.keySize))
		if !errors.Is(err, hpkeerrors.ErrInvalidLength) {
			t.Errorf("%s NewCipher(%d bytes) error = %v, want ErrInvalidLength", a, tt.keySize, err)
		}
	}
}

func TestExportOnly(t *testing.T) {
	a, err := New(ExportOnly)
	if err != nil {
		t.Fatalf("New(ExportOnly) error = %v", err)
	}
	if !a.IsExportOnly() {
		t.Error("IsExportOnly() = false")
	}
	if a.KeySize() != 0 || a.NonceSize() != 0 || a.TagSize() != 0 {
		t.Errorf("sizes = (%d, %d, %d), want zeros", a.KeySize(), a.NonceSize(), a.TagSize())
	}
	if _, err := a.NewCipher(nil); !errors.Is(err, hpkeerrors.ErrExportOnly) {
		t.Errorf("NewCipher() error = %v, want ErrExportOnly", err)
	}
}

func TestNew_Unsupported(t *testing.T) {
	for _, id := range []ID{0, 4, 0xfffe} {
		if _, err := New(id); !errors.Is(err, hpkeerrors.ErrInvalidSuite) {
			t.Errorf("New(%d) error = %v, want ErrInvalidSuite", id, err)
		}
	}
}

func TestIDs_Sorted(t *testing.T) {
	want := []ID{AES128GCM, AES256GCM, ChaCha20Poly1305, ExportOnly}
	got := IDs()
	if len(got) != len(want) {
		t.Fatalf("IDs() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("IDs()[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}
