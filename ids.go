package hpke

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/vaultsandbox/hpke-go/internal/aead"
	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
	"github.com/vaultsandbox/hpke-go/internal/kdf"
	"github.com/vaultsandbox/hpke-go/internal/kem"
)

// KEMID identifies a key encapsulation mechanism (RFC 9180 §7.1).
type KEMID uint16

// KDFID identifies a key derivation function (RFC 9180 §7.2).
type KDFID uint16

// AEADID identifies an AEAD cipher (RFC 9180 §7.3).
type AEADID uint16

// Supported KEMs.
const (
	KEMP256HKDFSHA256   = KEMID(kem.P256HKDFSHA256)
	KEMP384HKDFSHA384   = KEMID(kem.P384HKDFSHA384)
	KEMP521HKDFSHA512   = KEMID(kem.P521HKDFSHA512)
	KEMX25519HKDFSHA256 = KEMID(kem.X25519HKDFSHA256)
	KEMX448HKDFSHA512   = KEMID(kem.X448HKDFSHA512)
)

// Supported KDFs.
const (
	KDFHKDFSHA256 = KDFID(kdf.HKDFSHA256)
	KDFHKDFSHA384 = KDFID(kdf.HKDFSHA384)
	KDFHKDFSHA512 = KDFID(kdf.HKDFSHA512)
)

// Supported AEADs. AEADExportOnly derives exporter secrets only.
const (
	AEADAES128GCM        = AEADID(aead.AES128GCM)
	AEADAES256GCM        = AEADID(aead.AES256GCM)
	AEADChaCha20Poly1305 = AEADID(aead.ChaCha20Poly1305)
	AEADExportOnly       = AEADID(aead.ExportOnly)
)

// Supported reports whether the KEM is implemented.
func (id KEMID) Supported() bool { return kem.Supported(kem.ID(id)) }

func (id KEMID) String() string {
	k, err := kem.New(kem.ID(id))
	if err != nil {
		return fmt.Sprintf("KEM(0x%04X)", uint16(id))
	}
	return k.String()
}

// Supported reports whether the KDF is implemented.
func (id KDFID) Supported() bool { return kdf.Supported(kdf.ID(id)) }

func (id KDFID) String() string {
	k, err := kdf.New(kdf.ID(id))
	if err != nil {
		return fmt.Sprintf("KDF(0x%04X)", uint16(id))
	}
	return k.String()
}

// Supported reports whether the AEAD is implemented.
func (id AEADID) Supported() bool { return aead.Supported(aead.ID(id)) }

func (id AEADID) String() string {
	a, err := aead.New(aead.ID(id))
	if err != nil {
		return fmt.Sprintf("AEAD(0x%04X)", uint16(id))
	}
	return a.String()
}

// KEMIDs returns the supported KEM identifiers in ascending order.
func KEMIDs() []KEMID {
	var ids []KEMID
	for _, id := range kem.IDs() {
		ids = append(ids, KEMID(id))
	}
	return ids
}

// KDFIDs returns the supported KDF identifiers in ascending order.
func KDFIDs() []KDFID {
	var ids []KDFID
	for _, id := range kdf.IDs() {
		ids = append(ids, KDFID(id))
	}
	return ids
}

// AEADIDs returns the supported AEAD identifiers in ascending order.
func AEADIDs() []AEADID {
	var ids []AEADID
	for _, id := range aead.IDs() {
		ids = append(ids, AEADID(id))
	}
	return ids
}

// ParseKEMID accepts a codepoint ("32", "0x0020") or a name such as
// "DHKEM(X25519, HKDF-SHA256)" or "X25519".
func ParseKEMID(s string) (KEMID, error) {
	id, err := parseID(s, "kem", KEMIDs())
	return KEMID(id), err
}

// ParseKDFID accepts a codepoint or a name such as "HKDF-SHA256".
func ParseKDFID(s string) (KDFID, error) {
	id, err := parseID(s, "kdf", KDFIDs())
	return KDFID(id), err
}

// ParseAEADID accepts a codepoint or a name such as "AES-128-GCM".
func ParseAEADID(s string) (AEADID, error) {
	id, err := parseID(s, "aead", AEADIDs())
	return AEADID(id), err
}

type namedID interface {
	~uint16
	fmt.Stringer
}

func parseID[T namedID](s, component string, known []T) (uint16, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseUint(s, 0, 16); err == nil {
		for _, id := range known {
			if uint16(id) == uint16(n) {
				return uint16(n), nil
			}
		}
		return 0, &hpkeerrors.SuiteError{Component: component, ID: uint16(n)}
	}

	for _, id := range known {
		name := id.String()
		if strings.EqualFold(s, name) || strings.EqualFold(s, shortName(name)) {
			return uint16(id), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown %s %q", ErrInvalidSuite, component, s)
}

// shortName reduces "DHKEM(X25519, HKDF-SHA256)" to "X25519"; other names
// are returned unchanged.
func shortName(name string) string {
	inner, ok := strings.CutPrefix(name, "DHKEM(")
	if !ok {
		return name
	}
	curve, _, _ := strings.Cut(inner, ",")
	return curve
}
