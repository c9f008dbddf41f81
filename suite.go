package hpke

import (
	"encoding/json"
	"fmt"

	"github.com/vaultsandbox/hpke-go/internal/aead"
	"github.com/vaultsandbox/hpke-go/internal/kdf"
	"github.com/vaultsandbox/hpke-go/internal/kem"
	"github.com/vaultsandbox/hpke-go/internal/schedule"
)

// Suite is a validated (KEM, KDF, AEAD) triple. The zero value is not
// usable; construct one with TryFromIDs.
type Suite struct {
	kemID  KEMID
	kdfID  KDFID
	aeadID AEADID

	kem      *kem.KEM
	aead     *aead.AEAD
	schedule *schedule.Schedule
}

// TryFromIDs validates the identifiers and binds them into a Suite.
// Unsupported identifiers fail here rather than at first use.
func TryFromIDs(kemID KEMID, kdfID KDFID, aeadID AEADID) (*Suite, error) {
	k, err := kem.New(kem.ID(kemID))
	if err != nil {
		return nil, err
	}
	d, err := kdf.New(kdf.ID(kdfID))
	if err != nil {
		return nil, err
	}
	a, err := aead.New(aead.ID(aeadID))
	if err != nil {
		return nil, err
	}

	return &Suite{
		kemID:    kemID,
		kdfID:    kdfID,
		aeadID:   aeadID,
		kem:      k,
		aead:     a,
		schedule: schedule.New(uint16(kemID), d, a),
	}, nil
}

// MustSuite is like TryFromIDs but panics on unsupported identifiers. It
// is intended for package-level suite variables.
func MustSuite(kemID KEMID, kdfID KDFID, aeadID AEADID) *Suite {
	s, err := TryFromIDs(kemID, kdfID, aeadID)
	if err != nil {
		panic(err)
	}
	return s
}

// SupportedSuites returns every supported combination, ordered by KEM,
// then KDF, then AEAD identifier.
func SupportedSuites() []*Suite {
	var suites []*Suite
	for _, k := range KEMIDs() {
		for _, d := range KDFIDs() {
			for _, a := range AEADIDs() {
				suites = append(suites, MustSuite(k, d, a))
			}
		}
	}
	return suites
}

// KEM returns the KEM identifier.
func (s *Suite) KEM() KEMID { return s.kemID }

// KDF returns the KDF identifier.
func (s *Suite) KDF() KDFID { return s.kdfID }

// AEAD returns the AEAD identifier.
func (s *Suite) AEAD() AEADID { return s.aeadID }

func (s *Suite) String() string {
	return fmt.Sprintf("%s, %s, %s", s.kemID, s.kdfID, s.aeadID)
}

// Overhead returns the ciphertext expansion of Seal, the AEAD tag length.
func (s *Suite) Overhead() int { return s.aead.TagSize() }

// EncapsulatedKeySize returns Nenc.
func (s *Suite) EncapsulatedKeySize() int { return s.kem.EncapsulatedKeySize() }

// PublicKeySize returns Npk.
func (s *Suite) PublicKeySize() int { return s.kem.PublicKeySize() }

// PrivateKeySize returns Nsk.
func (s *Suite) PrivateKeySize() int { return s.kem.PrivateKeySize() }

// IsExportOnly reports whether contexts of this suite only export secrets.
func (s *Suite) IsExportOnly() bool { return s.aead.IsExportOnly() }

// GenerateKeyPair returns a fresh key pair for the suite's KEM.
func (s *Suite) GenerateKeyPair() (*KeyPair, error) {
	return generateKeyPair(s.kem, nil)
}

// DeriveKeyPair deterministically derives a key pair for the suite's KEM.
func (s *Suite) DeriveKeyPair(ikm []byte) (*KeyPair, error) {
	return deriveKeyPair(s.kem, ikm)
}

type suiteJSON struct {
	KEM  KEMID  `json:"kem"`
	KDF  KDFID  `json:"kdf"`
	AEAD AEADID `json:"aead"`
}

// MarshalJSON encodes the suite as its numeric codepoints.
func (s *Suite) MarshalJSON() ([]byte, error) {
	return json.Marshal(suiteJSON{KEM: s.kemID, KDF: s.kdfID, AEAD: s.aeadID})
}

// UnmarshalJSON decodes numeric codepoints and validates them.
func (s *Suite) UnmarshalJSON(data []byte) error {
	var raw suiteJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := TryFromIDs(raw.KEM, raw.KDF, raw.AEAD)
	if err != nil {
		return err
	}
	*s = *parsed
	return nil
}
