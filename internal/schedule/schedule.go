// Package schedule derives the AEAD key, base nonce and exporter secret
// from a KEM shared secret (RFC 9180 §5.1) and implements the encryption
// context that uses them.
package schedule

import (
	"fmt"
	"math"
	"strings"

	"github.com/vaultsandbox/hpke-go/internal/aead"
	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
	"github.com/vaultsandbox/hpke-go/internal/kdf"
)

// Mode selects which optional inputs take part in the key schedule.
type Mode uint8

// HPKE modes.
const (
	ModeBase    Mode = 0x00
	ModePSK     Mode = 0x01
	ModeAuth    Mode = 0x02
	ModeAuthPSK Mode = 0x03
)

var modeNames = map[Mode]string{
	ModeBase:    "base",
	ModePSK:     "psk",
	ModeAuth:    "auth",
	ModeAuthPSK: "authpsk",
}

func (m Mode) String() string {
	if name, ok := modeNames[m]; ok {
		return name
	}
	return fmt.Sprintf("mode(%d)", uint8(m))
}

// Valid reports whether m is one of the four defined modes.
func (m Mode) Valid() bool {
	_, ok := modeNames[m]
	return ok
}

// UsesPSK reports whether m mixes a pre-shared key into the schedule.
func (m Mode) UsesPSK() bool { return m == ModePSK || m == ModeAuthPSK }

// IsAuth reports whether m authenticates the sender's static key.
func (m Mode) IsAuth() bool { return m == ModeAuth || m == ModeAuthPSK }

// ParseMode parses a mode name as returned by Mode.String.
func ParseMode(s string) (Mode, error) {
	for m, name := range modeNames {
		if strings.EqualFold(s, name) {
			return m, nil
		}
	}
	return 0, &hpkeerrors.ModeError{Reason: fmt.Sprintf("unknown mode %q", s)}
}

// VerifyPSKInputs checks that psk and pskID are both present exactly when
// the mode requires them.
func VerifyPSKInputs(mode Mode, psk, pskID []byte) error {
	if !mode.Valid() {
		return &hpkeerrors.ModeError{Reason: fmt.Sprintf("unknown mode %d", uint8(mode))}
	}

	gotPSK := len(psk) > 0
	gotPSKID := len(pskID) > 0
	switch {
	case gotPSK != gotPSKID:
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "inconsistent psk and psk id"}
	case gotPSK && !mode.UsesPSK():
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "psk provided but not used"}
	case !gotPSK && mode.UsesPSK():
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "missing required psk"}
	}
	return nil
}

// Schedule holds the suite-bound state the key schedule needs.
type Schedule struct {
	kdf     *kdf.KDF
	aead    *aead.AEAD
	suiteID []byte
}

// New returns a key schedule for the given suite.
func New(kemID uint16, k *kdf.KDF, a *aead.AEAD) *Schedule {
	return &Schedule{
		kdf:     k,
		aead:    a,
		suiteID: kdf.HPKESuiteID(kemID, uint16(k.ID()), uint16(a.ID())),
	}
}

// SuiteID returns "HPKE" || kem_id || kdf_id || aead_id.
func (s *Schedule) SuiteID() []byte {
	return append([]byte(nil), s.suiteID...)
}

// DeriveSender is Derive for a context that only seals.
func (s *Schedule) DeriveSender(mode Mode, sharedSecret, info, psk, pskID []byte) (*Context, error) {
	return s.derive(roleSender, mode, sharedSecret, info, psk, pskID)
}

// DeriveReceiver is Derive for a context that only opens.
func (s *Schedule) DeriveReceiver(mode Mode, sharedSecret, info, psk, pskID []byte) (*Context, error) {
	return s.derive(roleReceiver, mode, sharedSecret, info, psk, pskID)
}

// Derive runs the key schedule and returns a ready Context that may both
// seal and open. The inputs are checked before any key material is computed.
func (s *Schedule) Derive(mode Mode, sharedSecret, info, psk, pskID []byte) (*Context, error) {
	return s.derive(roleAny, mode, sharedSecret, info, psk, pskID)
}

func (s *Schedule) derive(r role, mode Mode, sharedSecret, info, psk, pskID []byte) (*Context, error) {
	if err := VerifyPSKInputs(mode, psk, pskID); err != nil {
		return nil, err
	}

	pskIDHash := s.kdf.LabeledExtract(s.suiteID, nil, "psk_id_hash", pskID)
	infoHash := s.kdf.LabeledExtract(s.suiteID, nil, "info_hash", info)

	ksContext := make([]byte, 0, 1+len(pskIDHash)+len(infoHash))
	ksContext = append(ksContext, byte(mode))
	ksContext = append(ksContext, pskIDHash...)
	ksContext = append(ksContext, infoHash...)

	secret := s.kdf.LabeledExtract(s.suiteID, sharedSecret, "secret", psk)
	defer clear(secret)

	ctx := &Context{
		mode:    mode,
		role:    r,
		kdf:     s.kdf,
		aead:    s.aead,
		suiteID: s.suiteID,
	}

	var err error
	if !s.aead.IsExportOnly() {
		ctx.key, err = s.kdf.LabeledExpand(s.suiteID, secret, "key", ksContext, s.aead.KeySize())
		if err != nil {
			return nil, err
		}
		ctx.baseNonce, err = s.kdf.LabeledExpand(s.suiteID, secret, "base_nonce", ksContext, s.aead.NonceSize())
		if err != nil {
			ctx.Close()
			return nil, err
		}
		ctx.cipher, err = s.aead.NewCipher(ctx.key)
		if err != nil {
			ctx.Close()
			return nil, err
		}
		ctx.maxSeq = maxSequence(s.aead.NonceSize())
	}

	ctx.exporterSecret, err = s.kdf.LabeledExpand(s.suiteID, secret, "exp", ksContext, s.kdf.Size())
	if err != nil {
		ctx.Close()
		return nil, err
	}
	return ctx, nil
}

// maxSequence returns the number of nonces available for a nonce of
// nonceSize bytes, capped at what a uint64 counter can address.
func maxSequence(nonceSize int) uint64 {
	if nonceSize >= 8 {
		return math.MaxUint64
	}
	return 1<<(8*uint(nonceSize)) - 1
}
