package hpke

import "github.com/vaultsandbox/hpke-go/internal/schedule"

// Mode selects which optional inputs take part in the key schedule.
type Mode = schedule.Mode

// HPKE modes (RFC 9180 §5).
const (
	ModeBase    = schedule.ModeBase
	ModePSK     = schedule.ModePSK
	ModeAuth    = schedule.ModeAuth
	ModeAuthPSK = schedule.ModeAuthPSK
)

// ParseMode parses "base", "psk", "auth" or "authpsk".
func ParseMode(s string) (Mode, error) {
	return schedule.ParseMode(s)
}

// Context is an established HPKE encryption context. A sender context
// seals and a receiver context opens; the other operation fails with
// ErrWrongRole. Both export secrets. The sequence number advances on every
// successful Seal or Open and cannot be set. Call Close to wipe its key
// material.
type Context = schedule.Context
