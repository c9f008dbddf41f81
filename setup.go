package hpke

import (
	"fmt"

	"github.com/vaultsandbox/hpke-go/internal/hpkeerrors"
	"github.com/vaultsandbox/hpke-go/internal/schedule"
)

// SetupSender encapsulates to pkR and returns the encapsulated key with a
// sending context. The Auth modes need WithSenderPrivateKey and the PSK
// modes need WithPSK.
func (s *Suite) SetupSender(mode Mode, pkR, info []byte, opts ...Option) (enc []byte, ctx *Context, err error) {
	cfg := newSetupConfig(opts)
	if err := checkSenderInputs(mode, cfg); err != nil {
		return nil, nil, err
	}

	var sharedSecret []byte
	if mode.IsAuth() {
		sharedSecret, enc, err = s.kem.AuthEncapsulate(cfg.rand, pkR, cfg.skS)
	} else {
		sharedSecret, enc, err = s.kem.Encapsulate(cfg.rand, pkR)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("encapsulate: %w", err)
	}
	defer clear(sharedSecret)

	ctx, err = s.schedule.DeriveSender(mode, sharedSecret, info, cfg.psk, cfg.pskID)
	if err != nil {
		return nil, nil, err
	}
	return enc, ctx, nil
}

// SetupReceiver decapsulates enc with skR and returns a receiving context.
// The Auth modes need WithSenderPublicKey and the PSK modes need WithPSK.
func (s *Suite) SetupReceiver(mode Mode, skR, enc, info []byte, opts ...Option) (*Context, error) {
	cfg := newSetupConfig(opts)
	if err := checkReceiverInputs(mode, cfg); err != nil {
		return nil, err
	}

	var (
		sharedSecret []byte
		err          error
	)
	if mode.IsAuth() {
		sharedSecret, err = s.kem.AuthDecapsulate(enc, skR, cfg.pkS)
	} else {
		sharedSecret, err = s.kem.Decapsulate(enc, skR)
	}
	if err != nil {
		return nil, fmt.Errorf("decapsulate: %w", err)
	}
	defer clear(sharedSecret)

	return s.schedule.DeriveReceiver(mode, sharedSecret, info, cfg.psk, cfg.pskID)
}

// checkSenderInputs rejects mode and input mismatches before any key
// material is computed.
func checkSenderInputs(mode Mode, cfg *setupConfig) error {
	if err := schedule.VerifyPSKInputs(mode, cfg.psk, cfg.pskID); err != nil {
		return err
	}
	switch {
	case cfg.pkS != nil:
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "sender public key is only used when opening"}
	case mode.IsAuth() && cfg.skS == nil:
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "missing sender private key"}
	case !mode.IsAuth() && cfg.skS != nil:
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "sender private key provided but not used"}
	}
	return nil
}

func checkReceiverInputs(mode Mode, cfg *setupConfig) error {
	if err := schedule.VerifyPSKInputs(mode, cfg.psk, cfg.pskID); err != nil {
		return err
	}
	switch {
	case cfg.skS != nil:
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "sender private key is only used when sealing"}
	case mode.IsAuth() && cfg.pkS == nil:
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "missing sender public key"}
	case !mode.IsAuth() && cfg.pkS != nil:
		return &hpkeerrors.ModeError{Mode: mode.String(), Reason: "sender public key provided but not used"}
	}
	return nil
}
