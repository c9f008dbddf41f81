package hpke

// Seal encrypts plaintext to pkR in a single shot. The mode follows from
// the options: WithPSK selects PSK, WithSenderPrivateKey selects Auth, both
// select AuthPSK, neither selects Base.
func Seal(suite *Suite, pkR, info, aad, plaintext []byte, opts ...Option) (enc, ciphertext []byte, err error) {
	cfg := newSetupConfig(opts)
	return suite.seal(cfg.senderMode(), pkR, info, aad, plaintext, opts)
}

// Open decrypts a single-shot ciphertext. The mode follows from the options
// as in Seal, with WithSenderPublicKey selecting Auth.
func Open(suite *Suite, skR, enc, info, aad, ciphertext []byte, opts ...Option) ([]byte, error) {
	cfg := newSetupConfig(opts)
	return suite.open(cfg.receiverMode(), skR, enc, info, aad, ciphertext, opts)
}

// SendExport encapsulates to pkR and exports a secret of length bytes
// bound to exporterContext, without encrypting anything.
func SendExport(suite *Suite, pkR, info, exporterContext []byte, length int, opts ...Option) (enc, secret []byte, err error) {
	cfg := newSetupConfig(opts)
	enc, ctx, err := suite.SetupSender(cfg.senderMode(), pkR, info, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer ctx.Close()

	secret, err = ctx.Export(exporterContext, length)
	if err != nil {
		return nil, nil, err
	}
	return enc, secret, nil
}

// ReceiveExport is the receiving half of SendExport.
func ReceiveExport(suite *Suite, skR, enc, info, exporterContext []byte, length int, opts ...Option) ([]byte, error) {
	cfg := newSetupConfig(opts)
	ctx, err := suite.SetupReceiver(cfg.receiverMode(), skR, enc, info, opts...)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	return ctx.Export(exporterContext, length)
}

// BaseModeSeal encrypts plaintext to pkR without sender authentication.
func (s *Suite) BaseModeSeal(pkR, info, plaintext, aad []byte) (enc, ciphertext []byte, err error) {
	return s.seal(ModeBase, pkR, info, aad, plaintext, nil)
}

// BaseModeOpen decrypts the output of BaseModeSeal.
func (s *Suite) BaseModeOpen(skR, enc, info, ciphertext, aad []byte) ([]byte, error) {
	return s.open(ModeBase, skR, enc, info, aad, ciphertext, nil)
}

// PSKModeSeal encrypts plaintext to pkR, authenticated by a pre-shared key.
func (s *Suite) PSKModeSeal(pkR, info, plaintext, aad, psk, pskID []byte) (enc, ciphertext []byte, err error) {
	return s.seal(ModePSK, pkR, info, aad, plaintext, []Option{WithPSK(psk, pskID)})
}

// PSKModeOpen decrypts the output of PSKModeSeal.
func (s *Suite) PSKModeOpen(skR, enc, info, ciphertext, aad, psk, pskID []byte) ([]byte, error) {
	return s.open(ModePSK, skR, enc, info, aad, ciphertext, []Option{WithPSK(psk, pskID)})
}

// AuthModeSeal encrypts plaintext to pkR, authenticated by the sender's
// static private key skS.
func (s *Suite) AuthModeSeal(pkR, info, plaintext, aad, skS []byte) (enc, ciphertext []byte, err error) {
	return s.seal(ModeAuth, pkR, info, aad, plaintext, []Option{WithSenderPrivateKey(skS)})
}

// AuthModeOpen decrypts the output of AuthModeSeal, verifying the sender
// holds the private key for pkS.
func (s *Suite) AuthModeOpen(skR, enc, info, ciphertext, aad, pkS []byte) ([]byte, error) {
	return s.open(ModeAuth, skR, enc, info, aad, ciphertext, []Option{WithSenderPublicKey(pkS)})
}

// AuthPSKModeSeal combines AuthModeSeal and PSKModeSeal.
func (s *Suite) AuthPSKModeSeal(pkR, info, plaintext, aad, psk, pskID, skS []byte) (enc, ciphertext []byte, err error) {
	return s.seal(ModeAuthPSK, pkR, info, aad, plaintext, []Option{WithPSK(psk, pskID), WithSenderPrivateKey(skS)})
}

// AuthPSKModeOpen decrypts the output of AuthPSKModeSeal.
func (s *Suite) AuthPSKModeOpen(skR, enc, info, ciphertext, aad, psk, pskID, pkS []byte) ([]byte, error) {
	return s.open(ModeAuthPSK, skR, enc, info, aad, ciphertext, []Option{WithPSK(psk, pskID), WithSenderPublicKey(pkS)})
}

func (s *Suite) seal(mode Mode, pkR, info, aad, plaintext []byte, opts []Option) (enc, ciphertext []byte, err error) {
	enc, ctx, err := s.SetupSender(mode, pkR, info, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer ctx.Close()

	ciphertext, err = ctx.Seal(aad, plaintext)
	if err != nil {
		return nil, nil, err
	}
	return enc, ciphertext, nil
}

func (s *Suite) open(mode Mode, skR, enc, info, aad, ciphertext []byte, opts []Option) ([]byte, error) {
	ctx, err := s.SetupReceiver(mode, skR, enc, info, opts...)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	return ctx.Open(aad, ciphertext)
}
