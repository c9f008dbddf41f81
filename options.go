package hpke

import "io"

// setupConfig holds the optional inputs of a setup or one-shot call.
type setupConfig struct {
	psk   []byte
	pskID []byte
	skS   []byte
	pkS   []byte
	rand  io.Reader
}

// Option configures SetupSender, SetupReceiver and the one-shot functions.
type Option func(*setupConfig)

// WithPSK supplies a pre-shared key and its identifier, selecting the PSK
// or AuthPSK mode.
func WithPSK(psk, pskID []byte) Option {
	return func(c *setupConfig) {
		c.psk = psk
		c.pskID = pskID
	}
}

// WithSenderPrivateKey supplies the sender's static private key when
// sealing in the Auth or AuthPSK mode.
func WithSenderPrivateKey(skS []byte) Option {
	return func(c *setupConfig) {
		c.skS = skS
	}
}

// WithSenderPublicKey supplies the sender's static public key when
// opening in the Auth or AuthPSK mode.
func WithSenderPublicKey(pkS []byte) Option {
	return func(c *setupConfig) {
		c.pkS = pkS
	}
}

// WithRand sets the source of ephemeral key randomness. The default is
// crypto/rand.
func WithRand(r io.Reader) Option {
	return func(c *setupConfig) {
		c.rand = r
	}
}

func newSetupConfig(opts []Option) *setupConfig {
	cfg := &setupConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// senderMode is the mode implied by the options on the sealing side.
func (c *setupConfig) senderMode() Mode {
	return modeFor(len(c.psk) > 0 || len(c.pskID) > 0, c.skS != nil)
}

// receiverMode is the mode implied by the options on the opening side.
func (c *setupConfig) receiverMode() Mode {
	return modeFor(len(c.psk) > 0 || len(c.pskID) > 0, c.pkS != nil)
}

func modeFor(psk, auth bool) Mode {
	switch {
	case psk && auth:
		return ModeAuthPSK
	case psk:
		return ModePSK
	case auth:
		return ModeAuth
	default:
		return ModeBase
	}
}
