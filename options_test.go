package hpke

import (
	"bytes"
	"testing"
)

func TestWithPSK(t *testing.T) {
	cfg := newSetupConfig([]Option{WithPSK([]byte("psk"), []byte("id"))})
	if string(cfg.psk) != "psk" || string(cfg.pskID) != "id" {
		t.Errorf("psk, pskID = %q, %q", cfg.psk, cfg.pskID)
	}
}

func TestWithSenderKeys(t *testing.T) {
	cfg := newSetupConfig([]Option{
		WithSenderPrivateKey([]byte{1}),
		WithSenderPublicKey([]byte{2}),
	})
	if len(cfg.skS) != 1 || cfg.skS[0] != 1 {
		t.Errorf("skS = %v", cfg.skS)
	}
	if len(cfg.pkS) != 1 || cfg.pkS[0] != 2 {
		t.Errorf("pkS = %v", cfg.pkS)
	}
}

func TestWithRand(t *testing.T) {
	r := bytes.NewReader(nil)
	cfg := newSetupConfig([]Option{WithRand(r)})
	if cfg.rand != r {
		t.Error("rand was not set")
	}
}

func TestOptions_LaterWins(t *testing.T) {
	cfg := newSetupConfig([]Option{
		WithPSK([]byte("first"), []byte("a")),
		WithPSK([]byte("second"), []byte("b")),
	})
	if string(cfg.psk) != "second" {
		t.Errorf("psk = %q, want second", cfg.psk)
	}
}

func TestImpliedMode(t *testing.T) {
	psk := WithPSK([]byte("0123456789abcdef0123456789abcdef"), []byte("id"))

	tests := []struct {
		name     string
		opts     []Option
		sender   Mode
		receiver Mode
	}{
		{"no options", nil, ModeBase, ModeBase},
		{"psk", []Option{psk}, ModePSK, ModePSK},
		{"sender private key", []Option{WithSenderPrivateKey([]byte{1})}, ModeAuth, ModeBase},
		{"sender public key", []Option{WithSenderPublicKey([]byte{1})}, ModeBase, ModeAuth},
		{"psk and both keys", []Option{psk, WithSenderPrivateKey([]byte{1}), WithSenderPublicKey([]byte{2})}, ModeAuthPSK, ModeAuthPSK},
		{"psk id only", []Option{WithPSK(nil, []byte("id"))}, ModePSK, ModePSK},
		{"rand does not change mode", []Option{WithRand(bytes.NewReader(nil))}, ModeBase, ModeBase},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := newSetupConfig(tt.opts)
			if got := cfg.senderMode(); got != tt.sender {
				t.Errorf("senderMode() = %v, want %v", got, tt.sender)
			}
			if got := cfg.receiverMode(); got != tt.receiver {
				t.Errorf("receiverMode() = %v, want %v", got, tt.receiver)
			}
		})
	}
}
