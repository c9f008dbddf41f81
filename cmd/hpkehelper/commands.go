package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/spf13/cobra"
	jww "github.com/spf13/jwalterweatherman"

	hpke "github.com/vaultsandbox/hpke-go"
	"github.com/vaultsandbox/hpke-go/internal/codec"
)

// Request is the JSON body read from stdin by seal, open and export.
type Request struct {
	// Mode is "base", "psk", "auth" or "authpsk". When empty the mode
	// follows from which of PSK and the sender keys are present.
	Mode             string      `json:"mode,omitempty"`
	PublicKey        codec.Bytes `json:"publicKey,omitempty"`
	PrivateKey       codec.Bytes `json:"privateKey,omitempty"`
	Enc              codec.Bytes `json:"enc,omitempty"`
	Info             codec.Bytes `json:"info,omitempty"`
	AAD              codec.Bytes `json:"aad,omitempty"`
	Plaintext        codec.Bytes `json:"plaintext,omitempty"`
	Ciphertext       codec.Bytes `json:"ciphertext,omitempty"`
	PSK              codec.Bytes `json:"psk,omitempty"`
	PSKID            codec.Bytes `json:"pskId,omitempty"`
	SenderPrivateKey codec.Bytes `json:"senderPrivateKey,omitempty"`
	SenderPublicKey  codec.Bytes `json:"senderPublicKey,omitempty"`
	ExporterContext  codec.Bytes `json:"exporterContext,omitempty"`
	Length           int         `json:"length,omitempty"`
}

// Response is the JSON body written to stdout.
type Response struct {
	Enc        codec.Bytes `json:"enc,omitempty"`
	Ciphertext codec.Bytes `json:"ciphertext,omitempty"`
	Secret     codec.Bytes `json:"secret,omitempty"`
}

// SuiteOutput describes one supported suite.
type SuiteOutput struct {
	KEM  hpke.KEMID  `json:"kem"`
	KDF  hpke.KDFID  `json:"kdf"`
	AEAD hpke.AEADID `json:"aead"`
	Name string      `json:"name"`
}

func (h *helper) suitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "suites",
		Short: "List supported suites",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suites := hpke.SupportedSuites()
			out := make([]SuiteOutput, 0, len(suites))
			for _, s := range suites {
				out = append(out, SuiteOutput{KEM: s.KEM(), KDF: s.KDF(), AEAD: s.AEAD(), Name: s.String()})
			}
			return h.writeJSON(out)
		},
	}
}

func (h *helper) keygenCmd() *cobra.Command {
	var ikm string
	cmd := &cobra.Command{
		Use:   "keygen",
		Short: "Generate a key pair for the configured KEM and print it with its private key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, err := h.suite()
			if err != nil {
				return err
			}

			var kp *hpke.KeyPair
			if ikm != "" {
				seed, err := codec.Decode(ikm)
				if err != nil {
					return fmt.Errorf("decode ikm: %w", err)
				}
				kp, err = suite.DeriveKeyPair(seed)
				if err != nil {
					return err
				}
			} else {
				kp, err = suite.GenerateKeyPair()
				if err != nil {
					return err
				}
			}
			defer kp.Zeroize()

			jww.INFO.Printf("Generated %s key pair", suite.KEM())
			return h.writeJSON(kp.Export())
		},
	}
	cmd.Flags().StringVar(&ikm, "ikm", "", "Derive the key pair from this base64 input keying material.")
	return cmd
}

func (h *helper) sealCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seal",
		Short: "Encrypt the plaintext in the request to publicKey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, req, err := h.prepare()
			if err != nil {
				return err
			}
			opts := senderOptions(req)

			var enc, ct []byte
			if req.Mode == "" {
				enc, ct, err = hpke.Seal(suite, req.PublicKey, req.Info, req.AAD, req.Plaintext, opts...)
			} else {
				enc, ct, err = sealWithMode(suite, req, opts)
			}
			if err != nil {
				return fmt.Errorf("seal: %w", err)
			}

			jww.INFO.Printf("Sealed %d bytes into %d", len(req.Plaintext), len(ct))
			return h.writeJSON(Response{Enc: enc, Ciphertext: ct})
		},
	}
}

func (h *helper) openCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "open",
		Short: "Decrypt the ciphertext in the request with privateKey",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, req, err := h.prepare()
			if err != nil {
				return err
			}
			opts := receiverOptions(req)

			var pt []byte
			if req.Mode == "" {
				pt, err = hpke.Open(suite, req.PrivateKey, req.Enc, req.Info, req.AAD, req.Ciphertext, opts...)
			} else {
				pt, err = openWithMode(suite, req, opts)
			}
			if err != nil {
				return fmt.Errorf("open: %w", err)
			}

			jww.INFO.Printf("Opened %d bytes", len(pt))
			// Plaintext may legitimately be empty, so it is always written.
			return h.writeJSON(struct {
				Plaintext codec.Bytes `json:"plaintext"`
			}{pt})
		},
	}
}

func (h *helper) exportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "export",
		Short: "Derive an exported secret; acts as receiver when privateKey is set",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			suite, req, err := h.prepare()
			if err != nil {
				return err
			}

			if len(req.PrivateKey) > 0 {
				secret, err := hpke.ReceiveExport(suite, req.PrivateKey, req.Enc, req.Info, req.ExporterContext, req.Length, receiverOptions(req)...)
				if err != nil {
					return fmt.Errorf("export: %w", err)
				}
				return h.writeJSON(Response{Secret: secret})
			}

			enc, secret, err := hpke.SendExport(suite, req.PublicKey, req.Info, req.ExporterContext, req.Length, senderOptions(req)...)
			if err != nil {
				return fmt.Errorf("export: %w", err)
			}
			return h.writeJSON(Response{Enc: enc, Secret: secret})
		},
	}
}

func (h *helper) prepare() (*hpke.Suite, *Request, error) {
	suite, err := h.suite()
	if err != nil {
		return nil, nil, err
	}
	req, err := readRequest(h.cfg.Stdin)
	if err != nil {
		return nil, nil, err
	}
	return suite, req, nil
}

func readRequest(r io.Reader) (*Request, error) {
	var req Request
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("parse request: %w", err)
	}
	return &req, nil
}

func (h *helper) writeJSON(v any) error {
	if err := json.NewEncoder(h.cfg.Stdout).Encode(v); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	return nil
}

func senderOptions(req *Request) []hpke.Option {
	var opts []hpke.Option
	if len(req.PSK) > 0 || len(req.PSKID) > 0 {
		opts = append(opts, hpke.WithPSK(req.PSK, req.PSKID))
	}
	if len(req.SenderPrivateKey) > 0 {
		opts = append(opts, hpke.WithSenderPrivateKey(req.SenderPrivateKey))
	}
	return opts
}

func receiverOptions(req *Request) []hpke.Option {
	var opts []hpke.Option
	if len(req.PSK) > 0 || len(req.PSKID) > 0 {
		opts = append(opts, hpke.WithPSK(req.PSK, req.PSKID))
	}
	if len(req.SenderPublicKey) > 0 {
		opts = append(opts, hpke.WithSenderPublicKey(req.SenderPublicKey))
	}
	return opts
}

func sealWithMode(suite *hpke.Suite, req *Request, opts []hpke.Option) (enc, ct []byte, err error) {
	mode, err := hpke.ParseMode(req.Mode)
	if err != nil {
		return nil, nil, err
	}
	enc, ctx, err := suite.SetupSender(mode, req.PublicKey, req.Info, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer ctx.Close()

	ct, err = ctx.Seal(req.AAD, req.Plaintext)
	if err != nil {
		return nil, nil, err
	}
	return enc, ct, nil
}

func openWithMode(suite *hpke.Suite, req *Request, opts []hpke.Option) ([]byte, error) {
	mode, err := hpke.ParseMode(req.Mode)
	if err != nil {
		return nil, err
	}
	ctx, err := suite.SetupReceiver(mode, req.PrivateKey, req.Enc, req.Info, opts...)
	if err != nil {
		return nil, err
	}
	defer ctx.Close()

	return ctx.Open(req.AAD, req.Ciphertext)
}
