// Package hpke implements Hybrid Public Key Encryption (RFC 9180).
//
// A Suite binds a KEM, a KDF and an AEAD. Supported KEMs are DHKEM over
// P-256, P-384, P-521, X25519 and X448; KDFs are HKDF with SHA-256,
// SHA-384 and SHA-512; AEADs are AES-128-GCM, AES-256-GCM,
// ChaCha20-Poly1305 and the export-only mode. All four modes (base, PSK,
// auth and auth-PSK) are available.
//
// Single-shot usage:
//
//	suite, err := hpke.TryFromIDs(hpke.KEMX25519HKDFSHA256, hpke.KDFHKDFSHA256, hpke.AEADAES128GCM)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	recipient, err := suite.GenerateKeyPair()
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	enc, ct, err := suite.BaseModeSeal(recipient.PublicKey(), info, plaintext, aad)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	pt, err := suite.BaseModeOpen(recipient.PrivateKey(), enc, info, ct, aad)
//
// For several messages under one encapsulation, use SetupSender and
// SetupReceiver and call Seal and Open on the returned Context in the same
// order on both sides. Close a Context when done to wipe its keys.
//
// Failed Opens never return plaintext and do not advance the sequence
// number. Errors match the Err* sentinels with errors.Is.
package hpke
