// Package aead provides the authenticated encryption used for sealed
// (gated export) tokens.
//
// Supported Algorithms:
//
//   - AES-256-GCM: the default; matches WebCrypto AES-GCM with a 12-byte IV
//     and a 16-byte tag, so sealed tokens issued by the browser gallery
//     decrypt here unchanged
//   - ChaCha20-Poly1305: selectable per deployment
//
// Ciphertext Layout:
//
//	nonce (12 bytes) || ciphertext || tag (16 bytes)
//
// A fresh nonce is read from crypto/rand for every Encrypt call. Reusing a
// nonce under the same key breaks both confidentiality and authenticity,
// so callers must never supply their own.
//
// Key Derivation:
//
// DeriveKey hashes a passphrase with SHA-256 into a 32-byte key. The
// passphrase is a server-side secret, not a user password.
//
// Usage:
//
//	c, err := aead.NewFromPassphrase(passphrase, aead.CipherAESGCM)
//	sealed, err := c.Encrypt(plaintext, nil)
//	plaintext, err := c.Decrypt(sealed, nil)
package aead
