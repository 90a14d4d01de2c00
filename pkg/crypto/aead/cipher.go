package aead

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"errors"
	"fmt"
	"io"

	"golang.org/x/crypto/chacha20poly1305"
)

// CipherType identifies the cipher algorithm.
type CipherType string

const (
	CipherAESGCM   CipherType = "aes-gcm"
	CipherChaCha20 CipherType = "chacha20-poly1305"
)

// KeySize is the size of keys produced by DeriveKey.
const KeySize = sha256.Size

// Errors returned by Decrypt.
var (
	// ErrCiphertextTooShort indicates the input cannot hold a nonce and tag.
	ErrCiphertextTooShort = errors.New("aead: ciphertext too short")

	// ErrAuthentication indicates the tag did not verify: wrong key or
	// tampered input.
	ErrAuthentication = errors.New("aead: message authentication failed")
)

// Cipher provides authenticated encryption.
type Cipher interface {
	// Type returns the cipher type.
	Type() CipherType

	// Encrypt encrypts plaintext with additional data.
	// The result is nonce || ciphertext || tag.
	Encrypt(plaintext, additionalData []byte) ([]byte, error)

	// Decrypt decrypts nonce || ciphertext || tag with additional data.
	Decrypt(ciphertext, additionalData []byte) ([]byte, error)

	// NonceSize returns the nonce size in bytes.
	NonceSize() int

	// Overhead returns the authentication tag size in bytes.
	Overhead() int
}

// ParseCipherType validates a configured cipher name. Empty selects AES-GCM.
func ParseCipherType(s string) (CipherType, error) {
	switch CipherType(s) {
	case "", CipherAESGCM:
		return CipherAESGCM, nil
	case CipherChaCha20:
		return CipherChaCha20, nil
	default:
		return "", fmt.Errorf("aead: unknown cipher type %q", s)
	}
}

// New creates an AES-GCM cipher, the algorithm sealed tokens use by default.
func New(key []byte) (Cipher, error) {
	return NewWithType(key, CipherAESGCM)
}

// NewWithType creates a cipher of the given type. AES-GCM takes 16, 24 or
// 32 byte keys; ChaCha20-Poly1305 takes exactly 32. Keys from DeriveKey fit
// both.
func NewWithType(key []byte, cipherType CipherType) (Cipher, error) {
	var (
		a   cipher.AEAD
		err error
	)
	switch cipherType {
	case CipherAESGCM:
		a, err = newGCM(key)
	case CipherChaCha20:
		a, err = chacha20poly1305.New(key)
	default:
		return nil, fmt.Errorf("aead: unknown cipher type %q", cipherType)
	}
	if err != nil {
		return nil, fmt.Errorf("aead: %s key of %d bytes: %w", cipherType, len(key), err)
	}
	return &sealer{typ: cipherType, aead: a}, nil
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}

// NewFromPassphrase derives a key with DeriveKey and creates a cipher.
func NewFromPassphrase(passphrase string, cipherType CipherType) (Cipher, error) {
	if passphrase == "" {
		return nil, errors.New("aead: empty passphrase")
	}
	return NewWithType(DeriveKey(passphrase), cipherType)
}

// DeriveKey returns SHA-256(passphrase).
func DeriveKey(passphrase string) []byte {
	sum := sha256.Sum256([]byte(passphrase))
	return sum[:]
}

// sealer frames a cipher.AEAD as nonce || ciphertext || tag with a fresh
// random nonce per message.
type sealer struct {
	typ  CipherType
	aead cipher.AEAD
}

func (s *sealer) Type() CipherType { return s.typ }
func (s *sealer) NonceSize() int   { return s.aead.NonceSize() }
func (s *sealer) Overhead() int    { return s.aead.Overhead() }

func (s *sealer) Encrypt(plaintext, additionalData []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	out := make([]byte, n, n+len(plaintext)+s.aead.Overhead())
	if _, err := io.ReadFull(rand.Reader, out); err != nil {
		return nil, fmt.Errorf("aead: read nonce: %w", err)
	}
	return s.aead.Seal(out, out, plaintext, additionalData), nil
}

func (s *sealer) Decrypt(ciphertext, additionalData []byte) ([]byte, error) {
	n := s.aead.NonceSize()
	if len(ciphertext) < n+s.aead.Overhead() {
		return nil, ErrCiphertextTooShort
	}

	plaintext, err := s.aead.Open(nil, ciphertext[:n], ciphertext[n:], additionalData)
	if err != nil {
		return nil, ErrAuthentication
	}
	return plaintext, nil
}
