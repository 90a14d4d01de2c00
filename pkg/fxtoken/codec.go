package fxtoken

import (
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/yndnr/fxgallery/pkg/crypto/aead"
)

// Decoded is the result of decoding a token.
type Decoded struct {
	Kind   Kind
	Sealed bool
	Params *Params

	// Canonical is the decompressed JSON exactly as carried by the token.
	Canonical string

	// Seed is Seed(token) of the decoded token.
	Seed uint32
}

// Codec encodes and decodes tokens. A Codec without a cipher handles plain
// tokens only. Codec is safe for concurrent use.
type Codec struct {
	cipher     aead.Cipher
	maxDecoded int
}

// Option configures a Codec.
type Option func(*Codec)

// WithCipher enables sealed tokens.
func WithCipher(c aead.Cipher) Option {
	return func(codec *Codec) {
		codec.cipher = c
	}
}

// WithMaxDecodedLength bounds the decompressed canonical form, in UTF-16
// code units, that Decode accepts. Non-positive values keep
// DefaultMaxDecodedLength.
func WithMaxDecodedLength(n int) Option {
	return func(codec *Codec) {
		if n > 0 {
			codec.maxDecoded = n
		}
	}
}

// NewCodec creates a Codec.
func NewCodec(opts ...Option) *Codec {
	c := &Codec{maxDecoded: DefaultMaxDecodedLength}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CanSeal reports whether the codec has a cipher.
func (c *Codec) CanSeal() bool {
	return c.cipher != nil
}

// Encode produces a plain token for params.
func (c *Codec) Encode(kind Kind, params *Params) (string, error) {
	canonical, err := canonicalize(kind, params)
	if err != nil {
		return "", err
	}

	return checkLength(Assemble(Parts{
		Kind:    kind,
		Hash:    Fingerprint(canonical),
		Payload: Compress(canonical),
	}))
}

// Seal produces a sealed token for params. The compressed code is encrypted
// with a fresh nonce, so sealing the same params twice yields different
// tokens.
func (c *Codec) Seal(kind Kind, params *Params) (string, error) {
	if c.cipher == nil {
		return "", ErrNoCipher
	}

	canonical, err := canonicalize(kind, params)
	if err != nil {
		return "", err
	}

	sealed, err := c.cipher.Encrypt([]byte(Compress(canonical)), nil)
	if err != nil {
		return "", fmt.Errorf("fxtoken: seal: %w", err)
	}

	return checkLength(Assemble(Parts{
		Kind:    kind,
		Sealed:  true,
		Hash:    SealedHash,
		Payload: base64.RawURLEncoding.EncodeToString(sealed),
	}))
}

// checkLength refuses tokens that Decode would reject as too long.
func checkLength(token string) (string, error) {
	if len(token) > MaxTokenLength {
		return "", fmt.Errorf("%w: token would be %d bytes, limit %d", ErrSerialization, len(token), MaxTokenLength)
	}
	return token, nil
}

// Decode parses, opens and verifies token. The returned error wraps exactly
// one of ErrFormat, ErrDecompression, ErrIntegrity, ErrAuthentication,
// ErrSerialization or ErrNoCipher.
func (c *Codec) Decode(token string) (*Decoded, error) {
	parts, err := Parse(token)
	if err != nil {
		return nil, err
	}

	code := parts.Payload
	if parts.Sealed {
		if code, err = c.open(parts.Payload); err != nil {
			return nil, err
		}
	}

	canonical, err := decompress(code, c.maxDecoded)
	if err != nil {
		return nil, err
	}

	if !parts.Sealed && !VerifyFingerprint(canonical, parts.Hash) {
		return nil, ErrIntegrity
	}

	params, err := ParseParams(canonical)
	if err != nil {
		return nil, err
	}

	return &Decoded{
		Kind:      parts.Kind,
		Sealed:    parts.Sealed,
		Params:    params,
		Canonical: canonical,
		Seed:      Seed(token),
	}, nil
}

func (c *Codec) open(payload string) (string, error) {
	if c.cipher == nil {
		return "", ErrNoCipher
	}

	sealed, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return "", fmt.Errorf("%w: sealed payload is not base64url: %v", ErrFormat, err)
	}

	code, err := c.cipher.Decrypt(sealed, nil)
	if err != nil {
		if errors.Is(err, aead.ErrAuthentication) || errors.Is(err, aead.ErrCiphertextTooShort) {
			return "", fmt.Errorf("%w: %v", ErrAuthentication, err)
		}
		return "", err
	}
	return string(code), nil
}

func canonicalize(kind Kind, params *Params) (string, error) {
	if !kind.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
	if params == nil {
		return "", fmt.Errorf("%w: nil parameters", ErrSerialization)
	}
	return params.Canonical()
}

var plain = NewCodec()

// Encode produces a plain token using a Codec without a cipher.
func Encode(kind Kind, params *Params) (string, error) {
	return plain.Encode(kind, params)
}

// Decode decodes a plain token. Sealed tokens fail with ErrNoCipher.
func Decode(token string) (*Decoded, error) {
	return plain.Decode(token)
}
