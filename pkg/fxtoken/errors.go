package fxtoken

import "errors"

// Decode failures. Each is terminal for the token being decoded.
var (
	// ErrFormat indicates the token does not match the token grammar or its
	// sealed payload is not valid base64url.
	ErrFormat = errors.New("fxtoken: malformed token")

	// ErrDecompression indicates the payload decompressed to nothing or
	// expanded past the decoded length limit.
	ErrDecompression = errors.New("fxtoken: payload does not decompress")

	// ErrIntegrity indicates the fingerprint of a plain token does not match
	// its decompressed payload.
	ErrIntegrity = errors.New("fxtoken: fingerprint mismatch")

	// ErrAuthentication indicates a sealed payload failed AEAD verification:
	// wrong passphrase or tampered token.
	ErrAuthentication = errors.New("fxtoken: sealed payload failed authentication")

	// ErrSerialization indicates the payload is not a JSON object, or that
	// parameters cannot be serialized.
	ErrSerialization = errors.New("fxtoken: invalid parameter object")
)

// Usage errors.
var (
	// ErrUnknownKind indicates an artwork kind outside Kinds.
	ErrUnknownKind = errors.New("fxtoken: unknown artwork kind")

	// ErrNoCipher indicates a sealed operation on a Codec without a cipher.
	ErrNoCipher = errors.New("fxtoken: sealing is not configured")
)

// Reason returns a short, stable name for the failure class of err, for
// logs and metric labels. It returns "unknown" for foreign errors.
func Reason(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrFormat):
		return "format"
	case errors.Is(err, ErrDecompression):
		return "decompression"
	case errors.Is(err, ErrIntegrity):
		return "integrity"
	case errors.Is(err, ErrAuthentication):
		return "authentication"
	case errors.Is(err, ErrSerialization):
		return "serialization"
	case errors.Is(err, ErrUnknownKind):
		return "unknown_kind"
	case errors.Is(err, ErrNoCipher):
		return "no_cipher"
	default:
		return "unknown"
	}
}
