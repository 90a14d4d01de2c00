// Package fxtoken encodes artwork parameters into shareable tokens and
// derives generator seeds from them.
//
// Token Format:
//
//	fx-<kind>-v2[e].<hash>.<payload>
//
//   - kind: flow, grid, mosaic, rotated, tree or text
//   - v2: pipeline version; a trailing "e" marks a sealed token
//   - hash: 16 lowercase hex characters. Plain tokens carry the Fingerprint
//     of the canonical JSON; sealed tokens carry SealedHash
//   - payload: URL-safe Base64 without padding
//
// Pipelines:
//
//	plain:  canonical JSON -> compress -> fingerprint -> assemble
//	sealed: canonical JSON -> compress -> encrypt -> base64url -> assemble
//
// Decoding runs the stages in reverse and fails with exactly one of
// ErrFormat, ErrDecompression, ErrIntegrity, ErrAuthentication or
// ErrSerialization.
//
// Integrity:
//
// The fingerprint is an unkeyed, non-cryptographic checksum. It catches
// truncated or mangled links; it does not stop anyone from forging a plain
// token. Sealed tokens rely on the AEAD tag instead.
//
// Arithmetic:
//
// Seed and Fingerprint iterate over UTF-16 code units and wrap at 32 bits on
// every step, so results match tokens issued by the browser gallery.
package fxtoken
