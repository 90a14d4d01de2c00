// Package service provides the application services of the gallery backend.
//
// Services orchestrate the token codec, the access store and the payment
// provider. They define interfaces for their storage dependencies, allowing
// for dependency injection and testability.
//
// This package contains:
//
//   - CodecService: token encoding, decoding, seed derivation and gated export
//   - AccessService: export grants keyed by e-mail address
//   - PaymentService: webhook verification and grant on completed checkout
//   - AdminAuthenticator: admin key verification (plaintext or Argon2id)
//   - RateLimiterRegistry: per-client token buckets
//
// Services are safe for concurrent use.
package service
