// Package domain defines the core domain models for fxgallery.
//
// Domain models are pure value objects without IO dependencies or
// framework coupling. This package contains:
//
//   - Grant: a purchased export entitlement bound to an e-mail address
//   - Errors: domain error codes shared by services and transports
//
// Artwork tokens themselves live in pkg/fxtoken; they carry no server-side
// state.
package domain
