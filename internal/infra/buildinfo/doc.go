// Package buildinfo exposes build-time information of the gallery binaries.
//
// Version, Commit and BuildTime are injected via ldflags:
//
//	go build -ldflags "-X github.com/yndnr/fxgallery/internal/infra/buildinfo.Version=v1.0.0"
//
// Commit and the Go version fall back to the module build information
// recorded by the Go toolchain when they are not injected.
package buildinfo
