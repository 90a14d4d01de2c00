// Package main provides the entry point for fxgallery-server.
//
// The server provides the gallery token API:
//
//   - encoding, decoding and seeding share tokens over HTTP/HTTPS
//   - sealed exports for e-mail addresses with access
//   - the payment webhook that grants access after checkout
//   - admin endpoints for managing grants
//
// Usage:
//
//	fxgallery-server [flags]
//	fxgallery-server --config /etc/fxgallery/server.yaml
//
// Settings come from the config file, a .env file in the working directory
// and FXGALLERY_ environment variables, in increasing priority. Changing
// log.level in the config file takes effect without a restart.
package main
