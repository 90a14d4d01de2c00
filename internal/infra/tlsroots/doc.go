// Package tlsroots manages TLS material for the gallery server and clients.
//
// Pool builds client trust stores from the system roots plus private CA
// files, so the CLI can talk to a server with a self-signed certificate.
// CertReloader serves the server certificate and swaps it in place when the
// files change on disk.
package tlsroots
