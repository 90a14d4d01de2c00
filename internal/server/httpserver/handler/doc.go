// Package handler provides the HTTP request handlers for fxgallery-server.
//
//   - token.go: encode, decode, seed and sealed export
//   - access.go: access status and the admin grant endpoints
//   - payment.go: payment provider webhook
//   - health.go: health and readiness checks
//
// Every JSON response uses the Response envelope. Domain errors are mapped
// to HTTP status codes by the digits of their code.
package handler
