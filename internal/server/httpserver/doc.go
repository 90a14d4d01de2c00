// Package httpserver provides the HTTP/HTTPS server for fxgallery.
//
// Endpoints:
//
//   - Tokens: POST /v1/tokens, POST /v1/tokens/decode,
//     GET /v1/tokens/{token}/seed
//   - Exports: POST /v1/exports, GET /v1/access
//   - Admin: /v1/admin/access (X-Admin-Key)
//   - Payments: POST /v1/payments/webhook
//   - Health: /health, /ready, /metrics
//
// Features:
//
//   - TLS with certificate reload (internal/infra/tlsroots)
//   - Middleware chain: RequestID, Recover, CORS, RateLimit, Audit, AdminAuth
//   - Graceful shutdown through internal/infra/shutdown
package httpserver
