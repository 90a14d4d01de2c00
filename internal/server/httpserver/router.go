package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"net/netip"

	"github.com/yndnr/fxgallery/internal/core/service"
	"github.com/yndnr/fxgallery/internal/server/httpserver/handler"
	"github.com/yndnr/fxgallery/internal/telemetry/metric"
)

// RouterConfig holds configuration for the HTTP router.
type RouterConfig struct {
	CodecService   *service.CodecService
	AccessService  *service.AccessService
	PaymentService *service.PaymentService

	// AdminAuth guards /v1/admin. Nil or disabled rejects every admin call.
	AdminAuth *service.AdminAuthenticator

	// RateLimiter limits requests per client IP. Nil disables limiting.
	RateLimiter *service.RateLimiterRegistry

	// Metrics receives request metrics and serves /metrics.
	Metrics *metric.Registry

	// Ready backs GET /ready.
	Ready func(ctx context.Context) error

	Logger *slog.Logger

	// CORSAllowedOrigins is the list of allowed CORS origins (empty = no CORS).
	CORSAllowedOrigins []string

	// TrustedProxies are the peers whose forwarding headers name the client.
	// Empty attributes every request to its direct peer.
	TrustedProxies []netip.Prefix
}

// NewRouter creates and configures the HTTP router with all routes and middleware.
func NewRouter(cfg *RouterConfig) http.Handler {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}
	metrics := cfg.Metrics
	if metrics == nil {
		metrics = metric.Global()
	}

	h := handler.New(handler.Services{
		Codec:    cfg.CodecService,
		Access:   cfg.AccessService,
		Payments: cfg.PaymentService,
		Ready:    cfg.Ready,
	}, log)

	mux := http.NewServeMux()

	// Health endpoints
	mux.Handle("GET /health", h)
	mux.Handle("GET /ready", h)
	mux.Handle("GET /metrics", metrics.Handler())

	// Public API: Audit -> RateLimit -> Handler
	api := Chain(h, Audit(log, metrics), RateLimit(cfg.RateLimiter))
	mux.Handle("POST /v1/tokens", api)
	mux.Handle("POST /v1/tokens/decode", api)
	mux.Handle("GET /v1/tokens/{token}/seed", api)
	mux.Handle("POST /v1/exports", api)
	mux.Handle("GET /v1/access", api)

	// Admin API: Audit -> RateLimit -> AdminAuth -> Handler
	admin := Chain(h, Audit(log, metrics), RateLimit(cfg.RateLimiter), AdminAuth(cfg.AdminAuth, log))
	mux.Handle("POST /v1/admin/access", admin)
	mux.Handle("GET /v1/admin/access", admin)
	mux.Handle("POST /v1/admin/access/revoke", admin)

	// Payment provider deliveries are signed and retried; they are not
	// rate limited.
	mux.Handle("POST /v1/payments/webhook", Chain(h, Audit(log, metrics)))

	// Order: RequestID -> ClientIP -> Recover -> CORS -> mux
	return Chain(mux, RequestID(), ClientIP(cfg.TrustedProxies), Recover(log), CORS(cfg.CORSAllowedOrigins))
}
