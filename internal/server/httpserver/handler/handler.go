package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/core/service"
	"github.com/yndnr/fxgallery/internal/telemetry/logger"
)

// Request body limits.
const (
	maxBodyBytes    = 1 << 20
	maxWebhookBytes = 256 << 10
)

// Services are the collaborators the handlers call.
type Services struct {
	Codec    *service.CodecService
	Access   *service.AccessService
	Payments *service.PaymentService

	// Ready reports whether dependencies such as the access store are
	// usable. Nil means always ready.
	Ready func(ctx context.Context) error
}

// Handler routes requests to the individual endpoint handlers.
type Handler struct {
	codecSvc   *service.CodecService
	accessSvc  *service.AccessService
	paymentSvc *service.PaymentService
	ready      func(ctx context.Context) error
	logger     *slog.Logger
	mux        *http.ServeMux
}

// New creates a new Handler with the given services.
func New(svc Services, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	h := &Handler{
		codecSvc:   svc.Codec,
		accessSvc:  svc.Access,
		paymentSvc: svc.Payments,
		ready:      svc.Ready,
		logger:     logger,
		mux:        http.NewServeMux(),
	}

	h.registerRoutes()
	return h
}

// ServeHTTP implements http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) registerRoutes() {
	h.mux.HandleFunc("GET /health", h.handleHealth)
	h.mux.HandleFunc("GET /ready", h.handleReady)

	h.mux.HandleFunc("POST /v1/tokens", h.handleEncode)
	h.mux.HandleFunc("POST /v1/tokens/decode", h.handleDecode)
	h.mux.HandleFunc("GET /v1/tokens/{token}/seed", h.handleSeed)
	h.mux.HandleFunc("POST /v1/exports", h.handleExport)

	h.mux.HandleFunc("GET /v1/access", h.handleAccessStatus)

	h.mux.HandleFunc("POST /v1/admin/access", h.handleGrantAccess)
	h.mux.HandleFunc("GET /v1/admin/access", h.handleListAccess)
	h.mux.HandleFunc("POST /v1/admin/access/revoke", h.handleRevokeAccess)

	h.mux.HandleFunc("POST /v1/payments/webhook", h.handleWebhook)
}

// writeJSON writes a JSON response with standard envelope format.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, data any) {
	WriteResponse(w, status, NewResponse(logger.RequestIDFromContext(r.Context()), data), h.logger)
}

// writeError writes an error response with standard envelope format.
func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, status int, code, message string, details any) {
	w.Header().Set("X-Error-Code", code)
	WriteResponse(w, status, NewErrorResponse(logger.RequestIDFromContext(r.Context()), code, message, details), h.logger)
}

// WriteResponse encodes resp as the response body.
func WriteResponse(w http.ResponseWriter, status int, resp *Response, log *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	if resp.RequestID != "" {
		w.Header().Set("X-Request-ID", resp.RequestID)
	}
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(resp); err != nil && log != nil {
		log.Error("failed to encode response", "error", err)
	}
}

// WriteDomainError writes err using its code and the matching status.
// Errors that are not domain errors become FX-SYS-5000.
func WriteDomainError(w http.ResponseWriter, r *http.Request, err error, log *slog.Logger) {
	var de *domain.DomainError
	if !errors.As(err, &de) {
		if log != nil {
			log.Error("internal error", "error", err, "path", r.URL.Path)
		}
		de = domain.ErrInternalServer
	}

	var details any
	if de.Details != "" {
		details = de.Details
	}
	w.Header().Set("X-Error-Code", de.Code)
	resp := NewErrorResponse(logger.RequestIDFromContext(r.Context()), de.Code, de.Message, details)
	WriteResponse(w, ErrorCodeToHTTPStatus(de.Code), resp, log)
}

// handleServiceError converts service errors to HTTP responses.
func (h *Handler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if code := domain.CodeOf(err); code != "" {
		h.logger.Debug("request failed", "code", code, "error", err, "path", r.URL.Path)
	}
	WriteDomainError(w, r, err, h.logger)
}

// decodeBody decodes a JSON request body into v, writing a 400 response on
// failure.
func (h *Handler) decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrBadRequest.Code, "invalid request body", err.Error())
		return false
	}
	return true
}

// ErrorCodeToHTTPStatus maps an error code to its HTTP status. The last
// segment of a code is four digits whose first three are the status, so
// FX-ACCS-4020 maps to 402.
func ErrorCodeToHTTPStatus(code string) int {
	i := strings.LastIndexByte(code, '-')
	digits := code[i+1:]
	if len(digits) != 4 {
		return http.StatusInternalServerError
	}
	n, err := strconv.Atoi(digits)
	if err != nil {
		return http.StatusInternalServerError
	}

	status := n / 10
	if status < 400 || status > 599 || http.StatusText(status) == "" {
		return http.StatusInternalServerError
	}
	return status
}
