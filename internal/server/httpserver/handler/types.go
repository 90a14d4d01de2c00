package handler

import (
	"time"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/pkg/fxtoken"
)

// Response is the standard API response envelope.
// All JSON responses use this format (except /metrics which uses Prometheus format).
type Response struct {
	Code      string `json:"code"`
	Message   string `json:"message"`
	RequestID string `json:"request_id"`
	Timestamp int64  `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Details   any    `json:"details,omitempty"`
}

// NewResponse creates a success response.
func NewResponse(requestID string, data any) *Response {
	return &Response{
		Code:      "OK",
		Message:   "Success",
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Data:      data,
	}
}

// NewErrorResponse creates an error response.
func NewErrorResponse(requestID, code, message string, details any) *Response {
	return &Response{
		Code:      code,
		Message:   message,
		RequestID: requestID,
		Timestamp: time.Now().UnixMilli(),
		Details:   details,
	}
}

// EncodeTokenRequest is the request body for POST /v1/tokens.
type EncodeTokenRequest struct {
	Kind   string          `json:"kind"`
	Params *fxtoken.Params `json:"params"`
}

// DecodeTokenRequest is the request body for POST /v1/tokens/decode.
type DecodeTokenRequest struct {
	Token string `json:"token"`
}

// SeedResponse is the response body for GET /v1/tokens/{token}/seed.
type SeedResponse struct {
	Seed uint32 `json:"seed"`
}

// ExportRequest is the request body for POST /v1/exports.
type ExportRequest struct {
	Kind   string          `json:"kind"`
	Params *fxtoken.Params `json:"params"`
	Email  string          `json:"email"`
}

// GrantAccessRequest is the request body for POST /v1/admin/access.
type GrantAccessRequest struct {
	Email     string `json:"email"`
	Reference string `json:"reference,omitempty"`
}

// RevokeAccessRequest is the request body for POST /v1/admin/access/revoke.
type RevokeAccessRequest struct {
	Email string `json:"email"`
}

// RevokeAccessResponse is the response body for POST /v1/admin/access/revoke.
type RevokeAccessResponse struct {
	Email   string `json:"email"`
	Revoked bool   `json:"revoked"`
}

// ListAccessResponse is the response body for GET /v1/admin/access.
type ListAccessResponse struct {
	Items []*domain.Grant `json:"items"`
	Total int             `json:"total"`
}

// HealthResponse is the response body for GET /health and GET /ready.
type HealthResponse struct {
	Status string `json:"status"`
	Time   string `json:"time"`
	Error  string `json:"error,omitempty"`
}
