package handler

import (
	"net/http"

	"github.com/yndnr/fxgallery/internal/core/service"
)

// handleEncode handles POST /v1/tokens.
func (h *Handler) handleEncode(w http.ResponseWriter, r *http.Request) {
	var req EncodeTokenRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.codecSvc.Encode(r.Context(), &service.EncodeRequest{
		Kind:   req.Kind,
		Params: req.Params,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, resp)
}

// handleDecode handles POST /v1/tokens/decode.
func (h *Handler) handleDecode(w http.ResponseWriter, r *http.Request) {
	var req DecodeTokenRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	if req.Token == "" {
		h.writeError(w, r, http.StatusBadRequest, "FX-SYS-4000", "token is required", nil)
		return
	}

	resp, err := h.codecSvc.Decode(r.Context(), &service.DecodeRequest{Token: req.Token})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, resp)
}

// handleSeed handles GET /v1/tokens/{token}/seed.
func (h *Handler) handleSeed(w http.ResponseWriter, r *http.Request) {
	seed, err := h.codecSvc.Seed(r.Context(), r.PathValue("token"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, SeedResponse{Seed: seed})
}

// handleExport handles POST /v1/exports.
func (h *Handler) handleExport(w http.ResponseWriter, r *http.Request) {
	var req ExportRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.codecSvc.Export(r.Context(), &service.ExportRequest{
		Kind:   req.Kind,
		Params: req.Params,
		Email:  req.Email,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusCreated, resp)
}
