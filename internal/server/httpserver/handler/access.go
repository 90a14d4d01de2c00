package handler

import (
	"net/http"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/core/service"
)

// handleAccessStatus handles GET /v1/access?email=.
func (h *Handler) handleAccessStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.accessSvc.Status(r.Context(), r.URL.Query().Get("email"))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, status)
}

// handleGrantAccess handles POST /v1/admin/access.
func (h *Handler) handleGrantAccess(w http.ResponseWriter, r *http.Request) {
	var req GrantAccessRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	resp, err := h.accessSvc.Grant(r.Context(), &service.GrantRequest{
		Email:     req.Email,
		Source:    domain.GrantSourceAdmin,
		Reference: req.Reference,
	})
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	status := http.StatusOK
	if resp.Created {
		status = http.StatusCreated
	}
	h.writeJSON(w, r, status, resp)
}

// handleListAccess handles GET /v1/admin/access.
func (h *Handler) handleListAccess(w http.ResponseWriter, r *http.Request) {
	grants, err := h.accessSvc.List(r.Context())
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	if grants == nil {
		grants = []*domain.Grant{}
	}

	h.writeJSON(w, r, http.StatusOK, ListAccessResponse{
		Items: grants,
		Total: len(grants),
	})
}

// handleRevokeAccess handles POST /v1/admin/access/revoke.
func (h *Handler) handleRevokeAccess(w http.ResponseWriter, r *http.Request) {
	var req RevokeAccessRequest
	if !h.decodeBody(w, r, &req) {
		return
	}

	email, err := domain.NormalizeEmail(req.Email)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	if err := h.accessSvc.Revoke(r.Context(), email); err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, RevokeAccessResponse{Email: email, Revoked: true})
}
