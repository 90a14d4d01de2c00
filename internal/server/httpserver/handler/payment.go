package handler

import (
	"io"
	"net/http"

	"github.com/yndnr/fxgallery/internal/core/domain"
	"github.com/yndnr/fxgallery/internal/core/service"
)

// handleWebhook handles POST /v1/payments/webhook.
//
// The raw body is read before any decoding because the signature covers
// the exact bytes that were sent.
func (h *Handler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBytes))
	if err != nil {
		h.writeError(w, r, http.StatusRequestEntityTooLarge, domain.ErrBadRequest.Code, "webhook body too large", nil)
		return
	}

	result, err := h.paymentSvc.HandleWebhook(r.Context(), payload, r.Header.Get(service.SignatureHeader))
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	h.writeJSON(w, r, http.StatusOK, result)
}
