package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/logger"
	"github.com/webshopd/nexipay/infra/response"
)

// ConfirmationHandler reconciles orders when the buyer lands on the
// confirmation page after payment.
type ConfirmationHandler struct {
	service *checkout.Service
}

// NewConfirmationHandler creates a new confirmation handler
func NewConfirmationHandler(service *checkout.Service) *ConfirmationHandler {
	return &ConfirmationHandler{service: service}
}

// Confirm reconciles the order against the provider. A cancelled purchase
// yields the redirect URL the storefront should send the buyer to.
func (h *ConfirmationHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	orderID := r.URL.Query().Get("order_id")
	if orderID == "" {
		response.Error(w, http.StatusBadRequest, "Missing order id", nil)
		return
	}

	outcome, err := h.service.Confirm(ctx, orderID)
	if err != nil {
		logger.Error("Order confirmation failed", err, logger.LogContext{OrderID: orderID})
		response.Error(w, statusForError(err), "Confirmation failed", err)
		return
	}

	logger.Info("Order confirmed", logger.LogContext{
		OrderID: orderID,
		Fields:  map[string]any{"status": string(outcome.Status)},
	})
	response.Success(w, http.StatusOK, "Order reconciled", outcome)
}
