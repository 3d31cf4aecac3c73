package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/logger"
	"github.com/webshopd/nexipay/infra/response"
)

// webhookEvent is the provider's webhook envelope
type webhookEvent struct {
	Event string `json:"event"`
	Data  struct {
		PaymentID string `json:"paymentId"`
	} `json:"data"`
}

// WebhookHandler processes provider webhook notifications
type WebhookHandler struct {
	service *checkout.Service
}

// NewWebhookHandler creates a new webhook handler
func NewWebhookHandler(service *checkout.Service) *WebhookHandler {
	return &WebhookHandler{service: service}
}

// HandleWebhook resolves the order behind the event's payment id and
// reconciles it. An unknown payment id is a 404 so the provider stops
// retrying.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var event webhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid webhook payload", err)
		return
	}
	if event.Data.PaymentID == "" {
		response.Error(w, http.StatusBadRequest, "Missing payment id", nil)
		return
	}

	log := logger.WithPayment("webhook", event.Data.PaymentID)
	log.AddField("event", event.Event)

	outcome, err := h.service.HandleWebhook(ctx, event.Data.PaymentID)
	if err != nil {
		if checkout.IsNotFound(err) {
			log.Warn("Webhook for unknown payment")
			response.Error(w, http.StatusNotFound, "No order for payment", err)
			return
		}
		log.Error("Webhook reconciliation failed", err)
		response.Error(w, statusForError(err), "Webhook processing failed", err)
		return
	}

	log.Info("Webhook reconciled order")
	response.Success(w, http.StatusOK, "Webhook processed", outcome)
}
