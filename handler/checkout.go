package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/response"
)

// CheckoutHandler handles checkout related HTTP requests
type CheckoutHandler struct {
	gateways map[string]checkout.Gateway
	service  *checkout.Service
	sessions checkout.SessionStore
	validate *validator.Validate
}

// NewCheckoutHandler creates a new checkout handler over the initialized
// gateway variants.
func NewCheckoutHandler(gateways map[string]checkout.Gateway, service *checkout.Service, sessions checkout.SessionStore, validate *validator.Validate) *CheckoutHandler {
	return &CheckoutHandler{
		gateways: gateways,
		service:  service,
		sessions: sessions,
		validate: validate,
	}
}

// ProcessPayment handles payment requests for one gateway variant
func (h *CheckoutHandler) ProcessPayment(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req checkout.PaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	gateway, ok := h.gateways[chi.URLParam(r, "gateway")]
	if !ok {
		response.Error(w, http.StatusNotFound, "Unknown gateway", nil)
		return
	}
	if !gateway.Available(req.Cart.Currency, req.Country) {
		response.Error(w, http.StatusUnprocessableEntity, "Gateway not available for this checkout", nil)
		return
	}

	result, err := gateway.ProcessPayment(ctx, req)
	if err != nil {
		response.Error(w, statusForError(err), "Payment failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Payment processed", result)
}

// ProcessRefund handles refund requests for one gateway variant
func (h *CheckoutHandler) ProcessRefund(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req checkout.RefundRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}

	if err := h.validate.Struct(req); err != nil {
		response.Error(w, http.StatusBadRequest, "Validation error", err)
		return
	}

	gateway, ok := h.gateways[chi.URLParam(r, "gateway")]
	if !ok {
		response.Error(w, http.StatusNotFound, "Unknown gateway", nil)
		return
	}

	if err := gateway.ProcessRefund(ctx, req); err != nil {
		response.Error(w, statusForError(err), "Refund failed", err)
		return
	}

	response.Success(w, http.StatusOK, "Refund processed", nil)
}

// sessionRequest bootstraps or refreshes an embedded checkout session
type sessionRequest struct {
	SessionID string        `json:"sessionId"`
	Cart      checkout.Cart `json:"cart" validate:"required"`
}

// CreateSession ensures a provider payment exists for the checkout session.
// Called by the embedded checkout page on load and on every cart change.
func (h *CheckoutHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 30*time.Second)
	defer cancel()

	var req sessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.Error(w, http.StatusBadRequest, "Invalid request format", err)
		return
	}
	if req.Cart.Currency == "" {
		response.Error(w, http.StatusBadRequest, "Cart currency is required", nil)
		return
	}

	session := h.loadOrCreateSession(req.SessionID)

	paymentID, err := h.service.EnsurePayment(ctx, session, req.Cart)
	if err != nil {
		response.Error(w, statusForError(err), "Failed to prepare payment", err)
		return
	}

	response.Success(w, http.StatusOK, "Checkout session ready", map[string]string{
		"sessionId":   session.ID,
		"paymentId":   paymentID,
		"checkoutKey": h.service.Settings().CheckoutKey,
	})
}

// gatewayInfo is the storefront-facing description of one variant
type gatewayInfo struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Icon  string `json:"icon,omitempty"`
}

// ListGateways returns the variants available for a currency/country pair
func (h *CheckoutHandler) ListGateways(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")
	country := r.URL.Query().Get("country")

	available := make([]gatewayInfo, 0, len(h.gateways))
	for _, gateway := range h.gateways {
		if gateway.Available(currency, country) {
			available = append(available, gatewayInfo{
				ID:    gateway.ID(),
				Title: gateway.Title(),
				Icon:  gateway.Icon(),
			})
		}
	}

	response.Success(w, http.StatusOK, "Available gateways", available)
}

func (h *CheckoutHandler) loadOrCreateSession(id string) *checkout.CheckoutSession {
	if id != "" {
		if session, err := h.sessions.GetSession(id); err == nil {
			return session
		}
	}
	if id == "" {
		id = uuid.New().String()
	}
	return &checkout.CheckoutSession{ID: id}
}

// statusForError maps the structured checkout error kinds onto HTTP codes
func statusForError(err error) int {
	switch checkout.KindOf(err) {
	case checkout.ErrKindValidation:
		return http.StatusBadRequest
	case checkout.ErrKindNotFound:
		return http.StatusNotFound
	case checkout.ErrKindProviderRejected:
		return http.StatusUnprocessableEntity
	case checkout.ErrKindTransport:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
