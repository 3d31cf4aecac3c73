package v1

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/handler"
)

// Routes registers all API routes
func Routes(r chi.Router, service *checkout.Service, gateways map[string]checkout.Gateway, sessions checkout.SessionStore) {
	checkoutHandler := handler.NewCheckoutHandler(gateways, service, sessions, validator.New())
	confirmationHandler := handler.NewConfirmationHandler(service)
	webhookHandler := handler.NewWebhookHandler(service)

	// Checkout routes
	r.Route("/checkout", func(r chi.Router) {
		// Session bootstrap for the embedded checkout widget
		r.Post("/session", checkoutHandler.CreateSession)

		// Gateways available for a currency and country
		r.Get("/gateways", checkoutHandler.ListGateways)

		// Return from the hosted or embedded checkout
		r.HandleFunc("/confirm", confirmationHandler.Confirm)

		// Gateway-specific payment routes
		r.Post("/{gateway}/payments", checkoutHandler.ProcessPayment)
		r.Post("/{gateway}/refunds", checkoutHandler.ProcessRefund)
	})

	// Webhook routes for payment notifications
	r.Route("/webhooks", func(r chi.Router) {
		r.Post("/{gateway}", webhookHandler.HandleWebhook)
	})
}
