package checkout

import (
	"context"

	"github.com/webshopd/nexipay/infra/config"
)

// PaymentRequest is one payment attempt through a gateway variant.
type PaymentRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Cart    Cart   `json:"cart"`
	// PaymentID carries the already-authorized payment in the embedded flow.
	PaymentID string `json:"paymentId,omitempty"`
	// Locale is the buyer's host locale, e.g. "sv_SE".
	Locale string `json:"locale,omitempty"`
	// Country is the buyer's billing country, used for availability checks.
	Country string `json:"country,omitempty"`
}

// RefundRequest asks for a full or partial refund of a settled order.
type RefundRequest struct {
	OrderID string `json:"orderId" validate:"required"`
	Amount  int64  `json:"amount" validate:"required,gt=0"`
	Reason  string `json:"reason,omitempty"`
}

// Gateway is one storefront-facing payment method variant. All variants
// drive the same provider integration; they differ in id, presentation,
// availability and the provider payment methods they enable.
type Gateway interface {
	ID() string
	Title() string
	Icon() string
	// Available reports whether the variant can serve a checkout in the
	// given currency and buyer country.
	Available(currency, country string) bool
	// Initialize wires the variant to the shared checkout service.
	Initialize(service *Service) error
	ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error)
	ProcessRefund(ctx context.Context, req RefundRequest) error
}

// MethodGateway is the shared implementation behind every variant. Variant
// packages configure one and register it with the gateway registry.
type MethodGateway struct {
	GatewayID    string
	GatewayTitle string
	GatewayIcon  string
	// Methods lists the provider paymentMethodsConfiguration names the
	// hosted page is restricted to. Empty means no restriction.
	Methods []string
	// Currencies restricts availability; empty means all currencies.
	Currencies []string
	// Countries restricts availability; empty means all countries.
	Countries []string
	// ForceRedirect sends buyers to the hosted payment page regardless of
	// the configured checkout flow.
	ForceRedirect bool
	// Enabled reads the variant's enablement flag from settings.
	Enabled func(s *config.Settings) bool

	service *Service
}

func (g *MethodGateway) ID() string    { return g.GatewayID }
func (g *MethodGateway) Title() string { return g.GatewayTitle }
func (g *MethodGateway) Icon() string  { return g.GatewayIcon }

// Initialize wires the variant to the shared checkout service.
func (g *MethodGateway) Initialize(service *Service) error {
	g.service = service
	return nil
}

// Available reports whether the variant can serve a checkout in the given
// currency and buyer country.
func (g *MethodGateway) Available(currency, country string) bool {
	if g.service == nil {
		return false
	}
	if g.Enabled != nil && !g.Enabled(g.service.Settings()) {
		return false
	}
	if len(g.Currencies) > 0 && !contains(g.Currencies, currency) {
		return false
	}
	if len(g.Countries) > 0 && !contains(g.Countries, country) {
		return false
	}
	return true
}

// MethodsConfiguration returns the provider payment method restriction for
// this variant.
func (g *MethodGateway) MethodsConfiguration() []PaymentMethodConfig {
	configs := make([]PaymentMethodConfig, 0, len(g.Methods))
	for _, name := range g.Methods {
		configs = append(configs, PaymentMethodConfig{Name: name, Enabled: true})
	}
	return configs
}

// Flow returns the checkout flow this variant uses.
func (g *MethodGateway) Flow() CheckoutFlow {
	if g.ForceRedirect {
		return FlowRedirect
	}
	return CheckoutFlow(g.service.Settings().CheckoutFlow)
}

// ProcessPayment starts payment for an order through this variant.
func (g *MethodGateway) ProcessPayment(ctx context.Context, req PaymentRequest) (*PaymentResult, error) {
	return g.service.ProcessPayment(ctx, req.OrderID, req.Cart, ProcessOptions{
		Gateway:   g.GatewayID,
		Title:     g.GatewayTitle,
		Methods:   g.MethodsConfiguration(),
		Flow:      g.Flow(),
		PaymentID: req.PaymentID,
		Locale:    req.Locale,
	})
}

// ProcessRefund refunds all or part of an order paid through this variant.
func (g *MethodGateway) ProcessRefund(ctx context.Context, req RefundRequest) error {
	return g.service.ProcessRefund(ctx, req.OrderID, req.Amount, req.Reason)
}

func contains(values []string, v string) bool {
	for _, value := range values {
		if value == v {
			return true
		}
	}
	return false
}
