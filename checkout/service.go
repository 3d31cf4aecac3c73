package checkout

import (
	"context"
	"fmt"

	"github.com/webshopd/nexipay/infra/config"
	"github.com/webshopd/nexipay/infra/logger"
)

// Service carries one provider integration end to end: session bootstrap,
// payment processing, refunds and reconciliation. Gateway variants delegate
// to a shared Service instance.
type Service struct {
	client     *Client
	orders     OrderStore
	sessions   SessionStore
	mapper     *Mapper
	reconciler *Reconciler
	settings   *config.Settings
}

// NewService wires the checkout service together.
func NewService(client *Client, orders OrderStore, sessions SessionStore, settings *config.Settings) *Service {
	return &Service{
		client:     client,
		orders:     orders,
		sessions:   sessions,
		mapper:     NewMapper(nil),
		reconciler: NewReconciler(client, settings),
		settings:   settings,
	}
}

// Settings exposes the gateway settings to variants.
func (s *Service) Settings() *config.Settings {
	return s.settings
}

// Mapper exposes the line item mapper.
func (s *Service) Mapper() *Mapper {
	return s.mapper
}

// Client exposes the provider client.
func (s *Service) Client() *Client {
	return s.client
}

// EnsurePayment returns a provider payment id for the checkout session,
// creating a payment only when the session has none or the existing one is
// no longer usable. When the cart changed under an existing payment, the
// provider order is updated in place.
func (s *Service) EnsurePayment(ctx context.Context, session *CheckoutSession, cart Cart) (string, error) {
	items := s.mapper.MapCart(cart)

	if session.PaymentID != "" && session.Currency == cart.Currency {
		payment, err := s.client.GetPayment(ctx, session.PaymentID)
		switch {
		case err != nil:
			// The session references a payment the provider no longer
			// recognizes. Start over.
			logger.Info("Resetting checkout session, payment lookup failed", logger.LogContext{
				PaymentID: session.PaymentID,
				Fields:    map[string]any{"error": err.Error()},
			})
			session.Reset()
		case payment.Finalized():
			// A finished payment cannot back a new checkout attempt.
			session.Reset()
		default:
			if session.CartHash != cart.Hash {
				order := PaymentOrder{
					Items:    OrderItemsFromLineItems(items),
					Amount:   ItemsTotal(items),
					Currency: cart.Currency,
				}
				if err := s.client.UpdatePayment(ctx, session.PaymentID, order); err != nil {
					return "", err
				}
				session.CartHash = cart.Hash
				if err := s.sessions.SaveSession(session); err != nil {
					return "", fmt.Errorf("failed to save session: %w", err)
				}
			}
			return session.PaymentID, nil
		}
	}

	request := s.buildCreateRequest(items, cart, nil, FlowEmbedded)
	created, err := s.client.CreatePayment(ctx, request)
	if err != nil {
		return "", err
	}

	session.PaymentID = created.PaymentID
	session.Currency = cart.Currency
	session.CartHash = cart.Hash
	session.ContainsSubscription = cart.ContainsSubscription
	if err := s.sessions.SaveSession(session); err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}

	return created.PaymentID, nil
}

// ProcessOptions carries the variant-specific parts of a payment attempt.
type ProcessOptions struct {
	Gateway string
	Title   string
	Methods []PaymentMethodConfig
	Flow    CheckoutFlow
	// PaymentID is the already-created payment when the embedded flow has
	// authorized the purchase on the checkout page.
	PaymentID string
	// Locale is the buyer's host locale, mapped to a hosted page language.
	Locale string
}

// ProcessPayment starts payment for an order. For the redirect and overlay
// flows a hosted payment session is created and the buyer is sent to it;
// for the embedded flow the payment already exists and the buyer goes
// straight to confirmation.
func (s *Service) ProcessPayment(ctx context.Context, orderID string, cart Cart, opts ProcessOptions) (*PaymentResult, error) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}

	flow := opts.Flow
	// Orders created through the headless store API cannot run the
	// embedded window; they always go to the hosted page.
	if order.CreatedVia == "store-api" {
		flow = FlowRedirect
	}

	order.PaymentMethod = opts.Gateway
	if opts.Title != "" {
		order.PaymentMethodTitle = opts.Title
	}
	order.UpdateMeta(MetaCheckoutFlow, string(flow))
	if order.ShippingMethod != "" {
		order.UpdateMeta(MetaShippingReference, order.ShippingMethod)
	}

	if IsEmbedded(flow) {
		if opts.PaymentID == "" {
			return nil, NewError(ErrKindValidation, "process payment", "embedded flow requires a payment id", nil)
		}
		order.UpdateMeta(MetaPaymentID, opts.PaymentID)
		if err := s.orders.SaveOrder(order); err != nil {
			return nil, fmt.Errorf("failed to save order: %w", err)
		}
		return &PaymentResult{Result: "success", Redirect: s.returnURL(order)}, nil
	}

	items := s.mapper.MapCart(cart)
	request := s.buildCreateRequest(items, cart, opts.Methods, flow)
	request.Order.Reference = order.Number

	created, err := s.client.CreatePayment(ctx, request)
	if err != nil {
		return nil, err
	}

	order.UpdateMeta(MetaPaymentID, created.PaymentID)
	if err := s.orders.SaveOrder(order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}

	redirect := created.HostedPageURL
	if redirect != "" {
		redirect += "&language=" + Locale(opts.Locale)
	}
	return &PaymentResult{Result: "success", Redirect: redirect}, nil
}

// ProcessRefund refunds all or part of a settled order charge.
func (s *Service) ProcessRefund(ctx context.Context, orderID string, amount int64, reason string) error {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return err
	}

	chargeID := order.GetMeta(MetaChargeID)
	if chargeID == "" {
		return NewError(ErrKindValidation, "process refund", "order has no settled charge to refund", nil)
	}

	refund, err := s.client.RefundCharge(ctx, chargeID, amount, nil)
	if err != nil {
		return err
	}

	note := fmt.Sprintf("Refunded %d via Nexi Checkout. Refund ID %s.", amount, refund.RefundID)
	if reason != "" {
		note += " Reason: " + reason + "."
	}
	order.AddNote(note)

	if err := s.orders.SaveOrder(order); err != nil {
		return fmt.Errorf("failed to save order: %w", err)
	}
	return nil
}

// Confirm reconciles an order against the provider after the buyer returns
// from (or completes) the payment window.
func (s *Service) Confirm(ctx context.Context, orderID string) (*ReconcileOutcome, error) {
	order, err := s.orders.GetOrder(orderID)
	if err != nil {
		return nil, err
	}
	return s.reconcile(ctx, order)
}

// HandleWebhook reconciles the order behind a provider webhook event. The
// order is resolved through the payment id recorded at checkout; no match
// is a not-found error.
func (s *Service) HandleWebhook(ctx context.Context, paymentID string) (*ReconcileOutcome, error) {
	order, err := s.orders.FindOrderByPaymentID(paymentID)
	if err != nil {
		return nil, err
	}
	if order.GetMeta(MetaPaymentID) != paymentID {
		return nil, NewError(ErrKindNotFound, "handle webhook", fmt.Sprintf("no order for payment %s", paymentID), nil)
	}
	return s.reconcile(ctx, order)
}

func (s *Service) reconcile(ctx context.Context, order *Order) (*ReconcileOutcome, error) {
	paymentID := order.GetMeta(MetaPaymentID)
	if paymentID == "" {
		return nil, NewError(ErrKindValidation, "reconcile", fmt.Sprintf("order %s has no payment id", order.ID), nil)
	}

	payment, err := s.client.GetPayment(ctx, paymentID)
	if err != nil {
		return nil, err
	}

	outcome, err := s.reconciler.Apply(ctx, order, payment)
	if err != nil {
		return nil, err
	}

	if err := s.orders.SaveOrder(order); err != nil {
		return nil, fmt.Errorf("failed to save order: %w", err)
	}
	return outcome, nil
}

func (s *Service) buildCreateRequest(items []LineItem, cart Cart, methods []PaymentMethodConfig, flow CheckoutFlow) CreatePaymentRequest {
	integrationType := "HostedPaymentPage"
	if IsEmbedded(flow) {
		integrationType = "EmbeddedCheckout"
	}

	request := CreatePaymentRequest{
		Order: PaymentOrder{
			Items:    OrderItemsFromLineItems(items),
			Amount:   ItemsTotal(items),
			Currency: cart.Currency,
		},
		Checkout: CheckoutSpec{
			IntegrationType: integrationType,
			ReturnURL:       s.settings.ReturnURL,
			CancelURL:       s.settings.CancelURL,
			TermsURL:        s.settings.TermsURL,
			Charge:          s.settings.AutoCharge,
		},
		PaymentMethodsConfiguration: methods,
	}
	if IsEmbedded(flow) {
		request.Checkout.URL = s.settings.ReturnURL
	}
	if cart.ContainsSubscription {
		request.Subscription = &SubscriptionSpec{Interval: 0}
	}
	return request
}

func (s *Service) returnURL(order *Order) string {
	if s.settings.ReturnURL == "" {
		return ""
	}
	return s.settings.ReturnURL + "?order_id=" + order.ID
}
