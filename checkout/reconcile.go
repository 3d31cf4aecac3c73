package checkout

import (
	"context"
	"fmt"
	"time"

	"github.com/webshopd/nexipay/infra/config"
	"github.com/webshopd/nexipay/infra/logger"
)

// ReconcileOutcome describes what a reconciliation did with an order.
type ReconcileOutcome struct {
	Status OrderStatus `json:"status"`
	// RedirectURL is set when the buyer should be sent somewhere, e.g. the
	// cancellation page after an unfinished purchase.
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Reconciler folds a provider payment snapshot into the local order. Every
// write it performs is an idempotent upsert, so reconciling the same
// snapshot twice leaves the order unchanged.
type Reconciler struct {
	client   *Client
	settings *config.Settings
}

// NewReconciler creates a reconciler over the provider client.
func NewReconciler(client *Client, settings *config.Settings) *Reconciler {
	return &Reconciler{client: client, settings: settings}
}

// Apply reconciles one payment snapshot into the order. The caller persists
// the order afterwards.
func (r *Reconciler) Apply(ctx context.Context, order *Order, payment *Payment) (*ReconcileOutcome, error) {
	if !payment.Finalized() {
		return r.cancel(order, payment), nil
	}

	method := payment.PaymentDetails.PaymentMethod
	paymentType := payment.PaymentDetails.PaymentType

	// The title is derived from the gateway title exactly once; the meta
	// key doubles as the first-reconcile marker.
	if method != "" && order.GetMeta(MetaPaymentMethod) == "" {
		order.PaymentMethodTitle = PaymentMethodTitle(order.PaymentMethodTitle, method, paymentType)
	}

	order.UpdateMeta(MetaPaymentMethod, method)
	order.UpdateMeta(MetaPaymentType, paymentType)
	if order.GetMeta(MetaDatePaid) == "" {
		order.UpdateMeta(MetaDatePaid, time.Now().UTC().Format(time.RFC3339))
	}

	if paymentType == "CARD" && payment.PaymentDetails.CardDetails.MaskedPan != "" {
		order.UpdateMeta(MetaCustomerCard, payment.PaymentDetails.CardDetails.MaskedPan)
	}

	if paymentType == "INVOICE" && r.settings.InvoiceFeeAmount > 0 {
		order.AddFee(FeeLine{
			Name:     r.settings.InvoiceFeeName,
			Total:    r.settings.InvoiceFeeAmount,
			TotalTax: r.settings.InvoiceFeeTax,
		})
	}

	if chargeID := payment.FirstChargeID(); chargeID != "" {
		order.UpdateMeta(MetaChargeID, chargeID)
		order.AddNote(fmt.Sprintf("New payment created in Nexi Checkout with Payment ID %s. Payment type - %s. Charge ID %s.",
			payment.PaymentID, paymentType, chargeID))
	} else {
		// Reserved but not yet settled. The order passes through
		// awaiting_charge and is marked paid against the reservation.
		order.Status = OrderAwaitingCharge
		order.AddNote(fmt.Sprintf("New payment created in Nexi Checkout with Payment ID %s. Payment type - %s. Awaiting charge.",
			payment.PaymentID, paymentType))
	}

	order.MarkPaid(payment.PaymentID)

	if IsEmbedded(CheckoutFlow(order.GetMeta(MetaCheckoutFlow))) {
		r.bindReference(ctx, order, payment)
	}

	return &ReconcileOutcome{Status: order.Status}, nil
}

// cancel handles the unfinished purchase: the order is cancelled locally
// and the buyer is sent to the cancellation page.
func (r *Reconciler) cancel(order *Order, payment *Payment) *ReconcileOutcome {
	order.Status = OrderCancelled
	order.AddNote(fmt.Sprintf("Payment %s was not completed in Nexi Checkout. Order cancelled.", payment.PaymentID))

	redirect := payment.Checkout.CancelURL
	if redirect == "" {
		redirect = r.settings.CancelURL
	}
	if redirect == "" {
		redirect = order.CancelURL
	}
	return &ReconcileOutcome{Status: OrderCancelled, RedirectURL: redirect}
}

// bindReference writes the order number onto the payment session, required
// for the embedded flow where the payment is created before the order
// exists. Failure does not affect the paid order.
func (r *Reconciler) bindReference(ctx context.Context, order *Order, payment *Payment) {
	if err := r.client.UpdatePaymentReference(ctx, payment.PaymentID, order.Number); err != nil {
		order.AddNote(fmt.Sprintf("Could not update the payment reference for Payment ID %s.", payment.PaymentID))
		logger.Warn("Failed to update payment reference", logger.LogContext{
			PaymentID: payment.PaymentID,
			OrderID:   order.ID,
			Fields:    map[string]any{"error": err.Error()},
		})
	}
}
