package checkout

import (
	"time"
)

// OrderStatus is the local order state driven by reconciliation.
type OrderStatus string

const (
	OrderPending        OrderStatus = "pending"
	OrderAwaitingCharge OrderStatus = "awaiting_charge"
	OrderPaid           OrderStatus = "paid"
	OrderCancelled      OrderStatus = "cancelled"
)

// Metadata keys written on orders during checkout and reconciliation.
const (
	MetaPaymentID         = "_dibs_payment_id"
	MetaPaymentType       = "dibs_payment_type"
	MetaPaymentMethod     = "dibs_payment_method"
	MetaCustomerCard      = "dibs_customer_card"
	MetaDatePaid          = "_dibs_date_paid"
	MetaChargeID          = "_dibs_charge_id"
	MetaCheckoutFlow      = "_dibs_checkout_flow"
	MetaShippingReference = "_nets_shipping_reference"
)

// Order is the host system's order as seen by this module. The module never
// owns the order lifecycle; it only annotates orders through the idempotent
// update operations below.
type Order struct {
	ID                 string            `json:"id"`
	Number             string            `json:"number"`
	Status             OrderStatus       `json:"status"`
	Currency           string            `json:"currency"`
	Total              int64             `json:"total"`
	PaymentMethod      string            `json:"paymentMethod"`
	PaymentMethodTitle string            `json:"paymentMethodTitle"`
	TransactionID      string            `json:"transactionId,omitempty"`
	CreatedVia         string            `json:"createdVia,omitempty"`
	ShippingMethod     string            `json:"shippingMethod,omitempty"`
	Meta               map[string]string `json:"meta,omitempty"`
	Notes              []string          `json:"notes,omitempty"`
	Fees               []FeeLine         `json:"fees,omitempty"`
	DatePaid           time.Time         `json:"datePaid,omitempty"`
	CancelURL          string            `json:"cancelUrl,omitempty"`
}

// UpdateMeta upserts one metadata key. Safe to repeat.
func (o *Order) UpdateMeta(key, value string) {
	if o.Meta == nil {
		o.Meta = make(map[string]string)
	}
	o.Meta[key] = value
}

// GetMeta returns a metadata value or the empty string.
func (o *Order) GetMeta(key string) string {
	return o.Meta[key]
}

// AddNote appends an order note unless an identical note already exists,
// so repeated reconciliations leave exactly one copy.
func (o *Order) AddNote(note string) {
	for _, existing := range o.Notes {
		if existing == note {
			return
		}
	}
	o.Notes = append(o.Notes, note)
}

// AddFee upserts a fee line by name.
func (o *Order) AddFee(fee FeeLine) {
	for i, existing := range o.Fees {
		if existing.Name == fee.Name {
			o.Fees[i] = fee
			return
		}
	}
	o.Fees = append(o.Fees, fee)
	o.Total += fee.Total + fee.TotalTax
}

// MarkPaid records the payment with the provider's payment id as the
// transaction reference. Repeating the call changes nothing.
func (o *Order) MarkPaid(transactionID string) {
	if o.Status == OrderPaid && o.TransactionID == transactionID {
		return
	}
	o.Status = OrderPaid
	o.TransactionID = transactionID
	if o.DatePaid.IsZero() {
		o.DatePaid = time.Now().UTC()
	}
}

// OrderStore is the host collaborator that persists orders.
type OrderStore interface {
	GetOrder(id string) (*Order, error)
	SaveOrder(order *Order) error
	// FindOrderByPaymentID resolves the newest order annotated with the
	// given provider payment id, or a not-found error.
	FindOrderByPaymentID(paymentID string) (*Order, error)
}
