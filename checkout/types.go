package checkout

import (
	"time"
)

// CheckoutFlow determines how the buyer interacts with the hosted payment page.
type CheckoutFlow string

const (
	FlowRedirect CheckoutFlow = "redirect"
	FlowOverlay  CheckoutFlow = "overlay"
	FlowEmbedded CheckoutFlow = "embedded"
)

// IsEmbedded reports whether the flow renders the payment window inline on
// the checkout page. "inline" is the legacy name for the embedded flow.
func IsEmbedded(flow CheckoutFlow) bool {
	return flow == FlowEmbedded || flow == "inline"
}

// SessionStatus represents the provider-side state of a payment session.
type SessionStatus string

const (
	SessionCreated   SessionStatus = "created"
	SessionReserved  SessionStatus = "reserved"
	SessionCharged   SessionStatus = "charged"
	SessionCancelled SessionStatus = "cancelled"
	SessionFailed    SessionStatus = "failed"
)

// PaymentSession is the local record of a provider payment session. It is
// created on the first checkout attempt and superseded, never deleted, when
// the provider invalidates it.
type PaymentSession struct {
	PaymentID     string        `json:"paymentId"`
	CheckoutFlow  CheckoutFlow  `json:"checkoutFlow"`
	HostedPageURL string        `json:"hostedPaymentPageUrl,omitempty"`
	Status        SessionStatus `json:"status"`
	Currency      string        `json:"currency"`
	OrderID       string        `json:"orderId,omitempty"`
}

// CheckoutSession holds the in-flight checkout state that must survive the
// multi-step checkout. Replaces arbitrary keyed session scalars with named
// fields; Reset clears everything in one step.
type CheckoutSession struct {
	ID                   string    `json:"id"`
	PaymentID            string    `json:"paymentId,omitempty"`
	Currency             string    `json:"currency,omitempty"`
	CartHash             string    `json:"cartHash,omitempty"`
	ContainsSubscription bool      `json:"containsSubscription"`
	CustomerNote         string    `json:"customerNote,omitempty"`
	UpdatedAt            time.Time `json:"updatedAt"`
}

// Reset clears all payment state from the session, keeping only its identity.
func (s *CheckoutSession) Reset() {
	s.PaymentID = ""
	s.Currency = ""
	s.CartHash = ""
	s.ContainsSubscription = false
	s.CustomerNote = ""
}

// SessionStore persists checkout sessions across requests.
type SessionStore interface {
	GetSession(id string) (*CheckoutSession, error)
	SaveSession(session *CheckoutSession) error
	DeleteSession(id string) error
}

// PaymentResult is returned from a gateway's ProcessPayment entry point.
type PaymentResult struct {
	Result   string `json:"result"` // "success" or "error"
	Redirect string `json:"redirect,omitempty"`
}

// ItemType classifies a mapped order line.
type ItemType string

const (
	ItemTypeProduct  ItemType = "product"
	ItemTypeDiscount ItemType = "discount"
	ItemTypeGiftCard ItemType = "gift_card"
	ItemTypeShipping ItemType = "shipping"
	ItemTypeFee      ItemType = "fee"
)

// LineItem is a normalized, provider-ready order line. All monetary fields
// are integers in the currency's minor unit and TaxRate is in basis points.
// TotalAmount equals SubtotalAmount minus TotalDiscountAmount within one
// minor unit of rounding.
type LineItem struct {
	Name                string         `json:"name"`
	SKU                 string         `json:"sku"`
	Quantity            int            `json:"quantity"`
	UnitPrice           int64          `json:"unitPrice"`
	SubtotalUnitPrice   int64          `json:"subtotalUnitPrice"`
	TaxRate             int            `json:"taxRate"`
	TotalAmount         int64          `json:"totalAmount"`
	SubtotalAmount      int64          `json:"subtotalAmount"`
	TotalDiscountAmount int64          `json:"totalDiscountAmount"`
	TotalTaxAmount      int64          `json:"totalTaxAmount"`
	SubtotalTaxAmount   int64          `json:"subtotalTaxAmount"`
	Type                ItemType       `json:"type"`
	ProductURL          string         `json:"productUrl,omitempty"`
	ImageURL            string         `json:"imageUrl,omitempty"`
	Compatibility       map[string]any `json:"compatibility,omitempty"`
}
