package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"
)

const (
	// API URLs
	apiLiveURL = "https://api.dibspayment.eu/v1"
	apiTestURL = "https://test.api.dibspayment.eu/v1"

	// API endpoints
	endpointPayments          = "/payments"
	endpointPayment           = "/payments/%s"
	endpointOrderItems        = "/payments/%s/orderitems"
	endpointReferenceInfo     = "/payments/%s/referenceinformation"
	endpointCancels           = "/payments/%s/cancels"
	endpointCharges           = "/payments/%s/charges"
	endpointRefunds           = "/charges/%s/refunds"
	endpointSubscription      = "/subscriptions/%s"
	endpointSubscriptions     = "/subscriptions"
	endpointSubCharges        = "/subscriptions/%s/charges"
	endpointUnschedSubCharges = "/unscheduledsubscriptions/%s/charges"
)

// ClientConfig holds the credentials and environment for the provider API.
type ClientConfig struct {
	SecretKey string
	Live      bool
	Timeout   time.Duration
	// BaseURL overrides the environment URL, e.g. for a sandbox.
	BaseURL string
}

// Client is a stateless request/response mapper for the Nexi payment API.
// Every operation takes a fully formed payload and returns either the typed
// response or a structured *Error; it never retries and never returns a
// partial success.
type Client struct {
	config ClientConfig
	http   *HTTPClient
}

// NewClient creates a provider API client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.SecretKey == "" {
		return nil, errors.New("nexi: secret key is required")
	}
	baseURL := apiTestURL
	if config.Live {
		baseURL = apiLiveURL
	}
	if config.BaseURL != "" {
		baseURL = config.BaseURL
	}
	httpClient := NewHTTPClient(&HTTPClientConfig{
		BaseURL: baseURL,
		Timeout: config.Timeout,
		DefaultHeaders: map[string]string{
			"Accept":        "application/json",
			"Authorization": config.SecretKey,
		},
	})
	return &Client{config: config, http: httpClient}, nil
}

// OrderItem is one line of the provider order payload.
type OrderItem struct {
	Reference        string `json:"reference"`
	Name             string `json:"name"`
	Quantity         int    `json:"quantity"`
	Unit             string `json:"unit"`
	UnitPrice        int64  `json:"unitPrice"`
	TaxRate          int    `json:"taxRate"`
	TaxAmount        int64  `json:"taxAmount"`
	GrossTotalAmount int64  `json:"grossTotalAmount"`
	NetTotalAmount   int64  `json:"netTotalAmount"`
}

// OrderItemFromLineItem converts a mapped line item to the wire format.
func OrderItemFromLineItem(item LineItem) OrderItem {
	quantity := item.Quantity
	if quantity < 1 {
		quantity = 1
	}
	return OrderItem{
		Reference:        item.SKU,
		Name:             item.Name,
		Quantity:         quantity,
		Unit:             "pcs",
		UnitPrice:        item.UnitPrice,
		TaxRate:          item.TaxRate,
		TaxAmount:        item.TotalTaxAmount,
		GrossTotalAmount: item.TotalAmount + item.TotalTaxAmount,
		NetTotalAmount:   item.TotalAmount,
	}
}

// OrderItemsFromLineItems converts a mapped item list to the wire format.
func OrderItemsFromLineItems(items []LineItem) []OrderItem {
	out := make([]OrderItem, 0, len(items))
	for _, item := range items {
		out = append(out, OrderItemFromLineItem(item))
	}
	return out
}

// PaymentOrder is the order block of a create/update payment payload.
type PaymentOrder struct {
	Items     []OrderItem `json:"items"`
	Amount    int64       `json:"amount"`
	Currency  string      `json:"currency"`
	Reference string      `json:"reference,omitempty"`
}

// CheckoutSpec is the checkout block of a create payment payload.
type CheckoutSpec struct {
	IntegrationType             string `json:"integrationType"`
	URL                         string `json:"url,omitempty"`
	ReturnURL                   string `json:"returnUrl,omitempty"`
	CancelURL                   string `json:"cancelUrl,omitempty"`
	TermsURL                    string `json:"termsUrl,omitempty"`
	Charge                      bool   `json:"charge"`
	MerchantHandlesConsumerData bool   `json:"merchantHandlesConsumerData"`
}

// PaymentMethodConfig restricts the hosted page to named payment methods.
type PaymentMethodConfig struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

// CreatePaymentRequest is the payload for creating a payment session.
type CreatePaymentRequest struct {
	Order                       PaymentOrder          `json:"order"`
	Checkout                    CheckoutSpec          `json:"checkout"`
	PaymentMethodsConfiguration []PaymentMethodConfig `json:"paymentMethodsConfiguration,omitempty"`
	MyReference                 string                `json:"myReference,omitempty"`
	Subscription                *SubscriptionSpec     `json:"subscription,omitempty"`
}

// SubscriptionSpec asks the provider to set up a subscription agreement.
type SubscriptionSpec struct {
	EndDate  string `json:"endDate,omitempty"`
	Interval int    `json:"interval,omitempty"`
}

// CreatePaymentResponse is the result of a create payment call.
type CreatePaymentResponse struct {
	PaymentID     string `json:"paymentId"`
	HostedPageURL string `json:"hostedPaymentPageUrl,omitempty"`
}

// PaymentSummary carries the reserved/charged state of a payment. Nil
// amounts mean the purchase has not reached that state.
type PaymentSummary struct {
	ReservedAmount  *int64 `json:"reservedAmount,omitempty"`
	ChargedAmount   *int64 `json:"chargedAmount,omitempty"`
	RefundedAmount  *int64 `json:"refundedAmount,omitempty"`
	CancelledAmount *int64 `json:"cancelledAmount,omitempty"`
}

// CardDetails carries the masked card data of a card payment.
type CardDetails struct {
	MaskedPan  string `json:"maskedPan,omitempty"`
	ExpiryDate string `json:"expiryDate,omitempty"`
}

// PaymentDetails identifies how the buyer paid.
type PaymentDetails struct {
	PaymentMethod string      `json:"paymentMethod,omitempty"`
	PaymentType   string      `json:"paymentType,omitempty"`
	CardDetails   CardDetails `json:"cardDetails,omitempty"`
}

// Charge is one settled charge of a payment.
type Charge struct {
	ChargeID string `json:"chargeId"`
	Amount   int64  `json:"amount"`
	Created  string `json:"created,omitempty"`
}

// SubscriptionRef references a subscription created by the payment.
type SubscriptionRef struct {
	ID string `json:"id"`
}

// OrderDetails summarizes the order the payment was created for.
type OrderDetails struct {
	Amount    int64  `json:"amount"`
	Currency  string `json:"currency"`
	Reference string `json:"reference,omitempty"`
}

// CheckoutDetails carries the checkout page state of a payment.
type CheckoutDetails struct {
	URL       string `json:"url,omitempty"`
	CancelURL string `json:"cancelUrl,omitempty"`
}

// Payment is the provider's payment session snapshot.
type Payment struct {
	PaymentID      string          `json:"paymentId"`
	Summary        PaymentSummary  `json:"summary"`
	PaymentDetails PaymentDetails  `json:"paymentDetails"`
	OrderDetails   OrderDetails    `json:"orderDetails"`
	Checkout       CheckoutDetails `json:"checkout"`
	Charges        []Charge        `json:"charges,omitempty"`
	Subscription   *SubscriptionRef `json:"subscription,omitempty"`
	Created        string          `json:"created,omitempty"`
}

// Finalized reports whether the purchase went through: a reserved or
// charged amount, or an active subscription.
func (p *Payment) Finalized() bool {
	return p.Summary.ReservedAmount != nil || p.Summary.ChargedAmount != nil ||
		(p.Subscription != nil && p.Subscription.ID != "")
}

// FirstChargeID returns the first charge id of the payment, if any.
func (p *Payment) FirstChargeID() string {
	if len(p.Charges) > 0 {
		return p.Charges[0].ChargeID
	}
	return ""
}

type paymentEnvelope struct {
	Payment Payment `json:"payment"`
}

// RefundResponse is the result of a refund call.
type RefundResponse struct {
	RefundID string `json:"refundId"`
}

// ChargeResponse is the result of a subscription charge call.
type ChargeResponse struct {
	PaymentID string `json:"paymentId"`
	ChargeID  string `json:"chargeId,omitempty"`
}

// Subscription is the provider's subscription snapshot.
type Subscription struct {
	SubscriptionID    string `json:"subscriptionId"`
	ExternalReference string `json:"externalReference,omitempty"`
	PaymentDetails    PaymentDetails `json:"paymentDetails"`
}

// CreatePayment creates a new payment session. Callers must not create a
// second session for the same checkout attempt without invalidating the
// first one.
func (c *Client) CreatePayment(ctx context.Context, request CreatePaymentRequest) (*CreatePaymentResponse, error) {
	if request.Order.Currency == "" {
		return nil, NewError(ErrKindValidation, "create payment", "currency is required", nil)
	}
	var resp CreatePaymentResponse
	if err := c.do(ctx, "create payment", http.MethodPost, endpointPayments, request, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// UpdatePayment replaces the order items of an existing payment session,
// used when the cart changes before the buyer pays.
func (c *Client) UpdatePayment(ctx context.Context, paymentID string, order PaymentOrder) error {
	if paymentID == "" {
		return NewError(ErrKindValidation, "update payment", "payment id is required", nil)
	}
	body := struct {
		Amount int64       `json:"amount"`
		Items  []OrderItem `json:"items"`
	}{Amount: order.Amount, Items: order.Items}
	return c.do(ctx, "update payment", http.MethodPut, fmt.Sprintf(endpointOrderItems, paymentID), body, nil)
}

// UpdatePaymentReference binds the local order number to the payment
// session, required after the paid transition in the embedded flow.
func (c *Client) UpdatePaymentReference(ctx context.Context, paymentID, reference string) error {
	if paymentID == "" {
		return NewError(ErrKindValidation, "update payment reference", "payment id is required", nil)
	}
	body := struct {
		Reference string `json:"reference"`
	}{Reference: reference}
	return c.do(ctx, "update payment reference", http.MethodPut, fmt.Sprintf(endpointReferenceInfo, paymentID), body, nil)
}

// GetPayment fetches the payment session snapshot.
func (c *Client) GetPayment(ctx context.Context, paymentID string) (*Payment, error) {
	if paymentID == "" {
		return nil, NewError(ErrKindValidation, "get payment", "payment id is required", nil)
	}
	var envelope paymentEnvelope
	if err := c.do(ctx, "get payment", http.MethodGet, fmt.Sprintf(endpointPayment, paymentID), nil, &envelope); err != nil {
		return nil, err
	}
	return &envelope.Payment, nil
}

// CancelPayment voids the reservation of a payment session.
func (c *Client) CancelPayment(ctx context.Context, paymentID string, amount int64) error {
	if paymentID == "" {
		return NewError(ErrKindValidation, "cancel payment", "payment id is required", nil)
	}
	body := struct {
		Amount int64 `json:"amount"`
	}{Amount: amount}
	return c.do(ctx, "cancel payment", http.MethodPost, fmt.Sprintf(endpointCancels, paymentID), body, nil)
}

// ChargePayment captures all or part of a reserved payment.
func (c *Client) ChargePayment(ctx context.Context, paymentID string, amount int64, items []OrderItem) (*ChargeResponse, error) {
	if paymentID == "" {
		return nil, NewError(ErrKindValidation, "charge payment", "payment id is required", nil)
	}
	body := struct {
		Amount int64       `json:"amount"`
		Items  []OrderItem `json:"orderItems,omitempty"`
	}{Amount: amount, Items: items}
	var resp ChargeResponse
	if err := c.do(ctx, "charge payment", http.MethodPost, fmt.Sprintf(endpointCharges, paymentID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// RefundCharge refunds all or part of a settled charge.
func (c *Client) RefundCharge(ctx context.Context, chargeID string, amount int64, items []OrderItem) (*RefundResponse, error) {
	if chargeID == "" {
		return nil, NewError(ErrKindValidation, "refund charge", "charge id is required", nil)
	}
	body := struct {
		Amount int64       `json:"amount"`
		Items  []OrderItem `json:"orderItems,omitempty"`
	}{Amount: amount, Items: items}
	var resp RefundResponse
	if err := c.do(ctx, "refund charge", http.MethodPost, fmt.Sprintf(endpointRefunds, chargeID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChargeSubscription charges a scheduled subscription.
func (c *Client) ChargeSubscription(ctx context.Context, subscriptionID string, order PaymentOrder) (*ChargeResponse, error) {
	if subscriptionID == "" {
		return nil, NewError(ErrKindValidation, "charge subscription", "subscription id is required", nil)
	}
	body := struct {
		Order PaymentOrder `json:"order"`
	}{Order: order}
	var resp ChargeResponse
	if err := c.do(ctx, "charge subscription", http.MethodPost, fmt.Sprintf(endpointSubCharges, subscriptionID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// ChargeUnscheduledSubscription charges an unscheduled subscription.
func (c *Client) ChargeUnscheduledSubscription(ctx context.Context, subscriptionID string, order PaymentOrder) (*ChargeResponse, error) {
	if subscriptionID == "" {
		return nil, NewError(ErrKindValidation, "charge unscheduled subscription", "subscription id is required", nil)
	}
	body := struct {
		Order PaymentOrder `json:"order"`
	}{Order: order}
	var resp ChargeResponse
	if err := c.do(ctx, "charge unscheduled subscription", http.MethodPost, fmt.Sprintf(endpointUnschedSubCharges, subscriptionID), body, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSubscription fetches a subscription by its id.
func (c *Client) GetSubscription(ctx context.Context, subscriptionID string) (*Subscription, error) {
	if subscriptionID == "" {
		return nil, NewError(ErrKindValidation, "get subscription", "subscription id is required", nil)
	}
	var resp Subscription
	if err := c.do(ctx, "get subscription", http.MethodGet, fmt.Sprintf(endpointSubscription, subscriptionID), nil, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetSubscriptionByExternalRef fetches a subscription by the merchant's own
// reference.
func (c *Client) GetSubscriptionByExternalRef(ctx context.Context, externalRef string) (*Subscription, error) {
	if externalRef == "" {
		return nil, NewError(ErrKindValidation, "get subscription by external ref", "external reference is required", nil)
	}
	req := &HTTPRequest{
		Method:      http.MethodGet,
		Endpoint:    endpointSubscriptions,
		QueryParams: map[string]string{"externalReference": externalRef},
	}
	var resp Subscription
	if err := c.send(ctx, "get subscription by external ref", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

func (c *Client) do(ctx context.Context, op, method, endpoint string, body, out any) error {
	req := &HTTPRequest{Method: method, Endpoint: endpoint, Body: body}
	return c.send(ctx, op, req, out)
}

func (c *Client) send(ctx context.Context, op string, req *HTTPRequest, out any) error {
	resp, err := c.http.SendJSON(ctx, req)
	if err != nil {
		return c.mapFailure(op, resp, err)
	}
	if out != nil {
		if err := c.http.ParseJSONResponse(resp, out); err != nil {
			return NewError(ErrKindTransport, op, "failed to parse provider response", err)
		}
	}
	return nil
}

// mapFailure converts an HTTP failure into the structured error contract:
// 404 -> not-found, other 4xx -> provider-rejected, 5xx and everything
// below the HTTP layer -> transport.
func (c *Client) mapFailure(op string, resp *HTTPResponse, err error) *Error {
	if resp == nil {
		return &Error{Kind: ErrKindTransport, Op: op, Message: err.Error(), Err: err}
	}
	message := providerMessage(resp.Body)
	if message == "" {
		message = err.Error()
	}
	kind := ErrKindProviderRejected
	switch {
	case resp.StatusCode == http.StatusNotFound:
		kind = ErrKindNotFound
	case resp.StatusCode >= 500:
		kind = ErrKindTransport
	}
	return &Error{Kind: kind, Op: op, StatusCode: resp.StatusCode, Message: message, Err: err}
}

// providerMessage extracts a human-readable message from a structured
// provider error body.
func providerMessage(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var parsed struct {
		Message string              `json:"message"`
		Errors  map[string][]string `json:"errors"`
	}
	if err := json.Unmarshal(body, &parsed); err != nil {
		return ""
	}
	if parsed.Message != "" {
		return parsed.Message
	}
	for field, msgs := range parsed.Errors {
		if len(msgs) > 0 {
			return field + ": " + msgs[0]
		}
	}
	return ""
}
