package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webshopd/nexipay/checkout"
	_ "github.com/webshopd/nexipay/checkout/card"
	_ "github.com/webshopd/nexipay/checkout/swish"
	"github.com/webshopd/nexipay/infra/config"
	"github.com/webshopd/nexipay/infra/response"
)

type memOrderStore struct {
	orders map[string]*checkout.Order
}

func newMemOrderStore(orders ...*checkout.Order) *memOrderStore {
	s := &memOrderStore{orders: make(map[string]*checkout.Order)}
	for _, o := range orders {
		s.orders[o.ID] = o
	}
	return s
}

func (s *memOrderStore) GetOrder(id string) (*checkout.Order, error) {
	if order, ok := s.orders[id]; ok {
		return order, nil
	}
	return nil, checkout.NewError(checkout.ErrKindNotFound, "get order", "order not found", nil)
}

func (s *memOrderStore) SaveOrder(order *checkout.Order) error {
	s.orders[order.ID] = order
	return nil
}

func (s *memOrderStore) FindOrderByPaymentID(paymentID string) (*checkout.Order, error) {
	for _, order := range s.orders {
		if order.GetMeta(checkout.MetaPaymentID) == paymentID {
			return order, nil
		}
	}
	return nil, checkout.NewError(checkout.ErrKindNotFound, "find order", "no order for payment", nil)
}

type memSessionStore struct {
	sessions map[string]*checkout.CheckoutSession
}

func newMemSessionStore() *memSessionStore {
	return &memSessionStore{sessions: make(map[string]*checkout.CheckoutSession)}
}

func (s *memSessionStore) GetSession(id string) (*checkout.CheckoutSession, error) {
	if session, ok := s.sessions[id]; ok {
		return session, nil
	}
	return nil, checkout.NewError(checkout.ErrKindNotFound, "get session", "session not found", nil)
}

func (s *memSessionStore) SaveSession(session *checkout.CheckoutSession) error {
	s.sessions[session.ID] = session
	return nil
}

func (s *memSessionStore) DeleteSession(id string) error {
	delete(s.sessions, id)
	return nil
}

type checkoutFixture struct {
	handler  *CheckoutHandler
	service  *checkout.Service
	orders   *memOrderStore
	sessions *memSessionStore
}

func newCheckoutFixture(t *testing.T, provider http.HandlerFunc) *checkoutFixture {
	t.Helper()

	if provider == nil {
		provider = func(w http.ResponseWriter, r *http.Request) {
			t.Errorf("unexpected provider request: %s %s", r.Method, r.URL.Path)
		}
	}
	server := httptest.NewServer(provider)
	t.Cleanup(server.Close)

	client, err := checkout.NewClient(checkout.ClientConfig{SecretKey: "test-secret-key", BaseURL: server.URL})
	require.NoError(t, err)

	settings := &config.Settings{
		SecretKey:    "test-secret-key",
		CheckoutKey:  "test-checkout-key",
		CheckoutFlow: "redirect",
		ReturnURL:    "https://shop.example/confirm",
		EnableCard:   true,
		EnableSwish:  true,
	}

	orders := newMemOrderStore()
	sessions := newMemSessionStore()
	service := checkout.NewService(client, orders, sessions, settings)

	gateways := make(map[string]checkout.Gateway)
	for _, name := range []string{"card", "swish"} {
		gateway, err := checkout.CreateGateway(name)
		require.NoError(t, err)
		require.NoError(t, gateway.Initialize(service))
		gateways[name] = gateway
	}

	return &checkoutFixture{
		handler:  NewCheckoutHandler(gateways, service, sessions, validator.New()),
		service:  service,
		orders:   orders,
		sessions: sessions,
	}
}

func doRequest(t *testing.T, handler http.HandlerFunc, method, target string, gateway string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")

	if gateway != "" {
		rctx := chi.NewRouteContext()
		rctx.URLParams.Add("gateway", gateway)
		req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
	}

	w := httptest.NewRecorder()
	handler(w, req)
	return w
}

func decodeResponse(t *testing.T, w *httptest.ResponseRecorder) response.Response {
	t.Helper()

	var resp response.Response
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	return resp
}

func TestProcessPaymentHandler(t *testing.T) {
	fixture := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"paymentId":"pay1","hostedPaymentPageUrl":"https://pay.example/hpp?id=pay1"}`))
	})
	require.NoError(t, fixture.orders.SaveOrder(&checkout.Order{ID: "1001", Number: "1001"}))

	body := checkout.PaymentRequest{
		OrderID: "1001",
		Cart: checkout.Cart{
			Lines:      []checkout.ProductLine{{ProductID: "1", Name: "Mug", Quantity: 1, Subtotal: 10000, Total: 10000}},
			GrandTotal: 10000,
			Currency:   "SEK",
		},
		Locale: "sv_SE",
	}

	w := doRequest(t, fixture.handler.ProcessPayment, http.MethodPost, "/v1/checkout/card/payments", "card", body)
	assert.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	assert.True(t, resp.Success)
}

func TestProcessPaymentHandlerUnknownGateway(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)

	body := checkout.PaymentRequest{OrderID: "1001", Cart: checkout.Cart{Currency: "SEK"}}
	w := doRequest(t, fixture.handler.ProcessPayment, http.MethodPost, "/v1/checkout/klarna/payments", "klarna", body)

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestProcessPaymentHandlerUnavailableGateway(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)

	// Swish is SEK only.
	body := checkout.PaymentRequest{OrderID: "1001", Cart: checkout.Cart{Currency: "EUR"}}
	w := doRequest(t, fixture.handler.ProcessPayment, http.MethodPost, "/v1/checkout/swish/payments", "swish", body)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestProcessPaymentHandlerInvalidBody(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)

	req := httptest.NewRequest(http.MethodPost, "/v1/checkout/card/payments", bytes.NewBufferString("{not json"))
	w := httptest.NewRecorder()
	fixture.handler.ProcessPayment(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestProcessPaymentHandlerMissingOrderID(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)

	body := checkout.PaymentRequest{Cart: checkout.Cart{Currency: "SEK"}}
	w := doRequest(t, fixture.handler.ProcessPayment, http.MethodPost, "/v1/checkout/card/payments", "card", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	resp := decodeResponse(t, w)
	assert.Equal(t, "Validation error", resp.Message)
}

func TestProcessRefundHandler(t *testing.T) {
	fixture := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"refundId":"ref1"}`))
	})
	order := &checkout.Order{ID: "1001", Status: checkout.OrderPaid}
	order.UpdateMeta(checkout.MetaChargeID, "chg1")
	require.NoError(t, fixture.orders.SaveOrder(order))

	body := checkout.RefundRequest{OrderID: "1001", Amount: 5000}
	w := doRequest(t, fixture.handler.ProcessRefund, http.MethodPost, "/v1/checkout/card/refunds", "card", body)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, order.Notes, 1)
}

func TestProcessRefundHandlerNoCharge(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)
	require.NoError(t, fixture.orders.SaveOrder(&checkout.Order{ID: "1001", Status: checkout.OrderPaid}))

	body := checkout.RefundRequest{OrderID: "1001", Amount: 5000}
	w := doRequest(t, fixture.handler.ProcessRefund, http.MethodPost, "/v1/checkout/card/refunds", "card", body)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreateSessionHandler(t *testing.T) {
	fixture := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"paymentId":"pay1"}`))
	})

	body := sessionRequest{Cart: checkout.Cart{
		Lines:      []checkout.ProductLine{{ProductID: "1", Name: "Mug", Quantity: 1, Subtotal: 10000, Total: 10000}},
		GrandTotal: 10000,
		Currency:   "SEK",
	}}
	w := doRequest(t, fixture.handler.CreateSession, http.MethodPost, "/v1/checkout/session", "", body)

	require.Equal(t, http.StatusOK, w.Code)
	resp := decodeResponse(t, w)

	data, ok := resp.Data.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "pay1", data["paymentId"])
	assert.Equal(t, "test-checkout-key", data["checkoutKey"])
	assert.NotEmpty(t, data["sessionId"])
}

func TestCreateSessionHandlerRequiresCurrency(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)

	w := doRequest(t, fixture.handler.CreateSession, http.MethodPost, "/v1/checkout/session", "", sessionRequest{})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestListGatewaysHandler(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)

	w := doRequest(t, fixture.handler.ListGateways, http.MethodGet, "/v1/checkout/gateways?currency=EUR", "", nil)
	require.Equal(t, http.StatusOK, w.Code)

	resp := decodeResponse(t, w)
	list, ok := resp.Data.([]any)
	require.True(t, ok)

	// Swish is SEK only, so EUR leaves just the card variant.
	require.Len(t, list, 1)
	info := list[0].(map[string]any)
	assert.Equal(t, "nets_easy_card", info["id"])
}

func TestStatusForError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", checkout.NewError(checkout.ErrKindValidation, "op", "bad", nil), http.StatusBadRequest},
		{"not found", checkout.NewError(checkout.ErrKindNotFound, "op", "missing", nil), http.StatusNotFound},
		{"provider rejected", checkout.NewError(checkout.ErrKindProviderRejected, "op", "no", nil), http.StatusUnprocessableEntity},
		{"transport", checkout.NewError(checkout.ErrKindTransport, "op", "down", nil), http.StatusBadGateway},
		{"plain error", assert.AnError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, statusForError(tt.err))
		})
	}
}
