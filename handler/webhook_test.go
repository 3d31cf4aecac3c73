package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/webshopd/nexipay/checkout"
)

func TestHandleWebhook(t *testing.T) {
	charged := int64(12500)
	fixture := newCheckoutFixture(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"payment": map[string]any{
			"paymentId":      "pay1",
			"summary":        map[string]any{"chargedAmount": charged},
			"paymentDetails": map[string]any{"paymentMethod": "Visa", "paymentType": "CARD"},
			"charges":        []map[string]any{{"chargeId": "chg1"}},
		}})
	})
	order := &checkout.Order{ID: "1001", Number: "1001", Status: checkout.OrderPending, PaymentMethodTitle: "Nexi Card"}
	order.UpdateMeta(checkout.MetaPaymentID, "pay1")
	require.NoError(t, fixture.orders.SaveOrder(order))

	handler := NewWebhookHandler(fixture.service)

	body := `{"event":"payment.checkout.completed","data":{"paymentId":"pay1"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/card", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.HandleWebhook(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, checkout.OrderPaid, order.Status)
}

func TestHandleWebhookMissingPaymentID(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)
	handler := NewWebhookHandler(fixture.service)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/card", bytes.NewBufferString(`{"event":"payment.created","data":{}}`))
	w := httptest.NewRecorder()
	handler.HandleWebhook(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleWebhookUnknownPayment(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)
	handler := NewWebhookHandler(fixture.service)

	body := `{"event":"payment.created","data":{"paymentId":"unknown"}}`
	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/card", bytes.NewBufferString(body))
	w := httptest.NewRecorder()
	handler.HandleWebhook(w, req)

	// 404 tells the provider to stop retrying.
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleWebhookInvalidBody(t *testing.T) {
	fixture := newCheckoutFixture(t, nil)
	handler := NewWebhookHandler(fixture.service)

	req := httptest.NewRequest(http.MethodPost, "/v1/webhooks/card", bytes.NewBufferString("{broken"))
	w := httptest.NewRecorder()
	handler.HandleWebhook(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}
