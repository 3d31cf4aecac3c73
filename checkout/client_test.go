package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := NewClient(ClientConfig{SecretKey: "test-secret-key", BaseURL: server.URL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}
	return client
}

func TestNewClientRequiresSecretKey(t *testing.T) {
	if _, err := NewClient(ClientConfig{}); err == nil {
		t.Fatal("expected error for missing secret key")
	}
}

func TestCreatePayment(t *testing.T) {
	var gotAuth string
	var gotBody CreatePaymentRequest
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		if r.Method != http.MethodPost || r.URL.Path != "/payments" {
			t.Errorf("unexpected request: %s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = w.Write([]byte(`{"paymentId":"0254abc","hostedPaymentPageUrl":"https://test.checkout.dibspayment.eu/hppv2?id=0254abc"}`))
	})

	resp, err := client.CreatePayment(context.Background(), CreatePaymentRequest{
		Order: PaymentOrder{
			Items:     []OrderItem{{Reference: "MUG-1", Name: "Mug", Quantity: 1, Unit: "pcs", UnitPrice: 10000, GrossTotalAmount: 12500, NetTotalAmount: 10000, TaxRate: 2500, TaxAmount: 2500}},
			Amount:    12500,
			Currency:  "SEK",
			Reference: "1001",
		},
		Checkout: CheckoutSpec{IntegrationType: "HostedPaymentPage", ReturnURL: "https://shop.example/return"},
	})
	if err != nil {
		t.Fatalf("CreatePayment failed: %v", err)
	}
	if resp.PaymentID != "0254abc" {
		t.Errorf("PaymentID = %q", resp.PaymentID)
	}
	if resp.HostedPageURL == "" {
		t.Error("HostedPageURL is empty")
	}
	if gotAuth != "test-secret-key" {
		t.Errorf("Authorization = %q", gotAuth)
	}
	if gotBody.Order.Amount != 12500 || gotBody.Order.Reference != "1001" {
		t.Errorf("order payload = %+v", gotBody.Order)
	}
}

func TestCreatePaymentRequiresCurrency(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Error("request should not reach the provider")
	})

	_, err := client.CreatePayment(context.Background(), CreatePaymentRequest{})
	if KindOf(err) != ErrKindValidation {
		t.Errorf("KindOf(err) = %q, want validation", KindOf(err))
	}
}

func TestGetPaymentUnwrapsEnvelope(t *testing.T) {
	reserved := int64(12500)
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/0254abc" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(paymentEnvelope{Payment: Payment{
			PaymentID: "0254abc",
			Summary:   PaymentSummary{ReservedAmount: &reserved},
			PaymentDetails: PaymentDetails{
				PaymentMethod: "Visa",
				PaymentType:   "CARD",
				CardDetails:   CardDetails{MaskedPan: "4925xxxxxxxx0004"},
			},
		}})
	})

	payment, err := client.GetPayment(context.Background(), "0254abc")
	if err != nil {
		t.Fatalf("GetPayment failed: %v", err)
	}
	if payment.PaymentID != "0254abc" {
		t.Errorf("PaymentID = %q", payment.PaymentID)
	}
	if !payment.Finalized() {
		t.Error("Finalized() = false for reserved payment")
	}
	if payment.PaymentDetails.CardDetails.MaskedPan != "4925xxxxxxxx0004" {
		t.Errorf("MaskedPan = %q", payment.PaymentDetails.CardDetails.MaskedPan)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantKind   ErrorKind
		wantMsg  string
	}{
		{
			name:      "404 maps to not-found",
			status:    http.StatusNotFound,
			body:      `{"message":"Payment not found"}`,
			wantKind:  ErrKindNotFound,
			wantMsg: "Payment not found",
		},
		{
			name:      "400 maps to provider-rejected with field errors",
			status:    http.StatusBadRequest,
			body:      `{"errors":{"order.amount":["amount must match the item totals"]}}`,
			wantKind:  ErrKindProviderRejected,
			wantMsg: "order.amount: amount must match the item totals",
		},
		{
			name:     "503 maps to transport",
			status:   http.StatusServiceUnavailable,
			body:     `upstream unavailable`,
			wantKind: ErrKindTransport,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := client.GetPayment(context.Background(), "0254abc")
			if err == nil {
				t.Fatal("expected error")
			}
			var ce *Error
			if !errors.As(err, &ce) {
				t.Fatalf("error is not a checkout error: %v", err)
			}
			if ce.Kind != tt.wantKind {
				t.Errorf("Kind = %q, want %q", ce.Kind, tt.wantKind)
			}
			if ce.StatusCode != tt.status {
				t.Errorf("StatusCode = %d, want %d", ce.StatusCode, tt.status)
			}
			if tt.wantMsg != "" && ce.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", ce.Message, tt.wantMsg)
			}
		})
	}
}

func TestNetworkFailureMapsToTransport(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	serverURL := server.URL
	server.Close()

	client, err := NewClient(ClientConfig{SecretKey: "test-secret-key", BaseURL: serverURL})
	if err != nil {
		t.Fatalf("NewClient failed: %v", err)
	}

	_, err = client.GetPayment(context.Background(), "0254abc")
	if KindOf(err) != ErrKindTransport {
		t.Errorf("KindOf(err) = %q, want transport", KindOf(err))
	}
}

func TestChargePayment(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/payments/0254abc/charges" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"chargeId":"chg123"}`))
	})

	resp, err := client.ChargePayment(context.Background(), "0254abc", 12500, nil)
	if err != nil {
		t.Fatalf("ChargePayment failed: %v", err)
	}
	if resp.ChargeID != "chg123" {
		t.Errorf("ChargeID = %q", resp.ChargeID)
	}
}

func TestRefundCharge(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/charges/chg123/refunds" {
			t.Errorf("path = %s", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"refundId":"ref456"}`))
	})

	resp, err := client.RefundCharge(context.Background(), "chg123", 5000, nil)
	if err != nil {
		t.Fatalf("RefundCharge failed: %v", err)
	}
	if resp.RefundID != "ref456" {
		t.Errorf("RefundID = %q", resp.RefundID)
	}
}

func TestGetSubscriptionByExternalRef(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/subscriptions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if r.URL.Query().Get("externalReference") != "sub-1001" {
			t.Errorf("externalReference = %q", r.URL.Query().Get("externalReference"))
		}
		_, _ = w.Write([]byte(`{"subscriptionId":"sub123","externalReference":"sub-1001"}`))
	})

	sub, err := client.GetSubscriptionByExternalRef(context.Background(), "sub-1001")
	if err != nil {
		t.Fatalf("GetSubscriptionByExternalRef failed: %v", err)
	}
	if sub.SubscriptionID != "sub123" {
		t.Errorf("SubscriptionID = %q", sub.SubscriptionID)
	}
}

func TestPaymentFinalized(t *testing.T) {
	charged := int64(100)

	tests := []struct {
		name    string
		payment Payment
		want    bool
	}{
		{"empty summary", Payment{}, false},
		{"charged", Payment{Summary: PaymentSummary{ChargedAmount: &charged}}, true},
		{"subscription only", Payment{Subscription: &SubscriptionRef{ID: "sub1"}}, true},
		{"empty subscription id", Payment{Subscription: &SubscriptionRef{}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.payment.Finalized(); got != tt.want {
				t.Errorf("Finalized() = %v, want %v", got, tt.want)
			}
		})
	}
}
