package checkout

import (
	"context"
	"net/http"
	"testing"

	"github.com/webshopd/nexipay/infra/config"
)

func TestMethodGatewayAvailable(t *testing.T) {
	service, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})
	enabled := true

	gateway := &MethodGateway{
		GatewayID:  "nets_easy_test",
		Currencies: []string{"SEK", "NOK"},
		Countries:  []string{"SE", "NO"},
		Enabled:    func(s *config.Settings) bool { return enabled },
	}

	// An uninitialized gateway serves nothing.
	if gateway.Available("SEK", "SE") {
		t.Error("Available() = true before Initialize")
	}

	if err := gateway.Initialize(service); err != nil {
		t.Fatalf("Initialize failed: %v", err)
	}

	tests := []struct {
		name     string
		currency string
		country  string
		want     bool
	}{
		{"matching currency and country", "SEK", "SE", true},
		{"wrong currency", "EUR", "SE", false},
		{"wrong country", "SEK", "DE", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := gateway.Available(tt.currency, tt.country); got != tt.want {
				t.Errorf("Available(%q, %q) = %v, want %v", tt.currency, tt.country, got, tt.want)
			}
		})
	}

	enabled = false
	if gateway.Available("SEK", "SE") {
		t.Error("Available() = true for disabled variant")
	}
}

func TestMethodGatewayUnrestricted(t *testing.T) {
	service, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	gateway := &MethodGateway{GatewayID: "nets_easy_test"}
	_ = gateway.Initialize(service)

	if !gateway.Available("JPY", "JP") {
		t.Error("unrestricted variant should serve any currency and country")
	}
}

func TestMethodGatewayFlow(t *testing.T) {
	service, _, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {})

	embedded := &MethodGateway{GatewayID: "a"}
	_ = embedded.Initialize(service)
	if embedded.Flow() != FlowEmbedded {
		t.Errorf("Flow() = %s, want embedded", embedded.Flow())
	}

	forced := &MethodGateway{GatewayID: "b", ForceRedirect: true}
	_ = forced.Initialize(service)
	if forced.Flow() != FlowRedirect {
		t.Errorf("Flow() = %s, want redirect", forced.Flow())
	}
}

func TestMethodGatewayMethodsConfiguration(t *testing.T) {
	gateway := &MethodGateway{Methods: []string{"RatePayInvoice", "RatePaySepa"}}

	configs := gateway.MethodsConfiguration()
	if len(configs) != 2 {
		t.Fatalf("len(configs) = %d", len(configs))
	}
	for _, cfg := range configs {
		if !cfg.Enabled {
			t.Errorf("method %s not enabled", cfg.Name)
		}
	}
}

func TestMethodGatewayProcessPaymentDelegates(t *testing.T) {
	service, orders, _ := newTestService(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"paymentId":"pay1","hostedPaymentPageUrl":"https://pay.example/hpp?id=pay1"}`))
	})
	_ = orders.SaveOrder(&Order{ID: "1001", Number: "1001"})

	gateway := &MethodGateway{
		GatewayID:     "nets_easy_swish",
		GatewayTitle:  "Nexi Swish",
		Methods:       []string{"Swish"},
		ForceRedirect: true,
	}
	_ = gateway.Initialize(service)

	result, err := gateway.ProcessPayment(context.Background(), PaymentRequest{OrderID: "1001", Cart: testCart(), Locale: "sv_SE"})
	if err != nil {
		t.Fatalf("ProcessPayment failed: %v", err)
	}
	if result.Result != "success" {
		t.Errorf("Result = %q", result.Result)
	}

	order, _ := orders.GetOrder("1001")
	if order.PaymentMethod != "nets_easy_swish" {
		t.Errorf("PaymentMethod = %q", order.PaymentMethod)
	}
}
