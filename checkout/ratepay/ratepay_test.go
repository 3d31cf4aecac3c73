package ratepay

import (
	"testing"

	"github.com/webshopd/nexipay/checkout"
)

func TestNewGateway(t *testing.T) {
	gateway, ok := NewGateway().(*checkout.MethodGateway)
	if !ok {
		t.Fatal("NewGateway() did not return a *checkout.MethodGateway")
	}

	if gateway.ID() != "nets_easy_ratepay" {
		t.Errorf("ID() = %q", gateway.ID())
	}
	if len(gateway.Methods) != 3 {
		t.Errorf("Methods = %v", gateway.Methods)
	}
	if !gateway.ForceRedirect {
		t.Error("variant must force the hosted payment page")
	}
	if len(gateway.Currencies) != 1 {
		t.Errorf("Currencies = %v", gateway.Currencies)
	}
	if len(gateway.Countries) != 4 {
		t.Errorf("Countries = %v", gateway.Countries)
	}
	if gateway.Enabled == nil {
		t.Error("Enabled flag reader not set")
	}
}

func TestRegistered(t *testing.T) {
	if _, err := checkout.Get(GatewayName); err != nil {
		t.Errorf("variant not registered: %v", err)
	}
}
