package card

import (
	"testing"

	"github.com/webshopd/nexipay/checkout"
)

func TestNewGateway(t *testing.T) {
	gateway, ok := NewGateway().(*checkout.MethodGateway)
	if !ok {
		t.Fatal("NewGateway() did not return a *checkout.MethodGateway")
	}

	if gateway.ID() != "nets_easy_card" {
		t.Errorf("ID() = %q", gateway.ID())
	}
	if len(gateway.Methods) != 1 {
		t.Errorf("Methods = %v", gateway.Methods)
	}
	if gateway.ForceRedirect {
		t.Error("card follows the configured checkout flow")
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
