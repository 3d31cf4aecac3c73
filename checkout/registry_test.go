package checkout

import "testing"

type stubGateway struct {
	MethodGateway
}

func TestGatewayRegistry(t *testing.T) {
	registry := NewGatewayRegistry()

	registry.Register("stub", func() Gateway {
		return &stubGateway{MethodGateway{GatewayID: "stub_gateway"}}
	})

	factory, err := registry.Get("stub")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if factory == nil {
		t.Fatal("factory is nil")
	}

	gateway, err := registry.CreateGateway("stub")
	if err != nil {
		t.Fatalf("CreateGateway failed: %v", err)
	}
	if gateway.ID() != "stub_gateway" {
		t.Errorf("ID() = %q", gateway.ID())
	}

	if _, err := registry.Get("missing"); err == nil {
		t.Error("expected error for unregistered gateway")
	}
	if _, err := registry.CreateGateway("missing"); err == nil {
		t.Error("expected error for unregistered gateway")
	}

	names := registry.GetGatewayNames()
	if len(names) != 1 || names[0] != "stub" {
		t.Errorf("GetGatewayNames() = %v", names)
	}
}

func TestGatewayRegistryOverwrite(t *testing.T) {
	registry := NewGatewayRegistry()

	registry.Register("stub", func() Gateway {
		return &stubGateway{MethodGateway{GatewayID: "first"}}
	})
	registry.Register("stub", func() Gateway {
		return &stubGateway{MethodGateway{GatewayID: "second"}}
	})

	gateway, err := registry.CreateGateway("stub")
	if err != nil {
		t.Fatalf("CreateGateway failed: %v", err)
	}
	if gateway.ID() != "second" {
		t.Errorf("ID() = %q, want second", gateway.ID())
	}
}
