package checkout

import (
	"fmt"
	"sync"
)

// GatewayFactory creates a gateway variant instance.
type GatewayFactory func() Gateway

// GatewayRegistry manages all checkout gateway variants
type GatewayRegistry struct {
	gateways map[string]GatewayFactory
	mu       sync.RWMutex
}

// NewGatewayRegistry creates a new gateway registry
func NewGatewayRegistry() *GatewayRegistry {
	return &GatewayRegistry{
		gateways: make(map[string]GatewayFactory),
	}
}

// Register adds a gateway factory to the registry
func (r *GatewayRegistry) Register(name string, factory GatewayFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.gateways[name] = factory
}

// Get retrieves a gateway factory by name
func (r *GatewayRegistry) Get(name string) (GatewayFactory, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	factory, exists := r.gateways[name]
	if !exists {
		return nil, fmt.Errorf("checkout gateway '%s' is not registered", name)
	}

	return factory, nil
}

// CreateGateway creates a new instance of a gateway variant
func (r *GatewayRegistry) CreateGateway(name string) (Gateway, error) {
	factory, err := r.Get(name)
	if err != nil {
		return nil, err
	}

	return factory(), nil
}

// GetGatewayNames returns a list of all registered gateway names
func (r *GatewayRegistry) GetGatewayNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.gateways))
	for name := range r.gateways {
		names = append(names, name)
	}

	return names
}

// DefaultRegistry is the global default gateway registry
var DefaultRegistry = NewGatewayRegistry()

// Register registers a gateway with the default registry
func Register(name string, factory GatewayFactory) {
	DefaultRegistry.Register(name, factory)
}

// Get retrieves a gateway factory from the default registry
func Get(name string) (GatewayFactory, error) {
	return DefaultRegistry.Get(name)
}

// CreateGateway creates a gateway instance from the default registry
func CreateGateway(name string) (Gateway, error) {
	return DefaultRegistry.CreateGateway(name)
}
