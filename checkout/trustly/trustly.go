package trustly

import (
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/config"
)

// GatewayName is the registry key for the Trustly variant.
const GatewayName = "trustly"

// NewGateway creates the Trustly payment variant. Trustly serves the Nordic
// currencies plus EUR and always runs through the hosted payment page.
func NewGateway() checkout.Gateway {
	return &checkout.MethodGateway{
		GatewayID:     "nets_easy_trustly",
		GatewayTitle:  "Nexi Trustly",
		GatewayIcon:   "trustly.svg",
		Methods:       []string{"Trustly"},
		Currencies:    []string{"SEK", "NOK", "DKK", "EUR"},
		ForceRedirect: true,
		Enabled:       func(s *config.Settings) bool { return s.EnableTrustly },
	}
}
