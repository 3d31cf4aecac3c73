package sofort

import (
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/config"
)

// GatewayName is the registry key for the Sofort variant.
const GatewayName = "sofort"

// NewGateway creates the Sofort payment variant. Sofort is EUR only and
// always runs through the hosted payment page.
func NewGateway() checkout.Gateway {
	return &checkout.MethodGateway{
		GatewayID:     "nets_easy_sofort",
		GatewayTitle:  "Nexi Sofort",
		GatewayIcon:   "sofort.svg",
		Methods:       []string{"Sofort"},
		Currencies:    []string{"EUR"},
		ForceRedirect: true,
		Enabled:       func(s *config.Settings) bool { return s.EnableSofort },
	}
}
