package swish

import (
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/config"
)

// GatewayName is the registry key for the Swish variant.
const GatewayName = "swish"

// NewGateway creates the Swish payment variant. Swish is SEK only and
// always runs through the hosted payment page.
func NewGateway() checkout.Gateway {
	return &checkout.MethodGateway{
		GatewayID:     "nets_easy_swish",
		GatewayTitle:  "Nexi Swish",
		GatewayIcon:   "swish.svg",
		Methods:       []string{"Swish"},
		Currencies:    []string{"SEK"},
		ForceRedirect: true,
		Enabled:       func(s *config.Settings) bool { return s.EnableSwish },
	}
}
