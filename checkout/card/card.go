package card

import (
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/config"
)

// GatewayName is the registry key for the card variant.
const GatewayName = "card"

// NewGateway creates the card payment variant. Cards run through the
// configured checkout flow and carry no currency or country restriction.
func NewGateway() checkout.Gateway {
	return &checkout.MethodGateway{
		GatewayID:    "nets_easy_card",
		GatewayTitle: "Nexi Card",
		GatewayIcon:  "card.svg",
		Methods:      []string{"Card"},
		Enabled:      func(s *config.Settings) bool { return s.EnableCard },
	}
}
