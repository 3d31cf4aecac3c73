package invoice

import (
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/config"
)

// GatewayName is the registry key for the invoice variant.
const GatewayName = "invoice"

// NewGateway creates the invoice payment variant. Invoice purchases always
// run through the hosted payment page; the reconciliation engine adds the
// configured invoice fee when the buyer pays this way.
func NewGateway() checkout.Gateway {
	return &checkout.MethodGateway{
		GatewayID:     "nets_easy_invoice",
		GatewayTitle:  "Nexi Invoice",
		GatewayIcon:   "invoice.svg",
		Methods:       []string{"EasyInvoice"},
		ForceRedirect: true,
		Enabled:       func(s *config.Settings) bool { return s.EnableInvoice },
	}
}
