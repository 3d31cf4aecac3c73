package ratepay

import (
	"github.com/webshopd/nexipay/checkout"
	"github.com/webshopd/nexipay/infra/config"
)

// GatewayName is the registry key for the RatePay variant.
const GatewayName = "ratepay"

// NewGateway creates the RatePay payment variant. RatePay is EUR only,
// limited to the DACH countries plus the Netherlands, and always runs
// through the hosted payment page.
func NewGateway() checkout.Gateway {
	return &checkout.MethodGateway{
		GatewayID:     "nets_easy_ratepay",
		GatewayTitle:  "Nexi RatePay",
		GatewayIcon:   "ratepay.svg",
		Methods:       []string{"RatePayInvoice", "RatePaySepa", "RatePayInstallment"},
		Currencies:    []string{"EUR"},
		Countries:     []string{"DE", "AT", "CH", "NL"},
		ForceRedirect: true,
		Enabled:       func(s *config.Settings) bool { return s.EnableRatepay },
	}
}
