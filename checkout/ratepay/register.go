package ratepay

import "github.com/webshopd/nexipay/checkout"

// Register the RatePay variant with the gateway registry
func init() {
	checkout.Register(GatewayName, NewGateway)
}
