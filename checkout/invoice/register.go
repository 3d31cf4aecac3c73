package invoice

import "github.com/webshopd/nexipay/checkout"

// Register the invoice variant with the gateway registry
func init() {
	checkout.Register(GatewayName, NewGateway)
}
