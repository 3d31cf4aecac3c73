package sofort

import "github.com/webshopd/nexipay/checkout"

// Register the Sofort variant with the gateway registry
func init() {
	checkout.Register(GatewayName, NewGateway)
}
