package swish

import "github.com/webshopd/nexipay/checkout"

// Register the Swish variant with the gateway registry
func init() {
	checkout.Register(GatewayName, NewGateway)
}
