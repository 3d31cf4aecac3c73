package card

import "github.com/webshopd/nexipay/checkout"

// Register the card variant with the gateway registry
func init() {
	checkout.Register(GatewayName, NewGateway)
}
