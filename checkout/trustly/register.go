package trustly

import "github.com/webshopd/nexipay/checkout"

// Register the Trustly variant with the gateway registry
func init() {
	checkout.Register(GatewayName, NewGateway)
}
