package router

import (
	"github.com/go-chi/chi/v5"
	"github.com/webshopd/nexipay/checkout"
	v1 "github.com/webshopd/nexipay/router/v1"

	// Import for side-effect registration
	_ "github.com/webshopd/nexipay/checkout/card"
	_ "github.com/webshopd/nexipay/checkout/invoice"
	_ "github.com/webshopd/nexipay/checkout/ratepay"
	_ "github.com/webshopd/nexipay/checkout/sofort"
	_ "github.com/webshopd/nexipay/checkout/swish"
	_ "github.com/webshopd/nexipay/checkout/trustly"
)

// Routes mounts the versioned API under /v1.
func Routes(r chi.Router, service *checkout.Service, gateways map[string]checkout.Gateway, sessions checkout.SessionStore) {
	r.Route("/v1", func(r chi.Router) {
		v1.Routes(r, service, gateways, sessions)
	})
}
