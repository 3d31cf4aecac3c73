// Package nexipay integrates a storefront with Nexi Checkout (formerly
// DIBS Easy). It exposes the provider as a set of storefront payment
// gateway variants (card, Swish, Sofort, Trustly, RatePay, invoice) that
// all drive one shared checkout service.
//
// # Overview
//
// The service covers the full life of a payment:
//
//   - session bootstrap for the embedded checkout widget, reusing one
//     provider payment per checkout session and updating it in place when
//     the cart changes
//   - payment processing through the hosted payment page or the embedded
//     window, with per-variant currency, country and method restrictions
//   - reconciliation of the provider's payment snapshot into the local
//     order, driven by the confirmation page and by provider webhooks;
//     every reconciliation write is an idempotent upsert
//   - refunds against the settled charge of an order
//
// # Quick Start
//
//	package main
//
//	import (
//	    "github.com/webshopd/nexipay/checkout"
//	    _ "github.com/webshopd/nexipay/checkout/card" // Import to register variant
//	    "github.com/webshopd/nexipay/infra/config"
//	)
//
//	func main() {
//	    settings := config.LoadSettings()
//	    client, err := checkout.NewClient(checkout.ClientConfig{
//	        SecretKey: settings.SecretKey,
//	        Live:      settings.Live,
//	    })
//	    if err != nil {
//	        panic(err)
//	    }
//	    service := checkout.NewService(client, orderStore, sessionStore, settings)
//
//	    gateway, _ := checkout.CreateGateway("card")
//	    _ = gateway.Initialize(service)
//	}
//
// Monetary amounts are integers in the currency's minor unit and tax rates
// are basis points, matching the provider's wire format.
package nexipay
