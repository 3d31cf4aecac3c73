package config

import (
	"time"
)

// Settings is the read-only gateway configuration. It mirrors the merchant
// settings screen of the host platform: provider credentials, checkout
// behavior and per-variant enablement.
type Settings struct {
	SecretKey   string
	CheckoutKey string
	// Live selects the production provider endpoint; false means test.
	Live bool
	// CheckoutFlow is redirect, overlay or embedded.
	CheckoutFlow string
	// AutoCharge captures the payment immediately instead of reserving it.
	AutoCharge bool

	TermsURL          string
	ReturnURL         string
	CancelURL         string
	Locale            string
	ProviderTimeout   time.Duration
	InvoiceFeeName    string
	InvoiceFeeAmount  int64
	InvoiceFeeTax     int64

	EnableCard    bool
	EnableSwish   bool
	EnableSofort  bool
	EnableTrustly bool
	EnableRatepay bool
	EnableInvoice bool
}

// LoadSettings reads the gateway settings from the environment.
func LoadSettings() *Settings {
	return &Settings{
		SecretKey:        GetEnv("NEXI_SECRET_KEY", ""),
		CheckoutKey:      GetEnv("NEXI_CHECKOUT_KEY", ""),
		Live:             GetBoolEnv("NEXI_LIVE", false),
		CheckoutFlow:     GetEnv("NEXI_CHECKOUT_FLOW", "embedded"),
		AutoCharge:       GetBoolEnv("NEXI_AUTO_CHARGE", false),
		TermsURL:         GetEnv("NEXI_TERMS_URL", ""),
		ReturnURL:        GetEnv("NEXI_RETURN_URL", ""),
		CancelURL:        GetEnv("NEXI_CANCEL_URL", ""),
		Locale:           GetEnv("NEXI_LOCALE", "en_GB"),
		ProviderTimeout:  time.Duration(GetIntEnv("NEXI_TIMEOUT_SECONDS", 30)) * time.Second,
		InvoiceFeeName:   GetEnv("NEXI_INVOICE_FEE_NAME", ""),
		InvoiceFeeAmount: int64(GetIntEnv("NEXI_INVOICE_FEE_AMOUNT", 0)),
		InvoiceFeeTax:    int64(GetIntEnv("NEXI_INVOICE_FEE_TAX", 0)),
		EnableCard:       GetBoolEnv("NEXI_ENABLE_CARD", true),
		EnableSwish:      GetBoolEnv("NEXI_ENABLE_SWISH", false),
		EnableSofort:     GetBoolEnv("NEXI_ENABLE_SOFORT", false),
		EnableTrustly:    GetBoolEnv("NEXI_ENABLE_TRUSTLY", false),
		EnableRatepay:    GetBoolEnv("NEXI_ENABLE_RATEPAY", false),
		EnableInvoice:    GetBoolEnv("NEXI_ENABLE_INVOICE", false),
	}
}
