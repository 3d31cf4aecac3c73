package checkout

import (
	"strings"
	"testing"
)

func TestLocale(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"sv_SE", "sv-SE"},
		{"nn_NO", "nb-NO"},
		{"de_DE_formal", "de-DE"},
		{"fi", "fi-FI"},
		{"en_US", "en-GB"},
		{"", "en-GB"},
	}

	for _, tt := range tests {
		if got := Locale(tt.host); got != tt.want {
			t.Errorf("Locale(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}

func TestCleanName(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "Blue Mug", "Blue Mug"},
		{"markup stripped", `<b>Mug</b> & "saucer"`, "bMug/b  saucer"},
		{"backslash stripped", `a\b`, "ab"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanName(tt.in); got != tt.want {
				t.Errorf("CleanName(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}

	long := strings.Repeat("x", 200)
	if got := CleanName(long); len(got) != 128 {
		t.Errorf("len(CleanName(long)) = %d, want 128", len(got))
	}
}

func TestPaymentMethodTitle(t *testing.T) {
	tests := []struct {
		name        string
		method      string
		paymentType string
		want        string
	}{
		{"card drops duplicate type", "Card", "CARD", "Nexi Checkout / Card"},
		{"invoice splits camel case", "EasyInvoice", "INVOICE", "Nexi Checkout / Easy Invoice"},
		{"distinct type is appended", "Swish", "A2A", "Nexi Checkout / Swish A2a"},
		{"ratepay keeps variant", "RatePayInvoice", "INVOICE", "Nexi Checkout / Rate Pay Invoice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PaymentMethodTitle("Nexi Checkout", tt.method, tt.paymentType)
			if got != tt.want {
				t.Errorf("PaymentMethodTitle() = %q, want %q", got, tt.want)
			}
		})
	}
}
