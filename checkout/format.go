package checkout

import (
	"strings"
	"unicode"
)

// localeMap maps host locales to the language codes the hosted payment page
// accepts. Unknown locales fall back to en-GB.
var localeMap = map[string]string{
	"sv_SE":        "sv-SE",
	"nb_NO":        "nb-NO",
	"nn_NO":        "nb-NO",
	"da_DK":        "da-DK",
	"de_DE":        "de-DE",
	"de_CH":        "de-DE",
	"de_AT":        "de-DE",
	"de_DE_formal": "de-DE",
	"pl_PL":        "pl-PL",
	"fi":           "fi-FI",
	"fr_FR":        "fr-FR",
	"fr_BE":        "fr-FR",
	"nl_NL":        "nl-NL",
	"nl_BE":        "nl-NL",
	"es_ES":        "es-ES",
}

// Locale translates a host locale to a hosted-payment-page language code.
func Locale(hostLocale string) string {
	if lang, ok := localeMap[hostLocale]; ok {
		return lang
	}
	return "en-GB"
}

// CleanName strips the characters the provider rejects in item names and
// caps the result at 128 characters.
func CleanName(name string) string {
	replacer := strings.NewReplacer("<", "", ">", "", `\`, "", `"`, "", "&", "")
	name = replacer.Replace(name)
	return truncate(name, 128)
}

// PaymentMethodTitle derives the buyer-facing payment title from the
// gateway title and the provider's paymentMethod/paymentType pair, e.g.
// ("Nexi Checkout", "EasyInvoice", "INVOICE") -> "Nexi Checkout / Easy Invoice".
func PaymentMethodTitle(gatewayTitle, method, paymentType string) string {
	method = splitCamelCase(method)

	// Drop the type when the method already ends with the same word.
	parts := strings.Fields(method)
	if len(parts) > 0 && strings.EqualFold(parts[len(parts)-1], paymentType) {
		paymentType = ""
	}
	paymentType = capitalize(strings.ToLower(paymentType))

	title := gatewayTitle + " / " + method
	if paymentType != "" {
		title += " " + paymentType
	}
	return strings.TrimSpace(title)
}

func splitCamelCase(s string) string {
	var b strings.Builder
	for i, r := range s {
		if i > 0 && unicode.IsUpper(r) {
			b.WriteByte(' ')
		}
		b.WriteRune(r)
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
