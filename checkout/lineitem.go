package checkout

import (
	"math"
	"strings"
)

// Line source kinds accepted by the mapper.
const (
	KindProduct  = "product"
	KindCoupon   = "coupon"
	KindGiftCard = "gift_card"
	KindShipping = "shipping"
	KindFee      = "fee"
)

// LineSource is the minimal surface the mapper needs from any cart or order
// line. Concrete sources (ProductLine, CouponLine, ...) adapt the host
// system's heterogeneous line types to this shape.
type LineSource interface {
	Kind() string
	Amount() int64
	Units() int
	Tax() int64
}

// ProductLine is a cart or order product row. Monetary fields are minor
// units; Subtotal is the pre-discount line total and Total the line total
// after cart discounts, both excluding tax.
type ProductLine struct {
	ProductID   string `json:"productId"`
	Name        string `json:"name"`
	SKU         string `json:"sku,omitempty"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unitPrice"`
	Subtotal    int64  `json:"subtotal"`
	Total       int64  `json:"total"`
	SubtotalTax int64  `json:"subtotalTax"`
	TotalTax    int64  `json:"totalTax"`
	// RatePercent is the explicit tax rate in percent when the host
	// provides one; negative means unknown.
	RatePercent float64 `json:"ratePercent,omitempty"`
	Taxable     bool    `json:"taxable"`
	ProductURL  string  `json:"productUrl,omitempty"`
	ImageURL    string  `json:"imageUrl,omitempty"`
}

func (p ProductLine) Kind() string  { return KindProduct }
func (p ProductLine) Amount() int64 { return p.Total }
func (p ProductLine) Units() int    { return p.Quantity }
func (p ProductLine) Tax() int64    { return p.TotalTax }

// CouponLine is an applied cart coupon. Amounts are the positive discount
// totals as reported by the host; the mapper negates them.
type CouponLine struct {
	Code              string `json:"code"`
	DiscountAmount    int64  `json:"discountAmount"`
	DiscountTaxAmount int64  `json:"discountTaxAmount"`
}

func (c CouponLine) Kind() string  { return KindCoupon }
func (c CouponLine) Amount() int64 { return -c.DiscountAmount }
func (c CouponLine) Units() int    { return 1 }
func (c CouponLine) Tax() int64    { return -c.DiscountTaxAmount }

// GiftCardIntegration identifies which gift-card plugin supplied the line.
type GiftCardIntegration string

const (
	GiftCardWC   GiftCardIntegration = "wc_gc"
	GiftCardYITH GiftCardIntegration = "yith"
	GiftCardPW   GiftCardIntegration = "pw"
)

// GiftCardLine is an applied gift card from any of the supported gift-card
// integrations. Value is the positive redeemed amount.
type GiftCardLine struct {
	Integration GiftCardIntegration `json:"integration"`
	Code        string              `json:"code"`
	Value       int64               `json:"value"`
}

func (g GiftCardLine) Kind() string  { return KindGiftCard }
func (g GiftCardLine) Amount() int64 { return -g.Value }
func (g GiftCardLine) Units() int    { return 1 }
func (g GiftCardLine) Tax() int64    { return 0 }

// ShippingLine is the chosen shipping rate. RatesPercent carries the
// explicit tax rates applied to the rate, when the host exposes them.
type ShippingLine struct {
	ID           string    `json:"id"`
	Label        string    `json:"label"`
	Cost         int64     `json:"cost"`
	TaxAmount    int64     `json:"taxAmount"`
	RatesPercent []float64 `json:"ratesPercent,omitempty"`
	// CartShippingTax is the cart-level shipping tax fallback used when the
	// rate itself carries no tax bucket.
	CartShippingTax int64 `json:"cartShippingTax,omitempty"`
}

func (s ShippingLine) Kind() string  { return KindShipping }
func (s ShippingLine) Amount() int64 { return s.Cost }
func (s ShippingLine) Units() int    { return 1 }
func (s ShippingLine) Tax() int64    { return s.TaxAmount }

// FeeLine is an extra order fee, such as an invoice fee.
type FeeLine struct {
	Name        string  `json:"name"`
	Total       int64   `json:"total"`
	TotalTax    int64   `json:"totalTax"`
	RatePercent float64 `json:"ratePercent,omitempty"`
}

func (f FeeLine) Kind() string  { return KindFee }
func (f FeeLine) Amount() int64 { return f.Total }
func (f FeeLine) Units() int    { return 1 }
func (f FeeLine) Tax() int64    { return f.TotalTax }

// Cart is the full set of line sources for one checkout, plus the grand
// total the mapped items must reconcile against.
type Cart struct {
	Lines     []ProductLine  `json:"lines"`
	Coupons   []CouponLine   `json:"coupons,omitempty"`
	GiftCards []GiftCardLine `json:"giftCards,omitempty"`
	Shipping  *ShippingLine  `json:"shipping,omitempty"`
	Fees      []FeeLine      `json:"fees,omitempty"`
	// GrandTotal is the cart total including tax, in minor units.
	GrandTotal int64  `json:"grandTotal"`
	Currency   string `json:"currency"`
	Hash       string `json:"hash,omitempty"`
	// ContainsSubscription marks carts that set up a recurring agreement.
	ContainsSubscription bool `json:"containsSubscription,omitempty"`
}

// OverrideFunc post-processes one computed field of a mapped line item. The
// source the item was mapped from is passed for context.
type OverrideFunc func(item *LineItem, src LineSource)

// Overrides is a typed field-override table keyed by LineItem field name
// ("name", "sku", "quantity", "unit_price", "subtotal_unit_price",
// "tax_rate", "total_amount", "subtotal_amount", "total_discount_amount",
// "total_tax_amount", "subtotal_tax_amount", "type", "product_url",
// "image_url", "compatibility"). The default mapping works with an empty
// table.
type Overrides map[string]OverrideFunc

// overrideOrder keeps override application deterministic.
var overrideOrder = []string{
	"name", "sku", "quantity", "unit_price", "subtotal_unit_price",
	"tax_rate", "total_amount", "subtotal_amount", "total_discount_amount",
	"total_tax_amount", "subtotal_tax_amount", "type", "product_url",
	"image_url", "compatibility",
}

// Mapper converts cart and order line sources into provider-ready line
// items. The zero value is usable.
type Mapper struct {
	Overrides Overrides
}

// NewMapper creates a mapper with the given field overrides.
func NewMapper(overrides Overrides) *Mapper {
	return &Mapper{Overrides: overrides}
}

func (m *Mapper) apply(item *LineItem, src LineSource) LineItem {
	for _, field := range overrideOrder {
		if fn, ok := m.Overrides[field]; ok {
			fn(item, src)
		}
	}
	return *item
}

// MapProductLine maps a product row. A missing product (empty ProductID)
// degrades to zeroed name, sku and urls; mapping never fails.
func (m *Mapper) MapProductLine(line ProductLine) LineItem {
	qty := line.Quantity
	if qty < 1 {
		qty = 1
	}
	item := LineItem{
		Name:                CleanName(line.Name),
		SKU:                 line.SKU,
		Quantity:            line.Quantity,
		UnitPrice:           line.UnitPrice,
		SubtotalUnitPrice:   line.Subtotal / int64(qty),
		TaxRate:             productTaxRate(line),
		TotalAmount:         line.Total,
		SubtotalAmount:      line.Subtotal,
		TotalDiscountAmount: line.Subtotal - line.Total,
		TotalTaxAmount:      line.TotalTax,
		SubtotalTaxAmount:   line.SubtotalTax,
		Type:                ItemTypeProduct,
		ProductURL:          line.ProductURL,
		ImageURL:            line.ImageURL,
	}
	if line.ProductID == "" {
		item.Name = ""
		item.SKU = ""
		item.ProductURL = ""
		item.ImageURL = ""
	}
	if item.SKU == "" && line.ProductID != "" {
		item.SKU = line.ProductID
	}
	return m.apply(&item, line)
}

// MapCouponLine maps an applied coupon to a discount line. The resulting
// amounts are never positive.
func (m *Mapper) MapCouponLine(coupon CouponLine) LineItem {
	amount := -abs64(coupon.DiscountAmount)
	tax := -abs64(coupon.DiscountTaxAmount)
	item := LineItem{
		Name:                coupon.Code,
		SKU:                 truncate(coupon.Code, 64),
		Quantity:            1,
		UnitPrice:           amount,
		SubtotalUnitPrice:   amount,
		TaxRate:             0,
		TotalAmount:         amount,
		SubtotalAmount:      amount,
		TotalDiscountAmount: 0,
		TotalTaxAmount:      tax,
		SubtotalTaxAmount:   tax,
		Type:                ItemTypeDiscount,
	}
	return m.apply(&item, coupon)
}

// MapGiftCardLine normalizes the supported gift-card integrations into one
// shape: quantity one, zero tax, negative amount.
func (m *Mapper) MapGiftCardLine(card GiftCardLine) LineItem {
	amount := -abs64(card.Value)
	item := LineItem{
		Name:              "Gift card " + card.Code,
		SKU:               "gift_card",
		Quantity:          1,
		UnitPrice:         amount,
		SubtotalUnitPrice: amount,
		TaxRate:           0,
		TotalAmount:       amount,
		SubtotalAmount:    amount,
		TotalTaxAmount:    0,
		SubtotalTaxAmount: 0,
		Type:              ItemTypeGiftCard,
	}
	return m.apply(&item, card)
}

// MapShippingLine maps the chosen shipping rate. The tax rate is taken from
// the rate's own tax bucket when present and otherwise derived from the
// cart-level shipping tax; a zero cost always yields a zero rate.
func (m *Mapper) MapShippingLine(rate ShippingLine) LineItem {
	tax := rate.TaxAmount
	if tax == 0 {
		tax = rate.CartShippingTax
	}
	item := LineItem{
		Name:              rate.Label,
		SKU:               rate.ID,
		Quantity:          1,
		UnitPrice:         rate.Cost,
		SubtotalUnitPrice: rate.Cost,
		TaxRate:           shippingTaxRate(rate),
		TotalAmount:       rate.Cost,
		SubtotalAmount:    rate.Cost,
		TotalTaxAmount:    tax,
		SubtotalTaxAmount: tax,
		Type:              ItemTypeShipping,
	}
	return m.apply(&item, rate)
}

// MapFeeLine maps an extra order fee.
func (m *Mapper) MapFeeLine(fee FeeLine) LineItem {
	item := LineItem{
		Name:              fee.Name,
		SKU:               skuFromName(fee.Name),
		Quantity:          1,
		UnitPrice:         fee.Total,
		SubtotalUnitPrice: fee.Total,
		TaxRate:           derivedTaxRate(fee.RatePercent, fee.TotalTax, fee.Total),
		TotalAmount:       fee.Total,
		SubtotalAmount:    fee.Total,
		TotalTaxAmount:    fee.TotalTax,
		SubtotalTaxAmount: fee.TotalTax,
		Type:              ItemTypeFee,
	}
	return m.apply(&item, fee)
}

// MapCart maps every line source of a cart into one provider-ready item
// list: products, coupons, gift cards, shipping, then fees.
func (m *Mapper) MapCart(cart Cart) []LineItem {
	items := make([]LineItem, 0, len(cart.Lines)+len(cart.Coupons)+len(cart.GiftCards)+len(cart.Fees)+1)
	for _, line := range cart.Lines {
		items = append(items, m.MapProductLine(line))
	}
	for _, coupon := range cart.Coupons {
		items = append(items, m.MapCouponLine(coupon))
	}
	for _, card := range cart.GiftCards {
		items = append(items, m.MapGiftCardLine(card))
	}
	if cart.Shipping != nil {
		items = append(items, m.MapShippingLine(*cart.Shipping))
	}
	for _, fee := range cart.Fees {
		items = append(items, m.MapFeeLine(fee))
	}
	return items
}

// ItemsTotal sums the gross totals of the mapped items, in minor units.
func ItemsTotal(items []LineItem) int64 {
	var total int64
	for _, item := range items {
		total += item.TotalAmount + item.TotalTaxAmount
	}
	return total
}

// Tax rates are basis points throughout: an explicit percentage rate maps
// as round(rate*100), a derived rate as round(tax*10000/amount).

func productTaxRate(line ProductLine) int {
	if !line.Taxable || line.TotalTax <= 0 {
		return 0
	}
	return derivedTaxRate(line.RatePercent, line.TotalTax, line.Total)
}

func shippingTaxRate(rate ShippingLine) int {
	if len(rate.RatesPercent) > 0 {
		var percent float64
		for _, r := range rate.RatesPercent {
			percent += r
		}
		return int(math.Round(percent * 100))
	}
	if rate.Cost == 0 {
		return 0
	}
	tax := rate.TaxAmount
	if tax == 0 {
		tax = rate.CartShippingTax
	}
	return int(math.Round(float64(tax) * 10000 / float64(rate.Cost)))
}

func derivedTaxRate(ratePercent float64, tax, amount int64) int {
	if ratePercent > 0 {
		return int(math.Round(ratePercent * 100))
	}
	if amount == 0 || tax == 0 {
		return 0
	}
	return int(math.Round(float64(tax) * 10000 / float64(amount)))
}

func abs64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}

func truncate(s string, max int) string {
	if len(s) > max {
		return s[:max]
	}
	return s
}

func skuFromName(name string) string {
	sku := strings.ToLower(strings.TrimSpace(name))
	sku = strings.ReplaceAll(sku, " ", "_")
	return truncate(sku, 64)
}
