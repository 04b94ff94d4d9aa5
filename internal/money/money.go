// Package money implements invoice arithmetic on exact decimals.
//
// Values are kept at full precision through every step and are rounded only
// when formatted for display.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// DisplayPlaces is the number of fractional digits shown for amounts.
const DisplayPlaces = 2

// LineAmounts are the derived values of one invoice line.
type LineAmounts struct {
	Subtotal       decimal.Decimal `json:"subtotal"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	TaxableAmount  decimal.Decimal `json:"taxable_amount"`
	TaxAmount      decimal.Decimal `json:"tax_amount"`
	Total          decimal.Decimal `json:"total"`
}

// Totals are the document level sums of line amounts.
type Totals struct {
	Subtotal      decimal.Decimal `json:"subtotal"`
	TotalDiscount decimal.Decimal `json:"total_discount"`
	TotalTax      decimal.Decimal `json:"total_tax"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

// Line computes subtotal, discount, taxable base, tax and total in that order.
// Inputs are expected to be validated: non-negative, percents within 0..100.
func Line(quantity, unitPrice, discountPercent, taxPercent decimal.Decimal) LineAmounts {
	subtotal := quantity.Mul(unitPrice)
	discount := subtotal.Mul(percent(discountPercent))
	taxable := subtotal.Sub(discount)
	tax := taxable.Mul(percent(taxPercent))

	return LineAmounts{
		Subtotal:       subtotal,
		DiscountAmount: discount,
		TaxableAmount:  taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// Sum adds line amounts without intermediate rounding.
func Sum(lines []LineAmounts) Totals {
	t := Totals{
		Subtotal:      decimal.Zero,
		TotalDiscount: decimal.Zero,
		TotalTax:      decimal.Zero,
		TotalAmount:   decimal.Zero,
	}
	for _, l := range lines {
		t.Subtotal = t.Subtotal.Add(l.Subtotal)
		t.TotalDiscount = t.TotalDiscount.Add(l.DiscountAmount)
		t.TotalTax = t.TotalTax.Add(l.TaxAmount)
		t.TotalAmount = t.TotalAmount.Add(l.Total)
	}
	return t
}

// Format renders an amount with its currency code, rounded half away from
// zero to two places: "USD 3271.28".
func Format(currency string, d decimal.Decimal) string {
	amount := d.StringFixed(DisplayPlaces)
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return amount
	}
	return currency + " " + amount
}

// Percent renders a rate with one decimal place: "8.5%".
func Percent(d decimal.Decimal) string {
	return d.StringFixed(1) + "%"
}

// Quantity renders a quantity without trailing zeros.
func Quantity(d decimal.Decimal) string {
	return d.String()
}

func percent(p decimal.Decimal) decimal.Decimal {
	return p.Shift(-2)
}
