package money

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func assertDecimal(t *testing.T, want string, got decimal.Decimal, field string) {
	t.Helper()
	assert.Truef(t, d(want).Equal(got), "%s: want %s, got %s", field, want, got.String())
}

func TestLine(t *testing.T) {
	tests := []struct {
		name                                          string
		qty, price, discount, tax                     string
		subtotal, discountAmt, taxable, taxAmt, total string
	}{
		{
			name: "single taxed line", qty: "40", price: "75.00", discount: "0", tax: "8.5",
			subtotal: "3000", discountAmt: "0", taxable: "3000", taxAmt: "255", total: "3255",
		},
		{
			name: "fractional tax kept at full precision", qty: "1", price: "15.00", discount: "0", tax: "8.5",
			subtotal: "15", discountAmt: "0", taxable: "15", taxAmt: "1.275", total: "16.275",
		},
		{
			name: "discount before tax", qty: "3", price: "19.99", discount: "10", tax: "20",
			subtotal: "59.97", discountAmt: "5.997", taxable: "53.973", taxAmt: "10.7946", total: "64.7676",
		},
		{
			name: "zero quantity", qty: "0", price: "12.50", discount: "15", tax: "8",
			subtotal: "0", discountAmt: "0", taxable: "0", taxAmt: "0", total: "0",
		},
		{
			name: "zero price", qty: "7", price: "0", discount: "0", tax: "18",
			subtotal: "0", discountAmt: "0", taxable: "0", taxAmt: "0", total: "0",
		},
		{
			name: "full discount", qty: "2", price: "50", discount: "100", tax: "10",
			subtotal: "100", discountAmt: "100", taxable: "0", taxAmt: "0", total: "0",
		},
		{
			name: "full tax", qty: "2", price: "50", discount: "0", tax: "100",
			subtotal: "100", discountAmt: "0", taxable: "100", taxAmt: "100", total: "200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Line(d(tt.qty), d(tt.price), d(tt.discount), d(tt.tax))

			assertDecimal(t, tt.subtotal, got.Subtotal, "subtotal")
			assertDecimal(t, tt.discountAmt, got.DiscountAmount, "discount")
			assertDecimal(t, tt.taxable, got.TaxableAmount, "taxable")
			assertDecimal(t, tt.taxAmt, got.TaxAmount, "tax")
			assertDecimal(t, tt.total, got.Total, "total")

			assert.True(t, got.Total.Equal(got.TaxableAmount.Add(got.TaxAmount)))
			assert.True(t, got.TaxableAmount.Equal(got.Subtotal.Sub(got.DiscountAmount)))
			assert.True(t, got.Subtotal.Equal(d(tt.qty).Mul(d(tt.price))))
			assert.False(t, got.Total.IsNegative())
		})
	}
}

func TestSum_FullPrecision(t *testing.T) {
	lines := []LineAmounts{
		Line(d("40"), d("75.00"), d("0"), d("8.5")),
		Line(d("1"), d("15.00"), d("0"), d("8.5")),
	}

	totals := Sum(lines)

	assertDecimal(t, "3015", totals.Subtotal, "subtotal")
	assertDecimal(t, "0", totals.TotalDiscount, "total_discount")
	assertDecimal(t, "256.275", totals.TotalTax, "total_tax")
	assertDecimal(t, "3271.275", totals.TotalAmount, "total_amount")
	assert.True(t, totals.TotalAmount.Equal(totals.Subtotal.Sub(totals.TotalDiscount).Add(totals.TotalTax)))

	assert.Equal(t, "USD 16.28", Format("USD", lines[1].Total))
	assert.Equal(t, "USD 3271.28", Format("USD", totals.TotalAmount))
}

func TestSum_DoesNotAccumulateRoundedValues(t *testing.T) {
	// Three lines of 0.333 each round to 0.33 individually but sum to 1.00.
	lines := make([]LineAmounts, 3)
	for i := range lines {
		lines[i] = Line(d("1"), d("0.333"), d("0"), d("0"))
	}

	totals := Sum(lines)

	assertDecimal(t, "0.999", totals.TotalAmount, "total_amount")
	assert.Equal(t, "1.00", Format("", totals.TotalAmount))
}

func TestSum_Empty(t *testing.T) {
	totals := Sum(nil)
	assert.True(t, totals.TotalAmount.IsZero())
	assert.Equal(t, "EUR 0.00", Format("EUR", totals.TotalAmount))
}

func TestFormatHelpers(t *testing.T) {
	assert.Equal(t, "USD 75.00", Format("USD", d("75")))
	assert.Equal(t, "USD 0.01", Format(" USD ", d("0.005")))
	assert.Equal(t, "8.5%", Percent(d("8.5")))
	assert.Equal(t, "0.0%", Percent(decimal.Zero))
	assert.Equal(t, "1.5", Quantity(d("1.50")))
	assert.Equal(t, "40", Quantity(d("40")))
}
