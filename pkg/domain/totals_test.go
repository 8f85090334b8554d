package domain

import (
	"testing"

	"github.com/shopspring/decimal"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestCalculateInvoiceTotalNoAdjustments(t *testing.T) {
	items := []InvoiceItem{
		{ID: "a", ServiceID: "s1", Quantity: 2, UnitPrice: dec("450")},
		{ID: "b", ServiceID: "s2", Quantity: 1, UnitPrice: dec("99.50")},
	}
	got := CalculateInvoiceTotal(items, decimal.Zero, decimal.Zero)
	if !got.Subtotal.Equal(dec("999.50")) {
		t.Fatalf("unexpected subtotal %s", got.Subtotal)
	}
	if !got.Total.Equal(got.Subtotal) {
		t.Fatalf("expected total == subtotal, got %s vs %s", got.Total, got.Subtotal)
	}
}

func TestCalculateInvoiceTotalDiscountThenTax(t *testing.T) {
	cases := []struct {
		name     string
		price    string
		discount string
		tax      string
		subtotal string
		taxable  string
		total    string
	}{
		{name: "discount only", price: "100", discount: "10", tax: "0", subtotal: "100", taxable: "90", total: "90"},
		{name: "tax only", price: "100", discount: "0", tax: "18", subtotal: "100", taxable: "100", total: "118"},
		{name: "discount and tax", price: "200", discount: "10", tax: "18", subtotal: "200", taxable: "180", total: "212.40"},
		{name: "unclamped discount", price: "100", discount: "150", tax: "0", subtotal: "100", taxable: "-50", total: "-50"},
		{name: "negative tax", price: "100", discount: "0", tax: "-10", subtotal: "100", taxable: "100", total: "90"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			items := []InvoiceItem{{ID: "x", ServiceID: "s", Quantity: 1, UnitPrice: dec(tc.price)}}
			got := CalculateInvoiceTotal(items, dec(tc.discount), dec(tc.tax))
			if !got.Subtotal.Equal(dec(tc.subtotal)) {
				t.Fatalf("subtotal: want %s got %s", tc.subtotal, got.Subtotal)
			}
			if !got.Taxable.Equal(dec(tc.taxable)) {
				t.Fatalf("taxable: want %s got %s", tc.taxable, got.Taxable)
			}
			if !got.Total.Equal(dec(tc.total)) {
				t.Fatalf("total: want %s got %s", tc.total, got.Total)
			}
			if !got.Taxable.Add(got.TaxAmount).Equal(got.Total) {
				t.Fatalf("taxable + tax should equal total")
			}
		})
	}
}

func TestCalculateInvoiceTotalEmpty(t *testing.T) {
	got := CalculateInvoiceTotal(nil, dec("10"), dec("18"))
	if !got.Subtotal.IsZero() || !got.Total.IsZero() {
		t.Fatalf("expected zero totals, got %+v", got)
	}
}

func TestInvoiceTotalsUsesCurrentFields(t *testing.T) {
	inv := Invoice{
		Items:    []InvoiceItem{{Quantity: 3, UnitPrice: dec("100")}},
		Discount: dec("0"),
		TaxRate:  dec("5"),
	}
	if got := inv.Totals().Total; !got.Equal(dec("315")) {
		t.Fatalf("expected 315, got %s", got)
	}
}
