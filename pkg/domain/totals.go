package domain

import "github.com/shopspring/decimal"

var hundred = decimal.NewFromInt(100)

// InvoiceTotals is the breakdown of an invoice amount.
type InvoiceTotals struct {
	Subtotal       decimal.Decimal
	DiscountAmount decimal.Decimal
	Taxable        decimal.Decimal
	TaxAmount      decimal.Decimal
	Total          decimal.Decimal
}

// CalculateInvoiceTotal derives the amounts of an invoice from its items and
// percentage rates. Discount is applied before tax. Inputs are not clamped:
// negative or over-100 percentages produce the arithmetic result.
func CalculateInvoiceTotal(items []InvoiceItem, discount, taxRate decimal.Decimal) InvoiceTotals {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Amount())
	}
	discountAmount := subtotal.Mul(discount).Div(hundred)
	taxable := subtotal.Sub(discountAmount)
	tax := taxable.Mul(taxRate).Div(hundred)
	return InvoiceTotals{
		Subtotal:       subtotal,
		DiscountAmount: discountAmount,
		Taxable:        taxable,
		TaxAmount:      tax,
		Total:          taxable.Add(tax),
	}
}

// Totals recomputes the breakdown from the invoice's current items and rates.
func (inv Invoice) Totals() InvoiceTotals {
	return CalculateInvoiceTotal(inv.Items, inv.Discount, inv.TaxRate)
}
