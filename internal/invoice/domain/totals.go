package domain

import "github.com/shopspring/decimal"

// DeriveItem fills the computed fields of an item from the parent invoice's
// tax settings: total = quantity × unit cost, and GST applies only when the
// invoice opts in and carries a rate.
func DeriveItem(item *InvoiceItem, taxOption TaxOption, taxRate *decimal.Decimal) {
	item.Total = item.UnitCost.Mul(decimal.NewFromInt(item.Quantity)).Round(2)
	if taxOption == TaxOptionYes && taxRate != nil {
		item.TotalGST = item.Total.Mul(taxRate.Div(decimal.NewFromInt(100))).Round(2)
	} else {
		item.TotalGST = decimal.Zero
	}
}

// ComputeTotals recomputes the derived money fields of an invoice from its
// current item set. With no items the subtotal and GST are zero and the
// balance due is just the negated discount and payments.
func ComputeTotals(invoice *Invoice, items []InvoiceItem) {
	subtotal := decimal.Zero
	gst := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Total)
		gst = gst.Add(item.TotalGST)
	}

	invoice.Subtotal = subtotal.Round(2)
	invoice.GST = gst.Round(2)
	invoice.TotalDue = subtotal.Add(gst).Sub(invoice.Discount).Sub(invoice.AmountPaid).Round(2)
}
