// Package aggregate derives display totals from fetched collections. Every
// function is pure and recomputes from scratch, so results are only as fresh
// as the slices passed in.
package aggregate

import "github.com/studio-desk/models"

// PaymentSummary holds the quote and invoice totals for a scope (one
// assignment or a whole project).
type PaymentSummary struct {
	TotalQuoted        float64 `json:"totalQuoted"`
	TotalInvoiced      float64 `json:"totalInvoiced"`
	TotalPaid          float64 `json:"totalPaid"`
	Outstanding        float64 `json:"outstanding"`
	InvoicedPercentage float64 `json:"invoicedPercentage"`
	PaidPercentage     float64 `json:"paidPercentage"`
}

// SummarizePayments totals quotes over assignments and amounts over invoices.
// Unset quotes count as zero. Nothing is clamped: paid may exceed invoiced and
// invoiced may exceed quoted, in which case the figures are reported as-is.
func SummarizePayments(assignments []models.ProjectConsultant, invoices []models.Invoice) PaymentSummary {
	var summary PaymentSummary
	for _, a := range assignments {
		summary.TotalQuoted += a.QuoteValue()
	}
	for _, inv := range invoices {
		summary.TotalInvoiced += inv.Amount
		if inv.IsPaid() {
			summary.TotalPaid += inv.Amount
		}
	}
	summary.Outstanding = summary.TotalInvoiced - summary.TotalPaid
	summary.InvoicedPercentage = Percentage(summary.TotalInvoiced, summary.TotalQuoted)
	summary.PaidPercentage = Percentage(summary.TotalPaid, summary.TotalQuoted)
	return summary
}

// Percentage returns part as a percentage of whole, or 0 when whole is 0.
func Percentage(part, whole float64) float64 {
	if whole == 0 {
		return 0
	}
	return part / whole * 100
}
