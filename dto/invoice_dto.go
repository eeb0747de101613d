package dto

import "github.com/studio-desk/models"

// InvoiceRequest is used for both create and update
type InvoiceRequest struct {
	Amount        *float64             `json:"amount" binding:"required,gte=0"`
	InvoiceDate   *Date                `json:"invoiceDate" binding:"required"`
	DueDate       *Date                `json:"dueDate"`
	InvoiceNumber string               `json:"invoiceNumber" binding:"max=100"`
	Status        models.InvoiceStatus `json:"status"`
	PaymentDate   *Date                `json:"paymentDate"`
	Notes         string               `json:"notes"`
}

// MarkPaidRequest optionally overrides the payment date, which defaults to today
type MarkPaidRequest struct {
	PaymentDate *Date `json:"paymentDate"`
}
