package models

import (
	"time"

	"gorm.io/gorm"
)

// InvoiceStatus represents the payment state of an invoice
type InvoiceStatus string

const (
	InvoiceStatusPending InvoiceStatus = "Pending"
	InvoiceStatusPaid    InvoiceStatus = "Paid"
)

func (s InvoiceStatus) Valid() bool {
	return s == InvoiceStatusPending || s == InvoiceStatusPaid
}

// Invoice is a bill raised against a project-consultant assignment
type Invoice struct {
	ID                  string        `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectConsultantID string        `json:"projectConsultantId" gorm:"type:uuid;not null;index"`
	Amount              float64       `json:"amount" gorm:"type:numeric(12,2);not null"`
	InvoiceDate         time.Time     `json:"invoiceDate" gorm:"not null"`
	DueDate             *time.Time    `json:"dueDate"`
	InvoiceNumber       string        `json:"invoiceNumber" gorm:"size:100"`
	Status              InvoiceStatus `json:"status" gorm:"type:varchar(20);not null;default:'Pending'"`
	PaymentDate         *time.Time    `json:"paymentDate"`
	Notes               string        `json:"notes" gorm:"type:text"`
	CreatedAt           time.Time     `json:"createdAt"`
	UpdatedAt           time.Time     `json:"updatedAt"`
}

func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	assignID(&i.ID)
	if i.Status == "" {
		i.Status = InvoiceStatusPending
	}
	return nil
}

// IsPaid reports whether the invoice has been settled
func (i Invoice) IsPaid() bool {
	return i.Status == InvoiceStatusPaid
}
