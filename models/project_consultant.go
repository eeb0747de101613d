package models

import (
	"time"

	"gorm.io/gorm"
)

// QuoteStatus tracks the approval of a consultant's fee quote. A nil
// *QuoteStatus on an assignment means the quote status is unset.
type QuoteStatus string

const (
	QuoteStatusPending  QuoteStatus = "Pending"
	QuoteStatusApproved QuoteStatus = "Approved"
)

func (s QuoteStatus) Valid() bool {
	return s == QuoteStatusPending || s == QuoteStatusApproved
}

// FeeProposalStatus tracks the proposal paperwork alongside the quote
type FeeProposalStatus string

const (
	FeeProposalReceived FeeProposalStatus = "Received"
	FeeProposalSent     FeeProposalStatus = "Sent"
	FeeProposalSigned   FeeProposalStatus = "Signed"
)

func (s FeeProposalStatus) Valid() bool {
	switch s {
	case FeeProposalReceived, FeeProposalSent, FeeProposalSigned:
		return true
	}
	return false
}

// ProjectConsultant assigns a consultant to a project and carries the quote
// and fee proposal state for that pairing.
type ProjectConsultant struct {
	ID                string             `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectID         string             `json:"projectId" gorm:"type:uuid;not null;uniqueIndex:idx_project_consultant"`
	ConsultantID      string             `json:"consultantId" gorm:"type:uuid;not null;uniqueIndex:idx_project_consultant;index"`
	Quote             *float64           `json:"quote" gorm:"type:numeric(12,2)"`
	QuoteStatus       *QuoteStatus       `json:"quoteStatus" gorm:"type:varchar(20)"`
	FeeProposalStatus *FeeProposalStatus `json:"feeProposalStatus" gorm:"type:varchar(20)"`
	CreatedAt         time.Time          `json:"createdAt"`
	UpdatedAt         time.Time          `json:"updatedAt"`

	// Relations
	Project    *Project    `json:"project,omitempty" gorm:"foreignKey:ProjectID;constraint:OnDelete:CASCADE"`
	Consultant *Consultant `json:"consultant,omitempty" gorm:"foreignKey:ConsultantID;constraint:OnDelete:CASCADE"`
	Invoices   []Invoice   `json:"-" gorm:"foreignKey:ProjectConsultantID;constraint:OnDelete:CASCADE"`
	Tasks      []Task      `json:"-" gorm:"foreignKey:ProjectConsultantID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name for ProjectConsultant model
func (ProjectConsultant) TableName() string {
	return "project_consultants"
}

func (a *ProjectConsultant) BeforeCreate(tx *gorm.DB) error {
	assignID(&a.ID)
	return nil
}

// QuoteValue returns the quote, treating an unset quote as zero.
func (a ProjectConsultant) QuoteValue() float64 {
	if a.Quote == nil {
		return 0
	}
	return *a.Quote
}
