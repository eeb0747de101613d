package dto

import (
	"time"

	"github.com/studio-desk/lib/aggregate"
	"github.com/studio-desk/models"
)

// AssignmentResponse is a project-consultant assignment
type AssignmentResponse struct {
	ID                string                    `json:"id"`
	ProjectID         string                    `json:"projectId"`
	ConsultantID      string                    `json:"consultantId"`
	Quote             *float64                  `json:"quote"`
	QuoteStatus       *models.QuoteStatus       `json:"quoteStatus"`
	FeeProposalStatus *models.FeeProposalStatus `json:"feeProposalStatus"`
	Consultant        *ConsultantResponse       `json:"consultant,omitempty"`
	CreatedAt         time.Time                 `json:"createdAt"`
	UpdatedAt         time.Time                 `json:"updatedAt"`
}

func NewAssignmentResponse(a models.ProjectConsultant) AssignmentResponse {
	resp := AssignmentResponse{
		ID:                a.ID,
		ProjectID:         a.ProjectID,
		ConsultantID:      a.ConsultantID,
		Quote:             a.Quote,
		QuoteStatus:       a.QuoteStatus,
		FeeProposalStatus: a.FeeProposalStatus,
		CreatedAt:         a.CreatedAt,
		UpdatedAt:         a.UpdatedAt,
	}
	if a.Consultant != nil {
		c := NewConsultantResponse(*a.Consultant)
		resp.Consultant = &c
	}
	return resp
}

// Fields of an assignment that can be reset to unset
const (
	AssignmentFieldQuote             = "quote"
	AssignmentFieldQuoteStatus       = "quoteStatus"
	AssignmentFieldFeeProposalStatus = "feeProposalStatus"
)

// UpdateAssignmentRequest patches quote fields. Omitted fields are left as is;
// fields named in Clear are reset to unset.
type UpdateAssignmentRequest struct {
	Quote             *float64                  `json:"quote" binding:"omitempty,gte=0"`
	QuoteStatus       *models.QuoteStatus       `json:"quoteStatus"`
	FeeProposalStatus *models.FeeProposalStatus `json:"feeProposalStatus"`
	Clear             []string                  `json:"clear" binding:"omitempty,dive,oneof=quote quoteStatus feeProposalStatus"`
}

// Clears reports whether field is named in Clear
func (r UpdateAssignmentRequest) Clears(field string) bool {
	for _, f := range r.Clear {
		if f == field {
			return true
		}
	}
	return false
}

// ToggleResponse reports the assignment state after a toggle
type ToggleResponse struct {
	Assigned   bool                `json:"assigned"`
	Assignment *AssignmentResponse `json:"assignment,omitempty"`
}

// AssignmentDetailResponse bundles everything shown for one consultant on one project
type AssignmentDetailResponse struct {
	Assignment AssignmentResponse        `json:"assignment"`
	Project    ProjectResponse           `json:"project"`
	Consultant ConsultantResponse        `json:"consultant"`
	Invoices   []models.Invoice          `json:"invoices"`
	Tasks      []TaskResponse            `json:"tasks"`
	TaskCounts map[models.TaskStatus]int `json:"taskCounts"`
	Payments   aggregate.PaymentSummary  `json:"payments"`
}
