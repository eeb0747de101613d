package dto

import (
	"time"

	"github.com/studio-desk/models"
)

// ConsultantRequest is used for both create and update. On update a null or
// empty groupId removes the consultant from its group.
type ConsultantRequest struct {
	Name        string  `json:"name" binding:"required,max=255"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       string  `json:"phone" binding:"max=50"`
	CompanyName string  `json:"companyName" binding:"max=255"`
	GroupID     *string `json:"groupId"`
}

// ConsultantResponse flattens a consultant and its group
type ConsultantResponse struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Phone       string    `json:"phone"`
	CompanyName string    `json:"companyName"`
	UserID      string    `json:"userId"`
	GroupID     *string   `json:"groupId"`
	GroupName   *string   `json:"groupName"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

func NewConsultantResponse(c models.Consultant) ConsultantResponse {
	resp := ConsultantResponse{
		ID:          c.ID,
		Name:        c.Name,
		Email:       c.Email,
		Phone:       c.Phone,
		CompanyName: c.CompanyName,
		UserID:      c.UserID,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
	if group := c.Group(); group != nil {
		id, name := group.ID, group.Name
		resp.GroupID = &id
		resp.GroupName = &name
	}
	return resp
}

// ConsultantProjectItem is one project a consultant is assigned to
type ConsultantProjectItem struct {
	AssignmentID      string                    `json:"assignmentId"`
	ProjectID         string                    `json:"projectId"`
	ProjectName       string                    `json:"projectName"`
	ProjectStatus     models.ProjectStatus      `json:"projectStatus"`
	Quote             *float64                  `json:"quote"`
	QuoteStatus       *models.QuoteStatus       `json:"quoteStatus"`
	FeeProposalStatus *models.FeeProposalStatus `json:"feeProposalStatus"`
}

// ConsultantDetailResponse is a consultant with its project assignments
type ConsultantDetailResponse struct {
	ConsultantResponse
	Projects []ConsultantProjectItem `json:"projects"`
}

type GroupRequest struct {
	Name string `json:"name" binding:"required,max=255"`
}

// GroupResponse is a consultant group with its member consultants
type GroupResponse struct {
	models.ConsultantGroup
	Members []ConsultantResponse `json:"members"`
}
