package dto

import (
	"github.com/studio-desk/lib/aggregate"
	"github.com/studio-desk/models"
)

// ProjectFilter represents filter criteria for projects
type ProjectFilter struct {
	Search    string `form:"search"`
	Status    string `form:"status"`
	SortBy    string `form:"sortBy"`
	SortOrder string `form:"sortOrder"`
	Page      int    `form:"page"`
	PageSize  int    `form:"pageSize"`
}

// ProjectResponse is a project with the caller's edit affordances
type ProjectResponse struct {
	models.Project
	CanEdit   bool `json:"canEdit"`
	CanDelete bool `json:"canDelete"`
}

// ProjectListResponse represents paginated project list response
type ProjectListResponse struct {
	Projects   []ProjectResponse `json:"projects"`
	TotalCount int64             `json:"totalCount"`
	Page       int               `json:"page"`
	PageSize   int               `json:"pageSize"`
	TotalPages int               `json:"totalPages"`
}

// CreateProjectRequest represents the request payload for creating a new project
type CreateProjectRequest struct {
	Name             string               `json:"name" binding:"required,max=255"`
	Description      string               `json:"description"`
	ClientName       string               `json:"clientName" binding:"max=255"`
	ClientContact    string               `json:"clientContact" binding:"max=255"`
	ClientEmail      string               `json:"clientEmail" binding:"omitempty,email"`
	EstimatedCost    *float64             `json:"estimatedCost" binding:"omitempty,gte=0"`
	Status           models.ProjectStatus `json:"status"`
	AssignedStaffID  *string              `json:"assignedStaffId"`
	AssignedClientID *string              `json:"assignedClientId"`
}

// UpdateProjectRequest represents the request payload for updating an existing project
type UpdateProjectRequest struct {
	Name          string               `json:"name" binding:"required,max=255"`
	Description   string               `json:"description"`
	ClientName    string               `json:"clientName" binding:"max=255"`
	ClientContact string               `json:"clientContact" binding:"max=255"`
	ClientEmail   string               `json:"clientEmail" binding:"omitempty,email"`
	EstimatedCost *float64             `json:"estimatedCost" binding:"omitempty,gte=0"`
	Status        models.ProjectStatus `json:"status"`
}

type UpdateProjectStatusRequest struct {
	Status models.ProjectStatus `json:"status" binding:"required"`
}

// UpdateProjectAssignmentRequest attaches staff and client users. A null or
// empty id detaches.
type UpdateProjectAssignmentRequest struct {
	AssignedStaffID  *string `json:"assignedStaffId"`
	AssignedClientID *string `json:"assignedClientId"`
}

// ProjectStatsResponse represents project statistics for dashboard view
type ProjectStatsResponse struct {
	Project     ProjectResponse              `json:"project"`
	Consultants int                          `json:"consultants"`
	Tasks       map[models.TaskStatus]int    `json:"tasks"`
	Invoices    map[models.InvoiceStatus]int `json:"invoices"`
	Quotes      map[string]int               `json:"quotes"`
	Payments    aggregate.PaymentSummary     `json:"payments"`
}
