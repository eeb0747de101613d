package models

import (
	"time"

	"gorm.io/gorm"
)

// ProjectStatus is the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusPlanning   ProjectStatus = "Planning"
	ProjectStatusInProgress ProjectStatus = "In Progress"
	ProjectStatusOnHold     ProjectStatus = "On Hold"
	ProjectStatusCompleted  ProjectStatus = "Completed"
	ProjectStatusCancelled  ProjectStatus = "Cancelled"
)

// ProjectStatuses lists every project status in display order.
var ProjectStatuses = []ProjectStatus{
	ProjectStatusPlanning,
	ProjectStatusInProgress,
	ProjectStatusOnHold,
	ProjectStatusCompleted,
	ProjectStatusCancelled,
}

func (s ProjectStatus) Valid() bool {
	for _, status := range ProjectStatuses {
		if s == status {
			return true
		}
	}
	return false
}

// Project represents a client engagement run by the studio
type Project struct {
	ID               string         `json:"id" gorm:"primaryKey;type:uuid"`
	Name             string         `json:"name" gorm:"not null"`
	Description      string         `json:"description" gorm:"type:text"`
	ClientName       string         `json:"clientName" gorm:"size:255"`
	ClientContact    string         `json:"clientContact" gorm:"size:255"`
	ClientEmail      string         `json:"clientEmail" gorm:"size:255"`
	EstimatedCost    float64        `json:"estimatedCost" gorm:"type:numeric(12,2);not null;default:0"`
	Status           ProjectStatus  `json:"status" gorm:"type:varchar(20);not null;default:'Planning'"`
	UserID           string         `json:"userId" gorm:"type:uuid;not null;index"`
	AssignedStaffID  *string        `json:"assignedStaffId" gorm:"type:uuid;index"`
	AssignedClientID *string        `json:"assignedClientId" gorm:"type:uuid;index"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
	DeletedAt        gorm.DeletedAt `json:"-" gorm:"index"`
}

func (p *Project) BeforeCreate(tx *gorm.DB) error {
	assignID(&p.ID)
	if p.Status == "" {
		p.Status = ProjectStatusPlanning
	}
	return nil
}

// IsAssignedClient reports whether userID is the client attached to the project.
func (p Project) IsAssignedClient(userID string) bool {
	return p.AssignedClientID != nil && *p.AssignedClientID == userID
}
