package dto

import "github.com/studio-desk/models"

// AdminStatsResponse holds exact row counts for the admin dashboard
type AdminStatsResponse struct {
	Projects         int64                        `json:"projects"`
	Consultants      int64                        `json:"consultants"`
	ConsultantGroups int64                        `json:"consultantGroups"`
	Users            int64                        `json:"users"`
	ProjectsByStatus map[models.ProjectStatus]int `json:"projectsByStatus"`
}

// UpdateUserRequest changes a profile's role
type UpdateUserRequest struct {
	UserType models.UserType `json:"userType" binding:"required,oneof=staff client"`
	IsAdmin  *bool           `json:"isAdmin" binding:"required"`
}
