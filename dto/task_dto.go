package dto

import "github.com/studio-desk/models"

// TaskRequest is used for both create and update
type TaskRequest struct {
	Title       string            `json:"title" binding:"required,max=255"`
	Description string            `json:"description"`
	DueDate     *Date             `json:"dueDate"`
	Status      models.TaskStatus `json:"status"`
}

// TaskResponse is a task with its overdue flag
type TaskResponse struct {
	models.Task
	IsOverdue bool `json:"isOverdue"`
}
