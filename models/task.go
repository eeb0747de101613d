package models

import (
	"time"

	"gorm.io/gorm"
)

// TaskStatus represents the current state of a consultant task
type TaskStatus string

const (
	TaskStatusPendingInput TaskStatus = "Pending Input"
	TaskStatusInProgress   TaskStatus = "In Progress"
	TaskStatusCompleted    TaskStatus = "Completed"
)

// TaskStatusCycle is the fixed order the advance action walks through.
var TaskStatusCycle = []TaskStatus{
	TaskStatusPendingInput,
	TaskStatusInProgress,
	TaskStatusCompleted,
}

func (s TaskStatus) Valid() bool {
	return s.index() >= 0
}

func (s TaskStatus) index() int {
	for i, status := range TaskStatusCycle {
		if status == s {
			return i
		}
	}
	return -1
}

// Next returns the status after s in TaskStatusCycle, wrapping from Completed
// back to Pending Input. An unknown status advances to Pending Input.
func (s TaskStatus) Next() TaskStatus {
	return TaskStatusCycle[(s.index()+1)%len(TaskStatusCycle)]
}

// Task is a unit of work tracked for a consultant on a project
type Task struct {
	ID                  string     `json:"id" gorm:"primaryKey;type:uuid"`
	ProjectConsultantID string     `json:"projectConsultantId" gorm:"type:uuid;not null;index"`
	Title               string     `json:"title" gorm:"not null"`
	Description         string     `json:"description" gorm:"type:text"`
	DueDate             *time.Time `json:"dueDate"`
	Status              TaskStatus `json:"status" gorm:"type:varchar(20);not null;default:'Pending Input'"`
	CreatedAt           time.Time  `json:"createdAt"`
	UpdatedAt           time.Time  `json:"updatedAt"`
}

func (t *Task) BeforeCreate(tx *gorm.DB) error {
	assignID(&t.ID)
	if t.Status == "" {
		t.Status = TaskStatusPendingInput
	}
	return nil
}

// IsOverdue returns true if the task is past its due date and not completed
func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.Status == TaskStatusCompleted {
		return false
	}
	return now.After(*t.DueDate)
}
