package models

import (
	"time"

	"gorm.io/gorm"
)

// Consultant is an external specialist the studio can assign to projects
type Consultant struct {
	ID          string         `json:"id" gorm:"primaryKey;type:uuid"`
	Name        string         `json:"name" gorm:"not null"`
	Email       string         `json:"email" gorm:"not null"`
	Phone       string         `json:"phone" gorm:"size:50"`
	CompanyName string         `json:"companyName" gorm:"size:255"`
	UserID      string         `json:"userId" gorm:"type:uuid;not null;index"`
	CreatedAt   time.Time      `json:"createdAt"`
	UpdatedAt   time.Time      `json:"updatedAt"`
	DeletedAt   gorm.DeletedAt `json:"-" gorm:"index"`

	// Relations
	Membership *ConsultantGroupMembership `json:"membership,omitempty" gorm:"foreignKey:ConsultantID;constraint:OnDelete:CASCADE"`
}

func (c *Consultant) BeforeCreate(tx *gorm.DB) error {
	assignID(&c.ID)
	return nil
}

// Group returns the consultant's group, or nil when the membership was not
// loaded or the consultant is ungrouped.
func (c Consultant) Group() *ConsultantGroup {
	if c.Membership == nil {
		return nil
	}
	return c.Membership.Group
}
