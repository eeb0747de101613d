package models

import (
	"time"

	"gorm.io/gorm"
)

// ConsultantGroup is a named collection of consultants. Members are derived
// from ConsultantGroupMembership rows, never stored on the group.
type ConsultantGroup struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid"`
	Name      string         `json:"name" gorm:"not null"`
	UserID    string         `json:"userId" gorm:"type:uuid;not null;index"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (g *ConsultantGroup) BeforeCreate(tx *gorm.DB) error {
	assignID(&g.ID)
	return nil
}

// ConsultantGroupMembership places one consultant in one group. The unique
// index on consultant_id makes the upsert in the repository atomic.
type ConsultantGroupMembership struct {
	ID           string    `json:"id" gorm:"primaryKey;type:uuid"`
	ConsultantID string    `json:"consultantId" gorm:"type:uuid;not null;uniqueIndex"`
	GroupID      string    `json:"groupId" gorm:"type:uuid;not null;index"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`

	// Relations
	Group *ConsultantGroup `json:"group,omitempty" gorm:"foreignKey:GroupID;constraint:OnDelete:CASCADE"`
}

// TableName sets the table name for ConsultantGroupMembership model
func (ConsultantGroupMembership) TableName() string {
	return "consultant_group_members"
}

func (m *ConsultantGroupMembership) BeforeCreate(tx *gorm.DB) error {
	assignID(&m.ID)
	return nil
}
