package models

import (
	"time"

	"gorm.io/gorm"
)

// UserType is the capability role of a profile.
type UserType string

const (
	UserTypeStaff  UserType = "staff"
	UserTypeClient UserType = "client"
)

// Valid reports whether t is a known user type.
func (t UserType) Valid() bool {
	return t == UserTypeStaff || t == UserTypeClient
}

// User is an account together with its profile (full name, user type, admin flag).
type User struct {
	ID        string         `json:"id" gorm:"primaryKey;type:uuid"`
	Email     string         `json:"email" gorm:"uniqueIndex;not null"`
	Password  string         `json:"-" gorm:"not null"` // Password is not exposed in JSON
	FullName  string         `json:"fullName" gorm:"size:255"`
	UserType  UserType       `json:"userType" gorm:"type:varchar(10);not null;default:'staff'"`
	IsAdmin   bool           `json:"isAdmin" gorm:"not null;default:false"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	assignID(&u.ID)
	if u.UserType == "" {
		u.UserType = UserTypeStaff
	}
	return nil
}
