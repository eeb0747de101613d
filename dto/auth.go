package dto

import (
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/studio-desk/models"
)

// TokenClaims represents our custom JWT claims
type TokenClaims struct {
	UserID    string `json:"userId"`
	SessionID string `json:"sid"`
	Email     string `json:"email"`
	jwt.RegisteredClaims
}

// LoginRequest represents login credentials
type LoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents registration data
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
	FullName string `json:"fullName" binding:"max=255"`
}

// UpdateProfileRequest edits the signed-in user's own profile
type UpdateProfileRequest struct {
	FullName string `json:"fullName" binding:"required,max=255"`
}

// AuthResponse represents the response after authentication
type AuthResponse struct {
	Token     string         `json:"token"`
	User      models.User    `json:"user"`
	Session   models.Session `json:"session"`
	ExpiresAt time.Time      `json:"expiresAt"`
}

// SessionResponse is the current session with its verified user
type SessionResponse struct {
	Session models.Session `json:"session"`
	User    models.User    `json:"user"`
}

// MeResponse describes what the signed-in user can see and do
type MeResponse struct {
	User               models.User     `json:"user"`
	UserType           models.UserType `json:"userType"`
	IsAdmin            bool            `json:"isAdmin"`
	IsClient           bool            `json:"isClient"`
	CanCreateProject   bool            `json:"canCreateProject"`
	CanViewConsultants bool            `json:"canViewConsultants"`
	CanViewAdmin       bool            `json:"canViewAdmin"`
	Tabs               []string        `json:"tabs"`
}
