package models

import (
	"time"

	"gorm.io/gorm"
)

// Session is a sign-in issued by the auth service. Tokens reference it by id,
// so revoking the row invalidates every token minted for it.
type Session struct {
	ID        string     `json:"id" gorm:"primaryKey;type:uuid"`
	UserID    string     `json:"userId" gorm:"type:uuid;not null;index"`
	ExpiresAt time.Time  `json:"expiresAt" gorm:"not null"`
	RevokedAt *time.Time `json:"revokedAt,omitempty"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
}

func (s *Session) BeforeCreate(tx *gorm.DB) error {
	assignID(&s.ID)
	return nil
}

// Active reports whether the session can still authenticate requests at now.
func (s Session) Active(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
