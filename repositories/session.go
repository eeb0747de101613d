package repositories

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/studio-desk/models"
)

// SessionRepository stores issued sign-in sessions
type SessionRepository struct {
	db *gorm.DB
}

func NewSessionRepository(db *gorm.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func (r *SessionRepository) Create(ctx context.Context, session models.Session) (models.Session, error) {
	result := r.db.WithContext(ctx).Create(&session)
	return session, result.Error
}

func (r *SessionRepository) FindByID(ctx context.Context, id string) (models.Session, error) {
	var session models.Session
	result := r.db.WithContext(ctx).First(&session, "id = ?", id)
	return session, result.Error
}

// Extend moves the expiry of an active session
func (r *SessionRepository) Extend(ctx context.Context, id string, expiresAt time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("expires_at", expiresAt).Error
}

// Revoke marks a session as signed out. Revoking twice is a no-op.
func (r *SessionRepository) Revoke(ctx context.Context, id string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("id = ? AND revoked_at IS NULL", id).
		Update("revoked_at", at).Error
}

// RevokeAllForUser signs a user out everywhere
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string, at time.Time) error {
	return r.db.WithContext(ctx).Model(&models.Session{}).
		Where("user_id = ? AND revoked_at IS NULL", userID).
		Update("revoked_at", at).Error
}
