package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/studio-desk/dto"
	"github.com/studio-desk/lib/querycache"
	"github.com/studio-desk/models"
	"github.com/studio-desk/repositories"
)

var errInvalidCredentials = fmt.Errorf("invalid email or password: %w", ErrUnauthorized)

// AuthService issues and verifies sessions
type AuthService struct {
	users    *repositories.UserRepository
	sessions *repositories.SessionRepository
	events   *AuthEvents
	changes  *ChangeRecorder
	secret   []byte
	ttl      time.Duration
	logger   *zap.Logger
	now      func() time.Time
}

func NewAuthService(
	users *repositories.UserRepository,
	sessions *repositories.SessionRepository,
	events *AuthEvents,
	changes *ChangeRecorder,
	secret string,
	ttl time.Duration,
	logger *zap.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		events:   events,
		changes:  changes,
		secret:   []byte(secret),
		ttl:      ttl,
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates a new user account. New accounts are staff, non-admin.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (models.User, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return models.User{}, fmt.Errorf("email already registered: %w", ErrConflict)
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return models.User{}, err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return models.User{}, err
	}

	user, err := s.users.Create(ctx, models.User{
		Email:    email,
		Password: string(hashedPassword),
		FullName: strings.TrimSpace(req.FullName),
		UserType: models.UserTypeStaff,
	})
	if err != nil {
		return models.User{}, translate(err, "user")
	}
	s.changes.Record(ctx, user.ID, querycache.Change{
		Entity: querycache.EntityProfile,
		Action: querycache.ActionCreate,
		ID:     user.ID,
	})
	return user, nil
}

// UpdateProfile changes the signed-in user's display name
func (s *AuthService) UpdateProfile(ctx context.Context, userID string, req dto.UpdateProfileRequest) (models.User, error) {
	if err := s.users.UpdateFullName(ctx, userID, strings.TrimSpace(req.FullName)); err != nil {
		return models.User{}, translate(err, "user")
	}
	s.changes.Record(ctx, userID, querycache.Change{
		Entity: querycache.EntityProfile,
		Action: querycache.ActionUpdate,
		ID:     userID,
	})
	user, err := s.users.FindByID(ctx, userID)
	return user, translate(err, "user")
}

// Login authenticates a user, opens a session and returns its token
func (s *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	user, err := s.users.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(req.Email)))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return dto.AuthResponse{}, errInvalidCredentials
		}
		return dto.AuthResponse{}, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, errInvalidCredentials
	}

	session, err := s.sessions.Create(ctx, models.Session{
		UserID:    user.ID,
		ExpiresAt: s.now().Add(s.ttl),
	})
	if err != nil {
		return dto.AuthResponse{}, err
	}

	resp, err := s.issue(user, session)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	s.events.Emit(ctx, AuthChange{Event: AuthSignedIn, UserID: user.ID, SessionID: session.ID})
	return resp, nil
}

// GetSession verifies a token and returns its active session
func (s *AuthService) GetSession(ctx context.Context, token string) (models.Session, error) {
	claims, err := s.ValidateToken(token)
	if err != nil {
		return models.Session{}, fmt.Errorf("%v: %w", err, ErrUnauthorized)
	}

	session, err := s.sessions.FindByID(ctx, claims.SessionID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Session{}, fmt.Errorf("session not found: %w", ErrUnauthorized)
		}
		return models.Session{}, err
	}
	if session.UserID != claims.UserID || !session.Active(s.now()) {
		return models.Session{}, fmt.Errorf("session expired or revoked: %w", ErrUnauthorized)
	}
	return session, nil
}

// GetUser re-reads the user behind a session. A missing account is
// reported as ErrUnauthorized so the caller can force a sign-out.
func (s *AuthService) GetUser(ctx context.Context, id string) (models.User, error) {
	user, err := s.users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.User{}, fmt.Errorf("account no longer exists: %w", ErrUnauthorized)
		}
		return models.User{}, err
	}
	return user, nil
}

// SignOut revokes a session
func (s *AuthService) SignOut(ctx context.Context, session models.Session) error {
	if err := s.sessions.Revoke(ctx, session.ID, s.now()); err != nil {
		return err
	}
	s.events.Emit(ctx, AuthChange{Event: AuthSignedOut, UserID: session.UserID, SessionID: session.ID})
	return nil
}

// SignOutEverywhere revokes every session of the session's user
func (s *AuthService) SignOutEverywhere(ctx context.Context, session models.Session) error {
	if err := s.sessions.RevokeAllForUser(ctx, session.UserID, s.now()); err != nil {
		return err
	}
	s.events.Emit(ctx, AuthChange{Event: AuthSignedOut, UserID: session.UserID, SessionID: session.ID})
	return nil
}

// Refresh extends a session and issues a fresh token for it
func (s *AuthService) Refresh(ctx context.Context, session models.Session, user models.User) (dto.AuthResponse, error) {
	session.ExpiresAt = s.now().Add(s.ttl)
	if err := s.sessions.Extend(ctx, session.ID, session.ExpiresAt); err != nil {
		return dto.AuthResponse{}, err
	}
	resp, err := s.issue(user, session)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	s.events.Emit(ctx, AuthChange{Event: AuthTokenRefreshed, UserID: user.ID, SessionID: session.ID})
	return resp, nil
}

func (s *AuthService) issue(user models.User, session models.Session) (dto.AuthResponse, error) {
	token, err := s.GenerateToken(user, session)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	user.Password = ""
	return dto.AuthResponse{
		Token:     token,
		User:      user,
		Session:   session,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// GenerateToken generates a new JWT token bound to a session
func (s *AuthService) GenerateToken(user models.User, session models.Session) (string, error) {
	if len(s.secret) == 0 {
		return "", errors.New("JWT secret is not configured")
	}

	now := s.now()
	claims := dto.TokenClaims{
		UserID:    user.ID,
		SessionID: session.ID,
		Email:     user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.ID,
			ExpiresAt: jwt.NewNumericDate(session.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// ValidateToken validates a JWT token and returns claims if valid
func (s *AuthService) ValidateToken(tokenString string) (*dto.TokenClaims, error) {
	if len(s.secret) == 0 {
		return nil, errors.New("JWT secret is not configured")
	}

	token, err := jwt.ParseWithClaims(tokenString, &dto.TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(*dto.TokenClaims)
	if !ok || claims.SessionID == "" {
		return nil, errors.New("invalid token claims")
	}
	return claims, nil
}
