package services

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrNotFound     = errors.New("not found")
	ErrForbidden    = errors.New("forbidden")
	ErrConflict     = errors.New("conflict")
	ErrInvalidInput = errors.New("invalid input")
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// translate maps storage errors onto the service sentinels, naming the
// entity involved. Unknown errors are returned unchanged.
func translate(err error, entity string) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return fmt.Errorf("%s %w", entity, ErrNotFound)
	case errors.Is(err, gorm.ErrDuplicatedKey):
		return fmt.Errorf("%s already exists: %w", entity, ErrConflict)
	case errors.Is(err, gorm.ErrForeignKeyViolated):
		return fmt.Errorf("%s references a missing record: %w", entity, ErrInvalidInput)
	case errors.As(err, &pgErr):
		switch pgErr.Code {
		case pgUniqueViolation:
			return fmt.Errorf("%s already exists: %w", entity, ErrConflict)
		case pgForeignKeyViolation:
			return fmt.Errorf("%s references a missing record: %w", entity, ErrInvalidInput)
		}
	}
	return err
}

func invalid(format string, args ...interface{}) error {
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), ErrInvalidInput)
}

func forbidden(action string) error {
	return fmt.Errorf("you don't have permission to %s: %w", action, ErrForbidden)
}
