package services

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		in   error
		want error
	}{
		{"not found", gorm.ErrRecordNotFound, ErrNotFound},
		{"duplicate", gorm.ErrDuplicatedKey, ErrConflict},
		{"foreign key", gorm.ErrForeignKeyViolated, ErrInvalidInput},
		{"pg unique", fmt.Errorf("insert: %w", &pgconn.PgError{Code: "23505"}), ErrConflict},
		{"pg fk", &pgconn.PgError{Code: "23503"}, ErrInvalidInput},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := translate(tc.in, "project"); !errors.Is(got, tc.want) {
				t.Fatalf("translate(%v) = %v, want %v", tc.in, got, tc.want)
			}
		})
	}

	other := errors.New("connection reset")
	if got := translate(other, "project"); got != other {
		t.Fatalf("unknown errors should pass through, got %v", got)
	}
	if translate(nil, "project") != nil {
		t.Fatal("nil should stay nil")
	}
}
