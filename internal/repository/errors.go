package repository

import (
	"errors"

	apperrors "go-gin-invitation/pkg/app_errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"

	constraintGuestSlug = "guests_unique_slug_key"
	constraintUserEmail = "users_email_key"
)

// translate maps pgx errors onto the app sentinels. ErrNoRows becomes
// notFound; anything else is reported as a backend failure.
func translate(err error, notFound error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return notFound
	}
	return apperrors.Backend(err)
}

func pgError(err error) (*pgconn.PgError, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr, true
	}
	return nil, false
}

func isUniqueViolation(err error, constraint string) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgUniqueViolation && pgErr.ConstraintName == constraint
}

func isForeignKeyViolation(err error) bool {
	pgErr, ok := pgError(err)
	return ok && pgErr.Code == pgForeignKeyViolation
}

// nullable stores "" as NULL so optional columns read back unset.
func nullable(s *string) *string {
	if s == nil || *s == "" {
		return nil
	}
	return s
}
