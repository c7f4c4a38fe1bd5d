package store

import (
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"taxi_ledger/internal/apperrors"
)

// MigrationHint is shown when the database schema lags behind the code.
const MigrationHint = "The database schema is out of date. Run the server with DB_AUTO_MIGRATE=true or apply the migrations in internal/config/migrations."

// Postgres SQLSTATE codes the store reacts to.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqUndefinedColumn     = "42703"
	pqUndefinedTable      = "42P01"
)

// classify turns a gorm/pq error into an *apperrors.AppError. notFound is
// the message used for gorm.ErrRecordNotFound, conflict for unique
// violations.
func classify(err error, notFound, conflict, fallback string) error {
	if err == nil {
		return nil
	}
	var ae *apperrors.AppError
	if errors.As(err, &ae) {
		return ae
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperrors.Wrap(err, apperrors.CodeNotFound, notFound)
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		switch pqErr.Code {
		case pqUniqueViolation:
			return apperrors.Wrap(err, apperrors.CodeConflict, conflict)
		case pqForeignKeyViolation:
			return apperrors.Wrap(err, apperrors.CodeReference, "Referenced driver does not exist.")
		case pqUndefinedColumn, pqUndefinedTable:
			return apperrors.Wrap(err, apperrors.CodeSchema, MigrationHint)
		}
	}
	return apperrors.Wrap(err, apperrors.CodeInternal, fallback)
}

// validID rejects driver ids that can never match a row, so lookups with
// garbage ids report "not found" instead of a Postgres cast error.
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
