package storage

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// ValidationError marks a single record whose field violates its documented
// domain. The batch skips the record and continues.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// IntegrityError marks a broken pipeline invariant: a foreign key pointing at
// a missing reference row, or a uniqueness conflict the upsert could not
// resolve. It aborts the current batch transaction.
type IntegrityError struct {
	Table      string
	Constraint string
	Err        error
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("integrity violation on %s (%s): %v", e.Table, e.Constraint, e.Err)
}

func (e *IntegrityError) Unwrap() error { return e.Err }

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsIntegrity reports whether err is (or wraps) an IntegrityError.
func IsIntegrity(err error) bool {
	var ie *IntegrityError
	return errors.As(err, &ie)
}

// SQLSTATE classes surfaced by Postgres for constraint failures.
const (
	pgForeignKeyViolation = "23503"
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	pgNumericOutOfRange   = "22003"
)

// classify maps a driver error onto the taxonomy. Foreign-key and unique
// violations reaching us past ON CONFLICT mean the resolver or router broke an
// invariant; check violations mean a value the normalizer should have refused.
func classify(table string, err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return fmt.Errorf("write to %s: %w", table, err)
	}
	switch pgErr.Code {
	case pgForeignKeyViolation, pgUniqueViolation:
		return &IntegrityError{Table: table, Constraint: pgErr.ConstraintName, Err: err}
	case pgCheckViolation, pgNumericOutOfRange:
		return &ValidationError{Field: pgErr.ConstraintName, Reason: pgErr.Message}
	}
	return fmt.Errorf("write to %s: %w", table, err)
}
