// Package repository defines sentinel error values shared across
// repositories. Services translate these into the typed error taxonomy
// exposed to callers; no raw database error crosses the service boundary.
package repository

import (
	"errors"

	"github.com/lib/pq"
)

// ErrSectionNotFound is returned when the target section row does not exist.
var ErrSectionNotFound = errors.New("section not found")

// ErrSectionFull is returned when a registration would exceed the section
// capacity. The check happens under the row lock, so a Full result is final
// for the attempted transaction.
var ErrSectionFull = errors.New("section full")

// ErrAlreadyEnrolled is returned when the (student, section) ledger row
// already exists. Detected via the unique constraint rather than a pre-read.
var ErrAlreadyEnrolled = errors.New("already enrolled")

// ErrNotEnrolled is returned when a drop affects zero ledger rows.
var ErrNotEnrolled = errors.New("not enrolled")

// pqUniqueViolation is the PostgreSQL error code for unique_violation.
const pqUniqueViolation = "23505"

func isUniqueViolation(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return string(pqErr.Code) == pqUniqueViolation
	}
	return false
}
