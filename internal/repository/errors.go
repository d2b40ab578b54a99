package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"hotelcore/internal/pkg/apperror"
)

// ErrStaleWrite is returned when a compare-and-set update matched no row
// because another writer got there first.
var ErrStaleWrite = errors.New("stale write")

const (
	pgExclusionViolation = "23P01"
	pgUniqueViolation    = "23505"
	pgSerialization      = "40001"
	pgDeadlock           = "40P01"
	pgLockNotAvailable   = "55P03"
	pgQueryCanceled      = "57014"
)

// IsUniqueViolation reports a duplicate key on either backend.
func IsUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == pgUniqueViolation
	}
	return errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// IsOverlapViolation reports that the bookings_no_overlap constraint fired.
func IsOverlapViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgExclusionViolation
}

// IsContention reports storage-side timeouts and lock conflicts. Callers may
// retry the whole operation.
func IsContention(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return true
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case pgSerialization, pgDeadlock, pgLockNotAvailable, pgQueryCanceled:
			return true
		}
		return false
	}
	msg := err.Error()
	return strings.Contains(msg, "database is locked") || strings.Contains(msg, "SQLITE_BUSY")
}

// Classify maps raw storage errors into the caller-facing taxonomy. Errors
// that already carry a kind pass through untouched.
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperror.As(err); ok {
		return err
	}
	switch {
	case IsOverlapViolation(err):
		return apperror.RoomUnavailable("ROOM_UNAVAILABLE", "room is already booked for the requested dates")
	case IsContention(err):
		return apperror.Unavailable(err)
	}
	return fmt.Errorf("storage: %w", err)
}

func notFound(err error, entity string, id any) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return apperror.NotFound(entity, id)
	}
	return err
}
