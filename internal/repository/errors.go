// Package repository holds the SQL data access layer.  Every repository
// works on a *sql.DB and speaks plain SQL against the MySQL schema in
// internal/database.
//
// Lookups that find nothing return one of the *NotFound sentinels below;
// all of them wrap ErrNotFound so callers that only care about "missing"
// can test for that.  ErrConflict signals that the row exists but is in a
// state that forbids the operation, e.g. paying a booking that is no
// longer pending.
package repository

import (
	"errors"
	"fmt"

	"github.com/go-sql-driver/mysql"
)

// ErrNotFound is the parent of every *NotFound sentinel.
var ErrNotFound = errors.New("not found")

var (
	ErrMovieNotFound     = fmt.Errorf("movie %w", ErrNotFound)
	ErrCinemaNotFound    = fmt.Errorf("cinema %w", ErrNotFound)
	ErrHallNotFound      = fmt.Errorf("hall %w", ErrNotFound)
	ErrScreeningNotFound = fmt.Errorf("screening %w", ErrNotFound)
	ErrBookingNotFound   = fmt.Errorf("booking %w", ErrNotFound)
	ErrReviewNotFound    = fmt.Errorf("review %w", ErrNotFound)
	ErrUserNotFound      = fmt.Errorf("user %w", ErrNotFound)
)

// ErrForbidden is returned when the caller attempts an operation on a
// resource they do not own.  Handlers translate it into 403.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when an insert or update cannot be performed
// because of conflicting state.  Handlers translate it into 409.
var ErrConflict = errors.New("conflict")

// ErrEmailExists is returned by UserRepo.Create for a duplicate address.
var ErrEmailExists = fmt.Errorf("email already exists: %w", ErrConflict)

// ErrScreeningStatusFinal is returned when a Cancelled or Completed
// screening would be moved to another status.
var ErrScreeningStatusFinal = fmt.Errorf("screening status is final: %w", ErrConflict)

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isDuplicateKey reports whether err is a MySQL unique-key violation.
func isDuplicateKey(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == mysqlDuplicateEntry
}
