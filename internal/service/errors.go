package service

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/cineticket/cineticket-api/internal/repository"
)

// The service layer reuses the repository sentinels so handlers need only
// one set of errors.Is checks.
var (
	ErrNotFound  = repository.ErrNotFound
	ErrConflict  = repository.ErrConflict
	ErrForbidden = repository.ErrForbidden
)

var (
	ErrScreeningClosed   = fmt.Errorf("screening is not open for booking: %w", ErrConflict)
	ErrScreeningStarted  = fmt.Errorf("screening has already started: %w", ErrConflict)
	ErrBookingNotPending = fmt.Errorf("booking is not pending payment: %w", ErrConflict)
	ErrAlreadyCancelled  = fmt.Errorf("booking is already cancelled: %w", ErrConflict)
	ErrSeatsTaken        = fmt.Errorf("some seats were just taken, reload the seat map: %w", ErrConflict)
)

// ValidationError reports a malformed request.  Handlers map it to 400.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) error {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// SeatConflictError names the requested seats that already have an active
// claim on the screening.  It unwraps to ErrConflict.
type SeatConflictError struct {
	ScreeningID uint64
	SeatIDs     []uint64
}

func (e *SeatConflictError) Error() string {
	ids := append([]uint64(nil), e.SeatIDs...)
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.FormatUint(id, 10)
	}
	return "seats already booked: " + strings.Join(parts, ", ")
}

func (e *SeatConflictError) Unwrap() error { return ErrConflict }
