package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ScreeningStatus is the lifecycle state of a screening.
type ScreeningStatus string

const (
	ScreeningScheduled ScreeningStatus = "Scheduled"
	ScreeningCancelled ScreeningStatus = "Cancelled"
	ScreeningCompleted ScreeningStatus = "Completed"
)

// Valid reports whether s is one of the known statuses.
func (s ScreeningStatus) Valid() bool {
	switch s {
	case ScreeningScheduled, ScreeningCancelled, ScreeningCompleted:
		return true
	}
	return false
}

// CanMoveTo reports whether a screening in status s may be set to next.
// Cancelled and Completed are final.
func (s ScreeningStatus) CanMoveTo(next ScreeningStatus) bool {
	if s == next {
		return true
	}
	return s == ScreeningScheduled && next.Valid()
}

// Screening represents a scheduled showing of a movie in a particular
// hall.  The hall determines the seat inventory; Price is charged per
// seat regardless of seat type.
//
// Fields:
//  ID        – primary key identifier.
//  MovieID   – movie being shown.
//  HallID    – hall where the screening takes place.
//  StartTime – when the screening begins.
//  EndTime   – when the screening ends (must be after StartTime).
//  Price     – per-seat price.
//  Status    – Scheduled, Cancelled or Completed.
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Screening struct {
	ID        uint64          `json:"id"`        // screenings.id
	MovieID   uint64          `json:"movieId"`   // screenings.movie_id
	HallID    uint64          `json:"hallId"`    // screenings.hall_id
	StartTime time.Time       `json:"startTime"` // screenings.start_time
	EndTime   time.Time       `json:"endTime"`   // screenings.end_time
	Price     decimal.Decimal `json:"price"`     // screenings.price
	Status    ScreeningStatus `json:"status"`    // screenings.status
	CreatedAt time.Time       `json:"createdAt"` // screenings.created_at
	UpdatedAt time.Time       `json:"updatedAt"` // screenings.updated_at
}

// Bookable reports whether new bookings may be taken for the screening
// at the given instant.
func (s *Screening) Bookable(now time.Time) bool {
	return s.Status == ScreeningScheduled && now.Before(s.StartTime)
}

// ScreeningDetail is a screening joined with the names a client needs
// to render a listing or seat map header.
type ScreeningDetail struct {
	Screening
	MovieTitle  string `json:"movieTitle"`
	MoviePoster string `json:"moviePoster"`
	CinemaID    uint64 `json:"cinemaId"`
	CinemaName  string `json:"cinemaName"`
	HallName    string `json:"hallName"`
}
