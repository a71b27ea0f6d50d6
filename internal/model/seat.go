package model

import (
	"strconv"
	"strings"
	"time"
)

// SeatType classifies a seat for pricing display and seat-map colouring.
type SeatType string

const (
	SeatStandard SeatType = "Standard"
	SeatVIP      SeatType = "VIP"
	SeatCouple   SeatType = "Couple"
)

// ParseSeatType maps a case-insensitive label onto a SeatType.  The
// second return value is false for unknown labels.
func ParseSeatType(s string) (SeatType, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "":
		return SeatStandard, true
	case "vip":
		return SeatVIP, true
	case "couple":
		return SeatCouple, true
	}
	return "", false
}

// Seat describes a physical seat in a hall.  Seats are uniquely
// identified by their hall, row label and seat number and are never
// edited after creation.
//
// Fields:
//  ID         – primary key identifier.
//  HallID     – hall to which this seat belongs.
//  RowLabel   – letter or string designating the row.
//  SeatNumber – number of the seat within the row (1-based).
//  SeatType   – Standard, VIP or Couple.
//  CreatedAt  – creation timestamp.
type Seat struct {
	ID         uint64    `json:"id"`        // seats.id
	HallID     uint64    `json:"hallId"`    // seats.hall_id
	RowLabel   string    `json:"row"`       // seats.row_label
	SeatNumber uint32    `json:"number"`    // seats.seat_number
	SeatType   SeatType  `json:"seatType"`  // seats.seat_type
	CreatedAt  time.Time `json:"createdAt"` // seats.created_at
}

// Label returns the human readable seat name, e.g. "A1".
func (s Seat) Label() string {
	return s.RowLabel + strconv.FormatUint(uint64(s.SeatNumber), 10)
}

// ScreeningSeat is a seat annotated with its availability for one
// screening.
type ScreeningSeat struct {
	Seat
	IsBooked bool `json:"isBooked"`
}
