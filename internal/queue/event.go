// Package queue defines the booking events exchanged over RabbitMQ and the
// publisher and consumer that move them.
package queue

import (
	"strconv"
	"time"

	"github.com/cineticket/cineticket-api/internal/model"
)

// Event types double as routing keys on the bookings exchange.
const (
	EventBookingCreated   = "booking.created"
	EventBookingConfirmed = "booking.confirmed"
	EventBookingCancelled = "booking.cancelled"
)

// BookingEvent is published after a booking changes state.  It carries
// enough information for downstream consumers to log, notify or trigger
// analytics without querying the primary database.
type BookingEvent struct {
	Type          string    `json:"type"`
	BookingID     uint64    `json:"bookingId"`
	UserID        uint64    `json:"userId"`
	ScreeningID   uint64    `json:"screeningId"`
	MovieTitle    string    `json:"movieTitle,omitempty"`
	CinemaName    string    `json:"cinemaName,omitempty"`
	HallName      string    `json:"hallName,omitempty"`
	StartTime     time.Time `json:"startTime"`
	SeatLabels    []string  `json:"seats"`
	TotalAmount   string    `json:"totalAmount"`
	BookingStatus string    `json:"bookingStatus"`
	PaymentStatus string    `json:"paymentStatus"`
	TransactionID string    `json:"transactionId,omitempty"`
	Reason        string    `json:"reason,omitempty"`
	OccurredAt    time.Time `json:"occurredAt"`
}

// NewBookingEvent snapshots b.  screening may be nil when the caller has
// not loaded it.
func NewBookingEvent(typ string, b *model.Booking, screening *model.ScreeningDetail, at time.Time) BookingEvent {
	ev := BookingEvent{
		Type:          typ,
		BookingID:     b.ID,
		UserID:        b.UserID,
		ScreeningID:   b.ScreeningID,
		SeatLabels:    make([]string, 0, len(b.Seats)),
		TotalAmount:   b.TotalAmount.StringFixed(2),
		BookingStatus: string(b.Status),
		PaymentStatus: string(b.PaymentStatus),
		OccurredAt:    at.UTC(),
	}
	if b.TransactionID != nil {
		ev.TransactionID = *b.TransactionID
	}
	for _, s := range b.Seats {
		if s.RowLabel != "" {
			ev.SeatLabels = append(ev.SeatLabels, s.RowLabel+strconv.FormatUint(uint64(s.SeatNumber), 10))
		} else {
			ev.SeatLabels = append(ev.SeatLabels, "#"+strconv.FormatUint(s.SeatID, 10))
		}
	}
	if screening != nil {
		ev.MovieTitle = screening.MovieTitle
		ev.CinemaName = screening.CinemaName
		ev.HallName = screening.HallName
		ev.StartTime = screening.StartTime
	}
	return ev
}
