package model

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus is the reservation state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "Pending"
	BookingConfirmed BookingStatus = "Confirmed"
	BookingCancelled BookingStatus = "Cancelled"
)

// PaymentStatus is the payment state of a booking.
type PaymentStatus string

const (
	PaymentUnpaid   PaymentStatus = "Unpaid"
	PaymentPaid     PaymentStatus = "Paid"
	PaymentRefunded PaymentStatus = "Refunded"
)

// ErrInvalidTransition is returned when a booking cannot move to the
// requested state from its current one.
var ErrInvalidTransition = errors.New("invalid booking state transition")

// Booking records a user's reservation of one or more seats for a
// single screening.  TotalAmount is fixed at creation time from the
// screening price and is never recomputed.
//
// State machine:
//
//	Pending/Unpaid --Pay-->    Confirmed/Paid
//	Pending/Unpaid --Cancel--> Cancelled/Unpaid
//	Confirmed/Paid --Cancel--> Cancelled/Refunded
type Booking struct {
	ID               uint64          `json:"id"`
	UserID           uint64          `json:"userId"`
	ScreeningID      uint64          `json:"screeningId"`
	Seats            []BookingSeat   `json:"seats"`
	TotalAmount      decimal.Decimal `json:"totalAmount"`
	Status           BookingStatus   `json:"bookingStatus"`
	PaymentStatus    PaymentStatus   `json:"paymentStatus"`
	PaymentMethod    *string         `json:"paymentMethod,omitempty"`
	PaymentReference *string         `json:"paymentReference,omitempty"`
	TransactionID    *string         `json:"transactionId,omitempty"`
	PaidAt           *time.Time      `json:"paidAt,omitempty"`
	CreatedAt        time.Time       `json:"createdAt"`
	UpdatedAt        time.Time       `json:"updatedAt"`
}

// NewBooking builds a Pending/Unpaid booking whose total is
// price × len(seatIDs).
func NewBooking(userID, screeningID uint64, price decimal.Decimal, seatIDs []uint64) *Booking {
	seats := make([]BookingSeat, 0, len(seatIDs))
	for _, id := range seatIDs {
		seats = append(seats, BookingSeat{ScreeningID: screeningID, SeatID: id, Active: true})
	}
	return &Booking{
		UserID:        userID,
		ScreeningID:   screeningID,
		Seats:         seats,
		TotalAmount:   price.Mul(decimal.NewFromInt(int64(len(seatIDs)))),
		Status:        BookingPending,
		PaymentStatus: PaymentUnpaid,
	}
}

// Active reports whether the booking still holds its seats.
func (b *Booking) Active() bool { return b.Status != BookingCancelled }

// SeatIDs returns the ids of the seats claimed by the booking.
func (b *Booking) SeatIDs() []uint64 {
	ids := make([]uint64, 0, len(b.Seats))
	for _, s := range b.Seats {
		ids = append(ids, s.SeatID)
	}
	return ids
}

// CanPay reports whether Pay would succeed.
func (b *Booking) CanPay() bool {
	return b.Status == BookingPending && b.PaymentStatus == PaymentUnpaid
}

// Pay confirms a pending booking and records the payment details.
func (b *Booking) Pay(method string, reference *string, transactionID string, at time.Time) error {
	if !b.CanPay() {
		return ErrInvalidTransition
	}
	b.Status = BookingConfirmed
	b.PaymentStatus = PaymentPaid
	b.PaymentMethod = &method
	b.PaymentReference = reference
	b.TransactionID = &transactionID
	b.PaidAt = &at
	b.UpdatedAt = at
	return nil
}

// Cancel releases the booking.  A paid booking is marked refunded.
func (b *Booking) Cancel(at time.Time) error {
	if b.Status == BookingCancelled {
		return ErrInvalidTransition
	}
	b.Status = BookingCancelled
	if b.PaymentStatus == PaymentPaid {
		b.PaymentStatus = PaymentRefunded
	}
	for i := range b.Seats {
		b.Seats[i].Active = false
	}
	b.UpdatedAt = at
	return nil
}

// BookingSeat claims one seat for one screening on behalf of a
// booking.  Active is cleared when the booking is cancelled so the
// row stays as history while the seat becomes available again.
type BookingSeat struct {
	ID          uint64   `json:"id"`
	BookingID   uint64   `json:"bookingId"`
	ScreeningID uint64   `json:"screeningId"`
	SeatID      uint64   `json:"seatId"`
	RowLabel    string   `json:"row,omitempty"`
	SeatNumber  uint32   `json:"number,omitempty"`
	SeatType    SeatType `json:"seatType,omitempty"`
	Active      bool     `json:"-"`
}
