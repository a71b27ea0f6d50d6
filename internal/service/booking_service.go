// Package service implements the booking domain on top of the repository
// layer: seat availability, booking creation, payment, cancellation and the
// expiry of unpaid bookings.  It also hosts the catalog, review and auth
// services used by the HTTP handlers.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/queue"
	"github.com/cineticket/cineticket-api/internal/repository"
)

// ScreeningReader loads screenings with their display names.
type ScreeningReader interface {
	GetByID(ctx context.Context, id uint64) (*model.ScreeningDetail, error)
}

// SeatReader reads hall seat inventory.
type SeatReader interface {
	ListByIDs(ctx context.Context, hallID uint64, ids []uint64) ([]model.Seat, error)
	ListForScreening(ctx context.Context, screeningID, hallID uint64) ([]model.ScreeningSeat, error)
}

// BookingStore persists bookings.  Create must claim the seats atomically:
// if any seat already has an active claim on the screening it returns the
// taken seat ids and writes nothing.
type BookingStore interface {
	Create(ctx context.Context, b *model.Booking) (taken []uint64, err error)
	GetByID(ctx context.Context, id uint64) (*model.Booking, error)
	ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error)
	ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*model.Booking, error)
	MarkPaid(ctx context.Context, b *model.Booking) error
	Cancel(ctx context.Context, b *model.Booking, prev model.PaymentStatus) error
}

// EventPublisher receives booking events after they are committed.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}

// BookingOptions tunes a BookingService.  Zero values select defaults.
type BookingOptions struct {
	MaxSeats   int
	PendingTTL time.Duration
	BatchSize  int
	Now        func() time.Time
	NewTxID    func() string
	Log        logrus.FieldLogger
}

// BookingService is the operation surface of the booking domain.
type BookingService struct {
	screenings ScreeningReader
	seats      SeatReader
	bookings   BookingStore
	events     EventPublisher

	maxSeats   int
	pendingTTL time.Duration
	batchSize  int
	now        func() time.Time
	newTxID    func() string
	log        logrus.FieldLogger
}

// NewBookingService wires the service.  events may be nil, in which case
// no events are published.
func NewBookingService(screenings ScreeningReader, seats SeatReader, bookings BookingStore, events EventPublisher, opts BookingOptions) *BookingService {
	s := &BookingService{
		screenings: screenings,
		seats:      seats,
		bookings:   bookings,
		events:     events,
		maxSeats:   opts.MaxSeats,
		pendingTTL: opts.PendingTTL,
		batchSize:  opts.BatchSize,
		now:        opts.Now,
		newTxID:    opts.NewTxID,
		log:        opts.Log,
	}
	if s.maxSeats <= 0 {
		s.maxSeats = DefaultMaxSeats
	}
	if s.pendingTTL <= 0 {
		s.pendingTTL = 15 * time.Minute
	}
	if s.batchSize <= 0 {
		s.batchSize = 100
	}
	if s.now == nil {
		s.now = func() time.Time { return time.Now().UTC() }
	}
	if s.newTxID == nil {
		s.newTxID = func() string { return uuid.NewString() }
	}
	if s.log == nil {
		s.log = logrus.StandardLogger()
	}
	return s
}

// MaxSeats is the configured per-booking seat limit.
func (s *BookingService) MaxSeats() int { return s.maxSeats }

// SeatRow is one row of a seat map.
type SeatRow struct {
	Row   string                `json:"row"`
	Seats []model.ScreeningSeat `json:"seats"`
}

// ScreeningSeats is the seat map of one screening.
type ScreeningSeats struct {
	Screening      model.ScreeningDetail `json:"screening"`
	Rows           []SeatRow             `json:"rows"`
	TotalSeats     int                   `json:"totalSeats"`
	AvailableSeats int                   `json:"availableSeats"`
}

// GetScreeningSeats returns the screening with every seat of its hall
// annotated with isBooked, grouped by row in A…Z, AA… order and by seat
// number within a row.
func (s *BookingService) GetScreeningSeats(ctx context.Context, screeningID uint64) (*ScreeningSeats, error) {
	sc, err := s.screenings.GetByID(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	seats, err := s.seats.ListForScreening(ctx, sc.ID, sc.HallID)
	if err != nil {
		return nil, fmt.Errorf("list seats for screening %d: %w", sc.ID, err)
	}
	sort.SliceStable(seats, func(i, j int) bool {
		return model.LessSeat(seats[i].RowLabel, seats[i].SeatNumber, seats[j].RowLabel, seats[j].SeatNumber)
	})
	out := &ScreeningSeats{Screening: *sc, Rows: []SeatRow{}, TotalSeats: len(seats)}
	for _, seat := range seats {
		if !seat.IsBooked {
			out.AvailableSeats++
		}
		if n := len(out.Rows); n == 0 || out.Rows[n-1].Row != seat.RowLabel {
			out.Rows = append(out.Rows, SeatRow{Row: seat.RowLabel})
		}
		last := &out.Rows[len(out.Rows)-1]
		last.Seats = append(last.Seats, seat)
	}
	return out, nil
}

// CreateBooking claims seatIDs on a screening for userID.  The new booking
// is Pending/Unpaid with total = price × seat count.
func (s *BookingService) CreateBooking(ctx context.Context, userID, screeningID uint64, seatIDs []uint64) (*model.Booking, error) {
	if screeningID == 0 {
		return nil, invalid("screeningId", "is required")
	}
	ids, err := s.normalizeSeatIDs(seatIDs)
	if err != nil {
		return nil, err
	}
	sc, err := s.screenings.GetByID(ctx, screeningID)
	if err != nil {
		return nil, err
	}
	if sc.Status != model.ScreeningScheduled {
		return nil, ErrScreeningClosed
	}
	if !sc.Bookable(s.now()) {
		return nil, ErrScreeningStarted
	}

	seats, err := s.seats.ListByIDs(ctx, sc.HallID, ids)
	if err != nil {
		return nil, fmt.Errorf("load seats: %w", err)
	}
	if len(seats) != len(ids) {
		found := make(map[uint64]model.Seat, len(seats))
		for _, st := range seats {
			found[st.ID] = st
		}
		for _, id := range ids {
			if _, ok := found[id]; !ok {
				return nil, invalid("seatIds", "seat %d does not belong to the screening's hall", id)
			}
		}
	}

	b := model.NewBooking(userID, sc.ID, sc.Price, ids)
	bySeat := make(map[uint64]model.Seat, len(seats))
	for _, st := range seats {
		bySeat[st.ID] = st
	}
	for i := range b.Seats {
		st := bySeat[b.Seats[i].SeatID]
		b.Seats[i].RowLabel = st.RowLabel
		b.Seats[i].SeatNumber = st.SeatNumber
		b.Seats[i].SeatType = st.SeatType
	}

	taken, err := s.bookings.Create(ctx, b)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrScreeningNotBookable):
			return nil, ErrScreeningClosed
		case errors.Is(err, ErrConflict):
			// Lost the race but the store could not tell which seats.
			return nil, ErrSeatsTaken
		}
		return nil, err
	}
	if len(taken) > 0 {
		return nil, &SeatConflictError{ScreeningID: sc.ID, SeatIDs: taken}
	}

	s.log.WithFields(logrus.Fields{
		"booking_id":   b.ID,
		"user_id":      userID,
		"screening_id": sc.ID,
		"seats":        len(ids),
		"total":        b.TotalAmount.String(),
	}).Info("booking created")
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingCreated, b, sc, s.now()))
	return b, nil
}

func (s *BookingService) normalizeSeatIDs(seatIDs []uint64) ([]uint64, error) {
	if len(seatIDs) == 0 {
		return nil, invalid("seatIds", "at least one seat is required")
	}
	ids := make([]uint64, 0, len(seatIDs))
	seen := make(map[uint64]struct{}, len(seatIDs))
	for _, id := range seatIDs {
		if id == 0 {
			return nil, invalid("seatIds", "seat ids must be positive")
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	if len(ids) > s.maxSeats {
		return nil, invalid("seatIds", "at most %d seats may be booked at once", s.maxSeats)
	}
	return ids, nil
}

// ProcessPayment records a successful payment on a pending booking owned by
// userID.  A booking that is no longer Pending yields ErrBookingNotPending
// and is left untouched.  Payment is refused with ErrScreeningClosed once
// the screening is cancelled, completed or has started.
func (s *BookingService) ProcessPayment(ctx context.Context, userID, bookingID uint64, method string, reference *string) (*model.Booking, error) {
	if bookingID == 0 {
		return nil, invalid("bookingId", "is required")
	}
	if method == "" {
		return nil, invalid("paymentMethod", "is required")
	}
	b, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if !b.CanPay() {
		return nil, ErrBookingNotPending
	}
	sc, err := s.screenings.GetByID(ctx, b.ScreeningID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if !sc.Bookable(now) {
		return nil, ErrScreeningClosed
	}
	if err := b.Pay(method, reference, s.newTxID(), now); err != nil {
		return nil, ErrBookingNotPending
	}
	if err := s.bookings.MarkPaid(ctx, b); err != nil {
		if errors.Is(err, ErrConflict) {
			return nil, ErrBookingNotPending
		}
		return nil, err
	}
	s.log.WithFields(logrus.Fields{
		"booking_id":     b.ID,
		"user_id":        userID,
		"transaction_id": *b.TransactionID,
		"method":         method,
	}).Info("booking paid")
	s.publish(ctx, queue.NewBookingEvent(queue.EventBookingConfirmed, b, sc, now))
	return b, nil
}

// CancelBooking cancels a booking owned by userID and frees its seats for
// the screening.  A paid booking is marked Refunded.  Cancelling is refused
// once the screening has started or is completed.
func (s *BookingService) CancelBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	b, err := s.owned(ctx, userID, bookingID)
	if err != nil {
		return nil, err
	}
	if b.Status == model.BookingCancelled {
		return nil, ErrAlreadyCancelled
	}
	sc, err := s.screenings.GetByID(ctx, b.ScreeningID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	if sc.Status == model.ScreeningCompleted || !now.Before(sc.StartTime) {
		return nil, ErrScreeningStarted
	}
	if err := s.cancel(ctx, b, sc, now, "customer"); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BookingService) cancel(ctx context.Context, b *model.Booking, sc *model.ScreeningDetail, now time.Time, reason string) error {
	prev := b.PaymentStatus
	if err := b.Cancel(now); err != nil {
		return ErrAlreadyCancelled
	}
	if err := s.bookings.Cancel(ctx, b, prev); err != nil {
		if errors.Is(err, ErrConflict) {
			return fmt.Errorf("booking %d changed concurrently: %w", b.ID, ErrConflict)
		}
		return err
	}
	s.log.WithFields(logrus.Fields{
		"booking_id":     b.ID,
		"screening_id":   b.ScreeningID,
		"payment_status": b.PaymentStatus,
		"reason":         reason,
	}).Info("booking cancelled")
	ev := queue.NewBookingEvent(queue.EventBookingCancelled, b, sc, now)
	ev.Reason = reason
	s.publish(ctx, ev)
	return nil
}

// ListBookings returns the user's bookings newest first.
func (s *BookingService) ListBookings(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	return s.bookings.ListByUser(ctx, userID)
}

// GetBooking returns one booking owned by userID.
func (s *BookingService) GetBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	return s.owned(ctx, userID, bookingID)
}

// ExpirePending cancels Pending/Unpaid bookings older than the pending TTL
// and returns how many were cancelled.  Bookings paid or cancelled in the
// meantime are skipped.
func (s *BookingService) ExpirePending(ctx context.Context) (int, error) {
	now := s.now()
	stale, err := s.bookings.ListExpiredPending(ctx, now.Add(-s.pendingTTL), s.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired bookings: %w", err)
	}
	n := 0
	for _, b := range stale {
		if err := ctx.Err(); err != nil {
			return n, err
		}
		if err := s.cancel(ctx, b, nil, now, "payment timeout"); err != nil {
			if errors.Is(err, ErrConflict) {
				continue
			}
			return n, err
		}
		n++
	}
	return n, nil
}

func (s *BookingService) owned(ctx context.Context, userID, bookingID uint64) (*model.Booking, error) {
	b, err := s.bookings.GetByID(ctx, bookingID)
	if err != nil {
		return nil, err
	}
	if b.UserID != userID {
		return nil, ErrForbidden
	}
	return b, nil
}

// publish is best effort: the booking is already committed.
func (s *BookingService) publish(ctx context.Context, ev queue.BookingEvent) {
	if s.events == nil {
		return
	}
	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 3*time.Second)
	defer cancel()
	if err := s.events.Publish(pctx, ev); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"event":      ev.Type,
			"booking_id": ev.BookingID,
		}).Warn("publish booking event failed")
	}
}
