package service

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/queue"
	"github.com/cineticket/cineticket-api/internal/repository"
)

type claimKey struct{ screening, seat uint64 }

// memStore is an in-memory stand-in for the screening, seat and booking
// repositories.  Create holds mu for the whole claim, like the row lock.
type memStore struct {
	mu         sync.Mutex
	screenings map[uint64]*model.ScreeningDetail
	seats      map[uint64]model.Seat
	bookings   map[uint64]*model.Booking
	claims     map[claimKey]uint64
	nextID     uint64
	createHook func()
	createErr  error
}

func newMemStore() *memStore {
	return &memStore{
		screenings: map[uint64]*model.ScreeningDetail{},
		seats:      map[uint64]model.Seat{},
		bookings:   map[uint64]*model.Booking{},
		claims:     map[claimKey]uint64{},
	}
}

// addHall registers seats A1,A2,B1,B2 (ids firstID..firstID+3) in hallID.
func (m *memStore) addHall(hallID, firstID uint64) {
	id := firstID
	for _, row := range []string{"A", "B"} {
		for n := uint32(1); n <= 2; n++ {
			m.seats[id] = model.Seat{ID: id, HallID: hallID, RowLabel: row, SeatNumber: n, SeatType: model.SeatStandard}
			id++
		}
	}
}

func (m *memStore) addScreening(id, hallID uint64, start time.Time, price int64) {
	m.screenings[id] = &model.ScreeningDetail{
		Screening: model.Screening{
			ID: id, MovieID: 1, HallID: hallID, StartTime: start, EndTime: start.Add(2 * time.Hour),
			Price: decimal.NewFromInt(price), Status: model.ScreeningScheduled,
		},
		MovieTitle: "Dune", CinemaName: "Galaxy", HallName: "Hall 1",
	}
}

func copyBooking(b *model.Booking) *model.Booking {
	c := *b
	c.Seats = append([]model.BookingSeat(nil), b.Seats...)
	return &c
}

func (m *memStore) GetByID(_ context.Context, id uint64) (*model.ScreeningDetail, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	sc, ok := m.screenings[id]
	if !ok {
		return nil, repository.ErrScreeningNotFound
	}
	c := *sc
	return &c, nil
}

func (m *memStore) ListByIDs(_ context.Context, hallID uint64, ids []uint64) ([]model.Seat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.Seat{}
	for _, id := range ids {
		if s, ok := m.seats[id]; ok && s.HallID == hallID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (m *memStore) ListForScreening(_ context.Context, screeningID, hallID uint64) ([]model.ScreeningSeat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []model.ScreeningSeat{}
	for _, s := range m.seats {
		if s.HallID != hallID {
			continue
		}
		_, booked := m.claims[claimKey{screeningID, s.ID}]
		out = append(out, model.ScreeningSeat{Seat: s, IsBooked: booked})
	}
	return out, nil
}

// bookingStore adapts memStore to BookingStore; GetByID collides with the
// screening reader otherwise.
type bookingStore struct{ *memStore }

func (b bookingStore) Create(_ context.Context, bk *model.Booking) ([]uint64, error) {
	m := b.memStore
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createHook != nil {
		m.createHook()
	}
	if m.createErr != nil {
		return nil, m.createErr
	}
	sc, ok := m.screenings[bk.ScreeningID]
	if !ok {
		return nil, repository.ErrScreeningNotFound
	}
	if sc.Status != model.ScreeningScheduled {
		return nil, repository.ErrScreeningNotBookable
	}
	var taken []uint64
	for _, id := range bk.SeatIDs() {
		if _, ok := m.claims[claimKey{bk.ScreeningID, id}]; ok {
			taken = append(taken, id)
		}
	}
	if len(taken) > 0 {
		return taken, nil
	}
	m.nextID++
	bk.ID = m.nextID
	bk.CreatedAt = time.Now().UTC()
	bk.UpdatedAt = bk.CreatedAt
	for i := range bk.Seats {
		bk.Seats[i].BookingID = bk.ID
		m.claims[claimKey{bk.ScreeningID, bk.Seats[i].SeatID}] = bk.ID
	}
	m.bookings[bk.ID] = copyBooking(bk)
	return nil, nil
}

func (b bookingStore) GetByID(_ context.Context, id uint64) (*model.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	bk, ok := b.bookings[id]
	if !ok {
		return nil, repository.ErrBookingNotFound
	}
	return copyBooking(bk), nil
}

func (b bookingStore) ListByUser(_ context.Context, userID uint64) ([]*model.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []*model.Booking{}
	for id := b.nextID; id > 0; id-- {
		if bk, ok := b.bookings[id]; ok && bk.UserID == userID {
			out = append(out, copyBooking(bk))
		}
	}
	return out, nil
}

func (b bookingStore) ListExpiredPending(_ context.Context, cutoff time.Time, limit int) ([]*model.Booking, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := []*model.Booking{}
	for id := uint64(1); id <= b.nextID && len(out) < limit; id++ {
		bk, ok := b.bookings[id]
		if ok && bk.Status == model.BookingPending && bk.PaymentStatus == model.PaymentUnpaid && bk.CreatedAt.Before(cutoff) {
			c := copyBooking(bk)
			c.Seats = nil
			out = append(out, c)
		}
	}
	return out, nil
}

func (b bookingStore) MarkPaid(_ context.Context, bk *model.Booking) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.bookings[bk.ID]
	if !ok || cur.Status != model.BookingPending || cur.PaymentStatus != model.PaymentUnpaid {
		return repository.ErrConflict
	}
	b.bookings[bk.ID] = copyBooking(bk)
	return nil
}

func (b bookingStore) Cancel(_ context.Context, bk *model.Booking, prev model.PaymentStatus) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	cur, ok := b.bookings[bk.ID]
	if !ok || cur.Status == model.BookingCancelled || cur.PaymentStatus != prev {
		return repository.ErrConflict
	}
	cur.Status = model.BookingCancelled
	cur.PaymentStatus = bk.PaymentStatus
	for i := range cur.Seats {
		cur.Seats[i].Active = false
		delete(b.claims, claimKey{cur.ScreeningID, cur.Seats[i].SeatID})
	}
	return nil
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}
