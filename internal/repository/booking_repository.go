package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/cineticket/cineticket-api/internal/model"
)

// ErrScreeningNotBookable is returned by Create when the screening is no
// longer Scheduled at the moment its row is locked.
var ErrScreeningNotBookable = fmt.Errorf("screening is not open for booking: %w", ErrConflict)

// BookingRepo persists bookings and their seat claims.  A seat claim is a
// booking_seats row whose active column is 1; cancelling a booking sets
// active to NULL so the row stays as history but no longer blocks the
// (screening_id, seat_id, active) unique key.
type BookingRepo struct {
	db *sql.DB
}

// NewBookingRepo returns a BookingRepo bound to db.
func NewBookingRepo(db *sql.DB) *BookingRepo { return &BookingRepo{db: db} }

const bookingColumns = `b.id, b.user_id, b.screening_id, b.total_amount, b.booking_status, b.payment_status,
	b.payment_method, b.payment_reference, b.transaction_id, b.paid_at, b.created_at, b.updated_at`

func scanBooking(s rowScanner) (*model.Booking, error) {
	var (
		b                 model.Booking
		method, ref, txID sql.NullString
		paidAt            sql.NullTime
	)
	if err := s.Scan(&b.ID, &b.UserID, &b.ScreeningID, &b.TotalAmount, &b.Status, &b.PaymentStatus,
		&method, &ref, &txID, &paidAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	b.PaymentMethod = nullStringPtr(method)
	b.PaymentReference = nullStringPtr(ref)
	b.TransactionID = nullStringPtr(txID)
	if paidAt.Valid {
		t := paidAt.Time
		b.PaidAt = &t
	}
	b.Seats = []model.BookingSeat{}
	return &b, nil
}

func nullStringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

// Create claims the seats of b for its screening and inserts the booking.
//
// The screening row is locked with SELECT ... FOR UPDATE so concurrent
// claims on the same screening serialize.  If any requested seat already
// has an active claim the transaction is rolled back and the taken seat
// ids are returned with a nil error; nothing is written.  On success b.ID,
// the seat row ids and the timestamps are populated.
func (r *BookingRepo) Create(ctx context.Context, b *model.Booking) (taken []uint64, err error) {
	seatIDs := b.SeatIDs()
	if len(seatIDs) == 0 {
		return nil, errors.New("booking has no seats")
	}
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	var status model.ScreeningStatus
	if err := tx.QueryRowContext(ctx, `SELECT status FROM screenings WHERE id = ? FOR UPDATE`, b.ScreeningID).Scan(&status); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrScreeningNotFound
		}
		return nil, err
	}
	if status != model.ScreeningScheduled {
		return nil, ErrScreeningNotBookable
	}

	taken, err = activeClaims(ctx, tx, b.ScreeningID, seatIDs)
	if err != nil {
		return nil, err
	}
	if len(taken) > 0 {
		return taken, nil
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO bookings (user_id, screening_id, total_amount, booking_status, payment_status)
		VALUES (?, ?, ?, ?, ?)`, b.UserID, b.ScreeningID, b.TotalAmount, b.Status, b.PaymentStatus)
	if err != nil {
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	b.ID = uint64(id)

	var sb strings.Builder
	sb.WriteString(`INSERT INTO booking_seats (booking_id, screening_id, seat_id, active) VALUES `)
	args := make([]any, 0, len(seatIDs)*3)
	for i, sid := range seatIDs {
		if i > 0 {
			sb.WriteString(",")
		}
		sb.WriteString("(?, ?, ?, 1)")
		args = append(args, b.ID, b.ScreeningID, sid)
	}
	if _, err := tx.ExecContext(ctx, sb.String(), args...); err != nil {
		if isDuplicateKey(err) {
			// A claim slipped in despite the lock.  Report which seats
			// are taken now that the transaction is gone.
			_ = tx.Rollback()
			committed = true
			taken, qerr := activeClaims(ctx, r.db, b.ScreeningID, seatIDs)
			if qerr == nil && len(taken) > 0 {
				return taken, nil
			}
			return nil, ErrConflict
		}
		return nil, err
	}

	if err := tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM bookings WHERE id = ?`, b.ID).
		Scan(&b.CreatedAt, &b.UpdatedAt); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, err
	}
	committed = true
	for i := range b.Seats {
		b.Seats[i].BookingID = b.ID
	}
	return nil, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// activeClaims returns, in ascending order, the subset of seatIDs that have
// an active claim on the screening.
func activeClaims(ctx context.Context, q queryer, screeningID uint64, seatIDs []uint64) ([]uint64, error) {
	args := append([]any{screeningID}, idArgs(seatIDs)...)
	rows, err := q.QueryContext(ctx, `SELECT seat_id FROM booking_seats
		WHERE screening_id = ? AND active = 1 AND seat_id IN (`+placeholders(len(seatIDs))+`)
		ORDER BY seat_id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []uint64
	for rows.Next() {
		var id uint64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

// GetByID returns the booking with its seats, or ErrBookingNotFound.
func (r *BookingRepo) GetByID(ctx context.Context, id uint64) (*model.Booking, error) {
	b, err := scanBooking(r.db.QueryRowContext(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.id = ?`, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	if err := r.loadSeats(ctx, []*model.Booking{b}); err != nil {
		return nil, err
	}
	return b, nil
}

// ListByUser returns the user's bookings newest first, seats included.
func (r *BookingRepo) ListByUser(ctx context.Context, userID uint64) ([]*model.Booking, error) {
	out, err := r.list(ctx, `SELECT `+bookingColumns+` FROM bookings b WHERE b.user_id = ?
		ORDER BY b.created_at DESC, b.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	if err := r.loadSeats(ctx, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ListExpiredPending returns at most limit Pending/Unpaid bookings created
// before cutoff, oldest first.  Seats are not loaded.
func (r *BookingRepo) ListExpiredPending(ctx context.Context, cutoff time.Time, limit int) ([]*model.Booking, error) {
	return r.list(ctx, `SELECT `+bookingColumns+` FROM bookings b
		WHERE b.booking_status = ? AND b.payment_status = ? AND b.created_at < ?
		ORDER BY b.created_at ASC LIMIT ?`,
		model.BookingPending, model.PaymentUnpaid, cutoff, limit)
}

func (r *BookingRepo) list(ctx context.Context, q string, args ...any) ([]*model.Booking, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []*model.Booking{}
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

// loadSeats fills Seats for every booking in one query.
func (r *BookingRepo) loadSeats(ctx context.Context, bookings []*model.Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	byID := make(map[uint64]*model.Booking, len(bookings))
	ids := make([]uint64, 0, len(bookings))
	for _, b := range bookings {
		byID[b.ID] = b
		ids = append(ids, b.ID)
	}
	rows, err := r.db.QueryContext(ctx, `SELECT bs.id, bs.booking_id, bs.screening_id, bs.seat_id, bs.active IS NOT NULL,
		       s.row_label, s.seat_number, s.seat_type
		FROM booking_seats bs
		JOIN seats s ON s.id = bs.seat_id
		WHERE bs.booking_id IN (`+placeholders(len(ids))+`)
		ORDER BY bs.booking_id, CHAR_LENGTH(s.row_label), s.row_label, s.seat_number`, idArgs(ids)...)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var s model.BookingSeat
		if err := rows.Scan(&s.ID, &s.BookingID, &s.ScreeningID, &s.SeatID, &s.Active,
			&s.RowLabel, &s.SeatNumber, &s.SeatType); err != nil {
			return err
		}
		if b, ok := byID[s.BookingID]; ok {
			b.Seats = append(b.Seats, s)
		}
	}
	if err := rows.Err(); err != nil {
		return err
	}
	for _, b := range bookings {
		seats := b.Seats
		sort.SliceStable(seats, func(i, j int) bool {
			return model.LessSeat(seats[i].RowLabel, seats[i].SeatNumber, seats[j].RowLabel, seats[j].SeatNumber)
		})
	}
	return nil
}

// MarkPaid persists the payment fields of b.  The update only applies while
// the stored row is still Pending/Unpaid; otherwise ErrConflict is returned
// and nothing changes.
func (r *BookingRepo) MarkPaid(ctx context.Context, b *model.Booking) error {
	res, err := r.db.ExecContext(ctx, `UPDATE bookings
		SET booking_status = ?, payment_status = ?, payment_method = ?, payment_reference = ?,
		    transaction_id = ?, paid_at = ?
		WHERE id = ? AND booking_status = ? AND payment_status = ?`,
		b.Status, b.PaymentStatus, b.PaymentMethod, b.PaymentReference, b.TransactionID, b.PaidAt,
		b.ID, model.BookingPending, model.PaymentUnpaid)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	return nil
}

// Cancel persists the cancellation of b and releases its seat claims.
// prev is the payment status the caller observed; if the stored row has
// moved on (already cancelled, or paid in the meantime) ErrConflict is
// returned and nothing changes.
func (r *BookingRepo) Cancel(ctx context.Context, b *model.Booking, prev model.PaymentStatus) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	res, err := tx.ExecContext(ctx, `UPDATE bookings SET booking_status = ?, payment_status = ?
		WHERE id = ? AND booking_status <> ? AND payment_status = ?`,
		model.BookingCancelled, b.PaymentStatus, b.ID, model.BookingCancelled, prev)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrConflict
	}
	if _, err = tx.ExecContext(ctx, `UPDATE booking_seats SET active = NULL WHERE booking_id = ? AND active = 1`, b.ID); err != nil {
		return err
	}
	return tx.Commit()
}
