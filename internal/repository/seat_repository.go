package repository // repository defines data access for seats

import (
	"context"
	"database/sql"
	"strings"

	"github.com/cineticket/cineticket-api/internal/model"
)

// SeatRepo reads the seat inventory of halls.  Seats are written only by
// HallRepo.CreateWithSeats.
type SeatRepo struct {
	db *sql.DB
}

// NewSeatRepo constructs a SeatRepo with the given DB handle.
func NewSeatRepo(db *sql.DB) *SeatRepo {
	return &SeatRepo{db: db}
}

const seatColumns = `s.id, s.hall_id, s.row_label, s.seat_number, s.seat_type, s.created_at`

// placeholders returns "?, ?, ?" for n arguments.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

func idArgs(ids []uint64) []any {
	out := make([]any, len(ids))
	for i, id := range ids {
		out[i] = id
	}
	return out
}

// ListByHall retrieves all seats of a hall in row order (A..Z, AA..) then by seat number.
func (r *SeatRepo) ListByHall(ctx context.Context, hallID uint64) ([]model.Seat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+seatColumns+` FROM seats s
		WHERE s.hall_id = ? ORDER BY CHAR_LENGTH(s.row_label), s.row_label, s.seat_number`, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Seat{}
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListByIDs returns the subset of ids that are seats of hallID.  Ids that
// do not exist or belong to another hall are silently absent.
func (r *SeatRepo) ListByIDs(ctx context.Context, hallID uint64, ids []uint64) ([]model.Seat, error) {
	if len(ids) == 0 {
		return []model.Seat{}, nil
	}
	args := append([]any{hallID}, idArgs(ids)...)
	rows, err := r.db.QueryContext(ctx, `SELECT `+seatColumns+` FROM seats s
		WHERE s.hall_id = ? AND s.id IN (`+placeholders(len(ids))+`)
		ORDER BY CHAR_LENGTH(s.row_label), s.row_label, s.seat_number`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Seat, 0, len(ids))
	for rows.Next() {
		var s model.Seat
		if err := rows.Scan(&s.ID, &s.HallID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListForScreening returns every seat of the screening's hall annotated
// with IsBooked, which is true when an active booking_seats row exists for
// the seat in this screening.  Claims on other screenings are ignored.
func (r *SeatRepo) ListForScreening(ctx context.Context, screeningID, hallID uint64) ([]model.ScreeningSeat, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+seatColumns+`, bs.id IS NOT NULL AS is_booked
		FROM seats s
		LEFT JOIN booking_seats bs
		       ON bs.seat_id = s.id AND bs.screening_id = ? AND bs.active = 1
		WHERE s.hall_id = ?
		ORDER BY CHAR_LENGTH(s.row_label), s.row_label, s.seat_number`, screeningID, hallID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ScreeningSeat{}
	for rows.Next() {
		var s model.ScreeningSeat
		if err := rows.Scan(&s.ID, &s.HallID, &s.RowLabel, &s.SeatNumber, &s.SeatType, &s.CreatedAt, &s.IsBooked); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
