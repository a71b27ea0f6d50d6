package repository // repository holds data access logic for domain entities

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/cineticket/cineticket-api/internal/model"
)

// HallRepo manages cinema halls and their seat inventory.  A hall and its
// seats are created together; seats are never edited afterwards.
type HallRepo struct {
	db *sql.DB
}

// NewHallRepo constructs a HallRepo with the given DB handle.
func NewHallRepo(db *sql.DB) *HallRepo {
	return &HallRepo{db: db}
}

const hallColumns = `id, cinema_id, name, capacity, hall_type, created_at, updated_at`

func scanHall(s rowScanner) (*model.Hall, error) {
	var h model.Hall
	if err := s.Scan(&h.ID, &h.CinemaID, &h.Name, &h.Capacity, &h.HallType, &h.CreatedAt, &h.UpdatedAt); err != nil {
		return nil, err
	}
	return &h, nil
}

// CreateWithSeats inserts h and its seat layout in one transaction.
// Capacity is set to len(seats).  The cinema must exist
// (ErrCinemaNotFound) and hall names are unique per cinema (ErrConflict).
func (r *HallRepo) CreateWithSeats(ctx context.Context, h *model.Hall, seats []model.Seat) (err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var one int
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM cinemas WHERE id = ?`, h.CinemaID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrCinemaNotFound
		}
		return err
	}

	h.Capacity = uint32(len(seats))
	res, err := tx.ExecContext(ctx,
		`INSERT INTO cinema_halls (cinema_id, name, capacity, hall_type) VALUES (?, ?, ?, ?)`,
		h.CinemaID, h.Name, h.Capacity, h.HallType)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	h.ID = uint64(id)

	if len(seats) > 0 {
		var sb strings.Builder
		sb.WriteString(`INSERT INTO seats (hall_id, row_label, seat_number, seat_type) VALUES `)
		args := make([]any, 0, len(seats)*4)
		for i := range seats {
			if i > 0 {
				sb.WriteString(",")
			}
			sb.WriteString("(?, ?, ?, ?)")
			seats[i].HallID = h.ID
			args = append(args, h.ID, seats[i].RowLabel, seats[i].SeatNumber, seats[i].SeatType)
		}
		if _, err = tx.ExecContext(ctx, sb.String(), args...); err != nil {
			if isDuplicateKey(err) {
				return ErrConflict
			}
			return err
		}
	}

	if err = tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM cinema_halls WHERE id = ?`, h.ID).
		Scan(&h.CreatedAt, &h.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// GetByID returns ErrHallNotFound when no row is found.
func (r *HallRepo) GetByID(ctx context.Context, id uint64) (*model.Hall, error) {
	h, err := scanHall(r.db.QueryRowContext(ctx, `SELECT `+hallColumns+` FROM cinema_halls WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrHallNotFound
	}
	return h, err
}

// ListByCinema returns the halls of one cinema ordered by name.
func (r *HallRepo) ListByCinema(ctx context.Context, cinemaID uint64) ([]model.Hall, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+hallColumns+` FROM cinema_halls WHERE cinema_id = ? ORDER BY name`, cinemaID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Hall{}
	for rows.Next() {
		h, err := scanHall(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *h)
	}
	return out, rows.Err()
}
