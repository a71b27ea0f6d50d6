package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cineticket/cineticket-api/internal/model"
)

// ScreeningRepo manages persistence for screenings.
type ScreeningRepo struct {
	db *sql.DB
}

// NewScreeningRepo returns a ScreeningRepo bound to db.
func NewScreeningRepo(db *sql.DB) *ScreeningRepo { return &ScreeningRepo{db: db} }

// ErrScreeningOverlap is returned by Create when the hall already has a
// screening in the requested time window.
var ErrScreeningOverlap = fmt.Errorf("hall already has a screening in that time window: %w", ErrConflict)

const screeningDetailSelect = `SELECT sc.id, sc.movie_id, sc.hall_id, sc.start_time, sc.end_time, sc.price, sc.status,
	sc.created_at, sc.updated_at, m.title, m.poster_url, c.id, c.name, h.name
	FROM screenings sc
	JOIN movies m       ON m.id = sc.movie_id
	JOIN cinema_halls h ON h.id = sc.hall_id
	JOIN cinemas c      ON c.id = h.cinema_id`

func scanScreeningDetail(s rowScanner) (*model.ScreeningDetail, error) {
	var d model.ScreeningDetail
	if err := s.Scan(&d.ID, &d.MovieID, &d.HallID, &d.StartTime, &d.EndTime, &d.Price, &d.Status,
		&d.CreatedAt, &d.UpdatedAt, &d.MovieTitle, &d.MoviePoster, &d.CinemaID, &d.CinemaName, &d.HallName); err != nil {
		return nil, err
	}
	return &d, nil
}

// GetByID returns the screening with its movie, cinema and hall names, or
// ErrScreeningNotFound.
func (r *ScreeningRepo) GetByID(ctx context.Context, id uint64) (*model.ScreeningDetail, error) {
	d, err := scanScreeningDetail(r.db.QueryRowContext(ctx, screeningDetailSelect+` WHERE sc.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrScreeningNotFound
	}
	return d, err
}

func (r *ScreeningRepo) list(ctx context.Context, where string, args ...any) ([]model.ScreeningDetail, error) {
	rows, err := r.db.QueryContext(ctx, screeningDetailSelect+` WHERE `+where+` ORDER BY sc.start_time ASC, sc.id ASC`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.ScreeningDetail{}
	for rows.Next() {
		d, err := scanScreeningDetail(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *d)
	}
	return out, rows.Err()
}

// ListByMovie returns scheduled screenings of a movie starting after from.
func (r *ScreeningRepo) ListByMovie(ctx context.Context, movieID uint64, from time.Time) ([]model.ScreeningDetail, error) {
	return r.list(ctx, `sc.movie_id = ? AND sc.status = ? AND sc.start_time > ?`, movieID, model.ScreeningScheduled, from)
}

// ListByCinema returns scheduled screenings in any hall of a cinema
// starting after from.
func (r *ScreeningRepo) ListByCinema(ctx context.Context, cinemaID uint64, from time.Time) ([]model.ScreeningDetail, error) {
	return r.list(ctx, `c.id = ? AND sc.status = ? AND sc.start_time > ?`, cinemaID, model.ScreeningScheduled, from)
}

// Create inserts a screening after checking, under a lock on the hall
// row, that no other non-cancelled screening in the hall overlaps
// [StartTime, EndTime).  Referenced movie and hall must exist.
func (r *ScreeningRepo) Create(ctx context.Context, s *model.Screening) (err error) {
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
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM movies WHERE id = ?`, s.MovieID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrMovieNotFound
		}
		return err
	}
	if err = tx.QueryRowContext(ctx, `SELECT 1 FROM cinema_halls WHERE id = ? FOR UPDATE`, s.HallID).Scan(&one); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrHallNotFound
		}
		return err
	}
	var overlapping int
	if err = tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM screenings
		WHERE hall_id = ? AND status <> ? AND start_time < ? AND end_time > ?`,
		s.HallID, model.ScreeningCancelled, s.EndTime, s.StartTime).Scan(&overlapping); err != nil {
		return err
	}
	if overlapping > 0 {
		return ErrScreeningOverlap
	}
	if s.Status == "" {
		s.Status = model.ScreeningScheduled
	}
	res, err := tx.ExecContext(ctx, `INSERT INTO screenings (movie_id, hall_id, start_time, end_time, price, status)
		VALUES (?, ?, ?, ?, ?, ?)`, s.MovieID, s.HallID, s.StartTime, s.EndTime, s.Price, s.Status)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	if err = tx.QueryRowContext(ctx, `SELECT created_at, updated_at FROM screenings WHERE id = ?`, s.ID).
		Scan(&s.CreatedAt, &s.UpdatedAt); err != nil {
		return err
	}
	return tx.Commit()
}

// UpdateStatus moves a screening to status under a row lock.  Leaving
// Scheduled is final; see model.ScreeningStatus.CanMoveTo.  Cancelling a
// screening also cancels its live bookings, refunding paid ones, and
// releases their seats.  It returns how many bookings were cancelled.
func (r *ScreeningRepo) UpdateStatus(ctx context.Context, id uint64, status model.ScreeningStatus) (cancelled int, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	var current model.ScreeningStatus
	if err = tx.QueryRowContext(ctx, `SELECT status FROM screenings WHERE id = ? FOR UPDATE`, id).Scan(&current); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrScreeningNotFound
		}
		return 0, err
	}
	if !current.CanMoveTo(status) {
		return 0, ErrScreeningStatusFinal
	}
	if current == status {
		return 0, tx.Commit()
	}
	if _, err = tx.ExecContext(ctx, `UPDATE screenings SET status = ? WHERE id = ?`, status, id); err != nil {
		return 0, err
	}
	if status == model.ScreeningCancelled {
		res, err := tx.ExecContext(ctx, `UPDATE bookings
			SET booking_status = ?, payment_status = IF(payment_status = ?, ?, payment_status)
			WHERE screening_id = ? AND booking_status <> ?`,
			model.BookingCancelled, model.PaymentPaid, model.PaymentRefunded, id, model.BookingCancelled)
		if err != nil {
			return 0, err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return 0, err
		}
		cancelled = int(n)
		if _, err = tx.ExecContext(ctx, `UPDATE booking_seats SET active = NULL WHERE screening_id = ? AND active = 1`, id); err != nil {
			return 0, err
		}
	}
	return cancelled, tx.Commit()
}
