package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/cineticket/cineticket-api/internal/model"
)

// MovieRepo reads and writes the movie catalog.
type MovieRepo struct {
	db *sql.DB
}

// NewMovieRepo returns a MovieRepo bound to db.
func NewMovieRepo(db *sql.DB) *MovieRepo { return &MovieRepo{db: db} }

const movieColumns = `m.id, m.title, m.description, m.poster_url, m.backdrop_url, m.genre,
	m.release_date, m.end_date, m.duration_minutes, m.rating, m.trailer_url, m.created_at, m.updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanMovie(s rowScanner) (*model.Movie, error) {
	var (
		m       model.Movie
		endDate sql.NullTime
		trailer sql.NullString
	)
	if err := s.Scan(&m.ID, &m.Title, &m.Description, &m.PosterURL, &m.BackdropURL, &m.Genre,
		&m.ReleaseDate, &endDate, &m.DurationMinutes, &m.Rating, &trailer, &m.CreatedAt, &m.UpdatedAt); err != nil {
		return nil, err
	}
	if endDate.Valid {
		t := endDate.Time
		m.EndDate = &t
	}
	if trailer.Valid {
		v := trailer.String
		m.TrailerURL = &v
	}
	return &m, nil
}

func (r *MovieRepo) query(ctx context.Context, q string, args ...any) ([]model.Movie, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Movie{}
	for rows.Next() {
		m, err := scanMovie(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *m)
	}
	return out, rows.Err()
}

// List returns every movie, newest release first.
func (r *MovieRepo) List(ctx context.Context) ([]model.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies m ORDER BY m.release_date DESC, m.id DESC`)
}

// GetByID returns ErrMovieNotFound when no movie has the id.
func (r *MovieRepo) GetByID(ctx context.Context, id uint64) (*model.Movie, error) {
	m, err := scanMovie(r.db.QueryRowContext(ctx, `SELECT `+movieColumns+` FROM movies m WHERE m.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrMovieNotFound
	}
	return m, err
}

// NowShowing returns movies released on or before now whose run has not
// ended.  A NULL end date means the run is open ended.
func (r *MovieRepo) NowShowing(ctx context.Context, now time.Time) ([]model.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies m
		WHERE m.release_date <= ? AND (m.end_date IS NULL OR m.end_date >= ?)
		ORDER BY m.release_date DESC`, now, now)
}

// ComingSoon returns movies with a release date after now, soonest first.
func (r *MovieRepo) ComingSoon(ctx context.Context, now time.Time) ([]model.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies m
		WHERE m.release_date > ? ORDER BY m.release_date ASC`, now)
}

// Popular returns the limit highest rated movies.
func (r *MovieRepo) Popular(ctx context.Context, limit int) ([]model.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies m
		ORDER BY m.rating DESC, m.release_date DESC LIMIT ?`, limit)
}

// ByGenre matches the genre case-insensitively.
func (r *MovieRepo) ByGenre(ctx context.Context, genre string) ([]model.Movie, error) {
	return r.query(ctx, `SELECT `+movieColumns+` FROM movies m
		WHERE LOWER(m.genre) = ? ORDER BY m.release_date DESC`, strings.ToLower(strings.TrimSpace(genre)))
}

// Genres returns the distinct non-empty genres in alphabetical order.
func (r *MovieRepo) Genres(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT DISTINCT genre FROM movies WHERE genre <> '' ORDER BY genre`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []string{}
	for rows.Next() {
		var g string
		if err := rows.Scan(&g); err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// Create inserts m and reloads it so ID and timestamps are populated.
func (r *MovieRepo) Create(ctx context.Context, m *model.Movie) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO movies
		(title, description, poster_url, backdrop_url, genre, release_date, end_date, duration_minutes, rating, trailer_url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.Title, m.Description, m.PosterURL, m.BackdropURL, m.Genre, m.ReleaseDate, m.EndDate,
		m.DurationMinutes, m.Rating, m.TrailerURL)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*m = *created
	return nil
}
