package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cineticket/cineticket-api/internal/model"
)

// CinemaRepo provides access to the cinemas table.
type CinemaRepo struct {
	db *sql.DB
}

// NewCinemaRepo returns a CinemaRepo bound to db.
func NewCinemaRepo(db *sql.DB) *CinemaRepo { return &CinemaRepo{db: db} }

const cinemaColumns = `id, name, address, phone_number, description, image_url, created_at, updated_at`

func scanCinema(s rowScanner) (*model.Cinema, error) {
	var c model.Cinema
	if err := s.Scan(&c.ID, &c.Name, &c.Address, &c.PhoneNumber, &c.Description, &c.ImageURL, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

// Create inserts a cinema and populates its ID and timestamps.
func (r *CinemaRepo) Create(ctx context.Context, c *model.Cinema) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO cinemas (name, address, phone_number, description, image_url) VALUES (?, ?, ?, ?, ?)`,
		c.Name, c.Address, c.PhoneNumber, c.Description, c.ImageURL)
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
	*c = *created
	return nil
}

// GetByID returns ErrCinemaNotFound when the cinema does not exist.
func (r *CinemaRepo) GetByID(ctx context.Context, id uint64) (*model.Cinema, error) {
	c, err := scanCinema(r.db.QueryRowContext(ctx, `SELECT `+cinemaColumns+` FROM cinemas WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrCinemaNotFound
	}
	return c, err
}

// List returns all cinemas ordered by name.
func (r *CinemaRepo) List(ctx context.Context) ([]model.Cinema, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+cinemaColumns+` FROM cinemas ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Cinema{}
	for rows.Next() {
		c, err := scanCinema(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
