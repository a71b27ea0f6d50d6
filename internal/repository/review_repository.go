package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/cineticket/cineticket-api/internal/model"
)

// ReviewRepo stores movie reviews.  (movie_id, user_id) is unique.
type ReviewRepo struct {
	db *sql.DB
}

func NewReviewRepo(db *sql.DB) *ReviewRepo { return &ReviewRepo{db: db} }

const reviewSelect = `SELECT r.id, r.movie_id, r.user_id,
	TRIM(CONCAT(u.first_name, ' ', u.last_name)), u.email, r.rating, r.content, r.created_at, r.updated_at
	FROM reviews r JOIN users u ON u.id = r.user_id`

func scanReview(s rowScanner) (*model.Review, error) {
	var (
		rv    model.Review
		email string
	)
	if err := s.Scan(&rv.ID, &rv.MovieID, &rv.UserID, &rv.UserName, &email, &rv.Rating, &rv.Content, &rv.CreatedAt, &rv.UpdatedAt); err != nil {
		return nil, err
	}
	if rv.UserName == "" {
		rv.UserName = email
	}
	return &rv, nil
}

// ListByMovie returns the movie's reviews newest first.
func (r *ReviewRepo) ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error) {
	rows, err := r.db.QueryContext(ctx, reviewSelect+` WHERE r.movie_id = ? ORDER BY r.created_at DESC, r.id DESC`, movieID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Review{}
	for rows.Next() {
		rv, err := scanReview(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *rv)
	}
	return out, rows.Err()
}

// GetByID returns ErrReviewNotFound when missing.
func (r *ReviewRepo) GetByID(ctx context.Context, id uint64) (*model.Review, error) {
	rv, err := scanReview(r.db.QueryRowContext(ctx, reviewSelect+` WHERE r.id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrReviewNotFound
	}
	return rv, err
}

// Create inserts rv.  A second review of the same movie by the same user
// returns ErrConflict.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	res, err := r.db.ExecContext(ctx, `INSERT INTO reviews (movie_id, user_id, rating, content) VALUES (?, ?, ?, ?)`,
		rv.MovieID, rv.UserID, rv.Rating, rv.Content)
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
	created, err := r.GetByID(ctx, uint64(id))
	if err != nil {
		return err
	}
	*rv = *created
	return nil
}

// Delete removes a review by id.
func (r *ReviewRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM reviews WHERE id = ?`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrReviewNotFound
	}
	return nil
}
