package repository

import (
	"context"
	"strings"

	"github.com/cineticket/cineticket-api/internal/model"
)

// MovieSearchQuery defines filters and pagination for searching movies.
type MovieSearchQuery struct {
	Title    string
	Genre    string
	Page     int
	PageSize int
}

// Normalize clamps paging to sane bounds.
func (q *MovieSearchQuery) Normalize() {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.PageSize < 1 {
		q.PageSize = 20
	}
	if q.PageSize > 100 {
		q.PageSize = 100
	}
}

// Search returns one page of movies matching q and the total match count.
func (r *MovieRepo) Search(ctx context.Context, q MovieSearchQuery) ([]model.Movie, int64, error) {
	q.Normalize()
	where := []string{}
	args := []any{}
	if t := strings.TrimSpace(q.Title); t != "" {
		where = append(where, "LOWER(m.title) LIKE ?")
		args = append(args, "%"+strings.ToLower(t)+"%")
	}
	if g := strings.TrimSpace(q.Genre); g != "" {
		where = append(where, "LOWER(m.genre) = ?")
		args = append(args, strings.ToLower(g))
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}

	var total int64
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM movies m WHERE `+cond, args...).Scan(&total); err != nil {
		return nil, 0, err
	}
	offset := (q.Page - 1) * q.PageSize
	dataArgs := append(append([]any{}, args...), q.PageSize, offset)
	out, err := r.query(ctx, `SELECT `+movieColumns+` FROM movies m WHERE `+cond+`
		ORDER BY m.release_date DESC, m.id DESC LIMIT ? OFFSET ?`, dataArgs...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}
