package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/policy"
)

// ReviewStore persists reviews.
type ReviewStore interface {
	ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error)
	GetByID(ctx context.Context, id uint64) (*model.Review, error)
	Create(ctx context.Context, r *model.Review) error
	Delete(ctx context.Context, id uint64) error
}

// MovieGetter checks that a movie exists.
type MovieGetter interface {
	GetByID(ctx context.Context, id uint64) (*model.Movie, error)
}

const maxReviewLength = 2000

// ReviewService manages movie reviews.  A user reviews a movie at most once.
type ReviewService struct {
	reviews ReviewStore
	movies  MovieGetter
}

func NewReviewService(reviews ReviewStore, movies MovieGetter) *ReviewService {
	return &ReviewService{reviews: reviews, movies: movies}
}

func (s *ReviewService) ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error) {
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return nil, err
	}
	return s.reviews.ListByMovie(ctx, movieID)
}

// Create stores a review; a second review of the same movie by the same
// user is a conflict.
func (s *ReviewService) Create(ctx context.Context, userID, movieID uint64, rating int, content string) (*model.Review, error) {
	content = strings.TrimSpace(content)
	switch {
	case movieID == 0:
		return nil, invalid("movieId", "is required")
	case rating < 1 || rating > 5:
		return nil, invalid("rating", "must be between 1 and 5")
	case content == "":
		return nil, invalid("content", "is required")
	case utf8.RuneCountInString(content) > maxReviewLength:
		return nil, invalid("content", "must be at most %d characters", maxReviewLength)
	}
	if _, err := s.movies.GetByID(ctx, movieID); err != nil {
		return nil, err
	}
	r := &model.Review{MovieID: movieID, UserID: userID, Rating: uint8(rating), Content: content}
	if err := s.reviews.Create(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes a review.  Only its author or a role allowed to moderate
// reviews may delete it.
func (s *ReviewService) Delete(ctx context.Context, userID uint64, role model.Role, reviewID uint64) error {
	r, err := s.reviews.GetByID(ctx, reviewID)
	if err != nil {
		return err
	}
	if r.UserID != userID && !policy.Can(role, policy.ModerateReviews) {
		return ErrForbidden
	}
	return s.reviews.Delete(ctx, reviewID)
}
