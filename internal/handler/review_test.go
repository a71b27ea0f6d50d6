package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/policy"
	"github.com/cineticket/cineticket-api/internal/repository"
	"github.com/cineticket/cineticket-api/internal/service"
)

type stubReviews struct {
	authors map[uint64]uint64
}

func (s *stubReviews) ListByMovie(_ context.Context, movieID uint64) ([]model.Review, error) {
	if movieID != 1 {
		return nil, repository.ErrMovieNotFound
	}
	return []model.Review{{ID: 1, MovieID: 1, UserID: 7, Rating: 5, Content: "great"}}, nil
}

func (s *stubReviews) Create(_ context.Context, userID, movieID uint64, rating int, content string) (*model.Review, error) {
	if _, ok := s.authors[movieID]; ok {
		return nil, repository.ErrConflict
	}
	s.authors[movieID] = userID
	return &model.Review{ID: movieID, MovieID: movieID, UserID: userID, Rating: uint8(rating), Content: content}, nil
}

func (s *stubReviews) Delete(_ context.Context, userID uint64, role model.Role, id uint64) error {
	if s.authors[id] != userID && !policy.Can(role, policy.ModerateReviews) {
		return service.ErrForbidden
	}
	return nil
}

func reviewEcho(userID uint64, role model.Role) *echo.Echo {
	e := newEcho()
	h := NewReviewHandler(&stubReviews{authors: map[uint64]uint64{}}, quietLog())
	e.GET("/api/Reviews/movie/:movieId", h.ByMovie)
	e.POST("/api/Reviews", h.Create, asUser(userID, role))
	e.DELETE("/api/Reviews/:id", h.Delete, asUser(userID, role))
	return e
}

func TestReviewHandlers(t *testing.T) {
	e := reviewEcho(7, model.RoleCustomer)

	rec := call(e, http.MethodGet, "/api/Reviews/movie/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"content":"great"`)
	assert.Equal(t, http.StatusNotFound, call(e, http.MethodGet, "/api/Reviews/movie/2", "").Code)

	rec = call(e, http.MethodPost, "/api/Reviews", `{"movieId":3,"rating":4,"content":"nice"}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, http.StatusConflict, call(e, http.MethodPost, "/api/Reviews", `{"movieId":3,"rating":4,"content":"again"}`).Code)
	assert.Equal(t, http.StatusBadRequest, call(e, http.MethodPost, "/api/Reviews", `{"movieId":4,"rating":9,"content":"x"}`).Code)

	assert.Equal(t, http.StatusNoContent, call(e, http.MethodDelete, "/api/Reviews/3", "").Code)
}

func TestReviewDeleteByOtherUser(t *testing.T) {
	assert.Equal(t, http.StatusForbidden, call(reviewEcho(8, model.RoleCustomer), http.MethodDelete, "/api/Reviews/3", "").Code)
	assert.Equal(t, http.StatusNoContent, call(reviewEcho(8, model.RoleAdmin), http.MethodDelete, "/api/Reviews/3", "").Code)
}
