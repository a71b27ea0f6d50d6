package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/middleware"
	"github.com/cineticket/cineticket-api/internal/model"
)

// ReviewAPI is the review service surface.
type ReviewAPI interface {
	ListByMovie(ctx context.Context, movieID uint64) ([]model.Review, error)
	Create(ctx context.Context, userID, movieID uint64, rating int, content string) (*model.Review, error)
	Delete(ctx context.Context, userID uint64, role model.Role, reviewID uint64) error
}

type ReviewHandler struct {
	Reviews ReviewAPI
	Log     logrus.FieldLogger
}

func NewReviewHandler(r ReviewAPI, log logrus.FieldLogger) *ReviewHandler {
	return &ReviewHandler{Reviews: r, Log: log}
}

type createReviewReq struct {
	MovieID uint64 `json:"movieId" validate:"required"`
	Rating  int    `json:"rating" validate:"required,min=1,max=5"`
	Content string `json:"content" validate:"required"`
}

// ByMovie handles GET /api/Reviews/movie/:movieId.
func (h *ReviewHandler) ByMovie(c echo.Context) error {
	id, err := paramID(c, "movieId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	out, err := h.Reviews.ListByMovie(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Create handles POST /api/Reviews.
func (h *ReviewHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req createReviewReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	r, err := h.Reviews.Create(ctx, uid, req.MovieID, req.Rating, req.Content)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, r)
}

// Delete handles DELETE /api/Reviews/:id.
func (h *ReviewHandler) Delete(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Reviews.Delete(ctx, uid, middleware.Role(c), id); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.NoContent(http.StatusNoContent)
}
