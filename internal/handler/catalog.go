package handler

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/repository"
	"github.com/cineticket/cineticket-api/internal/service"
)

// CatalogAPI is the read side of the catalog service.
type CatalogAPI interface {
	ListMovies(ctx context.Context) ([]model.Movie, error)
	SearchMovies(ctx context.Context, q repository.MovieSearchQuery) (*service.MoviePage, error)
	Movie(ctx context.Context, id uint64) (*model.Movie, error)
	NowShowing(ctx context.Context) ([]model.Movie, error)
	ComingSoon(ctx context.Context) ([]model.Movie, error)
	Popular(ctx context.Context) ([]model.Movie, error)
	MoviesByGenre(ctx context.Context, genre string) ([]model.Movie, error)
	Genres(ctx context.Context) ([]string, error)
	Cinemas(ctx context.Context) ([]model.Cinema, error)
	Cinema(ctx context.Context, id uint64) (*service.CinemaDetail, error)
	HallSeats(ctx context.Context, hallID uint64) (*service.HallLayoutView, error)
	ScreeningsByMovie(ctx context.Context, movieID uint64) ([]model.ScreeningDetail, error)
	ScreeningsByCinema(ctx context.Context, cinemaID uint64) ([]model.ScreeningDetail, error)
}

// CatalogHandler serves the public, unauthenticated browse endpoints.
type CatalogHandler struct {
	Catalog CatalogAPI
	Log     logrus.FieldLogger
}

func NewCatalogHandler(c CatalogAPI, log logrus.FieldLogger) *CatalogHandler {
	return &CatalogHandler{Catalog: c, Log: log}
}

// list runs fn with a request timeout and writes its result as JSON.
func list[T any](h *CatalogHandler, c echo.Context, fn func(ctx context.Context) (T, error)) error {
	ctx, cancel := requestContext(c)
	defer cancel()
	out, err := fn(ctx)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Movies handles GET /api/Movies.  With any of title, genre, page or
// pageSize in the query it returns a paginated search result instead of
// the full list.
func (h *CatalogHandler) Movies(c echo.Context) error {
	title := strings.TrimSpace(c.QueryParam("title"))
	genre := strings.TrimSpace(c.QueryParam("genre"))
	page := c.QueryParam("page")
	size := c.QueryParam("pageSize")
	if title == "" && genre == "" && page == "" && size == "" {
		return list(h, c, h.Catalog.ListMovies)
	}
	q := repository.MovieSearchQuery{Title: title, Genre: genre}
	if page != "" {
		n, err := strconv.Atoi(page)
		if err != nil {
			return respondError(c, h.Log, &service.ValidationError{Field: "page", Message: "must be an integer"})
		}
		q.Page = n
	}
	if size != "" {
		n, err := strconv.Atoi(size)
		if err != nil {
			return respondError(c, h.Log, &service.ValidationError{Field: "pageSize", Message: "must be an integer"})
		}
		q.PageSize = n
	}
	return list(h, c, func(ctx context.Context) (*service.MoviePage, error) { return h.Catalog.SearchMovies(ctx, q) })
}

// Movie handles GET /api/Movies/:id.
func (h *CatalogHandler) Movie(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return list(h, c, func(ctx context.Context) (*model.Movie, error) { return h.Catalog.Movie(ctx, id) })
}

func (h *CatalogHandler) NowShowing(c echo.Context) error { return list(h, c, h.Catalog.NowShowing) }

func (h *CatalogHandler) ComingSoon(c echo.Context) error { return list(h, c, h.Catalog.ComingSoon) }

func (h *CatalogHandler) Popular(c echo.Context) error { return list(h, c, h.Catalog.Popular) }

func (h *CatalogHandler) Genres(c echo.Context) error { return list(h, c, h.Catalog.Genres) }

// ByGenre handles GET /api/Movies/genre/:genre.
func (h *CatalogHandler) ByGenre(c echo.Context) error {
	genre := c.Param("genre")
	return list(h, c, func(ctx context.Context) ([]model.Movie, error) { return h.Catalog.MoviesByGenre(ctx, genre) })
}

func (h *CatalogHandler) Cinemas(c echo.Context) error { return list(h, c, h.Catalog.Cinemas) }

// Cinema handles GET /api/Cinemas/:id and includes the cinema's halls.
func (h *CatalogHandler) Cinema(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return list(h, c, func(ctx context.Context) (*service.CinemaDetail, error) { return h.Catalog.Cinema(ctx, id) })
}

// HallSeats handles GET /api/Halls/:id/seats.
func (h *CatalogHandler) HallSeats(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return list(h, c, func(ctx context.Context) (*service.HallLayoutView, error) { return h.Catalog.HallSeats(ctx, id) })
}

// ScreeningsByMovie handles GET /api/Screenings/Movie/:movieId.
func (h *CatalogHandler) ScreeningsByMovie(c echo.Context) error {
	id, err := paramID(c, "movieId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return list(h, c, func(ctx context.Context) ([]model.ScreeningDetail, error) { return h.Catalog.ScreeningsByMovie(ctx, id) })
}

// ScreeningsByCinema handles GET /api/Screenings/Cinema/:cinemaId.
func (h *CatalogHandler) ScreeningsByCinema(c echo.Context) error {
	id, err := paramID(c, "cinemaId")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return list(h, c, func(ctx context.Context) ([]model.ScreeningDetail, error) { return h.Catalog.ScreeningsByCinema(ctx, id) })
}
