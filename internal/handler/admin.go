package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/service"
)

// AdminAPI is the write side of the catalog service.
type AdminAPI interface {
	CreateMovie(ctx context.Context, m *model.Movie) error
	CreateCinema(ctx context.Context, c *model.Cinema) error
	CreateHall(ctx context.Context, cinemaID uint64, layout service.HallLayout) (*model.Hall, []model.Seat, error)
	CreateScreening(ctx context.Context, s *model.Screening) (*model.ScreeningDetail, error)
	SetScreeningStatus(ctx context.Context, id uint64, status model.ScreeningStatus) (*model.ScreeningDetail, error)
}

// AdminHandler serves catalog maintenance for Managers and Admins.  Routes
// are guarded by RequireCapability.
type AdminHandler struct {
	Admin AdminAPI
	Log   logrus.FieldLogger
}

func NewAdminHandler(a AdminAPI, log logrus.FieldLogger) *AdminHandler {
	return &AdminHandler{Admin: a, Log: log}
}

type createMovieReq struct {
	Title           string          `json:"title" validate:"required,max=200"`
	Description     string          `json:"description"`
	PosterURL       string          `json:"posterUrl" validate:"omitempty,url"`
	BackdropURL     string          `json:"backdropUrl" validate:"omitempty,url"`
	Genre           string          `json:"genre" validate:"max=50"`
	ReleaseDate     time.Time       `json:"releaseDate" validate:"required"`
	EndDate         *time.Time      `json:"endDate"`
	DurationMinutes uint32          `json:"durationMinutes" validate:"required,gt=0"`
	Rating          decimal.Decimal `json:"rating"`
	TrailerURL      *string         `json:"trailerUrl" validate:"omitempty,url"`
}

type createCinemaReq struct {
	Name        string `json:"name" validate:"required,max=100"`
	Address     string `json:"address" validate:"max=255"`
	PhoneNumber string `json:"phoneNumber" validate:"max=20"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl" validate:"omitempty,url"`
}

type createHallReq struct {
	Name        string   `json:"name" validate:"required,max=50"`
	HallType    string   `json:"hallType" validate:"max=20"`
	Rows        int      `json:"rows" validate:"required,min=1"`
	SeatsPerRow int      `json:"seatsPerRow" validate:"required,min=1"`
	VIPRows     []string `json:"vipRows"`
	CoupleRows  []string `json:"coupleRows"`
}

type createScreeningReq struct {
	MovieID   uint64          `json:"movieId" validate:"required"`
	HallID    uint64          `json:"hallId" validate:"required"`
	StartTime time.Time       `json:"startTime" validate:"required"`
	EndTime   time.Time       `json:"endTime" validate:"required"`
	Price     decimal.Decimal `json:"price"`
}

type statusReq struct {
	Status model.ScreeningStatus `json:"status" validate:"required"`
}

// CreateMovie handles POST /api/Movies.
func (h *AdminHandler) CreateMovie(c echo.Context) error {
	var req createMovieReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	m := &model.Movie{
		Title:           req.Title,
		Description:     req.Description,
		PosterURL:       req.PosterURL,
		BackdropURL:     req.BackdropURL,
		Genre:           req.Genre,
		ReleaseDate:     req.ReleaseDate,
		EndDate:         req.EndDate,
		DurationMinutes: req.DurationMinutes,
		Rating:          req.Rating,
		TrailerURL:      req.TrailerURL,
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Admin.CreateMovie(ctx, m); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, m)
}

// CreateCinema handles POST /api/Cinemas.
func (h *AdminHandler) CreateCinema(c echo.Context) error {
	var req createCinemaReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	cin := &model.Cinema{
		Name:        req.Name,
		Address:     req.Address,
		PhoneNumber: req.PhoneNumber,
		Description: req.Description,
		ImageURL:    req.ImageURL,
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	if err := h.Admin.CreateCinema(ctx, cin); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, cin)
}

// CreateHall handles POST /api/Cinemas/:id/halls and returns the hall with
// its generated seats.
func (h *AdminHandler) CreateHall(c echo.Context) error {
	cinemaID, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req createHallReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	hall, seats, err := h.Admin.CreateHall(ctx, cinemaID, service.HallLayout{
		Name:        req.Name,
		HallType:    req.HallType,
		Rows:        req.Rows,
		SeatsPerRow: req.SeatsPerRow,
		VIPRows:     req.VIPRows,
		CoupleRows:  req.CoupleRows,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"hall": hall, "seats": seats})
}

// CreateScreening handles POST /api/Screenings.
func (h *AdminHandler) CreateScreening(c echo.Context) error {
	var req createScreeningReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	sc, err := h.Admin.CreateScreening(ctx, &model.Screening{
		MovieID:   req.MovieID,
		HallID:    req.HallID,
		StartTime: req.StartTime,
		EndTime:   req.EndTime,
		Price:     req.Price,
	})
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, sc)
}

// SetScreeningStatus handles PUT /api/Screenings/:id/status.
func (h *AdminHandler) SetScreeningStatus(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req statusReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	sc, err := h.Admin.SetScreeningStatus(ctx, id, req.Status)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, sc)
}
