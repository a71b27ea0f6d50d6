package handler

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/cineticket/cineticket-api/internal/model"
	"github.com/cineticket/cineticket-api/internal/service"
)

// BookingAPI is the booking service surface used over HTTP.
type BookingAPI interface {
	MaxSeats() int
	GetScreeningSeats(ctx context.Context, screeningID uint64) (*service.ScreeningSeats, error)
	CreateBooking(ctx context.Context, userID, screeningID uint64, seatIDs []uint64) (*model.Booking, error)
	ProcessPayment(ctx context.Context, userID, bookingID uint64, method string, reference *string) (*model.Booking, error)
	CancelBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error)
	ListBookings(ctx context.Context, userID uint64) ([]*model.Booking, error)
	GetBooking(ctx context.Context, userID, bookingID uint64) (*model.Booking, error)
}

// BookingHandler serves seat maps, seat selection and the booking
// lifecycle.  All booking routes require JWTAuth.
type BookingHandler struct {
	Bookings BookingAPI
	Log      logrus.FieldLogger
}

func NewBookingHandler(b BookingAPI, log logrus.FieldLogger) *BookingHandler {
	return &BookingHandler{Bookings: b, Log: log}
}

type createBookingReq struct {
	ScreeningID uint64   `json:"screeningId" validate:"required"`
	SeatIDs     []uint64 `json:"seatIds" validate:"required,min=1"`
}

type paymentReq struct {
	BookingID        uint64  `json:"bookingId" validate:"required"`
	PaymentMethod    string  `json:"paymentMethod" validate:"required,max=50"`
	PaymentReference *string `json:"paymentReference" validate:"omitempty,max=100"`
}

type selectionReq struct {
	SelectedSeatIDs []uint64 `json:"selectedSeatIds"`
	SeatID          uint64   `json:"seatId" validate:"required"`
}

// ScreeningSeats handles GET /api/Screenings/:id/seats.
func (h *BookingHandler) ScreeningSeats(c echo.Context) error {
	id, err := paramID(c, "id")
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	seats, err := h.Bookings.GetScreeningSeats(ctx, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, seats)
}

// Selection handles POST /api/Screenings/:id/selection.  It applies the
// seat-picker rules to the client's current selection without touching
// any booking state.
func (h *BookingHandler) Selection(c echo.Context) error {
	if _, err := paramID(c, "id"); err != nil {
		return respondError(c, h.Log, err)
	}
	var req selectionReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, service.CheckSelection(req.SelectedSeatIDs, req.SeatID, h.Bookings.MaxSeats()))
}

// Create handles POST /api/Bookings.
func (h *BookingHandler) Create(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req createBookingReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	b, err := h.Bookings.CreateBooking(ctx, uid, req.ScreeningID, req.SeatIDs)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusCreated, b)
}

// Pay handles POST /api/Bookings/payment.
func (h *BookingHandler) Pay(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	var req paymentReq
	if err := bind(c, &req); err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	b, err := h.Bookings.ProcessPayment(ctx, uid, req.BookingID, strings.TrimSpace(req.PaymentMethod), req.PaymentReference)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// Cancel handles PUT /api/Bookings/:id/cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
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
	b, err := h.Bookings.CancelBooking(ctx, uid, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}

// List handles GET /api/Bookings, newest first.
func (h *BookingHandler) List(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	ctx, cancel := requestContext(c)
	defer cancel()
	out, err := h.Bookings.ListBookings(ctx, uid)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get handles GET /api/Bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
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
	b, err := h.Bookings.GetBooking(ctx, uid, id)
	if err != nil {
		return respondError(c, h.Log, err)
	}
	return c.JSON(http.StatusOK, b)
}
