package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cineticket/cineticket-api/internal/handler"
	"github.com/cineticket/cineticket-api/internal/middleware"
)

// RegisterCustomer registers the endpoints of signed-in users.  Every
// role may book and review.  limit is the booking write rate limiter and
// runs after JWTAuth so it can key on the user.
func RegisterCustomer(e *echo.Echo, b *handler.BookingHandler, r *handler.ReviewHandler, jwtSecret string, limit echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)

	e.POST("/api/Bookings", b.Create, auth, limit)
	e.POST("/api/Bookings/payment", b.Pay, auth, limit)
	e.PUT("/api/Bookings/:id/cancel", b.Cancel, auth, limit)
	e.GET("/api/Bookings", b.List, auth)
	e.GET("/api/Bookings/:id", b.Get, auth)

	e.POST("/api/Reviews", r.Create, auth)
	e.DELETE("/api/Reviews/:id", r.Delete, auth)
}
