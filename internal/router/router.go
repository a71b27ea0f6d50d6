package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"

	"github.com/cineticket/cineticket-api/internal/handler"
	"github.com/cineticket/cineticket-api/internal/middleware"
)

// RegisterRoutes registers routes that need neither authentication nor the
// /api prefix.
func RegisterRoutes(e *echo.Echo, checks map[string]handler.Check) {
	e.GET("/healthz", handler.Health(checks))
}

// RegisterAuth registers the account endpoints under /api/Auth.  Register,
// login, refresh and logout are public; logout also accepts a bearer token
// to end every session of the user.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, jwtSecret string) {
	g := e.Group("/api/Auth")
	g.POST("/register", a.Register)
	g.POST("/login", a.Login)
	g.POST("/refresh", a.Refresh)
	g.POST("/logout", a.Logout)
	g.GET("/me", a.Me, middleware.JWTAuth(jwtSecret))
}

// RegisterPublic registers the unauthenticated browse endpoints.  cache
// wraps the catalog reads; seat maps stay uncached because availability
// changes with every booking.
func RegisterPublic(e *echo.Echo, p *handler.CatalogHandler, b *handler.BookingHandler, r *handler.ReviewHandler, cache echo.MiddlewareFunc) {
	e.GET("/api/Movies", p.Movies, cache)
	e.GET("/api/Movies/now-showing", p.NowShowing, cache)
	e.GET("/api/Movies/coming-soon", p.ComingSoon, cache)
	e.GET("/api/Movies/popular", p.Popular, cache)
	e.GET("/api/Movies/genres", p.Genres, cache)
	e.GET("/api/Movies/genre/:genre", p.ByGenre, cache)
	e.GET("/api/Movies/:id", p.Movie, cache)

	e.GET("/api/Cinemas", p.Cinemas, cache)
	e.GET("/api/Cinemas/:id", p.Cinema, cache)
	e.GET("/api/Halls/:id/seats", p.HallSeats, cache)

	e.GET("/api/Screenings/Movie/:movieId", p.ScreeningsByMovie, cache)
	e.GET("/api/Screenings/Cinema/:cinemaId", p.ScreeningsByCinema, cache)
	e.GET("/api/Screenings/:id/seats", b.ScreeningSeats)
	e.POST("/api/Screenings/:id/selection", b.Selection)

	e.GET("/api/Reviews/movie/:movieId", r.ByMovie)
}
