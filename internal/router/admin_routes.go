package router

import (
	"github.com/labstack/echo/v4"

	"github.com/cineticket/cineticket-api/internal/handler"
	"github.com/cineticket/cineticket-api/internal/middleware"
	"github.com/cineticket/cineticket-api/internal/policy"
)

// RegisterAdmin registers catalog maintenance endpoints.  Each route is
// guarded by the capability it needs; purge clears cached catalog reads
// after a successful write.
func RegisterAdmin(e *echo.Echo, a *handler.AdminHandler, jwtSecret string, purge echo.MiddlewareFunc) {
	auth := middleware.JWTAuth(jwtSecret)
	catalog := middleware.RequireCapability(policy.ManageCatalog)
	screenings := middleware.RequireCapability(policy.ManageScreenings)

	e.POST("/api/Movies", a.CreateMovie, auth, catalog, purge)
	e.POST("/api/Cinemas", a.CreateCinema, auth, catalog, purge)
	e.POST("/api/Cinemas/:id/halls", a.CreateHall, auth, catalog, purge)
	e.POST("/api/Screenings", a.CreateScreening, auth, screenings, purge)
	e.PUT("/api/Screenings/:id/status", a.SetScreeningStatus, auth, screenings, purge)
}
