package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/cineticket/cineticket-api/internal/policy"
)

// RequireCapability aborts with 403 unless the authenticated role holds
// capability.  It must run after JWTAuth.
func RequireCapability(capability policy.Capability) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if !policy.Can(Role(c), capability) {
				return c.JSON(http.StatusForbidden, echo.Map{"error": "forbidden"})
			}
			return next(c)
		}
	}
}
