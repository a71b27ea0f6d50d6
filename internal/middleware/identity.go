package middleware

// identity.go holds the context keys set by JWTAuth and helpers that read
// them back.  Handlers and the rate limiter use these instead of touching
// the raw token.

import (
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/cineticket/cineticket-api/internal/model"
)

const (
	ctxUserID = "user_id"
	ctxRole   = "role"
)

// UserID returns the authenticated user's id.  ok is false on routes that
// did not pass through JWTAuth.
func UserID(c echo.Context) (id uint64, ok bool) {
	id, ok = c.Get(ctxUserID).(uint64)
	return id, ok && id != 0
}

// Role returns the authenticated user's role, or "" for anonymous requests.
func Role(c echo.Context) model.Role {
	r, _ := c.Get(ctxRole).(model.Role)
	return r
}

// SetIdentity stores an authenticated identity on the context.
func SetIdentity(c echo.Context, userID uint64, role model.Role) {
	c.Set(ctxUserID, userID)
	c.Set(ctxRole, role)
}

// identityKey is the user id as a string, or "anon".
func identityKey(c echo.Context) string {
	if id, ok := UserID(c); ok {
		return strconv.FormatUint(id, 10)
	}
	return "anon"
}
