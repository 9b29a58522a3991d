package middleware

import "github.com/labstack/echo/v4"

const userIDKey = "user_id"

// UserIDFrom returns the authenticated user id stored by JWTAuth.  The
// second result is false on routes that are not behind JWTAuth.
func UserIDFrom(c echo.Context) (uint64, bool) {
	id, ok := c.Get(userIDKey).(uint64)
	return id, ok && id != 0
}
