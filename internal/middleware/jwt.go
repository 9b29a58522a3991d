package middleware // reusable HTTP middleware for the echo router

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/apperr"
)

// TokenVerifier turns a bearer token into a user id.  *utils.TokenCodec
// satisfies it.
type TokenVerifier interface {
	Verify(token string) (uint64, error)
}

// JWTAuth returns an Echo middleware that validates a Bearer access token
// and stores the token's subject in the context under "user_id" as a
// uint64.  A missing header is NOT_SIGNEDIN; anything that does not verify
// is INVALID_TOKEN.  Handlers read the id back with UserIDFrom.
func JWTAuth(tokens TokenVerifier) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			auth := strings.TrimSpace(c.Request().Header.Get(echo.HeaderAuthorization))
			if auth == "" {
				return apperr.NotSignedIn()
			}
			scheme, raw, ok := strings.Cut(auth, " ")
			if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
				return apperr.InvalidToken()
			}
			id, err := tokens.Verify(strings.TrimSpace(raw))
			if err != nil {
				return apperr.InvalidToken()
			}
			c.Set(userIDKey, id)
			return next(c)
		}
	}
}
