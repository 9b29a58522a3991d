package router // package router defines how HTTP routes are registered for the API

import (
	"database/sql"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/handler"
	"github.com/iliyamo/community-hub/internal/middleware"
)

// CacheFunc returns the response cache middleware for a cache group.
type CacheFunc func(group string) echo.MiddlewareFunc

// RegisterRoutes registers the unauthenticated probes.
func RegisterRoutes(e *echo.Echo, db *sql.DB) {
	e.GET("/healthz", handler.Health)
	e.GET("/readyz", handler.Ready(db))
}

// RegisterAuth registers sign-up, sign-in and the current-user endpoint.
// Only /auth/me requires a bearer token.
func RegisterAuth(e *echo.Echo, a *handler.AuthHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/auth")
	g.POST("/signup", a.Signup)
	g.POST("/signin", a.Signin)
	g.GET("/me", a.Me, auth)
}

// RegisterCommunity registers the /community endpoints.  The public lists
// go through the response cache; the /me lists are per user and are not
// cached.  The static /me/* routes take precedence over /:id in echo's
// router.
func RegisterCommunity(e *echo.Echo, h *handler.CommunityHandler, auth echo.MiddlewareFunc, cache CacheFunc) {
	g := e.Group("/community")
	g.POST("", h.Create, auth)
	g.GET("", h.List, cache(middleware.GroupCommunities))
	g.GET("/me/owner", h.ListOwned, auth)
	g.GET("/me/member", h.ListJoined, auth)
	g.GET("/:id/members", h.ListMembers, cache(middleware.GroupMembers))
}

// RegisterMember registers membership management.  Both routes need a
// bearer token; authorization happens in the handler.
func RegisterMember(e *echo.Echo, h *handler.MemberHandler, auth echo.MiddlewareFunc) {
	g := e.Group("/member", auth)
	g.POST("", h.Add)
	g.DELETE("/:id", h.Remove)
}

// RegisterRole registers the public role endpoints.
func RegisterRole(e *echo.Echo, h *handler.RoleHandler, cache CacheFunc) {
	g := e.Group("/role")
	g.POST("", h.Create)
	g.GET("", h.List, cache(middleware.GroupRoles))
}
