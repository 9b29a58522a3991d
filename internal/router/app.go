package router

import (
	"database/sql"
	"log/slog"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/handler"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/service"
	"github.com/iliyamo/community-hub/internal/utils"
)

// Deps are the long-lived collaborators the HTTP layer is built from.
// Redis and Events are optional.
type Deps struct {
	DB     *sql.DB
	Redis  *redis.Client
	Events service.EventPublisher
	Logger *slog.Logger
}

// New builds the echo instance with every route registered.
func New(cfg config.Config, d Deps) (*echo.Echo, error) {
	tokens, err := utils.NewTokenCodec(cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	if d.Events == nil {
		d.Events = service.NopPublisher{}
	}
	if d.Logger == nil {
		d.Logger = slog.Default()
	}

	users := repository.NewUserRepo(d.DB)
	communities := repository.NewCommunityRepo(d.DB)
	roles := repository.NewRoleRepo(d.DB)
	members := repository.NewMemberRepo(d.DB)
	gate := service.NewGate(communities, members, cfg.MemberDeleteScope)
	purger := middleware.NewPurger(cfg.Cache, d.Redis)

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = handler.ErrorHandler(d.Logger)
	e.Use(echomw.Recover())
	e.Use(requestLogger(d.Logger))

	auth := middleware.JWTAuth(tokens)
	cache := func(group string) echo.MiddlewareFunc {
		return middleware.NewRedisCache(cfg.Cache, d.Redis, group)
	}

	RegisterRoutes(e, d.DB)
	RegisterAuth(e, handler.NewAuthHandler(cfg, users, tokens, d.Events), auth)
	RegisterCommunity(e, handler.NewCommunityHandler(cfg, communities, users, members, purger, d.Events), auth, cache)
	RegisterMember(e, handler.NewMemberHandler(cfg, members, gate, purger, d.Events), auth)
	RegisterRole(e, handler.NewRoleHandler(cfg, roles, purger), cache)
	return e, nil
}

// requestLogger logs one structured line per request.
func requestLogger(logger *slog.Logger) echo.MiddlewareFunc {
	return echomw.RequestLoggerWithConfig(echomw.RequestLoggerConfig{
		LogMethod:   true,
		LogURI:      true,
		LogStatus:   true,
		LogLatency:  true,
		LogRemoteIP: true,
		LogError:    true,
		HandleError: true,
		LogValuesFunc: func(c echo.Context, v echomw.RequestLoggerValues) error {
			attrs := []any{
				"method", v.Method,
				"uri", v.URI,
				"status", v.Status,
				"latency", v.Latency,
				"remote_ip", v.RemoteIP,
			}
			if v.Error != nil {
				attrs = append(attrs, "error", v.Error)
				logger.Warn("request", attrs...)
				return nil
			}
			logger.Info("request", attrs...)
			return nil
		},
	})
}
