package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/apperr"
	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/repository"
)

// RoleHandler serves /role.
type RoleHandler struct {
	Cfg   config.Config
	Roles *repository.RoleRepo
	Cache middleware.Purger
}

func NewRoleHandler(cfg config.Config, roles *repository.RoleRepo, cache middleware.Purger) *RoleHandler {
	return &RoleHandler{Cfg: cfg, Roles: roles, Cache: cache}
}

type createRoleReq struct {
	Name string `json:"name" validate:"required,trimmin=2,max=64"`
}

type roleResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func toRoleResp(r *model.Role) roleResp {
	return roleResp{ID: r.ID, Name: r.Name, CreatedAt: r.CreatedAt, UpdatedAt: r.UpdatedAt}
}

// Create adds a role.  Role names are unique.
func (h *RoleHandler) Create(c echo.Context) error {
	var req createRoleReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	role, err := h.Roles.Create(ctx, req.Name)
	if err != nil {
		if errors.Is(err, repository.ErrRoleExists) {
			return apperr.Exists(http.StatusConflict, "name", "Role with this name already exists.")
		}
		return err
	}
	h.Cache.Purge(ctx, middleware.GroupRoles)
	return respond(c, http.StatusOK, toRoleResp(role), nil)
}

// List returns one page of roles.
func (h *RoleHandler) List(c echo.Context) error {
	page := pageParam(c)

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	roles, total, err := h.Roles.List(ctx, page, repository.DefaultPageSize)
	if err != nil {
		return err
	}
	out := make([]roleResp, 0, len(roles))
	for _, r := range roles {
		out = append(out, toRoleResp(r))
	}
	return respond(c, http.StatusOK, out, newPageMeta(total, page))
}
