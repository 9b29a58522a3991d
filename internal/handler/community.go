package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/apperr"
	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/service"
)

// CommunityHandler serves the /community endpoints.
type CommunityHandler struct {
	Cfg         config.Config
	Communities *repository.CommunityRepo
	Users       *repository.UserRepo
	Members     *repository.MemberRepo
	Cache       middleware.Purger
	Events      service.EventPublisher
}

func NewCommunityHandler(cfg config.Config, communities *repository.CommunityRepo, users *repository.UserRepo,
	members *repository.MemberRepo, cache middleware.Purger, ev service.EventPublisher) *CommunityHandler {
	return &CommunityHandler{Cfg: cfg, Communities: communities, Users: users, Members: members, Cache: cache, Events: ev}
}

type createCommunityReq struct {
	Name string `json:"name" validate:"required,trimmin=2,max=128"`
}

// communityResp is the created community; owner is the bare id.
type communityResp struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Owner     uint64    `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// communityListItem is a listed community with the owner expanded.
type communityListItem struct {
	ID        uint64    `json:"id"`
	Name      string    `json:"name"`
	Slug      string    `json:"slug"`
	Owner     model.Ref `json:"owner"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Create makes the caller the owner of a new community.
func (h *CommunityHandler) Create(c echo.Context) error {
	uid, ok := middleware.UserIDFrom(c)
	if !ok {
		return apperr.NotSignedIn()
	}
	var req createCommunityReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	cm, err := h.Communities.Create(ctx, req.Name, uid)
	if err != nil {
		if errors.Is(err, repository.ErrSlugExists) {
			return apperr.Exists(http.StatusConflict, "name", "Community with this name already exists.")
		}
		return err
	}
	h.Cache.Purge(ctx, middleware.GroupCommunities)

	ev := queue.NewEvent(queue.TypeCommunityCreated)
	ev.ActorID, ev.CommunityID = uid, cm.ID
	publish(ctx, h.Events, ev)

	return respond(c, http.StatusCreated, communityResp{
		ID:        cm.ID,
		Name:      cm.Name,
		Slug:      cm.Slug,
		Owner:     cm.OwnerID,
		CreatedAt: cm.CreatedAt,
		UpdatedAt: cm.UpdatedAt,
	}, nil)
}

// List returns one page of all communities.
func (h *CommunityHandler) List(c echo.Context) error {
	page := pageParam(c)

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	items, total, err := h.Communities.List(ctx, page, repository.DefaultPageSize)
	if err != nil {
		return err
	}
	out, err := h.withOwners(ctx, items)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out, newPageMeta(total, page))
}

// ListMembers returns one page of a community's members.
func (h *CommunityHandler) ListMembers(c echo.Context) error {
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}
	page := pageParam(c)

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	items, total, err := h.Members.ListByCommunity(ctx, id, page, repository.DefaultPageSize)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, items, newPageMeta(total, page))
}

// ListOwned returns every community the caller owns.
func (h *CommunityHandler) ListOwned(c echo.Context) error {
	return h.listMine(c, h.Communities.ListOwnedBy)
}

// ListJoined returns every community the caller owns or is a member of.
func (h *CommunityHandler) ListJoined(c echo.Context) error {
	return h.listMine(c, h.Communities.ListMemberOf)
}

func (h *CommunityHandler) listMine(c echo.Context, load func(context.Context, uint64) ([]*model.Community, error)) error {
	uid, ok := middleware.UserIDFrom(c)
	if !ok {
		return apperr.NotSignedIn()
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	items, err := load(ctx, uid)
	if err != nil {
		return err
	}
	out, err := h.withOwners(ctx, items)
	if err != nil {
		return err
	}
	return respond(c, http.StatusOK, out, totalMeta{Total: len(out)})
}

// withOwners resolves the owner of every community with one batch query.
func (h *CommunityHandler) withOwners(ctx context.Context, items []*model.Community) ([]communityListItem, error) {
	ids := make([]uint64, 0, len(items))
	for _, cm := range items {
		ids = append(ids, cm.OwnerID)
	}
	owners, err := h.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]communityListItem, 0, len(items))
	for _, cm := range items {
		owner := model.Ref{ID: cm.OwnerID}
		if u, ok := owners[cm.OwnerID]; ok {
			owner.Name = u.Name
		}
		out = append(out, communityListItem{
			ID:        cm.ID,
			Name:      cm.Name,
			Slug:      cm.Slug,
			Owner:     owner,
			CreatedAt: cm.CreatedAt,
			UpdatedAt: cm.UpdatedAt,
		})
	}
	return out, nil
}
