package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/community-hub/internal/apperr"
	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/middleware"
	"github.com/iliyamo/community-hub/internal/queue"
	"github.com/iliyamo/community-hub/internal/repository"
	"github.com/iliyamo/community-hub/internal/service"
)

// MemberHandler adds and removes community memberships.
type MemberHandler struct {
	Cfg     config.Config
	Members *repository.MemberRepo
	Gate    *service.Gate
	Cache   middleware.Purger
	Events  service.EventPublisher
}

func NewMemberHandler(cfg config.Config, members *repository.MemberRepo, gate *service.Gate,
	cache middleware.Purger, ev service.EventPublisher) *MemberHandler {
	return &MemberHandler{Cfg: cfg, Members: members, Gate: gate, Cache: cache, Events: ev}
}

type addMemberReq struct {
	Community uint64 `json:"community" validate:"required"`
	User      uint64 `json:"user" validate:"required"`
	Role      uint64 `json:"role" validate:"required"`
}

type membershipResp struct {
	ID        uint64    `json:"id"`
	Community uint64    `json:"community"`
	User      uint64    `json:"user"`
	Role      uint64    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Add lets the owner of a community add a user to it with a role.
func (h *MemberHandler) Add(c echo.Context) error {
	uid, ok := middleware.UserIDFrom(c)
	if !ok {
		return apperr.NotSignedIn()
	}
	var req addMemberReq
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	owner, err := h.Gate.IsOwner(ctx, uid, req.Community)
	if err != nil {
		return memberStoreError(err)
	}
	if !owner {
		return apperr.NotAllowed()
	}

	m, err := h.Members.Add(ctx, req.Community, req.User, req.Role)
	if err != nil {
		return memberStoreError(err)
	}
	h.Cache.Purge(ctx, middleware.GroupMembers)

	ev := queue.NewEvent(queue.TypeMemberAdded)
	ev.ActorID, ev.CommunityID, ev.UserID, ev.RoleID, ev.MembershipID = uid, m.CommunityID, m.UserID, m.RoleID, m.ID
	publish(ctx, h.Events, ev)

	return respond(c, http.StatusOK, membershipResp{
		ID:        m.ID,
		Community: m.CommunityID,
		User:      m.UserID,
		Role:      m.RoleID,
		CreatedAt: m.CreatedAt,
	}, nil)
}

// Remove deletes a membership.  Who may do so depends on the configured
// delete scope, see service.Gate.CanRemoveMember.
func (h *MemberHandler) Remove(c echo.Context) error {
	uid, ok := middleware.UserIDFrom(c)
	if !ok {
		return apperr.NotSignedIn()
	}
	id, err := idParam(c, "id")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c, h.Cfg.RequestTimeout)
	defer cancel()

	m, err := h.Members.GetByID(ctx, id)
	if err != nil {
		return memberStoreError(err)
	}
	allowed, err := h.Gate.CanRemoveMember(ctx, uid, m)
	if err != nil {
		return memberStoreError(err)
	}
	if !allowed {
		return apperr.NotAllowed()
	}
	if err := h.Members.Remove(ctx, id); err != nil {
		return memberStoreError(err)
	}
	h.Cache.Purge(ctx, middleware.GroupMembers)

	ev := queue.NewEvent(queue.TypeMemberRemoved)
	ev.ActorID, ev.CommunityID, ev.UserID, ev.RoleID, ev.MembershipID = uid, m.CommunityID, m.UserID, m.RoleID, m.ID
	publish(ctx, h.Events, ev)

	return respondOK(c)
}

func memberStoreError(err error) error {
	switch {
	case errors.Is(err, repository.ErrCommunityNotFound):
		return apperr.NotFound(apperr.CodeResourceNotFound, "community", "Community not found.")
	case errors.Is(err, repository.ErrRoleNotFound):
		return apperr.NotFound(apperr.CodeResourceNotFound, "role", "Role not found.")
	case errors.Is(err, repository.ErrUserNotFound):
		return apperr.NotFound(apperr.CodeResourceNotFound, "user", "User not found.")
	case errors.Is(err, repository.ErrAlreadyMember):
		return apperr.Exists(http.StatusBadRequest, "user", "User is already added in the community.")
	case errors.Is(err, repository.ErrMembershipNotFound):
		return apperr.NotFound(apperr.CodeMembershipNotFound, "", "Member not found.")
	}
	return err
}
