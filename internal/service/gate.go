// Package service holds the authorization decisions and the outbound event
// publishing that sit between the HTTP handlers and the stores.
package service

import (
	"context"

	"github.com/iliyamo/community-hub/internal/config"
	"github.com/iliyamo/community-hub/internal/model"
)

// CommunityLookup resolves a community by id.  *repository.CommunityRepo
// satisfies it.
type CommunityLookup interface {
	GetByID(ctx context.Context, id uint64) (*model.Community, error)
}

// RoleNameLookup lists the role names a user holds.  *repository.MemberRepo
// satisfies it.
type RoleNameLookup interface {
	RoleNamesForUser(ctx context.Context, userID uint64) ([]string, error)
	RoleNamesForUserIn(ctx context.Context, userID, communityID uint64) ([]string, error)
}

// Gate decides whether an authenticated actor may perform a privileged
// membership action.
type Gate struct {
	communities CommunityLookup
	roles       RoleNameLookup
	deleteScope string
}

// NewGate builds a Gate.  deleteScope is config.MemberDeleteScopeCommunity
// or config.MemberDeleteScopeGlobal; anything else behaves as community.
func NewGate(communities CommunityLookup, roles RoleNameLookup, deleteScope string) *Gate {
	return &Gate{communities: communities, roles: roles, deleteScope: deleteScope}
}

// IsOwner reports whether userID owns communityID.  The store's not-found
// error is returned unchanged when the community does not exist.
func (g *Gate) IsOwner(ctx context.Context, userID, communityID uint64) (bool, error) {
	c, err := g.communities.GetByID(ctx, communityID)
	if err != nil {
		return false, err
	}
	return c.OwnerID == userID, nil
}

// IsAdminOrModerator reports whether userID holds "Community Admin" or
// "Community Moderator" in any community at all.
func (g *Gate) IsAdminOrModerator(ctx context.Context, userID uint64) (bool, error) {
	names, err := g.roles.RoleNamesForUser(ctx, userID)
	if err != nil {
		return false, err
	}
	return anyPrivileged(names), nil
}

// IsAdminOrModeratorOf is IsAdminOrModerator restricted to one community.
func (g *Gate) IsAdminOrModeratorOf(ctx context.Context, userID, communityID uint64) (bool, error) {
	names, err := g.roles.RoleNamesForUserIn(ctx, userID, communityID)
	if err != nil {
		return false, err
	}
	return anyPrivileged(names), nil
}

// CanRemoveMember decides whether actorID may delete m.  With the global
// scope any admin/moderator role anywhere suffices.  Otherwise the actor
// must be an admin/moderator of m's community; ownership alone is not
// enough.
func (g *Gate) CanRemoveMember(ctx context.Context, actorID uint64, m *model.Membership) (bool, error) {
	if g.deleteScope == config.MemberDeleteScopeGlobal {
		return g.IsAdminOrModerator(ctx, actorID)
	}
	return g.IsAdminOrModeratorOf(ctx, actorID, m.CommunityID)
}

func anyPrivileged(names []string) bool {
	for _, n := range names {
		if model.IsPrivileged(n) {
			return true
		}
	}
	return false
}
