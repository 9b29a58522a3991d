package model

import "time"

// Membership ties a user to a community with exactly one role.  There is
// at most one membership per (community, user) pair.
type Membership struct {
    ID          uint64    // memberships.id
    CommunityID uint64    // memberships.community_id
    UserID      uint64    // memberships.user_id
    RoleID      uint64    // memberships.role_id
    CreatedAt   time.Time // memberships.created_at
}

// MemberView is a membership with its user and role resolved to {id, name}.
type MemberView struct {
    ID          uint64    `json:"id"`
    CommunityID uint64    `json:"community"`
    User        Ref       `json:"user"`
    Role        Ref       `json:"role"`
    CreatedAt   time.Time `json:"created_at"`
}
