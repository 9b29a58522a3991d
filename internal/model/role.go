package model

import "time"

// Names of the roles that grant member management rights.
const (
    RoleCommunityAdmin     = "Community Admin"
    RoleCommunityMember    = "Community Member"
    RoleCommunityModerator = "Community Moderator"
)

// DefaultRoles are seeded on startup when SEED_ROLES is enabled.
var DefaultRoles = []string{RoleCommunityAdmin, RoleCommunityMember, RoleCommunityModerator}

// Role represents a row in the `roles` table.  Roles are global and are
// referenced by memberships.
type Role struct {
    ID        uint64    // roles.id
    Name      string    // roles.name (unique)
    CreatedAt time.Time // roles.created_at
    UpdatedAt time.Time // roles.updated_at
}

// IsPrivileged reports whether a role name grants admin/moderator rights.
func IsPrivileged(name string) bool {
    return name == RoleCommunityAdmin || name == RoleCommunityModerator
}
