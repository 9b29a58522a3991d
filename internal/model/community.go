package model

import "time"

// Community is a group owned by exactly one user.  The slug is derived
// from the name when the community is created and is unique across the
// table.  This struct corresponds to a row in the `communities` table.
type Community struct {
    ID        uint64    // communities.id
    Name      string    // communities.name
    Slug      string    // communities.slug (unique)
    OwnerID   uint64    // communities.owner_id
    CreatedAt time.Time // communities.created_at
    UpdatedAt time.Time // communities.updated_at
}
