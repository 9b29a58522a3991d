// Package queue defines message payloads exchanged over the message broker.
package queue

import (
	"time"

	"github.com/google/uuid"
)

// QueueName is the durable queue every community event is published to.
const QueueName = "community.events"

// Event types.
const (
	TypeUserSignedUp     = "user.signed_up"
	TypeCommunityCreated = "community.created"
	TypeMemberAdded      = "member.added"
	TypeMemberRemoved    = "member.removed"
)

// Event is published after a successful write.  It carries enough
// identifiers for downstream consumers to log or notify without querying
// the primary database.  Fields that do not apply to a type are zero.
type Event struct {
	ID           string    `json:"id"`
	Type         string    `json:"type"`
	ActorID      uint64    `json:"actor_id,omitempty"`
	UserID       uint64    `json:"user_id,omitempty"`
	CommunityID  uint64    `json:"community_id,omitempty"`
	RoleID       uint64    `json:"role_id,omitempty"`
	MembershipID uint64    `json:"membership_id,omitempty"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// NewEvent stamps an event of type typ with a fresh id and the current UTC
// time.
func NewEvent(typ string) Event {
	return Event{
		ID:         uuid.NewString(),
		Type:       typ,
		OccurredAt: time.Now().UTC().Truncate(time.Second),
	}
}
