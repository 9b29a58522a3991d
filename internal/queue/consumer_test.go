package queue

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatAuditLine(t *testing.T) {
	ev := Event{
		ID:           "evt-1",
		Type:         TypeMemberAdded,
		ActorID:      1,
		CommunityID:  7,
		UserID:       2,
		RoleID:       3,
		MembershipID: 9,
		OccurredAt:   time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
	}
	got := FormatAuditLine(ev)
	assert.Equal(t,
		"[2024-05-01T10:00:00Z] member.added | id=evt-1 | actor_id=1 | user_id=2 | community_id=7 | role_id=3 | membership_id=9\n",
		got)

	signup := FormatAuditLine(Event{ID: "evt-2", Type: TypeUserSignedUp, UserID: 5, OccurredAt: ev.OccurredAt})
	assert.NotContains(t, signup, "community_id")
	assert.Contains(t, signup, "user_id=5")
}

func TestAppendAuditLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "audit.log")

	for _, typ := range []string{TypeCommunityCreated, TypeMemberRemoved} {
		ev := NewEvent(typ)
		ev.CommunityID = 4
		body, err := json.Marshal(ev)
		require.NoError(t, err)
		require.NoError(t, appendAuditLine(path, body))
	}

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], TypeCommunityCreated)
	assert.Contains(t, lines[1], TypeMemberRemoved)
}

func TestAppendAuditLine_RejectsMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "audit.log")

	assert.Error(t, appendAuditLine(path, []byte("{not json")))
	assert.Error(t, appendAuditLine(path, []byte(`{"id":"x"}`)))

	_, err := os.Stat(path)
	assert.True(t, os.IsNotExist(err))
}

func TestNewEvent(t *testing.T) {
	a, b := NewEvent(TypeUserSignedUp), NewEvent(TypeUserSignedUp)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Len(t, a.ID, 36)
	assert.Equal(t, time.UTC, a.OccurredAt.Location())
}
