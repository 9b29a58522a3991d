package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/community-hub/internal/database"
	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/testutil"
)

func TestSeedRoles_Idempotent(t *testing.T) {
	db := testutil.TestDB(t)
	ctx := context.Background()

	n, err := database.SeedRoles(ctx, db, "sqlite", model.DefaultRoles)
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	n, err = database.SeedRoles(ctx, db, "sqlite", model.DefaultRoles)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	var count int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM roles").Scan(&count))
	assert.Equal(t, 3, count)
}

func TestOpen_UnsupportedDriver(t *testing.T) {
	_, err := database.Open("postgres", "whatever")
	assert.Error(t, err)
	assert.Error(t, database.Migrate(nil, "postgres"))
}

func TestMigrate_CreatesUniqueMembershipIndex(t *testing.T) {
	db := testutil.TestDB(t)

	var name string
	err := db.QueryRow(`SELECT name FROM sqlite_master WHERE type = 'index' AND name = 'uq_memberships_community_user'`).Scan(&name)
	require.NoError(t, err)
	assert.Equal(t, "uq_memberships_community_user", name)
}
