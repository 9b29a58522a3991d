package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// SeedRoles makes sure every role in names exists.  Existing rows are left
// untouched.  It returns the number of roles that were inserted.
func SeedRoles(ctx context.Context, db *sql.DB, driver string, names []string) (int, error) {
	var q string
	switch driver {
	case "mysql":
		q = "INSERT IGNORE INTO roles (name, created_at, updated_at) VALUES (?, ?, ?)"
	case "sqlite":
		q = "INSERT OR IGNORE INTO roles (name, created_at, updated_at) VALUES (?, ?, ?)"
	default:
		return 0, fmt.Errorf("unsupported driver %q", driver)
	}

	now := time.Now().UTC().Truncate(time.Second)
	inserted := 0
	for _, name := range names {
		res, err := db.ExecContext(ctx, q, name, now, now)
		if err != nil {
			return inserted, fmt.Errorf("seeding role %q: %w", name, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			inserted++
		}
	}
	return inserted, nil
}
