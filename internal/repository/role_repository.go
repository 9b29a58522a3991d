package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/community-hub/internal/model"
)

// RoleRepo stores the global, uniquely named roles that memberships point to.
type RoleRepo struct {
	db *sql.DB
}

func NewRoleRepo(db *sql.DB) *RoleRepo { return &RoleRepo{db: db} }

const roleColumns = "id, name, created_at, updated_at"

// Create inserts a role.  A name that is already taken yields ErrRoleExists.
func (r *RoleRepo) Create(ctx context.Context, name string) (*model.Role, error) {
	name = strings.TrimSpace(name)
	now := time.Now().UTC().Truncate(time.Second)
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO roles (name, created_at, updated_at) VALUES (?, ?, ?)", name, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrRoleExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Role{ID: uint64(id), Name: name, CreatedAt: now, UpdatedAt: now}, nil
}

// List returns one page of roles ordered by id plus the total count.
func (r *RoleRepo) List(ctx context.Context, page, pageSize int) ([]*model.Role, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM roles").Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page, pageSize)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roleColumns+" FROM roles ORDER BY id LIMIT ? OFFSET ?", limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	out := []*model.Role{}
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, 0, err
		}
		out = append(out, &role)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

// Exists reports whether a role with id exists.
func (r *RoleRepo) Exists(ctx context.Context, id uint64) (bool, error) {
	return rowExists(ctx, r.db, "SELECT 1 FROM roles WHERE id = ? LIMIT 1", id)
}

// GetByIDs batch loads roles.  Unknown ids are absent from the map.
func (r *RoleRepo) GetByIDs(ctx context.Context, ids []uint64) (map[uint64]*model.Role, error) {
	ids = uniqueIDs(ids)
	out := make(map[uint64]*model.Role, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+roleColumns+" FROM roles WHERE id IN ("+placeholders(len(ids))+")", idArgs(ids)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var role model.Role
		if err := rows.Scan(&role.ID, &role.Name, &role.CreatedAt, &role.UpdatedAt); err != nil {
			return nil, err
		}
		out[role.ID] = &role
	}
	return out, rows.Err()
}
