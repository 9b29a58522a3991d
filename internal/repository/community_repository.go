// Package repository contains data access logic separated from HTTP handlers.
// Every store takes a *sql.DB and speaks plain SQL with '?' placeholders so
// the same queries run against MySQL and SQLite.
package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/community-hub/internal/model"
	"github.com/iliyamo/community-hub/internal/utils"
)

// CommunityRepo encapsulates all database queries related to communities.
type CommunityRepo struct {
	db *sql.DB
}

func NewCommunityRepo(db *sql.DB) *CommunityRepo {
	return &CommunityRepo{db: db}
}

const communityColumns = "id, name, slug, owner_id, created_at, updated_at"

// Create inserts a community owned by ownerID.  The slug is derived from
// name once, here; a slug that is already taken is rejected with
// ErrSlugExists rather than suffixed.
func (r *CommunityRepo) Create(ctx context.Context, name string, ownerID uint64) (*model.Community, error) {
	name = strings.TrimSpace(name)
	c := &model.Community{
		Name:    name,
		Slug:    utils.Slugify(name),
		OwnerID: ownerID,
	}
	now := time.Now().UTC().Truncate(time.Second)
	c.CreatedAt, c.UpdatedAt = now, now

	const q = "INSERT INTO communities (name, slug, owner_id, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, c.Name, c.Slug, c.OwnerID, now, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrSlugExists
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	c.ID = uint64(id)
	return c, nil
}

// GetByID fetches a community by its ID.  It returns ErrCommunityNotFound
// if no row is found.
func (r *CommunityRepo) GetByID(ctx context.Context, id uint64) (*model.Community, error) {
	const q = "SELECT " + communityColumns + " FROM communities WHERE id = ?"
	c, err := scanCommunity(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCommunityNotFound
		}
		return nil, err
	}
	return c, nil
}

// List returns one page of communities in creation order together with the
// total number of communities.
func (r *CommunityRepo) List(ctx context.Context, page, pageSize int) ([]*model.Community, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM communities").Scan(&total); err != nil {
		return nil, 0, err
	}
	limit, offset := limitOffset(page, pageSize)
	const q = "SELECT " + communityColumns + " FROM communities ORDER BY id LIMIT ? OFFSET ?"
	items, err := r.query(ctx, q, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

// ListOwnedBy returns every community owned by userID ordered by id.
func (r *CommunityRepo) ListOwnedBy(ctx context.Context, userID uint64) ([]*model.Community, error) {
	const q = "SELECT " + communityColumns + " FROM communities WHERE owner_id = ? ORDER BY id"
	return r.query(ctx, q, userID)
}

// ListMemberOf returns the communities userID owns or holds a membership
// in.  A community matching both conditions appears once.
func (r *CommunityRepo) ListMemberOf(ctx context.Context, userID uint64) ([]*model.Community, error) {
	const q = `SELECT ` + communityColumns + `
	           FROM communities
	           WHERE owner_id = ?
	              OR id IN (SELECT community_id FROM memberships WHERE user_id = ?)
	           ORDER BY id`
	return r.query(ctx, q, userID, userID)
}

func (r *CommunityRepo) query(ctx context.Context, q string, args ...any) ([]*model.Community, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []*model.Community{}
	for rows.Next() {
		c, err := scanCommunity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func scanCommunity(s scanner) (*model.Community, error) {
	var c model.Community
	if err := s.Scan(&c.ID, &c.Name, &c.Slug, &c.OwnerID, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}
