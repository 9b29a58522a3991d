package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/community-hub/internal/model"
)

// MemberRepo persists (community, user, role) associations.  The unique
// index uq_memberships_community_user guarantees at most one membership per
// (community, user) pair.
type MemberRepo struct {
	db    *sql.DB
	users *UserRepo
	roles *RoleRepo
}

// NewMemberRepo builds a MemberRepo.  It reuses the user and role stores
// on the same pool to resolve references in listings.
func NewMemberRepo(db *sql.DB) *MemberRepo {
	return &MemberRepo{db: db, users: NewUserRepo(db), roles: NewRoleRepo(db)}
}

const membershipColumns = "id, community_id, user_id, role_id, created_at"

// Add creates a membership.  The referenced community, role and user must
// exist and the user must not already belong to the community.  These
// checks run before the insert; the unique index still has the final word
// when two identical requests race, and its violation is reported as
// ErrAlreadyMember as well.
func (r *MemberRepo) Add(ctx context.Context, communityID, userID, roleID uint64) (*model.Membership, error) {
	ok, err := rowExists(ctx, r.db, "SELECT 1 FROM communities WHERE id = ? LIMIT 1", communityID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrCommunityNotFound
	}
	if ok, err = r.roles.Exists(ctx, roleID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrRoleNotFound
	}
	if ok, err = r.users.Exists(ctx, userID); err != nil {
		return nil, err
	} else if !ok {
		return nil, ErrUserNotFound
	}
	ok, err = rowExists(ctx, r.db,
		"SELECT 1 FROM memberships WHERE community_id = ? AND user_id = ? LIMIT 1", communityID, userID)
	if err != nil {
		return nil, err
	}
	if ok {
		return nil, ErrAlreadyMember
	}

	now := time.Now().UTC().Truncate(time.Second)
	const q = "INSERT INTO memberships (community_id, user_id, role_id, created_at) VALUES (?, ?, ?, ?)"
	res, err := r.db.ExecContext(ctx, q, communityID, userID, roleID, now)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrAlreadyMember
		}
		return nil, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return nil, err
	}
	return &model.Membership{
		ID:          uint64(id),
		CommunityID: communityID,
		UserID:      userID,
		RoleID:      roleID,
		CreatedAt:   now,
	}, nil
}

// GetByID fetches a membership or returns ErrMembershipNotFound.
func (r *MemberRepo) GetByID(ctx context.Context, id uint64) (*model.Membership, error) {
	var m model.Membership
	err := r.db.QueryRowContext(ctx, "SELECT "+membershipColumns+" FROM memberships WHERE id = ?", id).
		Scan(&m.ID, &m.CommunityID, &m.UserID, &m.RoleID, &m.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrMembershipNotFound
		}
		return nil, err
	}
	return &m, nil
}

// Remove deletes a membership by id.
func (r *MemberRepo) Remove(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM memberships WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMembershipNotFound
	}
	return nil
}

// ListByCommunity returns one page of the community's memberships with the
// user and role of every entry resolved to {id, name}.  Users and roles are
// loaded with one query each for the whole page.
func (r *MemberRepo) ListByCommunity(ctx context.Context, communityID uint64, page, pageSize int) ([]*model.MemberView, int64, error) {
	var total int64
	if err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM memberships WHERE community_id = ?", communityID).Scan(&total); err != nil {
		return nil, 0, err
	}

	limit, offset := limitOffset(page, pageSize)
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+membershipColumns+" FROM memberships WHERE community_id = ? ORDER BY id LIMIT ? OFFSET ?",
		communityID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	var members []model.Membership
	for rows.Next() {
		var m model.Membership
		if err := rows.Scan(&m.ID, &m.CommunityID, &m.UserID, &m.RoleID, &m.CreatedAt); err != nil {
			rows.Close()
			return nil, 0, err
		}
		members = append(members, m)
	}
	// close before the follow-up queries; sqlite runs on a single connection
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	userIDs := make([]uint64, 0, len(members))
	roleIDs := make([]uint64, 0, len(members))
	for _, m := range members {
		userIDs = append(userIDs, m.UserID)
		roleIDs = append(roleIDs, m.RoleID)
	}
	users, err := r.users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, 0, err
	}
	roles, err := r.roles.GetByIDs(ctx, roleIDs)
	if err != nil {
		return nil, 0, err
	}

	out := make([]*model.MemberView, 0, len(members))
	for _, m := range members {
		v := &model.MemberView{
			ID:          m.ID,
			CommunityID: m.CommunityID,
			User:        model.Ref{ID: m.UserID},
			Role:        model.Ref{ID: m.RoleID},
			CreatedAt:   m.CreatedAt,
		}
		if u, ok := users[m.UserID]; ok {
			v.User.Name = u.Name
		}
		if role, ok := roles[m.RoleID]; ok {
			v.Role.Name = role.Name
		}
		out = append(out, v)
	}
	return out, total, nil
}

// RoleNamesForUser returns the distinct role names userID holds across all
// communities.
func (r *MemberRepo) RoleNamesForUser(ctx context.Context, userID uint64) ([]string, error) {
	const q = `SELECT DISTINCT r.name
	           FROM memberships m JOIN roles r ON r.id = m.role_id
	           WHERE m.user_id = ?`
	return r.names(ctx, q, userID)
}

// RoleNamesForUserIn returns the role names userID holds in communityID.
func (r *MemberRepo) RoleNamesForUserIn(ctx context.Context, userID, communityID uint64) ([]string, error) {
	const q = `SELECT r.name
	           FROM memberships m JOIN roles r ON r.id = m.role_id
	           WHERE m.user_id = ? AND m.community_id = ?`
	return r.names(ctx, q, userID, communityID)
}

func (r *MemberRepo) names(ctx context.Context, q string, args ...any) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		out = append(out, name)
	}
	return out, rows.Err()
}
