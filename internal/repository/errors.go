// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios without
// looking at driver errors.  Uniqueness conflicts are always detected from
// the database's own constraint violation; pre-checks are only a fast path.
package repository

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// Uniqueness conflicts.
var (
	ErrEmailExists   = errors.New("email already exists")
	ErrSlugExists    = errors.New("community slug already exists")
	ErrRoleExists    = errors.New("role name already exists")
	ErrAlreadyMember = errors.New("user is already a member of the community")
)

// Missing references.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrCommunityNotFound  = errors.New("community not found")
	ErrRoleNotFound       = errors.New("role not found")
	ErrMembershipNotFound = errors.New("membership not found")
)

// ErrInvalidCredentials is returned for an unknown email and for a wrong
// password alike.
var ErrInvalidCredentials = errors.New("invalid credentials")

// mysqlDuplicateEntry is ER_DUP_ENTRY.
const mysqlDuplicateEntry = 1062

// isUniqueViolation reports whether err is a unique/primary key violation
// raised by either supported driver.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return myErr.Number == mysqlDuplicateEntry
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
			return true
		case sqlite3.SQLITE_CONSTRAINT:
			// without extended result codes only the message tells them apart
			return strings.Contains(liteErr.Error(), "UNIQUE constraint failed")
		}
	}
	return false
}
