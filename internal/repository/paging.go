package repository

import (
	"math"
	"strings"
)

// DefaultPageSize is the page size of every paginated listing.
const DefaultPageSize = 10

// NormalizePage maps page numbers below 1 onto the first page.
func NormalizePage(page int) int {
	if page < 1 {
		return 1
	}
	return page
}

// PageCount returns ceil(total / size).
func PageCount(total int64, size int) int {
	if size <= 0 || total <= 0 {
		return 0
	}
	return int((total + int64(size) - 1) / int64(size))
}

// limitOffset converts a 1-indexed page into LIMIT/OFFSET arguments.  The
// page is clamped so the offset stays within a signed 32-bit range.
func limitOffset(page, size int) (int, int) {
	if size <= 0 {
		size = DefaultPageSize
	}
	page = NormalizePage(page)
	if last := math.MaxInt32/size + 1; page > last {
		page = last
	}
	return size, (page - 1) * size
}

// placeholders returns "?, ?, ?" with n markers for IN clauses.
func placeholders(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.TrimSuffix(strings.Repeat("?, ", n), ", ")
}

// uniqueIDs drops duplicates while keeping first-seen order.
func uniqueIDs(ids []uint64) []uint64 {
	seen := make(map[uint64]struct{}, len(ids))
	out := make([]uint64, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func idArgs(ids []uint64) []any {
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	return args
}
