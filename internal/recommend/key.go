// Package recommend keeps ranked name suggestions (subcategories and shops a
// user has logged expenses against before) in an in-process cache backed by
// the preset tables. Reads are synchronous and never fail; all loading is
// best-effort, so a broken query degrades to an empty suggestion list instead
// of blocking the save that triggered it.
package recommend

import (
	"strconv"
	"strings"

	"github.com/pennypost/pennypost/internal/database/repository"
)

// Kind selects which suggestion bucket a name belongs to.
type Kind = repository.PresetKind

const (
	KindSubcategory = repository.PresetSubcategory
	KindShop        = repository.PresetShop
)

// Key identifies one user+category suggestion scope.
type Key string

// NewKey builds the composite cache key for a user and category name. The
// category part is normalized so casing and stray whitespace in the name
// never split a scope into two buckets.
func NewKey(userID int64, categoryName string) Key {
	return Key(strconv.FormatInt(userID, 10) + "|" + Normalize(categoryName))
}

// Normalize lowercases a name, trims it, and collapses internal whitespace
// runs to single spaces. Two names are the same preset iff they normalize
// equal within a scope.
func Normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}

// CleanDisplay trims and collapses whitespace but preserves casing; this is
// the form stored as the display name.
func CleanDisplay(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
