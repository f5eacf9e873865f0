package repository

import "time"

// The preset and expense tables store timestamps as epoch millis.
func nowMillis() int64 { return time.Now().UTC().UnixMilli() }

func toMillis(t time.Time) int64 { return t.UnixMilli() }

func fromMillis(ms int64) time.Time { return time.UnixMilli(ms).UTC() }

// User represents a user row.
type User struct {
	ID        int64
	Name      string
	CreatedAt time.Time
}

// Category represents a category row.
type Category struct {
	ID        int64
	UserID    int64
	Name      string
	Color     string
	SortOrder int
}

// CategoryScope is a (user, category name) pair, the unit the suggestion
// cache is bucketed by.
type CategoryScope struct {
	UserID       int64
	CategoryName string
}

// CategoryColor is one palette row consumed by the color cache.
type CategoryColor struct {
	ID           int64
	UserID       int64
	CategoryName string
	Color        string
}

// PresetKind selects between the two preset tables, which share a shape.
type PresetKind string

const (
	PresetSubcategory PresetKind = "subcategory"
	PresetShop        PresetKind = "shop"
)

func (k PresetKind) table() string {
	if k == PresetShop {
		return "shop_presets"
	}
	return "subcategory_presets"
}

// PresetRecord represents one remembered name within a user+category scope.
type PresetRecord struct {
	ID             int64
	UserID         int64
	CategoryName   string
	DisplayName    string
	NormalizedName string
	UseCount       int
	LastUsedAt     *time.Time
	IsArchived     bool
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// PresetName is the slim projection the bulk bootstrap query returns.
type PresetName struct {
	UserID       int64
	CategoryName string
	Name         string
}

// Expense represents an expense row.
type Expense struct {
	ID          string
	UserID      int64
	CategoryID  int64
	AmountCents int64
	Note        string
	Subcategory *string
	Shop        *string
	SpentAt     time.Time
	CreatedAt   time.Time
}
