package repository

import (
	"context"
	"database/sql"
	"sync"
)

// nameVariant records which column holds the category name. Older databases
// used category_name; current schema uses name. Detected once, then cached.
type nameVariant int

const (
	variantUnknown nameVariant = iota
	variantCurrent
	variantLegacy
)

// CategoryRepo handles categories.
type CategoryRepo struct {
	db *sql.DB

	mu       sync.Mutex
	variant  nameVariant
	hasColor bool
}

func NewCategoryRepo(db *sql.DB) *CategoryRepo {
	return &CategoryRepo{db: db, hasColor: true}
}

func (r *CategoryRepo) Upsert(ctx context.Context, c Category) error {
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO categories(user_id, name, color, sort_order)
	VALUES (?, ?, ?, ?)
	ON CONFLICT(user_id, name) DO UPDATE SET
	 color=excluded.color,
	 sort_order=excluded.sort_order;
	`, c.UserID, c.Name, c.Color, c.SortOrder)
	return err
}

func (r *CategoryRepo) List(ctx context.Context, userID int64) ([]Category, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT id, user_id, name, color, sort_order FROM categories
	WHERE user_id = ? ORDER BY sort_order, name`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &c.Color, &c.SortOrder); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) Delete(ctx context.Context, id int64) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM categories WHERE id = ?`, id)
	return err
}

// ListScopes returns every (user, category name) pair. It tolerates the
// legacy column name so bootstrap keeps working against old databases.
func (r *CategoryRepo) ListScopes(ctx context.Context) ([]CategoryScope, error) {
	out, err := r.scanScopes(ctx, r.nameColumn())
	if err != nil && r.detect(ctx) {
		out, err = r.scanScopes(ctx, r.nameColumn())
	}
	return out, err
}

func (r *CategoryRepo) scanScopes(ctx context.Context, nameCol string) ([]CategoryScope, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT user_id, `+nameCol+` FROM categories ORDER BY user_id, `+nameCol)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryScope
	for rows.Next() {
		var s CategoryScope
		if err := rows.Scan(&s.UserID, &s.CategoryName); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// ListPalette returns (id, user, name, color) for every category. Blank or
// missing colors come back as fallback. Databases predating the color column
// degrade to fallback for every row.
func (r *CategoryRepo) ListPalette(ctx context.Context, fallback string) ([]CategoryColor, error) {
	out, err := r.scanPalette(ctx, fallback)
	if err != nil && r.detect(ctx) {
		out, err = r.scanPalette(ctx, fallback)
	}
	return out, err
}

func (r *CategoryRepo) scanPalette(ctx context.Context, fallback string) ([]CategoryColor, error) {
	nameCol := r.nameColumn()
	query := `SELECT id, user_id, ` + nameCol + `, color FROM categories`
	if !r.colorColumn() {
		query = `SELECT id, user_id, ` + nameCol + `, '' FROM categories`
	}
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []CategoryColor
	for rows.Next() {
		var c CategoryColor
		if err := rows.Scan(&c.ID, &c.UserID, &c.CategoryName, &c.Color); err != nil {
			return nil, err
		}
		if c.Color == "" {
			c.Color = fallback
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *CategoryRepo) nameColumn() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.variant == variantLegacy {
		return "category_name"
	}
	return "name"
}

func (r *CategoryRepo) colorColumn() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.hasColor
}

// detect probes sqlite table_info once and records which columns exist.
// Returns true when the cached decision changed, so the caller can retry.
func (r *CategoryRepo) detect(ctx context.Context) bool {
	rows, err := r.db.QueryContext(ctx, `PRAGMA table_info(categories)`)
	if err != nil {
		return false
	}
	defer rows.Close()

	var hasName, hasLegacy, hasColor bool
	for rows.Next() {
		var cid int
		var name, colType string
		var notNull, pk int
		var dflt sql.NullString
		if err := rows.Scan(&cid, &name, &colType, &notNull, &dflt, &pk); err != nil {
			return false
		}
		switch name {
		case "name":
			hasName = true
		case "category_name":
			hasLegacy = true
		case "color":
			hasColor = true
		}
	}

	variant := variantCurrent
	if !hasName && hasLegacy {
		variant = variantLegacy
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	changed := r.variant != variant || r.hasColor != hasColor
	r.variant = variant
	r.hasColor = hasColor
	return changed
}
