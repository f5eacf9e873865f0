package repository

import (
	"context"
	"database/sql"
)

// rankOrder ranks presets for suggestion lists: used names before never-used,
// most recently used first, then by usage count, then alphabetically.
const rankOrder = `(last_used_at IS NULL) ASC, last_used_at DESC, use_count DESC, name ASC`

// PresetRepo handles the subcategory_presets and shop_presets tables.
type PresetRepo struct {
	db *sql.DB
}

func NewPresetRepo(db *sql.DB) *PresetRepo { return &PresetRepo{db: db} }

// NamesForCategory returns ranked display names for one user+category scope.
func (r *PresetRepo) NamesForCategory(ctx context.Context, kind PresetKind, userID int64, categoryName string, limit int) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT name FROM `+kind.table()+`
	WHERE user_id = ? AND category_name = ? AND is_archived = 0
	ORDER BY `+rankOrder+`
	LIMIT ?`, userID, categoryName, limit)
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

// ListActive returns every non-archived preset across all scopes, grouped by
// (user, category) and ranked within each group. Used by bootstrap.
func (r *PresetRepo) ListActive(ctx context.Context, kind PresetKind) ([]PresetName, error) {
	rows, err := r.db.QueryContext(ctx, `
	SELECT user_id, category_name, name FROM `+kind.table()+`
	WHERE is_archived = 0
	ORDER BY user_id, category_name, `+rankOrder)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []PresetName
	for rows.Next() {
		var p PresetName
		if err := rows.Scan(&p.UserID, &p.CategoryName, &p.Name); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// MarkUsed records a confirmed use of a name: the counter is bumped, the
// recency timestamp refreshed, an archived row revived, and the display form
// overwritten with the casing just used.
func (r *PresetRepo) MarkUsed(ctx context.Context, kind PresetKind, userID int64, categoryName, displayName, normalizedName string) error {
	now := nowMillis()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO `+kind.table()+`(user_id, category_name, name, normalized_name, use_count, last_used_at, is_archived, created_at, updated_at)
	VALUES(?, ?, ?, ?, 1, ?, 0, ?, ?)
	ON CONFLICT(user_id, category_name, normalized_name) DO UPDATE SET
	 name=excluded.name,
	 use_count=use_count+1,
	 last_used_at=excluded.last_used_at,
	 is_archived=0,
	 updated_at=excluded.updated_at;
	`, userID, categoryName, displayName, normalizedName, now, now, now)
	return err
}

// Register records a name that was typed but not yet confirmed by a save.
// A new row starts with use_count 0 and no last_used_at; an existing row only
// has its display form and archived flag refreshed.
func (r *PresetRepo) Register(ctx context.Context, kind PresetKind, userID int64, categoryName, displayName, normalizedName string) error {
	now := nowMillis()
	_, err := r.db.ExecContext(ctx, `
	INSERT INTO `+kind.table()+`(user_id, category_name, name, normalized_name, use_count, last_used_at, is_archived, created_at, updated_at)
	VALUES(?, ?, ?, ?, 0, NULL, 0, ?, ?)
	ON CONFLICT(user_id, category_name, normalized_name) DO UPDATE SET
	 name=excluded.name,
	 is_archived=0,
	 updated_at=excluded.updated_at;
	`, userID, categoryName, displayName, normalizedName, now, now)
	return err
}

// Archive soft-deletes a name so it stops appearing in suggestions.
func (r *PresetRepo) Archive(ctx context.Context, kind PresetKind, userID int64, categoryName, normalizedName string) error {
	_, err := r.db.ExecContext(ctx, `
	UPDATE `+kind.table()+`
	SET is_archived = 1, updated_at = ?
	WHERE user_id = ? AND category_name = ? AND normalized_name = ?`,
		nowMillis(), userID, categoryName, normalizedName)
	return err
}

// Get fetches one row by its uniqueness key.
func (r *PresetRepo) Get(ctx context.Context, kind PresetKind, userID int64, categoryName, normalizedName string) (*PresetRecord, error) {
	row := r.db.QueryRowContext(ctx, `
	SELECT id, user_id, category_name, name, normalized_name, use_count, last_used_at, is_archived, created_at, updated_at
	FROM `+kind.table()+`
	WHERE user_id = ? AND category_name = ? AND normalized_name = ?`,
		userID, categoryName, normalizedName)

	var p PresetRecord
	var lastUsed sql.NullInt64
	var archived int
	var created, updated int64
	err := row.Scan(&p.ID, &p.UserID, &p.CategoryName, &p.DisplayName, &p.NormalizedName,
		&p.UseCount, &lastUsed, &archived, &created, &updated)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if lastUsed.Valid {
		t := fromMillis(lastUsed.Int64)
		p.LastUsedAt = &t
	}
	p.IsArchived = archived == 1
	p.CreatedAt = fromMillis(created)
	p.UpdatedAt = fromMillis(updated)
	return &p, nil
}

// CountForScope reports how many rows (archived included) exist for a scope.
func (r *PresetRepo) CountForScope(ctx context.Context, kind PresetKind, userID int64, categoryName string) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
	SELECT COUNT(*) FROM `+kind.table()+`
	WHERE user_id = ? AND category_name = ?`, userID, categoryName).Scan(&n)
	return n, err
}
