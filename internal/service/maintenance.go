package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/pennypost/pennypost/internal/database"
)

// MaintenanceService houses destructive/ops actions surfaced through the TUI.
type MaintenanceService struct {
	DB *sql.DB
}

// Reset wipes all user data. It keeps the schema intact so the app can continue running.
func (s *MaintenanceService) Reset(ctx context.Context) error {
	if s.DB == nil {
		return fmt.Errorf("maintenance: db not configured")
	}
	if err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		tables := []string{
			"expenses",
			"subcategory_presets",
			"shop_presets",
			"categories",
			"users",
		}
		for _, t := range tables {
			if _, err := tx.ExecContext(ctx, "DELETE FROM "+t); err != nil {
				return fmt.Errorf("reset table %s: %w", t, err)
			}
		}
		return nil
	}); err != nil {
		return err
	}
	_, _ = s.DB.ExecContext(ctx, "VACUUM")
	return nil
}

// PurgeArchivedPresets permanently deletes presets that were archived and not
// touched since the cutoff. Both preset tables are cleared in one transaction
// so a failure leaves them consistent.
func (s *MaintenanceService) PurgeArchivedPresets(ctx context.Context, olderThan time.Duration) (int64, error) {
	if s.DB == nil {
		return 0, fmt.Errorf("maintenance: db not configured")
	}
	cutoff := database.Millis(database.Now().Add(-olderThan))

	var purged int64
	err := database.WithTx(s.DB, func(tx *sql.Tx) error {
		for _, t := range []string{"subcategory_presets", "shop_presets"} {
			res, err := tx.ExecContext(ctx,
				"DELETE FROM "+t+" WHERE is_archived = 1 AND updated_at < ?", cutoff)
			if err != nil {
				return fmt.Errorf("purge table %s: %w", t, err)
			}
			n, err := res.RowsAffected()
			if err != nil {
				return err
			}
			purged += n
		}
		return nil
	})
	return purged, err
}
