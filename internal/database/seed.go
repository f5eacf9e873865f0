package database

import (
	"context"
	"database/sql"

	"github.com/pennypost/pennypost/internal/database/repository"
)

// DefaultUser is the single local profile created on first run.
const DefaultUser = "local"

var defaultCategories = []struct {
	name  string
	color string
}{
	{"Income", "#a6e3a1"},
	{"Groceries", "#94e2d5"},
	{"Dining & Drinks", "#fab387"},
	{"Transport", "#89b4fa"},
	{"Bills & Utilities", "#cba6f7"},
	{"Entertainment", "#f5c2e7"},
	{"Shopping", "#f2cdcd"},
	{"Health", "#74c7ec"},
	{"Savings", "#b4befe"},
}

// SeedDefaults ensures a local user and baseline categories exist for new
// databases. It is idempotent and safe to run on every startup.
func SeedDefaults(ctx context.Context, db *sql.DB) (int64, error) {
	userRepo := repository.NewUserRepo(db)
	userID, err := userRepo.Ensure(ctx, DefaultUser)
	if err != nil {
		return 0, err
	}

	catRepo := repository.NewCategoryRepo(db)
	existing, err := catRepo.List(ctx, userID)
	if err == nil && len(existing) > 0 {
		return userID, nil
	}
	for idx, c := range defaultCategories {
		cat := repository.Category{UserID: userID, Name: c.name, Color: c.color, SortOrder: idx}
		if err := catRepo.Upsert(ctx, cat); err != nil {
			return 0, err
		}
	}
	return userID, nil
}
