package testdata

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/pennypost/pennypost/internal/database/repository"
	"github.com/pennypost/pennypost/internal/recommend"
)

// Repos bundles repos used by Seed.
type Repos struct {
	Categories *repository.CategoryRepo
	Expenses   *repository.ExpenseRepo
	Presets    *repository.PresetRepo
}

// sample holds demo names for one category.
type sample struct {
	Subcategories []string
	Shops         []string
}

var samples = map[string]sample{
	"Groceries": {
		Subcategories: []string{"Fruit & Veg", "Snacks & Drinks", "Meat", "Dairy"},
		Shops:         []string{"Aldi", "Woolworths", "Corner Deli"},
	},
	"Dining & Drinks": {
		Subcategories: []string{"Lunch", "Coffee", "Takeaway"},
		Shops:         []string{"Sushi Hub", "Laneway Espresso", "Uber Eats"},
	},
	"Transport": {
		Subcategories: []string{"Fuel", "Parking", "Public Transport"},
		Shops:         []string{"Shell", "Opal", "Wilson Parking"},
	},
	"Entertainment": {
		Subcategories: []string{"Streaming", "Movies"},
		Shops:         []string{"Spotify", "Event Cinemas"},
	},
}

// Seed fills an empty database with a few weeks of demo expenses and marks
// their names used, so suggestion lists have something to show on first run.
// It is a no-op when the user already has expenses.
func Seed(ctx context.Context, userID int64, repos Repos) error {
	existing, err := repos.Expenses.ListForUser(ctx, userID)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	cats, err := repos.Categories.List(ctx, userID)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	for _, cat := range cats {
		s, ok := samples[cat.Name]
		if !ok {
			continue
		}
		for i := 0; i < 5; i++ {
			sub := s.Subcategories[rand.IntN(len(s.Subcategories))]
			shop := s.Shops[rand.IntN(len(s.Shops))]
			e := repository.Expense{
				ID:          uuid.NewString(),
				UserID:      userID,
				CategoryID:  cat.ID,
				AmountCents: int64(rand.IntN(9500) + 500),
				Subcategory: &sub,
				Shop:        &shop,
				SpentAt:     now.AddDate(0, 0, -rand.IntN(21)),
			}
			if err := repos.Expenses.Insert(ctx, e); err != nil {
				return err
			}
			if err := markUsed(ctx, repos.Presets, userID, cat.Name, sub, shop); err != nil {
				return err
			}
		}
	}
	return nil
}

func markUsed(ctx context.Context, presets *repository.PresetRepo, userID int64, category, sub, shop string) error {
	if err := presets.MarkUsed(ctx, repository.PresetSubcategory, userID, category, sub, recommend.Normalize(sub)); err != nil {
		return err
	}
	return presets.MarkUsed(ctx, repository.PresetShop, userID, category, shop, recommend.Normalize(shop))
}
