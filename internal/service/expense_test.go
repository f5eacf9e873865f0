package service

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pennypost/pennypost/internal/database"
	"github.com/pennypost/pennypost/internal/database/repository"
	"github.com/pennypost/pennypost/internal/recommend"
)

type harness struct {
	db      *sql.DB
	svc     *ExpenseService
	rec     *recommend.Service
	presets *repository.PresetRepo
	userID  int64
	cats    []repository.Category
}

func setupExpenseTest(t *testing.T) (*harness, context.Context) {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	t.Cleanup(cancel)

	dbPath := filepath.Join(t.TempDir(), "test.db")
	migrations, err := filepath.Abs("../database/migrations")
	require.NoError(t, err)
	require.NoError(t, database.RunMigrations(dbPath, migrations))

	db, err := database.Open(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	userID, err := repository.NewUserRepo(db).Ensure(ctx, "test")
	require.NoError(t, err)

	catRepo := repository.NewCategoryRepo(db)
	for i, name := range []string{"Groceries", "Transport"} {
		require.NoError(t, catRepo.Upsert(ctx, repository.Category{UserID: userID, Name: name, SortOrder: i}))
	}
	cats, err := catRepo.List(ctx, userID)
	require.NoError(t, err)

	presetRepo := repository.NewPresetRepo(db)
	rec := &recommend.Service{
		Presets:    presetRepo,
		Categories: catRepo,
		Cache:      recommend.NewCache(),
	}
	svc := &ExpenseService{
		Expenses:        repository.NewExpenseRepo(db),
		Recommendations: rec,
	}
	return &harness{db: db, svc: svc, rec: rec, presets: presetRepo, userID: userID, cats: cats}, ctx
}

func TestLogExpenseConfirmsNames(t *testing.T) {
	t.Parallel()
	h, ctx := setupExpenseTest(t)

	// bootstrap first: both scopes warm, nothing in them yet
	h.rec.PreloadAll(ctx)
	for _, name := range []string{"Groceries", "Transport"} {
		key := recommend.NewKey(h.userID, name)
		require.True(t, h.rec.Cache.BothWarm(key))
		names, ok := h.rec.Cache.Names(recommend.KindSubcategory, key)
		require.True(t, ok)
		require.Empty(t, names)
	}

	id, err := h.svc.Log(ctx, ExpenseInput{
		UserID:       h.userID,
		CategoryID:   h.cats[0].ID,
		CategoryName: "Groceries",
		AmountCents:  1250,
		Subcategory:  "Snacks & Drinks ",
		Shop:         "Corner Deli",
	})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	rec, err := h.presets.Get(ctx, recommend.KindSubcategory, h.userID, "Groceries", "snacks & drinks")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Equal(t, 1, rec.UseCount)
	require.NotNil(t, rec.LastUsedAt)
	require.Equal(t, "Snacks & Drinks", rec.DisplayName)

	names, _ := h.rec.Cache.Names(recommend.KindSubcategory, recommend.NewKey(h.userID, "Groceries"))
	require.Equal(t, []string{"Snacks & Drinks"}, names)
	names, _ = h.rec.Cache.Names(recommend.KindShop, recommend.NewKey(h.userID, "Groceries"))
	require.Equal(t, []string{"Corner Deli"}, names)

	// the other scope stays untouched
	names, _ = h.rec.Cache.Names(recommend.KindSubcategory, recommend.NewKey(h.userID, "Transport"))
	require.Empty(t, names)
}

func TestDraftThenLogCountsOnce(t *testing.T) {
	t.Parallel()
	h, ctx := setupExpenseTest(t)

	in := ExpenseInput{
		UserID:       h.userID,
		CategoryID:   h.cats[0].ID,
		CategoryName: "Groceries",
		AmountCents:  500,
		Subcategory:  "Snacks",
	}
	h.svc.Draft(ctx, in)

	rec, err := h.presets.Get(ctx, recommend.KindSubcategory, h.userID, "Groceries", "snacks")
	require.NoError(t, err)
	require.NotNil(t, rec)
	require.Zero(t, rec.UseCount)
	require.Nil(t, rec.LastUsedAt)

	_, err = h.svc.Log(ctx, in)
	require.NoError(t, err)

	rec, err = h.presets.Get(ctx, recommend.KindSubcategory, h.userID, "Groceries", "snacks")
	require.NoError(t, err)
	require.Equal(t, 1, rec.UseCount, "the draft registration must not have counted")
}

func TestLogWithoutNamesSkipsPresets(t *testing.T) {
	t.Parallel()
	h, ctx := setupExpenseTest(t)

	_, err := h.svc.Log(ctx, ExpenseInput{
		UserID:       h.userID,
		CategoryID:   h.cats[1].ID,
		CategoryName: "Transport",
		AmountCents:  300,
		Subcategory:  "   ",
	})
	require.NoError(t, err)

	n, err := h.presets.CountForScope(ctx, recommend.KindSubcategory, h.userID, "Transport")
	require.NoError(t, err)
	require.Zero(t, n, "whitespace-only names are ignored")
}

func TestLogValidation(t *testing.T) {
	t.Parallel()
	h, ctx := setupExpenseTest(t)

	_, err := h.svc.Log(ctx, ExpenseInput{UserID: h.userID, CategoryID: h.cats[0].ID, CategoryName: "Groceries"})
	require.Error(t, err, "amount required")

	_, err = h.svc.Log(ctx, ExpenseInput{UserID: h.userID, CategoryName: "Groceries", AmountCents: 100})
	require.Error(t, err, "category required")
}

func TestPreloadAfterWritesRanksByRecency(t *testing.T) {
	t.Parallel()
	h, ctx := setupExpenseTest(t)

	for _, shop := range []string{"Aldi", "Coles", "Aldi"} {
		_, err := h.svc.Log(ctx, ExpenseInput{
			UserID:       h.userID,
			CategoryID:   h.cats[0].ID,
			CategoryName: "Groceries",
			AmountCents:  100,
			Shop:         shop,
		})
		require.NoError(t, err)
	}

	// wipe the cache and reload from the store: Aldi used twice
	h.rec.Cache.Reset()
	h.rec.PreloadCategory(ctx, h.userID, "Groceries")

	names, ok := h.rec.Cache.Names(recommend.KindShop, recommend.NewKey(h.userID, "Groceries"))
	require.True(t, ok)
	require.Len(t, names, 2)
	require.Equal(t, "Aldi", names[0], "higher use count ranks first on equal recency ties")
}
