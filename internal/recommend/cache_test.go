package recommend

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNamesAbsentVsEmpty(t *testing.T) {
	t.Parallel()
	c := NewCache()
	key := NewKey(1, "Groceries")

	_, ok := c.Names(KindSubcategory, key)
	require.False(t, ok, "never-loaded bucket must read as absent")

	c.SetNames(KindSubcategory, key, nil)
	names, ok := c.Names(KindSubcategory, key)
	require.True(t, ok, "explicitly set bucket is warm even when empty")
	require.Empty(t, names)
}

func TestBucketsAreIndependent(t *testing.T) {
	t.Parallel()
	c := NewCache()
	key := NewKey(1, "Groceries")

	c.SetNames(KindSubcategory, key, []string{"Snacks"})
	_, ok := c.Names(KindShop, key)
	require.False(t, ok)
	require.False(t, c.BothWarm(key))

	c.SetNames(KindShop, key, nil)
	require.True(t, c.BothWarm(key))
}

func TestSetNamesLastWriteWins(t *testing.T) {
	t.Parallel()
	c := NewCache()
	key := NewKey(1, "Groceries")

	c.SetNames(KindShop, key, []string{"Aldi", "Coles"})
	c.SetNames(KindShop, key, []string{"Woolworths"})
	names, ok := c.Names(KindShop, key)
	require.True(t, ok)
	require.Equal(t, []string{"Woolworths"}, names)
}

func TestNamesReturnsCopy(t *testing.T) {
	t.Parallel()
	c := NewCache()
	key := NewKey(1, "Groceries")
	c.SetNames(KindSubcategory, key, []string{"Snacks", "Fruit"})

	names, _ := c.Names(KindSubcategory, key)
	names[0] = "mutated"

	again, _ := c.Names(KindSubcategory, key)
	require.Equal(t, []string{"Snacks", "Fruit"}, again)
}

func TestCategoryColorLookup(t *testing.T) {
	t.Parallel()
	c := NewCache()
	key := NewKey(1, "Groceries")
	c.SetColor(42, key, "#94e2d5")

	color, ok := c.CategoryColor(42, 0, "")
	require.True(t, ok)
	require.Equal(t, "#94e2d5", color)

	// id unknown, falls back to user+name
	color, ok = c.CategoryColor(0, 1, "groceries")
	require.True(t, ok)
	require.Equal(t, "#94e2d5", color)

	_, ok = c.CategoryColor(0, 2, "groceries")
	require.False(t, ok)
	_, ok = c.CategoryColor(99, 0, "")
	require.False(t, ok)
}

func TestReset(t *testing.T) {
	t.Parallel()
	c := NewCache()
	key := NewKey(1, "Groceries")
	c.SetNames(KindSubcategory, key, []string{"Snacks"})
	c.SetNames(KindShop, key, []string{"Aldi"})
	c.SetColor(42, key, "#94e2d5")

	c.Reset()

	_, ok := c.Names(KindSubcategory, key)
	require.False(t, ok)
	require.False(t, c.BothWarm(key))
	_, ok = c.CategoryColor(42, 1, "Groceries")
	require.False(t, ok)
}
