package recommend

import (
	"context"
	"log/slog"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/pennypost/pennypost/internal/database/repository"
)

const (
	// DefaultLimit caps suggestion list size per bucket.
	DefaultLimit = 40
	// DefaultFallbackColor is used for categories with no stored color.
	DefaultFallbackColor = "#7f849c"

	bootstrapFlightKey = "all"
)

// PresetStore is the persistence surface the loaders and upserts consume.
type PresetStore interface {
	NamesForCategory(ctx context.Context, kind Kind, userID int64, categoryName string, limit int) ([]string, error)
	ListActive(ctx context.Context, kind Kind) ([]repository.PresetName, error)
	MarkUsed(ctx context.Context, kind Kind, userID int64, categoryName, displayName, normalizedName string) error
	Register(ctx context.Context, kind Kind, userID int64, categoryName, displayName, normalizedName string) error
	Archive(ctx context.Context, kind Kind, userID int64, categoryName, normalizedName string) error
}

// CategoryStore provides the category scopes and palette bootstrap reads.
type CategoryStore interface {
	ListScopes(ctx context.Context) ([]repository.CategoryScope, error)
	ListPalette(ctx context.Context, fallback string) ([]repository.CategoryColor, error)
}

// Service owns the cache lifecycle: the one-shot bootstrap, per-scope
// preloads, and the write-through upsert paths. Suggestion data is a
// convenience, so every load failure is logged and absorbed; a caller never
// sees an error from this type, only an empty list.
type Service struct {
	Presets       PresetStore
	Categories    CategoryStore
	Cache         *Cache
	Limit         int
	FallbackColor string
	Logger        *slog.Logger

	bootstrapFlight singleflight.Group
	loadFlight      singleflight.Group
}

// PreloadAll populates the whole cache from the preset store in one pass.
// Concurrent callers share a single in-flight run. The cache is cleared
// first, so the result is a consistent full reload, never a merge with
// stale partial state.
func (s *Service) PreloadAll(ctx context.Context) {
	_, _, _ = s.bootstrapFlight.Do(bootstrapFlightKey, func() (interface{}, error) {
		s.bootstrap(ctx)
		return nil, nil
	})
}

func (s *Service) bootstrap(ctx context.Context) {
	s.Cache.Reset()

	// Pre-create empty buckets for every known scope so "known category, no
	// presets yet" is distinguishable from "unknown category".
	scopes, err := s.Categories.ListScopes(ctx)
	if err != nil {
		s.logger().Warn("suggestion bootstrap: list category scopes", "err", err)
	}
	for _, sc := range scopes {
		key := NewKey(sc.UserID, sc.CategoryName)
		s.Cache.SetNames(KindSubcategory, key, nil)
		s.Cache.SetNames(KindShop, key, nil)
	}

	palette, err := s.Categories.ListPalette(ctx, s.fallbackColor())
	if err != nil {
		s.logger().Warn("suggestion bootstrap: load palette", "err", err)
	}
	for _, c := range palette {
		s.Cache.SetColor(c.ID, NewKey(c.UserID, c.CategoryName), c.Color)
	}

	var g errgroup.Group
	for _, kind := range []Kind{KindSubcategory, KindShop} {
		g.Go(func() error {
			s.loadAllBuckets(ctx, kind)
			return nil
		})
	}
	_ = g.Wait()
}

// loadAllBuckets runs the bulk preset query for one kind and fills every
// scope's bucket, deduplicating by normalized form with the query's ranking
// order preserved (first occurrence wins).
func (s *Service) loadAllBuckets(ctx context.Context, kind Kind) {
	rows, err := s.Presets.ListActive(ctx, kind)
	if err != nil {
		s.logger().Warn("suggestion bootstrap: bulk preset load", "kind", kind, "err", err)
		return
	}

	grouped := make(map[Key][]string)
	seen := make(map[Key]map[string]struct{})
	var order []Key
	for _, row := range rows {
		key := NewKey(row.UserID, row.CategoryName)
		if seen[key] == nil {
			seen[key] = make(map[string]struct{})
			order = append(order, key)
		}
		norm := Normalize(row.Name)
		if _, dup := seen[key][norm]; dup {
			continue
		}
		seen[key][norm] = struct{}{}
		if len(grouped[key]) < s.limit() {
			grouped[key] = append(grouped[key], row.Name)
		}
	}
	for _, key := range order {
		s.Cache.SetNames(kind, key, grouped[key])
	}
}

// PreloadCategory warms a single scope's two buckets on demand. It is a
// no-op when both buckets are already warm, and concurrent calls for the
// same scope share one in-flight load.
func (s *Service) PreloadCategory(ctx context.Context, userID int64, categoryName string) {
	key := NewKey(userID, categoryName)
	if s.Cache.BothWarm(key) {
		return
	}
	_, _, _ = s.loadFlight.Do(string(key), func() (interface{}, error) {
		var g errgroup.Group
		for _, kind := range []Kind{KindSubcategory, KindShop} {
			g.Go(func() error {
				names, err := s.Presets.NamesForCategory(ctx, kind, userID, categoryName, s.limit())
				if err != nil {
					s.logger().Warn("suggestion preload", "kind", kind, "key", key, "err", err)
					names = nil
				}
				s.Cache.SetNames(kind, key, dedupe(names))
				return nil
			})
		}
		_ = g.Wait()
		return nil, nil
	})
}

// MarkUsed records a confirmed use of a name (the containing action, e.g. an
// expense save, completed) and mirrors it into the cache. Whitespace-only
// input is ignored.
func (s *Service) MarkUsed(ctx context.Context, kind Kind, userID int64, categoryName, name string) {
	display := CleanDisplay(name)
	if display == "" {
		return
	}
	if err := s.Presets.MarkUsed(ctx, kind, userID, categoryName, display, Normalize(display)); err != nil {
		s.logger().Warn("preset mark-used", "kind", kind, "err", err)
	}
	s.mergeIntoCache(kind, NewKey(userID, categoryName), display)
}

// Register records a name that was typed but not yet confirmed (the form is
// still open). Counters stay untouched for existing rows.
func (s *Service) Register(ctx context.Context, kind Kind, userID int64, categoryName, name string) {
	display := CleanDisplay(name)
	if display == "" {
		return
	}
	if err := s.Presets.Register(ctx, kind, userID, categoryName, display, Normalize(display)); err != nil {
		s.logger().Warn("preset register", "kind", kind, "err", err)
	}
	s.mergeIntoCache(kind, NewKey(userID, categoryName), display)
}

// Archive soft-deletes a suggestion and drops it from the cache bucket.
func (s *Service) Archive(ctx context.Context, kind Kind, userID int64, categoryName, name string) {
	norm := Normalize(name)
	if norm == "" {
		return
	}
	if err := s.Presets.Archive(ctx, kind, userID, categoryName, norm); err != nil {
		s.logger().Warn("preset archive", "kind", kind, "err", err)
	}
	key := NewKey(userID, categoryName)
	names, ok := s.Cache.Names(kind, key)
	if !ok {
		return
	}
	kept := names[:0]
	for _, n := range names {
		if Normalize(n) != norm {
			kept = append(kept, n)
		}
	}
	s.Cache.SetNames(kind, key, kept)
}

// mergeIntoCache prepends a freshly accepted name to its bucket unless a
// case-insensitive match is already present, in which case the existing
// ordering is left alone.
func (s *Service) mergeIntoCache(kind Kind, key Key, display string) {
	norm := Normalize(display)
	names, _ := s.Cache.Names(kind, key)
	for _, n := range names {
		if Normalize(n) == norm {
			return
		}
	}
	s.Cache.SetNames(kind, key, append([]string{display}, names...))
}

// dedupe collapses names that share a normalized form, first occurrence wins.
// Needed for legacy rows inserted before normalization was enforced.
func dedupe(names []string) []string {
	seen := make(map[string]struct{}, len(names))
	out := names[:0]
	for _, n := range names {
		norm := Normalize(n)
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, n)
	}
	return out
}

func (s *Service) limit() int {
	if s.Limit > 0 {
		return s.Limit
	}
	return DefaultLimit
}

func (s *Service) fallbackColor() string {
	if s.FallbackColor != "" {
		return s.FallbackColor
	}
	return DefaultFallbackColor
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
