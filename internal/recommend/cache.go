package recommend

import "sync"

// Cache is the in-process suggestion store. Each key owns two independent
// buckets (subcategory names, shop names) plus the category color side cache.
// A bucket is "warm" once it has been explicitly set, even to an empty list;
// callers use that to tell "no presets yet" apart from "never loaded".
//
// Reads never block on I/O and never fail. Writes are last-write-wins; the
// loaders build the fully merged list before calling SetNames.
type Cache struct {
	mu         sync.RWMutex
	subcats    map[Key][]string
	shops      map[Key][]string
	colorByID  map[int64]string
	colorByKey map[Key]string
}

func NewCache() *Cache {
	c := &Cache{}
	c.reset()
	return c
}

// Names returns the bucket for a key, or ok=false if it was never loaded.
// The returned slice is a copy; callers may mutate it freely.
func (c *Cache) Names(kind Kind, key Key) ([]string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	names, ok := c.bucket(kind)[key]
	if !ok {
		return nil, false
	}
	out := make([]string, len(names))
	copy(out, names)
	return out, true
}

// SetNames replaces the bucket for a key. A nil slice marks the bucket warm
// but empty.
func (c *Cache) SetNames(kind Kind, key Key, names []string) {
	cp := make([]string, len(names))
	copy(cp, names)
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bucket(kind)[key] = cp
}

// BothWarm reports whether both buckets for a key have been set at least once.
func (c *Cache) BothWarm(key Key) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, sub := c.subcats[key]
	_, shop := c.shops[key]
	return sub && shop
}

// SetColor records a category's display color under both lookup forms.
func (c *Cache) SetColor(categoryID int64, key Key, color string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.colorByID[categoryID] = color
	c.colorByKey[key] = color
}

// CategoryColor resolves a display color, preferring the category id (0 means
// unknown) and falling back to the user+name key. ok=false when neither
// resolves.
func (c *Cache) CategoryColor(categoryID int64, userID int64, categoryName string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if categoryID != 0 {
		if color, ok := c.colorByID[categoryID]; ok {
			return color, true
		}
	}
	if categoryName != "" {
		if color, ok := c.colorByKey[NewKey(userID, categoryName)]; ok {
			return color, true
		}
	}
	return "", false
}

// Reset drops all buckets and colors. Bootstrap calls this before a full
// reload so stale partial state never merges with fresh results.
func (c *Cache) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.reset()
}

func (c *Cache) reset() {
	c.subcats = make(map[Key][]string)
	c.shops = make(map[Key][]string)
	c.colorByID = make(map[int64]string)
	c.colorByKey = make(map[Key]string)
}

// bucket must be called with the lock held.
func (c *Cache) bucket(kind Kind) map[Key][]string {
	if kind == KindShop {
		return c.shops
	}
	return c.subcats
}
