// Package catalog implements the durable raw item cache and the chunked,
// retrying bulk fetch that fills it from the remote catalog API.
package catalog

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
)

// Cache is the durable ID → raw record store for one locale. Records are
// only ever overwritten by a newer fetch of the same ID, never deleted.
//
// The cache is not safe for concurrent mutation; ingestion is the only
// writer and runs single-threaded.
type Cache struct {
	path  string
	items map[int]json.RawMessage
}

// LoadCache reads the cache file at path. A missing or unparseable file is
// treated as an empty cache: loss of the cache only costs a refetch, so it
// is logged and never an error.
func LoadCache(path string) *Cache {
	c := &Cache{
		path:  path,
		items: make(map[int]json.RawMessage),
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("cache unreadable, starting empty", "path", path, "error", err)
		}
		return c
	}

	if err := json.Unmarshal(data, &c.items); err != nil {
		slog.Warn("cache corrupt, starting empty", "path", path, "error", err)
		c.items = make(map[int]json.RawMessage)
	}
	return c
}

// Len returns the number of cached records.
func (c *Cache) Len() int {
	return len(c.items)
}

// Has reports whether id is cached.
func (c *Cache) Has(id int) bool {
	_, ok := c.items[id]
	return ok
}

// Get returns the raw record for id.
func (c *Cache) Get(id int) (json.RawMessage, bool) {
	raw, ok := c.items[id]
	return raw, ok
}

// IDs returns all cached IDs in ascending order.
func (c *Cache) IDs() []int {
	ids := make([]int, 0, len(c.items))
	for id := range c.items {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// All returns the underlying ID → raw record map. The map is shared with
// the cache; callers must treat it as read-only.
func (c *Cache) All() map[int]json.RawMessage {
	return c.items
}

// Merge stores records under their corresponding IDs, overwriting any
// existing entries. ids and records must be position-aligned; Merge is
// idempotent for identical input.
func (c *Cache) Merge(ids []int, records []json.RawMessage) {
	for i, id := range ids {
		c.items[id] = records[i]
	}
}

// Persist writes the full store to the cache file atomically via a temp
// file and rename, so a crash mid-write cannot corrupt the previous cache.
func (c *Cache) Persist() error {
	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		return fmt.Errorf("creating cache directory: %w", err)
	}

	data, err := json.Marshal(c.items)
	if err != nil {
		return fmt.Errorf("marshalling cache: %w", err)
	}

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp cache: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming cache: %w", err)
	}
	return nil
}
