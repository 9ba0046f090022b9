// Package condense projects raw cached catalog records into the compact,
// taxonomy-classified forms the rest of the system consumes: a condensed
// record per item and a minimal quick-lookup record.
package condense

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gw2dex/gw2dex/internal/catalog"
	"github.com/gw2dex/gw2dex/internal/taxonomy"
)

// Item is the condensed projection of a raw catalog record. SubType is set
// only for types with structured detail and omitted from JSON otherwise.
type Item struct {
	Name     string            `json:"name"`
	Icon     string            `json:"icon,omitempty"`
	ChatLink string            `json:"chat_link,omitempty"`
	Rarity   taxonomy.Rarity   `json:"rarity"`
	Type     taxonomy.ItemType `json:"type"`
	SubType  taxonomy.SubType  `json:"subtype,omitempty"`
}

// QuickItem carries just enough to identify and display an item.
type QuickItem struct {
	Name string `json:"name"`
	Icon string `json:"icon,omitempty"`
}

// rawItem is the slice of the upstream record the projections need. The
// details blob is type-dependent and decoded separately.
type rawItem struct {
	Name     string          `json:"name"`
	Icon     string          `json:"icon"`
	ChatLink string          `json:"chat_link"`
	Rarity   string          `json:"rarity"`
	Type     string          `json:"type"`
	Details  json.RawMessage `json:"details"`
}

// Condense classifies and projects every record in the cache. Any record
// that fails classification aborts the whole projection: a partial condensed
// catalog silently missing items is worse than no catalog.
func Condense(cache *catalog.Cache) (map[int]Item, error) {
	out := make(map[int]Item, cache.Len())
	for id, raw := range cache.All() {
		item, err := condenseOne(raw)
		if err != nil {
			return nil, fmt.Errorf("item %d: %w", id, err)
		}
		out[id] = item
	}
	return out, nil
}

func condenseOne(raw json.RawMessage) (Item, error) {
	var ri rawItem
	if err := json.Unmarshal(raw, &ri); err != nil {
		return Item{}, fmt.Errorf("decoding record: %w", err)
	}

	t, err := taxonomy.ParseItemType(ri.Type)
	if err != nil {
		return Item{}, err
	}

	item := Item{
		Name:     ri.Name,
		Icon:     ri.Icon,
		ChatLink: ri.ChatLink,
		Rarity:   taxonomy.ParseRarity(ri.Rarity),
		Type:     t,
	}

	if decode, ok := detailDecoders[t]; ok {
		detailType, err := decode(ri.Details)
		if err != nil {
			return Item{}, fmt.Errorf("decoding %s details: %w", t, err)
		}
		st, err := taxonomy.ParseSubType(t, detailType)
		if err != nil {
			return Item{}, err
		}
		item.SubType = st
	}
	return item, nil
}

// Quick projects the cache down to name and icon only. Quick records carry
// no taxonomy, so classification failures cannot occur here.
func Quick(cache *catalog.Cache) (map[int]QuickItem, error) {
	out := make(map[int]QuickItem, cache.Len())
	for id, raw := range cache.All() {
		var ri rawItem
		if err := json.Unmarshal(raw, &ri); err != nil {
			return nil, fmt.Errorf("item %d: decoding record: %w", id, err)
		}
		out[id] = QuickItem{Name: ri.Name, Icon: ri.Icon}
	}
	return out, nil
}

// WriteFile writes v as JSON to path atomically via a temp file and rename.
func WriteFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshalling %s: %w", filepath.Base(path), err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}

// ReadFile loads a condensed catalog previously written by WriteFile.
func ReadFile(path string) (map[int]Item, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading condensed catalog: %w", err)
	}
	var items map[int]Item
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("parsing condensed catalog: %w", err)
	}
	return items, nil
}
