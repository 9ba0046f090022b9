// Package inventory builds a reverse index from catalog item ID to every
// place an account holds that item. One physical item is filed under its own
// ID and under every skin, infusion, and upgrade ID it references, so a
// lookup by any of those surfaces the owning entry.
package inventory

import (
	"fmt"

	"github.com/gw2dex/gw2dex/internal/gw2api"
)

// Entry is one occupied item-bearing location. Entries are constructed
// fresh on every snapshot and never mutated afterwards.
type Entry struct {
	// Source names where the item sits: a storage location like "Bank",
	// or a character name with LocationHint refining the spot.
	Source       string
	LocationHint string

	ItemID    int
	Name      string // filled in by the caller from a catalog projection
	Count     int
	Charges   int
	Infusions []int
	Upgrades  []int
	Skin      int
	Binding   string
	BoundTo   string
}

// Location returns the human-readable place of the entry.
func (e *Entry) Location() string {
	if e.LocationHint == "" {
		return e.Source
	}
	return e.Source + " — " + e.LocationHint
}

// Index maps a catalog ID to every entry referencing it. It is read-only
// after Build and safe for concurrent lookups.
type Index map[int][]*Entry

// Lookup returns all entries filed under id, in snapshot walk order.
func (ix Index) Lookup(id int) []*Entry {
	return ix[id]
}

// file registers e under its own item ID and fans out to every referenced
// skin, infusion, and upgrade ID.
func (ix Index) file(e *Entry) {
	ix.add(e.ItemID, e)
	if e.Skin > 0 {
		ix.add(e.Skin, e)
	}
	for _, id := range e.Infusions {
		ix.add(id, e)
	}
	for _, id := range e.Upgrades {
		ix.add(id, e)
	}
}

func (ix Index) add(id int, e *Entry) {
	ix[id] = append(ix[id], e)
}

// Build walks every item-bearing location of the snapshot and files one
// entry per occupied slot. Empty (null) slots are skipped; a sparse or
// partially empty snapshot is normal, never an error.
func Build(snap *gw2api.AccountSnapshot) Index {
	ix := make(Index)

	for _, slot := range snap.Bank {
		if slot != nil {
			ix.file(stackEntry(slot, "Bank", ""))
		}
	}
	for _, slot := range snap.SharedInventory {
		if slot != nil {
			ix.file(stackEntry(slot, "Shared Inventory", ""))
		}
	}
	for _, m := range snap.Materials {
		ix.file(&Entry{Source: "Material Storage", ItemID: m.ID, Count: m.Count})
	}
	for _, d := range snap.Delivery.Items {
		ix.file(&Entry{Source: "Trading Post Delivery Box", ItemID: d.ID, Count: d.Count})
	}
	for _, tx := range snap.SellListings {
		ix.file(&Entry{Source: "Trading Post Selling", ItemID: tx.ItemID, Count: tx.Quantity})
	}

	for _, ch := range snap.Characters {
		for _, bag := range ch.Bags {
			if bag == nil {
				continue
			}
			// The bag itself is owned too; file a synthetic zero-count
			// entry for the container.
			ix.file(&Entry{Source: ch.Name, ItemID: bag.ID})
			for _, slot := range bag.Inventory {
				if slot != nil {
					ix.file(stackEntry(slot, ch.Name, "Inventory"))
				}
			}
		}

		for _, tab := range ch.EquipmentTabs {
			if tab == nil {
				continue
			}
			hint := fmt.Sprintf("Equipment Tab %d", tab.Tab)
			for _, eq := range tab.Equipment {
				if eq.ID == 0 {
					continue
				}
				ix.file(&Entry{
					Source:       ch.Name,
					LocationHint: hint,
					ItemID:       eq.ID,
					Infusions:    eq.Infusions,
					Upgrades:     eq.Upgrades,
					Skin:         eq.Skin,
					Binding:      eq.Binding,
					BoundTo:      eq.BoundTo,
				})
			}
		}
	}

	return ix
}

func stackEntry(s *gw2api.ItemStack, source, hint string) *Entry {
	return &Entry{
		Source:       source,
		LocationHint: hint,
		ItemID:       s.ID,
		Count:        s.Count,
		Charges:      s.Charges,
		Infusions:    s.Infusions,
		Upgrades:     s.Upgrades,
		Skin:         s.Skin,
		Binding:      s.Binding,
		BoundTo:      s.BoundTo,
	}
}
