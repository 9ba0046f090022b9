package gw2api

import (
	"context"
	"net/url"

	"golang.org/x/sync/errgroup"
)

// ItemStack is an occupied inventory or bank slot. Slot arrays from the API
// contain explicit nulls for empty slots, so collections are []*ItemStack.
type ItemStack struct {
	ID        int    `json:"id"`
	Count     int    `json:"count"`
	Charges   int    `json:"charges,omitempty"`
	Infusions []int  `json:"infusions,omitempty"`
	Upgrades  []int  `json:"upgrades,omitempty"`
	Skin      int    `json:"skin,omitempty"`
	Binding   string `json:"binding,omitempty"`
	BoundTo   string `json:"bound_to,omitempty"`
}

// MaterialStack is one material storage slot.
type MaterialStack struct {
	ID       int `json:"id"`
	Category int `json:"category"`
	Count    int `json:"count"`
}

// Delivery is the trading-post delivery box.
type Delivery struct {
	Coins int            `json:"coins"`
	Items []DeliveryItem `json:"items"`
}

// DeliveryItem is one item waiting for pickup in the delivery box.
type DeliveryItem struct {
	ID    int `json:"id"`
	Count int `json:"count"`
}

// Transaction is one active trading-post listing.
type Transaction struct {
	ID       int    `json:"id"`
	ItemID   int    `json:"item_id"`
	Price    int    `json:"price"`
	Quantity int    `json:"quantity"`
	Created  string `json:"created"`
}

// Bag is one equipped bag slot on a character; Inventory holds its contents.
type Bag struct {
	ID        int          `json:"id"`
	Size      int          `json:"size"`
	Inventory []*ItemStack `json:"inventory"`
}

// EquipmentItem is one equipped item within an equipment tab.
type EquipmentItem struct {
	ID        int    `json:"id"`
	Slot      string `json:"slot"`
	Infusions []int  `json:"infusions,omitempty"`
	Upgrades  []int  `json:"upgrades,omitempty"`
	Skin      int    `json:"skin,omitempty"`
	Binding   string `json:"binding,omitempty"`
	BoundTo   string `json:"bound_to,omitempty"`
}

// EquipmentTab is one of a character's equipment templates.
type EquipmentTab struct {
	Tab       int             `json:"tab"`
	Name      string          `json:"name"`
	Equipment []EquipmentItem `json:"equipment"`
}

// Character carries the item-bearing parts of a character record.
type Character struct {
	Name          string          `json:"name"`
	Bags          []*Bag          `json:"bags"`
	EquipmentTabs []*EquipmentTab `json:"equipment_tabs"`
}

// AccountSnapshot is a point-in-time view of every item-bearing location
// the API exposes for one account.
type AccountSnapshot struct {
	Bank            []*ItemStack
	SharedInventory []*ItemStack
	Materials       []MaterialStack
	Delivery        Delivery
	SellListings    []Transaction
	Characters      []Character
}

// Bank returns the account bank contents.
func (c *Client) Bank(ctx context.Context) ([]*ItemStack, error) {
	var out []*ItemStack
	if err := c.get(ctx, "/v2/account/bank", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// SharedInventory returns the account-wide shared inventory slots.
func (c *Client) SharedInventory(ctx context.Context) ([]*ItemStack, error) {
	var out []*ItemStack
	if err := c.get(ctx, "/v2/account/inventory", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Materials returns the material storage contents.
func (c *Client) Materials(ctx context.Context) ([]MaterialStack, error) {
	var out []MaterialStack
	if err := c.get(ctx, "/v2/account/materials", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeliveryBox returns the trading-post delivery box.
func (c *Client) DeliveryBox(ctx context.Context) (Delivery, error) {
	var out Delivery
	if err := c.get(ctx, "/v2/commerce/delivery", nil, true, &out); err != nil {
		return Delivery{}, err
	}
	return out, nil
}

// SellListings returns the account's active trading-post sell listings.
func (c *Client) SellListings(ctx context.Context) ([]Transaction, error) {
	var out []Transaction
	if err := c.get(ctx, "/v2/commerce/transactions/current/sells", nil, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Characters returns all characters with their bags and equipment tabs.
func (c *Client) Characters(ctx context.Context) ([]Character, error) {
	var out []Character
	query := url.Values{"ids": {"all"}}
	if err := c.get(ctx, "/v2/characters", query, true, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// AccountSnapshot fetches every item-bearing location for the account. The
// endpoints are independent, so they are fetched concurrently; the serialized
// batch discipline of catalog ingestion does not apply here.
func (c *Client) AccountSnapshot(ctx context.Context) (*AccountSnapshot, error) {
	var snap AccountSnapshot
	g, gCtx := errgroup.WithContext(ctx)
	g.SetLimit(4) // Bound concurrency to stay friendly to the API rate limits.

	g.Go(func() error {
		var err error
		snap.Bank, err = c.Bank(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.SharedInventory, err = c.SharedInventory(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Materials, err = c.Materials(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Delivery, err = c.DeliveryBox(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.SellListings, err = c.SellListings(gCtx)
		return err
	})
	g.Go(func() error {
		var err error
		snap.Characters, err = c.Characters(gCtx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &snap, nil
}
