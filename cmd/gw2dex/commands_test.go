package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/gw2dex/gw2dex/internal/condense"
	"github.com/gw2dex/gw2dex/internal/config"
	"github.com/gw2dex/gw2dex/internal/storage"
	"github.com/gw2dex/gw2dex/internal/taxonomy"
)

// fakeSource serves scripted raw records, position-aligned with the
// requested IDs.
type fakeSource struct {
	ids     []int
	records map[int]string
	err     error
}

func (s *fakeSource) ItemIDs(ctx context.Context) ([]int, error) {
	return s.ids, nil
}

func (s *fakeSource) ItemsRaw(ctx context.Context, lang string, ids []int) ([]json.RawMessage, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([]json.RawMessage, len(ids))
	for i, id := range ids {
		out[i] = json.RawMessage(s.records[id])
	}
	return out, nil
}

func testConfig(t *testing.T) config.Config {
	t.Helper()
	return config.Config{
		Storage: config.StorageConfig{DataDir: t.TempDir(), Langs: []string{"en"}},
		Fetch:   config.FetchConfig{FlushAt: 190, Retries: 0, RetryDelay: time.Millisecond},
	}
}

func openTestStore(t *testing.T) *storage.Store {
	t.Helper()
	store, err := storage.Open(":memory:")
	if err != nil {
		t.Fatalf("Open(:memory:) failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func lastRun(t *testing.T, store *storage.Store) storage.Run {
	t.Helper()
	runs, err := store.RecentRuns(1)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("got %d runs, want 1", len(runs))
	}
	return runs[0]
}

func TestUpdateLocale_WritesCatalogs(t *testing.T) {
	src := &fakeSource{
		ids: []int{10, 20},
		records: map[int]string{
			10: `{"name":"Iron Sword","icon":"https://render.example/1.png","rarity":"Basic","type":"Weapon","details":{"type":"Sword"}}`,
			20: `{"name":"Heavy Bag","rarity":"Junk","type":"Trophy"}`,
		},
	}
	cfg := testConfig(t)
	store := openTestStore(t)

	if err := updateLocale(context.Background(), src, store, cfg, "en"); err != nil {
		t.Fatalf("updateLocale failed: %v", err)
	}

	items, err := condense.ReadFile(cfg.Storage.CondensedPath("en"))
	if err != nil {
		t.Fatalf("reading condensed catalog: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	sword := items[10]
	if sword.Name != "Iron Sword" || sword.Type != taxonomy.TypeWeapon || sword.SubType != taxonomy.WeaponSword {
		t.Errorf("sword = %+v, want Iron Sword Weapon/Sword", sword)
	}

	if _, err := os.Stat(cfg.Storage.QuickPath("en")); err != nil {
		t.Errorf("quick catalog not written: %v", err)
	}

	run := lastRun(t, store)
	if run.Status != storage.StatusSucceeded || run.Fetched != 2 || run.CacheSize != 2 {
		t.Errorf("run = %+v, want succeeded fetched=2 cache=2", run)
	}
}

func TestUpdateLocale_SecondRunFetchesNothing(t *testing.T) {
	src := &fakeSource{
		ids: []int{10},
		records: map[int]string{
			10: `{"name":"Carrot","rarity":"Basic","type":"Consumable","details":{"type":"Food"}}`,
		},
	}
	cfg := testConfig(t)
	store := openTestStore(t)

	if err := updateLocale(context.Background(), src, store, cfg, "en"); err != nil {
		t.Fatalf("first updateLocale failed: %v", err)
	}
	if err := updateLocale(context.Background(), src, store, cfg, "en"); err != nil {
		t.Fatalf("second updateLocale failed: %v", err)
	}

	run := lastRun(t, store)
	if run.Fetched != 0 || run.CacheSize != 1 {
		t.Errorf("second run = %+v, want fetched=0 cache=1", run)
	}
}

func TestUpdateLocale_FetchFailureRecordsRun(t *testing.T) {
	src := &fakeSource{
		ids: []int{10},
		err: errors.New("upstream down"),
	}
	cfg := testConfig(t)
	store := openTestStore(t)

	err := updateLocale(context.Background(), src, store, cfg, "en")
	if err == nil {
		t.Fatal("expected error from failed fetch")
	}

	if _, statErr := os.Stat(cfg.Storage.CondensedPath("en")); !os.IsNotExist(statErr) {
		t.Errorf("condensed catalog should not exist after failed fetch")
	}

	run := lastRun(t, store)
	if run.Status != storage.StatusFailed || run.Error == "" {
		t.Errorf("run = %+v, want failed with error message", run)
	}
}

func TestUpdateLocale_UnclassifiableAborts(t *testing.T) {
	src := &fakeSource{
		ids: []int{10},
		records: map[int]string{
			10: `{"name":"Mystery","rarity":"Basic","type":"NotARealType"}`,
		},
	}
	cfg := testConfig(t)
	store := openTestStore(t)

	err := updateLocale(context.Background(), src, store, cfg, "en")
	var cerr *taxonomy.ClassificationError
	if !errors.As(err, &cerr) {
		t.Fatalf("error = %v, want *ClassificationError", err)
	}

	if _, statErr := os.Stat(cfg.Storage.CondensedPath("en")); !os.IsNotExist(statErr) {
		t.Errorf("condensed catalog should not exist after classification failure")
	}
	if run := lastRun(t, store); run.Status != storage.StatusFailed {
		t.Errorf("run status = %q, want failed", run.Status)
	}
}

func TestFormatHit(t *testing.T) {
	noColor = true
	t.Cleanup(func() { noColor = false })

	got := formatHit(30684, condense.Item{
		Name:    "Frostfang",
		Rarity:  taxonomy.RarityLegendary,
		Type:    taxonomy.TypeWeapon,
		SubType: taxonomy.WeaponAxe,
	})
	for _, want := range []string{"30684", "Frostfang", "Legendary", "Weapon/Axe"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatHit = %q, missing %q", got, want)
		}
	}

	got = formatHit(19721, condense.Item{
		Name:   "Glob of Ectoplasm",
		Rarity: taxonomy.RarityExotic,
		Type:   taxonomy.TypeCraftingMaterial,
	})
	if strings.Contains(got, "/") {
		t.Errorf("formatHit = %q, subtype rendered for a plain kind", got)
	}
}

func TestFormatRun(t *testing.T) {
	noColor = true
	t.Cleanup(func() { noColor = false })

	run := storage.Run{
		ID:        "6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		Lang:      "de",
		StartedAt: time.Now().Add(-time.Hour),
		Fetched:   1234,
		CacheSize: 98765,
		Status:    storage.StatusFailed,
		Error:     "fetch aborted: batch of 191 ids failed after 3 attempts",
	}
	got := formatRun(run)
	for _, want := range []string{"6ba7b810", "de", "failed", "1,234", "98,765", "fetch aborted"} {
		if !strings.Contains(got, want) {
			t.Errorf("formatRun = %q, missing %q", got, want)
		}
	}
}
