package main

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"unicode/utf8"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/gw2dex/gw2dex/internal/catalog"
	"github.com/gw2dex/gw2dex/internal/condense"
	"github.com/gw2dex/gw2dex/internal/config"
	"github.com/gw2dex/gw2dex/internal/gw2api"
	"github.com/gw2dex/gw2dex/internal/inventory"
	"github.com/gw2dex/gw2dex/internal/search"
	"github.com/gw2dex/gw2dex/internal/storage"
	"github.com/gw2dex/gw2dex/internal/taxonomy"
)

func setupLogging(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}

// --- update ---

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Fetch the item catalog and rebuild the condensed indexes",
	Long: `Fetch the item catalog and rebuild the condensed indexes.

Lists all item IDs, downloads the ones missing from the local cache in
batches, and writes the condensed and quick catalogs for each configured
locale. Interrupted runs keep their progress; re-running resumes where
the cache left off.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		debug, _ := cmd.Flags().GetBool("debug")
		setupLogging(debug)

		cfg, err := config.Load()
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		client := gw2api.New(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout)

		for _, lang := range cfg.Storage.Langs {
			if err := updateLocale(ctx, client, store, cfg, lang); err != nil {
				return err
			}
		}
		return nil
	},
}

// updateLocale runs one ingestion pass for a locale: fetch the missing raw
// records, then project the condensed and quick catalogs. The run is recorded
// in storage either way; a failed fetch keeps the cache progress but leaves
// the projections untouched.
func updateLocale(ctx context.Context, src catalog.ItemSource, store *storage.Store, cfg config.Config, lang string) error {
	printStep("Updating %s catalog...", lang)

	if err := os.MkdirAll(cfg.Storage.LangDir(lang), 0o755); err != nil {
		return fmt.Errorf("creating %s data dir: %w", lang, err)
	}

	cache := catalog.LoadCache(cfg.Storage.CachePath(lang))

	runID := uuid.New().String()
	if err := store.StartRun(storage.Run{ID: runID, Lang: lang}); err != nil {
		return fmt.Errorf("recording run: %w", err)
	}

	fetcher := catalog.NewFetcher(src, cache, lang,
		catalog.WithFlushAt(cfg.Fetch.FlushAt),
		catalog.WithRetryPolicy(cfg.Fetch.Retries, cfg.Fetch.RetryDelay),
	)

	fetched, err := fetcher.FetchAll(ctx)
	if err != nil {
		finishRun(store, runID, fetched, cache.Len(), storage.StatusFailed, err)
		return fmt.Errorf("fetching %s catalog: %w", lang, err)
	}

	items, err := condense.Condense(cache)
	if err != nil {
		finishRun(store, runID, fetched, cache.Len(), storage.StatusFailed, err)
		return fmt.Errorf("condensing %s catalog: %w", lang, err)
	}
	quick, err := condense.Quick(cache)
	if err != nil {
		finishRun(store, runID, fetched, cache.Len(), storage.StatusFailed, err)
		return fmt.Errorf("projecting %s quick catalog: %w", lang, err)
	}

	if err := condense.WriteFile(cfg.Storage.CondensedPath(lang), items); err != nil {
		finishRun(store, runID, fetched, cache.Len(), storage.StatusFailed, err)
		return fmt.Errorf("writing %s condensed catalog: %w", lang, err)
	}
	if err := condense.WriteFile(cfg.Storage.QuickPath(lang), quick); err != nil {
		finishRun(store, runID, fetched, cache.Len(), storage.StatusFailed, err)
		return fmt.Errorf("writing %s quick catalog: %w", lang, err)
	}

	finishRun(store, runID, fetched, cache.Len(), storage.StatusSucceeded, nil)
	printSuccess("%s: %s items cached, %s fetched this run",
		lang, humanize.Comma(int64(cache.Len())), humanize.Comma(int64(fetched)))
	return nil
}

func finishRun(store *storage.Store, runID string, fetched, cacheSize int, status string, runErr error) {
	errMsg := ""
	if runErr != nil {
		errMsg = runErr.Error()
	}
	if err := store.FinishRun(runID, fetched, cacheSize, status, errMsg); err != nil {
		slog.Error("recording run outcome", "run", runID, "error", err)
	}
}

func init() {
	updateCmd.Flags().Bool("debug", false, "enable debug logging")
}

// --- search ---

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search item names by case-insensitive substring",
	Long: `Search item names by case-insensitive substring.

Without a query argument, and when stdin is a terminal, an interactive
prompt is started. With --owned, every hit is annotated with where the
item sits on the account (requires GW2DEX_API_TOKEN).`,
	Args: cobra.ArbitraryArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}

		lang, _ := cmd.Flags().GetString("lang")
		limit, _ := cmd.Flags().GetInt("limit")
		ownedFlag, _ := cmd.Flags().GetBool("owned")
		if lang == "" {
			lang = cfg.Storage.Langs[0]
		}

		items, err := condense.ReadFile(cfg.Storage.CondensedPath(lang))
		if err != nil {
			return fmt.Errorf("no %s catalog available (run `gw2dex update` first): %w", lang, err)
		}

		names := make(map[int]string, len(items))
		for id, it := range items {
			names[id] = it.Name
		}
		idx := search.New(names)

		var owned inventory.Index
		if ownedFlag {
			if cfg.API.Token == "" {
				return fmt.Errorf("--owned requires GW2DEX_API_TOKEN")
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			client := gw2api.New(cfg.API.BaseURL, cfg.API.Token, cfg.API.Timeout)
			snap, err := client.AccountSnapshot(ctx)
			if err != nil {
				return fmt.Errorf("loading account inventory: %w", err)
			}
			owned = inventory.Build(snap)
		}

		if len(args) > 0 {
			return runQuery(items, idx, owned, strings.Join(args, " "), limit)
		}

		if !term.IsTerminal(int(os.Stdin.Fd())) {
			return fmt.Errorf("a query argument is required when stdin is not a terminal")
		}
		return interactiveSearch(items, idx, owned, limit)
	},
}

func interactiveSearch(items map[int]condense.Item, idx *search.Index, owned inventory.Index, limit int) error {
	fmt.Printf("%s item search — empty line or Ctrl-D to quit\n", humanize.Comma(int64(len(items))))
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Print("gw2dex> ")
		if !scanner.Scan() {
			fmt.Println()
			return scanner.Err()
		}
		query := strings.TrimSpace(scanner.Text())
		if query == "" {
			return nil
		}
		if err := runQuery(items, idx, owned, query, limit); err != nil {
			return err
		}
	}
}

func runQuery(items map[int]condense.Item, idx *search.Index, owned inventory.Index, query string, limit int) error {
	if utf8.RuneCountInString(query) < search.MinQueryLen {
		printWarning("query must be at least %d characters", search.MinQueryLen)
		return nil
	}

	ids := idx.Query(query)
	if len(ids) == 0 {
		fmt.Printf("No items match %q.\n", query)
		return nil
	}
	total := len(ids)
	if limit > 0 && len(ids) > limit {
		ids = ids[:limit]
	}

	for _, id := range ids {
		fmt.Println(formatHit(id, items[id]))
		for _, e := range owned.Lookup(id) {
			fmt.Printf("      %s ×%d\n", e.Location(), e.Count)
		}
	}
	if total > len(ids) {
		fmt.Printf("... and %s more (raise --limit to see them)\n", humanize.Comma(int64(total-len(ids))))
	}
	return nil
}

func formatHit(id int, item condense.Item) string {
	kind := item.Type.String()
	if item.SubType != taxonomy.SubTypeUnknown {
		kind += "/" + item.SubType.String()
	}
	return fmt.Sprintf("%6s  %s  [%s %s]",
		colorize(colorCyan, strconv.Itoa(id)),
		colorize(colorBold, item.Name),
		item.Rarity, kind)
}

func init() {
	searchCmd.Flags().String("lang", "", "catalog locale (default: first configured)")
	searchCmd.Flags().Int("limit", 20, "maximum number of results")
	searchCmd.Flags().Bool("owned", false, "annotate hits with account inventory locations")
}

// --- runs ---

var runsCmd = &cobra.Command{
	Use:   "runs",
	Short: "List recent catalog update runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		limit, _ := cmd.Flags().GetInt("limit")

		store, err := storage.Open(cfg.Storage.DataDir)
		if err != nil {
			return fmt.Errorf("opening storage: %w", err)
		}
		defer store.Close()

		runs, err := store.RecentRuns(limit)
		if err != nil {
			return fmt.Errorf("listing runs: %w", err)
		}
		if len(runs) == 0 {
			fmt.Println("No runs recorded.")
			return nil
		}

		for _, run := range runs {
			fmt.Println(formatRun(run))
		}
		return nil
	},
}

func formatRun(run storage.Run) string {
	// Pad before coloring so the escape codes do not break the columns.
	status := fmt.Sprintf("%-9s", run.Status)
	switch run.Status {
	case storage.StatusSucceeded:
		status = colorize(colorGreen, status)
	case storage.StatusFailed:
		status = colorize(colorRed, status)
	case storage.StatusRunning:
		status = colorize(colorYellow, status)
	}

	line := fmt.Sprintf("%s  %-2s  %s  fetched %-7s cache %-8s %s",
		colorize(colorCyan, run.ID[:8]), run.Lang, status,
		humanize.Comma(int64(run.Fetched)), humanize.Comma(int64(run.CacheSize)),
		humanize.Time(run.StartedAt))
	if run.Error != "" {
		line += "\n      " + colorize(colorRed, run.Error)
	}
	return line
}

func init() {
	runsCmd.Flags().Int("limit", 20, "maximum number of runs to list")
}
