package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"
)

// ErrAborted is returned when a batch exhausts its retries. Progress from
// batches accepted before the failure stays in the cache.
var ErrAborted = errors.New("fetch aborted")

const (
	// defaultFlushAt flushes once more than this many IDs are pending, so
	// batches stay small enough to keep the request URL well under upstream
	// length limits while still amortizing round trips.
	defaultFlushAt = 190

	// defaultRetries is the number of additional attempts after a failed
	// batch request.
	defaultRetries = 2

	// defaultRetryDelay is the fixed pause before each retry. The API rate
	// limit refills on the minute, hence the deliberate 61s.
	defaultRetryDelay = 61 * time.Second
)

// ItemSource is the part of the catalog API the fetcher needs.
type ItemSource interface {
	ItemIDs(ctx context.Context) ([]int, error)
	ItemsRaw(ctx context.Context, lang string, ids []int) ([]json.RawMessage, error)
}

// Fetcher drives bulk retrieval of all uncached catalog records into a
// Cache. Batches are issued strictly one at a time: the retry delay is a
// rate-limit courtesy and concurrent batches would defeat it.
type Fetcher struct {
	source ItemSource
	cache  *Cache
	lang   string

	flushAt    int
	retries    int
	retryDelay time.Duration
	sleep      func(time.Duration)
	logger     *slog.Logger
}

// FetcherOption adjusts the batch or retry policy of a Fetcher.
type FetcherOption func(*Fetcher)

// WithFlushAt sets the pending-ID threshold beyond which a batch is issued.
func WithFlushAt(n int) FetcherOption {
	return func(f *Fetcher) {
		if n > 0 {
			f.flushAt = n
		}
	}
}

// WithRetryPolicy sets the number of retries per batch and the fixed delay
// before each retry.
func WithRetryPolicy(retries int, delay time.Duration) FetcherOption {
	return func(f *Fetcher) {
		if retries >= 0 {
			f.retries = retries
		}
		if delay > 0 {
			f.retryDelay = delay
		}
	}
}

// WithLogger sets the logger for fetch progress.
func WithLogger(l *slog.Logger) FetcherOption {
	return func(f *Fetcher) {
		if l != nil {
			f.logger = l
		}
	}
}

// NewFetcher creates a Fetcher for one locale with the default batch and
// retry policy.
func NewFetcher(source ItemSource, cache *Cache, lang string, opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		source:     source,
		cache:      cache,
		lang:       lang,
		flushAt:    defaultFlushAt,
		retries:    defaultRetries,
		retryDelay: defaultRetryDelay,
		sleep:      time.Sleep,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchAll lists all valid catalog IDs, fetches the ones missing from the
// cache in bounded batches, and persists the cache exactly once before
// returning — also when the fetch aborts partway, so accepted batches are
// never lost. It returns the number of records fetched this run.
func (f *Fetcher) FetchAll(ctx context.Context) (int, error) {
	fetched, fetchErr := f.fetchMissing(ctx)

	if err := f.cache.Persist(); err != nil {
		if fetchErr == nil {
			fetchErr = fmt.Errorf("persisting cache: %w", err)
		} else {
			f.logger.Error("persisting cache after failed fetch", "error", err)
		}
	}
	return fetched, fetchErr
}

func (f *Fetcher) fetchMissing(ctx context.Context) (int, error) {
	ids, err := f.source.ItemIDs(ctx)
	if err != nil {
		return 0, fmt.Errorf("listing item ids: %w", err)
	}
	f.logger.Info("listed catalog", "lang", f.lang, "total", len(ids), "cached", f.cache.Len())

	fetched := 0
	pending := make([]int, 0, f.flushAt+1)

	flush := func() error {
		if err := f.fetchBatch(ctx, pending); err != nil {
			return err
		}
		fetched += len(pending)
		f.logger.Info("batch accepted", "fetched", len(pending), "cache_size", f.cache.Len())
		pending = pending[:0]
		return nil
	}

	for _, id := range ids {
		if !f.cache.Has(id) {
			pending = append(pending, id)
		}
		if len(pending) > f.flushAt {
			if err := flush(); err != nil {
				return fetched, err
			}
		}
	}
	if len(pending) > 0 {
		if err := flush(); err != nil {
			return fetched, err
		}
	}
	return fetched, nil
}

// fetchBatch requests one batch and merges it into the cache. A response is
// accepted only when non-empty and exactly as long as the request, since
// records are matched to IDs by position. Failed attempts are retried after
// a fixed delay; exhaustion aborts with ErrAborted and merges nothing.
func (f *Fetcher) fetchBatch(ctx context.Context, ids []int) error {
	var lastErr error
	for attempt := 0; attempt <= f.retries; attempt++ {
		if attempt > 0 {
			f.logger.Warn("batch failed, retrying",
				"attempt", attempt, "delay", f.retryDelay, "error", lastErr)
			f.sleep(f.retryDelay)
		}
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("%w: %w", ErrAborted, err)
		}

		records, err := f.source.ItemsRaw(ctx, f.lang, ids)
		switch {
		case err != nil:
			lastErr = err
		case len(records) == 0:
			lastErr = errors.New("empty response")
		case len(records) != len(ids):
			lastErr = fmt.Errorf("count mismatch: got %d records for %d ids", len(records), len(ids))
		default:
			f.cache.Merge(ids, records)
			return nil
		}
	}
	return fmt.Errorf("%w: batch of %d ids failed after %d attempts: %w",
		ErrAborted, len(ids), f.retries+1, lastErr)
}
