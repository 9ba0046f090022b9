// Package api exposes the condensed catalog over a local HTTP surface and an
// MCP server, so editors and agents can query the index without shelling out
// to the CLI.
package api

import (
	"crypto/subtle"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/gw2dex/gw2dex/internal/condense"
	"github.com/gw2dex/gw2dex/internal/search"
	"github.com/gw2dex/gw2dex/internal/storage"
)

const (
	searchCacheSize   = 512
	defaultSearchHits = 50
	maxSearchHits     = 200
)

var (
	searchRequests = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gw2dex_search_requests_total",
		Help: "Total number of search requests served.",
	})
	searchCacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "gw2dex_search_cache_hits_total",
		Help: "Search requests answered from the query cache.",
	})
	itemLookups = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "gw2dex_item_lookups_total",
		Help: "Single-item lookups by result.",
	}, []string{"result"})
)

// AppDeps holds everything the HTTP surface serves from. Items and Index are
// built once at startup from the condensed file; Store is optional and only
// backs /runs.
type AppDeps struct {
	Items map[int]condense.Item
	Index *search.Index
	Store *storage.Store
	Token string // optional; empty disables auth
}

type app struct {
	deps  AppDeps
	names map[int]string
	cache *lru.Cache[string, []int]
}

// SearchHit is one row of a search response.
type SearchHit struct {
	ID int `json:"id"`
	condense.Item
}

// NewAppHandler returns the HTTP handler for the local catalog API.
func NewAppHandler(deps AppDeps) http.Handler {
	names := make(map[int]string, len(deps.Items))
	for id, it := range deps.Items {
		names[id] = it.Name
	}
	cache, _ := newQueryCache()
	a := &app{deps: deps, names: names, cache: cache}

	r := chi.NewRouter()
	r.Get("/healthz", a.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Group(func(r chi.Router) {
		if deps.Token != "" {
			r.Use(bearerAuth(deps.Token))
		}
		r.Get("/search", a.handleSearch)
		r.Get("/items/{id}", a.handleGetItem)
		r.Get("/runs", a.handleListRuns)
	})

	return r
}

func bearerAuth(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			auth := r.Header.Get("Authorization")
			const prefix = "Bearer "
			if !strings.HasPrefix(auth, prefix) || subtle.ConstantTimeCompare([]byte(auth[len(prefix):]), []byte(token)) != 1 {
				httpError(w, http.StatusUnauthorized, "authentication_error", "invalid or missing bearer token")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func (a *app) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"status": "ok",
		"items":  len(a.deps.Items),
	})
}

// query answers a search, consulting the LRU cache first. Queries shorter
// than the index minimum fall back to a linear scan, which stays cheap at
// catalog scale.
func (a *app) query(q string) []int {
	key := strings.ToLower(q)
	if ids, ok := a.cache.Get(key); ok {
		searchCacheHits.Inc()
		return ids
	}
	var ids []int
	if utf8.RuneCountInString(q) < search.MinQueryLen {
		ids = search.BruteForce(a.names, q)
	} else {
		ids = a.deps.Index.Query(q)
	}
	a.cache.Add(key, ids)
	return ids
}

func (a *app) handleSearch(w http.ResponseWriter, r *http.Request) {
	searchRequests.Inc()

	q := r.URL.Query().Get("q")
	if q == "" {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "q is required")
		return
	}
	limit := parseIntParam(r, "limit", defaultSearchHits, maxSearchHits)

	ids := a.query(q)
	if len(ids) > limit {
		ids = ids[:limit]
	}

	hits := make([]SearchHit, len(ids))
	for i, id := range ids {
		hits[i] = SearchHit{ID: id, Item: a.deps.Items[id]}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(hits)
}

func (a *app) handleGetItem(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		httpError(w, http.StatusBadRequest, "invalid_request_error", "item id must be an integer")
		return
	}

	item, ok := a.deps.Items[id]
	if !ok {
		itemLookups.WithLabelValues("miss").Inc()
		httpError(w, http.StatusNotFound, "not_found", "item %d not in catalog", id)
		return
	}
	itemLookups.WithLabelValues("hit").Inc()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(SearchHit{ID: id, Item: item})
}

func (a *app) handleListRuns(w http.ResponseWriter, r *http.Request) {
	if a.deps.Store == nil {
		httpError(w, http.StatusServiceUnavailable, "api_error", "run history unavailable")
		return
	}
	limit := parseIntParam(r, "limit", 20, 100)

	runs, err := a.deps.Store.RecentRuns(limit)
	if err != nil {
		httpError(w, http.StatusInternalServerError, "api_error", "failed to list runs: %v", err)
		return
	}
	if runs == nil {
		runs = []storage.Run{}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(runs)
}

func newQueryCache() (*lru.Cache[string, []int], error) {
	return lru.New[string, []int](searchCacheSize)
}

func parseIntParam(r *http.Request, key string, defaultVal, maxVal int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return defaultVal
	}
	v, err := strconv.Atoi(s)
	if err != nil || v <= 0 {
		return defaultVal
	}
	if maxVal > 0 && v > maxVal {
		return maxVal
	}
	return v
}

func httpError(w http.ResponseWriter, code int, errType string, format string, args ...any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	msg := fmt.Sprintf(format, args...)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{
			"message": msg,
			"type":    errType,
		},
	})
}
