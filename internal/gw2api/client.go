// Package gw2api is a thin client for the Guild Wars 2 v2 REST API: the
// item catalog endpoints used for bulk ingestion and the authenticated
// account endpoints used for inventory snapshots.
package gw2api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

// DefaultBaseURL is the public API host.
const DefaultBaseURL = "https://api.guildwars2.com"

// Client communicates with the Guild Wars 2 API over HTTP. The token is
// an opaque pre-obtained API key; it is only required for the account
// endpoints.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a Client for the given base URL. An empty baseURL selects
// DefaultBaseURL. The timeout bounds each individual request.
func New(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

// get performs a GET against path with the given query parameters and
// decodes the JSON response body into out.
func (c *Client) get(ctx context.Context, path string, query url.Values, authed bool, out any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	if authed {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting %s: %w", path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s: unexpected status %d: %s", path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding %s response: %w", path, err)
	}
	return nil
}

// ItemIDs returns the full ordered list of valid catalog item IDs.
func (c *Client) ItemIDs(ctx context.Context) ([]int, error) {
	var ids []int
	if err := c.get(ctx, "/v2/items", nil, false, &ids); err != nil {
		return nil, err
	}
	return ids, nil
}

// ItemsRaw fetches the raw records for the given IDs in a single batched
// request. The response carries no IDs of its own: elements are ordered
// exactly as requested, and callers must preserve that alignment.
func (c *Client) ItemsRaw(ctx context.Context, lang string, ids []int) ([]json.RawMessage, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	strs := make([]string, len(ids))
	for i, id := range ids {
		strs[i] = strconv.Itoa(id)
	}
	query := url.Values{"ids": {strings.Join(strs, ",")}}
	if lang != "" {
		query.Set("lang", lang)
	}

	var records []json.RawMessage
	if err := c.get(ctx, "/v2/items", query, false, &records); err != nil {
		return nil, err
	}
	return records, nil
}
