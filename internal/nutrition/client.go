package nutrition

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"smoothies/internal"
	"smoothies/internal/config"
	"smoothies/internal/metrics"
)

const maxBodyBytes = 1 << 20

// StatusError is a non-2xx answer from the nutrition API.
type StatusError struct {
	SearchTerm string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("nutrition api status=%d searchTerm=%q", e.StatusCode, e.SearchTerm)
}

// Cache stores raw response bodies by search term.
type Cache interface {
	Get(searchTerm string) ([]byte, bool)
	Put(searchTerm string, body []byte) error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *RateLimiter
	cache      Cache
	metrics    *metrics.Registry
}

type Option func(*Client)

func WithCache(c Cache) Option {
	return func(cl *Client) { cl.cache = c }
}

func WithMetrics(m *metrics.Registry) Option {
	return func(cl *Client) { cl.metrics = m }
}

func NewClient(cfg config.Config, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(cfg.NutritionAPIBaseURL, "/"),
		httpClient: &http.Client{Timeout: time.Duration(cfg.NutritionTimeoutMs) * time.Millisecond},
		limiter:    NewRateLimiter(cfg.NutritionRateLimitRPS),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch returns the JSON body for one search term. Bodies are opaque; they
// are only checked to be valid JSON.
func (c *Client) Fetch(ctx context.Context, searchTerm string) (json.RawMessage, bool, error) {
	if strings.TrimSpace(searchTerm) == "" {
		return nil, false, errors.New("empty search term")
	}
	if c.cache != nil {
		if body, ok := c.cache.Get(searchTerm); ok {
			c.metrics.ObserveLookup("cache_hit")
			return json.RawMessage(body), true, nil
		}
	}

	body, err := c.fetch(ctx, searchTerm)
	if err != nil {
		var se *StatusError
		if errors.As(err, &se) {
			c.metrics.ObserveLookup("status_error")
		} else {
			c.metrics.ObserveLookup("transport_error")
		}
		return nil, false, err
	}
	c.metrics.ObserveLookup("ok")

	if c.cache != nil {
		if err := c.cache.Put(searchTerm, body); err != nil {
			fmt.Printf("nutrition cache put failed searchTerm=%q err=%v\n", searchTerm, err)
		}
	}
	return json.RawMessage(body), false, nil
}

func (c *Client) fetch(ctx context.Context, searchTerm string) ([]byte, error) {
	u, err := url.Parse(c.baseURL + "/fruit/" + url.PathEscape(searchTerm))
	if err != nil {
		return nil, err
	}

	if err := c.limiter.WaitTurn(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{SearchTerm: searchTerm, StatusCode: resp.StatusCode, Body: string(body)}
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("nutrition api returned invalid json for %q", searchTerm)
	}
	return body, nil
}

// LookupAll fetches nutrition for every entry concurrently. Results come back
// in entry order; a failed lookup is recorded on its result and never stops
// the others.
func (c *Client) LookupAll(ctx context.Context, entries []internal.CatalogEntry) []internal.NutritionResult {
	out := make([]internal.NutritionResult, len(entries))

	var wg sync.WaitGroup
	for i, e := range entries {
		out[i] = internal.NutritionResult{Label: e.Label, SearchTerm: e.ResolvedSearchTerm()}
		wg.Add(1)
		go func(r *internal.NutritionResult) {
			defer wg.Done()
			body, cached, err := c.Fetch(ctx, r.SearchTerm)
			r.Body, r.Cached, r.Err = body, cached, err
			r.Status = http.StatusOK
			var se *StatusError
			if errors.As(err, &se) {
				r.Status = se.StatusCode
			} else if err != nil {
				r.Status = 0
			}
		}(&out[i])
	}
	wg.Wait()

	return out
}
