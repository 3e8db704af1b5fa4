// Package client implements the layout persistence client over the
// user-layouts REST service.
//
// The client satisfies [store.Store], so the edit session is indifferent to
// whether records come from a remote service or local storage. Two behaviors
// matter to callers:
//
//   - HTTP 404 is a legitimate "no record yet", returned as (nil, nil),
//     never as an error.
//   - Fetches are idempotent and may be retried and served from a local
//     cache; saves are sent exactly once, and a failed save is returned
//     unchanged so the edit session can keep the unsaved state for an
//     explicit user retry.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/tmarchal/pagegrid/pkg/cache"
	pgerrors "github.com/tmarchal/pagegrid/pkg/errors"
	"github.com/tmarchal/pagegrid/pkg/grid"
	"github.com/tmarchal/pagegrid/pkg/httputil"
	"github.com/tmarchal/pagegrid/pkg/observability"
	"github.com/tmarchal/pagegrid/pkg/store"
)

// Client talks to a user-layouts service for one authenticated user.
type Client struct {
	baseURL string
	token   string
	httpc   *http.Client
	cache   cache.Cache
	keyer   cache.Keyer
	ttl     time.Duration
	retries int
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpc *http.Client) Option {
	return func(c *Client) { c.httpc = httpc }
}

// WithCache enables a read-through cache for fetches. The keyer should be
// scoped per user (see cache.NewScopedKeyer); ttl bounds staleness.
func WithCache(cc cache.Cache, keyer cache.Keyer, ttl time.Duration) Option {
	return func(c *Client) {
		c.cache = cc
		c.keyer = keyer
		c.ttl = ttl
	}
}

// WithRetries retries failed fetches up to n times with exponential backoff.
// Only transient failures (network errors, 5xx) are retried, and only on
// GET: a save is never replayed automatically.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// New creates a client for the service at baseURL authenticating with the
// given bearer token.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL: baseURL,
		token:   token,
		httpc:   &http.Client{Timeout: 30 * time.Second},
		cache:   cache.NewNullCache(),
		keyer:   cache.NewDefaultKeyer(),
		retries: 1,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// putPayload is the PUT request body: the record minus server-owned fields.
type putPayload struct {
	Layout       grid.Set `json:"layout"`
	HiddenBlocks []string `json:"hiddenBlocks"`
}

// apiError is the service's error body.
type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Get fetches the persisted record for pageKey. Returns (nil, nil) when the
// service has no record (HTTP 404).
func (c *Client) Get(ctx context.Context, pageKey string) (*store.Record, error) {
	if err := pgerrors.ValidatePageKey(pageKey); err != nil {
		return nil, err
	}

	cacheKey := c.keyer.LayoutKey(pageKey)
	if data, hit, _ := c.cache.Get(ctx, cacheKey); hit {
		var rec store.Record
		if err := json.Unmarshal(data, &rec); err == nil {
			observability.Cache().OnCacheHit(ctx, "layout")
			return &rec, nil
		}
		_ = c.cache.Delete(ctx, cacheKey)
	}
	observability.Cache().OnCacheMiss(ctx, "layout")

	var rec *store.Record
	start := time.Now()
	err := httputil.Retry(ctx, c.retries, time.Second, func() error {
		var fetchErr error
		rec, fetchErr = c.fetch(ctx, pageKey)
		return fetchErr
	})
	observability.Store().OnGet(ctx, pageKey, rec != nil, time.Since(start), err)
	if err != nil {
		return nil, err
	}

	if rec != nil {
		if data, merr := json.Marshal(rec); merr == nil {
			_ = c.cache.Set(ctx, cacheKey, data, c.ttl)
			observability.Cache().OnCacheSet(ctx, "layout", len(data))
		}
	}
	return rec, nil
}

func (c *Client) fetch(ctx context.Context, pageKey string) (*store.Record, error) {
	req, err := c.newRequest(ctx, http.MethodGet, pageKey, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpc.Do(req)
	if err != nil {
		return nil, httputil.Retryable(pgerrors.Wrap(pgerrors.ErrCodeNetwork, err, "fetch layout %s", pageKey))
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
		var rec store.Record
		if err := json.NewDecoder(resp.Body).Decode(&rec); err != nil {
			return nil, pgerrors.Wrap(pgerrors.ErrCodeNetwork, err, "decode layout %s", pageKey)
		}
		return &rec, nil
	case resp.StatusCode == http.StatusNotFound:
		// No record yet: a normal outcome, not an error.
		return nil, nil
	case resp.StatusCode >= 500:
		return nil, httputil.Retryable(c.statusError(resp, pageKey))
	default:
		return nil, c.statusError(resp, pageKey)
	}
}

// Put replaces the persisted record for pageKey and returns the stored
// record as the service reports it. Never retried.
func (c *Client) Put(ctx context.Context, pageKey string, rec store.Record) (*store.Record, error) {
	if err := pgerrors.ValidatePageKey(pageKey); err != nil {
		return nil, err
	}

	body, err := json.Marshal(putPayload{
		Layout:       rec.Layout,
		HiddenBlocks: hiddenOrEmpty(rec.HiddenBlocks),
	})
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInternal, err, "encode layout %s", pageKey)
	}

	req, err := c.newRequest(ctx, http.MethodPut, pageKey, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	start := time.Now()
	resp, err := c.httpc.Do(req)
	observability.Store().OnPut(ctx, pageKey, time.Since(start), err)
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeNetwork, err, "save layout %s", pageKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.statusError(resp, pageKey)
	}

	var stored store.Record
	if err := json.NewDecoder(resp.Body).Decode(&stored); err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeNetwork, err, "decode stored layout %s", pageKey)
	}

	if data, merr := json.Marshal(&stored); merr == nil {
		_ = c.cache.Set(ctx, c.keyer.LayoutKey(pageKey), data, c.ttl)
	}
	return &stored, nil
}

// Delete removes the persisted record for pageKey, restoring the page to
// its defaults on the next load.
func (c *Client) Delete(ctx context.Context, pageKey string) error {
	if err := pgerrors.ValidatePageKey(pageKey); err != nil {
		return err
	}

	req, err := c.newRequest(ctx, http.MethodDelete, pageKey, nil)
	if err != nil {
		return err
	}
	resp, err := c.httpc.Do(req)
	if err != nil {
		return pgerrors.Wrap(pgerrors.ErrCodeNetwork, err, "delete layout %s", pageKey)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent && resp.StatusCode != http.StatusNotFound {
		return c.statusError(resp, pageKey)
	}
	return c.cache.Delete(ctx, c.keyer.LayoutKey(pageKey))
}

// Close releases the client's cache resources.
func (c *Client) Close() error {
	return c.cache.Close()
}

func (c *Client) newRequest(ctx context.Context, method, pageKey string, body io.Reader) (*http.Request, error) {
	u := fmt.Sprintf("%s/user-layouts/%s", c.baseURL, url.PathEscape(pageKey))
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, pgerrors.Wrap(pgerrors.ErrCodeInternal, err, "build request for %s", pageKey)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

func (c *Client) statusError(resp *http.Response, pageKey string) error {
	var apiErr apiError
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	_ = json.Unmarshal(data, &apiErr)

	msg := apiErr.Message
	if msg == "" {
		msg = fmt.Sprintf("unexpected status %d", resp.StatusCode)
	}

	code := pgerrors.Code(apiErr.Code)
	if code == "" {
		switch resp.StatusCode {
		case http.StatusUnauthorized:
			code = pgerrors.ErrCodeUnauthorized
		case http.StatusForbidden:
			code = pgerrors.ErrCodeForbidden
		case http.StatusBadRequest:
			code = pgerrors.ErrCodeInvalidLayout
		default:
			code = pgerrors.ErrCodeNetwork
		}
	}
	return pgerrors.New(code, "%s: %s", pageKey, msg)
}

func hiddenOrEmpty(hidden []string) []string {
	if hidden == nil {
		return []string{}
	}
	return hidden
}

var _ store.Store = (*Client)(nil)
