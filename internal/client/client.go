// Package client is a Go client for the marketplace REST API with a
// two-tier (memory + disk) response cache, stale fallback on network
// failure, and in-flight request de-duplication.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"

	"marketplace-api/internal/logging"
)

// storePrefix namespaces every persistent-tier key written by this client.
const storePrefix = "mkt_cache"

// Default cache and network budgets. Reads get a generous timeout; quick
// mutation calls use a shorter one so a hung write fails fast.
const (
	defaultTTL             = 5 * time.Minute
	defaultStaleTTL        = 24 * time.Hour
	defaultTimeout         = 10 * time.Second
	defaultMutationTimeout = 5 * time.Second
)

// APIError is a non-2xx response from the server.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error: status %d: %s", e.StatusCode, e.Body)
}

// Config controls construction of a Client.
type Config struct {
	// BaseURL is the backend root, e.g. "http://localhost:8008". The
	// persistent tier is namespaced by it, so switching backends never
	// mixes cached data.
	BaseURL string

	// CacheDir is where the persistent tier lives. Ignored when Store is set.
	CacheDir string

	// Store overrides the persistent tier. Nil with an empty CacheDir
	// disables persistence (memory tier only).
	Store Store

	TTL             time.Duration
	StaleTTL        time.Duration
	Timeout         time.Duration
	MutationTimeout time.Duration

	HTTPClient *http.Client

	// Clock overrides the time source for deterministic expiry in tests.
	Clock func() time.Time
}

type memEntry struct {
	data     json.RawMessage
	storedAt time.Time
}

// Client talks to the marketplace API. All endpoint helpers are thin
// wrappers around Request.
type Client struct {
	baseURL         string
	httpClient      *http.Client
	ttl             time.Duration
	staleTTL        time.Duration
	timeout         time.Duration
	mutationTimeout time.Duration
	clock           func() time.Time
	log             zerolog.Logger

	mu    sync.Mutex
	mem   map[string]memEntry
	token string

	store  Store
	flight singleflight.Group
}

// New constructs a Client.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("client: BaseURL is required")
	}

	store := cfg.Store
	if store == nil && cfg.CacheDir != "" {
		fs, err := NewFileStore(cfg.CacheDir)
		if err != nil {
			return nil, err
		}
		store = fs
	}

	c := &Client{
		baseURL:         strings.TrimSuffix(cfg.BaseURL, "/"),
		httpClient:      cfg.HTTPClient,
		ttl:             cfg.TTL,
		staleTTL:        cfg.StaleTTL,
		timeout:         cfg.Timeout,
		mutationTimeout: cfg.MutationTimeout,
		clock:           cfg.Clock,
		mem:             make(map[string]memEntry),
		store:           store,
		log:             logging.NewLogger("client"),
	}
	if c.httpClient == nil {
		c.httpClient = &http.Client{}
	}
	if c.ttl <= 0 {
		c.ttl = defaultTTL
	}
	if c.staleTTL <= 0 {
		c.staleTTL = defaultStaleTTL
	}
	if c.timeout <= 0 {
		c.timeout = defaultTimeout
	}
	if c.mutationTimeout <= 0 {
		c.mutationTimeout = defaultMutationTimeout
	}
	if c.clock == nil {
		c.clock = time.Now
	}
	return c, nil
}

// SetToken sets the bearer token sent on subsequent requests.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

// envelope is the persistent-tier on-disk format: the response body plus
// when it was stored, in unix milliseconds.
type envelope struct {
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

func (c *Client) namespace() string {
	return storePrefix + "_" + url.QueryEscape(c.baseURL) + "_"
}

func (c *Client) storeKey(endpoint string) string {
	return c.namespace() + endpoint
}

// RequestOptions tunes a single Request call.
type RequestOptions struct {
	// Method defaults to GET. Only GET requests consult the cache.
	Method string

	// Body is JSON-marshaled into the request body when non-nil.
	Body any

	// ForceRefresh skips the fresh-cache check for a read.
	ForceRefresh bool
}

// Request is the dominant entry point. For reads it checks the cache tiers,
// de-duplicates concurrent in-flight calls per endpoint, writes through on
// success, and falls back to a stale entry when the live fetch fails. For
// mutations it always hits the network and never touches the cache.
func (c *Client) Request(ctx context.Context, endpoint string, opts *RequestOptions) (json.RawMessage, error) {
	if opts == nil {
		opts = &RequestOptions{}
	}
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}
	isRead := method == http.MethodGet

	if isRead && !opts.ForceRefresh {
		if data, ok := c.GetFresh(endpoint); ok {
			return data, nil
		}
	}

	if !isRead {
		return c.fetch(ctx, method, endpoint, opts.Body)
	}

	// Concurrent reads of the same endpoint share one network call; the
	// flight slot clears itself when the call settles.
	v, err, _ := c.flight.Do(endpoint, func() (any, error) {
		data, err := c.fetch(ctx, method, endpoint, opts.Body)
		if err != nil {
			if stale, ok := c.GetStale(endpoint); ok {
				c.log.Warn().Str("endpoint", endpoint).Err(err).Msg("fetch failed, serving stale cache")
				return stale, nil
			}
			return nil, err
		}
		c.SetCache(endpoint, data)
		return data, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(json.RawMessage), nil
}

// fetch performs the actual HTTP round-trip with the appropriate timeout.
func (c *Client) fetch(ctx context.Context, method, endpoint string, body any) (json.RawMessage, error) {
	timeout := c.timeout
	if method != http.MethodGet {
		timeout = c.mutationTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reader)
	if err != nil {
		return nil, err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.mu.Lock()
	token := c.token
	c.mu.Unlock()
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &APIError{StatusCode: resp.StatusCode, Body: string(data)}
	}
	return data, nil
}

// GetFresh returns a cached value within the freshness window. The memory
// tier is the fast path; a fresh disk entry is promoted into memory.
func (c *Client) GetFresh(endpoint string) (json.RawMessage, bool) {
	return c.lookup(endpoint, c.ttl)
}

// GetStale returns a cached value within the longer stale window. It is
// only consulted after a live fetch fails.
func (c *Client) GetStale(endpoint string) (json.RawMessage, bool) {
	return c.lookup(endpoint, c.staleTTL)
}

// Peek tries fresh then stale, without any network activity. Useful for
// pre-populating state while a refresh is in flight.
func (c *Client) Peek(endpoint string) (json.RawMessage, bool) {
	if data, ok := c.GetFresh(endpoint); ok {
		return data, true
	}
	return c.GetStale(endpoint)
}

func (c *Client) lookup(endpoint string, horizon time.Duration) (json.RawMessage, bool) {
	now := c.clock()

	c.mu.Lock()
	if e, ok := c.mem[endpoint]; ok && now.Sub(e.storedAt) < horizon {
		c.mu.Unlock()
		return e.data, true
	}
	c.mu.Unlock()

	if c.store == nil {
		return nil, false
	}
	raw, ok := c.store.Get(c.storeKey(endpoint))
	if !ok {
		return nil, false
	}
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, false
	}
	storedAt := time.UnixMilli(env.Timestamp)
	if now.Sub(storedAt) >= horizon {
		return nil, false
	}

	// promote into the memory tier with its original timestamp
	c.mu.Lock()
	c.mem[endpoint] = memEntry{data: env.Data, storedAt: storedAt}
	c.mu.Unlock()
	return env.Data, true
}

// SetCache writes to both tiers, stamped with the current time. Persistent
// store failures are non-fatal: the memory tier stays authoritative for the
// session.
func (c *Client) SetCache(endpoint string, data json.RawMessage) {
	if err := c.writeCache(endpoint, data); err != nil {
		c.log.Warn().Str("endpoint", endpoint).Err(err).Msg("persistent cache write failed")
	}
}

// writeCache reports the persistent-tier outcome so the non-fatal contract
// stays testable; the memory write always happens first.
func (c *Client) writeCache(endpoint string, data json.RawMessage) error {
	now := c.clock()

	c.mu.Lock()
	c.mem[endpoint] = memEntry{data: data, storedAt: now}
	c.mu.Unlock()

	if c.store == nil {
		return nil
	}
	raw, err := json.Marshal(envelope{Data: data, Timestamp: now.UnixMilli()})
	if err != nil {
		return err
	}
	return c.store.Set(c.storeKey(endpoint), raw)
}

// Invalidate drops every cached endpoint starting with the given prefix
// from both tiers. Mutation helpers call it after a successful write.
func (c *Client) Invalidate(endpointPrefix string) {
	c.mu.Lock()
	for endpoint := range c.mem {
		if strings.HasPrefix(endpoint, endpointPrefix) {
			delete(c.mem, endpoint)
		}
	}
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	for _, key := range c.store.Keys(c.namespace() + endpointPrefix) {
		_ = c.store.Delete(key)
	}
}

// ClearCache empties the memory tier and removes every persistent entry
// under this client's namespace. Entries of other namespaces (other base
// URLs) are untouched.
func (c *Client) ClearCache() {
	c.mu.Lock()
	c.mem = make(map[string]memEntry)
	c.mu.Unlock()

	if c.store == nil {
		return
	}
	for _, key := range c.store.Keys(c.namespace()) {
		_ = c.store.Delete(key)
	}
}
