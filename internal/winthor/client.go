// Package winthor talks to the WinThor/TOTVS ERP HTTP API on behalf of a tenant.
package winthor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"time"

	"github.com/wtaconnect/backoffice/internal/logger"
	"go.uber.org/atomic"
	"golang.org/x/sync/singleflight"
)

const (
	DefaultTokenTTL = 6 * time.Hour
	DefaultTimeout  = 15 * time.Second

	loginPath = "/winthor/autenticacao/v1/login"
)

// Config is the per-tenant ERP address and credentials.
// Login is the ERP password and Usuario the user name.
type Config struct {
	Host    string
	Port    string
	Login   string
	Usuario string
}

// ConfigSource loads a tenant's ERP configuration. It returns (nil, nil)
// when the tenant does not exist.
type ConfigSource interface {
	WinthorConfig(ctx context.Context, tenantID int64) (*Config, error)
}

// Recorder receives client counters, e.g. a CloudWatch metrics recorder.
type Recorder interface {
	Count(ctx context.Context, name string, dimensions map[string]string) error
}

// Stats is a snapshot of the client counters.
type Stats struct {
	AuthCalls     int64 `json:"auth_calls"`
	CacheHits     int64 `json:"cache_hits"`
	Invalidations int64 `json:"invalidations"`
}

// Client acquires and caches tenant tokens and calls the fiscal API.
type Client struct {
	http     *http.Client
	cache    TokenCache
	source   ConfigSource
	recorder Recorder
	log      logger.Logger
	ttl      time.Duration
	timeout  time.Duration
	nowFunc  func() time.Time

	refresh singleflight.Group

	authCalls     atomic.Int64
	cacheHits     atomic.Int64
	invalidations atomic.Int64
}

type Option func(*Client)

func WithHTTPClient(h *http.Client) Option  { return func(c *Client) { c.http = h } }
func WithCache(cache TokenCache) Option     { return func(c *Client) { c.cache = cache } }
func WithRecorder(r Recorder) Option        { return func(c *Client) { c.recorder = r } }
func WithLogger(l logger.Logger) Option     { return func(c *Client) { c.log = l } }
func WithTokenTTL(d time.Duration) Option   { return func(c *Client) { c.ttl = d } }
func WithTimeout(d time.Duration) Option    { return func(c *Client) { c.timeout = d } }
func WithClock(now func() time.Time) Option { return func(c *Client) { c.nowFunc = now } }

// NewClient returns a Client backed by an in-memory cache unless WithCache is given.
func NewClient(source ConfigSource, opts ...Option) *Client {
	c := &Client{
		http:    &http.Client{},
		cache:   NewMemoryCache(),
		source:  source,
		log:     logger.NewNop(),
		ttl:     DefaultTokenTTL,
		timeout: DefaultTimeout,
		nowFunc: time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func tenantKey(tenantID int64) string { return strconv.FormatInt(tenantID, 10) }

// Token returns a valid bearer token for the tenant, authenticating when
// the cached one is missing or expired. Concurrent refreshes of the same
// tenant share one login call; a caller whose ctx ends stops waiting without
// failing the others.
func (c *Client) Token(ctx context.Context, tenantID int64) (string, error) {
	key := tenantKey(tenantID)
	if tok, ok := c.cached(ctx, key); ok {
		return tok, nil
	}

	// the shared login outlives any single caller; send still bounds it with the per-call timeout
	shared := context.WithoutCancel(ctx)
	ch := c.refresh.DoChan(key, func() (interface{}, error) {
		if tok, ok := c.cached(shared, key); ok {
			return tok, nil
		}
		return c.login(shared, tenantID, key)
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

func (c *Client) cached(ctx context.Context, key string) (string, bool) {
	tok, ok, err := c.cache.Get(ctx, key)
	if err != nil {
		c.log.Warnf(ctx, "[winthor] token cache read failed: %v", err)
		return "", false
	}
	if !ok || !tok.Valid(c.nowFunc()) {
		return "", false
	}
	c.cacheHits.Inc()
	return tok.Value, true
}

func (c *Client) login(ctx context.Context, tenantID int64, key string) (string, error) {
	cfg, err := c.config(ctx, tenantID)
	if err != nil {
		return "", err
	}
	if cfg.Login == "" || cfg.Usuario == "" {
		return "", &ConfigError{Reason: "totvs_login / totvs_usuario ausentes"}
	}

	body, err := json.Marshal(map[string]string{"login": cfg.Usuario, "senha": cfg.Login})
	if err != nil {
		return "", fmt.Errorf("marshal login body: %w", err)
	}

	c.authCalls.Inc()
	c.count(ctx, "WinthorAuth", key)

	status, raw, err := c.send(ctx, http.MethodPost, baseURL(cfg)+loginPath, "", body)
	if err != nil {
		return "", &TransportError{Op: "login", Err: err}
	}
	if status < 200 || status > 299 {
		return "", &TransportError{Op: "login", Status: status, Body: string(raw)}
	}

	var payload map[string]interface{}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return "", &ContentError{Op: "login", Reason: "resposta não é JSON"}
	}
	token, _ := payload["accessToken"].(string)
	if token == "" {
		return "", &ContentError{Op: "login", Reason: "accessToken ausente", Fields: fieldNames(payload)}
	}

	tok := Token{Value: token, ExpiresAt: c.nowFunc().Add(c.ttl)}
	if err := c.cache.Set(ctx, key, tok); err != nil {
		c.log.Warnf(ctx, "[winthor] token cache write failed: %v", err)
	}
	c.log.Infof(ctx, "[winthor] token acquired for tenant %s, expires %s", key, tok.ExpiresAt.Format(time.RFC3339))
	return token, nil
}

// InvalidateToken drops the cached token. Calling it with no entry is a no-op.
func (c *Client) InvalidateToken(ctx context.Context, tenantID int64) error {
	c.invalidations.Inc()
	if err := c.cache.Delete(ctx, tenantKey(tenantID)); err != nil {
		return fmt.Errorf("invalidate token: %w", err)
	}
	return nil
}

// Stats returns the counters accumulated since the client was created.
func (c *Client) Stats() Stats {
	return Stats{
		AuthCalls:     c.authCalls.Load(),
		CacheHits:     c.cacheHits.Load(),
		Invalidations: c.invalidations.Load(),
	}
}

// config loads the tenant configuration and checks the address fields.
func (c *Client) config(ctx context.Context, tenantID int64) (*Config, error) {
	if c.source == nil {
		return nil, &ConfigError{Reason: "configuração TOTVS não encontrada para o tenant"}
	}
	cfg, err := c.source.WinthorConfig(ctx, tenantID)
	if err != nil {
		return nil, fmt.Errorf("load tenant config: %w", err)
	}
	if cfg == nil {
		return nil, &ConfigError{Reason: "configuração TOTVS não encontrada para o tenant"}
	}
	if cfg.Host == "" || cfg.Port == "" {
		return nil, &ConfigError{Reason: "totvs_host / totvs_port ausentes"}
	}
	return cfg, nil
}

// send performs one request under the per-call timeout and returns status and body.
func (c *Client) send(ctx context.Context, method, url, token string, body []byte) (int, []byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read body: %w", err)
	}
	return resp.StatusCode, raw, nil
}

func (c *Client) count(ctx context.Context, name, tenant string) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Count(ctx, name, map[string]string{"Tenant": tenant}); err != nil {
		c.log.Warnf(ctx, "[winthor] record metric %s failed: %v", name, err)
	}
}

func baseURL(cfg *Config) string {
	return "http://" + cfg.Host + ":" + cfg.Port
}

func fieldNames(m map[string]interface{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// IsTimeout reports whether err is a transport failure caused by the per-call timeout.
func IsTimeout(err error) bool {
	var te *TransportError
	return errors.As(err, &te) && errors.Is(te.Err, context.DeadlineExceeded)
}
