// Package api implements the authenticated request pipeline over the
// storefront REST backend. It attaches bearer credentials to every
// request except the public allow-list, and on a 401 performs a
// single-flight token refresh, queueing concurrent requests until the
// refresh completes and replaying them with the new token.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/mod/semver"

	"shopfront/internal/model"
	"shopfront/internal/session"
	"shopfront/internal/transport"
)

// defaultTimeout bounds every HTTP call. A timeout is a transport
// failure, never a 401, so it cannot trigger the refresh protocol.
const defaultTimeout = 30 * time.Second

// minAPIVersion is the oldest backend version this client is tested
// against. Older backends get a startup warning, not a hard failure.
const minAPIVersion = "v1.0.0"

// userAgent identifies this client to the backend and its CDN.
const userAgent = "shopfront-client/1.0"

// publicEndpoints is the fixed allow-list of requests issued without
// credentials. Everything else attaches the bearer token when one is
// stored; absence of a token on a protected call is not an error, the
// server rejects it.
var publicEndpoints = []struct {
	method string
	path   *regexp.Regexp
}{
	{http.MethodGet, regexp.MustCompile(`^/api/products/$`)},
	{http.MethodGet, regexp.MustCompile(`^/api/products/[^/]+/$`)},
	{http.MethodPost, regexp.MustCompile(`^/api/token/$`)},
	{http.MethodPost, regexp.MustCompile(`^/api/token/refresh/$`)},
}

func isPublicEndpoint(method, path string) bool {
	for _, e := range publicEndpoints {
		if e.method == method && e.path.MatchString(path) {
			return true
		}
	}
	return false
}

// Config holds client construction options.
type Config struct {
	// BaseURL is the backend origin, e.g. "https://api.example.com".
	BaseURL string
	// Tokens is the session store the pipeline reads credentials from
	// and writes refreshed tokens into. Required.
	Tokens *session.Store
	// Logger receives request logs; nil disables them.
	Logger *slog.Logger
	// BrowserTLS enables the browser-fingerprint transport for
	// backends behind JA3-fingerprinting CDNs.
	BrowserTLS bool
	// Timeout bounds every request, dial included. Zero means
	// defaultTimeout.
	Timeout time.Duration
	// HTTPClient overrides the default client (and Timeout); tests
	// inject httptest-backed clients here.
	HTTPClient *http.Client
}

// Client is the storefront API client. Safe for concurrent use; the
// refresh flag and its FIFO waiter queue are the only shared mutable
// state and are guarded by refreshMu.
type Client struct {
	http    *http.Client
	baseURL string
	tokens  *session.Store
	logger  *slog.Logger

	refreshMu  sync.Mutex
	refreshing bool
	waiters    []chan refreshOutcome

	versionOnce sync.Once
}

type refreshOutcome struct {
	access string
	err    error
}

// New creates a Client from cfg.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Tokens == nil {
		return nil, fmt.Errorf("session store is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: timeout}
		if cfg.BrowserTLS {
			httpClient.Transport = transport.NewBrowserTransport(timeout)
		}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimSuffix(cfg.BaseURL, "/"),
		tokens:  cfg.Tokens,
		logger:  logger,
	}, nil
}

// request captures everything needed to build (and rebuild, for the
// 401 replay) one outbound HTTP request.
type request struct {
	method      string
	path        string
	query       url.Values
	body        []byte
	contentType string
}

func (c *Client) build(ctx context.Context, r request, bearer string) (*http.Request, error) {
	u := c.baseURL + r.path
	if len(r.query) > 0 {
		u += "?" + r.query.Encode()
	}
	var body io.Reader
	if r.body != nil {
		body = bytes.NewReader(r.body)
	}
	req, err := http.NewRequestWithContext(ctx, r.method, u, body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	return req, nil
}

// send performs one attempt and drains the response body.
func (c *Client) send(ctx context.Context, r request, bearer string) (*http.Response, []byte, error) {
	req, err := c.build(ctx, r, bearer)
	if err != nil {
		return nil, nil, err
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("request failed",
			slog.String("method", r.method),
			slog.String("path", r.path),
			slog.Duration("duration", time.Since(start)),
			slog.String("error", err.Error()),
		)
		return nil, nil, model.NewTransportError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, model.NewTransportError(err)
	}

	c.logger.Debug("request",
		slog.String("method", r.method),
		slog.String("path", r.path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
		slog.String("request_id", req.Header.Get("X-Request-ID")),
	)

	c.versionOnce.Do(func() { c.checkAPIVersion(resp.Header.Get("API-Version")) })
	return resp, body, nil
}

// do runs the full pipeline: classify, attach, send, and on a 401 from
// a protected endpoint run the refresh protocol and replay once. A
// request that gets 401 again after its single replay propagates the
// error.
func (c *Client) do(ctx context.Context, r request) ([]byte, error) {
	public := isPublicEndpoint(r.method, r.path)

	bearer := ""
	if !public {
		bearer = c.tokens.AccessToken()
	}

	resp, body, err := c.send(ctx, r, bearer)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !public {
		access, err := c.refreshAccess(ctx)
		if err != nil {
			return nil, err
		}
		resp, body, err = c.send(ctx, r, access)
		if err != nil {
			return nil, err
		}
	}

	if resp.StatusCode >= 400 {
		return nil, model.FromResponse(resp.StatusCode, body, resp.Header)
	}
	return body, nil
}

// refreshAccess runs the single-flight refresh protocol. The first
// caller issues the refresh request; concurrent callers park on a FIFO
// waiter queue and are released together with the outcome. On failure
// all stored credentials are cleared and every caller receives the
// fatal authentication error.
func (c *Client) refreshAccess(ctx context.Context) (string, error) {
	c.refreshMu.Lock()
	if c.refreshing {
		ch := make(chan refreshOutcome, 1)
		c.waiters = append(c.waiters, ch)
		c.refreshMu.Unlock()
		select {
		case out := <-ch:
			return out.access, out.err
		case <-ctx.Done():
			return "", model.NewTransportError(ctx.Err())
		}
	}

	refresh := c.tokens.RefreshToken()
	if refresh == "" {
		// Nothing to refresh with: skip the attempt entirely.
		c.refreshMu.Unlock()
		_ = c.tokens.Clear()
		return "", model.NewAuthExpiredError("no refresh token stored, login required")
	}

	c.refreshing = true
	c.refreshMu.Unlock()

	access, err := c.requestRefresh(ctx, refresh)

	c.refreshMu.Lock()
	waiters := c.waiters
	c.waiters = nil
	c.refreshing = false
	c.refreshMu.Unlock()

	if err != nil {
		_ = c.tokens.Clear()
		authErr := model.NewAuthExpiredError("token refresh failed: " + err.Error())
		for _, ch := range waiters {
			ch <- refreshOutcome{err: authErr}
		}
		c.logger.Warn("token refresh failed, session cleared",
			slog.Int("rejected_waiters", len(waiters)),
			slog.String("error", err.Error()),
		)
		return "", authErr
	}

	if err := c.tokens.ReplaceAccess(access); err != nil {
		c.logger.Warn("persisting refreshed token failed", slog.String("error", err.Error()))
	}
	// Release in enqueue order.
	for _, ch := range waiters {
		ch <- refreshOutcome{access: access}
	}
	return access, nil
}

// requestRefresh calls the refresh endpoint directly, outside the
// pipeline, so it can never recurse into the refresh protocol.
func (c *Client) requestRefresh(ctx context.Context, refresh string) (string, error) {
	payload, err := json.Marshal(map[string]string{"refresh": refresh})
	if err != nil {
		return "", err
	}
	resp, body, err := c.send(ctx, request{
		method:      http.MethodPost,
		path:        "/api/token/refresh/",
		body:        payload,
		contentType: "application/json",
	}, "")
	if err != nil {
		return "", err
	}
	if resp.StatusCode >= 400 {
		return "", model.FromResponse(resp.StatusCode, body, resp.Header)
	}
	var out struct {
		Access string `json:"access"`
	}
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("parsing refresh response: %w", err)
	}
	if out.Access == "" {
		return "", fmt.Errorf("refresh response missing access token")
	}
	return out.Access, nil
}

// getJSON issues a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	body, err := c.do(ctx, request{method: http.MethodGet, path: path, query: query})
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// sendJSON issues a request with a JSON body and decodes the response
// into out when out is non-nil.
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshaling %s request: %w", path, err)
		}
	}
	respBody, err := c.do(ctx, request{
		method:      method,
		path:        path,
		body:        body,
		contentType: "application/json",
	})
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("parsing %s response: %w", path, err)
	}
	return nil
}

// checkAPIVersion compares the backend's advertised version against
// the minimum this client supports. Non-semver values are ignored.
func (c *Client) checkAPIVersion(v string) {
	if v == "" {
		return
	}
	nv := v
	if !strings.HasPrefix(nv, "v") {
		nv = "v" + nv
	}
	if !semver.IsValid(nv) {
		return
	}
	if semver.Compare(nv, minAPIVersion) < 0 {
		c.logger.Warn("backend older than supported minimum",
			slog.String("backend_version", v),
			slog.String("min_version", minAPIVersion),
		)
	}
}
