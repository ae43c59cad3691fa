package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/model"
	"shopfront/internal/session"
	"shopfront/internal/storage"
)

func newTestClient(t *testing.T, ts *httptest.Server) (*Client, *session.Store) {
	t.Helper()
	sess := session.New(storage.NewMemStore())
	c, err := New(Config{
		BaseURL:    ts.URL,
		Tokens:     sess,
		HTTPClient: ts.Client(),
	})
	require.NoError(t, err)
	return c, sess
}

func TestPublicEndpointsCarryNoBearer(t *testing.T) {
	var authHeader atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`{"results": []}`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

	_, err := c.Products(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.Equal(t, "", authHeader.Load().(string))
}

func TestProtectedEndpointsCarryBearer(t *testing.T) {
	var authHeader atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader.Store(r.Header.Get("Authorization"))
		w.Write([]byte(`[]`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

	_, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer stored-access", authHeader.Load().(string))
}

func TestRequestsCarryRequestID(t *testing.T) {
	var id atomic.Value
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id.Store(r.Header.Get("X-Request-ID"))
		w.Write([]byte(`{"results": []}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(t, ts)
	_, err := c.Products(context.Background(), ProductFilter{})
	require.NoError(t, err)
	assert.NotEmpty(t, id.Load().(string))
}

func TestRefreshAndReplayOn401(t *testing.T) {
	var refreshCalls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/refresh/":
			refreshCalls.Add(1)
			var body map[string]string
			json.NewDecoder(r.Body).Decode(&body)
			if body["refresh"] != "good-refresh" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail": "Token is invalid or expired"}`))
				return
			}
			w.Write([]byte(`{"access": "fresh-access"}`))
		case "/api/orders/my-orders/":
			if r.Header.Get("Authorization") != "Bearer fresh-access" {
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail": "Given token not valid for any token type"}`))
				return
			}
			w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stale-access", "good-refresh"))

	_, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int32(1), refreshCalls.Load())
	assert.Equal(t, "fresh-access", sess.AccessToken())
	assert.Equal(t, "good-refresh", sess.RefreshToken())
}

func TestRefreshSingleFlight(t *testing.T) {
	const n = 8
	var refreshCalls atomic.Int32

	// Hold every stale request in the handler until all n are in
	// flight, so each of them observes the 401 and enters the refresh
	// protocol together.
	var stale sync.WaitGroup
	stale.Add(n)

	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/refresh/":
			refreshCalls.Add(1)
			w.Write([]byte(`{"access": "fresh-access"}`))
		default:
			if r.Header.Get("Authorization") != "Bearer fresh-access" {
				stale.Done()
				stale.Wait()
				w.WriteHeader(http.StatusUnauthorized)
				w.Write([]byte(`{"detail": "expired"}`))
				return
			}
			w.Write([]byte(`[]`))
		}
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stale-access", "good-refresh"))

	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = c.MyOrders(context.Background())
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		assert.NoError(t, err, "request %d", i)
	}
	assert.Equal(t, int32(1), refreshCalls.Load())
}

func TestRefreshFailureClearsSessionAndCascades(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/token/refresh/":
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "Token is invalid or expired"}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"detail": "expired"}`))
		}
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stale-access", "dead-refresh"))

	_, err := c.MyOrders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAuthExpired))
	assert.False(t, sess.LoggedIn())
	assert.Empty(t, sess.RefreshToken())
}

func TestNoRefreshTokenSkipsRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token/refresh/" {
			refreshCalls.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "expired"}`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("legacy-access", ""))

	_, err := c.MyOrders(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrAuthExpired))
	assert.Equal(t, int32(0), refreshCalls.Load())
	assert.Empty(t, sess.AccessToken())
}

func Test401OnPublicEndpointDoesNotRefresh(t *testing.T) {
	var refreshCalls atomic.Int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/token/refresh/" {
			refreshCalls.Add(1)
		}
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail": "No active account found with the given credentials"}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(t, ts)
	_, err := c.Login(context.Background(), Credentials{Username: "jane", Password: "wrong"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrUnauthorized))
	assert.Equal(t, int32(0), refreshCalls.Load())
}

func TestErrorNormalization(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"detail": "Not found."}`))
	}))
	defer ts.Close()

	c, _ := newTestClient(t, ts)
	_, err := c.Product(context.Background(), "missing")
	require.Error(t, err)

	var apiErr *model.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "NOT_FOUND", apiErr.Code)
	assert.Equal(t, "Not found.", apiErr.Message)
	assert.True(t, errors.Is(err, model.ErrNotFound))
}

func TestTransportFailure(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	ts.Close() // connection refused from here on

	sess := session.New(storage.NewMemStore())
	c, err := New(Config{BaseURL: ts.URL, Tokens: sess})
	require.NoError(t, err)

	_, err = c.Products(context.Background(), ProductFilter{})
	require.Error(t, err)
	assert.True(t, errors.Is(err, model.ErrTransport))
}

func TestConfiguredTimeoutReachesHTTPClient(t *testing.T) {
	sess := session.New(storage.NewMemStore())

	c, err := New(Config{BaseURL: "https://shop.example.com", Tokens: sess, Timeout: 5 * time.Second})
	require.NoError(t, err)
	assert.Equal(t, 5*time.Second, c.http.Timeout)

	// Zero falls back to the default.
	c, err = New(Config{BaseURL: "https://shop.example.com", Tokens: sess})
	require.NoError(t, err)
	assert.Equal(t, defaultTimeout, c.http.Timeout)
}

func TestIsPublicEndpoint(t *testing.T) {
	tests := []struct {
		method string
		path   string
		public bool
	}{
		{http.MethodGet, "/api/products/", true},
		{http.MethodGet, "/api/products/42/", true},
		{http.MethodPost, "/api/token/", true},
		{http.MethodPost, "/api/token/refresh/", true},
		{http.MethodPost, "/api/products/", false},
		{http.MethodDelete, "/api/products/42/", false},
		{http.MethodGet, "/api/orders/", false},
		{http.MethodGet, "/api/products/42/reviews/", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.public, isPublicEndpoint(tt.method, tt.path), "%s %s", tt.method, tt.path)
	}
}
