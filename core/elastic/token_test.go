package elastic

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/seashop/core/config"
)

// fakeClock is a manually advanced time source for expiry checks.
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// tokenServer counts credential exchanges and hands out numbered tokens.
func tokenServer(t *testing.T, exchanges *atomic.Int64, expires func() int64) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/oauth/access_token/", r.URL.Path)
		require.NoError(t, r.ParseForm())
		require.Equal(t, "client_credentials", r.PostForm.Get("grant_type"))
		require.Equal(t, "id-1", r.PostForm.Get("client_id"))
		require.Equal(t, "secret-1", r.PostForm.Get("client_secret"))

		n := exchanges.Add(1)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"access_token": fmt.Sprintf("tok-%d", n),
			"expires":      expires(),
		})
	}))
}

func tokenClient(srv *httptest.Server, clock *fakeClock, ttlSeconds int) *Client {
	return New(coreconfig.ElasticPathConfig{
		BaseURL:         srv.URL,
		ClientID:        "id-1",
		ClientSecret:    "secret-1",
		TokenTTLSeconds: ttlSeconds,
	}, WithHTTPClient(srv.Client()), WithClock(clock.Now))
}

func TestTokenCachedUntilExpiry(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	expiry := base.Add(100 * time.Second)

	var exchanges atomic.Int64
	srv := tokenServer(t, &exchanges, func() int64 { return expiry.Unix() })
	defer srv.Close()

	clock := &fakeClock{now: base}
	c := tokenClient(srv, clock, 0)
	ctx := context.Background()

	token, err := c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int64(1), exchanges.Load())

	// One second before expiry the cached token is still served.
	clock.Set(expiry.Add(-time.Second))
	token, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int64(1), exchanges.Load())

	// At the expiry instant exactly one refresh happens.
	clock.Set(expiry)
	token, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, int64(2), exchanges.Load())
}

func TestTokenRefreshSingleWriter(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)
	expiry := base.Add(100 * time.Second)

	var exchanges atomic.Int64
	srv := tokenServer(t, &exchanges, func() int64 { return expiry.Unix() })
	defer srv.Close()

	clock := &fakeClock{now: base}
	c := tokenClient(srv, clock, 0)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			token, err := c.Token(ctx)
			assert.NoError(t, err)
			assert.Equal(t, "tok-1", token)
		}()
	}
	wg.Wait()

	// Workers discovering the empty cache at the same time perform exactly
	// one exchange between them.
	assert.Equal(t, int64(1), exchanges.Load())
}

func TestTokenFallbackTTLWhenExpiryOmitted(t *testing.T) {
	base := time.Unix(1_700_000_000, 0)

	var exchanges atomic.Int64
	srv := tokenServer(t, &exchanges, func() int64 { return 0 })
	defer srv.Close()

	clock := &fakeClock{now: base}
	c := tokenClient(srv, clock, 120)
	ctx := context.Background()

	token, err := c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)

	// The configured TTL substitutes for the missing expiry.
	clock.Set(base.Add(119 * time.Second))
	token, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-1", token)
	assert.Equal(t, int64(1), exchanges.Load())

	clock.Set(base.Add(120 * time.Second))
	token, err = c.Token(ctx)
	require.NoError(t, err)
	assert.Equal(t, "tok-2", token)
	assert.Equal(t, int64(2), exchanges.Load())
}

func TestTokenExchangeFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, `{"errors":[{"title":"unauthorized"}]}`, http.StatusUnauthorized)
	}))
	defer srv.Close()

	clock := &fakeClock{now: time.Unix(1_700_000_000, 0)}
	c := tokenClient(srv, clock, 0)

	_, err := c.Token(context.Background())
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusUnauthorized, backendErr.Status)
}
