package elastic

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/m3rciful/seashop/core/logger"
)

// Token returns the cached bearer token while it is still valid and performs
// the credential exchange otherwise. The refresh path runs under the write
// lock with a post-acquire recheck, so two workers discovering expiry at the
// same time perform exactly one exchange.
func (c *Client) Token(ctx context.Context) (string, error) {
	c.mu.RLock()
	if c.token != "" && c.now().Before(c.expiry) {
		token := c.token
		c.mu.RUnlock()
		return token, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.token != "" && c.now().Before(c.expiry) {
		return c.token, nil
	}

	token, expiry, err := c.exchangeCredentials(ctx)
	if err != nil {
		return "", err
	}
	c.token = token
	c.expiry = expiry

	logger.Info(ctx, "elastic", "token.refreshed",
		slog.Time("expiry", expiry),
	)
	return token, nil
}

func (c *Client) exchangeCredentials(ctx context.Context) (string, time.Time, error) {
	form := url.Values{}
	form.Set("client_id", c.clientID)
	form.Set("client_secret", c.clientSecret)
	form.Set("grant_type", "client_credentials")

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost,
		c.baseURL+"oauth/access_token/", strings.NewReader(form.Encode()))
	if err != nil {
		return "", time.Time{}, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", time.Time{}, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", time.Time{}, err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		return "", time.Time{}, &BackendError{Status: resp.StatusCode, Body: truncateBody(raw)}
	}

	var out tokenResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", time.Time{}, &BackendError{Status: resp.StatusCode, Body: truncateBody(raw)}
	}

	// Degraded mode: some token endpoints omit the expiry; fall back to the
	// configured TTL instead of refreshing on every call.
	expiry := time.Unix(out.Expires, 0)
	if out.Expires <= 0 {
		expiry = c.now().Add(c.fallbackTTL)
	}
	return out.AccessToken, expiry, nil
}
