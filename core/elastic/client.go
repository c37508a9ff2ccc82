// Package elastic is a typed facade over the Elastic Path commerce backend.
// It owns token acquisition and caching; all catalog, cart, and customer
// state stays on the backend and is fetched fresh per call.
package elastic

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	coreconfig "github.com/m3rciful/seashop/core/config"
	"github.com/m3rciful/seashop/core/logger"
)

const defaultCallTimeout = 10 * time.Second

// Client issues authenticated calls against the commerce backend.
type Client struct {
	baseURL      string
	clientID     string
	clientSecret string
	fallbackTTL  time.Duration
	callTimeout  time.Duration
	httpc        *http.Client
	now          func() time.Time

	mu     sync.RWMutex
	token  string
	expiry time.Time
}

// Option customises a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

// WithClock replaces the time source used for token expiry checks.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		if now != nil {
			c.now = now
		}
	}
}

// WithCallTimeout bounds every individual backend call.
func WithCallTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.callTimeout = d
		}
	}
}

// New builds a Client from configuration.
func New(cfg coreconfig.ElasticPathConfig, opts ...Option) *Client {
	base := cfg.BaseURL
	if base == "" {
		base = "https://api.moltin.com/"
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	ttl := time.Duration(cfg.TokenTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = time.Hour
	}
	c := &Client{
		baseURL:      base,
		clientID:     cfg.ClientID,
		clientSecret: cfg.ClientSecret,
		fallbackTTL:  ttl,
		callTimeout:  defaultCallTimeout,
		httpc:        &http.Client{Timeout: 30 * time.Second},
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Products lists the catalog.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var out struct {
		Data []productData `json:"data"`
	}
	if err := c.get(ctx, "v2/products/", &out); err != nil {
		return nil, err
	}
	products := make([]Product, 0, len(out.Data))
	for _, item := range out.Data {
		products = append(products, item.toProduct())
	}
	return products, nil
}

// Product fetches a single catalog entry with price, stock, description,
// and the linked primary image identifier.
func (c *Client) Product(ctx context.Context, productID string) (Product, error) {
	var out struct {
		Data productData `json:"data"`
	}
	if err := c.get(ctx, "v2/products/"+url.PathEscape(productID), &out); err != nil {
		return Product{}, err
	}
	return out.Data.toProduct(), nil
}

// ImageURL resolves a file identifier to a downloadable link.
func (c *Client) ImageURL(ctx context.Context, fileID string) (string, error) {
	var out struct {
		Data fileData `json:"data"`
	}
	if err := c.get(ctx, "v2/files/"+url.PathEscape(fileID), &out); err != nil {
		return "", err
	}
	return out.Data.Link.Href, nil
}

// CartItems lists the lines of a cart.
func (c *Client) CartItems(ctx context.Context, cartID string) ([]CartItem, error) {
	var out struct {
		Data []cartItemData `json:"data"`
	}
	if err := c.get(ctx, "v2/carts/"+url.PathEscape(cartID)+"/items/", &out); err != nil {
		return nil, err
	}
	items := make([]CartItem, 0, len(out.Data))
	for _, item := range out.Data {
		items = append(items, item.toCartItem())
	}
	return items, nil
}

// CartSummary fetches the cart's formatted grand total.
func (c *Client) CartSummary(ctx context.Context, cartID string) (CartSummary, error) {
	var out struct {
		Data cartData `json:"data"`
	}
	if err := c.get(ctx, "v2/carts/"+url.PathEscape(cartID), &out); err != nil {
		return CartSummary{}, err
	}
	return CartSummary{Total: out.Data.Meta.DisplayPrice.WithTax.Formatted}, nil
}

// AddToCart adds quantity units of a product to the cart. The backend creates
// the cart lazily on first write and merges repeated lines itself.
func (c *Client) AddToCart(ctx context.Context, cartID, productID string, quantity int) error {
	if quantity < 1 {
		quantity = 1
	}
	payload := map[string]any{
		"data": map[string]any{
			"type":     "cart_item",
			"id":       productID,
			"quantity": quantity,
		},
	}
	return c.post(ctx, "v2/carts/"+url.PathEscape(cartID)+"/items/", payload, nil)
}

// RemoveFromCart deletes a product line from the cart. Removing a product
// that is not in the cart is a well-formed no-op on the backend side.
func (c *Client) RemoveFromCart(ctx context.Context, cartID, productID string) error {
	path := "v2/carts/" + url.PathEscape(cartID) + "/items/" + url.PathEscape(productID)
	return c.do(ctx, http.MethodDelete, path, nil, "", nil)
}

// CreateCustomer registers a customer record and returns its id. A malformed
// or duplicate email yields a *ValidationError, which callers must treat as a
// recoverable outcome.
func (c *Client) CreateCustomer(ctx context.Context, email, name string) (string, error) {
	payload := map[string]any{
		"data": map[string]any{
			"type":  "customer",
			"name":  name,
			"email": email,
		},
	}

	token, err := c.Token(ctx)
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("elastic: encode customer: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, http.MethodPost, c.baseURL+"v2/customers/", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpc.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	var out customerResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", &BackendError{Status: resp.StatusCode, Body: truncateBody(raw)}
	}
	if resp.StatusCode < http.StatusMultipleChoices && out.Data != nil {
		return out.Data.ID, nil
	}
	if len(out.Errors) > 0 && resp.StatusCode >= http.StatusBadRequest && resp.StatusCode < http.StatusInternalServerError {
		return "", &ValidationError{Errors: out.Errors}
	}
	return "", &BackendError{Status: resp.StatusCode, Body: truncateBody(raw)}
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, "", out)
}

func (c *Client) post(ctx context.Context, path string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("elastic: encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body), "application/json", out)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, out any) error {
	token, err := c.Token(ctx)
	if err != nil {
		return err
	}

	callCtx, cancel := context.WithTimeout(ctx, c.callTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(callCtx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}

	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		logger.Error(ctx, "elastic", "call.fail",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("err", err.Error()),
		)
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	logger.Debug(ctx, "elastic", "call",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", logger.Took(start)),
	)

	if resp.StatusCode >= http.StatusMultipleChoices {
		return &BackendError{Status: resp.StatusCode, Body: truncateBody(raw)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("elastic: decode %s %s: %w", method, path, err)
	}
	return nil
}

func truncateBody(raw []byte) string {
	const limit = 512
	s := string(raw)
	if len(s) > limit {
		return s[:limit]
	}
	return s
}
