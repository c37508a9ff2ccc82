package elastic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreconfig "github.com/m3rciful/seashop/core/config"
)

// newBackend serves a token endpoint plus the given routes and returns a
// client pointed at it. Every data route asserts the bearer header.
func newBackend(t *testing.T, routes map[string]http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth/access_token/", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"access_token": "tok-1", "expires": 0})
	})
	for pattern, handler := range routes {
		h := handler
		mux.HandleFunc(pattern, func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, "Bearer tok-1", r.Header.Get("Authorization"))
			h(w, r)
		})
	}
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	c := New(coreconfig.ElasticPathConfig{
		BaseURL:      srv.URL,
		ClientID:     "id-1",
		ClientSecret: "secret-1",
	}, WithHTTPClient(srv.Client()))
	return c, srv
}

const productJSON = `{
	"id": "p1",
	"name": "Blue Crab",
	"description": "Fresh from the bay",
	"meta": {
		"display_price": {"with_tax": {"formatted": "$10.00"}},
		"stock": {"level": 12}
	},
	"relationships": {"main_image": {"data": {"id": "f1"}}}
}`

func TestProductParsing(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/products/p1": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte(`{"data": ` + productJSON + `}`))
		},
	})

	p, err := c.Product(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, Product{
		ID:          "p1",
		Name:        "Blue Crab",
		Description: "Fresh from the bay",
		Price:       "$10.00",
		Stock:       12,
		MainImageID: "f1",
	}, p)
}

func TestProductsListing(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/products/": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [` + productJSON + `]}`))
		},
	})

	products, err := c.Products(context.Background())
	require.NoError(t, err)
	require.Len(t, products, 1)
	assert.Equal(t, "p1", products[0].ID)
	assert.Equal(t, "$10.00", products[0].Price)
}

func TestImageURL(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/files/f1": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"link": {"href": "https://cdn.example.com/crab.jpg"}}}`))
		},
	})

	href, err := c.ImageURL(context.Background(), "f1")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/crab.jpg", href)
}

func TestCartItemsParsing(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/carts/42/items/": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte(`{"data": [{
				"id": "line-1",
				"product_id": "p1",
				"name": "Blue Crab",
				"description": "Fresh from the bay",
				"quantity": 5,
				"meta": {"display_price": {"with_tax": {
					"unit": {"formatted": "$10.00"},
					"value": {"formatted": "$50.00"}
				}}}
			}]}`))
		},
	})

	items, err := c.CartItems(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, CartItem{
		ProductID:   "p1",
		Name:        "Blue Crab",
		Description: "Fresh from the bay",
		Quantity:    5,
		UnitPrice:   "$10.00",
		LineTotal:   "$50.00",
	}, items[0])
}

func TestCartItemFallsBackToLineID(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/carts/42/items/": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": [{"id": "line-1", "name": "Crab", "quantity": 1}]}`))
		},
	})

	items, err := c.CartItems(context.Background(), "42")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "line-1", items[0].ProductID)
}

func TestCartSummary(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/carts/42": func(w http.ResponseWriter, _ *http.Request) {
			_, _ = w.Write([]byte(`{"data": {"meta": {"display_price": {"with_tax": {"formatted": "$50.00"}}}}}`))
		},
	})

	summary, err := c.CartSummary(context.Background(), "42")
	require.NoError(t, err)
	assert.Equal(t, "$50.00", summary.Total)
}

func TestAddToCartPayload(t *testing.T) {
	var payload struct {
		Data struct {
			Type     string `json:"type"`
			ID       string `json:"id"`
			Quantity int    `json:"quantity"`
		} `json:"data"`
	}
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/carts/42/items/": func(w http.ResponseWriter, r *http.Request) {
			require.Equal(t, http.MethodPost, r.Method)
			require.Equal(t, "application/json", r.Header.Get("Content-Type"))
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data": []}`))
		},
	})

	require.NoError(t, c.AddToCart(context.Background(), "42", "p1", 5))
	assert.Equal(t, "cart_item", payload.Data.Type)
	assert.Equal(t, "p1", payload.Data.ID)
	assert.Equal(t, 5, payload.Data.Quantity)

	// Quantities below one are coerced to a single unit.
	require.NoError(t, c.AddToCart(context.Background(), "42", "p1", 0))
	assert.Equal(t, 1, payload.Data.Quantity)
}

func TestRemoveFromCart(t *testing.T) {
	var method string
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/carts/42/items/p1": func(w http.ResponseWriter, r *http.Request) {
			method = r.Method
			w.WriteHeader(http.StatusNoContent)
		},
	})

	require.NoError(t, c.RemoveFromCart(context.Background(), "42", "p1"))
	assert.Equal(t, http.MethodDelete, method)
}

func TestBackendErrorOnFailureStatus(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/products/": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"errors":[{"title":"boom"}]}`, http.StatusInternalServerError)
		},
	})

	_, err := c.Products(context.Background())
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusInternalServerError, backendErr.Status)
	assert.Contains(t, backendErr.Body, "boom")
}

func TestCreateCustomer(t *testing.T) {
	var payload struct {
		Data struct {
			Type  string `json:"type"`
			Name  string `json:"name"`
			Email string `json:"email"`
		} `json:"data"`
	}
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/customers/": func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
			w.WriteHeader(http.StatusCreated)
			_, _ = w.Write([]byte(`{"data": {"id": "cust-1"}}`))
		},
	})

	id, err := c.CreateCustomer(context.Background(), "alice@example.com", "Alice")
	require.NoError(t, err)
	assert.Equal(t, "cust-1", id)
	assert.Equal(t, "customer", payload.Data.Type)
	assert.Equal(t, "Alice", payload.Data.Name)
	assert.Equal(t, "alice@example.com", payload.Data.Email)
}

func TestCreateCustomerValidationFailure(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/customers/": func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"errors": [{"status": 422, "title": "Failed Validation", "detail": "The email field must be a valid email address."}]}`))
		},
	})

	_, err := c.CreateCustomer(context.Background(), "not-an-email", "Alice")
	require.True(t, IsValidation(err))
	var validationErr *ValidationError
	require.ErrorAs(t, err, &validationErr)
	require.Len(t, validationErr.Errors, 1)
	assert.Equal(t, "Failed Validation", validationErr.Errors[0].Title)
	assert.Contains(t, err.Error(), "valid email")
}

func TestCreateCustomerServerFailure(t *testing.T) {
	c, _ := newBackend(t, map[string]http.HandlerFunc{
		"/v2/customers/": func(w http.ResponseWriter, _ *http.Request) {
			http.Error(w, `{"errors":[{"title":"internal"}]}`, http.StatusInternalServerError)
		},
	})

	_, err := c.CreateCustomer(context.Background(), "alice@example.com", "Alice")
	assert.False(t, IsValidation(err))
	var backendErr *BackendError
	require.ErrorAs(t, err, &backendErr)
	assert.Equal(t, http.StatusInternalServerError, backendErr.Status)
}
