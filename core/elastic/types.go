package elastic

// Product is a catalog entry as the conversation layer needs it. Price is the
// backend's pre-formatted display string, never parsed locally.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       string
	Stock       int
	MainImageID string
}

// CartItem is one cart line. Everything is sourced from the backend per
// request; the cart has no local representation.
type CartItem struct {
	ProductID   string
	Name        string
	Description string
	Quantity    int
	UnitPrice   string
	LineTotal   string
}

// CartSummary carries the formatted grand total of a cart.
type CartSummary struct {
	Total string
}

// Wire shapes below mirror the backend's JSON API.

type formattedAmount struct {
	Formatted string `json:"formatted"`
}

type displayPrice struct {
	WithTax struct {
		Formatted string          `json:"formatted"`
		Unit      formattedAmount `json:"unit"`
		Value     formattedAmount `json:"value"`
	} `json:"with_tax"`
}

type productData struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Meta        struct {
		DisplayPrice displayPrice `json:"display_price"`
		Stock        struct {
			Level int `json:"level"`
		} `json:"stock"`
	} `json:"meta"`
	Relationships struct {
		MainImage struct {
			Data struct {
				ID string `json:"id"`
			} `json:"data"`
		} `json:"main_image"`
	} `json:"relationships"`
}

func (p productData) toProduct() Product {
	return Product{
		ID:          p.ID,
		Name:        p.Name,
		Description: p.Description,
		Price:       p.Meta.DisplayPrice.WithTax.Formatted,
		Stock:       p.Meta.Stock.Level,
		MainImageID: p.Relationships.MainImage.Data.ID,
	}
}

type cartItemData struct {
	ID          string `json:"id"`
	ProductID   string `json:"product_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Quantity    int    `json:"quantity"`
	Meta        struct {
		DisplayPrice displayPrice `json:"display_price"`
	} `json:"meta"`
}

func (i cartItemData) toCartItem() CartItem {
	productID := i.ProductID
	if productID == "" {
		productID = i.ID
	}
	return CartItem{
		ProductID:   productID,
		Name:        i.Name,
		Description: i.Description,
		Quantity:    i.Quantity,
		UnitPrice:   i.Meta.DisplayPrice.WithTax.Unit.Formatted,
		LineTotal:   i.Meta.DisplayPrice.WithTax.Value.Formatted,
	}
}

type cartData struct {
	Meta struct {
		DisplayPrice displayPrice `json:"display_price"`
	} `json:"meta"`
}

type fileData struct {
	Link struct {
		Href string `json:"href"`
	} `json:"link"`
}

type customerResponse struct {
	Data *struct {
		ID string `json:"id"`
	} `json:"data"`
	Errors []APIError `json:"errors"`
}

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	Expires     int64  `json:"expires"`
}
