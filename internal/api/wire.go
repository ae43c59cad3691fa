package api

import "encoding/json"

// The backend speaks two dialects: the catalog serializes camelCase
// with money as JSON numbers, while orders and auth serialize
// snake_case with money as decimal strings. Each dialect gets its own
// wire struct here and a transform into the domain model; domain types
// never carry the backend's field names.

// wireID tolerates both ID encodings the backend uses: UUID strings
// for products and users, integers for orders.
type wireID string

func (id *wireID) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*id = wireID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*id = wireID(n.String())
	return nil
}

func (id wireID) String() string { return string(id) }

type productWire struct {
	ID              wireID         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Barcode         string         `json:"barcode"`
	Category        string         `json:"category"`
	Subcategory     string         `json:"subcategory"`
	Brand           string         `json:"brand"`
	Price           float64        `json:"price"`
	DiscountedPrice float64        `json:"discountedPrice"`
	Quantity        int            `json:"quantity"`
	InStock         bool           `json:"inStock"`
	Sizes           []string       `json:"sizes"`
	Colors          []string       `json:"colors"`
	MinQuantity     int            `json:"minQuantity"`
	SizeQuantities  map[string]int `json:"sizeQuantities"`
	Rating          float64        `json:"rating"`
	ReviewCount     int            `json:"reviewCount"`
	ImagePaths      []string       `json:"imagePaths"`
	PrimaryImage    string         `json:"primaryImage"`
	ShareURL        string         `json:"shareUrl"`
	CreatedAt       string         `json:"created_at"`
	UpdatedAt       string         `json:"updated_at"`
}

type productListWire struct {
	Count    int           `json:"count"`
	Next     string        `json:"next"`
	Previous string        `json:"previous"`
	Results  []productWire `json:"results"`
}

type orderItemWire struct {
	ID             wireID `json:"id"`
	Product        wireID `json:"product"`
	ProductName    string `json:"product_name"`
	ProductBarcode string `json:"product_barcode"`
	ProductImage   string `json:"product_image"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	SelectedSize   string `json:"selected_size"`
	SelectedColor  string `json:"selected_color"`
	Subtotal       string `json:"subtotal"`
}

type orderWire struct {
	ID              wireID          `json:"id"`
	OrderReference  string          `json:"order_reference"`
	OrderDate       string          `json:"order_date"`
	CustomerName    string          `json:"customer_name"`
	CustomerPhone   string          `json:"customer_phone"`
	CustomerAddress string          `json:"customer_address"`
	User            wireID          `json:"user"`
	Status          string          `json:"status"`
	Items           []orderItemWire `json:"items"`
	Total           string          `json:"total"`
	ItemCount       int             `json:"item_count"`
	CreatedAt       string          `json:"created_at"`
	UpdatedAt       string          `json:"updated_at"`
}

type orderListWire struct {
	Count   int         `json:"count"`
	Results []orderWire `json:"results"`
}

// createOrderWire is the payload for order creation. Money travels as
// decimal strings; the client computes total and item_count from the
// cart being checked out.
type createOrderWire struct {
	OrderReference  string                `json:"order_reference"`
	OrderDate       string                `json:"order_date"`
	CustomerName    string                `json:"customer_name"`
	CustomerPhone   string                `json:"customer_phone"`
	CustomerAddress string                `json:"customer_address,omitempty"`
	Items           []createOrderItemWire `json:"items"`
	Total           string                `json:"total"`
	ItemCount       int                   `json:"item_count"`
}

type createOrderItemWire struct {
	Product        string `json:"product"`
	ProductName    string `json:"product_name"`
	ProductBarcode string `json:"product_barcode,omitempty"`
	ProductImage   string `json:"product_image,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPrice      string `json:"unit_price"`
	SelectedSize   string `json:"selected_size,omitempty"`
	SelectedColor  string `json:"selected_color,omitempty"`
}

type confirmOrderWire struct {
	Success      bool       `json:"success"`
	Order        *orderWire `json:"order"`
	StockUpdated bool       `json:"stock_updated"`
	Message      string     `json:"message"`
}

type userWire struct {
	ID        wireID `json:"id"`
	Username  string `json:"username"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	ShopName  string `json:"shopname"`
	ShopDesc  string `json:"shopdes"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type loginRequestWire struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginWire struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	User    *userWire `json:"user"`
}

type registerRequestWire struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Role            string `json:"role,omitempty"`
	ShopName        string `json:"shopname,omitempty"`
	ShopDesc        string `json:"shopdes,omitempty"`
	FirstName       string `json:"first_name,omitempty"`
	LastName        string `json:"last_name,omitempty"`
}

// registerWire tolerates both token shapes the backend has shipped:
// an access/refresh pair, or a single legacy "token" field used as the
// access token with no refresh.
type registerWire struct {
	Access  string    `json:"access"`
	Refresh string    `json:"refresh"`
	Token   string    `json:"token"`
	User    *userWire `json:"user"`
}
