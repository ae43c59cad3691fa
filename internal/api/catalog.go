package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strconv"

	"shopfront/internal/model"
)

// ProductFilter narrows a catalog listing. Zero values mean "don't
// filter".
type ProductFilter struct {
	Category model.Category
	// InStock filters on availability when non-nil.
	InStock *bool
	// Ordering is a backend sort key: price, -price, created_at,
	// -created_at.
	Ordering string
	Search   string
}

func (f ProductFilter) values() url.Values {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", string(f.Category))
	}
	if f.InStock != nil {
		q.Set("in_stock", strconv.FormatBool(*f.InStock))
	}
	if f.Ordering != "" {
		q.Set("ordering", f.Ordering)
	}
	if f.Search != "" {
		q.Set("search", f.Search)
	}
	return q
}

// Products lists the catalog. Both paginated envelopes and bare arrays
// are accepted; pagination cursors are not surfaced.
func (c *Client) Products(ctx context.Context, filter ProductFilter) ([]model.Product, error) {
	body, err := c.do(ctx, request{
		method: http.MethodGet,
		path:   "/api/products/",
		query:  filter.values(),
	})
	if err != nil {
		return nil, err
	}

	var list productListWire
	if err := json.Unmarshal(body, &list); err == nil && list.Results != nil {
		return productsFromWire(list.Results), nil
	}
	var plain []productWire
	if err := json.Unmarshal(body, &plain); err != nil {
		return nil, fmt.Errorf("parsing product list: %w", err)
	}
	return productsFromWire(plain), nil
}

// Product fetches a single product by ID.
func (c *Client) Product(ctx context.Context, id string) (*model.Product, error) {
	if id == "" {
		return nil, model.NewValidationError("id", "must not be empty")
	}
	var w productWire
	if err := c.getJSON(ctx, "/api/products/"+url.PathEscape(id)+"/", nil, &w); err != nil {
		return nil, err
	}
	p := productFromWire(w)
	return &p, nil
}

// ProductInput is the create/update form for catalog management. It is
// sent as multipart/form-data because image files ride along with the
// scalar fields.
type ProductInput struct {
	Name            string
	Description     string
	Barcode         string
	Category        model.Category
	Subcategory     string
	Brand           string
	Price           model.Cents
	DiscountedPrice model.Cents
	Quantity        int
	InStock         bool
	Sizes           []string
	Colors          []string
	MinQuantity     int
	SizeQuantities  map[string]int
	// Images maps file names to contents; each is uploaded as an
	// "uploaded_images" part.
	Images map[string][]byte
}

func (in ProductInput) validate() error {
	if in.Name == "" {
		return model.NewValidationError("name", "must not be empty")
	}
	if in.Category == "" {
		return model.NewValidationError("category", "must not be empty")
	}
	if in.Price <= 0 {
		return model.NewValidationError("price", "must be positive")
	}
	if in.Quantity < 0 {
		return model.NewValidationError("quantity", "must not be negative")
	}
	return nil
}

// encode builds the multipart body. List and map fields are sent as
// JSON strings, matching the backend's form parser.
func (in ProductInput) encode() ([]byte, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	fields := map[string]string{
		"name":        in.Name,
		"description": in.Description,
		"barcode":     in.Barcode,
		"category":    string(in.Category),
		"price":       in.Price.DecimalString(),
		"quantity":    strconv.Itoa(in.Quantity),
		"in_stock":    strconv.FormatBool(in.InStock),
	}
	if in.Subcategory != "" {
		fields["subcategory"] = in.Subcategory
	}
	if in.Brand != "" {
		fields["brand"] = in.Brand
	}
	if in.DiscountedPrice > 0 {
		fields["discounted_price"] = in.DiscountedPrice.DecimalString()
	}
	if in.MinQuantity > 0 {
		fields["min_quantity"] = strconv.Itoa(in.MinQuantity)
	}
	if len(in.Sizes) > 0 {
		b, _ := json.Marshal(in.Sizes)
		fields["sizes"] = string(b)
	}
	if len(in.Colors) > 0 {
		b, _ := json.Marshal(in.Colors)
		fields["colors"] = string(b)
	}
	if len(in.SizeQuantities) > 0 {
		b, _ := json.Marshal(in.SizeQuantities)
		fields["size_quantities"] = string(b)
	}
	for k, v := range fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}

	for name, data := range in.Images {
		part, err := w.CreateFormFile("uploaded_images", filepath.Base(name))
		if err != nil {
			return nil, "", err
		}
		if _, err := part.Write(data); err != nil {
			return nil, "", err
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

// CreateProduct adds a product to the catalog. Requires a seller or
// admin token; the server enforces the role.
func (c *Client) CreateProduct(ctx context.Context, in ProductInput) (*model.Product, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	body, contentType, err := in.encode()
	if err != nil {
		return nil, fmt.Errorf("encoding product form: %w", err)
	}
	respBody, err := c.do(ctx, request{
		method:      http.MethodPost,
		path:        "/api/products/",
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	var w productWire
	if err := json.Unmarshal(respBody, &w); err != nil {
		return nil, fmt.Errorf("parsing created product: %w", err)
	}
	p := productFromWire(w)
	return &p, nil
}

// UpdateProduct replaces a product's fields.
func (c *Client) UpdateProduct(ctx context.Context, id string, in ProductInput) (*model.Product, error) {
	if id == "" {
		return nil, model.NewValidationError("id", "must not be empty")
	}
	if err := in.validate(); err != nil {
		return nil, err
	}
	body, contentType, err := in.encode()
	if err != nil {
		return nil, fmt.Errorf("encoding product form: %w", err)
	}
	respBody, err := c.do(ctx, request{
		method:      http.MethodPut,
		path:        "/api/products/" + url.PathEscape(id) + "/",
		body:        body,
		contentType: contentType,
	})
	if err != nil {
		return nil, err
	}
	var w productWire
	if err := json.Unmarshal(respBody, &w); err != nil {
		return nil, fmt.Errorf("parsing updated product: %w", err)
	}
	p := productFromWire(w)
	return &p, nil
}

// DeleteProduct removes a product from the catalog.
func (c *Client) DeleteProduct(ctx context.Context, id string) error {
	if id == "" {
		return model.NewValidationError("id", "must not be empty")
	}
	_, err := c.do(ctx, request{
		method: http.MethodDelete,
		path:   "/api/products/" + url.PathEscape(id) + "/",
	})
	return err
}
