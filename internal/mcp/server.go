// Package mcp exposes the storefront as MCP tools so agent frameworks
// can browse the catalog, manage the cart, and check out on a
// customer's behalf.
package mcp

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/checkout"
	"shopfront/internal/model"
)

// Server wires the storefront services into MCP tool handlers.
type Server struct {
	client   *api.Client
	cart     *cart.Store
	checkout *checkout.Service
	logger   *slog.Logger
}

// NewServer creates a Server over the given services.
func NewServer(client *api.Client, cartStore *cart.Store, svc *checkout.Service, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Server{client: client, cart: cartStore, checkout: svc, logger: logger}
}

// === Tool Input/Output Types ===

// ListProductsInput is the input schema for list_products.
type ListProductsInput struct {
	Category string `json:"category,omitempty" jsonschema:"product category: Men, Women, Kids, Accessories, Shoes"`
	InStock  *bool  `json:"in_stock,omitempty" jsonschema:"filter by availability"`
	Ordering string `json:"ordering,omitempty" jsonschema:"sort key: price, -price, created_at, -created_at"`
	Search   string `json:"search,omitempty" jsonschema:"free-text search"`
}

// ListProductsOutput wraps the product list; MCP tool outputs must be
// objects, not arrays.
type ListProductsOutput struct {
	Products []model.Product `json:"products"`
	Count    int             `json:"count"`
}

// GetProductInput is the input schema for get_product.
type GetProductInput struct {
	ID string `json:"id" jsonschema:"product ID,required"`
}

// CartAddInput is the input schema for cart_add.
type CartAddInput struct {
	ProductID    string `json:"product_id" jsonschema:"product ID,required"`
	SelectedSize string `json:"selected_size,omitempty" jsonschema:"size variant"`
	Color        string `json:"selected_color,omitempty" jsonschema:"color variant"`
	Quantity     int    `json:"quantity,omitempty" jsonschema:"quantity to add, default 1"`
}

// CartLineInput identifies one cart line by its (product, size) key.
type CartLineInput struct {
	ProductID    string `json:"product_id" jsonschema:"product ID,required"`
	SelectedSize string `json:"selected_size,omitempty" jsonschema:"size variant of the line"`
}

// CartUpdateInput is the input schema for cart_update_quantity.
type CartUpdateInput struct {
	ProductID    string `json:"product_id" jsonschema:"product ID,required"`
	SelectedSize string `json:"selected_size,omitempty" jsonschema:"size variant of the line"`
	Quantity     int    `json:"quantity" jsonschema:"new quantity; zero or less removes the line,required"`
}

// CartView is the cart snapshot returned by the cart tools.
type CartView struct {
	Items     []cart.LineItem `json:"items"`
	Total     string          `json:"total"`
	ItemCount int             `json:"itemCount"`
}

// CheckoutInput is the input schema for checkout.
type CheckoutInput struct {
	CustomerName    string `json:"customer_name" jsonschema:"customer full name,required"`
	CustomerPhone   string `json:"customer_phone" jsonschema:"customer phone number,required"`
	CustomerAddress string `json:"customer_address,omitempty" jsonschema:"delivery address"`
}

// CheckoutOutput is the result of the checkout tool.
type CheckoutOutput struct {
	Reference    string `json:"reference"`
	Persisted    bool   `json:"persisted"`
	WhatsAppLink string `json:"whatsappLink"`
	Message      string `json:"message"`
	Warning      string `json:"warning,omitempty"`
}

// New creates the MCP server with all storefront tools registered.
func (s *Server) New() *mcp.Server {
	server := mcp.NewServer(
		&mcp.Implementation{
			Name:    "shopfront",
			Version: "1.0.0",
		},
		&mcp.ServerOptions{
			Instructions: "Storefront client tools. Browse the catalog, manage the " +
				"local cart, and check out; checkout returns a WhatsApp link the " +
				"customer sends to the store.",
		},
	)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "list_products",
		Description: "List catalog products, optionally filtered by category, availability, ordering, or search text.",
	}, s.listProducts)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "get_product",
		Description: "Get a single product by ID.",
	}, s.getProduct)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_add",
		Description: "Add a product to the cart. Repeat adds of the same product and size increment the quantity.",
	}, s.cartAdd)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_remove",
		Description: "Remove a cart line identified by product ID and size.",
	}, s.cartRemove)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_update_quantity",
		Description: "Set a cart line's quantity. Zero or less removes the line.",
	}, s.cartUpdate)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "cart_view",
		Description: "Show the cart contents with the running total.",
	}, s.cartView)

	mcp.AddTool(server, &mcp.Tool{
		Name:        "checkout",
		Description: "Place the order for the current cart and get the WhatsApp handoff link.",
	}, s.checkoutTool)

	return server
}

// Handler returns the HTTP handler for the MCP endpoint. Mount at /mcp.
func (s *Server) Handler() http.Handler {
	server := s.New()
	return mcp.NewStreamableHTTPHandler(
		func(r *http.Request) *mcp.Server { return server },
		nil,
	)
}

// === Tool Handlers ===

func (s *Server) listProducts(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input ListProductsInput,
) (*mcp.CallToolResult, *ListProductsOutput, error) {
	products, err := s.client.Products(ctx, api.ProductFilter{
		Category: model.Category(input.Category),
		InStock:  input.InStock,
		Ordering: input.Ordering,
		Search:   input.Search,
	})
	if err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, &ListProductsOutput{Products: products, Count: len(products)}, nil
}

func (s *Server) getProduct(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input GetProductInput,
) (*mcp.CallToolResult, *model.Product, error) {
	if input.ID == "" {
		return nil, nil, fmt.Errorf("id is required")
	}
	p, err := s.client.Product(ctx, input.ID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, p, nil
}

func (s *Server) cartAdd(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartAddInput,
) (*mcp.CallToolResult, *CartView, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	p, err := s.client.Product(ctx, input.ProductID)
	if err != nil {
		return nil, nil, s.toolError(err)
	}

	line := cart.LineFromProduct(p, input.SelectedSize, input.Color)
	n := input.Quantity
	if n < 1 {
		n = 1
	}
	for i := 0; i < n; i++ {
		if err := s.cart.Add(line); err != nil {
			return nil, nil, s.toolError(err)
		}
	}
	return nil, s.view(), nil
}

func (s *Server) cartRemove(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartLineInput,
) (*mcp.CallToolResult, *CartView, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	if err := s.cart.Remove(input.ProductID, input.SelectedSize); err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, s.view(), nil
}

func (s *Server) cartUpdate(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CartUpdateInput,
) (*mcp.CallToolResult, *CartView, error) {
	if input.ProductID == "" {
		return nil, nil, fmt.Errorf("product_id is required")
	}
	if err := s.cart.UpdateQuantity(input.ProductID, input.Quantity, input.SelectedSize); err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, s.view(), nil
}

func (s *Server) cartView(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input struct{},
) (*mcp.CallToolResult, *CartView, error) {
	return nil, s.view(), nil
}

func (s *Server) checkoutTool(
	ctx context.Context,
	req *mcp.CallToolRequest,
	input CheckoutInput,
) (*mcp.CallToolResult, *CheckoutOutput, error) {
	res, err := s.checkout.Checkout(ctx, checkout.Form{
		CustomerName:    input.CustomerName,
		CustomerPhone:   input.CustomerPhone,
		CustomerAddress: input.CustomerAddress,
	})
	if err != nil {
		return nil, nil, s.toolError(err)
	}
	return nil, &CheckoutOutput{
		Reference:    res.Reference,
		Persisted:    res.Persisted,
		WhatsAppLink: res.Link,
		Message:      res.Message,
		Warning:      res.Warning,
	}, nil
}

func (s *Server) view() *CartView {
	return &CartView{
		Items:     s.cart.Items(),
		Total:     s.cart.Total().String(),
		ItemCount: s.cart.ItemCount(),
	}
}

// toolError converts service errors to MCP-friendly errors without
// leaking internals.
func (s *Server) toolError(err error) error {
	var apiErr *model.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("%s: %s", apiErr.Code, apiErr.Message)
	}
	s.logger.Error("mcp internal error", "error", err.Error())
	return fmt.Errorf("internal error")
}
