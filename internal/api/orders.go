package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"shopfront/internal/model"
)

// OrderLine is one line of an order draft, priced at the moment the
// item entered the cart.
type OrderLine struct {
	ProductID     string
	Name          string
	Barcode       string
	Image         string
	Quantity      int
	UnitPrice     model.Cents
	SelectedSize  string
	SelectedColor string
}

// OrderDraft is the client-assembled order sent to the backend. The
// reference is generated client-side; the backend may supersede it
// with its own, and callers must treat the echoed reference as
// canonical.
type OrderDraft struct {
	Reference       string
	Date            time.Time
	CustomerName    string
	CustomerPhone   string
	CustomerAddress string
	Items           []OrderLine
}

func (d OrderDraft) validate() error {
	if d.CustomerName == "" {
		return model.NewValidationError("customer_name", "must not be empty")
	}
	if d.CustomerPhone == "" {
		return model.NewValidationError("customer_phone", "must not be empty")
	}
	if len(d.Items) == 0 {
		return model.NewValidationError("items", "order must contain at least one item")
	}
	for _, it := range d.Items {
		if it.Quantity <= 0 {
			return model.NewValidationError("items", "quantity must be positive for "+it.Name)
		}
	}
	return nil
}

func (d OrderDraft) wire() createOrderWire {
	items := make([]createOrderItemWire, len(d.Items))
	var total model.Cents
	count := 0
	for i, it := range d.Items {
		items[i] = createOrderItemWire{
			Product:        it.ProductID,
			ProductName:    it.Name,
			ProductBarcode: it.Barcode,
			ProductImage:   it.Image,
			Quantity:       it.Quantity,
			UnitPrice:      it.UnitPrice.DecimalString(),
			SelectedSize:   it.SelectedSize,
			SelectedColor:  it.SelectedColor,
		}
		total += it.UnitPrice * model.Cents(it.Quantity)
		count += it.Quantity
	}
	return createOrderWire{
		OrderReference:  d.Reference,
		OrderDate:       d.Date.UTC().Format(time.RFC3339),
		CustomerName:    d.CustomerName,
		CustomerPhone:   d.CustomerPhone,
		CustomerAddress: d.CustomerAddress,
		Items:           items,
		Total:           total.DecimalString(),
		ItemCount:       count,
	}
}

// CreateOrder persists a draft and returns the backend's view of it.
func (c *Client) CreateOrder(ctx context.Context, draft OrderDraft) (*model.Order, error) {
	if err := draft.validate(); err != nil {
		return nil, err
	}
	var w orderWire
	if err := c.sendJSON(ctx, http.MethodPost, "/api/orders/", draft.wire(), &w); err != nil {
		return nil, err
	}
	o := orderFromWire(w)
	return &o, nil
}

// Orders lists all orders. Admin and seller accounts see every order;
// the server scopes the result by role.
func (c *Client) Orders(ctx context.Context) ([]model.Order, error) {
	return c.orderList(ctx, "/api/orders/")
}

// MyOrders lists only the authenticated user's own orders.
func (c *Client) MyOrders(ctx context.Context) ([]model.Order, error) {
	return c.orderList(ctx, "/api/orders/my-orders/")
}

func (c *Client) orderList(ctx context.Context, path string) ([]model.Order, error) {
	body, err := c.do(ctx, request{method: http.MethodGet, path: path})
	if err != nil {
		return nil, err
	}
	orders, err := decodeOrderList(body)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// decodeOrderList accepts both the paginated envelope and a bare
// array, mirroring the product listing.
func decodeOrderList(body []byte) ([]model.Order, error) {
	var list orderListWire
	if err := json.Unmarshal(body, &list); err == nil && list.Results != nil {
		return ordersFromWire(list.Results), nil
	}
	var plain []orderWire
	if err := json.Unmarshal(body, &plain); err != nil {
		return nil, fmt.Errorf("parsing order list: %w", err)
	}
	return ordersFromWire(plain), nil
}

// Order fetches one order by ID.
func (c *Client) Order(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, model.NewValidationError("id", "must not be empty")
	}
	var w orderWire
	if err := c.getJSON(ctx, "/api/orders/"+url.PathEscape(id)+"/", nil, &w); err != nil {
		return nil, err
	}
	o := orderFromWire(w)
	return &o, nil
}

// UpdateOrderStatus moves an order to a new lifecycle state.
func (c *Client) UpdateOrderStatus(ctx context.Context, id string, status model.OrderStatus) (*model.Order, error) {
	if id == "" {
		return nil, model.NewValidationError("id", "must not be empty")
	}
	if !model.ValidOrderStatus(status) {
		return nil, model.NewValidationError("status", "unknown order status "+string(status))
	}
	var w orderWire
	err := c.sendJSON(ctx, http.MethodPatch, "/api/orders/"+url.PathEscape(id)+"/",
		map[string]string{"status": string(status)}, &w)
	if err != nil {
		return nil, err
	}
	o := orderFromWire(w)
	return &o, nil
}

// CancelOrder is a status update to cancelled.
func (c *Client) CancelOrder(ctx context.Context, id string) (*model.Order, error) {
	return c.UpdateOrderStatus(ctx, id, model.StatusCancelled)
}

// ConfirmOrder asks the backend to confirm a pending order and reduce
// stock. Only admin and seller tokens are accepted.
func (c *Client) ConfirmOrder(ctx context.Context, id string) (*model.ConfirmResult, error) {
	if id == "" {
		return nil, model.NewValidationError("id", "must not be empty")
	}
	var w confirmOrderWire
	err := c.sendJSON(ctx, http.MethodPost, "/api/orders/"+url.PathEscape(id)+"/confirm/", nil, &w)
	if err != nil {
		return nil, err
	}
	res := &model.ConfirmResult{
		Success:      w.Success,
		StockUpdated: w.StockUpdated,
		Message:      w.Message,
	}
	if w.Order != nil {
		o := orderFromWire(*w.Order)
		res.Order = &o
	}
	return res, nil
}
