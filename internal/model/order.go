package model

import "time"

// OrderStatus enumerates the backend order lifecycle states.
type OrderStatus string

const (
	StatusPending    OrderStatus = "pending"
	StatusConfirmed  OrderStatus = "confirmed"
	StatusProcessing OrderStatus = "processing"
	StatusShipped    OrderStatus = "shipped"
	StatusDelivered  OrderStatus = "delivered"
	StatusCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known lifecycle state.
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusProcessing,
		StatusShipped, StatusDelivered, StatusCancelled:
		return true
	}
	return false
}

// OrderItem is one line of a persisted order as echoed by the backend.
type OrderItem struct {
	ID             string `json:"id"`
	Product        string `json:"product"`
	ProductName    string `json:"productName"`
	ProductBarcode string `json:"productBarcode,omitempty"`
	ProductImage   string `json:"productImage,omitempty"`
	Quantity       int    `json:"quantity"`
	UnitPrice      Cents  `json:"unitPrice"`
	SelectedSize   string `json:"selectedSize,omitempty"`
	SelectedColor  string `json:"selectedColor,omitempty"`
	Subtotal       Cents  `json:"subtotal"`
}

// Order is the client-side view of a persisted order. The client never
// computes order totals authoritatively; Total and ItemCount are echoed
// from the backend.
type Order struct {
	ID              string      `json:"id"`
	OrderReference  string      `json:"orderReference"`
	OrderDate       time.Time   `json:"orderDate"`
	CustomerName    string      `json:"customerName"`
	CustomerPhone   string      `json:"customerPhone"`
	CustomerAddress string      `json:"customerAddress,omitempty"`
	User            string      `json:"user,omitempty"`
	Status          OrderStatus `json:"status"`
	Items           []OrderItem `json:"items,omitempty"`
	Total           Cents       `json:"total"`
	ItemCount       int         `json:"itemCount"`
	CreatedAt       time.Time   `json:"createdAt"`
	UpdatedAt       time.Time   `json:"updatedAt"`
}

// ConfirmResult is the response of the order confirmation endpoint.
// StockUpdated reports whether the backend reduced inventory.
type ConfirmResult struct {
	Success      bool   `json:"success"`
	Order        *Order `json:"order,omitempty"`
	StockUpdated bool   `json:"stockUpdated"`
	Message      string `json:"message,omitempty"`
}
