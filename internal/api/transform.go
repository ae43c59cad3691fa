package api

import (
	"time"

	"shopfront/internal/model"
)

// parseWireTime accepts the timestamp layouts the backend emits.
// Unparseable or empty values produce the zero time.
func parseWireTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func productFromWire(w productWire) model.Product {
	primary := w.PrimaryImage
	if primary == "" && len(w.ImagePaths) > 0 {
		primary = w.ImagePaths[0]
	}
	return model.Product{
		ID:              w.ID.String(),
		Name:            w.Name,
		Description:     w.Description,
		Barcode:         w.Barcode,
		Category:        model.Category(w.Category),
		Subcategory:     w.Subcategory,
		Brand:           w.Brand,
		Price:           model.CentsFromFloat(w.Price),
		DiscountedPrice: model.CentsFromFloat(w.DiscountedPrice),
		Quantity:        w.Quantity,
		InStock:         w.InStock,
		Sizes:           w.Sizes,
		Colors:          w.Colors,
		MinQuantity:     w.MinQuantity,
		SizeQuantities:  w.SizeQuantities,
		Rating:          w.Rating,
		ReviewCount:     w.ReviewCount,
		ImagePaths:      w.ImagePaths,
		PrimaryImage:    primary,
		ShareURL:        w.ShareURL,
		CreatedAt:       parseWireTime(w.CreatedAt),
		UpdatedAt:       parseWireTime(w.UpdatedAt),
	}
}

func productsFromWire(ws []productWire) []model.Product {
	out := make([]model.Product, len(ws))
	for i, w := range ws {
		out[i] = productFromWire(w)
	}
	return out
}

func orderItemFromWire(w orderItemWire) model.OrderItem {
	unit := model.ParseCents(w.UnitPrice)
	sub := model.ParseCents(w.Subtotal)
	if sub == 0 {
		sub = unit * model.Cents(w.Quantity)
	}
	return model.OrderItem{
		ID:             w.ID.String(),
		Product:        w.Product.String(),
		ProductName:    w.ProductName,
		ProductBarcode: w.ProductBarcode,
		ProductImage:   w.ProductImage,
		Quantity:       w.Quantity,
		UnitPrice:      unit,
		SelectedSize:   w.SelectedSize,
		SelectedColor:  w.SelectedColor,
		Subtotal:       sub,
	}
}

func orderFromWire(w orderWire) model.Order {
	items := make([]model.OrderItem, len(w.Items))
	for i, it := range w.Items {
		items[i] = orderItemFromWire(it)
	}
	return model.Order{
		ID:              w.ID.String(),
		OrderReference:  w.OrderReference,
		OrderDate:       parseWireTime(w.OrderDate),
		CustomerName:    w.CustomerName,
		CustomerPhone:   w.CustomerPhone,
		CustomerAddress: w.CustomerAddress,
		User:            w.User.String(),
		Status:          model.OrderStatus(w.Status),
		Items:           items,
		Total:           model.ParseCents(w.Total),
		ItemCount:       w.ItemCount,
		CreatedAt:       parseWireTime(w.CreatedAt),
		UpdatedAt:       parseWireTime(w.UpdatedAt),
	}
}

func ordersFromWire(ws []orderWire) []model.Order {
	out := make([]model.Order, len(ws))
	for i, w := range ws {
		out[i] = orderFromWire(w)
	}
	return out
}

func userFromWire(w *userWire) *model.User {
	if w == nil {
		return nil
	}
	return &model.User{
		ID:        w.ID.String(),
		Username:  w.Username,
		Email:     w.Email,
		Role:      model.Role(w.Role),
		ShopName:  w.ShopName,
		ShopDesc:  w.ShopDesc,
		FirstName: w.FirstName,
		LastName:  w.LastName,
	}
}
