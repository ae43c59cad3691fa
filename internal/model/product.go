// Package model holds the domain types shared across the storefront
// client: products, orders, users, money, and the error taxonomy.
// Domain types use camelCase JSON tags; snake_case wire shapes live in
// the api package and are converted by per-entity transform functions.
package model

import "time"

// Category enumerates the storefront's top-level product categories.
type Category string

const (
	CategoryMen         Category = "Men"
	CategoryWomen       Category = "Women"
	CategoryKids        Category = "Kids"
	CategoryAccessories Category = "Accessories"
	CategoryShoes       Category = "Shoes"
)

// Product is the client-side view of a catalog product.
type Product struct {
	ID              string         `json:"id"`
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	Barcode         string         `json:"barcode"`
	Category        Category       `json:"category"`
	Subcategory     string         `json:"subcategory,omitempty"`
	Brand           string         `json:"brand,omitempty"`
	Price           Cents          `json:"price"`
	DiscountedPrice Cents          `json:"discountedPrice,omitempty"`
	Quantity        int            `json:"quantity"`
	InStock         bool           `json:"inStock"`
	Sizes           []string       `json:"sizes"`
	Colors          []string       `json:"colors"`
	MinQuantity     int            `json:"minQuantity,omitempty"`
	SizeQuantities  map[string]int `json:"sizeQuantities,omitempty"`
	Rating          float64        `json:"rating"`
	ReviewCount     int            `json:"reviewCount"`
	ImagePaths      []string       `json:"imagePaths"`
	PrimaryImage    string         `json:"primaryImage,omitempty"`
	ShareURL        string         `json:"shareUrl,omitempty"`
	CreatedAt       time.Time      `json:"createdAt"`
	UpdatedAt       time.Time      `json:"updatedAt"`
}

// EffectivePrice returns the discounted price when one is set,
// otherwise the list price. This is the price the cart charges.
func (p *Product) EffectivePrice() Cents {
	if p.DiscountedPrice > 0 {
		return p.DiscountedPrice
	}
	return p.Price
}
