// Package cart maintains the authoritative local shopping cart: an
// ordered collection of line items keyed by (product, size), persisted
// write-through to the key-value store and reloaded on process start.
package cart

import (
	"encoding/json"
	"fmt"
	"sync"

	"shopfront/internal/model"
	"shopfront/internal/storage"
)

// schemaVersion tags the persisted envelope so the layout can evolve
// without silently dropping carts written by older builds.
const schemaVersion = 1

// LineItem is one distinct purchasable configuration in the cart.
// Two items with the same product but different sizes are distinct
// lines. Quantity is always >= 1; a line that would reach 0 is removed.
type LineItem struct {
	ProductID     string      `json:"productId"`
	Name          string      `json:"name"`
	Barcode       string      `json:"barcode,omitempty"`
	UnitPrice     model.Cents `json:"unitPrice"`
	Quantity      int         `json:"quantity"`
	SelectedSize  string      `json:"selectedSize,omitempty"`
	SelectedColor string      `json:"selectedColor,omitempty"`
	Image         string      `json:"image,omitempty"`
	Category      string      `json:"category,omitempty"`
	ShareURL      string      `json:"shareUrl,omitempty"`
}

// Subtotal is the line's price contribution, recomputed on demand.
func (li LineItem) Subtotal() model.Cents {
	return li.UnitPrice * model.Cents(li.Quantity)
}

// LineFromProduct snapshots a product into a line item at its current
// effective price. The snapshot is frozen: later catalog changes do
// not touch lines already in the cart.
func LineFromProduct(p *model.Product, size, color string) LineItem {
	return LineItem{
		ProductID:     p.ID,
		Name:          p.Name,
		Barcode:       p.Barcode,
		UnitPrice:     p.EffectivePrice(),
		SelectedSize:  size,
		SelectedColor: color,
		Image:         p.PrimaryImage,
		Category:      string(p.Category),
		ShareURL:      p.ShareURL,
	}
}

type envelope struct {
	Version int        `json:"version"`
	Items   []LineItem `json:"items"`
}

// Store is the cart aggregation store. Mutations are serialized by the
// mutex so call order is the externally observable order; every
// mutation persists the full cart before returning.
//
// Known limitation: two processes sharing one state directory race on
// read-modify-write of the persisted key (last writer wins), matching
// the multi-tab behavior of the browser storefront.
type Store struct {
	mu    sync.Mutex
	kv    storage.KV
	items []LineItem
}

// New hydrates a cart from the key-value store, starting empty when
// nothing is persisted or the envelope is from an unknown schema.
func New(kv storage.KV) *Store {
	s := &Store{kv: kv}
	b, err := kv.Get(storage.KeyCart)
	if err != nil {
		return s
	}
	var env envelope
	if err := json.Unmarshal(b, &env); err != nil || env.Version != schemaVersion {
		return s
	}
	s.items = env.Items
	return s
}

// persist must be called with the mutex held.
func (s *Store) persist() error {
	b, err := json.Marshal(envelope{Version: schemaVersion, Items: s.items})
	if err != nil {
		return err
	}
	if err := s.kv.Set(storage.KeyCart, b); err != nil {
		return fmt.Errorf("persisting cart: %w", err)
	}
	return nil
}

// find must be called with the mutex held. An absent size matches only
// an absent size, never any size.
func (s *Store) find(productID, size string) int {
	for i, it := range s.items {
		if it.ProductID == productID && it.SelectedSize == size {
			return i
		}
	}
	return -1
}

// Add inserts item with quantity 1, or increments the quantity of the
// existing line with the same (product, size) key. A repeat Add does
// not refresh price, name, or any other field of the existing line.
func (s *Store) Add(item LineItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if i := s.find(item.ProductID, item.SelectedSize); i >= 0 {
		s.items[i].Quantity++
		return s.persist()
	}
	item.Quantity = 1
	s.items = append(s.items, item)
	return s.persist()
}

// Remove deletes the line matching both keys exactly. Removing an
// absent line is a no-op.
func (s *Store) Remove(productID, size string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(productID, size)
	if i < 0 {
		return nil
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	return s.persist()
}

// UpdateQuantity sets the line's quantity exactly. A quantity <= 0
// removes the line. Updating an absent line is a no-op.
func (s *Store) UpdateQuantity(productID string, quantity int, size string) error {
	if quantity <= 0 {
		return s.Remove(productID, size)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.find(productID, size)
	if i < 0 {
		return nil
	}
	s.items[i].Quantity = quantity
	return s.persist()
}

// Clear empties the cart.
func (s *Store) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	return s.persist()
}

// Items returns a copy of the lines in insertion order.
func (s *Store) Items() []LineItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

// Total is the sum of unit price times quantity over all lines,
// computed fresh on every call.
func (s *Store) Total() model.Cents {
	s.mu.Lock()
	defer s.mu.Unlock()
	var total model.Cents
	for _, it := range s.items {
		total += it.Subtotal()
	}
	return total
}

// ItemCount is the sum of quantities over all lines.
func (s *Store) ItemCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, it := range s.items {
		n += it.Quantity
	}
	return n
}

// Len returns the number of distinct lines.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
