package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/api"
	"shopfront/internal/cart"
	"shopfront/internal/model"
	"shopfront/internal/storage"
)

type fakeOrders struct {
	draft api.OrderDraft
	order *model.Order
	err   error
	calls int
}

func (f *fakeOrders) CreateOrder(ctx context.Context, draft api.OrderDraft) (*model.Order, error) {
	f.calls++
	f.draft = draft
	return f.order, f.err
}

func newTestService(t *testing.T, orders *fakeOrders) (*Service, *cart.Store) {
	t.Helper()
	c := cart.New(storage.NewMemStore())
	require.NoError(t, c.Add(cart.LineItem{ProductID: "p1", Name: "Classic Tee", UnitPrice: 2500, SelectedSize: "M"}))
	require.NoError(t, c.Add(cart.LineItem{ProductID: "p1", Name: "Classic Tee", UnitPrice: 2500, SelectedSize: "M"}))

	s := NewService(ServiceConfig{
		Orders:     orders,
		Cart:       c,
		StoreName:  "LEGO Mens Wear",
		RefPrefix:  "LEG",
		StorePhone: "+201550881556",
	})
	s.now = func() time.Time { return time.Date(2025, time.September, 5, 14, 30, 0, 0, time.UTC) }
	s.newRef = func(prefix string, _ time.Time) string { return prefix + "-LOCAL-AAAA" }
	return s, c
}

func TestCheckoutSuccess(t *testing.T) {
	orders := &fakeOrders{order: &model.Order{ID: "9", OrderReference: "LEG-BACKEND-ZZZZ"}}
	s, c := newTestService(t, orders)

	res, err := s.Checkout(context.Background(), Form{
		CustomerName:  "Jane Doe",
		CustomerPhone: "+201000000000",
	})
	require.NoError(t, err)

	assert.True(t, res.Persisted)
	assert.Empty(t, res.Warning)
	// Backend reference supersedes the local one everywhere.
	assert.Equal(t, "LEG-BACKEND-ZZZZ", res.Reference)
	assert.Contains(t, res.Message, "*Order Ref:* LEG-BACKEND-ZZZZ")
	assert.NotContains(t, res.Message, "LEG-LOCAL-AAAA")
	assert.Contains(t, res.Link, "https://wa.me/201550881556?text=")

	// Cart cleared only after the backend accepted the order.
	assert.Equal(t, 0, c.Len())
	assert.Equal(t, 1, orders.calls)
	assert.Equal(t, "LEG-LOCAL-AAAA", orders.draft.Reference)
}

func TestCheckoutPersistFailureStillHandsOff(t *testing.T) {
	orders := &fakeOrders{err: model.FromResponse(502, nil, nil)}
	s, c := newTestService(t, orders)

	res, err := s.Checkout(context.Background(), Form{
		CustomerName:  "Jane Doe",
		CustomerPhone: "+201000000000",
	})
	require.NoError(t, err)

	assert.False(t, res.Persisted)
	assert.Equal(t, persistFailedMessage, res.Warning)
	assert.Equal(t, "LEG-LOCAL-AAAA", res.Reference)
	assert.Contains(t, res.Message, "*Order Ref:* LEG-LOCAL-AAAA")
	assert.NotEmpty(t, res.Link)

	// The customer can retry; the cart must survive.
	assert.Equal(t, 1, c.Len())
}

func TestCheckoutValidatesForm(t *testing.T) {
	s, _ := newTestService(t, &fakeOrders{})

	_, err := s.Checkout(context.Background(), Form{CustomerPhone: "+20100"})
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))

	_, err = s.Checkout(context.Background(), Form{CustomerName: "Jane"})
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}

func TestCheckoutEmptyCart(t *testing.T) {
	orders := &fakeOrders{}
	c := cart.New(storage.NewMemStore())
	s := NewService(ServiceConfig{
		Orders: orders, Cart: c,
		StoreName: "LEGO Mens Wear", RefPrefix: "LEG", StorePhone: "+201550881556",
	})

	_, err := s.Checkout(context.Background(), Form{CustomerName: "Jane", CustomerPhone: "+20100"})
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
	assert.Equal(t, 0, orders.calls)
}

func TestCheckoutDraftCarriesCartSnapshot(t *testing.T) {
	orders := &fakeOrders{order: &model.Order{OrderReference: "LEG-B-1"}}
	s, _ := newTestService(t, orders)

	_, err := s.Checkout(context.Background(), Form{
		CustomerName:    "Jane Doe",
		CustomerPhone:   "+201000000000",
		CustomerAddress: "12 Nile St",
	})
	require.NoError(t, err)

	require.Len(t, orders.draft.Items, 1)
	assert.Equal(t, 2, orders.draft.Items[0].Quantity)
	assert.Equal(t, model.Cents(2500), orders.draft.Items[0].UnitPrice)
	assert.Equal(t, "12 Nile St", orders.draft.CustomerAddress)
	assert.Equal(t, s.now(), orders.draft.Date)
}

func TestConfirmationMessage(t *testing.T) {
	s, _ := newTestService(t, &fakeOrders{})
	o := &model.Order{
		OrderReference: "LEG-B-1",
		CustomerName:   "Jane Doe",
		CustomerPhone:  "+20 100 000 0000",
		Status:         model.StatusConfirmed,
		Total:          5000,
	}

	message, link := s.ConfirmationMessage(o, "https://shop.example.com")
	assert.Contains(t, message, "ORDER CONFIRMATION")
	assert.Contains(t, link, "https://wa.me/201000000000?text=")
}
