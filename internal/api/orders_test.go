package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shopfront/internal/model"
)

func TestCreateOrderWirePayload(t *testing.T) {
	var got createOrderWire
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders/", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.Write([]byte(`{
			"id": 17,
			"order_reference": "LEG-BACKEND-1",
			"status": "pending",
			"total": "75.00",
			"item_count": 3
		}`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

	o, err := c.CreateOrder(context.Background(), OrderDraft{
		Reference:     "LEG-LOCAL-1",
		Date:          time.Date(2025, time.September, 5, 14, 30, 0, 0, time.UTC),
		CustomerName:  "Jane Doe",
		CustomerPhone: "+201000000000",
		Items: []OrderLine{
			{ProductID: "p-1", Name: "Classic Tee", Quantity: 2, UnitPrice: 2500, SelectedSize: "M"},
			{ProductID: "p-2", Name: "Cap", Quantity: 1, UnitPrice: 2500},
		},
	})
	require.NoError(t, err)

	assert.Equal(t, "LEG-LOCAL-1", got.OrderReference)
	assert.Equal(t, "2025-09-05T14:30:00Z", got.OrderDate)
	assert.Equal(t, "75.00", got.Total)
	assert.Equal(t, 3, got.ItemCount)
	require.Len(t, got.Items, 2)
	assert.Equal(t, "25.00", got.Items[0].UnitPrice)
	assert.Equal(t, "M", got.Items[0].SelectedSize)

	// The backend's echoed order wins.
	assert.Equal(t, "17", o.ID)
	assert.Equal(t, "LEG-BACKEND-1", o.OrderReference)
	assert.Equal(t, model.StatusPending, o.Status)
	assert.Equal(t, model.Cents(7500), o.Total)
}

func TestOrdersEnvelopeAndBareArray(t *testing.T) {
	envelope := `{"count": 1, "results": [{"id": 1, "order_reference": "LEG-1", "status": "pending", "total": "10.00"}]}`
	bare := `[{"id": 2, "order_reference": "LEG-2", "status": "delivered", "total": "20.00"}]`

	for name, body := range map[string]string{"envelope": envelope, "bare": bare} {
		t.Run(name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				require.Equal(t, "/api/orders/", r.URL.Path)
				w.Write([]byte(body))
			}))
			defer ts.Close()

			c, sess := newTestClient(t, ts)
			require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

			orders, err := c.Orders(context.Background())
			require.NoError(t, err)
			require.Len(t, orders, 1)
		})
	}
}

func TestMyOrdersPath(t *testing.T) {
	var gotPath string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Write([]byte(`{"count": 0, "results": []}`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

	_, err := c.MyOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/api/orders/my-orders/", gotPath)
}

func TestUpdateOrderStatus(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPatch, r.Method)
		require.Equal(t, "/api/orders/17/", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "shipped", body["status"])
		w.Write([]byte(`{"id": 17, "order_reference": "LEG-1", "status": "shipped", "total": "10.00"}`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

	o, err := c.UpdateOrderStatus(context.Background(), "17", model.StatusShipped)
	require.NoError(t, err)
	assert.Equal(t, model.StatusShipped, o.Status)
}

func TestUpdateOrderStatusRejectsUnknown(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	c, _ := newTestClient(t, ts)

	_, err := c.UpdateOrderStatus(context.Background(), "17", model.OrderStatus("teleported"))
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}

func TestCancelOrder(t *testing.T) {
	var gotStatus string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotStatus = body["status"]
		w.Write([]byte(`{"id": 17, "order_reference": "LEG-1", "status": "cancelled", "total": "10.00"}`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

	o, err := c.CancelOrder(context.Background(), "17")
	require.NoError(t, err)
	assert.Equal(t, "cancelled", gotStatus)
	assert.Equal(t, model.StatusCancelled, o.Status)
}

func TestConfirmOrder(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/orders/17/confirm/", r.URL.Path)
		w.Write([]byte(`{
			"success": true,
			"stock_updated": true,
			"message": "Order confirmed",
			"order": {"id": 17, "order_reference": "LEG-1", "status": "confirmed", "total": "10.00"}
		}`))
	}))
	defer ts.Close()

	c, sess := newTestClient(t, ts)
	require.NoError(t, sess.SetTokens("stored-access", "stored-refresh"))

	res, err := c.ConfirmOrder(context.Background(), "17")
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.True(t, res.StockUpdated)
	assert.Equal(t, "Order confirmed", res.Message)
	require.NotNil(t, res.Order)
	assert.Equal(t, model.StatusConfirmed, res.Order.Status)
}

func TestOrderEmptyID(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	defer ts.Close()
	c, _ := newTestClient(t, ts)

	_, err := c.Order(context.Background(), "")
	assert.True(t, errors.Is(err, model.ErrInvalidRequest))
}
