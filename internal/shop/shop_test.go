package shop

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	mnoop "go.opentelemetry.io/otel/metric/noop"
	tnoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"

	"github.com/ecomsim/shopfront/internal/domain/cart"
	"github.com/ecomsim/shopfront/internal/domain/order"
	"github.com/ecomsim/shopfront/internal/domain/product"
	"github.com/ecomsim/shopfront/internal/storage/statefile"
)

// recordingScheduler captures the order ids handed off for payment.
type recordingScheduler struct {
	ids []string
}

func (r *recordingScheduler) SchedulePayment(orderID string) {
	r.ids = append(r.ids, orderID)
}

func newTestStore(t *testing.T) *statefile.Store {
	t.Helper()
	store, err := statefile.Open(t.TempDir())
	require.NoError(t, err)
	return store
}

func newTestShopWithStore(t *testing.T, store *statefile.Store) *Shop {
	t.Helper()
	s, err := New(
		Config{Carrier: "MockPost"},
		store,
		nil,
		zap.NewNop(),
		mnoop.NewMeterProvider().Meter("test"),
		tnoop.NewTracerProvider().Tracer("test"),
	)
	require.NoError(t, err)
	return s
}

func newTestShop(t *testing.T) *Shop {
	t.Helper()
	return newTestShopWithStore(t, newTestStore(t))
}

// --- Catalog & cart ---

func TestNew_SeedsDefaultCatalog(t *testing.T) {
	s := newTestShop(t)

	products := s.Products()
	require.Len(t, products, 4)
	assert.Equal(t, "Wireless Mouse", products[0].Name)
	assert.Empty(t, s.Cart())
}

func TestProduct_NotFound(t *testing.T) {
	s := newTestShop(t)

	_, err := s.Product("nope")
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestAddToCart(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 2))
	require.NoError(t, s.AddToCart(ctx, "p1", 3))

	assert.Equal(t, cart.Cart{"p1": 5}, s.Cart())
}

func TestAddToCart_UnknownProduct(t *testing.T) {
	s := newTestShop(t)

	err := s.AddToCart(context.Background(), "nope", 1)
	require.ErrorIs(t, err, product.ErrNotFound)
	assert.Empty(t, s.Cart())
}

func TestAddToCart_InvalidQuantity(t *testing.T) {
	s := newTestShop(t)

	require.ErrorIs(t, s.AddToCart(context.Background(), "p1", 0), cart.ErrInvalidQuantity)
	require.ErrorIs(t, s.AddToCart(context.Background(), "p1", -2), cart.ErrInvalidQuantity)
	assert.Empty(t, s.Cart())
}

func TestAddToCart_InsufficientStock(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	// p2 has stock 5; the existing cart quantity counts toward the limit.
	require.NoError(t, s.AddToCart(ctx, "p2", 4))
	err := s.AddToCart(ctx, "p2", 2)

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)
	assert.Equal(t, "Mechanical Keyboard", stockErr.Name)
	assert.Equal(t, 6, stockErr.Requested)
	assert.Equal(t, 5, stockErr.Stock)
	assert.Equal(t, cart.Cart{"p2": 4}, s.Cart(), "failed mutation must not change the cart")
}

func TestUpdateCartQuantity_Sets(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 2))
	require.NoError(t, s.UpdateCartQuantity(ctx, "p1", 7))

	assert.Equal(t, cart.Cart{"p1": 7}, s.Cart())
}

func TestUpdateCartQuantity_ZeroRemoves(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 2))
	require.NoError(t, s.UpdateCartQuantity(ctx, "p1", 0))

	assert.Empty(t, s.Cart())
}

func TestUpdateCartQuantity_ExceedsStock(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p2", 1))
	err := s.UpdateCartQuantity(ctx, "p2", 6)

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, cart.Cart{"p2": 1}, s.Cart())
}

func TestUpdateCartQuantity_UnknownProduct(t *testing.T) {
	s := newTestShop(t)

	err := s.UpdateCartQuantity(context.Background(), "nope", 3)
	require.ErrorIs(t, err, product.ErrNotFound)
}

func TestRemoveFromCart_AbsentIsNoError(t *testing.T) {
	s := newTestShop(t)

	require.NoError(t, s.RemoveFromCart(context.Background(), "p1"))
}

func TestCartTotal(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	assert.EqualValues(t, 0, s.CartTotal())

	require.NoError(t, s.AddToCart(ctx, "p1", 2)) // 2 x 499
	require.NoError(t, s.AddToCart(ctx, "p3", 3)) // 3 x 199

	assert.EqualValues(t, 2*499+3*199, s.CartTotal())
}

func TestCartInvariant_NeverExceedsStock(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	// Mixed mutation sequence, some failing.
	_ = s.AddToCart(ctx, "p1", 8)
	_ = s.AddToCart(ctx, "p1", 8)
	_ = s.UpdateCartQuantity(ctx, "p2", 9)
	_ = s.AddToCart(ctx, "p2", 5)
	_ = s.UpdateCartQuantity(ctx, "p1", -1)
	_ = s.AddToCart(ctx, "p3", 20)

	for id, qty := range s.Cart() {
		p, err := s.Product(id)
		require.NoError(t, err)
		assert.LessOrEqual(t, qty, p.Stock, "cart[%s] exceeds stock", id)
	}
}

// --- Checkout ---

func TestPlaceOrder(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	sched := &recordingScheduler{}
	s.AttachPayments(sched)

	require.NoError(t, s.AddToCart(ctx, "p1", 2))

	id, err := s.PlaceOrder(ctx, "Alice", "1 Main St")
	require.NoError(t, err)
	require.NotEmpty(t, id)

	o, err := s.Order(id)
	require.NoError(t, err)
	assert.Equal(t, "Alice", o.CustomerName)
	assert.Equal(t, "1 Main St", o.CustomerAddress)
	assert.EqualValues(t, 998, o.Amount)
	assert.Equal(t, order.StatusPlaced, o.Status)
	assert.Equal(t, []order.Item{{ProductID: "p1", Qty: 2}}, o.Items)
	assert.Nil(t, o.Shipment)
	assert.False(t, o.CreatedAt.IsZero())

	p, err := s.Product("p1")
	require.NoError(t, err)
	assert.Equal(t, 8, p.Stock)

	assert.Empty(t, s.Cart())
	assert.Equal(t, []string{id}, sched.ids)
}

func TestPlaceOrder_EmptyName(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	require.NoError(t, s.AddToCart(ctx, "p1", 2))

	_, err := s.PlaceOrder(ctx, "   ", "addr")
	require.ErrorIs(t, err, order.ErrEmptyCustomerName)

	p, _ := s.Product("p1")
	assert.Equal(t, 10, p.Stock)
	assert.Equal(t, cart.Cart{"p1": 2}, s.Cart())
	assert.Empty(t, s.Orders())
}

func TestPlaceOrder_EmptyCart(t *testing.T) {
	s := newTestShop(t)

	_, err := s.PlaceOrder(context.Background(), "Alice", "addr")
	require.ErrorIs(t, err, order.ErrEmptyCart)
}

func TestPlaceOrder_InsufficientStockAtCommit(t *testing.T) {
	store := newTestStore(t)
	// A persisted cart can exceed stock if stock dropped since it was
	// written; the commit-time recheck must catch it.
	require.NoError(t, store.SaveCart(cart.Cart{"p1": 2, "p2": 99}))
	s := newTestShopWithStore(t, store)

	_, err := s.PlaceOrder(context.Background(), "Alice", "addr")

	var stockErr *product.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "p2", stockErr.ProductID)
	assert.Equal(t, "Mechanical Keyboard", stockErr.Name)

	// All-or-nothing: p1 untouched even though it was checked first.
	p1, _ := s.Product("p1")
	p2, _ := s.Product("p2")
	assert.Equal(t, 10, p1.Stock)
	assert.Equal(t, 5, p2.Stock)
	assert.Equal(t, cart.Cart{"p1": 2, "p2": 99}, s.Cart())
	assert.Empty(t, s.Orders())
}

func TestPlaceOrder_Persists(t *testing.T) {
	store := newTestStore(t)
	s := newTestShopWithStore(t, store)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 2))
	id, err := s.PlaceOrder(ctx, "Alice", "addr")
	require.NoError(t, err)

	// A fresh shop over the same directory sees the committed state.
	reopened := newTestShopWithStore(t, store)
	o, err := reopened.Order(id)
	require.NoError(t, err)
	assert.EqualValues(t, 998, o.Amount)

	p, _ := reopened.Product("p1")
	assert.Equal(t, 8, p.Stock)
	assert.Empty(t, reopened.Cart())
}

func TestOrders_NewestFirst(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	require.NoError(t, s.AddToCart(ctx, "p1", 1))
	first, err := s.PlaceOrder(ctx, "Alice", "addr")
	require.NoError(t, err)

	require.NoError(t, s.AddToCart(ctx, "p1", 1))
	second, err := s.PlaceOrder(ctx, "Bob", "addr")
	require.NoError(t, err)

	orders := s.Orders()
	require.Len(t, orders, 2)
	ids := []string{orders[0].ID, orders[1].ID}
	assert.Contains(t, ids, first)
	assert.Contains(t, ids, second)
	assert.False(t, orders[0].CreatedAt.Before(orders[1].CreatedAt))
}

// --- Payment & shipment lifecycle ---

func placeTestOrder(t *testing.T, s *Shop) string {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, s.AddToCart(ctx, "p1", 1))
	id, err := s.PlaceOrder(ctx, "Alice", "addr")
	require.NoError(t, err)
	return id
}

func TestConfirmPayment(t *testing.T) {
	s := newTestShop(t)
	id := placeTestOrder(t, s)

	require.NoError(t, s.ConfirmPayment(context.Background(), id))

	o, err := s.Order(id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusPaid, o.Status)
	require.NotNil(t, o.Shipment)
	assert.Equal(t, "MockPost", o.Shipment.Carrier)
	assert.Equal(t, order.TrackingID(id), o.Shipment.TrackingID)
	assert.Equal(t, 0, o.Shipment.CurrentStageIndex)
}

func TestConfirmPayment_Twice(t *testing.T) {
	s := newTestShop(t)
	id := placeTestOrder(t, s)

	require.NoError(t, s.ConfirmPayment(context.Background(), id))
	err := s.ConfirmPayment(context.Background(), id)
	require.ErrorIs(t, err, order.ErrInvalidTransition)
}

func TestConfirmPayment_UnknownOrder(t *testing.T) {
	s := newTestShop(t)

	err := s.ConfirmPayment(context.Background(), "ORD-404")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestAdvanceShipment_FullProgression(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()
	id := placeTestOrder(t, s)
	require.NoError(t, s.ConfirmPayment(ctx, id))

	wantStatus := []order.Status{order.StatusShipped, order.StatusShipped, order.StatusDelivered}
	wantMore := []bool{true, true, false}
	for i := range wantStatus {
		more, err := s.AdvanceShipment(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, wantMore[i], more, "step %d", i)

		o, err := s.Order(id)
		require.NoError(t, err)
		assert.Equal(t, wantStatus[i], o.Status, "step %d", i)
		assert.Equal(t, i+1, o.Shipment.CurrentStageIndex, "step %d", i)
	}

	// Past the final stage: no-op.
	more, err := s.AdvanceShipment(ctx, id)
	require.NoError(t, err)
	assert.False(t, more)

	o, _ := s.Order(id)
	assert.Equal(t, order.StatusDelivered, o.Status)
	assert.Equal(t, len(o.Shipment.Stages)-1, o.Shipment.CurrentStageIndex)
}

func TestAdvanceShipment_NoShipment(t *testing.T) {
	s := newTestShop(t)
	id := placeTestOrder(t, s)

	_, err := s.AdvanceShipment(context.Background(), id)
	require.ErrorIs(t, err, order.ErrNoShipment)
}

func TestAdvanceShipment_UnknownOrder(t *testing.T) {
	s := newTestShop(t)

	_, err := s.AdvanceShipment(context.Background(), "ORD-404")
	require.ErrorIs(t, err, order.ErrNotFound)
}

func TestPendingShipments(t *testing.T) {
	s := newTestShop(t)
	ctx := context.Background()

	placed := placeTestOrder(t, s)
	assert.Empty(t, s.PendingShipments(), "PLACED order has no shipment yet")

	require.NoError(t, s.ConfirmPayment(ctx, placed))
	assert.Equal(t, []string{placed}, s.PendingShipments())

	for {
		more, err := s.AdvanceShipment(ctx, placed)
		require.NoError(t, err)
		if !more {
			break
		}
	}
	assert.Empty(t, s.PendingShipments(), "delivered shipment is not pending")
}

func TestPendingShipments_SurvivesRestart(t *testing.T) {
	store := newTestStore(t)
	s := newTestShopWithStore(t, store)
	ctx := context.Background()

	id := placeTestOrder(t, s)
	require.NoError(t, s.ConfirmPayment(ctx, id))
	_, err := s.AdvanceShipment(ctx, id)
	require.NoError(t, err)

	reopened := newTestShopWithStore(t, store)
	assert.Equal(t, []string{id}, reopened.PendingShipments())

	o, err := reopened.Order(id)
	require.NoError(t, err)
	assert.Equal(t, order.StatusShipped, o.Status)
	assert.Equal(t, 1, o.Shipment.CurrentStageIndex)
}
