// Package shop implements the storefront core: the product catalog, the
// shopping cart, and the order lifecycle. All state lives in memory,
// mirrors the persistent store, and is written back on every mutation;
// the store is the source of truth across restarts.
package shop

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/ecomsim/shopfront/internal/domain/cart"
	"github.com/ecomsim/shopfront/internal/domain/order"
	"github.com/ecomsim/shopfront/internal/domain/product"
	"github.com/ecomsim/shopfront/internal/journal"
	"github.com/ecomsim/shopfront/internal/storage/statefile"
	"github.com/ecomsim/shopfront/pkg/money"
)

// PaymentScheduler starts asynchronous payment processing for a newly
// placed order.
type PaymentScheduler interface {
	SchedulePayment(orderID string)
}

// Config holds shop-level settings.
type Config struct {
	// Carrier is stamped on every new shipment.
	Carrier string
}

// Shop owns the in-memory registries and serializes every mutation under
// one lock, so each operation is atomic with respect to concurrently
// firing simulation timers.
type Shop struct {
	cfg Config

	mu       sync.Mutex
	products []product.Product
	orders   map[string]*order.Order
	cart     cart.Cart

	store    *statefile.Store
	journal  *journal.Journal
	payments PaymentScheduler

	lg      *zap.Logger
	metrics metrics
	tracer  trace.Tracer
}

// New rehydrates the registries from the store and returns a ready Shop.
// The journal may be nil.
func New(cfg Config, store *statefile.Store, jrnl *journal.Journal, lg *zap.Logger, meter metric.Meter, tracer trace.Tracer) (*Shop, error) {
	products, err := store.LoadProducts()
	if err != nil {
		return nil, errors.Wrap(err, "load products")
	}
	orders, err := store.LoadOrders()
	if err != nil {
		return nil, errors.Wrap(err, "load orders")
	}
	c, err := store.LoadCart()
	if err != nil {
		return nil, errors.Wrap(err, "load cart")
	}
	m, err := newMetrics(meter)
	if err != nil {
		return nil, errors.Wrap(err, "init metrics")
	}
	return &Shop{
		cfg:      cfg,
		products: products,
		orders:   orders,
		cart:     c,
		store:    store,
		journal:  jrnl,
		lg:       lg,
		metrics:  m,
		tracer:   tracer,
	}, nil
}

// AttachPayments wires the payment scheduler invoked after each
// successful checkout. Without one, orders stay PLACED.
func (s *Shop) AttachPayments(p PaymentScheduler) {
	s.payments = p
}

// Products returns a copy of the catalog.
func (s *Shop) Products() []product.Product {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]product.Product(nil), s.products...)
}

// Product returns the catalog entry with the given id.
func (s *Shop) Product(id string) (product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findProduct(id)
	if p == nil {
		return product.Product{}, product.ErrNotFound
	}
	return *p, nil
}

// Cart returns a copy of the current cart.
func (s *Shop) Cart() cart.Cart {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cart.Clone()
}

// AddToCart increments the cart quantity for a product, bounded by the
// product's current stock.
func (s *Shop) AddToCart(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return cart.ErrInvalidQuantity
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(productID)
	if p == nil {
		return product.ErrNotFound
	}
	want := s.cart[productID] + qty
	if want > p.Stock {
		return &product.InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: want, Stock: p.Stock}
	}
	s.cart[productID] = want
	if err := s.store.SaveCart(s.cart); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	s.lg.Debug("cart item added",
		zap.String("product_id", productID),
		zap.Int("qty", want))
	return nil
}

// UpdateCartQuantity sets (not increments) the cart quantity for a
// product. A non-positive quantity removes the entry.
func (s *Shop) UpdateCartQuantity(ctx context.Context, productID string, qty int) error {
	if qty <= 0 {
		return s.RemoveFromCart(ctx, productID)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.findProduct(productID)
	if p == nil {
		return product.ErrNotFound
	}
	if qty > p.Stock {
		return &product.InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: qty, Stock: p.Stock}
	}
	s.cart[productID] = qty
	if err := s.store.SaveCart(s.cart); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

// RemoveFromCart removes the entry for a product. Removing an absent
// entry is not an error.
func (s *Shop) RemoveFromCart(ctx context.Context, productID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.cart, productID)
	if err := s.store.SaveCart(s.cart); err != nil {
		return errors.Wrap(err, "persist cart")
	}
	return nil
}

// CartTotal returns the sum of price times quantity over all cart
// entries. Pure read, no side effects.
func (s *Shop) CartTotal() money.Amount {
	s.mu.Lock()
	defer s.mu.Unlock()

	var total money.Amount
	for id, qty := range s.cart {
		if p := s.findProduct(id); p != nil {
			total += p.Price.Mul(qty)
		}
	}
	return total
}

// PlaceOrder validates the checkout, commits it atomically (stock
// deduction, order creation, cart clearing), and hands the new order to
// the payment scheduler. Validation failures leave all state untouched.
func (s *Shop) PlaceOrder(ctx context.Context, customerName, customerAddress string) (string, error) {
	ctx, span := s.tracer.Start(ctx, "shop.PlaceOrder")
	defer span.End()

	customerName = strings.TrimSpace(customerName)
	if customerName == "" {
		return "", order.ErrEmptyCustomerName
	}

	s.mu.Lock()
	o, err := s.commitOrder(customerName, strings.TrimSpace(customerAddress))
	s.mu.Unlock()
	if err != nil {
		return "", err
	}

	s.metrics.ordersPlaced.Add(ctx, 1)
	s.journalEvent(journal.Entry{Type: journal.TypeOrderPlaced, OrderID: o.ID, Status: string(o.Status)})
	s.lg.Info("order placed",
		zap.String("order_id", o.ID),
		zap.String("customer", o.CustomerName),
		zap.String("amount", o.Amount.String()))

	if s.payments != nil {
		s.payments.SchedulePayment(o.ID)
	}
	return o.ID, nil
}

// commitOrder performs the all-or-nothing checkout under the lock: every
// cart entry is checked against current stock before any deduction.
func (s *Shop) commitOrder(customerName, customerAddress string) (*order.Order, error) {
	if len(s.cart) == 0 {
		return nil, order.ErrEmptyCart
	}

	ids := s.cart.ProductIDs()
	for _, id := range ids {
		p := s.findProduct(id)
		if p == nil {
			return nil, errors.Wrapf(product.ErrNotFound, "product %s", id)
		}
		if qty := s.cart[id]; qty > p.Stock {
			return nil, &product.InsufficientStockError{ProductID: p.ID, Name: p.Name, Requested: qty, Stock: p.Stock}
		}
	}

	var amount money.Amount
	items := make([]order.Item, 0, len(ids))
	for _, id := range ids {
		p := s.findProduct(id)
		qty := s.cart[id]
		p.Stock -= qty
		amount += p.Price.Mul(qty)
		items = append(items, order.Item{ProductID: id, Qty: qty})
	}
	if err := s.store.SaveProducts(s.products); err != nil {
		return nil, errors.Wrap(err, "persist products")
	}

	id := order.NewID()
	for s.orders[id] != nil {
		id = order.NewID()
	}
	o := &order.Order{
		ID:              id,
		CustomerName:    customerName,
		CustomerAddress: customerAddress,
		Items:           items,
		Amount:          amount,
		Status:          order.StatusPlaced,
		CreatedAt:       time.Now().UTC(),
	}
	s.orders[id] = o
	if err := s.store.SaveOrders(s.orders); err != nil {
		return nil, errors.Wrap(err, "persist orders")
	}

	s.cart = make(cart.Cart)
	if err := s.store.SaveCart(s.cart); err != nil {
		return nil, errors.Wrap(err, "persist cart")
	}
	return o, nil
}

// ConfirmPayment transitions an order from PLACED to PAID and attaches
// its shipment at stage zero.
func (s *Shop) ConfirmPayment(ctx context.Context, orderID string) error {
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return order.ErrNotFound
	}
	if err := o.Transition(order.StatusPaid); err != nil {
		s.mu.Unlock()
		return err
	}
	o.Shipment = order.NewShipment(s.cfg.Carrier, orderID)
	if err := s.store.SaveOrders(s.orders); err != nil {
		s.mu.Unlock()
		return errors.Wrap(err, "persist orders")
	}
	tracking := o.Shipment.TrackingID
	s.mu.Unlock()

	s.metrics.paymentsConfirmed.Add(ctx, 1)
	s.journalEvent(journal.Entry{Type: journal.TypePaymentConfirmed, OrderID: orderID, Status: string(order.StatusPaid)})
	s.lg.Info("payment confirmed",
		zap.String("order_id", orderID),
		zap.String("tracking_id", tracking))
	return nil
}

// AdvanceShipment moves an order's shipment forward by exactly one stage
// and persists the result. It reports whether further advancement
// remains. Advancing a delivered shipment is a no-op.
func (s *Shop) AdvanceShipment(ctx context.Context, orderID string) (bool, error) {
	s.mu.Lock()
	o, ok := s.orders[orderID]
	if !ok {
		s.mu.Unlock()
		return false, order.ErrNotFound
	}
	sh := o.Shipment
	if sh == nil {
		s.mu.Unlock()
		return false, order.ErrNoShipment
	}
	if sh.Delivered() {
		s.mu.Unlock()
		return false, nil
	}

	sh.CurrentStageIndex++
	target := order.StatusShipped
	if sh.Delivered() {
		target = order.StatusDelivered
	}
	if err := o.Transition(target); err != nil {
		sh.CurrentStageIndex--
		s.mu.Unlock()
		return false, err
	}
	if err := s.store.SaveOrders(s.orders); err != nil {
		s.mu.Unlock()
		return false, errors.Wrap(err, "persist orders")
	}
	stage := sh.Stage()
	more := !sh.Delivered()
	s.mu.Unlock()

	s.metrics.stagesAdvanced.Add(ctx, 1)
	s.journalEvent(journal.Entry{Type: journal.TypeStageAdvanced, OrderID: orderID, Status: string(target), Stage: stage})
	s.lg.Debug("shipment advanced",
		zap.String("order_id", orderID),
		zap.String("stage", stage),
		zap.String("status", string(target)))
	return more, nil
}

// PendingShipments returns the ids of orders whose shipment exists but
// has not reached its final stage, in stable order.
func (s *Shop) PendingShipments() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, o := range s.orders {
		if o.Shipment != nil && !o.Shipment.Delivered() {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Order returns a copy of the order with the given id.
func (s *Shop) Order(id string) (order.Order, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	o, ok := s.orders[id]
	if !ok {
		return order.Order{}, order.ErrNotFound
	}
	return o.Clone(), nil
}

// Orders returns copies of all orders, newest first.
func (s *Shop) Orders() []order.Order {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]order.Order, 0, len(s.orders))
	for _, o := range s.orders {
		out = append(out, o.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

func (s *Shop) findProduct(id string) *product.Product {
	for i := range s.products {
		if s.products[i].ID == id {
			return &s.products[i]
		}
	}
	return nil
}

// journalEvent appends a lifecycle event; journal failures are logged,
// never propagated.
func (s *Shop) journalEvent(e journal.Entry) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Append(e); err != nil {
		s.lg.Warn("journal append failed", zap.Error(err))
	}
}
