package order

import (
	"time"

	"github.com/go-faster/errors"

	"github.com/ecomsim/shopfront/pkg/money"
)

// Sentinel errors for order operations.
var (
	ErrNotFound          = errors.New("order not found")
	ErrEmptyCustomerName = errors.New("customer name is required")
	ErrEmptyCart         = errors.New("cart is empty")
	ErrNoShipment        = errors.New("order has no shipment")
)

// Order represents a committed customer order. Once created it is
// immutable except for Status and Shipment, which change only as the
// simulated payment and shipment progress.
type Order struct {
	ID              string       `json:"id"`
	CustomerName    string       `json:"customer_name"`
	CustomerAddress string       `json:"customer_address"`
	Items           []Item       `json:"items"`
	Amount          money.Amount `json:"amount"`
	Status          Status       `json:"status"`
	CreatedAt       time.Time    `json:"created_at"`
	Shipment        *Shipment    `json:"shipment,omitempty"`
}

// Item is a single line of an order.
type Item struct {
	ProductID string `json:"product_id"`
	Qty       int    `json:"qty"`
}

// Clone returns a deep copy of the order, safe to hand out to callers.
func (o *Order) Clone() Order {
	out := *o
	out.Items = append([]Item(nil), o.Items...)
	if o.Shipment != nil {
		sh := *o.Shipment
		sh.Stages = append([]string(nil), o.Shipment.Stages...)
		out.Shipment = &sh
	}
	return out
}
