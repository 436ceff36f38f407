package product

import (
	"fmt"

	"github.com/go-faster/errors"

	"github.com/ecomsim/shopfront/pkg/money"
)

// ErrNotFound is returned when a requested product does not exist.
var ErrNotFound = errors.New("product not found")

// Product represents a catalog item available for purchase. Stock is
// mutated only when an order is committed, never at cart mutation time.
type Product struct {
	ID    string       `json:"id"`
	Name  string       `json:"name"`
	Price money.Amount `json:"price"`
	Stock int          `json:"stock"`
	Desc  string       `json:"desc"`
}

// InsufficientStockError indicates a requested quantity exceeds the
// product's current stock.
type InsufficientStockError struct {
	ProductID string
	Name      string
	Requested int
	Stock     int
}

func (e *InsufficientStockError) Error() string {
	return fmt.Sprintf("insufficient stock for %s: requested %d, have %d", e.Name, e.Requested, e.Stock)
}
