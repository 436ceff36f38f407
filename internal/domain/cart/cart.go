// Package cart defines the shopping cart: a transient mapping of product
// ids to selected quantities, cleared on successful checkout.
package cart

import (
	"sort"

	"github.com/go-faster/errors"
)

// ErrInvalidQuantity is returned when a cart mutation carries a
// non-positive quantity where a positive one is required.
var ErrInvalidQuantity = errors.New("quantity must be positive")

// Cart maps product ids to positive quantities. Every key must reference
// an existing product whose stock covers the quantity; the shop enforces
// this at every mutation.
type Cart map[string]int

// Clone returns an independent copy of the cart.
func (c Cart) Clone() Cart {
	out := make(Cart, len(c))
	for id, qty := range c {
		out[id] = qty
	}
	return out
}

// ProductIDs returns the product ids in the cart in stable (sorted) order.
func (c Cart) ProductIDs() []string {
	ids := make([]string, 0, len(c))
	for id := range c {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// TotalQuantity returns the total number of units across all entries.
func (c Cart) TotalQuantity() int {
	n := 0
	for _, qty := range c {
		n += qty
	}
	return n
}
