// Package money provides a monetary amount type held in minor currency
// units, with exact decimal formatting for display and logs.
package money

import "github.com/shopspring/decimal"

// Amount is a monetary value in minor currency units (e.g. cents).
// Arithmetic on Amount stays in integer space; conversion to major units
// happens only at the display boundary.
type Amount int64

// Mul returns the amount multiplied by a quantity.
func (a Amount) Mul(qty int) Amount {
	return a * Amount(qty)
}

// Decimal returns the amount in major units as an exact decimal.
func (a Amount) Decimal() decimal.Decimal {
	return decimal.New(int64(a), -2)
}

// String formats the amount in major units with two fraction digits.
func (a Amount) String() string {
	return a.Decimal().StringFixed(2)
}
