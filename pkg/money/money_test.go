package money

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAmount_Mul(t *testing.T) {
	assert.Equal(t, Amount(998), Amount(499).Mul(2))
	assert.Equal(t, Amount(0), Amount(499).Mul(0))
}

func TestAmount_String(t *testing.T) {
	assert.Equal(t, "4.99", Amount(499).String())
	assert.Equal(t, "0.05", Amount(5).String())
	assert.Equal(t, "24.99", Amount(2499).String())
	assert.Equal(t, "0.00", Amount(0).String())
}

func TestAmount_Decimal(t *testing.T) {
	d := Amount(199).Decimal()
	assert.True(t, d.Equal(d.Round(2)))
	assert.Equal(t, "1.99", d.String())
}
