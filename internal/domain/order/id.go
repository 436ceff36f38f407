package order

import (
	"math/rand/v2"
	"strconv"
	"strings"
	"time"
)

const idSuffixAlphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZ"

// NewID generates an order id unique across the store's lifetime. The
// millisecond timestamp component keeps ids from distinct instants
// distinct; the random suffix covers rapid successive calls.
func NewID() string {
	var b strings.Builder
	b.WriteString("ORD-")
	b.WriteString(strconv.FormatInt(time.Now().UnixMilli(), 36))
	b.WriteByte('-')
	for range 4 {
		b.WriteByte(idSuffixAlphabet[rand.IntN(len(idSuffixAlphabet))])
	}
	return b.String()
}

// TrackingID derives a carrier tracking id from an order id.
func TrackingID(orderID string) string {
	tail := orderID
	if len(tail) > 8 {
		tail = tail[len(tail)-8:]
	}
	return "TRK-" + tail
}
