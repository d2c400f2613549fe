package booking

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const (
	bookingIDLength   = 10
	bookingIDAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
)

// NewBookingID returns a random 10-character uppercase alphanumeric ID. IDs are
// not checked for uniqueness; nothing keeps past bookings around.
func NewBookingID() (string, error) {
	max := big.NewInt(int64(len(bookingIDAlphabet)))
	id := make([]byte, bookingIDLength)
	for i := range id {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("generate booking id: %w", err)
		}
		id[i] = bookingIDAlphabet[n.Int64()]
	}
	return string(id), nil
}
