package booking

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var bookingIDPattern = regexp.MustCompile(`^[A-Z0-9]{10}$`)

func TestNewBookingID(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 200; i++ {
		id, err := NewBookingID()
		require.NoError(t, err)
		assert.Regexp(t, bookingIDPattern, id)
		seen[id] = struct{}{}
	}
	// 36^10 possible IDs; a collision here means the generator is broken.
	assert.Len(t, seen, 200)
}
