package validate

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/CodingWeeb-Gaurav/backend/types"
)

func TestQuantityBounds(t *testing.T) {
	t.Parallel()

	res := Quantity(50, 10, 100)
	assert.True(t, res.Valid)
	assert.Equal(t, 50.0, res.Normalized)

	res = Quantity(5, 10, 100)
	require.False(t, res.Valid)
	assert.Equal(t, "quantity must be at least 10 (minimum order quantity)", res.Reason)

	res = Quantity(150, 10, 100)
	require.False(t, res.Valid)
	assert.Equal(t, "quantity exceeds available stock of 100", res.Reason)

	res = Quantity("fifty", 10, 100)
	require.False(t, res.Valid)
	assert.Equal(t, "invalid number format", res.Reason)

	// strings carrying numbers are accepted
	res = Quantity("50", 10, 100)
	assert.True(t, res.Valid)
	assert.Equal(t, 50.0, res.Normalized)
}

func TestBoundsDefaults(t *testing.T) {
	t.Parallel()

	min, max := Bounds(nil)
	assert.Equal(t, 1.0, min)
	assert.True(t, max > 1e308)

	min, max = Bounds(&types.Product{MinQuantity: 10, Quantity: 100})
	assert.Equal(t, 10.0, min)
	assert.Equal(t, 100.0, max)

	// a zero snapshot falls back to the defaults
	min, max = Bounds(&types.Product{})
	assert.Equal(t, 1.0, min)
	assert.True(t, max > 1e308)
}

func TestDate(t *testing.T) {
	t.Parallel()
	now := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	res := Date("2025-06-02", now)
	assert.True(t, res.Valid)
	assert.Equal(t, "2025-06-02", res.Normalized)

	res = Date("2025-06-01", now)
	require.False(t, res.Valid)
	assert.Contains(t, res.Reason, "after today")

	res = Date("2024-01-01", now)
	assert.False(t, res.Valid)

	res = Date("06/02/2025", now)
	require.False(t, res.Valid)
	assert.Equal(t, "invalid date format, use YYYY-MM-DD", res.Reason)
}

func TestSelection(t *testing.T) {
	t.Parallel()
	options := []string{"Ex Factory", "Deliver to Buyer Factory"}

	res := Selection("ex factory", options)
	require.True(t, res.Valid)
	assert.Equal(t, "Ex Factory", res.Normalized)

	res = Selection("FOB", options)
	require.False(t, res.Valid)
	assert.Equal(t, "invalid selection, allowed options: Ex Factory, Deliver to Buyer Factory", res.Reason)
}

func TestPhone(t *testing.T) {
	t.Parallel()

	res := Phone("+1234567890")
	require.True(t, res.Valid)
	assert.Equal(t, "+1234567890", res.Normalized)

	// separators are stripped before checking
	res = Phone("+1 (234) 567-8901")
	require.True(t, res.Valid)
	assert.Equal(t, "+12345678901", res.Normalized)

	res = Phone("12345")
	assert.False(t, res.Valid)

	res = Phone("phone me")
	assert.False(t, res.Valid)
}

func TestPositiveNumber(t *testing.T) {
	t.Parallel()

	assert.True(t, PositiveNumber(12.5).Valid)
	assert.False(t, PositiveNumber(0).Valid)
	assert.False(t, PositiveNumber(-3).Valid)
}

func TestExpectedPrice(t *testing.T) {
	t.Parallel()

	total, err := ExpectedPrice(50, 12.5)
	require.NoError(t, err)
	assert.Equal(t, 625.0, total)

	_, err = ExpectedPrice("fifty", 12.5)
	assert.Error(t, err)
}
