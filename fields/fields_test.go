package fields

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var detailsRequired = []string{
	"unit", "quantity", "price_per_unit", "expected_price",
	"phone", "incoterm", "mode_of_payment", "packaging_pref", "delivery_date",
}

func TestCompletionPartition(t *testing.T) {
	t.Parallel()

	d := Details{
		Unit:     "KG",
		Quantity: 50,
		Phone:    "+1234567890",
	}
	completed := Completed(d, detailsRequired)
	pending := Pending(d, detailsRequired)

	assert.Equal(t, []string{"unit", "quantity", "phone"}, completed)
	assert.Equal(t, []string{"price_per_unit", "expected_price", "incoterm", "mode_of_payment", "packaging_pref", "delivery_date"}, pending)

	// completed and pending partition the required set
	assert.Len(t, append(completed, pending...), len(detailsRequired))
	assert.False(t, Satisfied(d, detailsRequired))
}

func TestZeroValuesCountAsMissing(t *testing.T) {
	t.Parallel()

	d := Details{Quantity: 0, Unit: ""}
	assert.Empty(t, Completed(d, detailsRequired))
	assert.Equal(t, detailsRequired, Pending(d, detailsRequired))
}

func TestSatisfied(t *testing.T) {
	t.Parallel()

	d := Details{
		Unit: "KG", Quantity: 50, PricePerUnit: 12.5, ExpectedPrice: 625,
		Phone: "+1234567890", Incoterm: "Ex Factory", ModeOfPayment: "LC",
		PackagingPref: "Drum", DeliveryDate: "2025-06-02",
	}
	assert.True(t, Satisfied(d, detailsRequired))

	// repeated evaluation is stable
	first := Completed(d, detailsRequired)
	assert.Equal(t, first, Completed(d, detailsRequired))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	t.Parallel()

	original := Details{Unit: "KG"}
	patched, err := Apply(original, []Operation{
		{Op: "add", Path: "/quantity", Value: 50},
	})
	require.NoError(t, err)
	assert.Equal(t, 50.0, patched.Quantity)
	assert.Equal(t, 0.0, original.Quantity)
	assert.Equal(t, "KG", patched.Unit)
}

func TestApplyRewritesReplaceOnMissingKey(t *testing.T) {
	t.Parallel()

	// the omitted-empty encoding drops unset keys, so a replace op from the
	// model must still land
	patched, err := Apply(Details{}, []Operation{
		{Op: "replace", Path: "/phone", Value: "+1234567890"},
	})
	require.NoError(t, err)
	assert.Equal(t, "+1234567890", patched.Phone)
}

func TestApplyErrorReturnsOriginal(t *testing.T) {
	t.Parallel()

	original := Details{Unit: "TON", Quantity: 3}
	out, err := Apply(original, []Operation{
		{Op: "remove", Path: "/no_such"},
	})
	require.Error(t, err)
	assert.Equal(t, original, out)
}

func TestFieldName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "quantity", Operation{Path: "/quantity"}.FieldName())
}

func TestSchemaReflects(t *testing.T) {
	t.Parallel()

	out, err := Schema()
	require.NoError(t, err)
	assert.Contains(t, out, "quantity")
	assert.Contains(t, out, "delivery_date")
}
