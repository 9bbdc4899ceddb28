package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseRequestType(t *testing.T) {
	t.Parallel()

	for raw, want := range map[string]RequestType{
		"order":     RequestOrder,
		"Sample":    RequestSample,
		"QUOTATION": RequestQuotation,
		"quote":     RequestQuotation,
		"ppr":       RequestPPR,
	} {
		got, found := ParseRequestType(raw)
		assert.True(t, found, raw)
		assert.Equal(t, want, got)
	}

	_, found := ParseRequestType("invoice")
	assert.False(t, found)
}

func TestStageValid(t *testing.T) {
	t.Parallel()

	assert.True(t, StageProductSelection.Valid())
	assert.True(t, StageRequestDetails.Valid())
	assert.True(t, StageAddressPurpose.Valid())
	assert.False(t, Stage("checkout").Valid())
}
