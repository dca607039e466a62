// README: Pricing snapshot tests.
package product

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputePricing(t *testing.T) {
	cases := []struct {
		name        string
		base        float64
		feePct      float64
		wantFee     float64
		wantDisplay float64
	}{
		{"default fee", 100, 10, 10, 110},
		{"zero fee", 50, 0, 0, 50},
		{"fractional base", 33.33, 10, 3.33, 36.66},
		{"fee rounds to cents", 19.99, 7.5, 1.5, 21.49},
		{"high fee", 200, 25, 50, 250},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputePricing(tc.base, tc.feePct)
			assert.Equal(t, tc.base, got.BasePrice)
			assert.Equal(t, tc.feePct, got.ServiceFeePercentage)
			assert.Equal(t, tc.wantFee, got.ServiceFee)
			assert.Equal(t, tc.wantDisplay, got.DisplayPrice)
		})
	}
}

func TestValidStatus(t *testing.T) {
	for _, st := range []Status{StatusPending, StatusApproved, StatusRejected, StatusSuspended} {
		assert.True(t, ValidStatus(st), "status %s", st)
	}
	assert.False(t, ValidStatus(Status("sold_out")))
	assert.False(t, ValidStatus(Status("")))
}
