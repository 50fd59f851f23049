package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeTotals(t *testing.T) {
	tests := []struct {
		name     string
		net      int64
		rate     float64
		wantTax  int64
		wantTotl int64
	}{
		{"standard rate", 3000, 19, 570, 3570},
		{"zero rate", 3000, 0, 0, 3000},
		{"zero net", 0, 19, 0, 0},
		{"rounds to nearest cent", 101, 7.5, 8, 109},
		{"rounds down", 101, 7.4, 7, 108},
		{"large amounts", 12_345_678, 19, 2_345_679, 14_691_357},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := ComputeTotals(tc.net, tc.rate)
			assert.Equal(t, tc.net, got.NetCents)
			assert.Equal(t, tc.wantTax, got.TaxCents)
			assert.Equal(t, tc.wantTotl, got.TotalCents)
		})
	}
}
