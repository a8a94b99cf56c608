package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMean(t *testing.T) {
	assert.Equal(t, 0.0, mean(nil))
	assert.InDelta(t, 2.5, mean([]float64{1, 2, 3, 4}), 0.0001)
}

func TestSampleStdDev(t *testing.T) {
	assert.Equal(t, 0.0, sampleStdDev(nil))
	assert.Equal(t, 0.0, sampleStdDev([]float64{7}))
	// Sample variance of 1..4 is 5/3.
	assert.InDelta(t, 1.29099, sampleStdDev([]float64{1, 2, 3, 4}), 0.0001)
}

func TestRoundingIsHalfUp(t *testing.T) {
	tests := []struct {
		name string
		got  float64
		want float64
	}{
		{"units_half_up", roundUnits(8.5), 9},
		{"units_down", roundUnits(8.49), 8},
		{"units_eoq_example", roundUnits(8.544), 9},
		{"two_decimals_half_up", round2(0.125), 0.13},
		{"two_decimals_down", round2(0.404), 0.40},
		{"negative_half_toward_positive", roundUnits(-2.5), -2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, tt.got, 0.0001)
		})
	}
}

func TestTruncToKeepsLeadingDigits(t *testing.T) {
	assert.InDelta(t, 12.3, truncTo(12.36, 1), 0.0001)
	assert.InDelta(t, 12.3, truncTo(12.34, 1), 0.0001)
	assert.InDelta(t, -45.6, truncTo(-45.67, 1), 0.0001)
}

func TestSafeDiv(t *testing.T) {
	got := safeDiv(10, 4)
	assert.True(t, got.Valid)
	assert.InDelta(t, 2.5, got.Float64, 0.0001)

	assert.False(t, safeDiv(10, 0).Valid)
}
