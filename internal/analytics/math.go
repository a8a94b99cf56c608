package analytics

import "math"

// mean returns the arithmetic mean, or 0 for an empty series.
func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// sampleStdDev returns the sample standard deviation (divisor n-1), or 0
// when fewer than two observations exist.
func sampleStdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	sumSq := 0.0
	for _, v := range values {
		sumSq += (v - m) * (v - m)
	}
	return math.Sqrt(sumSq / float64(len(values)-1))
}

// roundTo rounds half-up to the given number of decimals.
func roundTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Floor(v*p+0.5) / p
}

// round2 rounds half-up to two decimals, the precision of every percentage
// and probability column.
func round2(v float64) float64 {
	return roundTo(v, 2)
}

// roundUnits rounds half-up to whole units.
func roundUnits(v float64) float64 {
	return roundTo(v, 0)
}

// truncTo truncates toward zero at the given number of decimals. Cluster
// keys truncate rather than round: a bucket key keeps the leading digits of
// its coordinates.
func truncTo(v float64, decimals int) float64 {
	p := math.Pow10(decimals)
	return math.Trunc(v*p) / p
}

// safeDiv divides num by den, yielding an invalid Float when the divisor is
// zero instead of propagating an error.
func safeDiv(num, den float64) Float {
	if den == 0 {
		return Float{}
	}
	return FloatFrom(num / den)
}
