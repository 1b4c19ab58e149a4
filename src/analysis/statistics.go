package analysis

import "math"

// -----------------------------------------------------------------------------

// MeanStd computes mean and population standard deviation.
func MeanStd(data []float64) (float64, float64) {
	if len(data) == 0 {
		return 0, 0
	}

	sum := 0.0
	for _, v := range data {
		sum += v
	}
	mean := sum / float64(len(data))

	if len(data) == 1 {
		return mean, 0
	}

	varianceSum := 0.0
	for _, v := range data {
		varianceSum += (v - mean) * (v - mean)
	}
	return mean, math.Sqrt(varianceSum / float64(len(data)))
}

// -----------------------------------------------------------------------------

// ChangePercent is the relative change from previous to current, as a fraction.
func ChangePercent(current, previous float64) float64 {
	if previous == 0 {
		return 0.0
	}
	return (current - previous) / previous
}

// -----------------------------------------------------------------------------

// Returns are the bar-over-bar relative changes of prices.
func Returns(prices []float64) []float64 {
	if len(prices) < 2 {
		return nil
	}
	out := make([]float64, 0, len(prices)-1)
	for i := 1; i < len(prices); i++ {
		out = append(out, ChangePercent(prices[i], prices[i-1]))
	}
	return out
}

// -----------------------------------------------------------------------------

// VolumeRatio compares a volume against the average; 1 means typical.
func VolumeRatio(current, avg float64) float64 {
	if avg <= 0 {
		return 1.0
	}
	return current / avg
}
