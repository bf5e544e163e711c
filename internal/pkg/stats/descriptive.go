package stats

import (
	"math"
	"sort"
)

// Mean returns the arithmetic mean of the sample, 0 for an empty sample.
func Mean(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum int64
	for _, v := range values {
		sum += v
	}
	return float64(sum) / float64(len(values))
}

// StdDevPopulation returns the population standard deviation.
func StdDevPopulation(values []int64) float64 {
	if len(values) == 0 {
		return 0
	}
	m := Mean(values)
	var ss float64
	for _, v := range values {
		d := float64(v) - m
		ss += d * d
	}
	return math.Sqrt(ss / float64(len(values)))
}

// Percentile computes the p-th percentile (p in [0,1]) using linear
// interpolation between order statistics, the same semantics as PostgreSQL's
// percentile_cont. Nearest-rank methods produce degenerate ties on small
// samples, so they are not used here. The input need not be sorted.
func Percentile(values []int64, p float64) float64 {
	n := len(values)
	if n == 0 {
		return 0
	}
	if n == 1 {
		return float64(values[0])
	}
	if p <= 0 {
		p = 0
	}
	if p >= 1 {
		p = 1
	}

	sorted := make([]int64, n)
	copy(sorted, values)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	h := float64(n-1) * p
	lo := int(math.Floor(h))
	hi := lo + 1
	if hi >= n {
		return float64(sorted[n-1])
	}
	frac := h - float64(lo)
	return float64(sorted[lo]) + frac*(float64(sorted[hi])-float64(sorted[lo]))
}

// Median is the 50th percentile.
func Median(values []int64) float64 {
	return Percentile(values, 0.5)
}

// MinMax returns the smallest and largest values, (0,0) for an empty sample.
func MinMax(values []int64) (int64, int64) {
	if len(values) == 0 {
		return 0, 0
	}
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		if v < lo {
			lo = v
		}
		if v > hi {
			hi = v
		}
	}
	return lo, hi
}
