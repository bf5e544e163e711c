package stats_test

import (
	"math"
	"testing"

	"github.com/fairwage/fairwage/internal/pkg/stats"
)

func TestPercentile_InterpolatedMatchesMedian(t *testing.T) {
	// 10 values, step 200: p50 must equal the interpolated median exactly.
	sample := []int64{1000, 1200, 1400, 1600, 1800, 2000, 2200, 2400, 2600, 2800}

	p50 := stats.Percentile(sample, 0.5)
	median := stats.Median(sample)
	if p50 != median {
		t.Errorf("p50 %v != median %v", p50, median)
	}
	if p50 != 1900 {
		t.Errorf("got %v, want 1900 (continuous percentile, not nearest rank)", p50)
	}
}

func TestPercentile_QuartilesSmallSample(t *testing.T) {
	sample := []int64{1000, 2000, 3000, 4000}
	// h = (n-1)p: p25 -> 0.75 between 1000 and 2000 = 1750.
	if got := stats.Percentile(sample, 0.25); got != 1750 {
		t.Errorf("p25: got %v, want 1750", got)
	}
	if got := stats.Percentile(sample, 0.9); got != 3700 {
		t.Errorf("p90: got %v, want 3700", got)
	}
}

func TestPercentile_UnsortedInput(t *testing.T) {
	if got := stats.Percentile([]int64{2800, 1000, 1900}, 0.5); got != 1900 {
		t.Errorf("got %v, want 1900", got)
	}
}

func TestPercentile_Degenerate(t *testing.T) {
	if got := stats.Percentile(nil, 0.5); got != 0 {
		t.Errorf("empty sample: got %v, want 0", got)
	}
	if got := stats.Percentile([]int64{1500}, 0.9); got != 1500 {
		t.Errorf("single value: got %v, want 1500", got)
	}
}

func TestStdDevPopulation(t *testing.T) {
	// Population stddev of {2,4,4,4,5,5,7,9} is exactly 2.
	sample := []int64{2, 4, 4, 4, 5, 5, 7, 9}
	if got := stats.StdDevPopulation(sample); math.Abs(got-2) > 1e-9 {
		t.Errorf("got %v, want 2", got)
	}
}

func TestMeanMinMax(t *testing.T) {
	sample := []int64{1000, 1500, 2000}
	if got := stats.Mean(sample); got != 1500 {
		t.Errorf("mean: got %v, want 1500", got)
	}
	lo, hi := stats.MinMax(sample)
	if lo != 1000 || hi != 2000 {
		t.Errorf("minmax: got (%d,%d), want (1000,2000)", lo, hi)
	}
	if got := stats.Mean(nil); got != 0 {
		t.Errorf("empty mean: got %v, want 0", got)
	}
}
