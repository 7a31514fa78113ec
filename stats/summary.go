package stats

import (
	"slices"

	"gonum.org/v1/gonum/stat"
)

// Summary describes a finished sample, for example the node counts of each
// search worker.
type Summary struct {
	N      int     `json:"n" yaml:"n"`
	Mean   float64 `json:"mean" yaml:"mean"`
	Stdev  float64 `json:"stdev" yaml:"stdev"`
	Min    float64 `json:"min" yaml:"min"`
	Median float64 `json:"median" yaml:"median"`
	Max    float64 `json:"max" yaml:"max"`
}

func Summarize(xs []float64) Summary {
	if len(xs) == 0 {
		return Summary{}
	}
	sorted := slices.Clone(xs)
	slices.Sort(sorted)
	sum := Summary{
		N:      len(sorted),
		Min:    sorted[0],
		Max:    sorted[len(sorted)-1],
		Median: stat.Quantile(0.5, stat.Empirical, sorted, nil),
	}
	if len(sorted) == 1 {
		sum.Mean = sorted[0]
		return sum
	}
	sum.Mean, sum.Stdev = stat.MeanStdDev(sorted, nil)
	return sum
}

// Uint64s converts counters for Summarize.
func Uint64s(xs []uint64) []float64 {
	out := make([]float64, len(xs))
	for i, x := range xs {
		out[i] = float64(x)
	}
	return out
}
