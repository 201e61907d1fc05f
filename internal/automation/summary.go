package automation

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/photonrlc/internal/dynamo"
)

// Summary reduces per-trial energy deltas.
type Summary struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	StdDev float64 `json:"std_dev"` // population
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summarize computes mean, median and population standard deviation. For an
// even count the median is the midpoint of the two middle values.
func Summarize(values []float64) (Summary, error) {
	if len(values) == 0 {
		return Summary{}, dynamo.ErrEmptyInput
	}

	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)

	mean, variance := stat.PopMeanVariance(sorted, nil)

	n := len(sorted)
	median := sorted[n/2]
	if n%2 == 0 {
		median = sorted[n/2-1] + (sorted[n/2]-sorted[n/2-1])/2
	}

	return Summary{
		Count:  n,
		Mean:   mean,
		Median: median,
		StdDev: math.Sqrt(math.Max(variance, 0)),
		Min:    floats.Min(sorted),
		Max:    floats.Max(sorted),
	}, nil
}
