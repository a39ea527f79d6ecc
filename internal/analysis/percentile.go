package analysis

import (
	"math"
	"sort"

	"github.com/horaciomoreno100/deriv-bot-sub007/internal/metrics"
	"github.com/horaciomoreno100/deriv-bot-sub007/internal/types"
)

// Percentile returns the p-th percentile (0-100) of sorted values using linear
// interpolation between closest ranks.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}

	if n == 1 {
		return sorted[0]
	}

	rank := p / 100 * float64(n-1)
	lower := int(math.Floor(rank))
	upper := int(math.Ceil(rank))

	if lower < 0 {
		return sorted[0]
	}

	if upper >= n {
		return sorted[n-1]
	}

	weight := rank - float64(lower)

	return sorted[lower] + (sorted[upper]-sorted[lower])*weight
}

// Summarize builds the distribution summary of values. values is sorted in place.
func Summarize(values []float64) types.Distribution {
	if len(values) == 0 {
		return types.Distribution{}
	}

	sort.Float64s(values)
	mean, sd := metrics.MeanStdDev(values, false)

	return types.Distribution{
		P5:     Percentile(values, 5),
		P25:    Percentile(values, 25),
		P50:    Percentile(values, 50),
		P75:    Percentile(values, 75),
		P95:    Percentile(values, 95),
		Mean:   mean,
		StdDev: sd,
		Min:    values[0],
		Max:    values[len(values)-1],
	}
}
