package rating

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"
)

// AggregationFunc combines the per-rule scores into a single rating.
type AggregationFunc func(scores []float64) float64

// Aggregations maps aggregation names to their implementations.
var Aggregations = map[string]AggregationFunc{
	"sum":     AggregateSum,
	"product": AggregateProduct,
	"min":     AggregateMin,
	"max":     AggregateMax,
	"mean":    AggregateMean,
	"average": AggregateMean,
	"median":  AggregateMedian,
	"maxabs":  AggregateMaxAbs,
}

// GetAggregation retrieves an aggregation function by name.
func GetAggregation(name string) (AggregationFunc, error) {
	if fn, ok := Aggregations[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownAggregation)
}

// AggregateSum returns the sum of the scores.
func AggregateSum(scores []float64) float64 { return floats.Sum(scores) }

// AggregateProduct returns 1 for no scores.
func AggregateProduct(scores []float64) float64 { return floats.Prod(scores) }

// AggregateMin returns the smallest score, or +Inf for no scores.
func AggregateMin(scores []float64) float64 {
	if len(scores) == 0 {
		return math.Inf(1)
	}
	return floats.Min(scores)
}

// AggregateMax returns the largest score, or -Inf for no scores.
func AggregateMax(scores []float64) float64 {
	if len(scores) == 0 {
		return math.Inf(-1)
	}
	return floats.Max(scores)
}

// AggregateMean returns the arithmetic mean, or 0 for no scores.
func AggregateMean(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return stat.Mean(scores, nil)
}

// AggregateMedian averages the two middle scores for an even count.
func AggregateMedian(scores []float64) float64 {
	n := len(scores)
	if n == 0 {
		return math.NaN()
	}
	sorted := make([]float64, n)
	copy(sorted, scores)
	sort.Float64s(sorted)
	if n%2 == 1 {
		return sorted[n/2]
	}
	return (sorted[n/2-1] + sorted[n/2]) / 2
}

// AggregateMaxAbs returns the largest absolute score.
func AggregateMaxAbs(scores []float64) float64 {
	if len(scores) == 0 {
		return 0
	}
	return floats.Norm(scores, math.Inf(1))
}
