package matevo

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// Stats summarizes the ratings of a block.
type Stats struct {
	Count  int
	Min    float64
	Max    float64
	Mean   float64
	Stdev  float64 // sample standard deviation, 0 below two values
	Median float64
}

// Summarize computes Stats over values. An empty slice yields a zero Stats.
func Summarize(values []float64) Stats {
	if len(values) == 0 {
		return Stats{}
	}
	s := Stats{
		Count: len(values),
		Min:   floats.Min(values),
		Max:   floats.Max(values),
	}
	if len(values) < 2 {
		s.Mean = values[0]
	} else {
		s.Mean, s.Stdev = stat.MeanStdDev(values, nil)
	}

	s.Median = rating.AggregateMedian(values)
	return s
}
