package matevo_test

import (
	"math"
	"testing"

	"github.com/baldhumanity/matrix-evo/matevo"
	"github.com/stretchr/testify/assert"
)

func TestSummarize(t *testing.T) {
	s := matevo.Summarize([]float64{4, 1, 3, 2})
	assert.Equal(t, 4, s.Count)
	assert.Equal(t, 1.0, s.Min)
	assert.Equal(t, 4.0, s.Max)
	assert.Equal(t, 2.5, s.Mean)
	assert.Equal(t, 2.5, s.Median)
	assert.InDelta(t, math.Sqrt(5.0/3.0), s.Stdev, 1e-12)

	s = matevo.Summarize([]float64{7})
	assert.Equal(t, matevo.Stats{Count: 1, Min: 7, Max: 7, Mean: 7, Median: 7}, s)

	assert.Equal(t, matevo.Stats{}, matevo.Summarize(nil))
}
