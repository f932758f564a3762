package matevo_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/baldhumanity/matrix-evo/matevo"
	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
	"github.com/stretchr/testify/require"
)

// sumEvaluator rates a matrix by the sum of its cells.
var sumEvaluator = rating.EvaluatorFunc(func(m *matrix.Matrix) (float64, error) {
	return m.Sum(), nil
})

// smallConfig returns a fast configuration for tests.
func smallConfig() *matevo.Config {
	cfg := matevo.DefaultConfig()
	cfg.Run.Blocks = 3
	cfg.Run.Seed = 42
	cfg.Run.MaxGenerations = 20
	cfg.Matrix.Height = 3
	cfg.Matrix.Width = 3
	cfg.Matrix.MagnitudeBound = 10
	cfg.Matrix.StepFraction = 0.1
	cfg.Evo.Parents = 6
	cfg.Evo.Children = 4
	cfg.Pso.Particles = 5
	return cfg
}

func newRand(seed int64) *rand.Rand { return rand.New(rand.NewSource(seed)) }

func mustRows(t *testing.T, rows [][]float64, bound float64) *matrix.Matrix {
	t.Helper()
	m, err := matrix.FromRows(rows, bound)
	require.NoError(t, err)
	return m
}

// requireBounded checks every cell of m against bound.
func requireBounded(t *testing.T, m *matrix.Matrix, bound float64) {
	t.Helper()
	for _, row := range m.Rows() {
		for _, v := range row {
			require.LessOrEqual(t, math.Abs(v), bound)
		}
	}
}
