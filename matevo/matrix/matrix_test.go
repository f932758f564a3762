package matrix_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_InvalidDimension(t *testing.T) {
	for _, dims := range [][2]int{{0, 3}, {3, 0}, {-1, 2}, {2, -5}} {
		_, err := matrix.New(dims[0], dims[1], 1)
		require.ErrorIs(t, err, matrix.ErrInvalidDimension, "dims %v", dims)

		_, err = matrix.Random(dims[0], dims[1], 0.3, 1, rand.New(rand.NewSource(1)))
		require.ErrorIs(t, err, matrix.ErrInvalidDimension, "dims %v", dims)
	}
}

func TestNew_BadBound(t *testing.T) {
	_, err := matrix.New(2, 2, 0)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = matrix.New(2, 2, math.Inf(1))
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestRandom_SparsityAndBound(t *testing.T) {
	cases := []struct {
		h, w     int
		sparsity float64
	}{
		{5, 5, 0.3},
		{3, 7, 0.5},
		{1, 1, 1},
		{4, 4, 0},
		{10, 3, 0.05},
	}
	for _, tc := range cases {
		for seed := int64(0); seed < 20; seed++ {
			rng := rand.New(rand.NewSource(seed))
			m, err := matrix.Random(tc.h, tc.w, tc.sparsity, 1000, rng)
			require.NoError(t, err)

			target := tc.sparsity * float64(tc.h*tc.w)
			assert.LessOrEqual(t, math.Abs(float64(m.NonZero())-target), 1.0)
			assert.Equal(t, matrix.TargetNonZero(tc.h, tc.w, tc.sparsity), m.NonZero())

			for _, row := range m.Rows() {
				for _, v := range row {
					assert.LessOrEqual(t, math.Abs(v), 1000.0)
				}
			}
		}
	}
}

func TestRandom_ExtremeBound(t *testing.T) {
	bound := math.MaxFloat64 / 1.5
	for seed := int64(0); seed < 20; seed++ {
		m, err := matrix.Random(5, 5, 1, bound, rand.New(rand.NewSource(seed)))
		require.NoError(t, err)
		assert.Equal(t, 25, m.NonZero())
		for _, row := range m.Rows() {
			for _, v := range row {
				require.False(t, math.IsNaN(v) || math.IsInf(v, 0), "seed %d: %v", seed, v)
				require.LessOrEqual(t, math.Abs(v), bound)
			}
		}
	}
}

func TestClamp_NonFinite(t *testing.T) {
	m, err := matrix.New(1, 2, 10)
	require.NoError(t, err)

	assert.Equal(t, 0.0, m.Set(0, 0, math.NaN()))
	assert.Equal(t, 10.0, m.Set(0, 1, math.Inf(1)))
	assert.Equal(t, -10.0, m.Clamp(math.Inf(-1)))
	assert.Equal(t, 1, m.NonZero())
}

func TestRandom_BadSparsity(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	_, err := matrix.Random(2, 2, 1.5, 1, rng)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
	_, err = matrix.Random(2, 2, -0.1, 1, rng)
	require.ErrorIs(t, err, matrix.ErrOutOfRange)
}

func TestClone_NoAliasing(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, 2}, {3, 4}}, 10)
	require.NoError(t, err)

	c := m.Clone()
	require.True(t, m.Equal(c))

	c.Set(0, 0, 9)
	assert.Equal(t, 1.0, m.At(0, 0))
	assert.Equal(t, 9.0, c.At(0, 0))
	assert.False(t, m.Equal(c))
}

func TestPerturb_Clamps(t *testing.T) {
	m, err := matrix.New(2, 2, 5)
	require.NoError(t, err)

	assert.Equal(t, 3.0, m.Perturb(0, 1, 3))
	assert.Equal(t, 5.0, m.Perturb(0, 1, 100))
	assert.Equal(t, -5.0, m.Perturb(1, 1, -7.5))
	assert.Equal(t, 2, m.NonZero())
}

func TestFromRows(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, -20}, {0, 3}}, 10)
	require.NoError(t, err)
	h, w := m.Dims()
	assert.Equal(t, 2, h)
	assert.Equal(t, 2, w)
	assert.Equal(t, -10.0, m.At(0, 1))
	assert.Equal(t, -6.0, m.Sum())
	assert.Equal(t, 3, m.NonZero())

	_, err = matrix.FromRows([][]float64{{1, 2}, {3}}, 10)
	require.ErrorIs(t, err, matrix.ErrInvalidDimension)
	_, err = matrix.FromRows(nil, 10)
	require.ErrorIs(t, err, matrix.ErrInvalidDimension)
}

func TestRows_IsACopy(t *testing.T) {
	m, err := matrix.FromRows([][]float64{{1, 2}}, 10)
	require.NoError(t, err)
	rows := m.Rows()
	rows[0][0] = 7
	assert.Equal(t, 1.0, m.At(0, 0))
}

func TestCopyFrom(t *testing.T) {
	src, err := matrix.FromRows([][]float64{{1, 2}, {3, 4}}, 10)
	require.NoError(t, err)
	dst, err := matrix.New(2, 2, 2.5)
	require.NoError(t, err)

	dst.CopyFrom(src)
	assert.Equal(t, [][]float64{{1, 2}, {2.5, 2.5}}, dst.Rows())
}
