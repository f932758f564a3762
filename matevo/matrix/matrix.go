// Package matrix provides the fixed-size, bounded, sparse real matrix that
// both optimization engines evolve.
//
// A Matrix never holds a value outside [-Bound, Bound]: every write goes
// through a clamp. Matrices are value-like and must be cloned before being
// handed to another individual or particle.
package matrix

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"strings"

	"gonum.org/v1/gonum/mat"
)

var (
	// ErrInvalidDimension is returned when a matrix is requested with a
	// non-positive height or width, or built from empty/ragged rows.
	ErrInvalidDimension = errors.New("matrix: dimensions must be > 0")

	// ErrOutOfRange is returned for a sparsity outside [0,1] or a
	// non-positive magnitude bound.
	ErrOutOfRange = errors.New("matrix: parameter out of range")
)

// Matrix is a height x width grid of float64 values with a magnitude bound.
type Matrix struct {
	d     *mat.Dense
	bound float64
}

// New creates a height x width zero matrix whose cells are bounded by bound.
func New(height, width int, bound float64) (*Matrix, error) {
	if height <= 0 || width <= 0 {
		return nil, fmt.Errorf("new %dx%d: %w", height, width, ErrInvalidDimension)
	}
	if !(bound > 0) || math.IsInf(bound, 0) {
		return nil, fmt.Errorf("bound %v: %w", bound, ErrOutOfRange)
	}
	return &Matrix{d: mat.NewDense(height, width, nil), bound: bound}, nil
}

// TargetNonZero returns the number of nonzero cells a freshly created
// height x width matrix with the given sparsity holds.
func TargetNonZero(height, width int, sparsity float64) int {
	n := int(math.Round(sparsity * float64(height*width)))
	if n < 0 {
		return 0
	}
	if n > height*width {
		return height * width
	}
	return n
}

// Random creates a matrix with exactly TargetNonZero(height, width, sparsity)
// nonzero cells at random positions. Each nonzero value is drawn uniformly
// from (-bound, bound].
func Random(height, width int, sparsity, bound float64, rng *rand.Rand) (*Matrix, error) {
	if sparsity < 0 || sparsity > 1 || math.IsNaN(sparsity) {
		return nil, fmt.Errorf("sparsity %v: %w", sparsity, ErrOutOfRange)
	}
	m, err := New(height, width, bound)
	if err != nil {
		return nil, err
	}

	taken := TargetNonZero(height, width, sparsity)
	for _, cell := range rng.Perm(height * width)[:taken] {
		v := 0.0
		for v == 0 {
			v = bound * (1 - 2*rng.Float64())
		}
		m.Set(cell/width, cell%width, v)
	}
	return m, nil
}

// FromRows builds a matrix from row slices. Values are clamped to bound.
func FromRows(rows [][]float64, bound float64) (*Matrix, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("from rows: %w", ErrInvalidDimension)
	}
	m, err := New(len(rows), len(rows[0]), bound)
	if err != nil {
		return nil, err
	}
	for i, row := range rows {
		if len(row) != len(rows[0]) {
			return nil, fmt.Errorf("row %d has %d columns, want %d: %w", i, len(row), len(rows[0]), ErrInvalidDimension)
		}
		for j, v := range row {
			m.Set(i, j, v)
		}
	}
	return m, nil
}

// Dims returns the height and width of the matrix.
func (m *Matrix) Dims() (height, width int) { return m.d.Dims() }

// Bound returns the magnitude bound of the matrix.
func (m *Matrix) Bound() float64 { return m.bound }

// At returns the value at (row, col). It panics on out-of-range indices,
// like gonum.
func (m *Matrix) At(row, col int) float64 { return m.d.At(row, col) }

// Set stores v at (row, col) after clamping it to the magnitude bound and
// returns the stored value.
func (m *Matrix) Set(row, col int, v float64) float64 {
	v = m.Clamp(v)
	m.d.Set(row, col, v)
	return v
}

// Perturb adds delta to the cell at (row, col), clamps the result and
// returns the stored value.
func (m *Matrix) Perturb(row, col int, delta float64) float64 {
	return m.Set(row, col, m.d.At(row, col)+delta)
}

// Clamp restricts v to [-Bound, Bound]. NaN maps to 0.
func (m *Matrix) Clamp(v float64) float64 {
	if math.IsNaN(v) {
		return 0
	}
	return math.Max(-m.bound, math.Min(v, m.bound))
}

// Clone returns a deep copy of m.
func (m *Matrix) Clone() *Matrix {
	return &Matrix{d: mat.DenseCopyOf(m.d), bound: m.bound}
}

// CopyFrom overwrites m with the cells of src. Both must have the same
// dimensions; values are clamped to m's bound.
func (m *Matrix) CopyFrom(src *Matrix) {
	h, w := m.Dims()
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			m.Set(i, j, src.At(i, j))
		}
	}
}

// NonZero counts the nonzero cells.
func (m *Matrix) NonZero() int {
	h, w := m.Dims()
	n := 0
	for i := 0; i < h; i++ {
		for _, v := range m.d.RawRowView(i)[:w] {
			if v != 0 {
				n++
			}
		}
	}
	return n
}

// Sum returns the sum of all cells.
func (m *Matrix) Sum() float64 { return mat.Sum(m.d) }

// Equal reports whether m and other have the same dimensions and cells.
func (m *Matrix) Equal(other *Matrix) bool {
	if other == nil {
		return false
	}
	return mat.Equal(m.d, other.d)
}

// SameShape reports whether m and other have the same dimensions.
func (m *Matrix) SameShape(other *Matrix) bool {
	h1, w1 := m.Dims()
	h2, w2 := other.Dims()
	return h1 == h2 && w1 == w2
}

// Rows returns a deep copy of the cells as row slices.
func (m *Matrix) Rows() [][]float64 {
	h, w := m.Dims()
	rows := make([][]float64, h)
	for i := range rows {
		rows[i] = make([]float64, w)
		copy(rows[i], m.d.RawRowView(i))
	}
	return rows
}

// Dense returns a copy of the cells as a gonum matrix for linear algebra.
func (m *Matrix) Dense() *mat.Dense { return mat.DenseCopyOf(m.d) }

// String implements fmt.Stringer.
func (m *Matrix) String() string {
	var b strings.Builder
	for i, row := range m.Rows() {
		if i > 0 {
			b.WriteByte('\n')
		}
		for j, v := range row {
			if j > 0 {
				b.WriteByte(' ')
			}
			fmt.Fprintf(&b, "%10.3f", v)
		}
	}
	return b.String()
}
