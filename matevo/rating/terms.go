package rating

import (
	"fmt"
	"math"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// TermFunc computes one scalar property of a matrix.
type TermFunc func(m *matrix.Matrix) (float64, error)

// Terms maps term names to their implementations. Rule sets refer to terms
// by name so they can be configured from a file.
var Terms = map[string]TermFunc{
	"sum":       TermSum,
	"abssum":    TermAbsSum,
	"trace":     TermTrace,
	"det":       TermDet,
	"frobenius": TermFrobenius,
	"max":       TermMax,
	"min":       TermMin,
	"maxabs":    TermMaxAbs,
	"nonzero":   TermNonZero,
	"density":   TermDensity,
}

// GetTerm retrieves a term function by name.
func GetTerm(name string) (TermFunc, error) {
	if fn, ok := Terms[name]; ok {
		return fn, nil
	}
	return nil, fmt.Errorf("%q: %w", name, ErrUnknownTerm)
}

// cells returns the matrix values in row-major order.
func cells(m *matrix.Matrix) []float64 {
	return m.Dense().RawMatrix().Data
}

func square(m *matrix.Matrix) error {
	h, w := m.Dims()
	if h != w {
		return fmt.Errorf("%dx%d: %w", h, w, ErrNonSquare)
	}
	return nil
}

// TermSum is the sum of all cells.
func TermSum(m *matrix.Matrix) (float64, error) { return m.Sum(), nil }

// TermAbsSum is the sum of absolute cell values.
func TermAbsSum(m *matrix.Matrix) (float64, error) {
	return floats.Norm(cells(m), 1), nil
}

// TermTrace is the sum of the main diagonal. Square matrices only.
func TermTrace(m *matrix.Matrix) (float64, error) {
	if err := square(m); err != nil {
		return 0, err
	}
	return mat.Trace(m.Dense()), nil
}

// TermDet is the determinant. Square matrices only.
func TermDet(m *matrix.Matrix) (float64, error) {
	if err := square(m); err != nil {
		return 0, err
	}
	return mat.Det(m.Dense()), nil
}

// TermFrobenius is the Frobenius norm.
func TermFrobenius(m *matrix.Matrix) (float64, error) {
	return mat.Norm(m.Dense(), 2), nil
}

// TermMax returns the largest cell.
func TermMax(m *matrix.Matrix) (float64, error) { return floats.Max(cells(m)), nil }

// TermMin returns the smallest cell.
func TermMin(m *matrix.Matrix) (float64, error) { return floats.Min(cells(m)), nil }

// TermMaxAbs is the largest absolute cell value.
func TermMaxAbs(m *matrix.Matrix) (float64, error) {
	return floats.Norm(cells(m), math.Inf(1)), nil
}

// TermNonZero counts the nonzero cells.
func TermNonZero(m *matrix.Matrix) (float64, error) { return float64(m.NonZero()), nil }

// TermDensity is the fraction of nonzero cells.
func TermDensity(m *matrix.Matrix) (float64, error) {
	h, w := m.Dims()
	return float64(m.NonZero()) / float64(h*w), nil
}
