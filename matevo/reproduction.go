package matevo

import (
	"math"
	"math/rand"
	"sort"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
)

// Parent selection is uniform: two distinct indices, each pair equally
// likely. Fitness only matters when a child is cloned instead of recombined.

// pickPair returns two distinct indices in [0, n). n must be at least 2.
func pickPair(n int, rng *rand.Rand) (int, int) {
	i := rng.Intn(n)
	j := rng.Intn(n - 1)
	if j >= i {
		j++
	}
	return i, j
}

// Crossover builds a child by taking every cell from a or b with equal
// probability. a and b must have the same dimensions.
func Crossover(a, b *matrix.Matrix, rng *rand.Rand) *matrix.Matrix {
	child := a.Clone()
	h, w := child.Dims()
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			if rng.Float64() < 0.5 {
				child.Set(i, j, b.At(i, j))
			}
		}
	}
	return child
}

// Mutate perturbs every cell independently with probability rate by a delta
// drawn uniformly from (-step, step]. A write that would move the nonzero
// count outside [lo, hi] is dropped, as if the delta were zero. The same
// random numbers are drawn whether or not a write is dropped. When rate is
// positive and m is still outside [lo, hi] afterwards, for example after a
// crossover, the band is restored with restoreBand. It returns the number of
// cells changed.
func Mutate(m *matrix.Matrix, rate, step float64, lo, hi int, rng *rand.Rand) int {
	h, w := m.Dims()
	nonZero := m.NonZero()
	changed := 0
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			if rng.Float64() >= rate {
				continue
			}
			delta := step - rng.Float64()*2*step

			old := m.At(i, j)
			next := m.Clamp(old + delta)
			switch {
			case old == 0 && next != 0:
				if nonZero+1 > hi {
					continue
				}
				nonZero++
			case old != 0 && next == 0:
				if nonZero-1 < lo {
					continue
				}
				nonZero--
			}
			if next != old {
				m.Set(i, j, next)
				changed++
			}
		}
	}
	if rate > 0 {
		changed += restoreBand(m, nonZero, lo, hi, step)
	}
	return changed
}

// restoreBand moves the nonzero count of m into [lo, hi] without drawing
// random numbers. Surplus cells are zeroed smallest magnitude first; missing
// cells are filled with step in scan order. Ties keep scan order.
func restoreBand(m *matrix.Matrix, nonZero, lo, hi int, step float64) int {
	if nonZero >= lo && nonZero <= hi {
		return 0
	}
	surplus := nonZero > hi

	type cell struct {
		i, j int
		abs  float64
	}
	h, w := m.Dims()
	var cells []cell
	for i := 0; i < h; i++ {
		for j := 0; j < w; j++ {
			v := m.At(i, j)
			if (v != 0) == surplus {
				cells = append(cells, cell{i, j, math.Abs(v)})
			}
		}
	}

	if surplus {
		sort.SliceStable(cells, func(a, b int) bool { return cells[a].abs < cells[b].abs })
		n := nonZero - hi
		for _, c := range cells[:n] {
			m.Set(c.i, c.j, 0)
		}
		return n
	}

	fill := m.Clamp(step)
	if fill == 0 {
		fill = m.Bound()
	}
	n := min(lo-nonZero, len(cells))
	for _, c := range cells[:n] {
		m.Set(c.i, c.j, fill)
	}
	return n
}

// distinctParents reports whether at least two parents hold different
// matrices.
func distinctParents(parents []*Individual) bool {
	for _, p := range parents[1:] {
		if !p.matrix.Equal(parents[0].matrix) {
			return true
		}
	}
	return false
}
