package matevo

import "github.com/baldhumanity/matrix-evo/matevo/matrix"

// MemberSnapshot is a read-only copy of one individual or particle.
type MemberSnapshot struct {
	Index  int
	Matrix *matrix.Matrix
	Rating float64
	Scored bool

	// Child marks an EVO child that has not been promoted yet.
	Child bool

	// Velocity and the personal best are only set for PSO particles.
	Velocity   *matrix.Matrix
	BestMatrix *matrix.Matrix
	BestRating float64
	HasBest    bool
}

// BlockSnapshot is a read-only copy of a block for reporting. Nothing in it
// aliases engine state.
type BlockSnapshot struct {
	Block      int
	Mode       Mode
	Generation int
	Members    []MemberSnapshot
	Children   []MemberSnapshot
	Best       Best
	HasBest    bool
	Stats      Stats
	// Degenerate counts generations that fell back to cloning.
	Degenerate int
	Halted     error
}

func ratingsOf(members []MemberSnapshot) []float64 {
	out := make([]float64, 0, len(members))
	for _, m := range members {
		if m.Scored {
			out = append(out, m.Rating)
		}
	}
	return out
}
