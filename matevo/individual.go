package matevo

import (
	"fmt"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// Individual is an EVO parent or child: a matrix plus its cached rating.
type Individual struct {
	matrix *matrix.Matrix
	rating float64
	scored bool
	child  bool // produced by recombination, not yet promoted
}

func newIndividual(m *matrix.Matrix, child bool) *Individual {
	return &Individual{matrix: m, child: child}
}

// score evaluates the matrix unless the cached rating is still valid.
func (ind *Individual) score(ev rating.Evaluator) error {
	if ind.scored {
		return nil
	}
	r, err := ev.Evaluate(ind.matrix)
	if err != nil {
		return err
	}
	ind.rating, ind.scored = r, true
	return nil
}

// invalidate drops the cached rating after the matrix changed.
func (ind *Individual) invalidate() { ind.scored = false }

func (ind *Individual) snapshot(i int) MemberSnapshot {
	return MemberSnapshot{
		Index:  i,
		Matrix: ind.matrix.Clone(),
		Rating: ind.rating,
		Scored: ind.scored,
		Child:  ind.child,
	}
}

func (ind *Individual) String() string {
	if !ind.scored {
		return "Individual(unrated)"
	}
	return fmt.Sprintf("Individual(rating: %.4f, child: %t)", ind.rating, ind.child)
}
