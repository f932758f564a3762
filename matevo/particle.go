package matevo

import (
	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// Particle is one PSO particle: a position, a velocity of the same shape and
// the best position it has visited.
type Particle struct {
	position *matrix.Matrix
	velocity *matrix.Matrix
	rating   float64
	scored   bool

	best       *matrix.Matrix
	bestRating float64
	hasBest    bool
}

func newParticle(position, velocity *matrix.Matrix) *Particle {
	return &Particle{position: position, velocity: velocity}
}

// Position returns a copy of the current position.
func (pt *Particle) Position() *matrix.Matrix { return pt.position.Clone() }

// Velocity returns a copy of the current velocity.
func (pt *Particle) Velocity() *matrix.Matrix { return pt.velocity.Clone() }

// Rating returns the rating of the current position and whether it is valid.
func (pt *Particle) Rating() (float64, bool) { return pt.rating, pt.scored }

// PersonalBest returns a copy of the personal best and its rating.
func (pt *Particle) PersonalBest() (*matrix.Matrix, float64, bool) {
	if !pt.hasBest {
		return nil, 0, false
	}
	return pt.best.Clone(), pt.bestRating, true
}

func (pt *Particle) score(ev rating.Evaluator) error {
	if pt.scored {
		return nil
	}
	r, err := ev.Evaluate(pt.position)
	if err != nil {
		return err
	}
	pt.rating, pt.scored = r, true
	return nil
}

// updateBest replaces the personal best when the current rating is strictly
// better. It reports whether the best changed.
func (pt *Particle) updateBest(goal rating.Goal) bool {
	if !pt.scored {
		return false
	}
	if pt.hasBest && !goal.Better(pt.rating, pt.bestRating) {
		return false
	}
	if pt.best == nil {
		pt.best = pt.position.Clone()
	} else {
		pt.best.CopyFrom(pt.position)
	}
	pt.bestRating, pt.hasBest = pt.rating, true
	return true
}

func (pt *Particle) snapshot(i int) MemberSnapshot {
	s := MemberSnapshot{
		Index:    i,
		Matrix:   pt.position.Clone(),
		Rating:   pt.rating,
		Scored:   pt.scored,
		Velocity: pt.velocity.Clone(),
	}
	if pt.hasBest {
		s.BestMatrix, s.BestRating, s.HasBest = pt.best.Clone(), pt.bestRating, true
	}
	return s
}
