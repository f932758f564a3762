package matevo

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// PsoPhase is the position of a Swarm inside an iteration.
type PsoPhase int

const (
	PsoIdle PsoPhase = iota
	PsoScored
	PsoBestsUpdated
	PsoMoved
)

var psoPhaseNames = [...]string{"idle", "scored", "bests-updated", "moved"}

func (p PsoPhase) String() string {
	if p < 0 || int(p) >= len(psoPhaseNames) {
		return fmt.Sprintf("PsoPhase(%d)", int(p))
	}
	return psoPhaseNames[p]
}

// Swarm is the PSO engine of one block. The velocity of every cell follows
//
//	v = w*v + c1*r1*(pbest - x) + c2*r2*(gbest - x)
//
// with fresh r1, r2 in [0,1) per cell, v clamped to the maximum velocity and
// x+v clamped to the magnitude bound.
type Swarm struct {
	// Logger receives per-iteration events. Nil discards them.
	Logger *slog.Logger

	cfg  *Config
	eval rating.Evaluator
	goal rating.Goal
	rng  *rand.Rand

	particles []*Particle

	globalBest   *matrix.Matrix
	globalRating float64
	hasGlobal    bool

	phase     PsoPhase
	iteration int
}

// NewSwarm creates a swarm with random positions and zero velocities.
func NewSwarm(cfg *Config, eval rating.Evaluator, rng *rand.Rand) (*Swarm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	positions := make([]*matrix.Matrix, cfg.Pso.Particles)
	for i := range positions {
		m, err := matrix.Random(cfg.Matrix.Height, cfg.Matrix.Width, cfg.Matrix.Sparsity, cfg.Matrix.MagnitudeBound, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to seed particle %d: %w", i, err)
		}
		positions[i] = m
	}
	return NewSwarmFrom(cfg, eval, rng, positions)
}

// NewSwarmFrom creates a swarm from explicit starting positions with zero
// velocities. The number of positions must equal cfg.Pso.Particles.
func NewSwarmFrom(cfg *Config, eval rating.Evaluator, rng *rand.Rand, positions []*matrix.Matrix) (*Swarm, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("swarm: nil evaluator: %w", ErrInvalidConfig)
	}
	if len(positions) != cfg.Pso.Particles {
		return nil, fmt.Errorf("swarm: got %d positions, want %d: %w", len(positions), cfg.Pso.Particles, ErrInvalidConfig)
	}

	s := &Swarm{
		cfg:       cfg,
		eval:      eval,
		goal:      cfg.Goal(),
		rng:       rng,
		particles: make([]*Particle, len(positions)),
	}
	for i, pos := range positions {
		m, err := fitToConfig(cfg, pos)
		if err != nil {
			return nil, fmt.Errorf("swarm: position %d: %w", i, err)
		}
		vel, err := matrix.New(cfg.Matrix.Height, cfg.Matrix.Width, cfg.MaxVelocity())
		if err != nil {
			return nil, err
		}
		s.particles[i] = newParticle(m, vel)
	}
	return s, nil
}

// Mode returns ModePSO.
func (s *Swarm) Mode() Mode { return ModePSO }

// Phase returns the phase the swarm is in.
func (s *Swarm) Phase() PsoPhase { return s.phase }

// Generation counts completed moves.
func (s *Swarm) Generation() int { return s.iteration }

func (s *Swarm) log() *slog.Logger {
	if s.Logger == nil {
		return discardLogger
	}
	return s.Logger
}

func (s *Swarm) expect(phase PsoPhase, op string) error {
	if s.phase != phase {
		return fmt.Errorf("%s in phase %s, want %s: %w", op, s.phase, phase, ErrInvalidPhase)
	}
	return nil
}

// Score rates every particle position that is not cached.
func (s *Swarm) Score() error {
	if err := s.expect(PsoIdle, "score"); err != nil {
		return err
	}
	for i, pt := range s.particles {
		if err := pt.score(s.eval); err != nil {
			return fmt.Errorf("scoring particle %d in iteration %d: %w", i, s.iteration, err)
		}
	}
	s.phase = PsoScored
	return nil
}

// UpdateBests refreshes personal bests, then the global best from them.
func (s *Swarm) UpdateBests() error {
	if err := s.expect(PsoScored, "update bests"); err != nil {
		return err
	}
	for _, pt := range s.particles {
		pt.updateBest(s.goal)
	}

	improved := false
	for _, pt := range s.particles {
		if !pt.hasBest {
			continue
		}
		if s.hasGlobal && !s.goal.Better(pt.bestRating, s.globalRating) {
			continue
		}
		if s.globalBest == nil {
			s.globalBest = pt.best.Clone()
		} else {
			s.globalBest.CopyFrom(pt.best)
		}
		s.globalRating, s.hasGlobal = pt.bestRating, true
		improved = true
	}
	if improved {
		s.log().Debug("global best improved",
			slog.Int("iteration", s.iteration),
			slog.Float64("best", s.globalRating))
	}
	s.phase = PsoBestsUpdated
	return nil
}

// Move updates every velocity and position. Each particle reads only its own
// state and the global best fixed by UpdateBests, so no particle sees
// another's update.
func (s *Swarm) Move() error {
	if err := s.expect(PsoBestsUpdated, "move"); err != nil {
		return err
	}
	w, c1, c2 := s.cfg.Pso.Inertia, s.cfg.Pso.Cognition, s.cfg.Pso.Social
	h, wd := s.cfg.Matrix.Height, s.cfg.Matrix.Width

	for _, pt := range s.particles {
		moved := false
		for i := 0; i < h; i++ {
			for j := 0; j < wd; j++ {
				r1, r2 := s.rng.Float64(), s.rng.Float64()
				x := pt.position.At(i, j)
				v := w*pt.velocity.At(i, j) +
					c1*r1*(pt.best.At(i, j)-x) +
					c2*r2*(s.globalBest.At(i, j)-x)
				v = pt.velocity.Set(i, j, v)
				if pt.position.Set(i, j, x+v) != x {
					moved = true
				}
			}
		}
		if moved {
			pt.scored = false
		}
	}

	s.phase = PsoMoved
	s.iteration++
	s.phase = PsoIdle
	return nil
}

// Advance updates the bests and moves the swarm.
func (s *Swarm) Advance() error {
	if err := s.UpdateBests(); err != nil {
		return err
	}
	return s.Move()
}

// Step runs one full iteration.
func (s *Swarm) Step() error {
	if err := s.Score(); err != nil {
		return err
	}
	return s.Advance()
}

// Best returns a copy of the global best.
func (s *Swarm) Best() (Best, bool) {
	if !s.hasGlobal {
		return Best{}, false
	}
	return Best{Matrix: s.globalBest.Clone(), Rating: s.globalRating}, true
}

// Particles returns copies of every particle.
func (s *Swarm) Particles() []MemberSnapshot {
	out := make([]MemberSnapshot, len(s.particles))
	for i, pt := range s.particles {
		out[i] = pt.snapshot(i)
	}
	return out
}

// Particle returns the i-th particle. Its accessors return copies.
func (s *Swarm) Particle(i int) *Particle { return s.particles[i] }

// Snapshot returns a deep copy of the particles, the global best and
// statistics over the current ratings.
func (s *Swarm) Snapshot() BlockSnapshot {
	members := s.Particles()
	best, ok := s.Best()
	return BlockSnapshot{
		Mode:       ModePSO,
		Generation: s.iteration,
		Members:    members,
		Best:       best,
		HasBest:    ok,
		Stats:      Summarize(ratingsOf(members)),
	}
}
