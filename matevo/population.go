package matevo

import (
	"fmt"
	"log/slog"
	"math/rand"
	"sort"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// EvoPhase is the position of a Population inside a generation.
type EvoPhase int

const (
	EvoIdle EvoPhase = iota
	EvoScored
	EvoRecombined
	EvoMutated
	EvoSelected
)

var evoPhaseNames = [...]string{"idle", "scored", "recombined", "mutated", "selected"}

func (p EvoPhase) String() string {
	if p < 0 || int(p) >= len(evoPhaseNames) {
		return fmt.Sprintf("EvoPhase(%d)", int(p))
	}
	return evoPhaseNames[p]
}

// Population is the EVO engine of one block: a fixed number of parents and
// child slots evolved by recombination, mutation and elitist truncation.
type Population struct {
	// Logger receives per-generation events. Nil discards them.
	Logger *slog.Logger

	cfg  *Config
	eval rating.Evaluator
	goal rating.Goal
	rng  *rand.Rand

	// Sized once from the config, never grown.
	parents  []*Individual
	children []*Individual
	union    []*Individual

	phase      EvoPhase
	generation int
	degenerate int
}

// NewPopulation creates a population of randomly seeded parents.
func NewPopulation(cfg *Config, eval rating.Evaluator, rng *rand.Rand) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	seeds := make([]*matrix.Matrix, cfg.Evo.Parents)
	for i := range seeds {
		m, err := matrix.Random(cfg.Matrix.Height, cfg.Matrix.Width, cfg.Matrix.Sparsity, cfg.Matrix.MagnitudeBound, rng)
		if err != nil {
			return nil, fmt.Errorf("failed to seed parent %d: %w", i, err)
		}
		seeds[i] = m
	}
	return NewPopulationFrom(cfg, eval, rng, seeds)
}

// NewPopulationFrom creates a population from explicit parent matrices. The
// number of seeds must equal cfg.Evo.Parents. Seeds are copied and clamped
// to the configured bound.
func NewPopulationFrom(cfg *Config, eval rating.Evaluator, rng *rand.Rand, seeds []*matrix.Matrix) (*Population, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("population: nil evaluator: %w", ErrInvalidConfig)
	}
	if len(seeds) != cfg.Evo.Parents {
		return nil, fmt.Errorf("population: got %d seed matrices, want %d: %w", len(seeds), cfg.Evo.Parents, ErrInvalidConfig)
	}

	p := &Population{
		cfg:      cfg,
		eval:     eval,
		goal:     cfg.Goal(),
		rng:      rng,
		parents:  make([]*Individual, cfg.Evo.Parents),
		children: make([]*Individual, cfg.Evo.Children),
		union:    make([]*Individual, 0, cfg.Evo.Parents+cfg.Evo.Children),
	}
	for i, seed := range seeds {
		m, err := fitToConfig(cfg, seed)
		if err != nil {
			return nil, fmt.Errorf("population: seed %d: %w", i, err)
		}
		p.parents[i] = newIndividual(m, false)
	}
	return p, nil
}

// fitToConfig copies seed into a matrix carrying the configured bound.
func fitToConfig(cfg *Config, seed *matrix.Matrix) (*matrix.Matrix, error) {
	h, w := seed.Dims()
	if h != cfg.Matrix.Height || w != cfg.Matrix.Width {
		return nil, fmt.Errorf("%dx%d, want %dx%d: %w", h, w, cfg.Matrix.Height, cfg.Matrix.Width, ErrInvalidDimension)
	}
	m, err := matrix.New(h, w, cfg.Matrix.MagnitudeBound)
	if err != nil {
		return nil, err
	}
	m.CopyFrom(seed)
	return m, nil
}

// Mode returns ModeEVO.
func (p *Population) Mode() Mode { return ModeEVO }

// Phase returns the phase the population is in.
func (p *Population) Phase() EvoPhase { return p.phase }

// Generation counts completed selections.
func (p *Population) Generation() int { return p.generation }

// Degenerate counts the generations whose recombination fell back to
// cloning because fewer than two distinct parents existed.
func (p *Population) Degenerate() int { return p.degenerate }

func (p *Population) log() *slog.Logger {
	if p.Logger == nil {
		return discardLogger
	}
	return p.Logger
}

func (p *Population) expect(phase EvoPhase, op string) error {
	if p.phase != phase {
		return fmt.Errorf("%s in phase %s, want %s: %w", op, p.phase, phase, ErrInvalidPhase)
	}
	return nil
}

// Score rates every parent whose rating is not cached.
func (p *Population) Score() error {
	if err := p.expect(EvoIdle, "score"); err != nil {
		return err
	}
	for i, parent := range p.parents {
		if err := parent.score(p.eval); err != nil {
			return fmt.Errorf("scoring parent %d in generation %d: %w", i, p.generation, err)
		}
	}
	p.phase = EvoScored
	return nil
}

// Recombine fills every child slot. Each child is the uniform crossover of
// two distinct parents with probability RecombRate, otherwise a clone of the
// fitter of the two (ties go to the lower index). A degenerate population
// clones a random parent instead.
func (p *Population) Recombine() error {
	if err := p.expect(EvoScored, "recombine"); err != nil {
		return err
	}

	degenerate := len(p.parents) < 2 || !distinctParents(p.parents)
	if degenerate && len(p.children) > 0 {
		p.degenerate++
		p.log().Warn("recombination falls back to cloning",
			slog.Int("generation", p.generation),
			slog.String("reason", ErrDegeneratePopulation.Error()))
	}

	for c := range p.children {
		var m *matrix.Matrix
		if degenerate {
			m = p.parents[p.rng.Intn(len(p.parents))].matrix.Clone()
		} else {
			i, j := pickPair(len(p.parents), p.rng)
			if p.rng.Float64() < p.cfg.Evo.RecombRate {
				m = Crossover(p.parents[i].matrix, p.parents[j].matrix, p.rng)
			} else {
				m = p.parents[p.fitter(i, j)].matrix.Clone()
			}
		}
		p.children[c] = newIndividual(m, true)
	}
	p.phase = EvoRecombined
	return nil
}

func (p *Population) fitter(i, j int) int {
	ri, rj := p.parents[i].rating, p.parents[j].rating
	if p.goal.Better(rj, ri) || (rj == ri && j < i) {
		return j
	}
	return i
}

// Mutate perturbs the children's cells with probability MutRate each, keeping
// the nonzero count inside the configured sparsity band.
func (p *Population) Mutate() error {
	if err := p.expect(EvoRecombined, "mutate"); err != nil {
		return err
	}
	lo, hi := p.cfg.Matrix.NonZeroBand()
	step := p.cfg.StepParam()
	for _, child := range p.children {
		if Mutate(child.matrix, p.cfg.Evo.MutRate, step, lo, hi, p.rng) > 0 {
			child.invalidate()
		}
	}
	p.phase = EvoMutated
	return nil
}

// Select rates the children and keeps the best Parents individuals of
// parents and children together. The sort is stable over parents followed by
// children, so ties keep the lower index.
func (p *Population) Select() error {
	if err := p.expect(EvoMutated, "select"); err != nil {
		return err
	}
	for i, child := range p.children {
		if err := child.score(p.eval); err != nil {
			return fmt.Errorf("scoring child %d in generation %d: %w", i, p.generation, err)
		}
	}
	p.phase = EvoSelected

	p.union = append(p.union[:0], p.parents...)
	p.union = append(p.union, p.children...)
	sort.SliceStable(p.union, func(a, b int) bool {
		return p.goal.Better(p.union[a].rating, p.union[b].rating)
	})

	promoted := 0
	for i := range p.parents {
		p.parents[i] = p.union[i]
		if p.parents[i].child {
			p.parents[i].child = false
			promoted++
		}
	}
	for i := range p.children {
		p.children[i] = nil
	}
	for i := range p.union {
		p.union[i] = nil
	}
	p.union = p.union[:0]

	p.generation++
	p.phase = EvoIdle
	p.log().Debug("generation complete",
		slog.Int("generation", p.generation),
		slog.Int("promoted", promoted),
		slog.Float64("best", p.parents[0].rating))
	return nil
}

// Advance runs recombination, mutation and selection.
func (p *Population) Advance() error {
	if err := p.Recombine(); err != nil {
		return err
	}
	if err := p.Mutate(); err != nil {
		return err
	}
	return p.Select()
}

// Step runs one full generation.
func (p *Population) Step() error {
	if err := p.Score(); err != nil {
		return err
	}
	return p.Advance()
}

// Best returns a copy of the best rated parent.
func (p *Population) Best() (Best, bool) {
	var best *Individual
	for _, parent := range p.parents {
		if parent.scored && (best == nil || p.goal.Better(parent.rating, best.rating)) {
			best = parent
		}
	}
	if best == nil {
		return Best{}, false
	}
	return Best{Matrix: best.matrix.Clone(), Rating: best.rating}, true
}

// Parents returns copies of the parents in rank order after a selection.
func (p *Population) Parents() []MemberSnapshot {
	out := make([]MemberSnapshot, len(p.parents))
	for i, parent := range p.parents {
		out[i] = parent.snapshot(i)
	}
	return out
}

// Children returns copies of the children of the current generation. It is
// empty outside of the recombined and mutated phases.
func (p *Population) Children() []MemberSnapshot {
	var out []MemberSnapshot
	for i, child := range p.children {
		if child != nil {
			out = append(out, child.snapshot(i))
		}
	}
	return out
}

// Snapshot returns a deep copy of the parents, children and statistics.
func (p *Population) Snapshot() BlockSnapshot {
	members := p.Parents()
	best, ok := p.Best()
	return BlockSnapshot{
		Mode:       ModeEVO,
		Generation: p.generation,
		Members:    members,
		Children:   p.Children(),
		Best:       best,
		HasBest:    ok,
		Stats:      Summarize(ratingsOf(members)),
		Degenerate: p.degenerate,
	}
}
