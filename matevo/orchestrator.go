package matevo

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/sourcegraph/conc/pool"

	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// Orchestrator drives a fixed set of independent blocks one generation at a
// time and tracks the best solution of each block and of the whole run.
type Orchestrator struct {
	cfg        *Config
	eval       rating.Evaluator
	goal       rating.Goal
	blocks     []*Block
	logger     *slog.Logger
	workers    int
	generation int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger. The default discards everything.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithWorkers caps how many blocks are stepped at the same time,
// overriding cfg.Run.Workers.
func WithWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n > 0 {
			o.workers = n
		}
	}
}

// NewOrchestrator validates cfg, copies it and creates cfg.Run.Blocks
// blocks that share eval read-only.
func NewOrchestrator(cfg *Config, eval rating.Evaluator, opts ...Option) (*Orchestrator, error) {
	if cfg == nil {
		return nil, fmt.Errorf("orchestrator: nil config: %w", ErrInvalidConfig)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if eval == nil {
		return nil, fmt.Errorf("orchestrator: nil evaluator: %w", ErrInvalidConfig)
	}

	cfg = cfg.clone()
	o := &Orchestrator{
		cfg:     cfg,
		eval:    eval,
		goal:    cfg.Goal(),
		logger:  discardLogger,
		workers: cfg.Workers(),
	}
	for _, opt := range opts {
		opt(o)
	}
	o.logger = o.logger.With(slog.String("component", "orchestrator"))

	o.blocks = make([]*Block, cfg.Run.Blocks)
	for id := range o.blocks {
		b, err := NewBlock(id, cfg, eval, o.logger)
		if err != nil {
			return nil, err
		}
		o.blocks[id] = b
	}
	o.logger.Info("orchestrator ready",
		slog.String("engine", cfg.Mode().String()),
		slog.Int("blocks", len(o.blocks)),
		slog.Int("workers", o.workers),
		slog.Int64("seed", cfg.Run.Seed))
	return o, nil
}

// Config returns a copy of the run configuration.
func (o *Orchestrator) Config() *Config { return o.cfg.clone() }

// Evaluator returns the shared evaluator.
func (o *Orchestrator) Evaluator() rating.Evaluator { return o.eval }

// Generation counts completed StepAll calls.
func (o *Orchestrator) Generation() int { return o.generation }

// Blocks returns the blocks by id.
func (o *Orchestrator) Blocks() []*Block {
	out := make([]*Block, len(o.blocks))
	copy(out, o.blocks)
	return out
}

// StepAll advances every running block by exactly one generation, in
// parallel. A failing block is halted and its error returned joined with
// the others; the remaining blocks still complete their step. A cancelled
// context prevents the step from starting.
func (o *Orchestrator) StepAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	start := time.Now()
	p := pool.New().WithErrors().WithMaxGoroutines(o.workers)
	for _, b := range o.blocks {
		if b.Halted() != nil {
			continue
		}
		p.Go(b.Step)
	}
	err := p.Wait()
	o.generation++

	attrs := []any{
		slog.Int("generation", o.generation),
		slog.Duration("duration", time.Since(start)),
	}
	if best, ok := o.GlobalBest(); ok {
		attrs = append(attrs, slog.Int("best_block", best.Block), slog.Float64("best", best.Rating))
	}
	o.logger.Debug("generation complete", attrs...)
	return err
}

// Run steps until stop reports done, the context is cancelled or every block
// has halted. A nil stop uses Config.StopCondition. Cancellation is only
// observed between generations. It returns the global best found so far.
func (o *Orchestrator) Run(ctx context.Context, stop StopCondition) (Best, error) {
	if stop == nil {
		stop = o.cfg.StopCondition()
	}
	for {
		if err := ctx.Err(); err != nil {
			best, _ := o.GlobalBest()
			return best, err
		}
		if err := o.StepAll(ctx); err != nil {
			o.logger.Warn("blocks halted", slog.Int("generation", o.generation), slog.String("error", err.Error()))
		}
		best, ok := o.GlobalBest()
		if o.running() == 0 {
			return best, fmt.Errorf("after generation %d: %w", o.generation, ErrAllBlocksHalted)
		}
		if ok && stop.Done(o.generation, best) {
			o.logger.Info("run finished",
				slog.Int("generation", o.generation),
				slog.Int("best_block", best.Block),
				slog.Float64("best", best.Rating))
			return best, nil
		}
	}
}

func (o *Orchestrator) running() int {
	n := 0
	for _, b := range o.blocks {
		if b.Halted() == nil {
			n++
		}
	}
	return n
}

// BestPerBlock maps block ids to copies of their best solutions. Blocks
// that never rated anything are absent.
func (o *Orchestrator) BestPerBlock() map[int]Best {
	out := make(map[int]Best, len(o.blocks))
	for _, b := range o.blocks {
		if best, ok := b.Best(); ok {
			out[b.ID] = best
		}
	}
	return out
}

// GlobalBest returns the best solution across all blocks. Ties go to the
// lower block id.
func (o *Orchestrator) GlobalBest() (Best, bool) {
	var best Best
	found := false
	for _, b := range o.blocks {
		cand, ok := b.Best()
		if !ok {
			continue
		}
		if !found || o.goal.Better(cand.Rating, best.Rating) {
			best, found = cand, true
		}
	}
	return best, found
}

// Snapshots returns read-only copies of every block.
func (o *Orchestrator) Snapshots() []BlockSnapshot {
	out := make([]BlockSnapshot, len(o.blocks))
	for i, b := range o.blocks {
		out[i] = b.Snapshot()
	}
	return out
}

// Halted maps the ids of halted blocks to their errors.
func (o *Orchestrator) Halted() map[int]error {
	out := map[int]error{}
	for _, b := range o.blocks {
		if err := b.Halted(); err != nil {
			out[b.ID] = err
		}
	}
	return out
}
