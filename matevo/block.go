package matevo

import (
	"fmt"
	"log/slog"
	"math/rand"

	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// Block is an isolated island: one engine, its own random stream and its
// own failure state. Blocks never share matrices or randomness.
type Block struct {
	ID     int
	engine Engine
	halted error
	logger *slog.Logger
}

// NewBlock creates block id running the configured engine. The random
// stream is seeded with cfg.Run.Seed + id, so a run is reproducible
// regardless of how blocks are scheduled.
func NewBlock(id int, cfg *Config, eval rating.Evaluator, logger *slog.Logger) (*Block, error) {
	if logger == nil {
		logger = discardLogger
	}
	logger = logger.With(slog.Int("block", id))
	rng := rand.New(rand.NewSource(cfg.Run.Seed + int64(id)))

	b := &Block{ID: id, logger: logger}
	switch cfg.Mode() {
	case ModePSO:
		s, err := NewSwarm(cfg, eval, rng)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", id, err)
		}
		s.Logger = logger
		b.engine = s
	default:
		p, err := NewPopulation(cfg, eval, rng)
		if err != nil {
			return nil, fmt.Errorf("block %d: %w", id, err)
		}
		p.Logger = logger
		b.engine = p
	}
	return b, nil
}

// Engine returns the block's population or swarm.
func (b *Block) Engine() Engine { return b.engine }

// Halted returns the error that stopped the block, or nil.
func (b *Block) Halted() error { return b.halted }

// Step advances the block by one generation. The first error halts the
// block for good; later calls return the same error.
func (b *Block) Step() error {
	if b.halted != nil {
		return b.halted
	}
	err := b.engine.Score()
	if err == nil {
		err = b.engine.Advance()
	}
	if err != nil {
		b.halted = fmt.Errorf("block %d: %w", b.ID, err)
		b.logger.Error("block halted", slog.String("error", err.Error()))
		return b.halted
	}
	return nil
}

// Best returns a copy of the block's best solution.
func (b *Block) Best() (Best, bool) {
	best, ok := b.engine.Best()
	best.Block = b.ID
	return best, ok
}

// Snapshot returns a read-only copy of the block.
func (b *Block) Snapshot() BlockSnapshot {
	s := b.engine.Snapshot()
	s.Block = b.ID
	s.Best.Block = b.ID
	s.Halted = b.halted
	return s
}
