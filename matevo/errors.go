package matevo

import (
	"errors"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
)

var (
	// ErrInvalidDimension is returned for non-positive matrix dimensions.
	ErrInvalidDimension = matrix.ErrInvalidDimension

	// ErrRateOutOfRange is returned when a recombination rate, mutation rate
	// or sparsity lies outside [0,1].
	ErrRateOutOfRange = errors.New("matevo: rate out of range")

	// ErrInvalidConfig covers every other rejected configuration value.
	ErrInvalidConfig = errors.New("matevo: invalid configuration")

	// ErrDegeneratePopulation marks a population with fewer than two distinct
	// parents. It is recoverable: recombination falls back to cloning.
	ErrDegeneratePopulation = errors.New("matevo: fewer than two distinct parents")

	// ErrInvalidPhase is returned when an engine phase is run out of order.
	ErrInvalidPhase = errors.New("matevo: phase called out of order")

	// ErrAllBlocksHalted is returned by Run once no block can advance.
	ErrAllBlocksHalted = errors.New("matevo: all blocks halted")
)
