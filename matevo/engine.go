package matevo

import (
	"fmt"
	"strings"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
)

// Mode selects the optimization engine of a run.
type Mode int

const (
	ModeEVO Mode = iota
	ModePSO
)

// ParseMode accepts "evo" and "pso".
func ParseMode(s string) (Mode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "evo", "":
		return ModeEVO, nil
	case "pso":
		return ModePSO, nil
	}
	return ModeEVO, fmt.Errorf("unknown engine %q: %w", s, ErrInvalidConfig)
}

func (m Mode) String() string {
	if m == ModePSO {
		return "pso"
	}
	return "evo"
}

// Engine is the capability set shared by Population and Swarm. A step is
// Score followed by Advance.
type Engine interface {
	Mode() Mode
	// Score rates every member whose rating is not cached.
	Score() error
	// Advance runs the remaining phases of one generation or iteration.
	Advance() error
	// Generation counts completed steps.
	Generation() int
	// Best returns a copy of the best solution seen by the engine.
	Best() (Best, bool)
	Snapshot() BlockSnapshot
}

// Best is a solution and its rating.
type Best struct {
	Block  int
	Matrix *matrix.Matrix
	Rating float64
}

var (
	_ Engine = (*Population)(nil)
	_ Engine = (*Swarm)(nil)
)
