// Package rating maps matrices to scalar fitness scores.
//
// An Evaluator must be deterministic and side-effect free: the same matrix
// always yields the same rating. RuleSet is the built-in Evaluator, a
// weighted combination of named matrix terms.
package rating

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
)

var (
	ErrUnknownTerm        = errors.New("rating: unknown term")
	ErrUnknownAggregation = errors.New("rating: unknown aggregation")
	ErrNonSquare          = errors.New("rating: term requires a square matrix")
	ErrNonFinite          = errors.New("rating: non-finite rating")
	ErrNoRules            = errors.New("rating: rule set is empty")
	ErrUnknownGoal        = errors.New("rating: unknown goal")
)

// Evaluator maps a matrix to its rating.
type Evaluator interface {
	Evaluate(m *matrix.Matrix) (float64, error)
}

// EvaluatorFunc adapts a plain function to the Evaluator interface.
type EvaluatorFunc func(m *matrix.Matrix) (float64, error)

func (f EvaluatorFunc) Evaluate(m *matrix.Matrix) (float64, error) { return f(m) }

// Goal fixes whether higher or lower ratings are better for a run.
type Goal int

const (
	Maximize Goal = iota
	Minimize
)

// ParseGoal accepts "max"/"maximize" and "min"/"minimize".
func ParseGoal(s string) (Goal, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "max", "maximize", "":
		return Maximize, nil
	case "min", "minimize":
		return Minimize, nil
	}
	return Maximize, fmt.Errorf("%q: %w", s, ErrUnknownGoal)
}

func (g Goal) String() string {
	if g == Minimize {
		return "min"
	}
	return "max"
}

// Better reports whether a is strictly better than b.
func (g Goal) Better(a, b float64) bool {
	if g == Minimize {
		return a < b
	}
	return a > b
}

// Worst returns the rating every real rating is better than.
func (g Goal) Worst() float64 {
	if g == Minimize {
		return math.Inf(1)
	}
	return math.Inf(-1)
}

// Improvement returns how much next improves on prev; negative when worse.
func (g Goal) Improvement(prev, next float64) float64 {
	if g == Minimize {
		return prev - next
	}
	return next - prev
}
