package matevo

import (
	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// StopCondition decides after each generation whether a run is finished.
// Stopping policy belongs to the caller; these are ready-made conditions.
type StopCondition interface {
	Done(generation int, best Best) bool
}

// StopFunc adapts a plain function to StopCondition.
type StopFunc func(generation int, best Best) bool

// Done calls f.
func (f StopFunc) Done(generation int, best Best) bool { return f(generation, best) }

// MaxGenerations stops after n generations. n <= 0 never stops.
func MaxGenerations(n int) StopCondition {
	return StopFunc(func(generation int, _ Best) bool {
		return n > 0 && generation >= n
	})
}

// FitnessThreshold stops once the global best reaches threshold.
func FitnessThreshold(goal rating.Goal, threshold float64) StopCondition {
	return StopFunc(func(_ int, best Best) bool {
		return best.Rating == threshold || goal.Better(best.Rating, threshold)
	})
}

// AnyOf stops as soon as one of conds does. Every condition sees every
// generation, so stateful conditions keep their history.
func AnyOf(conds ...StopCondition) StopCondition {
	return StopFunc(func(generation int, best Best) bool {
		done := false
		for _, c := range conds {
			if c.Done(generation, best) {
				done = true
			}
		}
		return done
	})
}

// Convergence stops when the global best improved by no more than Threshold
// over the last Window generations.
type Convergence struct {
	Goal      rating.Goal
	Window    int
	Threshold float64

	history []float64
}

// NewConvergence creates a convergence condition. window must be positive.
func NewConvergence(goal rating.Goal, window int, threshold float64) *Convergence {
	return &Convergence{Goal: goal, Window: window, Threshold: threshold}
}

// Done records best and reports whether the improvement over the last
// Window generations is at most Threshold.
func (c *Convergence) Done(_ int, best Best) bool {
	c.history = append(c.history, best.Rating)
	if c.Window <= 0 || len(c.history) <= c.Window {
		return false
	}
	c.history = c.history[len(c.history)-c.Window-1:]
	return c.Goal.Improvement(c.history[0], c.history[c.Window]) <= c.Threshold
}

// StopCondition builds the stopping policy described by the [Run] section:
// max_generations, fitness_threshold unless no_fitness_termination is set,
// and convergence_window/convergence_threshold when the window is positive.
func (c *Config) StopCondition() StopCondition {
	conds := []StopCondition{MaxGenerations(c.Run.MaxGenerations)}
	if !c.Run.NoFitnessTermination {
		conds = append(conds, FitnessThreshold(c.Goal(), c.Run.FitnessThreshold))
	}
	if c.Run.ConvergenceWindow > 0 {
		conds = append(conds, NewConvergence(c.Goal(), c.Run.ConvergenceWindow, c.Run.ConvergenceThreshold))
	}
	return AnyOf(conds...)
}
