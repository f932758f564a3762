package matevo_test

import (
	"testing"

	"github.com/baldhumanity/matrix-evo/matevo"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
	"github.com/stretchr/testify/assert"
)

func TestMaxGenerations(t *testing.T) {
	stop := matevo.MaxGenerations(3)
	assert.False(t, stop.Done(2, matevo.Best{}))
	assert.True(t, stop.Done(3, matevo.Best{}))
	assert.False(t, matevo.MaxGenerations(0).Done(1000, matevo.Best{}))
}

func TestFitnessThreshold(t *testing.T) {
	stop := matevo.FitnessThreshold(rating.Maximize, 10)
	assert.False(t, stop.Done(1, matevo.Best{Rating: 9}))
	assert.True(t, stop.Done(1, matevo.Best{Rating: 10}))
	assert.True(t, stop.Done(1, matevo.Best{Rating: 11}))

	stop = matevo.FitnessThreshold(rating.Minimize, 10)
	assert.True(t, stop.Done(1, matevo.Best{Rating: 9}))
	assert.False(t, stop.Done(1, matevo.Best{Rating: 11}))
}

func TestConvergence(t *testing.T) {
	c := matevo.NewConvergence(rating.Maximize, 2, 0.5)
	ratings := []float64{1, 2, 3, 3.2, 3.4, 3.5}
	var done []bool
	for i, r := range ratings {
		done = append(done, c.Done(i+1, matevo.Best{Rating: r}))
	}
	// windows: 1->3 (2), 2->3.2 (1.2), 3->3.4 (0.4 stop), 3.2->3.5 (0.3 stop)
	assert.Equal(t, []bool{false, false, false, false, true, true}, done)
}

func TestConvergence_Minimize(t *testing.T) {
	c := matevo.NewConvergence(rating.Minimize, 1, 0)
	assert.False(t, c.Done(1, matevo.Best{Rating: 5}))
	assert.False(t, c.Done(2, matevo.Best{Rating: 4}))
	assert.True(t, c.Done(3, matevo.Best{Rating: 4}))
}

func TestAnyOf_FeedsEveryCondition(t *testing.T) {
	c := matevo.NewConvergence(rating.Maximize, 1, 0)
	stop := matevo.AnyOf(matevo.MaxGenerations(1), c)
	assert.True(t, stop.Done(1, matevo.Best{Rating: 1}))
	// the convergence condition saw generation 1 even though MaxGenerations fired
	assert.True(t, c.Done(2, matevo.Best{Rating: 1}))
}

func TestConfig_StopCondition(t *testing.T) {
	cfg := smallConfig()
	cfg.Run.MaxGenerations = 100
	cfg.Run.NoFitnessTermination = false
	cfg.Run.FitnessThreshold = 50
	stop := cfg.StopCondition()
	assert.False(t, stop.Done(1, matevo.Best{Rating: 10}))
	assert.True(t, stop.Done(2, matevo.Best{Rating: 60}))
	assert.True(t, stop.Done(100, matevo.Best{Rating: 10}))

	cfg.Run.NoFitnessTermination = true
	cfg.Run.ConvergenceWindow = 1
	stop = cfg.StopCondition()
	assert.False(t, stop.Done(1, matevo.Best{Rating: 60}))
	assert.True(t, stop.Done(2, matevo.Best{Rating: 60}))
}
