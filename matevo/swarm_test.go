package matevo_test

import (
	"errors"
	"math"
	"testing"

	"github.com/baldhumanity/matrix-evo/matevo"
	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwarm_SingleParticleAtRest(t *testing.T) {
	cfg := smallConfig()
	cfg.Run.Engine = "pso"
	cfg.Pso.Particles = 1

	start := mustRows(t, [][]float64{{1, 0, -2}, {0, 3, 0}, {4, 0, 0}}, 10)
	s, err := matevo.NewSwarmFrom(cfg, sumEvaluator, newRand(1), []*matrix.Matrix{start})
	require.NoError(t, err)

	require.NoError(t, s.Step())
	pt := s.Particle(0)
	assert.True(t, start.Equal(pt.Position()))
	zero, err := matrix.New(3, 3, 10)
	require.NoError(t, err)
	assert.True(t, zero.Equal(pt.Velocity()))

	r, scored := pt.Rating()
	assert.True(t, scored, "an unmoved particle keeps its rating")
	assert.Equal(t, 6.0, r)

	best, ok := s.Best()
	require.True(t, ok)
	assert.True(t, start.Equal(best.Matrix))
	assert.Equal(t, 6.0, best.Rating)
}

func TestSwarm_BestInvariants(t *testing.T) {
	for _, goal := range []string{"max", "min"} {
		cfg := smallConfig()
		cfg.Run.Engine = "pso"
		cfg.Run.FitnessCriterion = goal
		cfg.Pso.Particles = 8
		cfg.Pso.MaxVelocity = 2
		g := cfg.Goal()

		s, err := matevo.NewSwarm(cfg, sumEvaluator, newRand(5))
		require.NoError(t, err)

		prevPersonal := make([]float64, cfg.Pso.Particles)
		for i := range prevPersonal {
			prevPersonal[i] = g.Worst()
		}
		prevGlobal := g.Worst()

		for it := 0; it < 30; it++ {
			require.NoError(t, s.Score())
			require.NoError(t, s.UpdateBests())
			assert.Equal(t, matevo.PsoBestsUpdated, s.Phase())

			global, ok := s.Best()
			require.True(t, ok)
			assert.False(t, g.Better(prevGlobal, global.Rating), "%s: global best got worse", goal)
			prevGlobal = global.Rating

			for i, m := range s.Particles() {
				require.True(t, m.HasBest)
				assert.False(t, g.Better(prevPersonal[i], m.BestRating), "%s: personal best %d got worse", goal, i)
				prevPersonal[i] = m.BestRating
				assert.False(t, g.Better(m.Rating, global.Rating), "particle %d beats the global best", i)
				assert.False(t, g.Better(m.BestRating, global.Rating))
			}

			require.NoError(t, s.Move())
			for _, m := range s.Particles() {
				requireBounded(t, m.Matrix, cfg.Matrix.MagnitudeBound)
				requireBounded(t, m.Velocity, 2)
			}
		}
		assert.Equal(t, 30, s.Generation())
		assert.Len(t, s.Particles(), cfg.Pso.Particles)
	}
}

func TestSwarm_ImprovesOnSum(t *testing.T) {
	cfg := smallConfig()
	cfg.Run.Engine = "pso"
	cfg.Pso.Particles = 10

	s, err := matevo.NewSwarm(cfg, sumEvaluator, newRand(2))
	require.NoError(t, err)
	require.NoError(t, s.Step())
	first, _ := s.Best()
	for i := 0; i < 50; i++ {
		require.NoError(t, s.Step())
	}
	last, _ := s.Best()
	assert.Greater(t, last.Rating, first.Rating)
	assert.LessOrEqual(t, last.Rating, 90.0)
}

func TestSwarm_PhaseOrder(t *testing.T) {
	cfg := smallConfig()
	s, err := matevo.NewSwarm(cfg, sumEvaluator, newRand(1))
	require.NoError(t, err)

	require.ErrorIs(t, s.UpdateBests(), matevo.ErrInvalidPhase)
	require.ErrorIs(t, s.Move(), matevo.ErrInvalidPhase)
	require.NoError(t, s.Score())
	require.ErrorIs(t, s.Move(), matevo.ErrInvalidPhase)
	require.NoError(t, s.Advance())
	assert.Equal(t, matevo.PsoIdle, s.Phase())
}

func TestSwarm_EvaluatorErrorPropagates(t *testing.T) {
	boom := errors.New("no rating")
	ev := rating.EvaluatorFunc(func(*matrix.Matrix) (float64, error) { return 0, boom })
	s, err := matevo.NewSwarm(smallConfig(), ev, newRand(1))
	require.NoError(t, err)
	require.ErrorIs(t, s.Step(), boom)
	_, ok := s.Best()
	assert.False(t, ok)
}

func TestNewSwarmFrom_Validation(t *testing.T) {
	cfg := smallConfig()
	_, err := matevo.NewSwarmFrom(cfg, sumEvaluator, newRand(1), nil)
	require.ErrorIs(t, err, matevo.ErrInvalidConfig)
	_, err = matevo.NewSwarm(cfg, nil, newRand(1))
	require.ErrorIs(t, err, matevo.ErrInvalidConfig)

	cfg.Pso.Inertia = math.Inf(1)
	_, err = matevo.NewSwarm(cfg, sumEvaluator, newRand(1))
	require.ErrorIs(t, err, matevo.ErrInvalidConfig)
}

func TestParticle_PersonalBestIsACopy(t *testing.T) {
	cfg := smallConfig()
	cfg.Pso.Particles = 2
	s, err := matevo.NewSwarm(cfg, sumEvaluator, newRand(8))
	require.NoError(t, err)
	require.NoError(t, s.Step())

	best, r, ok := s.Particle(0).PersonalBest()
	require.True(t, ok)
	best.Set(0, 0, 9.87654321)
	again, r2, _ := s.Particle(0).PersonalBest()
	assert.Equal(t, r, r2)
	assert.NotEqual(t, 9.87654321, again.At(0, 0))
}
