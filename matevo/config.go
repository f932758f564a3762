package matevo

import (
	"fmt"
	"math"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/ini.v1"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
	"github.com/baldhumanity/matrix-evo/matevo/rating"
)

// Config stores every parameter of a run. It is fixed once handed to an
// Orchestrator, which keeps its own copy.
type Config struct {
	Run    RunConfig
	Matrix MatrixConfig
	Evo    EvoConfig
	Pso    PsoConfig
	Rules  RulesConfig
}

// RunConfig holds the block layout and stopping parameters.
type RunConfig struct {
	Engine           string `ini:"engine"` // "evo" or "pso"
	Blocks           int    `ini:"blocks"`
	Seed             int64  `ini:"seed"`
	FitnessCriterion string `ini:"fitness_criterion"` // "max" or "min"
	Workers          int    `ini:"workers"`           // 0 means GOMAXPROCS

	MaxGenerations       int     `ini:"max_generations"`
	FitnessThreshold     float64 `ini:"fitness_threshold"`
	NoFitnessTermination bool    `ini:"no_fitness_termination"`
	ConvergenceWindow    int     `ini:"convergence_window"` // 0 disables
	ConvergenceThreshold float64 `ini:"convergence_threshold"`
}

// MatrixConfig holds the shape and value constraints shared by all matrices.
type MatrixConfig struct {
	Height            int     `ini:"height"`
	Width             int     `ini:"width"`
	Sparsity          float64 `ini:"sparsity"`           // fraction of nonzero cells
	SparsityTolerance int     `ini:"sparsity_tolerance"` // allowed drift in cells during mutation
	MagnitudeBound    float64 `ini:"magnitude_bound"`
	StepFraction      float64 `ini:"step_fraction"` // SPARAM = MagnitudeBound * StepFraction
}

// EvoConfig holds the evolutionary engine parameters.
type EvoConfig struct {
	Parents    int     `ini:"parents"`
	Children   int     `ini:"children"`
	RecombRate float64 `ini:"recomb_rate"`
	MutRate    float64 `ini:"mut_rate"`
}

// PsoConfig holds the particle swarm parameters.
type PsoConfig struct {
	Particles   int     `ini:"particles"`
	Inertia     float64 `ini:"inertia"`
	Cognition   float64 `ini:"cognition"`
	Social      float64 `ini:"social"`
	MaxVelocity float64 `ini:"max_velocity"` // 0 means MagnitudeBound
}

// RulesConfig describes the built-in rule set. Terms, Weights and Targets
// are parallel lists; a target of "none" leaves the rule untargeted.
type RulesConfig struct {
	Aggregation string    `ini:"aggregation"`
	Terms       []string  `ini:"terms" delim:" "`
	Weights     []float64 `ini:"weights" delim:" "`
	Targets     []string  `ini:"targets" delim:" "`
}

// Clerc constriction parameters for c1 = c2 = 2.05.
const (
	DefaultInertia   = 0.7298437881283576
	DefaultCognition = 1.496179765663133
	DefaultSocial    = 1.496179765663133
)

// DefaultConfig returns the reference parameters: 8 blocks of 32 parents and
// 6 children over 5x5 matrices bounded by 1000 with 30% of cells set.
func DefaultConfig() *Config {
	return &Config{
		Run: RunConfig{
			Engine:               "evo",
			Blocks:               8,
			Seed:                 1,
			FitnessCriterion:     "max",
			MaxGenerations:       1000,
			NoFitnessTermination: true,
		},
		Matrix: MatrixConfig{
			Height:            5,
			Width:             5,
			Sparsity:          0.3,
			SparsityTolerance: 1,
			MagnitudeBound:    1000,
			StepFraction:      0.01,
		},
		Evo: EvoConfig{
			Parents:    32,
			Children:   6,
			RecombRate: 0.7,
			MutRate:    0.3,
		},
		Pso: PsoConfig{
			Particles: 32,
			Inertia:   DefaultInertia,
			Cognition: DefaultCognition,
			Social:    DefaultSocial,
		},
		Rules: RulesConfig{
			Aggregation: "sum",
			Terms:       []string{"sum"},
			Weights:     []float64{1},
		},
	}
}

// LoadConfig loads an INI file on top of DefaultConfig and validates it.
// Missing keys keep their default value.
func LoadConfig(filePath string) (*Config, error) {
	file, err := ini.Load(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to load config file '%s': %w", filePath, err)
	}

	config := DefaultConfig()
	sections := []struct {
		name string
		dst  interface{}
	}{
		{"Run", &config.Run},
		{"Matrix", &config.Matrix},
		{"Evo", &config.Evo},
		{"Pso", &config.Pso},
		{"Rules", &config.Rules},
	}
	for _, s := range sections {
		if !file.HasSection(s.name) {
			continue
		}
		if err := file.Section(s.name).MapTo(s.dst); err != nil {
			return nil, fmt.Errorf("failed to map [%s] section: %w", s.name, err)
		}
	}

	config.Run.Engine = cleanIniString(config.Run.Engine)
	config.Run.FitnessCriterion = cleanIniString(config.Run.FitnessCriterion)
	config.Rules.Aggregation = cleanIniString(config.Rules.Aggregation)

	if err := config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Validate checks every parameter. Dimension and rate errors match
// ErrInvalidDimension and ErrRateOutOfRange; everything else matches
// ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Matrix.Height <= 0 || c.Matrix.Width <= 0 {
		return fmt.Errorf("config error: matrix %dx%d: %w", c.Matrix.Height, c.Matrix.Width, ErrInvalidDimension)
	}

	rates := []struct {
		name string
		v    float64
	}{
		{"recomb_rate", c.Evo.RecombRate},
		{"mut_rate", c.Evo.MutRate},
		{"sparsity", c.Matrix.Sparsity},
	}
	for _, r := range rates {
		if !(r.v >= 0 && r.v <= 1) {
			return fmt.Errorf("config error: %s = %v must be between 0 and 1: %w", r.name, r.v, ErrRateOutOfRange)
		}
	}

	if _, err := ParseMode(c.Run.Engine); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if _, err := rating.ParseGoal(c.Run.FitnessCriterion); err != nil {
		return fmt.Errorf("config error: %v: %w", err, ErrInvalidConfig)
	}

	checks := []struct {
		ok  bool
		msg string
	}{
		{c.Run.Blocks > 0, "blocks must be positive"},
		{c.Run.Workers >= 0, "workers cannot be negative"},
		{c.Run.MaxGenerations >= 0, "max_generations cannot be negative"},
		{c.Run.ConvergenceWindow >= 0, "convergence_window cannot be negative"},
		{c.Run.ConvergenceThreshold >= 0, "convergence_threshold cannot be negative"},
		{c.Matrix.SparsityTolerance >= 0, "sparsity_tolerance cannot be negative"},
		{c.Matrix.MagnitudeBound > 0 && !math.IsInf(c.Matrix.MagnitudeBound, 0), "magnitude_bound must be positive and finite"},
		{c.Matrix.StepFraction > 0 && !math.IsInf(c.Matrix.StepFraction, 0), "step_fraction must be positive and finite"},
		{c.Evo.Parents > 0, "parents must be positive"},
		{c.Evo.Children >= 0, "children cannot be negative"},
		{c.Pso.Particles > 0, "particles must be positive"},
		{nonNegative(c.Pso.Inertia), "inertia must be finite and not negative"},
		{nonNegative(c.Pso.Cognition), "cognition must be finite and not negative"},
		{nonNegative(c.Pso.Social), "social must be finite and not negative"},
		{nonNegative(c.Pso.MaxVelocity), "max_velocity must be finite and not negative"},
		{len(c.Rules.Weights) == len(c.Rules.Terms), "rules: weights must match terms"},
		{len(c.Rules.Targets) == 0 || len(c.Rules.Targets) == len(c.Rules.Terms), "rules: targets must match terms"},
	}
	for _, chk := range checks {
		if !chk.ok {
			return fmt.Errorf("config error: %s: %w", chk.msg, ErrInvalidConfig)
		}
	}
	return nil
}

func nonNegative(v float64) bool { return v >= 0 && !math.IsInf(v, 0) }

// Mode returns the configured engine variant.
func (c *Config) Mode() Mode {
	m, _ := ParseMode(c.Run.Engine)
	return m
}

// Goal returns the configured optimization direction.
func (c *Config) Goal() rating.Goal {
	g, _ := rating.ParseGoal(c.Run.FitnessCriterion)
	return g
}

// StepParam returns SPARAM, the maximum mutation step.
func (c *Config) StepParam() float64 {
	return c.Matrix.MagnitudeBound * c.Matrix.StepFraction
}

// MaxVelocity returns the velocity clamp for particles.
func (c *Config) MaxVelocity() float64 {
	if c.Pso.MaxVelocity > 0 {
		return c.Pso.MaxVelocity
	}
	return c.Matrix.MagnitudeBound
}

// Workers returns the number of blocks stepped concurrently.
func (c *Config) Workers() int {
	if c.Run.Workers > 0 {
		return c.Run.Workers
	}
	return runtime.GOMAXPROCS(0)
}

// NonZeroTarget returns the nonzero cell count of a fresh matrix.
func (m MatrixConfig) NonZeroTarget() int {
	return matrix.TargetNonZero(m.Height, m.Width, m.Sparsity)
}

// NonZeroBand returns the nonzero cell counts mutation must stay within.
func (m MatrixConfig) NonZeroBand() (lo, hi int) {
	target := m.NonZeroTarget()
	lo = max(0, target-m.SparsityTolerance)
	hi = min(m.Height*m.Width, target+m.SparsityTolerance)
	return lo, hi
}

// RuleSet builds the configured rule set.
func (c *Config) RuleSet() (*rating.RuleSet, error) {
	rules := make([]rating.Rule, len(c.Rules.Terms))
	for i, term := range c.Rules.Terms {
		rules[i] = rating.Rule{Term: cleanIniString(term)}
		if i < len(c.Rules.Weights) {
			rules[i].Weight = c.Rules.Weights[i]
		}
		if i < len(c.Rules.Targets) {
			t := cleanIniString(c.Rules.Targets[i])
			if t == "none" || t == "" {
				continue
			}
			v, err := strconv.ParseFloat(t, 64)
			if err != nil {
				return nil, fmt.Errorf("config error: rule %d target %q: %w", i, t, ErrInvalidConfig)
			}
			rules[i].Target, rules[i].HasTarget = v, true
		}
	}
	return rating.NewRuleSet(c.Rules.Aggregation, rules...)
}

// clone returns a deep copy so callers cannot change a running config.
func (c *Config) clone() *Config {
	cp := *c
	cp.Rules.Terms = append([]string(nil), c.Rules.Terms...)
	cp.Rules.Weights = append([]float64(nil), c.Rules.Weights...)
	cp.Rules.Targets = append([]string(nil), c.Rules.Targets...)
	return &cp
}

// cleanIniString trims whitespace and lowercases a keyword read from INI.
func cleanIniString(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
