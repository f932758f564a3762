package rating

import (
	"fmt"
	"math"
	"strings"

	"github.com/baldhumanity/matrix-evo/matevo/matrix"
)

// Rule scores one term of a matrix. Without a target the score is
// Weight*term; with a target it is -Weight*|term-Target|, so a rule is best
// when the term hits the target exactly.
type Rule struct {
	Term      string
	Weight    float64
	Target    float64
	HasTarget bool
}

func (r Rule) String() string {
	if r.HasTarget {
		return fmt.Sprintf("%s -> %g (weight %g)", r.Term, r.Target, r.Weight)
	}
	return fmt.Sprintf("%s (weight %g)", r.Term, r.Weight)
}

// RuleSet is an immutable list of rules combined by an aggregation. It is
// safe for concurrent use.
type RuleSet struct {
	aggregation string
	agg         AggregationFunc
	rules       []Rule
	terms       []TermFunc
}

// NewRuleSet validates the aggregation and term names and copies the rules.
func NewRuleSet(aggregation string, rules ...Rule) (*RuleSet, error) {
	if len(rules) == 0 {
		return nil, ErrNoRules
	}
	agg, err := GetAggregation(aggregation)
	if err != nil {
		return nil, err
	}

	rs := &RuleSet{
		aggregation: aggregation,
		agg:         agg,
		rules:       make([]Rule, len(rules)),
		terms:       make([]TermFunc, len(rules)),
	}
	copy(rs.rules, rules)
	for i, r := range rs.rules {
		fn, err := GetTerm(r.Term)
		if err != nil {
			return nil, fmt.Errorf("rule %d: %w", i, err)
		}
		if math.IsNaN(r.Weight) || math.IsInf(r.Weight, 0) {
			return nil, fmt.Errorf("rule %d weight %v: %w", i, r.Weight, ErrNonFinite)
		}
		rs.terms[i] = fn
	}
	return rs, nil
}

// Evaluate implements Evaluator. A failing term or a non-finite result is
// returned as an error; no fallback rating is guessed.
func (rs *RuleSet) Evaluate(m *matrix.Matrix) (float64, error) {
	scores := make([]float64, len(rs.rules))
	for i, r := range rs.rules {
		v, err := rs.terms[i](m)
		if err != nil {
			return 0, fmt.Errorf("rule %d (%s): %w", i, r.Term, err)
		}
		if r.HasTarget {
			scores[i] = -r.Weight * math.Abs(v-r.Target)
		} else {
			scores[i] = r.Weight * v
		}
	}

	rating := rs.agg(scores)
	if math.IsNaN(rating) || math.IsInf(rating, 0) {
		return 0, fmt.Errorf("%v: %w", rating, ErrNonFinite)
	}
	return rating, nil
}

// Rules returns a copy of the rules.
func (rs *RuleSet) Rules() []Rule {
	out := make([]Rule, len(rs.rules))
	copy(out, rs.rules)
	return out
}

// Aggregation returns the aggregation name.
func (rs *RuleSet) Aggregation() string { return rs.aggregation }

func (rs *RuleSet) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s of %d rules:", rs.aggregation, len(rs.rules))
	for i, r := range rs.rules {
		fmt.Fprintf(&b, "\n  %2d: %s", i, r)
	}
	return b.String()
}
