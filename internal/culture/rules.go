// Package culture holds the read-only cultural dataset: population priors
// per region, the dimension-to-UX mapping rule table, and product baselines.
// Everything here is loaded once at startup and safe for concurrent reads.
package culture

import (
	"fmt"

	"culturebridge/internal/types"
)

// Rule is a single threshold test on one dimension. When satisfied it
// justifies a specific adaptation effect.
type Rule struct {
	ID         string  `yaml:"rule_id" json:"rule_id"`
	Dimension  string  `yaml:"dimension" json:"dimension"`
	Comparator string  `yaml:"comparator" json:"comparator"` // >=, <=, >, <
	Threshold  float64 `yaml:"threshold" json:"threshold"`
	Effect     string  `yaml:"effect" json:"effect"`
	Rationale  string  `yaml:"rationale" json:"rationale"`
}

// Satisfied evaluates the rule against a score.
func (r Rule) Satisfied(value float64) bool {
	switch r.Comparator {
	case ">=":
		return value >= r.Threshold
	case "<=":
		return value <= r.Threshold
	case ">":
		return value > r.Threshold
	case "<":
		return value < r.Threshold
	default:
		return false
	}
}

// RuleTable is an ordered, immutable collection of rules.
type RuleTable struct {
	rules []Rule
}

// NewRuleTable validates rules (unique ids, known dimensions, known
// comparators) and freezes their declaration order.
func NewRuleTable(rules []Rule) (*RuleTable, error) {
	seen := make(map[string]struct{}, len(rules))
	for _, r := range rules {
		if r.ID == "" {
			return nil, fmt.Errorf("rule with empty rule_id")
		}
		if _, dup := seen[r.ID]; dup {
			return nil, fmt.Errorf("duplicate rule_id %q", r.ID)
		}
		seen[r.ID] = struct{}{}
		if !types.IsDimension(r.Dimension) {
			return nil, fmt.Errorf("rule %s references unknown dimension %q", r.ID, r.Dimension)
		}
		switch r.Comparator {
		case ">=", "<=", ">", "<":
		default:
			return nil, fmt.Errorf("rule %s has unknown comparator %q", r.ID, r.Comparator)
		}
	}
	table := &RuleTable{rules: make([]Rule, len(rules))}
	copy(table.rules, rules)
	return table, nil
}

// Len returns the number of rules in the table.
func (t *RuleTable) Len() int { return len(t.rules) }

// Rules returns a copy of the full table in declaration order.
func (t *RuleTable) Rules() []Rule {
	out := make([]Rule, len(t.rules))
	copy(out, t.rules)
	return out
}

// Match returns the rules whose threshold test is satisfied by the given
// dimension scores, preserving declaration order. A rule whose dimension is
// absent from the map is skipped, never an error. Conflicting rules may
// co-fire; downstream stages resolve conflicts first-declared-rule-wins.
// Pure function: no I/O, no mutation.
func (t *RuleTable) Match(dimensions map[string]float64) []Rule {
	var applicable []Rule
	for _, r := range t.rules {
		value, ok := dimensions[r.Dimension]
		if !ok {
			continue
		}
		if r.Satisfied(value) {
			applicable = append(applicable, r)
		}
	}
	return applicable
}
