// Package attackpath detects privilege-escalation paths in a snapshot. Each
// heuristic is a Rule; rules run in registration order against the snapshot and
// the node ids of the relationship graph built from it.
package attackpath

import (
	"fmt"

	"adriskmap/internal/domain"
)

// RuleContext is the sole input to Rule.Evaluate.
type RuleContext struct {
	Snapshot *domain.DirectorySnapshot

	// NodeIDs is the node id set of the run's graph. A rule only emits paths whose
	// ids are all in this set.
	NodeIDs map[string]bool
}

// HasNode reports whether id is a graph node.
func (c RuleContext) HasNode(id string) bool {
	return c.NodeIDs[id]
}

// Rule is a single deterministic attack path heuristic. Rules must be stateless.
type Rule interface {
	// ID returns the unique, stable identifier for this rule.
	ID() string

	// Name returns a short human-readable rule name.
	Name() string

	// Evaluate returns zero or more attack paths in the iteration order of the
	// underlying snapshot collection.
	Evaluate(ctx RuleContext) []domain.AttackPath
}

// Registry is an ordered, in-memory rule registry.
// Register panics on duplicate rule IDs to catch wiring mistakes at startup.
type Registry struct {
	rules []Rule
	index map[string]struct{}
}

// NewRegistry returns an empty registry ready for rule registration.
func NewRegistry() *Registry {
	return &Registry{
		index: make(map[string]struct{}),
	}
}

// Register adds rule to the registry. Panics if the same ID is registered twice.
func (r *Registry) Register(rule Rule) {
	if _, exists := r.index[rule.ID()]; exists {
		panic(fmt.Sprintf("duplicate rule ID: %q", rule.ID()))
	}
	r.rules = append(r.rules, rule)
	r.index[rule.ID()] = struct{}{}
}

// All returns all registered rules in registration order.
func (r *Registry) All() []Rule {
	return r.rules
}

// EvaluateAll runs every registered rule against ctx and returns the merged paths.
func (r *Registry) EvaluateAll(ctx RuleContext) []domain.AttackPath {
	paths := []domain.AttackPath{}
	for _, rule := range r.rules {
		paths = append(paths, rule.Evaluate(ctx)...)
	}
	return paths
}
