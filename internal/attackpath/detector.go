package attackpath

import (
	"fmt"
	"time"

	"adriskmap/internal/domain"
	"adriskmap/internal/graph"
	"adriskmap/internal/logging"
)

// DefaultRegistry registers the built-in rules in emission order. Nested group
// traversal has a reserved path type but no rule yet.
func DefaultRegistry() *Registry {
	registry := NewRegistry()
	registry.Register(GroupMembershipRule{})
	registry.Register(KerberoastingRule{})
	registry.Register(UserDelegationRule{})
	registry.Register(ASREPRoastingRule{})
	registry.Register(ComputerUnconstrainedDelegationRule{})
	return registry
}

// Detect runs the default rules against snapshot and the node ids of g, then flags
// the graph edges traversed by the findings.
func Detect(snapshot *domain.DirectorySnapshot, g *domain.Graph) []domain.AttackPath {
	return DetectWith(DefaultRegistry(), snapshot, g)
}

// DetectWith is Detect with a caller-supplied registry.
func DetectWith(registry *Registry, snapshot *domain.DirectorySnapshot, g *domain.Graph) []domain.AttackPath {
	start := time.Now()

	ctx := RuleContext{Snapshot: snapshot, NodeIDs: g.NodeIDs()}
	paths := registry.EvaluateAll(ctx)
	flagged := graph.MarkAttackPaths(g, paths)

	logging.LogDebug(fmt.Sprintf("Detected %d attack paths", len(paths)), map[string]interface{}{
		"operation":     "attack_path_detection",
		"rules":         len(registry.All()),
		"flagged_edges": flagged,
		"duration_ms":   time.Since(start).Milliseconds(),
	})
	return paths
}

// CountBySeverity tallies paths per severity.
func CountBySeverity(paths []domain.AttackPath) map[domain.Severity]int {
	counts := map[domain.Severity]int{
		domain.SeverityCritical: 0,
		domain.SeverityHigh:     0,
		domain.SeverityMedium:   0,
	}
	for _, p := range paths {
		counts[p.Severity]++
	}
	return counts
}
