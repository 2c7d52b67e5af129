package graph

import (
	"adriskmap/internal/domain"
)

type pairKey struct {
	from, to string
}

// MarkAttackPaths flags every edge whose (From, To) equals a consecutive (id, next id)
// pair of any attack path. Matching is ordered: a [user, group] path does not flag the
// group to user MemberOf edge. Already flagged edges stay flagged. Returns the number
// of edges that were newly flagged.
func MarkAttackPaths(g *domain.Graph, paths []domain.AttackPath) int {
	if g == nil {
		return 0
	}

	pairs := make(map[pairKey]bool)
	for _, p := range paths {
		for i := 0; i+1 < len(p.Path); i++ {
			pairs[pairKey{from: p.Path[i], to: p.Path[i+1]}] = true
		}
	}
	if len(pairs) == 0 {
		return 0
	}

	flagged := 0
	for i := range g.Edges {
		edge := &g.Edges[i]
		if edge.AttackPath {
			continue
		}
		if pairs[pairKey{from: edge.From, to: edge.To}] {
			edge.AttackPath = true
			flagged++
		}
	}
	return flagged
}
