// Package graph builds the bounded relationship graph of one snapshot: the domain
// root, risky users, privileged groups and delegation-relevant computers.
package graph

import (
	"fmt"
	"strings"

	"adriskmap/internal/domain"
	"adriskmap/internal/logging"
	"adriskmap/internal/predicates"
)

// DefaultDomainName labels the root node when the snapshot carries no domain name
const DefaultDomainName = domain.DefaultDomainName

// Options tunes graph construction.
type Options struct {
	// MaxDelegationEdgesPerUser caps DelegatesTo edges per user. Zero keeps every edge.
	MaxDelegationEdgesPerUser int
}

// DomainID returns the node id of the domain root.
func DomainID(name string) string { return "domain_" + name }

// UserID returns the node id of a user.
func UserID(sam string) string { return "user_" + sam }

// GroupID returns the node id of a group.
func GroupID(name string) string { return "group_" + name }

// ComputerID returns the node id of a computer.
func ComputerID(sam string) string { return "comp_" + sam }

// ComputerLabel strips the machine-account suffix for display.
func ComputerLabel(sam string) string { return strings.ReplaceAll(sam, "$", "") }

type edgeKey struct {
	from, to, relation string
}

// builder accumulates nodes and edges while keeping ids and edges unique
type builder struct {
	graph     *domain.Graph
	nodes     map[string]bool
	edges     map[edgeKey]bool
	computers []string
	dropped   int
}

func newBuilder() *builder {
	return &builder{
		graph: &domain.Graph{
			Nodes: []domain.GraphNode{},
			Edges: []domain.GraphEdge{},
		},
		nodes: make(map[string]bool),
		edges: make(map[edgeKey]bool),
	}
}

func (b *builder) addNode(node domain.GraphNode) bool {
	if b.nodes[node.ID] {
		b.dropped++
		return false
	}
	b.nodes[node.ID] = true
	b.graph.Nodes = append(b.graph.Nodes, node)
	if node.Kind == domain.NodeKindComputer {
		b.computers = append(b.computers, node.ID)
	}
	return true
}

func (b *builder) addEdge(from, to, relation string, attackPath bool) {
	key := edgeKey{from: from, to: to, relation: relation}
	if b.edges[key] {
		return
	}
	b.edges[key] = true
	b.graph.Edges = append(b.graph.Edges, domain.GraphEdge{
		From:       from,
		To:         to,
		Relation:   relation,
		AttackPath: attackPath,
	})
}

// Build derives the relationship graph from snapshot. The result depends only on
// snapshot and opts.
func Build(snapshot *domain.DirectorySnapshot, opts Options) *domain.Graph {
	b := newBuilder()
	if snapshot == nil {
		snapshot = &domain.DirectorySnapshot{}
	}

	domainName := snapshot.Domain
	if domainName == "" {
		domainName = DefaultDomainName
	}
	domainID := DomainID(domainName)
	b.addNode(domain.GraphNode{ID: domainID, Label: domainName, Kind: domain.NodeKindDomain})

	included := b.addUsers(snapshot.Users, domainID)
	b.addGroups(snapshot.Groups, included, domainID)
	b.addComputers(snapshot.Computers, domainID)
	b.addDelegationEdges(included, opts.MaxDelegationEdgesPerUser)

	if b.dropped > 0 {
		logging.LogWarn(fmt.Sprintf("Dropped %d graph nodes with duplicate ids", b.dropped),
			map[string]interface{}{"operation": "graph_build", "dropped_nodes": b.dropped})
	}
	logging.LogDebug("Relationship graph built", map[string]interface{}{
		"operation": "graph_build",
		"nodes":     len(b.graph.Nodes),
		"edges":     len(b.graph.Edges),
	})
	return b.graph
}

// addUsers adds high and medium tier users plus every Domain Admin, and returns
// the users that became nodes in snapshot order.
func (b *builder) addUsers(users []domain.User, domainID string) []domain.User {
	included := make([]domain.User, 0)
	for _, u := range users {
		if u.SamAccountName == "" || !predicates.IsGraphUser(u) {
			continue
		}
		node := domain.GraphNode{
			ID:          UserID(u.SamAccountName),
			Label:       u.SamAccountName,
			Kind:        domain.NodeKindUser,
			Tier:        predicates.UserRiskTier(u),
			Affiliation: adminAffiliation(u),
			SPNCount:    len(u.SPNs),
		}
		if !b.addNode(node) {
			continue
		}
		b.addEdge(domainID, node.ID, domain.RelationMember, false)
		included = append(included, u)
	}
	return included
}

func adminAffiliation(u domain.User) string {
	var admin []string
	for _, g := range u.MemberOf {
		if g == domain.GroupDomainAdmins || g == domain.GroupEnterpriseAdmins {
			admin = append(admin, g)
		}
	}
	if len(admin) == 0 {
		return "user"
	}
	return strings.Join(admin, ", ")
}

// addGroups adds the privileged groups of the snapshot, then any privileged group an
// included user references that the snapshot did not list. Listed groups take their
// MemberOf edges from their Members; synthesized groups take them from the users'
// own MemberOf lists.
func (b *builder) addGroups(groups []domain.Group, included []domain.User, domainID string) {
	members := make(map[string][]string)
	order := make([]string, 0, len(domain.PrivilegedGroups))
	synthesized := make(map[string]bool)

	for _, g := range groups {
		if !domain.IsPrivilegedGroup(g.Name) {
			continue
		}
		if _, seen := members[g.Name]; !seen {
			order = append(order, g.Name)
		}
		for _, m := range g.Members {
			if m.SamAccountName != "" {
				members[g.Name] = append(members[g.Name], m.SamAccountName)
			}
		}
		if members[g.Name] == nil {
			members[g.Name] = []string{}
		}
	}

	for _, name := range domain.PrivilegedGroups {
		if _, seen := members[name]; seen {
			continue
		}
		for _, u := range included {
			if predicates.IsMemberOf(u.MemberOf, name) {
				order = append(order, name)
				members[name] = []string{}
				synthesized[name] = true
				break
			}
		}
	}

	for _, name := range order {
		groupID := GroupID(name)
		if !b.addNode(domain.GraphNode{ID: groupID, Label: name, Kind: domain.NodeKindGroup, Affiliation: name}) {
			continue
		}
		b.addEdge(domainID, groupID, domain.RelationContains, false)

		for _, sam := range members[name] {
			if userID := UserID(sam); b.nodes[userID] {
				b.addEdge(groupID, userID, domain.RelationMemberOf, false)
			}
		}
		if !synthesized[name] {
			continue
		}
		for _, u := range included {
			if predicates.IsMemberOf(u.MemberOf, name) {
				b.addEdge(groupID, UserID(u.SamAccountName), domain.RelationMemberOf, false)
			}
		}
	}
}

func (b *builder) addComputers(computers []domain.Computer, domainID string) {
	for _, c := range computers {
		if c.SamAccountName == "" || !predicates.IsGraphComputer(c) {
			continue
		}
		affiliation := "computer"
		if c.IsDomainController {
			affiliation = "DC"
		}
		node := domain.GraphNode{
			ID:          ComputerID(c.SamAccountName),
			Label:       ComputerLabel(c.SamAccountName),
			Kind:        domain.NodeKindComputer,
			Affiliation: affiliation,
		}
		if b.addNode(node) {
			b.addEdge(domainID, node.ID, domain.RelationContains, false)
		}
	}
}

// addDelegationEdges wires every delegating included user to every computer node.
func (b *builder) addDelegationEdges(included []domain.User, limit int) {
	for _, u := range included {
		if !predicates.HasDelegation(u) {
			continue
		}
		userID := UserID(u.SamAccountName)
		for i, compID := range b.computers {
			if limit > 0 && i >= limit {
				logging.LogDebug(fmt.Sprintf("Capped DelegatesTo edges for %s at %d", u.SamAccountName, limit),
					map[string]interface{}{"operation": "graph_build", "computers": len(b.computers)})
				break
			}
			b.addEdge(userID, compID, domain.RelationDelegatesTo, true)
		}
	}
}
