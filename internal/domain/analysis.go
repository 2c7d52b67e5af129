package domain

// Risk classification labels
const (
	ClassificationLow    = "Low Risk"
	ClassificationMedium = "Medium Risk"
	ClassificationHigh   = "High Risk"
)

// RiskScoreSet holds the six category sub-scores and the derived overall score.
type RiskScoreSet struct {
	Kerberoasting  int    `json:"kerberoasting"`
	Delegation     int    `json:"delegation"`
	Encryption     int    `json:"encryption"`
	NTLM           int    `json:"ntlm"`
	Privileged     int    `json:"privileged"`
	Inactive       int    `json:"inactive"`
	Overall        int    `json:"overall"`
	Classification string `json:"classification"`
}

// CategoryScore is one named category sub-score.
type CategoryScore struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
}

// Categories returns the six sub-scores in fixed order.
func (s RiskScoreSet) Categories() []CategoryScore {
	return []CategoryScore{
		{Name: "kerberoasting", Score: s.Kerberoasting},
		{Name: "delegation", Score: s.Delegation},
		{Name: "encryption", Score: s.Encryption},
		{Name: "ntlm", Score: s.NTLM},
		{Name: "privileged", Score: s.Privileged},
		{Name: "inactive", Score: s.Inactive},
	}
}

// Total returns the sum of all category sub-scores.
func (s RiskScoreSet) Total() int {
	total := 0
	for _, c := range s.Categories() {
		total += c.Score
	}
	return total
}

// GraphNode is one entity in the relationship graph.
// Tier, Affiliation and SPNCount are display attributes only.
type GraphNode struct {
	ID          string   `json:"id"`
	Label       string   `json:"label"`
	Kind        NodeKind `json:"kind"`
	Tier        RiskTier `json:"tier,omitempty"`
	Affiliation string   `json:"affiliation,omitempty"`
	SPNCount    int      `json:"spn_count,omitempty"`
}

// GraphEdge is a directed relationship between two node ids.
type GraphEdge struct {
	From       string `json:"from"`
	To         string `json:"to"`
	Relation   string `json:"relation"`
	AttackPath bool   `json:"attack_path"`
}

// Graph is the bounded relationship graph of one analysis run.
type Graph struct {
	Nodes []GraphNode `json:"nodes"`
	Edges []GraphEdge `json:"edges"`
}

// NodeIDs returns the set of node ids in the graph.
func (g *Graph) NodeIDs() map[string]bool {
	ids := make(map[string]bool)
	if g == nil {
		return ids
	}
	for _, n := range g.Nodes {
		ids[n.ID] = true
	}
	return ids
}

// AttackPath types
const (
	AttackPathGroupMembership         = "Group Membership"
	AttackPathKerberoasting           = "Kerberoasting"
	AttackPathUnconstrainedDelegation = "Unconstrained Delegation"
	AttackPathConstrainedDelegation   = "Constrained Delegation"
	AttackPathASREPRoasting           = "AS-REP Roasting"
	AttackPathNestedGroup             = "Nested Group Membership"
)

// AttackPath is one heuristically detected privilege-escalation path.
// Path and Steps are ordered; every id in Path is a node of the run's Graph.
type AttackPath struct {
	Type        string   `json:"type"`
	Severity    Severity `json:"severity"`
	Description string   `json:"description"`
	Path        []string `json:"path"`
	Steps       []string `json:"steps"`
}

// Recommendation is one remediation item derived from the snapshot.
type Recommendation struct {
	Category string `json:"category"`
	Message  string `json:"message"`
	Count    int    `json:"count,omitempty"`
}

// Summary holds aggregate counts consumed by renderers.
type Summary struct {
	Domain                  string           `json:"domain"`
	TotalUsers              int              `json:"total_users"`
	TotalComputers          int              `json:"total_computers"`
	ServiceAccounts         int              `json:"service_accounts"`
	UsersWithSPNs           int              `json:"users_with_spns"`
	UsersWithDelegation     int              `json:"users_with_delegation"`
	ComputersWithDelegation int              `json:"computers_with_delegation"`
	WeakEncryption          int              `json:"weak_encryption"`
	DomainAdmins            int              `json:"domain_admins"`
	UnprotectedAdmins       int              `json:"unprotected_admins"`
	InactiveUsers           int              `json:"inactive_users"`
	StalePasswords          int              `json:"stale_passwords"`
	DomainControllers       int              `json:"domain_controllers"`
	NTLMEvents              int              `json:"ntlm_events"`
	KrbtgtPasswordAgeDays   *int             `json:"krbtgt_password_age_days,omitempty"`
	KrbtgtRotationOverdue   bool             `json:"krbtgt_rotation_overdue"`
	AttackPathsBySeverity   map[Severity]int `json:"attack_paths_by_severity"`
}

// AnalysisResult bundles everything one analysis run produces.
type AnalysisResult struct {
	Scores          RiskScoreSet     `json:"scores"`
	Graph           *Graph           `json:"graph"`
	AttackPaths     []AttackPath     `json:"attack_paths"`
	Recommendations []Recommendation `json:"recommendations"`
	Summary         Summary          `json:"summary"`
}
