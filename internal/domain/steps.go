package domain

import (
	"fmt"
	"strings"
)

// Step represents a stage of one analysis run
type Step struct {
	Number      int
	Name        string
	Description string
}

// Analysis stages, in execution order
var (
	// Step1LoadSnapshot reads and normalizes the collected snapshot
	Step1LoadSnapshot = Step{
		Number:      1,
		Name:        "Load Snapshot",
		Description: "Reading the collected directory snapshot and resolving field defaults",
	}

	// Step2RiskScores computes the category sub-scores and the overall score
	Step2RiskScores = Step{
		Number:      2,
		Name:        "Risk Scores",
		Description: "Scoring kerberoasting, delegation, encryption, NTLM, privileged and inactive account risk",
	}

	// Step3RelationshipGraph builds the bounded relationship graph
	Step3RelationshipGraph = Step{
		Number:      3,
		Name:        "Relationship Graph",
		Description: "Connecting the domain, risky users, privileged groups and delegation-relevant computers",
	}

	// Step4AttackPaths runs the attack path heuristics
	Step4AttackPaths = Step{
		Number:      4,
		Name:        "Attack Paths",
		Description: "Detecting privilege-escalation paths and flagging the graph edges they traverse",
	}

	// Step5Recommendations derives remediation items
	Step5Recommendations = Step{
		Number:      5,
		Name:        "Recommendations",
		Description: "Deriving remediation items from accounts, policies, trusts and endpoint status",
	}
)

// OperationName is the key the stage is logged and timed under, e.g. "step2_risk_scores".
func (s Step) OperationName() string {
	return fmt.Sprintf("step%d_%s", s.Number, strings.ReplaceAll(strings.ToLower(s.Name), " ", "_"))
}
