package attackpath

import (
	"fmt"
	"strings"

	"adriskmap/internal/domain"
	"adriskmap/internal/graph"
	"adriskmap/internal/predicates"
)

const (
	groupMembershipRuleID       = "GROUP_MEMBERSHIP"
	kerberoastingRuleID         = "KERBEROASTING"
	userDelegationRuleID        = "USER_DELEGATION"
	asrepRoastingRuleID         = "ASREP_ROASTING"
	computerUnconstrainedRuleID = "COMPUTER_UNCONSTRAINED_DELEGATION"
	maxSPNsInStep               = 3
)

// GroupMembershipRule flags direct Domain Admins membership. The built-in
// Administrator account is expected there and is skipped.
type GroupMembershipRule struct{}

func (r GroupMembershipRule) ID() string   { return groupMembershipRuleID }
func (r GroupMembershipRule) Name() string { return domain.AttackPathGroupMembership }

func (r GroupMembershipRule) Evaluate(ctx RuleContext) []domain.AttackPath {
	groupID := graph.GroupID(domain.GroupDomainAdmins)
	if ctx.Snapshot == nil || !ctx.HasNode(groupID) {
		return nil
	}

	var paths []domain.AttackPath
	for _, u := range ctx.Snapshot.Users {
		if predicates.IsAccount(u.SamAccountName, predicates.AccountAdministrator) {
			continue
		}
		userID := graph.UserID(u.SamAccountName)
		if !ctx.HasNode(userID) || !predicates.IsDomainAdmin(u) {
			continue
		}

		severity := domain.SeverityCritical
		qualifier := " (NOT in Protected Users)"
		if predicates.IsProtected(u) {
			severity = domain.SeverityHigh
			qualifier = " (Protected Users)"
		}
		paths = append(paths, domain.AttackPath{
			Type:        domain.AttackPathGroupMembership,
			Severity:    severity,
			Description: fmt.Sprintf("User %s is a member of Domain Admins%s", u.SamAccountName, qualifier),
			Path:        []string{userID, groupID},
			Steps:       []string{fmt.Sprintf("User %s → Domain Admins (Direct Membership)", u.SamAccountName)},
		})
	}
	return paths
}

// KerberoastingRule flags users with SPNs. krbtgt is skipped and accounts that
// look like service accounts get medium severity.
type KerberoastingRule struct{}

func (r KerberoastingRule) ID() string   { return kerberoastingRuleID }
func (r KerberoastingRule) Name() string { return domain.AttackPathKerberoasting }

func (r KerberoastingRule) Evaluate(ctx RuleContext) []domain.AttackPath {
	if ctx.Snapshot == nil {
		return nil
	}

	var paths []domain.AttackPath
	for _, u := range ctx.Snapshot.Users {
		if predicates.IsAccount(u.SamAccountName, predicates.AccountKrbtgt) || !predicates.HasSPNs(u) {
			continue
		}
		userID := graph.UserID(u.SamAccountName)
		if !ctx.HasNode(userID) {
			continue
		}

		severity := domain.SeverityHigh
		description := fmt.Sprintf("User %s has SPNs and is vulnerable to Kerberoasting", u.SamAccountName)
		if predicates.IsLikelyServiceAccount(u) {
			severity = domain.SeverityMedium
			description += " (likely service account)"
		}

		spns := u.SPNs
		if len(spns) > maxSPNsInStep {
			spns = spns[:maxSPNsInStep]
		}
		paths = append(paths, domain.AttackPath{
			Type:        domain.AttackPathKerberoasting,
			Severity:    severity,
			Description: description,
			Path:        []string{userID},
			Steps:       []string{fmt.Sprintf("User %s has SPNs: %s", u.SamAccountName, strings.Join(spns, ", "))},
		})
	}
	return paths
}

// UserDelegationRule flags graph users trusted for delegation.
type UserDelegationRule struct{}

func (r UserDelegationRule) ID() string   { return userDelegationRuleID }
func (r UserDelegationRule) Name() string { return "User Delegation" }

func (r UserDelegationRule) Evaluate(ctx RuleContext) []domain.AttackPath {
	if ctx.Snapshot == nil {
		return nil
	}

	var paths []domain.AttackPath
	for _, u := range ctx.Snapshot.Users {
		if !predicates.HasDelegation(u) {
			continue
		}
		userID := graph.UserID(u.SamAccountName)
		if !ctx.HasNode(userID) {
			continue
		}

		kind := predicates.DelegationKind(u)
		paths = append(paths, domain.AttackPath{
			Type:        kind + " Delegation",
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("User %s has %s delegation enabled", u.SamAccountName, strings.ToLower(kind)),
			Path:        []string{userID},
			Steps:       []string{fmt.Sprintf("User %s → Can delegate to services (Privilege Escalation)", u.SamAccountName)},
		})
	}
	return paths
}

// ASREPRoastingRule flags users that do not require Kerberos pre-authentication.
// Administrator, krbtgt and Guest are skipped.
type ASREPRoastingRule struct{}

func (r ASREPRoastingRule) ID() string   { return asrepRoastingRuleID }
func (r ASREPRoastingRule) Name() string { return domain.AttackPathASREPRoasting }

func (r ASREPRoastingRule) Evaluate(ctx RuleContext) []domain.AttackPath {
	if ctx.Snapshot == nil {
		return nil
	}

	var paths []domain.AttackPath
	for _, u := range ctx.Snapshot.Users {
		if predicates.IsAccount(u.SamAccountName,
			predicates.AccountAdministrator, predicates.AccountKrbtgt, predicates.AccountGuest) {
			continue
		}
		if !u.DoesNotRequirePreAuth {
			continue
		}
		userID := graph.UserID(u.SamAccountName)
		if !ctx.HasNode(userID) {
			continue
		}
		paths = append(paths, domain.AttackPath{
			Type:        domain.AttackPathASREPRoasting,
			Severity:    domain.SeverityHigh,
			Description: fmt.Sprintf("User %s does not require pre-authentication (AS-REP roasting)", u.SamAccountName),
			Path:        []string{userID},
			Steps:       []string{fmt.Sprintf("User %s → Vulnerable to AS-REP roasting", u.SamAccountName)},
		})
	}
	return paths
}

// ComputerUnconstrainedDelegationRule flags non-DC computers trusted for
// unconstrained delegation.
type ComputerUnconstrainedDelegationRule struct{}

func (r ComputerUnconstrainedDelegationRule) ID() string { return computerUnconstrainedRuleID }
func (r ComputerUnconstrainedDelegationRule) Name() string {
	return domain.AttackPathUnconstrainedDelegation
}

func (r ComputerUnconstrainedDelegationRule) Evaluate(ctx RuleContext) []domain.AttackPath {
	if ctx.Snapshot == nil {
		return nil
	}

	var paths []domain.AttackPath
	for _, c := range ctx.Snapshot.Computers {
		if !predicates.HasUnconstrainedComputerDelegation(c) {
			continue
		}
		compID := graph.ComputerID(c.SamAccountName)
		if !ctx.HasNode(compID) {
			continue
		}
		label := graph.ComputerLabel(c.SamAccountName)
		paths = append(paths, domain.AttackPath{
			Type:        domain.AttackPathUnconstrainedDelegation,
			Severity:    domain.SeverityCritical,
			Description: fmt.Sprintf("Computer %s has unconstrained delegation (non-DC)", label),
			Path:        []string{compID},
			Steps:       []string{fmt.Sprintf("Computer %s → Unconstrained delegation allows privilege escalation", label)},
		})
	}
	return paths
}
