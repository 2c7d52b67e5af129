// Package predicates holds the account predicates shared by scoring, graph
// construction, attack path detection and recommendations.
package predicates

import (
	"strings"

	"adriskmap/internal/domain"
)

const (
	// InactiveLogonDays is the last-logon age after which a user counts as inactive
	InactiveLogonDays = 90
	// StalePasswordDays is the password age after which a password counts as stale
	StalePasswordDays = 365
)

// Built-in accounts that carry expected configurations
const (
	AccountAdministrator = "administrator"
	AccountKrbtgt        = "krbtgt"
	AccountGuest         = "guest"
)

var weakEncryptionTypes = map[string]bool{
	"DES": true,
	"RC4": true,
}

// HasSPNs reports whether the user has at least one service principal name.
func HasSPNs(u domain.User) bool {
	return len(u.SPNs) > 0
}

// HasDelegation reports whether the user is trusted for unconstrained or constrained delegation.
func HasDelegation(u domain.User) bool {
	return u.TrustedForDelegation || u.TrustedToAuthForDelegation
}

// DelegationKind returns "Unconstrained" or "Constrained" for a delegating user.
func DelegationKind(u domain.User) string {
	if u.TrustedForDelegation {
		return "Unconstrained"
	}
	return "Constrained"
}

// ComputerHasDelegation reports whether a computer has any delegation configured,
// including a non-empty constrained delegation target list.
func ComputerHasDelegation(c domain.Computer) bool {
	return c.TrustedForDelegation || c.TrustedToAuthForDelegation || len(c.ConstrainedDelegation) > 0
}

// IsRiskyComputerDelegation reports whether a non-DC computer has delegation configured.
func IsRiskyComputerDelegation(c domain.Computer) bool {
	return ComputerHasDelegation(c) && !c.IsDomainController
}

// HasUnconstrainedComputerDelegation reports whether a non-DC computer is trusted
// for unconstrained delegation.
func HasUnconstrainedComputerDelegation(c domain.Computer) bool {
	return c.TrustedForDelegation && !c.IsDomainController
}

// IsGraphComputer reports whether a computer is relevant to the relationship graph.
func IsGraphComputer(c domain.Computer) bool {
	return c.TrustedForDelegation || c.TrustedToAuthForDelegation || c.IsDomainController
}

// HasWeakEncryption reports whether the user supports DES or RC4.
func HasWeakEncryption(u domain.User) bool {
	for _, enc := range u.EncryptionTypes {
		if weakEncryptionTypes[enc] {
			return true
		}
	}
	return false
}

// IsWeakEncryption reports whether the user supports DES or RC4 or is forced to DES-only keys.
func IsWeakEncryption(u domain.User) bool {
	return HasWeakEncryption(u) || u.UseDESKeyOnly
}

// IsMemberOf reports whether group appears in the membership list.
func IsMemberOf(memberOf []string, group string) bool {
	for _, g := range memberOf {
		if g == group {
			return true
		}
	}
	return false
}

// IsDomainAdmin reports whether the user is a direct member of Domain Admins.
func IsDomainAdmin(u domain.User) bool {
	return IsMemberOf(u.MemberOf, domain.GroupDomainAdmins)
}

// IsEnterpriseAdmin reports whether the user is a direct member of Enterprise Admins.
func IsEnterpriseAdmin(u domain.User) bool {
	return IsMemberOf(u.MemberOf, domain.GroupEnterpriseAdmins)
}

// IsProtected reports whether the user is in Protected Users.
func IsProtected(u domain.User) bool {
	return IsMemberOf(u.MemberOf, domain.GroupProtectedUsers)
}

// IsUnprotectedAdmin reports whether the user is a Domain Admin outside Protected Users.
func IsUnprotectedAdmin(u domain.User) bool {
	return IsDomainAdmin(u) && !IsProtected(u)
}

// IsInactive reports whether the user has not logged on for more than 90 days.
func IsInactive(u domain.User) bool {
	return u.DaysSinceLastLogon > InactiveLogonDays
}

// HasStalePassword reports whether the password is older than 365 days.
func HasStalePassword(u domain.User) bool {
	return u.DaysSincePasswordChange > StalePasswordDays
}

// IsLikelyServiceAccount applies the naming heuristic used to lower Kerberoasting severity.
func IsLikelyServiceAccount(u domain.User) bool {
	name := strings.ToLower(u.SamAccountName)
	return strings.HasPrefix(name, "svc_") ||
		strings.Contains(name, "service") ||
		strings.Contains(strings.ToLower(u.Description), "service")
}

// IsAccount reports whether name equals one of accounts, ignoring case.
func IsAccount(name string, accounts ...string) bool {
	for _, a := range accounts {
		if strings.EqualFold(name, a) {
			return true
		}
	}
	return false
}

// UserRiskTier assigns the display tier of a user. The first matching rule wins.
func UserRiskTier(u domain.User) domain.RiskTier {
	switch {
	case HasSPNs(u):
		return domain.RiskTierHigh
	case HasDelegation(u):
		return domain.RiskTierHigh
	case IsDomainAdmin(u) || IsEnterpriseAdmin(u):
		return domain.RiskTierHigh
	case HasWeakEncryption(u):
		return domain.RiskTierMedium
	default:
		return domain.RiskTierLow
	}
}

// IsGraphUser reports whether a user is included as a node in the relationship graph.
func IsGraphUser(u domain.User) bool {
	tier := UserRiskTier(u)
	return tier == domain.RiskTierHigh || tier == domain.RiskTierMedium || IsDomainAdmin(u)
}
