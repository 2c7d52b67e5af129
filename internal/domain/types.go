package domain

// Severity represents the severity of an attack path
type Severity string

const (
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// RiskTier represents the risk tier assigned to a user node
type RiskTier string

const (
	RiskTierLow    RiskTier = "low"
	RiskTierMedium RiskTier = "medium"
	RiskTierHigh   RiskTier = "high"
)

// DefaultDomainName names the domain when the snapshot carries no name
const DefaultDomainName = "DOMAIN"

// NodeKind represents the kind of entity a graph node stands for
type NodeKind string

const (
	NodeKindDomain   NodeKind = "domain"
	NodeKindUser     NodeKind = "user"
	NodeKindGroup    NodeKind = "group"
	NodeKindComputer NodeKind = "computer"
)

// Relation labels used on graph edges
const (
	RelationMember      = "Member"
	RelationContains    = "Contains"
	RelationMemberOf    = "MemberOf"
	RelationDelegatesTo = "DelegatesTo"
)

// Well-known group names
const (
	GroupDomainAdmins     = "Domain Admins"
	GroupEnterpriseAdmins = "Enterprise Admins"
	GroupSchemaAdmins     = "Schema Admins"
	GroupAccountOperators = "Account Operators"
	GroupProtectedUsers   = "Protected Users"
)

// PrivilegedGroups is the allow-list of groups that become graph nodes, in display order.
var PrivilegedGroups = []string{
	GroupDomainAdmins,
	GroupEnterpriseAdmins,
	GroupSchemaAdmins,
	GroupAccountOperators,
}

// IsPrivilegedGroup reports whether name is on the privileged-group allow-list.
func IsPrivilegedGroup(name string) bool {
	for _, g := range PrivilegedGroups {
		if g == name {
			return true
		}
	}
	return false
}

// LogLevel represents log levels
type LogLevel string

const (
	LogLevelDebug LogLevel = "DEBUG"
	LogLevelInfo  LogLevel = "INFO"
	LogLevelWarn  LogLevel = "WARN"
	LogLevelError LogLevel = "ERROR"
)
