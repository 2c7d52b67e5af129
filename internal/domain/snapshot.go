package domain

// DirectorySnapshot is the typed, defaulted view of one collected directory snapshot.
// Every optional section is either an empty slice or a nil pointer when it was not collected.
type DirectorySnapshot struct {
	Domain    string `json:"domain"`
	Timestamp string `json:"timestamp,omitempty"`

	Users           []User              `json:"users"`
	Computers       []Computer          `json:"computers"`
	ServiceAccounts []ServiceAccount    `json:"service_accounts"`
	Groups          []Group             `json:"groups"`
	Trusts          []TrustRelationship `json:"trust_relationships"`

	Statistics     *Statistics     `json:"statistics,omitempty"`
	KrbtgtInfo     *KrbtgtInfo     `json:"krbtgt_info,omitempty"`
	PasswordPolicy *PasswordPolicy `json:"password_policy,omitempty"`
	LDAPPolicy     *LDAPPolicy     `json:"ldap_policy,omitempty"`
	SMBPolicy      *SMBPolicy      `json:"smb_policy,omitempty"`
	DomainInfo     *DomainInfo     `json:"domain_info,omitempty"`
	ForestInfo     *ForestInfo     `json:"forest_info,omitempty"`

	NTLMEvents             []NTLMEvent              `json:"ntlm_events"`
	FailedLogons           []FailedLogon            `json:"failed_logons"`
	SuspiciousAccounts     []string                 `json:"suspicious_accounts"`
	EmptyGroups            []string                 `json:"empty_groups"`
	LargeGroups            []string                 `json:"large_groups"`
	CertificateTemplates   []CertificateTemplate    `json:"certificate_templates"`
	CertificateAuthorities []CertificateAuthority   `json:"certificate_authorities"`
	ComputerSecurityStatus []ComputerSecurityStatus `json:"computer_security_status"`
}

// User is a user principal.
type User struct {
	SamAccountName             string   `json:"sam_account_name"`
	DisplayName                string   `json:"display_name,omitempty"`
	Description                string   `json:"description,omitempty"`
	Enabled                    bool     `json:"enabled"`
	SPNs                       []string `json:"spns"`
	TrustedForDelegation       bool     `json:"trusted_for_delegation"`
	TrustedToAuthForDelegation bool     `json:"trusted_to_auth_for_delegation"`
	EncryptionTypes            []string `json:"encryption_types"`
	UseDESKeyOnly              bool     `json:"use_des_key_only"`
	MemberOf                   []string `json:"member_of"`
	DaysSinceLastLogon         float64  `json:"days_since_last_logon"`
	DaysSincePasswordChange    float64  `json:"days_since_password_change"`
	PasswordNeverExpires       bool     `json:"password_never_expires"`
	PasswordLastSet            string   `json:"password_last_set,omitempty"`
	DoesNotRequirePreAuth      bool     `json:"does_not_require_pre_auth"`
}

// Computer is a computer principal.
type Computer struct {
	SamAccountName             string   `json:"sam_account_name"`
	OperatingSystem            string   `json:"operating_system,omitempty"`
	Enabled                    bool     `json:"enabled"`
	SPNs                       []string `json:"spns"`
	TrustedForDelegation       bool     `json:"trusted_for_delegation"`
	TrustedToAuthForDelegation bool     `json:"trusted_to_auth_for_delegation"`
	ConstrainedDelegation      []string `json:"constrained_delegation"`
	EncryptionTypes            []string `json:"encryption_types"`
	IsDomainController         bool     `json:"is_domain_controller"`
	MemberOf                   []string `json:"member_of"`
}

// ServiceAccount is a managed or standalone service account principal.
type ServiceAccount struct {
	Type                       string   `json:"type,omitempty"`
	SamAccountName             string   `json:"sam_account_name"`
	SPNs                       []string `json:"spns"`
	TrustedForDelegation       bool     `json:"trusted_for_delegation"`
	TrustedToAuthForDelegation bool     `json:"trusted_to_auth_for_delegation"`
	MemberOf                   []string `json:"member_of"`
}

// Group is a security group with its direct members.
type Group struct {
	Name    string        `json:"name"`
	Scope   string        `json:"scope,omitempty"`
	Members []GroupMember `json:"members"`
}

// GroupMember references a group member by account name.
type GroupMember struct {
	SamAccountName string `json:"sam_account_name"`
	ObjectClass    string `json:"object_class,omitempty"`
}

// TrustRelationship is a domain or forest trust.
type TrustRelationship struct {
	Name                    string `json:"name"`
	Direction               string `json:"direction,omitempty"`
	TrustType               string `json:"trust_type,omitempty"`
	SIDFilteringForestAware bool   `json:"sid_filtering_forest_aware"`
	SelectiveAuthentication bool   `json:"selective_authentication"`
}

// Statistics holds collector-side aggregate counters.
type Statistics struct {
	TotalUsers              int `json:"total_users"`
	TotalComputers          int `json:"total_computers"`
	UsersWithSPNs           int `json:"users_with_spns"`
	UsersWithDelegation     int `json:"users_with_delegation"`
	ComputersWithDelegation int `json:"computers_with_delegation"`
	NTLMEventCount          int `json:"ntlm_event_count"`
}

// KrbtgtInfo describes the krbtgt account key age.
type KrbtgtInfo struct {
	PasswordLastSet         string  `json:"password_last_set,omitempty"`
	DaysSincePasswordChange float64 `json:"days_since_password_change"`
}

// PasswordPolicy is the default domain password policy.
type PasswordPolicy struct {
	MinPasswordLength           int  `json:"min_password_length"`
	ComplexityEnabled           bool `json:"complexity_enabled"`
	ReversibleEncryptionEnabled bool `json:"reversible_encryption_enabled"`
	LockoutThreshold            int  `json:"lockout_threshold"`
	MaxPasswordAgeDays          int  `json:"max_password_age_days"`
}

// LDAPPolicy holds LDAP hardening settings.
type LDAPPolicy struct {
	LDAPSigningRequired bool `json:"ldap_signing_required"`
}

// SMBPolicy holds SMB signing settings.
type SMBPolicy struct {
	ClientSigningRequired bool `json:"client_signing_required"`
	ServerSigningRequired bool `json:"server_signing_required"`
}

// DomainInfo holds domain functional level information.
type DomainInfo struct {
	Name       string `json:"name,omitempty"`
	DomainMode string `json:"domain_mode,omitempty"`
}

// ForestInfo holds forest functional level information.
type ForestInfo struct {
	Name       string `json:"name,omitempty"`
	ForestMode string `json:"forest_mode,omitempty"`
}

// NTLMEvent is one sampled NTLM authentication event.
type NTLMEvent struct {
	AccountName               string `json:"account_name"`
	AccountDomain             string `json:"account_domain,omitempty"`
	IPAddress                 string `json:"ip_address,omitempty"`
	LogonType                 string `json:"logon_type,omitempty"`
	AuthenticationPackageName string `json:"authentication_package_name,omitempty"`
}

// FailedLogon is one sampled failed logon event.
type FailedLogon struct {
	AccountName string `json:"account_name"`
	IPAddress   string `json:"ip_address,omitempty"`
	Count       int    `json:"count"`
}

// CertificateTemplate is a published certificate template.
type CertificateTemplate struct {
	Name                    string `json:"name"`
	RequiresManagerApproval bool   `json:"requires_manager_approval"`
	AutoEnrollment          bool   `json:"auto_enrollment"`
}

// CertificateAuthority is an enterprise certificate authority.
type CertificateAuthority struct {
	Name      string `json:"name"`
	IsExpired bool   `json:"is_expired"`
}

// ComputerSecurityStatus is the endpoint protection status of one computer.
type ComputerSecurityStatus struct {
	ComputerName string         `json:"computer_name"`
	Antivirus    ProtectionInfo `json:"antivirus"`
	BitLocker    ProtectionInfo `json:"bitlocker"`
	Firewall     ProtectionInfo `json:"firewall"`
}

// ProtectionInfo is the state of one endpoint control. Online reports whether
// the computer answered the collector at all.
type ProtectionInfo struct {
	Online    bool `json:"online"`
	Installed bool `json:"installed"`
	Enabled   bool `json:"enabled"`
}
