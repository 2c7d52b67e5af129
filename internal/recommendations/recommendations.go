// Package recommendations derives remediation items from a snapshot.
package recommendations

import (
	"fmt"
	"strings"

	"adriskmap/internal/domain"
	"adriskmap/internal/predicates"
)

// Thresholds tunes when policy-style recommendations fire.
type Thresholds struct {
	KrbtgtRotationDays int `yaml:"krbtgt_rotation_days"`
	MinPasswordLength  int `yaml:"min_password_length"`
	FailedLogonAlert   int `yaml:"failed_logon_alert"`
	EmptyGroupAlert    int `yaml:"empty_group_alert"`
}

// DefaultThresholds returns the stock thresholds.
func DefaultThresholds() Thresholds {
	return Thresholds{
		KrbtgtRotationDays: 180,
		MinPasswordLength:  14,
		FailedLogonAlert:   50,
		EmptyGroupAlert:    10,
	}
}

// Categories
const (
	CategoryKerberoasting       = "Kerberoasting"
	CategoryDelegation          = "Delegation"
	CategoryComputerDelegation  = "Computer Delegation"
	CategoryWeakEncryption      = "Weak Encryption"
	CategoryPrivilegedAccounts  = "Privileged Accounts"
	CategoryInactiveAccounts    = "Inactive Accounts"
	CategoryPasswordAge         = "Password Age"
	CategoryKrbtgt              = "krbtgt Password"
	CategoryPasswordPolicy      = "Password Policy"
	CategoryTrust               = "Trust Relationship"
	CategoryAntivirus           = "Antivirus"
	CategoryBitLocker           = "BitLocker"
	CategoryFirewall            = "Firewall"
	CategoryLDAPSigning         = "LDAP Signing"
	CategorySMBSigning          = "SMB Signing"
	CategoryDomainMode          = "Domain Mode"
	CategoryForestMode          = "Forest Mode"
	CategorySuspiciousAccounts  = "Suspicious Accounts"
	CategoryFailedLogons        = "Failed Logons"
	CategoryEmptyGroups         = "Empty Groups"
	CategoryLargeGroups         = "Large Groups"
	CategoryCertificateTemplate = "Certificate Templates"
	CategoryCertificates        = "Certificates"
	CategoryGeneral             = "General"
)

// KrbtgtRotationOverdue reports whether the krbtgt key is older than the rotation window.
func KrbtgtRotationOverdue(snapshot *domain.DirectorySnapshot, t Thresholds) bool {
	return snapshot != nil && snapshot.KrbtgtInfo != nil &&
		snapshot.KrbtgtInfo.DaysSincePasswordChange > float64(t.KrbtgtRotationDays)
}

// Generate returns the remediation items for snapshot in a fixed category order.
// A snapshot with nothing to report yields a single general item.
func Generate(snapshot *domain.DirectorySnapshot, t Thresholds) []domain.Recommendation {
	if snapshot == nil {
		snapshot = &domain.DirectorySnapshot{}
	}
	var recs []domain.Recommendation
	add := func(category string, count int, format string, args ...interface{}) {
		recs = append(recs, domain.Recommendation{
			Category: category,
			Message:  fmt.Sprintf(format, args...),
			Count:    count,
		})
	}

	recs = append(recs, accountRecommendations(snapshot, t)...)

	if p := snapshot.PasswordPolicy; p != nil {
		if p.MinPasswordLength < t.MinPasswordLength {
			add(CategoryPasswordPolicy, 0, "Minimum password length is %d. Consider increasing to %d+ characters for better security.",
				p.MinPasswordLength, t.MinPasswordLength)
		}
		if p.ReversibleEncryptionEnabled {
			add(CategoryPasswordPolicy, 0, "Reversible encryption is enabled. This is a critical security risk; disable it immediately.")
		}
		if !p.ComplexityEnabled {
			add(CategoryPasswordPolicy, 0, "Password complexity is disabled. Enable it to require mixed case, numbers, and special characters.")
		}
		if p.LockoutThreshold <= 0 {
			add(CategoryPasswordPolicy, 0, "Account lockout threshold is not set. Configure lockout after 3-10 failed attempts.")
		}
	}

	for _, trust := range snapshot.Trusts {
		if !trust.SIDFilteringForestAware {
			add(CategoryTrust, 0, "SID filtering is disabled for trust '%s'. Enable SID filtering to prevent SID history attacks.", trust.Name)
		}
		if !trust.SelectiveAuthentication {
			add(CategoryTrust, 0, "Selective authentication is disabled for trust '%s'. Enable it to restrict cross-trust access.", trust.Name)
		}
	}

	recs = append(recs, endpointRecommendations(snapshot.ComputerSecurityStatus)...)

	if snapshot.LDAPPolicy != nil && !snapshot.LDAPPolicy.LDAPSigningRequired {
		add(CategoryLDAPSigning, 0, "LDAP signing is not required. Enable LDAP signing to prevent man-in-the-middle attacks.")
	}
	if smb := snapshot.SMBPolicy; smb != nil {
		if !smb.ClientSigningRequired {
			add(CategorySMBSigning, 0, "SMB client signing is not required. Enable SMB signing to prevent relay attacks.")
		}
		if !smb.ServerSigningRequired {
			add(CategorySMBSigning, 0, "SMB server signing is not required. Enable SMB signing to prevent relay attacks.")
		}
	}

	if d := snapshot.DomainInfo; d != nil && strings.Contains(d.DomainMode, "2008") {
		add(CategoryDomainMode, 0, "Domain is running in %s mode. Consider upgrading to Windows Server 2016 or later for enhanced security features.", d.DomainMode)
	}
	if f := snapshot.ForestInfo; f != nil && strings.Contains(f.ForestMode, "2008") {
		add(CategoryForestMode, 0, "Forest is running in %s mode. Consider upgrading to Windows Server 2016 or later for enhanced security features.", f.ForestMode)
	}

	if n := len(snapshot.SuspiciousAccounts); n > 0 {
		add(CategorySuspiciousAccounts, n, "%d accounts have security issues. Review and remediate immediately.", n)
	}
	if n := len(snapshot.FailedLogons); n > t.FailedLogonAlert {
		add(CategoryFailedLogons, n, "%d failed logon attempts detected. Investigate potential brute-force attacks.", n)
	}
	if n := len(snapshot.EmptyGroups); n > t.EmptyGroupAlert {
		add(CategoryEmptyGroups, n, "%d empty groups found. Review and remove unused groups to reduce attack surface.", n)
	}
	if n := len(snapshot.LargeGroups); n > 0 {
		add(CategoryLargeGroups, n, "%d groups have >1000 members. Review for over-privileged access and implement least privilege.", n)
	}

	risky := 0
	for _, tpl := range snapshot.CertificateTemplates {
		if tpl.AutoEnrollment && !tpl.RequiresManagerApproval {
			risky++
		}
	}
	if risky > 0 {
		add(CategoryCertificateTemplate, risky, "%d certificate templates allow auto-enrollment without manager approval. This is a security risk.", risky)
	}

	expired := 0
	for _, ca := range snapshot.CertificateAuthorities {
		if ca.IsExpired {
			expired++
		}
	}
	if expired > 0 {
		add(CategoryCertificates, expired, "%d certificate authorities are expired. Renew or remove expired certificates.", expired)
	}

	if len(recs) == 0 {
		add(CategoryGeneral, 0, "No critical issues detected. Continue monitoring and maintain security best practices.")
	}
	return recs
}

func accountRecommendations(snapshot *domain.DirectorySnapshot, t Thresholds) []domain.Recommendation {
	var recs []domain.Recommendation
	count := func(match func(domain.User) bool) int {
		n := 0
		for _, u := range snapshot.Users {
			if match(u) {
				n++
			}
		}
		return n
	}

	if n := count(predicates.HasSPNs); n > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryKerberoasting, Count: n,
			Message: fmt.Sprintf("%d user accounts have SPNs. Move SPNs to Group Managed Service Accounts (gMSA).", n)})
	}
	if n := count(predicates.HasDelegation); n > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryDelegation, Count: n,
			Message: fmt.Sprintf("%d user accounts have delegation enabled. Review and disable unnecessary delegation. Prefer constrained delegation over unconstrained.", n)})
	}

	computers := 0
	for _, c := range snapshot.Computers {
		if predicates.IsRiskyComputerDelegation(c) {
			computers++
		}
	}
	if computers > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryComputerDelegation, Count: computers,
			Message: fmt.Sprintf("%d non-DC computers have delegation. This is a high-risk configuration that should be reviewed.", computers)})
	}

	if n := count(predicates.IsWeakEncryption); n > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryWeakEncryption, Count: n,
			Message: fmt.Sprintf("%d accounts support DES or RC4. Disable these encryption types via Group Policy and update account settings.", n)})
	}
	if n := count(predicates.IsUnprotectedAdmin); n > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryPrivilegedAccounts, Count: n,
			Message: fmt.Sprintf("%d Domain Admins are not in Protected Users group. Add them to reduce credential theft risk.", n)})
	}
	if n := count(predicates.IsInactive); n > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryInactiveAccounts, Count: n,
			Message: fmt.Sprintf("%d accounts haven't logged in for %d+ days. Review and disable/remove if no longer needed.", n, predicates.InactiveLogonDays)})
	}
	if n := count(predicates.HasStalePassword); n > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryPasswordAge, Count: n,
			Message: fmt.Sprintf("%d accounts have passwords older than %d days. Enforce password rotation policies.", n, predicates.StalePasswordDays)})
	}
	if KrbtgtRotationOverdue(snapshot, t) {
		recs = append(recs, domain.Recommendation{Category: CategoryKrbtgt,
			Message: fmt.Sprintf("krbtgt password is %d days old. Rotate krbtgt password (requires domain controller maintenance).",
				int(snapshot.KrbtgtInfo.DaysSincePasswordChange))})
	}
	return recs
}

func endpointRecommendations(statuses []domain.ComputerSecurityStatus) []domain.Recommendation {
	var noAV, noBitLocker, noFirewall int
	for _, s := range statuses {
		if s.Antivirus.Online && !s.Antivirus.Installed {
			noAV++
		}
		if s.BitLocker.Online && !s.BitLocker.Enabled {
			noBitLocker++
		}
		if s.Firewall.Online && !s.Firewall.Enabled {
			noFirewall++
		}
	}

	var recs []domain.Recommendation
	if noAV > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryAntivirus, Count: noAV,
			Message: fmt.Sprintf("%d online computers do not have antivirus installed. Install and maintain antivirus on all systems.", noAV)})
	}
	if noBitLocker > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryBitLocker, Count: noBitLocker,
			Message: fmt.Sprintf("%d online computers do not have BitLocker enabled. Enable full disk encryption on all systems.", noBitLocker)})
	}
	if noFirewall > 0 {
		recs = append(recs, domain.Recommendation{Category: CategoryFirewall, Count: noFirewall,
			Message: fmt.Sprintf("%d online computers have firewall disabled. Enable Windows Firewall on all systems.", noFirewall)})
	}
	return recs
}
