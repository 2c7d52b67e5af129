package snapshot

import (
	"adriskmap/internal/domain"
	"adriskmap/internal/normalize"
)

// Group sections in lookup order
var groupSections = []string{"SecurityGroups", "Groups"}

// =============================================================================
// Principals
// =============================================================================

func decodeUsers(root normalize.Record) []domain.User {
	records := section(root, "Users")
	users := make([]domain.User, 0, len(records))
	for _, r := range records {
		users = append(users, domain.User{
			SamAccountName:             normalize.String(r, "SamAccountName"),
			DisplayName:                normalize.String(r, "DisplayName"),
			Description:                normalize.String(r, "Description"),
			Enabled:                    normalize.Bool(r, "Enabled"),
			SPNs:                       spns(r),
			TrustedForDelegation:       normalize.Bool(r, "TrustedForDelegation"),
			TrustedToAuthForDelegation: normalize.Bool(r, "TrustedToAuthForDelegation"),
			EncryptionTypes:            normalize.EncryptionTypes(r, "EncryptionTypes"),
			UseDESKeyOnly:              normalize.Bool(r, "UseDESKeyOnly"),
			MemberOf:                   normalize.Membership(r, "MemberOf"),
			DaysSinceLastLogon:         normalize.Number(r, "DaysSinceLastLogon"),
			DaysSincePasswordChange:    normalize.Number(r, "DaysSincePasswordChange"),
			PasswordNeverExpires:       normalize.Bool(r, "PasswordNeverExpires"),
			PasswordLastSet:            normalize.String(r, "PasswordLastSet"),
			DoesNotRequirePreAuth:      normalize.Bool(r, "DoesNotRequirePreAuth"),
		})
	}
	return users
}

func decodeComputers(root normalize.Record) []domain.Computer {
	records := section(root, "Computers")
	computers := make([]domain.Computer, 0, len(records))
	for _, r := range records {
		computers = append(computers, domain.Computer{
			SamAccountName:             normalize.String(r, "SamAccountName"),
			OperatingSystem:            normalize.String(r, "OperatingSystem"),
			Enabled:                    normalize.Bool(r, "Enabled"),
			SPNs:                       spns(r),
			TrustedForDelegation:       normalize.Bool(r, "TrustedForDelegation"),
			TrustedToAuthForDelegation: normalize.Bool(r, "TrustedToAuthForDelegation"),
			ConstrainedDelegation:      normalize.Strings(r, "ConstrainedDelegation"),
			EncryptionTypes:            normalize.EncryptionTypes(r, "EncryptionTypes"),
			IsDomainController:         normalize.Bool(r, "IsDomainController"),
			MemberOf:                   normalize.Membership(r, "MemberOf"),
		})
	}
	return computers
}

func decodeServiceAccounts(root normalize.Record) []domain.ServiceAccount {
	records := section(root, "ServiceAccounts")
	accounts := make([]domain.ServiceAccount, 0, len(records))
	for _, r := range records {
		accounts = append(accounts, domain.ServiceAccount{
			Type:                       normalize.String(r, "Type"),
			SamAccountName:             normalize.String(r, "SamAccountName"),
			SPNs:                       spns(r),
			TrustedForDelegation:       normalize.Bool(r, "TrustedForDelegation"),
			TrustedToAuthForDelegation: normalize.Bool(r, "TrustedToAuthForDelegation"),
			MemberOf:                   normalize.Membership(r, "MemberOf"),
		})
	}
	return accounts
}

// spns reads the SPN list, accepting the long attribute name some collectors emit.
func spns(r normalize.Record) []string {
	field := normalize.FirstPresent(r, "SPNs", "ServicePrincipalNames", "ServicePrincipalName")
	if field == "" {
		return []string{}
	}
	return normalize.Strings(r, field)
}

// =============================================================================
// Groups and trusts
// =============================================================================

func decodeGroups(root normalize.Record) []domain.Group {
	field := normalize.FirstPresent(root, groupSections...)
	if field == "" {
		field = groupSections[0]
	}
	records := section(root, field)
	groups := make([]domain.Group, 0, len(records))
	for _, r := range records {
		groups = append(groups, domain.Group{
			Name:    normalize.GroupName(normalize.StringOr(r, "Name", normalize.String(r, "SamAccountName"))),
			Scope:   normalize.String(r, "GroupScope"),
			Members: members(r),
		})
	}
	return groups
}

// members accepts member objects or bare account names.
func members(r normalize.Record) []domain.GroupMember {
	raw, ok := r["Members"].([]interface{})
	if !ok {
		return []domain.GroupMember{}
	}
	result := make([]domain.GroupMember, 0, len(raw))
	for _, item := range raw {
		switch v := item.(type) {
		case string:
			if name := normalize.GroupName(v); name != "" {
				result = append(result, domain.GroupMember{SamAccountName: name})
			}
		case map[string]interface{}:
			m := normalize.Record(v)
			name := normalize.StringOr(m, "SamAccountName", normalize.String(m, "Name"))
			if name == "" {
				continue
			}
			result = append(result, domain.GroupMember{
				SamAccountName: name,
				ObjectClass:    normalize.String(m, "ObjectClass"),
			})
		}
	}
	return result
}

func decodeTrusts(root normalize.Record) []domain.TrustRelationship {
	records := section(root, "TrustRelationships")
	trusts := make([]domain.TrustRelationship, 0, len(records))
	for _, r := range records {
		trusts = append(trusts, domain.TrustRelationship{
			Name:                    normalize.String(r, "Name"),
			Direction:               normalize.String(r, "Direction"),
			TrustType:               normalize.String(r, "TrustType"),
			SIDFilteringForestAware: normalize.Bool(r, "SIDFilteringForestAware"),
			SelectiveAuthentication: normalize.Bool(r, "SelectiveAuthentication"),
		})
	}
	return trusts
}

// =============================================================================
// Single-object sections
// =============================================================================

func decodeStatistics(root normalize.Record) *domain.Statistics {
	r, ok := object(root, "Statistics")
	if !ok {
		return nil
	}
	return &domain.Statistics{
		TotalUsers:              normalize.Int(r, "TotalUsers"),
		TotalComputers:          normalize.Int(r, "TotalComputers"),
		UsersWithSPNs:           normalize.Int(r, "UsersWithSPNs"),
		UsersWithDelegation:     normalize.Int(r, "UsersWithDelegation"),
		ComputersWithDelegation: normalize.Int(r, "ComputersWithDelegation"),
		NTLMEventCount:          normalize.Int(r, "NTLMEventCount"),
	}
}

func decodeKrbtgtInfo(root normalize.Record) *domain.KrbtgtInfo {
	r, ok := object(root, "KrbtgtInfo")
	if !ok {
		return nil
	}
	return &domain.KrbtgtInfo{
		PasswordLastSet:         normalize.String(r, "PasswordLastSet"),
		DaysSincePasswordChange: normalize.Number(r, "DaysSincePasswordChange"),
	}
}

func decodePasswordPolicy(root normalize.Record) *domain.PasswordPolicy {
	r, ok := object(root, "PasswordPolicy")
	if !ok {
		return nil
	}
	return &domain.PasswordPolicy{
		MinPasswordLength:           normalize.Int(r, "MinPasswordLength"),
		ComplexityEnabled:           normalize.Bool(r, "ComplexityEnabled"),
		ReversibleEncryptionEnabled: normalize.Bool(r, "ReversibleEncryptionEnabled"),
		LockoutThreshold:            normalize.Int(r, "LockoutThreshold"),
		MaxPasswordAgeDays:          normalize.Int(r, "MaxPasswordAge"),
	}
}

func decodeLDAPPolicy(root normalize.Record) *domain.LDAPPolicy {
	r, ok := object(root, "LDAPPolicy")
	if !ok {
		return nil
	}
	return &domain.LDAPPolicy{LDAPSigningRequired: normalize.Bool(r, "LDAPSigningRequired")}
}

func decodeSMBPolicy(root normalize.Record) *domain.SMBPolicy {
	r, ok := object(root, "SMBPolicy")
	if !ok {
		return nil
	}
	return &domain.SMBPolicy{
		ClientSigningRequired: normalize.Bool(r, "ClientSigningRequired"),
		ServerSigningRequired: normalize.Bool(r, "ServerSigningRequired"),
	}
}

func decodeDomainInfo(root normalize.Record) *domain.DomainInfo {
	r, ok := object(root, "DomainInfo")
	if !ok {
		return nil
	}
	return &domain.DomainInfo{
		Name:       normalize.String(r, "Name"),
		DomainMode: normalize.String(r, "DomainMode"),
	}
}

func decodeForestInfo(root normalize.Record) *domain.ForestInfo {
	r, ok := object(root, "ForestInfo")
	if !ok {
		return nil
	}
	return &domain.ForestInfo{
		Name:       normalize.StringOr(r, "Name", normalize.String(r, "RootDomain")),
		ForestMode: normalize.String(r, "ForestMode"),
	}
}

// =============================================================================
// Event samples and findings lists
// =============================================================================

func decodeNTLMEvents(root normalize.Record) []domain.NTLMEvent {
	records := section(root, "NTLMEvents")
	events := make([]domain.NTLMEvent, 0, len(records))
	for _, r := range records {
		events = append(events, domain.NTLMEvent{
			AccountName:               normalize.String(r, "AccountName"),
			AccountDomain:             normalize.String(r, "AccountDomain"),
			IPAddress:                 normalize.StringOr(r, "IPAddress", normalize.String(r, "WorkstationName")),
			LogonType:                 normalize.String(r, "LogonType"),
			AuthenticationPackageName: normalize.String(r, "AuthenticationPackageName"),
		})
	}
	return events
}

func decodeFailedLogons(root normalize.Record) []domain.FailedLogon {
	records := section(root, "FailedLogons")
	logons := make([]domain.FailedLogon, 0, len(records))
	for _, r := range records {
		logons = append(logons, domain.FailedLogon{
			AccountName: normalize.String(r, "AccountName"),
			IPAddress:   normalize.StringOr(r, "IPAddress", normalize.String(r, "WorkstationName")),
			Count:       normalize.Int(r, "Count"),
		})
	}
	return logons
}

// decodeNames reads a list whose entries are either names or objects carrying one.
func decodeNames(root normalize.Record, field string) []string {
	raw, exists := root[field]
	if !exists || raw == nil {
		report(field, normalize.SectionMissing, 0, 0)
		return []string{}
	}
	items, ok := raw.([]interface{})
	if !ok {
		report(field, normalize.SectionMalformed, 0, 0)
		return []string{}
	}

	names := make([]string, 0, len(items))
	skipped := 0
	for _, item := range items {
		var name string
		switch v := item.(type) {
		case string:
			name = v
		case map[string]interface{}:
			r := normalize.Record(v)
			if f := normalize.FirstPresent(r, "Name", "SamAccountName", "GroupName"); f != "" {
				name = normalize.String(r, f)
			}
		}
		if name == "" {
			skipped++
			continue
		}
		names = append(names, name)
	}
	report(field, normalize.SectionPresent, len(names), skipped)
	return names
}

func decodeCertificateTemplates(root normalize.Record) []domain.CertificateTemplate {
	records := section(root, "CertificateTemplates")
	templates := make([]domain.CertificateTemplate, 0, len(records))
	for _, r := range records {
		templates = append(templates, domain.CertificateTemplate{
			Name:                    normalize.String(r, "Name"),
			RequiresManagerApproval: normalize.Bool(r, "RequiresManagerApproval"),
			AutoEnrollment:          normalize.Bool(r, "AutoEnrollment"),
		})
	}
	return templates
}

func decodeCertificateAuthorities(root normalize.Record) []domain.CertificateAuthority {
	records := section(root, "CertificateAuthorities")
	cas := make([]domain.CertificateAuthority, 0, len(records))
	for _, r := range records {
		cas = append(cas, domain.CertificateAuthority{
			Name:      normalize.String(r, "Name"),
			IsExpired: normalize.Bool(r, "IsExpired"),
		})
	}
	return cas
}

func decodeComputerSecurityStatus(root normalize.Record) []domain.ComputerSecurityStatus {
	records := section(root, "ComputerSecurityStatus")
	statuses := make([]domain.ComputerSecurityStatus, 0, len(records))
	for _, r := range records {
		statuses = append(statuses, domain.ComputerSecurityStatus{
			ComputerName: normalize.String(r, "ComputerName"),
			Antivirus:    protection(r, "Antivirus"),
			BitLocker:    protection(r, "BitLocker"),
			Firewall:     protection(r, "Firewall"),
		})
	}
	return statuses
}

func protection(r normalize.Record, field string) domain.ProtectionInfo {
	obj, ok := normalize.Object(r, field)
	if !ok {
		return domain.ProtectionInfo{}
	}
	return domain.ProtectionInfo{
		Online:    normalize.Bool(obj, "Online"),
		Installed: normalize.Bool(obj, "Installed"),
		Enabled:   normalize.Bool(obj, "Enabled"),
	}
}
