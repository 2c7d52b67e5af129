package predicates

import (
	"testing"

	"adriskmap/internal/domain"
)

func TestUserRiskTier(t *testing.T) {
	tests := []struct {
		name string
		user domain.User
		want domain.RiskTier
	}{
		{
			name: "spns are high",
			user: domain.User{SamAccountName: "svc_sql", SPNs: []string{"MSSQLSvc/db01:1433"}},
			want: domain.RiskTierHigh,
		},
		{
			name: "constrained delegation is high",
			user: domain.User{SamAccountName: "web", TrustedToAuthForDelegation: true},
			want: domain.RiskTierHigh,
		},
		{
			name: "enterprise admin is high",
			user: domain.User{SamAccountName: "ea", MemberOf: []string{"Enterprise Admins"}},
			want: domain.RiskTierHigh,
		},
		{
			name: "rc4 only is medium",
			user: domain.User{SamAccountName: "legacy", EncryptionTypes: []string{"RC4", "AES256"}},
			want: domain.RiskTierMedium,
		},
		{
			name: "des key only does not raise the tier",
			user: domain.User{SamAccountName: "old", UseDESKeyOnly: true},
			want: domain.RiskTierLow,
		},
		{
			name: "plain user is low",
			user: domain.User{SamAccountName: "bob", MemberOf: []string{"Domain Users"}},
			want: domain.RiskTierLow,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := UserRiskTier(tt.user); got != tt.want {
				t.Errorf("UserRiskTier() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestIsGraphUser(t *testing.T) {
	if IsGraphUser(domain.User{SamAccountName: "bob"}) {
		t.Error("low tier user should not be included")
	}
	if !IsGraphUser(domain.User{SamAccountName: "alice", MemberOf: []string{"Domain Admins", "Protected Users"}}) {
		t.Error("domain admin should be included")
	}
	if !IsGraphUser(domain.User{SamAccountName: "legacy", EncryptionTypes: []string{"DES"}}) {
		t.Error("medium tier user should be included")
	}
}

func TestIsWeakEncryption(t *testing.T) {
	tests := []struct {
		name string
		user domain.User
		want bool
	}{
		{"des", domain.User{EncryptionTypes: []string{"DES"}}, true},
		{"rc4", domain.User{EncryptionTypes: []string{"AES128", "RC4"}}, true},
		{"aes only", domain.User{EncryptionTypes: []string{"AES128", "AES256"}}, false},
		{"des key only flag", domain.User{UseDESKeyOnly: true}, true},
		{"nothing", domain.User{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsWeakEncryption(tt.user); got != tt.want {
				t.Errorf("IsWeakEncryption() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestComputerPredicates(t *testing.T) {
	tests := []struct {
		name            string
		computer        domain.Computer
		wantRisky       bool
		wantUnconstr    bool
		wantGraphMember bool
	}{
		{
			name:            "non-dc unconstrained",
			computer:        domain.Computer{SamAccountName: "WEB01$", TrustedForDelegation: true},
			wantRisky:       true,
			wantUnconstr:    true,
			wantGraphMember: true,
		},
		{
			name:            "domain controller",
			computer:        domain.Computer{SamAccountName: "DC01$", TrustedForDelegation: true, IsDomainController: true},
			wantRisky:       false,
			wantUnconstr:    false,
			wantGraphMember: true,
		},
		{
			name:            "target list only",
			computer:        domain.Computer{SamAccountName: "APP01$", ConstrainedDelegation: []string{"cifs/fs01"}},
			wantRisky:       true,
			wantUnconstr:    false,
			wantGraphMember: false,
		},
		{
			name:     "workstation",
			computer: domain.Computer{SamAccountName: "WS01$"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsRiskyComputerDelegation(tt.computer); got != tt.wantRisky {
				t.Errorf("IsRiskyComputerDelegation() = %v, want %v", got, tt.wantRisky)
			}
			if got := HasUnconstrainedComputerDelegation(tt.computer); got != tt.wantUnconstr {
				t.Errorf("HasUnconstrainedComputerDelegation() = %v, want %v", got, tt.wantUnconstr)
			}
			if got := IsGraphComputer(tt.computer); got != tt.wantGraphMember {
				t.Errorf("IsGraphComputer() = %v, want %v", got, tt.wantGraphMember)
			}
		})
	}
}

func TestIsLikelyServiceAccount(t *testing.T) {
	tests := []struct {
		name string
		user domain.User
		want bool
	}{
		{"svc prefix", domain.User{SamAccountName: "SVC_backup"}, true},
		{"service in name", domain.User{SamAccountName: "webservice"}, true},
		{"service in description", domain.User{SamAccountName: "sqlrunner", Description: "SQL Service account"}, true},
		{"regular user", domain.User{SamAccountName: "alice", Description: "Finance"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsLikelyServiceAccount(tt.user); got != tt.want {
				t.Errorf("IsLikelyServiceAccount() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestAgeThresholds(t *testing.T) {
	if IsInactive(domain.User{DaysSinceLastLogon: 90}) {
		t.Error("90 days is not inactive")
	}
	if !IsInactive(domain.User{DaysSinceLastLogon: 90.5}) {
		t.Error("90.5 days is inactive")
	}
	if HasStalePassword(domain.User{DaysSincePasswordChange: 365}) {
		t.Error("365 days is not stale")
	}
	if !HasStalePassword(domain.User{DaysSincePasswordChange: 400}) {
		t.Error("400 days is stale")
	}
}

func TestMembershipPredicates(t *testing.T) {
	admin := domain.User{SamAccountName: "bob", MemberOf: []string{"Domain Admins"}}
	protected := domain.User{SamAccountName: "alice", MemberOf: []string{"Domain Admins", "Protected Users"}}

	if !IsUnprotectedAdmin(admin) {
		t.Error("bob should be an unprotected admin")
	}
	if IsUnprotectedAdmin(protected) {
		t.Error("alice is protected")
	}
	if !IsAccount("KRBTGT", AccountKrbtgt) || IsAccount("krbtgt2", AccountKrbtgt) {
		t.Error("IsAccount should compare case-insensitively and exactly")
	}
	if DelegationKind(domain.User{TrustedForDelegation: true, TrustedToAuthForDelegation: true}) != "Unconstrained" {
		t.Error("unconstrained takes precedence")
	}
}
