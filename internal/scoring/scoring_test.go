package scoring

import (
	"fmt"
	"math"
	"testing"

	"adriskmap/internal/domain"
)

func TestCalculateScenarios(t *testing.T) {
	tests := []struct {
		name     string
		snapshot *domain.DirectorySnapshot
		want     domain.RiskScoreSet
	}{
		{
			name:     "empty snapshot",
			snapshot: &domain.DirectorySnapshot{},
			want:     domain.RiskScoreSet{Classification: domain.ClassificationLow},
		},
		{
			name:     "nil snapshot",
			snapshot: nil,
			want:     domain.RiskScoreSet{Classification: domain.ClassificationLow},
		},
		{
			name: "single kerberoastable service account",
			snapshot: &domain.DirectorySnapshot{
				Users: []domain.User{{SamAccountName: "svc_sql", SPNs: []string{"MSSQLSvc/host:1433"}}},
			},
			want: domain.RiskScoreSet{Kerberoasting: 10, Overall: 1, Classification: domain.ClassificationLow},
		},
		{
			name: "single delegating non-dc computer",
			snapshot: &domain.DirectorySnapshot{
				Computers: []domain.Computer{{SamAccountName: "WEB01$", TrustedForDelegation: true}},
			},
			want: domain.RiskScoreSet{Delegation: 20, Overall: 2, Classification: domain.ClassificationLow},
		},
		{
			name: "protected domain admin",
			snapshot: &domain.DirectorySnapshot{
				Users: []domain.User{{SamAccountName: "alice", MemberOf: []string{"Domain Admins", "Protected Users"}}},
			},
			want: domain.RiskScoreSet{Classification: domain.ClassificationLow},
		},
		{
			name: "domain controllers do not count",
			snapshot: &domain.DirectorySnapshot{
				Computers: []domain.Computer{
					{SamAccountName: "DC01$", TrustedForDelegation: true, IsDomainController: true},
					{SamAccountName: "APP01$", ConstrainedDelegation: []string{"cifs/fs01"}},
				},
			},
			want: domain.RiskScoreSet{Delegation: 20, Overall: 2, Classification: domain.ClassificationLow},
		},
		{
			name: "ntlm is capped",
			snapshot: &domain.DirectorySnapshot{
				Statistics: &domain.Statistics{NTLMEventCount: 75},
			},
			want: domain.RiskScoreSet{NTLM: 100, Overall: 10, Classification: domain.ClassificationLow},
		},
		{
			name: "negative ntlm count is ignored",
			snapshot: &domain.DirectorySnapshot{
				Statistics: &domain.Statistics{NTLMEventCount: -4},
			},
			want: domain.RiskScoreSet{Classification: domain.ClassificationLow},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Calculate(tt.snapshot)
			if got != tt.want {
				t.Errorf("Calculate() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCalculateStalePasswords(t *testing.T) {
	snapshot := &domain.DirectorySnapshot{}
	for i := 0; i < 12; i++ {
		snapshot.Users = append(snapshot.Users, domain.User{
			SamAccountName:          fmt.Sprintf("user%02d", i),
			DaysSincePasswordChange: 400,
		})
	}

	got := Calculate(snapshot)
	if got.Inactive != 36 {
		t.Errorf("Inactive = %d, want 36", got.Inactive)
	}
	if got.Overall != 3 {
		t.Errorf("Overall = %d, want 3", got.Overall)
	}
	if got.Classification != domain.ClassificationLow {
		t.Errorf("Classification = %s, want %s", got.Classification, domain.ClassificationLow)
	}
}

func TestCalculateMixed(t *testing.T) {
	snapshot := &domain.DirectorySnapshot{
		Users: []domain.User{
			{SamAccountName: "bob", MemberOf: []string{"Domain Admins"}, EncryptionTypes: []string{"RC4"}},
			{SamAccountName: "web", TrustedForDelegation: true, SPNs: []string{"HTTP/web"}},
			{SamAccountName: "old", UseDESKeyOnly: true, DaysSinceLastLogon: 120, DaysSincePasswordChange: 500},
		},
		Statistics: &domain.Statistics{NTLMEventCount: 10},
	}

	got := Calculate(snapshot)
	want := domain.RiskScoreSet{
		Kerberoasting:  10,
		Delegation:     15,
		Encryption:     10,
		NTLM:           20,
		Privileged:     25,
		Inactive:       5,
		Overall:        8,
		Classification: domain.ClassificationLow,
	}
	if got != want {
		t.Errorf("Calculate() = %+v, want %+v", got, want)
	}
}

func TestOverallBounds(t *testing.T) {
	tests := []struct {
		total int
		want  int
	}{
		{-5, 0},
		{0, 0},
		{9, 0},
		{299, 29},
		{300, 30},
		{1000, 100},
		{5000, 100},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("total=%d", tt.total), func(t *testing.T) {
			if got := Overall(tt.total); got != tt.want {
				t.Errorf("Overall(%d) = %d, want %d", tt.total, got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		overall int
		want    string
	}{
		{0, domain.ClassificationLow},
		{29, domain.ClassificationLow},
		{30, domain.ClassificationMedium},
		{69, domain.ClassificationMedium},
		{70, domain.ClassificationHigh},
		{100, domain.ClassificationHigh},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("overall=%d", tt.overall), func(t *testing.T) {
			if got := Classify(tt.overall); got != tt.want {
				t.Errorf("Classify(%d) = %s, want %s", tt.overall, got, tt.want)
			}
		})
	}
}

func TestCalculateLargeEnvironmentStaysBounded(t *testing.T) {
	snapshot := &domain.DirectorySnapshot{Statistics: &domain.Statistics{NTLMEventCount: 1 << 20}}
	for i := 0; i < 500; i++ {
		snapshot.Users = append(snapshot.Users, domain.User{
			SamAccountName:       fmt.Sprintf("da%03d", i),
			MemberOf:             []string{"Domain Admins"},
			SPNs:                 []string{"HTTP/x"},
			TrustedForDelegation: true,
		})
	}

	got := Calculate(snapshot)
	if got.Overall != 100 || got.Classification != domain.ClassificationHigh {
		t.Errorf("got overall %d %s, want 100 %s", got.Overall, got.Classification, domain.ClassificationHigh)
	}
	for _, c := range got.Categories() {
		if c.Score < 0 {
			t.Errorf("category %s is negative: %d", c.Name, c.Score)
		}
	}
}

func TestNTLMBoundaries(t *testing.T) {
	tests := []struct {
		count int
		want  int
	}{
		{0, 0},
		{-1, 0},
		{1, 2},
		{49, 98},
		{50, 100},
		{51, 100},
		{math.MaxInt / 2, 100},
		{math.MaxInt/2 + 1, 100},
		{math.MaxInt, 100},
		{math.MinInt, 0},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("count=%d", tt.count), func(t *testing.T) {
			snapshot := &domain.DirectorySnapshot{Statistics: &domain.Statistics{NTLMEventCount: tt.count}}
			if got := NTLM(snapshot); got != tt.want {
				t.Errorf("NTLM() = %d, want %d", got, tt.want)
			}
			scores := Calculate(snapshot)
			if scores.NTLM != tt.want || scores.Overall != Overall(tt.want) {
				t.Errorf("Calculate() = %+v", scores)
			}
		})
	}
}
