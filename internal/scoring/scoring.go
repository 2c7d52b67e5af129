// Package scoring computes the category risk sub-scores and the overall score.
package scoring

import (
	"adriskmap/internal/domain"
	"adriskmap/internal/predicates"
)

// Category weights
const (
	KerberoastingWeight      = 10
	UserDelegationWeight     = 15
	ComputerDelegationWeight = 20
	EncryptionWeight         = 5
	NTLMWeight               = 2
	NTLMCap                  = 100
	PrivilegedWeight         = 25
	InactiveWeight           = 2
	StalePasswordWeight      = 3

	MaxOverall = 100
)

// Calculate scores one snapshot. Absent sections contribute zero.
func Calculate(snapshot *domain.DirectorySnapshot) domain.RiskScoreSet {
	var scores domain.RiskScoreSet
	if snapshot == nil {
		scores.Classification = Classify(0)
		return scores
	}

	scores.Kerberoasting = Kerberoasting(snapshot)
	scores.Delegation = Delegation(snapshot)
	scores.Encryption = Encryption(snapshot)
	scores.NTLM = NTLM(snapshot)
	scores.Privileged = Privileged(snapshot)
	scores.Inactive = Inactive(snapshot)

	scores.Overall = Overall(scores.Total())
	scores.Classification = Classify(scores.Overall)
	return scores
}

// Kerberoasting weighs users holding SPNs.
func Kerberoasting(snapshot *domain.DirectorySnapshot) int {
	return KerberoastingWeight * countUsers(snapshot.Users, predicates.HasSPNs)
}

// Delegation weighs delegating users and delegating non-DC computers.
func Delegation(snapshot *domain.DirectorySnapshot) int {
	computers := 0
	for _, c := range snapshot.Computers {
		if predicates.IsRiskyComputerDelegation(c) {
			computers++
		}
	}
	return UserDelegationWeight*countUsers(snapshot.Users, predicates.HasDelegation) +
		ComputerDelegationWeight*computers
}

// Encryption weighs users supporting DES or RC4.
func Encryption(snapshot *domain.DirectorySnapshot) int {
	return EncryptionWeight * countUsers(snapshot.Users, predicates.IsWeakEncryption)
}

// NTLM weighs the collected NTLM event count, capped.
func NTLM(snapshot *domain.DirectorySnapshot) int {
	if snapshot.Statistics == nil || snapshot.Statistics.NTLMEventCount <= 0 {
		return 0
	}
	count := snapshot.Statistics.NTLMEventCount
	// cap before weighting so huge counts cannot overflow
	if count >= NTLMCap/NTLMWeight {
		return NTLMCap
	}
	return NTLMWeight * count
}

// Privileged weighs Domain Admins outside Protected Users.
func Privileged(snapshot *domain.DirectorySnapshot) int {
	return PrivilegedWeight * countUsers(snapshot.Users, predicates.IsUnprotectedAdmin)
}

// Inactive weighs stale logons and stale passwords.
func Inactive(snapshot *domain.DirectorySnapshot) int {
	return InactiveWeight*countUsers(snapshot.Users, predicates.IsInactive) +
		StalePasswordWeight*countUsers(snapshot.Users, predicates.HasStalePassword)
}

// Overall maps the category total onto [0,100] using truncating division.
func Overall(total int) int {
	if total <= 0 {
		return 0
	}
	return min(total/10, MaxOverall)
}

// Classify returns the classification label for an overall score.
func Classify(overall int) string {
	switch {
	case overall < 30:
		return domain.ClassificationLow
	case overall < 70:
		return domain.ClassificationMedium
	default:
		return domain.ClassificationHigh
	}
}

func countUsers(users []domain.User, match func(domain.User) bool) int {
	n := 0
	for _, u := range users {
		if match(u) {
			n++
		}
	}
	return n
}
