// Package analysis runs one complete, deterministic pass over a snapshot:
// scores, relationship graph, attack paths, recommendations and summary counts.
package analysis

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/gowebpki/jcs"

	"adriskmap/internal/attackpath"
	"adriskmap/internal/domain"
	"adriskmap/internal/graph"
	"adriskmap/internal/logging"
	"adriskmap/internal/predicates"
	"adriskmap/internal/recommendations"
	"adriskmap/internal/scoring"
)

// Options configures one analysis run.
type Options struct {
	Graph      graph.Options
	Thresholds recommendations.Thresholds
}

// DefaultOptions returns uncapped graph construction and stock thresholds.
func DefaultOptions() Options {
	return Options{Thresholds: recommendations.DefaultThresholds()}
}

// Run analyzes snapshot. Scores and the graph are computed independently; attack
// path detection runs after the graph exists because it reads node ids and flags edges.
func Run(snapshot *domain.DirectorySnapshot, opts Options) *domain.AnalysisResult {
	if snapshot == nil {
		snapshot = &domain.DirectorySnapshot{}
	}
	metrics := logging.GetMetrics()

	result := &domain.AnalysisResult{}

	stage(metrics, domain.Step2RiskScores, len(snapshot.Users)+len(snapshot.Computers), func() int {
		result.Scores = scoring.Calculate(snapshot)
		return result.Scores.Overall
	})

	stage(metrics, domain.Step3RelationshipGraph, len(snapshot.Users)+len(snapshot.Computers)+len(snapshot.Groups), func() int {
		result.Graph = graph.Build(snapshot, opts.Graph)
		return len(result.Graph.Nodes)
	})

	stage(metrics, domain.Step4AttackPaths, len(result.Graph.Nodes), func() int {
		result.AttackPaths = attackpath.Detect(snapshot, result.Graph)
		return len(result.AttackPaths)
	})

	stage(metrics, domain.Step5Recommendations, len(snapshot.Users), func() int {
		result.Recommendations = recommendations.Generate(snapshot, opts.Thresholds)
		return len(result.Recommendations)
	})

	result.Summary = Summarize(snapshot, result.AttackPaths, opts.Thresholds)
	return result
}

func stage(metrics *logging.Metrics, step domain.Step, processed int, fn func() int) {
	operation := step.OperationName()
	logging.LogOperationStart(operation, map[string]interface{}{"description": step.Description})
	start := time.Now()

	found := fn()

	duration := time.Since(start)
	metrics.RecordOperation(operation, duration, true, processed, found, nil)
	logging.LogOperationEnd(operation, duration, true, processed, found, nil)
}

// Summarize recomputes the aggregate counts renderers display, using the same
// predicates as scoring.
func Summarize(snapshot *domain.DirectorySnapshot, paths []domain.AttackPath, t recommendations.Thresholds) domain.Summary {
	s := domain.Summary{
		Domain:                snapshot.Domain,
		TotalUsers:            len(snapshot.Users),
		TotalComputers:        len(snapshot.Computers),
		ServiceAccounts:       len(snapshot.ServiceAccounts),
		AttackPathsBySeverity: attackpath.CountBySeverity(paths),
	}
	if s.Domain == "" {
		s.Domain = domain.DefaultDomainName
	}

	for _, u := range snapshot.Users {
		if predicates.HasSPNs(u) {
			s.UsersWithSPNs++
		}
		if predicates.HasDelegation(u) {
			s.UsersWithDelegation++
		}
		if predicates.IsWeakEncryption(u) {
			s.WeakEncryption++
		}
		if predicates.IsDomainAdmin(u) {
			s.DomainAdmins++
		}
		if predicates.IsUnprotectedAdmin(u) {
			s.UnprotectedAdmins++
		}
		if predicates.IsInactive(u) {
			s.InactiveUsers++
		}
		if predicates.HasStalePassword(u) {
			s.StalePasswords++
		}
	}
	for _, c := range snapshot.Computers {
		if predicates.IsRiskyComputerDelegation(c) {
			s.ComputersWithDelegation++
		}
		if c.IsDomainController {
			s.DomainControllers++
		}
	}
	if snapshot.Statistics != nil && snapshot.Statistics.NTLMEventCount > 0 {
		s.NTLMEvents = snapshot.Statistics.NTLMEventCount
	}
	if snapshot.KrbtgtInfo != nil {
		days := int(snapshot.KrbtgtInfo.DaysSincePasswordChange)
		s.KrbtgtPasswordAgeDays = &days
		s.KrbtgtRotationOverdue = recommendations.KrbtgtRotationOverdue(snapshot, t)
	}
	return s
}

// Digest returns the SHA-256 hex digest of the RFC 8785 canonical JSON form of
// result. Identical analyses yield identical digests.
func Digest(result *domain.AnalysisResult) (string, error) {
	raw, err := json.Marshal(result)
	if err != nil {
		return "", fmt.Errorf("failed to marshal analysis result: %w", err)
	}
	canonical, err := jcs.Transform(raw)
	if err != nil {
		return "", fmt.Errorf("failed to canonicalize analysis result: %w", err)
	}
	sum := sha256.Sum256(canonical)
	return hex.EncodeToString(sum[:]), nil
}
