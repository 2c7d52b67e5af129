package outputter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"adriskmap/internal/analysis"
	"adriskmap/internal/domain"
	"adriskmap/internal/mocks"
	"adriskmap/internal/snapshot"
)

func init() {
	color.NoColor = true
}

func sampleResult() *domain.AnalysisResult {
	s := &domain.DirectorySnapshot{
		Domain: "corp.local",
		Users: []domain.User{
			{SamAccountName: "bob", MemberOf: []string{"Domain Admins"}},
			{SamAccountName: "svc_web", SPNs: []string{"HTTP/web01"}},
		},
		Computers:  []domain.Computer{{SamAccountName: "FILE01$", TrustedForDelegation: true}},
		KrbtgtInfo: &domain.KrbtgtInfo{DaysSincePasswordChange: 400},
	}
	return analysis.Run(s, analysis.DefaultOptions())
}

// ===== STEP FORMATTER TESTS =====

func TestFormatPathFlow(t *testing.T) {
	path := domain.AttackPath{Path: []string{"user_bob", "group_Domain Admins", "domain_corp.local"}}
	want := "👤 bob → 👥 Domain Admins → 🏢 corp.local"
	if got := FormatPathFlow(path); got != want {
		t.Errorf("FormatPathFlow() = %q, want %q", got, want)
	}
}

func TestNodeLabel(t *testing.T) {
	tests := map[string]string{
		"user_alice":          "alice",
		"comp_WEB01":          "WEB01",
		"group_Schema Admins": "Schema Admins",
		"unknown":             "unknown",
	}
	for id, want := range tests {
		if got := NodeLabel(id); got != want {
			t.Errorf("NodeLabel(%q) = %q, want %q", id, got, want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{250 * time.Millisecond, "250ms"},
		{1500 * time.Millisecond, "1.5s"},
		{125 * time.Second, "2m 5s"},
	}
	for _, tt := range tests {
		if got := FormatDuration(tt.d); got != tt.want {
			t.Errorf("FormatDuration(%v) = %q, want %q", tt.d, got, tt.want)
		}
	}
}

func TestFormatStepOutput(t *testing.T) {
	out := FormatStepOutput(domain.Step4AttackPaths, "body", 2*time.Second)
	for _, want := range []string{"STEP 4: Attack Paths", "2.0s", domain.Step4AttackPaths.Description, "body\n"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Contains(FormatStepOutput(domain.Step2RiskScores, "", 0), "⏱️") {
		t.Error("zero duration should not print timing")
	}
}

// ===== CONSOLE TESTS =====

func TestConsoleRender(t *testing.T) {
	var buf bytes.Buffer
	result := sampleResult()
	NewConsole(&buf).Render(result, map[string]time.Duration{
		domain.Step2RiskScores.OperationName(): 3 * time.Millisecond,
	})
	out := buf.String()

	for _, want := range []string{
		"ACTIVE DIRECTORY RISK ANALYSIS: corp.local",
		"STEP 2: Risk Scores ⏱️  3ms",
		"STEP 3: Relationship Graph",
		"kerberoasting",
		"CRITICAL",
		"Group Membership",
		"👤 bob → 👥 Domain Admins",
		"krbtgt password age:        400 days (rotation overdue)",
		result.Scores.Classification,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("rendered output missing %q", want)
		}
	}
}

func TestConsoleRenderNoFindings(t *testing.T) {
	var buf bytes.Buffer
	NewConsole(&buf).Render(analysis.Run(&domain.DirectorySnapshot{}, analysis.DefaultOptions()), nil)
	out := buf.String()

	if !strings.Contains(out, "No attack paths detected") {
		t.Error("empty result should say no attack paths were found")
	}
	if !strings.Contains(out, "0/100 Low Risk") {
		t.Errorf("empty result should be 0/100 Low Risk:\n%s", out)
	}
}

func TestFormatGraphStats(t *testing.T) {
	g := &domain.Graph{
		Nodes: []domain.GraphNode{{ID: "domain_X", Kind: domain.NodeKindDomain}, {ID: "user_a", Kind: domain.NodeKindUser}},
		Edges: []domain.GraphEdge{{From: "domain_X", To: "user_a", AttackPath: true}},
	}
	got := FormatGraphStats(g)
	if !strings.Contains(got, "Nodes: 2 (users 1, groups 0, computers 0)") || !strings.Contains(got, "1 on attack paths") {
		t.Errorf("FormatGraphStats() = %q", got)
	}
	if FormatGraphStats(nil) == "" {
		t.Error("nil graph should still render")
	}
}

// ===== REPORT TESTS =====

func newReport() *Report {
	return &Report{
		Tool:        "adriskmap",
		Version:     "test",
		Source:      "snapshot.json",
		GeneratedAt: time.Date(2026, 3, 1, 12, 30, 0, 0, time.UTC),
		Digest:      "abc",
		Result:      sampleResult(),
	}
}

func TestReportFileName(t *testing.T) {
	r := newReport()
	if got, want := r.FileName(), "adriskmap_corp.local_20260301T123000Z.json"; got != want {
		t.Errorf("FileName() = %q, want %q", got, want)
	}
	r.Result.Summary.Domain = "corp/local lab"
	if got := r.FileName(); strings.ContainsAny(got, "/ ") {
		t.Errorf("FileName() = %q contains unsafe characters", got)
	}
}

func TestSaveReportLocal(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "nested", "results")
	location, err := SaveReport(context.Background(), newReport(), dir, nil)
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	data, err := os.ReadFile(location)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("report is not JSON: %v", err)
	}
	for _, key := range []string{"tool", "digest", "result", "metrics", "generated_at"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("report missing %q", key)
		}
	}
}

func TestSaveReportS3(t *testing.T) {
	store := mocks.NewMockS3Client()
	location, err := SaveReport(context.Background(), newReport(), "s3://audits/reports/", store)
	if err != nil {
		t.Fatalf("SaveReport() error = %v", err)
	}

	wantKey := "reports/adriskmap_corp.local_20260301T123000Z.json"
	if location != "s3://audits/"+wantKey {
		t.Errorf("location = %q", location)
	}
	if len(store.Puts) != 1 || store.Puts[0].Key != wantKey || store.Puts[0].ContentType != "application/json" {
		t.Fatalf("puts = %+v", store.Puts)
	}
	if !json.Valid(store.Puts[0].Body) {
		t.Error("uploaded body is not JSON")
	}
}

func TestSaveReportS3Errors(t *testing.T) {
	if _, err := SaveReport(context.Background(), newReport(), "s3://audits", nil); !errors.Is(err, snapshot.ErrNoS3Client) {
		t.Errorf("nil store error = %v, want ErrNoS3Client", err)
	}

	failing := mocks.NewMockS3Client()
	failing.Err = errors.New("AccessDenied")
	if _, err := SaveReport(context.Background(), newReport(), "s3://audits", failing); err == nil {
		t.Error("expected upload error")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, newReport()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if !json.Valid(buf.Bytes()) || !strings.Contains(buf.String(), "\n  \"tool\": \"adriskmap\"") {
		t.Errorf("WriteJSON() = %s", buf.String())
	}
}
