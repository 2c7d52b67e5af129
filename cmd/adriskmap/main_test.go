package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"adriskmap/internal/mocks"
)

func init() {
	color.NoColor = true
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func writeSnapshot(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "snapshot.json")
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write snapshot: %v", err)
	}
	return path
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version error = %v", err)
	}
	if !strings.HasPrefix(out, "adriskmap ") {
		t.Errorf("version output = %q", out)
	}
}

func TestAnalyzeCommandJSON(t *testing.T) {
	input := writeSnapshot(t, mocks.TestSnapshots.Mixed().JSON())
	outDir := t.TempDir()

	out, err := execute(t, "analyze", input, "--output", outDir, "--format", "json", "--max-delegation-edges", "1")
	if err != nil {
		t.Fatalf("analyze error = %v\n%s", err, out)
	}

	var report struct {
		Digest string `json:"digest"`
		Result struct {
			Summary struct {
				Domain string `json:"domain"`
			} `json:"summary"`
			Graph struct {
				Edges []struct {
					Relation string `json:"relation"`
				} `json:"edges"`
			} `json:"graph"`
		} `json:"result"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("stdout is not a JSON report: %v\n%s", err, out)
	}
	if report.Result.Summary.Domain != "corp.local" || len(report.Digest) != 64 {
		t.Errorf("report = %+v", report)
	}
	delegates := 0
	for _, e := range report.Result.Graph.Edges {
		if e.Relation == "DelegatesTo" {
			delegates++
		}
	}
	if delegates != 1 {
		t.Errorf("DelegatesTo edges = %d, want 1 with --max-delegation-edges 1", delegates)
	}

	saved, _ := filepath.Glob(filepath.Join(outDir, "adriskmap_corp.local_*.json"))
	if len(saved) != 1 {
		t.Errorf("saved reports = %v, want one", saved)
	}
}

func TestAnalyzeCommandTable(t *testing.T) {
	input := writeSnapshot(t, mocks.TestSnapshots.DelegatingHost().JSON())

	out, err := execute(t, "analyze", "--input", input, "--output", t.TempDir())
	if err != nil {
		t.Fatalf("analyze error = %v\n%s", err, out)
	}
	for _, want := range []string{"STEP 4: Attack Paths", "Unconstrained Delegation", "Saved report to:"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
}

func TestAnalyzeCommandErrors(t *testing.T) {
	array := writeSnapshot(t, []byte(`[{"SamAccountName":"alice"}]`))
	valid := writeSnapshot(t, []byte(`{}`))

	tests := []struct {
		name string
		args []string
	}{
		{"no input", []string{"analyze"}},
		{"array root", []string{"analyze", array, "--output", t.TempDir()}},
		{"missing file", []string{"analyze", filepath.Join(t.TempDir(), "absent.json")}},
		{"bad format", []string{"analyze", valid, "--format", "html"}},
		{"negative cap", []string{"analyze", valid, "--max-delegation-edges", "-1"}},
		{"conflicting input", []string{"analyze", valid, "--input", array}},
		{"missing config", []string{"analyze", valid, "--config", filepath.Join(t.TempDir(), "absent.yaml")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := execute(t, tt.args...); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestValidateCommand(t *testing.T) {
	input := writeSnapshot(t, []byte(`{"Domain":"corp.local","Users":[{"SamAccountName":"alice"}, 7],"Computers":"none"}`))

	out, err := execute(t, "validate", input)
	if err != nil {
		t.Fatalf("validate error = %v", err)
	}
	for _, want := range []string{"Users", "malformed", "valid snapshot of corp.local (1 users"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	bad := writeSnapshot(t, []byte(`"just a string"`))
	if _, err := execute(t, "validate", bad); err == nil {
		t.Error("expected error for non-object snapshot")
	}
}
