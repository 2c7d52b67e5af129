package app

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"

	"adriskmap/internal/aws"
	"adriskmap/internal/config"
	"adriskmap/internal/domain"
	"adriskmap/internal/mocks"
	"adriskmap/internal/snapshot"
)

func init() {
	color.NoColor = true
}

// the in-memory fakes stand in for the real clients
var (
	_ aws.S3ObjectStore   = (*mocks.MockS3Client)(nil)
	_ aws.SSMGetParameter = (*mocks.MockSSMClient)(nil)
)

func testConfig(t *testing.T, format string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Output.Directory = t.TempDir()
	cfg.Output.Format = format
	return cfg
}

func TestNewAuditorLocalOnly(t *testing.T) {
	a, err := NewAuditor(context.Background(), config.Default(), "test", "snapshot.json", "results")
	if err != nil {
		t.Fatalf("NewAuditor() error = %v", err)
	}
	if a.AccountID() != "" || a.s3Client != nil {
		t.Error("local-only runs should not create AWS clients")
	}
}

func TestAnalyzeFromS3(t *testing.T) {
	store := mocks.NewMockS3Client().
		WithObject("audits", "corp.json", mocks.TestSnapshots.Mixed().JSON())
	a := NewAuditorWithClients(testConfig(t, config.FormatTable), "test", store, nil)

	report, err := a.Analyze(context.Background(), "s3://audits/corp.json")
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	if report.Tool != ToolName || report.Source != "s3://audits/corp.json" || len(report.Digest) != 64 {
		t.Errorf("report header = %+v", report)
	}
	if report.Result.Summary.Domain != "corp.local" || len(report.Result.AttackPaths) == 0 {
		t.Errorf("result = %+v", report.Result.Summary)
	}
	if _, ok := report.Metrics.Operations[domain.Step1LoadSnapshot.OperationName()]; !ok {
		t.Error("load stage was not timed")
	}
	if calls := report.Metrics.APICalls["s3:GetObject"]; calls.Success < 1 {
		t.Errorf("s3 metrics = %+v", calls)
	}
}

func TestAnalyzeDeterministicDigest(t *testing.T) {
	doc := mocks.TestSnapshots.Mixed().JSON()
	a := NewAuditorWithClients(testConfig(t, config.FormatTable), "test", nil, bytes.NewReader(doc))
	first, err := a.Analyze(context.Background(), snapshot.StdinSource)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}

	b := NewAuditorWithClients(testConfig(t, config.FormatTable), "test", nil, bytes.NewReader(doc))
	second, err := b.Analyze(context.Background(), snapshot.StdinSource)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	if first.Digest != second.Digest {
		t.Errorf("digests differ: %s vs %s", first.Digest, second.Digest)
	}
}

func TestAnalyzeErrors(t *testing.T) {
	tests := []struct {
		name    string
		stdin   string
		wantErr error
	}{
		{"array root", `[]`, snapshot.ErrMalformedSnapshot},
		{"not json", `Users: none`, snapshot.ErrMalformedSnapshot},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewAuditorWithClients(testConfig(t, config.FormatTable), "test", nil, strings.NewReader(tt.stdin))
			_, err := a.Analyze(context.Background(), snapshot.StdinSource)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Analyze() error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("cancelled context", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		a := NewAuditorWithClients(testConfig(t, config.FormatTable), "test", nil, strings.NewReader(`{}`))
		if _, err := a.Analyze(ctx, snapshot.StdinSource); !errors.Is(err, context.Canceled) {
			t.Errorf("Analyze() error = %v, want context.Canceled", err)
		}
	})
}

func TestPublish(t *testing.T) {
	tests := []struct {
		format    string
		wantTable bool
		wantJSON  bool
	}{
		{config.FormatTable, true, false},
		{config.FormatJSON, false, true},
		{config.FormatBoth, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			cfg := testConfig(t, tt.format)
			a := NewAuditorWithClients(cfg, "test", nil, bytes.NewReader(mocks.TestSnapshots.DelegatingHost().JSON()))
			report, err := a.Analyze(context.Background(), snapshot.StdinSource)
			if err != nil {
				t.Fatalf("Analyze() error = %v", err)
			}

			var out bytes.Buffer
			location, err := a.Publish(context.Background(), report, &out)
			if err != nil {
				t.Fatalf("Publish() error = %v", err)
			}
			if filepath.Dir(location) != cfg.Output.Directory {
				t.Errorf("saved to %q, want under %q", location, cfg.Output.Directory)
			}
			if _, err := os.Stat(location); err != nil {
				t.Errorf("saved report missing: %v", err)
			}

			text := out.String()
			if got := strings.Contains(text, "STEP 2: Risk Scores"); got != tt.wantTable {
				t.Errorf("table output present = %v, want %v", got, tt.wantTable)
			}
			if got := strings.Contains(text, `"digest": "`); got != tt.wantJSON {
				t.Errorf("json output present = %v, want %v", got, tt.wantJSON)
			}
			if tt.format == config.FormatJSON && !json.Valid(out.Bytes()) {
				t.Error("json format should print a single JSON document")
			}
		})
	}
}

func TestPublishToS3(t *testing.T) {
	store := mocks.NewMockS3Client()
	cfg := testConfig(t, config.FormatJSON)
	cfg.Output.Directory = "s3://audits/reports"
	a := NewAuditorWithClients(cfg, "test", store, strings.NewReader(`{"Domain":"corp.local"}`))

	report, err := a.Analyze(context.Background(), snapshot.StdinSource)
	if err != nil {
		t.Fatalf("Analyze() error = %v", err)
	}
	location, err := a.Publish(context.Background(), report, &bytes.Buffer{})
	if err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	if !strings.HasPrefix(location, "s3://audits/reports/adriskmap_corp.local_") || len(store.Puts) != 1 {
		t.Errorf("location = %q, puts = %d", location, len(store.Puts))
	}
}

func TestResolveConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "adriskmap.yaml")
	if err := os.WriteFile(path, []byte("output:\n  format: json\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	env := map[string]string{"ADRISKMAP_MAX_DELEGATION_EDGES": "4"}

	cfg, err := ResolveConfig(context.Background(), path, func(k string) string { return env[k] })
	if err != nil {
		t.Fatalf("ResolveConfig() error = %v", err)
	}
	if cfg.Output.Format != config.FormatJSON || cfg.Analysis.MaxDelegationEdgesPerUser != 4 {
		t.Errorf("config = %+v", cfg)
	}

	env["ADRISKMAP_MAX_DELEGATION_EDGES"] = "x"
	if _, err := ResolveConfig(context.Background(), "", func(k string) string { return env[k] }); !errors.Is(err, config.ErrInvalidConfig) {
		t.Errorf("ResolveConfig() error = %v, want ErrInvalidConfig", err)
	}
}
