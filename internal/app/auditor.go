package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"adriskmap/internal/analysis"
	"adriskmap/internal/aws"
	"adriskmap/internal/config"
	"adriskmap/internal/domain"
	"adriskmap/internal/logging"
	"adriskmap/internal/outputter"
	"adriskmap/internal/snapshot"
)

// ToolName is stamped on every report
const ToolName = "adriskmap"

// Auditor holds the settings and remote clients of one run
type Auditor struct {
	cfg       *config.Config
	version   string
	accountID string
	s3Client  aws.S3ObjectStore
	stdin     io.Reader
}

// NewAuditor builds an auditor. AWS clients are only created when a source
// or destination is an s3:// location, after an STS credential preflight.
func NewAuditor(ctx context.Context, cfg *config.Config, version string, locations ...string) (*Auditor, error) {
	a := &Auditor{cfg: cfg, version: version}

	needsS3 := false
	for _, loc := range locations {
		if snapshot.IsS3URI(loc) {
			needsS3 = true
		}
	}
	if !needsS3 {
		return a, nil
	}

	// Preflight: verify AWS credentials work before doing anything else
	accountID, err := aws.GetAccountID(ctx)
	if err != nil {
		return nil, fmt.Errorf("AWS credential check failed (ensure valid credentials via env vars, IAM role, or SSO): %w", err)
	}
	a.accountID = accountID
	logging.LogInfo("AWS credentials verified", map[string]interface{}{"account_id": accountID})

	client, err := aws.S3Client(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize s3 client: %w", err)
	}
	a.s3Client = client
	return a, nil
}

// NewAuditorWithClients builds an auditor around existing clients.
func NewAuditorWithClients(cfg *config.Config, version string, s3Client aws.S3ObjectStore, stdin io.Reader) *Auditor {
	return &Auditor{cfg: cfg, version: version, s3Client: s3Client, stdin: stdin}
}

// AccountID returns the AWS account verified at startup, if any.
func (a *Auditor) AccountID() string {
	return a.accountID
}

func (a *Auditor) reader() *snapshot.Reader {
	r := &snapshot.Reader{Stdin: a.stdin}
	if a.s3Client != nil {
		r.S3 = a.s3Client
	}
	return r
}

func (a *Auditor) store() aws.S3PutObject {
	if a.s3Client == nil {
		return nil
	}
	return a.s3Client
}

// Load reads and decodes the snapshot at source, timed as the first stage.
// It starts a fresh metrics window for the run.
func (a *Auditor) Load(ctx context.Context, source string) (*domain.DirectorySnapshot, error) {
	logging.GetMetrics().Reset()
	operation := domain.Step1LoadSnapshot.OperationName()
	logging.LogOperationStart(operation, map[string]interface{}{"source": source})
	start := time.Now()

	s, err := a.reader().Load(ctx, source)

	duration := time.Since(start)
	found := 0
	if s != nil {
		found = len(s.Users) + len(s.Computers) + len(s.Groups)
	}
	logging.GetMetrics().RecordOperation(operation, duration, err == nil, 1, found, err)
	logging.LogOperationEnd(operation, duration, err == nil, 1, found, err)
	if err != nil {
		return nil, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return s, nil
}

// Analyze loads source and runs the full analysis.
func (a *Auditor) Analyze(ctx context.Context, source string) (*outputter.Report, error) {
	s, err := a.Load(ctx, source)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := analysis.Run(s, a.cfg.AnalysisOptions())
	digest, err := analysis.Digest(result)
	if err != nil {
		return nil, err
	}

	return &outputter.Report{
		Tool:        ToolName,
		Version:     a.version,
		Source:      source,
		GeneratedAt: time.Now().UTC(),
		Digest:      digest,
		Result:      result,
		Metrics:     logging.GetMetrics().Finish(),
	}, nil
}

// Publish prints report in the configured format to w and saves it to the
// configured directory. It returns where the report was saved.
func (a *Auditor) Publish(ctx context.Context, report *outputter.Report, w io.Writer) (string, error) {
	switch a.cfg.Output.Format {
	case config.FormatJSON:
		if err := outputter.WriteJSON(w, report); err != nil {
			return "", err
		}
	case config.FormatBoth:
		outputter.NewConsole(w).Render(report.Result, Timings(report.Metrics))
		if err := outputter.WriteJSON(w, report); err != nil {
			return "", err
		}
	default:
		outputter.NewConsole(w).Render(report.Result, Timings(report.Metrics))
	}

	return outputter.SaveReport(ctx, report, a.cfg.Output.Directory, a.store())
}

// Timings extracts per-operation durations from a metrics summary.
func Timings(m logging.MetricsSummary) map[string]time.Duration {
	timings := make(map[string]time.Duration, len(m.Operations))
	for name, op := range m.Operations {
		timings[name] = op.Duration
	}
	return timings
}

// ResolveConfig loads settings from source: empty for defaults, "ssm:<name>"
// for Parameter Store, anything else as a YAML file. Environment overrides
// are applied afterwards.
func ResolveConfig(ctx context.Context, source string, getenv func(string) string) (*config.Config, error) {
	var cfg *config.Config
	var err error

	if config.IsSSMSource(source) {
		var client aws.SSMGetParameter
		client, err = aws.SSMClient(ctx)
		if err != nil {
			return nil, err
		}
		cfg, err = config.LoadFromSSM(ctx, client, source)
	} else {
		cfg, err = config.LoadConfig(source)
	}
	if err != nil {
		return nil, err
	}

	if err := cfg.ApplyEnv(getenv); err != nil {
		return nil, err
	}
	return cfg, nil
}
