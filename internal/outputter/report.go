package outputter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	awsclient "adriskmap/internal/aws"
	"adriskmap/internal/domain"
	"adriskmap/internal/logging"
	"adriskmap/internal/snapshot"
)

// Report is the persisted form of one run
type Report struct {
	Tool        string                 `json:"tool"`
	Version     string                 `json:"version"`
	Source      string                 `json:"source"`
	GeneratedAt time.Time              `json:"generated_at"`
	Digest      string                 `json:"digest"`
	Result      *domain.AnalysisResult `json:"result"`
	Metrics     logging.MetricsSummary `json:"metrics"`
}

var unsafeFileChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// FileName returns the report file name, unique per domain and second.
func (r *Report) FileName() string {
	name := "domain"
	if r.Result != nil && r.Result.Summary.Domain != "" {
		name = unsafeFileChars.ReplaceAllString(r.Result.Summary.Domain, "_")
	}
	return fmt.Sprintf("adriskmap_%s_%s.json", name, r.GeneratedAt.UTC().Format("20060102T150405Z"))
}

// WriteJSON writes the indented report to w.
func WriteJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("failed to encode report: %w", err)
	}
	return nil
}

// SaveReport writes the report under destination, a local directory or
// s3://bucket/prefix, and returns where it was written.
func SaveReport(ctx context.Context, report *Report, destination string, store awsclient.S3PutObject) (string, error) {
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	if snapshot.IsS3URI(destination) {
		return uploadReport(ctx, data, report.FileName(), destination, store)
	}

	if err := os.MkdirAll(destination, 0755); err != nil {
		return "", fmt.Errorf("failed to create results directory: %w", err)
	}
	file := filepath.Join(destination, report.FileName())
	if err := os.WriteFile(file, data, 0644); err != nil {
		return "", fmt.Errorf("failed to save report: %w", err)
	}
	logging.LogInfo("Report saved", map[string]interface{}{"path": file, "bytes": len(data)})
	return file, nil
}

func uploadReport(ctx context.Context, data []byte, fileName, destination string, store awsclient.S3PutObject) (string, error) {
	if store == nil {
		return "", snapshot.ErrNoS3Client
	}
	bucket, prefix, err := snapshot.ParseS3URI(destination)
	if err != nil {
		return "", err
	}
	key := path.Join(strings.Trim(prefix, "/"), fileName)

	start := time.Now()
	_, err = store.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	logging.LogAPICall("s3:PutObject", err == nil, time.Since(start), err)
	logging.GetMetrics().RecordAPICall("s3:PutObject", err == nil, err)
	if err != nil {
		return "", fmt.Errorf("failed to upload report to s3://%s/%s: %w", bucket, key, err)
	}

	location := fmt.Sprintf("s3://%s/%s", bucket, key)
	logging.LogInfo("Report uploaded", map[string]interface{}{"location": location, "bytes": len(data)})
	return location, nil
}
