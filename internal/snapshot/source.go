package snapshot

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	awsclient "adriskmap/internal/aws"
	"adriskmap/internal/domain"
	"adriskmap/internal/logging"
)

// StdinSource names standard input as a snapshot source
const StdinSource = "-"

const s3Scheme = "s3://"

// ErrNoS3Client is returned for s3:// sources when the reader has no S3 client.
var ErrNoS3Client = errors.New("no S3 client configured")

// Reader fetches raw snapshot documents from a local path, stdin or S3.
type Reader struct {
	S3    awsclient.S3GetObject
	Stdin io.Reader
}

// IsS3URI reports whether source is an s3:// location.
func IsS3URI(source string) bool {
	return strings.HasPrefix(source, s3Scheme)
}

// ParseS3URI splits s3://bucket/key into its bucket and key.
func ParseS3URI(uri string) (bucket, key string, err error) {
	if !IsS3URI(uri) {
		return "", "", fmt.Errorf("not an s3 URI: %q", uri)
	}
	rest := strings.TrimPrefix(uri, s3Scheme)
	bucket, key, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("s3 URI %q has no bucket", uri)
	}
	return bucket, key, nil
}

// Read returns the raw document named by source.
func (r *Reader) Read(ctx context.Context, source string) ([]byte, error) {
	switch {
	case source == StdinSource:
		in := r.Stdin
		if in == nil {
			in = os.Stdin
		}
		data, err := io.ReadAll(in)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot from stdin: %w", err)
		}
		return data, nil
	case IsS3URI(source):
		return r.readS3(ctx, source)
	default:
		data, err := os.ReadFile(source)
		if err != nil {
			return nil, fmt.Errorf("failed to read snapshot file: %w", err)
		}
		return data, nil
	}
}

func (r *Reader) readS3(ctx context.Context, uri string) ([]byte, error) {
	bucket, key, err := ParseS3URI(uri)
	if err != nil {
		return nil, err
	}
	if key == "" {
		return nil, fmt.Errorf("s3 URI %q has no object key", uri)
	}
	if r.S3 == nil {
		return nil, ErrNoS3Client
	}

	start := time.Now()
	out, err := r.S3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	logging.LogAPICall("s3:GetObject", err == nil, time.Since(start), err)
	logging.GetMetrics().RecordAPICall("s3:GetObject", err == nil, err)
	if err != nil {
		return nil, fmt.Errorf("failed to get %s: %w", uri, err)
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", uri, err)
	}
	return data, nil
}

// Load reads source and parses it.
func (r *Reader) Load(ctx context.Context, source string) (*domain.DirectorySnapshot, error) {
	data, err := r.Read(ctx, source)
	if err != nil {
		return nil, err
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}
	return s, nil
}
