// Package mocks provides in-memory implementations of the AWS client interfaces
// in internal/aws, plus snapshot document builders for tests.
package mocks

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
)

// =============================================================================
// In-memory implementations
// =============================================================================

// MockS3Client is an in-memory object store keyed by "bucket/key".
type MockS3Client struct {
	mu      sync.Mutex
	Objects map[string][]byte
	// Err, when set, is returned by every call
	Err error
	// Puts records every PutObject call in order
	Puts []PutRecord
}

// PutRecord captures one PutObject call
type PutRecord struct {
	Bucket      string
	Key         string
	ContentType string
	Body        []byte
}

// NewMockS3Client returns an empty store.
func NewMockS3Client() *MockS3Client {
	return &MockS3Client{Objects: make(map[string][]byte)}
}

// WithObject stores body under bucket/key.
func (m *MockS3Client) WithObject(bucket, key string, body []byte) *MockS3Client {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Objects[bucket+"/"+key] = body
	return m
}

// GetObject returns the stored object or an error for unknown keys.
func (m *MockS3Client) GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	path := aws.ToString(params.Bucket) + "/" + aws.ToString(params.Key)
	body, ok := m.Objects[path]
	if !ok {
		return nil, fmt.Errorf("NoSuchKey: %s", path)
	}
	return &s3.GetObjectOutput{
		Body:          io.NopCloser(bytes.NewReader(body)),
		ContentLength: aws.Int64(int64(len(body))),
	}, nil
}

// PutObject stores the body and records the call.
func (m *MockS3Client) PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var body []byte
	if params.Body != nil {
		data, err := io.ReadAll(params.Body)
		if err != nil {
			return nil, err
		}
		body = data
	}
	bucket, key := aws.ToString(params.Bucket), aws.ToString(params.Key)
	m.Objects[bucket+"/"+key] = body
	m.Puts = append(m.Puts, PutRecord{
		Bucket:      bucket,
		Key:         key,
		ContentType: aws.ToString(params.ContentType),
		Body:        body,
	})
	return &s3.PutObjectOutput{}, nil
}

// MockSSMClient serves parameters from a map.
type MockSSMClient struct {
	Parameters map[string]string
	Err        error
	// Decrypted records whether each call asked for decryption
	Decrypted []bool
}

// GetParameter returns the named parameter or an error for unknown names.
func (m *MockSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	m.Decrypted = append(m.Decrypted, aws.ToBool(params.WithDecryption))
	if m.Err != nil {
		return nil, m.Err
	}
	name := aws.ToString(params.Name)
	value, ok := m.Parameters[name]
	if !ok {
		return nil, fmt.Errorf("ParameterNotFound: %s", name)
	}
	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:  aws.String(name),
			Value: aws.String(value),
		},
	}, nil
}
