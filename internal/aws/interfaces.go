package aws

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
)

// =============================================================================
// S3 Interfaces
// =============================================================================

// S3GetObject defines the interface for S3 GetObject operation.
// Used to read snapshots from s3:// sources.
type S3GetObject interface {
	GetObject(
		ctx context.Context,
		params *s3.GetObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.GetObjectOutput, error)
}

// S3PutObject defines the interface for S3 PutObject operation.
// Used to publish reports to s3:// destinations.
type S3PutObject interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options),
	) (*s3.PutObjectOutput, error)
}

// S3ObjectStore combines the S3 operations the CLI needs.
type S3ObjectStore interface {
	S3GetObject
	S3PutObject
}

// =============================================================================
// SSM Interfaces
// =============================================================================

// SSMGetParameter defines the interface for SSM GetParameter operation.
// Used to read configuration stored in Parameter Store.
type SSMGetParameter interface {
	GetParameter(
		ctx context.Context,
		params *ssm.GetParameterInput,
		optFns ...func(*ssm.Options),
	) (*ssm.GetParameterOutput, error)
}
