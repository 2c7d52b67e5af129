package aws

import (
	"context"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/aws/retry"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"

	"adriskmap/internal/logging"
)

// Supported services
const (
	ServiceS3  = "s3"
	ServiceSTS = "sts"
	ServiceSSM = "ssm"
)

var (
	clientCache = make(map[string]interface{})
	cacheMutex  sync.RWMutex
	baseConfig  *aws.Config
	configMutex sync.Mutex
)

// GetAWSClient returns a cached AWS client for a service
func GetAWSClient(ctx context.Context, service string) (interface{}, error) {
	switch service {
	case ServiceS3, ServiceSTS, ServiceSSM:
	default:
		return nil, fmt.Errorf("unknown service: %s", service)
	}

	cacheMutex.RLock()
	if client, ok := clientCache[service]; ok {
		cacheMutex.RUnlock()
		return client, nil
	}
	cacheMutex.RUnlock()

	cacheMutex.Lock()
	defer cacheMutex.Unlock()

	if client, ok := clientCache[service]; ok {
		return client, nil
	}

	cfg, err := loadConfig(ctx)
	if err != nil {
		return nil, err
	}

	var client interface{}
	switch service {
	case ServiceS3:
		client = s3.NewFromConfig(cfg)
	case ServiceSTS:
		client = sts.NewFromConfig(cfg)
	default:
		client = ssm.NewFromConfig(cfg)
	}

	logging.LogDebug(fmt.Sprintf("Created %s client", service), map[string]interface{}{"region": cfg.Region})
	clientCache[service] = client
	return client, nil
}

func loadConfig(ctx context.Context) (aws.Config, error) {
	configMutex.Lock()
	defer configMutex.Unlock()

	if baseConfig != nil {
		return *baseConfig, nil
	}
	cfg, err := config.LoadDefaultConfig(ctx,
		config.WithRetryMaxAttempts(5),
		config.WithRetryer(func() aws.Retryer {
			return retry.NewAdaptiveMode(func(o *retry.AdaptiveModeOptions) {
				o.StandardOptions = append(o.StandardOptions, func(so *retry.StandardOptions) {
					so.MaxBackoff = 30 * time.Second
				})
			})
		}),
	)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}
	baseConfig = &cfg
	return cfg, nil
}

// S3Client returns the cached S3 client.
func S3Client(ctx context.Context) (S3ObjectStore, error) {
	client, err := GetAWSClient(ctx, ServiceS3)
	if err != nil {
		return nil, fmt.Errorf("failed to get S3 client: %w", err)
	}
	return client.(*s3.Client), nil
}

// GetAccountID returns the current AWS account ID
func GetAccountID(ctx context.Context) (string, error) {
	if accountID := os.Getenv("AWS_ACCOUNT_ID"); accountID != "" {
		return accountID, nil
	}

	stsClient, err := GetAWSClient(ctx, ServiceSTS)
	if err != nil {
		return "", fmt.Errorf("failed to get STS client: %w", err)
	}

	start := time.Now()
	result, err := stsClient.(*sts.Client).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	record("sts:GetCallerIdentity", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to get caller identity: %w", err)
	}

	if result == nil || result.Account == nil {
		return "", fmt.Errorf("empty account ID in response")
	}

	return aws.ToString(result.Account), nil
}

// SSMClient returns the cached SSM client.
func SSMClient(ctx context.Context) (SSMGetParameter, error) {
	client, err := GetAWSClient(ctx, ServiceSSM)
	if err != nil {
		return nil, fmt.Errorf("failed to get SSM client: %w", err)
	}
	return client.(*ssm.Client), nil
}

// FetchSSMParameter retrieves a decrypted parameter through client.
func FetchSSMParameter(ctx context.Context, client SSMGetParameter, parameterName string) (string, error) {
	start := time.Now()
	result, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(parameterName),
		WithDecryption: aws.Bool(true),
	})
	record("ssm:GetParameter", start, err)
	if err != nil {
		return "", fmt.Errorf("failed to get parameter %s: %w", parameterName, err)
	}
	if result == nil || result.Parameter == nil {
		return "", fmt.Errorf("empty value for parameter %s", parameterName)
	}

	return aws.ToString(result.Parameter.Value), nil
}

func record(apiName string, start time.Time, err error) {
	logging.LogAPICall(apiName, err == nil, time.Since(start), err)
	logging.GetMetrics().RecordAPICall(apiName, err == nil, err)
}
