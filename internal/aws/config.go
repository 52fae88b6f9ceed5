package aws

import (
	"context"
	"fmt"
	"os"
	"strconv"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
)

// DefaultRegion hosts the order and tenant tables (São Paulo).
const DefaultRegion = "sa-east-1"

// LoadAWSConfig resolves the shared AWS config from the environment:
//   - AWS_REGION, falling back to DefaultRegion
//   - AWS_ENDPOINT_OVERRIDE, a base endpoint for every client (localstack, dynamodb-local)
//   - AWS_MAX_ATTEMPTS, the SDK retryer budget for throttled store calls
func LoadAWSConfig(ctx context.Context) (sdkaws.Config, error) {
	region := os.Getenv("AWS_REGION")
	if region == "" {
		region = DefaultRegion
	}
	opts := []func(*config.LoadOptions) error{config.WithRegion(region)}

	if endpoint := os.Getenv("AWS_ENDPOINT_OVERRIDE"); endpoint != "" {
		opts = append(opts, config.WithBaseEndpoint(endpoint))
	}
	if raw := os.Getenv("AWS_MAX_ATTEMPTS"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			return sdkaws.Config{}, fmt.Errorf("invalid AWS_MAX_ATTEMPTS %q", raw)
		}
		opts = append(opts, config.WithRetryMaxAttempts(n))
	}

	cfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return cfg, fmt.Errorf("load aws config: %w", err)
	}
	return cfg, nil
}
