package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/credentials/stscreds"
	"github.com/aws/aws-sdk-go-v2/service/sts"
)

// AWSConfig holds the session settings shared by every AWS client
type AWSConfig struct {
	Region          string
	Profile         string
	AssumeRole      string
	ExternalID      string
	RoleSessionName string
	// Endpoint overrides the service endpoint (LocalStack or testing)
	Endpoint string
	// Static credentials (LocalStack or testing)
	AccessKeyID     string
	SecretAccessKey string
}

// LoadAWSConfig builds an aws.Config from the given settings. When AssumeRole
// is set the base credentials are exchanged for the role through STS.
func LoadAWSConfig(ctx context.Context, c AWSConfig) (aws.Config, error) {
	var configOpts []func(*awsconfig.LoadOptions) error

	if c.Region != "" {
		configOpts = append(configOpts, awsconfig.WithRegion(c.Region))
	}

	if c.Profile != "" {
		configOpts = append(configOpts, awsconfig.WithSharedConfigProfile(c.Profile))
	}

	if c.AccessKeyID != "" && c.SecretAccessKey != "" {
		configOpts = append(configOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
		))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, configOpts...)
	if err != nil {
		return aws.Config{}, fmt.Errorf("failed to load AWS config: %w", err)
	}

	if c.Endpoint != "" {
		cfg.BaseEndpoint = aws.String(c.Endpoint)
	}

	if c.AssumeRole != "" {
		provider := stscreds.NewAssumeRoleProvider(sts.NewFromConfig(cfg), c.AssumeRole, func(o *stscreds.AssumeRoleOptions) {
			if c.RoleSessionName != "" {
				o.RoleSessionName = c.RoleSessionName
			}
			if c.ExternalID != "" {
				o.ExternalID = aws.String(c.ExternalID)
			}
		})
		cfg.Credentials = aws.NewCredentialsCache(provider)
	}

	return cfg, nil
}
