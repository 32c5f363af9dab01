package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
)

// STSClientAPI defines the STS operations used for identity checks
type STSClientAPI interface {
	GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error)
}

// Identity is the AWS principal the configured credentials resolve to
type Identity struct {
	Account string
	ARN     string
	UserID  string
}

// NewSTSClient creates an STS client from session settings
func NewSTSClient(ctx context.Context, c AWSConfig) (*sts.Client, error) {
	cfg, err := LoadAWSConfig(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create STS client: %w", err)
	}
	return sts.NewFromConfig(cfg), nil
}

// CallerIdentity resolves the principal behind the current credentials
func CallerIdentity(ctx context.Context, client STSClientAPI) (Identity, error) {
	out, err := client.GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return Identity{}, dserrors.ProviderError("sts", "get-caller-identity", err)
	}

	return Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
		UserID:  aws.ToString(out.UserId),
	}, nil
}
