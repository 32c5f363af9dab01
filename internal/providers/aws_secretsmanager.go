package providers

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// SecretsManagerClientAPI defines the AWS Secrets Manager operations used by the
// rotation handler and the CLI. This allows for mocking in tests
type SecretsManagerClientAPI interface {
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	UpdateSecretVersionStage(ctx context.Context, params *secretsmanager.UpdateSecretVersionStageInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretVersionStageOutput, error)
	GetRandomPassword(ctx context.Context, params *secretsmanager.GetRandomPasswordInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetRandomPasswordOutput, error)
	RotateSecret(ctx context.Context, params *secretsmanager.RotateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.RotateSecretOutput, error)
}

// NewSecretsManagerClient creates a Secrets Manager client from session settings
func NewSecretsManagerClient(ctx context.Context, c AWSConfig) (*secretsmanager.Client, error) {
	cfg, err := LoadAWSConfig(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("failed to create Secrets Manager client: %w", err)
	}
	return secretsmanager.NewFromConfig(cfg), nil
}

// StartRotation asks Secrets Manager to run the secret's rotation function.
// The returned version id is the ClientRequestToken the rotation steps see.
func StartRotation(ctx context.Context, client SecretsManagerClientAPI, secretID, token string, immediately bool) (string, error) {
	input := &secretsmanager.RotateSecretInput{
		SecretId:          aws.String(secretID),
		RotateImmediately: aws.Bool(immediately),
	}
	if token != "" {
		input.ClientRequestToken = aws.String(token)
	}

	out, err := client.RotateSecret(ctx, input)
	if err != nil {
		return "", WrapError("rotate", secretID, err)
	}
	return aws.ToString(out.VersionId), nil
}
