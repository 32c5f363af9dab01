package providers_test

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/ssmrotate/internal/providers"
	"github.com/systmms/ssmrotate/tests/fakes"
)

func TestLoadAWSConfig_StaticCredentials(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := providers.LoadAWSConfig(context.Background(), providers.AWSConfig{
		Region:          "eu-west-1",
		Endpoint:        "http://localhost:4566",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
	})
	require.NoError(t, err)

	assert.Equal(t, "eu-west-1", cfg.Region)
	assert.Equal(t, "http://localhost:4566", aws.ToString(cfg.BaseEndpoint))

	creds, err := cfg.Credentials.Retrieve(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "test", creds.AccessKeyID)
}

func TestLoadAWSConfig_AssumeRole(t *testing.T) {
	t.Setenv("AWS_CONFIG_FILE", "/nonexistent")
	t.Setenv("AWS_SHARED_CREDENTIALS_FILE", "/nonexistent")

	cfg, err := providers.LoadAWSConfig(context.Background(), providers.AWSConfig{
		Region:          "eu-west-1",
		AccessKeyID:     "test",
		SecretAccessKey: "test",
		AssumeRole:      "arn:aws:iam::123456789012:role/rotator",
	})
	require.NoError(t, err)

	_, ok := cfg.Credentials.(*aws.CredentialsCache)
	assert.True(t, ok, "assumed role credentials should be cached")
}

func TestCallerIdentity(t *testing.T) {
	t.Parallel()

	client := &fakes.FakeSTSClient{
		Account: "123456789012",
		ARN:     "arn:aws:sts::123456789012:assumed-role/rotator/ssmrotate",
		UserID:  "AROAEXAMPLE:ssmrotate",
	}

	id, err := providers.CallerIdentity(context.Background(), client)
	require.NoError(t, err)
	assert.Equal(t, "123456789012", id.Account)
	assert.Equal(t, "AROAEXAMPLE:ssmrotate", id.UserID)

	client.Err = fakes.AccessDenied("sts:GetCallerIdentity")
	_, err = providers.CallerIdentity(context.Background(), client)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sts error during get-caller-identity")
}

func TestStartRotation(t *testing.T) {
	t.Parallel()

	client := fakes.NewFakeSecretsManagerClient()
	client.AddSecretString("app/db", "v1", "pw", true)

	version, err := providers.StartRotation(context.Background(), client, "app/db", "token-1", true)
	require.NoError(t, err)
	assert.Equal(t, "token-1", version)

	_, err = providers.StartRotation(context.Background(), client, "app/missing", "token-2", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rotate app/missing")
}
