package commands

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSecretRotateCommand(t *testing.T) {
	env := newTestEnv(t)
	env.sm.AddSecretString("app/db-password", "v1", "pw", true)

	var got *secretsmanager.RotateSecretInput
	env.sm.RotateSecretFunc = func(_ context.Context, params *secretsmanager.RotateSecretInput) (*secretsmanager.RotateSecretOutput, error) {
		got = params
		return &secretsmanager.RotateSecretOutput{Name: params.SecretId, VersionId: params.ClientRequestToken}, nil
	}

	out, err := env.run(t, "secret", "rotate", "app/db-password")
	require.NoError(t, err)
	require.NotNil(t, got)

	token := aws.ToString(got.ClientRequestToken)
	_, err = uuid.Parse(token)
	assert.NoError(t, err, "generated token must be a UUID")
	assert.True(t, aws.ToBool(got.RotateImmediately))
	assert.Contains(t, out, "Rotation of app/db-password started (version "+token+")")
}

func TestSecretRotateCommand_ExplicitToken(t *testing.T) {
	env := newTestEnv(t)
	env.sm.AddSecretString("app/db-password", "v1", "pw", true)
	token := "6f1c1a44-7f55-4b63-9f1f-3d1f9b0c2e11"

	out, err := env.run(t, "secret", "rotate", "app/db-password", "--token", token, "--scheduled")
	require.NoError(t, err)
	assert.Contains(t, out, token)

	_, err = env.run(t, "secret", "rotate", "app/db-password", "--token", "not-a-uuid")
	assert.ErrorContains(t, err, "must be a UUID")
}

func TestSecretRotateCommand_Missing(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.run(t, "secret", "rotate", "app/missing")
	assert.ErrorContains(t, err, "Failed to start rotation of app/missing")
}
