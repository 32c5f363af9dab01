package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/ssmrotate/internal/config"
	"github.com/systmms/ssmrotate/tests/fakes"
	"github.com/systmms/ssmrotate/tests/testutil"
)

func TestDoctorCommand_Healthy(t *testing.T) {
	env := newTestEnv(t)
	env.ssm.AddStringParameter("/rotation/demo", "x")
	env.writeConfig(t, "rotations:\n  demo:\n    parameter: /rotation/demo\n")

	out, err := env.run(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "Configuration loaded (1 rotation targets)")
	assert.Contains(t, out, "arn:aws:iam::123456789012:user/ci")
	assert.Contains(t, out, "Parameter Store reachable")
	assert.Regexp(t, `demo\s+/rotation/demo\s+ok`, out)
}

func TestDoctorCommand_MissingTarget(t *testing.T) {
	env := newTestEnv(t)
	env.writeConfig(t, "rotations:\n  demo:\n    parameter: /rotation/demo\n")

	out, err := env.run(t, "doctor")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 1 rotation targets are not ready")
	assert.Regexp(t, `demo\s+/rotation/demo\s+missing`, out)
}

func TestDoctorCommand_LoadedConfig(t *testing.T) {
	env := newTestEnv(t)
	env.ssm.AddStringParameter("/a", "x")
	env.ssm.AddStringParameter("/b", "y")
	env.app.Config = testutil.NewTestConfig(t).
		WithRegion("eu-west-1").
		WithRotation("a", config.Rotation{Parameter: "/a"}).
		WithRotation("b", config.Rotation{Parameter: "/b", Generator: "random"}).
		Build()
	env.config = env.app.Config.Path

	out, err := env.run(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "2 rotation targets")
	assert.Equal(t, "eu-west-1", env.app.Config.AWSConfig("", "").Region)
}

func TestDoctorCommand_NoConfig(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "doctor")
	require.NoError(t, err)
	assert.Contains(t, out, "No configuration file")
}

func TestDoctorCommand_BadCredentials(t *testing.T) {
	env := newTestEnv(t)
	env.sts.Err = fakes.AccessDenied("sts:GetCallerIdentity")

	out, err := env.run(t, "doctor")
	require.Error(t, err)
	assert.Contains(t, out, "✗ AWS credentials")
}

func TestCompletionCommand(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.run(t, "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "ssmrotate")

	_, err = env.run(t, "completion", "tcsh")
	assert.Error(t, err)
}
