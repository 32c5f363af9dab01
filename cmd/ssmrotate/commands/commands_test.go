package commands

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/require"

	"github.com/systmms/ssmrotate/internal/config"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/internal/providers"
	"github.com/systmms/ssmrotate/tests/fakes"
)

// testEnv wires an App to fake AWS clients
type testEnv struct {
	app    *App
	ssm    *fakes.FakeSSMClient
	sm     *fakes.FakeSecretsManagerClient
	ec2    *fakes.FakeEC2Client
	sts    *fakes.FakeSTSClient
	clock  *testclock.Clock
	config string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	env := &testEnv{
		ssm:    fakes.NewFakeSSMClient(),
		sm:     fakes.NewFakeSecretsManagerClient(),
		ec2:    fakes.NewFakeEC2Client(),
		sts:    &fakes.FakeSTSClient{Account: "123456789012", ARN: "arn:aws:iam::123456789012:user/ci", UserID: "AIDAEXAMPLE"},
		clock:  testclock.NewClock(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC)),
		config: filepath.Join(t.TempDir(), "ssmrotate.yaml"),
	}

	env.app = &App{
		Config: &config.Config{Logger: logging.Nop()},
		Clock:  env.clock,
		NewSSM: func(context.Context) (providers.SSMClientAPI, error) {
			return env.ssm, nil
		},
		NewSecretsManager: func(context.Context) (providers.SecretsManagerClientAPI, error) {
			return env.sm, nil
		},
		NewEC2: func(context.Context) (providers.EC2ClientAPI, error) {
			return env.ec2, nil
		},
		NewSTS: func(context.Context) (providers.STSClientAPI, error) {
			return env.sts, nil
		},
	}
	return env
}

func (e *testEnv) writeConfig(t *testing.T, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(e.config, []byte(content), 0644))
}

// run executes the root command with args and returns stdout
func (e *testEnv) run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	return e.runContext(context.Background(), t, args...)
}

func (e *testEnv) runContext(ctx context.Context, t *testing.T, args ...string) (string, error) {
	t.Helper()

	root := NewRootCommand(e.app, BuildInfo{Version: "test"})
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(append([]string{"--config", e.config}, args...))

	err := root.ExecuteContext(ctx)
	return out.String(), err
}
