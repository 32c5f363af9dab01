package commands

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/juju/clock"
	"github.com/systmms/ssmrotate/internal/config"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/internal/providers"
)

// App carries global flags and AWS client constructors to every command.
// Tests replace the constructors with fakes.
type App struct {
	Config  *config.Config
	Region  string
	Profile string
	Clock   clock.Clock

	NewSSM            func(ctx context.Context) (providers.SSMClientAPI, error)
	NewSecretsManager func(ctx context.Context) (providers.SecretsManagerClientAPI, error)
	NewEC2            func(ctx context.Context) (providers.EC2ClientAPI, error)
	NewSTS            func(ctx context.Context) (providers.STSClientAPI, error)
}

// NewApp wires the real AWS clients
func NewApp(cfg *config.Config) *App {
	app := &App{Config: cfg, Clock: clock.WallClock}

	app.NewSSM = func(ctx context.Context) (providers.SSMClientAPI, error) {
		awsCfg, err := app.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return ssm.NewFromConfig(awsCfg), nil
	}
	app.NewSecretsManager = func(ctx context.Context) (providers.SecretsManagerClientAPI, error) {
		awsCfg, err := app.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return secretsmanager.NewFromConfig(awsCfg), nil
	}
	app.NewEC2 = func(ctx context.Context) (providers.EC2ClientAPI, error) {
		awsCfg, err := app.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return ec2.NewFromConfig(awsCfg), nil
	}
	app.NewSTS = func(ctx context.Context) (providers.STSClientAPI, error) {
		awsCfg, err := app.awsConfig(ctx)
		if err != nil {
			return nil, err
		}
		return sts.NewFromConfig(awsCfg), nil
	}

	return app
}

func (a *App) awsConfig(ctx context.Context) (aws.Config, error) {
	return providers.LoadAWSConfig(ctx, a.Config.AWSConfig(a.Region, a.Profile))
}

// Logger returns the configured logger, or a discarding one before flags
// have been parsed.
func (a *App) Logger() *logging.Logger {
	if a.Config == nil || a.Config.Logger == nil {
		return logging.Nop()
	}
	return a.Config.Logger
}

// loadConfigIfPresent loads the config file when it exists. Commands that
// can run from flags alone use this so a missing file is not an error.
func (a *App) loadConfigIfPresent() error {
	if a.Config.Definition != nil {
		return nil
	}
	if _, err := os.Stat(a.Config.Path); os.IsNotExist(err) {
		a.Logger().Debug("No configuration file at %s", a.Config.Path)
		return nil
	}
	return a.Config.Load()
}

// store builds the SSM-backed parameter store
func (a *App) store(ctx context.Context, withDecryption bool) (*providers.SSMStore, error) {
	client, err := a.NewSSM(ctx)
	if err != nil {
		return nil, err
	}
	return providers.NewSSMStore(ctx, "aws.ssm", providers.SSMConfig{WithDecryption: withDecryption},
		providers.WithSSMClient(client),
		providers.WithSSMLogger(a.Logger()),
	)
}

func printf(w io.Writer, format string, args ...interface{}) {
	_, _ = fmt.Fprintf(w, format, args...)
}
