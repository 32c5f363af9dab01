// Command rotate-parameter-lambda is the scheduled Lambda that overwrites
// PARAMETER_NAME with a freshly generated value on every invocation.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/systmms/ssmrotate/internal/config"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/internal/providers"
	"github.com/systmms/ssmrotate/pkg/rotation"
)

func main() {
	var settings config.ParameterRotationSettings
	if err := config.ParseEnv(&settings); err != nil {
		logging.NewJSON(false).Fatal("Invalid rotation settings: %v", err)
	}

	logger := logging.NewJSON(settings.Debug).With("parameter", settings.ParameterName)
	handler, err := newHandler(context.Background(), settings, logger)
	if err != nil {
		logger.Fatal("Failed to initialise rotation handler: %v", err)
	}

	lambda.Start(handler.Handle)
}

func newHandler(ctx context.Context, settings config.ParameterRotationSettings, logger *logging.Logger) (*rotation.ParameterHandler, error) {
	awsCfg, err := providers.LoadAWSConfig(ctx, settings.AWSConfig())
	if err != nil {
		return nil, err
	}

	var passwords rotation.PasswordAPI
	if settings.Generator == rotation.GeneratorSecretsManager {
		passwords = secretsmanager.NewFromConfig(awsCfg)
	}
	gen, err := rotation.NewGenerator(settings.GeneratorConfig(), passwords)
	if err != nil {
		return nil, err
	}

	store, err := providers.NewSSMStore(ctx, "aws.ssm", providers.SSMConfig{},
		providers.WithSSMAWSConfig(awsCfg),
		providers.WithSSMLogger(logger),
	)
	if err != nil {
		return nil, err
	}

	return rotation.NewParameterHandler(rotation.HandlerConfig{
		Parameter: settings.ParameterName,
		Store:     store,
		Generator: gen,
		Logger:    logger,
	})
}
