// Command rotate-secret-lambda is a Secrets Manager rotation function for
// secrets that are not shared with a downstream service.
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
	var settings config.SecretRotationSettings
	if err := config.ParseEnv(&settings); err != nil {
		logging.NewJSON(false).Fatal("Invalid rotation settings: %v", err)
	}

	logger := logging.NewJSON(settings.Debug)
	handler, err := newHandler(context.Background(), settings, logger)
	if err != nil {
		logger.Fatal("Failed to initialise secret rotation handler: %v", err)
	}

	lambda.Start(handler.Handle)
}

func newHandler(ctx context.Context, settings config.SecretRotationSettings, logger *logging.Logger) (*rotation.SecretHandler, error) {
	awsCfg, err := providers.LoadAWSConfig(ctx, settings.AWSConfig())
	if err != nil {
		return nil, err
	}
	client := secretsmanager.NewFromConfig(awsCfg)

	gen, err := rotation.NewGenerator(settings.GeneratorConfig(), client)
	if err != nil {
		return nil, err
	}

	return rotation.NewSecretHandler(rotation.SecretHandlerConfig{
		Client:    client,
		Generator: gen,
		Logger:    logger,
	})
}
