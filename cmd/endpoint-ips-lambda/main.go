// Command endpoint-ips-lambda backs a CloudFormation custom resource that
// returns the private IPs of an interface VPC endpoint.
package main

import (
	"context"

	"github.com/aws/aws-lambda-go/cfn"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	"github.com/systmms/ssmrotate/internal/config"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/internal/providers"
	"github.com/systmms/ssmrotate/pkg/vpcendpoint"
)

func main() {
	var settings config.EndpointLookupSettings
	if err := config.ParseEnv(&settings); err != nil {
		logging.NewJSON(false).Fatal("Invalid endpoint lookup settings: %v", err)
	}

	logger := logging.NewJSON(settings.Debug)
	resolver, err := newResolver(context.Background(), settings, logger)
	if err != nil {
		logger.Fatal("Failed to initialise endpoint resolver: %v", err)
	}

	lambda.Start(cfn.LambdaWrap(resolver.CustomResource))
}

func newResolver(ctx context.Context, settings config.EndpointLookupSettings, logger *logging.Logger) (*vpcendpoint.Resolver, error) {
	awsCfg, err := providers.LoadAWSConfig(ctx, settings.AWSConfig())
	if err != nil {
		return nil, err
	}

	return vpcendpoint.NewResolver(ec2.NewFromConfig(awsCfg), logger), nil
}
