package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/systmms/ssmrotate/internal/providers"
	"github.com/systmms/ssmrotate/pkg/rotation"
)

// LambdaSettings are read by every Lambda entry point
type LambdaSettings struct {
	Region   string `env:"AWS_REGION"`
	Endpoint string `env:"AWS_ENDPOINT_URL"`
	Debug    bool   `env:"ROTATION_DEBUG" envDefault:"false"`
}

// AWSConfig returns session settings for the Lambda runtime
func (s LambdaSettings) AWSConfig() providers.AWSConfig {
	return providers.AWSConfig{Region: s.Region, Endpoint: s.Endpoint}
}

// ParameterRotationSettings configure the scheduled parameter rotation
type ParameterRotationSettings struct {
	LambdaSettings

	ParameterName string `env:"PARAMETER_NAME,required,notEmpty"`
	Generator     string `env:"ROTATION_GENERATOR" envDefault:"timestamp"`
	Length        int    `env:"ROTATION_SECRET_LENGTH" envDefault:"32"`
	Charset       string `env:"ROTATION_CHARSET"`
}

// GeneratorConfig converts the settings into generator settings
func (s ParameterRotationSettings) GeneratorConfig() rotation.GeneratorConfig {
	return rotation.GeneratorConfig{Kind: s.Generator, Length: s.Length, Charset: s.Charset}
}

// SecretRotationSettings configure the Secrets Manager rotation function
type SecretRotationSettings struct {
	LambdaSettings

	Generator          string `env:"ROTATION_GENERATOR" envDefault:"random"`
	Length             int    `env:"ROTATION_SECRET_LENGTH" envDefault:"32"`
	Charset            string `env:"ROTATION_CHARSET"`
	ExcludePunctuation bool   `env:"ROTATION_EXCLUDE_PUNCTUATION" envDefault:"false"`
}

// GeneratorConfig converts the settings into generator settings
func (s SecretRotationSettings) GeneratorConfig() rotation.GeneratorConfig {
	return rotation.GeneratorConfig{
		Kind:               s.Generator,
		Length:             s.Length,
		Charset:            s.Charset,
		ExcludePunctuation: s.ExcludePunctuation,
	}
}

// EndpointLookupSettings configure the VPC endpoint custom resource
type EndpointLookupSettings struct {
	LambdaSettings
}

// ParseEnv loads configuration from environment variables.
func ParseEnv(target any) error {
	if err := env.Parse(target); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}
