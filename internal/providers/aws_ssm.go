package providers

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/aws/aws-sdk-go-v2/service/ssm/types"
	dserrors "github.com/systmms/ssmrotate/internal/errors"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/pkg/paramstore"
)

// SSMClientAPI defines the interface for AWS SSM Parameter Store operations
// This allows for mocking in tests
type SSMClientAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
	PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error)
	DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error)
}

// SSMStore implements paramstore.Store on top of AWS Systems Manager Parameter Store
type SSMStore struct {
	name   string
	client SSMClientAPI
	logger *logging.Logger
	config SSMConfig
}

// SSMConfig holds AWS SSM-specific configuration
type SSMConfig struct {
	AWS             AWSConfig
	WithDecryption  bool
	ParameterPrefix string
}

// SSMStoreOption is a functional option for configuring SSM stores
type SSMStoreOption func(*SSMStore)

// WithSSMClient sets a custom SSM client (for testing)
func WithSSMClient(client SSMClientAPI) SSMStoreOption {
	return func(s *SSMStore) {
		s.client = client
	}
}

// WithSSMLogger sets the logger used for debug output
func WithSSMLogger(logger *logging.Logger) SSMStoreOption {
	return func(s *SSMStore) {
		s.logger = logger
	}
}

// WithSSMAWSConfig builds the client from an already loaded aws.Config
func WithSSMAWSConfig(cfg aws.Config) SSMStoreOption {
	return func(s *SSMStore) {
		s.client = ssm.NewFromConfig(cfg)
	}
}

// NewSSMStore creates a new AWS SSM Parameter Store backed store
func NewSSMStore(ctx context.Context, name string, config SSMConfig, opts ...SSMStoreOption) (*SSMStore, error) {
	s := &SSMStore{
		name:   name,
		logger: logging.Nop(),
		config: config,
	}

	// Apply options (allows mock client injection)
	for _, opt := range opts {
		opt(s)
	}

	// If no client was provided via options, create real client
	if s.client == nil {
		cfg, err := LoadAWSConfig(ctx, config.AWS)
		if err != nil {
			return nil, fmt.Errorf("failed to create SSM client: %w", err)
		}
		s.client = ssm.NewFromConfig(cfg)
	}

	return s, nil
}

// Name returns the store name
func (s *SSMStore) Name() string {
	return s.name
}

func (s *SSMStore) qualify(name string) string {
	return s.config.ParameterPrefix + name
}

// Get fetches a parameter from SSM Parameter Store
func (s *SSMStore) Get(ctx context.Context, name string) (paramstore.Parameter, error) {
	parameterName := s.qualify(name)

	s.logger.Debug("Fetching parameter from SSM: %s", parameterName)

	result, err := s.client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(parameterName),
		WithDecryption: aws.Bool(s.config.WithDecryption),
	})
	if err != nil {
		return paramstore.Parameter{}, WrapError("get", parameterName, err)
	}

	if result.Parameter == nil || result.Parameter.Value == nil {
		return paramstore.Parameter{}, &paramstore.Error{
			Op:   "get",
			Name: parameterName,
			Kind: paramstore.ErrNotFound,
			Err:  fmt.Errorf("parameter has no value"),
		}
	}

	param := paramstore.Parameter{
		Name:    parameterName,
		Value:   aws.ToString(result.Parameter.Value),
		Type:    string(result.Parameter.Type),
		Version: result.Parameter.Version,
	}
	if result.Parameter.LastModifiedDate != nil {
		param.LastModified = *result.Parameter.LastModifiedDate
	}

	return param, nil
}

// Put writes a parameter value. The parameter type is never sent, so an
// overwrite keeps whatever type and KMS key the parameter already has and a
// create falls back to the service default (String).
func (s *SSMStore) Put(ctx context.Context, name, value string, overwrite bool) (paramstore.PutResult, error) {
	parameterName := s.qualify(name)

	s.logger.Debug("Writing parameter to SSM: %s (overwrite=%t, value=%s)", parameterName, overwrite, logging.Secret(value))

	result, err := s.client.PutParameter(ctx, &ssm.PutParameterInput{
		Name:      aws.String(parameterName),
		Value:     aws.String(value),
		Overwrite: aws.Bool(overwrite),
	})
	if err != nil {
		return paramstore.PutResult{}, WrapError("put", parameterName, err)
	}

	return paramstore.PutResult{Version: result.Version}, nil
}

// Metadata describes a parameter without fetching its value
type Metadata struct {
	Exists    bool
	Type      string
	Tier      string
	Version   int64
	UpdatedAt time.Time
}

// Describe returns metadata about a parameter without fetching its value
func (s *SSMStore) Describe(ctx context.Context, name string) (Metadata, error) {
	parameterName := s.qualify(name)

	result, err := s.client.DescribeParameters(ctx, &ssm.DescribeParametersInput{
		ParameterFilters: []types.ParameterStringFilter{
			{
				Key:    aws.String("Name"),
				Values: []string{parameterName},
			},
		},
	})
	if err != nil {
		return Metadata{}, WrapError("describe", parameterName, err)
	}

	if len(result.Parameters) == 0 {
		return Metadata{Exists: false}, nil
	}

	param := result.Parameters[0]
	metadata := Metadata{
		Exists:  true,
		Type:    string(param.Type),
		Tier:    string(param.Tier),
		Version: param.Version,
	}
	if param.LastModifiedDate != nil {
		metadata.UpdatedAt = *param.LastModifiedDate
	}

	return metadata, nil
}

// Validate checks if the store is properly configured and accessible
func (s *SSMStore) Validate(ctx context.Context) error {
	// Minimal permissions needed
	_, err := s.client.DescribeParameters(ctx, &ssm.DescribeParametersInput{
		MaxResults: aws.Int32(1),
	})
	if err != nil {
		return dserrors.ProviderError("ssm", "validate", err)
	}

	return nil
}
