package fakes

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	ssmtypes "github.com/aws/aws-sdk-go-v2/service/ssm/types"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go"
)

// AccessDenied returns the error AWS services send when IAM denies a call
func AccessDenied(action string) error {
	return &smithy.GenericAPIError{
		Code:    "AccessDeniedException",
		Message: fmt.Sprintf("User is not authorized to perform: %s", action),
		Fault:   smithy.FaultClient,
	}
}

// Throttled returns a throttling error
func Throttled() error {
	return &smithy.GenericAPIError{
		Code:    "ThrottlingException",
		Message: "Rate exceeded",
		Fault:   smithy.FaultClient,
	}
}

// FakeSSMClient is a mock implementation of providers.SSMClientAPI
type FakeSSMClient struct {
	mu sync.Mutex

	// Parameters maps parameter names to their data
	Parameters map[string]*ParameterData
	// Errors maps parameter names to errors returned by every operation
	Errors map[string]error
	// PutErrors maps parameter names to errors returned only by PutParameter
	PutErrors map[string]error
	// PutCalls counts PutParameter invocations that reached the fake
	PutCalls int
	// LastPut records the most recent PutParameter input
	LastPut *ssm.PutParameterInput
	// GetParameterFunc allows custom behavior for GetParameter
	GetParameterFunc func(ctx context.Context, params *ssm.GetParameterInput) (*ssm.GetParameterOutput, error)
	// DescribeParametersFunc allows custom behavior for DescribeParameters
	DescribeParametersFunc func(ctx context.Context, params *ssm.DescribeParametersInput) (*ssm.DescribeParametersOutput, error)
}

// ParameterData holds the data for a mock SSM parameter
type ParameterData struct {
	Name             *string
	Type             ssmtypes.ParameterType
	Value            *string
	Version          int64
	LastModifiedDate *time.Time
	ARN              *string
	Tier             ssmtypes.ParameterTier
}

// NewFakeSSMClient creates a new mock SSM client
func NewFakeSSMClient() *FakeSSMClient {
	return &FakeSSMClient{
		Parameters: make(map[string]*ParameterData),
		Errors:     make(map[string]error),
		PutErrors:  make(map[string]error),
	}
}

// AddStringParameter adds a String parameter to the mock client
func (f *FakeSSMClient) AddStringParameter(name, value string) {
	f.addParameter(name, value, ssmtypes.ParameterTypeString)
}

// AddSecureStringParameter adds a SecureString parameter to the mock client
func (f *FakeSSMClient) AddSecureStringParameter(name, value string) {
	f.addParameter(name, value, ssmtypes.ParameterTypeSecureString)
}

func (f *FakeSSMClient) addParameter(name, value string, typ ssmtypes.ParameterType) {
	f.mu.Lock()
	defer f.mu.Unlock()

	now := time.Now()
	f.Parameters[name] = &ParameterData{
		Name:             aws.String(name),
		Type:             typ,
		Value:            aws.String(value),
		Version:          1,
		LastModifiedDate: &now,
		ARN:              aws.String(fmt.Sprintf("arn:aws:ssm:us-east-1:123456789012:parameter%s", name)),
		Tier:             ssmtypes.ParameterTierStandard,
	}
}

// AddError configures the mock to return an error for a specific parameter
func (f *FakeSSMClient) AddError(name string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[name] = err
}

// DenyWrite makes PutParameter fail with AccessDeniedException for name
func (f *FakeSSMClient) DenyWrite(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.PutErrors[name] = AccessDenied("ssm:PutParameter on " + name)
}

// Value returns the stored value and whether the parameter exists
func (f *FakeSSMClient) Value(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, ok := f.Parameters[name]
	if !ok {
		return "", false
	}
	return aws.ToString(data.Value), true
}

// Puts returns the number of PutParameter calls
func (f *FakeSSMClient) Puts() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.PutCalls
}

// GetParameter mocks the GetParameter operation
func (f *FakeSSMClient) GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error) {
	if f.GetParameterFunc != nil {
		return f.GetParameterFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	paramName := aws.ToString(params.Name)

	if err, exists := f.Errors[paramName]; exists {
		return nil, err
	}

	data, exists := f.Parameters[paramName]
	if !exists {
		return nil, &ssmtypes.ParameterNotFound{
			Message: aws.String(fmt.Sprintf("Parameter %s not found", paramName)),
		}
	}

	return &ssm.GetParameterOutput{
		Parameter: &ssmtypes.Parameter{
			Name:             data.Name,
			Type:             data.Type,
			Value:            data.Value,
			Version:          data.Version,
			LastModifiedDate: data.LastModifiedDate,
			ARN:              data.ARN,
		},
	}, nil
}

// PutParameter mocks the PutParameter operation. Like the real service, a
// missing parameter is created when Overwrite is set.
func (f *FakeSSMClient) PutParameter(ctx context.Context, params *ssm.PutParameterInput, optFns ...func(*ssm.Options)) (*ssm.PutParameterOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.PutCalls++
	f.LastPut = params
	paramName := aws.ToString(params.Name)

	if err, exists := f.Errors[paramName]; exists {
		return nil, err
	}
	if err, exists := f.PutErrors[paramName]; exists {
		return nil, err
	}

	now := time.Now()
	data, exists := f.Parameters[paramName]
	if exists {
		if !aws.ToBool(params.Overwrite) {
			return nil, &ssmtypes.ParameterAlreadyExists{
				Message: aws.String("The parameter already exists. To overwrite this value, set the overwrite option in the request to true."),
			}
		}
		data.Value = params.Value
		data.Version++
		data.LastModifiedDate = &now
		if params.Type != "" {
			data.Type = params.Type
		}
		return &ssm.PutParameterOutput{Version: data.Version, Tier: data.Tier}, nil
	}

	typ := params.Type
	if typ == "" {
		typ = ssmtypes.ParameterTypeString
	}
	f.Parameters[paramName] = &ParameterData{
		Name:             aws.String(paramName),
		Type:             typ,
		Value:            params.Value,
		Version:          1,
		LastModifiedDate: &now,
		Tier:             ssmtypes.ParameterTierStandard,
	}
	return &ssm.PutParameterOutput{Version: 1, Tier: ssmtypes.ParameterTierStandard}, nil
}

// DescribeParameters mocks the DescribeParameters operation
func (f *FakeSSMClient) DescribeParameters(ctx context.Context, params *ssm.DescribeParametersInput, optFns ...func(*ssm.Options)) (*ssm.DescribeParametersOutput, error) {
	if f.DescribeParametersFunc != nil {
		return f.DescribeParametersFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	names := make(map[string]bool)
	for _, filter := range params.ParameterFilters {
		if aws.ToString(filter.Key) == "Name" {
			for _, v := range filter.Values {
				names[v] = true
			}
		}
	}

	var paramList []ssmtypes.ParameterMetadata
	for name, data := range f.Parameters {
		if len(names) > 0 && !names[name] {
			continue
		}
		paramList = append(paramList, ssmtypes.ParameterMetadata{
			Name:             data.Name,
			Type:             data.Type,
			Version:          data.Version,
			LastModifiedDate: data.LastModifiedDate,
			Tier:             data.Tier,
		})
	}
	sort.Slice(paramList, func(i, j int) bool {
		return aws.ToString(paramList[i].Name) < aws.ToString(paramList[j].Name)
	})

	return &ssm.DescribeParametersOutput{Parameters: paramList}, nil
}

// FakeSecretsManagerClient is a version-aware mock of providers.SecretsManagerClientAPI
type FakeSecretsManagerClient struct {
	mu sync.Mutex

	// Secrets maps secret ids to their data
	Secrets map[string]*SecretData
	// Errors maps secret ids to errors returned by every operation
	Errors map[string]error
	// Password is returned by GetRandomPassword
	Password string
	// RotateSecretFunc allows custom behavior for RotateSecret
	RotateSecretFunc func(ctx context.Context, params *secretsmanager.RotateSecretInput) (*secretsmanager.RotateSecretOutput, error)
}

// SecretData holds the data for a mock secret
type SecretData struct {
	RotationEnabled bool
	// Versions maps version ids to their value and staging labels
	Versions map[string]*SecretVersion
}

// SecretVersion is one version of a mock secret
type SecretVersion struct {
	Value  string
	Stages []string
}

// NewFakeSecretsManagerClient creates a new mock Secrets Manager client
func NewFakeSecretsManagerClient() *FakeSecretsManagerClient {
	return &FakeSecretsManagerClient{
		Secrets:  make(map[string]*SecretData),
		Errors:   make(map[string]error),
		Password: "fake-random-password",
	}
}

// AddSecretString adds a secret with a single AWSCURRENT version
func (f *FakeSecretsManagerClient) AddSecretString(name, versionID, value string, rotationEnabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Secrets[name] = &SecretData{
		RotationEnabled: rotationEnabled,
		Versions: map[string]*SecretVersion{
			versionID: {Value: value, Stages: []string{"AWSCURRENT"}},
		},
	}
}

// AddVersion attaches an extra version to an existing secret
func (f *FakeSecretsManagerClient) AddVersion(name, versionID, value string, stages ...string) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.Secrets[name].Versions[versionID] = &SecretVersion{Value: value, Stages: stages}
}

// VersionFor returns the version id carrying stage, or "" if none does
func (f *FakeSecretsManagerClient) VersionFor(name, stage string) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.versionForLocked(f.Secrets[name], stage)
}

// Version returns a copy of one secret version
func (f *FakeSecretsManagerClient) Version(name, versionID string) (SecretVersion, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.Secrets[name].Versions[versionID]
	if !ok {
		return SecretVersion{}, false
	}
	return SecretVersion{Value: v.Value, Stages: append([]string(nil), v.Stages...)}, true
}

func (f *FakeSecretsManagerClient) versionForLocked(data *SecretData, stage string) string {
	if data == nil {
		return ""
	}
	for id, v := range data.Versions {
		for _, s := range v.Stages {
			if s == stage {
				return id
			}
		}
	}
	return ""
}

func notFound(msg string) error {
	return &smtypes.ResourceNotFoundException{Message: aws.String(msg)}
}

func (f *FakeSecretsManagerClient) lookup(secretID *string) (*SecretData, error) {
	name := aws.ToString(secretID)
	if err, exists := f.Errors[name]; exists {
		return nil, err
	}
	data, exists := f.Secrets[name]
	if !exists {
		return nil, notFound(fmt.Sprintf("Secrets Manager can't find the specified secret: %s", name))
	}
	return data, nil
}

// DescribeSecret mocks the DescribeSecret operation
func (f *FakeSecretsManagerClient) DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.lookup(params.SecretId)
	if err != nil {
		return nil, err
	}

	stages := make(map[string][]string, len(data.Versions))
	for id, v := range data.Versions {
		stages[id] = append([]string(nil), v.Stages...)
	}

	return &secretsmanager.DescribeSecretOutput{
		ARN:                aws.String(fmt.Sprintf("arn:aws:secretsmanager:us-east-1:123456789012:secret:%s", aws.ToString(params.SecretId))),
		Name:               params.SecretId,
		RotationEnabled:    aws.Bool(data.RotationEnabled),
		VersionIdsToStages: stages,
	}, nil
}

// GetSecretValue mocks the GetSecretValue operation
func (f *FakeSecretsManagerClient) GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.lookup(params.SecretId)
	if err != nil {
		return nil, err
	}

	stage := aws.ToString(params.VersionStage)
	versionID := aws.ToString(params.VersionId)
	if versionID == "" {
		if stage == "" {
			stage = "AWSCURRENT"
		}
		versionID = f.versionForLocked(data, stage)
	}

	v, ok := data.Versions[versionID]
	if !ok {
		return nil, notFound("Secrets Manager can't find the specified secret value")
	}
	if stage != "" {
		found := false
		for _, s := range v.Stages {
			if s == stage {
				found = true
			}
		}
		if !found {
			return nil, notFound("Secrets Manager can't find the specified secret value for staging label: " + stage)
		}
	}

	return &secretsmanager.GetSecretValueOutput{
		Name:          params.SecretId,
		SecretString:  aws.String(v.Value),
		VersionId:     aws.String(versionID),
		VersionStages: append([]string(nil), v.Stages...),
	}, nil
}

// PutSecretValue mocks the PutSecretValue operation
func (f *FakeSecretsManagerClient) PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.lookup(params.SecretId)
	if err != nil {
		return nil, err
	}

	versionID := aws.ToString(params.ClientRequestToken)
	stages := params.VersionStages
	if len(stages) == 0 {
		stages = []string{"AWSCURRENT"}
	}
	// A staging label lives on one version at a time.
	for _, v := range data.Versions {
		v.Stages = removeStages(v.Stages, stages)
	}
	data.Versions[versionID] = &SecretVersion{
		Value:  aws.ToString(params.SecretString),
		Stages: append([]string(nil), stages...),
	}

	return &secretsmanager.PutSecretValueOutput{
		Name:          params.SecretId,
		VersionId:     aws.String(versionID),
		VersionStages: stages,
	}, nil
}

// UpdateSecretVersionStage mocks the UpdateSecretVersionStage operation
func (f *FakeSecretsManagerClient) UpdateSecretVersionStage(ctx context.Context, params *secretsmanager.UpdateSecretVersionStageInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretVersionStageOutput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := f.lookup(params.SecretId)
	if err != nil {
		return nil, err
	}

	stage := aws.ToString(params.VersionStage)
	if from := aws.ToString(params.RemoveFromVersionId); from != "" {
		v, ok := data.Versions[from]
		if !ok {
			return nil, notFound("version " + from)
		}
		v.Stages = removeStages(v.Stages, []string{stage})
	}
	if to := aws.ToString(params.MoveToVersionId); to != "" {
		v, ok := data.Versions[to]
		if !ok {
			return nil, notFound("version " + to)
		}
		for _, other := range data.Versions {
			other.Stages = removeStages(other.Stages, []string{stage})
		}
		v.Stages = append(v.Stages, stage)
	}

	return &secretsmanager.UpdateSecretVersionStageOutput{Name: params.SecretId}, nil
}

// GetRandomPassword mocks the GetRandomPassword operation
func (f *FakeSecretsManagerClient) GetRandomPassword(ctx context.Context, params *secretsmanager.GetRandomPasswordInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetRandomPasswordOutput, error) {
	return &secretsmanager.GetRandomPasswordOutput{RandomPassword: aws.String(f.Password)}, nil
}

// RotateSecret mocks the RotateSecret operation
func (f *FakeSecretsManagerClient) RotateSecret(ctx context.Context, params *secretsmanager.RotateSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.RotateSecretOutput, error) {
	if f.RotateSecretFunc != nil {
		return f.RotateSecretFunc(ctx, params)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if _, err := f.lookup(params.SecretId); err != nil {
		return nil, err
	}

	return &secretsmanager.RotateSecretOutput{
		Name:      params.SecretId,
		VersionId: params.ClientRequestToken,
	}, nil
}

func removeStages(stages, drop []string) []string {
	var kept []string
	for _, s := range stages {
		keep := true
		for _, d := range drop {
			if s == d {
				keep = false
			}
		}
		if keep {
			kept = append(kept, s)
		}
	}
	return kept
}

// FakeSTSClient is a mock implementation of providers.STSClientAPI
type FakeSTSClient struct {
	Account string
	ARN     string
	UserID  string
	Err     error
}

// GetCallerIdentity mocks the GetCallerIdentity operation
func (f *FakeSTSClient) GetCallerIdentity(ctx context.Context, params *sts.GetCallerIdentityInput, optFns ...func(*sts.Options)) (*sts.GetCallerIdentityOutput, error) {
	if f.Err != nil {
		return nil, f.Err
	}
	return &sts.GetCallerIdentityOutput{
		Account: aws.String(f.Account),
		Arn:     aws.String(f.ARN),
		UserId:  aws.String(f.UserID),
	}, nil
}
