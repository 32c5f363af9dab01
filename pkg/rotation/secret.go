package rotation

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	smtypes "github.com/aws/aws-sdk-go-v2/service/secretsmanager/types"
	"github.com/juju/clock"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/internal/providers"
)

// Rotation steps sent by Secrets Manager.
const (
	StepCreateSecret = "createSecret"
	StepSetSecret    = "setSecret"
	StepTestSecret   = "testSecret"
	StepFinishSecret = "finishSecret"
)

// Staging labels.
const (
	StageCurrent = "AWSCURRENT"
	StagePending = "AWSPENDING"
)

var (
	ErrRotationDisabled = errors.New("rotation is not enabled for secret")
	ErrUnknownVersion   = errors.New("secret has no version for rotation token")
	ErrNotPending       = errors.New("secret version is not staged as AWSPENDING")
	ErrUnknownStep      = errors.New("unknown rotation step")
	ErrEmptyPending     = errors.New("pending secret value is empty")
)

// SecretsManagerAPI is the subset of the Secrets Manager client the
// rotation steps use.
type SecretsManagerAPI interface {
	DescribeSecret(ctx context.Context, params *secretsmanager.DescribeSecretInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.DescribeSecretOutput, error)
	GetSecretValue(ctx context.Context, params *secretsmanager.GetSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.GetSecretValueOutput, error)
	PutSecretValue(ctx context.Context, params *secretsmanager.PutSecretValueInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.PutSecretValueOutput, error)
	UpdateSecretVersionStage(ctx context.Context, params *secretsmanager.UpdateSecretVersionStageInput, optFns ...func(*secretsmanager.Options)) (*secretsmanager.UpdateSecretVersionStageOutput, error)
}

// SecretHandlerConfig configures a SecretHandler.
type SecretHandlerConfig struct {
	Client    SecretsManagerAPI
	Generator Generator // defaults to a 32 character RandomGenerator
	Clock     clock.Clock
	Logger    *logging.Logger
	Metrics   *Metrics
}

// SecretHandler implements the Secrets Manager rotation protocol for
// secrets that are not shared with a downstream service.
type SecretHandler struct {
	client    SecretsManagerAPI
	generator Generator
	clock     clock.Clock
	logger    *logging.Logger
	metrics   *Metrics
}

// NewSecretHandler validates cfg and fills in defaults
func NewSecretHandler(cfg SecretHandlerConfig) (*SecretHandler, error) {
	if cfg.Client == nil {
		return nil, errors.New("secrets manager client is required")
	}

	h := &SecretHandler{
		client:    cfg.Client,
		generator: cfg.Generator,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if h.generator == nil {
		h.generator = RandomGenerator{Length: DefaultSecretLength}
	}
	if h.clock == nil {
		h.clock = clock.WallClock
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	return h, nil
}

// Handle runs one rotation step.
func (h *SecretHandler) Handle(ctx context.Context, event events.SecretsManagerSecretRotationEvent) error {
	logger := h.logger.With("secret", event.SecretID, "step", event.Step)
	start := h.clock.Now()

	err := h.handle(ctx, logger, event)
	if event.Step == StepFinishSecret || err != nil {
		h.metrics.RecordRotation(event.SecretID, h.clock.Now().Sub(start), err)
	}
	if err != nil {
		logger.Error("Rotation step failed: %v", err)
	}
	return err
}

func (h *SecretHandler) handle(ctx context.Context, logger *logging.Logger, event events.SecretsManagerSecretRotationEvent) error {
	secretID := event.SecretID
	token := event.ClientRequestToken

	desc, err := h.client.DescribeSecret(ctx, &secretsmanager.DescribeSecretInput{SecretId: aws.String(secretID)})
	if err != nil {
		return fmt.Errorf("failed to describe secret: %w", providers.WrapError("describe", secretID, err))
	}
	if !aws.ToBool(desc.RotationEnabled) {
		return fmt.Errorf("%w: %s", ErrRotationDisabled, secretID)
	}

	stages, ok := desc.VersionIdsToStages[token]
	if !ok {
		return fmt.Errorf("%w: secret %s token %s", ErrUnknownVersion, secretID, token)
	}
	if slices.Contains(stages, StageCurrent) {
		logger.Info("Version %s is already AWSCURRENT", token)
		return nil
	}
	if !slices.Contains(stages, StagePending) {
		return fmt.Errorf("%w: secret %s token %s", ErrNotPending, secretID, token)
	}

	switch event.Step {
	case StepCreateSecret:
		return h.createSecret(ctx, logger, secretID, token)
	case StepSetSecret:
		logger.Info("No downstream service to update")
		return nil
	case StepTestSecret:
		return h.testSecret(ctx, logger, secretID, token)
	case StepFinishSecret:
		return h.finishSecret(ctx, logger, secretID, token, desc.VersionIdsToStages)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownStep, event.Step)
	}
}

func (h *SecretHandler) createSecret(ctx context.Context, logger *logging.Logger, secretID, token string) error {
	if _, err := h.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionStage: aws.String(StageCurrent),
	}); err != nil {
		return fmt.Errorf("failed to read current version: %w", providers.WrapError("get", secretID, err))
	}

	pending, err := h.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionId:    aws.String(token),
		VersionStage: aws.String(StagePending),
	})
	switch {
	case err == nil && aws.ToString(pending.SecretString) != "":
		logger.Info("Pending version %s already has a value", token)
		return nil
	case err != nil && !isResourceNotFound(err):
		return fmt.Errorf("failed to read pending version: %w", providers.WrapError("get", secretID, err))
	}

	value, err := h.generator.Generate(ctx, h.clock.Now())
	if err != nil {
		return fmt.Errorf("failed to generate value with %s generator: %w", h.generator.Name(), err)
	}

	if _, err := h.client.PutSecretValue(ctx, &secretsmanager.PutSecretValueInput{
		SecretId:           aws.String(secretID),
		ClientRequestToken: aws.String(token),
		SecretString:       aws.String(value),
		VersionStages:      []string{StagePending},
	}); err != nil {
		return fmt.Errorf("failed to put pending version: %w", redactValue(providers.WrapError("put", secretID, err), value))
	}

	logger.Info("Created pending version %s", token)
	return nil
}

func (h *SecretHandler) testSecret(ctx context.Context, logger *logging.Logger, secretID, token string) error {
	out, err := h.client.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId:     aws.String(secretID),
		VersionId:    aws.String(token),
		VersionStage: aws.String(StagePending),
	})
	if err != nil {
		return fmt.Errorf("failed to read pending version: %w", providers.WrapError("get", secretID, err))
	}
	if aws.ToString(out.SecretString) == "" && len(out.SecretBinary) == 0 {
		return fmt.Errorf("%w: secret %s token %s", ErrEmptyPending, secretID, token)
	}

	logger.Info("Pending version %s is readable", token)
	return nil
}

func (h *SecretHandler) finishSecret(ctx context.Context, logger *logging.Logger, secretID, token string, versions map[string][]string) error {
	var current string
	for id, stages := range versions {
		if slices.Contains(stages, StageCurrent) {
			current = id
			break
		}
	}

	input := &secretsmanager.UpdateSecretVersionStageInput{
		SecretId:        aws.String(secretID),
		VersionStage:    aws.String(StageCurrent),
		MoveToVersionId: aws.String(token),
	}
	if current != "" {
		input.RemoveFromVersionId = aws.String(current)
	}
	if _, err := h.client.UpdateSecretVersionStage(ctx, input); err != nil {
		return fmt.Errorf("failed to promote version %s: %w", token, providers.WrapError("update-stage", secretID, err))
	}

	logger.Info("Moved AWSCURRENT from %s to %s", current, token)
	return nil
}

func isResourceNotFound(err error) bool {
	var nf *smtypes.ResourceNotFoundException
	return errors.As(err, &nf)
}
