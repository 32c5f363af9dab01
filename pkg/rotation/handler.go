package rotation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/juju/clock"
	"github.com/systmms/ssmrotate/internal/logging"
	"github.com/systmms/ssmrotate/pkg/paramstore"
)

// Rotator is anything the Scheduler can drive.
type Rotator interface {
	// Target names what is rotated, for logs and metric labels.
	Target() string
	Rotate(ctx context.Context) (Result, error)
}

// Result describes a successful rotation.
type Result struct {
	Target          string
	PreviousVersion int64
	Version         int64
	RotatedAt       time.Time
}

// HandlerConfig is populated once at process start.
type HandlerConfig struct {
	// Parameter is the name of the parameter to rotate. Required.
	Parameter string

	// Store holds the parameter. Required.
	Store paramstore.Store

	// Generator produces new values. Defaults to TimestampGenerator.
	Generator Generator

	// Clock supplies the generation time. Defaults to clock.WallClock.
	Clock clock.Clock

	Logger  *logging.Logger
	Metrics *Metrics
}

// ParameterHandler rotates one parameter per invocation.
type ParameterHandler struct {
	parameter string
	store     paramstore.Store
	generator Generator
	clock     clock.Clock
	logger    *logging.Logger
	metrics   *Metrics
}

// NewParameterHandler validates cfg and fills in defaults.
func NewParameterHandler(cfg HandlerConfig) (*ParameterHandler, error) {
	if cfg.Parameter == "" {
		return nil, errors.New("parameter name is required")
	}
	if cfg.Store == nil {
		return nil, errors.New("parameter store is required")
	}

	h := &ParameterHandler{
		parameter: cfg.Parameter,
		store:     cfg.Store,
		generator: cfg.Generator,
		clock:     cfg.Clock,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
	}
	if h.generator == nil {
		h.generator = TimestampGenerator{}
	}
	if h.clock == nil {
		h.clock = clock.WallClock
	}
	if h.logger == nil {
		h.logger = logging.Nop()
	}
	return h, nil
}

// Target returns the parameter name
func (h *ParameterHandler) Target() string {
	return h.parameter
}

// Handle is the Lambda entry point for scheduled events. The event is only
// used for logging.
func (h *ParameterHandler) Handle(ctx context.Context, event events.CloudWatchEvent) error {
	h.logger.Info("Scheduled rotation triggered (event %s at %s)", event.ID, event.Time.UTC().Format(time.RFC3339))

	result, err := h.Rotate(ctx)
	if err != nil {
		h.logger.Error("Rotation of %s failed: %v", h.parameter, err)
		return err
	}

	h.logger.Info("Rotated %s to version %d", h.parameter, result.Version)
	return nil
}

// Rotate reads the parameter, generates a new value and overwrites it.
// The store is left unmodified on any error.
func (h *ParameterHandler) Rotate(ctx context.Context) (Result, error) {
	start := h.clock.Now()
	result, err := h.rotate(ctx, start)
	h.metrics.RecordRotation(h.parameter, h.clock.Now().Sub(start), err)
	return result, err
}

func (h *ParameterHandler) rotate(ctx context.Context, now time.Time) (Result, error) {
	// Put with overwrite creates missing parameters, so confirm it exists first.
	current, err := h.store.Get(ctx, h.parameter)
	if err != nil {
		return Result{}, fmt.Errorf("failed to read parameter: %w", err)
	}
	h.logger.Debug("Current version of %s is %d", logging.Secret(h.parameter), current.Version)

	value, err := h.generator.Generate(ctx, now)
	if err != nil {
		return Result{}, fmt.Errorf("failed to generate value with %s generator: %w", h.generator.Name(), err)
	}

	put, err := h.store.Put(ctx, h.parameter, value, true)
	if err != nil {
		return Result{}, fmt.Errorf("failed to write parameter: %w", redactValue(err, value))
	}

	return Result{
		Target:          h.parameter,
		PreviousVersion: current.Version,
		Version:         put.Version,
		RotatedAt:       now.UTC(),
	}, nil
}

// redactedError hides a generated value that a backend echoed back in its
// error message, e.g. an SSM ValidationException quoting the rejected value.
type redactedError struct {
	err   error
	value string
}

func redactValue(err error, value string) error {
	return &redactedError{err: err, value: value}
}

func (e *redactedError) Error() string {
	return logging.Redact(e.err.Error(), []string{e.value})
}

func (e *redactedError) Unwrap() error {
	return e.err
}
