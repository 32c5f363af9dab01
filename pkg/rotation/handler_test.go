package rotation_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/smithy-go"
	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/ssmrotate/internal/providers"
	"github.com/systmms/ssmrotate/pkg/paramstore"
	"github.com/systmms/ssmrotate/pkg/rotation"
	"github.com/systmms/ssmrotate/tests/fakes"
	"github.com/systmms/ssmrotate/tests/testutil"
)

const testParameter = "/rotation/demo"

func newStore(t *testing.T, client *fakes.FakeSSMClient) paramstore.Store {
	t.Helper()
	store, err := providers.NewSSMStore(context.Background(), "aws.ssm", providers.SSMConfig{}, providers.WithSSMClient(client))
	require.NoError(t, err)
	return store
}

func newHandler(t *testing.T, client *fakes.FakeSSMClient, clk *testclock.Clock) *rotation.ParameterHandler {
	t.Helper()
	h, err := rotation.NewParameterHandler(rotation.HandlerConfig{
		Parameter: testParameter,
		Store:     newStore(t, client),
		Clock:     clk,
	})
	require.NoError(t, err)
	return h
}

func TestNewParameterHandler_Validation(t *testing.T) {
	client := fakes.NewFakeSSMClient()

	_, err := rotation.NewParameterHandler(rotation.HandlerConfig{Store: newStore(t, client)})
	assert.Error(t, err)

	_, err = rotation.NewParameterHandler(rotation.HandlerConfig{Parameter: testParameter})
	assert.Error(t, err)

	h, err := rotation.NewParameterHandler(rotation.HandlerConfig{Parameter: testParameter, Store: newStore(t, client)})
	require.NoError(t, err)
	assert.Equal(t, testParameter, h.Target())
}

func TestParameterHandler_WritesTimestamp(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "2024-01-01T00:00:00.000Z")
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC))

	h := newHandler(t, client, clk)
	result, err := h.Rotate(context.Background())
	require.NoError(t, err)

	value, ok := client.Value(testParameter)
	require.True(t, ok)
	assert.Equal(t, "2024-01-01T00:05:00.000Z", value)
	assert.Equal(t, int64(1), result.PreviousVersion)
	assert.Equal(t, int64(2), result.Version)
	assert.Equal(t, testParameter, result.Target)

	require.NotNil(t, client.LastPut)
	assert.True(t, *client.LastPut.Overwrite)
	assert.Empty(t, client.LastPut.Type, "rotation must not change the parameter type")
}

func TestParameterHandler_NonUTCClock(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "old")

	berlin := time.FixedZone("CET", 3600)
	clk := testclock.NewClock(time.Date(2024, 1, 1, 1, 5, 0, 123000000, berlin))

	_, err := newHandler(t, client, clk).Rotate(context.Background())
	require.NoError(t, err)

	value, _ := client.Value(testParameter)
	assert.Equal(t, "2024-01-01T00:05:00.123Z", value)
}

func TestParameterHandler_ReplacesWithDistinctValue(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "2024-01-01T00:00:00.000Z")
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	h := newHandler(t, client, clk)

	clk.Advance(5 * time.Minute)
	_, err := h.Rotate(context.Background())
	require.NoError(t, err)

	value, _ := client.Value(testParameter)
	assert.NotEqual(t, "2024-01-01T00:00:00.000Z", value)
}

func TestParameterHandler_SequentialRunsNeverDelete(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "seed")
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	h := newHandler(t, client, clk)

	for i := 0; i < 10; i++ {
		clk.Advance(5 * time.Minute)
		result, err := h.Rotate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, int64(i+2), result.Version)

		value, ok := client.Value(testParameter)
		require.True(t, ok, "parameter must exist after run %d", i)
		assert.Equal(t, clk.Now().UTC().Format(rotation.TimestampLayout), value)
	}
	assert.Equal(t, 10, client.Puts())
}

func TestParameterHandler_MissingTarget(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC))

	_, err := newHandler(t, client, clk).Rotate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, paramstore.ErrNotFound))
	assert.Equal(t, "missing_target", paramstore.KindOf(err))

	_, ok := client.Value(testParameter)
	assert.False(t, ok, "missing parameter must not be created")
	assert.Zero(t, client.Puts())
}

func TestParameterHandler_PermissionDenied(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "2024-01-01T00:00:00.000Z")
	client.DenyWrite(testParameter)
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC))

	_, err := newHandler(t, client, clk).Rotate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, paramstore.ErrAccessDenied))

	value, _ := client.Value(testParameter)
	assert.Equal(t, "2024-01-01T00:00:00.000Z", value)
}

func TestParameterHandler_ReadDenied(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "keep")
	client.AddError(testParameter, fakes.AccessDenied("ssm:GetParameter"))
	clk := testclock.NewClock(time.Now())

	_, err := newHandler(t, client, clk).Rotate(context.Background())
	assert.True(t, errors.Is(err, paramstore.ErrAccessDenied))
	assert.Zero(t, client.Puts())
}

func TestParameterHandler_TransientError(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "keep")
	client.PutErrors[testParameter] = fakes.Throttled()
	clk := testclock.NewClock(time.Now())

	_, err := newHandler(t, client, clk).Rotate(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, paramstore.ErrTransient))
	assert.Equal(t, 1, client.Puts(), "handler must not retry")

	value, _ := client.Value(testParameter)
	assert.Equal(t, "keep", value)
}

type failingGenerator struct{}

func (failingGenerator) Name() string { return "failing" }

func (failingGenerator) Generate(context.Context, time.Time) (string, error) {
	return "", errors.New("entropy exhausted")
}

func TestParameterHandler_GeneratorFailure(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "keep")

	h, err := rotation.NewParameterHandler(rotation.HandlerConfig{
		Parameter: testParameter,
		Store:     newStore(t, client),
		Generator: failingGenerator{},
	})
	require.NoError(t, err)

	_, err = h.Rotate(context.Background())
	assert.ErrorContains(t, err, "entropy exhausted")
	assert.Zero(t, client.Puts())
}

func TestParameterHandler_Handle(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "2024-01-01T00:00:00.000Z")
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 5, 0, 0, time.UTC))
	h := newHandler(t, client, clk)

	event := events.CloudWatchEvent{
		ID:         "cdc73f9d-aea9-11e3-9d5a-835b769c0d9c",
		DetailType: "Scheduled Event",
		Source:     "aws.events",
		// The event time is informational only.
		Time: time.Date(2030, 6, 1, 12, 0, 0, 0, time.UTC),
	}
	require.NoError(t, h.Handle(context.Background(), event))

	value, _ := client.Value(testParameter)
	assert.Equal(t, "2024-01-01T00:05:00.000Z", value)

	client.DenyWrite(testParameter)
	err := h.Handle(context.Background(), event)
	assert.True(t, errors.Is(err, paramstore.ErrAccessDenied))
}

func TestParameterHandler_NeverLogsValues(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "previous-secret-value")
	logger := testutil.NewTestLogger(t, true)

	h, err := rotation.NewParameterHandler(rotation.HandlerConfig{
		Parameter: testParameter,
		Store:     newStore(t, client),
		Generator: rotation.RandomGenerator{Length: 32},
		Logger:    logger.Logger,
	})
	require.NoError(t, err)

	require.NoError(t, h.Handle(context.Background(), events.CloudWatchEvent{ID: "evt-1", Time: time.Now()}))

	value, _ := client.Value(testParameter)
	logger.AssertNotContains(t, value)
	logger.AssertNotContains(t, "previous-secret-value")
	logger.AssertContains(t, "evt-1")
	logger.AssertContains(t, "Rotated "+testParameter+" to version 2")
}

func TestParameterHandler_RedactsEchoedValue(t *testing.T) {
	const value = "s3cr3t-rotated-value"

	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "keep")
	client.PutErrors[testParameter] = &smithy.GenericAPIError{
		Code:    "ValidationException",
		Message: "Value '" + value + "' at 'value' failed to satisfy constraint",
		Fault:   smithy.FaultClient,
	}
	logger := testutil.NewTestLogger(t, true)

	h, err := rotation.NewParameterHandler(rotation.HandlerConfig{
		Parameter: testParameter,
		Store:     newStore(t, client),
		Generator: fixedGenerator(value),
		Logger:    logger.Logger,
	})
	require.NoError(t, err)

	err = h.Handle(context.Background(), events.CloudWatchEvent{ID: "evt-2", Time: time.Now()})
	require.Error(t, err)
	assert.ErrorIs(t, err, paramstore.ErrInvalid)
	assert.NotContains(t, err.Error(), value)
	assert.Contains(t, err.Error(), "[REDACTED]")
	logger.AssertNotContains(t, value)
	logger.AssertContains(t, "ValidationException")
}
