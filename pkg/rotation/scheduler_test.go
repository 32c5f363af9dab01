package rotation_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/ssmrotate/pkg/paramstore"
	"github.com/systmms/ssmrotate/pkg/rotation"
	"github.com/systmms/ssmrotate/tests/fakes"
	"github.com/systmms/ssmrotate/tests/testutil"
)

const shortWait = 2 * time.Second

type countingRotator struct {
	mu    sync.Mutex
	calls int
	err   error
	done  chan struct{}
}

func newCountingRotator(err error) *countingRotator {
	return &countingRotator{err: err, done: make(chan struct{}, 16)}
}

func (r *countingRotator) Target() string { return "counting" }

func (r *countingRotator) Rotate(context.Context) (rotation.Result, error) {
	r.mu.Lock()
	r.calls++
	r.mu.Unlock()
	r.done <- struct{}{}
	return rotation.Result{Target: "counting"}, r.err
}

func (r *countingRotator) waitCall(t *testing.T) {
	t.Helper()
	select {
	case <-r.done:
	case <-time.After(shortWait):
		t.Fatal("rotator was not called")
	}
}

func startScheduler(t *testing.T, cfg rotation.SchedulerConfig) (*rotation.Scheduler, context.CancelFunc, <-chan error) {
	t.Helper()
	s, err := rotation.NewScheduler(cfg)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- s.Run(ctx) }()
	return s, cancel, errCh
}

func TestScheduler_RunsEveryInterval(t *testing.T) {
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	rotator := newCountingRotator(nil)

	s, cancel, errCh := startScheduler(t, rotation.SchedulerConfig{Rotator: rotator, Interval: 5 * time.Minute, Clock: clk})

	for i := 0; i < 3; i++ {
		require.NoError(t, clk.WaitAdvance(5*time.Minute, shortWait, 1))
		rotator.waitCall(t)
	}

	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, int64(3), s.Runs())
	assert.Zero(t, s.Failures())
}

func TestScheduler_RunImmediately(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	rotator := newCountingRotator(nil)

	_, cancel, errCh := startScheduler(t, rotation.SchedulerConfig{Rotator: rotator, Clock: clk, RunImmediately: true})
	rotator.waitCall(t)

	cancel()
	require.NoError(t, <-errCh)
}

func TestScheduler_FailuresAreCountedNotRetried(t *testing.T) {
	clk := testclock.NewClock(time.Now())
	rotator := newCountingRotator(errors.New("denied"))

	s, cancel, errCh := startScheduler(t, rotation.SchedulerConfig{Rotator: rotator, Interval: time.Minute, Clock: clk})

	require.NoError(t, clk.WaitAdvance(time.Minute, shortWait, 1))
	rotator.waitCall(t)
	require.NoError(t, clk.WaitAdvance(time.Minute, shortWait, 1))
	rotator.waitCall(t)

	cancel()
	require.NoError(t, <-errCh)
	assert.Equal(t, int64(2), s.Runs())
	assert.Equal(t, int64(2), s.Failures())
}

func TestScheduler_LogsRetryableFailures(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantLog string
	}{
		{
			name:    "transient",
			err:     &paramstore.Error{Op: "put", Name: "/p", Kind: paramstore.ErrTransient, Err: fakes.Throttled()},
			wantLog: "will try again at the next tick in 1m0s",
		},
		{
			name:    "missing target",
			err:     &paramstore.Error{Op: "get", Name: "/p", Kind: paramstore.ErrNotFound},
			wantLog: "failed with a permanent error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk := testclock.NewClock(time.Now())
			rotator := newCountingRotator(tt.err)
			logger := testutil.NewTestLogger(t, false)

			s, cancel, errCh := startScheduler(t, rotation.SchedulerConfig{
				Rotator:        rotator,
				Interval:       time.Minute,
				Clock:          clk,
				Logger:         logger.Logger,
				RunImmediately: true,
			})
			rotator.waitCall(t)
			// The tick has logged once the scheduler waits on the clock again.
			require.NoError(t, clk.WaitAdvance(0, shortWait, 1))

			cancel()
			require.NoError(t, <-errCh)
			assert.Equal(t, int64(1), s.Failures())
			logger.AssertContains(t, tt.wantLog)
		})
	}
}

func TestScheduler_RotatesParameter(t *testing.T) {
	client := fakes.NewFakeSSMClient()
	client.AddStringParameter(testParameter, "2024-01-01T00:00:00.000Z")
	clk := testclock.NewClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	h := newHandler(t, client, clk)

	s, cancel, errCh := startScheduler(t, rotation.SchedulerConfig{Rotator: h, Interval: 5 * time.Minute, Clock: clk})

	require.NoError(t, clk.WaitAdvance(5*time.Minute, shortWait, 1))
	// The next timer is only requested once the rotation has finished.
	require.NoError(t, clk.WaitAdvance(0, shortWait, 1))

	cancel()
	require.NoError(t, <-errCh)

	value, _ := client.Value(testParameter)
	assert.Equal(t, "2024-01-01T00:05:00.000Z", value)
	assert.Equal(t, int64(1), s.Runs())
}

func TestNewScheduler_Validation(t *testing.T) {
	_, err := rotation.NewScheduler(rotation.SchedulerConfig{})
	assert.Error(t, err)

	_, err = rotation.NewScheduler(rotation.SchedulerConfig{Rotator: newCountingRotator(nil), Interval: -time.Second})
	assert.Error(t, err)
}
