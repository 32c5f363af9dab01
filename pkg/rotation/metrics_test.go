package rotation_test

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/systmms/ssmrotate/pkg/paramstore"
	"github.com/systmms/ssmrotate/pkg/rotation"
)

func counterValue(t *testing.T, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)

	for _, mf := range families {
		if mf.GetName() != name {
			continue
		}
	metrics:
		for _, m := range mf.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metrics
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestMetrics_RecordRotation(t *testing.T) {
	m := rotation.NewMetrics()
	assert.True(t, rotation.IsRegistered())

	target := "/metrics/test"
	m.RecordRotation(target, 10*time.Millisecond, nil)
	m.RecordRotation(target, 10*time.Millisecond, &paramstore.Error{Op: "put", Name: target, Kind: paramstore.ErrAccessDenied})

	assert.Equal(t, 1.0, counterValue(t, "ssmrotate_rotations_total", map[string]string{"target": target, "status": rotation.StatusCompleted}))
	assert.Equal(t, 1.0, counterValue(t, "ssmrotate_rotations_total", map[string]string{"target": target, "status": rotation.StatusFailed}))
	assert.Equal(t, 1.0, counterValue(t, "ssmrotate_rotation_errors_total", map[string]string{"target": target, "kind": "permission_denied"}))
}

func TestMetrics_NilIsSafe(t *testing.T) {
	var m *rotation.Metrics
	assert.NotPanics(t, func() {
		m.RecordRotation("x", time.Second, errors.New("boom"))
	})
}

func TestMetrics_ConcurrentInitAndRecord(t *testing.T) {
	target := "/metrics/concurrent"

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			m := rotation.NewMetrics()
			m.RecordRotation(target, time.Millisecond, nil)
		}()
	}
	wg.Wait()

	assert.True(t, rotation.IsRegistered())
	assert.Equal(t, 8.0, counterValue(t, "ssmrotate_rotations_total", map[string]string{"target": target, "status": rotation.StatusCompleted}))
}
