package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewManager(t *testing.T) {
	m, reg := NewTestManagerAndRegistry()

	m.CounterRegistrations.Inc()
	m.CounterProgressionCache.WithLabelValues("hit").Inc()
	m.CounterProgressionCache.WithLabelValues("hit").Inc()
	m.CounterProgressionCache.WithLabelValues("miss").Inc()

	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterRegistrations))
	assert.Equal(t, float64(2), testutil.ToFloat64(m.CounterProgressionCache.WithLabelValues("hit")))
	assert.Equal(t, float64(1), testutil.ToFloat64(m.CounterProgressionCache.WithLabelValues("miss")))

	families, err := reg.Gather()
	require.NoError(t, err)
	names := make([]string, 0, len(families))
	for _, f := range families {
		names = append(names, f.GetName())
	}
	assert.Contains(t, names, "gymtracker_test_server_registrations")
	assert.Contains(t, names, "gymtracker_test_server_progression_cache")
}

func TestNewManager_TwoRegistries(t *testing.T) {
	// each manager registers on its own registry, so no duplicate registration panics
	assert.NotPanics(t, func() {
		NewTestManager()
		NewTestManager()
	})
}

func TestSetupPrometheus(t *testing.T) {
	extra := prometheus.NewCounter(prometheus.CounterOpts{Name: "extra_total", Help: "extra"})
	reg := SetupPrometheus(extra, nil)
	extra.Inc()

	families, err := reg.Gather()
	require.NoError(t, err)
	names := map[string]bool{}
	for _, f := range families {
		names[f.GetName()] = true
	}
	assert.True(t, names["extra_total"])
	assert.True(t, names["go_build_info"])
	assert.True(t, names["go_goroutines"])
	assert.True(t, names["go_sched_gomaxprocs_threads"])
}
