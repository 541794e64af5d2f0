package m_test

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/capatazlib/go-streamexpect/internal/m"
)

func TestMetricsAreRecorded(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()
	mt := m.New(reg)

	mt.SlotResolved("SingleValue", "Passed")
	mt.SlotResolved("SingleValue", "Passed")
	mt.SlotResolved("CompletionAny", "TimedOut")
	mt.ValueRecorded()
	mt.ChainSubscribed()
	mt.ChainSubscribed()
	mt.ChainCancelled()
	mt.WaitFinished(10 * time.Millisecond)

	count, err := testutil.GatherAndCount(reg, "streamexpect_slot_outcomes_total")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	families, err := reg.Gather()
	require.NoError(t, err)

	byName := map[string]float64{}
	for _, family := range families {
		for _, metric := range family.GetMetric() {
			switch {
			case metric.GetCounter() != nil:
				byName[family.GetName()] += metric.GetCounter().GetValue()
			case metric.GetGauge() != nil:
				byName[family.GetName()] += metric.GetGauge().GetValue()
			case metric.GetHistogram() != nil:
				byName[family.GetName()] += float64(metric.GetHistogram().GetSampleCount())
			}
		}
	}

	assert.Equal(t, 3.0, byName["streamexpect_slot_outcomes_total"])
	assert.Equal(t, 1.0, byName["streamexpect_values_recorded_total"])
	assert.Equal(t, 1.0, byName["streamexpect_active_chains"])
	assert.Equal(t, 1.0, byName["streamexpect_wait_duration_seconds"])
}

func TestNilMetricsIsNoop(t *testing.T) {
	var mt *m.Metrics
	assert.NotPanics(t, func() {
		mt.SlotResolved("SingleValue", "Passed")
		mt.ValueRecorded()
		mt.ChainSubscribed()
		mt.ChainCancelled()
		mt.WaitFinished(time.Second)
	})
}

func TestMetricsShareRegisterer(t *testing.T) {
	reg := prometheus.NewPedanticRegistry()

	var first, second *m.Metrics
	require.NotPanics(t, func() {
		first = m.New(reg)
		second = m.New(reg)
	})

	first.ValueRecorded()
	second.ValueRecorded()

	families, err := reg.Gather()
	require.NoError(t, err)

	for _, family := range families {
		if family.GetName() != "streamexpect_values_recorded_total" {
			continue
		}
		require.Len(t, family.GetMetric(), 1)
		assert.Equal(t, 2.0, family.GetMetric()[0].GetCounter().GetValue())
		return
	}
	t.Fatal("values counter was not registered")
}
