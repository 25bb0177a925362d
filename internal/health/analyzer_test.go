package health

import (
	"testing"

	"canoncache/internal/logs"
	"canoncache/internal/metrics"

	"github.com/stretchr/testify/assert"
)

func TestAnalyzer_OK(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	analyzer := NewAnalyzer(reg, logger)
	report := analyzer.Analyze()

	assert.Equal(t, StatusOK, report.OverallStatus)
	assert.Equal(t, "Service is healthy", report.Summary)
	assert.Empty(t, report.Signals)
}

func TestAnalyzer_DegradedClockRegression(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	reg.Inc(metrics.CacheClockRegressionsTotal)

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Contains(t, report.Signals, "Wall clock regression observed on cached entries")
}

func TestAnalyzer_EvictionPressure(t *testing.T) {
	t.Run("BelowMinimumPuts", func(t *testing.T) {
		reg := metrics.NewRegistry()
		reg.Add(metrics.CachePutsTotal, 4)
		reg.Add(metrics.CacheEvictedTotal, 4)

		report := NewAnalyzer(reg, logs.NewLogger(10, logs.DEBUG)).Analyze()
		assert.Equal(t, StatusOK, report.OverallStatus)
	})

	t.Run("LowEvictionRatio", func(t *testing.T) {
		reg := metrics.NewRegistry()
		reg.Add(metrics.CachePutsTotal, 100)
		reg.Add(metrics.CacheEvictedTotal, 10)

		report := NewAnalyzer(reg, logs.NewLogger(10, logs.DEBUG)).Analyze()
		assert.Equal(t, StatusOK, report.OverallStatus)
	})

	t.Run("HighEvictionRatio", func(t *testing.T) {
		reg := metrics.NewRegistry()
		reg.Add(metrics.CachePutsTotal, 100)
		reg.Add(metrics.CacheEvictedTotal, 50)

		report := NewAnalyzer(reg, logs.NewLogger(10, logs.DEBUG)).Analyze()
		assert.Equal(t, StatusDegraded, report.OverallStatus)
		assert.Contains(t, report.Recommendations, "Increase cache.max_entries")
	})
}

func TestAnalyzer_MultipleMetricSignals(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	reg.Inc(metrics.CacheClockRegressionsTotal)
	reg.Inc(metrics.CanonErrorsTotal)

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusDegraded, report.OverallStatus)
	assert.Len(t, report.Signals, 2)
	assert.Len(t, report.Recommendations, 2)
}

func TestAnalyzer_LogBasedPanicDetection(t *testing.T) {
	reg := metrics.NewRegistry()
	logger := logs.NewLogger(10, logs.DEBUG)

	logger.Error("panic recovered: runtime error")

	report := NewAnalyzer(reg, logger).Analyze()

	assert.Equal(t, StatusCritical, report.OverallStatus)
	assert.Equal(t, "Service health issues detected", report.Summary)
	assert.Contains(
		t,
		report.Signals,
		"Application panics detected in logs",
	)
}
