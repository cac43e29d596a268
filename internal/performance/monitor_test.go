package performance

import (
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestPerformanceMonitorCreation(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())

	assert.NotNil(t, monitor)
	assert.NotNil(t, monitor.logger)
	assert.False(t, monitor.benchmark)
}

func TestPerformanceMonitorWithBenchmark(t *testing.T) {
	monitor := NewPerformanceMonitorWithBenchmark(nil, true)

	assert.NotNil(t, monitor)
	assert.NotNil(t, monitor.logger)
	assert.True(t, monitor.benchmark)
}

func TestStartItem(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())

	timer := monitor.StartItem("a_transcription.txt")

	assert.Equal(t, "a_transcription.txt", timer.Item)
	assert.False(t, timer.StartTime.IsZero())
}

func TestEndItemUpdatesMetrics(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())

	timer := monitor.StartItem("a.txt")
	time.Sleep(5 * time.Millisecond)
	monitor.EndItem(timer, OutcomeCleaned, 3, decimal.RequireFromString("4.5"))

	metrics := monitor.GetMetrics()
	assert.Equal(t, int64(1), metrics.TotalItems)
	assert.Equal(t, int64(1), metrics.CleanedItems)
	assert.Equal(t, int64(3), metrics.TotalSegments)
	assert.Equal(t, "4.5", metrics.TotalSpeech.String())
	assert.True(t, metrics.TotalProcessingTime > 0)
	assert.Equal(t, "a.txt", metrics.LastItem)
	assert.Equal(t, OutcomeCleaned, metrics.LastOutcome)
	assert.Equal(t, metrics.MinProcessingTime, metrics.MaxProcessingTime)
}

func TestEndItemCountsOutcomes(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())

	for _, outcome := range []Outcome{OutcomeCleaned, OutcomeCleaned, OutcomeNoSegments, OutcomeDuplicate, OutcomeFailed} {
		monitor.EndItem(monitor.StartItem("item"), outcome, 0, decimal.Zero)
	}

	metrics := monitor.GetMetrics()
	assert.Equal(t, int64(5), metrics.TotalItems)
	assert.Equal(t, int64(2), metrics.CleanedItems)
	assert.Equal(t, int64(1), metrics.NoSegmentItems)
	assert.Equal(t, int64(1), metrics.DuplicateItems)
	assert.Equal(t, int64(1), metrics.FailedItems)
}

func TestEndItemIsConcurrencySafe(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			monitor.EndItem(monitor.StartItem("item"), OutcomeCleaned, 2, decimal.NewFromInt(1))
		}()
	}
	wg.Wait()

	metrics := monitor.GetMetrics()
	assert.Equal(t, int64(50), metrics.TotalItems)
	assert.Equal(t, int64(100), metrics.TotalSegments)
	assert.Equal(t, "50", metrics.TotalSpeech.String())
}

func TestBenchmarkLogging(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	monitor := NewPerformanceMonitorWithBenchmark(zap.New(core), true)

	monitor.EndItem(monitor.StartItem("a.txt"), OutcomeFailed, 0, decimal.Zero)

	entries := logs.FilterMessage("item performance").All()
	assert.Len(t, entries, 1)
	assert.Equal(t, "failed", entries[0].ContextMap()["outcome"])
}

func TestGetPerformanceSummary(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())

	assert.Equal(t, "No cleaning metrics available", monitor.GetPerformanceSummary())

	monitor.EndItem(monitor.StartItem("a.txt"), OutcomeCleaned, 2, decimal.RequireFromString("3.25"))
	summary := monitor.GetPerformanceSummary()

	assert.Contains(t, summary, "Total Items: 1")
	assert.Contains(t, summary, "Cleaned: 1, No Segments: 0, Duplicates: 0, Failed: 0")
	assert.Contains(t, summary, "Total Speech: 3.25s")
}

func TestResetMetrics(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())
	monitor.EndItem(monitor.StartItem("a.txt"), OutcomeCleaned, 2, decimal.NewFromInt(1))

	monitor.ResetMetrics()

	metrics := monitor.GetMetrics()
	assert.Equal(t, int64(0), metrics.TotalItems)
	assert.True(t, metrics.TotalSpeech.IsZero())
	assert.Equal(t, time.Hour, metrics.MinProcessingTime)
}

func TestBenchmarkModeToggle(t *testing.T) {
	monitor := NewPerformanceMonitor(zap.NewNop())

	monitor.BenchmarkMode(true)
	assert.True(t, monitor.benchmark)

	monitor.BenchmarkMode(false)
	assert.False(t, monitor.benchmark)
}
