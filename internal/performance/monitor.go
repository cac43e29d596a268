package performance

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Outcome is the result of cleaning one transcript
type Outcome string

const (
	OutcomeCleaned    Outcome = "cleaned"
	OutcomeNoSegments Outcome = "no_segments"
	OutcomeDuplicate  Outcome = "duplicate"
	OutcomeFailed     Outcome = "failed"
)

// CleaningMetrics tracks batch cleaning metrics
type CleaningMetrics struct {
	TotalItems          int64
	CleanedItems        int64
	NoSegmentItems      int64
	DuplicateItems      int64
	FailedItems         int64
	TotalSegments       int64
	TotalSpeech         decimal.Decimal
	TotalProcessingTime time.Duration
	AvgProcessingTime   time.Duration
	MinProcessingTime   time.Duration
	MaxProcessingTime   time.Duration
	LastItem            string
	LastOutcome         Outcome
	LastTimestamp       time.Time
}

// ItemTimer tracks timing for one transcript
type ItemTimer struct {
	Item           string
	StartTime      time.Time
	ProcessingTime time.Duration
}

// PerformanceMonitor handles per-item timing and outcome accounting
type PerformanceMonitor struct {
	logger    *zap.Logger
	metrics   CleaningMetrics
	mu        sync.RWMutex
	benchmark bool
}

func freshMetrics() CleaningMetrics {
	return CleaningMetrics{
		TotalSpeech:       decimal.Zero,
		MinProcessingTime: time.Hour, // Initialize to large value
		LastTimestamp:     time.Now(),
	}
}

// NewPerformanceMonitor creates a new performance monitor
func NewPerformanceMonitor(logger *zap.Logger) *PerformanceMonitor {
	return NewPerformanceMonitorWithBenchmark(logger, false)
}

// NewPerformanceMonitorWithBenchmark creates a performance monitor that logs every item when benchmark is set
func NewPerformanceMonitorWithBenchmark(logger *zap.Logger, benchmark bool) *PerformanceMonitor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PerformanceMonitor{
		logger:    logger,
		metrics:   freshMetrics(),
		benchmark: benchmark,
	}
}

// StartItem begins timing the cleaning of item
func (pm *PerformanceMonitor) StartItem(item string) *ItemTimer {
	return &ItemTimer{
		Item:      item,
		StartTime: time.Now(),
	}
}

// EndItem completes timing and records the outcome, segment count and speech seconds
func (pm *PerformanceMonitor) EndItem(timer *ItemTimer, outcome Outcome, segments int, speech decimal.Decimal) {
	timer.ProcessingTime = time.Since(timer.StartTime)

	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.metrics.TotalItems++
	pm.metrics.TotalSegments += int64(segments)
	pm.metrics.TotalSpeech = pm.metrics.TotalSpeech.Add(speech)
	pm.metrics.TotalProcessingTime += timer.ProcessingTime
	pm.metrics.LastItem = timer.Item
	pm.metrics.LastOutcome = outcome
	pm.metrics.LastTimestamp = time.Now()

	switch outcome {
	case OutcomeCleaned:
		pm.metrics.CleanedItems++
	case OutcomeNoSegments:
		pm.metrics.NoSegmentItems++
	case OutcomeDuplicate:
		pm.metrics.DuplicateItems++
	case OutcomeFailed:
		pm.metrics.FailedItems++
	}

	if timer.ProcessingTime < pm.metrics.MinProcessingTime {
		pm.metrics.MinProcessingTime = timer.ProcessingTime
	}
	if timer.ProcessingTime > pm.metrics.MaxProcessingTime {
		pm.metrics.MaxProcessingTime = timer.ProcessingTime
	}

	pm.metrics.AvgProcessingTime = time.Duration(
		int64(pm.metrics.TotalProcessingTime) / pm.metrics.TotalItems,
	)

	if pm.benchmark {
		pm.logger.Info("item performance",
			zap.String("item", timer.Item),
			zap.String("outcome", string(outcome)),
			zap.Int("segments", segments),
			zap.String("speech_seconds", speech.String()),
			zap.Duration("processing_time", timer.ProcessingTime),
		)
	}
}

// GetMetrics returns a copy of current metrics
func (pm *PerformanceMonitor) GetMetrics() CleaningMetrics {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	return pm.metrics
}

// GetPerformanceSummary returns a formatted summary of the run
func (pm *PerformanceMonitor) GetPerformanceSummary() string {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	if pm.metrics.TotalItems == 0 {
		return "No cleaning metrics available"
	}

	return fmt.Sprintf(
		"Cleaning Summary:\n"+
			"  Total Items: %d\n"+
			"  Cleaned: %d, No Segments: %d, Duplicates: %d, Failed: %d\n"+
			"  Total Segments: %d\n"+
			"  Total Speech: %ss\n"+
			"  Avg Processing Time: %v\n"+
			"  Min/Max Processing Time: %v / %v\n",
		pm.metrics.TotalItems,
		pm.metrics.CleanedItems,
		pm.metrics.NoSegmentItems,
		pm.metrics.DuplicateItems,
		pm.metrics.FailedItems,
		pm.metrics.TotalSegments,
		pm.metrics.TotalSpeech.String(),
		pm.metrics.AvgProcessingTime,
		pm.metrics.MinProcessingTime,
		pm.metrics.MaxProcessingTime,
	)
}

// ResetMetrics clears all accumulated metrics
func (pm *PerformanceMonitor) ResetMetrics() {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.metrics = freshMetrics()

	pm.logger.Info("performance metrics reset")
}

// BenchmarkMode enables or disables per-item benchmark logging
func (pm *PerformanceMonitor) BenchmarkMode(enabled bool) {
	pm.mu.Lock()
	defer pm.mu.Unlock()

	pm.benchmark = enabled
	pm.logger.Info("benchmark mode", zap.Bool("enabled", enabled))
}

// LogCurrentMetrics logs the current metrics
func (pm *PerformanceMonitor) LogCurrentMetrics() {
	pm.mu.RLock()
	defer pm.mu.RUnlock()

	pm.logger.Info("current cleaning metrics",
		zap.Int64("total_items", pm.metrics.TotalItems),
		zap.Int64("cleaned_items", pm.metrics.CleanedItems),
		zap.Int64("no_segment_items", pm.metrics.NoSegmentItems),
		zap.Int64("duplicate_items", pm.metrics.DuplicateItems),
		zap.Int64("failed_items", pm.metrics.FailedItems),
		zap.Int64("total_segments", pm.metrics.TotalSegments),
		zap.String("total_speech_seconds", pm.metrics.TotalSpeech.String()),
		zap.Duration("avg_processing_time", pm.metrics.AvgProcessingTime),
	)
}
