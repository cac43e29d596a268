package report

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"transcriptcleaner/internal/storage"
)

// DefaultLogName is the object the StoreReporter writes to
const DefaultLogName = "error_log.txt"

// Reporter is a fire-and-forget sink for item failures.
// Implementations never return errors and never panic on sink failures.
type Reporter interface {
	Report(ctx context.Context, message string)
}

// LogReporter reports through the structured logger only
type LogReporter struct {
	logger *zap.Logger
}

// NewLogReporter creates a LogReporter
func NewLogReporter(logger *zap.Logger) *LogReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogReporter{logger: logger}
}

// Report logs message at error level
func (r *LogReporter) Report(_ context.Context, message string) {
	r.logger.Error("item failure reported", zap.String("message", message))
}

// StoreReporter accumulates failure messages and rewrites them as a single
// log object through a Storer after every report
type StoreReporter struct {
	store   storage.Storer
	name    string
	runID   string
	logger  *zap.Logger
	mu      sync.Mutex
	entries []string
}

// NewStoreReporter creates a StoreReporter writing to name through store.
// runID is stamped on every line so reports from separate runs can be told apart.
func NewStoreReporter(store storage.Storer, name, runID string, logger *zap.Logger) *StoreReporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if name == "" {
		name = DefaultLogName
	}
	return &StoreReporter{
		store:  store,
		name:   name,
		runID:  runID,
		logger: logger,
	}
}

// Report appends message to the error log object. Store failures are logged locally and swallowed.
func (r *StoreReporter) Report(ctx context.Context, message string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("error log sink panicked",
				zap.String("original_message", message),
				zap.Any("panic", rec))
		}
	}()

	line := time.Now().UTC().Format(time.RFC3339) + " run=" + r.runID + " " + message
	r.entries = append(r.entries, line)
	content := strings.Join(r.entries, "\n") + "\n"

	if err := r.store.Store(ctx, r.name, []byte(content)); err != nil {
		r.logger.Error("failed to write error log",
			zap.String("log_name", r.name),
			zap.String("original_message", message),
			zap.Error(err))
	}
}

// Entries returns a copy of the lines reported so far
func (r *StoreReporter) Entries() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries := make([]string, len(r.entries))
	copy(entries, r.entries)
	return entries
}

// MultiReporter forwards every report to each of its reporters in order
type MultiReporter []Reporter

// Report forwards message to every reporter
func (m MultiReporter) Report(ctx context.Context, message string) {
	for _, reporter := range m {
		if reporter != nil {
			reporter.Report(ctx, message)
		}
	}
}
