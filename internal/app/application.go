package app

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"transcriptcleaner/internal/cleaner"
	"transcriptcleaner/internal/config"
	"transcriptcleaner/internal/ledger"
	"transcriptcleaner/internal/performance"
	"transcriptcleaner/internal/report"
	"transcriptcleaner/internal/storage"
)

// ItemResult is the outcome of cleaning one transcript
type ItemResult struct {
	Item     string
	Output   string
	Outcome  performance.Outcome
	Segments int
	Err      error
}

// Application wires configuration, storage, the cleaner and reporting into a cleaning run
type Application struct {
	config   *config.Configuration
	logger   *zap.Logger
	fs       afero.Fs
	cleaner  *cleaner.Cleaner
	output   *storage.FSStore
	reporter report.Reporter
	ledger   *ledger.Ledger
	monitor  *performance.PerformanceMonitor
	runID    string
}

// NewApplication creates an application over the host filesystem
func NewApplication(cfg *config.Configuration, logger *zap.Logger) (*Application, error) {
	return NewApplicationWithFs(cfg, logger, afero.NewOsFs())
}

// NewApplicationWithFs creates an application over fs with the default Punkt cleaner
func NewApplicationWithFs(cfg *config.Configuration, logger *zap.Logger, fs afero.Fs) (*Application, error) {
	return NewApplicationWithCleaner(cfg, logger, fs, nil)
}

// NewApplicationWithCleaner creates an application over fs using cl, or the default Punkt cleaner when cl is nil
func NewApplicationWithCleaner(cfg *config.Configuration, logger *zap.Logger, fs afero.Fs, cl *cleaner.Cleaner) (*Application, error) {
	if cfg == nil {
		return nil, fmt.Errorf("configuration cannot be nil")
	}
	if fs == nil {
		return nil, fmt.Errorf("filesystem cannot be nil")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	runID := uuid.NewString()
	logger = logger.With(zap.String("run_id", runID))

	if cl == nil {
		policy, err := cfg.GetContinuationPolicy()
		if err != nil {
			return nil, err
		}
		cl, err = cleaner.NewDefaultCleaner(policy, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to create cleaner: %w", err)
		}
	}

	reporters := report.MultiReporter{report.NewLogReporter(logger)}
	if errorsPath := cfg.GetErrorLogPath(); errorsPath != "" {
		errorStore := storage.NewFSStoreWithLogger(fs, errorsPath, logger)
		reporters = append(reporters, report.NewStoreReporter(errorStore, cfg.GetErrorLogName(), runID, logger))
	}

	var l *ledger.Ledger
	if ledgerPath := cfg.GetLedgerPath(); ledgerPath != "" {
		var err error
		l, err = ledger.Open(ledgerPath)
		if err != nil {
			return nil, fmt.Errorf("failed to open ledger: %w", err)
		}
	}

	return &Application{
		config:   cfg,
		logger:   logger,
		fs:       fs,
		cleaner:  cl,
		output:   storage.NewFSStoreWithLogger(fs, cfg.GetOutputPath(), logger),
		reporter: reporters,
		ledger:   l,
		monitor:  performance.NewPerformanceMonitorWithBenchmark(logger, cfg.GetDevelopmentLogging()),
		runID:    runID,
	}, nil
}

// RunID returns the identifier stamped on this run's logs and error reports
func (app *Application) RunID() string {
	return app.runID
}

// Metrics returns the metrics accumulated so far
func (app *Application) Metrics() performance.CleaningMetrics {
	return app.monitor.GetMetrics()
}

// Run cleans the configured input. A single file returns its own failure;
// a directory cleans every .txt file and only fails when the directory itself cannot be read.
func (app *Application) Run(ctx context.Context) error {
	input := app.config.GetInputPath()
	if input == "" {
		app.logger.Error("no input path specified")
		return errors.New("no input path specified")
	}

	info, err := app.fs.Stat(input)
	if err != nil {
		app.logger.Error("invalid input path", zap.String("input_path", input), zap.Error(err))
		return fmt.Errorf("invalid input path %s: %w", input, err)
	}

	app.logger.Info("starting cleaning run",
		zap.String("input_path", input),
		zap.String("output_path", app.config.GetOutputPath()),
		zap.Int("workers", app.config.GetWorkersCount()),
		zap.String("continuation_policy", app.cleaner.Policy().String()))

	if !info.IsDir() {
		source := storage.NewFSStoreWithLogger(app.fs, filepath.Dir(input), app.logger)
		result := app.ProcessItem(ctx, source, filepath.Base(input))
		app.monitor.LogCurrentMetrics()
		return result.Err
	}

	source := storage.NewFSStoreWithLogger(app.fs, input, app.logger)
	names, err := source.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to list transcripts in %s: %w", input, err)
	}

	if len(names) == 0 {
		app.logger.Warn("no .txt files found in input directory", zap.String("input_path", input))
		return nil
	}

	results := app.RunBatch(ctx, source, names)

	app.monitor.LogCurrentMetrics()
	app.logger.Info("cleaning run completed",
		zap.Int("items", len(names)),
		zap.Int("dispatched", len(results)))

	if len(results) < len(names) {
		app.logger.Warn("run cancelled before all transcripts were dispatched",
			zap.Int("skipped", len(names)-len(results)))
	}

	return nil
}

// RunBatch cleans names from source on a fixed pool of workers.
// Results are returned in input order; items never dispatched because ctx ended are omitted.
func (app *Application) RunBatch(ctx context.Context, source storage.Fetcher, names []string) []ItemResult {
	workers := app.config.GetWorkersCount()
	if workers > len(names) {
		workers = len(names)
	}

	tasks := make(chan int)
	results := make([]ItemResult, len(names))
	var wg sync.WaitGroup

	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range tasks {
				results[i] = app.ProcessItem(ctx, source, names[i])
			}
		}()
	}

	dispatched := 0
dispatch:
	for i := range names {
		if ctx.Err() != nil {
			break
		}
		select {
		case <-ctx.Done():
			break dispatch
		case tasks <- i:
			dispatched++
		}
	}
	close(tasks)
	wg.Wait()

	return results[:dispatched]
}

// ProcessItem fetches, cleans and stores one transcript.
// Failures are reported and returned in the result; they never panic.
func (app *Application) ProcessItem(ctx context.Context, source storage.Fetcher, name string) (result ItemResult) {
	timer := app.monitor.StartItem(name)
	result = ItemResult{Item: name}
	speech := decimal.Zero

	defer func() {
		if r := recover(); r != nil {
			result.Err = &ItemError{Item: name, Kind: KindUnexpected, Err: fmt.Errorf("panic: %v", r)}
		}
		if result.Err != nil {
			result.Outcome = performance.OutcomeFailed
			app.reportFailure(ctx, result.Err)
		}
		app.monitor.EndItem(timer, result.Outcome, result.Segments, speech)
	}()

	raw, err := source.Fetch(ctx, name)
	if err != nil {
		result.Err = newItemError(name, err)
		return result
	}

	outputKey := storage.OutputKey(app.config.GetOutputPrefix(), name)
	hash := ledger.Hash(raw)

	if app.alreadyCleaned(ctx, hash, outputKey) {
		app.logger.Info("transcript already cleaned, skipping",
			zap.String("item", name),
			zap.String("output", outputKey))
		result.Output = outputKey
		result.Outcome = performance.OutcomeDuplicate
		return result
	}

	transcript, err := app.cleaner.Clean(string(raw))
	if err != nil {
		result.Err = newItemError(name, err)
		return result
	}

	if transcript.Empty() {
		app.logger.Warn("no timestamped segments found", zap.String("item", name))
		result.Outcome = performance.OutcomeNoSegments
		return result
	}

	var jsonLines []byte
	if app.config.GetJSONLinesOutput() {
		if jsonLines, err = encodeJSONLines(transcript, app.logger); err != nil {
			result.Err = newItemError(name, err)
			return result
		}
	}

	if err := app.output.Store(ctx, outputKey, []byte(transcript.String())); err != nil {
		result.Err = &ItemError{Item: name, Kind: KindOutputWriteFailure, Err: err}
		return result
	}

	if jsonLines != nil {
		if err := app.output.Store(ctx, storage.SidecarKey(outputKey, ".jsonl"), jsonLines); err != nil {
			result.Err = &ItemError{Item: name, Kind: KindOutputWriteFailure, Err: err}
			return result
		}
	}

	result.Output = outputKey
	result.Outcome = performance.OutcomeCleaned
	result.Segments = len(transcript.Segments)
	speech = transcript.SpeechDuration()

	app.logger.Info("stored cleaned transcript",
		zap.String("item", name),
		zap.String("output", filepath.Join(app.output.Root(), outputKey)),
		zap.Int("segments", result.Segments))

	app.recordCleaned(ctx, ledger.Entry{
		Hash:     hash,
		Source:   name,
		Output:   outputKey,
		Segments: result.Segments,
	})

	return result
}

// encodeJSONLines renders the per-segment JSON Lines copy of a cleaned transcript
func encodeJSONLines(transcript cleaner.Transcript, logger *zap.Logger) ([]byte, error) {
	var buf bytes.Buffer
	if err := cleaner.NewJSONLinesEncoder(&buf, logger).Encode(transcript); err != nil {
		return nil, fmt.Errorf("failed to encode JSON Lines: %w", err)
	}
	return buf.Bytes(), nil
}

// reportFailure sends err to the reporter with the item name and the raw cause
func (app *Application) reportFailure(ctx context.Context, err error) {
	var itemErr *ItemError
	if errors.As(err, &itemErr) {
		app.logger.Warn("failed to clean transcript",
			zap.String("item", itemErr.Item),
			zap.String("kind", itemErr.Kind.String()),
			zap.Error(itemErr.Err))
		app.reporter.Report(ctx, fmt.Sprintf("Error processing %s (%s): %v", itemErr.Item, itemErr.Kind, itemErr.Err))
		return
	}
	app.reporter.Report(ctx, err.Error())
}

func (app *Application) alreadyCleaned(ctx context.Context, hash, outputKey string) bool {
	if app.ledger == nil {
		return false
	}

	entry, found, err := app.ledger.Lookup(ctx, hash)
	if err != nil {
		app.logger.Warn("ledger lookup failed, cleaning anyway", zap.Error(err))
		return false
	}

	if !found || entry.Output != outputKey {
		return false
	}

	exists, err := app.output.Exists(ctx, outputKey)
	if err != nil {
		app.logger.Warn("failed to check cleaned output, cleaning anyway",
			zap.String("output", outputKey),
			zap.Error(err))
		return false
	}
	if !exists {
		app.logger.Info("cleaned output missing, cleaning again",
			zap.String("output", outputKey))
	}
	return exists
}

func (app *Application) recordCleaned(ctx context.Context, entry ledger.Entry) {
	if app.ledger == nil {
		return
	}

	if err := app.ledger.Record(ctx, entry); err != nil {
		app.logger.Warn("failed to record cleaned transcript in ledger",
			zap.String("item", entry.Source),
			zap.Error(err))
	}
}

// Close releases the ledger
func (app *Application) Close() error {
	app.logger.Info("closing application",
		zap.String("summary", app.monitor.GetPerformanceSummary()))

	if app.ledger != nil {
		if err := app.ledger.Close(); err != nil {
			return fmt.Errorf("failed to close ledger: %w", err)
		}
	}
	return nil
}
