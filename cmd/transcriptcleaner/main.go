package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"transcriptcleaner/internal/app"
	"transcriptcleaner/internal/config"
	"transcriptcleaner/internal/logger"
)

const version = "1.2"

// options holds the parsed command line flags
type options struct {
	help       bool
	version    bool
	configFile string
	envFile    string
	input      string
	output     string
	workers    int
}

func parseFlags(args []string) (*options, error) {
	fs := flag.NewFlagSet("transcriptcleaner", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	opts := &options{}
	fs.BoolVar(&opts.help, "help", false, "Show help message")
	fs.BoolVar(&opts.version, "version", false, "Show version information")
	fs.StringVar(&opts.configFile, "config", "", "Path to a YAML/JSON/TOML configuration file")
	fs.StringVar(&opts.envFile, "env-file", "", "Path to a KEY=value environment file")
	fs.StringVar(&opts.input, "input", "", "Transcript file or directory (overrides INPUT_PATH)")
	fs.StringVar(&opts.output, "output", "", "Output directory (overrides OUTPUT_BUCKET)")
	fs.IntVar(&opts.workers, "workers", 0, "Number of concurrent workers (overrides WORKERS_COUNT)")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	return opts, nil
}

// main is the application entry point
func main() {
	opts, err := parseFlags(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid arguments: %v\n\n", err)
		printHelp(os.Stderr)
		os.Exit(2)
	}

	if opts.help {
		printHelp(os.Stdout)
		os.Exit(0)
	}

	if opts.version {
		printVersion(os.Stdout)
		os.Exit(0)
	}

	if err := runApplication(opts); err != nil {
		fmt.Fprintf(os.Stderr, "Application error: %v\n", err)
		os.Exit(1)
	}
}

// loadConfiguration picks the configuration source and applies flag overrides
func loadConfiguration(opts *options) (*config.Configuration, error) {
	var (
		cfg *config.Configuration
		err error
	)

	switch {
	case opts.configFile != "":
		cfg, err = config.NewConfigurationFromFile(opts.configFile)
	case opts.envFile != "":
		cfg, err = config.NewConfigurationFromEnvFile(opts.envFile)
	default:
		cfg, err = config.NewConfigurationFromEnv()
	}
	if err != nil {
		return nil, err
	}

	if opts.input != "" {
		cfg.Set("input.path", opts.input)
	}
	if opts.output != "" {
		cfg.Set("output.path", opts.output)
	}
	if opts.workers > 0 {
		cfg.Set("workers.count", opts.workers)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// loggerFactory builds the logger selected by the configuration
type loggerFactory func(cfg logger.DevelopmentSetting) (*zap.Logger, error)

// buildLogger returns the configured logger, falling back to the default production logger
func buildLogger(cfg logger.DevelopmentSetting, build loggerFactory) *zap.Logger {
	log, err := build(cfg)
	if err != nil {
		log = logger.NewLogger()
		log.Warn("Failed to create configured logger, using default",
			zap.Error(err),
			zap.String("component", "main"))
	}
	return log
}

// runApplication contains the core application logic that can be tested
func runApplication(opts *options) error {
	cfg, err := loadConfiguration(opts)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := buildLogger(cfg, logger.NewLoggerFromConfig)
	defer log.Sync()

	log.Info("Transcript cleaner starting up",
		zap.String("component", "main"),
		zap.String("version", version))

	application, err := app.NewApplication(cfg, log)
	if err != nil {
		log.Error("Failed to create application",
			zap.Error(err),
			zap.String("component", "main"))
		return fmt.Errorf("failed to create application: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	runErr := application.Run(ctx)
	if runErr != nil {
		log.Error("Cleaning run failed",
			zap.Error(runErr),
			zap.String("component", "main"))
	}

	if err := application.Close(); err != nil {
		log.Error("Error during application shutdown",
			zap.Error(err),
			zap.String("component", "main"))
		if runErr == nil {
			return fmt.Errorf("application shutdown error: %w", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("cleaning run failed: %w", runErr)
	}

	log.Info("Transcript cleaner finished",
		zap.String("component", "main"))
	return nil
}

// printHelp displays command line usage information
func printHelp(w io.Writer) {
	fmt.Fprintln(w, "Transcript Cleaner - Timestamped Transcript Normalization and Resegmentation")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "USAGE:")
	fmt.Fprintln(w, "    transcriptcleaner [OPTIONS]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "OPTIONS:")
	fmt.Fprintln(w, "    -help              Show this help message")
	fmt.Fprintln(w, "    -version           Show version information")
	fmt.Fprintln(w, "    -config <file>     Load configuration from a YAML/JSON/TOML file")
	fmt.Fprintln(w, "    -env-file <file>   Load configuration from a KEY=value file")
	fmt.Fprintln(w, "    -input <path>      Transcript file or directory of .txt transcripts")
	fmt.Fprintln(w, "    -output <dir>      Directory cleaned transcripts are written under")
	fmt.Fprintln(w, "    -workers <n>       Number of transcripts cleaned concurrently")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "ENVIRONMENT:")
	fmt.Fprintln(w, "    INPUT_PATH, OUTPUT_BUCKET, OUTPUT_TRANSCRIPTION_BLOB, ERROR_LOGS_BUCKET,")
	fmt.Fprintln(w, "    ERROR_LOG_NAME, WORKERS_COUNT, CONTINUATION_POLICY, LEDGER_PATH, LOG_DEVELOPMENT")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "EXAMPLES:")
	fmt.Fprintln(w, "    transcriptcleaner -input ./transcripts -output ./cleaned")
	fmt.Fprintln(w, "    transcriptcleaner -env-file cleaner.env -workers 8")
}

// printVersion displays version and build information
func printVersion(w io.Writer) {
	fmt.Fprintln(w, "Transcript Cleaner")
	fmt.Fprintf(w, "Version: %s\n", version)
	fmt.Fprintln(w, "Sentence Tokenizer: Punkt (English)")
}
