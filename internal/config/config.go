package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"transcriptcleaner/internal/cleaner"
)

// envBindings maps configuration keys to the environment variable names the cleaning job has always used
var envBindings = map[string]string{
	"input.path":                   "INPUT_PATH",
	"output.path":                  "OUTPUT_BUCKET",
	"output.prefix":                "OUTPUT_TRANSCRIPTION_BLOB",
	"output.jsonl":                 "OUTPUT_JSONL",
	"errors.path":                  "ERROR_LOGS_BUCKET",
	"errors.log_name":              "ERROR_LOG_NAME",
	"workers.count":                "WORKERS_COUNT",
	"cleaning.continuation_policy": "CONTINUATION_POLICY",
	"ledger.path":                  "LEDGER_PATH",
	"log.development":              "LOG_DEVELOPMENT",
}

// Configuration provides type-safe access to application settings
type Configuration struct {
	viper *viper.Viper
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("input.path", "")
	v.SetDefault("output.path", "./cleaned")
	v.SetDefault("output.prefix", "Diarization-clean/")
	v.SetDefault("output.jsonl", false)
	v.SetDefault("errors.path", "")
	v.SetDefault("errors.log_name", "error_log.txt")
	v.SetDefault("workers.count", 5)
	v.SetDefault("cleaning.continuation_policy", "reset")
	v.SetDefault("ledger.path", "")
	v.SetDefault("log.development", false)
}

// NewConfiguration creates a new Configuration instance with default settings
func NewConfiguration() *Configuration {
	v := viper.New()
	setDefaults(v)
	return &Configuration{viper: v}
}

// NewConfigurationFromFile creates a Configuration instance from a config file
func NewConfigurationFromFile(configFile string) (*Configuration, error) {
	v := viper.New()
	v.SetConfigFile(configFile)
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configFile, err)
	}

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnv creates a Configuration instance that reads from environment variables
func NewConfigurationFromEnv() (*Configuration, error) {
	v := viper.New()
	setDefaults(v)

	// Legacy names win over the CLEANER_ prefixed form, e.g. WORKERS_COUNT over CLEANER_WORKERS_COUNT
	for key, env := range envBindings {
		if err := v.BindEnv(key, env, "CLEANER_"+strings.ToUpper(strings.ReplaceAll(key, ".", "_"))); err != nil {
			return nil, fmt.Errorf("failed to bind environment variable %s: %w", env, err)
		}
	}

	return &Configuration{viper: v}, nil
}

// NewConfigurationFromEnvFile creates a Configuration instance from a KEY=value file
// using the same variable names as NewConfigurationFromEnv
func NewConfigurationFromEnvFile(envFile string) (*Configuration, error) {
	raw := viper.New()
	raw.SetConfigFile(envFile)
	raw.SetConfigType("env")

	if err := raw.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read env file %s: %w", envFile, err)
	}

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		// viper lowercases keys read from env files
		if name := strings.ToLower(env); raw.IsSet(name) {
			v.Set(key, raw.Get(name))
		}
	}

	return &Configuration{viper: v}, nil
}

// Set overrides a configuration value, used for command line flags
func (c *Configuration) Set(key string, value interface{}) {
	c.viper.Set(key, value)
}

// GetInputPath returns the transcript file or directory to clean
func (c *Configuration) GetInputPath() string {
	return c.viper.GetString("input.path")
}

// GetOutputPath returns the directory cleaned transcripts are written under
func (c *Configuration) GetOutputPath() string {
	return c.viper.GetString("output.path")
}

// GetOutputPrefix returns the object prefix prepended to cleaned transcript names
func (c *Configuration) GetOutputPrefix() string {
	return c.viper.GetString("output.prefix")
}

// GetJSONLinesOutput returns whether a JSON Lines copy is written next to each cleaned transcript
func (c *Configuration) GetJSONLinesOutput() bool {
	return c.viper.GetBool("output.jsonl")
}

// GetErrorLogPath returns the directory the error log object is written to, empty when disabled
func (c *Configuration) GetErrorLogPath() string {
	return c.viper.GetString("errors.path")
}

// GetErrorLogName returns the name of the error log object
func (c *Configuration) GetErrorLogName() string {
	return c.viper.GetString("errors.log_name")
}

// GetWorkersCount returns the number of transcripts cleaned in parallel
func (c *Configuration) GetWorkersCount() int {
	return c.viper.GetInt("workers.count")
}

// GetContinuationPolicy returns the parsed continuation policy
func (c *Configuration) GetContinuationPolicy() (cleaner.ContinuationPolicy, error) {
	return cleaner.ParseContinuationPolicy(c.viper.GetString("cleaning.continuation_policy"))
}

// GetLedgerPath returns the SQLite ledger location, empty when disabled
func (c *Configuration) GetLedgerPath() string {
	return c.viper.GetString("ledger.path")
}

// GetDevelopmentLogging returns whether human-readable development logging is enabled
func (c *Configuration) GetDevelopmentLogging() bool {
	return c.viper.GetBool("log.development")
}

// Validate checks that the configuration can drive a cleaning run
func (c *Configuration) Validate() error {
	if c.GetWorkersCount() < 1 {
		return fmt.Errorf("workers.count must be at least 1, got %d", c.GetWorkersCount())
	}

	if _, err := c.GetContinuationPolicy(); err != nil {
		return fmt.Errorf("invalid cleaning.continuation_policy: %w", err)
	}

	if c.GetOutputPath() == "" {
		return fmt.Errorf("output.path cannot be empty")
	}

	return nil
}
