// Package config loads runtime settings from an optional YAML file overlaid by
// environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// ConfigPathEnv names the environment variable holding the YAML file path.
const ConfigPathEnv = "FINANCEAI_CONFIG"

// Config holds application configuration.
type Config struct {
	LogLevel string         `yaml:"log_level"`
	LLM      LLMConfig      `yaml:"llm"`
	Pipeline PipelineConfig `yaml:"pipeline"`
	Recorder RecorderConfig `yaml:"recorder"`
	Jobs     JobsConfig     `yaml:"jobs"`
	Server   ServerConfig   `yaml:"server"`
}

// LLMConfig selects the reasoning backend. Provider "none" disables it, which sends
// every document straight to the deterministic parsers.
type LLMConfig struct {
	Provider   string        `yaml:"provider"`
	Model      string        `yaml:"model"`
	APIVersion string        `yaml:"api_version"`
	Timeout    time.Duration `yaml:"timeout"`
}

// PipelineConfig tunes extraction and validation.
type PipelineConfig struct {
	GateThreshold      float64 `yaml:"gate_threshold"`
	ValidatorTextLimit int     `yaml:"validator_text_limit"`
}

// RecorderConfig points the analysis run log at BigQuery. An empty project disables it.
type RecorderConfig struct {
	ProjectID string `yaml:"project_id"`
	Dataset   string `yaml:"dataset"`
}

// JobsConfig sizes the background queue and the duplicate-submission guard.
type JobsConfig struct {
	Workers   int           `yaml:"workers"`
	QueueSize int           `yaml:"queue_size"`
	GuardTTL  time.Duration `yaml:"guard_ttl"`
	// Retention is how long finished jobs stay queryable over HTTP.
	Retention time.Duration `yaml:"retention"`
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port          string `yaml:"port"`
	AllowedOrigin string `yaml:"allowed_origin"`
}

// Default returns a Config with the production defaults.
func Default() *Config {
	return &Config{
		LogLevel: "info",
		LLM: LLMConfig{
			Provider:   "gemini",
			Model:      "gemini-2.5-flash",
			APIVersion: "v1",
			Timeout:    60 * time.Second,
		},
		Pipeline: PipelineConfig{
			GateThreshold:      0.7,
			ValidatorTextLimit: 8000,
		},
		Recorder: RecorderConfig{
			Dataset: "financeai",
		},
		Jobs: JobsConfig{
			Workers:   4,
			QueueSize: 100,
			GuardTTL:  10 * time.Minute,
			Retention: 24 * time.Hour,
		},
		Server: ServerConfig{
			Port:          "8080",
			AllowedOrigin: "*",
		},
	}
}

// Load builds the effective configuration: defaults, then the YAML file named by
// FINANCEAI_CONFIG (if any), then environment overrides.
func Load() (*Config, error) {
	cfg := Default()
	if path := getEnv(ConfigPathEnv, ""); path != "" {
		fileCfg, err := LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = fileCfg
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads a YAML file on top of the defaults, so a file may set only the keys
// it cares about.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("LoadFile: reading config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("LoadFile: parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes cfg to path as YAML.
func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("Save: marshaling config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("Save: writing config: %w", err)
	}
	return nil
}

// Validate rejects settings the pipeline cannot run with.
func (c *Config) Validate() error {
	switch c.LLM.Provider {
	case "gemini", "none":
	default:
		return fmt.Errorf("Validate: unknown llm provider %q", c.LLM.Provider)
	}
	if c.LLM.Timeout <= 0 {
		return fmt.Errorf("Validate: llm timeout must be positive")
	}
	if c.Pipeline.GateThreshold <= 0 || c.Pipeline.GateThreshold > 1 {
		return fmt.Errorf("Validate: gate threshold %v outside (0,1]", c.Pipeline.GateThreshold)
	}
	if c.Pipeline.ValidatorTextLimit <= 0 {
		return fmt.Errorf("Validate: validator text limit must be positive")
	}
	if c.Jobs.Workers < 1 {
		return fmt.Errorf("Validate: workers must be at least 1")
	}
	if c.Jobs.QueueSize < 1 {
		return fmt.Errorf("Validate: queue size must be at least 1")
	}
	if c.Jobs.GuardTTL <= 0 {
		return fmt.Errorf("Validate: guard ttl must be positive")
	}
	if c.Jobs.Retention < 0 {
		return fmt.Errorf("Validate: job retention must not be negative")
	}
	return nil
}

// LLMEnabled reports whether a reasoning backend should be constructed.
func (c *Config) LLMEnabled() bool {
	return c.LLM.Provider != "none"
}

// RecorderEnabled reports whether analysis runs are logged to BigQuery.
func (c *Config) RecorderEnabled() bool {
	return c.Recorder.ProjectID != ""
}

func (c *Config) applyEnv() error {
	c.LogLevel = getEnv("LOG_LEVEL", c.LogLevel)
	c.LLM.Provider = getEnv("LLM_PROVIDER", c.LLM.Provider)
	c.LLM.Model = getEnv("LLM_MODEL", c.LLM.Model)
	c.LLM.APIVersion = getEnv("LLM_API_VERSION", c.LLM.APIVersion)
	c.Recorder.ProjectID = getEnv("GCP_PROJECT", c.Recorder.ProjectID)
	c.Recorder.Dataset = getEnv("BQ_DATASET", c.Recorder.Dataset)
	c.Server.Port = getEnv("PORT", c.Server.Port)
	c.Server.AllowedOrigin = getEnv("CORS_ORIGIN", c.Server.AllowedOrigin)

	var err error
	if c.LLM.Timeout, err = getEnvDuration("LLM_TIMEOUT", c.LLM.Timeout); err != nil {
		return err
	}
	if c.Pipeline.GateThreshold, err = getEnvFloat("QUALITY_GATE", c.Pipeline.GateThreshold); err != nil {
		return err
	}
	if c.Pipeline.ValidatorTextLimit, err = getEnvInt("VALIDATOR_TEXT_LIMIT", c.Pipeline.ValidatorTextLimit); err != nil {
		return err
	}
	if c.Jobs.Workers, err = getEnvInt("WORKERS", c.Jobs.Workers); err != nil {
		return err
	}
	if c.Jobs.QueueSize, err = getEnvInt("QUEUE_SIZE", c.Jobs.QueueSize); err != nil {
		return err
	}
	if c.Jobs.GuardTTL, err = getEnvDuration("GUARD_TTL", c.Jobs.GuardTTL); err != nil {
		return err
	}
	if c.Jobs.Retention, err = getEnvDuration("JOB_RETENTION", c.Jobs.Retention); err != nil {
		return err
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) (int, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid integer %q: %w", key, value, err)
	}
	return n, nil
}

func getEnvFloat(key string, defaultVal float64) (float64, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	f, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid number %q: %w", key, value, err)
	}
	return f, nil
}

func getEnvDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	value, exists := os.LookupEnv(key)
	if !exists {
		return defaultVal, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s: invalid duration %q: %w", key, value, err)
	}
	return d, nil
}
