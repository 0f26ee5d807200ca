package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	Logging       LoggingConfig    `mapstructure:"logging"`
	Server        ServerConfig     `mapstructure:"server"`
	Sandbox       SandboxConfig    `mapstructure:"sandbox"`
	Validation    ValidationConfig `mapstructure:"validation"`
	LLM           LLMConfig        `mapstructure:"llm"`
	Agent         AgentConfig      `mapstructure:"agent"`
	Batch         BatchConfig      `mapstructure:"batch"`
	LanguagesFile string           `mapstructure:"languages_file"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Mode  string `mapstructure:"mode"`
	Level string `mapstructure:"level"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Transport string `mapstructure:"transport"`
	HTTPPort  int    `mapstructure:"http_port"`
}

// SandboxConfig holds execution sandbox configuration
type SandboxConfig struct {
	Backend            string `mapstructure:"backend"`
	TimeoutSec         int    `mapstructure:"timeout_sec"`
	MemoryMB           int    `mapstructure:"memory_mb"`
	CPUs               int    `mapstructure:"cpus"`
	EnableLocalBackend bool   `mapstructure:"enable_local_backend"`
}

// ValidationConfig holds tool battery configuration. Validation containers
// get their own resource envelope since linters can outlive the program
// they inspect.
type ValidationConfig struct {
	TimeoutSec       int `mapstructure:"timeout_sec"`
	MemoryMB         int `mapstructure:"memory_mb"`
	CPUs             int `mapstructure:"cpus"`
	MaxDiagnosticLen int `mapstructure:"max_diagnostic_len"`
}

// LLMConfig holds the synthesis provider configuration
type LLMConfig struct {
	APIKey      string  `mapstructure:"api_key"`
	BaseURL     string  `mapstructure:"base_url"`
	Model       string  `mapstructure:"model"`
	Temperature float32 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

// AgentConfig holds retry session configuration
type AgentConfig struct {
	MaxIterations int  `mapstructure:"max_iterations"`
	ReviewEnabled bool `mapstructure:"review_enabled"`
}

// BatchConfig holds assignment batch configuration
type BatchConfig struct {
	Workers int `mapstructure:"workers"`
}

// New loads and validates the application configuration
func New() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.SetEnvPrefix("CODEFORGE")
	// Nested keys use dots internally but underscores in the environment,
	// e.g. llm.api_key is CODEFORGE_LLM_API_KEY.
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Set default values
	viper.SetDefault("logging.mode", "production")
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("server.transport", "stdio")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("sandbox.backend", "docker")
	viper.SetDefault("sandbox.timeout_sec", 30)
	viper.SetDefault("sandbox.memory_mb", 512)
	viper.SetDefault("sandbox.cpus", 1)
	viper.SetDefault("sandbox.enable_local_backend", false)
	viper.SetDefault("validation.timeout_sec", 60)
	viper.SetDefault("validation.memory_mb", 512)
	viper.SetDefault("validation.cpus", 1)
	viper.SetDefault("validation.max_diagnostic_len", 2000)
	// Every key needs a default so Unmarshal sees it; the api_key default
	// is empty because the key arrives via CODEFORGE_LLM_API_KEY.
	viper.SetDefault("llm.api_key", "")
	viper.SetDefault("llm.base_url", "")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.2)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("agent.max_iterations", 5)
	viper.SetDefault("agent.review_enabled", true)
	viper.SetDefault("batch.workers", 3)
	viper.SetDefault("languages_file", "")

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// If config file not found, continue with defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	// Validate configuration
	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation error: %w", err)
	}

	return &config, nil
}

// validate ensures the configuration is valid
func (c *Config) validate() error {
	if c.Logging.Mode != "production" && c.Logging.Mode != "development" {
		return fmt.Errorf("invalid logging.mode: %s, must be 'production' or 'development'", c.Logging.Mode)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging.level: %s", c.Logging.Level)
	}

	if c.Server.Transport != "stdio" && c.Server.Transport != "http" {
		return fmt.Errorf("invalid server.transport: %s, must be 'stdio' or 'http'", c.Server.Transport)
	}

	if c.Sandbox.TimeoutSec <= 0 {
		return fmt.Errorf("sandbox.timeout_sec must be positive, got: %d", c.Sandbox.TimeoutSec)
	}

	if c.Sandbox.MemoryMB <= 0 {
		return fmt.Errorf("sandbox.memory_mb must be positive, got: %d", c.Sandbox.MemoryMB)
	}

	if c.Sandbox.CPUs <= 0 {
		return fmt.Errorf("sandbox.cpus must be positive, got: %d", c.Sandbox.CPUs)
	}

	if c.Validation.TimeoutSec <= 0 {
		return fmt.Errorf("validation.timeout_sec must be positive, got: %d", c.Validation.TimeoutSec)
	}

	if c.Validation.MaxDiagnosticLen <= 0 {
		return fmt.Errorf("validation.max_diagnostic_len must be positive, got: %d", c.Validation.MaxDiagnosticLen)
	}

	if c.Agent.MaxIterations <= 0 {
		return fmt.Errorf("agent.max_iterations must be positive, got: %d", c.Agent.MaxIterations)
	}

	if c.Batch.Workers <= 0 {
		return fmt.Errorf("batch.workers must be positive, got: %d", c.Batch.Workers)
	}

	supportedBackends := map[string]bool{
		"docker": true,
		"podman": true,
		"local":  c.Sandbox.EnableLocalBackend, // local only enabled if specifically allowed
	}

	if !supportedBackends[c.Sandbox.Backend] {
		return fmt.Errorf("unsupported sandbox.backend: %s", c.Sandbox.Backend)
	}

	return nil
}

// GetTimeout returns the execution timeout as a duration
func (c *Config) GetTimeout() time.Duration {
	return time.Duration(c.Sandbox.TimeoutSec) * time.Second
}
