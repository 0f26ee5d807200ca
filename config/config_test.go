package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		Logging: LoggingConfig{
			Mode:  "production",
			Level: "info",
		},
		Server: ServerConfig{
			Transport: "http",
			HTTPPort:  8080,
		},
		Sandbox: SandboxConfig{
			Backend:            "docker",
			TimeoutSec:         30,
			MemoryMB:           512,
			CPUs:               1,
			EnableLocalBackend: false,
		},
		Validation: ValidationConfig{
			TimeoutSec:       60,
			MemoryMB:         512,
			CPUs:             1,
			MaxDiagnosticLen: 2000,
		},
		LLM: LLMConfig{
			Model:       "gpt-4o-mini",
			Temperature: 0.2,
			MaxTokens:   4096,
		},
		Agent: AgentConfig{
			MaxIterations: 5,
			ReviewEnabled: true,
		},
		Batch: BatchConfig{
			Workers: 3,
		},
	}
}

func TestConfigValidation(t *testing.T) {
	t.Run("ValidConfig", func(t *testing.T) {
		err := validConfig().validate()
		require.NoError(t, err)
	})

	t.Run("InvalidServerTransport", func(t *testing.T) {
		cfg := validConfig()
		cfg.Server.Transport = "invalid"

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid server.transport")
	})

	t.Run("InvalidSandboxTimeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.TimeoutSec = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.timeout_sec must be positive")
	})

	t.Run("InvalidSandboxMemory", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.MemoryMB = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.memory_mb must be positive")
	})

	t.Run("InvalidSandboxCPUs", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.CPUs = -1

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "sandbox.cpus must be positive")
	})

	t.Run("InvalidLoggingMode", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Mode = "invalid_mode"

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging.mode")
	})

	t.Run("InvalidLogLevel", func(t *testing.T) {
		cfg := validConfig()
		cfg.Logging.Level = "invalid_level"

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid logging.level")
	})

	t.Run("InvalidValidationTimeout", func(t *testing.T) {
		cfg := validConfig()
		cfg.Validation.TimeoutSec = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation.timeout_sec must be positive")
	})

	t.Run("InvalidMaxDiagnosticLen", func(t *testing.T) {
		cfg := validConfig()
		cfg.Validation.MaxDiagnosticLen = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "validation.max_diagnostic_len must be positive")
	})

	t.Run("InvalidAgentIterations", func(t *testing.T) {
		cfg := validConfig()
		cfg.Agent.MaxIterations = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "agent.max_iterations must be positive")
	})

	t.Run("InvalidBatchWorkers", func(t *testing.T) {
		cfg := validConfig()
		cfg.Batch.Workers = 0

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "batch.workers must be positive")
	})

	t.Run("ValidBackendWhenLocalEnabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.Backend = "local"
		cfg.Sandbox.EnableLocalBackend = true

		err := cfg.validate()
		require.NoError(t, err)
	})

	t.Run("InvalidBackendWhenLocalNotEnabled", func(t *testing.T) {
		cfg := validConfig()
		cfg.Sandbox.Backend = "local"
		cfg.Sandbox.EnableLocalBackend = false

		err := cfg.validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported sandbox.backend")
	})
}

func TestGetTimeout(t *testing.T) {
	cfg := validConfig()
	assert.Equal(t, "30s", cfg.GetTimeout().String())
}

func TestEnvironmentOverrides(t *testing.T) {
	t.Run("NestedKeys", func(t *testing.T) {
		t.Setenv("CODEFORGE_LLM_API_KEY", "sk-from-env")
		t.Setenv("CODEFORGE_BATCH_WORKERS", "7")
		t.Setenv("CODEFORGE_SANDBOX_BACKEND", "podman")
		t.Setenv("CODEFORGE_LOGGING_LEVEL", "debug")

		cfg, err := New()
		require.NoError(t, err)

		assert.Equal(t, "sk-from-env", cfg.LLM.APIKey)
		assert.Equal(t, 7, cfg.Batch.Workers)
		assert.Equal(t, "podman", cfg.Sandbox.Backend)
		assert.Equal(t, "debug", cfg.Logging.Level)
	})

	t.Run("DefaultsWithoutEnv", func(t *testing.T) {
		cfg, err := New()
		require.NoError(t, err)

		assert.Empty(t, cfg.LLM.APIKey)
		assert.Equal(t, 3, cfg.Batch.Workers)
		assert.Equal(t, "docker", cfg.Sandbox.Backend)
		assert.Equal(t, 5, cfg.Agent.MaxIterations)
	})

	t.Run("InvalidEnvValueFailsValidation", func(t *testing.T) {
		t.Setenv("CODEFORGE_SANDBOX_BACKEND", "firecracker")

		_, err := New()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unsupported sandbox.backend")
	})
}
