// Package main is the entry point for the Codeforge MCP server.
//
// The Codeforge server implements a Model Context Protocol (MCP) server
// that turns natural-language problem statements into validated programs:
// an LLM synthesizes candidate code, isolated containers execute it, and
// per-language tool batteries judge it, with failing diagnostics fed back
// into bounded retry. The server supports both stdio and HTTP transports.
//
// The application uses Uber's fx framework for dependency injection and
// lifecycle management, with zap for structured logging and viper for
// configuration.
package main

import (
	"fmt"
	"os"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/agent"
	"github.com/forgeworks/codeforge/assignment"
	"github.com/forgeworks/codeforge/config"
	"github.com/forgeworks/codeforge/language"
	"github.com/forgeworks/codeforge/llm"
	"github.com/forgeworks/codeforge/logger"
	"github.com/forgeworks/codeforge/mcpserver"
	"github.com/forgeworks/codeforge/sandbox"
	"github.com/forgeworks/codeforge/validation"
)

func newRegistry(cfg *config.Config) (*language.Registry, error) {
	registry := language.NewRegistry()
	if cfg.LanguagesFile != "" {
		data, err := os.ReadFile(cfg.LanguagesFile)
		if err != nil {
			return nil, fmt.Errorf("read languages file: %w", err)
		}
		if err := registry.ApplyOverridesYAML(data); err != nil {
			return nil, err
		}
	}
	return registry, nil
}

func newSandboxExecutor(log *zap.Logger, cfg *config.Config, registry *language.Registry) (sandbox.Executor, error) {
	return sandbox.NewExecutor(log, &sandbox.Config{
		TimeoutSec: cfg.Sandbox.TimeoutSec,
		MemoryMB:   cfg.Sandbox.MemoryMB,
		CPUs:       cfg.Sandbox.CPUs,
	}, registry, cfg.Sandbox.Backend, cfg.Sandbox.EnableLocalBackend)
}

func newValidator(log *zap.Logger, cfg *config.Config, registry *language.Registry) *validation.Aggregator {
	return validation.New(log, &validation.Config{
		Backend:          cfg.Sandbox.Backend,
		TimeoutSec:       cfg.Validation.TimeoutSec,
		MemoryMB:         cfg.Validation.MemoryMB,
		CPUs:             cfg.Validation.CPUs,
		MaxDiagnosticLen: cfg.Validation.MaxDiagnosticLen,
	}, registry)
}

func newLLMClient(log *zap.Logger, cfg *config.Config) (*llm.OpenAIClient, error) {
	return llm.NewOpenAIClient(log, &llm.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
	})
}

func newOrchestrator(log *zap.Logger, cfg *config.Config, client *llm.OpenAIClient, executor sandbox.Executor, validator *validation.Aggregator) *agent.Orchestrator {
	return agent.New(log, &agent.Config{
		MaxIterations:  cfg.Agent.MaxIterations,
		ReviewEnabled:  cfg.Agent.ReviewEnabled,
		ExecTimeoutSec: cfg.Sandbox.TimeoutSec,
	}, client, client, executor, validator)
}

func newDriver(log *zap.Logger, orchestrator *agent.Orchestrator, registry *language.Registry, cfg *config.Config) *assignment.Driver {
	return assignment.NewDriver(log, orchestrator, registry, cfg.Batch.Workers)
}

func newMCPServer(cfg *config.Config, log *zap.Logger, executor sandbox.Executor, orchestrator *agent.Orchestrator, driver *assignment.Driver, registry *language.Registry) (*mcpserver.MCPServer, error) {
	return mcpserver.New(cfg, log, executor, orchestrator, driver, registry)
}

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Language registry with optional overrides file
			newRegistry,

			// Sandbox executor based on config
			newSandboxExecutor,

			// Validation battery
			newValidator,

			// Synthesis collaborator
			newLLMClient,

			// Retry session orchestrator
			newOrchestrator,

			// Assignment batch driver
			newDriver,

			// MCP Server
			newMCPServer,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(cfg *config.Config, server *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "stdio":
					// Use fx to run this as a background task
					go func() {
						if err := server.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				case "http":
					go func() {
						if err := server.ServeHTTP(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
