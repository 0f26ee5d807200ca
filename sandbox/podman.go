// Package sandbox provides secure execution of untrusted, generated code.
//
// The PodmanExecutor runs code in Podman containers with security
// constraints identical to the Docker executor.
package sandbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/language"
)

// PodmanExecutor implements Executor using the Podman CLI
type PodmanExecutor struct {
	logger    *zap.Logger
	config    *Config
	registry  *language.Registry
	cmdRunner CommandRunner
	fs        FileSystem
}

// PodmanExecutorOption defines a functional option for PodmanExecutor
type PodmanExecutorOption func(*PodmanExecutor)

// WithPodmanCommandRunner sets the CommandRunner for PodmanExecutor
func WithPodmanCommandRunner(cmdRunner CommandRunner) PodmanExecutorOption {
	return func(p *PodmanExecutor) {
		p.cmdRunner = cmdRunner
	}
}

// WithPodmanFileSystem sets the FileSystem for PodmanExecutor
func WithPodmanFileSystem(fs FileSystem) PodmanExecutorOption {
	return func(p *PodmanExecutor) {
		p.fs = fs
	}
}

// NewPodmanExecutor creates a new PodmanExecutor with default implementations and optional interfaces
func NewPodmanExecutor(logger *zap.Logger, config *Config, registry *language.Registry, opts ...PodmanExecutorOption) *PodmanExecutor {
	executor := &PodmanExecutor{
		logger:    logger,
		config:    config,
		registry:  registry,
		cmdRunner: &RealCommandRunner{}, // Default implementation
		fs:        &RealFileSystem{},    // Default implementation
	}

	for _, opt := range opts {
		opt(executor)
	}

	return executor
}

// Ping verifies the Podman runtime is reachable.
func (p *PodmanExecutor) Ping(ctx context.Context) error {
	_, stderr, exitCode, err := p.cmdRunner.RunCommand(ctx, []string{"podman", "version"})
	if err != nil {
		return fmt.Errorf("podman runtime unavailable: %w", err)
	}
	if exitCode != 0 {
		return fmt.Errorf("podman runtime unavailable: %s", stderr)
	}
	return nil
}

// Execute runs the code in a single-use Podman container
func (p *PodmanExecutor) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	spec, ok := p.registry.Lookup(req.Language)
	if !ok {
		p.logger.Warn("execution requested for unsupported language", zap.String("language", req.Language))
		return UnsupportedResult(req.Language), nil
	}

	timeoutSec := req.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = p.config.TimeoutSec
	}

	p.logger.Info("executing code in podman sandbox",
		zap.String("language", spec.Name),
		zap.Int("code_length", len(req.Code)),
		zap.Int("timeout_sec", timeoutSec))

	result := RunContained(ctx, p.logger, p.cmdRunner, p.fs, ContainerRun{
		Binary:     "podman",
		Image:      spec.Image,
		FileName:   spec.FileName,
		Code:       req.Code,
		Command:    spec.RunCommand,
		TimeoutSec: timeoutSec,
		MemoryMB:   p.config.MemoryMB,
		CPUs:       p.config.CPUs,
	})

	p.logger.Info("code execution completed",
		zap.String("language", spec.Name),
		zap.Bool("success", result.Success),
		zap.Int("exit_code", result.ExitCode),
		zap.Int64("elapsed_ms", result.DurationMS))

	return result, nil
}
