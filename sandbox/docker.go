// Package sandbox provides secure execution of untrusted, generated code.
//
// The DockerExecutor runs code in Docker containers with security
// constraints including resource limits, network isolation, and a
// read-only source mount.
package sandbox

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/language"
)

// DockerExecutor implements Executor using the Docker CLI
type DockerExecutor struct {
	logger    *zap.Logger
	config    *Config
	registry  *language.Registry
	cmdRunner CommandRunner
	fs        FileSystem
}

// DockerExecutorOption defines a functional option for DockerExecutor
type DockerExecutorOption func(*DockerExecutor)

// WithDockerCommandRunner sets the CommandRunner for DockerExecutor
func WithDockerCommandRunner(cmdRunner CommandRunner) DockerExecutorOption {
	return func(d *DockerExecutor) {
		d.cmdRunner = cmdRunner
	}
}

// WithDockerFileSystem sets the FileSystem for DockerExecutor
func WithDockerFileSystem(fs FileSystem) DockerExecutorOption {
	return func(d *DockerExecutor) {
		d.fs = fs
	}
}

// NewDockerExecutor creates a new DockerExecutor with default implementations and optional interfaces
func NewDockerExecutor(logger *zap.Logger, config *Config, registry *language.Registry, opts ...DockerExecutorOption) *DockerExecutor {
	executor := &DockerExecutor{
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

// Ping verifies the Docker daemon is reachable. Called at construction
// time by the factory; an unreachable runtime is fatal for the process,
// never a per-job error.
func (d *DockerExecutor) Ping(ctx context.Context) error {
	_, stderr, exitCode, err := d.cmdRunner.RunCommand(ctx, []string{"docker", "version"})
	if err != nil {
		return fmt.Errorf("docker runtime unavailable: %w", err)
	}
	if exitCode != 0 {
		return fmt.Errorf("docker runtime unavailable: %s", stderr)
	}
	return nil
}

// Execute runs the code in a single-use Docker container
func (d *DockerExecutor) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	spec, ok := d.registry.Lookup(req.Language)
	if !ok {
		d.logger.Warn("execution requested for unsupported language", zap.String("language", req.Language))
		return UnsupportedResult(req.Language), nil
	}

	timeoutSec := req.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = d.config.TimeoutSec
	}

	d.logger.Info("executing code in docker sandbox",
		zap.String("language", spec.Name),
		zap.Int("code_length", len(req.Code)),
		zap.Int("timeout_sec", timeoutSec))

	result := RunContained(ctx, d.logger, d.cmdRunner, d.fs, ContainerRun{
		Binary:     "docker",
		Image:      spec.Image,
		FileName:   spec.FileName,
		Code:       req.Code,
		Command:    spec.RunCommand,
		TimeoutSec: timeoutSec,
		MemoryMB:   d.config.MemoryMB,
		CPUs:       d.config.CPUs,
	})

	d.logger.Info("code execution completed",
		zap.String("language", spec.Name),
		zap.Bool("success", result.Success),
		zap.Int("exit_code", result.ExitCode),
		zap.Int64("elapsed_ms", result.DurationMS))

	return result, nil
}
