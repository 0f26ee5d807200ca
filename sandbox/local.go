// Package sandbox provides secure execution of untrusted, generated code.
//
// The LocalExecutor runs code directly on the host system with only a
// wall-clock timeout applied. It exists for development on machines
// without a container runtime and must be explicitly enabled in config.
package sandbox

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/language"
)

// LocalExecutor implements Executor using local execution (for development only)
type LocalExecutor struct {
	logger    *zap.Logger
	config    *Config
	registry  *language.Registry
	cmdRunner CommandRunner
	fs        FileSystem
}

// LocalExecutorOption defines a functional option for LocalExecutor
type LocalExecutorOption func(*LocalExecutor)

// WithLocalCommandRunner sets the CommandRunner for LocalExecutor
func WithLocalCommandRunner(cmdRunner CommandRunner) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.cmdRunner = cmdRunner
	}
}

// WithLocalFileSystem sets the FileSystem for LocalExecutor
func WithLocalFileSystem(fs FileSystem) LocalExecutorOption {
	return func(l *LocalExecutor) {
		l.fs = fs
	}
}

// NewLocalExecutor creates a new LocalExecutor with default implementations and optional interfaces
func NewLocalExecutor(logger *zap.Logger, config *Config, registry *language.Registry, opts ...LocalExecutorOption) *LocalExecutor {
	executor := &LocalExecutor{
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

// Execute runs the code locally (WARNING: not isolated; development only)
func (l *LocalExecutor) Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error) {
	spec, ok := l.registry.Lookup(req.Language)
	if !ok {
		return UnsupportedResult(req.Language), nil
	}

	timeoutSec := req.TimeoutSec
	if timeoutSec <= 0 {
		timeoutSec = l.config.TimeoutSec
	}

	tempDir, err := l.fs.MkdirTemp("", "codeforge-local-*")
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create scratch dir: %w", err), 0), nil
	}
	defer func() {
		if rmErr := l.fs.RemoveAll(tempDir); rmErr != nil {
			l.logger.Error("failed to remove scratch directory", zap.String("path", tempDir), zap.Error(rmErr))
		}
	}()

	codePath := filepath.Join(tempDir, spec.FileName)
	if writeErr := l.fs.WriteFile(codePath, []byte(req.Code), SourcePermission); writeErr != nil {
		return FailureResult(fmt.Errorf("failed to write source file: %w", writeErr), 0), nil
	}

	// Registry commands reference /code; rewrite them against the real
	// scratch directory for host execution.
	cmdArgs := make([]string, len(spec.RunCommand))
	for i, arg := range spec.RunCommand {
		cmdArgs[i] = strings.ReplaceAll(arg, "/code", tempDir)
	}

	l.logger.Warn("executing code locally without isolation",
		zap.String("language", spec.Name))

	ctxWithTimeout, cancel := context.WithTimeout(ctx, time.Duration(timeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, runErr := l.cmdRunner.RunCommand(ctxWithTimeout, cmdArgs)
	elapsedMS := time.Since(start).Milliseconds()

	if ctxWithTimeout.Err() == context.DeadlineExceeded {
		return ExecuteResult{
			Success:    false,
			Stdout:     strings.TrimSpace(stdout),
			Stderr:     fmt.Sprintf("execution timed out after %d seconds", timeoutSec),
			ExitCode:   SentinelExitCode,
			DurationMS: elapsedMS,
		}, nil
	}

	if runErr != nil {
		return FailureResult(runErr, elapsedMS), nil
	}

	return ExecuteResult{
		Success:    exitCode == 0,
		Stdout:     strings.TrimSpace(stdout),
		Stderr:     strings.TrimSpace(stderr),
		ExitCode:   exitCode,
		DurationMS: elapsedMS,
	}, nil
}
