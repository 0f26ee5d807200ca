package sandbox

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"go.uber.org/zap"
)

// ContainerRun describes one single-use container invocation. The source
// file is written into a fresh scratch directory mounted at /code; the
// container is always removed after completion or timeout.
type ContainerRun struct {
	Binary     string // container CLI, "docker" or "podman"
	Image      string
	FileName   string // source file name inside /code
	Code       string
	Command    []string
	TimeoutSec int
	MemoryMB   int
	CPUs       int
	ReadWrite  bool // mount /code read-write (validation tools emit artifacts)
}

// RunContained executes one command in an isolated, resource-limited,
// network-disabled container. Every failure mode is absorbed into the
// returned ExecuteResult; the container and scratch directory are
// reclaimed on all exit paths.
func RunContained(ctx context.Context, logger *zap.Logger, runner CommandRunner, fs FileSystem, run ContainerRun) ExecuteResult {
	tempDir, err := fs.MkdirTemp("", "codeforge-run-*")
	if err != nil {
		return FailureResult(fmt.Errorf("failed to create scratch dir: %w", err), 0)
	}
	defer func() {
		if rmErr := fs.RemoveAll(tempDir); rmErr != nil {
			logger.Error("failed to remove scratch directory", zap.String("path", tempDir), zap.Error(rmErr))
		}
	}()

	codePath := filepath.Join(tempDir, run.FileName)
	if writeErr := fs.WriteFile(codePath, []byte(run.Code), SourcePermission); writeErr != nil {
		return FailureResult(fmt.Errorf("failed to write source file: %w", writeErr), 0)
	}

	mountMode := ":ro"
	if run.ReadWrite {
		mountMode = ""
	}

	containerName := fmt.Sprintf("codeforge-%d", time.Now().UnixNano())
	cmdArgs := []string{
		run.Binary, "run",
		"--name", containerName,
		"--rm",
		"-v", fmt.Sprintf("%s:/code%s", tempDir, mountMode),
		"--workdir", "/code",
		"--network", "none",
		"--memory", fmt.Sprintf("%dm", run.MemoryMB),
		"--cpus", fmt.Sprintf("%d", run.CPUs),
		"--security-opt", "no-new-privileges:true",
		"--cap-drop", "ALL",
		run.Image,
	}
	cmdArgs = append(cmdArgs, run.Command...)

	ctxWithTimeout, cancel := context.WithTimeout(ctx, time.Duration(run.TimeoutSec)*time.Second)
	defer cancel()

	start := time.Now()
	stdout, stderr, exitCode, runErr := runner.RunCommand(ctxWithTimeout, cmdArgs)
	elapsedMS := time.Since(start).Milliseconds()

	if ctxWithTimeout.Err() == context.DeadlineExceeded {
		// The CLI process was killed; the container may still be running.
		if _, _, _, stopErr := runner.RunCommand(ctx, []string{run.Binary, "rm", "-f", containerName}); stopErr != nil {
			logger.Warn("failed to remove container after timeout",
				zap.String("container", containerName), zap.Error(stopErr))
		}
		return ExecuteResult{
			Success:    false,
			Stdout:     strings.TrimSpace(stdout),
			Stderr:     fmt.Sprintf("execution timed out after %d seconds", run.TimeoutSec),
			ExitCode:   SentinelExitCode,
			DurationMS: elapsedMS,
		}
	}

	if runErr != nil {
		return FailureResult(runErr, elapsedMS)
	}

	logger.Debug("container run completed",
		zap.String("image", run.Image),
		zap.Int("exit_code", exitCode),
		zap.Int64("elapsed_ms", elapsedMS))

	return ExecuteResult{
		Success:    exitCode == 0,
		Stdout:     strings.TrimSpace(stdout),
		Stderr:     strings.TrimSpace(stderr),
		ExitCode:   exitCode,
		DurationMS: elapsedMS,
	}
}
