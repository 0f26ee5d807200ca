package sandbox

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// ExecuteRequest represents the parameters for one code execution
type ExecuteRequest struct {
	Language   string
	Code       string
	TimeoutSec int // 0 means use the executor's configured timeout
}

// ExecuteResult represents the outcome of one code execution. Success is
// true iff the process exited with code 0.
type ExecuteResult struct {
	Success    bool
	Stdout     string
	Stderr     string
	ExitCode   int
	DurationMS int64
}

// SentinelExitCode marks results that never reached a real process exit:
// unsupported language, timeout, or an internal execution fault.
const SentinelExitCode = -1

// Executor defines the interface for sandbox execution
type Executor interface {
	Execute(ctx context.Context, req ExecuteRequest) (ExecuteResult, error)
}

// Config holds resource limits shared by all backends
type Config struct {
	TimeoutSec int
	MemoryMB   int
	CPUs       int
}

// File permission constants
const (
	DirPermission    = 0o755
	SourcePermission = 0o644 // container user must be able to read the source
)

// CommandRunner defines an interface for executing system commands
type CommandRunner interface {
	RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error)
}

// RealCommandRunner implements CommandRunner using actual exec commands
type RealCommandRunner struct{}

// RunCommand executes the given command with arguments
func (RealCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	if len(args) < 1 {
		return "", "", 0, fmt.Errorf("no command provided")
	}

	cmd := exec.CommandContext(ctx, args[0], args[1:]...) //nolint:gosec // Safe as this is controlled input

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err = cmd.Run()

	exitCode = 0
	if err != nil {
		if exitError, ok := err.(*exec.ExitError); ok {
			exitCode = exitError.ExitCode()
			err = nil
		} else {
			return stdoutBuf.String(), stderrBuf.String(), 0, err
		}
	}

	return stdoutBuf.String(), stderrBuf.String(), exitCode, nil
}

// FileSystem defines an interface for file system operations
type FileSystem interface {
	MkdirTemp(dir, pattern string) (string, error)
	WriteFile(filename string, data []byte, perm os.FileMode) error
	RemoveAll(path string) error
}

// RealFileSystem implements FileSystem using actual file system operations
type RealFileSystem struct{}

func (RealFileSystem) MkdirTemp(dir, pattern string) (string, error) {
	return os.MkdirTemp(dir, pattern)
}

func (RealFileSystem) WriteFile(filename string, data []byte, perm os.FileMode) error {
	return os.WriteFile(filename, data, perm)
}

func (RealFileSystem) RemoveAll(path string) error {
	return os.RemoveAll(path)
}

// UnsupportedResult builds the immediate failure returned for a language
// outside the supported set. No isolation primitive is invoked.
func UnsupportedResult(lang string) ExecuteResult {
	return ExecuteResult{
		Success:  false,
		Stderr:   fmt.Sprintf("unsupported language: %s", strings.TrimSpace(lang)),
		ExitCode: SentinelExitCode,
	}
}

// FailureResult builds the result for an internal execution fault.
func FailureResult(err error, durationMS int64) ExecuteResult {
	return ExecuteResult{
		Success:    false,
		Stderr:     fmt.Sprintf("execution error: %v", err),
		ExitCode:   SentinelExitCode,
		DurationMS: durationMS,
	}
}
