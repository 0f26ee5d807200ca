package sandbox

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/forgeworks/codeforge/language"
)

// MockCommandRunner implements CommandRunner for testing
type MockCommandRunner struct {
	calls        [][]string
	stdout       string
	stderr       string
	exitCode     int
	err          error
	blockOnRun   bool // simulate a run that outlives the context deadline
	pingExitCode int
}

func (m *MockCommandRunner) RunCommand(ctx context.Context, args []string) (stdout, stderr string, exitCode int, err error) {
	m.calls = append(m.calls, args)

	if len(args) > 1 && args[1] == "version" {
		return "", "", m.pingExitCode, nil
	}
	if m.blockOnRun && len(args) > 1 && args[1] == "run" {
		<-ctx.Done()
		return "", "", SentinelExitCode, ctx.Err()
	}
	return m.stdout, m.stderr, m.exitCode, m.err
}

func (m *MockCommandRunner) runCalls() [][]string {
	var runs [][]string
	for _, call := range m.calls {
		if len(call) > 1 && call[1] == "run" {
			runs = append(runs, call)
		}
	}
	return runs
}

// MockFileSystem implements FileSystem for testing
type MockFileSystem struct {
	tempDir      string
	writtenFiles map[string][]byte
	removedPaths []string
	writeErr     error
}

func (m *MockFileSystem) MkdirTemp(_, _ string) (string, error) {
	if m.tempDir == "" {
		m.tempDir = "/tmp/codeforge-test"
	}
	return m.tempDir, nil
}

func (m *MockFileSystem) WriteFile(filename string, data []byte, _ os.FileMode) error {
	if m.writeErr != nil {
		return m.writeErr
	}
	if m.writtenFiles == nil {
		m.writtenFiles = make(map[string][]byte)
	}
	m.writtenFiles[filename] = data
	return nil
}

func (m *MockFileSystem) RemoveAll(path string) error {
	m.removedPaths = append(m.removedPaths, path)
	return nil
}

func testConfig() *Config {
	return &Config{TimeoutSec: 30, MemoryMB: 512, CPUs: 1}
}

func TestDockerExecutorConstructors(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := language.NewRegistry()

	t.Run("DefaultConstructor", func(t *testing.T) {
		executor := NewDockerExecutor(logger, testConfig(), registry)
		require.NotNil(t, executor)
		assert.NotNil(t, executor.cmdRunner)
		assert.NotNil(t, executor.fs)
	})

	t.Run("ConstructorWithOptions", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		mockFS := &MockFileSystem{}

		executor := NewDockerExecutor(
			logger,
			testConfig(),
			registry,
			WithDockerCommandRunner(mockRunner),
			WithDockerFileSystem(mockFS),
		)
		require.NotNil(t, executor)
		assert.Equal(t, mockRunner, executor.cmdRunner)
		assert.Equal(t, mockFS, executor.fs)
	})
}

func TestDockerExecutorExecute(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := language.NewRegistry()

	t.Run("UnsupportedLanguageLaunchesNothing", func(t *testing.T) {
		mockRunner := &MockCommandRunner{}
		mockFS := &MockFileSystem{}
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(mockRunner), WithDockerFileSystem(mockFS))

		result, err := executor.Execute(context.Background(), ExecuteRequest{
			Language: "brainfuck",
			Code:     "+++",
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, SentinelExitCode, result.ExitCode)
		assert.Contains(t, result.Stderr, "unsupported language: brainfuck")
		assert.Empty(t, mockRunner.calls, "no container may be launched")
		assert.Empty(t, mockFS.writtenFiles, "no scratch file may be written")
	})

	t.Run("SuccessfulRun", func(t *testing.T) {
		mockRunner := &MockCommandRunner{stdout: "1\n2\n3\n", exitCode: 0}
		mockFS := &MockFileSystem{}
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(mockRunner), WithDockerFileSystem(mockFS))

		result, err := executor.Execute(context.Background(), ExecuteRequest{
			Language: "python",
			Code:     "for i in range(1, 4):\n    print(i)\n",
		})
		require.NoError(t, err)
		assert.True(t, result.Success)
		assert.Equal(t, 0, result.ExitCode)
		assert.Equal(t, "1\n2\n3", result.Stdout)

		// Scratch file carries the candidate under the registry file name.
		written, ok := mockFS.writtenFiles["/tmp/codeforge-test/main.py"]
		require.True(t, ok)
		assert.Contains(t, string(written), "print(i)")

		// Scratch dir is reclaimed.
		assert.Contains(t, mockFS.removedPaths, "/tmp/codeforge-test")

		runs := mockRunner.runCalls()
		require.Len(t, runs, 1)
		args := strings.Join(runs[0], " ")
		assert.Contains(t, args, "docker run")
		assert.Contains(t, args, "--network none")
		assert.Contains(t, args, "--memory 512m")
		assert.Contains(t, args, "--cpus 1")
		assert.Contains(t, args, "--cap-drop ALL")
		assert.Contains(t, args, "/tmp/codeforge-test:/code:ro")
		assert.Contains(t, args, "python:3.11-slim")
	})

	t.Run("NonZeroExitIsFailureNotError", func(t *testing.T) {
		mockRunner := &MockCommandRunner{stderr: "Traceback (most recent call last): ...", exitCode: 1}
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(mockRunner), WithDockerFileSystem(&MockFileSystem{}))

		result, err := executor.Execute(context.Background(), ExecuteRequest{Language: "python", Code: "raise SystemExit(1)"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, 1, result.ExitCode)
		assert.Contains(t, result.Stderr, "Traceback")
	})

	t.Run("CompiledLanguageUsesShellPipeline", func(t *testing.T) {
		mockRunner := &MockCommandRunner{exitCode: 0}
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(mockRunner), WithDockerFileSystem(&MockFileSystem{}))

		_, err := executor.Execute(context.Background(), ExecuteRequest{Language: "cpp", Code: "int main() {}"})
		require.NoError(t, err)

		runs := mockRunner.runCalls()
		require.Len(t, runs, 1)
		args := strings.Join(runs[0], " ")
		assert.Contains(t, args, "gcc:13")
		assert.Contains(t, args, "g++ /code/main.cpp -o /tmp/program && /tmp/program")
	})

	t.Run("TimeoutForcesContainerRemoval", func(t *testing.T) {
		mockRunner := &MockCommandRunner{blockOnRun: true}
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(mockRunner), WithDockerFileSystem(&MockFileSystem{}))

		result, err := executor.Execute(context.Background(), ExecuteRequest{
			Language:   "python",
			Code:       "while True: pass",
			TimeoutSec: 1,
		})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, SentinelExitCode, result.ExitCode)
		assert.Contains(t, result.Stderr, "timed out after 1 seconds")
		assert.GreaterOrEqual(t, result.DurationMS, int64(1000))
		assert.Less(t, result.DurationMS, int64(3000))

		// Last call must be the forced removal of the container.
		last := mockRunner.calls[len(mockRunner.calls)-1]
		assert.Equal(t, "docker", last[0])
		assert.Equal(t, "rm", last[1])
		assert.Equal(t, "-f", last[2])
	})

	t.Run("RunnerFaultIsAbsorbed", func(t *testing.T) {
		mockRunner := &MockCommandRunner{err: assert.AnError}
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(mockRunner), WithDockerFileSystem(&MockFileSystem{}))

		result, err := executor.Execute(context.Background(), ExecuteRequest{Language: "go", Code: "package main"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, SentinelExitCode, result.ExitCode)
		assert.Contains(t, result.Stderr, "execution error")
	})
}

func TestDockerExecutorPing(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := language.NewRegistry()

	t.Run("Reachable", func(t *testing.T) {
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(&MockCommandRunner{}))
		assert.NoError(t, executor.Ping(context.Background()))
	})

	t.Run("Unreachable", func(t *testing.T) {
		executor := NewDockerExecutor(logger, testConfig(), registry,
			WithDockerCommandRunner(&MockCommandRunner{pingExitCode: 1}))
		err := executor.Ping(context.Background())
		require.Error(t, err)
		assert.Contains(t, err.Error(), "docker runtime unavailable")
	})
}

func TestPodmanExecutorExecute(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := language.NewRegistry()

	mockRunner := &MockCommandRunner{stdout: "hello", exitCode: 0}
	executor := NewPodmanExecutor(logger, testConfig(), registry,
		WithPodmanCommandRunner(mockRunner), WithPodmanFileSystem(&MockFileSystem{}))

	result, err := executor.Execute(context.Background(), ExecuteRequest{Language: "js", Code: "console.log('hello')"})
	require.NoError(t, err)
	assert.True(t, result.Success)

	runs := mockRunner.runCalls()
	require.Len(t, runs, 1)
	assert.Equal(t, "podman", runs[0][0])
	assert.Contains(t, strings.Join(runs[0], " "), "node:20-alpine")
}

func TestLocalExecutorExecute(t *testing.T) {
	logger := zaptest.NewLogger(t)
	registry := language.NewRegistry()

	t.Run("RewritesCodePathForHost", func(t *testing.T) {
		mockRunner := &MockCommandRunner{stdout: "ok", exitCode: 0}
		mockFS := &MockFileSystem{tempDir: "/tmp/local-run"}
		executor := NewLocalExecutor(logger, testConfig(), registry,
			WithLocalCommandRunner(mockRunner), WithLocalFileSystem(mockFS))

		result, err := executor.Execute(context.Background(), ExecuteRequest{Language: "python", Code: "print('ok')"})
		require.NoError(t, err)
		assert.True(t, result.Success)

		require.Len(t, mockRunner.calls, 1)
		assert.Equal(t, []string{"python", "/tmp/local-run/main.py"}, mockRunner.calls[0])
	})

	t.Run("UnsupportedLanguage", func(t *testing.T) {
		executor := NewLocalExecutor(logger, testConfig(), registry,
			WithLocalCommandRunner(&MockCommandRunner{}), WithLocalFileSystem(&MockFileSystem{}))

		result, err := executor.Execute(context.Background(), ExecuteRequest{Language: "perl", Code: "print 1"})
		require.NoError(t, err)
		assert.False(t, result.Success)
		assert.Equal(t, SentinelExitCode, result.ExitCode)
	})
}
