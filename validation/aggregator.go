package validation

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/language"
	"github.com/forgeworks/codeforge/sandbox"
)

// Verdict is the aggregated judgment over one candidate source.
// Invariant: Pass is true iff Diagnostics is empty.
type Verdict struct {
	Pass        bool
	Diagnostics []string          // one entry per failing tool, in battery order
	Raw         map[string]string // full tool output keyed by tool name
}

// Digest returns the diagnostics joined for re-injection into a
// synthesis prompt.
func (v Verdict) Digest() string {
	return strings.Join(v.Diagnostics, "\n")
}

// EscalationFunc decides whether one tool's raw output should become a
// diagnostic, returning the (already bounded) message to include.
type EscalationFunc func(tool language.Tool, output string) (string, bool)

// KeywordEscalation returns the default heuristic: escalate when the
// output contains any of the tool's keywords, case-insensitively, and
// trim the escalated message to maxLen characters so feedback stays
// compact enough to re-inject into a prompt.
func KeywordEscalation(maxLen int) EscalationFunc {
	return func(tool language.Tool, output string) (string, bool) {
		lowered := strings.ToLower(output)
		for _, keyword := range tool.Keywords {
			if strings.Contains(lowered, strings.ToLower(keyword)) {
				return truncate(strings.TrimSpace(output), maxLen), true
			}
		}
		return "", false
	}
}

func truncate(s string, maxLen int) string {
	if maxLen <= 0 || len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

// Config holds resource limits and backend selection for validation runs
type Config struct {
	Backend          string // container CLI, "docker" or "podman"
	TimeoutSec       int
	MemoryMB         int
	CPUs             int
	MaxDiagnosticLen int
}

// Aggregator runs a language's tool battery and reduces the combined
// output to a Verdict
type Aggregator struct {
	logger    *zap.Logger
	config    *Config
	registry  *language.Registry
	cmdRunner sandbox.CommandRunner
	fs        sandbox.FileSystem
	escalate  EscalationFunc
}

// AggregatorOption defines a functional option for Aggregator
type AggregatorOption func(*Aggregator)

// WithCommandRunner sets the CommandRunner for Aggregator
func WithCommandRunner(cmdRunner sandbox.CommandRunner) AggregatorOption {
	return func(a *Aggregator) {
		a.cmdRunner = cmdRunner
	}
}

// WithFileSystem sets the FileSystem for Aggregator
func WithFileSystem(fs sandbox.FileSystem) AggregatorOption {
	return func(a *Aggregator) {
		a.fs = fs
	}
}

// WithEscalation replaces the keyword heuristic
func WithEscalation(escalate EscalationFunc) AggregatorOption {
	return func(a *Aggregator) {
		a.escalate = escalate
	}
}

// New creates an Aggregator with default implementations and optional interfaces
func New(logger *zap.Logger, config *Config, registry *language.Registry, opts ...AggregatorOption) *Aggregator {
	aggregator := &Aggregator{
		logger:    logger,
		config:    config,
		registry:  registry,
		cmdRunner: &sandbox.RealCommandRunner{}, // Default implementation
		fs:        &sandbox.RealFileSystem{},    // Default implementation
		escalate:  KeywordEscalation(config.MaxDiagnosticLen),
	}

	for _, opt := range opts {
		opt(aggregator)
	}

	return aggregator
}

// Validate runs the language's battery against the source and reduces the
// results to a single pass/fail verdict with diagnostics.
func (a *Aggregator) Validate(ctx context.Context, code, lang string) Verdict {
	spec, ok := a.registry.Lookup(lang)
	if !ok {
		return Verdict{
			Pass:        false,
			Diagnostics: []string{fmt.Sprintf("unsupported language: %s", strings.TrimSpace(lang))},
			Raw:         map[string]string{},
		}
	}

	a.logger.Info("validating candidate",
		zap.String("language", spec.Name),
		zap.Int("tool_count", len(spec.Battery)))

	raw := make(map[string]string, len(spec.Battery))
	var diagnostics []string

	for _, tool := range spec.Battery {
		// A tool absent from the runtime image runs in its own
		// tool-bearing image.
		image := tool.Image
		if image == "" {
			image = spec.Image
		}

		result := sandbox.RunContained(ctx, a.logger, a.cmdRunner, a.fs, sandbox.ContainerRun{
			Binary:     a.config.Backend,
			Image:      image,
			FileName:   spec.FileName,
			Code:       code,
			Command:    tool.Command,
			TimeoutSec: a.config.TimeoutSec,
			MemoryMB:   a.config.MemoryMB,
			CPUs:       a.config.CPUs,
			ReadWrite:  true,
		})

		output := joinOutput(result.Stdout, result.Stderr)
		raw[tool.Name] = output

		// Sentinel exit marks a run that never produced a real tool
		// verdict (crash or timeout); one tool's failure must not block
		// judgment of the others.
		if result.ExitCode == sandbox.SentinelExitCode {
			a.logger.Warn("validation tool failed to run",
				zap.String("tool", tool.Name), zap.String("error", result.Stderr))
			diagnostics = append(diagnostics, fmt.Sprintf("validation engine error: %s: %s",
				tool.Name, truncate(result.Stderr, a.config.MaxDiagnosticLen)))
			continue
		}

		if message, bad := a.escalate(tool, output); bad {
			diagnostics = append(diagnostics, fmt.Sprintf("%s: %s", tool.Name, message))
		}
	}

	verdict := Verdict{Pass: len(diagnostics) == 0, Diagnostics: diagnostics, Raw: raw}

	a.logger.Info("validation completed",
		zap.String("language", spec.Name),
		zap.Bool("pass", verdict.Pass),
		zap.Int("diagnostic_count", len(diagnostics)))

	return verdict
}

func joinOutput(stdout, stderr string) string {
	switch {
	case stdout == "":
		return stderr
	case stderr == "":
		return stdout
	default:
		return stdout + "\n" + stderr
	}
}
