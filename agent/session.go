package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/forgeworks/codeforge/llm"
	"github.com/forgeworks/codeforge/sandbox"
	"github.com/forgeworks/codeforge/validation"
)

// Status is the lifecycle state of one session.
type Status string

const (
	StatusPending   Status = "pending"
	StatusSucceeded Status = "succeeded" // validation passed
	StatusExhausted Status = "exhausted" // ceiling reached without a passing verdict
	StatusFatal     Status = "fatal"     // context cancelled mid-session
)

// Config holds the orchestrator's tunables
type Config struct {
	MaxIterations  int
	ReviewEnabled  bool
	ExecTimeoutSec int // 0 means the executor's configured timeout
}

// Result is the terminal outcome of one session. Code and Output always
// carry the best-available candidate, even on exhaustion.
type Result struct {
	Status     Status
	Code       string
	Output     string
	Execution  sandbox.ExecuteResult
	Verdict    validation.Verdict
	Iterations int
	History    []string // ordered past diagnostic feedback, one entry per failed iteration
	TokensUsed int
}

// Validator reduces one candidate to a pass/fail verdict.
type Validator interface {
	Validate(ctx context.Context, code, lang string) validation.Verdict
}

// Orchestrator runs sessions. It holds no mutable state between calls,
// so one Orchestrator may serve concurrent sessions.
type Orchestrator struct {
	logger    *zap.Logger
	config    *Config
	synth     llm.Synthesizer
	critic    llm.Critic
	executor  sandbox.Executor
	validator Validator
}

// New creates an Orchestrator. critic may be nil when review is disabled.
func New(logger *zap.Logger, config *Config, synth llm.Synthesizer, critic llm.Critic, executor sandbox.Executor, validator Validator) *Orchestrator {
	return &Orchestrator{
		logger:    logger,
		config:    config,
		synth:     synth,
		critic:    critic,
		executor:  executor,
		validator: validator,
	}
}

// Run executes one bounded retry session: Generating -> [Reviewing] ->
// Executing -> Validating -> {Retrying | terminal}. The returned error is
// non-nil only when the context is cancelled; every other failure mode is
// absorbed into the Result.
func (o *Orchestrator) Run(ctx context.Context, problem, lang string, requirements []string) (Result, error) {
	log := o.logger.With(
		zap.String("session_id", uuid.NewString()),
		zap.String("language", lang))

	result := Result{Status: StatusPending}
	var feedback string
	var lastExec sandbox.ExecuteResult

	for {
		if err := ctx.Err(); err != nil {
			result.Status = StatusFatal
			return result, fmt.Errorf("session aborted: %w", err)
		}

		// The ceiling check takes priority over a failing verdict: an
		// exhausted session terminates with whatever candidate it last
		// produced.
		if result.Iterations >= o.config.MaxIterations {
			result.Status = StatusExhausted
			log.Warn("iteration ceiling reached",
				zap.Int("iterations", result.Iterations),
				zap.Int("ceiling", o.config.MaxIterations))
			return result, nil
		}

		// Generating. Every synthesis call counts against the ceiling,
		// including failed ones.
		synthesis, synthErr := o.synth.Synthesize(ctx, llm.SynthesisRequest{
			Language:     lang,
			Problem:      problem,
			Requirements: requirements,
			Feedback:     feedback,
		})
		result.Iterations++
		result.TokensUsed += synthesis.TokensUsed

		log.Info("synthesis attempt completed",
			zap.Int("iteration", result.Iterations),
			zap.Bool("failed", synthErr != nil))

		if synthErr != nil {
			feedback = fmt.Sprintf("synthesis failed: %v", synthErr)
			result.History = append(result.History, feedback)
			continue
		}
		if strings.TrimSpace(synthesis.Code) == "" {
			feedback = "synthesis returned no code"
			result.History = append(result.History, feedback)
			continue
		}
		result.Code = synthesis.Code

		// Reviewing (optional). A failing review routes back to
		// Generating without a second iteration increment; the ceiling
		// check above bounds the loop.
		if o.config.ReviewEnabled && o.critic != nil {
			review, reviewErr := o.critic.Critique(ctx, llm.CritiqueRequest{
				Problem:         problem,
				Requirements:    requirements,
				Code:            result.Code,
				ExecutionOutput: lastExec.Stdout,
			})
			if reviewErr != nil {
				feedback = fmt.Sprintf("critique failed: %v", reviewErr)
				result.History = append(result.History, feedback)
				continue
			}
			if !llm.IsPass(review) {
				log.Info("review rejected candidate", zap.Int("iteration", result.Iterations))
				feedback = review
				result.History = append(result.History, review)
				continue
			}
		}

		// Executing. An internal sandbox fault is a failed run, not a
		// fatal session error.
		execution, execErr := o.executor.Execute(ctx, sandbox.ExecuteRequest{
			Language:   lang,
			Code:       result.Code,
			TimeoutSec: o.config.ExecTimeoutSec,
		})
		if execErr != nil {
			execution = sandbox.FailureResult(execErr, 0)
		}
		lastExec = execution
		result.Execution = execution
		result.Output = execution.Stdout

		// Validating.
		verdict := o.validator.Validate(ctx, result.Code, lang)
		result.Verdict = verdict

		if verdict.Pass {
			result.Status = StatusSucceeded
			log.Info("session complete",
				zap.Int("iterations", result.Iterations),
				zap.Int("tokens_used", result.TokensUsed))
			return result, nil
		}

		feedback = verdict.Digest()
		result.History = append(result.History, feedback)
		log.Info("validation rejected candidate",
			zap.Int("iteration", result.Iterations),
			zap.Int("diagnostic_count", len(verdict.Diagnostics)))
	}
}
