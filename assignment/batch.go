package assignment

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/forgeworks/codeforge/agent"
	"github.com/forgeworks/codeforge/language"
)

// RenderItem is one solved question in submission order, shaped for the
// external document renderer.
type RenderItem struct {
	Number       int
	Language     string
	QuestionText string
	Code         string
	Output       string
	Status       agent.Status
}

// BatchResult is the outcome of one assignment run.
type BatchResult struct {
	Meta       Meta
	Items      []RenderItem
	TokensUsed int
}

// SessionRunner runs one retry session for one question.
// *agent.Orchestrator satisfies it.
type SessionRunner interface {
	Run(ctx context.Context, problem, lang string, requirements []string) (agent.Result, error)
}

// Driver fans an assignment's questions out across a bounded worker pool.
type Driver struct {
	logger   *zap.Logger
	runner   SessionRunner
	registry *language.Registry
	workers  int
}

// NewDriver creates a Driver. workers below 1 is treated as 1.
func NewDriver(logger *zap.Logger, runner SessionRunner, registry *language.Registry, workers int) *Driver {
	if workers < 1 {
		workers = 1
	}
	return &Driver{
		logger:   logger,
		runner:   runner,
		registry: registry,
		workers:  workers,
	}
}

// Run parses the assignment file and solves every question, at most
// d.workers sessions in flight at once. Per-question failures surface in
// that item's Status; Run itself fails only on unparseable input or a
// cancelled context.
func (d *Driver) Run(ctx context.Context, contents string) (BatchResult, error) {
	meta, questions, err := Parse(contents, d.registry)
	if err != nil {
		return BatchResult{}, fmt.Errorf("parse assignment: %w", err)
	}

	log := d.logger.With(zap.String("job_id", uuid.NewString()))
	log.Info("assignment accepted",
		zap.Int("questions", len(questions)),
		zap.Int("workers", d.workers))

	results := make([]agent.Result, len(questions))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(d.workers)
	for i, question := range questions {
		group.Go(func() error {
			result, runErr := d.runner.Run(groupCtx, question.Problem, question.Language, question.Requirements)
			if runErr != nil {
				return fmt.Errorf("question %d: %w", question.Number, runErr)
			}
			results[i] = result
			log.Info("question session finished",
				zap.Int("question", question.Number),
				zap.String("status", string(result.Status)),
				zap.Int("iterations", result.Iterations))
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return BatchResult{}, err
	}

	batch := BatchResult{Meta: meta, Items: make([]RenderItem, len(questions))}
	for i, question := range questions {
		batch.Items[i] = RenderItem{
			Number:       question.Number,
			Language:     question.Language,
			QuestionText: question.Problem,
			Code:         results[i].Code,
			Output:       results[i].Output,
			Status:       results[i].Status,
		}
		batch.TokensUsed += results[i].TokensUsed
	}
	return batch, nil
}
