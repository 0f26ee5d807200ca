package llm

import (
	"context"
	"strings"
)

// SynthesisRequest carries everything one generation attempt needs.
// Feedback is empty on the first iteration and holds the most recent
// diagnostic digest on retries.
type SynthesisRequest struct {
	Language     string
	Problem      string
	Requirements []string
	Feedback     string
}

// SynthesisResult is one generation outcome. Code is the extracted
// candidate source; RawText the unprocessed model output.
type SynthesisResult struct {
	Code       string
	RawText    string
	TokensUsed int
}

// Synthesizer produces candidate source code from a problem statement.
// Ordinary generation failures surface as errors that callers record as
// failed iterations; implementations must not panic.
type Synthesizer interface {
	Synthesize(ctx context.Context, req SynthesisRequest) (SynthesisResult, error)
}

// CritiqueRequest carries a candidate for review. ExecutionOutput is the
// prior run's output when one exists.
type CritiqueRequest struct {
	Problem         string
	Requirements    []string
	Code            string
	ExecutionOutput string
}

// Critic reviews a candidate and returns feedback text. The literal
// substring PASS (any case) is the sole pass signal.
type Critic interface {
	Critique(ctx context.Context, req CritiqueRequest) (string, error)
}

// IsPass reports whether critique feedback authorizes progression. The
// sentinel-string protocol lives here and nowhere else, so it can be
// replaced by a structured field without touching callers.
func IsPass(feedback string) bool {
	return strings.Contains(strings.ToUpper(feedback), "PASS")
}
