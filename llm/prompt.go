package llm

import (
	"fmt"
	"strings"
)

// buildSynthesisPrompt constructs the generation prompt: expert-programmer
// preamble, the problem, explicit requirements, prior feedback on retries,
// and output rules that forbid markdown fences.
func buildSynthesisPrompt(req SynthesisRequest) string {
	language := strings.ToUpper(req.Language)

	var b strings.Builder
	fmt.Fprintf(&b, "You are an expert %s programmer. Generate clean, production-ready code.\n\n", language)
	fmt.Fprintf(&b, "PROBLEM:\n%s\n\n", req.Problem)
	fmt.Fprintf(&b, "PROGRAMMING LANGUAGE: %s\n\n", language)

	b.WriteString("REQUIREMENTS:\n")
	b.WriteString("1. Write complete, runnable code\n")
	b.WriteString("2. Include all necessary imports\n")
	b.WriteString("3. Handle edge cases and errors\n")
	fmt.Fprintf(&b, "4. Follow %s best practices and style guidelines\n", req.Language)
	for i, requirement := range req.Requirements {
		fmt.Fprintf(&b, "%d. %s\n", i+5, requirement)
	}
	b.WriteString("\n")

	if req.Feedback != "" {
		fmt.Fprintf(&b, "PREVIOUS ATTEMPT FAILED. FEEDBACK:\n%s\n\n", req.Feedback)
		b.WriteString("IMPORTANT: Fix the issues mentioned above and generate improved code.\n\n")
	}

	b.WriteString("CRITICAL OUTPUT RULES:\n")
	b.WriteString("1. DO NOT include markdown code blocks (no ```)\n")
	b.WriteString("2. DO NOT add any explanations before or after the code\n")
	fmt.Fprintf(&b, "3. START IMMEDIATELY with the first line of actual %s code\n", req.Language)
	fmt.Fprintf(&b, "4. END with the last line of actual %s code\n", req.Language)

	return b.String()
}

// buildCritiquePrompt constructs the review prompt. The reviewer must
// answer with the literal token PASS or with concrete failing feedback.
func buildCritiquePrompt(req CritiqueRequest) string {
	var b strings.Builder
	b.WriteString("You are a strict code reviewer.\n\n")
	fmt.Fprintf(&b, "PROBLEM:\n%s\n\n", req.Problem)

	if len(req.Requirements) > 0 {
		b.WriteString("REQUIREMENTS:\n")
		for _, requirement := range req.Requirements {
			fmt.Fprintf(&b, "- %s\n", requirement)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "CANDIDATE CODE:\n%s\n\n", req.Code)

	if req.ExecutionOutput != "" {
		fmt.Fprintf(&b, "LAST EXECUTION OUTPUT:\n%s\n\n", req.ExecutionOutput)
	}

	b.WriteString("If the code fully solves the problem and meets every requirement, ")
	b.WriteString("reply with the single word PASS. Otherwise list the concrete problems, ")
	b.WriteString("one per line, and do not use the word PASS anywhere in your reply.\n")

	return b.String()
}
