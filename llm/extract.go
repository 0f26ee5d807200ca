package llm

import (
	"regexp"
	"strings"
)

// Models fence code despite the prompt's output rules often enough that
// extraction has to tolerate it.
var fencePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?is)```[a-z+]*\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?is)~~~[a-z+]*\\s*\\n(.*?)\\n~~~"),
}

// ExtractCode pulls clean source code out of a model response, stripping
// markdown fences when present and falling back to the raw text.
func ExtractCode(response string) string {
	response = strings.TrimSpace(response)

	for _, pattern := range fencePatterns {
		if match := pattern.FindStringSubmatch(response); match != nil {
			return strings.TrimSpace(match[1])
		}
	}

	// A response that opens with a fence but never closes it: drop the
	// delimiter lines and keep the body.
	if strings.HasPrefix(response, "```") {
		lines := strings.Split(response, "\n")
		if len(lines) > 2 {
			body := lines[1:]
			if strings.TrimSpace(body[len(body)-1]) == "```" {
				body = body[:len(body)-1]
			}
			return strings.TrimSpace(strings.Join(body, "\n"))
		}
	}

	return response
}
