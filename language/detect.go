package language

import (
	"fmt"
	"regexp"
	"strings"
)

// declarationPatterns are tried in order against the whole segment text.
// The first capture group is the declared language name. `+` is included
// in the character class so "C++" survives capture.
var declarationPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)programming language:\s*([\w+]+)`),
	regexp.MustCompile(`(?i)language:\s*([\w+]+)`),
	regexp.MustCompile(`(?i)\buse\s+([\w+]+)`),
	regexp.MustCompile(`(?i)\bwrite\s+in\s+([\w+]+)`),
	regexp.MustCompile(`(?i)\bcode\s+in\s+([\w+]+)`),
}

// Detect finds the target runtime declared in a text segment. Explicit
// declaration patterns are tried first; as a fallback the first non-empty
// line is treated as a bare language name.
func (r *Registry) Detect(text string) (Spec, error) {
	for _, pattern := range declarationPatterns {
		match := pattern.FindStringSubmatch(text)
		if match == nil {
			continue
		}
		if spec, ok := r.Lookup(match[1]); ok {
			return spec, nil
		}
		return Spec{}, fmt.Errorf("%w: %s (supported: %s)",
			ErrUnknownLanguage, strings.ToLower(match[1]), strings.Join(r.Names(), ", "))
	}

	if first := firstLine(text); first != "" {
		if spec, ok := r.Lookup(first); ok {
			return spec, nil
		}
	}

	return Spec{}, fmt.Errorf("could not detect programming language: %w (declare one with \"Language: <name>\")",
		ErrUnknownLanguage)
}

func firstLine(text string) string {
	for _, line := range strings.Split(text, "\n") {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
