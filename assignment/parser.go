package assignment

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/forgeworks/codeforge/language"
)

var (
	// ErrEmptyFile is returned when the input has no content.
	ErrEmptyFile = errors.New("input file is empty")
	// ErrNoQuestions is returned when no question segments are found.
	ErrNoQuestions = errors.New("no question segments found")
	// ErrEmptyProblem is returned when a segment has no problem text
	// left after stripping structural markers.
	ErrEmptyProblem = errors.New("question problem text is empty")
)

// Meta is the assignment-wide metadata attached to the rendered output.
type Meta struct {
	Subject          string
	AssignmentNumber string
	StudentName      string
	StudentClass     string
	StudentDivision  string
	StudentRollNo    string
	StudentBatch     string
}

// Question is one unit of work extracted from an input file. Immutable
// once parsed; one Question yields exactly one session.
type Question struct {
	Number       int
	Language     string
	Problem      string
	Requirements []string
}

// questionMarker splits the file into segments: a line starting with
// "Q1)", "Q2.", "Question 3:" and so on.
var questionMarker = regexp.MustCompile(`(?mi)^[ \t]*q(?:uestion)?[ \t]*(\d+)[ \t]*[).:-]?[ \t]*`)

// languageLine matches an explicit language declaration line, which is
// structural and stripped from the problem text.
var languageLine = regexp.MustCompile(`(?i)^[ \t]*(?:programming[ \t]+)?language[ \t]*:`)

// Parse extracts assignment metadata and the ordered question list from
// the raw file contents.
func Parse(contents string, registry *language.Registry) (Meta, []Question, error) {
	if strings.TrimSpace(contents) == "" {
		return Meta{}, nil, ErrEmptyFile
	}

	markers := questionMarker.FindAllStringSubmatchIndex(contents, -1)
	if len(markers) == 0 {
		return Meta{}, nil, ErrNoQuestions
	}

	meta := parseMeta(contents[:markers[0][0]])

	questions := make([]Question, 0, len(markers))
	for i, marker := range markers {
		number, _ := strconv.Atoi(contents[marker[2]:marker[3]])

		end := len(contents)
		if i+1 < len(markers) {
			end = markers[i+1][0]
		}
		segment := contents[marker[1]:end]

		question, err := parseSegment(number, segment, registry)
		if err != nil {
			return Meta{}, nil, fmt.Errorf("question %d: %w", number, err)
		}
		questions = append(questions, question)
	}

	return meta, questions, nil
}

// parseMeta reads "Key: Value" header lines preceding the first question.
func parseMeta(header string) Meta {
	var meta Meta
	for _, line := range strings.Split(header, "\n") {
		key, value, found := strings.Cut(line, ":")
		if !found {
			continue
		}
		value = strings.TrimSpace(value)
		switch normalizeKey(key) {
		case "subject":
			meta.Subject = value
		case "assignment", "assignmentnumber", "assignmentno":
			meta.AssignmentNumber = value
		case "name", "studentname":
			meta.StudentName = value
		case "class":
			meta.StudentClass = value
		case "div", "division":
			meta.StudentDivision = value
		case "rollno", "roll":
			meta.StudentRollNo = value
		case "batch":
			meta.StudentBatch = value
		}
	}
	return meta
}

func normalizeKey(key string) string {
	key = strings.ToLower(strings.TrimSpace(key))
	key = strings.ReplaceAll(key, " ", "")
	return strings.ReplaceAll(key, ".", "")
}

// parseSegment extracts one question from its segment text: detect the
// target language, split off the requirement list, and strip structural
// markers from the problem body.
func parseSegment(number int, segment string, registry *language.Registry) (Question, error) {
	spec, err := registry.Detect(segment)
	if err != nil {
		return Question{}, err
	}

	var problemLines []string
	var requirements []string
	inRequirements := false
	languageStripped := false

	for _, line := range strings.Split(segment, "\n") {
		trimmed := strings.TrimSpace(line)

		if isRequirementsHeader(trimmed) {
			inRequirements = true
			continue
		}

		if inRequirements {
			if trimmed == "" {
				inRequirements = false
				continue
			}
			requirements = append(requirements, stripListMarker(trimmed))
			continue
		}

		// Structural lines are not part of the problem statement.
		if languageLine.MatchString(line) {
			continue
		}
		if !languageStripped && strings.EqualFold(trimmed, spec.Name) {
			languageStripped = true
			continue
		}
		if rest, ok := stripProblemHeader(trimmed); ok {
			if rest != "" {
				problemLines = append(problemLines, rest)
			}
			continue
		}

		problemLines = append(problemLines, line)
	}

	problem := strings.TrimSpace(strings.Join(problemLines, "\n"))
	if problem == "" {
		return Question{}, ErrEmptyProblem
	}

	return Question{
		Number:       number,
		Language:     spec.Name,
		Problem:      problem,
		Requirements: requirements,
	}, nil
}

func isRequirementsHeader(line string) bool {
	lowered := strings.ToLower(strings.TrimSuffix(line, ":"))
	return lowered == "requirements" || lowered == "requirement"
}

// stripProblemHeader removes a leading "Problem:" or "Task:" marker,
// keeping any statement text that follows it on the same line.
func stripProblemHeader(line string) (string, bool) {
	for _, header := range []string{"problem", "task"} {
		lowered := strings.ToLower(line)
		if lowered == header {
			return "", true
		}
		if strings.HasPrefix(lowered, header+":") {
			return strings.TrimSpace(line[len(header)+1:]), true
		}
	}
	return "", false
}

var listMarker = regexp.MustCompile(`^(?:[-*]|\d+[.)])\s*`)

func stripListMarker(line string) string {
	return listMarker.ReplaceAllString(line, "")
}
