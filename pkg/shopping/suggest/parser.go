package suggest

import (
	"encoding/json"
	"regexp"
	"strings"
)

const (
	maxQuestions = 4
	minQuestions = 2
	minLength    = 5
)

var (
	quotedQuestionPattern = regexp.MustCompile(`"([^"]*\?)"`)
	listMarkerPattern     = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*(.+\?)\s*$`)
)

// parseQuestions recovers suggested questions from a model response by
// trying progressively looser strategies: a JSON array, quoted
// question strings, bare question lines, then list-marker lines. A
// strategy only wins when it yields at least minQuestions items; a
// single stray match falls through to the next one. Returns nil when
// no strategy reaches the threshold.
func parseQuestions(response string) []string {
	response = stripCodeFence(response)

	if questions := parseJSONArray(response); len(questions) >= minQuestions {
		return questions
	}
	if questions := parseQuotedQuestions(response); len(questions) >= minQuestions {
		return questions
	}
	if questions := parseQuestionLines(response); len(questions) >= minQuestions {
		return questions
	}
	if questions := parseListLines(response); len(questions) >= minQuestions {
		return questions
	}
	return nil
}

// stripCodeFence unwraps a ```json ... ``` block when the model adds one
func stripCodeFence(response string) string {
	trimmed := strings.TrimSpace(response)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}

	trimmed = strings.TrimPrefix(trimmed, "```json")
	trimmed = strings.TrimPrefix(trimmed, "```")
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}

func parseJSONArray(response string) []string {
	startIdx := strings.Index(response, "[")
	endIdx := strings.LastIndex(response, "]")
	if startIdx == -1 || endIdx == -1 || endIdx <= startIdx {
		return nil
	}

	var raw []string
	if err := json.Unmarshal([]byte(response[startIdx:endIdx+1]), &raw); err != nil {
		return nil
	}
	return clean(raw)
}

func parseQuotedQuestions(response string) []string {
	var raw []string
	for _, match := range quotedQuestionPattern.FindAllStringSubmatch(response, -1) {
		raw = append(raw, match[1])
	}
	return clean(raw)
}

func parseQuestionLines(response string) []string {
	var raw []string
	for _, line := range strings.Split(response, "\n") {
		line = strings.Trim(strings.TrimSpace(line), `"',`)
		if strings.HasSuffix(line, "?") && len([]rune(line)) > 10 {
			raw = append(raw, line)
		}
	}
	return clean(raw)
}

func parseListLines(response string) []string {
	var raw []string
	for _, line := range strings.Split(response, "\n") {
		if match := listMarkerPattern.FindStringSubmatch(line); match != nil {
			raw = append(raw, match[1])
		}
	}
	return clean(raw)
}

// clean trims, drops too-short entries, deduplicates and caps the list
func clean(raw []string) []string {
	seen := make(map[string]bool)
	var questions []string
	for _, q := range raw {
		q = strings.TrimSpace(q)
		if len([]rune(q)) <= minLength || seen[q] {
			continue
		}
		seen[q] = true
		questions = append(questions, q)
		if len(questions) >= maxQuestions {
			break
		}
	}
	return questions
}
