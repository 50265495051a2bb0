package llm

import (
	"errors"
	"strings"
)

// ErrNoJSON is returned when a response holds no JSON object.
var ErrNoJSON = errors.New("no JSON object in response")

// ExtractJSON locates the JSON object in a model response that may be wrapped in
// Markdown fences or surrounded by prose. It keeps the first '{' through the last '}'.
func ExtractJSON(raw string) (string, error) {
	s := strings.TrimSpace(raw)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		}
	}
	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start == -1 || end < start {
		return "", ErrNoJSON
	}
	return strings.TrimSpace(s[start : end+1]), nil
}
