package gateway

import (
	"encoding/json"
	"strings"
)

// ExtractJSON pulls a JSON object out of model output. Models wrap JSON in
// markdown fences or lead with prose often enough that taking the outermost
// brace pair is the reliable path. Returns ok=false when no valid object is
// present; callers treat that the same as unavailability.
func ExtractJSON(text string) (json.RawMessage, bool) {
	s := strings.TrimSpace(text)

	// Strip markdown code fences if present.
	if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimPrefix(s, "```")
		if idx := strings.LastIndex(s, "```"); idx >= 0 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return nil, false
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, false
	}
	return json.RawMessage(candidate), true
}
