package services

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ExtractJSON parses a model response that should contain a JSON object,
// tolerating a markdown code fence around it. Both generation stages go
// through this one routine; callers decide what to do with a parse failure.
func ExtractJSON(raw string, out any) error {
	s := stripCodeFence(raw)
	if err := json.Unmarshal([]byte(s), out); err != nil {
		return fmt.Errorf("model output is not valid JSON: %w", err)
	}
	return nil
}

// stripCodeFence returns the content between the first pair of triple
// backticks, dropping a leading "json" language tag. Text without a fence
// comes back trimmed and untouched.
func stripCodeFence(raw string) string {
	s := strings.TrimSpace(raw)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	parts := strings.Split(s, "```")
	if len(parts) < 2 {
		return s
	}
	body := parts[1]
	if strings.HasPrefix(body, "json") {
		body = body[len("json"):]
	}
	return strings.TrimSpace(body)
}
