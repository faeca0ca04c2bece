package pipeline

import (
	"encoding/json"
	"strings"

	"github.com/orchidautomation/playbook-cli/internal/workflow"
)

// cleanJSON strips markdown code fences and any prose surrounding the JSON
// object in a model reply.
func cleanJSON(text string) string {
	cleaned := strings.TrimSpace(text)

	if strings.HasPrefix(cleaned, "```json") {
		cleaned = strings.TrimPrefix(cleaned, "```json")
	} else if strings.HasPrefix(cleaned, "```") {
		cleaned = strings.TrimPrefix(cleaned, "```")
	}
	cleaned = strings.TrimSuffix(strings.TrimSpace(cleaned), "```")
	cleaned = strings.TrimSpace(cleaned)

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		cleaned = cleaned[start : end+1]
	}

	return cleaned
}

// decodeReply parses a model reply into the expected shape. A reply that does
// not decode is a shape mismatch, not a transport failure.
func decodeReply[T any](stage, text string) (T, error) {
	var out T
	if err := json.Unmarshal([]byte(cleanJSON(text)), &out); err != nil {
		return out, workflow.ShapeMismatchErr(stage+": reply did not match expected shape", err)
	}
	return out, nil
}
