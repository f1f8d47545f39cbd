package engine

import (
	"encoding/json"
	"strings"
)

// cleanLabelResponse normalizes known artifacts of the model's list output:
// code fences anywhere in the text and the doubled closing bracket it
// occasionally emits.
func cleanLabelResponse(raw string) string {
	s := strings.ReplaceAll(raw, "]]", "]")
	s = strings.ReplaceAll(s, "```python", "")
	s = strings.ReplaceAll(s, "```json", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

// parseLabelList parses cleaned model output as a JSON list of strings.
func parseLabelList(cleaned string) ([]string, error) {
	var labels []string
	if err := json.Unmarshal([]byte(cleaned), &labels); err != nil {
		return nil, err
	}
	return labels, nil
}
