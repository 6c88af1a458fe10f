package pipeline

import "strings"

// cleanJSON extracts a JSON value from model output that may be wrapped in
// markdown code fences or surrounding prose. Routing replies are arrays,
// everything else is an object, so both bracket pairs are handled.
func cleanJSON(text string) string {
	text = strings.TrimSpace(text)

	// Strip markdown code fences.
	if strings.HasPrefix(text, "```json") {
		text = strings.TrimPrefix(text, "```json")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	} else if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```")
		if idx := strings.LastIndex(text, "```"); idx >= 0 {
			text = text[:idx]
		}
	}

	objStart := strings.Index(text, "{")
	arrStart := strings.Index(text, "[")

	// Whichever bracket opens first wins.
	if arrStart >= 0 && (objStart < 0 || arrStart < objStart) {
		if end := strings.LastIndex(text, "]"); end > arrStart {
			return strings.TrimSpace(text[arrStart : end+1])
		}
	}
	if objStart >= 0 {
		if end := strings.LastIndex(text, "}"); end > objStart {
			return strings.TrimSpace(text[objStart : end+1])
		}
	}

	return strings.TrimSpace(text)
}
