package ai

import (
	"encoding/json"
	"regexp"
	"strings"

	"github.com/Vovarama1992/paper2deck/internal/domain"
)

var upstreamPrefix = regexp.MustCompile(`^\[.*?\]\s*`)

// cleanUpstreamMessage strips provider prefixes like "[GoogleGenerativeAI Error]: ".
func cleanUpstreamMessage(msg string) string {
	msg = strings.TrimSpace(msg)
	msg = upstreamPrefix.ReplaceAllString(msg, "")
	return strings.TrimSpace(strings.TrimPrefix(msg, ":"))
}

// parseJSONText validates the model's text payload. Markdown fences some
// models add despite the JSON mode are removed first.
func parseJSONText(text string) (json.RawMessage, error) {
	text = strings.TrimSpace(text)
	if strings.HasPrefix(text, "```") {
		text = strings.TrimPrefix(text, "```json")
		text = strings.TrimPrefix(text, "```JSON")
		text = strings.TrimPrefix(text, "```")
		text = strings.TrimSuffix(strings.TrimSpace(text), "```")
		text = strings.TrimSpace(text)
	}
	if text == "" {
		return nil, domain.UpstreamError("AI returned an empty response", nil)
	}
	if !json.Valid([]byte(text)) {
		return nil, domain.ParseError("AI response is not valid JSON", nil)
	}
	return json.RawMessage(text), nil
}

func authMessage(msg string) string {
	msg = cleanUpstreamMessage(msg)
	if msg == "" {
		return "invalid API key or access denied by the AI provider"
	}
	return msg
}
