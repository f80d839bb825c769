package llm

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// DecodeLLMJSON unmarshals a model answer into target. When the raw text is
// not valid JSON it retries on the object or array found inside markdown
// fences or surrounding prose.
func DecodeLLMJSON(content string, target any) error {
	raw := strings.TrimSpace(content)
	if raw == "" {
		return errors.New("empty payload")
	}
	err := json.Unmarshal([]byte(raw), target)
	if err == nil {
		return nil
	}
	inner := extractJSON(raw)
	if inner == "" || inner == raw {
		return fmt.Errorf("%w (payload snippet: %s)", err, summarizePayloadSnippet(raw))
	}
	if err := json.Unmarshal([]byte(inner), target); err != nil {
		return fmt.Errorf("%w (sanitized payload snippet: %s)", err, summarizePayloadSnippet(inner))
	}
	return nil
}

// extractJSON drops a ```json fence and then any text before the first
// opening brace (or bracket) and after its last closing partner.
func extractJSON(content string) string {
	body := unfence(content)
	if body == "" || strings.IndexByte("{[", body[0]) >= 0 {
		return body
	}
	for _, delims := range []string{"{}", "[]"} {
		open := strings.IndexByte(body, delims[0])
		closing := strings.LastIndexByte(body, delims[1])
		if open >= 0 && closing > open {
			return strings.TrimSpace(body[open : closing+1])
		}
	}
	return body
}

func unfence(content string) string {
	body, fenced := strings.CutPrefix(strings.TrimSpace(content), "```")
	if !fenced {
		return strings.TrimSpace(content)
	}
	body = strings.TrimLeft(body, " \t\r\n")
	if len(body) >= 4 && strings.EqualFold(body[:4], "json") {
		body = body[4:]
	}
	if end := strings.LastIndex(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}

// summarizePayloadSnippet collapses whitespace and keeps the first 160 runes.
func summarizePayloadSnippet(content string) string {
	const limit = 160
	clean := strings.Join(strings.Fields(content), " ")
	if clean == "" {
		return "<empty>"
	}
	if r := []rune(clean); len(r) > limit {
		return string(r[:limit]) + "..."
	}
	return clean
}
