package llm

import (
	"fmt"
	"strings"
	"time"
)

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *struct {
		Message string `json:"message"`
	} `json:"error"`
}

type chatChoice struct {
	Message responseMessage `json:"message"`
	// Some providers answer with the streaming schema even when stream=false.
	Delta        responseMessage `json:"delta"`
	Text         string          `json:"text"`
	FinishReason string          `json:"finish_reason"`
}

type responseMessage struct {
	Content      string        `json:"content"`
	ToolCalls    []toolCall    `json:"tool_calls"`
	FunctionCall *functionCall `json:"function_call"`
	Refusal      string        `json:"refusal"`
}

type toolCall struct {
	Type     string       `json:"type"`
	ID       string       `json:"id"`
	Function functionCall `json:"function"`
}

type functionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// content returns the first non-empty payload across all choices along with
// the first reported finish reason.
func (r chatResponse) content() (string, string) {
	var finish string
	for _, choice := range r.Choices {
		if finish == "" {
			finish = strings.TrimSpace(choice.FinishReason)
		}
		for _, msg := range []responseMessage{choice.Message, choice.Delta} {
			if text := msg.payload(); text != "" {
				return text, finish
			}
		}
		if text := strings.TrimSpace(choice.Text); text != "" {
			return text, finish
		}
	}
	return "", finish
}

func (r chatResponse) refusal() string {
	for _, choice := range r.Choices {
		if refusal := firstNonEmpty(choice.Message.Refusal, choice.Delta.Refusal); refusal != "" {
			return refusal
		}
	}
	return ""
}

func (m responseMessage) payload() string {
	if text := strings.TrimSpace(m.Content); text != "" {
		return text
	}
	if m.FunctionCall != nil {
		if args := strings.TrimSpace(m.FunctionCall.Arguments); args != "" {
			return args
		}
	}
	for _, call := range m.ToolCalls {
		if args := strings.TrimSpace(call.Function.Arguments); args != "" {
			return args
		}
	}
	return ""
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}

type httpStatusError struct {
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *httpStatusError) Error() string {
	return fmt.Sprintf("llm request: http %d: %s", e.StatusCode, e.Body)
}

type emptyContentError struct {
	Op           string
	FinishReason string
	Refusal      string
	Snippet      string
}

func (e *emptyContentError) Error() string {
	return fmt.Sprintf("%s: empty content (finish_reason=%q, refusal=%q, response_snippet=%s)",
		e.Op, e.FinishReason, e.Refusal, e.Snippet)
}
