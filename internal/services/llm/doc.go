// Package llm provides an OpenRouter chat client used for caption translation.
//
// The client sends JSON-only chat completion requests and tolerates the
// usual provider quirks: code-fenced payloads, streaming-style "delta"
// choices, legacy "text" choices and tool-call arguments.
//
// # Translation
//
// Client.Translate sends captions in batches as {"captions":[...]} and
// requires the model to echo every id and interval unchanged. Text is the
// only field taken from the response; a missing, reordered or retimed
// caption fails the whole call with services.ErrCollaborator so the caller
// never applies a partial translation.
//
// # Retry Behaviour
//
// Requests are retried on HTTP 408/429/5xx, network timeouts and empty
// content with exponential backoff (base 1s, max 10s, up to 5 attempts by
// default). Retry-After headers are honoured. Context cancellation aborts
// retries immediately.
package llm
