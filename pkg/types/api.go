package types

// Envelope is the uniform result wrapper returned by every capability
// invocation. Exactly one of Data/Error is set.
type Envelope struct {
	// Whether the invocation succeeded.
	// example: true
	Success bool `json:"success"`
	// Handler result payload; present only on success.
	Data map[string]any `json:"data,omitempty"`
	// Failure message; present only on failure.
	// example: model not found: azure-gpt-5
	Error string `json:"error,omitempty"`
}

// OK wraps a handler payload as a success envelope.
func OK(data map[string]any) Envelope { return Envelope{Success: true, Data: data} }

// Fail wraps an error message as a failure envelope.
func Fail(msg string) Envelope { return Envelope{Success: false, Error: msg} }

// ModelsResponse wraps the list returned by GET /v1/models.
type ModelsResponse struct {
	// All registered models in registration order.
	Models []ModelDescriptor `json:"models"`
}

// ErrorResponse is the JSON payload for transport-level failures
// (unknown route, malformed body). Application-level failures use Envelope.
type ErrorResponse struct {
	// Error message.
	// example: invalid JSON body
	Error string `json:"error" example:"invalid JSON body"`
	// HTTP status code.
	// example: 400
	Code int `json:"code" example:"400"`
}

// Message is one turn of a chat conversation.
type Message struct {
	// Speaker role: system, user or assistant.
	// example: user
	Role string `json:"role" example:"user"`
	// Message text.
	Content string `json:"content"`
}

// ChatParams are the validated parameters for the chat capability.
type ChatParams struct {
	// Ordered conversation so far. Must be non-empty.
	Messages []Message `json:"messages"`
	// Maximum tokens to generate. Defaults to 100.
	MaxTokens int `json:"max_tokens,omitempty" example:"100"`
	// Sampling temperature. Defaults to 0.7 when omitted; an explicit 0 is
	// honored, hence the pointer.
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
}

// CompletionParams are the validated parameters for the completion capability.
type CompletionParams struct {
	// Prompt text to complete. Required.
	Prompt string `json:"prompt"`
	// Maximum tokens to generate. Defaults to 100.
	MaxTokens int `json:"max_tokens,omitempty" example:"100"`
	// Sampling temperature. Defaults to 0.7 when omitted; an explicit 0 is
	// honored, hence the pointer.
	Temperature *float64 `json:"temperature,omitempty" example:"0.7"`
}

// GitParams parameterize the git capability family. Pattern is only
// meaningful for search.
type GitParams struct {
	// Clone URL of the repository. Required.
	RepoURL string `json:"repo_url"`
	// Content pattern for search.
	Pattern string `json:"pattern,omitempty"`
}

// FileEdit is a single oldText/newText replacement applied by fs edit.
type FileEdit struct {
	OldText string `json:"oldText"`
	NewText string `json:"newText"`
}
