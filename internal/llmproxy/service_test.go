package llmproxy

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"mcpd/pkg/types"
)

// fakeProvider stands in for the OpenAI API, recording the upstream request.
func fakeProvider(t *testing.T) (*httptest.Server, *map[string]any) {
	t.Helper()
	var captured map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = map[string]any{}
		if err := json.NewDecoder(r.Body).Decode(&captured); err != nil {
			t.Errorf("decode request: %v", err)
		}
		captured["__path"] = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/chat/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "chatcmpl-123",
				"object":  "chat.completion",
				"created": 1700000000,
				"model":   "gpt-4o-mini",
				"choices": []map[string]any{{
					"index":         0,
					"message":       map[string]any{"role": "assistant", "content": "hello there"},
					"finish_reason": "stop",
				}},
				"usage": map[string]any{"prompt_tokens": 5, "completion_tokens": 3, "total_tokens": 8},
			})
		case "/completions":
			_ = json.NewEncoder(w).Encode(map[string]any{
				"id":      "cmpl-456",
				"object":  "text_completion",
				"created": 1700000000,
				"model":   "gpt-3.5-turbo-instruct",
				"choices": []map[string]any{{
					"text":          " completed text",
					"index":         0,
					"finish_reason": "length",
				}},
				"usage": map[string]any{"prompt_tokens": 2, "completion_tokens": 4, "total_tokens": 6},
			})
		default:
			http.NotFound(w, r)
		}
	}))
	return srv, &captured
}

func newTestService(t *testing.T) (*Service, *map[string]any) {
	t.Helper()
	srv, captured := fakeProvider(t)
	t.Cleanup(srv.Close)
	return New(Config{
		APIKey:          "test-key",
		BaseURL:         srv.URL,
		ChatModel:       "gpt-4o-mini",
		CompletionModel: "gpt-3.5-turbo-instruct",
	}), captured
}

func TestChatReshapesResponse(t *testing.T) {
	s, captured := newTestService(t)
	out, err := s.Chat(context.Background(), "openai-gpt-chat", types.ChatParams{
		Messages: []types.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if out["id"] != "chatcmpl-123" {
		t.Fatalf("id=%v", out["id"])
	}
	// The registered model id is reported, not the upstream name.
	if out["model"] != "openai-gpt-chat" {
		t.Fatalf("model=%v", out["model"])
	}
	choices := out["choices"].([]map[string]any)
	if len(choices) != 1 {
		t.Fatalf("choices=%v", choices)
	}
	msg := choices[0]["message"].(map[string]any)
	if msg["content"] != "hello there" || msg["role"] != "assistant" {
		t.Fatalf("message=%v", msg)
	}
	usage := out["usage"].(map[string]any)
	if usage["total_tokens"] != 8 {
		t.Fatalf("usage=%v", usage)
	}
	if (*captured)["model"] != "gpt-4o-mini" {
		t.Fatalf("upstream model=%v", (*captured)["model"])
	}
}

func TestChatAppliesDefaults(t *testing.T) {
	s, captured := newTestService(t)
	_, err := s.Chat(context.Background(), "openai-gpt-chat", types.ChatParams{
		Messages: []types.Message{{Role: "user", Content: "hi"}},
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	if (*captured)["max_tokens"] != float64(defaultMaxTokens) {
		t.Fatalf("max_tokens=%v", (*captured)["max_tokens"])
	}
	if (*captured)["temperature"] != defaultTemperature {
		t.Fatalf("temperature=%v", (*captured)["temperature"])
	}
}

func TestChatHonorsExplicitZeroTemperature(t *testing.T) {
	s, captured := newTestService(t)
	zero := 0.0
	_, err := s.Chat(context.Background(), "openai-gpt-chat", types.ChatParams{
		Messages:    []types.Message{{Role: "user", Content: "hi"}},
		Temperature: &zero,
	})
	if err != nil {
		t.Fatalf("Chat: %v", err)
	}
	// A requested 0 must not be replaced by the 0.7 default. It reaches the
	// provider as the smallest positive float32 so the field survives
	// marshaling.
	got, ok := (*captured)["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from upstream request: %v", *captured)
	}
	if got <= 0 || got > 1e-6 {
		t.Fatalf("temperature=%v, want near-zero", got)
	}
}

func TestCompletionHonorsExplicitZeroTemperature(t *testing.T) {
	s, captured := newTestService(t)
	zero := 0.0
	_, err := s.Completion(context.Background(), "openai-gpt-completion", types.CompletionParams{
		Prompt:      "once upon",
		Temperature: &zero,
	})
	if err != nil {
		t.Fatalf("Completion: %v", err)
	}
	got, ok := (*captured)["temperature"].(float64)
	if !ok {
		t.Fatalf("temperature missing from upstream request: %v", *captured)
	}
	if got <= 0 || got > 1e-6 {
		t.Fatalf("temperature=%v, want near-zero", got)
	}
}

func TestCompletionReshapesResponse(t *testing.T) {
	s, captured := newTestService(t)
	out, err := s.Completion(context.Background(), "openai-gpt-completion", types.CompletionParams{
		Prompt:    "once upon",
		MaxTokens: 32,
	})
	if err != nil {
		t.Fatalf("Completion: %v", err)
	}
	if out["id"] != "cmpl-456" || out["model"] != "openai-gpt-completion" {
		t.Fatalf("out=%v", out)
	}
	choices := out["choices"].([]map[string]any)
	if choices[0]["text"] != " completed text" {
		t.Fatalf("choices=%v", choices)
	}
	if (*captured)["__path"] != "/completions" {
		t.Fatalf("path=%v", (*captured)["__path"])
	}
	if (*captured)["model"] != "gpt-3.5-turbo-instruct" {
		t.Fatalf("upstream model=%v", (*captured)["model"])
	}
	if (*captured)["max_tokens"] != float64(32) {
		t.Fatalf("max_tokens=%v", (*captured)["max_tokens"])
	}
}

func TestAzureUnconfigured(t *testing.T) {
	s, _ := newTestService(t)
	if _, err := s.Chat(context.Background(), "azure-gpt-4", types.ChatParams{
		Messages: []types.Message{{Role: "user", Content: "hi"}},
	}); err == nil {
		t.Fatal("expected error for unconfigured azure model")
	}
}

func TestAzureEnabled(t *testing.T) {
	cases := []struct {
		cfg  Config
		want bool
	}{
		{Config{}, false},
		{Config{AzureAPIKey: "k"}, false},
		{Config{AzureAPIKey: "k", AzureEndpoint: "https://x"}, false},
		{Config{AzureAPIKey: "k", AzureEndpoint: "https://x", AzureDeployment: "d"}, true},
	}
	for i, tc := range cases {
		if got := tc.cfg.AzureEnabled(); got != tc.want {
			t.Fatalf("case %d: got %v", i, got)
		}
	}
}
