// Package llmproxy forwards chat and completion calls to OpenAI or Azure
// OpenAI and reshapes the responses into the wire format clients expect.
package llmproxy

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"time"

	openai "github.com/sashabaranov/go-openai"

	"mcpd/pkg/types"
)

// Defaults applied when a request omits the tunables.
const (
	defaultMaxTokens   = 100
	defaultTemperature = 0.7
)

// Config carries provider credentials and upstream model names.
type Config struct {
	APIKey  string
	BaseURL string // override for tests; empty uses the public API

	ChatModel       string // e.g. gpt-4o-mini
	CompletionModel string // e.g. gpt-3.5-turbo-instruct

	AzureAPIKey     string
	AzureEndpoint   string
	AzureAPIVersion string
	AzureDeployment string

	Timeout time.Duration
}

// AzureEnabled reports whether the Azure deployment is usable.
func (c Config) AzureEnabled() bool {
	return c.AzureAPIKey != "" && c.AzureEndpoint != "" && c.AzureDeployment != ""
}

// Service dispatches chat/completion calls to the provider matching the
// registered model id.
type Service struct {
	cfg    Config
	openai *openai.Client
	azure  *openai.Client
}

// New builds provider clients from cfg. The HTTP timeout bounds every
// upstream call; no retries are attempted here.
func New(cfg Config) *Service {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	httpClient := &http.Client{Timeout: cfg.Timeout}

	oaCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oaCfg.BaseURL = cfg.BaseURL
	}
	oaCfg.HTTPClient = httpClient
	svc := &Service{cfg: cfg, openai: openai.NewClientWithConfig(oaCfg)}

	if cfg.AzureEnabled() {
		azCfg := openai.DefaultAzureConfig(cfg.AzureAPIKey, cfg.AzureEndpoint)
		if cfg.AzureAPIVersion != "" {
			azCfg.APIVersion = cfg.AzureAPIVersion
		}
		deployment := cfg.AzureDeployment
		azCfg.AzureModelMapperFunc = func(string) string { return deployment }
		azCfg.HTTPClient = httpClient
		svc.azure = openai.NewClientWithConfig(azCfg)
	}
	return svc
}

// requestTemperature applies the 0.7 default only when the caller omitted the
// field. An explicit 0 is mapped to the smallest positive float32 because the
// provider request marshals temperature with omitempty and would drop a zero.
func requestTemperature(t *float64) float32 {
	if t == nil {
		return defaultTemperature
	}
	if *t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return float32(*t)
}

// providerFor picks the client and upstream model for a registered model id.
func (s *Service) providerFor(modelID string) (*openai.Client, string, string, error) {
	switch modelID {
	case "azure-gpt-4":
		if s.azure == nil {
			return nil, "", "", fmt.Errorf("azure openai is not configured")
		}
		return s.azure, s.cfg.AzureDeployment, s.cfg.AzureDeployment, nil
	case "openai-gpt-completion":
		return s.openai, s.cfg.CompletionModel, s.cfg.ChatModel, nil
	default:
		return s.openai, s.cfg.CompletionModel, s.cfg.ChatModel, nil
	}
}

// Chat runs a chat completion and reshapes the provider response, reporting
// the registered model id rather than the upstream name.
func (s *Service) Chat(ctx context.Context, modelID string, p types.ChatParams) (map[string]any, error) {
	client, _, chatModel, err := s.providerFor(modelID)
	if err != nil {
		return nil, err
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = defaultMaxTokens
	}
	msgs := make([]openai.ChatCompletionMessage, 0, len(p.Messages))
	for _, m := range p.Messages {
		msgs = append(msgs, openai.ChatCompletionMessage{Role: m.Role, Content: m.Content})
	}
	resp, err := client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       chatModel,
		Messages:    msgs,
		MaxTokens:   p.MaxTokens,
		Temperature: requestTemperature(p.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("chat completion: %w", err)
	}
	choices := make([]map[string]any, 0, len(resp.Choices))
	for _, ch := range resp.Choices {
		choices = append(choices, map[string]any{
			"message": map[string]any{
				"role":    ch.Message.Role,
				"content": ch.Message.Content,
			},
			"index":         ch.Index,
			"finish_reason": string(ch.FinishReason),
		})
	}
	return map[string]any{
		"id":      resp.ID,
		"created": resp.Created,
		"model":   modelID,
		"choices": choices,
		"usage": map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}, nil
}

// Completion runs a legacy text completion and reshapes the provider
// response the same way as Chat.
func (s *Service) Completion(ctx context.Context, modelID string, p types.CompletionParams) (map[string]any, error) {
	client, completionModel, _, err := s.providerFor(modelID)
	if err != nil {
		return nil, err
	}
	if p.MaxTokens <= 0 {
		p.MaxTokens = defaultMaxTokens
	}
	resp, err := client.CreateCompletion(ctx, openai.CompletionRequest{
		Model:       completionModel,
		Prompt:      p.Prompt,
		MaxTokens:   p.MaxTokens,
		Temperature: requestTemperature(p.Temperature),
	})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}
	choices := make([]map[string]any, 0, len(resp.Choices))
	for _, ch := range resp.Choices {
		choices = append(choices, map[string]any{
			"text":          ch.Text,
			"index":         ch.Index,
			"finish_reason": ch.FinishReason,
		})
	}
	return map[string]any{
		"id":      resp.ID,
		"created": resp.Created,
		"model":   modelID,
		"choices": choices,
		"usage": map[string]any{
			"prompt_tokens":     resp.Usage.PromptTokens,
			"completion_tokens": resp.Usage.CompletionTokens,
			"total_tokens":      resp.Usage.TotalTokens,
		},
	}, nil
}
