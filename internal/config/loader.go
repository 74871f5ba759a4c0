package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	toml "github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// Config holds runtime parameters for the service.
// Zero values mean "unspecified" and will be replaced by defaults in main.
type Config struct {
	Addr string `json:"addr" yaml:"addr" toml:"addr"`

	// FilesystemRoot confines every filesystem capability.
	FilesystemRoot string `json:"filesystem_root" yaml:"filesystem_root" toml:"filesystem_root"`

	PrometheusURL string `json:"prometheus_url" yaml:"prometheus_url" toml:"prometheus_url"`

	OpenAIAPIKey          string `json:"openai_api_key" yaml:"openai_api_key" toml:"openai_api_key"`
	OpenAIChatModel       string `json:"openai_chat_model" yaml:"openai_chat_model" toml:"openai_chat_model"`
	OpenAICompletionModel string `json:"openai_completion_model" yaml:"openai_completion_model" toml:"openai_completion_model"`

	AzureOpenAIAPIKey     string `json:"azure_openai_api_key" yaml:"azure_openai_api_key" toml:"azure_openai_api_key"`
	AzureOpenAIEndpoint   string `json:"azure_openai_endpoint" yaml:"azure_openai_endpoint" toml:"azure_openai_endpoint"`
	AzureOpenAIAPIVersion string `json:"azure_openai_api_version" yaml:"azure_openai_api_version" toml:"azure_openai_api_version"`
	AzureDeploymentName   string `json:"azure_deployment_name" yaml:"azure_deployment_name" toml:"azure_deployment_name"`

	// HandlerTimeoutSec bounds each outbound handler call.
	HandlerTimeoutSec int `json:"handler_timeout_sec" yaml:"handler_timeout_sec" toml:"handler_timeout_sec"`
	MaxBodyBytes      int64 `json:"max_body_bytes" yaml:"max_body_bytes" toml:"max_body_bytes"`

	CORSEnabled        bool     `json:"cors_enabled" yaml:"cors_enabled" toml:"cors_enabled"`
	CORSAllowedOrigins []string `json:"cors_allowed_origins" yaml:"cors_allowed_origins" toml:"cors_allowed_origins"`
	CORSAllowedMethods []string `json:"cors_allowed_methods" yaml:"cors_allowed_methods" toml:"cors_allowed_methods"`
	CORSAllowedHeaders []string `json:"cors_allowed_headers" yaml:"cors_allowed_headers" toml:"cors_allowed_headers"`

	LogLevel string `json:"log_level" yaml:"log_level" toml:"log_level"`
}

// Load reads a configuration file based on its extension.
// Supports: .yaml/.yml, .json, .toml
func Load(path string) (Config, error) {
	var cfg Config
	if path == "" {
		return cfg, fmt.Errorf("empty config path")
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".json":
		if err := json.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	case ".toml":
		if err := toml.Unmarshal(b, &cfg); err != nil {
			return cfg, err
		}
	default:
		return cfg, fmt.Errorf("unsupported config extension: %s", ext)
	}
	return cfg, nil
}
