package registry

import (
	"fmt"

	"mcpd/pkg/types"
)

var chatCaps = []types.Capability{types.CapChat}

var gitCaps = []types.Capability{
	types.CapGitAnalyze,
	types.CapGitSearch,
	types.CapGitDiff,
}

var fsCaps = []types.Capability{
	types.CapFsList,
	types.CapFsRead,
	types.CapFsReadMultiple,
	types.CapFsWrite,
	types.CapFsEdit,
	types.CapFsMkdir,
	types.CapFsMove,
	types.CapFsSearch,
	types.CapFsInfo,
}

var promCaps = []types.Capability{
	types.CapPromQuery,
	types.CapPromQueryRange,
	types.CapPromSeries,
	types.CapPromLabels,
	types.CapPromLabelValues,
	types.CapPromTargets,
	types.CapPromRules,
	types.CapPromAlerts,
}

// DefaultCatalog builds the stock descriptor set: three LLM proxies plus the
// git, filesystem and prometheus service models. chatModel and
// completionModel are the upstream OpenAI model names. The Azure descriptor
// is always listed; an unconfigured Azure backend fails at call time, not at
// registration.
func DefaultCatalog(chatModel, completionModel string) []types.ModelDescriptor {
	var catalog []types.ModelDescriptor
	catalog = append(catalog,
		types.ModelDescriptor{
			ID:            "azure-gpt-4",
			Name:          "Azure GPT-4",
			Description:   "Azure OpenAI GPT-4 deployment accessed through the control plane",
			Capabilities:  []types.Capability{types.CapCompletion, types.CapChat},
			ContextLength: 8192,
			Pricing:       map[string]float64{"input_token_price": 0.03, "output_token_price": 0.06},
		},
		types.ModelDescriptor{
			ID:            "openai-gpt-chat",
			Name:          fmt.Sprintf("OpenAI %s", chatModel),
			Description:   fmt.Sprintf("Standard OpenAI %s chat model accessed through the control plane", chatModel),
			Capabilities:  chatCaps,
			ContextLength: 8192,
			Pricing:       map[string]float64{"input_token_price": 0.01, "output_token_price": 0.03},
		},
		types.ModelDescriptor{
			ID:            "openai-gpt-completion",
			Name:          fmt.Sprintf("OpenAI %s", completionModel),
			Description:   fmt.Sprintf("Standard OpenAI %s completion model accessed through the control plane", completionModel),
			Capabilities:  []types.Capability{types.CapCompletion},
			ContextLength: 4096,
			Pricing:       map[string]float64{"input_token_price": 0.0015, "output_token_price": 0.002},
		},
		types.ModelDescriptor{
			ID:           "git-analyzer",
			Name:         "Git Repository Analyzer",
			Description:  "Analyzes Git repositories",
			Capabilities: gitCaps,
			Metadata: map[string]any{
				"supports_analyze": true,
				"supports_search":  true,
				"supports_diff":    true,
			},
		},
		types.ModelDescriptor{
			ID:           "filesystem",
			Name:         "Filesystem Access",
			Description:  "Access to the local filesystem, confined to a configured root",
			Capabilities: fsCaps,
			Metadata: map[string]any{
				"supports_list":   true,
				"supports_read":   true,
				"supports_write":  true,
				"supports_search": true,
			},
		},
		types.ModelDescriptor{
			ID:           "prometheus",
			Name:         "Prometheus Metrics",
			Description:  "Access to a Prometheus server's HTTP API",
			Capabilities: promCaps,
			Metadata: map[string]any{
				"supports_query":       true,
				"supports_query_range": true,
				"supports_series":      true,
				"supports_labels":      true,
				"supports_targets":     true,
				"supports_rules":       true,
				"supports_alerts":      true,
			},
		},
	)
	return catalog
}
