package types

// Capability identifies one operation a registered model advertises.
type Capability string

const (
	CapChat       Capability = "chat"
	CapCompletion Capability = "completion"

	CapGitAnalyze Capability = "git_analyze"
	CapGitSearch  Capability = "git_search"
	CapGitDiff    Capability = "git_diff"

	CapFsList         Capability = "fs_list"
	CapFsRead         Capability = "fs_read"
	CapFsReadMultiple Capability = "fs_read_multiple"
	CapFsWrite        Capability = "fs_write"
	CapFsEdit         Capability = "fs_edit"
	CapFsMkdir        Capability = "fs_mkdir"
	CapFsMove         Capability = "fs_move"
	CapFsSearch       Capability = "fs_search"
	CapFsInfo         Capability = "fs_info"

	CapPromQuery       Capability = "prom_query"
	CapPromQueryRange  Capability = "prom_query_range"
	CapPromSeries      Capability = "prom_series"
	CapPromLabels      Capability = "prom_labels"
	CapPromLabelValues Capability = "prom_label_values"
	CapPromTargets     Capability = "prom_targets"
	CapPromRules       Capability = "prom_rules"
	CapPromAlerts      Capability = "prom_alerts"
)

// operationNames maps each capability to its URL operation segment.
// Several capabilities share a segment (git search vs filesystem search);
// the model's advertised capability set disambiguates at dispatch time.
var operationNames = map[Capability]string{
	CapChat:            "chat",
	CapCompletion:      "completion",
	CapGitAnalyze:      "analyze",
	CapGitSearch:       "search",
	CapGitDiff:         "diff",
	CapFsList:          "list",
	CapFsRead:          "read",
	CapFsReadMultiple:  "read-multiple",
	CapFsWrite:         "write",
	CapFsEdit:          "edit",
	CapFsMkdir:         "mkdir",
	CapFsMove:          "move",
	CapFsSearch:        "search",
	CapFsInfo:          "info",
	CapPromQuery:       "query",
	CapPromQueryRange:  "query_range",
	CapPromSeries:      "series",
	CapPromLabels:      "labels",
	CapPromLabelValues: "label_values",
	CapPromTargets:     "targets",
	CapPromRules:       "rules",
	CapPromAlerts:      "alerts",
}

// Operation returns the URL path segment used to invoke the capability.
func (c Capability) Operation() string { return operationNames[c] }

// Valid reports whether c belongs to the closed capability set.
func (c Capability) Valid() bool {
	_, ok := operationNames[c]
	return ok
}

// AllCapabilities lists every member of the closed capability set.
func AllCapabilities() []Capability {
	out := make([]Capability, 0, len(operationNames))
	for c := range operationNames {
		out = append(out, c)
	}
	return out
}

// ModelDescriptor describes a registered model and what it can do.
type ModelDescriptor struct {
	// Stable identifier for the model.
	// example: openai-gpt-chat
	ID string `json:"id" example:"openai-gpt-chat"`
	// Human-friendly name.
	// example: OpenAI gpt-4o-mini
	Name string `json:"name" example:"OpenAI gpt-4o-mini"`
	// Short description of the model or service.
	Description string `json:"description,omitempty"`
	// Capabilities this model advertises. Never empty for a registered model.
	Capabilities []Capability `json:"capabilities"`
	// Context window in tokens; zero for non-LLM services.
	// example: 8192
	ContextLength int `json:"context_length" example:"8192"`
	// Per-token pricing hints, if any.
	Pricing map[string]float64 `json:"pricing,omitempty"`
	// Free-form service metadata (e.g. supports_* flags).
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Supports reports whether the descriptor advertises the given capability.
func (m ModelDescriptor) Supports(c Capability) bool {
	for _, have := range m.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}

// CapabilityForOperation resolves a URL operation segment against the
// descriptor's capability set. ok is false when no advertised capability
// answers to that segment, which callers report the same way regardless of
// whether the segment was a typo or a legitimate but unsupported operation.
func (m ModelDescriptor) CapabilityForOperation(op string) (Capability, bool) {
	for _, c := range m.Capabilities {
		if operationNames[c] == op {
			return c, true
		}
	}
	return "", false
}
