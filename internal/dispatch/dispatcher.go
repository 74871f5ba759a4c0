// Package dispatch routes (model, operation, parameters) triples to their
// capability handlers and normalizes every outcome into an Envelope. The
// HTTP layer above it never needs capability-specific error handling: any
// failure a handler can produce comes back as {success:false, error}.
package dispatch

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"mcpd/internal/registry"
	"mcpd/pkg/types"
)

// LLMService serves the chat and completion capabilities.
type LLMService interface {
	Chat(ctx context.Context, modelID string, p types.ChatParams) (map[string]any, error)
	Completion(ctx context.Context, modelID string, p types.CompletionParams) (map[string]any, error)
}

// GitService serves the git capability family.
type GitService interface {
	Analyze(ctx context.Context, repoURL string) (map[string]any, error)
	Search(ctx context.Context, repoURL, pattern string) (map[string]any, error)
	Diff(ctx context.Context, repoURL string) (map[string]any, error)
}

// FsService serves the filesystem capability family.
type FsService interface {
	List(path string) (map[string]any, error)
	Read(path string) (map[string]any, error)
	ReadMultiple(paths []string) (map[string]any, error)
	Write(path, content string) (map[string]any, error)
	Edit(path string, edits []types.FileEdit, dryRun bool) (map[string]any, error)
	Mkdir(path string) (map[string]any, error)
	Move(source, destination string) (map[string]any, error)
	Search(path, pattern string, exclude []string) (map[string]any, error)
	Info(path string) (map[string]any, error)
}

// PromService serves the prometheus capability family.
type PromService interface {
	Query(ctx context.Context, query, ts string) (map[string]any, error)
	QueryRange(ctx context.Context, query, start, end, step string) (map[string]any, error)
	Series(ctx context.Context, match []string, start, end string) (map[string]any, error)
	Labels(ctx context.Context) (map[string]any, error)
	LabelValues(ctx context.Context, label string) (map[string]any, error)
	Targets(ctx context.Context) (map[string]any, error)
	Rules(ctx context.Context) (map[string]any, error)
	Alerts(ctx context.Context) (map[string]any, error)
}

// Defaults applied when corresponding Config fields are unset.
const (
	defaultNetworkTimeout = 60 * time.Second
	defaultLocalTimeout   = 10 * time.Second
)

// Config encapsulates dispatcher construction.
type Config struct {
	Registry *registry.Registry
	LLM      LLMService
	Git      GitService
	Fs       FsService
	Prom     PromService
	// NetworkTimeout bounds handlers making outbound calls (llm, git, prom).
	NetworkTimeout time.Duration
	// LocalTimeout bounds filesystem handlers.
	LocalTimeout time.Duration
	Logger       zerolog.Logger
}

// Dispatcher owns the capability routing table. It holds no per-request
// state; concurrent Dispatch calls share only the read-only registry.
type Dispatcher struct {
	reg        *registry.Registry
	llm        LLMService
	git        GitService
	fs         FsService
	prom       PromService
	netTimeout time.Duration
	fsTimeout  time.Duration
	log        zerolog.Logger
}

// New constructs a Dispatcher from cfg, applying package defaults for
// unset timeouts.
func New(cfg Config) *Dispatcher {
	if cfg.NetworkTimeout <= 0 {
		cfg.NetworkTimeout = defaultNetworkTimeout
	}
	if cfg.LocalTimeout <= 0 {
		cfg.LocalTimeout = defaultLocalTimeout
	}
	return &Dispatcher{
		reg:        cfg.Registry,
		llm:        cfg.LLM,
		git:        cfg.Git,
		fs:         cfg.Fs,
		prom:       cfg.Prom,
		netTimeout: cfg.NetworkTimeout,
		fsTimeout:  cfg.LocalTimeout,
		log:        cfg.Logger,
	}
}

// Models lists the registered descriptors in registration order.
func (d *Dispatcher) Models() []types.ModelDescriptor { return d.reg.List() }

// Ready reports whether the dispatcher can serve requests. All backends are
// wired at construction time, so a built dispatcher is a ready one.
func (d *Dispatcher) Ready() bool { return d.reg != nil }

// Model returns one descriptor.
func (d *Dispatcher) Model(id string) (types.ModelDescriptor, error) { return d.reg.Lookup(id) }

// Dispatch routes one capability invocation and always returns an Envelope;
// it never panics past this boundary for taxonomy errors. An empty model id
// is reported as an unknown model, and an operation name outside the closed
// set is reported exactly like an unsupported capability.
func (d *Dispatcher) Dispatch(ctx context.Context, modelID, operation string, params map[string]any) types.Envelope {
	desc, err := d.reg.Lookup(modelID)
	if err != nil {
		return types.Fail(err.Error())
	}
	cap, ok := desc.CapabilityForOperation(operation)
	if !ok {
		return types.Fail(ErrUnsupportedCapability(modelID, operation).Error())
	}

	start := time.Now()
	data, err := d.invoke(ctx, desc, cap, params)
	ev := d.log.Debug().
		Str("model", modelID).
		Str("capability", string(cap)).
		Dur("dur", time.Since(start))
	if err != nil {
		ev.Err(err).Msg("dispatch failed")
		return types.Fail(err.Error())
	}
	ev.Msg("dispatch ok")
	return types.OK(data)
}

// timeoutFor returns the handler budget: network-bound capabilities get the
// larger budget, filesystem ops the smaller one.
func (d *Dispatcher) timeoutFor(cap types.Capability) time.Duration {
	switch cap {
	case types.CapFsList, types.CapFsRead, types.CapFsReadMultiple, types.CapFsWrite,
		types.CapFsEdit, types.CapFsMkdir, types.CapFsMove, types.CapFsSearch, types.CapFsInfo:
		return d.fsTimeout
	default:
		return d.netTimeout
	}
}

// invoke validates parameters for cap and runs its handler. The switch is
// exhaustive over the closed capability set.
func (d *Dispatcher) invoke(ctx context.Context, desc types.ModelDescriptor, cap types.Capability, params map[string]any) (map[string]any, error) {
	ctx, cancel := context.WithTimeout(ctx, d.timeoutFor(cap))
	defer cancel()

	switch cap {
	case types.CapChat:
		var p types.ChatParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if len(p.Messages) == 0 {
			return nil, ErrInvalidParameter("messages must be a non-empty list")
		}
		for i, m := range p.Messages {
			if m.Role == "" || m.Content == "" {
				return nil, ErrInvalidParameter(fmt.Sprintf("messages[%d] must have role and content", i))
			}
		}
		return d.llm.Chat(ctx, desc.ID, p)

	case types.CapCompletion:
		var p types.CompletionParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Prompt == "" {
			return nil, ErrInvalidParameter("prompt is required")
		}
		return d.llm.Completion(ctx, desc.ID, p)

	case types.CapGitAnalyze, types.CapGitSearch, types.CapGitDiff:
		var p types.GitParams
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.RepoURL == "" {
			return nil, ErrInvalidParameter("repo_url is required")
		}
		switch cap {
		case types.CapGitSearch:
			if p.Pattern == "" {
				return nil, ErrInvalidParameter("pattern is required")
			}
			return d.git.Search(ctx, p.RepoURL, p.Pattern)
		case types.CapGitDiff:
			return d.git.Diff(ctx, p.RepoURL)
		default:
			return d.git.Analyze(ctx, p.RepoURL)
		}

	case types.CapFsList:
		var p struct {
			Path string `json:"path"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			p.Path = "."
		}
		return d.fs.List(p.Path)

	case types.CapFsRead:
		var p struct {
			Path string `json:"path"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, ErrInvalidParameter("path is required")
		}
		return d.fs.Read(p.Path)

	case types.CapFsReadMultiple:
		var p struct {
			Paths []string `json:"paths"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if len(p.Paths) == 0 {
			return nil, ErrInvalidParameter("paths must be a non-empty list")
		}
		return d.fs.ReadMultiple(p.Paths)

	case types.CapFsWrite:
		var p struct {
			Path    string `json:"path"`
			Content string `json:"content"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, ErrInvalidParameter("path is required")
		}
		return d.fs.Write(p.Path, p.Content)

	case types.CapFsEdit:
		var p struct {
			Path   string           `json:"path"`
			Edits  []types.FileEdit `json:"edits"`
			DryRun bool             `json:"dry_run"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, ErrInvalidParameter("path is required")
		}
		if len(p.Edits) == 0 {
			return nil, ErrInvalidParameter("edits must be a non-empty list")
		}
		return d.fs.Edit(p.Path, p.Edits, p.DryRun)

	case types.CapFsMkdir:
		var p struct {
			Path string `json:"path"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, ErrInvalidParameter("path is required")
		}
		return d.fs.Mkdir(p.Path)

	case types.CapFsMove:
		var p struct {
			Source      string `json:"source"`
			Destination string `json:"destination"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Source == "" || p.Destination == "" {
			return nil, ErrInvalidParameter("source and destination are required")
		}
		return d.fs.Move(p.Source, p.Destination)

	case types.CapFsSearch:
		var p struct {
			Path            string   `json:"path"`
			Pattern         string   `json:"pattern"`
			ExcludePatterns []string `json:"exclude_patterns"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			p.Path = "."
		}
		if p.Pattern == "" {
			return nil, ErrInvalidParameter("pattern is required")
		}
		return d.fs.Search(p.Path, p.Pattern, p.ExcludePatterns)

	case types.CapFsInfo:
		var p struct {
			Path string `json:"path"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Path == "" {
			return nil, ErrInvalidParameter("path is required")
		}
		return d.fs.Info(p.Path)

	case types.CapPromQuery:
		var p struct {
			Query string `json:"query"`
			Time  string `json:"time"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Query == "" {
			return nil, ErrInvalidParameter("query is required")
		}
		return d.prom.Query(ctx, p.Query, p.Time)

	case types.CapPromQueryRange:
		var p struct {
			Query string `json:"query"`
			Start string `json:"start"`
			End   string `json:"end"`
			Step  string `json:"step"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.Query == "" || p.Start == "" || p.End == "" || p.Step == "" {
			return nil, ErrInvalidParameter("query, start, end and step are required")
		}
		return d.prom.QueryRange(ctx, p.Query, p.Start, p.End, p.Step)

	case types.CapPromSeries:
		var p struct {
			Match []string `json:"match"`
			Start string   `json:"start"`
			End   string   `json:"end"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if len(p.Match) == 0 {
			return nil, ErrInvalidParameter("match must be a non-empty list")
		}
		return d.prom.Series(ctx, p.Match, p.Start, p.End)

	case types.CapPromLabels:
		return d.prom.Labels(ctx)

	case types.CapPromLabelValues:
		var p struct {
			LabelName string `json:"label_name"`
		}
		if err := decodeParams(params, &p); err != nil {
			return nil, err
		}
		if p.LabelName == "" {
			return nil, ErrInvalidParameter("label_name is required")
		}
		return d.prom.LabelValues(ctx, p.LabelName)

	case types.CapPromTargets:
		return d.prom.Targets(ctx)

	case types.CapPromRules:
		return d.prom.Rules(ctx)

	case types.CapPromAlerts:
		return d.prom.Alerts(ctx)

	default:
		// Unreachable while the operation table and this switch stay in
		// sync; reported like any other unsupported capability.
		return nil, ErrUnsupportedCapability(desc.ID, cap.Operation())
	}
}

// decodeParams maps the raw parameter bag onto a typed struct. Unknown keys
// are ignored; type mismatches become InvalidParameter errors.
func decodeParams(params map[string]any, into any) error {
	if params == nil {
		params = map[string]any{}
	}
	b, err := json.Marshal(params)
	if err != nil {
		return ErrInvalidParameter("parameters are not serializable: " + err.Error())
	}
	if err := json.Unmarshal(b, into); err != nil {
		return ErrInvalidParameter("invalid parameters: " + err.Error())
	}
	return nil
}
