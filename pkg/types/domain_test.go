package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestCapabilityOperationNames(t *testing.T) {
	for _, c := range AllCapabilities() {
		if !c.Valid() {
			t.Fatalf("capability %q reports invalid", c)
		}
		if c.Operation() == "" {
			t.Fatalf("capability %q has no operation name", c)
		}
	}
}

func TestCapabilityForOperationDisambiguatesSearch(t *testing.T) {
	git := ModelDescriptor{ID: "git-analyzer", Capabilities: []Capability{CapGitAnalyze, CapGitSearch, CapGitDiff}}
	fs := ModelDescriptor{ID: "filesystem", Capabilities: []Capability{CapFsList, CapFsSearch}}

	if c, ok := git.CapabilityForOperation("search"); !ok || c != CapGitSearch {
		t.Fatalf("git search resolved to %q ok=%v", c, ok)
	}
	if c, ok := fs.CapabilityForOperation("search"); !ok || c != CapFsSearch {
		t.Fatalf("fs search resolved to %q ok=%v", c, ok)
	}
}

func TestCapabilityForOperationUnsupported(t *testing.T) {
	fs := ModelDescriptor{ID: "filesystem", Capabilities: []Capability{CapFsList}}
	if _, ok := fs.CapabilityForOperation("analyze"); ok {
		t.Fatal("operation of another model must not resolve")
	}
	if _, ok := fs.CapabilityForOperation("no-such-op"); ok {
		t.Fatal("unknown operation name must not resolve")
	}
}

func TestSupports(t *testing.T) {
	m := ModelDescriptor{ID: "m", Capabilities: []Capability{CapChat}}
	if !m.Supports(CapChat) {
		t.Fatal("expected chat support")
	}
	if m.Supports(CapCompletion) {
		t.Fatal("unexpected completion support")
	}
}

func TestEnvelopeExclusivity(t *testing.T) {
	ok, err := json.Marshal(OK(map[string]any{"k": "v"}))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(ok), `"error"`) {
		t.Fatalf("success envelope carries error: %s", ok)
	}

	fail, err := json.Marshal(Fail("boom"))
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if strings.Contains(string(fail), `"data"`) {
		t.Fatalf("failure envelope carries data: %s", fail)
	}
	if !strings.Contains(string(fail), `"success":false`) {
		t.Fatalf("failure envelope: %s", fail)
	}
}
