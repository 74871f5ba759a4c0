package gitsvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/object"
)

// seedRepo creates a local repository with the given file contents per
// commit. Each map is one commit, applied in order.
func seedRepo(t *testing.T, commits []map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	repo, err := git.PlainInit(dir, false)
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	wt, err := repo.Worktree()
	if err != nil {
		t.Fatalf("worktree: %v", err)
	}
	for i, files := range commits {
		for name, content := range files {
			p := filepath.Join(dir, name)
			if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
				t.Fatalf("mkdir: %v", err)
			}
			if err := os.WriteFile(p, []byte(content), 0o644); err != nil {
				t.Fatalf("write: %v", err)
			}
			if _, err := wt.Add(name); err != nil {
				t.Fatalf("add %s: %v", name, err)
			}
		}
		sig := &object.Signature{Name: "Tester", Email: "t@example.com", When: time.Now()}
		if _, err := wt.Commit(fmt.Sprintf("commit %d", i), &git.CommitOptions{Author: sig, Committer: sig}); err != nil {
			t.Fatalf("commit: %v", err)
		}
	}
	return dir
}

func TestAnalyze(t *testing.T) {
	dir := seedRepo(t, []map[string]string{{
		"main.py":       "print('hi')\n",
		"web/app.js":    "console.log(1)\n",
		"web/index.html": "<html></html>\n",
		"README.md":     "readme\n",
	}})

	out, err := New().Analyze(context.Background(), dir)
	if err != nil {
		t.Fatalf("Analyze: %v", err)
	}
	if out["file_count"] != 4 {
		t.Fatalf("file_count=%v", out["file_count"])
	}
	if out["active_branch"] != "master" {
		t.Fatalf("active_branch=%v", out["active_branch"])
	}
	stats := out["file_stats"].(map[string]any)
	if stats["python_files"] != 1 || stats["javascript_files"] != 1 || stats["html_files"] != 1 {
		t.Fatalf("file_stats=%v", stats)
	}
	last := out["last_commit"].(map[string]any)
	if last["author"] != "Tester" || last["message"] != "commit 0" {
		t.Fatalf("last_commit=%v", last)
	}
	tree := out["directory_structure"].(map[string]any)
	web, ok := tree["web"].(map[string]any)
	if !ok {
		t.Fatalf("directory_structure=%v", tree)
	}
	if _, present := web["app.js"]; !present {
		t.Fatalf("web subtree=%v", web)
	}
}

func TestAnalyzeBadURL(t *testing.T) {
	if _, err := New().Analyze(context.Background(), filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected clone failure")
	}
}

func TestSearch(t *testing.T) {
	dir := seedRepo(t, []map[string]string{{
		"a.txt": "needle here\n",
		"b.txt": "nothing\n",
	}})

	out, err := New().Search(context.Background(), dir, "needle")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out["match_count"] != 1 {
		t.Fatalf("match_count=%v", out["match_count"])
	}
	if files := out["matching_files"].([]string); len(files) != 1 || files[0] != "a.txt" {
		t.Fatalf("matching_files=%v", out["matching_files"])
	}
}

func TestSearchNoMatches(t *testing.T) {
	dir := seedRepo(t, []map[string]string{{"a.txt": "nothing\n"}})
	out, err := New().Search(context.Background(), dir, "needle")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if out["match_count"] != 0 {
		t.Fatalf("match_count=%v", out["match_count"])
	}
	if files := out["matching_files"].([]string); files == nil || len(files) != 0 {
		t.Fatalf("matching_files should be an empty slice, got %v", out["matching_files"])
	}
}

func TestDiff(t *testing.T) {
	dir := seedRepo(t, []map[string]string{
		{"a.txt": "one\n"},
		{"a.txt": "one\ntwo\n", "b.txt": "new file\n"},
	})

	out, err := New().Diff(context.Background(), dir)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if out["total_files_changed"] != 2 {
		t.Fatalf("total_files_changed=%v", out["total_files_changed"])
	}
	if out["total_additions"].(int) < 2 {
		t.Fatalf("total_additions=%v", out["total_additions"])
	}
	changes := out["files_changed"].([]map[string]any)
	byPath := map[string]map[string]any{}
	for _, c := range changes {
		byPath[c["path"].(string)] = c
	}
	if byPath["b.txt"]["change_type"] != "A" {
		t.Fatalf("b.txt change=%v", byPath["b.txt"])
	}
	if byPath["a.txt"]["change_type"] != "M" {
		t.Fatalf("a.txt change=%v", byPath["a.txt"])
	}
}

func TestDiffRootCommit(t *testing.T) {
	dir := seedRepo(t, []map[string]string{{"a.txt": "one\n"}})
	out, err := New().Diff(context.Background(), dir)
	if err != nil {
		t.Fatalf("Diff: %v", err)
	}
	if out["error"] != "No parent commit found" {
		t.Fatalf("out=%v", out)
	}
	if out["total_additions"] != 0 || out["total_deletions"] != 0 {
		t.Fatalf("totals=%v/%v", out["total_additions"], out["total_deletions"])
	}
}

func TestDirectoryStructure(t *testing.T) {
	tree := directoryStructure([]string{"a.txt", "pkg/b.txt", "pkg/sub/c.txt"})
	want := map[string]any{
		"a.txt": nil,
		"pkg": map[string]any{
			"b.txt": nil,
			"sub":   map[string]any{"c.txt": nil},
		},
	}
	if !reflect.DeepEqual(tree, want) {
		t.Fatalf("tree=%v", tree)
	}
}
