// Package gitsvc implements the git capability family. Each call clones the
// target repository into a throwaway directory, inspects it with go-git and
// removes the clone before returning. Calls are independent; nothing is
// cached between them.
package gitsvc

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	git "github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/format/diff"
)

// maxFileDiffChars caps the per-file diff text carried in a diff payload.
const maxFileDiffChars = 5000

// Service clones and inspects remote repositories.
type Service struct{}

// New returns a git service.
func New() *Service { return &Service{} }

// clone fetches repoURL into a fresh temp dir. The caller owns cleanup via
// the returned func, which is safe to call on error paths too.
func (s *Service) clone(ctx context.Context, repoURL string) (*git.Repository, string, func(), error) {
	dir, err := os.MkdirTemp("", "mcpd-git-*")
	if err != nil {
		return nil, "", func() {}, err
	}
	cleanup := func() { _ = os.RemoveAll(dir) }
	repo, err := git.PlainCloneContext(ctx, dir, false, &git.CloneOptions{URL: repoURL})
	if err != nil {
		cleanup()
		return nil, "", func() {}, fmt.Errorf("failed to clone repository: %w", err)
	}
	return repo, dir, cleanup, nil
}

// Analyze clones the repository and reports its branch, last commit,
// file census and directory shape.
func (s *Service) Analyze(ctx context.Context, repoURL string) (map[string]any, error) {
	repo, dir, cleanup, err := s.clone(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}
	return map[string]any{
		"url":           repoURL,
		"active_branch": head.Name().Short(),
		"last_commit": map[string]any{
			"id":      commit.Hash.String(),
			"author":  commit.Author.Name,
			"message": strings.TrimSpace(commit.Message),
			"date":    commit.Author.When.Format("2006-01-02T15:04:05-07:00"),
		},
		"file_count":          len(files),
		"directory_structure": directoryStructure(files),
		"file_stats": map[string]any{
			"python_files":     countByExt(files, ".py"),
			"javascript_files": countByExt(files, ".js"),
			"html_files":       countByExt(files, ".html"),
		},
	}, nil
}

// Search clones the repository and returns the files whose content contains
// pattern as a substring.
func (s *Service) Search(ctx context.Context, repoURL, pattern string) (map[string]any, error) {
	_, dir, cleanup, err := s.clone(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	files, err := listFiles(dir)
	if err != nil {
		return nil, err
	}
	var matching []string
	for _, rel := range files {
		b, err := os.ReadFile(filepath.Join(dir, rel))
		if err != nil {
			continue
		}
		if strings.Contains(string(b), pattern) {
			matching = append(matching, rel)
		}
	}
	if matching == nil {
		matching = []string{}
	}
	return map[string]any{
		"repo_url":       repoURL,
		"pattern":        pattern,
		"matching_files": matching,
		"match_count":    len(matching),
	}, nil
}

// Diff clones the repository and reports what the last commit changed
// relative to its first parent.
func (s *Service) Diff(ctx context.Context, repoURL string) (map[string]any, error) {
	repo, _, cleanup, err := s.clone(ctx, repoURL)
	if err != nil {
		return nil, err
	}
	defer cleanup()

	head, err := repo.Head()
	if err != nil {
		return nil, fmt.Errorf("resolve HEAD: %w", err)
	}
	commit, err := repo.CommitObject(head.Hash())
	if err != nil {
		return nil, fmt.Errorf("read HEAD commit: %w", err)
	}
	if commit.NumParents() == 0 {
		// Root commits have nothing to diff against; callers still get the
		// commit identity.
		return map[string]any{
			"error":           "No parent commit found",
			"commit_id":       commit.Hash.String(),
			"commit_message":  strings.TrimSpace(commit.Message),
			"files_changed":   []map[string]any{},
			"total_additions": 0,
			"total_deletions": 0,
		}, nil
	}
	parent, err := commit.Parent(0)
	if err != nil {
		return nil, fmt.Errorf("read parent commit: %w", err)
	}
	patch, err := parent.PatchContext(ctx, commit)
	if err != nil {
		return nil, fmt.Errorf("compute patch: %w", err)
	}

	filesChanged := make([]map[string]any, 0)
	totalAdds, totalDels := 0, 0
	for _, fp := range patch.FilePatches() {
		path, changeType := filePatchIdentity(fp)
		adds, dels, text := renderFilePatch(fp)
		totalAdds += adds
		totalDels += dels
		if len(text) > maxFileDiffChars {
			text = text[:maxFileDiffChars] + "... [truncated]"
		}
		filesChanged = append(filesChanged, map[string]any{
			"path":        path,
			"change_type": changeType,
			"additions":   adds,
			"deletions":   dels,
			"diff":        text,
		})
	}
	return map[string]any{
		"commit_id":           commit.Hash.String(),
		"commit_message":      strings.TrimSpace(commit.Message),
		"commit_author":       commit.Author.Name,
		"commit_date":         commit.Author.When.Format("2006-01-02T15:04:05-07:00"),
		"files_changed":       filesChanged,
		"total_files_changed": len(filesChanged),
		"total_additions":     totalAdds,
		"total_deletions":     totalDels,
	}, nil
}

// filePatchIdentity maps a file patch to its path and a GitPython-style
// change letter: A added, D deleted, M modified.
func filePatchIdentity(fp diff.FilePatch) (string, string) {
	from, to := fp.Files()
	switch {
	case from == nil && to != nil:
		return to.Path(), "A"
	case from != nil && to == nil:
		return from.Path(), "D"
	case from != nil:
		return from.Path(), "M"
	default:
		return "", "M"
	}
}

// renderFilePatch flattens a file patch's chunks into +/- prefixed text and
// counts added/removed lines.
func renderFilePatch(fp diff.FilePatch) (adds, dels int, text string) {
	var b strings.Builder
	for _, chunk := range fp.Chunks() {
		prefix := " "
		switch chunk.Type() {
		case diff.Add:
			prefix = "+"
		case diff.Delete:
			prefix = "-"
		}
		for _, line := range strings.Split(strings.TrimSuffix(chunk.Content(), "\n"), "\n") {
			b.WriteString(prefix)
			b.WriteString(line)
			b.WriteByte('\n')
			switch chunk.Type() {
			case diff.Add:
				adds++
			case diff.Delete:
				dels++
			}
		}
	}
	return adds, dels, b.String()
}

// listFiles walks a checkout and returns slash-relative file paths,
// skipping the .git directory.
func listFiles(root string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		files = append(files, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// directoryStructure nests file paths into a map tree; files map to nil.
func directoryStructure(files []string) map[string]any {
	tree := make(map[string]any)
	for _, f := range files {
		parts := strings.Split(f, "/")
		cur := tree
		for i, part := range parts {
			if i == len(parts)-1 {
				cur[part] = nil
				continue
			}
			next, ok := cur[part].(map[string]any)
			if !ok {
				next = make(map[string]any)
				cur[part] = next
			}
			cur = next
		}
	}
	return tree
}

func countByExt(files []string, ext string) int {
	n := 0
	for _, f := range files {
		if strings.HasSuffix(f, ext) {
			n++
		}
	}
	return n
}
