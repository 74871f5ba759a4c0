// Package fssvc implements the filesystem capability family. Every
// operation resolves its parameter paths inside a single configured root;
// anything escaping the root is rejected before touching the disk.
//
// Concurrent writers to the same path are not coordinated here. The service
// is request-scoped glue over the OS filesystem, and the last write wins.
package fssvc

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"mcpd/internal/common/fsutil"
	"mcpd/pkg/types"
)

// Service performs filesystem operations confined to Root.
type Service struct {
	root string
}

// New builds a Service rooted at dir. The root is resolved to an absolute
// path once; a '~' prefix is expanded.
func New(dir string) (*Service, error) {
	base, err := fsutil.ExpandHome(dir)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("abs path: %w", err)
	}
	return &Service{root: abs}, nil
}

// Root returns the absolute confinement root.
func (s *Service) Root() string { return s.root }

// resolve maps a request path onto the confined root. Relative paths are
// joined under the root; absolute paths must already point inside it.
// The original request string is reported back in errors, not the resolved
// one, so callers never learn the root location from a rejection.
func (s *Service) resolve(reqPath string) (string, error) {
	if reqPath == "" {
		reqPath = "."
	}
	var abs string
	if filepath.IsAbs(reqPath) {
		abs = filepath.Clean(reqPath)
	} else {
		abs = filepath.Join(s.root, reqPath)
	}
	if abs != s.root && !strings.HasPrefix(abs, s.root+string(filepath.Separator)) {
		return "", ErrPathEscape(reqPath)
	}
	return abs, nil
}

// List returns the directory entries at path. The payload carries the
// listing under both "entries" and "files": downstream consumers were
// written against "files" while the service's native key is "entries",
// and both must stay present.
func (s *Service) List(reqPath string) (map[string]any, error) {
	abs, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("path '%s' does not exist", reqPath)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path '%s' is not a directory", reqPath)
	}
	dirents, err := os.ReadDir(abs)
	if err != nil {
		return nil, err
	}
	entries := make([]map[string]any, 0, len(dirents))
	for _, e := range dirents {
		kind := "FILE"
		if e.IsDir() {
			kind = "DIR"
		}
		entries = append(entries, map[string]any{
			"name": e.Name(),
			"type": kind,
			"path": filepath.Join(reqPath, e.Name()),
		})
	}
	return map[string]any{
		"path":    reqPath,
		"entries": entries,
		"files":   entries,
	}, nil
}

// Read returns the contents of a single file.
func (s *Service) Read(reqPath string) (map[string]any, error) {
	abs, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("file '%s' does not exist", reqPath)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("path '%s' is a directory, not a file", reqPath)
	}
	b, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}
	return map[string]any{"path": reqPath, "content": string(b)}, nil
}

// ReadMultiple reads several files, collecting a per-path content/error
// pair instead of failing the whole batch.
func (s *Service) ReadMultiple(paths []string) (map[string]any, error) {
	results := make(map[string]any, len(paths))
	for _, p := range paths {
		out, err := s.Read(p)
		if err != nil {
			results[p] = map[string]any{"content": nil, "error": err.Error()}
			continue
		}
		results[p] = map[string]any{"content": out["content"], "error": nil}
	}
	return map[string]any{"results": results}, nil
}

// Write stores content at path, creating parent directories as needed.
// A second write with the same arguments simply overwrites.
func (s *Service) Write(reqPath, content string) (map[string]any, error) {
	abs, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	if dir := filepath.Dir(abs); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.WriteFile(abs, []byte(content), 0o644); err != nil {
		return nil, err
	}
	return map[string]any{"path": reqPath, "size": len(content), "success": true}, nil
}

// Edit applies oldText/newText replacements to a file. With dryRun the new
// content is computed and diffed but not written.
func (s *Service) Edit(reqPath string, edits []types.FileEdit, dryRun bool) (map[string]any, error) {
	abs, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	orig, err := os.ReadFile(abs)
	if err != nil {
		return nil, fmt.Errorf("file '%s' does not exist", reqPath)
	}
	content := string(orig)
	updated := content
	applied := make([]map[string]any, 0, len(edits))
	failed := make([]map[string]any, 0)
	for _, e := range edits {
		if strings.Contains(updated, e.OldText) {
			updated = strings.ReplaceAll(updated, e.OldText, e.NewText)
			applied = append(applied, map[string]any{
				"oldText": e.OldText, "newText": e.NewText, "success": true,
			})
		} else {
			failed = append(failed, map[string]any{
				"oldText": e.OldText, "newText": e.NewText, "success": false,
				"reason": "Text not found in file",
			})
		}
	}
	diff := lineDiff(content, updated)
	if !dryRun && len(applied) > 0 {
		if err := os.WriteFile(abs, []byte(updated), 0o644); err != nil {
			return nil, err
		}
	}
	return map[string]any{
		"path":         reqPath,
		"originalSize": len(content),
		"newSize":      len(updated),
		"dryRun":       dryRun,
		"appliedEdits": applied,
		"failedEdits":  failed,
		"diff":         diff,
	}, nil
}

// lineDiff renders a minimal pairwise line diff between two versions.
func lineDiff(before, after string) string {
	a := strings.Split(before, "\n")
	b := strings.Split(after, "\n")
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var lines []string
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			lines = append(lines,
				fmt.Sprintf("Line %d:", i+1),
				"- "+a[i],
				"+ "+b[i],
				"")
		}
	}
	if len(lines) == 0 {
		return "No changes"
	}
	return strings.Join(lines, "\n")
}

// Mkdir creates a directory and any missing parents. Creating an existing
// directory is a no-op, never a partial create.
func (s *Service) Mkdir(reqPath string) (map[string]any, error) {
	abs, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		return nil, err
	}
	return map[string]any{"path": reqPath, "success": true}, nil
}

// Move renames a file or directory. The destination must not already exist.
func (s *Service) Move(source, destination string) (map[string]any, error) {
	srcAbs, err := s.resolve(source)
	if err != nil {
		return nil, err
	}
	dstAbs, err := s.resolve(destination)
	if err != nil {
		return nil, err
	}
	if _, err := os.Stat(srcAbs); err != nil {
		return nil, fmt.Errorf("source '%s' does not exist", source)
	}
	if _, err := os.Stat(dstAbs); err == nil {
		return nil, fmt.Errorf("destination '%s' already exists", destination)
	}
	if dir := filepath.Dir(dstAbs); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	if err := os.Rename(srcAbs, dstAbs); err != nil {
		return nil, err
	}
	return map[string]any{"source": source, "destination": destination, "success": true}, nil
}

// Search finds files below path whose name matches the glob pattern at any
// depth, minus any exclude patterns.
func (s *Service) Search(reqPath, pattern string, exclude []string) (map[string]any, error) {
	abs, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("path '%s' does not exist", reqPath)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("path '%s' is not a directory", reqPath)
	}
	hits, err := doublestar.FilepathGlob(filepath.Join(abs, "**", pattern))
	if err != nil {
		return nil, fmt.Errorf("bad pattern %q: %w", pattern, err)
	}
	excluded := make(map[string]bool)
	for _, ex := range exclude {
		exHits, err := doublestar.FilepathGlob(filepath.Join(abs, "**", ex))
		if err != nil {
			continue
		}
		for _, h := range exHits {
			excluded[h] = true
		}
	}
	matches := make([]string, 0, len(hits))
	for _, h := range hits {
		if excluded[h] {
			continue
		}
		rel, err := filepath.Rel(abs, h)
		if err != nil {
			continue
		}
		matches = append(matches, filepath.Join(reqPath, rel))
	}
	return map[string]any{"path": reqPath, "pattern": pattern, "matches": matches}, nil
}

// Info returns metadata for a file or directory.
func (s *Service) Info(reqPath string) (map[string]any, error) {
	abs, err := s.resolve(reqPath)
	if err != nil {
		return nil, err
	}
	info, err := os.Lstat(abs)
	if err != nil {
		return nil, fmt.Errorf("path '%s' does not exist", reqPath)
	}
	kind := "UNKNOWN"
	switch {
	case info.Mode().IsRegular():
		kind = "FILE"
	case info.IsDir():
		kind = "DIR"
	case info.Mode()&os.ModeSymlink != 0:
		kind = "LINK"
	}
	created, modified, accessed := statTimes(info)
	return map[string]any{
		"path":        reqPath,
		"name":        filepath.Base(abs),
		"size":        info.Size(),
		"type":        kind,
		"permissions": info.Mode().String(),
		"created":     created.Format(time.RFC3339),
		"modified":    modified.Format(time.RFC3339),
		"accessed":    accessed.Format(time.RFC3339),
	}, nil
}
