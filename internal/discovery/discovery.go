// Package discovery implements spec component C1: enumerating candidate
// source files from a repo root, respecting VCS ignores and binary
// filters. It prefers `git ls-files`, grounded in the
// exec.CommandContext style of rohankatakam-coderisk's internal/git
// package, and falls back to a recursive walk when the root is not a
// git working tree.
package discovery

import (
	"bytes"
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const maxFileSize = 1 << 20 // 1 MB

// skipDirs is the fixed directory skiplist from spec §4.1.
var skipDirs = map[string]bool{
	".git": true, "node_modules": true, "target": true, "dist": true,
	"build": true, ".venv": true, "__pycache__": true, ".cache": true,
	"vendor": true, ".idea": true, ".vscode": true,
}

// skipExtensions is the fixed skipped-extension set from spec §4.1.
var skipExtensions = map[string]bool{
	".png": true, ".jpg": true, ".jpeg": true, ".gif": true, ".ico": true,
	".bmp": true, ".webp": true, ".svg": false, // svg is text, kept
	".zip": true, ".tar": true, ".gz": true, ".7z": true, ".rar": true,
	".exe": true, ".dll": true, ".so": true, ".dylib": true, ".a": true, ".o": true,
	".db": true, ".sqlite": true, ".sqlite3": true,
	".ttf": true, ".otf": true, ".woff": true, ".woff2": true, ".eot": true,
	".min.js": true, ".min.css": true,
	".pdf": true, ".mp3": true, ".mp4": true, ".mov": true, ".avi": true,
	".class": true, ".jar": true, ".pyc": true, ".wasm": true,
}

// lockfileNames is the exact-name lockfile skiplist.
var lockfileNames = map[string]bool{
	"package-lock.json": true, "yarn.lock": true, "pnpm-lock.yaml": true,
	"Cargo.lock": true, "go.sum": true, "Gemfile.lock": true,
	"poetry.lock": true, "composer.lock": true, "bun.lockb": true,
}

// Discover enumerates candidate files under root and returns them sorted,
// as forward-slash, root-relative paths.
func Discover(ctx context.Context, root string) ([]string, error) {
	paths, err := discoverViaGit(ctx, root)
	if err != nil || paths == nil {
		paths, err = discoverViaWalk(root)
		if err != nil {
			return nil, err
		}
	}

	out := make([]string, 0, len(paths))
	for _, p := range paths {
		if shouldInclude(root, p) {
			out = append(out, filepath.ToSlash(p))
		}
	}
	sort.Strings(out)
	return out, nil
}

// discoverViaGit lists tracked and untracked-non-ignored files. Returns
// (nil, nil) when root is not a git working tree so the caller falls back
// to a directory walk.
func discoverViaGit(ctx context.Context, root string) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, nil // not a git repo, or git unavailable; fall back
	}

	lines := strings.Split(stdout.String(), "\n")
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out, nil
}

// discoverViaWalk recursively walks root, applying the directory skiplist
// as it descends so skipped subtrees are never visited.
func discoverViaWalk(root string) ([]string, error) {
	var out []string
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(root, path)
		if relErr != nil {
			return nil
		}
		if rel == "." {
			return nil
		}
		if d.IsDir() {
			base := filepath.Base(rel)
			if skipDirs[base] || strings.HasPrefix(base, ".") {
				return filepath.SkipDir
			}
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// shouldInclude applies the lockfile, extension, hidden-segment, and
// size filters to a single root-relative path.
func shouldInclude(root, relPath string) bool {
	base := filepath.Base(relPath)
	if lockfileNames[base] {
		return false
	}

	for _, segment := range strings.Split(filepath.ToSlash(filepath.Dir(relPath)), "/") {
		if skipDirs[segment] || strings.HasPrefix(segment, ".") && segment != "." {
			return false
		}
	}

	lower := strings.ToLower(base)
	if strings.HasSuffix(lower, ".min.js") || strings.HasSuffix(lower, ".min.css") {
		return false
	}
	ext := strings.ToLower(filepath.Ext(base))
	if skip, known := skipExtensions[ext]; known && skip {
		return false
	}

	info, err := os.Lstat(filepath.Join(root, relPath))
	if err != nil {
		return false
	}
	if !info.Mode().IsRegular() {
		return false
	}
	if info.Size() > maxFileSize {
		return false
	}
	return true
}
