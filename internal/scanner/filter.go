package scanner

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// defaultExcludedDirs are directory names skipped wholesale during traversal.
var defaultExcludedDirs = []string{
	".git",
	"node_modules",
	"vendor",
	"__pycache__",
	".corpora",
	"dist",
	"build",
	".next",
	"target",
	".venv",
	".idea",
	".vscode",
}

// shouldExcludeDir checks whether a directory name matches any default
// exclusion. Matching subtrees are skipped entirely.
func shouldExcludeDir(name string) bool {
	for _, excl := range defaultExcludedDirs {
		if strings.EqualFold(name, excl) {
			return true
		}
	}
	return false
}

// MatchesInclude returns true if the given relative path matches any of the
// include patterns. If patterns is empty, everything is included.
func MatchesInclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return true
	}
	return matchesAny(relPath, patterns)
}

// MatchesExclude returns true if the given relative path matches any of the
// exclude patterns. If patterns is empty, nothing is excluded.
func MatchesExclude(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}
	return matchesAny(relPath, patterns)
}

// matchesAny checks if relPath matches any of the given glob patterns.
// It uses doublestar for ** support and also matches against the bare
// filename so patterns like "*.min.js" work at any depth.
func matchesAny(relPath string, patterns []string) bool {
	normalized := filepath.ToSlash(relPath)

	for _, pattern := range patterns {
		pattern = filepath.ToSlash(pattern)

		if matched, err := doublestar.PathMatch(pattern, normalized); err == nil && matched {
			return true
		}

		base := filepath.Base(normalized)
		if matched, err := doublestar.PathMatch(pattern, base); err == nil && matched {
			return true
		}
	}
	return false
}

// loadGitignore reads a .gitignore file and returns its non-empty,
// non-comment lines as patterns.
func loadGitignore(path string) []string {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	var patterns []string
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		patterns = append(patterns, line)
	}
	return patterns
}

// matchesGitignore checks if a slash-separated relative path matches any
// gitignore pattern. This covers the common pattern shapes (bare names,
// directory suffixes, globs), not the full gitignore spec.
func matchesGitignore(relPath string, patterns []string) bool {
	if len(patterns) == 0 {
		return false
	}

	for _, pattern := range patterns {
		dirOnly := strings.HasSuffix(pattern, "/")
		pattern = strings.TrimSuffix(pattern, "/")
		pattern = strings.TrimPrefix(pattern, "/")

		if !strings.Contains(pattern, "/") {
			// Patterns without a slash match any path component.
			for _, part := range strings.Split(relPath, "/") {
				if matched, _ := filepath.Match(pattern, part); matched {
					if !dirOnly || part != filepath.Base(relPath) {
						return true
					}
				}
			}
		} else {
			if matched, _ := doublestar.PathMatch(pattern, relPath); matched {
				return true
			}
			if matched, _ := doublestar.PathMatch(pattern+"/**", relPath); matched {
				return true
			}
		}
	}
	return false
}
