package enumerator

import (
	"path"
	"path/filepath"
	"strings"
)

// Filter selects items by their slash-separated path relative to the sync root.
// Excludes take precedence; with includes set, an item must match one of them.
type Filter struct {
	Include []string
	Exclude []string
}

// Allows reports whether relPath passes the filter.
func (f Filter) Allows(relPath string) bool {
	relPath = strings.TrimPrefix(filepath.ToSlash(relPath), "/")

	for _, pattern := range f.Exclude {
		if matchPattern(relPath, pattern) {
			return false
		}
	}

	if len(f.Include) == 0 {
		return true
	}
	for _, pattern := range f.Include {
		if matchPattern(relPath, pattern) {
			return true
		}
	}
	return false
}

// matchPattern supports path.Match globs, directory patterns ending in "/",
// and a single "**" standing for any run of characters, separators included.
// A pattern without "/" also matches the base name.
func matchPattern(relPath, pattern string) bool {
	if dir, ok := strings.CutSuffix(pattern, "/"); ok {
		return relPath == dir || strings.HasPrefix(relPath, dir+"/")
	}

	if prefix, suffix, ok := strings.Cut(pattern, "**"); ok {
		if strings.Contains(suffix, "**") {
			return false
		}
		if !strings.HasPrefix(relPath, prefix) {
			return false
		}
		rest := strings.TrimPrefix(relPath, prefix)
		if suffix == "" {
			return true
		}
		// Try every tail so "**/*.go" style suffixes glob correctly.
		for i := 0; i <= len(rest); i++ {
			if ok, _ := path.Match(strings.TrimPrefix(suffix, "/"), rest[i:]); ok {
				return true
			}
		}
		return false
	}

	if ok, _ := path.Match(pattern, relPath); ok {
		return true
	}
	if !strings.Contains(pattern, "/") {
		ok, _ := path.Match(pattern, path.Base(relPath))
		return ok
	}
	return false
}
