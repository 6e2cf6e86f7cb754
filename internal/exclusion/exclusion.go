// Package exclusion implements the predicate that keeps entries out of both the tree and the snapshot.
package exclusion

import (
	"strings"

	"github.com/temirov/reposnap/internal/utils"
)

// Rules is the static exclusion configuration.
type Rules struct {
	// Directories are entry names excluded wherever they appear as a path segment.
	Directories []string
	// Files are exact file names excluded at any depth.
	Files []string
	// Prefixes exclude entries whose name starts with any of them.
	Prefixes []string
	// Extensions are denied file extensions, with or without the leading dot.
	Extensions []string
	// PathPatterns are root-relative ignore patterns evaluated with utils.ShouldIgnoreByPath.
	PathPatterns []string
}

// DefaultReservedPrefixes keep the tool from ingesting its own outputs.
var DefaultReservedPrefixes = []string{"PROJECT_TREE_", "CODE_SNAPSHOT_"}

// DefaultDirectories lists directory names excluded when no configuration overrides them.
var DefaultDirectories = []string{
	".git", ".idea", ".vscode", "__pycache__", "node_modules", "venv",
	".mypy_cache", ".pytest_cache", ".DS_Store",
	".next", "dist", "build", "out", ".turbo",
	".cache", ".parcel-cache", "coverage",
}

// DefaultFiles lists file names excluded when no configuration overrides them.
var DefaultFiles = []string{
	".env", ".env.local", ".env.production", ".env.development",
	"pnpm-lock.yaml", "package-lock.json",
}

// DefaultRules returns the built-in exclusion rules.
func DefaultRules() Rules {
	return Rules{
		Directories: append([]string(nil), DefaultDirectories...),
		Files:       append([]string(nil), DefaultFiles...),
		Prefixes:    append([]string(nil), DefaultReservedPrefixes...),
	}
}

// Matcher evaluates Rules against root-relative paths.
type Matcher struct {
	directories  map[string]struct{}
	files        map[string]struct{}
	prefixes     []string
	extensions   map[string]struct{}
	pathPatterns []string
}

// NewMatcher compiles rules into a Matcher. Blank values are dropped.
func NewMatcher(rules Rules) *Matcher {
	matcher := &Matcher{
		directories:  toSet(rules.Directories, func(value string) string { return value }),
		files:        toSet(rules.Files, func(value string) string { return value }),
		extensions:   toSet(rules.Extensions, normalizeExtension),
		pathPatterns: utils.DeduplicatePatterns(trimAll(rules.PathPatterns)),
	}
	matcher.prefixes = utils.DeduplicatePatterns(trimAll(rules.Prefixes))
	return matcher
}

// Excludes reports whether the entry at relativePath is excluded. It checks every
// path segment against the directory names, then the entry name against file names,
// reserved prefixes and denied extensions, then the path patterns.
func (matcher *Matcher) Excludes(relativePath string) bool {
	if matcher == nil {
		return false
	}
	segments := utils.SplitPathSegments(relativePath)
	if len(segments) == 0 {
		return false
	}
	for _, segment := range segments {
		if _, excluded := matcher.directories[segment]; excluded {
			return true
		}
	}
	entryName := segments[len(segments)-1]
	if _, excluded := matcher.files[entryName]; excluded {
		return true
	}
	for _, prefix := range matcher.prefixes {
		if strings.HasPrefix(entryName, prefix) {
			return true
		}
	}
	if len(matcher.extensions) > 0 {
		if _, excluded := matcher.extensions[utils.FileExtension(entryName)]; excluded {
			return true
		}
	}
	return utils.ShouldIgnoreByPath(relativePath, matcher.pathPatterns)
}

func normalizeExtension(value string) string {
	return strings.ToLower(strings.TrimPrefix(value, "."))
}

func trimAll(values []string) []string {
	trimmed := make([]string, 0, len(values))
	for _, value := range values {
		if candidate := strings.TrimSpace(value); candidate != "" {
			trimmed = append(trimmed, candidate)
		}
	}
	return trimmed
}

func toSet(values []string, normalize func(string) string) map[string]struct{} {
	set := make(map[string]struct{}, len(values))
	for _, value := range trimAll(values) {
		if normalized := normalize(value); normalized != "" {
			set[normalized] = struct{}{}
		}
	}
	return set
}
