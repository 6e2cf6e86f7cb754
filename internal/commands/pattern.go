package commands

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"go.uber.org/zap"

	"github.com/temirov/reposnap/internal/types"
	"github.com/temirov/reposnap/internal/utils"
)

const (
	// publicSubtreeSuffix widens the public directory to every file it contains.
	publicSubtreeSuffix = "/**"
	// debugDuplicateMatchMessage is logged when a later pattern matches an already selected file.
	debugDuplicateMatchMessage = "skipping duplicate pattern match"

	// errorInvalidPatternFormat reports a glob pattern doublestar cannot parse.
	errorInvalidPatternFormat = "invalid pattern %q: %w"
	// errorAbsolutePatternFormat reports a pattern that escapes the root.
	errorAbsolutePatternFormat = "pattern %q must be relative to the project root"
	// errorExpandPatternFormat reports a failure while expanding a pattern.
	errorExpandPatternFormat = "expanding pattern %q: %w"
)

// EffectivePatterns returns the ordered pattern list for a policy, appending the
// public subtree when WithPublic is set.
func EffectivePatterns(policy types.SelectionPolicy) []string {
	patterns := make([]string, 0, len(policy.Patterns)+1)
	for _, pattern := range policy.Patterns {
		if normalized := normalizePattern(pattern); normalized != "" {
			patterns = append(patterns, normalized)
		}
	}
	publicDirectory := strings.Trim(normalizePattern(policy.PublicDirectory), "/")
	if policy.WithPublic && publicDirectory != "" {
		patterns = append(patterns, publicDirectory+publicSubtreeSuffix)
	}
	return utils.DeduplicatePatterns(patterns)
}

// ValidatePatterns reports the first pattern that cannot be expanded.
func ValidatePatterns(patterns []string) error {
	for _, pattern := range patterns {
		if path.IsAbs(pattern) || filepath.IsAbs(pattern) || pattern == ".." || strings.HasPrefix(pattern, "../") {
			return fmt.Errorf(errorAbsolutePatternFormat, pattern)
		}
		if !doublestar.ValidatePattern(pattern) {
			return fmt.Errorf(errorInvalidPatternFormat, pattern, doublestar.ErrBadPattern)
		}
	}
	return nil
}

// selectByPattern expands every pattern in order. Matches of one pattern are
// sorted by path; a file matched again by a later pattern keeps its first position.
// Duplicates are detected by resolved absolute path, so a symbolic link and its
// target inside the root count once.
func (collector *Collector) selectByPattern(rootPath string) ([]selectedFile, error) {
	patterns := EffectivePatterns(collector.Policy)
	if validationError := ValidatePatterns(patterns); validationError != nil {
		return nil, validationError
	}

	projectFileSystem := os.DirFS(rootPath)
	seenPaths := make(map[string]struct{})
	var selected []selectedFile
	for _, pattern := range patterns {
		matches, globError := doublestar.Glob(projectFileSystem, pattern, doublestar.WithFilesOnly())
		if globError != nil {
			return nil, fmt.Errorf(errorExpandPatternFormat, pattern, globError)
		}
		sort.SliceStable(matches, func(left, right int) bool {
			return utils.ComparePathSegments(matches[left], matches[right]) < 0
		})
		for _, match := range matches {
			if collector.Exclusions.Excludes(match) {
				collector.logger().Debug(debugExcludedEntryMessage, zap.String("path", match), zap.String("pattern", pattern))
				continue
			}
			absolutePath := filepath.Join(rootPath, filepath.FromSlash(match))
			resolvedPath := absolutePath
			if evaluatedPath, evaluationError := filepath.EvalSymlinks(absolutePath); evaluationError == nil {
				resolvedPath = evaluatedPath
			}
			if _, seen := seenPaths[resolvedPath]; seen {
				collector.logger().Debug(debugDuplicateMatchMessage, zap.String("path", match), zap.String("pattern", pattern))
				continue
			}
			seenPaths[resolvedPath] = struct{}{}
			selected = append(selected, selectedFile{absolutePath: absolutePath, relativePath: match})
		}
	}
	return selected, nil
}

func normalizePattern(pattern string) string {
	normalized := filepath.ToSlash(strings.TrimSpace(pattern))
	for strings.HasPrefix(normalized, "./") {
		normalized = strings.TrimPrefix(normalized, "./")
	}
	return normalized
}
