// Package utils contains general helper functions shared by the snapshot packages.
package utils

import (
	"path/filepath"
	"strings"
)

const pathSegmentSeparator = "/"

// DeduplicatePatterns removes duplicate patterns from a slice while preserving order.
// The first occurrence of each unique pattern is kept.
func DeduplicatePatterns(patterns []string) []string {
	encounteredPatterns := make(map[string]struct{})
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if _, exists := encounteredPatterns[pattern]; !exists {
			encounteredPatterns[pattern] = struct{}{}
			result = append(result, pattern)
		}
	}
	return result
}

// ContainsString checks if a slice of strings contains a specific target string.
func ContainsString(stringSlice []string, targetString string) bool {
	for _, currentString := range stringSlice {
		if currentString == targetString {
			return true
		}
	}
	return false
}

// RelativePathOrSelf calculates the forward-slash path of fullPath relative to root.
// Returns the cleaned fullPath if relative calculation fails.
// Returns "." if fullPath and root resolve to the same directory.
func RelativePathOrSelf(fullPath, root string) string {
	cleanPath := filepath.Clean(fullPath)
	absoluteRoot, err := filepath.Abs(root)
	if err != nil {
		return cleanPath
	}
	cleanAbsoluteRoot := filepath.Clean(absoluteRoot)

	if cleanPath == cleanAbsoluteRoot {
		return "."
	}

	relativePath, relErr := filepath.Rel(cleanAbsoluteRoot, cleanPath)
	if relErr != nil {
		return cleanPath
	}
	return filepath.ToSlash(relativePath)
}

// SplitPathSegments splits a relative path into its segments after normalizing separators.
// The root path "." and the empty path have no segments.
func SplitPathSegments(relativePath string) []string {
	normalizedPath := strings.ReplaceAll(relativePath, "\\", pathSegmentSeparator)
	normalizedPath = strings.Trim(normalizedPath, pathSegmentSeparator)
	if normalizedPath == "" || normalizedPath == "." {
		return nil
	}
	return strings.Split(normalizedPath, pathSegmentSeparator)
}

// ComparePathSegments orders two relative paths segment by segment, so that "a/b"
// sorts before "a.txt" the same way a directory listing would nest it.
func ComparePathSegments(leftPath, rightPath string) int {
	leftSegments := SplitPathSegments(leftPath)
	rightSegments := SplitPathSegments(rightPath)
	for segmentIndex := 0; segmentIndex < len(leftSegments) && segmentIndex < len(rightSegments); segmentIndex++ {
		if comparison := strings.Compare(leftSegments[segmentIndex], rightSegments[segmentIndex]); comparison != 0 {
			return comparison
		}
	}
	return len(leftSegments) - len(rightSegments)
}

// FileExtension returns the lower-cased extension of a file name without its dot.
// A single leading dot belongs to the name, so ".gitignore" has no extension
// while ".eslintrc.json" has "json".
func FileExtension(fileName string) string {
	trimmedName := strings.TrimPrefix(filepath.Base(fileName), ".")
	dotIndex := strings.LastIndex(trimmedName, ".")
	if dotIndex < 0 || dotIndex == len(trimmedName)-1 {
		return ""
	}
	return strings.ToLower(trimmedName[dotIndex+1:])
}

// ShouldIgnoreByPath reports whether a path relative to the processing root
// matches any of the ignore patterns. The candidate path and every ignore pattern
// are converted to forward-slash form before evaluation. A pattern ending with a
// trailing slash matches the named directory and every descendant path; with a
// single segment it matches that directory name at any depth. A pattern
// prefixed with ExclusionPrefix is anchored at the root and matches the named
// path and its descendants. A single-segment pattern matches the last path segment;
// other patterns match an exact path where each segment is evaluated with
// filepath.Match semantics.
func ShouldIgnoreByPath(relativePath string, ignorePatterns []string) bool {
	pathSegments := SplitPathSegments(relativePath)
	if len(pathSegments) == 0 {
		return false
	}
	lastSegment := pathSegments[len(pathSegments)-1]

	for _, patternValue := range ignorePatterns {
		normalizedPattern := strings.ReplaceAll(patternValue, "\\", pathSegmentSeparator)

		if strings.HasPrefix(normalizedPattern, ExclusionPrefix) {
			exclusionPattern := strings.TrimSuffix(strings.TrimPrefix(normalizedPattern, ExclusionPrefix), pathSegmentSeparator)
			exclusionSegments := strings.Split(exclusionPattern, pathSegmentSeparator)
			if len(pathSegments) >= len(exclusionSegments) && segmentsMatch(pathSegments[:len(exclusionSegments)], exclusionSegments) {
				return true
			}
			continue
		}

		isDirectoryPattern := strings.HasSuffix(normalizedPattern, pathSegmentSeparator)
		trimmedPattern := strings.Trim(normalizedPattern, pathSegmentSeparator)
		if trimmedPattern == "" {
			continue
		}
		patternSegments := strings.Split(trimmedPattern, pathSegmentSeparator)

		if isDirectoryPattern {
			if len(patternSegments) == 1 {
				for _, segment := range pathSegments {
					if isMatched, matchError := filepath.Match(patternSegments[0], segment); matchError == nil && isMatched {
						return true
					}
				}
				continue
			}
			if len(pathSegments) >= len(patternSegments) && segmentsMatch(pathSegments[:len(patternSegments)], patternSegments) {
				return true
			}
			continue
		}

		if len(patternSegments) == 1 {
			isMatched, matchError := filepath.Match(patternSegments[0], lastSegment)
			if matchError == nil && isMatched {
				return true
			}
			continue
		}

		if len(pathSegments) == len(patternSegments) && segmentsMatch(pathSegments, patternSegments) {
			return true
		}
	}

	return false
}

// segmentsMatch reports whether each pattern segment matches the corresponding
// path segment using filepath.Match semantics.
func segmentsMatch(pathSegments, patternSegments []string) bool {
	for segmentIndex, patternSegment := range patternSegments {
		isMatched, matchError := filepath.Match(patternSegment, pathSegments[segmentIndex])
		if matchError != nil || !isMatched {
			return false
		}
	}
	return true
}
