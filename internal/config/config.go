// Package config loads the YAML configuration and the ignore files that feed the exclusion rules.
package config

import (
	"bufio"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/reposnap/internal/exclusion"
	"github.com/temirov/reposnap/internal/utils"
)

const (
	ignoreCommentPrefix  = "#"
	ignoreNegationPrefix = "!"
	ignoreAnchorPrefix   = "/"

	errorLoadIgnoreFormat = "loading %s from %s: %w"
	warningCloseFormat    = "Warning: failed to close %s: %v\n"
)

// LoadIgnoreFilePatterns reads an ignore file and returns its patterns. Blank lines,
// comments and negated patterns are dropped. A missing file yields no patterns.
//
// #nosec G304
func LoadIgnoreFilePatterns(ignoreFilePath string) ([]string, error) {
	fileHandle, openFileError := os.Open(ignoreFilePath)
	if openFileError != nil {
		if os.IsNotExist(openFileError) {
			return nil, nil
		}
		return nil, openFileError
	}
	defer func() {
		closeError := fileHandle.Close()
		if closeError != nil {
			fmt.Fprintf(os.Stderr, warningCloseFormat, ignoreFilePath, closeError)
		}
	}()

	var ignorePatterns []string
	scanner := bufio.NewScanner(fileHandle)
	for scanner.Scan() {
		trimmedLine := strings.TrimSpace(scanner.Text())
		if trimmedLine == "" || strings.HasPrefix(trimmedLine, ignoreCommentPrefix) || strings.HasPrefix(trimmedLine, ignoreNegationPrefix) {
			continue
		}
		ignorePatterns = append(ignorePatterns, trimmedLine)
	}
	if scanError := scanner.Err(); scanError != nil {
		return nil, scanError
	}
	return ignorePatterns, nil
}

// LoadRecursiveIgnorePatterns walks rootDirectoryPath and aggregates patterns from
// utils.IgnoreFileName and utils.GitIgnoreFileName files. Patterns found in a nested
// directory are prefixed with that directory's path relative to the root; patterns
// starting with a slash are anchored with utils.ExclusionPrefix. Directories the
// matcher excludes are not visited, and unreadable subdirectories are skipped.
func LoadRecursiveIgnorePatterns(rootDirectoryPath string, matcher *exclusion.Matcher, useGitignore bool, useIgnoreFile bool) ([]string, error) {
	var aggregatedPatterns []string
	if !useGitignore && !useIgnoreFile {
		return nil, nil
	}

	ignoreFileNames := make([]string, 0, 2)
	if useIgnoreFile {
		ignoreFileNames = append(ignoreFileNames, utils.IgnoreFileName)
	}
	if useGitignore {
		ignoreFileNames = append(ignoreFileNames, utils.GitIgnoreFileName)
	}

	walkFunction := func(currentDirectoryPath string, directoryEntry fs.DirEntry, walkError error) error {
		relativeDirectory := utils.RelativePathOrSelf(currentDirectoryPath, rootDirectoryPath)
		if walkError != nil {
			if relativeDirectory == "." {
				return walkError
			}
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !directoryEntry.IsDir() {
			return nil
		}
		if relativeDirectory != "." && matcher.Excludes(relativeDirectory) {
			return filepath.SkipDir
		}

		prefix := ""
		if relativeDirectory != "." {
			prefix = relativeDirectory + "/"
		}
		for _, ignoreFileName := range ignoreFileNames {
			ignorePatterns, loadError := LoadIgnoreFilePatterns(filepath.Join(currentDirectoryPath, ignoreFileName))
			if loadError != nil {
				return fmt.Errorf(errorLoadIgnoreFormat, ignoreFileName, currentDirectoryPath, loadError)
			}
			for _, pattern := range ignorePatterns {
				aggregatedPatterns = append(aggregatedPatterns, scopeIgnorePattern(prefix, pattern))
			}
		}
		return nil
	}

	if walkError := filepath.WalkDir(rootDirectoryPath, walkFunction); walkError != nil {
		return nil, walkError
	}
	return utils.DeduplicatePatterns(aggregatedPatterns), nil
}

// scopeIgnorePattern rewrites a pattern read in the directory named by prefix
// into a root-relative pattern.
func scopeIgnorePattern(prefix string, pattern string) string {
	if strings.HasPrefix(pattern, ignoreAnchorPrefix) {
		return utils.ExclusionPrefix + prefix + strings.TrimPrefix(pattern, ignoreAnchorPrefix)
	}
	return prefix + pattern
}
