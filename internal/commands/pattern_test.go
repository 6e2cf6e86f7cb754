package commands_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/temirov/reposnap/internal/commands"
	"github.com/temirov/reposnap/internal/types"
)

func collectPatterns(testingHandle *testing.T, rootDirectory string, policy types.SelectionPolicy) []string {
	testingHandle.Helper()
	policy.Mode = types.ModePattern
	collector := &commands.Collector{Exclusions: defaultMatcher(), Policy: policy}
	entries, collectError := collector.Collect(rootDirectory)
	if collectError != nil {
		testingHandle.Fatalf("Collect error: %v", collectError)
	}
	return relativePaths(entries)
}

// TestCollectPatternOrder verifies pattern order is kept and duplicates keep their first position.
func TestCollectPatternOrder(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"package.json":      "{}",
		"lib/b.ts":          "b",
		"lib/a.ts":          "a",
		"app/page.tsx":      "page",
		"README.md":         "readme",
		"docs/x.md":         "x",
		"node_modules/y.ts": "y",
	})
	testCases := []struct {
		name     string
		patterns []string
		expected []string
	}{
		{
			name:     "ordered patterns",
			patterns: []string{"package.json", "lib/**", "app/**"},
			expected: []string{"package.json", "lib/a.ts", "lib/b.ts", "app/page.tsx"},
		},
		{
			name:     "duplicate keeps first position",
			patterns: []string{"lib/b.ts", "lib/**", "lib/a.ts"},
			expected: []string{"lib/b.ts", "lib/a.ts"},
		},
		{
			name:     "recursive glob matches root files",
			patterns: []string{"README.md", "**/*.md"},
			expected: []string{"README.md", "docs/x.md"},
		},
		{
			name:     "excluded directories are dropped",
			patterns: []string{"**/*.ts"},
			expected: []string{"lib/a.ts", "lib/b.ts"},
		},
		{
			name:     "leading dot slash is ignored",
			patterns: []string{"./package.json"},
			expected: []string{"package.json"},
		},
		{
			name:     "no matches",
			patterns: []string{"missing/**"},
			expected: []string{},
		},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			paths := collectPatterns(subTest, rootDirectory, types.SelectionPolicy{Patterns: testCase.patterns})
			expectPaths(subTest, paths, testCase.expected)
		})
	}
}

// TestCollectPatternWithPublic verifies the public subtree is appended only on request.
func TestCollectPatternWithPublic(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{
		"package.json":        "{}",
		"public/robots.txt":   "User-agent: *",
		"public/img/logo.svg": "<svg/>",
	})
	basePolicy := types.SelectionPolicy{Patterns: []string{"package.json"}, PublicDirectory: "public"}
	expectPaths(testingHandle, collectPatterns(testingHandle, rootDirectory, basePolicy), []string{"package.json"})

	basePolicy.WithPublic = true
	expectPaths(testingHandle, collectPatterns(testingHandle, rootDirectory, basePolicy),
		[]string{"package.json", "public/img/logo.svg", "public/robots.txt"})
}

// TestCollectPatternSymlinkDuplicate verifies a symbolic link and its target count once.
func TestCollectPatternSymlinkDuplicate(testingHandle *testing.T) {
	rootDirectory := testingHandle.TempDir()
	writeFixture(testingHandle, rootDirectory, map[string]string{"lib/a.ts": "a"})
	if symlinkError := os.Symlink(filepath.Join(rootDirectory, "lib", "a.ts"), filepath.Join(rootDirectory, "alias.ts")); symlinkError != nil {
		testingHandle.Skipf("symlinks unavailable: %v", symlinkError)
	}
	paths := collectPatterns(testingHandle, rootDirectory, types.SelectionPolicy{Patterns: []string{"lib/*.ts", "alias.ts"}})
	expectPaths(testingHandle, paths, []string{"lib/a.ts"})
}

// TestEffectivePatterns verifies normalization, deduplication and the public suffix.
func TestEffectivePatterns(testingHandle *testing.T) {
	policy := types.SelectionPolicy{
		Patterns:        []string{"./app/**", " ", "app/**", "lib/**"},
		PublicDirectory: "./public/",
		WithPublic:      true,
	}
	expectPaths(testingHandle, commands.EffectivePatterns(policy), []string{"app/**", "lib/**", "public/**"})
}

// TestValidatePatterns verifies invalid and escaping patterns are rejected.
func TestValidatePatterns(testingHandle *testing.T) {
	testCases := []struct {
		name        string
		patterns    []string
		expectError bool
		badPattern  bool
	}{
		{name: "valid", patterns: []string{"app/**", "*.json", "next.config.*"}},
		{name: "unclosed class", patterns: []string{"[abc"}, expectError: true, badPattern: true},
		{name: "absolute", patterns: []string{"/etc/passwd"}, expectError: true},
		{name: "parent", patterns: []string{"../secrets/**"}, expectError: true},
	}
	for _, testCase := range testCases {
		testingHandle.Run(testCase.name, func(subTest *testing.T) {
			validationError := commands.ValidatePatterns(testCase.patterns)
			if (validationError != nil) != testCase.expectError {
				subTest.Fatalf("unexpected validation result: %v", validationError)
			}
			if testCase.badPattern && !errors.Is(validationError, doublestar.ErrBadPattern) {
				subTest.Fatalf("expected ErrBadPattern, got %v", validationError)
			}
		})
	}
}

// TestCollectPatternInvalid verifies Collect fails before reading anything on a bad pattern.
func TestCollectPatternInvalid(testingHandle *testing.T) {
	collector := &commands.Collector{Policy: types.SelectionPolicy{Mode: types.ModePattern, Patterns: []string{"[abc"}}}
	if _, collectError := collector.Collect(testingHandle.TempDir()); collectError == nil {
		testingHandle.Fatalf("expected invalid pattern error")
	}
}
