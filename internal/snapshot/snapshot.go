// Package snapshot runs one snapshot: it validates the root, writes the tree
// output and then writes the snapshot output next to it.
package snapshot

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/reposnap/internal/commands"
	"github.com/temirov/reposnap/internal/exclusion"
	"github.com/temirov/reposnap/internal/output"
	"github.com/temirov/reposnap/internal/services/clipboard"
	"github.com/temirov/reposnap/internal/tokenizer"
	"github.com/temirov/reposnap/internal/types"
	"github.com/temirov/reposnap/internal/utils"
)

const (
	treeFilePrefix      = "PROJECT_TREE_"
	treeFileExtension   = ".txt"
	codeFilePrefix      = "CODE_SNAPSHOT_"
	codeFileExtension   = ".md"
	outputFileMode      = 0o644
	timeSuffixSeparator = "_"

	statusScanningMessage   = "Scanning project structure...\n"
	statusTreeSavedFormat   = "[OK] Tree saved: %s\n"
	statusCollectingMessage = "Collecting source files...\n"
	statusSnapshotFormat    = "[OK] Code snapshot created: %s (%s)\n"
	statusCopiedMessage     = "[OK] Code snapshot copied to clipboard\n"

	warningClipboardMessage = "failed to copy snapshot to clipboard"

	errorRootMissingFormat  = "%w: %s"
	errorRootNotDirFormat   = "%w: %s is not a directory"
	errorRootStatFormat     = "%w: stat %s: %v"
	errorRootResolveFormat  = "resolving root %s: %w"
	errorWriteOutputFormat  = "%w: %s: %v"
	errorBuildTreeFormat    = "building tree for %s: %w"
	errorCollectFilesFormat = "collecting files for %s: %w"
)

var (
	// ErrRootNotFound reports a root path that does not exist or is not a directory.
	ErrRootNotFound = errors.New("project root not found")
	// ErrRootUnreadable reports a root path that exists but cannot be inspected.
	ErrRootUnreadable = errors.New("project root unreadable")
	// ErrWriteFailed reports an output file that could not be written.
	ErrWriteFailed = errors.New("writing output failed")
)

// Options configures one snapshot run.
type Options struct {
	Root         string
	Force        bool
	Rules        exclusion.Rules
	Policy       types.SelectionPolicy
	TokenCounter tokenizer.Counter
	TokenModel   string
	// Copier receives the snapshot document when set.
	Copier clipboard.Copier
	// Now defaults to time.Now.
	Now    func() time.Time
	Stdout io.Writer
	Logger *zap.Logger
}

// Result reports what a run wrote.
type Result struct {
	TreePath     string
	SnapshotPath string
	Summary      types.SnapshotSummary
}

// OutputNames returns the tree and snapshot file names for moment. Without force
// the names carry a time suffix so several runs on one day never collide.
func OutputNames(moment time.Time, force bool) (string, string) {
	stamp := utils.FormatDateStamp(moment)
	if !force {
		stamp += timeSuffixSeparator + utils.FormatTimeStamp(moment)
	}
	return treeFilePrefix + stamp + treeFileExtension, codeFilePrefix + stamp + codeFileExtension
}

// ReservedPrefixes returns the file name prefixes of the outputs written by Run.
func ReservedPrefixes() []string {
	return []string{treeFilePrefix, codeFilePrefix}
}

// Run validates the root, then writes the tree output and the snapshot output
// into it. Nothing is written when the root is missing or unreadable. The
// reserved output prefixes are always excluded so earlier snapshots are never
// collected into later ones.
func Run(options Options) (Result, error) {
	logger := options.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stdout := options.Stdout
	if stdout == nil {
		stdout = io.Discard
	}
	now := options.Now
	if now == nil {
		now = time.Now
	}

	rootPath, rootError := ValidateRoot(options.Root)
	if rootError != nil {
		return Result{}, rootError
	}
	if options.Policy.Mode == types.ModePattern {
		if patternError := commands.ValidatePatterns(commands.EffectivePatterns(options.Policy)); patternError != nil {
			return Result{}, patternError
		}
	}

	rules := options.Rules
	rules.Prefixes = utils.DeduplicatePatterns(append(append([]string(nil), rules.Prefixes...), ReservedPrefixes()...))
	matcher := exclusion.NewMatcher(rules)

	moment := now()
	treeName, snapshotName := OutputNames(moment, options.Force)
	result := Result{
		TreePath:     filepath.Join(rootPath, treeName),
		SnapshotPath: filepath.Join(rootPath, snapshotName),
	}

	fmt.Fprint(stdout, statusScanningMessage)
	treeBuilder := &commands.TreeBuilder{Exclusions: matcher, Logger: logger}
	treeRoot, treeError := treeBuilder.GetTreeData(rootPath)
	if treeError != nil {
		return Result{}, fmt.Errorf(errorBuildTreeFormat, rootPath, treeError)
	}
	if writeError := writeOutputFile(result.TreePath, output.RenderTree(treeRoot)); writeError != nil {
		return Result{}, writeError
	}
	fmt.Fprintf(stdout, statusTreeSavedFormat, treeName)

	fmt.Fprint(stdout, statusCollectingMessage)
	collector := &commands.Collector{
		Exclusions:   matcher,
		Policy:       options.Policy,
		TokenCounter: options.TokenCounter,
		Logger:       logger,
	}
	entries, collectError := collector.Collect(rootPath)
	if collectError != nil {
		return Result{}, fmt.Errorf(errorCollectFilesFormat, rootPath, collectError)
	}
	result.Summary = types.Summarize(entries, options.TokenModel)
	document := output.RenderSnapshot(output.SnapshotHeader{GeneratedAt: moment, Summary: result.Summary}, entries)
	if writeError := writeOutputFile(result.SnapshotPath, document); writeError != nil {
		return Result{}, writeError
	}
	fmt.Fprintf(stdout, statusSnapshotFormat, snapshotName, output.FormatStatusSummary(result.Summary))

	if options.Copier != nil {
		if copyError := options.Copier.Copy(document); copyError != nil {
			logger.Warn(warningClipboardMessage, zap.Error(copyError))
		} else {
			fmt.Fprint(stdout, statusCopiedMessage)
		}
	}
	return result, nil
}

// ValidateRoot returns the cleaned absolute form of root after checking that it
// is a listable directory. An empty root means the working directory.
func ValidateRoot(root string) (string, error) {
	if root == "" {
		root = "."
	}
	absoluteRoot, absoluteError := filepath.Abs(root)
	if absoluteError != nil {
		return "", fmt.Errorf(errorRootResolveFormat, root, absoluteError)
	}
	cleanRoot := filepath.Clean(absoluteRoot)
	info, statError := os.Stat(cleanRoot)
	if statError != nil {
		if errors.Is(statError, os.ErrNotExist) {
			return "", fmt.Errorf(errorRootMissingFormat, ErrRootNotFound, root)
		}
		return "", fmt.Errorf(errorRootStatFormat, ErrRootUnreadable, root, statError)
	}
	if !info.IsDir() {
		return "", fmt.Errorf(errorRootNotDirFormat, ErrRootNotFound, root)
	}
	if _, readError := os.ReadDir(cleanRoot); readError != nil {
		return "", fmt.Errorf(errorRootStatFormat, ErrRootUnreadable, root, readError)
	}
	return cleanRoot, nil
}

// writeOutputFile replaces path with content.
func writeOutputFile(path string, content string) error {
	if writeError := os.WriteFile(path, []byte(content), outputFileMode); writeError != nil {
		return fmt.Errorf(errorWriteOutputFormat, ErrWriteFailed, path, writeError)
	}
	return nil
}
