package commands

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/reposnap/internal/exclusion"
	"github.com/temirov/reposnap/internal/tokenizer"
	"github.com/temirov/reposnap/internal/types"
	"github.com/temirov/reposnap/internal/utils"
)

const (
	// warningAccessPathMessage is logged when the walk cannot enter a path.
	warningAccessPathMessage = "skipping inaccessible path"
	// warningReadFileMessage is logged when a selected file cannot be read.
	warningReadFileMessage = "skipping unreadable file"
	// warningUndecodableFileMessage is logged when a selected file is not valid text.
	warningUndecodableFileMessage = "skipping binary or non-UTF-8 file"
	// warningPlaceholderMessage is logged when a placeholder replaces file content.
	warningPlaceholderMessage = "omitting file content"
	// warningTokenCountMessage is logged when token estimation fails for a file.
	warningTokenCountMessage = "failed to count tokens"

	// omittedUndecodableReasonFormat describes a placeholder for binary content.
	omittedUndecodableReasonFormat = "binary or non-UTF-8 content, %s, %s"
	// omittedUnreadableReason describes a placeholder for a file that could not be read.
	omittedUnreadableReason = "file could not be read"

	// errorUnsupportedModeFormat reports an unknown selection mode.
	errorUnsupportedModeFormat = "unsupported selection mode %q"
	// errorWalkRootFormat reports a failure to walk the root directory.
	errorWalkRootFormat = "walking %s: %w"
)

// Collector selects and reads the files written into the snapshot document.
type Collector struct {
	Exclusions   *exclusion.Matcher
	Policy       types.SelectionPolicy
	TokenCounter tokenizer.Counter
	Logger       *zap.Logger
}

// selectedFile is a file chosen by a selection policy before it is read.
type selectedFile struct {
	absolutePath string
	relativePath string
}

// Collect selects files under rootPath according to the policy and reads them in order.
// Files that cannot be read or decoded never abort the run: they are skipped or
// replaced with an omitted placeholder entry depending on Policy.Unreadable.
func (collector *Collector) Collect(rootPath string) ([]types.SnapshotEntry, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootPath, absolutePathError)
	}
	cleanedRootPath := filepath.Clean(absoluteRootPath)

	var selected []selectedFile
	var selectionError error
	switch collector.Policy.Mode {
	case types.ModeExtension, "":
		selected, selectionError = collector.selectByExtension(cleanedRootPath)
	case types.ModePattern:
		selected, selectionError = collector.selectByPattern(cleanedRootPath)
	default:
		return nil, fmt.Errorf(errorUnsupportedModeFormat, collector.Policy.Mode)
	}
	if selectionError != nil {
		return nil, selectionError
	}

	entries := make([]types.SnapshotEntry, 0, len(selected))
	for _, file := range selected {
		if entry, keep := collector.readEntry(file); keep {
			entries = append(entries, entry)
		}
	}
	return entries, nil
}

// selectByExtension walks the whole tree, pruning excluded directories, and
// returns allow-listed files ordered by path segments.
func (collector *Collector) selectByExtension(rootPath string) ([]selectedFile, error) {
	allowedExtensions := make(map[string]struct{}, len(collector.Policy.IncludeExtensions))
	for _, extension := range collector.Policy.IncludeExtensions {
		normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(extension), "."))
		if normalized != "" {
			allowedExtensions[normalized] = struct{}{}
		}
	}
	alwaysIncluded := make(map[string]struct{}, len(collector.Policy.AlwaysInclude))
	for _, fileName := range collector.Policy.AlwaysInclude {
		alwaysIncluded[strings.TrimSpace(fileName)] = struct{}{}
	}

	var selected []selectedFile
	directoryWalkError := filepath.WalkDir(rootPath, func(walkedPath string, directoryEntry fs.DirEntry, accessError error) error {
		relativePath := utils.RelativePathOrSelf(walkedPath, rootPath)
		if accessError != nil {
			if relativePath == "." {
				return accessError
			}
			collector.logger().Warn(warningAccessPathMessage, zap.String("path", relativePath), zap.Error(accessError))
			if directoryEntry != nil && directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if relativePath == "." {
			return nil
		}
		if collector.Exclusions.Excludes(relativePath) {
			collector.logger().Debug(debugExcludedEntryMessage, zap.String("path", relativePath))
			if directoryEntry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if directoryEntry.IsDir() || !isRegularFile(walkedPath, directoryEntry) {
			return nil
		}
		_, nameIncluded := alwaysIncluded[directoryEntry.Name()]
		_, extensionIncluded := allowedExtensions[utils.FileExtension(directoryEntry.Name())]
		if nameIncluded || extensionIncluded {
			selected = append(selected, selectedFile{absolutePath: walkedPath, relativePath: relativePath})
		}
		return nil
	})
	if directoryWalkError != nil {
		return nil, fmt.Errorf(errorWalkRootFormat, rootPath, directoryWalkError)
	}

	sort.SliceStable(selected, func(left, right int) bool {
		return utils.ComparePathSegments(selected[left].relativePath, selected[right].relativePath) < 0
	})
	return selected, nil
}

// readEntry loads one selected file. The boolean result is false when the file is skipped.
func (collector *Collector) readEntry(file selectedFile) (types.SnapshotEntry, bool) {
	entry := types.SnapshotEntry{
		Path:         file.absolutePath,
		RelativePath: file.relativePath,
		Language:     LanguageTag(file.relativePath),
	}

	fileBytes, fileReadError := os.ReadFile(file.absolutePath)
	if fileReadError != nil {
		if collector.usePlaceholders() {
			collector.logger().Warn(warningPlaceholderMessage, zap.String("path", file.relativePath), zap.Error(fileReadError))
			entry.Omitted = true
			entry.OmissionReason = omittedUnreadableReason
			return entry, true
		}
		collector.logger().Warn(warningReadFileMessage, zap.String("path", file.relativePath), zap.Error(fileReadError))
		return types.SnapshotEntry{}, false
	}

	fileContent, decoded := utils.DecodeText(fileBytes)
	if !decoded {
		if collector.usePlaceholders() {
			collector.logger().Warn(warningPlaceholderMessage, zap.String("path", file.relativePath))
			entry.Omitted = true
			entry.OmissionReason = fmt.Sprintf(omittedUndecodableReasonFormat, utils.DetectMimeType(fileBytes), utils.FormatFileSize(int64(len(fileBytes))))
			return entry, true
		}
		collector.logger().Warn(warningUndecodableFileMessage, zap.String("path", file.relativePath))
		return types.SnapshotEntry{}, false
	}

	entry.Content = fileContent
	entry.SizeBytes = int64(len(fileBytes))
	if collector.TokenCounter != nil {
		tokens, tokenError := tokenizer.CountText(collector.TokenCounter, fileContent)
		if tokenError != nil {
			collector.logger().Warn(warningTokenCountMessage, zap.String("path", file.relativePath), zap.Error(tokenError))
		} else {
			entry.Tokens = tokens
		}
	}
	return entry, true
}

func (collector *Collector) usePlaceholders() bool {
	return collector.Policy.Unreadable == types.UnreadablePlaceholder
}

func (collector *Collector) logger() *zap.Logger {
	if collector.Logger == nil {
		return zap.NewNop()
	}
	return collector.Logger
}

// isRegularFile reports whether the entry is a regular file, resolving symbolic links to files.
func isRegularFile(walkedPath string, directoryEntry fs.DirEntry) bool {
	if directoryEntry.Type().IsRegular() {
		return true
	}
	if directoryEntry.Type()&fs.ModeSymlink == 0 {
		return false
	}
	targetInfo, statError := os.Stat(walkedPath)
	return statError == nil && targetInfo.Mode().IsRegular()
}
