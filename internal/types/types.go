// Package types defines every cross‑package data structure used by the reposnap CLI.
package types

const (
	NodeTypeFile      = "file"
	NodeTypeDirectory = "directory"

	ModeExtension = "extension"
	ModePattern   = "pattern"

	UnreadableSkip        = "skip"
	UnreadablePlaceholder = "placeholder"
)

// TreeNode is one entry of the project tree rendered into the tree output.
type TreeNode struct {
	Path         string
	RelativePath string
	Name         string
	Type         string
	Children     []*TreeNode
}

// SelectionPolicy decides which files the snapshot collector reads.
type SelectionPolicy struct {
	Mode string
	// IncludeExtensions lists lower-case extensions without dots selected in extension mode.
	IncludeExtensions []string
	// AlwaysInclude lists exact file names selected in extension mode regardless of extension.
	AlwaysInclude []string
	// Patterns lists doublestar globs expanded in order in pattern mode.
	Patterns []string
	// PublicDirectory names the public assets subtree widened by WithPublic.
	PublicDirectory string
	WithPublic      bool
	// Unreadable is UnreadableSkip or UnreadablePlaceholder.
	Unreadable string
}

// SnapshotEntry is one file written into the snapshot document.
type SnapshotEntry struct {
	Path         string
	RelativePath string
	Language     string
	Content      string
	SizeBytes    int64
	Tokens       int
	// Omitted marks a placeholder for a file whose content could not be decoded.
	Omitted        bool
	OmissionReason string
}

// SnapshotSummary captures aggregate information about the written entries.
type SnapshotSummary struct {
	TotalFiles   int
	OmittedFiles int
	TotalBytes   int64
	TotalTokens  int
	Model        string
}

// Summarize aggregates entries into a SnapshotSummary. Omitted entries are
// counted separately and contribute no bytes or tokens.
func Summarize(entries []SnapshotEntry, model string) SnapshotSummary {
	summary := SnapshotSummary{}
	for _, entry := range entries {
		if entry.Omitted {
			summary.OmittedFiles++
			continue
		}
		summary.TotalFiles++
		summary.TotalBytes += entry.SizeBytes
		summary.TotalTokens += entry.Tokens
	}
	if summary.TotalTokens > 0 {
		summary.Model = model
	}
	return summary
}
