package output

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/temirov/reposnap/internal/types"
	"github.com/temirov/reposnap/internal/utils"
)

const (
	snapshotTitleFormat     = "# Code snapshot (%s)\n"
	totalFilesFormat        = "Total files: %d"
	tokenSuffixFormat       = " (%d tokens, model: %s)"
	omittedFilesFormat      = "Omitted files: %d\n"
	entryHeadingFormat      = "## %s\n\n"
	omittedContentFormat    = "_Content omitted: %s_\n"
	entrySeparator          = "\n---\n\n"
	minimumFenceLength      = 3
	fenceCharacter          = "`"
	fenceCharacterRune      = '`'
	statusSummaryFormat     = "%d %s, %s"
	statusSingularFileLabel = "file"
	statusPluralFileLabel   = "files"
)

// SnapshotHeader carries the values written above the first entry.
type SnapshotHeader struct {
	GeneratedAt time.Time
	Summary     types.SnapshotSummary
}

// RenderSnapshot returns the Markdown snapshot document. Each entry becomes a
// "## <path>" section holding a fenced block tagged with its language, or an
// omission note for placeholder entries, followed by a "---" separator.
func RenderSnapshot(header SnapshotHeader, entries []types.SnapshotEntry) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, snapshotTitleFormat, utils.FormatHeaderTimestamp(header.GeneratedAt))
	builder.WriteString(FormatCountLine(header.Summary))
	builder.WriteString(lineSeparator)
	if header.Summary.OmittedFiles > 0 {
		fmt.Fprintf(&builder, omittedFilesFormat, header.Summary.OmittedFiles)
	}
	builder.WriteString(lineSeparator)

	for _, entry := range entries {
		fmt.Fprintf(&builder, entryHeadingFormat, entry.RelativePath)
		if entry.Omitted {
			fmt.Fprintf(&builder, omittedContentFormat, entry.OmissionReason)
			builder.WriteString(entrySeparator)
			continue
		}
		fence := fenceFor(entry.Content)
		builder.WriteString(fence)
		builder.WriteString(entry.Language)
		builder.WriteString(lineSeparator)
		builder.WriteString(entry.Content)
		if entry.Content != "" && !strings.HasSuffix(entry.Content, lineSeparator) {
			builder.WriteString(lineSeparator)
		}
		builder.WriteString(fence)
		builder.WriteString(lineSeparator)
		builder.WriteString(entrySeparator)
	}
	return builder.String()
}

// WriteSnapshot writes RenderSnapshot output to writer.
func WriteSnapshot(writer io.Writer, header SnapshotHeader, entries []types.SnapshotEntry) error {
	_, writeError := io.WriteString(writer, RenderSnapshot(header, entries))
	return writeError
}

// FormatCountLine formats the file count line of the snapshot header.
func FormatCountLine(summary types.SnapshotSummary) string {
	line := fmt.Sprintf(totalFilesFormat, summary.TotalFiles)
	if summary.TotalTokens > 0 && summary.Model != "" {
		line += fmt.Sprintf(tokenSuffixFormat, summary.TotalTokens, summary.Model)
	}
	return line
}

// FormatStatusSummary formats the parenthesized summary of the console status line.
func FormatStatusSummary(summary types.SnapshotSummary) string {
	label := statusPluralFileLabel
	if summary.TotalFiles == 1 {
		label = statusSingularFileLabel
	}
	return fmt.Sprintf(statusSummaryFormat, summary.TotalFiles, label, utils.FormatFileSize(summary.TotalBytes))
}

// fenceFor returns a backtick fence longer than any backtick run inside content.
func fenceFor(content string) string {
	longestRun := 0
	currentRun := 0
	for _, character := range content {
		if character == fenceCharacterRune {
			currentRun++
			if currentRun > longestRun {
				longestRun = currentRun
			}
			continue
		}
		currentRun = 0
	}
	fenceLength := minimumFenceLength
	if longestRun >= fenceLength {
		fenceLength = longestRun + 1
	}
	return strings.Repeat(fenceCharacter, fenceLength)
}
