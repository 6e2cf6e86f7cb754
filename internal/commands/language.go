package commands

import (
	"path/filepath"

	"github.com/temirov/reposnap/internal/utils"
)

// defaultLanguageTag labels files without any extension.
const defaultLanguageTag = "text"

var languageTagsByExtension = map[string]string{
	"ts":   "typescript",
	"tsx":  "typescript",
	"mts":  "typescript",
	"cts":  "typescript",
	"js":   "javascript",
	"jsx":  "javascript",
	"mjs":  "javascript",
	"cjs":  "javascript",
	"sql":  "sql",
	"yml":  "yaml",
	"yaml": "yaml",
	"py":   "python",
	"md":   "markdown",
	"sh":   "bash",
	"rs":   "rust",
	"rb":   "ruby",
	"kt":   "kotlin",
	"htm":  "html",
}

var languageTagsByFileName = map[string]string{
	"Dockerfile": "dockerfile",
	"Makefile":   "makefile",
	"go.mod":     "go",
}

// LanguageTag derives the fence tag for a file. Known names and extensions map to
// their display tag, other extensions are used verbatim and files without an
// extension fall back to "text".
func LanguageTag(filePath string) string {
	fileName := filepath.Base(filePath)
	if tag, known := languageTagsByFileName[fileName]; known {
		return tag
	}
	extension := utils.FileExtension(fileName)
	if tag, known := languageTagsByExtension[extension]; known {
		return tag
	}
	if extension == "" {
		return defaultLanguageTag
	}
	return extension
}
