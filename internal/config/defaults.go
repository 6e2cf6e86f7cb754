package config

import "github.com/temirov/reposnap/internal/types"

const (
	// DefaultMode selects files by extension when no mode is configured.
	DefaultMode = types.ModeExtension
	// DefaultUnreadable drops files whose content cannot be decoded.
	DefaultUnreadable = types.UnreadableSkip
	// DefaultPublicDirectory is the public assets directory widened by --with-public.
	DefaultPublicDirectory = "public"
	// DefaultTokenModel is the tokenizer model used when token counting is enabled.
	DefaultTokenModel = "gpt-4o"
)

// DefaultIncludeExtensions lists the text source extensions collected in extension mode.
var DefaultIncludeExtensions = []string{
	"ts", "tsx", "js", "jsx", "css", "scss", "html",
	"json", "md", "py", "sql", "mjs", "yml", "yaml", "prisma",
}

// DefaultAlwaysInclude lists file names collected in extension mode regardless of extension.
var DefaultAlwaysInclude = []string{"README.md", ".gitignore", "docker-compose.yml"}

// DefaultPatterns lists the globs expanded in pattern mode, in output order.
var DefaultPatterns = []string{
	"package.json",
	"tsconfig.json",
	"next.config.*",
	"middleware.ts",
	"app/**",
	"components/**",
	"lib/**",
	"db/**",
	"i18n/**",
	"utils/**",
	"scripts/**",
}
