package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/temirov/reposnap/internal/exclusion"
	"github.com/temirov/reposnap/internal/types"
	"github.com/temirov/reposnap/internal/utils"
)

// ErrInvalidConfiguration reports a configuration value outside its allowed set.
var ErrInvalidConfiguration = errors.New("invalid configuration")

const (
	errorWorkingDirectoryFormat = "determine working directory: %w"
	errorResolvePathFormat      = "resolve configuration path %s: %w"
	errorStatConfigFormat       = "stat configuration %s: %w"
	errorConfigIsDirFormat      = "configuration path %s is a directory"
	errorReadConfigFormat       = "read configuration from %s: %w"
	errorDecodeConfigFormat     = "decode configuration from %s: %w"
	errorInvalidValueFormat     = "%w: %s must be one of %s, got %q"
)

// LoadOptions controls how application configuration is discovered.
type LoadOptions struct {
	WorkingDirectory string
	ExplicitFilePath string
}

// ApplicationConfiguration mirrors the YAML configuration file. Pointer fields
// distinguish an unset value from an explicit false.
type ApplicationConfiguration struct {
	Mode       string                     `mapstructure:"mode"`
	Unreadable string                     `mapstructure:"unreadable"`
	Exclude    ExclusionConfiguration     `mapstructure:"exclude"`
	Extension  ExtensionModeConfiguration `mapstructure:"extension"`
	Pattern    PatternModeConfiguration   `mapstructure:"pattern"`
	Paths      PathConfiguration          `mapstructure:"paths"`
	Tokens     TokenConfiguration         `mapstructure:"tokens"`
	Clipboard  *bool                      `mapstructure:"clipboard"`
}

// ExclusionConfiguration overrides the built-in exclusion lists.
type ExclusionConfiguration struct {
	Directories []string `mapstructure:"directories"`
	Files       []string `mapstructure:"files"`
	Prefixes    []string `mapstructure:"prefixes"`
	Extensions  []string `mapstructure:"extensions"`
	Patterns    []string `mapstructure:"patterns"`
}

// ExtensionModeConfiguration configures the extension allow-list mode.
type ExtensionModeConfiguration struct {
	Include       []string `mapstructure:"include"`
	AlwaysInclude []string `mapstructure:"always_include"`
}

// PatternModeConfiguration configures the explicit pattern mode.
type PatternModeConfiguration struct {
	Patterns        []string `mapstructure:"patterns"`
	PublicDirectory string   `mapstructure:"public_dir"`
}

// PathConfiguration controls which ignore files contribute path patterns.
type PathConfiguration struct {
	UseGitignore  *bool `mapstructure:"use_gitignore"`
	UseIgnoreFile *bool `mapstructure:"use_ignore"`
}

// TokenConfiguration controls token counting defaults.
type TokenConfiguration struct {
	Enabled *bool  `mapstructure:"enabled"`
	Model   string `mapstructure:"model"`
}

// ResolvedConfiguration is the effective configuration after defaults are applied.
type ResolvedConfiguration struct {
	Rules         exclusion.Rules
	Policy        types.SelectionPolicy
	UseGitignore  bool
	UseIgnoreFile bool
	TokensEnabled bool
	TokenModel    string
	Clipboard     bool
}

// LoadApplicationConfiguration loads the global configuration and overlays the
// local or explicitly named file on top of it. Missing files are not an error.
func LoadApplicationConfiguration(options LoadOptions) (ApplicationConfiguration, error) {
	workingDirectory := options.WorkingDirectory
	if workingDirectory == "" {
		currentDirectory, err := os.Getwd()
		if err != nil {
			return ApplicationConfiguration{}, fmt.Errorf(errorWorkingDirectoryFormat, err)
		}
		workingDirectory = currentDirectory
	}

	var merged ApplicationConfiguration

	if homeDirectory, err := os.UserHomeDir(); err == nil && homeDirectory != "" {
		globalPath := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName, utils.GlobalConfigFileName)
		globalConfig, loadErr := loadConfigurationFromPath(globalPath, false)
		if loadErr != nil {
			return ApplicationConfiguration{}, loadErr
		}
		merged = merged.Merge(globalConfig)
	}

	localPath, resolveErr := resolveLocalConfigPath(workingDirectory, options.ExplicitFilePath)
	if resolveErr != nil {
		return ApplicationConfiguration{}, resolveErr
	}
	localConfig, loadErr := loadConfigurationFromPath(localPath, options.ExplicitFilePath != "")
	if loadErr != nil {
		return ApplicationConfiguration{}, loadErr
	}
	merged = merged.Merge(localConfig)

	merged.Exclude.Patterns = utils.DeduplicatePatterns(merged.Exclude.Patterns)
	return merged, nil
}

func resolveLocalConfigPath(workingDirectory, explicitPath string) (string, error) {
	if explicitPath == "" {
		return filepath.Join(workingDirectory, utils.ConfigFileName), nil
	}
	if filepath.IsAbs(explicitPath) {
		return explicitPath, nil
	}
	absolute, err := filepath.Abs(explicitPath)
	if err != nil {
		return "", fmt.Errorf(errorResolvePathFormat, explicitPath, err)
	}
	return absolute, nil
}

// loadConfigurationFromPath decodes one YAML file. A missing file yields an empty
// configuration unless required is set.
func loadConfigurationFromPath(path string, required bool) (ApplicationConfiguration, error) {
	info, statErr := os.Stat(path)
	if statErr != nil {
		if os.IsNotExist(statErr) && !required {
			return ApplicationConfiguration{}, nil
		}
		return ApplicationConfiguration{}, fmt.Errorf(errorStatConfigFormat, path, statErr)
	}
	if info.IsDir() {
		return ApplicationConfiguration{}, fmt.Errorf(errorConfigIsDirFormat, path)
	}

	reader := viper.New()
	reader.SetConfigFile(path)
	reader.SetConfigType("yaml")
	if readErr := reader.ReadInConfig(); readErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorReadConfigFormat, path, readErr)
	}
	var config ApplicationConfiguration
	if decodeErr := reader.Unmarshal(&config); decodeErr != nil {
		return ApplicationConfiguration{}, fmt.Errorf(errorDecodeConfigFormat, path, decodeErr)
	}
	return config, nil
}

// Merge overlays override onto the receiver returning the combined configuration.
// Non-empty lists replace the receiver's lists as a whole.
func (config ApplicationConfiguration) Merge(override ApplicationConfiguration) ApplicationConfiguration {
	result := config
	if override.Mode != "" {
		result.Mode = override.Mode
	}
	if override.Unreadable != "" {
		result.Unreadable = override.Unreadable
	}
	result.Exclude = result.Exclude.merge(override.Exclude)
	result.Extension = result.Extension.merge(override.Extension)
	result.Pattern = result.Pattern.merge(override.Pattern)
	result.Paths = result.Paths.merge(override.Paths)
	result.Tokens = result.Tokens.merge(override.Tokens)
	if override.Clipboard != nil {
		result.Clipboard = cloneBool(override.Clipboard)
	}
	return result
}

func (config ExclusionConfiguration) merge(override ExclusionConfiguration) ExclusionConfiguration {
	result := config
	result.Directories = overrideList(result.Directories, override.Directories)
	result.Files = overrideList(result.Files, override.Files)
	result.Prefixes = overrideList(result.Prefixes, override.Prefixes)
	result.Extensions = overrideList(result.Extensions, override.Extensions)
	result.Patterns = overrideList(result.Patterns, override.Patterns)
	return result
}

func (config ExtensionModeConfiguration) merge(override ExtensionModeConfiguration) ExtensionModeConfiguration {
	result := config
	result.Include = overrideList(result.Include, override.Include)
	result.AlwaysInclude = overrideList(result.AlwaysInclude, override.AlwaysInclude)
	return result
}

func (config PatternModeConfiguration) merge(override PatternModeConfiguration) PatternModeConfiguration {
	result := config
	result.Patterns = overrideList(result.Patterns, override.Patterns)
	if override.PublicDirectory != "" {
		result.PublicDirectory = override.PublicDirectory
	}
	return result
}

func (config PathConfiguration) merge(override PathConfiguration) PathConfiguration {
	result := config
	if override.UseGitignore != nil {
		result.UseGitignore = cloneBool(override.UseGitignore)
	}
	if override.UseIgnoreFile != nil {
		result.UseIgnoreFile = cloneBool(override.UseIgnoreFile)
	}
	return result
}

func (config TokenConfiguration) merge(override TokenConfiguration) TokenConfiguration {
	result := config
	if override.Enabled != nil {
		result.Enabled = cloneBool(override.Enabled)
	}
	if override.Model != "" {
		result.Model = override.Model
	}
	return result
}

// Resolve applies built-in defaults to unset values and validates the enumerations.
func (config ApplicationConfiguration) Resolve() (ResolvedConfiguration, error) {
	mode := strings.ToLower(strings.TrimSpace(config.Mode))
	if mode == "" {
		mode = DefaultMode
	}
	if mode != types.ModeExtension && mode != types.ModePattern {
		return ResolvedConfiguration{}, fmt.Errorf(errorInvalidValueFormat, ErrInvalidConfiguration, "mode", types.ModeExtension+"|"+types.ModePattern, config.Mode)
	}
	unreadable := strings.ToLower(strings.TrimSpace(config.Unreadable))
	if unreadable == "" {
		unreadable = DefaultUnreadable
	}
	if unreadable != types.UnreadableSkip && unreadable != types.UnreadablePlaceholder {
		return ResolvedConfiguration{}, fmt.Errorf(errorInvalidValueFormat, ErrInvalidConfiguration, "unreadable", types.UnreadableSkip+"|"+types.UnreadablePlaceholder, config.Unreadable)
	}

	defaultRules := exclusion.DefaultRules()
	resolved := ResolvedConfiguration{
		Rules: exclusion.Rules{
			Directories:  listOrDefault(config.Exclude.Directories, defaultRules.Directories),
			Files:        listOrDefault(config.Exclude.Files, defaultRules.Files),
			Prefixes:     listOrDefault(config.Exclude.Prefixes, defaultRules.Prefixes),
			Extensions:   listOrDefault(config.Exclude.Extensions, defaultRules.Extensions),
			PathPatterns: utils.DeduplicatePatterns(config.Exclude.Patterns),
		},
		Policy: types.SelectionPolicy{
			Mode:              mode,
			IncludeExtensions: listOrDefault(config.Extension.Include, DefaultIncludeExtensions),
			AlwaysInclude:     listOrDefault(config.Extension.AlwaysInclude, DefaultAlwaysInclude),
			Patterns:          listOrDefault(config.Pattern.Patterns, DefaultPatterns),
			PublicDirectory:   config.Pattern.PublicDirectory,
			Unreadable:        unreadable,
		},
		UseGitignore:  boolOrDefault(config.Paths.UseGitignore, false),
		UseIgnoreFile: boolOrDefault(config.Paths.UseIgnoreFile, false),
		TokensEnabled: boolOrDefault(config.Tokens.Enabled, false),
		TokenModel:    config.Tokens.Model,
		Clipboard:     boolOrDefault(config.Clipboard, false),
	}
	if resolved.Policy.PublicDirectory == "" {
		resolved.Policy.PublicDirectory = DefaultPublicDirectory
	}
	if resolved.TokenModel == "" {
		resolved.TokenModel = DefaultTokenModel
	}
	return resolved, nil
}

func overrideList(current []string, override []string) []string {
	if len(override) == 0 {
		return current
	}
	return append([]string{}, override...)
}

func listOrDefault(values []string, defaults []string) []string {
	if len(values) == 0 {
		return append([]string(nil), defaults...)
	}
	return append([]string(nil), values...)
}

func boolOrDefault(value *bool, defaultValue bool) bool {
	if value == nil {
		return defaultValue
	}
	return *value
}

func cloneBool(value *bool) *bool {
	if value == nil {
		return nil
	}
	cloned := *value
	return &cloned
}
