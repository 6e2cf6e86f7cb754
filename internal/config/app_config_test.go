package config

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/temirov/reposnap/internal/exclusion"
	"github.com/temirov/reposnap/internal/types"
	"github.com/temirov/reposnap/internal/utils"
)

type configTestCase struct {
	name             string
	globalContent    string
	localContent     string
	explicitContent  string
	expectMode       string
	expectUnreadable string
	expectTokens     *bool
	expectModel      string
	expectClipboard  *bool
	expectPatterns   []string
}

func boolPointer(value bool) *bool {
	pointer := value
	return &pointer
}

func writeConfigurationFiles(t *testing.T, testCase configTestCase) (string, string) {
	t.Helper()
	homeDir := t.TempDir()
	workingDir := t.TempDir()
	configDir := filepath.Join(homeDir, utils.GlobalConfigDirectoryName)
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("create config dir: %v", err)
	}
	if testCase.globalContent != "" {
		globalPath := filepath.Join(configDir, utils.GlobalConfigFileName)
		if err := os.WriteFile(globalPath, []byte(testCase.globalContent), 0o600); err != nil {
			t.Fatalf("write global config: %v", err)
		}
	}
	if testCase.localContent != "" {
		localPath := filepath.Join(workingDir, utils.ConfigFileName)
		if err := os.WriteFile(localPath, []byte(testCase.localContent), 0o600); err != nil {
			t.Fatalf("write local config: %v", err)
		}
	}
	explicitPath := ""
	if testCase.explicitContent != "" {
		explicitPath = filepath.Join(workingDir, "custom.yaml")
		if err := os.WriteFile(explicitPath, []byte(testCase.explicitContent), 0o600); err != nil {
			t.Fatalf("write explicit config: %v", err)
		}
	}
	t.Setenv("HOME", homeDir)
	t.Setenv("USERPROFILE", homeDir)
	return workingDir, explicitPath
}

func TestLoadApplicationConfigurationMergesSources(t *testing.T) {
	testCases := []configTestCase{
		{
			name:             "local_overrides_global",
			globalContent:    "mode: pattern\nunreadable: placeholder\nclipboard: true\ntokens:\n  enabled: true\n  model: gpt-4\n",
			localContent:     "mode: extension\ntokens:\n  model: custom\n",
			expectMode:       "extension",
			expectUnreadable: "placeholder",
			expectTokens:     boolPointer(true),
			expectModel:      "custom",
			expectClipboard:  boolPointer(true),
		},
		{
			name:            "explicit_path_replaces_local",
			globalContent:   "clipboard: false\n",
			localContent:    "mode: extension\n",
			explicitContent: "mode: pattern\npattern:\n  patterns:\n    - app/**\n",
			expectMode:      "pattern",
			expectClipboard: boolPointer(false),
			expectPatterns:  []string{"app/**"},
		},
		{
			name:           "global_only",
			globalContent:  "pattern:\n  patterns: [lib/**, db/**]\n",
			expectPatterns: []string{"lib/**", "db/**"},
		},
		{
			name: "no_files",
		},
	}

	for _, testCase := range testCases {
		t.Run(testCase.name, func(t *testing.T) {
			workingDir, explicitPath := writeConfigurationFiles(t, testCase)
			loadedConfig, err := LoadApplicationConfiguration(LoadOptions{
				WorkingDirectory: workingDir,
				ExplicitFilePath: explicitPath,
			})
			if err != nil {
				t.Fatalf("LoadApplicationConfiguration error: %v", err)
			}
			if loadedConfig.Mode != testCase.expectMode {
				t.Fatalf("expected mode %q, got %q", testCase.expectMode, loadedConfig.Mode)
			}
			if loadedConfig.Unreadable != testCase.expectUnreadable {
				t.Fatalf("expected unreadable %q, got %q", testCase.expectUnreadable, loadedConfig.Unreadable)
			}
			if testCase.expectTokens == nil {
				if loadedConfig.Tokens.Enabled != nil {
					t.Fatalf("expected no tokens override")
				}
			} else if loadedConfig.Tokens.Enabled == nil || *loadedConfig.Tokens.Enabled != *testCase.expectTokens {
				t.Fatalf("unexpected tokens enabled value")
			}
			if loadedConfig.Tokens.Model != testCase.expectModel {
				t.Fatalf("expected model %q, got %q", testCase.expectModel, loadedConfig.Tokens.Model)
			}
			if testCase.expectClipboard == nil {
				if loadedConfig.Clipboard != nil {
					t.Fatalf("expected no clipboard override")
				}
			} else if loadedConfig.Clipboard == nil || *loadedConfig.Clipboard != *testCase.expectClipboard {
				t.Fatalf("unexpected clipboard value")
			}
			if len(testCase.expectPatterns) > 0 && !reflect.DeepEqual(loadedConfig.Pattern.Patterns, testCase.expectPatterns) {
				t.Fatalf("expected patterns %v, got %v", testCase.expectPatterns, loadedConfig.Pattern.Patterns)
			}
		})
	}
}

func TestLoadApplicationConfigurationMissingExplicitFile(t *testing.T) {
	workingDir, _ := writeConfigurationFiles(t, configTestCase{})
	_, err := LoadApplicationConfiguration(LoadOptions{
		WorkingDirectory: workingDir,
		ExplicitFilePath: filepath.Join(workingDir, "absent.yaml"),
	})
	if err == nil {
		t.Fatalf("expected error for missing explicit configuration")
	}
}

func TestLoadApplicationConfigurationRejectsMalformedYAML(t *testing.T) {
	workingDir, _ := writeConfigurationFiles(t, configTestCase{localContent: "mode: [unterminated\n"})
	if _, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir}); err == nil {
		t.Fatalf("expected error for malformed configuration")
	}
}

func TestResolveAppliesDefaults(t *testing.T) {
	resolved, err := ApplicationConfiguration{}.Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if resolved.Policy.Mode != types.ModeExtension || resolved.Policy.Unreadable != types.UnreadableSkip {
		t.Fatalf("unexpected policy defaults %+v", resolved.Policy)
	}
	if !reflect.DeepEqual(resolved.Policy.IncludeExtensions, DefaultIncludeExtensions) {
		t.Fatalf("unexpected include extensions %v", resolved.Policy.IncludeExtensions)
	}
	if !reflect.DeepEqual(resolved.Policy.AlwaysInclude, DefaultAlwaysInclude) {
		t.Fatalf("unexpected always include %v", resolved.Policy.AlwaysInclude)
	}
	if !reflect.DeepEqual(resolved.Policy.Patterns, DefaultPatterns) {
		t.Fatalf("unexpected patterns %v", resolved.Policy.Patterns)
	}
	if resolved.Policy.PublicDirectory != DefaultPublicDirectory {
		t.Fatalf("unexpected public directory %q", resolved.Policy.PublicDirectory)
	}
	defaultRules := exclusion.DefaultRules()
	if !reflect.DeepEqual(resolved.Rules.Directories, defaultRules.Directories) || !reflect.DeepEqual(resolved.Rules.Files, defaultRules.Files) {
		t.Fatalf("unexpected exclusion rules %+v", resolved.Rules)
	}
	if resolved.TokensEnabled || resolved.Clipboard || resolved.UseGitignore || resolved.UseIgnoreFile {
		t.Fatalf("expected switches off by default: %+v", resolved)
	}
	if resolved.TokenModel != DefaultTokenModel {
		t.Fatalf("unexpected token model %q", resolved.TokenModel)
	}
}

func TestResolveRejectsUnknownValues(t *testing.T) {
	testCases := []ApplicationConfiguration{
		{Mode: "everything"},
		{Unreadable: "ignore"},
	}
	for _, configuration := range testCases {
		if _, err := configuration.Resolve(); !errors.Is(err, ErrInvalidConfiguration) {
			t.Fatalf("expected ErrInvalidConfiguration for %+v, got %v", configuration, err)
		}
	}
}

func TestResolveNormalizesCase(t *testing.T) {
	resolved, err := ApplicationConfiguration{Mode: " Pattern ", Unreadable: "PLACEHOLDER"}.Resolve()
	if err != nil {
		t.Fatalf("Resolve error: %v", err)
	}
	if resolved.Policy.Mode != types.ModePattern || resolved.Policy.Unreadable != types.UnreadablePlaceholder {
		t.Fatalf("unexpected policy %+v", resolved.Policy)
	}
}

func TestMergeReplacesListsAndKeepsUnset(t *testing.T) {
	base := ApplicationConfiguration{
		Exclude:   ExclusionConfiguration{Directories: []string{"vendor"}, Patterns: []string{"*.log"}},
		Extension: ExtensionModeConfiguration{Include: []string{"go"}},
		Paths:     PathConfiguration{UseGitignore: boolPointer(true)},
	}
	override := ApplicationConfiguration{
		Exclude: ExclusionConfiguration{Directories: []string{"tmp"}},
		Paths:   PathConfiguration{UseIgnoreFile: boolPointer(true)},
	}
	merged := base.Merge(override)
	if !reflect.DeepEqual(merged.Exclude.Directories, []string{"tmp"}) {
		t.Fatalf("expected override directories, got %v", merged.Exclude.Directories)
	}
	if !reflect.DeepEqual(merged.Exclude.Patterns, []string{"*.log"}) {
		t.Fatalf("expected base patterns kept, got %v", merged.Exclude.Patterns)
	}
	if !reflect.DeepEqual(merged.Extension.Include, []string{"go"}) {
		t.Fatalf("expected base include kept, got %v", merged.Extension.Include)
	}
	if merged.Paths.UseGitignore == nil || !*merged.Paths.UseGitignore || merged.Paths.UseIgnoreFile == nil || !*merged.Paths.UseIgnoreFile {
		t.Fatalf("unexpected path switches %+v", merged.Paths)
	}
}

func TestDefaultTemplateMatchesBuiltInDefaults(t *testing.T) {
	workingDir, _ := writeConfigurationFiles(t, configTestCase{localContent: DefaultConfigurationTemplate()})
	loadedConfig, err := LoadApplicationConfiguration(LoadOptions{WorkingDirectory: workingDir})
	if err != nil {
		t.Fatalf("LoadApplicationConfiguration error: %v", err)
	}
	fromTemplate, err := loadedConfig.Resolve()
	if err != nil {
		t.Fatalf("Resolve template error: %v", err)
	}
	builtIn, err := ApplicationConfiguration{}.Resolve()
	if err != nil {
		t.Fatalf("Resolve defaults error: %v", err)
	}
	if !reflect.DeepEqual(fromTemplate.Policy, builtIn.Policy) {
		t.Fatalf("template policy differs:\n%+v\n%+v", fromTemplate.Policy, builtIn.Policy)
	}
	if !reflect.DeepEqual(fromTemplate.Rules.Directories, builtIn.Rules.Directories) ||
		!reflect.DeepEqual(fromTemplate.Rules.Files, builtIn.Rules.Files) ||
		!reflect.DeepEqual(fromTemplate.Rules.Prefixes, builtIn.Rules.Prefixes) {
		t.Fatalf("template rules differ:\n%+v\n%+v", fromTemplate.Rules, builtIn.Rules)
	}
}
