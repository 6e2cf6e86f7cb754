package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/temirov/reposnap/internal/utils"
)

// InitTarget identifies where configuration should be initialized.
type InitTarget string

const (
	// InitTargetLocal writes configuration into the project root.
	InitTargetLocal InitTarget = "local"
	// InitTargetGlobal writes configuration into the global configuration directory.
	InitTargetGlobal InitTarget = "global"

	defaultConfigurationTemplate = `# reposnap configuration
# mode: extension collects files by extension, pattern expands the globs below in order.
mode: extension
# unreadable: skip drops binary or non-UTF-8 files, placeholder keeps an omitted entry.
unreadable: skip
exclude:
  directories:
    - .git
    - .idea
    - .vscode
    - __pycache__
    - node_modules
    - venv
    - .mypy_cache
    - .pytest_cache
    - .DS_Store
    - .next
    - dist
    - build
    - out
    - .turbo
    - .cache
    - .parcel-cache
    - coverage
  files:
    - .env
    - .env.local
    - .env.production
    - .env.development
    - pnpm-lock.yaml
    - package-lock.json
  prefixes:
    - PROJECT_TREE_
    - CODE_SNAPSHOT_
  extensions: []
  patterns: []
extension:
  include: [ts, tsx, js, jsx, css, scss, html, json, md, py, sql, mjs, yml, yaml, prisma]
  always_include: [README.md, .gitignore, docker-compose.yml]
pattern:
  patterns:
    - package.json
    - tsconfig.json
    - next.config.*
    - middleware.ts
    - app/**
    - components/**
    - lib/**
    - db/**
    - i18n/**
    - utils/**
    - scripts/**
  public_dir: public
paths:
  use_gitignore: false
  use_ignore: false
tokens:
  enabled: false
  model: gpt-4o
clipboard: false
`

	errorInitWorkingDirectoryFormat = "determine working directory for configuration: %w"
	errorInitHomeDirectoryFormat    = "resolve home directory for configuration: %w"
	errorInitCreateDirectoryFormat  = "create configuration directory %s: %w"
	errorInitUnsupportedFormat      = "unsupported init target %q"
	errorInitExistsFormat           = "configuration file already exists at %s"
	errorInitInspectFormat          = "inspect configuration path %s: %w"
	errorInitWriteFormat            = "write configuration to %s: %w"
)

// InitOptions controls how configuration initialization behaves.
type InitOptions struct {
	Target           InitTarget
	Force            bool
	WorkingDirectory string
}

// DefaultConfigurationTemplate returns the YAML written by InitializeConfiguration.
func DefaultConfigurationTemplate() string {
	return defaultConfigurationTemplate
}

// InitializeConfiguration writes the default configuration to the requested target
// and returns the written path. An existing file is replaced only with Force.
func InitializeConfiguration(options InitOptions) (string, error) {
	target := options.Target
	if target == "" {
		target = InitTargetLocal
	}
	var destinationPath string
	switch target {
	case InitTargetLocal:
		workingDirectory := options.WorkingDirectory
		if workingDirectory == "" {
			current, err := os.Getwd()
			if err != nil {
				return "", fmt.Errorf(errorInitWorkingDirectoryFormat, err)
			}
			workingDirectory = current
		}
		destinationPath = filepath.Join(workingDirectory, utils.ConfigFileName)
	case InitTargetGlobal:
		homeDirectory, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf(errorInitHomeDirectoryFormat, err)
		}
		configurationDirectory := filepath.Join(homeDirectory, utils.GlobalConfigDirectoryName)
		if err := os.MkdirAll(configurationDirectory, 0o755); err != nil {
			return "", fmt.Errorf(errorInitCreateDirectoryFormat, configurationDirectory, err)
		}
		destinationPath = filepath.Join(configurationDirectory, utils.GlobalConfigFileName)
	default:
		return "", fmt.Errorf(errorInitUnsupportedFormat, target)
	}

	if _, err := os.Stat(destinationPath); err == nil {
		if !options.Force {
			return "", fmt.Errorf(errorInitExistsFormat, destinationPath)
		}
	} else if !os.IsNotExist(err) {
		return "", fmt.Errorf(errorInitInspectFormat, destinationPath, err)
	}

	if err := os.WriteFile(destinationPath, []byte(defaultConfigurationTemplate), 0o600); err != nil {
		return "", fmt.Errorf(errorInitWriteFormat, destinationPath, err)
	}

	return destinationPath, nil
}
