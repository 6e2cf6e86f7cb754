// Package cli provides the command line interface.
package cli

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/reposnap/internal/config"
	"github.com/temirov/reposnap/internal/exclusion"
	"github.com/temirov/reposnap/internal/services/clipboard"
	"github.com/temirov/reposnap/internal/snapshot"
	"github.com/temirov/reposnap/internal/tokenizer"
	"github.com/temirov/reposnap/internal/utils"
)

const (
	forceFlagName        = "force"
	withPublicFlagName   = "with-public"
	modeFlagName         = "mode"
	configFlagName       = "config"
	exclusionFlagName    = "e"
	useGitignoreFlagName = "use-gitignore"
	useIgnoreFlagName    = "use-ignore"
	tokensFlagName       = "tokens"
	modelFlagName        = "model"
	copyFlagName         = "copy"
	verboseFlagName      = "verbose"
	globalFlagName       = "global"

	defaultPath          = "."
	rootUse              = "reposnap [root]"
	rootShortDescription = "write a project tree and a Markdown code snapshot"
	rootLongDescription  = `reposnap scans a project directory and writes two files into it:
a PROJECT_TREE_<date> text file with the directory tree and a CODE_SNAPSHOT_<date>
Markdown file with the selected source files in fenced blocks.
Use --mode to choose between the extension allow-list and the ordered pattern list,
and --force to overwrite today's snapshot instead of adding a timestamped one.`
	rootUsageExample = `  # Snapshot the current directory
  reposnap

  # Overwrite today's snapshot of a project selected by patterns, including public/
  reposnap --mode pattern --with-public --force ./web

  # Count tokens and copy the snapshot to the clipboard
  reposnap --tokens --copy .`
	versionTemplate = "reposnap version: {{.Version}}\n"

	initUse              = "init"
	initShortDescription = "write the default configuration file"
	initLongDescription  = `Write the default configuration to .reposnap.yaml in the current directory,
or to ~/.reposnap/config.yaml with --global.`
	initWrittenFormat = "Configuration written to %s\n"

	forceFlagDescription        = "use date-only output names and overwrite today's snapshot"
	withPublicFlagDescription   = "in pattern mode, include every file under the public directory"
	modeFlagDescription         = "file selection mode: extension or pattern"
	configFlagDescription       = "path to a configuration file used instead of <root>/.reposnap.yaml"
	exclusionFlagDescription    = "exclude path pattern"
	useGitignoreFlagDescription = "exclude paths listed in .gitignore files"
	useIgnoreFlagDescription    = "exclude paths listed in .ignore files"
	tokensFlagDescription       = "count tokens of the collected files"
	modelFlagDescription        = "tokenizer model to use for token counting"
	copyFlagDescription         = "copy the snapshot document to the clipboard"
	verboseFlagDescription      = "log debug diagnostics"
	initGlobalFlagDescription   = "write the global configuration file"
	initForceFlagDescription    = "overwrite an existing configuration file"

	debugConfigurationMessage  = "resolved configuration"
	debugIgnorePatternsMessage = "loaded ignore patterns"

	errorLoadConfigurationFormat = "loading configuration: %w"
	errorIgnorePatternsFormat    = "loading ignore patterns: %w"
	errorTokenizerFormat         = "initializing tokenizer: %w"
)

// Exit codes returned by the reposnap binary.
const (
	ExitCodeSuccess      = 0
	ExitCodeFailure      = 1
	ExitCodeRootNotFound = 2
	ExitCodeWriteFailed  = 3
)

// Dependencies carries the collaborators a command needs. Zero values fall back
// to the production implementations.
type Dependencies struct {
	Logger      *zap.Logger
	LoggerLevel *zap.AtomicLevel
	Copier      clipboard.Copier
	Now         func() time.Time
	Stdout      io.Writer
}

// snapshotFlags holds the values bound to the root command flags.
type snapshotFlags struct {
	force             bool
	withPublic        bool
	mode              string
	configPath        string
	exclusionPatterns []string
	useGitignore      bool
	useIgnoreFile     bool
	tokens            bool
	model             string
	copy              bool
	verbose           bool
}

// Execute runs the reposnap application with the process arguments.
func Execute(dependencies Dependencies) error {
	rootCommand := NewRootCommand(dependencies)
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, os.Args[1:]))
	return rootCommand.Execute()
}

// ExitCode maps an Execute error to the process exit status.
func ExitCode(executionError error) int {
	switch {
	case executionError == nil:
		return ExitCodeSuccess
	case errors.Is(executionError, snapshot.ErrRootNotFound):
		return ExitCodeRootNotFound
	case errors.Is(executionError, snapshot.ErrWriteFailed):
		return ExitCodeWriteFailed
	default:
		return ExitCodeFailure
	}
}

// NewRootCommand builds the root Cobra command.
func NewRootCommand(dependencies Dependencies) *cobra.Command {
	flags := &snapshotFlags{}

	rootCommand := &cobra.Command{
		Use:           rootUse,
		Short:         rootShortDescription,
		Long:          rootLongDescription,
		Example:       rootUsageExample,
		Args:          cobra.MaximumNArgs(1),
		Version:       utils.GetApplicationVersion(),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if flags.verbose && dependencies.LoggerLevel != nil {
				dependencies.LoggerLevel.SetLevel(zap.DebugLevel)
			}
		},
		RunE: func(command *cobra.Command, arguments []string) error {
			root := defaultPath
			if len(arguments) > 0 {
				root = arguments[0]
			}
			return runSnapshot(command, root, flags, dependencies)
		},
	}
	rootCommand.SetVersionTemplate(versionTemplate)

	flagSet := rootCommand.Flags()
	registerBooleanFlag(flagSet, &flags.force, forceFlagName, false, forceFlagDescription)
	registerBooleanFlag(flagSet, &flags.withPublic, withPublicFlagName, false, withPublicFlagDescription)
	flagSet.StringVar(&flags.mode, modeFlagName, "", modeFlagDescription)
	flagSet.StringVar(&flags.configPath, configFlagName, "", configFlagDescription)
	flagSet.StringArrayVarP(&flags.exclusionPatterns, exclusionFlagName, exclusionFlagName, nil, exclusionFlagDescription)
	registerBooleanFlag(flagSet, &flags.useGitignore, useGitignoreFlagName, false, useGitignoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.useIgnoreFile, useIgnoreFlagName, false, useIgnoreFlagDescription)
	registerBooleanFlag(flagSet, &flags.tokens, tokensFlagName, false, tokensFlagDescription)
	flagSet.StringVar(&flags.model, modelFlagName, config.DefaultTokenModel, modelFlagDescription)
	registerBooleanFlag(flagSet, &flags.copy, copyFlagName, false, copyFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &flags.verbose, verboseFlagName, false, verboseFlagDescription)

	rootCommand.AddCommand(createInitCommand(dependencies))
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

func runSnapshot(command *cobra.Command, root string, flags *snapshotFlags, dependencies Dependencies) error {
	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	stdout := dependencies.Stdout
	if stdout == nil {
		stdout = command.OutOrStdout()
	}

	rootPath, rootError := snapshot.ValidateRoot(root)
	if rootError != nil {
		return rootError
	}

	loadedConfiguration, loadError := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: rootPath,
		ExplicitFilePath: flags.configPath,
	})
	if loadError != nil {
		return fmt.Errorf(errorLoadConfigurationFormat, loadError)
	}
	resolved, resolveError := loadedConfiguration.Merge(flagOverrides(command, flags)).Resolve()
	if resolveError != nil {
		return fmt.Errorf(errorLoadConfigurationFormat, resolveError)
	}
	resolved.Rules.PathPatterns = utils.DeduplicatePatterns(append(resolved.Rules.PathPatterns, flags.exclusionPatterns...))
	resolved.Policy.WithPublic = flags.withPublic

	if resolved.UseGitignore || resolved.UseIgnoreFile {
		ignorePatterns, ignoreError := config.LoadRecursiveIgnorePatterns(rootPath, exclusion.NewMatcher(resolved.Rules), resolved.UseGitignore, resolved.UseIgnoreFile)
		if ignoreError != nil {
			return fmt.Errorf(errorIgnorePatternsFormat, ignoreError)
		}
		logger.Debug(debugIgnorePatternsMessage, zap.Strings("patterns", ignorePatterns))
		resolved.Rules.PathPatterns = utils.DeduplicatePatterns(append(resolved.Rules.PathPatterns, ignorePatterns...))
	}
	logger.Debug(debugConfigurationMessage,
		zap.String("root", rootPath),
		zap.String("mode", resolved.Policy.Mode),
		zap.String("unreadable", resolved.Policy.Unreadable),
		zap.Strings("path_patterns", resolved.Rules.PathPatterns),
	)

	options := snapshot.Options{
		Root:   rootPath,
		Force:  flags.force,
		Rules:  resolved.Rules,
		Policy: resolved.Policy,
		Now:    dependencies.Now,
		Stdout: stdout,
		Logger: logger,
	}
	if resolved.TokensEnabled {
		counter, modelName, tokenizerError := tokenizer.NewCounter(tokenizer.Config{Model: resolved.TokenModel})
		if tokenizerError != nil {
			return fmt.Errorf(errorTokenizerFormat, tokenizerError)
		}
		options.TokenCounter = counter
		options.TokenModel = modelName
	}
	if resolved.Clipboard {
		options.Copier = dependencies.Copier
		if options.Copier == nil {
			options.Copier = clipboard.NewService()
		}
	}

	_, runError := snapshot.Run(options)
	return runError
}

// flagOverrides returns the configuration carried by explicitly changed flags.
func flagOverrides(command *cobra.Command, flags *snapshotFlags) config.ApplicationConfiguration {
	var overrides config.ApplicationConfiguration
	flagSet := command.Flags()
	if flagSet.Changed(modeFlagName) {
		overrides.Mode = flags.mode
	}
	if flagSet.Changed(useGitignoreFlagName) {
		overrides.Paths.UseGitignore = boolPointer(flags.useGitignore)
	}
	if flagSet.Changed(useIgnoreFlagName) {
		overrides.Paths.UseIgnoreFile = boolPointer(flags.useIgnoreFile)
	}
	if flagSet.Changed(tokensFlagName) {
		overrides.Tokens.Enabled = boolPointer(flags.tokens)
	}
	if flagSet.Changed(modelFlagName) {
		overrides.Tokens.Model = flags.model
	}
	if flagSet.Changed(copyFlagName) {
		overrides.Clipboard = boolPointer(flags.copy)
	}
	return overrides
}

// createInitCommand returns the init subcommand.
func createInitCommand(dependencies Dependencies) *cobra.Command {
	var writeGlobal bool
	var overwrite bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShortDescription,
		Long:  initLongDescription,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if writeGlobal {
				target = config.InitTargetGlobal
			}
			writtenPath, initError := config.InitializeConfiguration(config.InitOptions{Target: target, Force: overwrite})
			if initError != nil {
				return initError
			}
			stdout := dependencies.Stdout
			if stdout == nil {
				stdout = command.OutOrStdout()
			}
			fmt.Fprintf(stdout, initWrittenFormat, writtenPath)
			return nil
		},
	}
	registerBooleanFlag(initCommand.Flags(), &writeGlobal, globalFlagName, false, initGlobalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &overwrite, forceFlagName, false, initForceFlagDescription)
	return initCommand
}

func boolPointer(value bool) *bool {
	return &value
}
