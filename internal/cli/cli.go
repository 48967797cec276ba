// Package cli provides the command line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/temirov/cmnorm/internal/config"
	"github.com/temirov/cmnorm/internal/input"
	"github.com/temirov/cmnorm/internal/normalize"
	"github.com/temirov/cmnorm/internal/output"
	"github.com/temirov/cmnorm/internal/services/clipboard"
	"github.com/temirov/cmnorm/internal/services/stream"
	"github.com/temirov/cmnorm/internal/tokenizer"
	"github.com/temirov/cmnorm/internal/types"
	"github.com/temirov/cmnorm/internal/utils"
)

const (
	formatFlagName      = "format"
	concurrencyFlagName = "concurrency"
	humanizeFlagName    = "humanize"
	summaryFlagName     = "summary"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	maxTokensFlagName   = "max-tokens"
	copyFlagName        = "copy"
	disableFlagName     = "disable"
	pathFlagName        = "path"
	pathFlagShorthand   = "p"
	configFlagName      = "config"
	verboseFlagName     = "verbose"
	versionFlagName     = "version"
	globalFlagName      = "global"
	forceFlagName       = "force"

	versionTemplate      = "cmnorm version: %s\n"
	rootUse              = "cmnorm"
	rootShortDescription = "cmnorm normalizes commit messages"
	rootLongDescription  = `cmnorm rewrites commit messages into a canonical form.
References to changed files and methods, URLs, version numbers, issue links,
code blocks and sign-off trailers are replaced by fixed placeholders.
Use --format to select raw, json, or xml output and --version to print the application version.`

	normalizeUse   = "normalize [file]"
	spansUse       = "spans [file]"
	messageUse     = "message <text>"
	initUse        = "init"
	normalizeAlias = "n"
	spansAlias     = "s"
	messageAlias   = "m"
	normalizeShort = "normalize commit records (" + normalizeAlias + ")"
	spansShort     = "show resolved reference spans (" + spansAlias + ")"
	messageShort   = "normalize a single message (" + messageAlias + ")"
	initShort      = "write a default configuration file"
	normalizeLong  = `Read commit records from a JSON array or JSON Lines file and print the normalized messages.
Each record is {"message": "...", "changed_paths": ["..."]}. Without a file, or with "-", records are read from stdin.`
	normalizeExample = `  # Normalize a JSON Lines export in raw form
  cmnorm normalize --format raw commits.jsonl

  # Count tokens and flag messages above 150 tokens
  git-export | cmnorm n --tokens --max-tokens 150`
	spansLong    = `Report the file and method reference spans found in each record, in rune offsets, before substitution.`
	spansExample = `  # Inspect spans as JSON
  cmnorm spans --format json commits.json`
	messageLong    = `Normalize one message given on the command line. Use --path once per changed file.`
	messageExample = `  # Normalize a message touching one file
  cmnorm message "Update CommitProcessor logic" --path src/CommitProcessor.java`
	initLong = `Write the default configuration to ./.cmnorm.yaml, or to ~/.cmnorm/config.yaml with --global.`

	formatFlagDescription      = "output format (raw, json, xml)"
	concurrencyFlagDescription = "number of messages normalized in parallel (0 uses every CPU)"
	humanizeFlagDescription    = "rewrite placeholders as $fileName, $methodName, $url, $versionNumber and $issueLink"
	summaryFlagDescription     = "include a summary of the batch"
	tokensFlagDescription      = "include token counts of normalized messages"
	modelFlagDescription       = "tokenizer model to use for token counting"
	maxTokensFlagDescription   = "flag normalized messages whose token count exceeds this limit"
	copyFlagDescription        = "copy rendered output to the clipboard"
	disableFlagDescription     = "disable auxiliary stages (code_blocks, sign_off, urls, versions, issues)"
	pathFlagDescription        = "changed file path (repeatable)"
	configFlagDescription      = "configuration file replacing ./.cmnorm.yaml"
	verboseFlagDescription     = "enable debug logging"
	versionFlagDescription     = "display application version"
	globalFlagDescription      = "write the global configuration file"
	forceFlagDescription       = "overwrite an existing configuration file"

	defaultTokenizerModelName = "gpt-4o"
	defaultMaxTokens          = 150

	stageCodeBlocks = "code_blocks"
	stageSignOff    = "sign_off"
	stageURLs       = "urls"
	stageVersions   = "versions"
	stageIssues     = "issues"

	invalidFormatMessage       = "invalid format value '%s'"
	unknownStageMessage        = "unknown stage '%s'"
	invalidConcurrencyMessage  = "concurrency must not be negative, got %d"
	invalidMaxTokensMessage    = "max-tokens must not be negative, got %d"
	loadConfigurationFormat    = "load configuration: %w"
	configurationWrittenFormat = "Configuration written to %s\n"
	inputWarningMessage        = "skipped malformed input"
	clipboardWarningMessage    = "clipboard copy failed"
	batchCompletedMessage      = "batch completed"
	configurationLoadedMessage = "configuration loaded"
)

// isSupportedFormat reports whether the provided format is recognized.
func isSupportedFormat(format string) bool {
	switch format {
	case types.FormatRaw, types.FormatJSON, types.FormatXML:
		return true
	default:
		return false
	}
}

// application carries the streams and services shared by every command.
type application struct {
	stdin            io.Reader
	stdout           io.Writer
	stderr           io.Writer
	workingDirectory string
	copier           clipboard.Copier
	logger           *zap.Logger

	configurationPath string
	verbose           bool
}

func newApplication() *application {
	return &application{
		stdin:  os.Stdin,
		stdout: os.Stdout,
		stderr: os.Stderr,
		copier: clipboard.NewService(),
	}
}

// Execute runs the cmnorm application.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	app := newApplication()
	defer func() {
		if app.logger != nil {
			_ = app.logger.Sync()
		}
	}()
	return app.execute(ctx, os.Args[1:])
}

func (app *application) execute(ctx context.Context, arguments []string) error {
	rootCommand := app.createRootCommand()
	rootCommand.SetArgs(normalizeBooleanFlagArguments(rootCommand, arguments))
	rootCommand.SetIn(app.stdin)
	rootCommand.SetOut(app.stdout)
	rootCommand.SetErr(app.stderr)
	return rootCommand.ExecuteContext(ctx)
}

// createRootCommand builds the root Cobra command.
func (app *application) createRootCommand() *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			if showVersion {
				_, err := fmt.Fprintf(app.stdout, versionTemplate, utils.GetApplicationVersion())
				return err
			}
			return command.Help()
		},
		PersistentPreRunE: func(command *cobra.Command, arguments []string) error {
			if app.logger != nil {
				return nil
			}
			logger, err := utils.NewApplicationLogger(app.verbose)
			if err != nil {
				return fmt.Errorf(utils.LoggerInitializationFailedMessageFormat, err)
			}
			app.logger = logger
			return nil
		},
	}
	rootCommand.Flags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.PersistentFlags().StringVar(&app.configurationPath, configFlagName, "", configFlagDescription)
	registerBooleanFlag(rootCommand.PersistentFlags(), &app.verbose, verboseFlagName, false, verboseFlagDescription)
	rootCommand.AddCommand(
		app.createNormalizeCommand(),
		app.createSpansCommand(),
		app.createMessageCommand(),
		app.createInitCommand(),
	)
	rootCommand.InitDefaultHelpCmd()
	rootCommand.InitDefaultCompletionCmd()
	return rootCommand
}

// normalizeFlags stores the raw flag values of the record commands.
type normalizeFlags struct {
	format         string
	concurrency    int
	humanize       bool
	summary        bool
	tokens         bool
	model          string
	maxTokens      int
	copy           bool
	disabledStages []string
}

// runOptions is the outcome of layering flags over configuration.
type runOptions struct {
	format    string
	settings  normalize.Settings
	humanize  bool
	summary   bool
	tokens    bool
	model     string
	maxTokens int
	copy      bool
}

func addRenderFlags(command *cobra.Command, flags *normalizeFlags, defaultFormat string) {
	command.Flags().StringVar(&flags.format, formatFlagName, defaultFormat, formatFlagDescription)
	command.Flags().IntVar(&flags.concurrency, concurrencyFlagName, 0, concurrencyFlagDescription)
	command.Flags().StringSliceVar(&flags.disabledStages, disableFlagName, nil, disableFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.copy, copyFlagName, false, copyFlagDescription)
}

func addNormalizeFlags(command *cobra.Command, flags *normalizeFlags, defaultFormat string, defaultSummary bool) {
	addRenderFlags(command, flags, defaultFormat)
	registerBooleanFlag(command.Flags(), &flags.summary, summaryFlagName, defaultSummary, summaryFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.humanize, humanizeFlagName, false, humanizeFlagDescription)
	registerBooleanFlag(command.Flags(), &flags.tokens, tokensFlagName, false, tokensFlagDescription)
	command.Flags().StringVar(&flags.model, modelFlagName, defaultTokenizerModelName, modelFlagDescription)
	command.Flags().IntVar(&flags.maxTokens, maxTokensFlagName, defaultMaxTokens, maxTokensFlagDescription)
}

// createNormalizeCommand returns the normalize subcommand.
func (app *application) createNormalizeCommand() *cobra.Command {
	var flags normalizeFlags

	normalizeCommand := &cobra.Command{
		Use:     normalizeUse,
		Aliases: []string{normalizeAlias},
		Short:   normalizeShort,
		Long:    normalizeLong,
		Example: normalizeExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options, err := app.resolveOptions(command, flags, types.FormatJSON, true)
			if err != nil {
				return err
			}
			batch, err := app.loadBatch(arguments)
			if err != nil {
				return err
			}
			return app.runNormalize(command.Context(), types.CommandNormalize, batch, options)
		},
	}
	addNormalizeFlags(normalizeCommand, &flags, types.FormatJSON, true)
	return normalizeCommand
}

// createSpansCommand returns the spans subcommand.
func (app *application) createSpansCommand() *cobra.Command {
	var flags normalizeFlags

	spansCommand := &cobra.Command{
		Use:     spansUse,
		Aliases: []string{spansAlias},
		Short:   spansShort,
		Long:    spansLong,
		Example: spansExample,
		Args:    cobra.MaximumNArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options, err := app.resolveOptions(command, flags, types.FormatJSON, false)
			if err != nil {
				return err
			}
			batch, err := app.loadBatch(arguments)
			if err != nil {
				return err
			}
			return app.runSpans(command.Context(), batch, options)
		},
	}
	addRenderFlags(spansCommand, &flags, types.FormatJSON)
	return spansCommand
}

// createMessageCommand returns the message subcommand.
func (app *application) createMessageCommand() *cobra.Command {
	var flags normalizeFlags
	var changedPaths []string

	messageCommand := &cobra.Command{
		Use:     messageUse,
		Aliases: []string{messageAlias},
		Short:   messageShort,
		Long:    messageLong,
		Example: messageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			options, err := app.resolveOptions(command, flags, types.FormatRaw, false)
			if err != nil {
				return err
			}
			return app.runNormalize(command.Context(), types.CommandMessage, input.FromMessage(arguments[0], changedPaths), options)
		},
	}
	addNormalizeFlags(messageCommand, &flags, types.FormatRaw, false)
	messageCommand.Flags().StringArrayVarP(&changedPaths, pathFlagName, pathFlagShorthand, nil, pathFlagDescription)
	return messageCommand
}

// createInitCommand returns the init subcommand.
func (app *application) createInitCommand() *cobra.Command {
	var global bool
	var force bool

	initCommand := &cobra.Command{
		Use:   initUse,
		Short: initShort,
		Long:  initLong,
		Args:  cobra.NoArgs,
		RunE: func(command *cobra.Command, arguments []string) error {
			target := config.InitTargetLocal
			if global {
				target = config.InitTargetGlobal
			}
			path, err := config.InitializeConfiguration(config.InitOptions{
				Target:           target,
				Force:            force,
				WorkingDirectory: app.workingDirectory,
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(app.stdout, configurationWrittenFormat, path)
			return err
		},
	}
	registerBooleanFlag(initCommand.Flags(), &global, globalFlagName, false, globalFlagDescription)
	registerBooleanFlag(initCommand.Flags(), &force, forceFlagName, false, forceFlagDescription)
	return initCommand
}

// resolveOptions layers explicitly set flags over the loaded configuration.
func (app *application) resolveOptions(command *cobra.Command, flags normalizeFlags, defaultFormat string, defaultSummary bool) (runOptions, error) {
	loaded, err := config.LoadApplicationConfiguration(config.LoadOptions{
		WorkingDirectory: app.workingDirectory,
		ExplicitFilePath: app.configurationPath,
	})
	if err != nil {
		return runOptions{}, fmt.Errorf(loadConfigurationFormat, err)
	}
	app.logger.Debug(configurationLoadedMessage, zap.String("explicit", app.configurationPath))

	changed := command.Flags().Changed
	var overrides config.NormalizeConfiguration
	if changed(formatFlagName) {
		overrides.Format = flags.format
	}
	if changed(concurrencyFlagName) {
		if flags.concurrency < 0 {
			return runOptions{}, fmt.Errorf(invalidConcurrencyMessage, flags.concurrency)
		}
		overrides.Concurrency = &flags.concurrency
	}
	if changed(humanizeFlagName) {
		overrides.Humanize = &flags.humanize
	}
	if changed(summaryFlagName) {
		overrides.Summary = &flags.summary
	}
	if changed(tokensFlagName) {
		overrides.Tokens.Enabled = &flags.tokens
	}
	if changed(modelFlagName) {
		overrides.Tokens.Model = flags.model
	}
	if changed(maxTokensFlagName) {
		if flags.maxTokens < 0 {
			return runOptions{}, fmt.Errorf(invalidMaxTokensMessage, flags.maxTokens)
		}
		overrides.Tokens.Max = &flags.maxTokens
	}
	if changed(copyFlagName) {
		overrides.Clipboard = &flags.copy
	}
	if err := disableStages(&overrides.Stages, flags.disabledStages); err != nil {
		return runOptions{}, err
	}
	merged := loaded.Merge(config.ApplicationConfiguration{Normalize: overrides}).Normalize

	options := runOptions{
		format:    defaultFormat,
		settings:  merged.Settings(),
		summary:   valueOrDefault(merged.Summary, defaultSummary),
		humanize:  valueOrDefault(merged.Humanize, false),
		tokens:    valueOrDefault(merged.Tokens.Enabled, false),
		model:     defaultTokenizerModelName,
		maxTokens: valueOrDefault(merged.Tokens.Max, defaultMaxTokens),
		copy:      valueOrDefault(merged.Clipboard, false),
	}
	if merged.Format != "" {
		options.format = strings.ToLower(merged.Format)
	}
	if !isSupportedFormat(options.format) {
		return runOptions{}, fmt.Errorf(invalidFormatMessage, options.format)
	}
	if merged.Tokens.Model != "" {
		options.model = merged.Tokens.Model
	}
	return options, nil
}

func disableStages(stages *config.StageConfiguration, names []string) error {
	disabled := false
	for _, name := range names {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case stageCodeBlocks:
			stages.CodeBlocks = &disabled
		case stageSignOff:
			stages.SignOff = &disabled
		case stageURLs:
			stages.URLs = &disabled
		case stageVersions:
			stages.Versions = &disabled
		case stageIssues:
			stages.Issues = &disabled
		default:
			return fmt.Errorf(unknownStageMessage, name)
		}
	}
	return nil
}

func valueOrDefault[T any](value *T, fallback T) T {
	if value == nil {
		return fallback
	}
	return *value
}

func (app *application) loadBatch(arguments []string) (input.Batch, error) {
	path := input.StandardInputName
	if len(arguments) > 0 {
		path = arguments[0]
	}
	batch, err := input.Load(path, app.stdin)
	if err != nil {
		return batch, err
	}
	for _, warning := range batch.Warnings {
		app.logger.Warn(inputWarningMessage, zap.String("source", batch.Source), zap.Int("line", warning.Line), zap.String("reason", warning.Message))
	}
	return batch, nil
}

// runNormalize streams normalized records of batch into the selected renderer.
func (app *application) runNormalize(ctx context.Context, commandName string, batch input.Batch, options runOptions) error {
	pipeline := normalize.NewPipeline(options.settings)

	var tokenCounter tokenizer.Counter
	var tokenModel string
	if options.tokens {
		createdCounter, resolvedModel, counterError := tokenizer.NewCounter(tokenizer.Config{Model: options.model})
		if counterError != nil {
			return counterError
		}
		tokenCounter = createdCounter
		tokenModel = resolvedModel
	}

	producer := func(streamCtx context.Context, ch chan<- stream.Event) error {
		return stream.StreamNormalized(streamCtx, stream.NormalizeOptions{
			Source:         batch.Source,
			Records:        batch.Records,
			Pipeline:       pipeline,
			Humanize:       options.humanize,
			TokenCounter:   tokenCounter,
			TokenModel:     tokenModel,
			MaxTokens:      options.maxTokens,
			IncludeSummary: options.summary,
		}, ch)
	}
	return app.render(ctx, commandName, pipeline, len(batch.Records), options, producer)
}

// runSpans streams resolved spans of batch into the selected renderer.
func (app *application) runSpans(ctx context.Context, batch input.Batch, options runOptions) error {
	pipeline := normalize.NewPipeline(options.settings)
	producer := func(streamCtx context.Context, ch chan<- stream.Event) error {
		return stream.StreamSpans(streamCtx, stream.SpanOptions{
			Source:   batch.Source,
			Records:  batch.Records,
			Pipeline: pipeline,
		}, ch)
	}
	return app.render(ctx, types.CommandSpans, pipeline, len(batch.Records), options, producer)
}

func (app *application) render(
	ctx context.Context,
	commandName string,
	pipeline *normalize.Pipeline,
	recordCount int,
	options runOptions,
	produce func(context.Context, chan<- stream.Event) error,
) error {
	if ctx == nil {
		ctx = context.Background()
	}
	destination := app.stdout
	var recorder *clipboard.Recorder
	if options.copy {
		recorder = clipboard.NewRecorder(app.stdout)
		destination = recorder
	}
	renderer, err := output.NewStreamRenderer(options.format, destination, app.stderr, commandName, options.summary)
	if err != nil {
		return err
	}

	startedAt := time.Now()
	streamErr := dispatchStream(ctx, produce, renderer.Handle)
	if flushErr := renderer.Flush(); flushErr != nil && streamErr == nil {
		streamErr = flushErr
	}
	if streamErr != nil {
		return streamErr
	}
	app.logger.Debug(batchCompletedMessage,
		zap.String("command", commandName),
		zap.Int("records", recordCount),
		zap.Int("workers", pipeline.Concurrency()),
		zap.Duration("elapsed", time.Since(startedAt)),
	)

	if recorder != nil {
		if copyErr := recorder.CopyTo(app.copier); copyErr != nil {
			app.logger.Warn(clipboardWarningMessage, zap.Error(copyErr))
		}
	}
	return nil
}

func dispatchStream(
	ctx context.Context,
	produce func(context.Context, chan<- stream.Event) error,
	consume func(stream.Event) error,
) error {
	group, streamCtx := errgroup.WithContext(ctx)
	events := make(chan stream.Event)

	group.Go(func() error {
		defer close(events)
		return produce(streamCtx, events)
	})

	group.Go(func() error {
		for {
			select {
			case <-streamCtx.Done():
				return streamCtx.Err()
			case event, ok := <-events:
				if !ok {
					return nil
				}
				if err := consume(event); err != nil {
					return err
				}
			}
		}
	})

	return group.Wait()
}
