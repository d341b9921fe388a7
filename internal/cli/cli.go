// Package cli provides the command line interface.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/temirov/repodump/internal/commands"
	"github.com/temirov/repodump/internal/config"
	"github.com/temirov/repodump/internal/services/clipboard"
	"github.com/temirov/repodump/internal/tokenizer"
	"github.com/temirov/repodump/internal/utils"
)

const (
	outputFlagName      = "output"
	includeFlagName     = "include"
	excludeFlagName     = "exclude"
	noGitignoreFlagName = "no-gitignore"
	copyFlagName        = "copy"
	tokensFlagName      = "tokens"
	modelFlagName       = "model"
	destinationFlagName = "dest"
	versionFlagName     = "version"

	versionTemplate      = "repodump version: %s\n"
	rootUse              = "repodump"
	rootShortDescription = "repodump command line interface"
	rootLongDescription  = `repodump serializes a directory tree into a single portable text document and restores it back.
The dump honors .gitignore rules plus explicit include and exclude overrides, embeds text file
contents verbatim, and marks binary files with a placeholder so a dump can be restored losslessly.`
	versionFlagDescription = "display application version"

	dumpUse              = "dump <repository>"
	dumpShortDescription = "serialize a repository into one text document"
	dumpLongDescription  = `Serialize the directory tree and file contents of a repository into one document.
Paths matched by the repository's .gitignore are left out; --include forces matching paths back in
and --exclude forces matching paths out, overriding every other rule.`
	dumpUsageExample = `  # Dump the current directory to the default output path
  repodump dump .

  # Dump while forcing the build directory out and .env back in
  repodump dump ./project -e "build/" -i ".env" -o project.md`

	restoreUse              = "restore <input>"
	restoreShortDescription = "materialize a repository from a dump document"
	restoreLongDescription  = `Parse a previously produced dump document and recreate its files under a destination directory.
Entries carrying the binary placeholder are skipped; malformed entries are reported and skipped.`
	restoreUsageExample = `  # Restore a dump into the default destination
  repodump restore repo_dump.md

  # Restore into an explicit directory
  repodump restore repo_dump.md -d ./checkout`

	outputFlagDescription      = "output document path"
	includeFlagDescription     = "include override pattern (repeatable)"
	excludeFlagDescription     = "exclude override pattern (repeatable)"
	noGitignoreFlagDescription = "do not load the repository's .gitignore"
	copyFlagDescription        = "copy the produced document to the clipboard"
	tokensFlagDescription      = "report an estimated token count for the document"
	modelFlagDescription       = "tokenizer model used for token estimates"
	destinationFlagDescription = "destination directory for restored files"

	defaultOutputPath         = "./output/repo_dump.md"
	defaultRestoreDestination = "./output/restored_repo"
	defaultTokenizerModelName = "gpt-4o"

	warningClipboardFormat  = "Warning: failed to copy document to clipboard: %v\n"
	warningTokenCountFormat = "Warning: failed to count tokens: %v\n"
	tokenSummaryFormat      = "Estimated tokens (%s): %d\n"
)

// Execute runs the repodump application.
func Execute() error {
	rootCommand := createRootCommand()
	return rootCommand.Execute()
}

// createRootCommand builds the root Cobra command.
func createRootCommand() *cobra.Command {
	var showVersion bool

	rootCommand := &cobra.Command{
		Use:          rootUse,
		Short:        rootShortDescription,
		Long:         rootLongDescription,
		SilenceUsage: true,
		RunE: func(command *cobra.Command, arguments []string) error {
			return command.Help()
		},
		PersistentPreRun: func(command *cobra.Command, arguments []string) {
			if showVersion {
				fmt.Printf(versionTemplate, utils.GetApplicationVersion())
				os.Exit(0)
			}
		},
	}
	rootCommand.PersistentFlags().BoolVar(&showVersion, versionFlagName, false, versionFlagDescription)
	rootCommand.AddCommand(
		createDumpCommand(),
		createRestoreCommand(),
	)
	return rootCommand
}

// createDumpCommand builds the dump subcommand.
func createDumpCommand() *cobra.Command {
	var outputPath string
	var includePatterns []string
	var excludePatterns []string
	var disableGitignore bool
	var copyToClipboard bool
	var countTokens bool
	var tokenizerModel string

	dumpCommand := &cobra.Command{
		Use:     dumpUse,
		Short:   dumpShortDescription,
		Long:    dumpLongDescription,
		Example: dumpUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{})
			if configurationError != nil {
				return configurationError
			}
			dumpConfiguration := applicationConfiguration.Dump

			if !command.Flags().Changed(outputFlagName) && dumpConfiguration.Output != "" {
				outputPath = dumpConfiguration.Output
			}
			if !command.Flags().Changed(includeFlagName) && len(dumpConfiguration.Paths.Include) > 0 {
				includePatterns = dumpConfiguration.Paths.Include
			}
			if !command.Flags().Changed(excludeFlagName) && len(dumpConfiguration.Paths.Exclude) > 0 {
				excludePatterns = dumpConfiguration.Paths.Exclude
			}
			if !command.Flags().Changed(noGitignoreFlagName) && dumpConfiguration.Paths.UseGitignore != nil {
				disableGitignore = !*dumpConfiguration.Paths.UseGitignore
			}
			if !command.Flags().Changed(copyFlagName) && dumpConfiguration.Clipboard != nil {
				copyToClipboard = *dumpConfiguration.Clipboard
			}
			if !command.Flags().Changed(tokensFlagName) && dumpConfiguration.Tokens.Enabled != nil {
				countTokens = *dumpConfiguration.Tokens.Enabled
			}
			if !command.Flags().Changed(modelFlagName) && dumpConfiguration.Tokens.Model != "" {
				tokenizerModel = dumpConfiguration.Tokens.Model
			}

			dumper := &commands.Dumper{Stdout: command.OutOrStdout(), Stderr: command.ErrOrStderr()}
			dumpResult, dumpError := dumper.Execute(commands.DumpOptions{
				RepositoryPath:  arguments[0],
				OutputPath:      outputPath,
				IncludePatterns: includePatterns,
				ExcludePatterns: excludePatterns,
				UseGitignore:    !disableGitignore,
			})
			if dumpError != nil {
				return dumpError
			}

			if countTokens {
				reportTokenCount(command, dumpResult.Document, tokenizerModel)
			}
			if copyToClipboard {
				if copyError := clipboard.NewService().Copy(dumpResult.Document); copyError != nil {
					fmt.Fprintf(command.ErrOrStderr(), warningClipboardFormat, copyError)
				}
			}
			return nil
		},
	}

	dumpCommand.Flags().StringVarP(&outputPath, outputFlagName, "o", defaultOutputPath, outputFlagDescription)
	dumpCommand.Flags().StringArrayVarP(&includePatterns, includeFlagName, "i", nil, includeFlagDescription)
	dumpCommand.Flags().StringArrayVarP(&excludePatterns, excludeFlagName, "e", nil, excludeFlagDescription)
	dumpCommand.Flags().BoolVar(&disableGitignore, noGitignoreFlagName, false, noGitignoreFlagDescription)
	dumpCommand.Flags().BoolVar(&copyToClipboard, copyFlagName, false, copyFlagDescription)
	dumpCommand.Flags().BoolVar(&countTokens, tokensFlagName, false, tokensFlagDescription)
	dumpCommand.Flags().StringVar(&tokenizerModel, modelFlagName, defaultTokenizerModelName, modelFlagDescription)

	return dumpCommand
}

// createRestoreCommand builds the restore subcommand.
func createRestoreCommand() *cobra.Command {
	var destinationPath string

	restoreCommand := &cobra.Command{
		Use:     restoreUse,
		Short:   restoreShortDescription,
		Long:    restoreLongDescription,
		Example: restoreUsageExample,
		Args:    cobra.ExactArgs(1),
		RunE: func(command *cobra.Command, arguments []string) error {
			applicationConfiguration, configurationError := config.LoadApplicationConfiguration(config.LoadOptions{})
			if configurationError != nil {
				return configurationError
			}
			if !command.Flags().Changed(destinationFlagName) && applicationConfiguration.Restore.Destination != "" {
				destinationPath = applicationConfiguration.Restore.Destination
			}

			restorer := &commands.Restorer{Stdout: command.OutOrStdout(), Stderr: command.ErrOrStderr()}
			_, restoreError := restorer.Execute(arguments[0], destinationPath)
			return restoreError
		},
	}

	restoreCommand.Flags().StringVarP(&destinationPath, destinationFlagName, "d", defaultRestoreDestination, destinationFlagDescription)

	return restoreCommand
}

// reportTokenCount prints an estimated token count for the rendered document.
func reportTokenCount(command *cobra.Command, documentText string, tokenizerModel string) {
	tokenCounter, effectiveModelName, counterError := tokenizer.NewCounter(tokenizerModel)
	if counterError != nil {
		fmt.Fprintf(command.ErrOrStderr(), warningTokenCountFormat, counterError)
		return
	}
	tokenCount, countError := tokenCounter.CountString(documentText)
	if countError != nil {
		fmt.Fprintf(command.ErrOrStderr(), warningTokenCountFormat, countError)
		return
	}
	fmt.Fprintf(command.OutOrStdout(), tokenSummaryFormat, effectiveModelName, tokenCount)
}
