package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/temirov/repodump/internal/config"
	"github.com/temirov/repodump/internal/filter"
	"github.com/temirov/repodump/internal/output"
)

const (
	// progressDumpingFormat announces one file being dumped.
	progressDumpingFormat = "  Dumping: %s\n"
	// progressDumpedFormat reports a finished dump.
	progressDumpedFormat = "Dumped %d files from %s to %s\n"

	// errorRepositoryMissingFormat is used when the repository root cannot be used.
	errorRepositoryMissingFormat = "repository path %s not found or not a directory: %w"
	// errorWriteOutputFormat is used when the output document cannot be written.
	errorWriteOutputFormat = "writing dump to %s: %w"

	// outputFileMode is the permission mode for the written dump document.
	outputFileMode = 0o644
	// outputDirectoryMode is the permission mode for created directories.
	outputDirectoryMode = 0o755
)

// DumpOptions carries everything one dump invocation needs.
type DumpOptions struct {
	// RepositoryPath is the directory to serialize.
	RepositoryPath string
	// OutputPath is where the document is written.
	OutputPath string
	// IncludePatterns are caller overrides that force matching paths in.
	IncludePatterns []string
	// ExcludePatterns are caller overrides that force matching paths out.
	ExcludePatterns []string
	// UseGitignore controls whether the repository's ignore file is loaded.
	UseGitignore bool
}

// DumpResult reports what a dump produced.
type DumpResult struct {
	// Document is the full rendered dump text.
	Document string
	// FileCount is the number of content blocks in the document.
	FileCount int
}

// Dumper serializes one repository into a dump document.
type Dumper struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Execute runs the dump: load ignore rules, walk, encode, write the document.
// Recoverable per-path failures surface as warnings on Stderr; a missing
// repository root or an unwritable output path is fatal.
func (dumper *Dumper) Execute(options DumpOptions) (DumpResult, error) {
	absoluteRepositoryPath, absolutePathError := filepath.Abs(options.RepositoryPath)
	if absolutePathError != nil {
		return DumpResult{}, fmt.Errorf(errorAbsolutePathFormat, options.RepositoryPath, absolutePathError)
	}
	repositoryInfo, repositoryStatError := os.Stat(absoluteRepositoryPath)
	if repositoryStatError != nil || !repositoryInfo.IsDir() {
		if repositoryStatError == nil {
			return DumpResult{}, fmt.Errorf(errorNotADirectoryFormat, absoluteRepositoryPath)
		}
		return DumpResult{}, fmt.Errorf(errorRepositoryMissingFormat, options.RepositoryPath, repositoryStatError)
	}

	absoluteOutputPath, outputPathError := filepath.Abs(options.OutputPath)
	if outputPathError != nil {
		return DumpResult{}, fmt.Errorf(errorAbsolutePathFormat, options.OutputPath, outputPathError)
	}

	ignoreRules, loadRulesError := config.LoadIgnoreRules(absoluteRepositoryPath, options.UseGitignore)
	if loadRulesError != nil {
		return DumpResult{}, loadRulesError
	}

	pathFilter, filterError := filter.New(ignoreRules, options.IncludePatterns, options.ExcludePatterns)
	if filterError != nil {
		return DumpResult{}, filterError
	}

	treeWalker := &Walker{
		PathFilter:       pathFilter,
		SkipAbsolutePath: absoluteOutputPath,
		Stderr:           dumper.Stderr,
	}
	walkedEntries, walkError := treeWalker.Walk(absoluteRepositoryPath)
	if walkError != nil {
		return DumpResult{}, walkError
	}

	for _, walkedEntry := range walkedEntries {
		fmt.Fprintf(dumper.Stdout, progressDumpingFormat, walkedEntry.RelativePath)
	}

	repositoryName := filepath.Base(absoluteRepositoryPath)
	documentText, encodeError := output.EncodeDocument(repositoryName, walkedEntries, dumper.Stderr)
	if encodeError != nil {
		return DumpResult{}, encodeError
	}

	if makeDirectoryError := os.MkdirAll(filepath.Dir(absoluteOutputPath), outputDirectoryMode); makeDirectoryError != nil {
		return DumpResult{}, fmt.Errorf(errorWriteOutputFormat, absoluteOutputPath, makeDirectoryError)
	}
	if writeError := os.WriteFile(absoluteOutputPath, []byte(documentText), outputFileMode); writeError != nil {
		return DumpResult{}, fmt.Errorf(errorWriteOutputFormat, absoluteOutputPath, writeError)
	}

	fmt.Fprintf(dumper.Stdout, progressDumpedFormat, len(walkedEntries), absoluteRepositoryPath, absoluteOutputPath)

	return DumpResult{Document: documentText, FileCount: len(walkedEntries)}, nil
}
