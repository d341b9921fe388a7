package commands

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/temirov/repodump/internal/output"
	"github.com/temirov/repodump/internal/types"
)

const (
	// progressRestoringFormat announces one file being restored.
	progressRestoringFormat = "  Restoring: %s\n"
	// progressRestoredFormat reports a finished restore.
	progressRestoredFormat = "Restored %d files to %s\n"

	// warningPathEscapeFormat is used when an entry path would leave the destination root.
	warningPathEscapeFormat = "Warning: entry %s escapes the destination root, skipping\n"
	// warningWriteEntryFormat is used when one restored file cannot be written.
	warningWriteEntryFormat = "Warning: failed to write %s: %v\n"

	// errorReadInputFormat is used when the dump document cannot be read.
	errorReadInputFormat = "reading dump document %s: %w"
	// errorParseInputFormat is used when the dump document cannot be parsed.
	errorParseInputFormat = "parsing dump document %s: %w"
	// errorCreateDestinationFormat is used when the destination root cannot be created.
	errorCreateDestinationFormat = "creating destination %s: %w"
)

// RestoreResult reports what a restore materialized.
type RestoreResult struct {
	// RestoredCount is the number of files written.
	RestoredCount int
	// SkippedCount is the number of entries skipped: binary placeholders,
	// escaping paths, and per-entry write failures.
	SkippedCount int
}

// Restorer materializes a dump document into a destination directory.
type Restorer struct {
	Stdout io.Writer
	Stderr io.Writer
}

// Execute reads the document at inputPath and recreates its entries below
// destinationRoot. Entry-level problems are warnings; only an unreadable or
// unparseable document is fatal.
func (restorer *Restorer) Execute(inputPath string, destinationRoot string) (RestoreResult, error) {
	documentBytes, readError := os.ReadFile(inputPath)
	if readError != nil {
		return RestoreResult{}, fmt.Errorf(errorReadInputFormat, inputPath, readError)
	}

	decodedEntries, decodeError := output.DecodeDocument(string(documentBytes), restorer.Stderr)
	if decodeError != nil {
		return RestoreResult{}, fmt.Errorf(errorParseInputFormat, inputPath, decodeError)
	}

	absoluteDestinationRoot, absolutePathError := filepath.Abs(destinationRoot)
	if absolutePathError != nil {
		return RestoreResult{}, fmt.Errorf(errorAbsolutePathFormat, destinationRoot, absolutePathError)
	}
	if makeDirectoryError := os.MkdirAll(absoluteDestinationRoot, outputDirectoryMode); makeDirectoryError != nil {
		return RestoreResult{}, fmt.Errorf(errorCreateDestinationFormat, absoluteDestinationRoot, makeDirectoryError)
	}

	restoreResult := restorer.restoreEntries(decodedEntries, absoluteDestinationRoot)
	fmt.Fprintf(restorer.Stdout, progressRestoredFormat, restoreResult.RestoredCount, absoluteDestinationRoot)
	return restoreResult, nil
}

// restoreEntries writes each decoded entry below the destination root.
func (restorer *Restorer) restoreEntries(decodedEntries []types.RestoreEntry, absoluteDestinationRoot string) RestoreResult {
	var restoreResult RestoreResult

	for _, decodedEntry := range decodedEntries {
		targetPath, resolveError := resolveDestinationPath(absoluteDestinationRoot, decodedEntry.RelativePath)
		if resolveError != nil {
			fmt.Fprintf(restorer.Stderr, warningPathEscapeFormat, decodedEntry.RelativePath)
			restoreResult.SkippedCount++
			continue
		}

		if makeDirectoryError := os.MkdirAll(filepath.Dir(targetPath), outputDirectoryMode); makeDirectoryError != nil {
			fmt.Fprintf(restorer.Stderr, warningWriteEntryFormat, targetPath, makeDirectoryError)
			restoreResult.SkippedCount++
			continue
		}

		if decodedEntry.Binary {
			restoreResult.SkippedCount++
			continue
		}

		fmt.Fprintf(restorer.Stdout, progressRestoringFormat, decodedEntry.RelativePath)
		if writeError := os.WriteFile(targetPath, []byte(decodedEntry.Content), outputFileMode); writeError != nil {
			fmt.Fprintf(restorer.Stderr, warningWriteEntryFormat, targetPath, writeError)
			restoreResult.SkippedCount++
			continue
		}
		restoreResult.RestoredCount++
	}

	return restoreResult
}

// resolveDestinationPath joins a decoded relative path onto the destination
// root, rejecting absolute paths and any path whose segments would climb out
// of the root.
func resolveDestinationPath(absoluteDestinationRoot string, relativePath string) (string, error) {
	normalizedPath := filepath.ToSlash(relativePath)
	if strings.HasPrefix(normalizedPath, "/") || filepath.IsAbs(relativePath) {
		return "", fmt.Errorf("absolute path %s", relativePath)
	}
	for _, pathSegment := range strings.Split(normalizedPath, "/") {
		if pathSegment == ".." {
			return "", fmt.Errorf("parent segment in %s", relativePath)
		}
	}

	targetPath := filepath.Join(absoluteDestinationRoot, filepath.FromSlash(normalizedPath))
	if targetPath != absoluteDestinationRoot && !strings.HasPrefix(targetPath, absoluteDestinationRoot+string(filepath.Separator)) {
		return "", fmt.Errorf("path %s resolves outside destination", relativePath)
	}
	return targetPath, nil
}
