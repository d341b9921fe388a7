// Package commands contains the core logic for the dump and restore operations.
package commands

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/temirov/repodump/internal/filter"
	"github.com/temirov/repodump/internal/types"
	"github.com/temirov/repodump/internal/utils"
)

const (
	// warningSkipSubdirFormat is used when a subdirectory cannot be listed.
	warningSkipSubdirFormat = "Warning: Skipping subdirectory %s due to error: %v\n"

	// errorAbsolutePathFormat is used when the absolute path cannot be determined.
	errorAbsolutePathFormat = "getting absolute path for %s: %w"

	// errorReadDirectoryFormat is used when a directory cannot be read.
	errorReadDirectoryFormat = "reading directory %s: %w"

	// errorNotADirectoryFormat is used when the walk root is not a directory.
	errorNotADirectoryFormat = "repository path %s is not a directory"
)

// Walker enumerates files below a repository root in deterministic order.
type Walker struct {
	// PathFilter decides which entries belong in the dump.
	PathFilter *filter.Filter
	// SkipAbsolutePath names the dump output file, excluded from traversal
	// so a dump never contains itself.
	SkipAbsolutePath string
	// Stderr receives recoverable traversal warnings.
	Stderr io.Writer
}

// Walk performs a depth-first traversal rooted at rootDirectoryPath and
// returns discovered files in diagram order: within every directory the
// subdirectories are visited first, then the files, each group in byte order.
// Symbolic links are never followed. A subdirectory that cannot be listed is
// reported as a warning and skipped; only an unreadable root is fatal.
func (treeWalker *Walker) Walk(rootDirectoryPath string) ([]types.FileEntry, error) {
	absoluteRootPath, absolutePathError := filepath.Abs(rootDirectoryPath)
	if absolutePathError != nil {
		return nil, fmt.Errorf(errorAbsolutePathFormat, rootDirectoryPath, absolutePathError)
	}

	rootInfo, rootStatError := os.Stat(absoluteRootPath)
	if rootStatError != nil {
		return nil, fmt.Errorf("stat %s: %w", absoluteRootPath, rootStatError)
	}
	if !rootInfo.IsDir() {
		return nil, fmt.Errorf(errorNotADirectoryFormat, absoluteRootPath)
	}

	return treeWalker.walkDirectory(absoluteRootPath, absoluteRootPath)
}

// walkDirectory lists one directory and recurses depth-first. Errors below the
// root are converted into warnings by the caller.
func (treeWalker *Walker) walkDirectory(currentDirectoryPath string, rootDirectoryPath string) ([]types.FileEntry, error) {
	directoryEntries, readDirectoryError := os.ReadDir(currentDirectoryPath)
	if readDirectoryError != nil {
		return nil, fmt.Errorf(errorReadDirectoryFormat, currentDirectoryPath, readDirectoryError)
	}

	subdirectories, regularFiles := partitionEntries(directoryEntries)

	var collectedEntries []types.FileEntry

	for _, subdirectoryEntry := range subdirectories {
		childPath := filepath.Join(currentDirectoryPath, subdirectoryEntry.Name())
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
		if !treeWalker.PathFilter.ShouldInclude(relativeChildPath, true) {
			continue
		}
		childEntries, walkChildError := treeWalker.walkDirectory(childPath, rootDirectoryPath)
		if walkChildError != nil {
			fmt.Fprintf(treeWalker.Stderr, warningSkipSubdirFormat, childPath, walkChildError)
			continue
		}
		collectedEntries = append(collectedEntries, childEntries...)
	}

	for _, fileEntry := range regularFiles {
		childPath := filepath.Join(currentDirectoryPath, fileEntry.Name())
		if treeWalker.SkipAbsolutePath != "" && childPath == treeWalker.SkipAbsolutePath {
			continue
		}
		relativeChildPath := utils.RelativePathOrSelf(childPath, rootDirectoryPath)
		if !treeWalker.PathFilter.ShouldInclude(relativeChildPath, false) {
			continue
		}
		collectedEntries = append(collectedEntries, types.FileEntry{
			RelativePath:   relativeChildPath,
			AbsolutePath:   childPath,
			Classification: utils.ClassifyFile(childPath),
		})
	}

	return collectedEntries, nil
}

// partitionEntries splits directory entries into subdirectories and regular
// files, each sorted by name in byte order. Symbolic links and other
// non-regular entries are dropped.
func partitionEntries(directoryEntries []fs.DirEntry) ([]fs.DirEntry, []fs.DirEntry) {
	var subdirectories []fs.DirEntry
	var regularFiles []fs.DirEntry
	for _, directoryEntry := range directoryEntries {
		if directoryEntry.Type()&fs.ModeSymlink != 0 {
			continue
		}
		if directoryEntry.IsDir() {
			subdirectories = append(subdirectories, directoryEntry)
			continue
		}
		if directoryEntry.Type().IsRegular() {
			regularFiles = append(regularFiles, directoryEntry)
		}
	}
	sort.Slice(subdirectories, func(first, second int) bool {
		return subdirectories[first].Name() < subdirectories[second].Name()
	})
	sort.Slice(regularFiles, func(first, second int) bool {
		return regularFiles[first].Name() < regularFiles[second].Name()
	})
	return subdirectories, regularFiles
}
