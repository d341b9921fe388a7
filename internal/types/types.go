// Package types defines every cross-package data structure used by the repodump CLI.
package types

const (
	// ClassificationText marks a file whose content is embedded verbatim in the dump.
	ClassificationText = "text"
	// ClassificationBinary marks a file whose content is replaced by the binary placeholder.
	ClassificationBinary = "binary"

	// CommandDump is the name of the dump subcommand.
	CommandDump = "dump"
	// CommandRestore is the name of the restore subcommand.
	CommandRestore = "restore"

	// BinaryPlaceholder is the literal substituted for binary file content.
	// The decoder recognizes this string verbatim, so it must never change
	// between releases that are expected to restore each other's dumps.
	BinaryPlaceholder = "[Binary file content skipped]"
)

// FileEntry is one file discovered by the tree walker.
type FileEntry struct {
	// RelativePath is the path below the repository root in posix form.
	RelativePath string
	// AbsolutePath is the file's location on disk.
	AbsolutePath string
	// Classification is ClassificationText or ClassificationBinary.
	Classification string
}

// RestoreEntry is one file parsed out of a dump document.
type RestoreEntry struct {
	// RelativePath is the path recorded in the document's file heading.
	RelativePath string
	// Content holds the decoded file body for text entries.
	Content string
	// Binary reports that the document carried the binary placeholder
	// instead of content; binary entries are never materialized.
	Binary bool
}
