package output

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/temirov/repodump/internal/types"
)

// Fatal decoding errors. Anything else wrong with a document degrades to a
// per-entry warning.
var (
	// ErrMissingTitle marks a document without the repository title line.
	ErrMissingTitle = errors.New("document has no repository title line")
	// ErrMissingContents marks a document without the contents section marker.
	ErrMissingContents = errors.New("document has no contents section")
)

const (
	// warningHeadingWithoutBlockFormat is used when a file heading is not followed by a fenced block.
	warningHeadingWithoutBlockFormat = "Warning: file heading %s has no fenced content block, skipping\n"
	// warningUnterminatedBlockFormat is used when a fenced block is never closed.
	warningUnterminatedBlockFormat = "Warning: fenced block for %s is not terminated, skipping\n"
	// warningEmptyHeadingMessage is used when a file heading carries no path.
	warningEmptyHeadingMessage = "Warning: skipping file heading with empty path\n"
)

// DecodeDocument parses a dump document into restore entries in document
// order. The tree diagram is informational only; the contents section drives
// reconstruction. Malformed entries are reported on warningWriter and
// skipped; only a document missing its title line or contents marker fails.
func DecodeDocument(documentText string, warningWriter io.Writer) ([]types.RestoreEntry, error) {
	documentLines := strings.Split(documentText, "\n")

	if repositoryNameFromTitle(documentLines) == "" {
		return nil, ErrMissingTitle
	}

	contentsStartIndex := -1
	for lineIndex, documentLine := range documentLines {
		if strings.TrimRight(documentLine, " \t") == ContentsHeader {
			contentsStartIndex = lineIndex + 1
			break
		}
	}
	if contentsStartIndex < 0 {
		return nil, ErrMissingContents
	}

	var decodedEntries []types.RestoreEntry
	lineIndex := contentsStartIndex
	for lineIndex < len(documentLines) {
		currentLine := documentLines[lineIndex]
		if !strings.HasPrefix(currentLine, FileHeadingPrefix) {
			lineIndex++
			continue
		}

		relativePath := strings.TrimSpace(strings.TrimPrefix(currentLine, FileHeadingPrefix))
		if relativePath == "" {
			fmt.Fprint(warningWriter, warningEmptyHeadingMessage)
			lineIndex++
			continue
		}

		blockEntry, nextLineIndex, blockFound := parseFencedBlock(documentLines, lineIndex+1, relativePath, warningWriter)
		lineIndex = nextLineIndex
		if blockFound {
			decodedEntries = append(decodedEntries, blockEntry)
		}
	}

	return decodedEntries, nil
}

// RepositoryName extracts the repository name from a document's title line.
// It returns an empty string when the document carries no title.
func RepositoryName(documentText string) string {
	return repositoryNameFromTitle(strings.Split(documentText, "\n"))
}

// repositoryNameFromTitle finds the first title line and returns its name.
func repositoryNameFromTitle(documentLines []string) string {
	for _, documentLine := range documentLines {
		trimmedLine := strings.TrimSpace(documentLine)
		if trimmedLine == "" {
			continue
		}
		if strings.HasPrefix(trimmedLine, TitlePrefix) {
			return strings.TrimSpace(strings.TrimPrefix(trimmedLine, TitlePrefix))
		}
		return ""
	}
	return ""
}

// parseFencedBlock reads the fenced block that must follow a file heading.
// It returns the parsed entry, the index scanning should resume at, and
// whether a complete block was found. Blank lines between the heading and the
// opening fence are tolerated; any other line means the heading has no block.
func parseFencedBlock(documentLines []string, startIndex int, relativePath string, warningWriter io.Writer) (types.RestoreEntry, int, bool) {
	fenceLineIndex := startIndex
	for fenceLineIndex < len(documentLines) && strings.TrimSpace(documentLines[fenceLineIndex]) == "" {
		fenceLineIndex++
	}

	if fenceLineIndex >= len(documentLines) {
		fmt.Fprintf(warningWriter, warningHeadingWithoutBlockFormat, relativePath)
		return types.RestoreEntry{}, fenceLineIndex, false
	}

	fence := leadingFence(documentLines[fenceLineIndex])
	if fence == "" {
		fmt.Fprintf(warningWriter, warningHeadingWithoutBlockFormat, relativePath)
		return types.RestoreEntry{}, fenceLineIndex, false
	}

	var bodyLines []string
	bodyLineIndex := fenceLineIndex + 1
	for bodyLineIndex < len(documentLines) {
		if documentLines[bodyLineIndex] == fence {
			blockBody := strings.Join(bodyLines, "\n")
			restoredEntry := types.RestoreEntry{
				RelativePath: relativePath,
				Content:      blockBody,
				Binary:       blockBody == types.BinaryPlaceholder,
			}
			if restoredEntry.Binary {
				restoredEntry.Content = ""
			}
			return restoredEntry, bodyLineIndex + 1, true
		}
		bodyLines = append(bodyLines, documentLines[bodyLineIndex])
		bodyLineIndex++
	}

	fmt.Fprintf(warningWriter, warningUnterminatedBlockFormat, relativePath)
	return types.RestoreEntry{}, bodyLineIndex, false
}

// leadingFence returns the backtick fence opening the line, or an empty string
// when the line does not open a fenced block. The remainder of the line after
// the fence is the cosmetic language tag and is discarded.
func leadingFence(line string) string {
	fenceLength := 0
	for fenceLength < len(line) && line[fenceLength] == fenceCharacter[0] {
		fenceLength++
	}
	if fenceLength < minimumFenceLength {
		return ""
	}
	return line[:fenceLength]
}
