// Package output renders dump documents and parses them back into entries.
package output

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/temirov/repodump/internal/types"
	"github.com/temirov/repodump/internal/utils"
)

// Document layout markers. The decoder matches these literally, so they form
// the wire format of a dump and must stay stable across releases.
const (
	// TitlePrefix opens the document and carries the repository name.
	TitlePrefix = "# Repository: "
	// StructureHeader introduces the rendered directory tree.
	StructureHeader = "### Repository Structure:"
	// ContentsHeader introduces the per-file content blocks.
	ContentsHeader = "### Repository Contents:"
	// FileHeadingPrefix opens one content block and carries the relative path.
	FileHeadingPrefix = "###### File: "

	// fenceCharacter is the character fenced code blocks are built from.
	fenceCharacter = "`"
	// minimumFenceLength is the shortest legal fence.
	minimumFenceLength = 3

	// treeConnectorMiddle prefixes every diagram entry except the last of its directory.
	treeConnectorMiddle = "├── "
	// treeConnectorLast prefixes the final diagram entry of a directory.
	treeConnectorLast = "└── "
	// treeExtensionMiddle continues the parent branch below a non-final entry.
	treeExtensionMiddle = "│   "
	// treeExtensionLast pads below a final entry.
	treeExtensionLast = "    "

	// warningUnreadableFileFormat is used when a text file cannot be read during encoding.
	warningUnreadableFileFormat = "Warning: Skipping unreadable file %s: %v\n"
)

// contentBlock pairs one file entry with its resolved block body.
type contentBlock struct {
	entry types.FileEntry
	body  string
}

// EncodeDocument renders the dump document for repositoryName over the walked
// entries. Text file contents are read here; a file that cannot be read is
// reported on warningWriter and dropped from both the diagram and the contents
// section, preserving the section-identity invariant. Both sections render
// from the same surviving entry slice in the same order.
func EncodeDocument(repositoryName string, entries []types.FileEntry, warningWriter io.Writer) (string, error) {
	blocks := resolveContentBlocks(entries, warningWriter)

	var documentBuilder strings.Builder
	documentBuilder.WriteString(TitlePrefix + repositoryName + "\n\n")

	documentBuilder.WriteString(StructureHeader + "\n\n")
	documentBuilder.WriteString(strings.Repeat(fenceCharacter, minimumFenceLength) + "\n")
	documentBuilder.WriteString("/" + repositoryName + "/\n")
	writeTreeDiagram(&documentBuilder, blocks)
	documentBuilder.WriteString(strings.Repeat(fenceCharacter, minimumFenceLength) + "\n\n")

	documentBuilder.WriteString(ContentsHeader + "\n")
	for _, block := range blocks {
		writeContentBlock(&documentBuilder, block)
	}

	return documentBuilder.String(), nil
}

// resolveContentBlocks reads each text entry's content and substitutes the
// binary placeholder for binary entries. Unreadable entries are dropped.
func resolveContentBlocks(entries []types.FileEntry, warningWriter io.Writer) []contentBlock {
	blocks := make([]contentBlock, 0, len(entries))
	for _, entry := range entries {
		if entry.Classification == types.ClassificationBinary {
			blocks = append(blocks, contentBlock{entry: entry, body: types.BinaryPlaceholder})
			continue
		}
		fileContent, readError := os.ReadFile(entry.AbsolutePath)
		if readError != nil {
			fmt.Fprintf(warningWriter, warningUnreadableFileFormat, entry.AbsolutePath, readError)
			continue
		}
		blocks = append(blocks, contentBlock{entry: entry, body: string(fileContent)})
	}
	return blocks
}

// writeContentBlock emits one file heading and its fenced body. The newline
// separating the body from the closing fence belongs to the fence, which is
// how content with and without a trailing newline stays distinguishable.
func writeContentBlock(documentBuilder *strings.Builder, block contentBlock) {
	fence := fenceFor(block.body)
	languageTag := utils.LanguageTag(block.entry.RelativePath)

	documentBuilder.WriteString("\n" + FileHeadingPrefix + block.entry.RelativePath + "\n\n")
	documentBuilder.WriteString(fence + languageTag + "\n")
	documentBuilder.WriteString(block.body)
	documentBuilder.WriteString("\n" + fence + "\n")
}

// fenceFor returns a fence strictly longer than any backtick run in content.
func fenceFor(content string) string {
	longestRun := 0
	currentRun := 0
	for characterIndex := 0; characterIndex < len(content); characterIndex++ {
		if content[characterIndex] != fenceCharacter[0] {
			currentRun = 0
			continue
		}
		currentRun++
		if currentRun > longestRun {
			longestRun = currentRun
		}
	}

	fenceLength := minimumFenceLength
	if longestRun >= fenceLength {
		fenceLength = longestRun + 1
	}
	return strings.Repeat(fenceCharacter, fenceLength)
}

// treeNode is one level of the rendered directory diagram.
type treeNode struct {
	name        string
	isDirectory bool
	children    []*treeNode
}

// writeTreeDiagram renders the box-drawing diagram for the blocks in order.
func writeTreeDiagram(documentBuilder *strings.Builder, blocks []contentBlock) {
	rootNode := &treeNode{isDirectory: true}
	for _, block := range blocks {
		insertPath(rootNode, strings.Split(block.entry.RelativePath, "/"))
	}
	writeTreeLevel(documentBuilder, rootNode, "")
}

// insertPath threads one relative path into the diagram tree. Blocks arrive in
// diagram order, so appending on first sight keeps children ordered with
// subdirectories ahead of files.
func insertPath(currentNode *treeNode, pathSegments []string) {
	for segmentIndex, pathSegment := range pathSegments {
		isFileSegment := segmentIndex == len(pathSegments)-1
		childNode := findChild(currentNode, pathSegment)
		if childNode == nil {
			childNode = &treeNode{name: pathSegment, isDirectory: !isFileSegment}
			currentNode.children = append(currentNode.children, childNode)
		}
		currentNode = childNode
	}
}

// findChild locates a direct child by name.
func findChild(parentNode *treeNode, childName string) *treeNode {
	for _, childNode := range parentNode.children {
		if childNode.name == childName {
			return childNode
		}
	}
	return nil
}

// writeTreeLevel emits one directory level with box-drawing connectors.
func writeTreeLevel(documentBuilder *strings.Builder, currentNode *treeNode, linePrefix string) {
	for childIndex, childNode := range currentNode.children {
		isLastChild := childIndex == len(currentNode.children)-1

		connector := treeConnectorMiddle
		extension := treeExtensionMiddle
		if isLastChild {
			connector = treeConnectorLast
			extension = treeExtensionLast
		}

		if childNode.isDirectory {
			documentBuilder.WriteString(linePrefix + connector + childNode.name + "/\n")
			writeTreeLevel(documentBuilder, childNode, linePrefix+extension)
			continue
		}
		documentBuilder.WriteString(linePrefix + connector + childNode.name + "\n")
	}
}
