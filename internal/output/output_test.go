package output_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/temirov/repodump/internal/output"
	"github.com/temirov/repodump/internal/types"
)

// repositoryName names the repository used across encoder tests.
const repositoryName = "example"

// writeTestFile creates a file with the specified content, failing the test on error.
func writeTestFile(testingInstance *testing.T, filePath string, content []byte) {
	testingInstance.Helper()
	if makeDirError := os.MkdirAll(filepath.Dir(filePath), 0o755); makeDirError != nil {
		testingInstance.Fatalf("failed to create directory for %s: %v", filePath, makeDirError)
	}
	if writeError := os.WriteFile(filePath, content, 0o644); writeError != nil {
		testingInstance.Fatalf("failed to write %s: %v", filePath, writeError)
	}
}

// textEntry builds a text FileEntry rooted in the test directory.
func textEntry(rootDirectory string, relativePath string) types.FileEntry {
	return types.FileEntry{
		RelativePath:   relativePath,
		AbsolutePath:   filepath.Join(rootDirectory, filepath.FromSlash(relativePath)),
		Classification: types.ClassificationText,
	}
}

// TestEncodeDocumentLayout verifies section order, the tree diagram, and content blocks.
func TestEncodeDocumentLayout(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "src", "main.go"), []byte("package main\n"))
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "README.md"), []byte("Hello\n"))

	entries := []types.FileEntry{
		textEntry(rootDirectory, "src/main.go"),
		textEntry(rootDirectory, "README.md"),
	}

	var warningBuffer bytes.Buffer
	documentText, encodeError := output.EncodeDocument(repositoryName, entries, &warningBuffer)
	if encodeError != nil {
		testingInstance.Fatalf("EncodeDocument failed: %v", encodeError)
	}
	if warningBuffer.Len() != 0 {
		testingInstance.Fatalf("unexpected warnings: %s", warningBuffer.String())
	}

	expectedFragments := []string{
		output.TitlePrefix + repositoryName + "\n",
		output.StructureHeader + "\n",
		"/" + repositoryName + "/\n",
		"├── src/\n",
		"│   └── main.go\n",
		"└── README.md\n",
		output.ContentsHeader + "\n",
		output.FileHeadingPrefix + "src/main.go\n",
		"```go\npackage main\n\n```\n",
		output.FileHeadingPrefix + "README.md\n",
		"```markdown\nHello\n\n```\n",
	}
	for _, expectedFragment := range expectedFragments {
		if !strings.Contains(documentText, expectedFragment) {
			testingInstance.Errorf("document missing fragment %q\ndocument:\n%s", expectedFragment, documentText)
		}
	}

	titleIndex := strings.Index(documentText, output.TitlePrefix)
	structureIndex := strings.Index(documentText, output.StructureHeader)
	contentsIndex := strings.Index(documentText, output.ContentsHeader)
	if !(titleIndex < structureIndex && structureIndex < contentsIndex) {
		testingInstance.Errorf("sections out of order: title %d structure %d contents %d", titleIndex, structureIndex, contentsIndex)
	}
}

// TestEncodeDocumentBinaryPlaceholder verifies that binary entries embed the placeholder only.
func TestEncodeDocumentBinaryPlaceholder(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	binaryContent := []byte{0x00, 0x01, 0x02, 0x03}
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "image.bin"), binaryContent)

	entries := []types.FileEntry{
		{
			RelativePath:   "image.bin",
			AbsolutePath:   filepath.Join(rootDirectory, "image.bin"),
			Classification: types.ClassificationBinary,
		},
	}

	var warningBuffer bytes.Buffer
	documentText, encodeError := output.EncodeDocument(repositoryName, entries, &warningBuffer)
	if encodeError != nil {
		testingInstance.Fatalf("EncodeDocument failed: %v", encodeError)
	}

	if !strings.Contains(documentText, types.BinaryPlaceholder) {
		testingInstance.Error("document missing binary placeholder")
	}
	if bytes.Contains([]byte(documentText), binaryContent) {
		testingInstance.Error("document embeds raw binary bytes")
	}
}

// TestEncodeDocumentFenceCollision verifies the fence grows past backtick runs in content.
func TestEncodeDocumentFenceCollision(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	fenceContent := "before\n````\nafter\n"
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "notes.md"), []byte(fenceContent))

	entries := []types.FileEntry{textEntry(rootDirectory, "notes.md")}

	var warningBuffer bytes.Buffer
	documentText, encodeError := output.EncodeDocument(repositoryName, entries, &warningBuffer)
	if encodeError != nil {
		testingInstance.Fatalf("EncodeDocument failed: %v", encodeError)
	}
	if !strings.Contains(documentText, "`````markdown\n") {
		testingInstance.Errorf("expected five-backtick fence, document:\n%s", documentText)
	}

	decodedEntries, decodeError := output.DecodeDocument(documentText, &warningBuffer)
	if decodeError != nil {
		testingInstance.Fatalf("DecodeDocument failed: %v", decodeError)
	}
	if len(decodedEntries) != 1 {
		testingInstance.Fatalf("expected one entry, got %d", len(decodedEntries))
	}
	if decodedEntries[0].Content != fenceContent {
		testingInstance.Errorf("fence content corrupted: got %q want %q", decodedEntries[0].Content, fenceContent)
	}
}

// TestRoundTripPreservesContent verifies encode followed by decode returns
// byte-identical content, including trailing newline presence and absence.
func TestRoundTripPreservesContent(testingInstance *testing.T) {
	testCases := []struct {
		testName string
		content  string
	}{
		{
			testName: "content with trailing newline",
			content:  "line one\nline two\n",
		},
		{
			testName: "content without trailing newline",
			content:  "line one\nline two",
		},
		{
			testName: "empty content",
			content:  "",
		},
		{
			testName: "blank lines preserved",
			content:  "\n\nmiddle\n\n",
		},
	}

	for index, testCase := range testCases {
		rootDirectory := testingInstance.TempDir()
		writeTestFile(testingInstance, filepath.Join(rootDirectory, "file.txt"), []byte(testCase.content))
		entries := []types.FileEntry{textEntry(rootDirectory, "file.txt")}

		var warningBuffer bytes.Buffer
		documentText, encodeError := output.EncodeDocument(repositoryName, entries, &warningBuffer)
		if encodeError != nil {
			testingInstance.Fatalf("case %d (%s): EncodeDocument failed: %v", index, testCase.testName, encodeError)
		}
		decodedEntries, decodeError := output.DecodeDocument(documentText, &warningBuffer)
		if decodeError != nil {
			testingInstance.Fatalf("case %d (%s): DecodeDocument failed: %v", index, testCase.testName, decodeError)
		}
		if len(decodedEntries) != 1 {
			testingInstance.Fatalf("case %d (%s): expected one entry, got %d", index, testCase.testName, len(decodedEntries))
		}
		if decodedEntries[0].Content != testCase.content {
			testingInstance.Errorf("case %d (%s): content mismatch: got %q want %q", index, testCase.testName, decodedEntries[0].Content, testCase.content)
		}
	}
}

// TestDecodeDocumentFatalErrors verifies unparseable documents fail outright.
func TestDecodeDocumentFatalErrors(testingInstance *testing.T) {
	var warningBuffer bytes.Buffer

	if _, decodeError := output.DecodeDocument("not a dump at all\n", &warningBuffer); decodeError == nil {
		testingInstance.Error("expected error for document without title")
	}
	if _, decodeError := output.DecodeDocument(output.TitlePrefix+"repo\n\nno contents marker\n", &warningBuffer); decodeError == nil {
		testingInstance.Error("expected error for document without contents section")
	}
}

// TestDecodeDocumentMalformedEntries verifies per-entry problems warn and skip.
func TestDecodeDocumentMalformedEntries(testingInstance *testing.T) {
	documentText := output.TitlePrefix + "repo\n\n" +
		output.ContentsHeader + "\n\n" +
		output.FileHeadingPrefix + "missing_block.txt\n\n" +
		"this heading has no fence\n\n" +
		output.FileHeadingPrefix + "good.txt\n\n" +
		"```text\ncontent\n```\n\n" +
		output.FileHeadingPrefix + "unterminated.txt\n\n" +
		"```text\nnever closed\n"

	var warningBuffer bytes.Buffer
	decodedEntries, decodeError := output.DecodeDocument(documentText, &warningBuffer)
	if decodeError != nil {
		testingInstance.Fatalf("DecodeDocument failed: %v", decodeError)
	}
	if len(decodedEntries) != 1 {
		testingInstance.Fatalf("expected one surviving entry, got %d", len(decodedEntries))
	}
	if decodedEntries[0].RelativePath != "good.txt" || decodedEntries[0].Content != "content" {
		testingInstance.Errorf("unexpected surviving entry: %+v", decodedEntries[0])
	}
	warningText := warningBuffer.String()
	if !strings.Contains(warningText, "missing_block.txt") {
		testingInstance.Errorf("expected warning for missing_block.txt, got: %s", warningText)
	}
	if !strings.Contains(warningText, "unterminated.txt") {
		testingInstance.Errorf("expected warning for unterminated.txt, got: %s", warningText)
	}
}

// TestDecodeDocumentBinaryEntry verifies the placeholder marks entries binary.
func TestDecodeDocumentBinaryEntry(testingInstance *testing.T) {
	documentText := output.TitlePrefix + "repo\n\n" +
		output.ContentsHeader + "\n\n" +
		output.FileHeadingPrefix + "assets/logo.png\n\n" +
		"```png\n" + types.BinaryPlaceholder + "\n```\n"

	var warningBuffer bytes.Buffer
	decodedEntries, decodeError := output.DecodeDocument(documentText, &warningBuffer)
	if decodeError != nil {
		testingInstance.Fatalf("DecodeDocument failed: %v", decodeError)
	}
	if len(decodedEntries) != 1 {
		testingInstance.Fatalf("expected one entry, got %d", len(decodedEntries))
	}
	if !decodedEntries[0].Binary {
		testingInstance.Error("expected entry to be marked binary")
	}
	if decodedEntries[0].Content != "" {
		testingInstance.Errorf("expected empty content for binary entry, got %q", decodedEntries[0].Content)
	}
}

// TestDecodeIdempotence verifies decoding, re-encoding, and decoding again
// yields the same path and content pairs.
func TestDecodeIdempotence(testingInstance *testing.T) {
	rootDirectory := testingInstance.TempDir()
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "a.txt"), []byte("alpha\n"))
	writeTestFile(testingInstance, filepath.Join(rootDirectory, "sub", "b.txt"), []byte("beta"))

	entries := []types.FileEntry{
		textEntry(rootDirectory, "sub/b.txt"),
		textEntry(rootDirectory, "a.txt"),
	}

	var warningBuffer bytes.Buffer
	firstDocument, encodeError := output.EncodeDocument(repositoryName, entries, &warningBuffer)
	if encodeError != nil {
		testingInstance.Fatalf("EncodeDocument failed: %v", encodeError)
	}
	firstDecode, firstDecodeError := output.DecodeDocument(firstDocument, &warningBuffer)
	if firstDecodeError != nil {
		testingInstance.Fatalf("first DecodeDocument failed: %v", firstDecodeError)
	}

	materializedRoot := testingInstance.TempDir()
	secondEntries := make([]types.FileEntry, 0, len(firstDecode))
	for _, decodedEntry := range firstDecode {
		materializedPath := filepath.Join(materializedRoot, filepath.FromSlash(decodedEntry.RelativePath))
		writeTestFile(testingInstance, materializedPath, []byte(decodedEntry.Content))
		secondEntries = append(secondEntries, textEntry(materializedRoot, decodedEntry.RelativePath))
	}

	secondDocument, secondEncodeError := output.EncodeDocument(repositoryName, secondEntries, &warningBuffer)
	if secondEncodeError != nil {
		testingInstance.Fatalf("second EncodeDocument failed: %v", secondEncodeError)
	}
	secondDecode, secondDecodeError := output.DecodeDocument(secondDocument, &warningBuffer)
	if secondDecodeError != nil {
		testingInstance.Fatalf("second DecodeDocument failed: %v", secondDecodeError)
	}

	if len(firstDecode) != len(secondDecode) {
		testingInstance.Fatalf("entry count changed across round trips: %d vs %d", len(firstDecode), len(secondDecode))
	}
	for entryIndex := range firstDecode {
		if firstDecode[entryIndex].RelativePath != secondDecode[entryIndex].RelativePath {
			testingInstance.Errorf("path changed: %s vs %s", firstDecode[entryIndex].RelativePath, secondDecode[entryIndex].RelativePath)
		}
		if firstDecode[entryIndex].Content != secondDecode[entryIndex].Content {
			testingInstance.Errorf("content changed for %s", firstDecode[entryIndex].RelativePath)
		}
	}
}

// TestRepositoryName verifies title extraction.
func TestRepositoryName(testingInstance *testing.T) {
	if extractedName := output.RepositoryName(output.TitlePrefix + "my-repo\n"); extractedName != "my-repo" {
		testingInstance.Errorf("expected my-repo, got %s", extractedName)
	}
	if extractedName := output.RepositoryName("plain text\n"); extractedName != "" {
		testingInstance.Errorf("expected empty name, got %s", extractedName)
	}
}
