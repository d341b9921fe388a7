package utils

import (
	"io"
	"os"
	"unicode/utf8"

	"github.com/temirov/repodump/internal/types"
)

// sniffLength defines the maximum number of bytes read when classifying file content.
const sniffLength = 8000

// IsBinary reports whether the provided byte slice appears to contain binary data.
func IsBinary(data []byte) bool {
	if len(data) == 0 {
		return false
	}
	if !utf8.Valid(data) {
		return true
	}
	for _, byteValue := range data {
		if byteValue == 0 {
			return true
		}
	}
	return false
}

// ClassifyFile reads up to sniffLength bytes from the file at path and reports
// whether its content should be treated as text or binary. The probe is a
// heuristic over a bounded prefix; a file that cannot be opened classifies as
// text so the read error surfaces later where it can be reported with context.
func ClassifyFile(path string) string {
	fileHandle, openError := os.Open(path)
	if openError != nil {
		return types.ClassificationText
	}
	defer fileHandle.Close()

	buffer := make([]byte, sniffLength)
	bytesRead, readError := fileHandle.Read(buffer)
	if readError != nil && readError != io.EOF {
		return types.ClassificationText
	}
	if IsBinary(buffer[:bytesRead]) {
		return types.ClassificationBinary
	}
	return types.ClassificationText
}
