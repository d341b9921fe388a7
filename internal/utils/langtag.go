package utils

import (
	"path/filepath"
	"strings"
)

// extensionLanguageTags maps file extensions to fenced code block language tags.
// The tag is cosmetic; an unmapped extension falls back to the bare extension.
var extensionLanguageTags = map[string]string{
	".c":     "c",
	".cc":    "cpp",
	".cpp":   "cpp",
	".cs":    "csharp",
	".css":   "css",
	".go":    "go",
	".h":     "c",
	".html":  "html",
	".java":  "java",
	".js":    "javascript",
	".json":  "json",
	".jsx":   "jsx",
	".kt":    "kotlin",
	".md":    "markdown",
	".php":   "php",
	".proto": "protobuf",
	".py":    "python",
	".rb":    "ruby",
	".rs":    "rust",
	".sh":    "bash",
	".sql":   "sql",
	".swift": "swift",
	".toml":  "toml",
	".ts":    "typescript",
	".tsx":   "tsx",
	".txt":   "text",
	".xml":   "xml",
	".yaml":  "yaml",
	".yml":   "yaml",
}

// LanguageTag derives the fenced code block language tag for relativePath.
// Files without an extension, including dotfiles such as .gitignore, use the
// lowercased file name without its leading dot.
func LanguageTag(relativePath string) string {
	baseName := filepath.Base(relativePath)
	extension := filepath.Ext(baseName)

	if extension == "" || extension == baseName {
		return strings.ToLower(strings.TrimPrefix(baseName, "."))
	}

	lowerExtension := strings.ToLower(extension)
	if mappedTag, isMapped := extensionLanguageTags[lowerExtension]; isMapped {
		return mappedTag
	}
	return strings.TrimPrefix(lowerExtension, ".")
}
