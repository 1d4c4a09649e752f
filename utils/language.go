package utils

import (
	"path/filepath"
	"strings"
)

var extensionLanguages = map[string]string{
	".go":   "go",
	".js":   "javascript",
	".jsx":  "javascript",
	".mjs":  "javascript",
	".cjs":  "javascript",
	".ts":   "typescript",
	".tsx":  "typescript",
	".py":   "python",
	".java": "java",
	".cs":   "csharp",
	".rs":   "rust",
	".zig":  "zig",
	".rb":   "ruby",
	".php":  "php",
	".c":    "c",
	".h":    "c",
	".cc":   "cpp",
	".cpp":  "cpp",
	".hpp":  "cpp",
	".css":  "css",
	".html": "html",
	".json": "json",
	".yml":  "yaml",
	".yaml": "yaml",
	".md":   "markdown",
	".sh":   "bash",
}

// GetSupportedLanguage maps a file path to a language name, or "" when the
// extension is not recognized.
func GetSupportedLanguage(filePath string) string {
	return extensionLanguages[strings.ToLower(filepath.Ext(filePath))]
}

// DetectLanguageFromCodeBlock inspects a markdown chunk for a fenced code
// block language tag. Used to pick a highlighting lexer while streaming.
func DetectLanguageFromCodeBlock(content string) string {
	for _, line := range strings.Split(content, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "```") {
			tag := strings.TrimSpace(strings.TrimPrefix(trimmed, "```"))
			if tag != "" {
				return tag
			}
		}
	}
	return "markdown"
}
