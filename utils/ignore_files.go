package utils

import (
	"os"
	"path/filepath"
	"strings"

	ignore "github.com/sabhiram/go-gitignore"
)

// defaultIgnorePatterns are always excluded from workspace scans regardless
// of any ignore file: VCS metadata, build output, caches, and binary media.
var defaultIgnorePatterns = []string{
	".git/",
	".svn/",
	".idea/",
	".vscode/",
	".cache/",
	"node_modules/",
	"bin/",
	"obj/",
	"dist/",
	"out/",
	"vendor/",
	"codeflow-config.yml",
	"codeflow-config.yaml",
	"codeflow-config.json",
	"*.exe",
	"*.dll",
	"*.so",
	"*.log",
	"*.bak",
	"*.sum",
	"*.mp3",
	"*.wav",
	"*.flac",
	"*.ogg",
	"*.jpg",
	"*.jpeg",
	"*.png",
	"*.gif",
	"*.mkv",
	"*.mp4",
	"*.avi",
	"*.mov",
	"*.pdf",
	"*.zip",
	"*.tar.gz",
}

var defaultIgnore = ignore.CompileIgnoreLines(defaultIgnorePatterns...)

// LoadIgnoreMatcher compiles the workspace ignore rules: the built-in
// defaults plus the workspace's .gitignore and .codeflow-ignore when present.
func LoadIgnoreMatcher(rootDir string) *ignore.GitIgnore {
	lines := make([]string, 0, len(defaultIgnorePatterns)+32)
	lines = append(lines, defaultIgnorePatterns...)

	for _, name := range []string{".gitignore", ".codeflow-ignore"} {
		content, err := os.ReadFile(filepath.Join(rootDir, name))
		if err != nil {
			continue
		}
		for _, line := range strings.Split(string(content), "\n") {
			line = strings.TrimSpace(line)
			if line != "" && !strings.HasPrefix(line, "#") {
				lines = append(lines, line)
			}
		}
	}

	return ignore.CompileIgnoreLines(lines...)
}

// IsDefaultIgnored checks a relative path against the built-in defaults only.
func IsDefaultIgnored(relPath string) bool {
	return defaultIgnore.MatchesPath(relPath)
}
