package dependency_graph

import (
	"encoding/json"
	"log"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/morler/codeflow/embed_data"
	"github.com/morler/codeflow/utils"
)

var treeSitterLanguages = map[string]*sitter.Language{
	"go":         golang.GetLanguage(),
	"javascript": javascript.GetLanguage(),
	"typescript": typescript.GetLanguage(),
	"python":     python.GetLanguage(),
	"java":       java.GetLanguage(),
	"csharp":     csharp.GetLanguage(),
}

var importQueries map[string]map[string]string

func init() {
	if err := json.Unmarshal(embed_data.ImportQueries, &importQueries); err != nil {
		log.Fatalf("failed to parse import queries: %v", err)
	}
}

// Fallback patterns for languages without tree-sitter bindings, in the same
// spirit as the line-based structure extraction used for Rust and Zig.
var (
	requireRegex = regexp.MustCompile(`require\(\s*['"]([^'"]+)['"]\s*\)`)
	includeRegex = regexp.MustCompile(`#include\s+"([^"]+)"`)
	rustUseRegex = regexp.MustCompile(`^\s*(?:pub\s+)?(?:use|mod)\s+([\w:]+)`)
	urlRefRegex  = regexp.MustCompile(`(?:src|href)\s*=\s*["']([^"':]+)["']`)
	cssImpRegex  = regexp.MustCompile(`@import\s+(?:url\()?["']([^"']+)["']`)
)

// ScanReferences extracts the import-like reference tokens from a file's
// content. Tree-sitter queries handle the main languages; everything else
// falls back to regex scanning.
func ScanReferences(filePath string, content []byte) []string {
	language := utils.GetSupportedLanguage(filePath)

	if lang, ok := treeSitterLanguages[language]; ok {
		if refs := scanWithTreeSitter(lang, language, content); refs != nil {
			return refs
		}
	}

	return scanWithRegex(language, content)
}

func scanWithTreeSitter(lang *sitter.Language, language string, content []byte) []string {
	queries, ok := importQueries[language]
	if !ok {
		return nil
	}

	parser := sitter.NewParser()
	parser.SetLanguage(lang)
	tree := parser.Parse(nil, content)
	if tree == nil {
		return nil
	}

	var refs []string
	seen := make(map[string]struct{})
	for _, queryStr := range queries {
		query, err := sitter.NewQuery([]byte(queryStr), lang)
		if err != nil {
			continue
		}
		cursor := sitter.NewQueryCursor()
		cursor.Exec(query, tree.RootNode())

		for {
			match, ok := cursor.NextMatch()
			if !ok {
				break
			}
			for _, cap := range match.Captures {
				token := strings.Trim(cap.Node.Content(content), `"'`)
				if token == "" {
					continue
				}
				if _, dup := seen[token]; !dup {
					seen[token] = struct{}{}
					refs = append(refs, token)
				}
			}
		}
	}
	return refs
}

func scanWithRegex(language string, content []byte) []string {
	var patterns []*regexp.Regexp
	switch language {
	case "rust":
		patterns = []*regexp.Regexp{rustUseRegex}
	case "c", "cpp":
		patterns = []*regexp.Regexp{includeRegex}
	case "css":
		patterns = []*regexp.Regexp{cssImpRegex}
	case "html":
		patterns = []*regexp.Regexp{urlRefRegex, cssImpRegex}
	default:
		patterns = []*regexp.Regexp{requireRegex, includeRegex}
	}

	var refs []string
	seen := make(map[string]struct{})
	for _, line := range strings.Split(string(content), "\n") {
		for _, re := range patterns {
			for _, m := range re.FindAllStringSubmatch(line, -1) {
				token := m[1]
				if _, dup := seen[token]; !dup {
					seen[token] = struct{}{}
					refs = append(refs, token)
				}
			}
		}
	}
	return refs
}
