package code_context

import (
	"bytes"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/morler/codeflow/code_context/models"
	"github.com/morler/codeflow/dependency_graph"
	"github.com/morler/codeflow/directory_index"
	"github.com/morler/codeflow/utils"
)

// BuildError indicates the workspace could not be analyzed. No partial
// context is ever returned: a misleading prompt is worse than no prompt.
type BuildError struct {
	Root string
	Err  error
}

func (e *BuildError) Error() string {
	return fmt.Sprintf("failed to build context for workspace %s: %v", e.Root, e.Err)
}

func (e *BuildError) Unwrap() error { return e.Err }

// ScanLimits bound the workspace scan.
type ScanLimits struct {
	MaxFiles    int
	MaxFileSize int64
}

// DefaultScanLimits skip anything over 100 KB and stop indexing past 5000
// files.
var DefaultScanLimits = ScanLimits{MaxFiles: 5000, MaxFileSize: 100 * 1024}

// scanWorkspace walks the workspace, fills the directory index, and returns
// the per-file analysis. File content is read once, scanned for references,
// and dropped.
func scanWorkspace(rootDir string, limits ScanLimits, ix *directory_index.Index) (*models.WorkspaceAnalysis, error) {
	ign := utils.LoadIgnoreMatcher(rootDir)

	analysis := &models.WorkspaceAnalysis{Root: rootDir}
	pathSet := make(map[string]struct{})

	err := filepath.WalkDir(rootDir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		relPath, relErr := filepath.Rel(rootDir, p)
		if relErr != nil {
			return relErr
		}
		relPath = strings.ReplaceAll(relPath, "\\", "/")
		if relPath == "." {
			return nil
		}

		if ign.MatchesPath(relPath) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			ix.InsertDir(relPath)
			return nil
		}

		info, statErr := d.Info()
		if statErr != nil {
			return nil
		}
		if limits.MaxFileSize > 0 && info.Size() > limits.MaxFileSize {
			return nil
		}
		if limits.MaxFiles > 0 && len(analysis.Files) >= limits.MaxFiles {
			return filepath.SkipAll
		}

		content, readErr := os.ReadFile(p)
		if readErr != nil {
			return fmt.Errorf("failed to read file %s: %w", relPath, readErr)
		}

		ix.InsertFile(relPath)
		pathSet[relPath] = struct{}{}
		analysis.Files = append(analysis.Files, models.FileData{
			RelativePath: relPath,
			Size:         info.Size(),
			Lines:        bytes.Count(content, []byte("\n")) + 1,
			References:   dependency_graph.ScanReferences(relPath, content),
		})
		return nil
	})
	if err != nil {
		return nil, &BuildError{Root: rootDir, Err: err}
	}

	resolveReferences(analysis, pathSet)
	analysis.TreeText = ix.RenderTree(400)
	analysis.DependencySummary = renderDependencySummary(analysis)
	return analysis, nil
}

// resolveReferences rewrites each file's raw import tokens into the
// workspace-relative paths they resolve to, dropping external imports.
func resolveReferences(analysis *models.WorkspaceAnalysis, pathSet map[string]struct{}) {
	sorted := make([]string, 0, len(pathSet))
	for p := range pathSet {
		sorted = append(sorted, p)
	}
	sort.Strings(sorted)

	for i := range analysis.Files {
		file := &analysis.Files[i]
		var resolved []string
		seen := make(map[string]struct{})
		for _, token := range file.References {
			target, ok := resolveToken(file.RelativePath, token, pathSet, sorted)
			if !ok || target == file.RelativePath {
				continue
			}
			if _, dup := seen[target]; !dup {
				seen[target] = struct{}{}
				resolved = append(resolved, target)
			}
		}
		file.References = resolved
	}
}

func resolveToken(fromPath, token string, pathSet map[string]struct{}, sorted []string) (string, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return "", false
	}

	slashed := token
	if !strings.Contains(token, "/") && strings.Contains(token, ".") {
		if ext := path.Ext(token); ext == "" || len(ext) > 5 {
			slashed = strings.ReplaceAll(token, ".", "/")
		}
	}

	fromDir := path.Dir(fromPath)
	bases := []string{
		path.Clean(path.Join(fromDir, slashed)),
		path.Clean(slashed),
	}
	extensions := []string{"", path.Ext(fromPath), ".js", ".jsx", ".ts", ".tsx", ".py", ".go", ".java", ".cs", ".css", ".html"}

	for _, base := range bases {
		base = strings.TrimPrefix(base, "./")
		for _, ext := range extensions {
			if _, ok := pathSet[base+ext]; ok {
				return base + ext, true
			}
		}
	}

	// Unique basename match as the last resort.
	want := strings.ToLower(strings.TrimSuffix(path.Base(slashed), path.Ext(slashed)))
	match := ""
	for _, p := range sorted {
		base := strings.ToLower(strings.TrimSuffix(path.Base(p), path.Ext(p)))
		if base != want {
			continue
		}
		if match != "" {
			return "", false
		}
		match = p
	}
	return match, match != ""
}

func renderDependencySummary(analysis *models.WorkspaceAnalysis) string {
	var b strings.Builder
	for _, f := range analysis.Files {
		if len(f.References) == 0 {
			continue
		}
		fmt.Fprintf(&b, "%s -> %s\n", f.RelativePath, strings.Join(f.References, ", "))
	}
	return b.String()
}
