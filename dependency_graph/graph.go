package dependency_graph

import (
	"path"
	"sort"
	"strings"

	"github.com/morler/codeflow/operations"
)

// Graph is a directed dependency graph over one batch of pending operations.
// An edge A -> B means B's content references A's path, so A must execute
// first. Cycles are legal (mutual imports) and degrade to a deterministic
// order instead of failing the batch.
type Graph struct {
	ops    []*operations.PendingOperation
	edges  map[int]map[int]struct{} // from -> set of to
	indeg  []int
	byPath map[string]int // normalized path -> op index
}

// Build constructs the graph for a batch. Reference tokens are extracted
// from CreateFile/ModifyFile content and resolved against the other
// operations' paths; unresolvable tokens (external imports) are ignored.
// CreateDirectory operations gain an edge to every operation targeting a
// path under them: directory existence is a hard prerequisite, not a soft
// dependency.
func Build(ops []*operations.PendingOperation) *Graph {
	g := &Graph{
		ops:    ops,
		edges:  make(map[int]map[int]struct{}),
		indeg:  make([]int, len(ops)),
		byPath: make(map[string]int),
	}

	for i, op := range ops {
		if !op.Kind.TargetsPath() {
			continue
		}
		p := normalizePath(op.RawPath)
		if _, taken := g.byPath[p]; !taken {
			g.byPath[p] = i
		}
	}

	for i, op := range ops {
		if op.Kind != operations.KindCreateFile && op.Kind != operations.KindModifyFile {
			continue
		}
		for _, token := range ScanReferences(op.RawPath, op.Content) {
			target, ok := g.resolveReference(op.RawPath, token)
			if !ok || target == i {
				continue
			}
			dep := ops[target]
			if dep.Kind == operations.KindDeleteFile || dep.Kind == operations.KindDeleteDirectory {
				// Referencing a path that the batch deletes is not an
				// ordering dependency.
				continue
			}
			g.addEdge(target, i)
			op.Dependencies = append(op.Dependencies, dep.RawPath)
		}
	}

	g.hoistDirectories()
	return g
}

func (g *Graph) addEdge(from, to int) {
	if g.edges[from] == nil {
		g.edges[from] = make(map[int]struct{})
	}
	if _, exists := g.edges[from][to]; exists {
		return
	}
	g.edges[from][to] = struct{}{}
	g.indeg[to]++
}

// hoistDirectories adds an edge from each CreateDirectory to every operation
// whose path lies under that directory.
func (g *Graph) hoistDirectories() {
	for i, op := range g.ops {
		if op.Kind != operations.KindCreateDirectory {
			continue
		}
		dir := normalizePath(op.RawPath)
		for j, other := range g.ops {
			if i == j || !other.Kind.TargetsPath() {
				continue
			}
			p := normalizePath(other.RawPath)
			if strings.HasPrefix(p, dir+"/") {
				g.addEdge(i, j)
			}
		}
	}
}

// Order returns the batch in a safe, deterministic execution order using
// Kahn's algorithm. Among simultaneously ready operations the original
// textual-appearance order wins. If a cycle remains once every zero-in-degree
// node is exhausted, the earliest-appearing remaining node is forced out and
// ordering continues: degraded but deterministic, never a failure.
// RunCommand operations always run after every filesystem operation, since
// commands typically consume the files the batch creates.
func Order(ops []*operations.PendingOperation) []*operations.PendingOperation {
	if len(ops) <= 1 {
		return ops
	}

	g := Build(ops)

	indeg := make([]int, len(g.indeg))
	copy(indeg, g.indeg)

	remaining := make(map[int]struct{}, len(ops))
	for i := range ops {
		remaining[i] = struct{}{}
	}

	ordered := make([]*operations.PendingOperation, 0, len(ops))
	for len(remaining) > 0 {
		next := -1
		for i := range remaining {
			if indeg[i] != 0 {
				continue
			}
			if next == -1 || g.ops[i].Seq < g.ops[next].Seq {
				next = i
			}
		}
		if next == -1 {
			// Every remaining node sits on a cycle. Break it at the
			// earliest textual appearance.
			for i := range remaining {
				if next == -1 || g.ops[i].Seq < g.ops[next].Seq {
					next = i
				}
			}
		}

		delete(remaining, next)
		ordered = append(ordered, g.ops[next])
		for to := range g.edges[next] {
			indeg[to]--
		}
	}

	// Stable partition: filesystem operations first, commands last.
	fs := make([]*operations.PendingOperation, 0, len(ordered))
	var cmds []*operations.PendingOperation
	for _, op := range ordered {
		if op.Kind == operations.KindRunCommand {
			cmds = append(cmds, op)
			continue
		}
		fs = append(fs, op)
	}
	return append(fs, cmds...)
}

// resolveReference maps a reference token from fromPath's content to another
// operation in the batch. Candidates are tried relative to the importing
// file's directory, then from the workspace root, each with the common
// extension variants; a unique basename match is the last resort. Candidate
// iteration is sorted so resolution is deterministic.
func (g *Graph) resolveReference(fromPath, token string) (int, bool) {
	token = strings.TrimSpace(token)
	if token == "" {
		return 0, false
	}

	// Dotted module syntax (python, java, csharp) maps to a slash path.
	slashed := token
	if !strings.Contains(token, "/") && strings.Contains(token, ".") && !strings.ContainsAny(token, `"'`) {
		if ext := path.Ext(token); ext == "" || len(ext) > 5 {
			slashed = strings.ReplaceAll(token, ".", "/")
		}
	}

	fromDir := path.Dir(normalizePath(fromPath))
	bases := []string{
		normalizePath(path.Join(fromDir, slashed)),
		normalizePath(slashed),
	}

	extensions := []string{"", path.Ext(fromPath), ".js", ".jsx", ".ts", ".tsx", ".py", ".go", ".java", ".cs", ".css", ".html"}
	for _, base := range bases {
		for _, ext := range extensions {
			if idx, ok := g.byPath[base+ext]; ok {
				return idx, true
			}
		}
		// index-file convention for directory imports
		for _, ext := range []string{".js", ".ts", ".jsx", ".tsx"} {
			if idx, ok := g.byPath[base+"/index"+ext]; ok {
				return idx, true
			}
		}
	}

	// Unique basename match, stripped of extensions on both sides.
	want := strings.ToLower(strings.TrimSuffix(path.Base(slashed), path.Ext(slashed)))
	paths := make([]string, 0, len(g.byPath))
	for p := range g.byPath {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	match := -1
	for _, p := range paths {
		base := strings.ToLower(strings.TrimSuffix(path.Base(p), path.Ext(p)))
		if base != want {
			continue
		}
		if match != -1 {
			return 0, false // ambiguous
		}
		match = g.byPath[p]
	}
	if match == -1 {
		return 0, false
	}
	return match, true
}

func normalizePath(p string) string {
	return strings.Trim(path.Clean(strings.ReplaceAll(p, "\\", "/")), "/")
}
