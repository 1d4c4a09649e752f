package directory_index

import (
	"path"
	"sort"
	"strings"
	"sync"
)

// nodeID addresses a node inside the arena. The root is always node 0.
type nodeID int

const rootID nodeID = 0

// node is one directory segment. Children are owned by their parent; the
// parent relation is implicit in traversal, never stored as a back-pointer,
// so the structure stays a tree by construction.
type node struct {
	name     string
	children map[string]nodeID
	files    map[string]struct{}
}

// Index is a prefix tree over slash-separated workspace-relative paths.
// Insert, Remove and Exists are O(path segments). The index is an in-memory
// mirror of the workspace: it is updated by the action executor around real
// mutations and rebuilt wholesale when the context cache detects staleness.
type Index struct {
	mu    sync.RWMutex
	arena []node
	files int
}

// NewIndex returns an empty index containing only the root node.
func NewIndex() *Index {
	return &Index{arena: []node{{name: ""}}}
}

func splitPath(relPath string) []string {
	relPath = strings.Trim(path.Clean(strings.ReplaceAll(relPath, "\\", "/")), "/")
	if relPath == "" || relPath == "." {
		return nil
	}
	return strings.Split(relPath, "/")
}

func (ix *Index) newNode(name string) nodeID {
	ix.arena = append(ix.arena, node{name: name})
	return nodeID(len(ix.arena) - 1)
}

// descend walks the directory segments, creating intermediate nodes when
// create is set. Returns the node reached, or false when a segment is
// missing and create is unset.
func (ix *Index) descend(segments []string, create bool) (nodeID, bool) {
	current := rootID
	for _, seg := range segments {
		n := &ix.arena[current]
		child, ok := n.children[seg]
		if !ok {
			if !create {
				return 0, false
			}
			child = ix.newNode(seg)
			n = &ix.arena[current] // arena may have been reallocated
			if n.children == nil {
				n.children = make(map[string]nodeID)
			}
			n.children[seg] = child
		}
		current = child
	}
	return current, true
}

// InsertFile records a file, creating intermediate directory nodes as needed
// (mkdir -p semantics in the index, independent of the real filesystem).
func (ix *Index) InsertFile(relPath string) {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	dir, _ := ix.descend(segments[:len(segments)-1], true)
	n := &ix.arena[dir]
	if n.files == nil {
		n.files = make(map[string]struct{})
	}
	name := segments[len(segments)-1]
	if _, exists := n.files[name]; !exists {
		n.files[name] = struct{}{}
		ix.files++
	}
}

// InsertDir records a directory, creating intermediate nodes as needed.
func (ix *Index) InsertDir(relPath string) {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.descend(segments, true)
}

// RemoveFile forgets a file. Removing an absent file is a no-op.
func (ix *Index) RemoveFile(relPath string) {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	dir, ok := ix.descend(segments[:len(segments)-1], false)
	if !ok {
		return
	}
	name := segments[len(segments)-1]
	if _, exists := ix.arena[dir].files[name]; exists {
		delete(ix.arena[dir].files, name)
		ix.files--
	}
}

// RemoveDir forgets a directory subtree. Orphaned arena slots are not
// reclaimed; the whole index is cheap to rebuild and short-lived.
func (ix *Index) RemoveDir(relPath string) {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return
	}
	ix.mu.Lock()
	defer ix.mu.Unlock()

	parent, ok := ix.descend(segments[:len(segments)-1], false)
	if !ok {
		return
	}
	name := segments[len(segments)-1]
	child, ok := ix.arena[parent].children[name]
	if !ok {
		return
	}
	ix.files -= ix.countFiles(child)
	delete(ix.arena[parent].children, name)
}

func (ix *Index) countFiles(id nodeID) int {
	total := len(ix.arena[id].files)
	for _, child := range ix.arena[id].children {
		total += ix.countFiles(child)
	}
	return total
}

// Exists reports whether relPath is a known file or directory.
func (ix *Index) Exists(relPath string) bool {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return true // the root itself
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	if _, ok := ix.descend(segments, false); ok {
		return true
	}
	dir, ok := ix.descend(segments[:len(segments)-1], false)
	if !ok {
		return false
	}
	_, isFile := ix.arena[dir].files[segments[len(segments)-1]]
	return isFile
}

// IsDir reports whether relPath is a known directory.
func (ix *Index) IsDir(relPath string) bool {
	segments := splitPath(relPath)
	if len(segments) == 0 {
		return true
	}
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	_, ok := ix.descend(segments, false)
	return ok
}

// FileCount returns the number of files in the index.
func (ix *Index) FileCount() int {
	ix.mu.RLock()
	defer ix.mu.RUnlock()
	return ix.files
}

// ListChildren returns the sorted names directly under dirPath, directories
// first with a trailing slash, then files.
func (ix *Index) ListChildren(dirPath string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	dir, ok := ix.descend(splitPath(dirPath), false)
	if !ok {
		return nil
	}
	n := ix.arena[dir]

	dirs := make([]string, 0, len(n.children))
	for name := range n.children {
		dirs = append(dirs, name+"/")
	}
	sort.Strings(dirs)

	files := make([]string, 0, len(n.files))
	for name := range n.files {
		files = append(files, name)
	}
	sort.Strings(files)

	return append(dirs, files...)
}

// Files returns every known file path, sorted.
func (ix *Index) Files() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []string
	ix.walk(rootID, "", func(p string, isDir bool) {
		if !isDir {
			out = append(out, p)
		}
	})
	sort.Strings(out)
	return out
}

// FindByPattern returns the sorted file paths whose relative path or base
// name matches the glob pattern.
func (ix *Index) FindByPattern(pattern string) []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []string
	ix.walk(rootID, "", func(p string, isDir bool) {
		if isDir {
			return
		}
		if ok, _ := path.Match(pattern, p); ok {
			out = append(out, p)
			return
		}
		if ok, _ := path.Match(pattern, path.Base(p)); ok {
			out = append(out, p)
		}
	})
	sort.Strings(out)
	return out
}

func (ix *Index) walk(id nodeID, prefix string, visit func(p string, isDir bool)) {
	n := ix.arena[id]
	for name, child := range n.children {
		childPath := path.Join(prefix, name)
		visit(childPath, true)
		ix.walk(child, childPath, visit)
	}
	for name := range n.files {
		visit(path.Join(prefix, name), false)
	}
}
