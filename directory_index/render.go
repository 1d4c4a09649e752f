package directory_index

import (
	"path"
	"sort"
	"strings"
)

// RenderTree returns an indented textual listing of the index, suitable for
// inclusion in a model prompt. maxEntries bounds the output; a truncation
// marker is appended when the limit is hit.
func (ix *Index) RenderTree(maxEntries int) string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var b strings.Builder
	entries := 0
	truncated := ix.renderNode(&b, rootID, 0, maxEntries, &entries)
	if truncated {
		b.WriteString("... (truncated)\n")
	}
	return b.String()
}

func (ix *Index) renderNode(b *strings.Builder, id nodeID, depth, maxEntries int, entries *int) bool {
	n := ix.arena[id]
	indent := strings.Repeat("  ", depth)

	dirs := make([]string, 0, len(n.children))
	for name := range n.children {
		dirs = append(dirs, name)
	}
	sort.Strings(dirs)

	files := make([]string, 0, len(n.files))
	for name := range n.files {
		files = append(files, name)
	}
	sort.Strings(files)

	for _, name := range dirs {
		if maxEntries > 0 && *entries >= maxEntries {
			return true
		}
		b.WriteString(indent)
		b.WriteString(name)
		b.WriteString("/\n")
		*entries++
		if ix.renderNode(b, n.children[name], depth+1, maxEntries, entries) {
			return true
		}
	}
	for _, name := range files {
		if maxEntries > 0 && *entries >= maxEntries {
			return true
		}
		b.WriteString(indent)
		b.WriteString(name)
		b.WriteString("\n")
		*entries++
	}
	return false
}

// Dirs returns every known directory path, sorted. Used when replaying an
// index into a fresh one after external changes.
func (ix *Index) Dirs() []string {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	var out []string
	ix.collectDirs(rootID, "", &out)
	sort.Strings(out)
	return out
}

func (ix *Index) collectDirs(id nodeID, prefix string, out *[]string) {
	for name, child := range ix.arena[id].children {
		childPath := path.Join(prefix, name)
		*out = append(*out, childPath)
		ix.collectDirs(child, childPath, out)
	}
}
