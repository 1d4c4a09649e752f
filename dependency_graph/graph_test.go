package dependency_graph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/codeflow/operations"
)

func op(kind operations.OperationKind, rawPath string, content string, seq int) *operations.PendingOperation {
	return &operations.PendingOperation{Kind: kind, RawPath: rawPath, Content: []byte(content), Seq: seq}
}

func paths(ops []*operations.PendingOperation) []string {
	out := make([]string, 0, len(ops))
	for _, o := range ops {
		out = append(out, o.RawPath)
	}
	return out
}

func indexOf(ops []*operations.PendingOperation, rawPath string) int {
	for i, o := range ops {
		if o.RawPath == rawPath {
			return i
		}
	}
	return -1
}

func TestOrder_ReferencedFileExecutesFirst(t *testing.T) {
	// app.js imports button.js, so button.js must be created first even
	// though app.js appears earlier in the model output.
	ops := []*operations.PendingOperation{
		op(operations.KindCreateFile, "src/app.js", "import Button from './button.js';\n", 0),
		op(operations.KindCreateFile, "src/button.js", "export default function Button() {}\n", 1),
	}

	ordered := Order(ops)
	require.Len(t, ordered, 2)
	assert.Less(t, indexOf(ordered, "src/button.js"), indexOf(ordered, "src/app.js"))

	// The dependency is recorded on the importing operation.
	assert.Equal(t, []string{"src/button.js"}, ops[0].Dependencies)
}

func TestOrder_CssImportResolvesRelative(t *testing.T) {
	ops := []*operations.PendingOperation{
		op(operations.KindCreateFile, "styles/app.css", "@import \"button.css\";\nbody { margin: 0; }\n", 0),
		op(operations.KindCreateFile, "styles/button.css", ".btn { color: red; }\n", 1),
	}

	ordered := Order(ops)
	assert.Less(t, indexOf(ordered, "styles/button.css"), indexOf(ordered, "styles/app.css"))
}

func TestOrder_DirectoryCreationIsHoisted(t *testing.T) {
	ops := []*operations.PendingOperation{
		op(operations.KindCreateFile, "src/components/Button.jsx", "export default 1;\n", 0),
		op(operations.KindCreateDirectory, "src/components", "", 1),
		op(operations.KindCreateDirectory, "src", "", 2),
	}

	ordered := Order(ops)
	require.Len(t, ordered, 3)
	assert.Less(t, indexOf(ordered, "src"), indexOf(ordered, "src/components/Button.jsx"))
	assert.Less(t, indexOf(ordered, "src/components"), indexOf(ordered, "src/components/Button.jsx"))
}

func TestOrder_IndependentOperationsKeepTextualOrder(t *testing.T) {
	ops := []*operations.PendingOperation{
		op(operations.KindCreateFile, "c.txt", "three", 0),
		op(operations.KindCreateFile, "a.txt", "one", 1),
		op(operations.KindCreateFile, "b.txt", "two", 2),
	}

	ordered := Order(ops)
	assert.Equal(t, []string{"c.txt", "a.txt", "b.txt"}, paths(ordered))
}

func TestOrder_CycleDegradesDeterministically(t *testing.T) {
	// Mutual imports form a cycle; ordering must not fail and must break the
	// cycle at the earliest textual appearance, identically on every run.
	mkOps := func() []*operations.PendingOperation {
		return []*operations.PendingOperation{
			op(operations.KindCreateFile, "src/a.js", "import b from './b.js';\n", 0),
			op(operations.KindCreateFile, "src/b.js", "import a from './a.js';\n", 1),
		}
	}

	first := paths(Order(mkOps()))
	require.Len(t, first, 2)
	assert.Equal(t, "src/a.js", first[0])

	for i := 0; i < 20; i++ {
		assert.Equal(t, first, paths(Order(mkOps())))
	}
}

func TestOrder_CommandsRunAfterFilesystemOperations(t *testing.T) {
	ops := []*operations.PendingOperation{
		op(operations.KindRunCommand, "", "npm install", 0),
		op(operations.KindCreateFile, "package.json", "{}", 1),
		op(operations.KindCreateFile, "index.js", "console.log(1);\n", 2),
	}

	ordered := Order(ops)
	require.Len(t, ordered, 3)
	assert.Equal(t, operations.KindRunCommand, ordered[2].Kind)
}

func TestOrder_DeleteTargetsAreNotDependencies(t *testing.T) {
	// Referencing a path the batch deletes must not order the delete first.
	ops := []*operations.PendingOperation{
		op(operations.KindCreateFile, "src/app.js", "import legacy from './legacy.js';\n", 0),
		op(operations.KindDeleteFile, "src/legacy.js", "", 1),
	}

	ordered := Order(ops)
	assert.Equal(t, []string{"src/app.js", "src/legacy.js"}, paths(ordered))
	assert.Empty(t, ops[0].Dependencies)
}

func TestScanReferences_RegexFallback(t *testing.T) {
	refs := ScanReferences("main.c", []byte("#include \"util.h\"\n#include <stdio.h>\n"))
	assert.Equal(t, []string{"util.h"}, refs)
}

func TestBuild_UnresolvableReferencesAreIgnored(t *testing.T) {
	ops := []*operations.PendingOperation{
		op(operations.KindCreateFile, "src/app.js", "import React from 'react';\n", 0),
	}

	Order(ops)
	assert.Empty(t, ops[0].Dependencies)
}
