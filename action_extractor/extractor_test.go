package action_extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/codeflow/operations"
)

func TestExtract_SingleCreateFile(t *testing.T) {
	output := `Here is the component you asked for:

@@CREATE_FILE src/components/Button.jsx
import React from 'react';

export default function Button() {
  return <button>Click</button>;
}
@@END

Let me know if you want styling too.`

	result := Extract(output)
	require.Len(t, result.Operations, 1)
	assert.Empty(t, result.Skipped)

	op := result.Operations[0]
	assert.Equal(t, operations.KindCreateFile, op.Kind)
	assert.Equal(t, "src/components/Button.jsx", op.RawPath)
	assert.Contains(t, string(op.Content), "export default function Button()")
	assert.Equal(t, 0, op.Seq)
}

func TestExtract_MultipleDirectivesKeepTextualOrder(t *testing.T) {
	output := `@@CREATE_DIR src
@@CREATE_FILE src/a.js
const a = 1;
@@END
@@DELETE_FILE old.js
@@RUN_COMMAND
npm install
@@END`

	result := Extract(output)
	require.Len(t, result.Operations, 4)
	assert.Empty(t, result.Skipped)

	assert.Equal(t, operations.KindCreateDirectory, result.Operations[0].Kind)
	assert.Equal(t, operations.KindCreateFile, result.Operations[1].Kind)
	assert.Equal(t, operations.KindDeleteFile, result.Operations[2].Kind)
	assert.Equal(t, operations.KindRunCommand, result.Operations[3].Kind)

	for i, op := range result.Operations {
		assert.Equal(t, i, op.Seq)
	}
	assert.Equal(t, "npm install", string(result.Operations[3].Content))
}

func TestExtract_TruncatedBodyConsumesRemainder(t *testing.T) {
	output := `@@CREATE_FILE src/app.js
const app = () => {
  console.log("generation was cut off here`

	result := Extract(output)
	require.Len(t, result.Operations, 1)
	assert.Equal(t, "src/app.js", result.Operations[0].RawPath)
	assert.Contains(t, string(result.Operations[0].Content), "cut off here")
}

func TestExtract_BodyEndsAtFirstCloser(t *testing.T) {
	// A marker-looking line inside a body belongs to the body; the directive
	// ends only at the first closer, and the consumed region is not rescanned.
	output := `@@CREATE_FILE docs/grammar.md
Directives look like this:
@@DELETE_FILE example.txt
@@END
@@CREATE_FILE second.txt
real content
@@END`

	result := Extract(output)
	require.Len(t, result.Operations, 2)

	first := result.Operations[0]
	assert.Equal(t, "docs/grammar.md", first.RawPath)
	assert.Contains(t, string(first.Content), "@@DELETE_FILE example.txt")

	second := result.Operations[1]
	assert.Equal(t, "second.txt", second.RawPath)
	assert.Equal(t, "real content", string(second.Content))
}

func TestExtract_MissingPathIsSkipped(t *testing.T) {
	output := `@@CREATE_FILE
orphan body
@@END
@@CREATE_FILE kept.txt
kept
@@END`

	result := Extract(output)
	require.Len(t, result.Operations, 1)
	assert.Equal(t, "kept.txt", result.Operations[0].RawPath)

	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "@@CREATE_FILE", result.Skipped[0].Marker)
	assert.Contains(t, result.Skipped[0].Reason, "missing path")
}

func TestExtract_RunCommandWithArgumentIsSkipped(t *testing.T) {
	output := `@@RUN_COMMAND npm install
@@END`

	result := Extract(output)
	assert.Empty(t, result.Operations)
	require.Len(t, result.Skipped, 1)
	assert.Equal(t, "@@RUN_COMMAND", result.Skipped[0].Marker)
}

func TestExtract_EmptyCommandBodyIsSkipped(t *testing.T) {
	output := `@@RUN_COMMAND

@@END`

	result := Extract(output)
	assert.Empty(t, result.Operations)
	require.Len(t, result.Skipped, 1)
	assert.Contains(t, result.Skipped[0].Reason, "empty command")
}

func TestExtract_StrayCloserAndProseAreIgnored(t *testing.T) {
	output := `Just an explanation, no operations.
@@END
Still no operations.`

	result := Extract(output)
	assert.Empty(t, result.Operations)
	assert.Empty(t, result.Skipped)
}
