package path_validator

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestValidator(t *testing.T) (*Validator, string) {
	t.Helper()
	root := t.TempDir()
	v, err := NewValidator(root, 0)
	require.NoError(t, err)
	return v, v.Root()
}

func TestValidator_AcceptsRelativePaths(t *testing.T) {
	v, root := newTestValidator(t)

	resolved, err := v.Validate("src/components/Button.jsx")
	require.NoError(t, err)
	assert.Equal(t, "src/components/Button.jsx", resolved.Rel())
	assert.Equal(t, filepath.Join(root, "src", "components", "Button.jsx"), resolved.Abs())
}

func TestValidator_NormalizesDotSegments(t *testing.T) {
	v, _ := newTestValidator(t)

	resolved, err := v.Validate("./src/../src/app.go")
	require.NoError(t, err)
	assert.Equal(t, "src/app.go", resolved.Rel())
}

func TestValidator_RejectsTraversal(t *testing.T) {
	v, _ := newTestValidator(t)

	for _, raw := range []string{
		"../outside.txt",
		"../../etc/passwd",
		"src/../../outside.txt",
		"..",
	} {
		_, err := v.Validate(raw)
		require.Error(t, err, "path %q must be rejected", raw)

		var secErr *SecurityError
		require.True(t, errors.As(err, &secErr))
		assert.Equal(t, ViolationTraversal, secErr.Violation)
		assert.Equal(t, raw, secErr.RawPath)
	}
}

func TestValidator_RejectsNullBytes(t *testing.T) {
	v, _ := newTestValidator(t)

	_, err := v.Validate("src/app\x00.go")
	require.Error(t, err)

	var secErr *SecurityError
	require.True(t, errors.As(err, &secErr))
	assert.Equal(t, ViolationNullByte, secErr.Violation)
}

func TestValidator_RejectsAbsoluteEscape(t *testing.T) {
	v, _ := newTestValidator(t)

	_, err := v.Validate("/etc/passwd")
	require.Error(t, err)

	var secErr *SecurityError
	require.True(t, errors.As(err, &secErr))
	assert.Equal(t, ViolationAbsoluteEscape, secErr.Violation)
}

func TestValidator_AcceptsAbsolutePathInsideRoot(t *testing.T) {
	v, root := newTestValidator(t)

	resolved, err := v.Validate(filepath.Join(root, "docs", "readme.md"))
	require.NoError(t, err)
	assert.Equal(t, "docs/readme.md", resolved.Rel())
}

func TestValidator_RejectsOverlongPaths(t *testing.T) {
	root := t.TempDir()
	v, err := NewValidator(root, len(root)+16)
	require.NoError(t, err)

	_, err = v.Validate("a/very/deep/path/that/will/not/fit/in/the/limit.txt")
	require.Error(t, err)

	var secErr *SecurityError
	require.True(t, errors.As(err, &secErr))
	assert.Equal(t, ViolationTooLong, secErr.Violation)
}

func TestValidator_RejectsSymlinkEscape(t *testing.T) {
	v, root := newTestValidator(t)
	outside := t.TempDir()

	// A symlink inside the root pointing outside it must not be writable
	// through, even for targets that do not exist yet.
	require.NoError(t, os.Symlink(outside, filepath.Join(root, "link")))

	_, err := v.Validate("link/escape.txt")
	require.Error(t, err)

	var secErr *SecurityError
	require.True(t, errors.As(err, &secErr))
	assert.Equal(t, ViolationSymlinkEscape, secErr.Violation)
}

func TestValidator_AllowsSymlinkInsideRoot(t *testing.T) {
	v, root := newTestValidator(t)

	require.NoError(t, os.MkdirAll(filepath.Join(root, "real"), 0755))
	require.NoError(t, os.Symlink(filepath.Join(root, "real"), filepath.Join(root, "alias")))

	resolved, err := v.Validate("alias/file.txt")
	require.NoError(t, err)
	assert.Equal(t, "alias/file.txt", resolved.Rel())
}
