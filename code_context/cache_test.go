package code_context

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/morler/codeflow/clock"
	"github.com/morler/codeflow/token_management"
)

func writeWorkspace(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, content := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0755))
		require.NoError(t, os.WriteFile(full, []byte(content), 0644))
	}
	return root
}

func testWorkspace(t *testing.T) string {
	return writeWorkspace(t, map[string]string{
		"main.go":          "package main\n",
		"src/app.js":       "import Button from './button.js';\n",
		"src/button.js":    "export default function Button() {}\n",
		"docs/overview.md": "# Overview\n",
	})
}

func builds(c *Cache) int64 {
	return c.Stats()["builds"].(int64)
}

func TestCache_SecondLookupIsAHit(t *testing.T) {
	root := testWorkspace(t)
	c := NewCache(Options{})

	first, err := c.GetOrBuild(context.Background(), root, "button")
	require.NoError(t, err)
	assert.Contains(t, first, "## Most relevant files")
	assert.Contains(t, first, "## Project structure")
	assert.Contains(t, first, "button.js")

	second, err := c.GetOrBuild(context.Background(), root, "button")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats["builds"])
	assert.Equal(t, int64(1), stats["hits"])
	assert.Equal(t, int64(1), stats["misses"])
}

func TestCache_TTLExpiryForcesRebuild(t *testing.T) {
	root := testWorkspace(t)
	fake := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	c := NewCache(Options{TTL: time.Hour, Clock: fake})

	_, err := c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), builds(c))

	// Within the TTL the entry is served as-is.
	fake.Advance(59 * time.Minute)
	_, err = c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, int64(1), builds(c))

	// Past the TTL the same fingerprint no longer counts as fresh.
	fake.Advance(2 * time.Minute)
	_, err = c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), builds(c))
}

func TestCache_WorkspaceChangeForcesRebuild(t *testing.T) {
	root := testWorkspace(t)
	c := NewCache(Options{})

	_, err := c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	require.Equal(t, int64(1), builds(c))

	// A new file changes the fingerprint even though the TTL has not expired.
	require.NoError(t, os.WriteFile(filepath.Join(root, "extra.txt"), []byte("x"), 0644))

	_, err = c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), builds(c))
}

func TestCache_ConcurrentCallersShareOneBuild(t *testing.T) {
	root := testWorkspace(t)
	c := NewCache(Options{})

	var wg sync.WaitGroup
	errs := make([]error, 16)
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, errs[n] = c.GetOrBuild(context.Background(), root, "app")
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	assert.Equal(t, int64(1), builds(c))
}

func TestCache_InvalidateDropsOneWorkspace(t *testing.T) {
	root := testWorkspace(t)
	c := NewCache(Options{})

	_, err := c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)

	c.Invalidate(root)
	assert.Equal(t, 0, c.Stats()["entries"])

	_, err = c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	assert.Equal(t, int64(2), builds(c))
}

func TestCache_CancelledContextShortCircuits(t *testing.T) {
	root := testWorkspace(t)
	c := NewCache(Options{})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.GetOrBuild(ctx, root, "")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int64(0), builds(c))
}

func TestCache_MissingWorkspaceReturnsBuildError(t *testing.T) {
	c := NewCache(Options{})

	_, err := c.GetOrBuild(context.Background(), filepath.Join(t.TempDir(), "does-not-exist"), "")
	require.Error(t, err)

	var buildErr *BuildError
	assert.ErrorAs(t, err, &buildErr)
}

func TestCache_TokenBudgetBoundsContext(t *testing.T) {
	files := make(map[string]string)
	files["main.go"] = "package main\n"
	for i := 0; i < 60; i++ {
		files[filepath.Join("pkg", "deep", "module", "file_with_a_long_name_"+string(rune('a'+i%26))+".go")] = "package module\n"
	}
	root := writeWorkspace(t, files)

	tokens := token_management.NewTokenManager()
	c := NewCache(Options{TokenBudget: 50, Tokens: tokens})

	text, err := c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	assert.LessOrEqual(t, tokens.EstimateTokens(text), 50+16)
	assert.Contains(t, text, "truncated to context budget")
}

func TestCache_IndexReflectsWorkspace(t *testing.T) {
	root := testWorkspace(t)
	c := NewCache(Options{})

	ix, err := c.Index(context.Background(), root)
	require.NoError(t, err)
	require.NotNil(t, ix)
	assert.True(t, ix.Exists("src/app.js"))
	assert.True(t, ix.IsDir("docs"))
}

func TestCache_DependencySummaryResolvesImports(t *testing.T) {
	root := testWorkspace(t)
	c := NewCache(Options{})

	text, err := c.GetOrBuild(context.Background(), root, "")
	require.NoError(t, err)
	assert.Contains(t, text, "src/app.js -> src/button.js")
}
