package code_context

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/morler/codeflow/clock"
	"github.com/morler/codeflow/code_context/contracts"
	"github.com/morler/codeflow/code_context/models"
	"github.com/morler/codeflow/directory_index"
	"github.com/morler/codeflow/logging"
	tokencontracts "github.com/morler/codeflow/token_management/contracts"
	"github.com/morler/codeflow/utils"
)

// Options configures a Cache. All knobs are injected: there is no hidden
// process-wide state, and a fake clock makes TTL behavior unit-testable.
type Options struct {
	TTL         time.Duration
	MaxEntries  int
	Limits      ScanLimits
	TokenBudget int
	Tokens      tokencontracts.ITokenManagement
	Clock       clock.Clock
}

type cacheEntry struct {
	analysis *models.WorkspaceAnalysis
	index    *directory_index.Index
	builtAt  time.Time
}

// Cache is the time-boxed, size-boxed store of workspace analyses, keyed by
// workspace root and guarded by a content fingerprint. Builds are
// single-flight per root: concurrent callers for the same workspace share
// one filesystem scan instead of duplicating it.
type Cache struct {
	mu      sync.RWMutex
	entries map[string]*cacheEntry
	order   []string

	group  singleflight.Group
	scorer *Scorer

	ttl         time.Duration
	maxEntries  int
	limits      ScanLimits
	tokenBudget int
	tokens      tokencontracts.ITokenManagement
	clock       clock.Clock

	statsMu sync.Mutex
	hits    int64
	misses  int64
	builds  int64
}

var _ contracts.IContextBuilder = (*Cache)(nil)

// NewCache creates a context cache with the given options. Zero values fall
// back to sane defaults (1h TTL, 16 workspaces, default scan limits).
func NewCache(opts Options) *Cache {
	if opts.TTL <= 0 {
		opts.TTL = time.Hour
	}
	if opts.MaxEntries <= 0 {
		opts.MaxEntries = 16
	}
	if opts.Limits.MaxFiles == 0 && opts.Limits.MaxFileSize == 0 {
		opts.Limits = DefaultScanLimits
	}
	if opts.Clock == nil {
		opts.Clock = &clock.RealClock{}
	}
	return &Cache{
		entries:     make(map[string]*cacheEntry),
		scorer:      NewScorer(0),
		ttl:         opts.TTL,
		maxEntries:  opts.MaxEntries,
		limits:      opts.Limits,
		tokenBudget: opts.TokenBudget,
		tokens:      opts.Tokens,
		clock:       opts.Clock,
	}
}

// GetOrBuild returns the bounded context text for a workspace and query. On
// a hit (fingerprint match, TTL not expired) the stored analysis is reused
// and only the query-dependent ranking is recomputed (itself memoized). On a
// miss the directory index, dependency summary and ranking are rebuilt from
// scratch under a per-root single-flight guard.
func (c *Cache) GetOrBuild(ctx context.Context, workspaceRoot string, query string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	fingerprint, err := computeFingerprint(workspaceRoot, utils.LoadIgnoreMatcher(workspaceRoot), c.limits.MaxFiles)
	if err != nil {
		return "", &BuildError{Root: workspaceRoot, Err: err}
	}

	if entry := c.lookup(workspaceRoot, fingerprint); entry != nil {
		c.recordHit()
		return c.compose(entry.analysis, query), nil
	}
	c.recordMiss()

	result, err, _ := c.group.Do(workspaceRoot, func() (interface{}, error) {
		// A concurrent caller may have completed the build while this one
		// waited on the flight group.
		if entry := c.lookup(workspaceRoot, fingerprint); entry != nil {
			return entry, nil
		}
		return c.build(workspaceRoot, fingerprint)
	})
	if err != nil {
		return "", err
	}

	entry := result.(*cacheEntry)
	return c.compose(entry.analysis, query), nil
}

// Index returns the directory index for a workspace, building the analysis
// first if needed. The action executor shares this index and updates it
// incrementally as it mutates the workspace.
func (c *Cache) Index(ctx context.Context, workspaceRoot string) (*directory_index.Index, error) {
	if _, err := c.GetOrBuild(ctx, workspaceRoot, ""); err != nil {
		return nil, err
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	if entry, ok := c.entries[workspaceRoot]; ok {
		return entry.index, nil
	}
	return nil, &BuildError{Root: workspaceRoot, Err: fmt.Errorf("index unavailable")}
}

func (c *Cache) lookup(root string, fingerprint uint64) *cacheEntry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[root]
	if !ok {
		return nil
	}
	if entry.analysis.Fingerprint != fingerprint {
		return nil
	}
	if c.clock.Now().Sub(entry.builtAt) > c.ttl {
		return nil
	}
	return entry
}

func (c *Cache) build(root string, fingerprint uint64) (*cacheEntry, error) {
	start := c.clock.Now()

	index := directory_index.NewIndex()
	analysis, err := scanWorkspace(root, c.limits, index)
	if err != nil {
		return nil, err
	}
	analysis.Fingerprint = fingerprint
	analysis.BuiltAt = start

	entry := &cacheEntry{analysis: analysis, index: index, builtAt: start}

	c.mu.Lock()
	if _, exists := c.entries[root]; !exists {
		if len(c.order) >= c.maxEntries {
			oldest := c.order[0]
			c.order = c.order[1:]
			delete(c.entries, oldest)
		}
		c.order = append(c.order, root)
	}
	c.entries[root] = entry
	c.mu.Unlock()

	c.statsMu.Lock()
	c.builds++
	c.statsMu.Unlock()

	logging.ForComponent("code_context").Info("workspace analyzed",
		"root", root,
		"files", len(analysis.Files),
		"duration", c.clock.Now().Sub(start).String())

	return entry, nil
}

// compose assembles the bounded context text: ranked listing first (the
// model reads top-down), then the tree, then the dependency summary, the
// whole thing truncated to the configured token budget.
func (c *Cache) compose(analysis *models.WorkspaceAnalysis, query string) string {
	ranked := c.scorer.Rank(analysis, query)

	var b strings.Builder
	b.WriteString("## Most relevant files\n\n")
	limit := 40
	if len(ranked) < limit {
		limit = len(ranked)
	}
	for _, f := range ranked[:limit] {
		fmt.Fprintf(&b, "- %s\n", f.RelativePath)
	}

	b.WriteString("\n## Project structure\n\n")
	b.WriteString(analysis.TreeText)

	if analysis.DependencySummary != "" {
		b.WriteString("\n## Internal dependencies\n\n")
		b.WriteString(analysis.DependencySummary)
	}

	text := b.String()
	if c.tokens != nil && c.tokenBudget > 0 {
		text = c.tokens.TruncateToBudget(text, c.tokenBudget)
	}
	return text
}

// Invalidate drops the entry for one workspace root.
func (c *Cache) Invalidate(workspaceRoot string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, workspaceRoot)
	for i, root := range c.order {
		if root == workspaceRoot {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Clear drops every cached analysis.
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]*cacheEntry)
	c.order = nil
}

// Stats reports cache effectiveness for the session.
func (c *Cache) Stats() map[string]interface{} {
	c.statsMu.Lock()
	hits, misses, builds := c.hits, c.misses, c.builds
	c.statsMu.Unlock()

	c.mu.RLock()
	entries := len(c.entries)
	c.mu.RUnlock()

	total := hits + misses
	hitRate := 0.0
	if total > 0 {
		hitRate = float64(hits) / float64(total) * 100
	}
	return map[string]interface{}{
		"entries":       entries,
		"hits":          hits,
		"misses":        misses,
		"builds":        builds,
		"hit_rate":      hitRate,
		"memoized_rank": c.scorer.MemoLen(),
	}
}

func (c *Cache) recordHit() {
	c.statsMu.Lock()
	c.hits++
	c.statsMu.Unlock()
}

func (c *Cache) recordMiss() {
	c.statsMu.Lock()
	c.misses++
	c.statsMu.Unlock()
}
