package code_context

import (
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/zeebo/xxh3"

	"github.com/morler/codeflow/code_context/models"
)

// Score weights. Relevance is a weighted sum of independent signals, never a
// single match: name hits dominate, structural signals (directory proximity,
// dependency edges) fill in, and conventionally important files get a fixed
// floor so an empty query still yields a useful listing.
const (
	weightNameMatch = 10
	weightProximity = 4
	weightDepEdge   = 4
	weightImportant = 2
)

// importantBasenames are entry points and manifests that deserve a fixed
// relevance bonus regardless of the query.
var importantBasenames = map[string]struct{}{
	"main.go":          {},
	"go.mod":           {},
	"package.json":     {},
	"cargo.toml":       {},
	"pyproject.toml":   {},
	"requirements.txt": {},
	"makefile":         {},
	"dockerfile":       {},
	"readme.md":        {},
	"index.js":         {},
	"index.ts":         {},
	"main.py":          {},
	"app.py":           {},
	"pom.xml":          {},
}

// ScoredFile pairs a file with its computed relevance.
type ScoredFile struct {
	RelativePath string
	Score        int
}

type memoKey struct {
	fingerprint uint64
	queryHash   uint64
}

// Scorer ranks workspace files against a query. Rankings are memoized per
// (file-set fingerprint, query) with oldest-entry eviction, since the same
// query against an unchanged file set recurs across a conversation.
type Scorer struct {
	mu         sync.Mutex
	memo       map[memoKey][]ScoredFile
	order      []memoKey
	maxEntries int
}

// NewScorer creates a scorer with a bounded memo. maxEntries <= 0 defaults
// to 64.
func NewScorer(maxEntries int) *Scorer {
	if maxEntries <= 0 {
		maxEntries = 64
	}
	return &Scorer{
		memo:       make(map[memoKey][]ScoredFile),
		maxEntries: maxEntries,
	}
}

// Rank orders the analysis's files by descending relevance to the query.
// Ties break on shorter path first, then lexicographically, so output is
// deterministic.
func (s *Scorer) Rank(analysis *models.WorkspaceAnalysis, query string) []ScoredFile {
	key := memoKey{
		fingerprint: analysis.Fingerprint,
		queryHash:   xxh3.HashString(strings.ToLower(query)),
	}

	s.mu.Lock()
	if cached, ok := s.memo[key]; ok {
		s.mu.Unlock()
		return cached
	}
	s.mu.Unlock()

	ranked := rank(analysis, query)

	s.mu.Lock()
	if _, exists := s.memo[key]; !exists {
		if len(s.order) >= s.maxEntries {
			oldest := s.order[0]
			s.order = s.order[1:]
			delete(s.memo, oldest)
		}
		s.memo[key] = ranked
		s.order = append(s.order, key)
	}
	s.mu.Unlock()

	return ranked
}

// MemoLen returns the number of memoized rankings.
func (s *Scorer) MemoLen() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.memo)
}

func rank(analysis *models.WorkspaceAnalysis, query string) []ScoredFile {
	terms := queryTerms(query)

	scores := make(map[string]int, len(analysis.Files))
	relevant := make(map[string]struct{})

	// Pass 1: direct signals. Name matches seed the relevant set.
	for _, f := range analysis.Files {
		score := 0
		lower := strings.ToLower(f.RelativePath)
		for _, term := range terms {
			if strings.Contains(lower, term) {
				score += weightNameMatch
			}
		}
		if score > 0 {
			relevant[f.RelativePath] = struct{}{}
		}
		if _, ok := importantBasenames[strings.ToLower(path.Base(f.RelativePath))]; ok {
			score += weightImportant
		}
		scores[f.RelativePath] = score
	}

	// Pass 2: structural signals relative to the seeded set.
	relevantDirs := make(map[string]struct{}, len(relevant))
	for p := range relevant {
		relevantDirs[path.Dir(p)] = struct{}{}
	}
	for _, f := range analysis.Files {
		if _, seeded := relevant[f.RelativePath]; !seeded {
			if _, near := relevantDirs[path.Dir(f.RelativePath)]; near {
				scores[f.RelativePath] += weightProximity
			}
		}
		for _, ref := range f.References {
			_, refRelevant := relevant[ref]
			_, selfRelevant := relevant[f.RelativePath]
			if refRelevant && !selfRelevant {
				scores[f.RelativePath] += weightDepEdge
			}
			if selfRelevant && !refRelevant {
				scores[ref] += weightDepEdge
			}
		}
	}

	ranked := make([]ScoredFile, 0, len(analysis.Files))
	for _, f := range analysis.Files {
		ranked = append(ranked, ScoredFile{RelativePath: f.RelativePath, Score: scores[f.RelativePath]})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if len(a.RelativePath) != len(b.RelativePath) {
			return len(a.RelativePath) < len(b.RelativePath)
		}
		return a.RelativePath < b.RelativePath
	})
	return ranked
}

func queryTerms(query string) []string {
	fields := strings.Fields(strings.ToLower(query))
	terms := fields[:0]
	for _, f := range fields {
		// Short words ("a", "to") match everything and add only noise.
		if len(f) >= 3 {
			terms = append(terms, f)
		}
	}
	return terms
}
