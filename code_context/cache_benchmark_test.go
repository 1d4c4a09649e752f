package code_context

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/morler/codeflow/code_context/models"
	"github.com/morler/codeflow/utils"
)

func benchWorkspace(b *testing.B, fileCount int) string {
	b.Helper()
	root := b.TempDir()
	for i := 0; i < fileCount; i++ {
		dir := filepath.Join(root, fmt.Sprintf("pkg%d", i%8))
		if err := os.MkdirAll(dir, 0755); err != nil {
			b.Fatal(err)
		}
		content := fmt.Sprintf("package pkg%d\n\nfunc Handler%d() {}\n", i%8, i)
		if err := os.WriteFile(filepath.Join(dir, fmt.Sprintf("handler_%d.go", i)), []byte(content), 0644); err != nil {
			b.Fatal(err)
		}
	}
	return root
}

func BenchmarkCacheHitPath(b *testing.B) {
	root := benchWorkspace(b, 200)
	c := NewCache(Options{})

	if _, err := c.GetOrBuild(context.Background(), root, "handler"); err != nil {
		b.Fatal(err)
	}

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := c.GetOrBuild(context.Background(), root, "handler"); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkFingerprint(b *testing.B) {
	for _, size := range []int{50, 500} {
		b.Run(fmt.Sprintf("files_%d", size), func(b *testing.B) {
			root := benchWorkspace(b, size)
			ign := utils.LoadIgnoreMatcher(root)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := computeFingerprint(root, ign, DefaultScanLimits.MaxFiles); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}

func BenchmarkScorerRank(b *testing.B) {
	analysis := &models.WorkspaceAnalysis{Root: "/bench"}
	for i := 0; i < 500; i++ {
		analysis.Files = append(analysis.Files, models.FileData{
			RelativePath: fmt.Sprintf("pkg%d/handler_%d.go", i%8, i),
			Size:         int64(200 + i),
			Lines:        10 + i%40,
		})
	}

	b.Run("memoized", func(b *testing.B) {
		s := NewScorer(64)
		s.Rank(analysis, "handler payment")
		b.ResetTimer()
		for i := 0; i < b.N; i++ {
			s.Rank(analysis, "handler payment")
		}
	})

	b.Run("cold", func(b *testing.B) {
		for i := 0; i < b.N; i++ {
			s := NewScorer(64)
			s.Rank(analysis, "handler payment")
		}
	})
}
