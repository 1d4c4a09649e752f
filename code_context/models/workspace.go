package models

import (
	"time"
)

// FileData describes one indexed workspace file. Content is not retained
// beyond the scan; only what ranking and summarization need.
type FileData struct {
	RelativePath string
	Size         int64
	Lines        int
	References   []string // workspace-relative paths this file's imports resolve to
}

// WorkspaceAnalysis is the product of one full workspace scan: everything
// the context cache stores per workspace root.
type WorkspaceAnalysis struct {
	Root              string
	Files             []FileData
	TreeText          string
	DependencySummary string
	Fingerprint       uint64
	BuiltAt           time.Time
}
