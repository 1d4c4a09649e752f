package action_executor

import "sync"

// WorkspaceLocks serializes execution phases per workspace root. Two
// concurrent batches against the same workspace would race on parent
// directory creation and on index updates; batches against different
// workspaces proceed fully in parallel.
//
// This is an explicit, injectable object rather than package-level state so
// tests can isolate it and ownership stays with the orchestration layer.
type WorkspaceLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWorkspaceLocks creates an empty lock registry.
func NewWorkspaceLocks() *WorkspaceLocks {
	return &WorkspaceLocks{locks: make(map[string]*sync.Mutex)}
}

// Acquire locks the given workspace root, returning the unlock function.
func (w *WorkspaceLocks) Acquire(workspaceRoot string) func() {
	w.mu.Lock()
	lock, ok := w.locks[workspaceRoot]
	if !ok {
		lock = &sync.Mutex{}
		w.locks[workspaceRoot] = lock
	}
	w.mu.Unlock()

	lock.Lock()
	return lock.Unlock
}
