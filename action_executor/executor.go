package action_executor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"time"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/morler/codeflow/directory_index"
	"github.com/morler/codeflow/logging"
	"github.com/morler/codeflow/operations"
	"github.com/morler/codeflow/path_validator"
	"github.com/morler/codeflow/utils"
)

// opState is the per-operation state machine: Pending -> Validating ->
// {Executing -> Succeeded} | Rejected | Failed, with Cancelled for
// operations never started. Every operation ends in exactly one terminal
// state; no state is ever revisited.
type opState int

const (
	statePending opState = iota
	stateValidating
	stateExecuting
	stateSucceeded
	stateRejected
	stateFailed
	stateCancelled
)

var stateNames = map[opState]string{
	statePending:    "Pending",
	stateValidating: "Validating",
	stateExecuting:  "Executing",
	stateSucceeded:  "Succeeded",
	stateRejected:   "Rejected",
	stateFailed:     "Failed",
	stateCancelled:  "Cancelled",
}

func (s opState) String() string { return stateNames[s] }

// Options configures an Executor.
type Options struct {
	OpTimeout  time.Duration
	RetryDelay time.Duration
	Logger     *slog.Logger
}

// Executor applies an ordered batch of operations to one workspace. Every
// mutation goes through the path validator first; the directory index is
// updated immediately after each successful mutation so later operations in
// the batch observe earlier ones.
type Executor struct {
	root      string
	validator *path_validator.Validator
	index     *directory_index.Index
	locks     *WorkspaceLocks
	commands  *utils.CommandExecutor
	logger    *slog.Logger

	opTimeout  time.Duration
	retryDelay time.Duration
}

// NewExecutor binds an executor to a workspace. The index is shared with the
// context cache; the lock registry is shared across all executors in the
// process.
func NewExecutor(validator *path_validator.Validator, index *directory_index.Index, locks *WorkspaceLocks, opts Options) *Executor {
	if opts.OpTimeout <= 0 {
		opts.OpTimeout = 30 * time.Second
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 100 * time.Millisecond
	}
	if opts.Logger == nil {
		opts.Logger = logging.ForComponent("action_executor")
	}
	root := validator.Root()
	return &Executor{
		root:       root,
		validator:  validator,
		index:      index,
		locks:      locks,
		commands:   utils.NewCommandExecutor(root),
		logger:     opts.Logger.With("workspace", root),
		opTimeout:  opts.OpTimeout,
		retryDelay: opts.RetryDelay,
	}
}

// Execute walks the ordered batch sequentially. Each operation is
// independent: validation and I/O failures are terminal for that operation
// only, never for the batch. Once the request context is cancelled,
// operations not yet started are marked Cancelled; an operation already in
// flight is allowed to complete so nothing is ever left half-written.
func (e *Executor) Execute(ctx context.Context, ops []*operations.PendingOperation) *operations.ExecutionReport {
	unlock := e.locks.Acquire(e.root)
	defer unlock()

	results := make([]operations.OperationResult, 0, len(ops))
	for _, op := range ops {
		results = append(results, e.executeOne(ctx, op)...)
	}
	return operations.NewExecutionReport(results)
}

// executeOne returns the result for op, preceded by one CreateDirectory
// result per intermediate directory a nested create had to materialize.
func (e *Executor) executeOne(ctx context.Context, op *operations.PendingOperation) []operations.OperationResult {
	result := operations.OperationResult{Kind: op.Kind, Path: op.RawPath}
	state := statePending
	defer func() {
		e.logger.Debug("operation finished", "kind", op.Kind.String(), "path", result.Path, "state", state.String())
	}()

	if ctx.Err() != nil {
		state = stateCancelled
		result.Outcome = operations.OutcomeCancelled
		return []operations.OperationResult{result}
	}

	// Validation phase. RunCommand carries no path; its denylist check
	// happens inside the command executor.
	state = stateValidating
	var resolved path_validator.ResolvedPath
	if op.Kind.TargetsPath() {
		var err error
		resolved, err = e.validator.Validate(op.RawPath)
		if err != nil {
			state = stateRejected
			result.Outcome = operations.OutcomeRejected
			result.Error = err.Error()
			var secErr *path_validator.SecurityError
			if errors.As(err, &secErr) {
				e.logger.Warn("operation rejected",
					"kind", op.Kind.String(),
					"path", op.RawPath,
					"violation", secErr.Violation.String())
			}
			return []operations.OperationResult{result}
		}
		result.Path = resolved.Rel()
	}

	// ModifyFile on a target that exists neither in the index nor on disk
	// is downgraded to CreateFile: the model mislabels operations often
	// enough that rejecting would throw away good output.
	if op.Kind == operations.KindModifyFile && !e.targetExists(resolved) {
		op.Kind = operations.KindCreateFile
		result.Kind = operations.KindCreateFile
		result.Downgraded = true
	}

	// A create against a nested path surfaces each absent intermediate
	// directory as its own CreateDirectory entry, shallowest first, so the
	// report shows everything the operation changed on disk.
	var results []operations.OperationResult
	if op.Kind == operations.KindCreateFile || op.Kind == operations.KindCreateDirectory {
		parents, parentErr := e.createMissingParents(resolved)
		results = append(results, parents...)
		if parentErr != nil {
			state = stateFailed
			result.Outcome = operations.OutcomeFailed
			result.Error = parentErr.Error()
			e.logger.Error("operation failed", "kind", op.Kind.String(), "path", result.Path, "error", parentErr.Error())
			return append(results, result)
		}
	}

	state = stateExecuting
	err := e.runWithTimeout(ctx, op, resolved)
	if err != nil && shouldRetry(err, op.Kind) {
		// One retry with a short delay covers transient lock contention.
		time.Sleep(e.retryDelay)
		err = e.runWithTimeout(ctx, op, resolved)
	}
	if err != nil {
		state = stateFailed
		result.Outcome = operations.OutcomeFailed
		result.Error = err.Error()
		e.logger.Error("operation failed", "kind", op.Kind.String(), "path", result.Path, "error", err.Error())
		return append(results, result)
	}

	e.updateIndex(op, resolved)
	state = stateSucceeded
	result.Outcome = operations.OutcomeSucceeded
	return append(results, result)
}

// createMissingParents makes each ancestor directory of a create target that
// exists neither in the index nor on disk, one os.Mkdir per level. Every
// directory created gets its own succeeded CreateDirectory result.
func (e *Executor) createMissingParents(resolved path_validator.ResolvedPath) ([]operations.OperationResult, error) {
	var missing []string
	for rel := path.Dir(resolved.Rel()); rel != "." && rel != "/"; rel = path.Dir(rel) {
		if e.dirExists(rel) {
			break
		}
		missing = append(missing, rel)
	}

	var results []operations.OperationResult
	for i := len(missing) - 1; i >= 0; i-- {
		rel := missing[i]
		abs := filepath.Join(e.root, filepath.FromSlash(rel))
		if err := os.Mkdir(abs, 0755); err != nil && !os.IsExist(err) {
			return results, fmt.Errorf("failed to create parent directory %s: %w", rel, err)
		}
		if e.index != nil {
			e.index.InsertDir(rel)
		}
		results = append(results, operations.OperationResult{
			Kind:    operations.KindCreateDirectory,
			Path:    rel,
			Outcome: operations.OutcomeSucceeded,
		})
	}
	return results, nil
}

func (e *Executor) dirExists(rel string) bool {
	if e.index != nil && e.index.IsDir(rel) {
		return true
	}
	info, err := os.Stat(filepath.Join(e.root, filepath.FromSlash(rel)))
	return err == nil && info.IsDir()
}

// errOpTimeout marks an attempt whose goroutine may still be running.
var errOpTimeout = errors.New("operation timed out")

// runWithTimeout bounds one filesystem operation. A stuck I/O call must not
// block the whole batch: on timeout the operation is marked failed and the
// goroutine finishes the write in the background rather than abandoning it
// halfway.
func (e *Executor) runWithTimeout(ctx context.Context, op *operations.PendingOperation, resolved path_validator.ResolvedPath) error {
	done := make(chan error, 1)
	go func() {
		done <- e.run(ctx, op, resolved)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(e.opTimeout):
		return fmt.Errorf("%w after %s", errOpTimeout, e.opTimeout)
	}
}

func (e *Executor) run(ctx context.Context, op *operations.PendingOperation, resolved path_validator.ResolvedPath) error {
	switch op.Kind {
	case operations.KindCreateDirectory:
		return os.MkdirAll(resolved.Abs(), 0755)

	case operations.KindCreateFile:
		if err := os.MkdirAll(filepath.Dir(resolved.Abs()), 0755); err != nil {
			return fmt.Errorf("failed to create parent directory: %w", err)
		}
		return os.WriteFile(resolved.Abs(), op.Content, 0644)

	case operations.KindModifyFile:
		old, err := os.ReadFile(resolved.Abs())
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to read existing file: %w", err)
		}
		if err := os.WriteFile(resolved.Abs(), op.Content, 0644); err != nil {
			return err
		}
		e.logModification(resolved.Rel(), string(old), string(op.Content))
		return nil

	case operations.KindDeleteFile:
		err := os.Remove(resolved.Abs())
		if err != nil && !os.IsNotExist(err) {
			return err
		}
		return nil // delete is idempotent

	case operations.KindDeleteDirectory:
		return os.RemoveAll(resolved.Abs())

	case operations.KindRunCommand:
		cmdCtx, cancel := context.WithTimeout(ctx, e.opTimeout)
		defer cancel()
		output, err := e.commands.ExecuteCommand(cmdCtx, string(op.Content))
		if err != nil {
			return err
		}
		e.logger.Info("command executed", "output_bytes", len(output))
		return nil

	default:
		return fmt.Errorf("unknown operation kind: %s", op.Kind)
	}
}

// logModification records how much of the file actually changed, using a
// character-level diff.
func (e *Executor) logModification(relPath, before, after string) {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(before, after, false)
	inserted, deleted := 0, 0
	for _, d := range diffs {
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			inserted += len(d.Text)
		case diffmatchpatch.DiffDelete:
			deleted += len(d.Text)
		}
	}
	e.logger.Info("file modified", "path", relPath, "bytes_added", inserted, "bytes_removed", deleted)
}

func (e *Executor) targetExists(resolved path_validator.ResolvedPath) bool {
	if e.index != nil && e.index.Exists(resolved.Rel()) {
		return true
	}
	_, err := os.Stat(resolved.Abs())
	return err == nil
}

// updateIndex mirrors a successful mutation into the directory index so the
// rest of the batch (and subsequent context builds this session) see it.
func (e *Executor) updateIndex(op *operations.PendingOperation, resolved path_validator.ResolvedPath) {
	if e.index == nil || !op.Kind.TargetsPath() {
		return
	}
	switch op.Kind {
	case operations.KindCreateFile, operations.KindModifyFile:
		e.index.InsertFile(resolved.Rel())
	case operations.KindCreateDirectory:
		e.index.InsertDir(resolved.Rel())
	case operations.KindDeleteFile:
		e.index.RemoveFile(resolved.Rel())
	case operations.KindDeleteDirectory:
		e.index.RemoveDir(resolved.Rel())
	}
}

// shouldRetry reports whether a failed attempt gets the single retry.
// Commands are not retried: rerunning a partially applied shell command is
// riskier than surfacing the failure. A timed-out attempt is not retried
// either: its goroutine may still be writing, and a second attempt would
// race it on the same path.
func shouldRetry(err error, kind operations.OperationKind) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, errOpTimeout) {
		return false
	}
	return kind != operations.KindRunCommand
}
