package path_validator

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Violation classifies why a candidate path was rejected. Callers log the
// violation so attack patterns in model output stay visible.
type Violation int

const (
	ViolationTraversal Violation = iota
	ViolationNullByte
	ViolationSymlinkEscape
	ViolationTooLong
	ViolationAbsoluteEscape
)

var violationNames = map[Violation]string{
	ViolationTraversal:      "traversal",
	ViolationNullByte:       "null-byte",
	ViolationSymlinkEscape:  "symlink-escape",
	ViolationTooLong:        "too-long",
	ViolationAbsoluteEscape: "absolute-escape",
}

func (v Violation) String() string {
	if name, ok := violationNames[v]; ok {
		return name
	}
	return fmt.Sprintf("Violation(%d)", int(v))
}

// SecurityError is returned for any path that cannot be proven to stay inside
// the workspace root. Never a bare boolean: callers need the specific
// violation for logging and reporting.
type SecurityError struct {
	RawPath   string
	Violation Violation
	Detail    string
}

func (e *SecurityError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("path security violation (%s): %q: %s", e.Violation, e.RawPath, e.Detail)
	}
	return fmt.Sprintf("path security violation (%s): %q", e.Violation, e.RawPath)
}

// ResolvedPath is the validated, workspace-relative, OS-normalized form of a
// raw model-emitted path. Construction goes through Validator.Validate only,
// so holding one proves containment in the workspace root.
type ResolvedPath struct {
	rel string
	abs string
}

// Rel returns the slash-separated workspace-relative path.
func (p ResolvedPath) Rel() string { return p.rel }

// Abs returns the absolute on-disk path.
func (p ResolvedPath) Abs() string { return p.abs }

func (p ResolvedPath) String() string { return p.rel }

// Validator checks candidate paths against a single workspace root. It is
// a pure checker: Validate never touches the filesystem beyond stat and
// symlink resolution.
type Validator struct {
	root          string // absolute, symlink-resolved
	maxPathLength int
}

// DefaultMaxPathLength bounds resolved path lengths when the configuration
// does not say otherwise.
const DefaultMaxPathLength = 4096

// NewValidator resolves the workspace root (symlinks included) and returns a
// validator bound to it. maxPathLength <= 0 falls back to the default.
func NewValidator(workspaceRoot string, maxPathLength int) (*Validator, error) {
	absRoot, err := filepath.Abs(workspaceRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root %q: %w", workspaceRoot, err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve workspace root symlinks %q: %w", workspaceRoot, err)
	}
	if maxPathLength <= 0 {
		maxPathLength = DefaultMaxPathLength
	}
	return &Validator{root: resolvedRoot, maxPathLength: maxPathLength}, nil
}

// Root returns the absolute, symlink-resolved workspace root.
func (v *Validator) Root() string { return v.root }

// Validate normalizes rawPath and proves it stays inside the workspace root.
// The checks, in order: null bytes, resolved length, lexical containment
// after cleaning, and symlink containment for whatever prefix of the path
// already exists on disk. A symlink inside the root may still point outside
// it, so lexical containment alone is never enough.
func (v *Validator) Validate(rawPath string) (ResolvedPath, error) {
	if strings.ContainsRune(rawPath, 0) {
		return ResolvedPath{}, &SecurityError{RawPath: rawPath, Violation: ViolationNullByte}
	}

	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimSpace(rawPath)))

	var abs string
	if filepath.IsAbs(cleaned) {
		// Absolute paths are allowed only when they already point under the
		// root; anything else is an escape attempt.
		abs = cleaned
	} else {
		abs = filepath.Join(v.root, cleaned)
	}

	if len(abs) > v.maxPathLength {
		return ResolvedPath{}, &SecurityError{
			RawPath:   rawPath,
			Violation: ViolationTooLong,
			Detail:    fmt.Sprintf("resolved length %d exceeds maximum %d", len(abs), v.maxPathLength),
		}
	}

	rel, err := filepath.Rel(v.root, abs)
	if err != nil || escapes(rel) {
		violation := ViolationTraversal
		if filepath.IsAbs(cleaned) {
			violation = ViolationAbsoluteEscape
		}
		return ResolvedPath{}, &SecurityError{RawPath: rawPath, Violation: violation}
	}

	// Resolve symlinks on the deepest existing prefix and re-check. The
	// target itself may not exist yet (create operations), but a symlinked
	// ancestor can still redirect the write outside the root.
	resolved, err := resolveExistingPrefix(abs)
	if err != nil {
		return ResolvedPath{}, &SecurityError{
			RawPath:   rawPath,
			Violation: ViolationSymlinkEscape,
			Detail:    err.Error(),
		}
	}
	resolvedRel, err := filepath.Rel(v.root, resolved)
	if err != nil || escapes(resolvedRel) {
		return ResolvedPath{}, &SecurityError{
			RawPath:   rawPath,
			Violation: ViolationSymlinkEscape,
			Detail:    fmt.Sprintf("resolves to %s", resolved),
		}
	}

	return ResolvedPath{rel: filepath.ToSlash(rel), abs: abs}, nil
}

// resolveExistingPrefix walks up from path until it finds a component that
// exists, resolves that prefix through filepath.EvalSymlinks, and rejoins the
// not-yet-existing remainder.
func resolveExistingPrefix(path string) (string, error) {
	prefix := path
	var suffix []string
	for {
		if _, err := os.Lstat(prefix); err == nil {
			break
		} else if !os.IsNotExist(err) {
			return "", err
		}
		parent := filepath.Dir(prefix)
		if parent == prefix {
			// Hit the filesystem root without finding anything that exists.
			break
		}
		suffix = append([]string{filepath.Base(prefix)}, suffix...)
		prefix = parent
	}
	resolved, err := filepath.EvalSymlinks(prefix)
	if err != nil {
		return "", err
	}
	return filepath.Join(append([]string{resolved}, suffix...)...), nil
}

func escapes(rel string) bool {
	return rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator))
}
