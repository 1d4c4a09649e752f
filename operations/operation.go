package operations

import (
	"encoding/json"
	"fmt"
)

// OperationKind is the closed set of file operations the pipeline can execute.
type OperationKind int

const (
	KindCreateFile OperationKind = iota
	KindCreateDirectory
	KindModifyFile
	KindDeleteFile
	KindDeleteDirectory
	KindRunCommand
)

var kindNames = map[OperationKind]string{
	KindCreateFile:      "CreateFile",
	KindCreateDirectory: "CreateDirectory",
	KindModifyFile:      "ModifyFile",
	KindDeleteFile:      "DeleteFile",
	KindDeleteDirectory: "DeleteDirectory",
	KindRunCommand:      "RunCommand",
}

func (k OperationKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("OperationKind(%d)", int(k))
}

func (k OperationKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

func (k *OperationKind) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return err
	}
	for kind, kn := range kindNames {
		if kn == name {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("unknown operation kind: %q", name)
}

// TargetsPath reports whether operations of this kind carry a filesystem path.
// RunCommand is the only kind that does not.
func (k OperationKind) TargetsPath() bool {
	return k != KindRunCommand
}

// HasBody reports whether the extraction marker for this kind is followed by a
// fenced body. Directory and delete directives are single-line.
func (k OperationKind) HasBody() bool {
	switch k {
	case KindCreateFile, KindModifyFile, KindRunCommand:
		return true
	default:
		return false
	}
}

// PendingOperation is a unit of work extracted from model output. RawPath is
// exactly what the model emitted and must pass the path validator before any
// filesystem mutation. Seq is the textual order of appearance in the model
// output, used as the deterministic tie-breaker during ordering.
type PendingOperation struct {
	Kind    OperationKind
	RawPath string
	Content []byte

	// Dependencies holds the raw paths of other operations in the same batch
	// that this operation's content statically references. Filled by the
	// dependency graph, never by the extractor.
	Dependencies []string

	Seq int
}

func (op *PendingOperation) String() string {
	if op.Kind == KindRunCommand {
		return op.Kind.String()
	}
	return fmt.Sprintf("%s %s", op.Kind, op.RawPath)
}
