package operations

import (
	"encoding/json"
	"fmt"
)

// Outcome is the terminal state of a single operation.
type Outcome int

const (
	OutcomeSucceeded Outcome = iota
	OutcomeRejected
	OutcomeFailed
	OutcomeCancelled
)

var outcomeNames = map[Outcome]string{
	OutcomeSucceeded: "Succeeded",
	OutcomeRejected:  "Rejected",
	OutcomeFailed:    "Failed",
	OutcomeCancelled: "Cancelled",
}

func (o Outcome) String() string {
	if name, ok := outcomeNames[o]; ok {
		return name
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

func (o Outcome) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// OperationResult records the terminal state of one operation. Path is the
// validated workspace-relative path when validation succeeded, otherwise the
// raw path as the model emitted it.
type OperationResult struct {
	Kind       OperationKind `json:"kind"`
	Path       string        `json:"path,omitempty"`
	Outcome    Outcome       `json:"outcome"`
	Error      string        `json:"error,omitempty"`
	Downgraded bool          `json:"downgraded,omitempty"`
}

// Summary aggregates per-outcome counts for a batch.
type Summary struct {
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
	Rejected  int `json:"rejected"`
	Cancelled int `json:"cancelled,omitempty"`
}

// ExecutionReport is the ordered, immutable result of executing one batch.
// Operations appear in execution order, one entry per pending operation.
type ExecutionReport struct {
	Operations []OperationResult `json:"operations"`
	Summary    Summary           `json:"summary"`
}

// NewExecutionReport assembles a report from per-operation results and
// computes the summary counts.
func NewExecutionReport(results []OperationResult) *ExecutionReport {
	report := &ExecutionReport{Operations: results}
	for _, r := range results {
		switch r.Outcome {
		case OutcomeSucceeded:
			report.Summary.Succeeded++
		case OutcomeFailed:
			report.Summary.Failed++
		case OutcomeRejected:
			report.Summary.Rejected++
		case OutcomeCancelled:
			report.Summary.Cancelled++
		}
	}
	return report
}

// AllSucceeded reports whether every operation in the batch succeeded.
func (r *ExecutionReport) AllSucceeded() bool {
	return len(r.Operations) > 0 && r.Summary.Succeeded == len(r.Operations)
}
