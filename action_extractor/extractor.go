package action_extractor

import (
	"fmt"
	"strings"

	"github.com/morler/codeflow/operations"
)

// Marker grammar. Each directive opens with a marker line; body-carrying
// kinds close at the first line that is exactly the end marker. Everything
// outside directives is conversational prose and is discarded.
const (
	markerCreateFile = "@@CREATE_FILE"
	markerCreateDir  = "@@CREATE_DIR"
	markerModifyFile = "@@MODIFY_FILE"
	markerDeleteFile = "@@DELETE_FILE"
	markerDeleteDir  = "@@DELETE_DIR"
	markerRunCommand = "@@RUN_COMMAND"
	markerEnd        = "@@END"
)

var markerKinds = map[string]operations.OperationKind{
	markerCreateFile: operations.KindCreateFile,
	markerCreateDir:  operations.KindCreateDirectory,
	markerModifyFile: operations.KindModifyFile,
	markerDeleteFile: operations.KindDeleteFile,
	markerDeleteDir:  operations.KindDeleteDirectory,
	markerRunCommand: operations.KindRunCommand,
}

// ParseError records a malformed directive. The offending block is skipped
// and extraction continues; the error is surfaced so the session can show
// what was dropped.
type ParseError struct {
	Line   int
	Marker string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("line %d: malformed %s directive: %s", e.Line, e.Marker, e.Reason)
}

// Result is the outcome of one extraction pass. Operations appear in textual
// order of appearance, which is explicitly not the execution order.
type Result struct {
	Operations []*operations.PendingOperation
	Skipped    []*ParseError
}

// Extract scans raw model output for operation directives. It tolerates
// truncated generations (a marker without its closer consumes the remainder
// of the text as the body) and marker text inside a body (a body always ends
// at the first well-formed closer; consumed regions are never rescanned).
func Extract(modelOutput string) Result {
	var result Result
	lines := strings.Split(modelOutput, "\n")

	seq := 0
	for i := 0; i < len(lines); i++ {
		marker, arg, ok := parseMarkerLine(lines[i])
		if !ok {
			continue // prose, or a stray @@END with no open directive
		}

		kind, known := markerKinds[marker]
		if !known {
			continue
		}

		if kind.TargetsPath() && arg == "" {
			result.Skipped = append(result.Skipped, &ParseError{
				Line:   i + 1,
				Marker: marker,
				Reason: "missing path token",
			})
			if kind.HasBody() {
				i = skipBody(lines, i)
			}
			continue
		}
		if kind == operations.KindRunCommand && arg != "" {
			result.Skipped = append(result.Skipped, &ParseError{
				Line:   i + 1,
				Marker: marker,
				Reason: "unexpected argument on command directive",
			})
			i = skipBody(lines, i)
			continue
		}

		op := &operations.PendingOperation{
			Kind:    kind,
			RawPath: arg,
			Seq:     seq,
		}

		if kind.HasBody() {
			body, next := collectBody(lines, i+1)
			op.Content = []byte(body)
			i = next
			if kind == operations.KindRunCommand && strings.TrimSpace(body) == "" {
				result.Skipped = append(result.Skipped, &ParseError{
					Line:   i + 1,
					Marker: marker,
					Reason: "empty command body",
				})
				continue
			}
		}

		result.Operations = append(result.Operations, op)
		seq++
	}

	return result
}

// parseMarkerLine recognizes a directive opener. Markers must start the
// line (leading whitespace tolerated, trailing text after the path is not
// part of the grammar and stays in the arg verbatim).
func parseMarkerLine(line string) (marker, arg string, ok bool) {
	trimmed := strings.TrimSpace(line)
	if !strings.HasPrefix(trimmed, "@@") || trimmed == markerEnd {
		return "", "", false
	}
	fields := strings.SplitN(trimmed, " ", 2)
	marker = fields[0]
	if _, known := markerKinds[marker]; !known {
		return "", "", false
	}
	if len(fields) == 2 {
		arg = strings.TrimSpace(fields[1])
	}
	return marker, arg, true
}

// collectBody gathers lines from start until the first closer. A missing
// closer means the generation was truncated; the remainder of the text is
// the body.
func collectBody(lines []string, start int) (body string, last int) {
	for j := start; j < len(lines); j++ {
		if strings.TrimSpace(lines[j]) == markerEnd {
			return strings.Join(lines[start:j], "\n"), j
		}
	}
	return strings.Join(lines[start:], "\n"), len(lines) - 1
}

func skipBody(lines []string, start int) int {
	_, last := collectBody(lines, start+1)
	return last
}
