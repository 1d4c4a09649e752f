package utils

import (
	"fmt"
	"strings"

	"github.com/morler/codeflow/operations"
)

// GenerateCommitMessage summarizes a fully successful execution report into
// a conventional commit message. Used by the auto-commit flow; no model call
// is needed since the report already describes every change.
func GenerateCommitMessage(report *operations.ExecutionReport) string {
	var created, modified, deleted []string
	for _, r := range report.Operations {
		if r.Outcome != operations.OutcomeSucceeded {
			continue
		}
		switch r.Kind {
		case operations.KindCreateFile:
			created = append(created, r.Path)
		case operations.KindModifyFile:
			modified = append(modified, r.Path)
		case operations.KindDeleteFile, operations.KindDeleteDirectory:
			deleted = append(deleted, r.Path)
		}
	}

	var title string
	switch {
	case len(created) > 0 && len(modified) == 0 && len(deleted) == 0:
		title = fmt.Sprintf("Add %s", summarizePaths(created))
	case len(modified) > 0 && len(created) == 0 && len(deleted) == 0:
		title = fmt.Sprintf("Update %s", summarizePaths(modified))
	case len(deleted) > 0 && len(created) == 0 && len(modified) == 0:
		title = fmt.Sprintf("Remove %s", summarizePaths(deleted))
	default:
		title = fmt.Sprintf("Apply assistant changes (%d files)", len(created)+len(modified)+len(deleted))
	}

	var body strings.Builder
	writeSection := func(verb string, paths []string) {
		for _, p := range paths {
			fmt.Fprintf(&body, "- %s %s\n", verb, p)
		}
	}
	writeSection("create", created)
	writeSection("modify", modified)
	writeSection("delete", deleted)

	if body.Len() == 0 {
		return title
	}
	return title + "\n\n" + body.String()
}

func summarizePaths(paths []string) string {
	if len(paths) == 1 {
		return paths[0]
	}
	return fmt.Sprintf("%s and %d more", paths[0], len(paths)-1)
}
