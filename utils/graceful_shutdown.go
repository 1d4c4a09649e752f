package utils

import (
	"context"
	"fmt"

	"github.com/morler/codeflow/constants/lipgloss"
)

// GracefulShutdown waits for the session context to end and runs the cleanup
// hooks before the process exits.
func GracefulShutdown(ctx context.Context, cleanup func()) {
	<-ctx.Done()
	if cleanup != nil {
		cleanup()
	}
	fmt.Println(lipgloss.Yellow.Render("\nSession closed."))
}
