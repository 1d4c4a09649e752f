package utils

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/alecthomas/chroma/v2/quick"
)

// RenderAndPrintMarkdownWithContext renders a markdown chunk to the terminal
// with syntax highlighting, checking for cancellation between lines so a
// long streamed response can be interrupted cleanly.
func RenderAndPrintMarkdownWithContext(ctx context.Context, content string, language string, theme string) error {
	insideCodeBlock := false

	for _, line := range strings.Split(content, "\n") {
		select {
		case <-ctx.Done():
			fmt.Println()
			return ctx.Err()
		default:
		}

		if strings.HasPrefix(strings.TrimSpace(line), "```") {
			insideCodeBlock = !insideCodeBlock
			continue
		}

		if insideCodeBlock {
			if err := quick.Highlight(os.Stdout, line+"\n", language, "terminal256", theme); err != nil {
				// Unknown lexer or theme: fall back to plain output rather
				// than dropping the content.
				fmt.Println(line)
			}
			continue
		}
		fmt.Println(line)
	}
	return nil
}
