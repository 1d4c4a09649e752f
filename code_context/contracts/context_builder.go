package contracts

import "context"

// IContextBuilder supplies a bounded, relevance-ranked view of a workspace
// for prompt construction.
type IContextBuilder interface {
	GetOrBuild(ctx context.Context, workspaceRoot string, query string) (string, error)
	Invalidate(workspaceRoot string)
	Clear()
	Stats() map[string]interface{}
}
