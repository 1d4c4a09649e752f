package models

// StreamResponse is a single chunk of a streamed chat completion.
type StreamResponse struct {
	Content string
	Done    bool
	Err     error
}
