package llm

import "context"

type Provider interface {
	// StreamAnswer returns a stream of text chunks (incremental). errs
	// yields at most one error and is closed when the stream ends.
	StreamAnswer(ctx context.Context, prompt string) (chunks <-chan string, errs <-chan error)
	Close() error
}

var _ Provider = (*VertexGemini)(nil)
