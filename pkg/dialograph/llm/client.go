package llm

import "context"

// Client produces completions for outcome selection calls.
//
// The engine depends only on this interface, so production code can wrap
// any provider and tests can substitute MockClient. Implementations must
// be safe for concurrent use if the same client is shared across engines.
type Client interface {
	// Complete sends a completion request and blocks until the full
	// response arrives or ctx is done.
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// CompleteFunc adapts a function to the Client interface.
type CompleteFunc func(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

// Complete calls f(ctx, req).
func (f CompleteFunc) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return f(ctx, req)
}
