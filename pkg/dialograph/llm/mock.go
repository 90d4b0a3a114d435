package llm

import (
	"context"
	"sync"
	"time"
)

// MockClient is a configurable Client for tests.
//
// By default it returns a fixed response. Configure scripted behavior
// with WithResponses, WithCompletionResponses, WithError, or
// WithCompleteFunc. Every request is recorded in Calls for assertions.
type MockClient struct {
	mu sync.Mutex

	// Calls records every request passed to Complete or Stream,
	// in order.
	Calls []CompletionRequest

	responses    []*CompletionResponse
	next         int
	err          error
	completeFunc func(context.Context, CompletionRequest) (*CompletionResponse, error)
}

// NewMockClient creates a mock that always returns the given content.
func NewMockClient(content string) *MockClient {
	return &MockClient{
		responses: []*CompletionResponse{{Content: content}},
	}
}

// WithResponses configures a sequence of text responses.
// Responses are returned in order and cycle when exhausted.
func (m *MockClient) WithResponses(contents ...string) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = make([]*CompletionResponse, len(contents))
	for i, c := range contents {
		m.responses[i] = &CompletionResponse{Content: c}
	}
	m.next = 0
	return m
}

// WithCompletionResponses configures a sequence of full responses,
// including tool calls. Responses are returned in order and cycle when
// exhausted. Zero-valued fields (FinishReason, Usage, Model) are filled
// with mock defaults at call time.
func (m *MockClient) WithCompletionResponses(responses ...*CompletionResponse) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses = responses
	m.next = 0
	return m
}

// WithError makes every call fail with err.
func (m *MockClient) WithError(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// WithCompleteFunc overrides response generation entirely.
// The function receives each request and produces the response.
func (m *MockClient) WithCompleteFunc(fn func(context.Context, CompletionRequest) (*CompletionResponse, error)) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.completeFunc = fn
	return m
}

// Complete returns the next scripted response.
// It honors context cancellation and records the request.
func (m *MockClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	m.mu.Lock()
	m.Calls = append(m.Calls, req)

	if m.err != nil {
		err := m.err
		m.mu.Unlock()
		return nil, err
	}
	if m.completeFunc != nil {
		fn := m.completeFunc
		m.mu.Unlock()
		return fn(ctx, req)
	}

	var scripted CompletionResponse
	if len(m.responses) > 0 {
		scripted = *m.responses[m.next%len(m.responses)]
		m.next++
	}
	m.mu.Unlock()

	resp := scripted
	if resp.Model == "" {
		resp.Model = "mock"
	}
	if resp.FinishReason == "" {
		if len(resp.ToolCalls) > 0 {
			resp.FinishReason = "tool_use"
		} else {
			resp.FinishReason = "stop"
		}
	}
	if resp.Usage == (TokenUsage{}) {
		in := estimateTokens(requestText(req))
		out := estimateTokens(resp.Content)
		resp.Usage = TokenUsage{InputTokens: in, OutputTokens: out, TotalTokens: in + out}
	}
	if resp.Duration == 0 {
		resp.Duration = time.Since(start)
	}
	return &resp, nil
}

// Stream returns the full response as a single final chunk.
func (m *MockClient) Stream(ctx context.Context, req CompletionRequest) (<-chan StreamChunk, error) {
	resp, err := m.Complete(ctx, req)
	if err != nil {
		return nil, err
	}

	ch := make(chan StreamChunk, 1)
	usage := resp.Usage
	ch <- StreamChunk{
		Content:   resp.Content,
		ToolCalls: resp.ToolCalls,
		Usage:     &usage,
		Done:      true,
	}
	close(ch)
	return ch, nil
}

// LastCall returns the most recent request, or nil if none were made.
func (m *MockClient) LastCall() *CompletionRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.Calls) == 0 {
		return nil
	}
	return &m.Calls[len(m.Calls)-1]
}

// CallCount returns the number of recorded requests.
func (m *MockClient) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}

// Reset clears recorded calls and restarts the response sequence.
// Configured responses, errors, and complete funcs are kept.
func (m *MockClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Calls = nil
	m.next = 0
}

// estimateTokens approximates token count as one token per four characters,
// with a minimum of one.
func estimateTokens(s string) int {
	return len(s)/4 + 1
}

// requestText flattens a request into the text the model would see.
func requestText(req CompletionRequest) string {
	text := req.SystemPrompt
	for _, msg := range req.Messages {
		text += msg.Content
	}
	return text
}
