package dialograph

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dialograph/dialograph/pkg/dialograph/config"
	"github.com/dialograph/dialograph/pkg/dialograph/llm"
)

// Shared fixtures: graphs, scripted completions, and recording handlers
// used across the package tests.

// supportGraph builds the canonical three-node test graph:
//
//	greeting --issue_described--> diagnose --resolved--> closing --done--> END
//	    \--nothing_needed--> END       \--escalate--> END
//
// No node awaits input, so pacing is controlled entirely by whether the
// scripted model selects an outcome or just replies.
func supportGraph(t *testing.T) *Graph {
	t.Helper()

	graph, err := NewBuilder("support").
		SystemPrompt("You are a support agent.").
		AddNode(Node{
			ID:           "greeting",
			Instructions: "Greet the customer and ask what they need.",
			Outcomes: map[string]Outcome{
				"issue_described": {Description: "The customer described a problem.", Next: "diagnose"},
				"nothing_needed":  {Description: "The customer needs nothing.", Next: END},
			},
		}).
		AddNode(Node{
			ID:           "diagnose",
			Instructions: "Ask clarifying questions about the problem.",
			Outcomes: map[string]Outcome{
				"resolved": {Description: "The problem is resolved.", Next: "closing"},
				"escalate": {Description: "A human needs to take over.", Next: END},
			},
		}).
		AddNode(Node{
			ID:           "closing",
			Instructions: "Thank the customer and say goodbye.",
			Outcomes: map[string]Outcome{
				"done": {Description: "The customer said goodbye.", Next: END},
			},
		}).
		SetStart("greeting").
		Build()
	require.NoError(t, err)
	return graph
}

// pipelineGraph builds a linear intake -> verify -> process chain where
// verify awaits input, for exercising auto-advance and its pause points.
func pipelineGraph(t *testing.T) *Graph {
	t.Helper()

	graph, err := NewBuilder("pipeline").
		AddNode(Node{
			ID:           "intake",
			Instructions: "Collect the request.",
			Outcomes: map[string]Outcome{
				"ok": {Description: "Request collected.", Next: "verify"},
			},
		}).
		AddNode(Node{
			ID:           "verify",
			Instructions: "Confirm the details with the user.",
			AwaitInput:   true,
			Outcomes: map[string]Outcome{
				"ok": {Description: "Details confirmed.", Next: "process"},
			},
		}).
		AddNode(Node{
			ID:           "process",
			Instructions: "Process the request.",
			Outcomes: map[string]Outcome{
				"ok": {Description: "Request processed.", Next: END},
			},
		}).
		SetStart("intake").
		Build()
	require.NoError(t, err)
	return graph
}

// loopGraph builds a two-node cycle with no await and no terminal path
// taken by default, for exercising the transition limit.
func loopGraph(t *testing.T) *Graph {
	t.Helper()

	graph, err := NewBuilder("loop").
		AddNode(Node{
			ID: "ping",
			Outcomes: map[string]Outcome{
				"next": {Description: "Keep going.", Next: "pong"},
				"stop": {Description: "Stop.", Next: END},
			},
		}).
		AddNode(Node{
			ID: "pong",
			Outcomes: map[string]Outcome{
				"next": {Description: "Keep going.", Next: "ping"},
				"stop": {Description: "Stop.", Next: END},
			},
		}).
		SetStart("ping").
		Build()
	require.NoError(t, err)
	return graph
}

// replyResponse scripts a plain text reply with no selection.
func replyResponse(text string) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Content: text,
		Model:   "test-model",
		Usage:   llm.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

// selectResponse scripts an outcome selection alongside optional reply
// text.
func selectResponse(text, outcome string) *llm.CompletionResponse {
	return &llm.CompletionResponse{
		Content:   text,
		ToolCalls: []llm.ToolCall{selectionCall("call-"+outcome, outcome)},
		Model:     "test-model",
		Usage:     llm.TokenUsage{InputTokens: 10, OutputTokens: 5, TotalTokens: 15},
	}
}

// selectionCall builds a select_outcome tool call with the given ID.
func selectionCall(id, outcome string) llm.ToolCall {
	args, _ := json.Marshal(map[string]string{"outcome": outcome})
	return llm.ToolCall{ID: id, Name: OutcomeToolName, Arguments: args}
}

// scriptClient builds a mock that plays the given responses in order.
func scriptClient(responses ...*llm.CompletionResponse) *llm.MockClient {
	return llm.NewMockClient("").WithCompletionResponses(responses...)
}

// handlerCall records one handler dispatch.
type handlerCall struct {
	cfg  map[string]any
	vars map[string]any
}

// recordingHandler captures every dispatch and returns a fixed result.
type recordingHandler struct {
	mu     sync.Mutex
	calls  []handlerCall
	result any
	err    error
}

func (h *recordingHandler) Execute(_ context.Context, cfg config.Config, vars config.Config) (any, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.calls = append(h.calls, handlerCall{cfg: cfg.Raw(), vars: vars.Raw()})
	return h.result, h.err
}

func (h *recordingHandler) callCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.calls)
}

func (h *recordingHandler) call(i int) handlerCall {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.calls[i]
}

func testCtx() context.Context {
	return context.Background()
}

// errorsAs asserts errors.As succeeds and returns the typed error.
func errorsAs[T error](t *testing.T, err error) T {
	t.Helper()
	var target T
	require.True(t, errors.As(err, &target), "error %v is not %T", err, target)
	return target
}
