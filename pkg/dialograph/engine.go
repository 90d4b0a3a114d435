package dialograph

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/dialograph/dialograph/pkg/dialograph/llm"
	"github.com/dialograph/dialograph/pkg/dialograph/observability"
	"github.com/dialograph/dialograph/pkg/dialograph/template"
)

// Engine drives a single conversation over a graph. Each Submit feeds the
// user's message to the model, lets the model select outcomes through the
// selection tool, fires the actions those moves trigger, and advances the
// conversation node by node until it needs input again or finishes.
//
// An Engine owns exactly one conversation and is not safe for concurrent
// use: serialize Submit calls, one engine per conversation. The Graph and
// ActionRegistry it references are read-only and may be shared by any
// number of engines.
type Engine struct {
	graph   *Graph
	client  llm.Client
	actions *ActionRegistry
	cfg     engineConfig
	state   *executionState
}

// Turn reports what one Submit did.
type Turn struct {
	// Reply is the latest non-empty assistant text produced during the
	// turn. Empty when the model only selected outcomes.
	Reply string

	// Finished reports whether the turn reached a terminal outcome.
	Finished bool

	// NodeID is the node the conversation rests at after the turn. Empty
	// when finished.
	NodeID string

	// Transitions counts the node transitions the turn made, terminal
	// moves included.
	Transitions int

	// ActionErrors collects handler failures that did not reject the turn.
	// Only populated under ActionContinue.
	ActionErrors []error

	// Usage totals token consumption across the turn's completion calls.
	Usage llm.TokenUsage
}

// New starts a conversation at the graph's start node. The start node's
// entry actions run immediately and its instructions join the transcript,
// so the first Submit already sees them.
//
// A nil actions registry is allowed when the graph declares no actions.
func New(ctx context.Context, graph *Graph, client llm.Client, actions *ActionRegistry, opts ...Option) (*Engine, error) {
	if graph == nil {
		return nil, fmt.Errorf("dialograph: graph cannot be nil")
	}
	if client == nil {
		return nil, fmt.Errorf("dialograph: completion client cannot be nil")
	}

	cfg := defaultEngineConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if actions == nil {
		actions = NewActionRegistry()
	}

	start, ok := graph.Node(graph.Start())
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStartNotFound, graph.Start())
	}

	id := cfg.conversationID
	if id == "" {
		id = uuid.New().String()
	}

	e := &Engine{
		graph:   graph,
		client:  client,
		actions: actions,
		cfg:     cfg,
		state:   newExecutionState(id),
	}
	for k, v := range cfg.vars {
		e.state.vars[k] = v
	}
	e.state.node = start.ID

	observability.LogConversationStart(cfg.logger, id, graph.Name(), start.ID)

	if errs := e.enterNode(ctx, start); len(errs) > 0 && cfg.actionPolicy == ActionAbort {
		return nil, errs[0]
	}

	if cfg.snapshotStore != nil {
		if err := e.saveSnapshot(ctx); err != nil {
			return nil, err
		}
	}

	return e, nil
}

// Submit advances the conversation by one user turn.
//
// The user's text joins the transcript and the vars (under user_input),
// then the engine loops: request a completion with the current node's
// selection tool, apply the outcome the model picked, fire the actions it
// triggers, and enter the next node. The loop ends when the model replies
// without selecting, a terminal outcome fires, a node with AwaitInput is
// entered, or the transition limit trips.
//
// On failure the conversation is left exactly as it was before the call,
// with one exception: a TransitionLimitError keeps the state reached so
// far, since the partial progress is real and worth auditing.
func (e *Engine) Submit(ctx context.Context, userText string) (*Turn, error) {
	if e.state.finished {
		return nil, ErrConversationFinished
	}

	pre := e.state.mark()
	e.state.turns++
	turnNumber := e.state.turns

	observability.LogTurnStart(e.cfg.logger, e.state.id, e.state.node, turnNumber)

	execCtx := ctx
	var turnSpan trace.Span
	if e.cfg.tracingEnabled {
		execCtx, turnSpan = e.cfg.spans.StartTurnSpan(ctx, e.graph.Name(), e.state.id, turnNumber)
	}

	start := time.Now()
	turn, err := e.runTurn(execCtx, userText, pre)
	duration := time.Since(start)
	durationMs := float64(duration.Milliseconds())

	transitions := 0
	if turn != nil {
		transitions = turn.Transitions
	}
	e.cfg.metrics.RecordTurn(execCtx, err == nil, duration, transitions)

	if e.cfg.tracingEnabled {
		e.cfg.spans.EndSpanWithError(turnSpan, err)
	}

	if err != nil {
		observability.LogTurnError(e.cfg.logger, e.state.id, turnNumber, err, durationMs, e.state.node)
		return nil, err
	}

	observability.LogTurnComplete(e.cfg.logger, e.state.id, turnNumber, durationMs, turn.Transitions, e.state.node)
	if turn.Finished {
		observability.LogConversationFinished(e.cfg.logger, e.state.id, e.state.turns)
	}

	if e.cfg.snapshotStore != nil {
		if err := e.saveSnapshot(execCtx); err != nil {
			return nil, err
		}
	}

	return turn, nil
}

// runTurn executes the transition loop for one submit. Error paths restore
// the pre-submit state themselves, except the transition limit, which
// keeps partial progress.
func (e *Engine) runTurn(ctx context.Context, userText string, pre rollback) (*Turn, error) {
	e.state.append(Message{Role: RoleUser, Content: userText})
	e.state.vars["user_input"] = userText

	turn := &Turn{}
	transitions := 0

	for {
		if transitions >= e.cfg.maxTransitions {
			return nil, &TransitionLimitError{Limit: e.cfg.maxTransitions, NodeID: e.state.node}
		}

		node, ok := e.graph.Node(e.state.node)
		if !ok {
			// Validation makes this unreachable for graphs built through
			// the public constructors.
			e.state.rollbackTo(pre)
			return nil, fmt.Errorf("current node %q not in graph", e.state.node)
		}

		tool, hasTool := OutcomeTool(node)
		if !hasTool && e.cfg.logger != nil {
			e.cfg.logger.Warn("node offers no outcomes, conversation cannot progress",
				"node_id", node.ID,
				"conversation_id", e.state.id,
			)
		}

		resp, err := e.complete(ctx, node, tool, hasTool)
		if err != nil {
			e.state.rollbackTo(pre)
			return nil, &CompletionError{NodeID: node.ID, Err: err}
		}
		turn.Usage.Add(resp.Usage)

		msg := Message{Role: RoleAssistant, Content: resp.Content}
		var selection, callID string
		if call, found := firstSelection(resp.ToolCalls); found {
			outcome, perr := ParseSelection(call)
			if perr != nil {
				if e.cfg.logger != nil {
					e.cfg.logger.Warn("ignoring unparseable selection",
						"node_id", node.ID,
						"error", perr.Error(),
					)
				}
			} else {
				callID = call.ID
				if callID == "" {
					callID = uuid.New().String()
				}
				selection = outcome
				msg.Selection = &Selection{Outcome: outcome, CallID: callID}
			}
		}
		e.state.append(msg)
		if resp.Content != "" {
			turn.Reply = resp.Content
		}

		// No selection: the model is talking to the user. The turn ends
		// here and the conversation stays at this node.
		if selection == "" {
			break
		}

		out, ok := node.Outcomes[selection]
		if !ok {
			offered := node.OutcomeKeys()
			observability.LogInvalidOutcome(e.cfg.logger, node.ID, selection, offered)
			e.cfg.metrics.RecordInvalidOutcome(ctx, node.ID)

			if e.cfg.selectionPolicy == SelectionStrict {
				e.state.rollbackTo(pre)
				return nil, &InvalidOutcomeError{NodeID: node.ID, Outcome: selection, Offered: offered}
			}
			// Lenient: the assistant message stays for audit, no move.
			break
		}

		if errs := e.runActions(ctx, node.ID, phaseOutcome, node.Actions.OnOutcome[selection]); len(errs) > 0 {
			turn.ActionErrors = append(turn.ActionErrors, errs...)
			if e.cfg.actionPolicy == ActionAbort {
				e.state.rollbackTo(pre)
				return nil, errs[0]
			}
		}

		next := out.Next
		e.state.append(selectionResult(selection, next, callID))
		e.state.lastOutcome = selection
		transitions++

		observability.LogTransition(e.cfg.logger, node.ID, selection, next)
		e.cfg.metrics.RecordTransition(ctx, node.ID, selection)
		if e.cfg.tracingEnabled {
			e.cfg.spans.AddSpanEvent(ctx, "transition",
				attribute.String("from_node", node.ID),
				attribute.String("outcome", selection),
				attribute.String("to_node", next),
			)
		}

		if next == END {
			e.state.node = ""
			e.state.finished = true
			break
		}

		nextNode, ok := e.graph.Node(next)
		if !ok {
			// Unreachable for validated graphs.
			e.state.rollbackTo(pre)
			return nil, &DanglingReferenceError{NodeID: node.ID, OutcomeKey: selection, Target: next}
		}
		e.state.node = next

		if errs := e.enterNode(ctx, nextNode); len(errs) > 0 {
			turn.ActionErrors = append(turn.ActionErrors, errs...)
			if e.cfg.actionPolicy == ActionAbort {
				e.state.rollbackTo(pre)
				return nil, errs[0]
			}
		}

		if nextNode.AwaitInput {
			break
		}
	}

	turn.NodeID = e.state.node
	turn.Transitions = transitions
	turn.Finished = e.state.finished
	return turn, nil
}

// enterNode fires a node's entry actions, then appends its expanded
// instructions. Actions run first so instructions can reference their
// last_<type> results.
func (e *Engine) enterNode(ctx context.Context, node Node) []error {
	errs := e.runActions(ctx, node.ID, phaseEnter, node.Actions.OnEnter)

	if node.Instructions != "" {
		e.state.append(Message{Role: RoleSystem, Content: e.expand(node.Instructions)})
	}
	return errs
}

// complete sends one completion request for the current node.
func (e *Engine) complete(ctx context.Context, node Node, tool llm.Tool, hasTool bool) (*llm.CompletionResponse, error) {
	req := llm.CompletionRequest{
		SystemPrompt: e.expand(e.graph.SystemPrompt()),
		Messages:     e.requestMessages(),
		Model:        e.cfg.model,
		MaxTokens:    e.cfg.maxTokens,
		Temperature:  e.cfg.temperature,
	}
	if hasTool {
		req.Tools = []llm.Tool{tool}
	}

	completionCtx := ctx
	var span trace.Span
	if e.cfg.tracingEnabled {
		completionCtx, span = e.cfg.spans.StartCompletionSpan(ctx, e.cfg.model, node.ID)
	}

	start := time.Now()
	resp, err := e.client.Complete(completionCtx, req)
	duration := time.Since(start)

	var inputTokens, outputTokens int
	if resp != nil {
		inputTokens = resp.Usage.InputTokens
		outputTokens = resp.Usage.OutputTokens
	}
	e.cfg.metrics.RecordCompletion(ctx, e.cfg.model, duration, inputTokens, outputTokens, err)
	if e.cfg.tracingEnabled {
		e.cfg.spans.EndSpanWithError(span, err)
	}

	if err != nil {
		return nil, err
	}
	if resp == nil {
		return nil, fmt.Errorf("completion client returned nil response")
	}

	observability.LogCompletion(e.cfg.logger, resp.Model, float64(duration.Milliseconds()),
		resp.Usage.InputTokens, resp.Usage.OutputTokens)
	return resp, nil
}

// requestMessages projects the transcript into the wire shape. Tool-result
// entries travel as tool-role messages attributed to the selection tool.
func (e *Engine) requestMessages() []llm.Message {
	msgs := make([]llm.Message, 0, len(e.state.transcript))
	for _, m := range e.state.transcript {
		switch m.Role {
		case RoleSystem:
			msgs = append(msgs, llm.NewSystemMessage(m.Content))
		case RoleUser:
			msgs = append(msgs, llm.NewUserMessage(m.Content))
		case RoleAssistant:
			msgs = append(msgs, llm.NewAssistantMessage(m.Content))
		case RoleToolResult:
			msgs = append(msgs, llm.NewToolMessage(OutcomeToolName, m.Content))
		}
	}
	return msgs
}

// expand applies ${var} expansion against the conversation vars. Unknown
// variables keep their placeholders, so half-collected conversations still
// render usable prompts.
func (e *Engine) expand(s string) string {
	if s == "" {
		return ""
	}
	return template.Expand(s, e.state.vars)
}

// firstSelection returns the first select_outcome call in the response.
// Providers may emit several tool calls in one message; only the first
// selection counts.
func firstSelection(calls []llm.ToolCall) (llm.ToolCall, bool) {
	for _, call := range calls {
		if call.Name == OutcomeToolName {
			return call, true
		}
	}
	return llm.ToolCall{}, false
}

// selectionResult builds the synthetic tool-result message that closes an
// outcome selection. Its content is the JSON the model sees next turn.
func selectionResult(outcome, next, callID string) Message {
	payload, _ := json.Marshal(struct {
		Outcome        string `json:"outcome"`
		TransitionedTo string `json:"transitioned_to"`
	}{outcome, next})

	return Message{
		Role:      RoleToolResult,
		Content:   string(payload),
		Selection: &Selection{Outcome: outcome, CallID: callID},
	}
}

// ConversationID returns the conversation's unique identifier.
func (e *Engine) ConversationID() string {
	return e.state.id
}

// CurrentNodeID returns the node the conversation rests at, or the empty
// string once finished.
func (e *Engine) CurrentNodeID() string {
	return e.state.node
}

// IsFinished reports whether the conversation reached a terminal outcome.
func (e *Engine) IsFinished() bool {
	return e.state.finished
}

// Turns returns how many submits have committed.
func (e *Engine) Turns() int {
	return e.state.turns
}

// Transcript returns a copy of the conversation transcript.
func (e *Engine) Transcript() []Message {
	out := make([]Message, len(e.state.transcript))
	copy(out, e.state.transcript)
	return out
}

// Vars returns a copy of the conversation vars.
func (e *Engine) Vars() map[string]any {
	return e.state.varsSnapshot()
}
