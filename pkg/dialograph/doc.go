/*
Package dialograph executes conversational agents defined as graphs.

# Overview

dialograph is a Go library for building LLM agents whose behavior is a
declarative graph instead of a prompt soup. Nodes are conversational
states carrying instructions for the model; outcomes are the ways a node
can conclude, each pointing at the next node. Every turn, the model is
offered a single tool whose enum lists exactly the current node's
outcomes, so the model's only way to move the conversation is to pick one
of the moves the graph allows.

The structure buys predictability: the set of reachable states is fixed
at build time, transitions are validated, side effects fire at known
points, and the whole conversation is an auditable transcript.

  - Declarative graphs, in code or YAML/JSON
  - Enum-constrained outcome selection
  - Action handlers on node entry and outcome selection
  - Snapshot persistence and crash recovery
  - OpenTelemetry metrics and tracing, slog logging

# Basic Usage

Build a graph, then run a conversation over it:

	graph, err := dialograph.NewBuilder("support").
		SystemPrompt("You are a support agent for ${company}.").
		AddNode(dialograph.Node{
			ID:           "greeting",
			Instructions: "Greet the customer and ask what they need.",
			Outcomes: map[string]dialograph.Outcome{
				"issue_described": {
					Description: "The customer described a problem.",
					Next:        "diagnose",
				},
				"nothing_needed": {
					Description: "The customer needs nothing.",
					Next:        dialograph.END,
				},
			},
		}).
		AddNode(dialograph.Node{
			ID:           "diagnose",
			Instructions: "Ask clarifying questions about the problem.",
			Outcomes: map[string]dialograph.Outcome{
				"resolved": {Description: "The problem is resolved.", Next: dialograph.END},
			},
		}).
		SetStart("greeting").
		Build()
	if err != nil {
		log.Fatal(err)
	}

	engine, err := dialograph.New(ctx, graph, client, nil,
		dialograph.WithVars(map[string]any{"company": "Acme"}),
	)
	if err != nil {
		log.Fatal(err)
	}

	turn, err := engine.Submit(ctx, "My printer is on fire.")
	if err != nil {
		log.Fatal(err)
	}
	fmt.Println(turn.Reply)

Each Submit lets the model reply, select an outcome, or both. Selections
transition the conversation; the engine auto-advances through nodes until
the model produces a reply without selecting, a node marked AwaitInput is
entered, or a terminal outcome finishes the conversation.

# Declarative Graphs

The same graph ships as data:

	name: support
	system_prompt: You are a support agent for ${company}.
	start: greeting
	nodes:
	  greeting:
	    instructions: Greet the customer and ask what they need.
	    outcomes:
	      issue_described:
	        description: The customer described a problem.
	        next: diagnose
	      nothing_needed:
	        description: The customer needs nothing.
	        next: END

	graph, err := dialograph.LoadFile("support.yaml")

# Actions

Actions attach side effects to the graph. OnEnter actions fire when the
conversation arrives at a node; OnOutcome actions fire when the model
selects the keyed outcome:

	actions := dialograph.NewActionRegistry()
	actions.RegisterFunc("create_ticket", func(ctx context.Context, cfg, vars config.Config) (any, error) {
		id, err := tickets.Create(ctx, cfg.String("queue", "default"))
		return id, err
	})

A handler's result folds into the conversation vars under last_<type>
(here last_create_ticket), where later instructions and action configs can
reference it with ${last_create_ticket}. Handler failures are logged and
reported on the Turn by default; WithActionPolicy(ActionAbort) makes them
reject the whole submit instead.

# Persistence

With a snapshot store, the engine saves the conversation after
construction and after every successful submit, and a crashed process can
pick it back up:

	store, err := snapshot.NewSQLiteStore("conversations.db")
	engine, err := dialograph.New(ctx, graph, client, actions,
		dialograph.WithSnapshotStore(store),
	)

	// later, possibly elsewhere
	engine, err = dialograph.Resume(store, graph, client, actions, conversationID,
		dialograph.WithSnapshotStore(store),
	)

# Observability

Logging, metrics, and tracing are opt-in and independent:

	engine, err := dialograph.New(ctx, graph, client, actions,
		dialograph.WithLogger(slog.Default()),
		dialograph.WithMetrics(true),
		dialograph.WithTracing(true),
	)

Metrics and spans go through OpenTelemetry and are no-ops until the
process installs providers.

# Error Handling

Failures are sentinel errors or typed wrappers around them, so callers
branch with the stdlib errors package:

	turn, err := engine.Submit(ctx, input)
	switch {
	case errors.Is(err, dialograph.ErrCompletionFailed):
		// transient: state is untouched, resubmit the same input
	case errors.Is(err, dialograph.ErrTransitionLimit):
		// graph bug: state kept for audit
	case errors.Is(err, dialograph.ErrConversationFinished):
		// terminal outcome already reached
	}

A failed submit restores the conversation exactly as it was before the
call (the transition limit excepted), so retrying is always safe.

# Thread Safety

A Graph is immutable once built and safe to share. An ActionRegistry is
safe for concurrent reads after setup. An Engine owns a single
conversation and is not safe for concurrent use; run one engine per
conversation and serialize its Submit calls.

# Subpackages

  - llm: completion client interface, mock client, retrying decorator
  - config: typed access to action config maps
  - template: ${var} expansion for instructions and configs
  - snapshot: conversation persistence (in-memory and SQLite stores)
  - observability: slog helpers, OpenTelemetry metrics and spans
  - registry: the generic registry underlying action dispatch
*/
package dialograph
