package dialograph

import "sort"

// Node is one conversational state. While a conversation sits at a node,
// the node's instructions steer the model and the node's outcomes are the
// only moves the model can make.
type Node struct {
	// ID uniquely identifies the node within its graph. In declarative
	// documents the map key is the ID, so the field is not serialized.
	ID string `yaml:"-" json:"-"`

	// Name is an optional human-readable label.
	Name string `yaml:"name,omitempty" json:"name,omitempty"`

	// Instructions are appended to the transcript as a system message when
	// the conversation enters the node. ${var} placeholders are expanded
	// against the conversation vars at entry time.
	Instructions string `yaml:"instructions,omitempty" json:"instructions,omitempty"`

	// Outcomes are the ways the node can conclude, keyed by outcome name.
	// A node with no outcomes cannot progress; the engine offers no
	// selection tool there and logs a warning each turn.
	Outcomes map[string]Outcome `yaml:"outcomes,omitempty" json:"outcomes,omitempty"`

	// Actions are side effects fired when the conversation enters the node
	// or selects one of its outcomes.
	Actions Actions `yaml:"actions,omitempty" json:"actions,omitempty"`

	// AwaitInput pauses the turn after entering this node instead of
	// consulting the model again immediately. Defaults to false: the engine
	// auto-advances through nodes until a reply is produced, a terminal
	// outcome is reached, or the transition limit trips.
	AwaitInput bool `yaml:"await_input,omitempty" json:"await_input,omitempty"`
}

// OutcomeKeys returns the node's outcome keys in sorted order. The same
// order appears in the selection tool's enum, keeping prompts deterministic
// for a given graph.
func (n Node) OutcomeKeys() []string {
	keys := make([]string, 0, len(n.Outcomes))
	for key := range n.Outcomes {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

// Outcome is one way a node can conclude. Description tells the model when
// to pick it; Next names the node the conversation moves to, or END.
type Outcome struct {
	Description string `yaml:"description,omitempty" json:"description,omitempty"`
	Next        string `yaml:"next,omitempty" json:"next,omitempty"`
}

// Terminal reports whether selecting the outcome finishes the conversation.
func (o Outcome) Terminal() bool {
	return o.Next == END
}

// Action names a side effect to dispatch through the action registry.
// Config is handed to the handler after ${var} expansion of its string
// values against the conversation vars.
type Action struct {
	Type   string         `yaml:"type" json:"type"`
	Config map[string]any `yaml:"config,omitempty" json:"config,omitempty"`
}

// Actions groups a node's side effects by trigger. OnEnter actions fire
// when the conversation arrives at the node; OnOutcome actions fire when
// the model selects the keyed outcome, before the transition completes.
type Actions struct {
	OnEnter   []Action            `yaml:"on_enter,omitempty" json:"on_enter,omitempty"`
	OnOutcome map[string][]Action `yaml:"on_outcome,omitempty" json:"on_outcome,omitempty"`
}

// normalizedNode prepares a node for inclusion in a graph: the ID is set
// from the graph key and outcomes with an empty Next are rewritten to END.
// The outcome map is copied so later caller mutations cannot reach the
// built graph.
func normalizedNode(id string, node Node) Node {
	node.ID = id
	if len(node.Outcomes) > 0 {
		outcomes := make(map[string]Outcome, len(node.Outcomes))
		for key, outcome := range node.Outcomes {
			if outcome.Next == "" {
				outcome.Next = END
			}
			outcomes[key] = outcome
		}
		node.Outcomes = outcomes
	}
	return node
}
