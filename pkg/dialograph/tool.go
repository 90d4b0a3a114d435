package dialograph

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dialograph/dialograph/pkg/dialograph/llm"
)

// OutcomeToolName is the name of the selection tool offered on every
// completion request. Calling it is the only way the model can move the
// conversation.
const OutcomeToolName = "select_outcome"

// outcomeSchema is the JSON Schema for the selection tool's single
// argument. The enum constrains the model to the node's outcome keys.
type outcomeSchema struct {
	Type       string                     `json:"type"`
	Properties map[string]outcomeProperty `json:"properties"`
	Required   []string                   `json:"required"`
}

type outcomeProperty struct {
	Type        string   `json:"type"`
	Description string   `json:"description"`
	Enum        []string `json:"enum"`
}

// OutcomeTool builds the selection tool for a node. The enum lists exactly
// the node's outcome keys in sorted order, and the description carries each
// key's description so the model can match the conversation against them.
//
// Returns false when the node has no outcomes; the engine offers no tool
// there and the model can only reply in text.
func OutcomeTool(node Node) (llm.Tool, bool) {
	keys := node.OutcomeKeys()
	if len(keys) == 0 {
		return llm.Tool{}, false
	}

	var desc strings.Builder
	desc.WriteString("Select the outcome that best matches the conversation so far. Valid outcomes:\n")
	for _, key := range keys {
		fmt.Fprintf(&desc, "- %s: %s\n", key, node.Outcomes[key].Description)
	}

	schema := outcomeSchema{
		Type: "object",
		Properties: map[string]outcomeProperty{
			"outcome": {
				Type:        "string",
				Description: "The selected outcome key.",
				Enum:        keys,
			},
		},
		Required: []string{"outcome"},
	}
	params, err := json.Marshal(schema)
	if err != nil {
		// A fixed struct of strings cannot fail to marshal.
		panic(fmt.Sprintf("dialograph: marshal outcome schema: %v", err))
	}

	return llm.Tool{
		Name:        OutcomeToolName,
		Description: desc.String(),
		Parameters:  params,
	}, true
}

// ParseSelection extracts the outcome key from a select_outcome tool call.
func ParseSelection(call llm.ToolCall) (string, error) {
	if call.Name != OutcomeToolName {
		return "", fmt.Errorf("unexpected tool call %q (want %s)", call.Name, OutcomeToolName)
	}

	var args struct {
		Outcome string `json:"outcome"`
	}
	if err := json.Unmarshal(call.Arguments, &args); err != nil {
		return "", fmt.Errorf("parse selection arguments: %w", err)
	}
	if args.Outcome == "" {
		return "", fmt.Errorf("selection arguments missing outcome key")
	}
	return args.Outcome, nil
}
