package dialograph

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExecutionState_MarkAndRollback verifies a failed submit can restore
// every mutable field exactly.
func TestExecutionState_MarkAndRollback(t *testing.T) {
	s := newExecutionState("conv-1")
	s.node = "greeting"
	s.vars["customer"] = "Ada"
	s.append(Message{Role: RoleSystem, Content: "Greet the customer."})
	s.turns = 2
	s.lastOutcome = "issue_described"

	pre := s.mark()

	s.append(Message{Role: RoleUser, Content: "hello"})
	s.append(Message{Role: RoleAssistant, Content: "hi"})
	s.vars["user_input"] = "hello"
	s.vars["customer"] = "Grace"
	s.node = "diagnose"
	s.finished = true
	s.turns = 3
	s.lastOutcome = "resolved"

	s.rollbackTo(pre)

	assert.Len(t, s.transcript, 1)
	assert.Equal(t, "Greet the customer.", s.transcript[0].Content)
	assert.Equal(t, map[string]any{"customer": "Ada"}, s.vars)
	assert.Equal(t, "greeting", s.node)
	assert.False(t, s.finished)
	assert.Equal(t, 2, s.turns)
	assert.Equal(t, "issue_described", s.lastOutcome)
}

// TestExecutionState_VarsSnapshot verifies handler-facing copies are
// isolated from the live vars.
func TestExecutionState_VarsSnapshot(t *testing.T) {
	s := newExecutionState("conv-1")
	s.vars["a"] = 1

	snap := s.varsSnapshot()
	snap["a"] = 99
	snap["b"] = 2

	assert.Equal(t, 1, s.vars["a"])
	assert.NotContains(t, s.vars, "b")
}

// TestExecutionState_MarshalRoundTrip verifies serialization preserves the
// whole conversation.
func TestExecutionState_MarshalRoundTrip(t *testing.T) {
	s := newExecutionState("conv-42")
	s.node = "diagnose"
	s.vars["user_input"] = "my printer is on fire"
	s.vars["last_create_ticket"] = "T-100"
	s.append(Message{Role: RoleUser, Content: "my printer is on fire"})
	s.append(Message{
		Role:      RoleAssistant,
		Content:   "On it.",
		Selection: &Selection{Outcome: "issue_described", CallID: "call-1"},
	})
	s.append(Message{Role: RoleToolResult, Content: `{"outcome":"issue_described","transitioned_to":"diagnose"}`})
	s.turns = 1
	s.lastOutcome = "issue_described"

	data, err := s.marshal()
	require.NoError(t, err)

	restored, err := unmarshalState(data)
	require.NoError(t, err)

	assert.Equal(t, "conv-42", restored.id)
	assert.Equal(t, "diagnose", restored.node)
	assert.Equal(t, 1, restored.turns)
	assert.Equal(t, "issue_described", restored.lastOutcome)
	assert.False(t, restored.finished)

	require.Len(t, restored.transcript, 3)
	assert.Equal(t, RoleUser, restored.transcript[0].Role)
	require.NotNil(t, restored.transcript[1].Selection)
	assert.Equal(t, "issue_described", restored.transcript[1].Selection.Outcome)
	assert.Equal(t, "call-1", restored.transcript[1].Selection.CallID)

	assert.Equal(t, "my printer is on fire", restored.vars["user_input"])
	assert.Equal(t, "T-100", restored.vars["last_create_ticket"])
}

// TestExecutionState_JSONShape verifies the serialized field names,
// including vars travelling under the context key.
func TestExecutionState_JSONShape(t *testing.T) {
	s := newExecutionState("conv-7")
	s.node = "greeting"
	s.vars["customer"] = "Ada"
	s.turns = 1

	data, err := s.marshal()
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))

	assert.Equal(t, "conv-7", doc["conversation_id"])
	assert.Equal(t, "greeting", doc["current_node_id"])
	assert.Equal(t, float64(1), doc["turns"])

	vars, ok := doc["context"].(map[string]any)
	require.True(t, ok, "vars must serialize under the context key")
	assert.Equal(t, "Ada", vars["customer"])
}

// TestUnmarshalState_Errors verifies corrupt payloads surface the
// deserialize sentinel.
func TestUnmarshalState_Errors(t *testing.T) {
	_, err := unmarshalState([]byte("{corrupt"))
	assert.ErrorIs(t, err, ErrDeserializeState)
}

// TestUnmarshalState_NilVars verifies old or minimal payloads get a usable
// vars map.
func TestUnmarshalState_NilVars(t *testing.T) {
	restored, err := unmarshalState([]byte(`{"conversation_id":"c","turns":0,"transcript":[]}`))
	require.NoError(t, err)
	require.NotNil(t, restored.vars)

	restored.vars["ok"] = true
	assert.Equal(t, true, restored.vars["ok"])
}
