package dialograph

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidate_StartNode verifies start node requirements.
func TestValidate_StartNode(t *testing.T) {
	t.Run("missing start", func(t *testing.T) {
		_, err := NewBuilder("test").
			AddNode(Node{ID: "a"}).
			Build()
		assert.ErrorIs(t, err, ErrNoStartNode)
	})

	t.Run("unknown start", func(t *testing.T) {
		_, err := NewBuilder("test").
			AddNode(Node{ID: "a"}).
			SetStart("nowhere").
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrStartNotFound)
		assert.Contains(t, err.Error(), "nowhere")
	})
}

// TestValidate_DanglingOutcome verifies outcome targets must exist.
func TestValidate_DanglingOutcome(t *testing.T) {
	t.Run("identifies node, key, and target", func(t *testing.T) {
		_, err := NewBuilder("test").
			AddNode(Node{ID: "a", Outcomes: map[string]Outcome{
				"forward": {Description: "Go.", Next: "ghost"},
			}}).
			SetStart("a").
			Build()
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrDanglingOutcome)

		dangling := errorsAs[*DanglingReferenceError](t, err)
		assert.Equal(t, "a", dangling.NodeID)
		assert.Equal(t, "forward", dangling.OutcomeKey)
		assert.Equal(t, "ghost", dangling.Target)
	})

	t.Run("END is always a valid target", func(t *testing.T) {
		_, err := NewBuilder("test").
			AddNode(Node{ID: "a", Outcomes: map[string]Outcome{
				"done": {Description: "Done.", Next: END},
			}}).
			SetStart("a").
			Build()
		assert.NoError(t, err)
	})
}

// TestValidate_CollectsAllErrors verifies every violation is reported in
// one pass.
func TestValidate_CollectsAllErrors(t *testing.T) {
	_, err := NewBuilder("test").
		AddNode(Node{ID: "a", Outcomes: map[string]Outcome{
			"one": {Description: "One.", Next: "ghost1"},
			"two": {Description: "Two.", Next: "ghost2"},
		}}).
		SetStart("missing").
		Build()
	require.Error(t, err)

	assert.ErrorIs(t, err, ErrStartNotFound)
	assert.ErrorIs(t, err, ErrDanglingOutcome)
	assert.Contains(t, err.Error(), "ghost1")
	assert.Contains(t, err.Error(), "ghost2")
}

// TestValidate_Warnings verifies zero-outcome and unreachable nodes build
// successfully; they only warn.
func TestValidate_Warnings(t *testing.T) {
	t.Run("node without outcomes", func(t *testing.T) {
		graph, err := NewBuilder("test").
			AddNode(Node{ID: "dead_end", Instructions: "Nothing to select."}).
			SetStart("dead_end").
			Build()
		require.NoError(t, err)
		assert.Equal(t, 1, graph.Len())
	})

	t.Run("unreachable node", func(t *testing.T) {
		graph, err := NewBuilder("test").
			AddNode(Node{ID: "a", Outcomes: map[string]Outcome{
				"done": {Description: "Done.", Next: END},
			}}).
			AddNode(Node{ID: "island", Outcomes: map[string]Outcome{
				"done": {Description: "Done.", Next: END},
			}}).
			SetStart("a").
			Build()
		require.NoError(t, err)
		assert.Equal(t, 2, graph.Len())
	})
}

// TestFindReachableNodes verifies BFS reachability over outcomes.
func TestFindReachableNodes(t *testing.T) {
	tests := []struct {
		name      string
		build     func() *Graph
		reachable []string
	}{
		{
			name: "linear chain",
			build: func() *Graph {
				g, _ := NewBuilder("t").
					AddNode(Node{ID: "a", Outcomes: map[string]Outcome{"next": {Next: "b"}}}).
					AddNode(Node{ID: "b", Outcomes: map[string]Outcome{"next": {Next: "c"}}}).
					AddNode(Node{ID: "c", Outcomes: map[string]Outcome{"done": {Next: END}}}).
					SetStart("a").
					Build()
				return g
			},
			reachable: []string{"a", "b", "c"},
		},
		{
			name: "cycle",
			build: func() *Graph {
				g, _ := NewBuilder("t").
					AddNode(Node{ID: "a", Outcomes: map[string]Outcome{"next": {Next: "b"}}}).
					AddNode(Node{ID: "b", Outcomes: map[string]Outcome{"back": {Next: "a"}, "done": {Next: END}}}).
					SetStart("a").
					Build()
				return g
			},
			reachable: []string{"a", "b"},
		},
		{
			name: "island excluded",
			build: func() *Graph {
				g, _ := NewBuilder("t").
					AddNode(Node{ID: "a", Outcomes: map[string]Outcome{"done": {Next: END}}}).
					AddNode(Node{ID: "island", Outcomes: map[string]Outcome{"done": {Next: END}}}).
					SetStart("a").
					Build()
				return g
			},
			reachable: []string{"a"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			graph := tt.build()
			require.NotNil(t, graph)

			reachable := findReachableNodes(graph)
			assert.Len(t, reachable, len(tt.reachable))
			for _, id := range tt.reachable {
				assert.True(t, reachable[id], "expected %s reachable", id)
			}
		})
	}
}
