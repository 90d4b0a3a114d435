package dialograph

import "sort"

// END is the reserved outcome target that finishes a conversation.
// An outcome whose Next is END is terminal: selecting it moves the
// conversation into the finished state, and no node may use END as its ID.
const END = "END"

// Graph is an immutable conversation graph: a set of named nodes, a start
// node, and an optional system prompt shared by every completion request.
//
// Graphs are produced by a Builder or by the declarative loaders (LoadFile,
// ParseYAML, ParseJSON) and are validated on construction. Once built, a
// Graph is read-only and safe to share across any number of engines and
// goroutines.
type Graph struct {
	name         string
	systemPrompt string
	start        string
	nodes        map[string]Node
}

// Name returns the graph's display name.
func (g *Graph) Name() string {
	return g.name
}

// SystemPrompt returns the prompt prepended to every completion request.
// It may contain ${var} placeholders expanded against the conversation
// vars at request time.
func (g *Graph) SystemPrompt() string {
	return g.systemPrompt
}

// Start returns the ID of the node where new conversations begin.
func (g *Graph) Start() string {
	return g.start
}

// Node returns the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	node, ok := g.nodes[id]
	return node, ok
}

// NodeIDs returns all node IDs in sorted order.
func (g *Graph) NodeIDs() []string {
	ids := make([]string, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Len returns the number of nodes in the graph.
func (g *Graph) Len() int {
	return len(g.nodes)
}
