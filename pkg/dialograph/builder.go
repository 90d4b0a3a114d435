package dialograph

import (
	"fmt"
	"strings"
)

// Builder assembles a conversation graph in code. Methods chain:
//
//	graph, err := dialograph.NewBuilder("support").
//		SystemPrompt("You are a support agent for ${company}.").
//		AddNode(greeting).
//		AddNode(collectInfo).
//		SetStart("greeting").
//		Build()
//
// AddNode panics on programmer errors (empty, reserved, whitespace, or
// duplicate IDs) so malformed graphs fail at construction, not mid
// conversation. Structural problems that depend on the whole graph, such
// as outcomes targeting missing nodes, are reported by Build instead.
//
// A Builder is not safe for concurrent use. Build from a single goroutine,
// then share the resulting Graph freely.
type Builder struct {
	name         string
	systemPrompt string
	start        string
	nodes        map[string]Node
}

// NewBuilder creates an empty builder for a graph with the given name.
func NewBuilder(name string) *Builder {
	return &Builder{
		name:  name,
		nodes: make(map[string]Node),
	}
}

// SystemPrompt sets the prompt prepended to every completion request.
func (b *Builder) SystemPrompt(prompt string) *Builder {
	b.systemPrompt = prompt
	return b
}

// AddNode adds a node to the graph under its ID.
//
// Panics if the ID is empty, reserved (END or __end__, any case), contains
// whitespace, or is already taken.
func (b *Builder) AddNode(node Node) *Builder {
	if node.ID == "" {
		panic("dialograph: node ID cannot be empty")
	}
	if isReservedNodeID(node.ID) {
		panic(fmt.Sprintf("dialograph: node ID %q is reserved", node.ID))
	}
	if strings.ContainsAny(node.ID, " \t\n\r") {
		panic(fmt.Sprintf("dialograph: node ID %q cannot contain whitespace", node.ID))
	}
	if _, exists := b.nodes[node.ID]; exists {
		panic(fmt.Sprintf("dialograph: duplicate node ID: %s", node.ID))
	}

	b.nodes[node.ID] = node
	return b
}

// SetStart names the node where new conversations begin.
func (b *Builder) SetStart(id string) *Builder {
	b.start = id
	return b
}

// Build validates the graph and returns an immutable Graph.
//
// All structural violations are collected and returned together via
// errors.Join: a missing or unknown start node, and every outcome that
// targets a node outside the graph. Nodes without outcomes and nodes
// unreachable from the start are legal but logged as warnings.
//
// Outcomes with an empty Next are normalized to END.
func (b *Builder) Build() (*Graph, error) {
	g := &Graph{
		name:         b.name,
		systemPrompt: b.systemPrompt,
		start:        b.start,
		nodes:        make(map[string]Node, len(b.nodes)),
	}
	for id, node := range b.nodes {
		g.nodes[id] = normalizedNode(id, node)
	}

	if err := validateGraph(g); err != nil {
		return nil, err
	}
	warnGraph(g)
	return g, nil
}

// isReservedNodeID reports whether the ID collides with the terminal
// marker, in any casing. The underscored form is reserved too, so graphs
// stay portable to engines that spell their terminal sentinel that way.
func isReservedNodeID(id string) bool {
	return strings.EqualFold(id, END) || strings.EqualFold(id, "__end__")
}
