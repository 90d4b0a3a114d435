package dialograph

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// validateGraph checks the structural invariants every graph must satisfy
// before an engine will run it:
//
//  1. A start node is set and exists.
//  2. Every node ID is non-empty, unreserved, and whitespace-free.
//  3. Every outcome targets END or an existing node.
//
// All violations are collected and returned together via errors.Join so a
// malformed graph document surfaces every problem in one pass.
func validateGraph(g *Graph) error {
	var errs []error

	if g.start == "" {
		errs = append(errs, ErrNoStartNode)
	} else if _, ok := g.nodes[g.start]; !ok {
		errs = append(errs, fmt.Errorf("%w: %s", ErrStartNotFound, g.start))
	}

	// The builder panics on bad IDs at AddNode time, but declarative
	// documents reach this point unchecked, so the same rules are enforced
	// here as errors.
	for _, id := range g.NodeIDs() {
		switch {
		case id == "":
			errs = append(errs, fmt.Errorf("%w: empty", ErrInvalidNodeID))
		case isReservedNodeID(id):
			errs = append(errs, fmt.Errorf("%w: %q is reserved", ErrInvalidNodeID, id))
		case strings.ContainsAny(id, " \t\n\r"):
			errs = append(errs, fmt.Errorf("%w: %q contains whitespace", ErrInvalidNodeID, id))
		}
	}

	for _, id := range g.NodeIDs() {
		node := g.nodes[id]
		for _, key := range node.OutcomeKeys() {
			outcome := node.Outcomes[key]
			if outcome.Next == END {
				continue
			}
			if _, ok := g.nodes[outcome.Next]; !ok {
				errs = append(errs, &DanglingReferenceError{
					NodeID:     id,
					OutcomeKey: key,
					Target:     outcome.Next,
				})
			}
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// warnGraph logs structural findings that are legal but usually mistakes:
// nodes with no outcomes (conversations cannot progress past them) and
// nodes unreachable from the start.
func warnGraph(g *Graph) {
	for _, id := range g.NodeIDs() {
		if len(g.nodes[id].Outcomes) == 0 {
			slog.Warn("node has no outcomes, conversations cannot progress past it",
				"node_id", id,
				"graph", g.name,
			)
		}
	}
	warnUnreachableNodes(g)
}

// warnUnreachableNodes logs each node that no chain of outcomes can reach
// from the start node.
func warnUnreachableNodes(g *Graph) {
	if _, ok := g.nodes[g.start]; !ok {
		return
	}

	reachable := findReachableNodes(g)
	for _, id := range g.NodeIDs() {
		if !reachable[id] {
			slog.Warn("node is unreachable from start",
				"node_id", id,
				"graph", g.name,
			)
		}
	}
}

// findReachableNodes returns the set of node IDs reachable from the start
// node by following outcomes. BFS; END targets are not nodes and are
// skipped.
func findReachableNodes(g *Graph) map[string]bool {
	reachable := map[string]bool{g.start: true}
	queue := []string{g.start}

	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]

		node, ok := g.nodes[current]
		if !ok {
			continue
		}
		for _, outcome := range node.Outcomes {
			next := outcome.Next
			if next == END || reachable[next] {
				continue
			}
			if _, exists := g.nodes[next]; !exists {
				continue
			}
			reachable[next] = true
			queue = append(queue, next)
		}
	}

	return reachable
}
