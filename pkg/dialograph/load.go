package dialograph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// graphDoc is the on-disk shape of a conversation graph. Nodes are keyed
// by ID, so the documents read as a map from state to behavior:
//
//	name: support
//	system_prompt: You are a support agent.
//	start: greeting
//	nodes:
//	  greeting:
//	    instructions: Greet the customer and ask what they need.
//	    outcomes:
//	      issue_described:
//	        description: The customer described a problem.
//	        next: diagnose
//	      smalltalk:
//	        description: The customer is not reporting a problem.
//	        next: END
type graphDoc struct {
	Name         string          `yaml:"name" json:"name"`
	SystemPrompt string          `yaml:"system_prompt,omitempty" json:"system_prompt,omitempty"`
	Start        string          `yaml:"start" json:"start"`
	Nodes        map[string]Node `yaml:"nodes" json:"nodes"`
}

// LoadFile reads a graph document from disk. The format is chosen by file
// extension: .yaml and .yml parse as YAML, .json as JSON.
//
// Unlike the builder, the loaders never panic: every problem with the
// document, including node ID violations the builder would panic on, comes
// back as an error.
func LoadFile(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read graph file: %w", err)
	}

	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return ParseYAML(data)
	case ".json":
		return ParseJSON(data)
	default:
		return nil, fmt.Errorf("unsupported graph file extension %q (want .yaml, .yml, or .json)", ext)
	}
}

// ParseYAML parses a YAML graph document.
func ParseYAML(data []byte) (*Graph, error) {
	var doc graphDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse yaml graph: %w", err)
	}
	return doc.graph()
}

// ParseJSON parses a JSON graph document.
func ParseJSON(data []byte) (*Graph, error) {
	var doc graphDoc
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse json graph: %w", err)
	}
	return doc.graph()
}

// graph normalizes the document into a Graph and runs the same validation
// the builder runs.
func (d graphDoc) graph() (*Graph, error) {
	g := &Graph{
		name:         d.Name,
		systemPrompt: d.SystemPrompt,
		start:        d.Start,
		nodes:        make(map[string]Node, len(d.Nodes)),
	}
	for id, node := range d.Nodes {
		g.nodes[id] = normalizedNode(id, node)
	}

	if err := validateGraph(g); err != nil {
		return nil, err
	}
	warnGraph(g)
	return g, nil
}
