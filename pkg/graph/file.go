package graph

import (
	"encoding/json"
	"fmt"
	"os"
)

// file is the on-disk JSON shape for a saved graph.
type file struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`
}

// Load reads a graph from a JSON file. Node IDs in the file are
// ignored; nodes are re-numbered in file order so the sequential-ID
// invariant holds.
func Load(path string) (*Graph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read graph file: %w", err)
	}

	var f file
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse graph file: %w", err)
	}

	g := New()
	remap := make(map[string]string, len(f.Nodes))
	for _, n := range f.Nodes {
		added := g.AddNode(n.X, n.Y)
		remap[n.ID] = added.ID
	}
	for _, e := range f.Edges {
		from, okFrom := remap[e.From]
		to, okTo := remap[e.To]
		if !okFrom || !okTo {
			return nil, fmt.Errorf("edge references unknown node: %s-%s", e.From, e.To)
		}
		if _, ok := g.Connect(from, to); !ok {
			return nil, fmt.Errorf("invalid edge: %s-%s", e.From, e.To)
		}
	}
	return g, nil
}

// Save writes the graph as JSON.
func Save(g *Graph, path string) error {
	data, err := json.MarshalIndent(file{Nodes: g.Nodes, Edges: g.Edges}, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal graph: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write graph file: %w", err)
	}
	return nil
}
