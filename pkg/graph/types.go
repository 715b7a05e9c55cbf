package graph

import (
	"strconv"
)

// Node represents a vertex placed on the canvas.
// IDs are assigned sequentially at creation time and never reused;
// nodes are immutable once created.
type Node struct {
	ID string `json:"id"`
	X  int    `json:"x"`
	Y  int    `json:"y"`
}

// Edge represents an undirected connection between two nodes.
// Duplicate edges are permitted; insertion order is preserved.
type Edge struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// Graph holds the drawn graph: nodes in creation order, edges in
// insertion order.
type Graph struct {
	Nodes []*Node `json:"nodes"`
	Edges []*Edge `json:"edges"`

	index map[string]*Node
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		Nodes: make([]*Node, 0),
		Edges: make([]*Edge, 0),
		index: make(map[string]*Node),
	}
}

// AddNode allocates a node at (x, y) with the next sequential ID.
func (g *Graph) AddNode(x, y int) *Node {
	n := &Node{
		ID: strconv.Itoa(len(g.Nodes) + 1),
		X:  x,
		Y:  y,
	}
	g.Nodes = append(g.Nodes, n)
	g.index[n.ID] = n
	return n
}

// Connect records an undirected edge between a and b.
// Both nodes must exist and be distinct.
func (g *Graph) Connect(a, b string) (*Edge, bool) {
	if a == b {
		return nil, false
	}
	if g.Node(a) == nil || g.Node(b) == nil {
		return nil, false
	}
	e := &Edge{From: a, To: b}
	g.Edges = append(g.Edges, e)
	return e, true
}

// Node returns the node with the given ID, or nil.
func (g *Graph) Node(id string) *Node {
	return g.index[id]
}

// Neighbors returns the IDs of nodes connected to id by any edge, in
// edge insertion order. Matching is symmetric: an edge contributes its
// other endpoint whenever either endpoint equals id. Duplicate edges
// yield duplicate entries.
func (g *Graph) Neighbors(id string) []string {
	var out []string
	for _, e := range g.Edges {
		switch id {
		case e.From:
			out = append(out, e.To)
		case e.To:
			out = append(out, e.From)
		}
	}
	return out
}

// NodeAt returns the first node within radius cells of (x, y) in
// creation order, or nil if the click landed on empty canvas.
func (g *Graph) NodeAt(x, y, radius int) *Node {
	for _, n := range g.Nodes {
		if abs(n.X-x) <= radius && abs(n.Y-y) <= radius {
			return n
		}
	}
	return nil
}

// Clone returns a deep copy safe to hand to other goroutines.
func (g *Graph) Clone() *Graph {
	c := New()
	for _, n := range g.Nodes {
		cp := *n
		c.Nodes = append(c.Nodes, &cp)
		c.index[cp.ID] = &cp
	}
	for _, e := range g.Edges {
		cp := *e
		c.Edges = append(c.Edges, &cp)
	}
	return c
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
