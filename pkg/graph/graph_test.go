package graph

import (
	"path/filepath"
	"testing"
)

func TestGraph_AddNodeAssignsSequentialIDs(t *testing.T) {
	g := New()

	a := g.AddNode(1, 2)
	b := g.AddNode(3, 4)
	c := g.AddNode(5, 6)

	for i, n := range []*Node{a, b, c} {
		want := string(rune('1' + i))
		if n.ID != want {
			t.Errorf("node %d: expected ID %q, got %q", i, want, n.ID)
		}
	}
	if got := g.Node("2"); got == nil || got.X != 3 || got.Y != 4 {
		t.Errorf("lookup of node 2 returned %+v", got)
	}
}

func TestGraph_ConnectRejectsSelfAndUnknown(t *testing.T) {
	g := New()
	g.AddNode(0, 0)
	g.AddNode(1, 1)

	if _, ok := g.Connect("1", "1"); ok {
		t.Error("self-edge should be rejected")
	}
	if _, ok := g.Connect("1", "9"); ok {
		t.Error("edge to unknown node should be rejected")
	}
	if _, ok := g.Connect("1", "2"); !ok {
		t.Error("valid edge rejected")
	}
	// Duplicates are permitted.
	if _, ok := g.Connect("2", "1"); !ok {
		t.Error("duplicate edge rejected")
	}
	if len(g.Edges) != 2 {
		t.Errorf("expected 2 edges, got %d", len(g.Edges))
	}
}

func TestGraph_NeighborsSymmetricInsertionOrder(t *testing.T) {
	g := New()
	for i := 0; i < 4; i++ {
		g.AddNode(i, 0)
	}
	g.Connect("2", "1") // node 1 appears as To
	g.Connect("1", "3") // node 1 appears as From
	g.Connect("3", "4")
	g.Connect("1", "3") // duplicate

	got := g.Neighbors("1")
	want := []string{"2", "3", "3"}
	if len(got) != len(want) {
		t.Fatalf("Neighbors(1) = %v; want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("Neighbors(1) = %v; want %v", got, want)
		}
	}
}

func TestGraph_NodeAt(t *testing.T) {
	g := New()
	g.AddNode(10, 5)
	g.AddNode(20, 5)

	if n := g.NodeAt(11, 6, 1); n == nil || n.ID != "1" {
		t.Errorf("expected node 1 within radius, got %+v", n)
	}
	if n := g.NodeAt(15, 5, 1); n != nil {
		t.Errorf("expected empty canvas, got node %s", n.ID)
	}
	// Creation order wins when radii overlap.
	if n := g.NodeAt(15, 5, 10); n == nil || n.ID != "1" {
		t.Errorf("expected first node on overlap, got %+v", n)
	}
}

func TestGraph_CloneIsDeep(t *testing.T) {
	g := New()
	g.AddNode(0, 0)
	g.AddNode(1, 1)
	g.Connect("1", "2")

	c := g.Clone()
	c.AddNode(9, 9)
	c.Connect("1", "3")

	if len(g.Nodes) != 2 || len(g.Edges) != 1 {
		t.Errorf("mutating the clone changed the original: %d nodes, %d edges", len(g.Nodes), len(g.Edges))
	}
}

func TestGraph_SaveLoadRoundTrip(t *testing.T) {
	g := New()
	g.AddNode(2, 3)
	g.AddNode(7, 1)
	g.AddNode(4, 8)
	g.Connect("1", "2")
	g.Connect("2", "3")

	path := filepath.Join(t.TempDir(), "graph.json")
	if err := Save(g, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if len(loaded.Nodes) != 3 || len(loaded.Edges) != 2 {
		t.Fatalf("round trip lost data: %d nodes, %d edges", len(loaded.Nodes), len(loaded.Edges))
	}
	for i, n := range loaded.Nodes {
		orig := g.Nodes[i]
		if n.ID != orig.ID || n.X != orig.X || n.Y != orig.Y {
			t.Errorf("node %d: got %+v, want %+v", i, n, orig)
		}
	}
}
