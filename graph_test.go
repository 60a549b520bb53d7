package taskgraph

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAddNode_Defaults(t *testing.T) {
	g := New()

	id := g.AddNode(Node{Description: "fetch data"})
	if id == "" {
		t.Fatal("expected a generated id")
	}

	n, ok := g.Node(id)
	if !ok {
		t.Fatal("node not found after AddNode")
	}
	if n.Status != StatusPending {
		t.Errorf("expected pending status, got %s", n.Status)
	}
	if n.Description != "fetch data" {
		t.Errorf("unexpected description: %s", n.Description)
	}
}

func TestAddNode_InvalidStatusDefaultsToPending(t *testing.T) {
	g := New()
	id := g.AddNode(Node{Description: "x", Status: "bogus"})

	n, _ := g.Node(id)
	if n.Status != StatusPending {
		t.Errorf("expected pending, got %s", n.Status)
	}
}

func TestAddEdge_MissingEndpoint(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Description: "A"})

	err := g.AddEdge(Edge{Source: a, Target: "no-such-node"})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}
	err = g.AddEdge(Edge{Source: "no-such-node", Target: a})
	if !errors.Is(err, ErrNodeNotFound) {
		t.Fatalf("expected ErrNodeNotFound, got %v", err)
	}

	// Failed mutations must leave the edge set unchanged.
	if len(g.Edges()) != 0 {
		t.Errorf("expected 0 edges after failed AddEdge, got %d", len(g.Edges()))
	}
}

func TestAddEdge_DefaultsToHard(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Description: "A"})
	b := g.AddNode(Node{Description: "B"})

	if err := g.AddEdge(Edge{Source: a, Target: b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := g.Edges()[0].DependencyType; got != DependencyHard {
		t.Errorf("expected hard dependency, got %s", got)
	}
}

func TestAddEdge_Duplicate(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Description: "A"})
	b := g.AddNode(Node{Description: "B"})

	if err := g.AddEdge(Edge{Source: a, Target: b}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	err := g.AddEdge(Edge{Source: a, Target: b, DependencyType: DependencySoft})
	if !errors.Is(err, ErrDuplicateEdge) {
		t.Fatalf("expected ErrDuplicateEdge, got %v", err)
	}
	if len(g.Edges()) != 1 {
		t.Errorf("expected 1 edge, got %d", len(g.Edges()))
	}
}

func TestUpdateStatus(t *testing.T) {
	g := New()
	id := g.AddNode(Node{Description: "A"})

	if err := g.UpdateStatus(id, StatusCompleted); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	n, _ := g.Node(id)
	if n.Status != StatusCompleted {
		t.Errorf("expected completed, got %s", n.Status)
	}

	// Manual rollback is allowed — no transition validation at this layer.
	if err := g.UpdateStatus(id, StatusPending); err != nil {
		t.Fatalf("rollback should be allowed: %v", err)
	}

	if err := g.UpdateStatus("missing", StatusCompleted); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if err := g.UpdateStatus(id, "bogus"); !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestRemoveNode(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Description: "A"})
	b := g.AddNode(Node{Description: "B"})
	c := g.AddNode(Node{Description: "C"})
	mustAddEdge(t, g, a, b, DependencyHard)
	mustAddEdge(t, g, b, c, DependencyHard)

	if err := g.RemoveNode(b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, ok := g.Node(b); ok {
		t.Error("removed node still present")
	}
	if len(g.Edges()) != 0 {
		t.Errorf("expected incident edges removed, got %d edges", len(g.Edges()))
	}

	// No remaining node may report the removed id as a neighbor.
	for _, id := range []string{a, c} {
		preds, err := g.Predecessors(id)
		if err != nil {
			t.Fatalf("predecessors(%s): %v", id, err)
		}
		succs, err := g.Successors(id)
		if err != nil {
			t.Fatalf("successors(%s): %v", id, err)
		}
		for _, p := range append(preds, succs...) {
			if p == b {
				t.Errorf("node %s still adjacent to removed node", id)
			}
		}
	}

	if err := g.RemoveNode("missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestRemoveEdge(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Description: "A"})
	b := g.AddNode(Node{Description: "B"})
	mustAddEdge(t, g, a, b, DependencyHard)

	if err := g.RemoveEdge(a, b); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(g.Edges()) != 0 {
		t.Errorf("expected 0 edges, got %d", len(g.Edges()))
	}
	succs, _ := g.Successors(a)
	if len(succs) != 0 {
		t.Errorf("adjacency not rebuilt after RemoveEdge: %v", succs)
	}

	if err := g.RemoveEdge(a, b); !errors.Is(err, ErrEdgeNotFound) {
		t.Errorf("expected ErrEdgeNotFound, got %v", err)
	}
}

func TestPredecessorsSuccessors(t *testing.T) {
	// A → B → D, A → C → D
	g := New()
	a := g.AddNode(Node{Description: "A"})
	b := g.AddNode(Node{Description: "B"})
	c := g.AddNode(Node{Description: "C"})
	d := g.AddNode(Node{Description: "D"})
	mustAddEdge(t, g, a, b, DependencyHard)
	mustAddEdge(t, g, a, c, DependencyHard)
	mustAddEdge(t, g, b, d, DependencyHard)
	mustAddEdge(t, g, c, d, DependencyHard)

	preds, err := g.Predecessors(d)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameSet(preds, []string{b, c}) {
		t.Errorf("predecessors of D: got %v, want {B, C}", preds)
	}

	succs, err := g.Successors(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sameSet(succs, []string{b, c}) {
		t.Errorf("successors of A: got %v, want {B, C}", succs)
	}

	if _, err := g.Predecessors("missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
	if _, err := g.Successors("missing"); !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}
}

func TestRootAndLeafNodes(t *testing.T) {
	g := New()

	if len(g.RootNodes()) != 0 || len(g.LeafNodes()) != 0 {
		t.Fatal("empty graph should have no roots or leaves")
	}

	a := g.AddNode(Node{Description: "A"})
	b := g.AddNode(Node{Description: "B"})
	c := g.AddNode(Node{Description: "C"})
	mustAddEdge(t, g, a, b, DependencyHard)
	mustAddEdge(t, g, a, c, DependencyHard)

	if !sameSet(g.RootNodes(), []string{a}) {
		t.Errorf("roots: got %v, want {A}", g.RootNodes())
	}
	if !sameSet(g.LeafNodes(), []string{b, c}) {
		t.Errorf("leaves: got %v, want {B, C}", g.LeafNodes())
	}
}

func TestJSONRoundTrip(t *testing.T) {
	g := New()
	a := g.AddNode(Node{Description: "A", Inputs: json.RawMessage(`{"k":"v"}`)})
	b := g.AddNode(Node{Description: "B"})
	mustAddEdge(t, g, a, b, DependencyHard)
	// A reverse soft edge is structurally fine: AddEdge never cycle-checks.
	if err := g.AddEdge(Edge{Source: b, Target: a, DependencyType: DependencySoft, DataTransfer: json.RawMessage(`{"x":1}`)}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := g.UpdateStatus(a, StatusInProgress); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	data, err := json.Marshal(g)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var restored Graph
	if err := json.Unmarshal(data, &restored); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	data2, err := json.Marshal(&restored)
	if err != nil {
		t.Fatalf("re-marshal: %v", err)
	}

	var doc1, doc2 map[string]any
	if err := json.Unmarshal(data, &doc1); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if err := json.Unmarshal(data2, &doc2); err != nil {
		t.Fatalf("decode: %v", err)
	}

	nodes1 := doc1["nodes"].(map[string]any)
	nodes2 := doc2["nodes"].(map[string]any)
	if len(nodes1) != len(nodes2) {
		t.Fatalf("node sets differ: %d vs %d", len(nodes1), len(nodes2))
	}
	for id := range nodes1 {
		if _, ok := nodes2[id]; !ok {
			t.Errorf("node %s missing after round-trip", id)
		}
	}

	if restored.Len() != g.Len() {
		t.Errorf("node count differs: %d vs %d", restored.Len(), g.Len())
	}
	if len(restored.Edges()) != len(g.Edges()) {
		t.Errorf("edge count differs: %d vs %d", len(restored.Edges()), len(g.Edges()))
	}
	n, ok := restored.Node(a)
	if !ok {
		t.Fatal("node A missing after round-trip")
	}
	if n.Status != StatusInProgress {
		t.Errorf("status lost on round-trip: %s", n.Status)
	}
}

func TestUnmarshal_RejectsBadGraphs(t *testing.T) {
	var g Graph

	// Edge referencing a missing node.
	err := json.Unmarshal([]byte(`{
		"nodes": {"a": {"description": "A"}},
		"edges": [{"source": "a", "target": "ghost"}]
	}`), &g)
	if !errors.Is(err, ErrNodeNotFound) {
		t.Errorf("expected ErrNodeNotFound, got %v", err)
	}

	// Unknown status.
	err = json.Unmarshal([]byte(`{
		"nodes": {"a": {"description": "A", "status": "exploded"}},
		"edges": []
	}`), &g)
	if !errors.Is(err, ErrInvalidStatus) {
		t.Errorf("expected ErrInvalidStatus, got %v", err)
	}
}

func TestFromParts(t *testing.T) {
	nodes := []Node{
		{ID: "a", Description: "A", Status: StatusCompleted},
		{ID: "b", Description: "B"},
	}
	edges := []Edge{{Source: "a", Target: "b", DependencyType: DependencyHard}}

	g, err := FromParts(nodes, edges)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.Len() != 2 {
		t.Errorf("expected 2 nodes, got %d", g.Len())
	}
	n, _ := g.Node("b")
	if n.Status != StatusPending {
		t.Errorf("empty status should default to pending, got %s", n.Status)
	}

	if _, err := FromParts([]Node{{ID: "a"}, {ID: "a"}}, nil); err == nil {
		t.Error("expected error for duplicate node id")
	}
	if _, err := FromParts([]Node{{Description: "no id"}}, nil); err == nil {
		t.Error("expected error for missing node id")
	}
}

// mustAddEdge adds an edge or fails the test.
func mustAddEdge(t *testing.T, g *Graph, source, target string, dt DependencyType) {
	t.Helper()
	if err := g.AddEdge(Edge{Source: source, Target: target, DependencyType: dt}); err != nil {
		t.Fatalf("add edge %s -> %s: %v", source, target, err)
	}
}

// sameSet compares two id slices ignoring order.
func sameSet(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	seen := make(map[string]bool, len(got))
	for _, id := range got {
		seen[id] = true
	}
	for _, id := range want {
		if !seen[id] {
			return false
		}
	}
	return true
}
