package taskgraph

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/google/uuid"
)

// Graph is a mutable directed task-dependency graph.
//
// The graph exclusively owns its nodes and edges; the predecessor/successor
// adjacency maps are a derived cache maintained on every mutation and are
// never exposed for external mutation. All operations are synchronous and a
// failed mutation leaves the graph unchanged. A Graph is not safe for
// concurrent mutation — embedding hosts must serialize writes per instance.
type Graph struct {
	nodes map[string]Node
	edges []Edge

	// order holds node IDs in insertion order. It drives deterministic
	// iteration everywhere set semantics don't apply (topological
	// tie-breaking, root/leaf listing).
	order []string

	preds map[string][]string
	succs map[string][]string
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{
		nodes: make(map[string]Node),
		edges: make([]Edge, 0),
		order: make([]string, 0),
		preds: make(map[string][]string),
		succs: make(map[string][]string),
	}
}

// FromParts builds a graph from existing nodes and edges, preserving node
// IDs and statuses. Node order in the slice becomes the insertion order used
// for deterministic tie-breaking.
//
// Every node needs a unique non-empty ID; an empty status defaults to
// pending. Edges are validated exactly as AddEdge validates them.
func FromParts(nodes []Node, edges []Edge) (*Graph, error) {
	g := New()
	for _, n := range nodes {
		if n.ID == "" {
			return nil, fmt.Errorf("taskgraph: node %q has no id", n.Description)
		}
		if _, ok := g.nodes[n.ID]; ok {
			return nil, fmt.Errorf("taskgraph: duplicate node id %s", n.ID)
		}
		if n.Status == "" {
			n.Status = StatusPending
		}
		if !n.Status.Valid() {
			return nil, fmt.Errorf("taskgraph: node %s status %q: %w", n.ID, n.Status, ErrInvalidStatus)
		}
		g.nodes[n.ID] = n
		g.order = append(g.order, n.ID)
	}
	for _, e := range edges {
		if err := g.AddEdge(e); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// Len returns the number of nodes.
func (g *Graph) Len() int {
	return len(g.nodes)
}

// Node returns a copy of the node with the given ID.
func (g *Graph) Node(id string) (Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns copies of all nodes in insertion order.
func (g *Graph) Nodes() []Node {
	nodes := make([]Node, 0, len(g.order))
	for _, id := range g.order {
		nodes = append(nodes, g.nodes[id])
	}
	return nodes
}

// Edges returns a copy of all edges in insertion order.
func (g *Graph) Edges() []Edge {
	edges := make([]Edge, len(g.edges))
	copy(edges, g.edges)
	return edges
}

// AddNode inserts a new node and returns its generated ID.
// An empty or unknown status defaults to pending. Never fails.
func (g *Graph) AddNode(n Node) string {
	n.ID = uuid.NewString()
	if !n.Status.Valid() {
		n.Status = StatusPending
	}
	g.nodes[n.ID] = n
	g.order = append(g.order, n.ID)
	return n.ID
}

// AddEdge appends a directed dependency edge.
// An empty dependency type defaults to hard. Fails with ErrNodeNotFound if
// either endpoint is missing and with ErrDuplicateEdge if an edge with the
// same source and target already exists. Cycle creation is deliberately not
// checked here — cycles surface from TopologicalOrder and Advance.
func (g *Graph) AddEdge(e Edge) error {
	if e.DependencyType == "" {
		e.DependencyType = DependencyHard
	}
	if !e.DependencyType.Valid() {
		return fmt.Errorf("taskgraph: unknown dependency type %q", e.DependencyType)
	}
	if _, ok := g.nodes[e.Source]; !ok {
		return fmt.Errorf("taskgraph: edge source %s: %w", e.Source, ErrNodeNotFound)
	}
	if _, ok := g.nodes[e.Target]; !ok {
		return fmt.Errorf("taskgraph: edge target %s: %w", e.Target, ErrNodeNotFound)
	}
	if g.hasEdge(e.Source, e.Target) {
		return fmt.Errorf("taskgraph: edge %s -> %s: %w", e.Source, e.Target, ErrDuplicateEdge)
	}

	g.edges = append(g.edges, e)
	g.succs[e.Source] = append(g.succs[e.Source], e.Target)
	g.preds[e.Target] = append(g.preds[e.Target], e.Source)
	return nil
}

// UpdateStatus overwrites a node's status unconditionally.
// No transition validation happens here: manual callers may set any valid
// status, including rollbacks. Advance is the only caller that enforces the
// forward lifecycle. Fails with ErrNodeNotFound or ErrInvalidStatus.
func (g *Graph) UpdateStatus(id string, status Status) error {
	if !status.Valid() {
		return fmt.Errorf("taskgraph: status %q: %w", status, ErrInvalidStatus)
	}
	n, ok := g.nodes[id]
	if !ok {
		return fmt.Errorf("taskgraph: node %s: %w", id, ErrNodeNotFound)
	}
	n.Status = status
	g.nodes[id] = n
	return nil
}

// RemoveNode deletes a node and every edge where it is source or target.
// Dependent nodes silently lose the incoming edge — no cascading status
// change. Fails with ErrNodeNotFound.
func (g *Graph) RemoveNode(id string) error {
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("taskgraph: node %s: %w", id, ErrNodeNotFound)
	}

	delete(g.nodes, id)
	for i, nid := range g.order {
		if nid == id {
			g.order = append(g.order[:i], g.order[i+1:]...)
			break
		}
	}

	kept := g.edges[:0]
	for _, e := range g.edges {
		if e.Source != id && e.Target != id {
			kept = append(kept, e)
		}
	}
	g.edges = kept

	g.rebuildAdjacency()
	return nil
}

// RemoveEdge deletes the edge from source to target.
// Fails with ErrEdgeNotFound if no such edge exists. This is the repair hook
// for callers that hit ErrCycleDetected.
func (g *Graph) RemoveEdge(source, target string) error {
	for i, e := range g.edges {
		if e.Source == source && e.Target == target {
			g.edges = append(g.edges[:i], g.edges[i+1:]...)
			g.rebuildAdjacency()
			return nil
		}
	}
	return fmt.Errorf("taskgraph: edge %s -> %s: %w", source, target, ErrEdgeNotFound)
}

// Predecessors returns the set of node IDs with an edge into id.
// Order is unspecified — callers must not depend on it.
func (g *Graph) Predecessors(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("taskgraph: node %s: %w", id, ErrNodeNotFound)
	}
	out := make([]string, len(g.preds[id]))
	copy(out, g.preds[id])
	return out, nil
}

// Successors returns the set of node IDs with an edge out of id.
// Order is unspecified — callers must not depend on it.
func (g *Graph) Successors(id string) ([]string, error) {
	if _, ok := g.nodes[id]; !ok {
		return nil, fmt.Errorf("taskgraph: node %s: %w", id, ErrNodeNotFound)
	}
	out := make([]string, len(g.succs[id]))
	copy(out, g.succs[id])
	return out, nil
}

// RootNodes returns the IDs of all nodes with no incoming edges.
func (g *Graph) RootNodes() []string {
	roots := make([]string, 0)
	for _, id := range g.order {
		if len(g.preds[id]) == 0 {
			roots = append(roots, id)
		}
	}
	return roots
}

// LeafNodes returns the IDs of all nodes with no outgoing edges.
func (g *Graph) LeafNodes() []string {
	leaves := make([]string, 0)
	for _, id := range g.order {
		if len(g.succs[id]) == 0 {
			leaves = append(leaves, id)
		}
	}
	return leaves
}

func (g *Graph) hasEdge(source, target string) bool {
	for _, t := range g.succs[source] {
		if t == target {
			return true
		}
	}
	return false
}

// rebuildAdjacency recomputes both adjacency maps from the canonical
// node/edge collections.
func (g *Graph) rebuildAdjacency() {
	g.preds = make(map[string][]string)
	g.succs = make(map[string][]string)
	for _, e := range g.edges {
		g.succs[e.Source] = append(g.succs[e.Source], e.Target)
		g.preds[e.Target] = append(g.preds[e.Target], e.Source)
	}
}

// graphJSON is the interchange form: nodes keyed by ID plus an edge list.
type graphJSON struct {
	Nodes map[string]Node `json:"nodes"`
	Edges []Edge          `json:"edges"`
}

// MarshalJSON serializes the graph in the interchange format.
// Node and edge sets round-trip exactly; ordering is not guaranteed.
func (g *Graph) MarshalJSON() ([]byte, error) {
	doc := graphJSON{
		Nodes: make(map[string]Node, len(g.nodes)),
		Edges: g.edges,
	}
	for id, n := range g.nodes {
		doc.Nodes[id] = n
	}
	if doc.Edges == nil {
		doc.Edges = []Edge{}
	}
	return json.Marshal(doc)
}

// UnmarshalJSON rebuilds a graph from the interchange format.
//
// Validation matches FromParts. The insertion index is rebuilt sorted by
// node ID so that topological tie-breaking stays deterministic for a fixed
// serialized input. On error the receiver is left unchanged.
func (g *Graph) UnmarshalJSON(data []byte) error {
	var doc graphJSON
	if err := json.Unmarshal(data, &doc); err != nil {
		return err
	}

	ids := make([]string, 0, len(doc.Nodes))
	for id := range doc.Nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	nodes := make([]Node, 0, len(ids))
	for _, id := range ids {
		n := doc.Nodes[id]
		n.ID = id
		nodes = append(nodes, n)
	}

	ng, err := FromParts(nodes, doc.Edges)
	if err != nil {
		return err
	}
	*g = *ng
	return nil
}
