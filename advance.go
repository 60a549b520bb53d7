package taskgraph

// Transition records one status change applied by Advance.
type Transition struct {
	ID   string `json:"id"`
	From Status `json:"from"`
	To   Status `json:"to"`
}

// Advance performs one tick of the state machine and returns the transitions
// it applied.
//
// Nodes are visited exactly once, in topological order. A node that is
// in_progress completes unconditionally (execution is modeled as one
// synchronous tick). A pending node starts iff every hard predecessor is
// completed at the moment it is visited — because predecessors precede their
// successors in the traversal, a node that completes in this call can
// unblock a successor's start in the same call, but a node started in this
// call is never visited again and so never completes in the same call:
// propagation is one level of work per tick. Soft predecessors never gate.
// Completed and failed nodes are untouched; Advance never moves a node
// backward or into failed.
//
// The result is deterministic: completions are exactly the nodes that were
// in_progress when the call began, and starts follow from those, so nothing
// depends on traversal tie-breaking.
//
// Fails with ErrCycleDetected before any mutation if the graph is not a DAG.
// An empty result means the graph is fully advanced or blocked.
func (g *Graph) Advance() ([]Transition, error) {
	order, err := g.TopologicalOrder()
	if err != nil {
		return nil, err
	}

	transitions := make([]Transition, 0)
	for _, id := range order {
		switch g.nodes[id].Status {
		case StatusInProgress:
			g.setStatus(id, StatusCompleted)
			transitions = append(transitions, Transition{ID: id, From: StatusInProgress, To: StatusCompleted})
		case StatusPending:
			if g.hardDepsCompleted(id) {
				g.setStatus(id, StatusInProgress)
				transitions = append(transitions, Transition{ID: id, From: StatusPending, To: StatusInProgress})
			}
		}
	}
	return transitions, nil
}

// hardDepsCompleted reports whether every hard-dependency predecessor of id
// is currently completed.
func (g *Graph) hardDepsCompleted(id string) bool {
	for _, e := range g.edges {
		if e.Target != id || e.DependencyType != DependencyHard {
			continue
		}
		if g.nodes[e.Source].Status != StatusCompleted {
			return false
		}
	}
	return true
}

func (g *Graph) setStatus(id string, status Status) {
	n := g.nodes[id]
	n.Status = status
	g.nodes[id] = n
}
