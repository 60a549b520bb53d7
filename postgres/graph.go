package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/taskgraph"
)

// SaveGraph persists a full graph (nodes + edges) in one transaction,
// replacing any previous contents stored under graphID. The graph is
// persisted as-is: a temporarily cyclic graph is saved intact, since cycle
// detection belongs to the engine, not the store.
func (s *PGStore) SaveGraph(ctx context.Context, graphID string, g *taskgraph.Graph) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskgraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	// Delete existing graph data if any (replace semantics).
	if _, err := tx.Exec(ctx, `DELETE FROM task_edges WHERE graph_id = $1`, graphID); err != nil {
		return fmt.Errorf("taskgraph: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM task_nodes WHERE graph_id = $1`, graphID); err != nil {
		return fmt.Errorf("taskgraph: delete nodes: %w", err)
	}

	// Insert nodes in the graph's insertion order so created_at preserves
	// the engine's deterministic tie-break order across a load.
	for _, n := range g.Nodes() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO task_nodes (id, graph_id, description, status, inputs, outputs) VALUES ($1, $2, $3, $4, $5, $6)`,
			n.ID, graphID, n.Description, n.Status, n.Inputs, n.Outputs,
		); err != nil {
			return fmt.Errorf("taskgraph: insert node %s: %w", n.ID, err)
		}
	}

	for _, e := range g.Edges() {
		if _, err := tx.Exec(ctx,
			`INSERT INTO task_edges (id, graph_id, source_id, target_id, dependency_type, data_transfer) VALUES ($1, $2, $3, $4, $5, $6)`,
			uuid.NewString(), graphID, e.Source, e.Target, e.DependencyType, e.DataTransfer,
		); err != nil {
			return fmt.Errorf("taskgraph: insert edge %s -> %s: %w", e.Source, e.Target, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("taskgraph: commit: %w", err)
	}

	return nil
}

// LoadGraph retrieves a full graph (nodes + edges) by its ID and rebuilds
// the in-memory engine representation, adjacency included.
// Returns nil, nil if no nodes exist for the graphID.
func (s *PGStore) LoadGraph(ctx context.Context, graphID string) (*taskgraph.Graph, error) {
	nodes, err := s.ListNodes(ctx, graphID)
	if err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, nil
	}

	edges, err := s.ListEdges(ctx, graphID)
	if err != nil {
		return nil, err
	}

	g, err := taskgraph.FromParts(nodes, edges)
	if err != nil {
		return nil, fmt.Errorf("taskgraph: rebuild graph %s: %w", graphID, err)
	}
	return g, nil
}

// DeleteGraph removes all nodes and edges for a graphID.
// No error if the graphID doesn't exist.
func (s *PGStore) DeleteGraph(ctx context.Context, graphID string) error {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskgraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM task_edges WHERE graph_id = $1`, graphID); err != nil {
		return fmt.Errorf("taskgraph: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM task_nodes WHERE graph_id = $1`, graphID); err != nil {
		return fmt.Errorf("taskgraph: delete nodes: %w", err)
	}

	return tx.Commit(ctx)
}

// ApplyTransitions persists the status changes from one Advance call in a
// single transaction. Returns ErrNodeNotFound (and rolls back) if any
// transition targets a node missing from the graph.
func (s *PGStore) ApplyTransitions(ctx context.Context, graphID string, transitions []taskgraph.Transition) error {
	if len(transitions) == 0 {
		return nil
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("taskgraph: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	for _, tr := range transitions {
		ct, err := tx.Exec(ctx,
			`UPDATE task_nodes SET status = $1 WHERE id = $2 AND graph_id = $3`,
			tr.To, tr.ID, graphID,
		)
		if err != nil {
			return fmt.Errorf("taskgraph: apply transition %s: %w", tr.ID, err)
		}
		if ct.RowsAffected() == 0 {
			return fmt.Errorf("taskgraph: node %s: %w", tr.ID, taskgraph.ErrNodeNotFound)
		}
	}

	return tx.Commit(ctx)
}
