package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/taskgraph"
)

// AddEdge inserts a single dependency edge into a graph.
// An empty dependency type defaults to hard. Both endpoints must already
// exist in the graph (ErrNodeNotFound otherwise) and an edge with the same
// source and target must not (ErrDuplicateEdge). Cycles are not checked
// here — topology is the engine's concern, surfaced by TopologicalOrder
// and Advance on the loaded graph.
func (s *PGStore) AddEdge(ctx context.Context, graphID string, edge *taskgraph.Edge) error {
	if edge.DependencyType == "" {
		edge.DependencyType = taskgraph.DependencyHard
	}
	if !edge.DependencyType.Valid() {
		return fmt.Errorf("taskgraph: unknown dependency type %q", edge.DependencyType)
	}

	var bothExist bool
	err := s.db.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM task_nodes WHERE graph_id = $1 AND id = $2)
		    AND EXISTS(SELECT 1 FROM task_nodes WHERE graph_id = $1 AND id = $3)`,
		graphID, edge.Source, edge.Target,
	).Scan(&bothExist)
	if err != nil {
		return fmt.Errorf("taskgraph: check endpoints: %w", err)
	}
	if !bothExist {
		return fmt.Errorf("taskgraph: edge %s -> %s: %w", edge.Source, edge.Target, taskgraph.ErrNodeNotFound)
	}

	ct, err := s.db.Exec(ctx,
		`INSERT INTO task_edges (id, graph_id, source_id, target_id, dependency_type, data_transfer)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 ON CONFLICT (graph_id, source_id, target_id) DO NOTHING`,
		uuid.NewString(), graphID, edge.Source, edge.Target, edge.DependencyType, edge.DataTransfer,
	)
	if err != nil {
		return fmt.Errorf("taskgraph: insert edge: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("taskgraph: edge %s -> %s: %w", edge.Source, edge.Target, taskgraph.ErrDuplicateEdge)
	}

	return nil
}

// DeleteEdge deletes the edge from source to target within a graph.
// Returns ErrEdgeNotFound if no such edge exists.
func (s *PGStore) DeleteEdge(ctx context.Context, graphID, source, target string) error {
	ct, err := s.db.Exec(ctx,
		`DELETE FROM task_edges WHERE graph_id = $1 AND source_id = $2 AND target_id = $3`,
		graphID, source, target,
	)
	if err != nil {
		return fmt.Errorf("taskgraph: delete edge: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return fmt.Errorf("taskgraph: edge %s -> %s: %w", source, target, taskgraph.ErrEdgeNotFound)
	}
	return nil
}

// ListEdges returns all edges for a graphID, ordered by created_at.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListEdges(ctx context.Context, graphID string) ([]taskgraph.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT source_id, target_id, dependency_type, data_transfer FROM task_edges WHERE graph_id = $1 ORDER BY created_at`, graphID)
	if err != nil {
		return nil, fmt.Errorf("taskgraph: list edges: %w", err)
	}
	defer rows.Close()

	edges := []taskgraph.Edge{}
	for rows.Next() {
		var e taskgraph.Edge
		if err := rows.Scan(&e.Source, &e.Target, &e.DependencyType, &e.DataTransfer); err != nil {
			return nil, fmt.Errorf("taskgraph: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskgraph: rows edges: %w", err)
	}

	return edges, nil
}
