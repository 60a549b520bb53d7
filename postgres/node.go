package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/taskgraph"
)

// AddNode inserts a single node into a graph.
// If node.ID is empty, a UUID is auto-generated; an empty status defaults to
// pending. Returns the node ID (generated or provided).
func (s *PGStore) AddNode(ctx context.Context, graphID string, node *taskgraph.Node) (string, error) {
	if node.ID == "" {
		node.ID = uuid.NewString()
	}
	if node.Status == "" {
		node.Status = taskgraph.StatusPending
	}
	if !node.Status.Valid() {
		return "", fmt.Errorf("taskgraph: status %q: %w", node.Status, taskgraph.ErrInvalidStatus)
	}

	_, err := s.db.Exec(ctx,
		`INSERT INTO task_nodes (id, graph_id, description, status, inputs, outputs) VALUES ($1, $2, $3, $4, $5, $6)`,
		node.ID, graphID, node.Description, node.Status, node.Inputs, node.Outputs,
	)
	if err != nil {
		return "", fmt.Errorf("taskgraph: insert node: %w", err)
	}

	return node.ID, nil
}

// GetNode fetches a single node by its ID.
// Returns nil, nil if not found.
func (s *PGStore) GetNode(ctx context.Context, nodeID string) (*taskgraph.Node, error) {
	var n taskgraph.Node
	err := s.db.QueryRow(ctx,
		`SELECT id, description, status, inputs, outputs FROM task_nodes WHERE id = $1`, nodeID,
	).Scan(&n.ID, &n.Description, &n.Status, &n.Inputs, &n.Outputs)

	if err != nil {
		if isNoRows(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("taskgraph: get node: %w", err)
	}

	return &n, nil
}

// UpdateNodeStatus overwrites the status of an existing node.
// No transition validation — manual rollbacks are allowed.
// Returns ErrNodeNotFound if the node doesn't exist.
func (s *PGStore) UpdateNodeStatus(ctx context.Context, nodeID string, status taskgraph.Status) error {
	if !status.Valid() {
		return fmt.Errorf("taskgraph: status %q: %w", status, taskgraph.ErrInvalidStatus)
	}

	ct, err := s.db.Exec(ctx,
		`UPDATE task_nodes SET status = $1 WHERE id = $2`,
		status, nodeID,
	)
	if err != nil {
		return fmt.Errorf("taskgraph: update node status: %w", err)
	}
	if ct.RowsAffected() == 0 {
		return taskgraph.ErrNodeNotFound
	}
	return nil
}

// DeleteNode deletes a node by its ID.
// Incident edges are cascade-deleted by the DB.
// No error if the node doesn't exist.
func (s *PGStore) DeleteNode(ctx context.Context, nodeID string) error {
	_, err := s.db.Exec(ctx, `DELETE FROM task_nodes WHERE id = $1`, nodeID)
	if err != nil {
		return fmt.Errorf("taskgraph: delete node: %w", err)
	}
	return nil
}

// ListNodes returns all nodes for a graphID, ordered by created_at.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) ListNodes(ctx context.Context, graphID string) ([]taskgraph.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, description, status, inputs, outputs FROM task_nodes WHERE graph_id = $1 ORDER BY created_at`, graphID)
	if err != nil {
		return nil, fmt.Errorf("taskgraph: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []taskgraph.Node{}
	for rows.Next() {
		var n taskgraph.Node
		if err := rows.Scan(&n.ID, &n.Description, &n.Status, &n.Inputs, &n.Outputs); err != nil {
			return nil, fmt.Errorf("taskgraph: scan node: %w", err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("taskgraph: rows nodes: %w", err)
	}

	return nodes, nil
}

// isNoRows checks if the error is a "no rows" error from pgx.
func isNoRows(err error) bool {
	return err != nil && err.Error() == "no rows in result set"
}
