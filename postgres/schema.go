package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS task_nodes (
    id          TEXT PRIMARY KEY,
    graph_id    TEXT NOT NULL,
    description TEXT NOT NULL DEFAULT '',
    status      TEXT NOT NULL DEFAULT 'pending',
    inputs      JSONB,
    outputs     JSONB,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS task_edges (
    id              TEXT PRIMARY KEY,
    graph_id        TEXT NOT NULL,
    source_id       TEXT NOT NULL REFERENCES task_nodes(id) ON DELETE CASCADE,
    target_id       TEXT NOT NULL REFERENCES task_nodes(id) ON DELETE CASCADE,
    dependency_type TEXT NOT NULL DEFAULT 'hard',
    data_transfer   JSONB,
    created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    UNIQUE (graph_id, source_id, target_id)
);

CREATE INDEX IF NOT EXISTS idx_task_nodes_graph_id ON task_nodes(graph_id);
CREATE INDEX IF NOT EXISTS idx_task_edges_graph_id ON task_edges(graph_id);
CREATE INDEX IF NOT EXISTS idx_task_edges_source   ON task_edges(source_id);
CREATE INDEX IF NOT EXISTS idx_task_edges_target   ON task_edges(target_id);
`

// CreateSchema creates the task_nodes and task_edges tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the task_edges and task_nodes tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS task_edges, task_nodes CASCADE;`)
	return err
}
