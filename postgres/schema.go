package postgres

import "context"

const schemaSQL = `
CREATE TABLE IF NOT EXISTS flows (
    id         TEXT PRIMARY KEY,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS flow_nodes (
    flow_id    TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
    id         TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    kind       TEXT NOT NULL,
    position_x DOUBLE PRECISION NOT NULL DEFAULT 0,
    position_y DOUBLE PRECISION NOT NULL DEFAULT 0,
    data       JSONB NOT NULL DEFAULT '{}',
    PRIMARY KEY (flow_id, id)
);

CREATE TABLE IF NOT EXISTS flow_edges (
    flow_id       TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
    id            TEXT NOT NULL,
    seq           INTEGER NOT NULL,
    source        TEXT NOT NULL,
    target        TEXT NOT NULL,
    source_handle TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (flow_id, id)
);

CREATE INDEX IF NOT EXISTS idx_flow_edges_source ON flow_edges(flow_id, source);
CREATE INDEX IF NOT EXISTS idx_flow_edges_target ON flow_edges(flow_id, target);
`

// CreateSchema creates the flows, flow_nodes and flow_edges tables if they don't exist.
func (s *PGStore) CreateSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, schemaSQL)
	return err
}

// DropSchema drops the flow tables.
func (s *PGStore) DropSchema(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `DROP TABLE IF EXISTS flow_edges, flow_nodes, flows CASCADE;`)
	return err
}
