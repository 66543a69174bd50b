// Package sqlite implements chatflow.Store on an embedded SQLite database
// using the pure-Go modernc.org/sqlite driver.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/chatflow"
	_ "modernc.org/sqlite"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS flows (
    id         TEXT PRIMARY KEY,
    created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP,
    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS flow_nodes (
    flow_id    TEXT NOT NULL REFERENCES flows(id) ON DELETE CASCADE,
    id         TEXT NOT NULL,
    seq        INTEGER NOT NULL,
    kind       TEXT NOT NULL,
    position_x REAL NOT NULL DEFAULT 0,
    position_y REAL NOT NULL DEFAULT 0,
    data       TEXT NOT NULL DEFAULT '{}',
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
`

// Store implements chatflow.Store on SQLite.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path. Use ":memory:" for a
// throwaway database; the pool is then limited to one connection so every
// query sees the same data.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("chatflow: open sqlite: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		db.Close()
		return nil, fmt.Errorf("chatflow: enable foreign keys: %w", err)
	}
	return &Store{db: db}, nil
}

// New wraps an existing database handle.
func New(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateSchema creates the flow tables if they don't exist.
func (s *Store) CreateSchema(ctx context.Context) error {
	_, err := s.db.ExecContext(ctx, schemaSQL)
	return err
}

// DropSchema drops the flow tables.
func (s *Store) DropSchema(ctx context.Context) error {
	for _, table := range []string{"flow_edges", "flow_nodes", "flows"} {
		if _, err := s.db.ExecContext(ctx, `DROP TABLE IF EXISTS `+table); err != nil {
			return err
		}
	}
	return nil
}

// SaveFlow replaces the stored flow in one transaction.
func (s *Store) SaveFlow(ctx context.Context, f *chatflow.Flow) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("chatflow: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO flows (id) VALUES (?)
		 ON CONFLICT (id) DO UPDATE SET updated_at = CURRENT_TIMESTAMP`, f.ID); err != nil {
		return fmt.Errorf("chatflow: upsert flow: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flow_edges WHERE flow_id = ?`, f.ID); err != nil {
		return fmt.Errorf("chatflow: delete edges: %w", err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM flow_nodes WHERE flow_id = ?`, f.ID); err != nil {
		return fmt.Errorf("chatflow: delete nodes: %w", err)
	}

	for i, n := range f.Nodes {
		payload := n.Data
		if payload == nil {
			payload = chatflow.DefaultPayload(n.Kind)
		}
		data, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("chatflow: encode node %s: %w", n.ID, err)
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flow_nodes (flow_id, id, seq, kind, position_x, position_y, data)
			 VALUES (?, ?, ?, ?, ?, ?, ?)`,
			f.ID, n.ID, i, string(n.Kind), n.Position.X, n.Position.Y, string(data),
		); err != nil {
			return fmt.Errorf("chatflow: insert node %s: %w", n.ID, err)
		}
	}
	for i, e := range f.Edges {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO flow_edges (flow_id, id, seq, source, target, source_handle)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			f.ID, e.ID, i, e.Source, e.Target, e.SourceHandle,
		); err != nil {
			return fmt.Errorf("chatflow: insert edge %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("chatflow: commit: %w", err)
	}
	return nil
}

// GetFlow returns chatflow.ErrFlowNotFound if nothing is stored under id.
func (s *Store) GetFlow(ctx context.Context, id string) (*chatflow.Flow, error) {
	var found string
	err := s.db.QueryRowContext(ctx, `SELECT id FROM flows WHERE id = ?`, id).Scan(&found)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, chatflow.ErrFlowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("chatflow: get flow: %w", err)
	}

	f := &chatflow.Flow{ID: id, Nodes: []chatflow.Node{}, Edges: []chatflow.Edge{}}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, position_x, position_y, data FROM flow_nodes WHERE flow_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("chatflow: query nodes: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			n          chatflow.Node
			kind, data string
		)
		if err := rows.Scan(&n.ID, &kind, &n.Position.X, &n.Position.Y, &data); err != nil {
			return nil, fmt.Errorf("chatflow: scan node: %w", err)
		}
		n.Kind = chatflow.Kind(kind)
		if n.Data, err = chatflow.DecodePayload(n.Kind, json.RawMessage(data)); err != nil {
			return nil, fmt.Errorf("chatflow: node %s: %w", n.ID, err)
		}
		f.Nodes = append(f.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatflow: rows nodes: %w", err)
	}

	edgeRows, err := s.db.QueryContext(ctx,
		`SELECT id, source, target, source_handle FROM flow_edges WHERE flow_id = ? ORDER BY seq`, id)
	if err != nil {
		return nil, fmt.Errorf("chatflow: query edges: %w", err)
	}
	defer edgeRows.Close()
	for edgeRows.Next() {
		var e chatflow.Edge
		if err := edgeRows.Scan(&e.ID, &e.Source, &e.Target, &e.SourceHandle); err != nil {
			return nil, fmt.Errorf("chatflow: scan edge: %w", err)
		}
		f.Edges = append(f.Edges, e)
	}
	if err := edgeRows.Err(); err != nil {
		return nil, fmt.Errorf("chatflow: rows edges: %w", err)
	}

	return f, nil
}

// DeleteFlow removes a flow with its nodes and edges.
func (s *Store) DeleteFlow(ctx context.Context, id string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM flows WHERE id = ?`, id); err != nil {
		return fmt.Errorf("chatflow: delete flow: %w", err)
	}
	return nil
}

// ListFlows returns all flow IDs in lexical order.
func (s *Store) ListFlows(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id FROM flows ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("chatflow: list flows: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("chatflow: scan flow: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
