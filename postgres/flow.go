package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/meikuraledutech/chatflow"
)

// SaveFlow saves a full flow (nodes + edges) in one transaction, replacing
// whatever was stored under f.ID. A flow without an ID gets a UUID.
func (s *PGStore) SaveFlow(ctx context.Context, f *chatflow.Flow) error {
	if f.ID == "" {
		f.ID = uuid.NewString()
	}

	tx, err := s.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("chatflow: begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx,
		`INSERT INTO flows (id) VALUES ($1)
		 ON CONFLICT (id) DO UPDATE SET updated_at = NOW()`, f.ID); err != nil {
		return fmt.Errorf("chatflow: upsert flow: %w", err)
	}

	// Replace semantics: drop the previous graph first.
	if _, err := tx.Exec(ctx, `DELETE FROM flow_edges WHERE flow_id = $1`, f.ID); err != nil {
		return fmt.Errorf("chatflow: delete edges: %w", err)
	}
	if _, err := tx.Exec(ctx, `DELETE FROM flow_nodes WHERE flow_id = $1`, f.ID); err != nil {
		return fmt.Errorf("chatflow: delete nodes: %w", err)
	}

	if err := insertNodes(ctx, tx, f.ID, f.Nodes); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, f.ID, f.Edges); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("chatflow: commit: %w", err)
	}
	return nil
}

// GetFlow retrieves a full flow by its ID.
// Returns chatflow.ErrFlowNotFound if no flow is stored under id.
func (s *PGStore) GetFlow(ctx context.Context, id string) (*chatflow.Flow, error) {
	var exists bool
	if err := s.db.QueryRow(ctx, `SELECT TRUE FROM flows WHERE id = $1`, id).Scan(&exists); err != nil {
		if isNoRows(err) {
			return nil, chatflow.ErrFlowNotFound
		}
		return nil, fmt.Errorf("chatflow: get flow: %w", err)
	}

	nodes, err := s.listNodes(ctx, id)
	if err != nil {
		return nil, err
	}
	edges, err := s.listEdges(ctx, id)
	if err != nil {
		return nil, err
	}
	return &chatflow.Flow{ID: id, Nodes: nodes, Edges: edges}, nil
}

// DeleteFlow removes a flow; nodes and edges are cascade-deleted by the DB.
// No error if the flow doesn't exist.
func (s *PGStore) DeleteFlow(ctx context.Context, id string) error {
	if _, err := s.db.Exec(ctx, `DELETE FROM flows WHERE id = $1`, id); err != nil {
		return fmt.Errorf("chatflow: delete flow: %w", err)
	}
	return nil
}

// ListFlows returns all flow IDs in lexical order.
func (s *PGStore) ListFlows(ctx context.Context) ([]string, error) {
	rows, err := s.db.Query(ctx, `SELECT id FROM flows ORDER BY id`)
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
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatflow: rows flows: %w", err)
	}
	return ids, nil
}
