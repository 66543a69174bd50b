package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/chatflow"
)

// insertEdges writes edges in order. Edges are stored as given: the
// connection policy is the editor's job, not the store's.
func insertEdges(ctx context.Context, tx pgx.Tx, flowID string, edges []chatflow.Edge) error {
	for i, e := range edges {
		if _, err := tx.Exec(ctx,
			`INSERT INTO flow_edges (flow_id, id, seq, source, target, source_handle)
			 VALUES ($1, $2, $3, $4, $5, $6)`,
			flowID, e.ID, i, e.Source, e.Target, e.SourceHandle,
		); err != nil {
			return fmt.Errorf("chatflow: insert edge %s: %w", e.ID, err)
		}
	}
	return nil
}

// listEdges returns the edges of a flow in insertion order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) listEdges(ctx context.Context, flowID string) ([]chatflow.Edge, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, source, target, source_handle FROM flow_edges WHERE flow_id = $1 ORDER BY seq`, flowID)
	if err != nil {
		return nil, fmt.Errorf("chatflow: list edges: %w", err)
	}
	defer rows.Close()

	edges := []chatflow.Edge{}
	for rows.Next() {
		var e chatflow.Edge
		if err := rows.Scan(&e.ID, &e.Source, &e.Target, &e.SourceHandle); err != nil {
			return nil, fmt.Errorf("chatflow: scan edge: %w", err)
		}
		edges = append(edges, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatflow: rows edges: %w", err)
	}

	return edges, nil
}
