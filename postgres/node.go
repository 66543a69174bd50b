package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/meikuraledutech/chatflow"
)

// insertNodes writes nodes in order; seq keeps that order on read.
func insertNodes(ctx context.Context, tx pgx.Tx, flowID string, nodes []chatflow.Node) error {
	for i, n := range nodes {
		data, err := json.Marshal(payloadOf(n))
		if err != nil {
			return fmt.Errorf("chatflow: encode node %s: %w", n.ID, err)
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO flow_nodes (flow_id, id, seq, kind, position_x, position_y, data)
			 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			flowID, n.ID, i, string(n.Kind), n.Position.X, n.Position.Y, json.RawMessage(data),
		); err != nil {
			return fmt.Errorf("chatflow: insert node %s: %w", n.ID, err)
		}
	}
	return nil
}

// listNodes returns the nodes of a flow in insertion order.
// Returns an empty slice (not nil) if none found.
func (s *PGStore) listNodes(ctx context.Context, flowID string) ([]chatflow.Node, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, kind, position_x, position_y, data FROM flow_nodes WHERE flow_id = $1 ORDER BY seq`, flowID)
	if err != nil {
		return nil, fmt.Errorf("chatflow: list nodes: %w", err)
	}
	defer rows.Close()

	nodes := []chatflow.Node{}
	for rows.Next() {
		var (
			n    chatflow.Node
			kind string
			data []byte
		)
		if err := rows.Scan(&n.ID, &kind, &n.Position.X, &n.Position.Y, &data); err != nil {
			return nil, fmt.Errorf("chatflow: scan node: %w", err)
		}
		n.Kind = chatflow.Kind(kind)
		if n.Data, err = chatflow.DecodePayload(n.Kind, data); err != nil {
			return nil, fmt.Errorf("chatflow: node %s: %w", n.ID, err)
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("chatflow: rows nodes: %w", err)
	}

	return nodes, nil
}

func payloadOf(n chatflow.Node) chatflow.Payload {
	if n.Data == nil {
		return chatflow.DefaultPayload(n.Kind)
	}
	return n.Data
}
