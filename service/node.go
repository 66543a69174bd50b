package service

import (
	"context"

	"github.com/meikuraledutech/chatflow"
)

// Ports describes the connection points a canvas draws for a node.
type Ports struct {
	Inputs  int      `json:"inputs"`
	Outputs int      `json:"outputs"`
	Handles []string `json:"handles"`
}

// AddNode appends n to the flow and returns the stored node.
func (s *Service) AddNode(ctx context.Context, flowID string, n chatflow.Node) (chatflow.Node, error) {
	var added chatflow.Node
	_, err := s.mutate(ctx, "add_node", flowID, func(ed *chatflow.Editor) error {
		id := ed.AddNode(n)
		added, _ = ed.Node(id)
		return nil
	})
	return added, err
}

// UpdateNode merges patch into a node's payload.
func (s *Service) UpdateNode(ctx context.Context, flowID, nodeID string, patch map[string]any) (*chatflow.Flow, error) {
	return s.mutate(ctx, "update_node", flowID, func(ed *chatflow.Editor) error {
		return ed.UpdateNode(nodeID, patch)
	})
}

// MoveNode records a new canvas position for a node.
func (s *Service) MoveNode(ctx context.Context, flowID, nodeID string, p chatflow.Position) (*chatflow.Flow, error) {
	return s.mutate(ctx, "move_node", flowID, func(ed *chatflow.Editor) error {
		ed.MoveNode(nodeID, p)
		return nil
	})
}

// DeleteNode removes a node and its edges. Start nodes yield
// chatflow.ErrStartProtected.
func (s *Service) DeleteNode(ctx context.Context, flowID, nodeID string) (*chatflow.Flow, error) {
	return s.mutate(ctx, "delete_node", flowID, func(ed *chatflow.Editor) error {
		return ed.DeleteNode(nodeID)
	})
}

// DuplicateNode copies a node and returns the copy's id, empty when nodeID
// is unknown.
func (s *Service) DuplicateNode(ctx context.Context, flowID, nodeID string) (string, *chatflow.Flow, error) {
	var id string
	f, err := s.mutate(ctx, "duplicate_node", flowID, func(ed *chatflow.Editor) error {
		var err error
		id, err = ed.DuplicateNode(nodeID)
		return err
	})
	return id, f, err
}

// Connect adds an edge if the connection rules allow it. A rejection is a
// *chatflow.ConnectionError. The returned id is empty when an endpoint is
// unknown and nothing was added.
func (s *Service) Connect(ctx context.Context, flowID string, e chatflow.Edge) (string, *chatflow.Flow, error) {
	var id string
	f, err := s.mutate(ctx, "connect", flowID, func(ed *chatflow.Editor) error {
		var err error
		id, err = ed.Connect(e)
		return err
	})
	return id, f, err
}

// DeleteEdge removes an edge.
func (s *Service) DeleteEdge(ctx context.Context, flowID, edgeID string) (*chatflow.Flow, error) {
	return s.mutate(ctx, "delete_edge", flowID, func(ed *chatflow.Editor) error {
		ed.DeleteEdge(edgeID)
		return nil
	})
}

// Ports returns the port layout of one node.
func (s *Service) Ports(ctx context.Context, flowID, nodeID string) (Ports, error) {
	f, err := s.store.GetFlow(ctx, flowID)
	if err != nil {
		return Ports{}, err
	}
	n, ok := f.Node(nodeID)
	if !ok {
		return Ports{}, ErrNodeNotFound
	}
	handles := chatflow.Handles(n)
	if handles == nil {
		handles = []string{}
	}
	return Ports{
		Inputs:  chatflow.InputPorts(n),
		Outputs: chatflow.OutputPorts(n),
		Handles: handles,
	}, nil
}
