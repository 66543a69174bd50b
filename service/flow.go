package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/meikuraledutech/chatflow"
	"go.uber.org/zap"
)

// CreateFlow stores a new flow under id (generated when empty). The flow
// holds the default start node, or a copy of the named example when
// exampleID is set. ErrFlowExists is returned if id is taken.
func (s *Service) CreateFlow(ctx context.Context, id, exampleID string) (*chatflow.Flow, error) {
	if id == "" {
		id = uuid.NewString()
	}
	ctx, done := s.observe(ctx, "create_flow", id)

	var out *chatflow.Flow
	err := s.WithLock(ctx, id, func(ctx context.Context) error {
		_, err := s.store.GetFlow(ctx, id)
		if err == nil {
			return ErrFlowExists
		}
		if !errors.Is(err, chatflow.ErrFlowNotFound) {
			return err
		}

		ed := chatflow.NewEditor()
		if exampleID != "" {
			ex, err := lookupExample(exampleID)
			if err != nil {
				return err
			}
			ed.ReplaceAll(ex.Flow.Nodes, ex.Flow.Edges)
		}
		f := ed.Snapshot()
		f.ID = id
		if err := s.store.SaveFlow(ctx, &f); err != nil {
			return err
		}
		out = &f
		return nil
	})
	done(err)
	if err != nil {
		return nil, err
	}
	s.logger.Info("flow created", zap.String("flow_id", id), zap.String("example", exampleID))
	return out, nil
}

// GetFlow returns the stored flow.
func (s *Service) GetFlow(ctx context.Context, id string) (*chatflow.Flow, error) {
	return s.store.GetFlow(ctx, id)
}

// ListFlows returns the ids of all stored flows.
func (s *Service) ListFlows(ctx context.Context) ([]string, error) {
	return s.store.ListFlows(ctx)
}

// DeleteFlow removes a flow. Unknown ids are not an error.
func (s *Service) DeleteFlow(ctx context.Context, id string) error {
	ctx, done := s.observe(ctx, "delete_flow", id)
	err := s.WithLock(ctx, id, func(ctx context.Context) error {
		return s.store.DeleteFlow(ctx, id)
	})
	done(err)
	return err
}

// ReplaceFlow overwrites the graph of an existing flow wholesale. No
// connection rule or validation is applied.
func (s *Service) ReplaceFlow(ctx context.Context, id string, nodes []chatflow.Node, edges []chatflow.Edge) (*chatflow.Flow, error) {
	return s.mutate(ctx, "replace_flow", id, func(ed *chatflow.Editor) error {
		ed.ReplaceAll(nodes, edges)
		return nil
	})
}

// LoadExample replaces the graph of an existing flow with an example.
func (s *Service) LoadExample(ctx context.Context, id, exampleID string) (*chatflow.Flow, error) {
	ex, err := lookupExample(exampleID)
	if err != nil {
		return nil, err
	}
	return s.ReplaceFlow(ctx, id, ex.Flow.Nodes, ex.Flow.Edges)
}

func lookupExample(id string) (chatflow.Example, error) {
	ex, ok, err := chatflow.LookupExample(id)
	if err != nil {
		return chatflow.Example{}, err
	}
	if !ok {
		return chatflow.Example{}, ErrExampleNotFound
	}
	return ex, nil
}

// Validate runs the validator over the stored flow.
func (s *Service) Validate(ctx context.Context, id string) (chatflow.Report, error) {
	ctx, done := s.observe(ctx, "validate", id)
	f, err := s.store.GetFlow(ctx, id)
	done(err)
	if err != nil {
		return chatflow.Report{}, err
	}
	report := chatflow.Validate(*f)
	s.metrics.Validation(report.IsValid, len(report.Errors))
	return report, nil
}

// Export returns the export document for the stored flow, or an
// *chatflow.InvalidFlowError when it does not validate.
func (s *Service) Export(ctx context.Context, id string) (*chatflow.Document, error) {
	ctx, done := s.observe(ctx, "export", id)
	f, err := s.store.GetFlow(ctx, id)
	if err != nil {
		done(err)
		return nil, err
	}
	doc, err := chatflow.Export(*f, s.now())
	s.metrics.Export(err == nil)
	done(err)
	return doc, err
}

// Mermaid renders the stored flow as a Mermaid diagram.
func (s *Service) Mermaid(ctx context.Context, id string) (string, error) {
	f, err := s.store.GetFlow(ctx, id)
	if err != nil {
		return "", err
	}
	return chatflow.Mermaid(*f), nil
}
