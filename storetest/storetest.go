// Package storetest holds the contract every chatflow.Store backend must
// satisfy. Backends call Run from their own tests.
package storetest

import (
	"context"
	"testing"

	"github.com/meikuraledutech/chatflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Sample returns a small flow touching every node kind and a condition
// handle, used by the contract.
func Sample(id string) *chatflow.Flow {
	return &chatflow.Flow{
		ID: id,
		Nodes: []chatflow.Node{
			{ID: "start", Kind: chatflow.KindStart, Position: chatflow.Position{X: 100, Y: 100}, Data: chatflow.StartData{Label: "Start"}},
			{ID: "ask", Kind: chatflow.KindInput, Position: chatflow.Position{X: 300, Y: 100.5}, Data: chatflow.InputData{
				Prompt: "Email?", InputType: chatflow.InputEmail, Placeholder: "you@example.com",
			}},
			{ID: "route", Kind: chatflow.KindCondition, Data: chatflow.ConditionData{Conditions: []string{"valid", "valid"}}},
			{ID: "thanks", Kind: chatflow.KindMessage, Data: chatflow.MessageData{Label: "Thanks", Text: "Thank you!"}},
			{ID: "end", Kind: chatflow.KindEnd, Data: chatflow.EndData{}},
		},
		Edges: []chatflow.Edge{
			{ID: "e1", Source: "start", Target: "ask"},
			{ID: "e2", Source: "ask", Target: "route"},
			{ID: "e3", Source: "route", Target: "thanks", SourceHandle: "branch-0"},
			{ID: "e4", Source: "route", Target: "ask", SourceHandle: "default"},
			{ID: "e5", Source: "thanks", Target: "end"},
		},
	}
}

// Run exercises store against the chatflow.Store contract. The store must
// start empty.
func Run(t *testing.T, store chatflow.Store) {
	t.Helper()
	ctx := context.Background()

	t.Run("GetFlow_NotFound", func(t *testing.T) {
		_, err := store.GetFlow(ctx, "missing")
		assert.ErrorIs(t, err, chatflow.ErrFlowNotFound)
	})

	t.Run("SaveFlow_RoundTrip", func(t *testing.T) {
		want := Sample("support")
		require.NoError(t, store.SaveFlow(ctx, want))

		got, err := store.GetFlow(ctx, "support")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})

	t.Run("SaveFlow_Replaces", func(t *testing.T) {
		f := Sample("support")
		f.Nodes = f.Nodes[:1]
		f.Edges = []chatflow.Edge{}
		require.NoError(t, store.SaveFlow(ctx, f))

		got, err := store.GetFlow(ctx, "support")
		require.NoError(t, err)
		assert.Len(t, got.Nodes, 1)
		assert.Empty(t, got.Edges)
	})

	t.Run("SaveFlow_GeneratesID", func(t *testing.T) {
		f := Sample("")
		require.NoError(t, store.SaveFlow(ctx, f))
		assert.NotEmpty(t, f.ID)
		require.NoError(t, store.DeleteFlow(ctx, f.ID))
	})

	t.Run("SaveFlow_EmptyFlow", func(t *testing.T) {
		require.NoError(t, store.SaveFlow(ctx, &chatflow.Flow{ID: "blank"}))

		got, err := store.GetFlow(ctx, "blank")
		require.NoError(t, err)
		assert.Empty(t, got.Nodes)
		assert.NotNil(t, got.Nodes)
		assert.NotNil(t, got.Edges)
	})

	t.Run("ListFlows", func(t *testing.T) {
		require.NoError(t, store.SaveFlow(ctx, Sample("alpha")))

		ids, err := store.ListFlows(ctx)
		require.NoError(t, err)
		assert.Equal(t, []string{"alpha", "blank", "support"}, ids)
	})

	t.Run("DeleteFlow", func(t *testing.T) {
		for _, id := range []string{"alpha", "blank", "support"} {
			require.NoError(t, store.DeleteFlow(ctx, id))
		}
		require.NoError(t, store.DeleteFlow(ctx, "missing"))

		_, err := store.GetFlow(ctx, "alpha")
		assert.ErrorIs(t, err, chatflow.ErrFlowNotFound)

		ids, err := store.ListFlows(ctx)
		require.NoError(t, err)
		assert.Empty(t, ids)
	})
}
