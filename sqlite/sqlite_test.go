package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/sqlite"
	"github.com/meikuraledutech/chatflow/storetest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T, path string) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	require.NoError(t, store.CreateSchema(context.Background()))
	return store
}

func TestStore_Contract(t *testing.T) {
	storetest.Run(t, openStore(t, ":memory:"))
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "flows.db")

	first, err := sqlite.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.CreateSchema(ctx))
	require.NoError(t, first.SaveFlow(ctx, storetest.Sample("kept")))
	require.NoError(t, first.Close())

	second := openStore(t, path)
	got, err := second.GetFlow(ctx, "kept")
	require.NoError(t, err)
	assert.Equal(t, storetest.Sample("kept"), got)
}

func TestStore_RejectsDuplicateNodeIDs(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")

	f := storetest.Sample("dup")
	f.Nodes = append(f.Nodes, f.Nodes[1])
	assert.Error(t, store.SaveFlow(ctx, f))

	_, err := store.GetFlow(ctx, "dup")
	assert.ErrorIs(t, err, chatflow.ErrFlowNotFound, "a failed save leaves nothing behind")
}

func TestStore_DropSchema(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, ":memory:")

	require.NoError(t, store.DropSchema(ctx))
	_, err := store.ListFlows(ctx)
	assert.Error(t, err)
}
