package postgres_test

import (
	"context"
	"os"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/meikuraledutech/chatflow"
	"github.com/meikuraledutech/chatflow/postgres"
	"github.com/meikuraledutech/chatflow/storetest"
	"github.com/stretchr/testify/require"
)

// Runs only when DATABASE_URL points at a disposable database.
func TestPGStore_Contract(t *testing.T) {
	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		t.Skip("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dbURL)
	require.NoError(t, err)
	defer pool.Close()

	var store chatflow.Store = postgres.New(pool)
	require.NoError(t, store.DropSchema(ctx))
	require.NoError(t, store.CreateSchema(ctx))
	t.Cleanup(func() { _ = store.DropSchema(context.Background()) })

	storetest.Run(t, store)
}
