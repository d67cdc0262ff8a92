package migration

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

func TestRunIsIdempotent(t *testing.T) {
	db, err := sqlx.Connect("sqlite", ":memory:")
	require.NoError(t, err)
	defer db.Close()
	db.SetMaxOpenConns(1)

	runner := NewRunner()
	assert.Equal(t, "1.0.0", runner.Version())

	ctx := context.Background()
	require.NoError(t, runner.Run(ctx, db))
	require.NoError(t, runner.Run(ctx, db))

	var count int
	require.NoError(t, db.Get(&count, `SELECT COUNT(*) FROM audit_reports`))
	assert.Equal(t, 0, count)
}
