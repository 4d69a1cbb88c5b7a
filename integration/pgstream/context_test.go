package pgstream_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamkit/integration/pgstream"
)

func TestWithTx(t *testing.T) {
	t.Parallel()

	t.Run("round trip", func(t *testing.T) {
		t.Parallel()

		tx := &fakeTx{}
		ctx := pgstream.WithTx(context.Background(), tx)

		got, ok := pgstream.TxFromContext(ctx)
		require.True(t, ok)
		assert.Same(t, tx, got)
	})

	t.Run("nil transaction leaves context unchanged", func(t *testing.T) {
		t.Parallel()

		ctx := context.Background()
		assert.Equal(t, ctx, pgstream.WithTx(ctx, nil))

		_, ok := pgstream.TxFromContext(ctx)
		assert.False(t, ok)
	})

	t.Run("nil context", func(t *testing.T) {
		t.Parallel()

		var missing context.Context
		ctx := pgstream.WithTx(missing, &fakeTx{})
		_, ok := pgstream.TxFromContext(ctx)
		assert.True(t, ok)

		_, ok = pgstream.TxFromContext(missing)
		assert.False(t, ok)
	})
}
