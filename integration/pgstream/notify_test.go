package pgstream_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/streamkit/integration/pgstream"
)

func TestNotify(t *testing.T) {
	t.Parallel()

	t.Run("publishes through pg_notify", func(t *testing.T) {
		t.Parallel()

		db := &fakeExecer{}
		require.NoError(t, pgstream.Notify(context.Background(), db, "orders", `{"id":1}`))

		sql, args := db.lastCall()
		assert.Equal(t, "SELECT pg_notify($1, $2)", sql)
		assert.Equal(t, []any{"orders", `{"id":1}`}, args)
	})

	t.Run("rejects invalid channel before touching the database", func(t *testing.T) {
		t.Parallel()

		err := pgstream.Notify(context.Background(), nil, "no-dashes", "x")
		assert.ErrorIs(t, err, pgstream.ErrInvalidChannel)
	})

	t.Run("wraps exec failures", func(t *testing.T) {
		t.Parallel()

		boom := errors.New("connection reset")
		db := &fakeExecer{err: boom}

		err := pgstream.Notify(context.Background(), db, "orders", "x")
		assert.ErrorIs(t, err, pgstream.ErrNotifyFailed)
		assert.ErrorIs(t, err, boom)
	})
}
