package pgstream_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/dmitrymomot/streamkit/integration/pgstream"
)

func TestMigrate(t *testing.T) {
	t.Run("empty connection string", func(t *testing.T) {
		err := pgstream.Migrate(context.Background(), "")
		assert.ErrorIs(t, err, pgstream.ErrEmptyConnectionString)
	})

	t.Run("unreachable database", func(t *testing.T) {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		err := pgstream.Migrate(ctx, unreachableURL)
		assert.ErrorIs(t, err, pgstream.ErrFailedToApplyMigrations)
	})
}
