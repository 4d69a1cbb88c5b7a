package pgstream

import (
	"context"
	"database/sql"
	"embed"
	"errors"

	"github.com/pressly/goose/v3"

	// Registers the "pgx" database/sql driver goose migrates through.
	_ "github.com/jackc/pgx/v5/stdlib"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies the embedded schema migrations, creating the
// streamkit_outbox table on first run. It is safe to call on every startup;
// goose tracks applied versions and skips them.
func Migrate(ctx context.Context, databaseURL string) error {
	if databaseURL == "" {
		return ErrEmptyConnectionString
	}

	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	defer db.Close()

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("postgres"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return errors.Join(ErrFailedToApplyMigrations, err)
	}
	return nil
}
