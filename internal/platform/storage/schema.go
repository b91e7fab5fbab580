package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
)

// Schema creates tables used by Postgres if they don't exist.
//
//go:embed schema.sql
var Schema string

// EnsureSchema runs Schema against db.
func EnsureSchema(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("can't create schema: %w", err)
	}

	return nil
}
