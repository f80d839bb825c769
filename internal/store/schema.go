package store

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is stamped into PRAGMA user_version. A fresh file reads 0.
const schemaVersion = 1

// ErrSchemaMismatch means the database was written by another schema version.
var ErrSchemaMismatch = errors.New("schema version mismatch")

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	switch version {
	case schemaVersion:
		return nil
	case 0:
		return s.withTx(ctx, func(tx *sql.Tx) error {
			if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
				return fmt.Errorf("create schema: %w", err)
			}
			_, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", schemaVersion))
			return err
		})
	}
	return fmt.Errorf("%w: %s is at version %d, this build expects %d (move the file aside to start fresh)",
		ErrSchemaMismatch, s.path, version, schemaVersion)
}
