package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"dubstudio/internal/config"
)

// Store persists projects, their captions and render history in one SQLite
// file.
type Store struct {
	db   *sql.DB
	path string
}

// connPragmas run on every pooled connection, not just the first.
var connPragmas = []string{"journal_mode(WAL)", "foreign_keys(1)", "busy_timeout(5000)"}

// Open creates the configured data directories and opens the database in
// them.
func Open(cfg *config.Config) (*Store, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}
	return OpenPath(cfg.DatabasePath())
}

// OpenPath opens (creating if needed) the database file at dbPath.
func OpenPath(dbPath string) (*Store, error) {
	query := url.Values{"_pragma": connPragmas}
	db, err := sql.Open("sqlite", dbPath+"?"+query.Encode())
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	s := &Store{db: db, path: dbPath}
	if err := s.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Path() string { return s.path }

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func orBackground(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}

// busy reports SQLITE_BUSY, which another dubstudio process holding the
// write lock produces.
func busy(err error) bool {
	const sqliteBusy = 5
	var coded interface{ Code() int }
	if errors.As(err, &coded) {
		return coded.Code()&0xff == sqliteBusy
	}
	return err != nil && (strings.Contains(err.Error(), "SQLITE_BUSY") || strings.Contains(err.Error(), "database is locked"))
}

// retryBusy runs op up to five times, sleeping 10ms, 20ms, 40ms... (capped at
// 200ms) between attempts that fail with SQLITE_BUSY.
func retryBusy(ctx context.Context, op func() error) error {
	const attempts = 5
	wait := 10 * time.Millisecond
	for n := 1; ; n++ {
		err := op()
		if err == nil || !busy(err) || n == attempts {
			return err
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(wait):
		}
		wait = min(wait*2, 200*time.Millisecond)
	}
}

func (s *Store) execWithRetry(ctx context.Context, query string, args ...any) (sql.Result, error) {
	ctx = orBackground(ctx)
	var res sql.Result
	err := retryBusy(ctx, func() (err error) {
		res, err = s.db.ExecContext(ctx, query, args...)
		return err
	})
	return res, err
}

// withTx runs fn in a transaction, retrying the whole unit on SQLITE_BUSY.
func (s *Store) withTx(ctx context.Context, fn func(*sql.Tx) error) error {
	ctx = orBackground(ctx)
	return retryBusy(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		if err := fn(tx); err != nil {
			_ = tx.Rollback()
			return err
		}
		return tx.Commit()
	})
}
