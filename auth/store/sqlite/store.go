// Package sqlite provides a SQLite-backed token store. Pair writes and
// clears run in a single transaction, so they are atomic across processes
// sharing the database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/viant/dashnex/auth/store"
	_ "modernc.org/sqlite"
)

const schema = `CREATE TABLE IF NOT EXISTS auth_store (
	key   TEXT PRIMARY KEY,
	value TEXT NOT NULL
)`

// Store persists tokens in SQLite.
type Store struct {
	sqlDB  *sql.DB
	prefix string
}

// Open opens (creating if needed) a SQLite token store at path. Keys are
// namespaced with prefix so several sessions can share one file.
func Open(path, prefix string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if _, err := sqlDB.Exec(schema); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{sqlDB: sqlDB, prefix: prefix}, nil
}

// Close closes the SQLite handle.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func (s *Store) key(name string) string {
	return store.NamespacedKey(s.prefix, name)
}

func (s *Store) get(ctx context.Context, name string) (string, error) {
	var value string
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM auth_store WHERE key = ?`, s.key(name)).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get %s: %w", name, err)
	}
	return value, nil
}

func (s *Store) put(ctx context.Context, db execer, name, value string) error {
	if value == "" {
		return s.delete(ctx, db, name)
	}
	_, err := db.ExecContext(ctx,
		`INSERT INTO auth_store (key, value) VALUES (?, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value`, s.key(name), value)
	if err != nil {
		return fmt.Errorf("put %s: %w", name, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, db execer, name string) error {
	if _, err := db.ExecContext(ctx, `DELETE FROM auth_store WHERE key = ?`, s.key(name)); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (s *Store) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *Store) AccessToken(ctx context.Context) (string, error) {
	return s.get(ctx, store.AccessTokenKey)
}

func (s *Store) RefreshToken(ctx context.Context) (string, error) {
	return s.get(ctx, store.RefreshTokenKey)
}

func (s *Store) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if err := s.put(ctx, tx, store.AccessTokenKey, accessToken); err != nil {
			return err
		}
		return s.put(ctx, tx, store.RefreshTokenKey, refreshToken)
	})
}

func (s *Store) SetAccessToken(ctx context.Context, token string) error {
	return s.put(ctx, s.sqlDB, store.AccessTokenKey, token)
}

func (s *Store) SetRefreshToken(ctx context.Context, token string) error {
	return s.put(ctx, s.sqlDB, store.RefreshTokenKey, token)
}

func (s *Store) ClearTokens(ctx context.Context) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		for _, name := range store.Keys() {
			if err := s.delete(ctx, tx, name); err != nil {
				return err
			}
		}
		return nil
	})
}

func (s *Store) CodeVerifier(ctx context.Context) (string, error) {
	return s.get(ctx, store.CodeVerifierKey)
}

func (s *Store) SetCodeVerifier(ctx context.Context, verifier string) error {
	return s.put(ctx, s.sqlDB, store.CodeVerifierKey, verifier)
}

func (s *Store) State(ctx context.Context) (string, error) {
	return s.get(ctx, store.StateKey)
}

func (s *Store) SetState(ctx context.Context, state string) error {
	return s.put(ctx, s.sqlDB, store.StateKey, state)
}

var _ store.PKCEStore = (*Store)(nil)
