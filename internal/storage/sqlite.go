package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/nikolayk812/gomarket-cart/internal/db/sqlitedb"
	"github.com/nikolayk812/gomarket-cart/internal/port"
	_ "modernc.org/sqlite"
)

type sqliteStore struct {
	q  *sqlitedb.Queries
	db *sql.DB
}

// NewSQLite opens (or creates) a device-local database file at path.
func NewSQLite(ctx context.Context, path string) (port.KeyValueStore, error) {
	if path == "" {
		return nil, fmt.Errorf("path is empty")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("os.MkdirAll: %w", err)
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	if _, err := db.ExecContext(ctx, sqlitedb.Schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.ExecContext: %w", err)
	}

	return &sqliteStore{
		q:  sqlitedb.New(db),
		db: db,
	}, nil
}

func (s *sqliteStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.q.GetItem(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("q.GetItem: %w", err)
	}

	return value, true, nil
}

func (s *sqliteStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.q.SetItem(ctx, sqlitedb.SetItemParams{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("q.SetItem: %w", err)
	}

	return nil
}

func (s *sqliteStore) Delete(ctx context.Context, key string) (bool, error) {
	rowsAffected, err := s.q.DeleteItem(ctx, key)
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
