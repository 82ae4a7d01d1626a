package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/nikolayk812/gomarket-cart/internal/db"
	"github.com/nikolayk812/gomarket-cart/internal/port"
)

type postgresStore struct {
	q    *db.Queries
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) port.KeyValueStore {
	return &postgresStore{
		q:    db.New(pool),
		pool: pool,
	}
}

// NewPostgresWithTx binds the store to a caller-owned transaction; Close does not end it.
func NewPostgresWithTx(tx pgx.Tx) port.KeyValueStore {
	return &postgresStore{
		q:    db.New(tx),
		pool: nil, // use provided transaction instead
	}
}

func (s *postgresStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	value, err := s.q.GetItem(ctx, key)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("q.GetItem: %w", err)
	}

	return value, true, nil
}

func (s *postgresStore) Set(ctx context.Context, key string, value []byte) error {
	err := s.q.SetItem(ctx, db.SetItemParams{
		Key:   key,
		Value: value,
	})
	if err != nil {
		return fmt.Errorf("q.SetItem: %w", err)
	}

	return nil
}

func (s *postgresStore) Delete(ctx context.Context, key string) (bool, error) {
	rowsAffected, err := s.q.DeleteItem(ctx, key)
	if err != nil {
		return false, fmt.Errorf("q.DeleteItem: %w", err)
	}

	return rowsAffected > 0, nil
}

func (s *postgresStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}
