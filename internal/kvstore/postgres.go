package kvstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PGStore implements Store on a single Postgres table, mirroring the hosted
// kv table the original deployment used.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPool connects a pgx pool and verifies the connection.
func NewPool(ctx context.Context, dsn string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// NewPGStore ensures the kv table exists and returns the store.
func NewPGStore(ctx context.Context, pool *pgxpool.Pool) (*PGStore, error) {
	const schema = `
create table if not exists kv_store (
    key   text primary key,
    value jsonb not null
);
`
	if _, err := pool.Exec(ctx, schema); err != nil {
		return nil, fmt.Errorf("create kv schema: %w", err)
	}
	return &PGStore{pool: pool}, nil
}

func (s *PGStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `select value from kv_store where key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return value, true, nil
}

func (s *PGStore) Set(ctx context.Context, key string, value []byte) error {
	const q = `
insert into kv_store (key, value)
values ($1, $2)
on conflict (key) do update set value = excluded.value;
`
	if _, err := s.pool.Exec(ctx, q, key, value); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) Del(ctx context.Context, key string) error {
	if _, err := s.pool.Exec(ctx, `delete from kv_store where key = $1`, key); err != nil {
		return fmt.Errorf("kv del %s: %w", key, err)
	}
	return nil
}

func (s *PGStore) GetByPrefix(ctx context.Context, prefix string) ([]Entry, error) {
	rows, err := s.pool.Query(ctx,
		`select key, value from kv_store where key like $1 || '%' order by key`, prefix)
	if err != nil {
		return nil, fmt.Errorf("kv scan %s: %w", prefix, err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.Key, &e.Value); err != nil {
			return nil, fmt.Errorf("kv scan %s: %w", prefix, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
