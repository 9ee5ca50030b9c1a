package storage

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
)

const createKVTable = `
        CREATE TABLE IF NOT EXISTS kv_store (
            key TEXT PRIMARY KEY,
            value TEXT NOT NULL,
            expires_at TIMESTAMPTZ
        );
    `

const selectValue = `SELECT value FROM kv_store WHERE key = $1 AND (expires_at IS NULL OR expires_at > now())`

const upsertValue = `INSERT INTO kv_store (key, value, expires_at) VALUES ($1, $2, $3)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, expires_at = EXCLUDED.expires_at`

// PostgresStorage - Backend поверх таблицы kv_store в PostgreSQL.
type PostgresStorage struct {
	db       *sql.DB
	timeout  time.Duration
	migrated atomic.Bool
}

// NewPostgresStorage открывает пул соединений через драйвер pgx.
func NewPostgresStorage(dsn string, timeout time.Duration) (*PostgresStorage, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return newPostgresStorage(db, timeout), nil
}

func newPostgresStorage(db *sql.DB, timeout time.Duration) *PostgresStorage {
	return &PostgresStorage{db: db, timeout: timeout}
}

// Ping проверяет соединение и при первом успехе создаёт таблицу.
func (p *PostgresStorage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	if err := p.db.PingContext(ctx); err != nil {
		return postgresError(err)
	}
	if p.migrated.Load() {
		return nil
	}
	if _, err := p.db.ExecContext(ctx, createKVTable); err != nil {
		return postgresError(err)
	}
	p.migrated.Store(true)
	return nil
}

func (p *PostgresStorage) Get(ctx context.Context, key string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var value string
	err := p.db.QueryRowContext(ctx, selectValue, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", ErrKeyNotFound
	}
	if err != nil {
		return "", postgresError(err)
	}
	return value, nil
}

func (p *PostgresStorage) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	var expiresAt sql.NullTime
	if ttl > 0 {
		expiresAt = sql.NullTime{Time: time.Now().Add(ttl), Valid: true}
	}
	_, err := p.db.ExecContext(ctx, upsertValue, key, value, expiresAt)
	return postgresError(err)
}

func (p *PostgresStorage) Close() error {
	return p.db.Close()
}

func postgresError(err error) error {
	if err == nil {
		return nil
	}
	var connectErr *pgconn.ConnectError
	if isConnError(err) ||
		errors.Is(err, driver.ErrBadConn) ||
		errors.As(err, &connectErr) ||
		pgconn.Timeout(err) ||
		pgconn.SafeToRetry(err) {
		return fmt.Errorf("%w: %v", ErrConnection, err)
	}
	return err
}
