package store

import (
	"context"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"golang.org/x/sync/semaphore"
)

// Store names used in logs and metrics.
const (
	Identity = "identity"
	Gameplay = "gameplay"
)

// PoolConfig describes one relational store connection pool.
type PoolConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	// QueryTimeout bounds every single query issued through the pool. Zero disables it.
	QueryTimeout time.Duration
	// Concurrency caps the number of in-flight queries against this store.
	Concurrency int
}

// Pool is a shared, concurrency-safe handle to one store. Each query
// acquires a worker slot and its own connection, then releases both.
type Pool struct {
	name    string
	db      *sqlx.DB
	slots   *semaphore.Weighted
	timeout time.Duration
}

// Open connects to the store described by cfg and verifies it with a ping.
func Open(ctx context.Context, name string, cfg PoolConfig) (*Pool, error) {
	db, err := sqlx.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s store: %w", name, err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s store: %w", name, err)
	}

	concurrency := cfg.Concurrency
	if concurrency <= 0 {
		concurrency = cfg.MaxOpenConns
	}
	return NewPool(name, db, concurrency, cfg.QueryTimeout), nil
}

// NewPool wraps an already opened database. concurrency <= 0 means unbounded.
func NewPool(name string, db *sqlx.DB, concurrency int, timeout time.Duration) *Pool {
	p := &Pool{name: name, db: db, timeout: timeout}
	if concurrency > 0 {
		p.slots = semaphore.NewWeighted(int64(concurrency))
	}
	return p
}

// Name returns the store name the pool was opened for.
func (p *Pool) Name() string {
	return p.name
}

func (p *Pool) Close() error {
	return p.db.Close()
}

func (p *Pool) acquire(ctx context.Context) (func(), error) {
	if p.slots == nil {
		return func() {}, nil
	}
	if err := p.slots.Acquire(ctx, 1); err != nil {
		return nil, err
	}
	return func() { p.slots.Release(1) }, nil
}
