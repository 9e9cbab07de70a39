package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gamepanel/user-service/shared/metrics"
	"github.com/lib/pq"
)

// ErrNoRows is returned by Get when the query matched nothing. It is not a failure.
var ErrNoRows = sql.ErrNoRows

// queryCanceled is the Postgres SQLSTATE for statement_timeout / cancel.
const queryCanceled = "57014"

// QueryError wraps a failed store query together with its SQL and bind values.
// SQL and Args are for server-side logs only.
type QueryError struct {
	Store       string
	Description string
	SQL         string
	Args        []interface{}
	Cause       error
	Timeout     bool
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("%s store: %s: %v", e.Store, e.Description, e.Cause)
}

func (e *QueryError) Unwrap() error {
	return e.Cause
}

// Select runs q and scans every row into dest, which must be a pointer to a slice.
// An Empty query returns immediately without touching the store.
func (p *Pool) Select(ctx context.Context, dest interface{}, q Query) error {
	if q.Empty {
		return nil
	}
	return p.run(ctx, q, func(ctx context.Context, query string) error {
		return p.db.SelectContext(ctx, dest, query, q.Args...)
	})
}

// Get runs q and scans a single row into dest. It returns ErrNoRows unwrapped
// when nothing matched.
func (p *Pool) Get(ctx context.Context, dest interface{}, q Query) error {
	if q.Empty {
		return ErrNoRows
	}
	var noRows bool
	err := p.run(ctx, q, func(ctx context.Context, query string) error {
		err := p.db.GetContext(ctx, dest, query, q.Args...)
		if errors.Is(err, sql.ErrNoRows) {
			noRows = true
			return nil
		}
		return err
	})
	if err != nil {
		return err
	}
	if noRows {
		return ErrNoRows
	}
	return nil
}

func (p *Pool) run(ctx context.Context, q Query, fn func(ctx context.Context, query string) error) error {
	query := p.db.Rebind(q.SQL)

	release, err := p.acquire(ctx)
	if err != nil {
		return p.wrap(q, query, err)
	}
	defer release()

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	start := time.Now()
	err = fn(ctx, query)
	metrics.ObserveQuery(p.name, time.Since(start))
	if err != nil {
		return p.wrap(q, query, err)
	}
	return nil
}

func (p *Pool) wrap(q Query, query string, err error) *QueryError {
	return &QueryError{
		Store:       p.name,
		Description: q.Description,
		SQL:         query,
		Args:        q.Args,
		Cause:       err,
		Timeout:     isTimeout(err),
	}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == queryCanceled {
		return true
	}
	return false
}
