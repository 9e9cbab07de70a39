package repository

import (
	"context"

	"github.com/gamepanel/user-service/internal/store"
)

// list runs a select whose slice arguments become bound IN lists.
func list[T any](ctx context.Context, pool *store.Pool, description, sql string, args ...interface{}) ([]T, error) {
	q, err := store.In(description, sql, args...)
	if err != nil {
		return nil, err
	}
	var rows []T
	if err := pool.Select(ctx, &rows, q); err != nil {
		return nil, err
	}
	return rows, nil
}
