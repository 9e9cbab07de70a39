package store

import (
	"fmt"
	"reflect"

	"github.com/jmoiron/sqlx"
)

// Query is one parameterized statement written with '?' placeholders.
// It is rebound to the pool driver's placeholder style at execution time.
type Query struct {
	// Description is a short human label used in logs, e.g. "bans by target".
	Description string
	SQL         string
	Args        []interface{}
	// Empty marks a query whose IN list had no values; it never reaches the store.
	Empty bool
}

// NewQuery builds a query whose placeholder count is fixed by the SQL text.
func NewQuery(description, sql string, args ...interface{}) Query {
	return Query{Description: description, SQL: sql, Args: args}
}

// In builds a query whose slice arguments are expanded into one bound
// placeholder per element, e.g. "IN (?)" with []string{"a","b"} becomes
// "IN (?, ?)" with args "a", "b". Values are always bound, never inlined.
// A query with an empty slice argument comes back with Empty set.
func In(description, sql string, args ...interface{}) (Query, error) {
	for _, a := range args {
		if isEmptySlice(a) {
			return Query{Description: description, SQL: sql, Empty: true}, nil
		}
	}
	expanded, bound, err := sqlx.In(sql, args...)
	if err != nil {
		return Query{}, fmt.Errorf("failed to expand %s: %w", description, err)
	}
	return Query{Description: description, SQL: expanded, Args: bound}, nil
}

func isEmptySlice(v interface{}) bool {
	if v == nil {
		return false
	}
	if _, ok := v.([]byte); ok {
		return false
	}
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Slice && rv.Len() == 0
}
