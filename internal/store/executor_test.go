package store

import (
	"context"
	"errors"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"
)

type serverRow struct {
	ID   int64  `db:"id"`
	Name string `db:"name"`
}

func newMockPool(t *testing.T, timeout time.Duration) (*Pool, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPool(Gameplay, sqlx.NewDb(db, "postgres"), 2, timeout), mock
}

func TestInExpandsOnePlaceholderPerValue(t *testing.T) {
	q, err := In("servers by id", "SELECT id, name FROM servers WHERE id IN (?) AND enabled = ?", []int64{4, 9, 12}, true)
	require.NoError(t, err)

	assert.Equal(t, "SELECT id, name FROM servers WHERE id IN (?, ?, ?) AND enabled = ?", q.SQL)
	assert.Equal(t, []interface{}{int64(4), int64(9), int64(12), true}, q.Args)
	assert.False(t, q.Empty)
}

func TestInWithEmptyListSkipsStore(t *testing.T) {
	pool, mock := newMockPool(t, 0)

	q, err := In("bans by ip", "SELECT id, name FROM bans WHERE ip IN (?)", []string{})
	require.NoError(t, err)
	require.True(t, q.Empty)

	var rows []serverRow
	require.NoError(t, pool.Select(context.Background(), &rows, q))
	assert.Empty(t, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolBoundsConcurrentQueries(t *testing.T) {
	const (
		queries = 4
		bound   = 2
		delay   = 100 * time.Millisecond
	)
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	mock.MatchExpectationsInOrder(false)
	pool := NewPool(Gameplay, sqlx.NewDb(db, "postgres"), bound, 0)

	for i := 0; i < queries; i++ {
		mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM servers")).
			WillDelayFor(delay).
			WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(i, "Surf"))
	}

	start := time.Now()
	var wg sync.WaitGroup
	errs := make(chan error, queries)
	for i := 0; i < queries; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			var rows []serverRow
			errs <- pool.Select(context.Background(), &rows, NewQuery("servers", "SELECT id, name FROM servers"))
		}()
	}
	wg.Wait()
	elapsed := time.Since(start)
	close(errs)

	for err := range errs {
		require.NoError(t, err)
	}
	// Four queries through two slots run in two waves.
	assert.GreaterOrEqual(t, elapsed, 2*delay-10*time.Millisecond)
	assert.Less(t, elapsed, queries*delay)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPoolAcquireWaitsForFreeSlot(t *testing.T) {
	pool, _ := newMockPool(t, 0)

	first, err := pool.acquire(context.Background())
	require.NoError(t, err)
	second, err := pool.acquire(context.Background())
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = pool.acquire(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	first()
	third, err := pool.acquire(context.Background())
	require.NoError(t, err)
	second()
	third()
}

func TestUnboundedPoolNeverWaits(t *testing.T) {
	db, _, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	pool := NewPool(Gameplay, sqlx.NewDb(db, "postgres"), 0, 0)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	for i := 0; i < 3; i++ {
		release, err := pool.acquire(ctx)
		require.NoError(t, err)
		release()
	}
}

func TestSelectRebindsAndScans(t *testing.T) {
	pool, mock := newMockPool(t, time.Second)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM servers WHERE id IN ($1, $2)")).
		WithArgs(int64(1), int64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}).AddRow(1, "Surf #1").AddRow(2, "Bhop"))

	q, err := In("servers by id", "SELECT id, name FROM servers WHERE id IN (?)", []int64{1, 2})
	require.NoError(t, err)

	var rows []serverRow
	require.NoError(t, pool.Select(context.Background(), &rows, q))
	assert.Equal(t, []serverRow{{ID: 1, Name: "Surf #1"}, {ID: 2, Name: "Bhop"}}, rows)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectWrapsFailures(t *testing.T) {
	pool, mock := newMockPool(t, 0)
	cause := errors.New("connection reset by peer")

	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM servers WHERE id = $1")).
		WithArgs(7).
		WillReturnError(cause)

	var rows []serverRow
	err := pool.Select(context.Background(), &rows, NewQuery("server by id", "SELECT id, name FROM servers WHERE id = ?", 7))

	var qErr *QueryError
	require.True(t, errors.As(err, &qErr))
	assert.Equal(t, Gameplay, qErr.Store)
	assert.Equal(t, "server by id", qErr.Description)
	assert.Equal(t, "SELECT id, name FROM servers WHERE id = $1", qErr.SQL)
	assert.Equal(t, []interface{}{7}, qErr.Args)
	assert.False(t, qErr.Timeout)
	assert.ErrorIs(t, err, cause)
	assert.NotContains(t, qErr.Error(), "7", "bind values stay out of the error text")
}

func TestSelectClassifiesTimeouts(t *testing.T) {
	t.Run("postgres statement timeout", func(t *testing.T) {
		pool, mock := newMockPool(t, 0)
		mock.ExpectQuery("SELECT").WillReturnError(&pq.Error{Code: "57014", Message: "canceling statement due to statement timeout"})

		var rows []serverRow
		err := pool.Select(context.Background(), &rows, NewQuery("servers", "SELECT id, name FROM servers"))

		var qErr *QueryError
		require.True(t, errors.As(err, &qErr))
		assert.True(t, qErr.Timeout)
	})

	t.Run("expired context", func(t *testing.T) {
		pool, _ := newMockPool(t, 0)
		ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
		defer cancel()

		var rows []serverRow
		err := pool.Select(ctx, &rows, NewQuery("servers", "SELECT id, name FROM servers"))

		var qErr *QueryError
		require.True(t, errors.As(err, &qErr))
		assert.True(t, qErr.Timeout)
		assert.ErrorIs(t, err, context.DeadlineExceeded)
	})
}

func TestGetReturnsErrNoRows(t *testing.T) {
	pool, mock := newMockPool(t, 0)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT id, name FROM servers WHERE id = $1")).
		WithArgs(99).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name"}))

	var row serverRow
	err := pool.Get(context.Background(), &row, NewQuery("server by id", "SELECT id, name FROM servers WHERE id = ?", 99))
	assert.ErrorIs(t, err, ErrNoRows)

	var qErr *QueryError
	assert.False(t, errors.As(err, &qErr), "no rows is not a query failure")
}

func TestInAgainstSQLite(t *testing.T) {
	db, err := sqlx.Open("sqlite", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE servers (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO servers (id, name) VALUES (1, 'a'), (2, 'b'), (3, 'c'), (4, 'd')`)
	require.NoError(t, err)

	pool := NewPool(Gameplay, db, 1, time.Second)

	// A value shaped like an injection stays a bound literal.
	q, err := In("servers by name", "SELECT id, name FROM servers WHERE name IN (?) ORDER BY id", []string{"b", "d", "x') OR ('1'='1"})
	require.NoError(t, err)

	var rows []serverRow
	require.NoError(t, pool.Select(context.Background(), &rows, q))
	assert.Equal(t, []serverRow{{ID: 2, Name: "b"}, {ID: 4, Name: "d"}}, rows)
}
