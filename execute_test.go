package database

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/skadiD/swallow/cache"
	"github.com/skadiD/swallow/driver"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder 记录执行过的语句 返回预置结果
type recorder struct {
	mu      sync.Mutex
	queries []string
	rows    []Row
	err     error
}

func (r *recorder) Kind() string              { return "fake" }
func (r *recorder) Quote(s string) string     { return driver.QuoteString(s) }
func (r *recorder) Ping(context.Context) error { return nil }
func (r *recorder) Close() error               { return nil }

func (r *recorder) Execute(_ context.Context, query string) (*driver.Result, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.queries = append(r.queries, query)
	if r.err != nil {
		return nil, &driver.QueryError{Query: query, Err: r.err}
	}
	res := &driver.Result{InsertID: -1}
	if strings.HasPrefix(query, "SELECT") {
		res.Rows = r.rows
	} else {
		res.Affected = 1
	}
	if strings.HasPrefix(query, "INSERT") {
		res.InsertID = 42
	}
	return res, nil
}

func (r *recorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queries)
}

func TestMany_CacheIdempotence(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{rows: []Row{{"id": int64(1), "name": "a"}, {"id": int64(2), "name": "b"}}}
	db, err := New(rec, WithKeyPrefix("test:"), WithStats(true))
	require.NoError(t, err)

	b := db.Table("users").Cache("k", time.Minute)
	first, err := b.Many(ctx)
	require.NoError(t, err)
	assert.False(t, b.IsCached())
	assert.Equal(t, 1, rec.count())

	second, err := db.Table("users").Cache("k", time.Minute).Many(ctx)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, rec.count())

	b2 := db.Table("users").Cache("k", time.Minute)
	_, err = b2.Many(ctx)
	require.NoError(t, err)
	assert.True(t, b2.IsCached())
	assert.Equal(t, int64(2), b2.NumRows())

	stats := db.Stats()
	assert.Equal(t, int64(1), stats.NumQueries)
	assert.Equal(t, int64(2), stats.NumRows)
	assert.Equal(t, "SELECT * FROM users", stats.Cached["test:k"])

	// 键带前缀存储
	_, hit, _ := db.Cache().(*cache.Namespace).Backend.Fetch(ctx, "test:k")
	assert.True(t, hit)

	ok, err := db.Clear(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	_, err = db.Table("users").Cache("k", time.Minute).Many(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, rec.count())
}

func TestMany_CachedRowsUnaffectedByCaller(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{rows: []Row{{"id": int64(1), "name": "a"}}}
	db, err := New(rec)
	require.NoError(t, err)

	first, err := db.Table("users").Cache("k", 0).Many(ctx)
	require.NoError(t, err)
	first[0]["name"] = "changed"

	second, err := db.Table("users").Cache("k", 0).Many(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", second[0]["name"])
	assert.Equal(t, 1, rec.count())

	second[0]["name"] = "changed"
	third, err := db.Table("users").Cache("k", 0).Many(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a", third[0]["name"])
}

// brokenCache 所有操作都失败
type brokenCache struct{}

var errBroken = errors.New("cache down")

func (brokenCache) Fetch(context.Context, string) (cache.Rows, bool, error) {
	return nil, false, errBroken
}
func (brokenCache) Store(context.Context, string, cache.Rows, time.Duration) error { return errBroken }
func (brokenCache) Clear(context.Context, string) (bool, error)                   { return false, errBroken }
func (brokenCache) Flush(context.Context) error                                   { return errBroken }

func TestMany_CacheFailureDegrades(t *testing.T) {
	rec := &recorder{rows: []Row{{"id": int64(1)}}}
	db, err := New(rec, WithCache(brokenCache{}))
	require.NoError(t, err)

	rows, err := db.Table("users").Cache("k", 0).Many(context.Background())
	require.NoError(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 1, rec.count())
}

func TestExec_QueryError(t *testing.T) {
	rec := &recorder{err: errors.New("syntax error")}
	db, err := New(rec, WithShowSQL(true))
	require.NoError(t, err)

	_, err = db.Table("users").Delete("id", 1).Exec(context.Background())
	var qe *QueryError
	require.ErrorAs(t, err, &qe)
	assert.Contains(t, err.Error(), "Database error: syntax error")
	assert.Contains(t, err.Error(), "SQL: DELETE FROM users WHERE id=1")
}

func TestExec_BuilderErrorStopsExecution(t *testing.T) {
	rec := &recorder{}
	db, _ := New(rec)
	_, err := db.Table("users").Join("roles", "roles.id = users.role_id", "CROSS").Many(context.Background())
	assert.ErrorIs(t, err, ErrInvalidJoinType)
	assert.Equal(t, 0, rec.count())

	_, err = db.Builder().Exec(context.Background())
	assert.ErrorIs(t, err, ErrNoStatement)

	_, err = NewBuilder().From("users").Many(context.Background())
	assert.ErrorIs(t, err, ErrNoDatabase)
}

func TestOneAndAggregates(t *testing.T) {
	ctx := context.Background()
	rec := &recorder{rows: []Row{{"num_rows": int64(3), "min_value": int64(1)}}}
	db, _ := New(rec)

	row, err := db.Table("users").One(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), row["num_rows"])
	assert.Equal(t, "SELECT * FROM users LIMIT 1", rec.queries[0])

	n, err := db.Table("users").Where("active", 1).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), n)
	assert.Equal(t, "SELECT COUNT(*) num_rows FROM users WHERE active=1", rec.queries[1])

	v, err := db.Table("users").Min(ctx, "age")
	require.NoError(t, err)
	assert.Equal(t, int64(1), v)
	assert.Equal(t, "SELECT MIN(age) min_value FROM users", rec.queries[2])
}

func TestToInt64(t *testing.T) {
	for _, v := range []any{int64(7), 7, []byte("7"), "7", 7.0, uint64(7), int32(7)} {
		n, err := ToInt64(v)
		require.NoError(t, err)
		assert.Equal(t, int64(7), n)
	}
	_, err := ToInt64(struct{}{})
	assert.Error(t, err)
}

func openSQLite(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), "sqlite3::memory:", WithStats(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	_, err = db.Builder().SetSQL("CREATE TABLE items (id INTEGER PRIMARY KEY AUTOINCREMENT, a INTEGER, b TEXT)").Exec(context.Background())
	require.NoError(t, err)
	return db
}

func TestSQLite_RoundTrip(t *testing.T) {
	ctx := context.Background()
	db := openSQLite(t)

	res, err := db.Table("items").Insert(M("a", 1, "b", "x")).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AffectedRows)
	require.Equal(t, int64(1), res.InsertID)

	row, err := db.Table("items").Where("id", res.InsertID).One(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 1, row["a"])
	assert.Equal(t, "x", row["b"])

	_, err = db.Table("items").Insert(M("a", 5, "b", "it's")).Exec(ctx)
	require.NoError(t, err)

	res, err = db.Table("items").Where("a >", 0).Update(M("b", "y")).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.AffectedRows)

	sum, err := db.Table("items").Sum(ctx, "a")
	require.NoError(t, err)
	assert.EqualValues(t, 6, sum)

	n, err := db.Table("items").Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	rows, total, err := db.Paginate(ctx, "items", 1, 10, func(b sq.SelectBuilder) sq.SelectBuilder {
		return b.Where(sq.Eq{"b": "y"}).OrderBy("id DESC")
	})
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	require.Len(t, rows, 2)
	assert.EqualValues(t, 5, rows[0]["a"])

	res, err = db.Table("items").Delete("id", 1).Exec(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), res.AffectedRows)

	stats := db.Stats()
	assert.Equal(t, int64(10), stats.NumQueries)
	assert.Len(t, stats.Queries, 10)
	assert.True(t, stats.AvgQueryTime <= stats.TotalTime)
}

func TestQuote(t *testing.T) {
	db, _ := New(nil)
	assert.Equal(t, `'a\'b'`, db.Quote("a'b"))
	assert.Equal(t, "NULL", db.Quote(nil))
	assert.Equal(t, "12", db.Quote(12))
	assert.Equal(t, "1.5", db.Quote(1.5))
	var p *int
	assert.Equal(t, "NULL", db.Quote(p))
	n := 3
	assert.Equal(t, "3", db.Quote(&n))
	assert.Equal(t, "NOW()", db.Quote(Expr("NOW()")))
}
