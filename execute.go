package database

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/fexli/logger"
	"github.com/skadiD/swallow/driver"
)

// Row 单行结果
type Row = driver.Row

// ExecResult 最近一次执行的结果 每次执行重新计算
type ExecResult struct {
	LastQuery    string
	NumRows      int64
	AffectedRows int64
	// InsertID 无自增 id 时为 -1
	InsertID int64
	Cached   bool
}

// execute 执行语句 key 非空时先查缓存 未命中执行后写入缓存
func (db *DB) execute(ctx context.Context, query, key string, ttl time.Duration) ([]Row, ExecResult, error) {
	res := ExecResult{LastQuery: query, InsertID: -1}
	if key != "" {
		rows, hit, err := db.cache.Fetch(ctx, key)
		switch {
		case err != nil:
			dbLog.Warning(logger.WithContent("缓存读取失败，按未命中处理：", key, err))
		case hit:
			res.Cached = true
			res.NumRows = int64(len(rows))
			db.stats.cached(db.prefix+key, query)
			return rows, res, nil
		}
	}
	if db.adapter == nil {
		return nil, res, ErrNoDatabase
	}
	if db.showSQL {
		dbLog.Debug(logger.WithContent(query))
	}

	start := time.Now()
	r, err := db.adapter.Execute(ctx, query)
	if err != nil {
		var qe *driver.QueryError
		if errors.As(err, &qe) {
			qe.Verbose = db.showSQL
		}
		execErr(errors.Join(err, fmt.Errorf("error executing SQL:\n#### SQL:\n%s", query)), "", "database.Execute")
		return nil, res, err
	}
	res.NumRows = r.NumRows()
	res.AffectedRows = r.Affected
	res.InsertID = r.InsertID
	db.stats.query(QueryStat{Query: query, Time: time.Since(start), Rows: res.NumRows, Changes: res.AffectedRows})

	if key != "" {
		if err := db.cache.Store(ctx, key, r.Rows, ttl); err != nil {
			dbLog.Warning(logger.WithContent("缓存写入失败：", key, err))
		}
	}
	return r.Rows, res, nil
}

func (b *Builder) run(ctx context.Context, key string, ttl time.Duration) ([]Row, error) {
	if b.err != nil {
		return nil, b.err
	}
	if b.db == nil {
		return nil, ErrNoDatabase
	}
	if b.sql == "" {
		return nil, ErrNoStatement
	}
	rows, res, err := b.db.execute(ctx, b.sql, key, ttl)
	b.result = res
	return rows, err
}

// Exec 执行当前语句 不经过缓存
func (b *Builder) Exec(ctx context.Context) (ExecResult, error) {
	_, err := b.run(ctx, "", 0)
	return b.result, err
}

// Many 取全部行 未渲染语句时先 Select
func (b *Builder) Many(ctx context.Context) ([]Row, error) {
	if b.sql == "" {
		b.Select()
	}
	return b.run(ctx, b.cacheKey, b.cacheTTL)
}

// One 取第一行 无结果时返回 nil
func (b *Builder) One(ctx context.Context) (Row, error) {
	if b.sql == "" {
		b.Limit(1).Select()
	}
	rows, err := b.Many(ctx)
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

// Value 第一行中的一列
func (b *Builder) Value(ctx context.Context, name string) (any, error) {
	row, err := b.One(ctx)
	if err != nil || row == nil {
		return nil, err
	}
	return row[name], nil
}

func (b *Builder) aggregate(ctx context.Context, fn, field, alias string) (any, error) {
	return b.Select(fn + "(" + field + ") " + alias).Value(ctx, alias)
}

func (b *Builder) Min(ctx context.Context, field string) (any, error) {
	return b.aggregate(ctx, "MIN", field, "min_value")
}

func (b *Builder) Max(ctx context.Context, field string) (any, error) {
	return b.aggregate(ctx, "MAX", field, "max_value")
}

func (b *Builder) Sum(ctx context.Context, field string) (any, error) {
	return b.aggregate(ctx, "SUM", field, "sum_value")
}

func (b *Builder) Avg(ctx context.Context, field string) (any, error) {
	return b.aggregate(ctx, "AVG", field, "avg_value")
}

// Count 行数 field 缺省为 *
func (b *Builder) Count(ctx context.Context, field ...string) (int64, error) {
	f := "*"
	if len(field) > 0 && field[0] != "" {
		f = field[0]
	}
	v, err := b.aggregate(ctx, "COUNT", f, "num_rows")
	if err != nil {
		return 0, err
	}
	return ToInt64(v)
}

// Result 最近一次执行结果
func (b *Builder) Result() ExecResult { return b.result }

func (b *Builder) LastQuery() string   { return b.result.LastQuery }
func (b *Builder) NumRows() int64      { return b.result.NumRows }
func (b *Builder) AffectedRows() int64 { return b.result.AffectedRows }
func (b *Builder) InsertID() int64     { return b.result.InsertID }
func (b *Builder) IsCached() bool      { return b.result.Cached }

// ToInt64 将驱动返回的数值列转为 int64 文本协议下可能是 []byte 或 string
func ToInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int64:
		return x, nil
	case int:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case uint64:
		return int64(x), nil
	case float64:
		return int64(x), nil
	case []byte:
		return strconv.ParseInt(string(x), 10, 64)
	case string:
		return strconv.ParseInt(x, 10, 64)
	}
	if s, ok := numeric(v); ok {
		f, err := strconv.ParseFloat(s, 64)
		return int64(f), err
	}
	return 0, fmt.Errorf("database: cannot convert %T to int64", v)
}
