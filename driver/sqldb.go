package driver

import (
	"context"
	"database/sql"
	"strings"
	"sync"
)

// dbAdapter database/sql 通用适配器 对应 pdo 系列
type dbAdapter struct {
	kind  string
	db    *sql.DB
	quote func(string) string
	mu    sync.Mutex
}

// newDBAdapter 不改动 db 的连接池设置
func newDBAdapter(kind string, db *sql.DB) *dbAdapter {
	a := &dbAdapter{kind: kind, db: db, quote: quoteStandard}
	if kind == KindPDOMySQL {
		a.quote = QuoteString
	}
	return a
}

func openDB(driverName string) opener {
	return func(ctx context.Context, d Descriptor) (Adapter, error) {
		var dsn string
		switch driverName {
		case "mysql":
			dsn = d.MySQLConfig().FormatDSN()
		case "postgres":
			dsn = d.PostgresURL()
		default:
			dsn = d.FilePath()
		}
		db, err := sql.Open(driverName, dsn)
		if err != nil {
			return nil, &ConnectionError{Kind: d.Type, Err: err}
		}
		// 自行打开的连接不做池化
		db.SetMaxOpenConns(1)
		if err = db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, &ConnectionError{Kind: d.Type, Err: err}
		}
		return newDBAdapter(strings.ToLower(d.Type), db), nil
	}
}

func (a *dbAdapter) Kind() string { return a.kind }

func (a *dbAdapter) Quote(s string) string { return a.quote(s) }

func (a *dbAdapter) Ping(ctx context.Context) error {
	return a.db.PingContext(ctx)
}

func (a *dbAdapter) Close() error {
	return a.db.Close()
}

func (a *dbAdapter) Execute(ctx context.Context, query string) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := &Result{InsertID: -1}
	if returnsRows(query) {
		rows, err := a.db.QueryContext(ctx, query)
		if err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		defer rows.Close()
		if res.Columns, res.Rows, err = collectSQLRows(rows); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		return res, nil
	}

	// lastval() 需与 INSERT 在同一连接上
	conn, err := a.db.Conn(ctx)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	defer conn.Close()

	r, err := conn.ExecContext(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	if n, err := r.RowsAffected(); err == nil {
		res.Affected = n
	}
	if !isInsert(query) {
		return res, nil
	}
	if id, err := r.LastInsertId(); err == nil {
		res.InsertID = id
	} else if a.kind == KindPDOPgSQL {
		var id int64
		if conn.QueryRowContext(ctx, "SELECT lastval()").Scan(&id) == nil {
			res.InsertID = id
		}
	}
	return res, nil
}

func collectSQLRows(rows *sql.Rows) ([]string, []Row, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	types, _ := rows.ColumnTypes()
	var out []Row
	for rows.Next() {
		values := make([]any, len(cols))
		ptrs := make([]any, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			row[col] = normalize(values[i], columnType(types, i))
		}
		out = append(out, row)
	}
	return cols, out, rows.Err()
}

func columnType(types []*sql.ColumnType, i int) string {
	if i < len(types) && types[i] != nil {
		return types[i].DatabaseTypeName()
	}
	return ""
}

// normalize 文本协议返回的 []byte 转为 string 二进制列保持原样
func normalize(v any, dbType string) any {
	b, ok := v.([]byte)
	if !ok {
		return v
	}
	t := strings.ToUpper(dbType)
	if strings.Contains(t, "BLOB") || strings.Contains(t, "BINARY") || t == "BYTEA" {
		return append([]byte(nil), b...)
	}
	return string(b)
}
