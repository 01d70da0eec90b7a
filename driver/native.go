package driver

import (
	"context"
	sqldriver "database/sql/driver"
	"errors"
	"io"
	"sync"

	"github.com/go-sql-driver/mysql"
	"github.com/mattn/go-sqlite3"
)

// nativeConn 原生驱动连接需要实现的方法 mysqli 与 sqlite3 共用
type nativeConn interface {
	sqldriver.Conn
	sqldriver.QueryerContext
	sqldriver.ExecerContext
	sqldriver.Pinger
}

// connAdapter 直接持有驱动层连接 不经过 database/sql
type connAdapter struct {
	kind  string
	conn  sqldriver.Conn
	quote func(string) string
	mu    sync.Mutex
}

func newConnAdapter(kind string, conn sqldriver.Conn, quote func(string) string) *connAdapter {
	return &connAdapter{kind: kind, conn: conn, quote: quote}
}

func openMySQLNative(ctx context.Context, d Descriptor) (Adapter, error) {
	connector, err := mysql.NewConnector(d.MySQLConfig())
	if err != nil {
		return nil, &ConnectionError{Kind: d.Type, Err: err}
	}
	conn, err := connector.Connect(ctx)
	if err != nil {
		return nil, &ConnectionError{Kind: d.Type, Err: err}
	}
	return newConnAdapter(KindMySQLi, conn, QuoteString), nil
}

func openSQLiteNative(_ context.Context, d Descriptor) (Adapter, error) {
	path := d.FilePath()
	if path == "" {
		path = ":memory:"
	}
	conn, err := (&sqlite3.SQLiteDriver{}).Open(path)
	if err != nil {
		return nil, &ConnectionError{Kind: d.Type, Err: err}
	}
	return newConnAdapter(KindSQLite3, conn, quoteStandard), nil
}

func (a *connAdapter) Kind() string { return a.kind }

func (a *connAdapter) Quote(s string) string { return a.quote(s) }

func (a *connAdapter) native() (nativeConn, error) {
	c, ok := a.conn.(nativeConn)
	if !ok {
		return nil, errors.New("driver: connection does not support direct execution")
	}
	return c, nil
}

func (a *connAdapter) Ping(ctx context.Context) error {
	c, err := a.native()
	if err != nil {
		return err
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	return c.Ping(ctx)
}

func (a *connAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn.Close()
}

func (a *connAdapter) Execute(ctx context.Context, query string) (*Result, error) {
	c, err := a.native()
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	a.mu.Lock()
	defer a.mu.Unlock()

	res := &Result{InsertID: -1}
	if returnsRows(query) {
		rows, err := c.QueryContext(ctx, query, nil)
		if err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		defer rows.Close()
		if res.Columns, res.Rows, err = collectDriverRows(rows); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		return res, nil
	}

	r, err := c.ExecContext(ctx, query, nil)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	if n, err := r.RowsAffected(); err == nil {
		res.Affected = n
	}
	if isInsert(query) {
		if id, err := r.LastInsertId(); err == nil {
			res.InsertID = id
		}
	}
	return res, nil
}

func collectDriverRows(rows sqldriver.Rows) ([]string, []Row, error) {
	cols := rows.Columns()
	typed, _ := rows.(sqldriver.RowsColumnTypeDatabaseTypeName)
	var out []Row
	for {
		dest := make([]sqldriver.Value, len(cols))
		err := rows.Next(dest)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}
		row := make(Row, len(cols))
		for i, col := range cols {
			var dbType string
			if typed != nil {
				dbType = typed.ColumnTypeDatabaseTypeName(i)
			}
			row[col] = normalize(dest[i], dbType)
		}
		out = append(out, row)
	}
	return cols, out, nil
}
