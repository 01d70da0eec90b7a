package driver

import (
	"context"
	"sync"

	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
)

// pgxAdapter 原生 pgx 连接
type pgxAdapter struct {
	conn *pgx.Conn
	mu   sync.Mutex
}

func openPgx(ctx context.Context, d Descriptor) (Adapter, error) {
	conn, err := pgx.Connect(ctx, d.PostgresURL())
	if err != nil {
		return nil, &ConnectionError{Kind: d.Type, Err: err}
	}
	return &pgxAdapter{conn: conn}, nil
}

func (a *pgxAdapter) Kind() string { return KindPgSQL }

// Quote 使用服务端参数转义 失败时回退为单引号加倍
func (a *pgxAdapter) Quote(s string) string {
	a.mu.Lock()
	escaped, err := a.conn.PgConn().EscapeString(s)
	a.mu.Unlock()
	if err != nil {
		return quoteStandard(s)
	}
	return "'" + escaped + "'"
}

func (a *pgxAdapter) Ping(ctx context.Context) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn.Ping(ctx)
}

func (a *pgxAdapter) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.conn.Close(context.Background())
}

func (a *pgxAdapter) Execute(ctx context.Context, query string) (*Result, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	res := &Result{InsertID: -1}
	if returnsRows(query) {
		rows, err := a.conn.Query(ctx, query)
		if err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		// ScanAll 负责关闭 rows
		if err = pgxscan.ScanAll(&res.Rows, rows); err != nil {
			return nil, &QueryError{Query: query, Err: err}
		}
		for _, fd := range rows.FieldDescriptions() {
			res.Columns = append(res.Columns, fd.Name)
		}
		res.Affected = rows.CommandTag().RowsAffected()
		if rows.CommandTag().Insert() {
			res.InsertID = a.lastval(ctx)
		}
		return res, nil
	}

	tag, err := a.conn.Exec(ctx, query)
	if err != nil {
		return nil, &QueryError{Query: query, Err: err}
	}
	res.Affected = tag.RowsAffected()
	if tag.Insert() {
		res.InsertID = a.lastval(ctx)
	}
	return res, nil
}

// lastval 当前会话最近一次序列值 表无序列时返回 -1
func (a *pgxAdapter) lastval(ctx context.Context) int64 {
	var id int64
	if err := a.conn.QueryRow(ctx, "SELECT lastval()").Scan(&id); err != nil {
		return -1
	}
	return id
}
