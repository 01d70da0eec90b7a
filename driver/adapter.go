package driver

import (
	"context"
	"database/sql"
	sqldriver "database/sql/driver"
	"fmt"
	"strings"

	"github.com/duckdb/duckdb-go/v2"
	"github.com/fexli/logger"
	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

var driverLog = logger.GetLogger("driver", true)

// 引擎类型
const (
	KindMySQLi    = "mysqli"
	KindMySQL     = "mysql"
	KindPgSQL     = "pgsql"
	KindPostgres  = "postgres"
	KindSQLite3   = "sqlite3"
	KindSQLite    = "sqlite"
	KindPDOMySQL  = "pdomysql"
	KindPDOPgSQL  = "pdopgsql"
	KindPDOSQLite = "pdosqlite"
	KindDuckDB    = "duckdb"
)

// Row 单行结果 列名 -> 值
type Row = map[string]any

// Result 一次执行的结果
type Result struct {
	Columns  []string
	Rows     []Row
	Affected int64
	// InsertID 无自增 id 时为 -1
	InsertID int64
}

// NumRows 结果集行数
func (r *Result) NumRows() int64 {
	if r == nil {
		return 0
	}
	return int64(len(r.Rows))
}

// Adapter 单个引擎的执行后端
//
// 实现独占底层连接 同一连接同时只执行一条语句
type Adapter interface {
	// Kind 引擎类型
	Kind() string
	// Quote 返回可直接拼入 SQL 的带引号字面量
	Quote(s string) string
	Execute(ctx context.Context, query string) (*Result, error)
	Ping(ctx context.Context) error
	Close() error
}

type opener func(ctx context.Context, d Descriptor) (Adapter, error)

var openers = map[string]opener{
	KindMySQLi:    openMySQLNative,
	KindMySQL:     openMySQLNative,
	KindPgSQL:     openPgx,
	KindPostgres:  openPgx,
	"postgresql":  openPgx,
	KindSQLite3:   openSQLiteNative,
	KindSQLite:    openSQLiteNative,
	KindPDOMySQL:  openDB("mysql"),
	KindPDOPgSQL:  openDB("postgres"),
	KindPDOSQLite: openDB("sqlite3"),
	KindDuckDB:    openDB("duckdb"),
}

// Open 按描述的引擎类型建立连接
func Open(ctx context.Context, d Descriptor) (Adapter, error) {
	open, ok := openers[strings.ToLower(d.Type)]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedEngine, d.Type)
	}
	a, err := open(ctx, d)
	if err != nil {
		driverLog.Error(logger.WithContent("数据库连接失败：", d.Type, err))
		return nil, err
	}
	driverLog.System(logger.WithContent(d.Type, "连接成功"))
	return a, nil
}

// OpenString 解析连接串后连接
func OpenString(ctx context.Context, conn string) (Adapter, error) {
	d, err := ParseDescriptor(conn)
	if err != nil {
		return nil, err
	}
	return Open(ctx, d)
}

// FromHandle 根据已打开的原生连接推断适配器
//
// *sql.DB 的连接池设置保持调用方的配置
func FromHandle(h any) (Adapter, error) {
	switch v := h.(type) {
	case Adapter:
		return v, nil
	case *sql.DB:
		var kind string
		switch v.Driver().(type) {
		case *mysql.MySQLDriver:
			kind = KindPDOMySQL
		case *pq.Driver:
			kind = KindPDOPgSQL
		case *sqlite3.SQLiteDriver:
			kind = KindPDOSQLite
		case duckdb.Driver, *duckdb.Driver:
			kind = KindDuckDB
		default:
			return nil, fmt.Errorf("%w: %T", ErrUnsupportedEngine, v.Driver())
		}
		return newDBAdapter(kind, v), nil
	case *pgx.Conn:
		return &pgxAdapter{conn: v}, nil
	case *sqlite3.SQLiteConn:
		return newConnAdapter(KindSQLite3, v, quoteStandard), nil
	case sqldriver.Conn:
		if fmt.Sprintf("%T", v) == "*mysql.mysqlConn" {
			return newConnAdapter(KindMySQLi, v, QuoteString), nil
		}
	}
	return nil, fmt.Errorf("%w: %T", ErrUnsupportedEngine, h)
}
