package database

import (
	"database/sql/driver"
	"fmt"
	"reflect"
	"strconv"
	"time"

	swdriver "github.com/skadiD/swallow/driver"
)

// Expr 不转义直接拼入 SQL 的值 如 Expr("NOW()")
type Expr string

// TimeLayout time.Time 拼入 SQL 时的格式
const TimeLayout = "2006-01-02 15:04:05"

// quoteValue 把任意值转为 SQL 字面量
//
// 数值与布尔不加引号 字符串经 quoteString 转义并加引号 nil 为 NULL
func quoteValue(quoteString func(string) string, v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case Expr:
		return string(x)
	case string:
		return quoteString(x)
	case []byte:
		return quoteString(string(x))
	case bool:
		if x {
			return "TRUE"
		}
		return "FALSE"
	case time.Time:
		return quoteString(x.Format(TimeLayout))
	case driver.Valuer:
		if isNilPointer(v) {
			return "NULL"
		}
		val, err := x.Value()
		if err != nil {
			return "NULL"
		}
		if _, again := val.(driver.Valuer); again {
			return quoteString(fmt.Sprint(val))
		}
		return quoteValue(quoteString, val)
	case fmt.Stringer:
		// 数值底层类型的枚举与 time.Duration 仍按数值输出
		if s, ok := numeric(v); ok {
			return s
		}
		return quoteString(x.String())
	}
	if s, ok := numeric(v); ok {
		return s
	}
	rv := reflect.ValueOf(v)
	if isBytes(rv.Type()) {
		return quoteString(string(rv.Bytes()))
	}
	if rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return "NULL"
		}
		return quoteValue(quoteString, rv.Elem().Interface())
	}
	return quoteString(fmt.Sprint(v))
}

// rawValue 关闭转义时的取值 用于 ON 子句中的列比较
func rawValue(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case Expr:
		return string(x)
	}
	if s, ok := numeric(v); ok {
		return s
	}
	return fmt.Sprint(v)
}

// numeric Go 数值类型 包括以数值为底层类型的自定义类型
func numeric(v any) (string, bool) {
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return strconv.FormatInt(rv.Int(), 10), true
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return strconv.FormatUint(rv.Uint(), 10), true
	case reflect.Float32:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 32), true
	case reflect.Float64:
		return strconv.FormatFloat(rv.Float(), 'g', -1, 64), true
	}
	return "", false
}

// isBytes []byte 及 json.RawMessage 等自定义字节切片
func isBytes(t reflect.Type) bool {
	return t.Kind() == reflect.Slice && t.Elem().Kind() == reflect.Uint8
}

func isNilPointer(v any) bool {
	rv := reflect.ValueOf(v)
	return rv.Kind() == reflect.Pointer && rv.IsNil()
}

// quoter 有连接时使用引擎转义 否则使用手动转义表
func (db *DB) quoter() func(string) string {
	if db == nil || db.adapter == nil {
		return swdriver.QuoteString
	}
	return db.adapter.Quote
}

// Quote 转为可拼入 SQL 的字面量
func (db *DB) Quote(v any) string {
	return quoteValue(db.quoter(), v)
}

func (b *Builder) quote(v any) string {
	return quoteValue(b.db.quoter(), v)
}
